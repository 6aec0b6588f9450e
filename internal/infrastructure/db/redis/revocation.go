package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// minRevocationTTL keeps a claim alive for a token that expires right now.
const minRevocationTTL = time.Second

// RevocationStore records revoked refresh token ids in Redis.
// Key format: revoked:refresh:<token_id>, expiring with the token itself.
type RevocationStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRevocationStore creates a RevocationStore wrapping the given Redis client.
func NewRevocationStore(client redis.UniversalClient) *RevocationStore {
	return &RevocationStore{client: client, now: time.Now}
}

// Revoke claims tokenID with SETNX, so only the first caller gets true.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) (bool, error) {
	ttl := until.Sub(s.now())
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}
	first, err := s.client.SetNX(ctx, s.key(tokenID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoke refresh token: %w", err)
	}
	return first, nil
}

func (s *RevocationStore) key(tokenID string) string {
	return "revoked:refresh:" + tokenID
}
