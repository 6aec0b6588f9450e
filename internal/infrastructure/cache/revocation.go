// Package cache holds in-process stores for single-instance deployments and
// tests.
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// RevocationStore keeps revoked refresh token ids in a bigcache instance.
// The stored value is the token's expiry as unix seconds; bigcache's own
// eviction window is set to the longest refresh lifetime.
type RevocationStore struct {
	mu    sync.Mutex
	cache *bigcache.BigCache
	now   func() time.Time
}

// NewRevocationStore creates a store whose entries live at most lifeWindow.
func NewRevocationStore(lifeWindow time.Duration) (*RevocationStore, error) {
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.CleanWindow = time.Minute
	cfg.Verbose = false

	c, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("revocation cache: %w", err)
	}
	return &RevocationStore{cache: c, now: time.Now}, nil
}

// Revoke claims tokenID. The lookup and the write share one lock, so of
// several concurrent callers only one sees first == true.
func (s *RevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	buf, err := s.cache.Get(tokenID)
	switch {
	case err == nil:
		if len(buf) != 8 || now.Unix() <= int64(binary.BigEndian.Uint64(buf)) {
			return false, nil
		}
	case !errors.Is(err, bigcache.ErrEntryNotFound):
		return false, err
	}

	if !until.After(now) {
		until = now.Add(time.Second)
	}
	buf = make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(until.Unix()))
	if err := s.cache.Set(tokenID, buf); err != nil {
		return false, err
	}
	return true, nil
}

// Close stops the cache's cleanup goroutine.
func (s *RevocationStore) Close() error {
	return s.cache.Close()
}
