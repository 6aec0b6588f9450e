package security

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/opportunitycup/marketplace-api/internal/api/metrics"
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/infrastructure/queue"
)

// BcryptHasher hashes passwords with a fixed bcrypt cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside %d..%d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Hash refuses passwords bcrypt would truncate with domain.ErrInvalidInput.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(plaintext) > domain.MaxPasswordBytes {
		return "", fmt.Errorf("hash password: %w", domain.ErrInvalidInput)
	}
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch, not an error.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return err == nil, nil
}

// PooledHasher runs a BcryptHasher on a worker pool.
type PooledHasher struct {
	inner *BcryptHasher
	pool  *queue.Pool
}

func NewPooledHasher(inner *BcryptHasher, pool *queue.Pool) *PooledHasher {
	return &PooledHasher{inner: inner, pool: pool}
}

func (p *PooledHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash string
		err  error
	)
	if qerr := p.pool.Do(ctx, func() { hash, err = p.inner.Hash(ctx, plaintext) }); qerr != nil {
		return "", qerr
	}
	return hash, err
}

func (p *PooledHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	var (
		ok  bool
		err error
	)
	if qerr := p.pool.Do(ctx, func() { ok, err = p.inner.Verify(ctx, plaintext, hash) }); qerr != nil {
		return false, qerr
	}
	return ok, err
}
