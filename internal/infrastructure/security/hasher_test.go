package security

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/infrastructure/queue"
)

func TestNewBcryptHasher_CostRange(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
	_, err = NewBcryptHasher(7)
	assert.NoError(t, err)
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := h.Verify(ctx, "correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_MultibyteLengthIsCountedInBytes(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	// 42 runes, 84 bytes.
	_, err = h.Hash(ctx, strings.Repeat("пароль", 7))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// 36 runes, 72 bytes.
	_, err = h.Hash(ctx, strings.Repeat("пароль", 6))
	assert.NoError(t, err)
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	a, err := h.Hash(context.Background(), "password1")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "password1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcryptHasher_MalformedHashIsMismatch(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	for _, stored := range []string{"", "not-a-hash", "$2a$04$short"} {
		ok, err := h.Verify(context.Background(), "password1", stored)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestPooledHasher_DelegatesToPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewPool(2, zerolog.Nop())
	pool.Start(ctx)

	inner, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	h := NewPooledHasher(inner, pool)

	hash, err := h.Hash(ctx, "password1")
	require.NoError(t, err)

	ok, err := h.Verify(ctx, "password1", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPooledHasher_CancelledContext(t *testing.T) {
	pool := queue.NewPool(1, zerolog.Nop())
	inner, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	h := NewPooledHasher(inner, pool)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Hash(ctx, "password1")
	assert.ErrorIs(t, err, context.Canceled)
}
