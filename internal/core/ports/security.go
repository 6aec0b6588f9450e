package ports

import (
	"context"
	"time"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// PasswordHasher hashes and checks passwords. Verify reports false for any
// mismatch, including a malformed stored hash; its error is reserved for
// ctx being done before the work ran.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// TokenIssuer mints signed access and refresh tokens for an identity.
type TokenIssuer interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, *domain.RefreshClaims, error)
}

// TokenVerifier checks a token and recovers its claims. On failure the claims
// are nil and the error is a *domain.VerificationError.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*domain.AccessClaims, error)
	VerifyRefreshToken(token string) (*domain.RefreshClaims, error)
}

// RevocationStore remembers refresh token ids that must no longer be
// exchanged. Entries only need to live until the token would expire anyway.
type RevocationStore interface {
	// Revoke marks tokenID revoked until the given time. It is an atomic
	// claim: first is true only for the call that revoked the id, so
	// concurrent callers presenting the same token see exactly one winner.
	Revoke(ctx context.Context, tokenID string, until time.Time) (first bool, err error)
}
