package ports

import (
	"context"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// Gate answers who is making a request. Authenticate does no I/O; Identity
// reads the credential store and must only be called with a principal that
// Authenticate produced.
type Gate interface {
	Authenticate(ctx context.Context, credential string) (*domain.Principal, error)
	Identity(ctx context.Context, principal *domain.Principal) (*domain.User, error)
}
