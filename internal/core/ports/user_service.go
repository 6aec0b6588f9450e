package ports

import (
	"context"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// UserService covers operations on the caller's own identity and public
// profiles.
type UserService interface {
	Profile(ctx context.Context, p *domain.Principal) (*domain.User, error)
	// PublicProfile looks up any user. viewer is nil for anonymous requests.
	PublicProfile(ctx context.Context, viewer *domain.Principal, userID string) (*domain.User, error)
	// ChangeRole switches the caller's role and returns a fresh access token
	// that carries it.
	ChangeRole(ctx context.Context, p *domain.Principal, role string) (*AuthResult, error)
	UpdateLogo(ctx context.Context, p *domain.Principal, logo string) (*domain.User, error)
	// UpdateExecutorProfile merges upd into the caller's executor profile.
	// Only executors may call it.
	UpdateExecutorProfile(ctx context.Context, p *domain.Principal, upd domain.ExecutorProfileUpdate) (*domain.User, error)
}
