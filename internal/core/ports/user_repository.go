package ports

import (
	"context"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// UserRepository is the credential store. Lookups return
// domain.ErrUserNotFound when no identity matches and Create returns
// domain.ErrUserExists when the email is taken.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
	UpdateLogo(ctx context.Context, id, logo string) (*domain.User, error)
	// UpdateExecutorProfile replaces the stored executor profile.
	UpdateExecutorProfile(ctx context.Context, id string, profile domain.ExecutorProfile) (*domain.User, error)
	// AdjustBalance atomically adds delta (which may be negative) to the
	// user's balance and returns the updated identity. A negative delta that
	// would take the balance below zero fails with
	// domain.ErrInsufficientBalance and changes nothing.
	AdjustBalance(ctx context.Context, id string, delta int64) (*domain.User, error)
}
