package ports

import (
	"context"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// SignUpInput carries the registration request.
type SignUpInput struct {
	Email    string
	Password string
	Role     string
}

// SignInInput carries the login request.
type SignInInput struct {
	Email    string
	Password string
}

// AuthResult is returned by every operation that mints tokens. RefreshToken
// is empty when the operation does not rotate the refresh cookie.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, in SignInInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
}
