package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/opportunitycup/marketplace-api/internal/api/metrics"
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

type userService struct {
	users  ports.UserRepository
	gate   ports.Gate
	issuer ports.TokenIssuer
	log    zerolog.Logger
}

// NewUserService returns a UserService implementation. The caller's own
// record is always loaded through gate.
func NewUserService(users ports.UserRepository, gate ports.Gate, issuer ports.TokenIssuer, log zerolog.Logger) ports.UserService {
	return &userService{users: users, gate: gate, issuer: issuer, log: log}
}

func (s *userService) Profile(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	return s.gate.Identity(ctx, p)
}

// PublicProfile hides email and balance unless the viewer is the user.
func (s *userService) PublicProfile(ctx context.Context, viewer *domain.Principal, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("public profile: %w", err)
	}

	out := *user
	out.PasswordHash = ""
	if viewer == nil || viewer.UserID != user.ID {
		out.Email = ""
		out.Balance = 0
	}
	return &out, nil
}

func (s *userService) ChangeRole(ctx context.Context, p *domain.Principal, role string) (res *ports.AuthResult, err error) {
	defer func() { metrics.ObserveAuth("change_role", err) }()

	if p == nil {
		return nil, domain.ErrMissingCredential
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.UpdateRole(ctx, p.UserID, role)
	if err != nil {
		return nil, identityErr("change role", err)
	}

	token, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("from", p.Role).Str("to", role).Msg("role changed")
	return &ports.AuthResult{AccessToken: token, User: user}, nil
}

func (s *userService) UpdateLogo(ctx context.Context, p *domain.Principal, logo string) (*domain.User, error) {
	if p == nil {
		return nil, domain.ErrMissingCredential
	}
	user, err := s.users.UpdateLogo(ctx, p.UserID, logo)
	if err != nil {
		return nil, identityErr("update logo", err)
	}
	return user, nil
}

// UpdateExecutorProfile re-reads the caller before merging, since the
// stored profile, not the token, is the source of the current values.
func (s *userService) UpdateExecutorProfile(ctx context.Context, p *domain.Principal, upd domain.ExecutorProfileUpdate) (*domain.User, error) {
	if p == nil {
		return nil, domain.ErrMissingCredential
	}
	if !p.HasRole(domain.RoleExecutor) {
		return nil, domain.ErrForbidden
	}
	if !upd.Valid() {
		return nil, domain.ErrInvalidInput
	}

	current, err := s.gate.Identity(ctx, p)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateExecutorProfile(ctx, current.ID, upd.Apply(current.Executor))
	if err != nil {
		return nil, identityErr("update executor profile", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("executor profile updated")
	return user, nil
}

// identityErr maps a missing user behind a verified token to
// ErrUnknownIdentity.
func identityErr(op string, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUnknownIdentity
	}
	return fmt.Errorf("%s: %w", op, err)
}
