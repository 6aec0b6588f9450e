package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/opportunitycup/marketplace-api/internal/api/metrics"
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

// AuthOptions tunes AuthService behaviour.
type AuthOptions struct {
	// MaskLoginErrors collapses unknown-email and wrong-password sign-in
	// failures into domain.ErrInvalidLogin.
	MaskLoginErrors bool
}

// AuthService implements registration, login and the refresh token lifecycle.
type AuthService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	issuer      ports.TokenIssuer
	verifier    ports.TokenVerifier
	revocations ports.RevocationStore
	opts        AuthOptions
	log         zerolog.Logger

	decoyMu   sync.Mutex
	decoyHash string
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	verifier ports.TokenVerifier,
	revocations ports.RevocationStore,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		issuer:      issuer,
		verifier:    verifier,
		revocations: revocations,
		opts:        opts,
		log:         log,
	}
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (res *ports.AuthResult, err error) {
	defer func() { metrics.ObserveAuth("signup", err) }()

	email := strings.TrimSpace(in.Email)
	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if email == "" || in.Password == "" || len(in.Password) > domain.MaxPasswordBytes || !domain.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return s.issuePair(user)
}

func (s *AuthService) SignIn(ctx context.Context, in ports.SignInInput) (res *ports.AuthResult, err error) {
	defer func() { metrics.ObserveAuth("signin", err) }()

	if strings.TrimSpace(in.Email) == "" || in.Password == "" || len(in.Password) > domain.MaxPasswordBytes {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("sign in: %w", err)
		}
		if s.opts.MaskLoginErrors {
			// Spend the same bcrypt time as a real check so response timing
			// does not reveal which emails are registered.
			_, _ = s.hasher.Verify(ctx, in.Password, s.decoy(ctx))
			return nil, domain.ErrInvalidLogin
		}
		return nil, domain.ErrUnknownIdentity
	}

	ok, err := s.hasher.Verify(ctx, in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if !ok {
		s.log.Debug().Str("user_id", user.ID).Msg("password mismatch")
		if s.opts.MaskLoginErrors {
			return nil, domain.ErrInvalidLogin
		}
		return nil, domain.ErrPasswordMismatch
	}

	return s.issuePair(user)
}

// Refresh exchanges a valid, unrevoked refresh token for a new pair. The
// presented token id is claimed in the revocation store before anything is
// issued, so a token can be exchanged at most once even under concurrent use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (res *ports.AuthResult, err error) {
	defer func() { metrics.ObserveAuth("refresh", err) }()

	if refreshToken == "" {
		return nil, domain.ErrMissingCredential
	}

	claims, err := s.verifier.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	first, err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !first {
		s.log.Warn().Str("user_id", claims.UserID).Str("jti", claims.TokenID).Msg("revoked refresh token presented")
		return nil, fmt.Errorf("refresh token revoked: %w", domain.ErrInvalidCredential)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownIdentity
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return s.issuePair(user)
}

// Logout revokes the presented refresh token. Missing, invalid or already
// revoked tokens are not an error; there is nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { metrics.ObserveAuth("logout", err) }()

	if refreshToken == "" {
		return nil
	}
	claims, verr := s.verifier.VerifyRefreshToken(refreshToken)
	if verr != nil {
		s.log.Debug().Err(verr).Msg("logout with unusable refresh token")
		return nil
	}
	if _, err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) issuePair(user *domain.User) (*ports.AuthResult, error) {
	access, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, _, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &ports.AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// decoy returns a hash for unknown-email sign-ins to verify against. It is
// built detached from the caller's cancellation and retried until it exists.
func (s *AuthService) decoy(ctx context.Context) string {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()
	if s.decoyHash != "" {
		return s.decoyHash
	}
	hash, err := s.hasher.Hash(context.WithoutCancel(ctx), "decoy-password-for-timing")
	if err != nil {
		s.log.Warn().Err(err).Msg("decoy hash unavailable")
		return ""
	}
	s.decoyHash = hash
	return hash
}
