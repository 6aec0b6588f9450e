package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/opportunitycup/marketplace-api/internal/api/metrics"
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// ErrTokenConfig is returned by NewTokenService for unusable settings.
var ErrTokenConfig = errors.New("invalid token configuration")

const resultOK = "ok"

// TokenConfig holds the signing settings for both token classes.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

type accessTokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type refreshTokenClaims struct {
	UserID string `json:"userId"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access and refresh tokens. Each class
// has its own secret so a token of one class never verifies as the other.
type TokenService struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	parser    *jwt.Parser
	sigParser *jwt.Parser
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	switch {
	case cfg.AccessSecret == "" || cfg.RefreshSecret == "":
		return nil, fmt.Errorf("%w: both secrets are required", ErrTokenConfig)
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrTokenConfig)
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, fmt.Errorf("%w: token lifetimes must be positive", ErrTokenConfig)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	methods := jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})
	return &TokenService{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        now,
		parser: jwt.NewParser(
			methods,
			jwt.WithStrictDecoding(),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(time.Second),
			jwt.WithTimeFunc(now),
		),
		sigParser: jwt.NewParser(methods, jwt.WithStrictDecoding(), jwt.WithoutClaimsValidation()),
	}, nil
}

// IssueAccessToken mints a token that expires AccessTTL from now.
func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	now := s.now()
	claims := accessTokenClaims{
		UserID:           user.ID,
		Role:             user.Role,
		Type:             string(domain.TokenClassAccess),
		RegisteredClaims: s.registered(user.ID, now, s.accessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessKey)
}

// IssueRefreshToken mints a token that expires RefreshTTL from now and
// returns its claims so callers can track the token id.
func (s *TokenService) IssueRefreshToken(user *domain.User) (string, *domain.RefreshClaims, error) {
	now := s.now()
	claims := refreshTokenClaims{
		UserID:           user.ID,
		Type:             string(domain.TokenClassRefresh),
		RegisteredClaims: s.registered(user.ID, now, s.refreshTTL),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshKey)
	if err != nil {
		return "", nil, err
	}
	return signed, &domain.RefreshClaims{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) VerifyAccessToken(token string) (*domain.AccessClaims, error) {
	var claims accessTokenClaims
	if err := s.verify(token, &claims, domain.TokenClassAccess); err != nil {
		return nil, err
	}

	var reason domain.FailureReason
	switch {
	case claims.Type != string(domain.TokenClassAccess):
		reason = domain.ReasonWrongClass
	case claims.UserID == "" || !domain.ValidRole(claims.Role):
		reason = domain.ReasonClaims
	}
	if reason != "" {
		return nil, s.reject(domain.TokenClassAccess, reason, nil)
	}

	observe(domain.TokenClassAccess, resultOK)
	return &domain.AccessClaims{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) VerifyRefreshToken(token string) (*domain.RefreshClaims, error) {
	var claims refreshTokenClaims
	if err := s.verify(token, &claims, domain.TokenClassRefresh); err != nil {
		return nil, err
	}

	var reason domain.FailureReason
	switch {
	case claims.Type != string(domain.TokenClassRefresh):
		reason = domain.ReasonWrongClass
	case claims.UserID == "" || claims.ID == "":
		reason = domain.ReasonClaims
	}
	if reason != "" {
		return nil, s.reject(domain.TokenClassRefresh, reason, nil)
	}

	observe(domain.TokenClassRefresh, resultOK)
	return &domain.RefreshClaims{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// verify parses token into claims with the key of class. A signature failure
// is reported as wrong_class when the other class's key does verify it.
func (s *TokenService) verify(token string, claims jwt.Claims, class domain.TokenClass) error {
	key, otherKey := s.keys(class)

	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return key, nil })
	if err == nil {
		// The parser treats exp as exclusive; a token is still valid at the
		// exp instant itself, so the leeway above is cut back to exactly exp.
		if exp, _ := claims.GetExpirationTime(); exp != nil && s.now().After(exp.Time) {
			return s.reject(class, domain.ReasonExpired, jwt.ErrTokenExpired)
		}
		return nil
	}

	reason := classify(err)
	if reason == domain.ReasonSignature {
		if _, otherErr := s.sigParser.Parse(token, func(*jwt.Token) (any, error) { return otherKey, nil }); otherErr == nil {
			reason = domain.ReasonWrongClass
		}
	}
	return s.reject(class, reason, err)
}

func (s *TokenService) keys(class domain.TokenClass) (own, other []byte) {
	if class == domain.TokenClassRefresh {
		return s.refreshKey, s.accessKey
	}
	return s.accessKey, s.refreshKey
}

func (s *TokenService) reject(class domain.TokenClass, reason domain.FailureReason, cause error) error {
	observe(class, string(reason))
	return &domain.VerificationError{Class: class, Reason: reason, Cause: cause}
}

func classify(err error) domain.FailureReason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ReasonSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ReasonExpired
	default:
		return domain.ReasonClaims
	}
}

func observe(class domain.TokenClass, result string) {
	metrics.TokenVerificationsTotal.WithLabelValues(string(class), result).Inc()
}
