package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

// Gate decides who a request belongs to. Authenticate checks the credential
// without touching storage; Identity loads the user only when a caller needs
// more than the verified claims.
type Gate struct {
	verifier ports.TokenVerifier
	users    ports.UserRepository
}

func NewGate(verifier ports.TokenVerifier, users ports.UserRepository) *Gate {
	return &Gate{verifier: verifier, users: users}
}

// Authenticate accepts the raw Authorization header value, either the bare
// token or "Bearer <token>".
func (g *Gate) Authenticate(_ context.Context, credential string) (*domain.Principal, error) {
	token := credentialToken(credential)
	if token == "" {
		return nil, domain.ErrMissingCredential
	}

	claims, err := g.verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}
	return claims.Principal(), nil
}

func (g *Gate) Identity(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	if p == nil {
		return nil, domain.ErrMissingCredential
	}
	user, err := g.users.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownIdentity
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return user, nil
}

func credentialToken(header string) string {
	fields := strings.Fields(header)
	switch {
	case len(fields) == 0:
		return ""
	case strings.EqualFold(fields[0], "bearer"):
		if len(fields) == 1 {
			return ""
		}
		return strings.Join(fields[1:], " ")
	default:
		return strings.Join(fields, " ")
	}
}
