package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
	"github.com/opportunitycup/marketplace-api/pkg/logger"
)

const principalKey = "auth.principal"

// Authenticate requires a valid access token and attaches the principal.
// Failures are returned to the central error handler unchanged.
func Authenticate(gate ports.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := gate.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				logger.FromContext(c.Request().Context()).Debug().Err(err).Str("path", c.Path()).Msg("request rejected")
				return err
			}
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

// OptionalAuthenticate lets anonymous requests through but still rejects a
// credential that is present and invalid.
func OptionalAuthenticate(gate ports.Gate) echo.MiddlewareFunc {
	required := Authenticate(gate)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := required(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return withAuth(c)
		}
	}
}

// Principal returns the principal attached by Authenticate, if any.
func Principal(c echo.Context) (*domain.Principal, bool) {
	p, ok := c.Get(principalKey).(*domain.Principal)
	return p, ok && p != nil
}

// SetPrincipal attaches p to the request.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}
