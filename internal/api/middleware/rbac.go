package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// RequireRole enforces role-based access control using the verified
// principal. It must run after Authenticate.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return domain.ErrMissingCredential
			}
			if !p.HasRole(allowedRoles...) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
