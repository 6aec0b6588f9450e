package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/api/middleware"
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// ctxPrincipal returns the principal the Authenticate middleware attached.
// A route wired without that middleware fails closed.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return nil, domain.ErrMissingCredential
	}
	return p, nil
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
