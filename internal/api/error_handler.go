package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable maps known domain errors to a status and a client-safe message.
// The first matching entry wins.
var errorTable = []errorMapping{
	{domain.ErrMissingCredential, http.StatusPaymentRequired, "authentication required"},
	{domain.ErrWrongTokenClass, http.StatusUnauthorized, "not authorized"},
	{domain.ErrInvalidCredential, http.StatusUnauthorized, "not authorized"},
	{domain.ErrUnknownIdentity, http.StatusUnauthorized, "user does not exist"},
	{domain.ErrInvalidLogin, http.StatusUnauthorized, "invalid email or password"},
	{domain.ErrPasswordMismatch, http.StatusBadRequest, "wrong password"},
	{domain.ErrUserExists, http.StatusConflict, "user with this email already exists"},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrInsufficientBalance, http.StatusConflict, "insufficient balance"},
	{domain.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid input"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors through errorTable.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			log.Debug().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", m.status).
				Msg("request failed")
			return m.status, m.message
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
