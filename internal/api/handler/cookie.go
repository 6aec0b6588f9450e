package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/pkg/config"
)

// RefreshCookie describes the cookie that carries the refresh token.
type RefreshCookie struct {
	Name     string
	Path     string
	Domain   string
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// NewRefreshCookie builds the cookie settings from configuration.
func NewRefreshCookie(cfg config.CookieConfig) RefreshCookie {
	return RefreshCookie{
		Name:     cfg.Name,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		HTTPOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSiteMode(),
		MaxAge:   cfg.MaxAge,
	}
}

// DefaultRefreshCookie is refreshToken, HttpOnly, Secure, SameSite=None,
// Path=/, kept for 60 days.
func DefaultRefreshCookie() RefreshCookie {
	return RefreshCookie{
		Name:     "refreshToken",
		Path:     "/",
		HTTPOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   60 * 24 * time.Hour,
	}
}

func (rc RefreshCookie) set(c echo.Context, token string) {
	c.SetCookie(rc.build(token, int(rc.MaxAge/time.Second)))
}

func (rc RefreshCookie) clear(c echo.Context) {
	c.SetCookie(rc.build("", -1))
}

func (rc RefreshCookie) read(c echo.Context) string {
	ck, err := c.Cookie(rc.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (rc RefreshCookie) build(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     rc.Name,
		Value:    value,
		Path:     rc.Path,
		Domain:   rc.Domain,
		MaxAge:   maxAge,
		HttpOnly: rc.HTTPOnly,
		Secure:   rc.Secure,
		SameSite: rc.SameSite,
	}
}
