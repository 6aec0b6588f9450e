package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/pkg/logger"
)

type stubGate struct {
	principal *domain.Principal
	err       error
	seen      string
}

func (g *stubGate) Authenticate(_ context.Context, credential string) (*domain.Principal, error) {
	g.seen = credential
	if credential == "" {
		return nil, domain.ErrMissingCredential
	}
	return g.principal, g.err
}

func (g *stubGate) Identity(context.Context, *domain.Principal) (*domain.User, error) {
	return nil, errors.New("not used")
}

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthenticate_ValidToken(t *testing.T) {
	gate := &stubGate{principal: &domain.Principal{UserID: "u-1", Role: domain.RoleCustomer}}
	c, rec := newContext("Bearer abc")

	called := false
	h := Authenticate(gate)(func(c echo.Context) error {
		called = true
		p, ok := Principal(c)
		if !ok || p.UserID != "u-1" || p.Role != domain.RoleCustomer {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if gate.seen != "Bearer abc" {
		t.Fatalf("gate got %q", gate.seen)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	c, _ := newContext("")

	h := Authenticate(&stubGate{})(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})

	if err := h(c); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	gate := &stubGate{err: &domain.VerificationError{Class: domain.TokenClassAccess, Reason: domain.ReasonSignature}}
	c, _ := newContext("tampered")

	h := Authenticate(gate)(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})

	if err := h(c); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if _, ok := Principal(c); ok {
		t.Fatalf("principal must not be set on failure")
	}
}

func TestOptionalAuthenticate_Anonymous(t *testing.T) {
	c, _ := newContext("")

	called := false
	h := OptionalAuthenticate(&stubGate{})(func(c echo.Context) error {
		called = true
		if _, ok := Principal(c); ok {
			t.Fatalf("anonymous request must not carry a principal")
		}
		return nil
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestOptionalAuthenticate_PresentButInvalid(t *testing.T) {
	gate := &stubGate{err: &domain.VerificationError{Class: domain.TokenClassAccess, Reason: domain.ReasonExpired}}
	c, _ := newContext("expired-token")

	h := OptionalAuthenticate(gate)(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})

	if err := h(c); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAuthenticate_RejectionIsLoggedWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "debug", Output: &buf})
	c, _ := newContext("tampered")
	c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), l)))

	gate := &stubGate{err: &domain.VerificationError{Class: domain.TokenClassAccess, Reason: domain.ReasonSignature}}
	h := Authenticate(gate)(func(c echo.Context) error {
		t.Fatalf("next should not be called")
		return nil
	})

	if err := h(c); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if !strings.Contains(buf.String(), "request rejected") {
		t.Fatalf("expected rejection in request log, got %q", buf.String())
	}
}
