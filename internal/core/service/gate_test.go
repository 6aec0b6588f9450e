package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

func TestGate_Authenticate_MissingCredential(t *testing.T) {
	gate := NewGate(newTokens(t, nil), newStubUserRepo())

	for _, header := range []string{"", "   ", "Bearer ", "bearer"} {
		if _, err := gate.Authenticate(context.Background(), header); !errors.Is(err, domain.ErrMissingCredential) {
			t.Fatalf("header %q: expected ErrMissingCredential, got %v", header, err)
		}
	}
}

func TestGate_Authenticate_AcceptsBareAndBearer(t *testing.T) {
	tokens := newTokens(t, nil)
	gate := NewGate(tokens, newStubUserRepo())
	token, _ := tokens.IssueAccessToken(&domain.User{ID: "u-1", Role: domain.RoleExecutor})

	for _, header := range []string{token, "Bearer " + token, "bearer " + token} {
		p, err := gate.Authenticate(context.Background(), header)
		if err != nil {
			t.Fatalf("header %q: unexpected error %v", header, err)
		}
		if p.UserID != "u-1" || p.Role != domain.RoleExecutor {
			t.Fatalf("unexpected principal: %+v", p)
		}
	}
}

func TestGate_Authenticate_RejectsInvalid(t *testing.T) {
	tokens := newTokens(t, nil)
	gate := NewGate(tokens, newStubUserRepo())
	refresh, _, _ := tokens.IssueRefreshToken(&domain.User{ID: "u-1", Role: domain.RoleCustomer})

	if _, err := gate.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if _, err := gate.Authenticate(context.Background(), refresh); !errors.Is(err, domain.ErrWrongTokenClass) {
		t.Fatalf("expected ErrWrongTokenClass for refresh token, got %v", err)
	}
}

func TestGate_Authenticate_Expired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	tokens := newTokens(t, clock)
	gate := NewGate(tokens, newStubUserRepo())
	token, _ := tokens.IssueAccessToken(&domain.User{ID: "u-1", Role: domain.RoleCustomer})

	now = now.Add(16 * time.Minute)
	if _, err := gate.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for expired token, got %v", err)
	}
}

func TestGate_Identity(t *testing.T) {
	repo := newStubUserRepo()
	gate := NewGate(newTokens(t, nil), repo)
	user, _ := repo.Create(context.Background(), &domain.User{Email: "a@example.com", Role: domain.RoleCustomer})

	got, err := gate.Identity(context.Background(), &domain.Principal{UserID: user.ID, Role: user.Role})
	if err != nil {
		t.Fatalf("Identity returned error: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	repo.delete(user.ID)
	if _, err := gate.Identity(context.Background(), &domain.Principal{UserID: user.ID}); !errors.Is(err, domain.ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestGate_Identity_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errStore
	gate := NewGate(newTokens(t, nil), repo)

	_, err := gate.Identity(context.Background(), &domain.Principal{UserID: "u-1"})
	if !errors.Is(err, errStore) || errors.Is(err, domain.ErrUnknownIdentity) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
