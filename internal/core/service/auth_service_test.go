package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
	"github.com/opportunitycup/marketplace-api/internal/infrastructure/security"
)

type authFixture struct {
	svc         *AuthService
	repo        *stubUserRepo
	hasher      *stubHasher
	tokens      *security.TokenService
	revocations *stubRevocations
}

func newAuthFixture(t *testing.T, mask bool) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:        newStubUserRepo(),
		hasher:      &stubHasher{},
		tokens:      newTokens(t, nil),
		revocations: newStubRevocations(),
	}
	f.svc = NewAuthService(f.repo, f.hasher, f.tokens, f.tokens, f.revocations, AuthOptions{MaskLoginErrors: mask}, zerolog.Nop())
	return f
}

func (f *authFixture) signUp(t *testing.T, email, password, role string) *ports.AuthResult {
	t.Helper()
	res, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Email: email, Password: password, Role: role})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	return res
}

func TestAuthService_SignUp_Success(t *testing.T) {
	f := newAuthFixture(t, true)

	res := f.signUp(t, "alice@example.com", "password1", "")
	if res.User == nil || res.User.Role != domain.RoleCustomer {
		t.Fatalf("expected default customer role, got %+v", res.User)
	}
	if res.User.PasswordHash == "password1" {
		t.Fatalf("expected password to be hashed")
	}

	claims, err := f.tokens.VerifyAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.UserID != res.User.ID || claims.Role != domain.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := f.tokens.VerifyRefreshToken(res.RefreshToken); err != nil {
		t.Fatalf("refresh token invalid: %v", err)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	f := newAuthFixture(t, true)

	cases := []ports.SignUpInput{
		{Email: "", Password: "password1"},
		{Email: "a@example.com", Password: ""},
		{Email: "a@example.com", Password: "password1", Role: "admin"},
		// 42 runes but 84 bytes, past what bcrypt accepts.
		{Email: "a@example.com", Password: strings.Repeat("пароль", 7)},
	}
	for _, in := range cases {
		if _, err := f.svc.SignUp(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
	if f.hasher.calls != 0 {
		t.Fatalf("hasher should not run for invalid input")
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	f := newAuthFixture(t, true)

	f.signUp(t, "bob@example.com", "password1", domain.RoleExecutor)
	_, err := f.svc.SignUp(context.Background(), ports.SignUpInput{Email: "bob@example.com", Password: "password2"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	f := newAuthFixture(t, true)
	registered := f.signUp(t, "carol@example.com", "s3cret-pass", domain.RoleExecutor)

	res, err := f.svc.SignIn(context.Background(), ports.SignInInput{Email: "carol@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if res.User.ID != registered.User.ID {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	claims, err := f.tokens.VerifyAccessToken(res.AccessToken)
	if err != nil || claims.Role != domain.RoleExecutor {
		t.Fatalf("unexpected access token: claims=%+v err=%v", claims, err)
	}
}

func TestAuthService_SignIn_MaskedFailures(t *testing.T) {
	f := newAuthFixture(t, true)
	f.signUp(t, "dave@example.com", "goodpass1", "")

	_, err := f.svc.SignIn(context.Background(), ports.SignInInput{Email: "dave@example.com", Password: "badpass12"})
	if !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin for wrong password, got %v", err)
	}

	before := f.hasher.calls
	_, err = f.svc.SignIn(context.Background(), ports.SignInInput{Email: "ghost@example.com", Password: "whatever1"})
	if !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin for unknown email, got %v", err)
	}
	if f.hasher.calls == before {
		t.Fatalf("expected a decoy password check for unknown email")
	}
}

func TestAuthService_SignIn_UnmaskedFailures(t *testing.T) {
	f := newAuthFixture(t, false)
	f.signUp(t, "erin@example.com", "goodpass1", "")

	_, err := f.svc.SignIn(context.Background(), ports.SignInInput{Email: "erin@example.com", Password: "badpass12"})
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	_, err = f.svc.SignIn(context.Background(), ports.SignInInput{Email: "ghost@example.com", Password: "whatever1"})
	if !errors.Is(err, domain.ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestAuthService_SignIn_StoreFailureIsNotMasked(t *testing.T) {
	f := newAuthFixture(t, true)
	f.repo.findErr = errStore

	_, err := f.svc.SignIn(context.Background(), ports.SignInInput{Email: "a@example.com", Password: "password1"})
	if !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t, true)
	first := f.signUp(t, "frank@example.com", "password1", "")

	second, err := f.svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if second.AccessToken == "" || second.RefreshToken == "" || second.RefreshToken == first.RefreshToken {
		t.Fatalf("expected a fresh token pair, got %+v", second)
	}

	// The presented token is now spent.
	if _, err := f.svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected reused refresh token to fail, got %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), second.RefreshToken); err != nil {
		t.Fatalf("rotated refresh token should work: %v", err)
	}
}

func TestAuthService_Refresh_CarriesStoredRole(t *testing.T) {
	f := newAuthFixture(t, true)
	res := f.signUp(t, "gina@example.com", "password1", domain.RoleCustomer)
	if _, err := f.repo.UpdateRole(context.Background(), res.User.ID, domain.RoleExecutor); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	refreshed, err := f.svc.Refresh(context.Background(), res.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	claims, _ := f.tokens.VerifyAccessToken(refreshed.AccessToken)
	if claims == nil || claims.Role != domain.RoleExecutor {
		t.Fatalf("expected executor role from store, got %+v", claims)
	}
}

func TestAuthService_Refresh_Failures(t *testing.T) {
	f := newAuthFixture(t, true)
	res := f.signUp(t, "hank@example.com", "password1", "")

	if _, err := f.svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), res.AccessToken); !errors.Is(err, domain.ErrWrongTokenClass) {
		t.Fatalf("expected ErrWrongTokenClass for access token, got %v", err)
	}

	f.repo.delete(res.User.ID)
	if _, err := f.svc.Refresh(context.Background(), res.RefreshToken); !errors.Is(err, domain.ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestAuthService_Refresh_RevocationStoreDown(t *testing.T) {
	f := newAuthFixture(t, true)
	res := f.signUp(t, "ivy@example.com", "password1", "")
	f.revocations.err = errStore

	_, err := f.svc.Refresh(context.Background(), res.RefreshToken)
	if !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t, true)
	res := f.signUp(t, "jack@example.com", "password1", "")

	if err := f.svc.Logout(context.Background(), res.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), res.RefreshToken); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected logged-out token to be rejected, got %v", err)
	}

	for _, token := range []string{"", "garbage"} {
		if err := f.svc.Logout(context.Background(), token); err != nil {
			t.Fatalf("Logout(%q) should be a no-op, got %v", token, err)
		}
	}
}

func TestAuthService_Refresh_RevocationLivesUntilExpiry(t *testing.T) {
	f := newAuthFixture(t, true)
	res := f.signUp(t, "kim@example.com", "password1", "")

	if err := f.svc.Logout(context.Background(), res.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	claims, _ := f.tokens.VerifyRefreshToken(res.RefreshToken)
	until := f.revocations.until(claims.TokenID)
	if !until.Equal(claims.ExpiresAt) {
		t.Fatalf("expected revocation until %v, got %v", claims.ExpiresAt, until)
	}
	if time.Until(until) < 59*24*time.Hour {
		t.Fatalf("revocation window too short: %v", time.Until(until))
	}
}

func TestAuthService_Refresh_ConcurrentReplayIssuesOnce(t *testing.T) {
	f := newAuthFixture(t, true)
	res := f.signUp(t, "lena@example.com", "password1", "")
	f.revocations.delay = 2 * time.Millisecond

	const callers = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Refresh(context.Background(), res.RefreshToken)
			switch {
			case err == nil:
				successes.Add(1)
			case !errors.Is(err, domain.ErrInvalidCredential):
				t.Errorf("unexpected refresh error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh to succeed, got %d", got)
	}
}

func TestAuthService_SignIn_DecoyBuiltDespiteCancelledCaller(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.SignIn(ctx, ports.SignInInput{Email: "ghost@example.com", Password: "password1"})
	if !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
	if f.svc.decoyHash == "" {
		t.Fatalf("decoy hash should not depend on the first caller's context")
	}
}
