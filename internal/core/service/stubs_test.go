package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/infrastructure/security"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[created.ID] = created
	return cloneUser(created), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) mutate(id string, fn func(*domain.User) error) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id, role string) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) error { u.Role = role; return nil })
}

func (r *stubUserRepo) UpdateLogo(_ context.Context, id, logo string) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) error { u.Logo = logo; return nil })
}

func (r *stubUserRepo) UpdateExecutorProfile(_ context.Context, id string, profile domain.ExecutorProfile) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) error { u.Executor = profile; return nil })
}

func (r *stubUserRepo) AdjustBalance(_ context.Context, id string, delta int64) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) error {
		if u.Balance+delta < 0 {
			return domain.ErrInsufficientBalance
		}
		u.Balance += delta
		return nil
	})
}

func (r *stubUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// stubHasher avoids bcrypt cost in service tests.
type stubHasher struct {
	calls int
	err   error
}

func (h *stubHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "hashed:" + plaintext, nil
}

func (h *stubHasher) Verify(_ context.Context, plaintext, hash string) (bool, error) {
	h.calls++
	if h.err != nil {
		return false, h.err
	}
	return hash == "hashed:"+plaintext, nil
}

// stubRevocations claims ids under a lock. delay widens the window between
// a caller arriving and its claim landing, the way a network round trip does.
type stubRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
	delay   time.Duration
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Time)}
}

func (s *stubRevocations) Revoke(_ context.Context, id string, until time.Time) (bool, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.revoked[id]; ok {
		return false, nil
	}
	s.revoked[id] = until
	return true, nil
}

func (s *stubRevocations) until(id string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[id]
}

type stubLedger struct {
	insertErr error
	inserted  []*domain.BalanceOperation
	total     int64
	lastPage  int
	lastLimit int
}

func (l *stubLedger) Insert(_ context.Context, op *domain.BalanceOperation) error {
	if l.insertErr != nil {
		return l.insertErr
	}
	l.inserted = append(l.inserted, op)
	return nil
}

func (l *stubLedger) ListByUser(_ context.Context, userID string, page, limit int) ([]domain.BalanceOperation, int64, error) {
	l.lastPage, l.lastLimit = page, limit
	var out []domain.BalanceOperation
	for _, op := range l.inserted {
		if op.UserID == userID {
			out = append(out, *op)
		}
	}
	total := l.total
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

var errStore = errors.New("store unavailable")

// countingGate records how often services load the caller's identity.
type countingGate struct {
	*Gate
	identities int
}

func (g *countingGate) Identity(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	g.identities++
	return g.Gate.Identity(ctx, p)
}

func newTokens(t *testing.T, now func() time.Time) *security.TokenService {
	t.Helper()
	tokens, err := security.NewTokenService(security.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    60 * 24 * time.Hour,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return tokens
}
