package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opportunitycup/marketplace-api/internal/api/metrics"
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

// HistoryPageSize is the fixed number of ledger entries per history page.
const HistoryPageSize = 15

type balanceService struct {
	users  ports.UserRepository
	ledger ports.BalanceRepository
	gate   ports.Gate
	log    zerolog.Logger
	now    func() time.Time
}

// NewBalanceService returns a BalanceService implementation.
func NewBalanceService(users ports.UserRepository, ledger ports.BalanceRepository, gate ports.Gate, log zerolog.Logger) ports.BalanceService {
	return &balanceService{users: users, ledger: ledger, gate: gate, log: log, now: time.Now}
}

// TopUp is available to customers only.
func (s *balanceService) TopUp(ctx context.Context, p *domain.Principal, sum int64) (*domain.User, error) {
	if !p.HasRole(domain.RoleCustomer) {
		return nil, domain.ErrForbidden
	}
	return s.apply(ctx, p, domain.BalanceTopUp, domain.ReasonTopUp, sum)
}

// Decrease is available to executors only.
func (s *balanceService) Decrease(ctx context.Context, p *domain.Principal, sum int64) (*domain.User, error) {
	if !p.HasRole(domain.RoleExecutor) {
		return nil, domain.ErrForbidden
	}
	return s.apply(ctx, p, domain.BalanceDecrease, domain.ReasonWithdrawal, sum)
}

func (s *balanceService) apply(ctx context.Context, p *domain.Principal, kind domain.BalanceOperationKind, reason string, sum int64) (*domain.User, error) {
	if sum <= 0 {
		return nil, domain.ErrInvalidInput
	}

	op := &domain.BalanceOperation{
		UserID:    p.UserID,
		Kind:      kind,
		Sum:       sum,
		Reason:    reason,
		CreatedAt: s.now().UTC(),
	}

	// 1. Atomically move the balance.
	user, err := s.users.AdjustBalance(ctx, p.UserID, op.Delta())
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, err
		}
		return nil, identityErr("balance "+string(kind), err)
	}

	// 2. Record in the ledger (non-fatal on failure).
	if err := s.ledger.Insert(ctx, op); err != nil {
		s.log.Warn().Err(err).Str("user_id", p.UserID).Str("kind", string(kind)).Int64("sum", sum).Msg("failed to record balance operation")
	}

	metrics.BalanceOperationsTotal.WithLabelValues(string(kind)).Inc()
	metrics.BalanceAmountTotal.WithLabelValues(string(kind)).Add(float64(sum))

	s.log.Info().
		Str("user_id", p.UserID).
		Str("kind", string(kind)).
		Int64("sum", sum).
		Int64("balance", user.Balance).
		Msg("balance updated")

	return user, nil
}

func (s *balanceService) History(ctx context.Context, p *domain.Principal, page int) (*ports.BalanceHistory, error) {
	if page < 1 {
		page = 1
	}

	user, err := s.gate.Identity(ctx, p)
	if err != nil {
		return nil, err
	}

	ops, total, err := s.ledger.ListByUser(ctx, user.ID, page, HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("balance history: %w", err)
	}

	return &ports.BalanceHistory{
		Balance:    user.Balance,
		Operations: ops,
		Page:       page,
		TotalPages: int((total + HistoryPageSize - 1) / HistoryPageSize),
	}, nil
}
