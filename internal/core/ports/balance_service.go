package ports

import (
	"context"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// BalanceHistory is one page of the caller's balance ledger.
type BalanceHistory struct {
	Balance    int64
	Operations []domain.BalanceOperation
	Page       int
	TotalPages int
}

// BalanceService mutates and reports balances. Role checks use the verified
// principal only.
type BalanceService interface {
	TopUp(ctx context.Context, p *domain.Principal, sum int64) (*domain.User, error)
	Decrease(ctx context.Context, p *domain.Principal, sum int64) (*domain.User, error)
	History(ctx context.Context, p *domain.Principal, page int) (*BalanceHistory, error)
}
