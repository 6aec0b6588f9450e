package ports

import (
	"context"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
)

// BalanceRepository persists the balance operation ledger.
type BalanceRepository interface {
	Insert(ctx context.Context, op *domain.BalanceOperation) error
	// ListByUser returns one page of operations, newest first, and the total
	// number of operations for the user. Page is 1-based.
	ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.BalanceOperation, int64, error)
}
