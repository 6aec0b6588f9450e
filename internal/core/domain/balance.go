package domain

import "time"

// BalanceOperationKind is the direction of a balance change.
type BalanceOperationKind string

const (
	BalanceTopUp    BalanceOperationKind = "topup"
	BalanceDecrease BalanceOperationKind = "decrease"
)

// Reason recorded alongside each operation kind.
const (
	ReasonTopUp      = "balance top-up"
	ReasonWithdrawal = "withdrawal"
)

// BalanceOperation is an append-only record of a single balance change.
type BalanceOperation struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Kind      BalanceOperationKind `json:"kind"`
	Sum       int64                `json:"sum"`
	Reason    string               `json:"reason"`
	CreatedAt time.Time            `json:"created_at"`
}

// Delta returns the signed amount the operation applies to a balance.
func (o BalanceOperation) Delta() int64 {
	if o.Kind == BalanceDecrease {
		return -o.Sum
	}
	return o.Sum
}
