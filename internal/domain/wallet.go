package domain

import "time"

// Wallet is the materialised view of one worker's transaction stream.
//
// Ledger identity: Available + Pending + PayoutReserved + TotalWithdrawn == TotalEarned.
type Wallet struct {
	OwnerID        string    `json:"owner_id"`
	Available      int64     `json:"available_balance"`
	Pending        int64     `json:"pending_balance"`
	PayoutReserved int64     `json:"payout_reserved_balance"`
	TotalEarned    int64     `json:"total_earned"`
	TotalWithdrawn int64     `json:"total_withdrawn"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Balanced reports whether the ledger identity holds and no balance is negative.
func (w *Wallet) Balanced() bool {
	if w.Available < 0 || w.Pending < 0 || w.PayoutReserved < 0 || w.TotalEarned < 0 || w.TotalWithdrawn < 0 {
		return false
	}
	return w.Available+w.Pending+w.PayoutReserved+w.TotalWithdrawn == w.TotalEarned
}

type TransactionKind string

const (
	TransactionKindEarning        TransactionKind = "earning"
	TransactionKindPromotion      TransactionKind = "promotion"
	TransactionKindPayoutRequest  TransactionKind = "payout_request"
	TransactionKindPayoutPaid     TransactionKind = "payout_paid"
	TransactionKindPayoutRejected TransactionKind = "payout_rejected"
)

type Transaction struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Amount      int64           `json:"amount"` // signed, see Apply
	Kind        TransactionKind `json:"kind"`
	TaskID      *string         `json:"task_id,omitempty"`
	PayoutID    *string         `json:"payout_id,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Apply folds one transaction into w. Replaying an owner's stream in order
// from a zero wallet reproduces the stored balances.
func (w *Wallet) Apply(tx Transaction) {
	amount := tx.Amount
	if amount < 0 {
		amount = -amount
	}
	switch tx.Kind {
	case TransactionKindEarning:
		w.TotalEarned += amount
		w.Pending += amount
	case TransactionKindPromotion:
		w.Pending -= amount
		w.Available += amount
	case TransactionKindPayoutRequest:
		w.Available -= amount
		w.PayoutReserved += amount
	case TransactionKindPayoutPaid:
		w.PayoutReserved -= amount
		w.TotalWithdrawn += amount
	case TransactionKindPayoutRejected:
		w.PayoutReserved -= amount
		w.Available += amount
	}
}

// Replay builds a wallet for ownerID from its transactions in chronological order.
func Replay(ownerID string, txs []Transaction) Wallet {
	w := Wallet{OwnerID: ownerID}
	for _, tx := range txs {
		w.Apply(tx)
	}
	return w
}

// SameBalances compares every balance field of two wallets.
func (w *Wallet) SameBalances(o *Wallet) bool {
	return w.Available == o.Available &&
		w.Pending == o.Pending &&
		w.PayoutReserved == o.PayoutReserved &&
		w.TotalEarned == o.TotalEarned &&
		w.TotalWithdrawn == o.TotalWithdrawn
}
