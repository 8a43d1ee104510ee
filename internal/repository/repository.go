package repository

import (
	"context"
	"time"

	"construction-sales-ledger/internal/domain"
)

// UnitRepository owns unit rows. Every state change is a conditional update
// on the unit's current sales status; the boolean results report whether the
// row matched.
type UnitRepository interface {
	Create(ctx context.Context, unit *domain.Unit) error
	GetByID(ctx context.Context, id string) (*domain.Unit, error)
	ListBySalesStatus(ctx context.Context, status domain.UnitSalesStatus) ([]domain.Unit, error)
	ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.Unit, error)

	// Reserve moves an available unit to reserved.
	Reserve(ctx context.Context, id, holderID string, expiresAt, now time.Time) (bool, error)
	// ExtendReservation moves the expiry of a reservation holderID still holds
	// unexpired at now.
	ExtendReservation(ctx context.Context, id, holderID string, expiresAt, now time.Time) (bool, error)
	// TouchReserved bumps updated_at of a reserved unit. Writers that depend on
	// the unit staying reserved call it to take the row lock.
	TouchReserved(ctx context.Context, id string, now time.Time) (bool, error)
	// ReleaseExpired moves a reserved unit whose reservation lapsed before now
	// back to available, unless a contract_signed or completed deal references it.
	ReleaseExpired(ctx context.Context, id string, now time.Time) (bool, error)
	// Release moves a reserved unit back to available unless a live deal references it.
	Release(ctx context.Context, id string, now time.Time) (bool, error)
	// MarkSold moves a reserved unit to sold.
	MarkSold(ctx context.Context, id string, now time.Time) (bool, error)
}

type DealRepository interface {
	Create(ctx context.Context, deal *domain.Deal) error
	GetByID(ctx context.Context, id string) (*domain.Deal, error)
	GetByPublicToken(ctx context.Context, token string) (*domain.Deal, error)
	ListByUnit(ctx context.Context, unitID string) ([]domain.Deal, error)
	ListByStatus(ctx context.Context, status domain.DealStatus, page, pageSize int32) ([]domain.Deal, int32, error)

	// Transition moves the deal to deal.Status if its stored status is one of from,
	// writing the transition timestamps and cancel reason carried by deal.
	Transition(ctx context.Context, deal *domain.Deal, from ...domain.DealStatus) (bool, error)
	// CancelLiveByUnit cancels every draft or reserved deal on the unit and
	// returns the ids it cancelled.
	CancelLiveByUnit(ctx context.Context, unitID, reason string, now time.Time) ([]string, error)
}

type InstallmentRepository interface {
	// CreateBatch inserts the whole schedule of one deal.
	CreateBatch(ctx context.Context, installments []domain.Installment) error
	GetByID(ctx context.Context, id string) (*domain.Installment, error)
	ListByDeal(ctx context.Context, dealID string) ([]domain.Installment, error)
	CountByDeal(ctx context.Context, dealID string) (int, error)
	ListDueBefore(ctx context.Context, before time.Time) ([]domain.Installment, error)

	// WaiveUnpaid marks pending and overdue installments of the deal waived.
	WaiveUnpaid(ctx context.Context, dealID string, now time.Time) (int64, error)
	// MarkOverdue reclassifies pending installments due before now.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	// ResolveMilestone sets the due date of pending placeholder installments linked to taskID.
	ResolveMilestone(ctx context.Context, taskID string, dueDate, now time.Time) (int64, error)
	// MarkPaid settles a pending or overdue installment.
	MarkPaid(ctx context.Context, id string, amount int64, method string, paidAt, now time.Time) (bool, error)
}

// WalletRepository mutates balances with single conditional updates. A false
// result means the guard (sufficient balance) did not hold or the wallet is missing.
type WalletRepository interface {
	Get(ctx context.Context, ownerID string) (*domain.Wallet, error)
	// Credit creates the wallet if needed and adds amount to pending and earned.
	Credit(ctx context.Context, ownerID string, amount int64, now time.Time) error
	Promote(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error)
	ReserveForPayout(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error)
	SettlePayout(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error)
	RefundPayout(ctx context.Context, ownerID string, amount int64, now time.Time) (bool, error)
}

// TransactionRepository is append-only.
type TransactionRepository interface {
	Append(ctx context.Context, tx *domain.Transaction) error
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int32) ([]domain.Transaction, int32, error)
	// ListAllByOwner returns the full stream in chronological order.
	ListAllByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error)
	FindByTask(ctx context.Context, taskID string, kind domain.TransactionKind) (*domain.Transaction, error)
}

type PayoutRepository interface {
	Create(ctx context.Context, payout *domain.Payout) error
	GetByID(ctx context.Context, id string) (*domain.Payout, error)
	ListByStatus(ctx context.Context, status domain.PayoutStatus, page, pageSize int32) ([]domain.Payout, int32, error)
	// Finalize moves a pending payout to payout.Status.
	Finalize(ctx context.Context, payout *domain.Payout) (bool, error)
}

type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.AuditEntry, error)
}

// Store groups the ledger repositories behind one transactional boundary.
type Store interface {
	Units() UnitRepository
	Deals() DealRepository
	Installments() InstallmentRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Payouts() PayoutRepository

	// WithTx runs fn against a Store bound to a single database transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
