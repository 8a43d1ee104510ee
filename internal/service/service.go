package service

import (
	"context"
	"time"

	"construction-sales-ledger/internal/domain"
)

type ReservationService interface {
	Reserve(ctx context.Context, unitID, holderID string, duration time.Duration) (*domain.Unit, error)
	ReleaseExpired(ctx context.Context) ([]string, error) // ids of released units
	Release(ctx context.Context, actorID, unitID string) (*domain.Unit, error)
	GetUnit(ctx context.Context, unitID string) (*domain.Unit, error)
}

type DealService interface {
	CreateDeal(ctx context.Context, req CreateDealRequest) (*domain.Deal, error)
	SignContract(ctx context.Context, actorID, dealID string) (*domain.Deal, error)
	Complete(ctx context.Context, actorID, dealID string) (*domain.Deal, error)
	Cancel(ctx context.Context, actorID, dealID, reason string) (*domain.Deal, error)
	GetDeal(ctx context.Context, dealID string) (*domain.Deal, error)
	GetDealByToken(ctx context.Context, token string) (*domain.Deal, []domain.Installment, error)
	ListDealsByUnit(ctx context.Context, unitID string) ([]domain.Deal, error)
	ListDealsByStatus(ctx context.Context, status domain.DealStatus, page, pageSize int32) ([]domain.Deal, int32, error)
}

type InstallmentService interface {
	Generate(ctx context.Context, actorID, dealID string, plan PlanRequest) ([]domain.Installment, error)
	ResolveMilestone(ctx context.Context, taskID string, completedAt time.Time) (int64, error)
	MarkOverdue(ctx context.Context) (int64, error)
	RecordPayment(ctx context.Context, actorID, installmentID string, amount int64, method string, paidAt time.Time) (*domain.Installment, error)
	ListInstallments(ctx context.Context, dealID string) ([]domain.Installment, error)
}

type WalletService interface {
	Credit(ctx context.Context, ownerID string, amount int64, taskID *string, description string) (*domain.Transaction, error)
	PromoteToAvailable(ctx context.Context, actorID, ownerID string, amount int64) (*domain.Transaction, error)
	PromoteTask(ctx context.Context, taskID string) (*domain.Transaction, error)
	GetWallet(ctx context.Context, ownerID string) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, ownerID string, page, pageSize int32) ([]domain.Transaction, int32, error)
	Verify(ctx context.Context, ownerID string) (*WalletVerification, error)
}

type PayoutService interface {
	RequestPayout(ctx context.Context, ownerID string, amount int64, method string) (*domain.Payout, error)
	Process(ctx context.Context, payoutID string, action domain.PayoutAction, processorID, note string) (*domain.Payout, error)
	GetPayout(ctx context.Context, payoutID string) (*domain.Payout, error)
	ListPayoutsByStatus(ctx context.Context, status domain.PayoutStatus, page, pageSize int32) ([]domain.Payout, int32, error)
}

// TaskEventService receives lifecycle events from the task subsystem.
type TaskEventService interface {
	TaskApproved(ctx context.Context, ownerID string, amount int64, taskID, description string) (*domain.Transaction, error)
	TaskFinalApproved(ctx context.Context, taskID string) (*domain.Transaction, error)
	MilestoneCompleted(ctx context.Context, taskID string, completedAt time.Time) (int64, error)
}

// AuditRecorder accepts audit entries after the primary change has committed.
// Implementations must not block the caller or report failures to it.
type AuditRecorder interface {
	Record(ctx context.Context, actorID string, action domain.AuditAction, entityType, entityID string, before, after any)
}

// Clock returns the current time. Services store it in UTC.
type Clock func() time.Time

func utcClock(c Clock) Clock {
	if c == nil {
		c = time.Now
	}
	return func() time.Time { return c().UTC() }
}

type CreateDealRequest struct {
	UnitID      string
	LeadID      string
	ActorID     string
	FinalPrice  int64
	DownPayment int64
	Discount    int64
	PlanKind    domain.PaymentPlanKind
}

// PlanRequest carries the schedule parameters of the deal's plan kind.
// Count and FirstDueDate apply to monthly plans, Milestones to
// construction-linked plans, FirstDueDate alone to cash plans.
type PlanRequest struct {
	Count        int
	FirstDueDate time.Time
	Milestones   []domain.Milestone
}

type WalletVerification struct {
	Stored     domain.Wallet `json:"stored"`
	Replayed   domain.Wallet `json:"replayed"`
	Consistent bool          `json:"consistent"` // stored balances equal the replay
	Balanced   bool          `json:"balanced"`   // ledger identity holds on the stored wallet
}

// PromotionPolicy decides when earned money moves from pending to available.
type PromotionPolicy string

const (
	PromoteImmediately     PromotionPolicy = "immediate"
	PromoteOnFinalApproval PromotionPolicy = "final_approval"
)

func (p PromotionPolicy) Valid() bool {
	return p == PromoteImmediately || p == PromoteOnFinalApproval
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, string, domain.AuditAction, string, string, any, any) {}

func recorderOrNoop(r AuditRecorder) AuditRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
