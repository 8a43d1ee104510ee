package grpc

import (
	"time"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/service"
)

type Empty struct{}

type CountResponse struct {
	Count int64 `json:"count"`
}

// Reservations

type ReserveRequest struct {
	UnitID          string `json:"unit_id"`
	HolderID        string `json:"holder_id,omitempty"` // defaults to the caller
	DurationSeconds int64  `json:"duration_seconds"`
}

type UnitRequest struct {
	UnitID string `json:"unit_id"`
}

type UnitResponse struct {
	Unit *domain.Unit `json:"unit"`
}

type ReleaseExpiredResponse struct {
	UnitIDs []string `json:"unit_ids"`
}

// Deals

type CreateDealRequest struct {
	UnitID      string                 `json:"unit_id"`
	LeadID      string                 `json:"lead_id"`
	FinalPrice  int64                  `json:"final_price"`
	DownPayment int64                  `json:"down_payment"`
	Discount    int64                  `json:"discount"`
	PlanKind    domain.PaymentPlanKind `json:"plan_kind"`
}

type DealRequest struct {
	DealID string `json:"deal_id"`
}

type CancelDealRequest struct {
	DealID string `json:"deal_id"`
	Reason string `json:"reason"`
}

type DealByTokenRequest struct {
	Token string `json:"token"`
}

type DealResponse struct {
	Deal *domain.Deal `json:"deal"`
}

type PublicDealResponse struct {
	Deal         *domain.Deal         `json:"deal"`
	Installments []domain.Installment `json:"installments"`
}

type ListDealsByStatusRequest struct {
	Status   domain.DealStatus `json:"status"`
	Page     int32             `json:"page"`
	PageSize int32             `json:"page_size"`
}

type ListDealsResponse struct {
	Deals      []domain.Deal `json:"deals"`
	TotalCount int32         `json:"total_count"`
}

// Installments

type GenerateInstallmentsRequest struct {
	DealID       string             `json:"deal_id"`
	Count        int                `json:"count,omitempty"`
	FirstDueDate time.Time          `json:"first_due_date,omitempty"`
	Milestones   []domain.Milestone `json:"milestones,omitempty"`
}

type InstallmentsResponse struct {
	Installments []domain.Installment `json:"installments"`
}

type RecordPaymentRequest struct {
	InstallmentID string    `json:"installment_id"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	PaidAt        time.Time `json:"paid_at,omitempty"`
}

type InstallmentResponse struct {
	Installment *domain.Installment `json:"installment"`
}

// Wallets

type WalletRequest struct {
	OwnerID string `json:"owner_id,omitempty"` // defaults to the caller
}

type WalletResponse struct {
	Wallet *domain.Wallet `json:"wallet"`
}

type ListTransactionsRequest struct {
	OwnerID  string `json:"owner_id,omitempty"`
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
}

type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	TotalCount   int32                `json:"total_count"`
}

type CreditRequest struct {
	OwnerID     string  `json:"owner_id"`
	Amount      int64   `json:"amount"`
	TaskID      *string `json:"task_id,omitempty"`
	Description string  `json:"description,omitempty"`
}

type PromoteRequest struct {
	OwnerID string `json:"owner_id"`
	Amount  int64  `json:"amount"`
}

type TransactionResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
}

type VerifyWalletResponse struct {
	Verification *service.WalletVerification `json:"verification"`
}

// Payouts

type RequestPayoutRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

type ProcessPayoutRequest struct {
	PayoutID string              `json:"payout_id"`
	Action   domain.PayoutAction `json:"action"`
	Note     string              `json:"note,omitempty"`
}

type PayoutRequest struct {
	PayoutID string `json:"payout_id"`
}

type PayoutResponse struct {
	Payout *domain.Payout `json:"payout"`
}

type ListPayoutsByStatusRequest struct {
	Status   domain.PayoutStatus `json:"status"`
	Page     int32               `json:"page"`
	PageSize int32               `json:"page_size"`
}

type ListPayoutsResponse struct {
	Payouts    []domain.Payout `json:"payouts"`
	TotalCount int32           `json:"total_count"`
}

// Task events

type TaskApprovedRequest struct {
	OwnerID     string `json:"owner_id"`
	Amount      int64  `json:"amount"`
	TaskID      string `json:"task_id"`
	Description string `json:"description,omitempty"`
}

type TaskRequest struct {
	TaskID string `json:"task_id"`
}

type MilestoneCompletedRequest struct {
	TaskID      string    `json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
}
