package domain

import "time"

type DealStatus string

const (
	DealStatusDraft          DealStatus = "draft"
	DealStatusReserved       DealStatus = "reserved"
	DealStatusContractSigned DealStatus = "contract_signed"
	DealStatusCompleted      DealStatus = "completed"
	DealStatusCancelled      DealStatus = "cancelled"
)

// LiveDealStatuses are the statuses that hold a claim on the deal's unit.
var LiveDealStatuses = []DealStatus{DealStatusDraft, DealStatusReserved, DealStatusContractSigned}

// Terminal reports whether no further transition is allowed out of s.
func (s DealStatus) Terminal() bool {
	return s == DealStatusCompleted || s == DealStatusCancelled
}

type PaymentPlanKind string

const (
	PaymentPlanCash               PaymentPlanKind = "cash"
	PaymentPlanMonthly            PaymentPlanKind = "monthly"
	PaymentPlanConstructionLinked PaymentPlanKind = "construction_linked"
)

func (k PaymentPlanKind) Valid() bool {
	switch k {
	case PaymentPlanCash, PaymentPlanMonthly, PaymentPlanConstructionLinked:
		return true
	}
	return false
}

type Deal struct {
	ID               string          `json:"id"`
	UnitID           string          `json:"unit_id"`
	LeadID           string          `json:"lead_id"`
	CreatedBy        string          `json:"created_by"`
	FinalPrice       int64           `json:"final_price"`
	Discount         int64           `json:"discount"`
	DownPayment      int64           `json:"down_payment"`
	PlanKind         PaymentPlanKind `json:"plan_kind"`
	Status           DealStatus      `json:"status"`
	CancelReason     string          `json:"cancel_reason,omitempty"`
	PublicToken      *string         `json:"public_token,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ReservedAt       *time.Time      `json:"reserved_at,omitempty"`
	ContractSignedAt *time.Time      `json:"contract_signed_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Remaining is the part of the price scheduled as installments.
func (d *Deal) Remaining() int64 {
	return d.FinalPrice - d.DownPayment
}
