package domain

import "time"

type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusPaid     PayoutStatus = "paid"
	PayoutStatusRejected PayoutStatus = "rejected"
)

type PayoutAction string

const (
	PayoutActionPay    PayoutAction = "pay"
	PayoutActionReject PayoutAction = "reject"
)

type Payout struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Amount      int64        `json:"amount"`
	Method      string       `json:"method"`
	Status      PayoutStatus `json:"status"`
	Note        string       `json:"note,omitempty"`
	ProcessedBy *string      `json:"processed_by,omitempty"`
	RequestedAt time.Time    `json:"requested_at"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
}
