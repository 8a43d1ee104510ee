package domain

import "time"

type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
	InstallmentStatusWaived  InstallmentStatus = "waived"
)

// Settled reports whether the installment no longer blocks deal completion.
func (s InstallmentStatus) Settled() bool {
	return s == InstallmentStatusPaid || s == InstallmentStatusWaived
}

// MilestoneDuePlaceholder is the due date of a construction-linked installment
// whose milestone has not been completed yet.
var MilestoneDuePlaceholder = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

type Installment struct {
	ID                  string            `json:"id"`
	DealID              string            `json:"deal_id"`
	Sequence            int               `json:"sequence"`
	Amount              int64             `json:"amount"`
	DueDate             time.Time         `json:"due_date"`
	MilestoneTaskID     *string           `json:"milestone_task_id,omitempty"`
	MilestonePercentage int               `json:"milestone_percentage,omitempty"`
	Status              InstallmentStatus `json:"status"`
	PaidAmount          *int64            `json:"paid_amount,omitempty"`
	PaidAt              *time.Time        `json:"paid_at,omitempty"`
	PaymentMethod       *string           `json:"payment_method,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// AwaitingMilestone reports whether the due date is still the placeholder.
func (i *Installment) AwaitingMilestone() bool {
	return i.MilestoneTaskID != nil && i.DueDate.Equal(MilestoneDuePlaceholder)
}

// Milestone is one construction phase of a construction-linked plan.
type Milestone struct {
	Percentage int     `json:"percentage"`
	TaskID     *string `json:"task_id,omitempty"`
}
