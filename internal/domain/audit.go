package domain

import "time"

type AuditAction string

const (
	AuditActionReserve        AuditAction = "reserve"
	AuditActionRelease        AuditAction = "release"
	AuditActionExpire         AuditAction = "expire"
	AuditActionCreate         AuditAction = "create"
	AuditActionSignContract   AuditAction = "sign_contract"
	AuditActionComplete       AuditAction = "complete"
	AuditActionCancel         AuditAction = "cancel"
	AuditActionGenerate       AuditAction = "generate"
	AuditActionResolveDueDate AuditAction = "resolve_due_date"
	AuditActionRecordPayment  AuditAction = "record_payment"
	AuditActionCredit         AuditAction = "credit"
	AuditActionPromote        AuditAction = "promote"
	AuditActionRequestPayout  AuditAction = "request_payout"
	AuditActionPayPayout      AuditAction = "pay_payout"
	AuditActionRejectPayout   AuditAction = "reject_payout"
)

const (
	EntityUnit        = "unit"
	EntityDeal        = "deal"
	EntityInstallment = "installment"
	EntityWallet      = "wallet"
	EntityPayout      = "payout"
)

// SystemActor is recorded for changes made by sweeps.
const SystemActor = "system"

type AuditEntry struct {
	ID         string      `json:"id"`
	ActorID    string      `json:"actor_id"`
	Action     AuditAction `json:"action"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Diff       string      `json:"diff"` // JSON {"before":...,"after":...}
	CreatedAt  time.Time   `json:"created_at"`
}
