package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/repository"
)

type installmentService struct {
	store    repository.Store
	audit    AuditRecorder
	now      Clock
	interval time.Duration
	grace    time.Duration
}

// NewInstallmentService schedules monthly plans every interval and gives a
// completed milestone's installments grace before they fall due.
func NewInstallmentService(store repository.Store, audit AuditRecorder, clock Clock, interval, grace time.Duration) InstallmentService {
	return &installmentService{
		store:    store,
		audit:    recorderOrNoop(audit),
		now:      utcClock(clock),
		interval: interval,
		grace:    grace,
	}
}

func (s *installmentService) Generate(ctx context.Context, actorID, dealID string, plan PlanRequest) ([]domain.Installment, error) {
	logger.EnterMethod("installmentService.Generate", "dealID", dealID, "actorID", actorID)

	now := s.now()
	var installments []domain.Installment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		deal, err := tx.Deals().GetByID(ctx, dealID)
		if err != nil {
			return err
		}
		if deal.Status.Terminal() {
			return fmt.Errorf("%w: deal is %s", domain.ErrInvalidTransition, deal.Status)
		}

		existing, err := tx.Installments().CountByDeal(ctx, dealID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrAlreadyGenerated
		}

		installments, err = s.schedule(deal, plan)
		if err != nil {
			return err
		}
		for i := range installments {
			installments[i].ID = uuid.NewString()
			installments[i].DealID = dealID
			installments[i].Status = domain.InstallmentStatusPending
			installments[i].CreatedAt = now
			installments[i].UpdatedAt = now
		}

		if err := tx.Installments().CreateBatch(ctx, installments); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrAlreadyGenerated
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("installmentService.Generate", err, "dealID", dealID)
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.AuditActionGenerate, domain.EntityDeal, dealID, nil, installments)
	logger.ExitMethod("installmentService.Generate", "dealID", dealID, "count", len(installments))
	return installments, nil
}

func (s *installmentService) schedule(deal *domain.Deal, plan PlanRequest) ([]domain.Installment, error) {
	remaining := deal.Remaining()
	switch deal.PlanKind {
	case domain.PaymentPlanMonthly:
		return MonthlySchedule(remaining, plan.Count, plan.FirstDueDate, s.interval)
	case domain.PaymentPlanConstructionLinked:
		return ConstructionSchedule(remaining, plan.Milestones)
	case domain.PaymentPlanCash:
		return CashSchedule(remaining, plan.FirstDueDate)
	}
	return nil, fmt.Errorf("%w: unknown payment plan %q", domain.ErrInvalidArgument, deal.PlanKind)
}

func (s *installmentService) ResolveMilestone(ctx context.Context, taskID string, completedAt time.Time) (int64, error) {
	logger.EnterMethod("installmentService.ResolveMilestone", "taskID", taskID)

	if taskID == "" {
		return 0, fmt.Errorf("%w: task id is required", domain.ErrInvalidArgument)
	}
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	due := completedAt.UTC().Add(s.grace)

	n, err := s.store.Installments().ResolveMilestone(ctx, taskID, due, s.now())
	if err != nil {
		logger.ExitMethodWithError("installmentService.ResolveMilestone", err, "taskID", taskID)
		return 0, err
	}

	if n > 0 {
		s.audit.Record(ctx, domain.SystemActor, domain.AuditActionResolveDueDate, domain.EntityInstallment, taskID,
			map[string]any{"due_date": domain.MilestoneDuePlaceholder},
			map[string]any{"due_date": due, "installments": n})
	}
	logger.ExitMethod("installmentService.ResolveMilestone", "taskID", taskID, "resolved", n)
	return n, nil
}

func (s *installmentService) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.store.Installments().MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	logger.Info("Reclassified overdue installments", "count", n)
	return n, nil
}

func (s *installmentService) RecordPayment(ctx context.Context, actorID, installmentID string, amount int64, method string, paidAt time.Time) (*domain.Installment, error) {
	logger.EnterMethod("installmentService.RecordPayment", "installmentID", installmentID, "amount", amount)

	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrInvalidArgument)
	}

	now := s.now()
	if paidAt.IsZero() {
		paidAt = now
	}
	paidAt = paidAt.UTC()

	var before, after domain.Installment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		inst, err := tx.Installments().GetByID(ctx, installmentID)
		if err != nil {
			return err
		}
		before = *inst
		if inst.Status != domain.InstallmentStatusPending && inst.Status != domain.InstallmentStatusOverdue {
			return fmt.Errorf("%w: installment is %s", domain.ErrInvalidTransition, inst.Status)
		}
		if amount != inst.Amount {
			return fmt.Errorf("%w: expected %d, got %d", domain.ErrInvalidAmount, inst.Amount, amount)
		}

		ok, err := tx.Installments().MarkPaid(ctx, installmentID, amount, method, paidAt, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: installment %s changed concurrently", domain.ErrInvalidTransition, installmentID)
		}

		inst.Status = domain.InstallmentStatusPaid
		inst.PaidAmount = &amount
		inst.PaidAt = &paidAt
		inst.PaymentMethod = &method
		inst.UpdatedAt = now
		after = *inst
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("installmentService.RecordPayment", err, "installmentID", installmentID)
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.AuditActionRecordPayment, domain.EntityInstallment, installmentID, before, after)
	logger.ExitMethod("installmentService.RecordPayment", "installmentID", installmentID)
	return &after, nil
}

func (s *installmentService) ListInstallments(ctx context.Context, dealID string) ([]domain.Installment, error) {
	if _, err := s.store.Deals().GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	return s.store.Installments().ListByDeal(ctx, dealID)
}
