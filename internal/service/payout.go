package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/repository"
)

type payoutService struct {
	store repository.Store
	audit AuditRecorder
	now   Clock
}

func NewPayoutService(store repository.Store, audit AuditRecorder, clock Clock) PayoutService {
	return &payoutService{
		store: store,
		audit: recorderOrNoop(audit),
		now:   utcClock(clock),
	}
}

func (s *payoutService) RequestPayout(ctx context.Context, ownerID string, amount int64, method string) (*domain.Payout, error) {
	logger.EnterMethod("payoutService.RequestPayout", "ownerID", ownerID, "amount", amount, "method", method)

	if amount <= 0 {
		return nil, fmt.Errorf("%w: payout must be positive", domain.ErrInvalidAmount)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payout method is required", domain.ErrInvalidArgument)
	}

	now := s.now()
	payout := &domain.Payout{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Amount:      amount,
		Method:      method,
		Status:      domain.PayoutStatusPending,
		RequestedAt: now,
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		ok, err := tx.Wallets().ReserveForPayout(ctx, ownerID, amount, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientBalance
		}
		if err := tx.Payouts().Create(ctx, payout); err != nil {
			return err
		}
		return tx.Transactions().Append(ctx, &domain.Transaction{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			Amount:      -amount,
			Kind:        domain.TransactionKindPayoutRequest,
			PayoutID:    &payout.ID,
			Description: describe(domain.TransactionKindPayoutRequest, amount, payout.ID),
			CreatedAt:   now,
		})
	})
	if err != nil {
		logger.ExitMethodWithError("payoutService.RequestPayout", err, "ownerID", ownerID)
		return nil, err
	}

	s.audit.Record(ctx, ownerID, domain.AuditActionRequestPayout, domain.EntityPayout, payout.ID, nil, payout)
	logger.ExitMethod("payoutService.RequestPayout", "payoutID", payout.ID)
	return payout, nil
}

func (s *payoutService) Process(ctx context.Context, payoutID string, action domain.PayoutAction, processorID, note string) (*domain.Payout, error) {
	logger.EnterMethod("payoutService.Process", "payoutID", payoutID, "action", action, "processorID", processorID)

	var (
		status      domain.PayoutStatus
		kind        domain.TransactionKind
		auditAction domain.AuditAction
		sign        int64
	)
	switch action {
	case domain.PayoutActionPay:
		status, kind, auditAction, sign = domain.PayoutStatusPaid, domain.TransactionKindPayoutPaid, domain.AuditActionPayPayout, -1
	case domain.PayoutActionReject:
		status, kind, auditAction, sign = domain.PayoutStatusRejected, domain.TransactionKindPayoutRejected, domain.AuditActionRejectPayout, 1
	default:
		return nil, fmt.Errorf("%w: unknown payout action %q", domain.ErrInvalidArgument, action)
	}

	now := s.now()
	var before, after domain.Payout
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		payout, err := tx.Payouts().GetByID(ctx, payoutID)
		if err != nil {
			return err
		}
		before = *payout
		if payout.Status != domain.PayoutStatusPending {
			return fmt.Errorf("%w: payout is %s", domain.ErrInvalidTransition, payout.Status)
		}

		payout.Status = status
		payout.Note = note
		payout.ProcessedBy = &processorID
		payout.ProcessedAt = &now
		ok, err := tx.Payouts().Finalize(ctx, payout)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: payout %s changed concurrently", domain.ErrInvalidTransition, payoutID)
		}

		if action == domain.PayoutActionPay {
			ok, err = tx.Wallets().SettlePayout(ctx, payout.OwnerID, payout.Amount, now)
		} else {
			ok, err = tx.Wallets().RefundPayout(ctx, payout.OwnerID, payout.Amount, now)
		}
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("payout reserve is smaller than the payout amount")
		}

		after = *payout
		return tx.Transactions().Append(ctx, &domain.Transaction{
			ID:          uuid.NewString(),
			OwnerID:     payout.OwnerID,
			Amount:      sign * payout.Amount,
			Kind:        kind,
			PayoutID:    &payout.ID,
			Description: describe(kind, payout.Amount, payout.ID),
			CreatedAt:   now,
		})
	})
	if err != nil {
		logger.ExitMethodWithError("payoutService.Process", err, "payoutID", payoutID)
		return nil, err
	}

	s.audit.Record(ctx, processorID, auditAction, domain.EntityPayout, payoutID, before, after)
	logger.ExitMethod("payoutService.Process", "payoutID", payoutID, "status", after.Status)
	return &after, nil
}

func (s *payoutService) GetPayout(ctx context.Context, payoutID string) (*domain.Payout, error) {
	return s.store.Payouts().GetByID(ctx, payoutID)
}

func (s *payoutService) ListPayoutsByStatus(ctx context.Context, status domain.PayoutStatus, page, pageSize int32) ([]domain.Payout, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.store.Payouts().ListByStatus(ctx, status, page, pageSize)
}
