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

type dealService struct {
	store               repository.Store
	audit               AuditRecorder
	now                 Clock
	reservationDuration time.Duration
}

func NewDealService(store repository.Store, audit AuditRecorder, clock Clock, reservationDuration time.Duration) DealService {
	return &dealService{
		store:               store,
		audit:               recorderOrNoop(audit),
		now:                 utcClock(clock),
		reservationDuration: reservationDuration,
	}
}

func validateDeal(req CreateDealRequest) error {
	switch {
	case req.UnitID == "" || req.LeadID == "" || req.ActorID == "":
		return fmt.Errorf("%w: unit, lead and actor are required", domain.ErrInvalidArgument)
	case req.FinalPrice <= 0:
		return fmt.Errorf("%w: final price must be positive", domain.ErrInvalidAmount)
	case req.DownPayment < 0 || req.DownPayment > req.FinalPrice:
		return fmt.Errorf("%w: down payment must be between 0 and the final price", domain.ErrInvalidAmount)
	case req.Discount < 0:
		return fmt.Errorf("%w: discount must not be negative", domain.ErrInvalidAmount)
	case !req.PlanKind.Valid():
		return fmt.Errorf("%w: unknown payment plan %q", domain.ErrInvalidArgument, req.PlanKind)
	case req.DownPayment == req.FinalPrice && req.PlanKind != domain.PaymentPlanCash:
		return fmt.Errorf("%w: a fully prepaid deal must use the cash plan", domain.ErrInvalidAmount)
	}
	return nil
}

func (s *dealService) CreateDeal(ctx context.Context, req CreateDealRequest) (*domain.Deal, error) {
	logger.EnterMethod("dealService.CreateDeal", "unitID", req.UnitID, "leadID", req.LeadID, "actorID", req.ActorID)

	if err := validateDeal(req); err != nil {
		logger.ExitMethodWithError("dealService.CreateDeal", err)
		return nil, err
	}

	now := s.now()
	token := uuid.NewString()
	deal := &domain.Deal{
		ID:          uuid.NewString(),
		UnitID:      req.UnitID,
		LeadID:      req.LeadID,
		CreatedBy:   req.ActorID,
		FinalPrice:  req.FinalPrice,
		Discount:    req.Discount,
		DownPayment: req.DownPayment,
		PlanKind:    req.PlanKind,
		Status:      domain.DealStatusReserved,
		PublicToken: &token,
		CreatedAt:   now,
		ReservedAt:  &now,
		UpdatedAt:   now,
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.claimUnit(ctx, tx, req.UnitID, req.ActorID, now); err != nil {
			return err
		}
		if err := tx.Deals().Create(ctx, deal); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrUnitUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("dealService.CreateDeal", err, "unitID", req.UnitID)
		return nil, err
	}

	s.audit.Record(ctx, req.ActorID, domain.AuditActionCreate, domain.EntityDeal, deal.ID, nil, deal)
	logger.ExitMethod("dealService.CreateDeal", "dealID", deal.ID)
	return deal, nil
}

// claimUnit reserves the unit for the actor. A unit the actor already holds
// under an unexpired reservation is adopted and its expiry restarted; the
// live-deal index still rejects a second deal on it.
func (s *dealService) claimUnit(ctx context.Context, tx repository.Store, unitID, actorID string, now time.Time) error {
	expiresAt := now.Add(s.reservationDuration)
	err := reserveUnit(ctx, tx, unitID, actorID, expiresAt, now)
	if !errors.Is(err, domain.ErrUnitUnavailable) {
		return err
	}
	adopted, extendErr := tx.Units().ExtendReservation(ctx, unitID, actorID, expiresAt, now)
	if extendErr != nil {
		return extendErr
	}
	if !adopted {
		return err
	}
	return nil
}

func (s *dealService) SignContract(ctx context.Context, actorID, dealID string) (*domain.Deal, error) {
	logger.EnterMethod("dealService.SignContract", "dealID", dealID, "actorID", actorID)

	now := s.now()
	var before, after domain.Deal
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		deal, err := tx.Deals().GetByID(ctx, dealID)
		if err != nil {
			return err
		}
		before = *deal
		if deal.Status != domain.DealStatusReserved {
			return fmt.Errorf("%w: cannot sign a %s deal", domain.ErrInvalidTransition, deal.Status)
		}

		// Contend with the expiry sweep on the unit row.
		locked, err := tx.Units().TouchReserved(ctx, deal.UnitID, now)
		if err != nil {
			return err
		}
		if !locked {
			return fmt.Errorf("%w: unit %s is no longer reserved", domain.ErrConflict, deal.UnitID)
		}

		deal.Status = domain.DealStatusContractSigned
		deal.ContractSignedAt = &now
		deal.UpdatedAt = now
		ok, err := tx.Deals().Transition(ctx, deal, domain.DealStatusReserved)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: deal %s changed concurrently", domain.ErrInvalidTransition, dealID)
		}
		after = *deal
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("dealService.SignContract", err, "dealID", dealID)
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.AuditActionSignContract, domain.EntityDeal, dealID, before, after)
	logger.ExitMethod("dealService.SignContract", "dealID", dealID)
	return &after, nil
}

func (s *dealService) Complete(ctx context.Context, actorID, dealID string) (*domain.Deal, error) {
	logger.EnterMethod("dealService.Complete", "dealID", dealID, "actorID", actorID)

	now := s.now()
	var before, after domain.Deal
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		deal, err := tx.Deals().GetByID(ctx, dealID)
		if err != nil {
			return err
		}
		before = *deal
		if deal.Status != domain.DealStatusContractSigned {
			return fmt.Errorf("%w: cannot complete a %s deal", domain.ErrInvalidTransition, deal.Status)
		}

		installments, err := tx.Installments().ListByDeal(ctx, dealID)
		if err != nil {
			return err
		}
		if len(installments) == 0 && deal.PlanKind != domain.PaymentPlanCash {
			return fmt.Errorf("%w: no installments generated for a %s plan", domain.ErrInvalidTransition, deal.PlanKind)
		}
		for _, inst := range installments {
			if !inst.Status.Settled() {
				return fmt.Errorf("%w: installment %d is %s", domain.ErrInvalidTransition, inst.Sequence, inst.Status)
			}
		}

		sold, err := tx.Units().MarkSold(ctx, deal.UnitID, now)
		if err != nil {
			return err
		}
		if !sold {
			return fmt.Errorf("%w: unit %s is not reserved", domain.ErrConflict, deal.UnitID)
		}

		deal.Status = domain.DealStatusCompleted
		deal.CompletedAt = &now
		deal.UpdatedAt = now
		ok, err := tx.Deals().Transition(ctx, deal, domain.DealStatusContractSigned)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: deal %s changed concurrently", domain.ErrInvalidTransition, dealID)
		}
		after = *deal
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("dealService.Complete", err, "dealID", dealID)
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.AuditActionComplete, domain.EntityDeal, dealID, before, after)
	logger.ExitMethod("dealService.Complete", "dealID", dealID)
	return &after, nil
}

func (s *dealService) Cancel(ctx context.Context, actorID, dealID, reason string) (*domain.Deal, error) {
	logger.EnterMethod("dealService.Cancel", "dealID", dealID, "actorID", actorID)

	now := s.now()
	var before, after domain.Deal
	var waived int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		deal, err := tx.Deals().GetByID(ctx, dealID)
		if err != nil {
			return err
		}
		before = *deal
		if deal.Status.Terminal() {
			return fmt.Errorf("%w: deal is already %s", domain.ErrInvalidTransition, deal.Status)
		}

		if waived, err = tx.Installments().WaiveUnpaid(ctx, dealID, now); err != nil {
			return err
		}

		deal.Status = domain.DealStatusCancelled
		deal.CancelReason = reason
		deal.CancelledAt = &now
		deal.UpdatedAt = now
		ok, err := tx.Deals().Transition(ctx, deal, domain.LiveDealStatuses...)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: deal %s changed concurrently", domain.ErrInvalidTransition, dealID)
		}

		// The unit may already have been released by the expiry sweep.
		_, err = tx.Units().Release(ctx, deal.UnitID, now)
		after = *deal
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("dealService.Cancel", err, "dealID", dealID)
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.AuditActionCancel, domain.EntityDeal, dealID, before, after)
	logger.ExitMethod("dealService.Cancel", "dealID", dealID, "waivedInstallments", waived)
	return &after, nil
}

func (s *dealService) GetDeal(ctx context.Context, dealID string) (*domain.Deal, error) {
	return s.store.Deals().GetByID(ctx, dealID)
}

func (s *dealService) GetDealByToken(ctx context.Context, token string) (*domain.Deal, []domain.Installment, error) {
	if token == "" {
		return nil, nil, domain.ErrNotFound
	}
	deal, err := s.store.Deals().GetByPublicToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	installments, err := s.store.Installments().ListByDeal(ctx, deal.ID)
	if err != nil {
		return nil, nil, err
	}
	return deal, installments, nil
}

func (s *dealService) ListDealsByUnit(ctx context.Context, unitID string) ([]domain.Deal, error) {
	return s.store.Deals().ListByUnit(ctx, unitID)
}

func (s *dealService) ListDealsByStatus(ctx context.Context, status domain.DealStatus, page, pageSize int32) ([]domain.Deal, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.store.Deals().ListByStatus(ctx, status, page, pageSize)
}
