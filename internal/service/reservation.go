package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/repository"
)

const reasonReservationExpired = "reservation expired"

// errContractSigned rolls back a release that raced a contract signing.
var errContractSigned = errors.New("unit is held by a signed contract")

type reservationService struct {
	store repository.Store
	audit AuditRecorder
	now   Clock
}

func NewReservationService(store repository.Store, audit AuditRecorder, clock Clock) ReservationService {
	return &reservationService{
		store: store,
		audit: recorderOrNoop(audit),
		now:   utcClock(clock),
	}
}

func (s *reservationService) Reserve(ctx context.Context, unitID, holderID string, duration time.Duration) (*domain.Unit, error) {
	logger.EnterMethod("reservationService.Reserve", "unitID", unitID, "holderID", holderID, "duration", duration)

	if duration <= 0 {
		return nil, fmt.Errorf("%w: reservation duration must be positive", domain.ErrInvalidAmount)
	}
	if holderID == "" {
		return nil, fmt.Errorf("%w: holder is required", domain.ErrInvalidArgument)
	}

	now := s.now()
	var before, after *domain.Unit
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		before, err = tx.Units().GetByID(ctx, unitID)
		if err != nil {
			return err
		}
		if err := reserveUnit(ctx, tx, unitID, holderID, now.Add(duration), now); err != nil {
			return err
		}
		after, err = tx.Units().GetByID(ctx, unitID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.Reserve", err, "unitID", unitID)
		return nil, err
	}

	s.audit.Record(ctx, holderID, domain.AuditActionReserve, domain.EntityUnit, unitID, before, after)
	logger.ExitMethod("reservationService.Reserve", "unitID", unitID, "expiresAt", after.ReservationExpiresAt)
	return after, nil
}

// reserveUnit performs the conditional available -> reserved update and turns
// a miss into NotFound or UnitUnavailable.
func reserveUnit(ctx context.Context, tx repository.Store, unitID, holderID string, expiresAt, now time.Time) error {
	ok, err := tx.Units().Reserve(ctx, unitID, holderID, expiresAt, now)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := tx.Units().GetByID(ctx, unitID); err != nil {
		return err
	}
	return domain.ErrUnitUnavailable
}

func (s *reservationService) ReleaseExpired(ctx context.Context) ([]string, error) {
	logger.EnterMethod("reservationService.ReleaseExpired")

	now := s.now()
	candidates, err := s.store.Units().ListExpiredReservations(ctx, now)
	if err != nil {
		logger.ExitMethodWithError("reservationService.ReleaseExpired", err)
		return nil, err
	}

	var released []string
	var errs []error
	for _, unit := range candidates {
		var cancelled []string
		var ok bool
		err := s.store.WithTx(ctx, func(tx repository.Store) error {
			var err error
			ok, err = tx.Units().ReleaseExpired(ctx, unit.ID, now)
			if err != nil || !ok {
				return err
			}
			deals, err := tx.Deals().ListByUnit(ctx, unit.ID)
			if err != nil {
				return err
			}
			for _, d := range deals {
				if d.Status == domain.DealStatusContractSigned || d.Status == domain.DealStatusCompleted {
					return errContractSigned
				}
			}
			cancelled, err = cancelDealsOnUnit(ctx, tx, unit.ID, reasonReservationExpired, now)
			return err
		})
		if errors.Is(err, errContractSigned) {
			logger.Warn("Expired reservation kept for a signed contract", "unitID", unit.ID)
			continue
		}
		if err != nil {
			logger.Error("Failed to release expired reservation", "unitID", unit.ID, "error", err)
			errs = append(errs, fmt.Errorf("unit %s: %w", unit.ID, err))
			continue
		}
		if !ok {
			// Another sweep won, or a signed contract protects the unit.
			continue
		}

		released = append(released, unit.ID)
		after := unit
		after.SalesStatus = domain.UnitSalesStatusAvailable
		after.ReservationHolderID = nil
		after.ReservationExpiresAt = nil
		after.UpdatedAt = now
		s.audit.Record(ctx, domain.SystemActor, domain.AuditActionExpire, domain.EntityUnit, unit.ID, unit, after)
		for _, dealID := range cancelled {
			s.audit.Record(ctx, domain.SystemActor, domain.AuditActionCancel, domain.EntityDeal, dealID,
				nil, map[string]any{"status": domain.DealStatusCancelled, "cancel_reason": reasonReservationExpired})
		}
	}

	logger.ExitMethod("reservationService.ReleaseExpired", "candidates", len(candidates), "released", len(released))
	return released, errors.Join(errs...)
}

// cancelDealsOnUnit cancels the draft and reserved deals of a unit and waives
// their unpaid installments.
func cancelDealsOnUnit(ctx context.Context, tx repository.Store, unitID, reason string, now time.Time) ([]string, error) {
	ids, err := tx.Deals().CancelLiveByUnit(ctx, unitID, reason, now)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, err := tx.Installments().WaiveUnpaid(ctx, id, now); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *reservationService) Release(ctx context.Context, actorID, unitID string) (*domain.Unit, error) {
	logger.EnterMethod("reservationService.Release", "unitID", unitID, "actorID", actorID)

	now := s.now()
	var before, after *domain.Unit
	var changed bool
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		before, err = tx.Units().GetByID(ctx, unitID)
		if err != nil {
			return err
		}
		switch before.SalesStatus {
		case domain.UnitSalesStatusAvailable:
			after = before
			return nil
		case domain.UnitSalesStatusSold:
			return fmt.Errorf("%w: unit %s is sold", domain.ErrConflict, unitID)
		}

		changed, err = tx.Units().Release(ctx, unitID, now)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: unit %s has a live deal", domain.ErrConflict, unitID)
		}
		after, err = tx.Units().GetByID(ctx, unitID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.Release", err, "unitID", unitID)
		return nil, err
	}

	if changed {
		s.audit.Record(ctx, actorID, domain.AuditActionRelease, domain.EntityUnit, unitID, before, after)
	}
	logger.ExitMethod("reservationService.Release", "unitID", unitID, "changed", changed)
	return after, nil
}

func (s *reservationService) GetUnit(ctx context.Context, unitID string) (*domain.Unit, error) {
	return s.store.Units().GetByID(ctx, unitID)
}
