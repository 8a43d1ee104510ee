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

type walletService struct {
	store  repository.Store
	audit  AuditRecorder
	now    Clock
	policy PromotionPolicy
}

func NewWalletService(store repository.Store, audit AuditRecorder, clock Clock, policy PromotionPolicy) WalletService {
	if !policy.Valid() {
		policy = PromoteOnFinalApproval
	}
	return &walletService{
		store:  store,
		audit:  recorderOrNoop(audit),
		now:    utcClock(clock),
		policy: policy,
	}
}

func (s *walletService) Credit(ctx context.Context, ownerID string, amount int64, taskID *string, description string) (*domain.Transaction, error) {
	logger.EnterMethod("walletService.Credit", "ownerID", ownerID, "amount", amount)

	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit must be positive", domain.ErrInvalidAmount)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidArgument)
	}
	if description == "" {
		ref := ""
		if taskID != nil {
			ref = *taskID
		}
		description = describe(domain.TransactionKindEarning, amount, ref)
	}

	now := s.now()
	earning := &domain.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Amount:      amount,
		Kind:        domain.TransactionKindEarning,
		TaskID:      taskID,
		Description: description,
		CreatedAt:   now,
	}

	var before, after *domain.Wallet
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		before, err = optionalWallet(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if err := tx.Wallets().Credit(ctx, ownerID, amount, now); err != nil {
			return err
		}
		if err := tx.Transactions().Append(ctx, earning); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("%w: task already credited", domain.ErrConflict)
			}
			return err
		}

		if s.policy == PromoteImmediately {
			if _, err := promote(ctx, tx, ownerID, amount, taskID, now); err != nil {
				return err
			}
		}
		after, err = tx.Wallets().Get(ctx, ownerID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("walletService.Credit", err, "ownerID", ownerID)
		return nil, err
	}

	s.audit.Record(ctx, domain.SystemActor, domain.AuditActionCredit, domain.EntityWallet, ownerID, before, after)
	logger.ExitMethod("walletService.Credit", "ownerID", ownerID, "transactionID", earning.ID)
	return earning, nil
}

// promote moves amount from pending to available and appends the matching
// promotion entry.
func promote(ctx context.Context, tx repository.Store, ownerID string, amount int64, taskID *string, now time.Time) (*domain.Transaction, error) {
	ok, err := tx.Wallets().Promote(ctx, ownerID, amount, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := tx.Wallets().Get(ctx, ownerID); err != nil {
			return nil, err
		}
		return nil, domain.ErrInsufficientPending
	}

	ref := ""
	if taskID != nil {
		ref = *taskID
	}
	promotion := &domain.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Amount:      amount,
		Kind:        domain.TransactionKindPromotion,
		TaskID:      taskID,
		Description: describe(domain.TransactionKindPromotion, amount, ref),
		CreatedAt:   now,
	}
	if err := tx.Transactions().Append(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

func (s *walletService) PromoteToAvailable(ctx context.Context, actorID, ownerID string, amount int64) (*domain.Transaction, error) {
	logger.EnterMethod("walletService.PromoteToAvailable", "ownerID", ownerID, "amount", amount)

	if amount <= 0 {
		return nil, fmt.Errorf("%w: promotion must be positive", domain.ErrInvalidAmount)
	}

	now := s.now()
	var promotion *domain.Transaction
	var before, after *domain.Wallet
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		if before, err = tx.Wallets().Get(ctx, ownerID); err != nil {
			return err
		}
		if promotion, err = promote(ctx, tx, ownerID, amount, nil, now); err != nil {
			return err
		}
		after, err = tx.Wallets().Get(ctx, ownerID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("walletService.PromoteToAvailable", err, "ownerID", ownerID)
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.AuditActionPromote, domain.EntityWallet, ownerID, before, after)
	logger.ExitMethod("walletService.PromoteToAvailable", "ownerID", ownerID)
	return promotion, nil
}

// PromoteTask releases the earning of a finally approved task. A task that
// was already promoted returns its existing promotion entry.
func (s *walletService) PromoteTask(ctx context.Context, taskID string) (*domain.Transaction, error) {
	logger.EnterMethod("walletService.PromoteTask", "taskID", taskID)

	now := s.now()
	var promotion *domain.Transaction
	var before, after *domain.Wallet
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		earning, err := tx.Transactions().FindByTask(ctx, taskID, domain.TransactionKindEarning)
		if err != nil {
			return err
		}
		existing, err := tx.Transactions().FindByTask(ctx, taskID, domain.TransactionKindPromotion)
		switch {
		case err == nil:
			promotion = existing
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if before, err = tx.Wallets().Get(ctx, earning.OwnerID); err != nil {
			return err
		}
		if promotion, err = promote(ctx, tx, earning.OwnerID, earning.Amount, &taskID, now); err != nil {
			return err
		}
		after, err = tx.Wallets().Get(ctx, earning.OwnerID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("walletService.PromoteTask", err, "taskID", taskID)
		return nil, err
	}

	if after != nil {
		s.audit.Record(ctx, domain.SystemActor, domain.AuditActionPromote, domain.EntityWallet, promotion.OwnerID, before, after)
	}
	logger.ExitMethod("walletService.PromoteTask", "taskID", taskID, "transactionID", promotion.ID)
	return promotion, nil
}

func (s *walletService) GetWallet(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	return s.store.Wallets().Get(ctx, ownerID)
}

func (s *walletService) ListTransactions(ctx context.Context, ownerID string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.store.Transactions().ListByOwner(ctx, ownerID, page, pageSize)
}

// Verify replays the owner's transaction stream and compares the result with
// the stored wallet.
func (s *walletService) Verify(ctx context.Context, ownerID string) (*WalletVerification, error) {
	var result WalletVerification
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		stored, err := tx.Wallets().Get(ctx, ownerID)
		if err != nil {
			return err
		}
		txs, err := tx.Transactions().ListAllByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		result.Stored = *stored
		result.Replayed = domain.Replay(ownerID, txs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Consistent = result.Stored.SameBalances(&result.Replayed)
	result.Balanced = result.Stored.Balanced()
	if !result.Consistent || !result.Balanced {
		logger.Warn("Wallet drift detected", "ownerID", ownerID,
			"stored", result.Stored, "replayed", result.Replayed)
	}
	return &result, nil
}

func optionalWallet(ctx context.Context, tx repository.Store, ownerID string) (*domain.Wallet, error) {
	w, err := tx.Wallets().Get(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return w, err
}
