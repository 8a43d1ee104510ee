package service

import (
	"context"
	"fmt"
	"time"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
)

type taskEventService struct {
	wallets      WalletService
	installments InstallmentService
}

func NewTaskEventService(wallets WalletService, installments InstallmentService) TaskEventService {
	return &taskEventService{wallets: wallets, installments: installments}
}

// TaskApproved credits the worker. Under the immediate promotion policy the
// credit is released to the available balance in the same transaction.
func (s *taskEventService) TaskApproved(ctx context.Context, ownerID string, amount int64, taskID, description string) (*domain.Transaction, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: task id is required", domain.ErrInvalidArgument)
	}
	logger.Info("Task approved", "taskID", taskID, "ownerID", ownerID, "amount", amount)
	return s.wallets.Credit(ctx, ownerID, amount, &taskID, description)
}

func (s *taskEventService) TaskFinalApproved(ctx context.Context, taskID string) (*domain.Transaction, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: task id is required", domain.ErrInvalidArgument)
	}
	logger.Info("Task finally approved", "taskID", taskID)
	return s.wallets.PromoteTask(ctx, taskID)
}

func (s *taskEventService) MilestoneCompleted(ctx context.Context, taskID string, completedAt time.Time) (int64, error) {
	logger.Info("Milestone completed", "taskID", taskID, "completedAt", completedAt)
	return s.installments.ResolveMilestone(ctx, taskID, completedAt)
}
