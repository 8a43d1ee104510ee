package grpc

import (
	"context"

	"construction-sales-ledger/internal/service"
)

type TaskEventHandler struct {
	taskEventSvc service.TaskEventService
}

func NewTaskEventHandler(taskEventSvc service.TaskEventService) *TaskEventHandler {
	return &TaskEventHandler{taskEventSvc: taskEventSvc}
}

func (h *TaskEventHandler) TaskApproved(ctx context.Context, req *TaskApprovedRequest) (*TransactionResponse, error) {
	tx, err := h.taskEventSvc.TaskApproved(ctx, req.OwnerID, req.Amount, req.TaskID, req.Description)
	if err != nil {
		return nil, err
	}
	return &TransactionResponse{Transaction: tx}, nil
}

func (h *TaskEventHandler) TaskFinalApproved(ctx context.Context, req *TaskRequest) (*TransactionResponse, error) {
	tx, err := h.taskEventSvc.TaskFinalApproved(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	return &TransactionResponse{Transaction: tx}, nil
}

func (h *TaskEventHandler) MilestoneCompleted(ctx context.Context, req *MilestoneCompletedRequest) (*CountResponse, error) {
	n, err := h.taskEventSvc.MilestoneCompleted(ctx, req.TaskID, req.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: n}, nil
}
