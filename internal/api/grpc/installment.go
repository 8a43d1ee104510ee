package grpc

import (
	"context"

	"construction-sales-ledger/internal/service"
)

type InstallmentHandler struct {
	installmentSvc service.InstallmentService
}

func NewInstallmentHandler(installmentSvc service.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentSvc: installmentSvc}
}

func (h *InstallmentHandler) GenerateInstallments(ctx context.Context, req *GenerateInstallmentsRequest) (*InstallmentsResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	installments, err := h.installmentSvc.Generate(ctx, userID, req.DealID, service.PlanRequest{
		Count:        req.Count,
		FirstDueDate: req.FirstDueDate,
		Milestones:   req.Milestones,
	})
	if err != nil {
		return nil, err
	}
	return &InstallmentsResponse{Installments: installments}, nil
}

func (h *InstallmentHandler) ListInstallments(ctx context.Context, req *DealRequest) (*InstallmentsResponse, error) {
	installments, err := h.installmentSvc.ListInstallments(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	return &InstallmentsResponse{Installments: installments}, nil
}

func (h *InstallmentHandler) RecordPayment(ctx context.Context, req *RecordPaymentRequest) (*InstallmentResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	inst, err := h.installmentSvc.RecordPayment(ctx, userID, req.InstallmentID, req.Amount, req.Method, req.PaidAt)
	if err != nil {
		return nil, err
	}
	return &InstallmentResponse{Installment: inst}, nil
}

func (h *InstallmentHandler) MarkOverdue(ctx context.Context, _ *Empty) (*CountResponse, error) {
	n, err := h.installmentSvc.MarkOverdue(ctx)
	if err != nil {
		return nil, err
	}
	return &CountResponse{Count: n}, nil
}
