package grpc

import (
	"context"

	"construction-sales-ledger/internal/service"
)

type PayoutHandler struct {
	payoutSvc service.PayoutService
}

func NewPayoutHandler(payoutSvc service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc}
}

func (h *PayoutHandler) RequestPayout(ctx context.Context, req *RequestPayoutRequest) (*PayoutResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	payout, err := h.payoutSvc.RequestPayout(ctx, userID, req.Amount, req.Method)
	if err != nil {
		return nil, err
	}
	return &PayoutResponse{Payout: payout}, nil
}

func (h *PayoutHandler) ProcessPayout(ctx context.Context, req *ProcessPayoutRequest) (*PayoutResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	payout, err := h.payoutSvc.Process(ctx, req.PayoutID, req.Action, userID, req.Note)
	if err != nil {
		return nil, err
	}
	return &PayoutResponse{Payout: payout}, nil
}

func (h *PayoutHandler) GetPayout(ctx context.Context, req *PayoutRequest) (*PayoutResponse, error) {
	payout, err := h.payoutSvc.GetPayout(ctx, req.PayoutID)
	if err != nil {
		return nil, err
	}
	// Owners see their own payouts only.
	if _, err := resolveOwner(ctx, payout.OwnerID); err != nil {
		return nil, err
	}
	return &PayoutResponse{Payout: payout}, nil
}

func (h *PayoutHandler) ListPayoutsByStatus(ctx context.Context, req *ListPayoutsByStatusRequest) (*ListPayoutsResponse, error) {
	payouts, count, err := h.payoutSvc.ListPayoutsByStatus(ctx, req.Status, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListPayoutsResponse{Payouts: payouts, TotalCount: count}, nil
}
