package grpc

import (
	"context"

	"construction-sales-ledger/internal/service"
)

type DealHandler struct {
	dealSvc service.DealService
}

func NewDealHandler(dealSvc service.DealService) *DealHandler {
	return &DealHandler{dealSvc: dealSvc}
}

func (h *DealHandler) CreateDeal(ctx context.Context, req *CreateDealRequest) (*DealResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	deal, err := h.dealSvc.CreateDeal(ctx, service.CreateDealRequest{
		UnitID:      req.UnitID,
		LeadID:      req.LeadID,
		ActorID:     userID,
		FinalPrice:  req.FinalPrice,
		DownPayment: req.DownPayment,
		Discount:    req.Discount,
		PlanKind:    req.PlanKind,
	})
	if err != nil {
		return nil, err
	}
	return &DealResponse{Deal: deal}, nil
}

func (h *DealHandler) SignContract(ctx context.Context, req *DealRequest) (*DealResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	deal, err := h.dealSvc.SignContract(ctx, userID, req.DealID)
	if err != nil {
		return nil, err
	}
	return &DealResponse{Deal: deal}, nil
}

func (h *DealHandler) CompleteDeal(ctx context.Context, req *DealRequest) (*DealResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	deal, err := h.dealSvc.Complete(ctx, userID, req.DealID)
	if err != nil {
		return nil, err
	}
	return &DealResponse{Deal: deal}, nil
}

func (h *DealHandler) CancelDeal(ctx context.Context, req *CancelDealRequest) (*DealResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	deal, err := h.dealSvc.Cancel(ctx, userID, req.DealID, req.Reason)
	if err != nil {
		return nil, err
	}
	return &DealResponse{Deal: deal}, nil
}

func (h *DealHandler) GetDeal(ctx context.Context, req *DealRequest) (*DealResponse, error) {
	deal, err := h.dealSvc.GetDeal(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	return &DealResponse{Deal: deal}, nil
}

func (h *DealHandler) GetDealByToken(ctx context.Context, req *DealByTokenRequest) (*PublicDealResponse, error) {
	deal, installments, err := h.dealSvc.GetDealByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	return &PublicDealResponse{Deal: deal, Installments: installments}, nil
}

func (h *DealHandler) ListDealsByUnit(ctx context.Context, req *UnitRequest) (*ListDealsResponse, error) {
	deals, err := h.dealSvc.ListDealsByUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	return &ListDealsResponse{Deals: deals, TotalCount: int32(len(deals))}, nil
}

func (h *DealHandler) ListDealsByStatus(ctx context.Context, req *ListDealsByStatusRequest) (*ListDealsResponse, error) {
	deals, count, err := h.dealSvc.ListDealsByStatus(ctx, req.Status, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListDealsResponse{Deals: deals, TotalCount: count}, nil
}
