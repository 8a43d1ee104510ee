package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/service"
)

type ReservationHandler struct {
	reservationSvc service.ReservationService
}

func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

func (h *ReservationHandler) Reserve(ctx context.Context, req *ReserveRequest) (*UnitResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	holderID := req.HolderID
	if holderID == "" {
		holderID = userID
	}
	if holderID != userID && !hasRole(ctx, config.RoleAdmin) {
		return nil, status.Error(codes.PermissionDenied, "only admins can reserve on behalf of another holder")
	}
	unit, err := h.reservationSvc.Reserve(ctx, req.UnitID, holderID, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	return &UnitResponse{Unit: unit}, nil
}

func (h *ReservationHandler) Release(ctx context.Context, req *UnitRequest) (*UnitResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	current, err := h.reservationSvc.GetUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if current.ReservationHolderID != nil && *current.ReservationHolderID != userID && !hasRole(ctx, config.RoleAdmin) {
		return nil, status.Error(codes.PermissionDenied, "only the holder or an admin can release a reservation")
	}
	unit, err := h.reservationSvc.Release(ctx, userID, req.UnitID)
	if err != nil {
		return nil, err
	}
	return &UnitResponse{Unit: unit}, nil
}

func (h *ReservationHandler) ReleaseExpired(ctx context.Context, _ *Empty) (*ReleaseExpiredResponse, error) {
	released, err := h.reservationSvc.ReleaseExpired(ctx)
	if err != nil {
		return nil, err
	}
	return &ReleaseExpiredResponse{UnitIDs: released}, nil
}

func (h *ReservationHandler) GetUnit(ctx context.Context, req *UnitRequest) (*UnitResponse, error) {
	unit, err := h.reservationSvc.GetUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	return &UnitResponse{Unit: unit}, nil
}
