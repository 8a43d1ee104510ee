package grpc

import (
	"context"

	"construction-sales-ledger/internal/service"
)

type WalletHandler struct {
	walletSvc service.WalletService
}

func NewWalletHandler(walletSvc service.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

func (h *WalletHandler) GetWallet(ctx context.Context, req *WalletRequest) (*WalletResponse, error) {
	ownerID, err := resolveOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	wallet, err := h.walletSvc.GetWallet(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &WalletResponse{Wallet: wallet}, nil
}

func (h *WalletHandler) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	ownerID, err := resolveOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	txs, count, err := h.walletSvc.ListTransactions(ctx, ownerID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &ListTransactionsResponse{Transactions: txs, TotalCount: count}, nil
}

func (h *WalletHandler) Credit(ctx context.Context, req *CreditRequest) (*TransactionResponse, error) {
	tx, err := h.walletSvc.Credit(ctx, req.OwnerID, req.Amount, req.TaskID, req.Description)
	if err != nil {
		return nil, err
	}
	return &TransactionResponse{Transaction: tx}, nil
}

func (h *WalletHandler) PromoteToAvailable(ctx context.Context, req *PromoteRequest) (*TransactionResponse, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := h.walletSvc.PromoteToAvailable(ctx, userID, req.OwnerID, req.Amount)
	if err != nil {
		return nil, err
	}
	return &TransactionResponse{Transaction: tx}, nil
}

func (h *WalletHandler) VerifyWallet(ctx context.Context, req *WalletRequest) (*VerifyWalletResponse, error) {
	ownerID, err := resolveOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	v, err := h.walletSvc.Verify(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &VerifyWalletResponse{Verification: v}, nil
}
