package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"bazaar/contexts/finance-core/seller-ledger/application"
	"bazaar/contexts/finance-core/seller-ledger/domain/entities"
	httptransport "bazaar/contexts/finance-core/seller-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) BalanceHandler(ctx context.Context, sellerID string) (httptransport.BalanceResponse, error) {
	snapshot, err := h.Service.Balance(ctx, sellerID)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Status: "success",
		Data: httptransport.BalanceDTO{
			SellerID:  snapshot.SellerID,
			Available: snapshot.Available,
			Pending:   snapshot.Pending,
			Withdrawn: snapshot.Withdrawn,
		},
	}, nil
}

func (h Handler) RequestWithdrawalHandler(
	ctx context.Context,
	sellerID string,
	req httptransport.WithdrawalRequest,
) (httptransport.WithdrawalResponse, error) {
	withdrawal, err := h.Service.RequestWithdrawal(ctx, sellerID, req.Amount)
	if err != nil {
		return httptransport.WithdrawalResponse{}, err
	}
	return httptransport.WithdrawalResponse{Status: "success", Data: toDTO(withdrawal)}, nil
}

func (h Handler) ListWithdrawalsHandler(
	ctx context.Context,
	sellerID string,
	limit int,
	offset int,
) (httptransport.WithdrawalListResponse, error) {
	withdrawals, err := h.Service.ListWithdrawals(ctx, sellerID, limit, offset)
	if err != nil {
		return httptransport.WithdrawalListResponse{}, err
	}
	items := make([]httptransport.WithdrawalDTO, 0, len(withdrawals))
	for _, withdrawal := range withdrawals {
		items = append(items, toDTO(withdrawal))
	}
	return httptransport.WithdrawalListResponse{Status: "success", Data: items}, nil
}

func toDTO(w entities.Withdrawal) httptransport.WithdrawalDTO {
	return httptransport.WithdrawalDTO{
		WithdrawalID:  w.WithdrawalID,
		SellerID:      w.SellerID,
		Amount:        w.Amount,
		Currency:      w.Currency,
		Status:        string(w.Status),
		TransferID:    w.TransferID,
		FailureReason: w.FailureReason,
		CreatedAt:     w.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     w.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
