package httpadapter

import (
	"context"
	"log/slog"

	"karat/contexts/ledger-core/token-ledger/application"
	httptransport "karat/contexts/ledger-core/token-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) TransferHandler(ctx context.Context, caller string, req httptransport.TransferRequest) (httptransport.AckResponse, error) {
	if err := h.Service.Transfer(ctx, caller, req.To, req.Value); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) TransferFromHandler(ctx context.Context, spender string, req httptransport.TransferFromRequest) (httptransport.AckResponse, error) {
	if err := h.Service.TransferFrom(ctx, spender, req.From, req.To, req.Value); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) ApproveHandler(ctx context.Context, caller string, req httptransport.ApproveRequest) (httptransport.AllowanceResponse, error) {
	if err := h.Service.Approve(ctx, caller, req.Spender, req.Value); err != nil {
		return httptransport.AllowanceResponse{}, err
	}
	return httptransport.AllowanceResponse{
		Status: "success",
		Data: httptransport.AllowanceData{
			Owner:     caller,
			Spender:   req.Spender,
			Allowance: req.Value,
		},
	}, nil
}

func (h Handler) IncreaseApprovalHandler(ctx context.Context, caller string, req httptransport.AdjustApprovalRequest) (httptransport.AllowanceResponse, error) {
	allowance, err := h.Service.IncreaseApproval(ctx, caller, req.Spender, req.Delta)
	if err != nil {
		return httptransport.AllowanceResponse{}, err
	}
	return httptransport.AllowanceResponse{
		Status: "success",
		Data: httptransport.AllowanceData{
			Owner:     caller,
			Spender:   req.Spender,
			Allowance: allowance,
		},
	}, nil
}

func (h Handler) DecreaseApprovalHandler(ctx context.Context, caller string, req httptransport.AdjustApprovalRequest) (httptransport.AllowanceResponse, error) {
	allowance, err := h.Service.DecreaseApproval(ctx, caller, req.Spender, req.Delta)
	if err != nil {
		return httptransport.AllowanceResponse{}, err
	}
	return httptransport.AllowanceResponse{
		Status: "success",
		Data: httptransport.AllowanceData{
			Owner:     caller,
			Spender:   req.Spender,
			Allowance: allowance,
		},
	}, nil
}

func (h Handler) MintHandler(ctx context.Context, caller string, req httptransport.MintRequest) (httptransport.AckResponse, error) {
	if err := h.Service.Mint(ctx, caller, req.To, req.Value); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) BurnHandler(ctx context.Context, caller string, req httptransport.BurnRequest) (httptransport.AckResponse, error) {
	if err := h.Service.Burn(ctx, caller, req.Value); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) BalanceHandler(ctx context.Context, account string) (httptransport.BalanceResponse, error) {
	balance, err := h.Service.BalanceOf(ctx, account)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Status: "success",
		Data: httptransport.BalanceData{
			Account: account,
			Balance: balance,
		},
	}, nil
}

func (h Handler) AllowanceHandler(ctx context.Context, owner string, spender string) (httptransport.AllowanceResponse, error) {
	allowance, err := h.Service.AllowanceOf(ctx, owner, spender)
	if err != nil {
		return httptransport.AllowanceResponse{}, err
	}
	return httptransport.AllowanceResponse{
		Status: "success",
		Data: httptransport.AllowanceData{
			Owner:     owner,
			Spender:   spender,
			Allowance: allowance,
		},
	}, nil
}

func (h Handler) SupplyHandler(ctx context.Context) (httptransport.SupplyResponse, error) {
	supply, err := h.Service.TotalSupply(ctx)
	if err != nil {
		return httptransport.SupplyResponse{}, err
	}
	resp := httptransport.SupplyResponse{Status: "success"}
	resp.Data.TotalSupply = supply
	return resp, nil
}

func (h Handler) HoldersHandler(ctx context.Context) (httptransport.HoldersResponse, error) {
	holders, err := h.Service.Holders(ctx)
	if err != nil {
		return httptransport.HoldersResponse{}, err
	}
	return httptransport.HoldersResponse{
		Status: "success",
		Data:   holders,
	}, nil
}
