package httpadapter

import (
	"context"
	"log/slog"

	"karat/contexts/identity-access/access-control/application"
	httptransport "karat/contexts/identity-access/access-control/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CheckAuthorizedHandler(ctx context.Context, account string) (httptransport.CheckResponse, error) {
	allowed, err := h.Service.IsAuthorized(ctx, account)
	if err != nil {
		return httptransport.CheckResponse{}, err
	}
	return checkResponse(account, allowed), nil
}

func (h Handler) CheckWhitelistedHandler(ctx context.Context, account string) (httptransport.CheckResponse, error) {
	allowed, err := h.Service.IsWhitelisted(ctx, account)
	if err != nil {
		return httptransport.CheckResponse{}, err
	}
	return checkResponse(account, allowed), nil
}

func (h Handler) GrantAuthorizationHandler(ctx context.Context, caller string, req httptransport.MembershipRequest) (httptransport.AckResponse, error) {
	if err := h.Service.GrantAuthorization(ctx, caller, req.Account); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) RevokeAuthorizationHandler(ctx context.Context, caller string, req httptransport.MembershipRequest) (httptransport.AckResponse, error) {
	if err := h.Service.RevokeAuthorization(ctx, caller, req.Account); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) AddToWhitelistHandler(ctx context.Context, caller string, req httptransport.MembershipRequest) (httptransport.AckResponse, error) {
	if err := h.Service.AddToWhitelist(ctx, caller, req.Account); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) RemoveFromWhitelistHandler(ctx context.Context, caller string, req httptransport.MembershipRequest) (httptransport.AckResponse, error) {
	if err := h.Service.RemoveFromWhitelist(ctx, caller, req.Account); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func checkResponse(account string, allowed bool) httptransport.CheckResponse {
	resp := httptransport.CheckResponse{Status: "success"}
	resp.Data.Account = account
	resp.Data.Allowed = allowed
	return resp
}
