package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"karat/contexts/distribution/vesting-service/application"
	"karat/contexts/distribution/vesting-service/domain/entities"
	httptransport "karat/contexts/distribution/vesting-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ClaimHandler(ctx context.Context, boxID string) (httptransport.ClaimResponse, error) {
	value, err := h.Service.Claim(ctx, boxID)
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	resp := httptransport.ClaimResponse{Status: "success"}
	resp.Data.BoxID = boxID
	resp.Data.Value = value
	return resp, nil
}

func (h Handler) AvailabilityHandler(ctx context.Context, boxID string) (httptransport.AvailabilityResponse, error) {
	available, err := h.Service.IsAvailable(ctx, boxID)
	if err != nil {
		return httptransport.AvailabilityResponse{}, err
	}
	resp := httptransport.AvailabilityResponse{Status: "success"}
	resp.Data.BoxID = boxID
	resp.Data.Available = available
	return resp, nil
}

func (h Handler) GrantHandler(ctx context.Context, caller string, req httptransport.GrantRequest) (httptransport.GrantResponse, error) {
	grant, err := h.Service.GrantToFounder(ctx, caller, req.Founder, req.TotalValue)
	if err != nil {
		return httptransport.GrantResponse{}, err
	}
	return httptransport.GrantResponse{
		Status: "success",
		Data:   toGrantDTO(grant),
	}, nil
}

func (h Handler) RegisterFounderHandler(ctx context.Context, caller string, req httptransport.RegisterFounderRequest) (httptransport.AckResponse, error) {
	if err := h.Service.RegisterFounder(ctx, caller, req.Founder); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) GetBoxHandler(ctx context.Context, boxID string) (httptransport.BoxResponse, error) {
	box, err := h.Service.GetBox(ctx, boxID)
	if err != nil {
		return httptransport.BoxResponse{}, err
	}
	return httptransport.BoxResponse{
		Status: "success",
		Data:   toBoxDTO(box),
	}, nil
}

func (h Handler) ListBoxesHandler(ctx context.Context, beneficiary string) (httptransport.BoxListResponse, error) {
	boxes, err := h.Service.ListBoxesByBeneficiary(ctx, beneficiary)
	if err != nil {
		return httptransport.BoxListResponse{}, err
	}
	resp := httptransport.BoxListResponse{
		Status: "success",
		Data:   make([]httptransport.BoxDTO, 0, len(boxes)),
	}
	for _, box := range boxes {
		resp.Data = append(resp.Data, toBoxDTO(box))
	}
	return resp, nil
}

func (h Handler) GetGrantHandler(ctx context.Context, grantID string) (httptransport.GrantResponse, error) {
	grant, err := h.Service.GetGrant(ctx, grantID)
	if err != nil {
		return httptransport.GrantResponse{}, err
	}
	return httptransport.GrantResponse{
		Status: "success",
		Data:   toGrantDTO(grant),
	}, nil
}

func (h Handler) ListGrantsHandler(ctx context.Context, limit int) (httptransport.GrantListResponse, error) {
	grants, err := h.Service.ListGrants(ctx, limit)
	if err != nil {
		return httptransport.GrantListResponse{}, err
	}
	resp := httptransport.GrantListResponse{
		Status: "success",
		Data:   make([]httptransport.GrantDTO, 0, len(grants)),
	}
	for _, grant := range grants {
		resp.Data = append(resp.Data, toGrantDTO(grant))
	}
	return resp, nil
}

func (h Handler) PoolHandler(ctx context.Context) (httptransport.PoolResponse, error) {
	pool, err := h.Service.GrantPool(ctx)
	if err != nil {
		return httptransport.PoolResponse{}, err
	}
	resp := httptransport.PoolResponse{Status: "success"}
	resp.Data.Remaining = pool.Remaining
	resp.Data.MinTx = pool.MinTx
	return resp, nil
}

func toBoxDTO(box entities.VestingBox) httptransport.BoxDTO {
	return httptransport.BoxDTO{
		BoxID:       box.BoxID,
		BoxAccount:  box.BoxAccount,
		Beneficiary: box.Beneficiary,
		ReleaseTime: box.ReleaseTime.UTC().Format(time.RFC3339),
		CreatedAt:   box.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toGrantDTO(grant entities.GrantRecord) httptransport.GrantDTO {
	return httptransport.GrantDTO{
		GrantID:    grant.GrantID,
		Founder:    grant.Founder,
		TotalValue: grant.TotalValue,
		Immediate:  grant.Immediate,
		Box1ID:     grant.Box1ID,
		Box1Value:  grant.Box1Value,
		Box2ID:     grant.Box2ID,
		Box2Value:  grant.Box2Value,
		OccurredAt: grant.OccurredAt.UTC().Format(time.RFC3339),
	}
}
