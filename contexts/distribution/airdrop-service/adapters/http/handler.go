package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"karat/contexts/distribution/airdrop-service/application"
	"karat/contexts/distribution/airdrop-service/domain/entities"
	httptransport "karat/contexts/distribution/airdrop-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RunHandler(ctx context.Context, caller string, req httptransport.RunRequest) (httptransport.RunResponse, error) {
	run, err := h.Service.Run(ctx, caller, req.PoolAmount)
	if err != nil {
		return httptransport.RunResponse{}, err
	}
	return httptransport.RunResponse{
		Status: "success",
		Data:   toDTO(run),
	}, nil
}

func (h Handler) GetRunHandler(ctx context.Context, runID string) (httptransport.RunResponse, error) {
	run, err := h.Service.GetRun(ctx, runID)
	if err != nil {
		return httptransport.RunResponse{}, err
	}
	return httptransport.RunResponse{
		Status: "success",
		Data:   toDTO(run),
	}, nil
}

func (h Handler) ListRunsHandler(ctx context.Context, limit int) (httptransport.RunListResponse, error) {
	runs, err := h.Service.ListRuns(ctx, limit)
	if err != nil {
		return httptransport.RunListResponse{}, err
	}
	resp := httptransport.RunListResponse{
		Status: "success",
		Data:   make([]httptransport.RunDTO, 0, len(runs)),
	}
	for _, run := range runs {
		resp.Data = append(resp.Data, toDTO(run))
	}
	return resp, nil
}

func (h Handler) SetExchangerHandler(ctx context.Context, caller string, req httptransport.SetExchangerRequest) (httptransport.AckResponse, error) {
	if err := h.Service.SetExchanger(ctx, caller, req.Account, req.Flag); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) SetDestinationHandler(ctx context.Context, caller string, req httptransport.SetDestinationRequest) (httptransport.AckResponse, error) {
	if err := h.Service.SetDestination(ctx, caller, req.Account, req.Destination); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) SetTreasuryBoxHandler(ctx context.Context, caller string, req httptransport.SetTreasuryBoxRequest) (httptransport.AckResponse, error) {
	if err := h.Service.SetTreasuryBox(ctx, caller, req.Account, req.Flag); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) FlagsHandler(ctx context.Context, account string) (httptransport.FlagsResponse, error) {
	flags, err := h.Service.FlagsOf(ctx, account)
	if err != nil {
		return httptransport.FlagsResponse{}, err
	}
	resp := httptransport.FlagsResponse{Status: "success"}
	resp.Data.Account = account
	resp.Data.TreasuryBox = flags.TreasuryBox
	resp.Data.Exchanger = flags.Exchanger
	resp.Data.Destination = flags.Destination
	return resp, nil
}

func toDTO(run entities.AirdropRun) httptransport.RunDTO {
	return httptransport.RunDTO{
		RunID:          run.RunID,
		FundingAccount: run.FundingAccount,
		PoolAmount:     run.PoolAmount,
		EligibleTotal:  run.EligibleTotal,
		TransferCount:  run.TransferCount,
		Distributed:    run.Distributed,
		Status:         string(run.Status),
		FailureReason:  run.FailureReason,
		StartedAt:      run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:     run.FinishedAt.UTC().Format(time.RFC3339),
	}
}
