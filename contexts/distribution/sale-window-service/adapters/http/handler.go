package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"karat/contexts/distribution/sale-window-service/application"
	"karat/contexts/distribution/sale-window-service/domain/entities"
	httptransport "karat/contexts/distribution/sale-window-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) PurchaseHandler(ctx context.Context, req httptransport.PurchaseRequest) (httptransport.SaleResponse, error) {
	sale, err := h.Service.Purchase(ctx, req.Buyer, req.PaymentValue)
	if err != nil {
		return httptransport.SaleResponse{}, err
	}
	return httptransport.SaleResponse{
		Status: "success",
		Data:   toDTO(sale),
	}, nil
}

func (h Handler) IncreaseHardCapHandler(ctx context.Context, caller string, req httptransport.IncreaseHardCapRequest) (httptransport.WindowResponse, error) {
	window, err := h.Service.IncreaseHardCap(ctx, caller, req.Amount)
	if err != nil {
		return httptransport.WindowResponse{}, err
	}
	return httptransport.WindowResponse{
		Status: "success",
		Data:   toWindowDTO(window),
	}, nil
}

func (h Handler) StatusHandler(ctx context.Context) (httptransport.StatusResponse, error) {
	status, err := h.Service.Status(ctx)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	resp := httptransport.StatusResponse{Status: "success"}
	resp.Data.Phase = string(status.Phase)
	resp.Data.Window = toWindowDTO(status.State)
	resp.Data.SaleCount = status.Sales.SaleCount
	resp.Data.TokensSold = status.Sales.TokensSold
	resp.Data.PaymentCollected = status.Sales.PaymentCollected
	resp.Data.AsOf = status.AsOf.UTC().Format(time.RFC3339)
	return resp, nil
}

func (h Handler) GetSaleHandler(ctx context.Context, saleID string) (httptransport.SaleResponse, error) {
	sale, err := h.Service.GetSale(ctx, saleID)
	if err != nil {
		return httptransport.SaleResponse{}, err
	}
	return httptransport.SaleResponse{
		Status: "success",
		Data:   toDTO(sale),
	}, nil
}

func (h Handler) ListSalesHandler(ctx context.Context, limit int) (httptransport.SaleListResponse, error) {
	sales, err := h.Service.ListSales(ctx, limit)
	if err != nil {
		return httptransport.SaleListResponse{}, err
	}
	resp := httptransport.SaleListResponse{
		Status: "success",
		Data:   make([]httptransport.SaleDTO, 0, len(sales)),
	}
	for _, sale := range sales {
		resp.Data = append(resp.Data, toDTO(sale))
	}
	return resp, nil
}

func toDTO(sale entities.SaleRecord) httptransport.SaleDTO {
	return httptransport.SaleDTO{
		SaleID:       sale.SaleID,
		Buyer:        sale.Buyer,
		PaymentValue: sale.PaymentValue,
		Tokens:       sale.Tokens,
		Rate:         sale.Rate,
		OccurredAt:   sale.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func toWindowDTO(window entities.WindowState) httptransport.WindowDTO {
	return httptransport.WindowDTO{
		HardCap:   window.HardCap,
		Remaining: window.Remaining,
		StartTime: window.StartTime.UTC().Format(time.RFC3339),
		StopTime:  window.StopTime.UTC().Format(time.RFC3339),
		MinTx:     window.MinTx,
		MaxTx:     window.MaxTx,
	}
}
