package salewindowservice

import (
	"log/slog"

	httpadapter "karat/contexts/distribution/sale-window-service/adapters/http"
	"karat/contexts/distribution/sale-window-service/adapters/memory"
	"karat/contexts/distribution/sale-window-service/application"
	"karat/contexts/distribution/sale-window-service/domain/entities"
	"karat/contexts/distribution/sale-window-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
	Gateway *memory.Gateway
}

type Dependencies struct {
	Window         ports.WindowRepository
	Sales          ports.SaleRepository
	Ledger         ports.TokenLedger
	Buyers         ports.Whitelist
	Rates          ports.RateSource
	Payments       ports.PaymentGateway
	Outbox         ports.OutboxWriter
	Access         ports.AccessControl
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	FundingAccount string
	SpenderAccount string
	Beneficiary    string
	RateUnit       uint64
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Window:         deps.Window,
		Sales:          deps.Sales,
		Ledger:         deps.Ledger,
		Buyers:         deps.Buyers,
		Rates:          deps.Rates,
		Payments:       deps.Payments,
		Outbox:         deps.Outbox,
		Access:         deps.Access,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		FundingAccount: deps.FundingAccount,
		SpenderAccount: deps.SpenderAccount,
		Beneficiary:    deps.Beneficiary,
		RateUnit:       deps.RateUnit,
		Logger:         deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds the sale window over a fresh window/sale
// store and an in-process payment gateway; the ledger, whitelist, rate
// source and access control still come from the caller.
func NewInMemoryModule(
	logger *slog.Logger,
	window entities.WindowState,
	ledger ports.TokenLedger,
	buyers ports.Whitelist,
	rates ports.RateSource,
	access ports.AccessControl,
	fundingAccount string,
	spenderAccount string,
	beneficiary string,
	rateUnit uint64,
) Module {
	store := memory.NewStore(window)
	gateway := memory.NewGateway()
	module := NewModule(Dependencies{
		Window:         store,
		Sales:          store,
		Ledger:         ledger,
		Buyers:         buyers,
		Rates:          rates,
		Payments:       gateway,
		Outbox:         store,
		Access:         access,
		Clock:          store,
		IDGenerator:    store,
		FundingAccount: fundingAccount,
		SpenderAccount: spenderAccount,
		Beneficiary:    beneficiary,
		RateUnit:       rateUnit,
		Logger:         logger,
	})
	module.Store = store
	module.Gateway = gateway
	return module
}
