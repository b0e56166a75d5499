package airdropservice

import (
	"log/slog"

	httpadapter "karat/contexts/distribution/airdrop-service/adapters/http"
	"karat/contexts/distribution/airdrop-service/adapters/memory"
	"karat/contexts/distribution/airdrop-service/application"
	"karat/contexts/distribution/airdrop-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Ledger           ports.TokenLedger
	Flags            ports.FlagRepository
	Runs             ports.RunRepository
	Outbox           ports.OutboxWriter
	Access           ports.AccessControl
	Clock            ports.Clock
	IDGenerator      ports.IDGenerator
	FundingAccount   string
	MinHolderBalance uint64
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Ledger:           deps.Ledger,
		Flags:            deps.Flags,
		Runs:             deps.Runs,
		Outbox:           deps.Outbox,
		Access:           deps.Access,
		Clock:            deps.Clock,
		IDGen:            deps.IDGenerator,
		FundingAccount:   deps.FundingAccount,
		MinHolderBalance: deps.MinHolderBalance,
		Logger:           deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds the airdrop service over a fresh flag/run
// store; the ledger and access control still come from the caller.
func NewInMemoryModule(
	logger *slog.Logger,
	ledger ports.TokenLedger,
	access ports.AccessControl,
	fundingAccount string,
	minHolderBalance uint64,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:           ledger,
		Flags:            store,
		Runs:             store,
		Outbox:           store,
		Access:           access,
		Clock:            store,
		IDGenerator:      store,
		FundingAccount:   fundingAccount,
		MinHolderBalance: minHolderBalance,
		Logger:           logger,
	})
	module.Store = store
	return module
}
