package vestingservice

import (
	"log/slog"
	"time"

	httpadapter "karat/contexts/distribution/vesting-service/adapters/http"
	"karat/contexts/distribution/vesting-service/adapters/memory"
	"karat/contexts/distribution/vesting-service/application"
	"karat/contexts/distribution/vesting-service/domain/entities"
	"karat/contexts/distribution/vesting-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Boxes          ports.BoxRepository
	Founders       ports.FounderRegistry
	Pool           ports.PoolRepository
	Grants         ports.GrantRepository
	Ledger         ports.TokenLedger
	Marker         ports.TreasuryMarker
	Outbox         ports.OutboxWriter
	Access         ports.AccessControl
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	FundingAccount string
	SpenderAccount string
	Maturity1      time.Time
	Maturity2      time.Time
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Boxes:          deps.Boxes,
		Founders:       deps.Founders,
		Pool:           deps.Pool,
		Grants:         deps.Grants,
		Ledger:         deps.Ledger,
		Marker:         deps.Marker,
		Outbox:         deps.Outbox,
		Access:         deps.Access,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		FundingAccount: deps.FundingAccount,
		SpenderAccount: deps.SpenderAccount,
		Maturity1:      deps.Maturity1,
		Maturity2:      deps.Maturity2,
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

// NewInMemoryModule builds the vesting service over a fresh box/pool
// store; the ledger, treasury marker and access control still come from
// the caller.
func NewInMemoryModule(
	logger *slog.Logger,
	pool entities.GrantPool,
	ledger ports.TokenLedger,
	marker ports.TreasuryMarker,
	access ports.AccessControl,
	fundingAccount string,
	spenderAccount string,
	maturity1 time.Time,
	maturity2 time.Time,
) Module {
	store := memory.NewStore(pool)
	module := NewModule(Dependencies{
		Boxes:          store,
		Founders:       store,
		Pool:           store,
		Grants:         store,
		Ledger:         ledger,
		Marker:         marker,
		Outbox:         store,
		Access:         access,
		Clock:          store,
		IDGenerator:    store,
		FundingAccount: fundingAccount,
		SpenderAccount: spenderAccount,
		Maturity1:      maturity1,
		Maturity2:      maturity2,
		Logger:         logger,
	})
	module.Store = store
	return module
}
