package tokenledger

import (
	"log/slog"

	httpadapter "karat/contexts/ledger-core/token-ledger/adapters/http"
	"karat/contexts/ledger-core/token-ledger/adapters/memory"
	"karat/contexts/ledger-core/token-ledger/application"
	"karat/contexts/ledger-core/token-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Book   ports.Book
	Outbox ports.OutboxWriter
	Access ports.AccessControl
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Book:   deps.Book,
		Outbox: deps.Outbox,
		Access: deps.Access,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a ledger over a fresh memory store seeded with
// the initial supply on the owner account.
func NewInMemoryModule(logger *slog.Logger, access ports.AccessControl, owner string, initialSupply uint64) (Module, error) {
	store := memory.NewStore()
	if err := store.Seed(owner, initialSupply); err != nil {
		return Module{}, err
	}
	module := NewModule(Dependencies{
		Book:   store,
		Outbox: store,
		Access: access,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module, nil
}
