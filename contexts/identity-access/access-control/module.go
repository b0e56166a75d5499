package accesscontrol

import (
	"log/slog"

	httpadapter "karat/contexts/identity-access/access-control/adapters/http"
	"karat/contexts/identity-access/access-control/adapters/memory"
	"karat/contexts/identity-access/access-control/application"
	"karat/contexts/identity-access/access-control/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
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

func NewInMemoryModule(logger *slog.Logger, owner string) Module {
	store := memory.NewStore(owner)
	module := NewModule(Dependencies{
		Repository: store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
