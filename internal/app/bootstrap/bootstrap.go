package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	airdropservice "karat/contexts/distribution/airdrop-service"
	airdropworkers "karat/contexts/distribution/airdrop-service/application/workers"
	salewindowservice "karat/contexts/distribution/sale-window-service"
	salememory "karat/contexts/distribution/sale-window-service/adapters/memory"
	saleworkers "karat/contexts/distribution/sale-window-service/application/workers"
	saleentities "karat/contexts/distribution/sale-window-service/domain/entities"
	vestingservice "karat/contexts/distribution/vesting-service"
	vestingworkers "karat/contexts/distribution/vesting-service/application/workers"
	vestingentities "karat/contexts/distribution/vesting-service/domain/entities"
	accesscontrol "karat/contexts/identity-access/access-control"
	tokenledger "karat/contexts/ledger-core/token-ledger"
	ledgerpostgres "karat/contexts/ledger-core/token-ledger/adapters/postgres"
	ledgerworkers "karat/contexts/ledger-core/token-ledger/application/workers"
	"karat/internal/platform/config"
	"karat/internal/platform/db"
	"karat/internal/platform/httpserver"
	"karat/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	saleSpenderAccount    = "sale-window"
	vestingSpenderAccount = "vesting-orchestrator"
)

type modules struct {
	access  accesscontrol.Module
	ledger  tokenledger.Module
	airdrop airdropservice.Module
	sale    salewindowservice.Module
	vesting vestingservice.Module
}

type relay interface {
	RunOnce(ctx context.Context) error
}

type APIApp struct {
	server *httpserver.Server
	logger *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	archive      *ledgerworkers.ArchiveConsumer
	relays       []relay
	pollInterval time.Duration
	logger       *slog.Logger
}

// buildModules wires the five contexts over in-memory stores: access
// control first, then the ledger seeded with the initial supply, then
// the three distribution services that consume both through their
// ports. The sale window and the vesting orchestrator each get a
// standing allowance on their funding account.
func buildModules(cfg config.Config, logger *slog.Logger) (modules, error) {
	access := accesscontrol.NewInMemoryModule(logger, cfg.OwnerAccount)

	ledger, err := tokenledger.NewInMemoryModule(logger, access.Service, cfg.OwnerAccount, cfg.InitialSupply)
	if err != nil {
		return modules{}, err
	}

	airdrop := airdropservice.NewInMemoryModule(
		logger,
		ledger.Service,
		access.Service,
		cfg.AirdropFundingAccount,
		cfg.MinHolderBalance,
	)

	sale := salewindowservice.NewInMemoryModule(
		logger,
		saleentities.WindowState{
			HardCap:   cfg.SaleHardCap,
			Remaining: cfg.SaleHardCap,
			StartTime: cfg.SaleStartTime,
			StopTime:  cfg.SaleStopTime,
			MinTx:     cfg.SaleMinTx,
			MaxTx:     cfg.SaleMaxTx,
		},
		ledger.Service,
		access.Service,
		salememory.NewRateSource(cfg.SaleRate),
		access.Service,
		cfg.SaleFundingAccount,
		saleSpenderAccount,
		cfg.SaleBeneficiary,
		cfg.SaleRateUnit,
	)

	vesting := vestingservice.NewInMemoryModule(
		logger,
		vestingentities.GrantPool{
			Remaining: cfg.VestingPoolRemaining,
			MinTx:     cfg.VestingMinTx,
		},
		ledger.Service,
		airdrop.Service,
		access.Service,
		cfg.VestingFundingAccount,
		vestingSpenderAccount,
		cfg.VestingMaturity1,
		cfg.VestingMaturity2,
	)

	ctx := context.Background()
	if err := ledger.Service.Approve(ctx, cfg.SaleFundingAccount, saleSpenderAccount, cfg.SaleHardCap); err != nil {
		return modules{}, err
	}
	if err := ledger.Service.Approve(ctx, cfg.VestingFundingAccount, vestingSpenderAccount, cfg.VestingPoolRemaining); err != nil {
		return modules{}, err
	}

	return modules{
		access:  access,
		ledger:  ledger,
		airdrop: airdrop,
		sale:    sale,
		vesting: vesting,
	}, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	mods, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		mods.ledger,
		mods.access,
		mods.airdrop,
		mods.sale,
		mods.vesting,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server: server,
		logger: logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	mods, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	app := &WorkerApp{
		pollInterval: 2 * time.Second,
		logger:       logger,
	}

	if cfg.EnableLedgerArchiveConsumer {
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, errors.New("POSTGRES_DSN is required for the ledger archive consumer")
		}
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.postgres = pg
		app.archive = &ledgerworkers.ArchiveConsumer{
			Subscriber: kafka,
			Archive:    ledgerpostgres.NewRepository(pg.DB, logger),
			Logger:     logger,
		}
	}

	if cfg.EnableOutboxRelays {
		app.relays = []relay{
			ledgerworkers.OutboxRelay{
				Outbox:    mods.ledger.Store,
				Publisher: kafka,
				Clock:     mods.ledger.Store,
				BatchSize: 100,
				Logger:    logger,
			},
			airdropworkers.OutboxRelay{
				Outbox:    mods.airdrop.Store,
				Publisher: kafka,
				Clock:     mods.airdrop.Store,
				BatchSize: 100,
				Logger:    logger,
			},
			saleworkers.OutboxRelay{
				Outbox:    mods.sale.Store,
				Publisher: kafka,
				Clock:     mods.sale.Store,
				BatchSize: 100,
				Logger:    logger,
			},
			vestingworkers.OutboxRelay{
				Outbox:    mods.vesting.Store,
				Publisher: kafka,
				Clock:     mods.vesting.Store,
				BatchSize: 100,
				Logger:    logger,
			},
		}
	}
	return app, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.archive != nil {
		if err := w.archive.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		for _, r := range w.relays {
			if err := r.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
