package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accessregistry "agritrace/contexts/identity-access/access-registry"
	registryevents "agritrace/contexts/identity-access/access-registry/adapters/events"
	registrypostgres "agritrace/contexts/identity-access/access-registry/adapters/postgres"
	productledger "agritrace/contexts/traceability/product-ledger"
	ledgerevents "agritrace/contexts/traceability/product-ledger/adapters/events"
	ledgerpostgres "agritrace/contexts/traceability/product-ledger/adapters/postgres"
	workerapp "agritrace/contexts/traceability/product-ledger/application/workers"
	"agritrace/internal/platform/config"
	"agritrace/internal/platform/db"
	"agritrace/internal/platform/httpserver"
	"agritrace/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	enableRelay  bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	registryRepo := registrypostgres.NewRepository(pg.DB, cfg.RegistryOwnerID, logger)
	if err := registryRepo.Migrate(); err != nil {
		return nil, err
	}
	registryModule := accessregistry.NewModule(accessregistry.Dependencies{
		Registry: registryRepo,
		Notifier: registryevents.NewPublisher(logger),
		Clock:    registrypostgres.SystemClock{},
		Logger:   logger,
	})

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	if err := ledgerRepo.Migrate(); err != nil {
		return nil, err
	}
	ledgerModule := productledger.NewModule(productledger.Dependencies{
		Repository:     ledgerRepo,
		Access:         registryModule.Service,
		Idempotency:    ledgerRepo,
		Notifier:       ledgerevents.NewPublisher(logger),
		Clock:          ledgerpostgres.SystemClock{},
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	server := httpserver.New(registryModule, ledgerModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    ledgerRepo,
			Publisher: kafka,
			Clock:     ledgerpostgres.SystemClock{},
			Topic:     "trace.products",
			BatchSize: 100,
			Logger:    logger,
		},
		enableRelay:  cfg.EnableOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
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
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if !w.enableRelay {
		w.logger.Info("outbox relay disabled, worker idle",
			"event", "bootstrap_worker_idle",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		<-ctx.Done()
		return nil
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
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
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
