package productledger

import (
	"log/slog"
	"time"

	"agritrace/contexts/traceability/product-ledger/adapters/events"
	httpadapter "agritrace/contexts/traceability/product-ledger/adapters/http"
	"agritrace/contexts/traceability/product-ledger/adapters/memory"
	"agritrace/contexts/traceability/product-ledger/application"
	"agritrace/contexts/traceability/product-ledger/ports"
)

// Module is the product-ledger composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository     ports.Repository
	Access         ports.AccessChecker
	Idempotency    ports.IdempotencyStore
	Notifier       ports.NotificationPublisher
	Clock          ports.Clock
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewModule wires the ledger service and transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:           deps.Repository,
		Access:         deps.Access,
		Idempotency:    deps.Idempotency,
		Notifier:       deps.Notifier,
		Clock:          deps.Clock,
		Logger:         deps.Logger,
		IdempotencyTTL: deps.IdempotencyTTL,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(access ports.AccessChecker, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:     store,
		Access:         access,
		Idempotency:    store,
		Notifier:       events.NewPublisher(logger),
		Clock:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
