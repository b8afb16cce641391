package accessregistry

import (
	"log/slog"

	"agritrace/contexts/identity-access/access-registry/adapters/events"
	httpadapter "agritrace/contexts/identity-access/access-registry/adapters/http"
	"agritrace/contexts/identity-access/access-registry/adapters/memory"
	"agritrace/contexts/identity-access/access-registry/application"
	"agritrace/contexts/identity-access/access-registry/ports"
)

// Module is the access-registry composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Registry ports.Registry
	Notifier ports.NotificationPublisher
	Clock    ports.Clock
	Logger   *slog.Logger
}

// NewModule wires the registry service and transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Registry: deps.Registry,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
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
func NewInMemoryModule(ownerID string, logger *slog.Logger) Module {
	store := memory.NewStore(ownerID)
	module := NewModule(Dependencies{
		Registry: store,
		Notifier: events.NewPublisher(logger),
		Clock:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
