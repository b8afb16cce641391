package events

import (
	"context"
	"log/slog"

	"agritrace/contexts/traceability/product-ledger/ports"
)

// Publisher is a log-backed notification publisher used for in-memory
// wiring. Postgres deployments deliver through the transactional outbox
// and the relay worker instead.
type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger}
}

func (p Publisher) PublishProductRegistered(_ context.Context, event ports.ProductRegistered) error {
	p.logger.Info("product registered notification published",
		"event", "trace_product_registered_published",
		"module", "traceability/product-ledger",
		"layer", "adapter",
		"product_id", event.ProductID,
		"farmer_id", event.FarmerID,
	)
	return nil
}

func (p Publisher) PublishProductStatusUpdated(_ context.Context, event ports.ProductStatusUpdated) error {
	p.logger.Info("product status notification published",
		"event", "trace_product_status_updated_published",
		"module", "traceability/product-ledger",
		"layer", "adapter",
		"product_id", event.ProductID,
		"status", string(event.Status),
		"handler_id", event.HandlerID,
	)
	return nil
}

var _ ports.NotificationPublisher = Publisher{}
