package events

import (
	"context"
	"log/slog"

	"agritrace/contexts/identity-access/access-registry/ports"
)

// Publisher is a log-backed notification publisher used for in-memory
// wiring. The postgres path delivers through the product-ledger outbox
// relay instead.
type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger}
}

func (p Publisher) PublishHandlerAuthorized(_ context.Context, event ports.HandlerAuthorized) error {
	p.logger.Info("handler authorized notification published",
		"event", "registry_handler_authorized_published",
		"module", "identity-access/access-registry",
		"layer", "adapter",
		"handler_id", event.HandlerID,
		"authorized_by", event.AuthorizedBy,
	)
	return nil
}

func (p Publisher) PublishHandlerRevoked(_ context.Context, event ports.HandlerRevoked) error {
	p.logger.Info("handler revoked notification published",
		"event", "registry_handler_revoked_published",
		"module", "identity-access/access-registry",
		"layer", "adapter",
		"handler_id", event.HandlerID,
		"revoked_by", event.RevokedBy,
	)
	return nil
}

var _ ports.NotificationPublisher = Publisher{}
