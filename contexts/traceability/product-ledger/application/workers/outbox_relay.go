package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "agritrace/contexts/traceability/product-ledger/application"
	"agritrace/contexts/traceability/product-ledger/ports"
)

// OutboxRelay drains pending outbox rows to the event bus. Rows are
// published in creation order and acknowledged one by one, so a failed
// publish is retried on the next cycle (at-least-once delivery).
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	topic := r.Topic
	if topic == "" {
		topic = "trace.products"
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "product_ledger_outbox_list_failed",
			"module", "traceability/product-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload decode failed",
				"event", "product_ledger_outbox_decode_failed",
				"module", "traceability/product-ledger",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}

		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "product_ledger_outbox_publish_failed",
				"module", "traceability/product-ledger",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, now); err != nil {
			logger.Error("outbox mark published failed",
				"event", "product_ledger_outbox_mark_failed",
				"module", "traceability/product-ledger",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "product_ledger_outbox_relay_completed",
			"module", "traceability/product-ledger",
			"layer", "worker",
			"published_count", len(pending),
		)
	}
	return nil
}
