package ports

import (
	"context"
	"time"

	"agritrace/contexts/traceability/product-ledger/domain/entities"
	contractsv1 "agritrace/contracts/gen/events/v1"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// AccessChecker is the read port into the access registry. The ledger
// only checks set membership; authentication happens upstream.
type AccessChecker interface {
	IsAuthorized(ctx context.Context, handlerID string) (bool, error)
}

// RegisterProductInput carries the validated registration payload.
type RegisterProductInput struct {
	FarmerID    string
	Name        string
	Origin      string
	HarvestDate time.Time
	Quantity    int64
}

// StatusUpdateInput carries one status/location overwrite.
type StatusUpdateInput struct {
	ProductID int64
	HandlerID string
	Status    entities.Status
	Location  string
	Notes     string
}

// Repository is the write/read boundary for ledger state. Mutations are
// atomic: the product row, its journey entry, and any outbox rows
// commit together or not at all.
type Repository interface {
	RegisterProduct(ctx context.Context, input RegisterProductInput, now time.Time) (entities.Product, error)
	UpdateStatus(ctx context.Context, input StatusUpdateInput, now time.Time) (entities.Product, error)
	GetProduct(ctx context.Context, productID int64) (entities.Product, error)
	ListJourney(ctx context.Context, productID int64) ([]entities.JourneyEntry, error)
	TotalProducts(ctx context.Context) (int64, error)
}

// ProductRegistered is emitted after a registration commits.
type ProductRegistered struct {
	ProductID   int64
	Name        string
	FarmerID    string
	HarvestDate time.Time
}

// ProductStatusUpdated is emitted after a status update commits.
type ProductStatusUpdated struct {
	ProductID int64
	Status    entities.Status
	Location  string
	HandlerID string
}

// NotificationPublisher delivers ledger notifications after the
// corresponding mutation commits. Fire-and-forget; at-least-once
// delivery is acceptable.
type NotificationPublisher interface {
	PublishProductRegistered(ctx context.Context, event ProductRegistered) error
	PublishProductStatusUpdated(ctx context.Context, event ProductStatusUpdated) error
}

// OutboxMessage represents a pending relay message.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
