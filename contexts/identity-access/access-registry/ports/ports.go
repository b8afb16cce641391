package ports

import (
	"context"
	"time"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Handler is one identity permitted to register or update products.
// The owner is always present and cannot be revoked.
type Handler struct {
	HandlerID    string
	IsOwner      bool
	AuthorizedBy string
	AuthorizedAt time.Time
}

// Registry is the write/read boundary for the authorization set.
// Implementations must reject owner revocation and duplicate grants.
type Registry interface {
	Owner(ctx context.Context) (string, error)
	IsAuthorized(ctx context.Context, handlerID string) (bool, error)
	GetHandler(ctx context.Context, handlerID string) (Handler, error)
	Authorize(ctx context.Context, handlerID string, authorizedBy string, now time.Time) (Handler, error)
	Revoke(ctx context.Context, handlerID string, revokedBy string, now time.Time) error
	ListHandlers(ctx context.Context) ([]Handler, error)
}

// HandlerAuthorized is emitted after a grant commits.
type HandlerAuthorized struct {
	HandlerID    string
	AuthorizedBy string
	OccurredAt   time.Time
}

// HandlerRevoked is emitted after a revocation commits.
type HandlerRevoked struct {
	HandlerID  string
	RevokedBy  string
	OccurredAt time.Time
}

// NotificationPublisher delivers registry notifications after the
// corresponding mutation commits. Fire-and-forget: failures are logged
// by the caller and never affect registry state.
type NotificationPublisher interface {
	PublishHandlerAuthorized(ctx context.Context, event HandlerAuthorized) error
	PublishHandlerRevoked(ctx context.Context, event HandlerRevoked) error
}
