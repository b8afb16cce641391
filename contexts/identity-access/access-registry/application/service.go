package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainerrors "agritrace/contexts/identity-access/access-registry/domain/errors"
	"agritrace/contexts/identity-access/access-registry/ports"
)

type Service struct {
	Registry ports.Registry
	Notifier ports.NotificationPublisher
	Clock    ports.Clock
	Logger   *slog.Logger
}

// Authorize grants the target identity write access. Only the owner may
// grant; the owner itself is implicitly authorized and re-granting it
// fails the same way as any duplicate grant.
func (s Service) Authorize(ctx context.Context, callerID string, targetID string) (ports.Handler, error) {
	callerID = strings.TrimSpace(callerID)
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return ports.Handler{}, domainerrors.ErrInvalidIdentity
	}
	if err := s.requireOwner(ctx, callerID); err != nil {
		return ports.Handler{}, err
	}

	item, err := s.Registry.Authorize(ctx, targetID, callerID, s.now())
	if err != nil {
		return ports.Handler{}, err
	}

	s.notifyAuthorized(ctx, ports.HandlerAuthorized{
		HandlerID:    item.HandlerID,
		AuthorizedBy: callerID,
		OccurredAt:   item.AuthorizedAt,
	})
	return item, nil
}

// Revoke clears the target identity's write access. The owner cannot be
// revoked.
func (s Service) Revoke(ctx context.Context, callerID string, targetID string) error {
	callerID = strings.TrimSpace(callerID)
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return domainerrors.ErrInvalidIdentity
	}
	if err := s.requireOwner(ctx, callerID); err != nil {
		return err
	}

	if err := s.Registry.Revoke(ctx, targetID, callerID, s.now()); err != nil {
		return err
	}

	s.notifyRevoked(ctx, ports.HandlerRevoked{
		HandlerID:  targetID,
		RevokedBy:  callerID,
		OccurredAt: s.now(),
	})
	return nil
}

func (s Service) IsAuthorized(ctx context.Context, handlerID string) (bool, error) {
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == "" {
		return false, nil
	}
	return s.Registry.IsAuthorized(ctx, handlerID)
}

func (s Service) GetHandler(ctx context.Context, handlerID string) (ports.Handler, error) {
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == "" {
		return ports.Handler{}, domainerrors.ErrInvalidIdentity
	}
	return s.Registry.GetHandler(ctx, handlerID)
}

func (s Service) ListHandlers(ctx context.Context) ([]ports.Handler, error) {
	return s.Registry.ListHandlers(ctx)
}

func (s Service) requireOwner(ctx context.Context, callerID string) error {
	owner, err := s.Registry.Owner(ctx)
	if err != nil {
		return err
	}
	if callerID == "" || callerID != owner {
		return domainerrors.ErrPermissionDenied
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) notifyAuthorized(ctx context.Context, event ports.HandlerAuthorized) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.PublishHandlerAuthorized(ctx, event); err != nil {
		resolveLogger(s.Logger).Error("handler authorized notification failed",
			"event", "access_registry_notify_failed",
			"module", "identity-access/access-registry",
			"layer", "application",
			"handler_id", event.HandlerID,
			"error", err.Error(),
		)
	}
}

func (s Service) notifyRevoked(ctx context.Context, event ports.HandlerRevoked) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.PublishHandlerRevoked(ctx, event); err != nil {
		resolveLogger(s.Logger).Error("handler revoked notification failed",
			"event", "access_registry_notify_failed",
			"module", "identity-access/access-registry",
			"layer", "application",
			"handler_id", event.HandlerID,
			"error", err.Error(),
		)
	}
}
