package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agritrace/contexts/traceability/product-ledger/domain/entities"
	domainerrors "agritrace/contexts/traceability/product-ledger/domain/errors"
	"agritrace/contexts/traceability/product-ledger/ports"
)

type Service struct {
	Repo           ports.Repository
	Access         ports.AccessChecker
	Idempotency    ports.IdempotencyStore
	Notifier       ports.NotificationPublisher
	Clock          ports.Clock
	Logger         *slog.Logger
	IdempotencyTTL time.Duration
}

// Register stores a new product with the next sequential id, its
// mandatory first journey entry, and emits ProductRegistered. The
// permission check runs before any validation or state change.
func (s Service) Register(
	ctx context.Context,
	idempotencyKey string,
	input ports.RegisterProductInput,
) (entities.Product, error) {
	var out entities.Product
	if err := s.requireAuthorized(ctx, input.FarmerID); err != nil {
		return out, err
	}

	input.FarmerID = strings.TrimSpace(input.FarmerID)
	input.Name = strings.TrimSpace(input.Name)
	input.Origin = strings.TrimSpace(input.Origin)
	if input.Name == "" || input.Origin == "" || input.Quantity <= 0 {
		return out, domainerrors.ErrInvalidInput
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings(
		"register_product",
		input.FarmerID,
		input.Name,
		input.Origin,
		input.HarvestDate.UTC().Format(time.RFC3339),
		fmt.Sprintf("%d", input.Quantity),
	)
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			item, err := s.Repo.RegisterProduct(ctx, input, s.now())
			if err != nil {
				return nil, err
			}
			s.notifyRegistered(ctx, ports.ProductRegistered{
				ProductID:   item.ProductID,
				Name:        item.Name,
				FarmerID:    item.FarmerID,
				HarvestDate: item.HarvestDate,
			})
			return json.Marshal(item)
		},
	)
	return out, err
}

// UpdateStatus overwrites status/location, appends a journey entry, and
// emits ProductStatusUpdated. Any authorized handler may set any status
// in any order; no transition legality is enforced.
func (s Service) UpdateStatus(
	ctx context.Context,
	idempotencyKey string,
	input ports.StatusUpdateInput,
) (entities.Product, error) {
	var out entities.Product
	if err := s.requireAuthorized(ctx, input.HandlerID); err != nil {
		return out, err
	}

	input.HandlerID = strings.TrimSpace(input.HandlerID)
	input.Location = strings.TrimSpace(input.Location)
	input.Notes = strings.TrimSpace(input.Notes)
	if input.ProductID <= 0 {
		return out, domainerrors.ErrProductNotFound
	}
	if input.Location == "" || !input.Status.IsValid() {
		return out, domainerrors.ErrInvalidInput
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings(
		"update_status",
		input.HandlerID,
		fmt.Sprintf("%d", input.ProductID),
		string(input.Status),
		input.Location,
		input.Notes,
	)
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			item, err := s.Repo.UpdateStatus(ctx, input, s.now())
			if err != nil {
				return nil, err
			}
			s.notifyStatusUpdated(ctx, ports.ProductStatusUpdated{
				ProductID: item.ProductID,
				Status:    item.Status,
				Location:  item.CurrentLocation,
				HandlerID: input.HandlerID,
			})
			return json.Marshal(item)
		},
	)
	return out, err
}

func (s Service) GetProduct(ctx context.Context, productID int64) (entities.Product, error) {
	if productID <= 0 {
		return entities.Product{}, domainerrors.ErrProductNotFound
	}
	return s.Repo.GetProduct(ctx, productID)
}

func (s Service) GetJourney(ctx context.Context, productID int64) ([]entities.JourneyEntry, error) {
	if productID <= 0 {
		return nil, domainerrors.ErrProductNotFound
	}
	return s.Repo.ListJourney(ctx, productID)
}

func (s Service) TotalProducts(ctx context.Context) (int64, error) {
	return s.Repo.TotalProducts(ctx)
}

func (s Service) requireAuthorized(ctx context.Context, handlerID string) error {
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == "" {
		return domainerrors.ErrPermissionDenied
	}
	if s.Access == nil {
		return domainerrors.ErrPermissionDenied
	}
	authorized, err := s.Access.IsAuthorized(ctx, handlerID)
	if err != nil {
		return err
	}
	if !authorized {
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

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) requireIdempotency(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	logger := ResolveLogger(s.Logger)
	now := s.now()

	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}

	logger.Debug("product ledger idempotent operation committed",
		"event", "product_ledger_idempotent_operation_committed",
		"module", "traceability/product-ledger",
		"layer", "application",
		"idempotency_key", key,
	)
	return decode(payload)
}

func (s Service) notifyRegistered(ctx context.Context, event ports.ProductRegistered) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.PublishProductRegistered(ctx, event); err != nil {
		ResolveLogger(s.Logger).Error("product registered notification failed",
			"event", "product_ledger_notify_failed",
			"module", "traceability/product-ledger",
			"layer", "application",
			"product_id", event.ProductID,
			"error", err.Error(),
		)
	}
}

func (s Service) notifyStatusUpdated(ctx context.Context, event ports.ProductStatusUpdated) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.PublishProductStatusUpdated(ctx, event); err != nil {
		ResolveLogger(s.Logger).Error("product status notification failed",
			"event", "product_ledger_notify_failed",
			"module", "traceability/product-ledger",
			"layer", "application",
			"product_id", event.ProductID,
			"error", err.Error(),
		)
	}
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
