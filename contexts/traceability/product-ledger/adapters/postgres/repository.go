package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agritrace/contexts/traceability/product-ledger/domain/entities"
	domainerrors "agritrace/contexts/traceability/product-ledger/domain/errors"
	"agritrace/contexts/traceability/product-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	eventTypeProductRegistered    = "trace.product.registered"
	eventTypeProductStatusUpdated = "trace.product.status_updated"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates ledger tables. Product ids come from the bigserial
// primary key, which matches the sequential-from-1, never-reused
// counter contract as long as rows are never deleted (no delete path
// exists).
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&productModel{},
		&journeyModel{},
		&idempotencyModel{},
		&outboxModel{},
	)
}

func (r *Repository) RegisterProduct(ctx context.Context, input ports.RegisterProductInput, now time.Time) (entities.Product, error) {
	now = now.UTC()
	row := productModel{
		Name:            input.Name,
		Origin:          input.Origin,
		FarmerID:        input.FarmerID,
		HarvestDate:     input.HarvestDate.UTC(),
		Quantity:        input.Quantity,
		CurrentLocation: input.Origin,
		Status:          string(entities.StatusHarvested),
		LastUpdated:     now,
		CreatedAt:       now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidInput
			}
			return err
		}

		entry := journeyModel{
			ProductID: row.ProductID,
			Seq:       1,
			HandlerID: input.FarmerID,
			Location:  input.Origin,
			Status:    string(entities.StatusHarvested),
			Timestamp: now,
			Notes:     "registered",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return appendOutbox(tx, eventTypeProductRegistered, fmt.Sprintf("%d", row.ProductID), map[string]any{
			"product_id":   row.ProductID,
			"name":         row.Name,
			"farmer_id":    row.FarmerID,
			"harvest_date": row.HarvestDate.Format(time.RFC3339),
		}, now)
	})
	if err != nil {
		return entities.Product{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, input ports.StatusUpdateInput, now time.Time) (entities.Product, error) {
	now = now.UTC()
	var row productModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", input.ProductID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrProductNotFound
			}
			return err
		}

		row.Status = string(input.Status)
		row.CurrentLocation = input.Location
		row.LastUpdated = now
		if err := tx.
			Model(&productModel{}).
			Where("product_id = ?", input.ProductID).
			Updates(map[string]any{
				"status":           row.Status,
				"current_location": row.CurrentLocation,
				"last_updated":     row.LastUpdated,
			}).
			Error; err != nil {
			return err
		}

		var seq int64
		if err := tx.
			Model(&journeyModel{}).
			Where("product_id = ?", input.ProductID).
			Count(&seq).
			Error; err != nil {
			return err
		}

		entry := journeyModel{
			ProductID: input.ProductID,
			Seq:       int(seq) + 1,
			HandlerID: input.HandlerID,
			Location:  input.Location,
			Status:    string(input.Status),
			Timestamp: now,
			Notes:     input.Notes,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return appendOutbox(tx, eventTypeProductStatusUpdated, fmt.Sprintf("%d", input.ProductID), map[string]any{
			"product_id": input.ProductID,
			"status":     string(input.Status),
			"location":   input.Location,
			"handler_id": input.HandlerID,
		}, now)
	})
	if err != nil {
		return entities.Product{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetProduct(ctx context.Context, productID int64) (entities.Product, error) {
	var row productModel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Product{}, domainerrors.ErrProductNotFound
		}
		return entities.Product{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListJourney(ctx context.Context, productID int64) ([]entities.JourneyEntry, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&productModel{}).
		Where("product_id = ?", productID).
		Count(&count).
		Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domainerrors.ErrProductNotFound
	}

	var rows []journeyModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("seq ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.JourneyEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) TotalProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&productModel{}).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", key).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     append([]byte(nil), row.Payload...),
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Payload:     append([]byte(nil), record.Payload...),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func appendOutbox(tx *gorm.DB, eventType string, partitionKey string, payload map[string]any, now time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	envelope := ports.EventEnvelope{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		OccurredAt:       now,
		SourceService:    "agritrace",
		SchemaVersion:    1,
		PartitionKeyPath: "product_id",
		PartitionKey:     partitionKey,
		Data:             data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return tx.Create(&outboxModel{
		OutboxID:  uuid.NewString(),
		EventType: eventType,
		Payload:   raw,
		Status:    outboxStatusPending,
		CreatedAt: now,
	}).Error
}

type productModel struct {
	ProductID       int64     `gorm:"column:product_id;primaryKey;autoIncrement"`
	Name            string    `gorm:"column:name"`
	Origin          string    `gorm:"column:origin"`
	FarmerID        string    `gorm:"column:farmer_id"`
	HarvestDate     time.Time `gorm:"column:harvest_date"`
	Quantity        int64     `gorm:"column:quantity"`
	CurrentLocation string    `gorm:"column:current_location"`
	Status          string    `gorm:"column:status"`
	LastUpdated     time.Time `gorm:"column:last_updated"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (productModel) TableName() string { return "trace_products" }

func (m productModel) toEntity() entities.Product {
	return entities.Product{
		ProductID:       m.ProductID,
		Name:            m.Name,
		Origin:          m.Origin,
		FarmerID:        m.FarmerID,
		HarvestDate:     m.HarvestDate.UTC(),
		Quantity:        m.Quantity,
		CurrentLocation: m.CurrentLocation,
		Status:          entities.Status(m.Status),
		LastUpdated:     m.LastUpdated.UTC(),
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

type journeyModel struct {
	EntryID   int64     `gorm:"column:entry_id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;uniqueIndex:idx_journey_product_seq"`
	Seq       int       `gorm:"column:seq;uniqueIndex:idx_journey_product_seq"`
	HandlerID string    `gorm:"column:handler_id"`
	Location  string    `gorm:"column:location"`
	Status    string    `gorm:"column:status"`
	Timestamp time.Time `gorm:"column:timestamp"`
	Notes     string    `gorm:"column:notes"`
}

func (journeyModel) TableName() string { return "trace_journey_entries" }

func (m journeyModel) toEntity() entities.JourneyEntry {
	return entities.JourneyEntry{
		ProductID: m.ProductID,
		Seq:       m.Seq,
		HandlerID: m.HandlerID,
		Location:  m.Location,
		Status:    entities.Status(m.Status),
		Timestamp: m.Timestamp.UTC(),
		Notes:     m.Notes,
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "trace_idempotency" }

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "trace_outbox" }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
