package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "agritrace/contexts/identity-access/access-registry/domain/errors"
	"agritrace/contexts/identity-access/access-registry/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db      *gorm.DB
	ownerID string
	logger  *slog.Logger
}

func NewRepository(db *gorm.DB, ownerID string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		ownerID = "owner_root"
	}
	return &Repository{
		db:      db,
		ownerID: ownerID,
		logger:  logger,
	}
}

// Migrate creates the handler table. The owner is not stored as a row;
// it is configuration and always authorized.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&handlerModel{})
}

func (r *Repository) Owner(ctx context.Context) (string, error) {
	return r.ownerID, nil
}

func (r *Repository) IsAuthorized(ctx context.Context, handlerID string) (bool, error) {
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == r.ownerID {
		return true, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&handlerModel{}).
		Where("handler_id = ?", handlerID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) GetHandler(ctx context.Context, handlerID string) (ports.Handler, error) {
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == r.ownerID {
		return ports.Handler{HandlerID: r.ownerID, IsOwner: true}, nil
	}
	var row handlerModel
	err := r.db.WithContext(ctx).
		Where("handler_id = ?", handlerID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Handler{}, domainerrors.ErrHandlerNotFound
		}
		return ports.Handler{}, err
	}
	return row.toPort(), nil
}

func (r *Repository) Authorize(ctx context.Context, handlerID string, authorizedBy string, now time.Time) (ports.Handler, error) {
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == "" {
		return ports.Handler{}, domainerrors.ErrInvalidIdentity
	}
	if handlerID == r.ownerID {
		return ports.Handler{}, domainerrors.ErrAlreadyAuthorized
	}

	row := handlerModel{
		HandlerID:    handlerID,
		AuthorizedBy: strings.TrimSpace(authorizedBy),
		AuthorizedAt: now.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.Handler{}, domainerrors.ErrAlreadyAuthorized
		}
		return ports.Handler{}, err
	}
	return row.toPort(), nil
}

func (r *Repository) Revoke(ctx context.Context, handlerID string, revokedBy string, now time.Time) error {
	handlerID = strings.TrimSpace(handlerID)
	if handlerID == r.ownerID {
		return domainerrors.ErrCannotRevokeOwner
	}
	result := r.db.WithContext(ctx).
		Where("handler_id = ?", handlerID).
		Delete(&handlerModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotAuthorized
	}
	return nil
}

func (r *Repository) ListHandlers(ctx context.Context) ([]ports.Handler, error) {
	var rows []handlerModel
	if err := r.db.WithContext(ctx).
		Order("handler_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.Handler, 0, len(rows)+1)
	items = append(items, ports.Handler{HandlerID: r.ownerID, IsOwner: true})
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

type handlerModel struct {
	HandlerID    string    `gorm:"column:handler_id;primaryKey"`
	AuthorizedBy string    `gorm:"column:authorized_by"`
	AuthorizedAt time.Time `gorm:"column:authorized_at"`
}

func (handlerModel) TableName() string { return "registry_handlers" }

func (m handlerModel) toPort() ports.Handler {
	return ports.Handler{
		HandlerID:    m.HandlerID,
		AuthorizedBy: m.AuthorizedBy,
		AuthorizedAt: m.AuthorizedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SystemClock satisfies the Clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var _ ports.Registry = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
