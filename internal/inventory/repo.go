package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
)

// Repository exposes inventory persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an inventory repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new inventory item.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads an item by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns the full collection snapshot; scope filtering happens in the
// projection, mirroring how the live subscription consumers recompute.
func (r *Repository) List(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).Order("date_in DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes an item by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id).Error
}

// MarkSold flips matching in-scope items to sold and stamps date_out.
// Returns the number of rows touched.
func (r *Repository) MarkSold(ctx context.Context, serialNumber string, owners []uuid.UUID, soldAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("serial_number = ? AND inventory_of IN ?", serialNumber, owners).
		Updates(map[string]any{"is_sold": true, "date_out": soldAt})
	return result.RowsAffected, result.Error
}

// ClearSold resets sold state for matching in-scope items. Same owner filter
// as MarkSold; a serial shared across pools never leaks a write. Plain update
// to constants, so a second run is a no-op.
func (r *Repository) ClearSold(ctx context.Context, serialNumber string, owners []uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("serial_number = ? AND inventory_of IN ?", serialNumber, owners).
		Updates(map[string]any{"is_sold": false, "date_out": nil})
	return result.RowsAffected, result.Error
}
