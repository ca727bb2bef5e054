package receipts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
)

// Repository exposes receipt persistence operations. Receipts are immutable:
// there is no update surface, only create, read, and delete.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a receipts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new receipt.
func (r *Repository) Create(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// FindByID loads a receipt by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

// List returns the full collection snapshot for projection filtering.
func (r *Repository) List(ctx context.Context) ([]models.Receipt, error) {
	var records []models.Receipt
	if err := r.db.WithContext(ctx).Order("date DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a receipt by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Receipt{}, "id = ?", id).Error
}
