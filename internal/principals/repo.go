package principals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// Repository exposes principal-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a principals repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new principal record.
func (r *Repository) Create(ctx context.Context, principal *models.Principal) error {
	return r.db.WithContext(ctx).Create(principal).Error
}

// FindByID loads a principal by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	var principal models.Principal
	if err := r.db.WithContext(ctx).First(&principal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &principal, nil
}

// FindByEmail retrieves the principal matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	var principal models.Principal
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&principal).Error; err != nil {
		return nil, err
	}
	return &principal, nil
}

// ListByAdmin returns the principals created by the given admin, restricted to
// the provided account types.
func (r *Repository) ListByAdmin(ctx context.Context, adminID uuid.UUID, types []enums.AccountType) ([]models.Principal, error) {
	var roster []models.Principal
	query := r.db.WithContext(ctx).Where("admin_id = ?", adminID)
	if len(types) > 0 {
		query = query.Where("account_type IN ?", types)
	}
	if err := query.Order("created_at ASC").Find(&roster).Error; err != nil {
		return nil, err
	}
	return roster, nil
}

// UpdateAccountType overwrites the role field for the given principal.
func (r *Repository) UpdateAccountType(ctx context.Context, id uuid.UUID, accountType enums.AccountType) error {
	return r.db.WithContext(ctx).
		Model(&models.Principal{}).
		Where("id = ?", id).
		UpdateColumn("account_type", accountType).Error
}

// UpdateProfile applies the provided column patch to a principal.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Principal{}).
		Where("id = ?", id).
		Updates(patch).Error
}
