package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// Principal is the profile record behind an authenticated actor. The identity
// provider owns the matching credential; this row carries role and scope.
type Principal struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string            `gorm:"type:text;not null;uniqueIndex" json:"email"`
	DisplayName string            `gorm:"column:display_name;not null" json:"display_name"`
	AccountType enums.AccountType `gorm:"column:account_type;type:text;not null" json:"account_type"`
	AdminID     *uuid.UUID        `gorm:"column:admin_id;type:uuid;index" json:"admin_id,omitempty"`
	AdminName   *string           `gorm:"column:admin_name" json:"admin_name,omitempty"`
	ImageURL    *string           `gorm:"column:image_url" json:"image_url,omitempty"`
	Position    *string           `gorm:"column:position" json:"position,omitempty"`
	Department  *string           `gorm:"column:department" json:"department,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// OwnedBy returns the scope owner for roster filtering. A principal belongs to
// the admin that created it, or to itself at the top of the hierarchy.
func (p Principal) OwnedBy() uuid.UUID {
	if p.AdminID != nil {
		return *p.AdminID
	}
	return p.ID
}
