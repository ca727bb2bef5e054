package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is a single stocked unit. InventoryOf identifies the principal
// whose scope the item belongs to; IsSold stays consistent with receipt
// existence through the sales coordinator, not through the schema.
type InventoryItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"type:text;not null" json:"name"`
	Description  *string         `gorm:"column:description" json:"description,omitempty"`
	Category     string          `gorm:"type:text;not null" json:"category"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Color        string          `gorm:"type:text" json:"color"`
	Size         string          `gorm:"type:text" json:"size"`
	SerialNumber *string         `gorm:"column:serial_number;index" json:"serial_number,omitempty"`
	Supplier     string          `gorm:"type:text" json:"supplier"`
	DateIn       time.Time       `gorm:"column:date_in;not null" json:"date_in"`
	DateOut      *time.Time      `gorm:"column:date_out" json:"date_out,omitempty"`
	IsSold       bool            `gorm:"column:is_sold;not null;default:false" json:"is_sold"`
	InventoryOf  uuid.UUID       `gorm:"column:inventory_of;type:uuid;not null;index" json:"inventory_of"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// OwnedBy returns the scope owner used by projection filtering.
func (i InventoryItem) OwnedBy() uuid.UUID {
	return i.InventoryOf
}
