package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// Receipt closes out a sale. Immutable once written; reversal deletes the row
// and the sales coordinator fixes up the matching inventory.
type Receipt struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string              `gorm:"type:text;not null" json:"name"`
	Category       string              `gorm:"type:text" json:"category"`
	Description    *string             `gorm:"column:description" json:"description,omitempty"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Color          string              `gorm:"type:text" json:"color"`
	Size           string              `gorm:"type:text" json:"size"`
	SerialNumber   *string             `gorm:"column:serial_number;index" json:"serial_number,omitempty"`
	ReceiptNumber  string              `gorm:"column:receipt_number;not null" json:"receipt_number"`
	Customer       string              `gorm:"type:text;not null" json:"customer"`
	CustomerNumber *string             `gorm:"column:customer_number" json:"customer_number,omitempty"`
	CustomerEmail  *string             `gorm:"column:customer_email" json:"customer_email,omitempty"`
	Date           time.Time           `gorm:"column:date;not null" json:"date"`
	PaidVia        enums.PaymentMethod `gorm:"column:paid_via;type:text;not null" json:"paid_via"`
	Swap           bool                `gorm:"column:swap;not null;default:false" json:"swap"`
	IssuedBy       string              `gorm:"column:issued_by" json:"issued_by"`
	ReceiptOf      uuid.UUID           `gorm:"column:receipt_of;type:uuid;not null;index" json:"receipt_of"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// OwnedBy returns the scope owner used by projection filtering.
func (r Receipt) OwnedBy() uuid.UUID {
	return r.ReceiptOf
}
