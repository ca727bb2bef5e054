package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/enums"
)

// RecordSaleInput carries the payload for closing out a sale.
type RecordSaleInput struct {
	Name           string              `json:"name" validate:"required"`
	Category       string              `json:"category"`
	Description    *string             `json:"description,omitempty"`
	Amount         decimal.Decimal     `json:"amount" validate:"required"`
	Color          string              `json:"color"`
	Size           string              `json:"size"`
	SerialNumber   *string             `json:"serial_number,omitempty"`
	ReceiptNumber  string              `json:"receipt_number" validate:"required"`
	Customer       string              `json:"customer" validate:"required"`
	CustomerNumber *string             `json:"customer_number,omitempty"`
	CustomerEmail  *string             `json:"customer_email,omitempty"`
	Date           *time.Time          `json:"date,omitempty"`
	PaidVia        enums.PaymentMethod `json:"paid_via" validate:"required"`
	Swap           bool                `json:"swap"`
	IssuedBy       string              `json:"issued_by"`
}

func (in RecordSaleInput) toModel(owner uuid.UUID) *models.Receipt {
	date := time.Now().UTC()
	if in.Date != nil {
		date = in.Date.UTC()
	}
	return &models.Receipt{
		ID:             uuid.New(),
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		Amount:         in.Amount,
		Color:          in.Color,
		Size:           in.Size,
		SerialNumber:   in.SerialNumber,
		ReceiptNumber:  in.ReceiptNumber,
		Customer:       in.Customer,
		CustomerNumber: in.CustomerNumber,
		CustomerEmail:  in.CustomerEmail,
		Date:           date,
		PaidVia:        in.PaidVia,
		Swap:           in.Swap,
		IssuedBy:       in.IssuedBy,
		ReceiptOf:      owner,
	}
}

// ReversalResult reports the outcome of a sale reversal. OrphanedReference is
// raised when the deleted receipt matched no inventory item; the reversal
// itself still succeeded.
type ReversalResult struct {
	ReceiptID         uuid.UUID `json:"receipt_id"`
	SerialNumber      *string   `json:"serial_number,omitempty"`
	ItemsCleared      int64     `json:"items_cleared"`
	OrphanedReference bool      `json:"orphaned_reference"`
}
