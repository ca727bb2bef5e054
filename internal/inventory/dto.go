package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
)

// CreateItemInput carries the payload for stock intake.
type CreateItemInput struct {
	Name         string          `json:"name" validate:"required"`
	Description  *string         `json:"description,omitempty"`
	Category     string          `json:"category" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	SerialNumber *string         `json:"serial_number,omitempty"`
	Supplier     string          `json:"supplier"`
	DateIn       *time.Time      `json:"date_in,omitempty"`
}

func (in CreateItemInput) toModel(owner uuid.UUID) *models.InventoryItem {
	dateIn := time.Now().UTC()
	if in.DateIn != nil {
		dateIn = in.DateIn.UTC()
	}
	return &models.InventoryItem{
		ID:           uuid.New(),
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Price:        in.Price,
		Color:        in.Color,
		Size:         in.Size,
		SerialNumber: in.SerialNumber,
		Supplier:     in.Supplier,
		DateIn:       dateIn,
		InventoryOf:  owner,
	}
}
