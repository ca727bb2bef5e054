package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
	"github.com/mvalledor/stocktrace-backend/pkg/metrics"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

// Coordinator keeps inventory sold-state consistent with receipt existence.
// The backing store offers no cross-collection transactions, so every rule is
// a sequence of single-collection writes: primary write first, dependent
// fix-up second, each step idempotent and independently retryable. A step-2
// failure surfaces as a partial-write failure, never as silent success.
type Coordinator interface {
	RecordSale(ctx context.Context, actor scope.Actor, input RecordSaleInput) (*models.Receipt, error)
	ReverseSale(ctx context.Context, actor scope.Actor, receiptID uuid.UUID) (*ReversalResult, error)
	FixUpInventory(ctx context.Context, actor scope.Actor, serialNumber string) (int64, error)
}

type receiptsRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type inventoryRepository interface {
	MarkSold(ctx context.Context, serialNumber string, owners []uuid.UUID, soldAt time.Time) (int64, error)
	ClearSold(ctx context.Context, serialNumber string, owners []uuid.UUID) (int64, error)
}

type coordinator struct {
	receipts  receiptsRepository
	inventory inventoryRepository
	resolver  *scope.Resolver
	hub       *watch.Hub
	logg      *logger.Logger
	metrics   *metrics.SalesMetrics
}

// CoordinatorParams bundles the dependencies for the consistency coordinator.
type CoordinatorParams struct {
	ReceiptsRepo  receiptsRepository
	InventoryRepo inventoryRepository
	Resolver      *scope.Resolver
	Hub           *watch.Hub
	Logger        *logger.Logger
	Metrics       *metrics.SalesMetrics
}

// NewCoordinator constructs the consistency coordinator.
func NewCoordinator(params CoordinatorParams) (Coordinator, error) {
	if params.ReceiptsRepo == nil {
		return nil, fmt.Errorf("receipts repository is required")
	}
	if params.InventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("scope resolver is required")
	}
	return &coordinator{
		receipts:  params.ReceiptsRepo,
		inventory: params.InventoryRepo,
		resolver:  params.Resolver,
		hub:       params.Hub,
		logg:      params.Logger,
		metrics:   params.Metrics,
	}, nil
}

// RecordSale writes the receipt, then marks matching in-scope inventory sold.
// The two writes are deliberately separate steps: the receipt is the primary
// write, the sold flip is the dependent one. A step-2 failure leaves a valid
// receipt behind and reports a partial write so the flip can be retried.
func (c *coordinator) RecordSale(ctx context.Context, actor scope.Actor, input RecordSaleInput) (*models.Receipt, error) {
	set, err := c.resolver.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if set.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account may not record sales")
	}

	receipt := input.toModel(actor.ScopeRoot())
	if err := c.receipts.Create(ctx, receipt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create receipt")
	}
	c.metrics.IncRecorded()
	c.publish(watch.CollectionReceipts)

	if receipt.SerialNumber != nil {
		if _, err := c.inventory.MarkSold(ctx, *receipt.SerialNumber, set.IDs(), receipt.Date); err != nil {
			c.metrics.IncPartialWrite("record_sale")
			return receipt, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "inventory flip failed after receipt write").
				WithDetails(map[string]any{
					"completed_step": "create_receipt",
					"failed_step":    "mark_inventory_sold",
					"receipt_id":     receipt.ID.String(),
					"serial_number":  *receipt.SerialNumber,
				})
		}
		c.publish(watch.CollectionInventory)
	}

	return receipt, nil
}

// ReverseSale deletes the receipt, then resets the matching inventory. Delete
// then fix up: when the fix-up fails the receipt is already gone, so the error
// carries everything needed to retry the fix-up step alone.
func (c *coordinator) ReverseSale(ctx context.Context, actor scope.Actor, receiptID uuid.UUID) (*ReversalResult, error) {
	receipt, err := c.receipts.FindByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt")
	}

	set, err := c.resolver.ScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !set.Allows(receipt.ReceiptOf) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "receipt is out of scope")
	}

	if err := c.receipts.Delete(ctx, receiptID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete receipt")
	}
	c.metrics.IncReversed()
	c.publish(watch.CollectionReceipts)

	result := &ReversalResult{ReceiptID: receiptID, SerialNumber: receipt.SerialNumber}
	if receipt.SerialNumber == nil {
		return result, nil
	}

	cleared, err := c.inventory.ClearSold(ctx, *receipt.SerialNumber, set.IDs())
	if err != nil {
		c.metrics.IncFixup("error")
		c.metrics.IncPartialWrite("reverse_sale")
		combined := multierr.Append(err, fmt.Errorf("receipt %s already deleted", receiptID))
		return result, pkgerrors.Wrap(pkgerrors.CodePartialWrite, combined, "inventory fix-up failed after receipt deletion").
			WithDetails(map[string]any{
				"completed_step": "delete_receipt",
				"failed_step":    "clear_inventory_sold",
				"receipt_id":     receiptID.String(),
				"serial_number":  *receipt.SerialNumber,
			})
	}

	result.ItemsCleared = cleared
	if cleared == 0 {
		result.OrphanedReference = true
		c.metrics.IncOrphaned()
		if c.logg != nil {
			warnCtx := c.logg.WithFields(ctx, map[string]any{
				"receipt_id":    receiptID.String(),
				"serial_number": *receipt.SerialNumber,
			})
			c.logg.Warn(warnCtx, "reversal found no matching inventory item")
		}
	} else {
		c.metrics.IncFixup("cleared")
	}

	c.publish(watch.CollectionInventory)
	return result, nil
}

// FixUpInventory retries the dependent step alone. Clearing sold state twice
// yields the same final state as clearing it once.
func (c *coordinator) FixUpInventory(ctx context.Context, actor scope.Actor, serialNumber string) (int64, error) {
	set, err := c.resolver.ScopeFor(ctx, actor)
	if err != nil {
		return 0, err
	}
	if set.Empty() {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "account may not modify inventory")
	}

	cleared, err := c.inventory.ClearSold(ctx, serialNumber, set.IDs())
	if err != nil {
		c.metrics.IncFixup("error")
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear inventory sold state")
	}
	c.metrics.IncFixup("cleared")
	c.publish(watch.CollectionInventory)
	return cleared, nil
}

func (c *coordinator) publish(collection watch.Collection) {
	if c.hub != nil {
		c.hub.Publish(collection)
	}
}
