package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mvalledor/stocktrace-backend/internal/inventory"
	"github.com/mvalledor/stocktrace-backend/internal/receipts"
	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/pkg/db/models"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

func setupSalesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:salescoord?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InventoryItem{}, &models.Receipt{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM inventory_items")
		db.Exec("DELETE FROM receipts")
	})
	return db
}

func dbCoordinator(t *testing.T, db *gorm.DB) Coordinator {
	t.Helper()
	resolver, err := scope.NewResolver(&stubPrincipals{})
	require.NoError(t, err)

	coord, err := NewCoordinator(CoordinatorParams{
		ReceiptsRepo:  receipts.NewRepository(db),
		InventoryRepo: inventory.NewRepository(db),
		Resolver:      resolver,
		Hub:           watch.NewHub(),
	})
	require.NoError(t, err)
	return coord
}

// Recording a sale and immediately reversing it must restore the pre-sale
// state: the item back to unsold with no date_out, and no receipt left behind.
func TestRecordThenReverseRestoresPreSaleState(t *testing.T) {
	db := setupSalesTestDB(t)
	coord := dbCoordinator(t, db)
	ctx := context.Background()
	actor := superAdminActor()

	serial := "SN-200"
	item := models.InventoryItem{
		ID:           uuid.New(),
		Name:         "Yeezy 350",
		Category:     "sneakers",
		Price:        decimal.NewFromInt(240),
		SerialNumber: &serial,
		DateIn:       time.Now().UTC(),
		InventoryOf:  actor.ID,
	}
	require.NoError(t, db.Create(&item).Error)

	receipt, err := coord.RecordSale(ctx, actor, saleInput(&serial))
	require.NoError(t, err)

	var sold models.InventoryItem
	require.NoError(t, db.First(&sold, "id = ?", item.ID).Error)
	require.True(t, sold.IsSold, "sale must flip the item")
	require.NotNil(t, sold.DateOut)

	result, err := coord.ReverseSale(ctx, actor, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ItemsCleared)
	assert.False(t, result.OrphanedReference)

	var restored models.InventoryItem
	require.NoError(t, db.First(&restored, "id = ?", item.ID).Error)
	assert.False(t, restored.IsSold)
	assert.Nil(t, restored.DateOut)

	var count int64
	require.NoError(t, db.Model(&models.Receipt{}).Where("id = ?", receipt.ID).Count(&count).Error)
	assert.Zero(t, count, "reversal must leave no receipt behind")
}

// The same round trip across pool boundaries: a second tenant's item carrying
// the same serial number must come out of the cycle untouched.
func TestRecordThenReverseLeavesOtherPoolsAlone(t *testing.T) {
	db := setupSalesTestDB(t)
	coord := dbCoordinator(t, db)
	ctx := context.Background()
	actor := superAdminActor()

	serial := "SN-201"
	mine := models.InventoryItem{
		ID:           uuid.New(),
		Name:         "Dunk High",
		Category:     "sneakers",
		Price:        decimal.NewFromInt(150),
		SerialNumber: &serial,
		DateIn:       time.Now().UTC(),
		InventoryOf:  actor.ID,
	}
	soldAt := time.Now().UTC()
	theirs := models.InventoryItem{
		ID:           uuid.New(),
		Name:         "Dunk High",
		Category:     "sneakers",
		Price:        decimal.NewFromInt(150),
		SerialNumber: &serial,
		DateIn:       time.Now().UTC(),
		DateOut:      &soldAt,
		IsSold:       true,
		InventoryOf:  uuid.New(),
	}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)

	receipt, err := coord.RecordSale(ctx, actor, saleInput(&serial))
	require.NoError(t, err)

	result, err := coord.ReverseSale(ctx, actor, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ItemsCleared)

	var other models.InventoryItem
	require.NoError(t, db.First(&other, "id = ?", theirs.ID).Error)
	assert.True(t, other.IsSold, "another pool's sold item must stay sold")
	assert.NotNil(t, other.DateOut)
}
