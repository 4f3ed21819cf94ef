package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	ingredients := `
CREATE TABLE IF NOT EXISTS ingredients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  unit TEXT NOT NULL,
  current_stock NUMERIC NOT NULL DEFAULT 0,
  cost NUMERIC NOT NULL DEFAULT 0,
  low_stock_threshold NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	batches := `
CREATE TABLE IF NOT EXISTS inventory_batches (
  id TEXT PRIMARY KEY,
  ingredient_id TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  unit_cost NUMERIC NOT NULL DEFAULT 0,
  received_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ingredients).Error)
	require.NoError(t, db.Exec(batches).Error)
	return db
}

func newInventoryService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
	svc, err := NewService(NewRepository(db), sqliteTxRunner{db: db}, logg)
	require.NoError(t, err)
	return svc
}

func seedIngredient(t *testing.T, db *gorm.DB, stock string) *models.Ingredient {
	t.Helper()

	ing := &models.Ingredient{
		ID:           uuid.New(),
		Name:         "flour",
		Unit:         "kg",
		CurrentStock: d(stock),
		Cost:         d("42.50"),
	}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func seedBatch(t *testing.T, db *gorm.DB, ingredientID uuid.UUID, qty string, receivedAt time.Time) *models.InventoryBatch {
	t.Helper()

	batch := &models.InventoryBatch{
		ID:           uuid.New(),
		IngredientID: ingredientID,
		Quantity:     d(qty),
		UnitCost:     d("42.50"),
		ReceivedAt:   receivedAt,
	}
	require.NoError(t, db.Create(batch).Error)
	return batch
}

func batchQuantity(t *testing.T, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()

	var batch models.InventoryBatch
	require.NoError(t, db.Where("id = ?", id).First(&batch).Error)
	return batch.Quantity
}

func ingredientStock(t *testing.T, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()

	var ing models.Ingredient
	require.NoError(t, db.Where("id = ?", id).First(&ing).Error)
	return ing.CurrentStock
}

func TestConsume_DebitsOldestBatchesFirst(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	now := time.Now().UTC()
	ing := seedIngredient(t, db, "10")
	older := seedBatch(t, db, ing.ID, "5", now.Add(-2*time.Hour))
	newer := seedBatch(t, db, ing.ID, "5", now.Add(-1*time.Hour))

	err := db.Transaction(func(tx *gorm.DB) error {
		debits, err := svc.Consume(context.Background(), tx, ing.ID, d("7"))
		if err != nil {
			return err
		}
		require.Len(t, debits, 2)
		require.Equal(t, older.ID, debits[0].BatchID)
		require.Equal(t, newer.ID, debits[1].BatchID)
		return nil
	})
	require.NoError(t, err)

	require.True(t, batchQuantity(t, db, older.ID).IsZero())
	require.True(t, batchQuantity(t, db, newer.ID).Equal(d("3")))
	require.True(t, ingredientStock(t, db, ing.ID).Equal(d("3")))
}

func TestConsume_ExactTotalDrainsEverything(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	now := time.Now().UTC()
	ing := seedIngredient(t, db, "7")
	b1 := seedBatch(t, db, ing.ID, "3", now.Add(-2*time.Hour))
	b2 := seedBatch(t, db, ing.ID, "4", now.Add(-1*time.Hour))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Consume(context.Background(), tx, ing.ID, d("7"))
		return err
	})
	require.NoError(t, err)

	require.True(t, batchQuantity(t, db, b1.ID).IsZero())
	require.True(t, batchQuantity(t, db, b2.ID).IsZero())
	require.True(t, ingredientStock(t, db, ing.ID).IsZero())
}

func TestConsume_ShortfallLeavesStockUntouched(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	now := time.Now().UTC()
	ing := seedIngredient(t, db, "10")
	b1 := seedBatch(t, db, ing.ID, "5", now.Add(-2*time.Hour))
	b2 := seedBatch(t, db, ing.ID, "5", now.Add(-1*time.Hour))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Consume(context.Background(), tx, ing.ID, d("10.5"))
		return err
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	require.True(t, batchQuantity(t, db, b1.ID).Equal(d("5")))
	require.True(t, batchQuantity(t, db, b2.ID).Equal(d("5")))
	require.True(t, ingredientStock(t, db, ing.ID).Equal(d("10")))
}

func TestConsume_IgnoresDrainedBatches(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	now := time.Now().UTC()
	ing := seedIngredient(t, db, "4")
	seedBatch(t, db, ing.ID, "0", now.Add(-3*time.Hour))
	live := seedBatch(t, db, ing.ID, "4", now.Add(-1*time.Hour))

	err := db.Transaction(func(tx *gorm.DB) error {
		debits, err := svc.Consume(context.Background(), tx, ing.ID, d("2"))
		if err != nil {
			return err
		}
		require.Len(t, debits, 1)
		require.Equal(t, live.ID, debits[0].BatchID)
		return nil
	})
	require.NoError(t, err)
	require.True(t, batchQuantity(t, db, live.ID).Equal(d("2")))
}

func TestConsume_RejectsNonPositiveQuantity(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ing := seedIngredient(t, db, "5")

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Consume(context.Background(), tx, ing.ID, decimal.Zero)
		return err
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRestock_AppendsBatchAndRaisesStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ing := seedIngredient(t, db, "2")

	cost := d("39.00")
	batch, err := svc.Restock(context.Background(), RestockInput{
		IngredientID: ing.ID,
		Quantity:     d("8"),
		UnitCost:     &cost,
	})
	require.NoError(t, err)
	require.True(t, batch.Quantity.Equal(d("8")))
	require.True(t, batch.UnitCost.Equal(cost))
	require.True(t, ingredientStock(t, db, ing.ID).Equal(d("10")))
}

func TestRestock_DefaultsUnitCostToIngredientCost(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ing := seedIngredient(t, db, "0")

	batch, err := svc.Restock(context.Background(), RestockInput{
		IngredientID: ing.ID,
		Quantity:     d("1"),
	})
	require.NoError(t, err)
	require.True(t, batch.UnitCost.Equal(ing.Cost))
}

func TestRestock_UnknownIngredient(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	_, err := svc.Restock(context.Background(), RestockInput{
		IngredientID: uuid.New(),
		Quantity:     d("1"),
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRestock_RejectsNonPositiveQuantity(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ing := seedIngredient(t, db, "2")

	_, err := svc.Restock(context.Background(), RestockInput{
		IngredientID: ing.ID,
		Quantity:     d("-1"),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateIngredient_OpeningStockBecomesFirstBatch(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	ing, err := svc.CreateIngredient(context.Background(), CreateIngredientInput{
		Name:         "sugar",
		Unit:         "kg",
		Cost:         d("60"),
		OpeningStock: d("12.5"),
	})
	require.NoError(t, err)
	require.True(t, ingredientStock(t, db, ing.ID).Equal(d("12.5")))

	var count int64
	require.NoError(t, db.Model(&models.InventoryBatch{}).
		Where("ingredient_id = ?", ing.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateIngredient_ZeroOpeningStockHasNoBatch(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	ing, err := svc.CreateIngredient(context.Background(), CreateIngredientInput{
		Name: "salt",
		Unit: "g",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.InventoryBatch{}).
		Where("ingredient_id = ?", ing.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestUpdateIngredient_MetadataOnly(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)
	ing := seedIngredient(t, db, "5")

	name := "bread flour"
	threshold := d("2")
	updated, err := svc.UpdateIngredient(context.Background(), ing.ID, UpdateIngredientInput{
		Name:              &name,
		LowStockThreshold: &threshold,
	})
	require.NoError(t, err)
	require.Equal(t, "bread flour", updated.Name)
	require.True(t, updated.LowStockThreshold.Equal(d("2")))
	require.True(t, updated.CurrentStock.Equal(d("5")))
}

func TestListLowStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newInventoryService(t, db)

	low := seedIngredient(t, db, "1")
	require.NoError(t, db.Model(&models.Ingredient{}).
		Where("id = ?", low.ID).
		Update("low_stock_threshold", d("3")).Error)
	seedIngredient(t, db, "50")

	flagged, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.Equal(t, low.ID, flagged[0].ID)
}
