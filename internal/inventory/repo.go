package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *repository) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *repository) ListLowStockIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := r.db.WithContext(ctx).
		Where("low_stock_threshold > 0 AND current_stock <= low_stock_threshold").
		Order("name ASC").
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *repository) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error) {
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (r *repository) UpdateIngredient(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListOpenBatches returns the ingredient's batches with stock remaining,
// oldest received first, ties broken by id so the order is stable.
func (r *repository) ListOpenBatches(ctx context.Context, ingredientID uuid.UUID) ([]models.InventoryBatch, error) {
	var batches []models.InventoryBatch
	err := r.db.WithContext(ctx).
		Where("ingredient_id = ? AND quantity > 0", ingredientID).
		Order("received_at ASC, id ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *repository) InsertBatch(ctx context.Context, batch *models.InventoryBatch) (*models.InventoryBatch, error) {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// ApplyDebit decrements a batch only if it still holds enough stock. The
// guard makes concurrent consumers of the same batch fail instead of driving
// the quantity negative; callers treat zero rows affected as a conflict.
func (r *repository) ApplyDebit(ctx context.Context, debit BatchDebit) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryBatch{}).
		Where("id = ? AND quantity >= ?", debit.BatchID, debit.Quantity).
		Update("quantity", gorm.Expr("quantity - ?", debit.Quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustStock moves the ingredient's cached total by delta, refusing any
// adjustment that would take it below zero.
func (r *repository) AdjustStock(ctx context.Context, ingredientID uuid.UUID, delta decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ? AND current_stock + ? >= 0", ingredientID, delta).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
