package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for ingredients and their batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	ListLowStockIngredients(ctx context.Context) ([]models.Ingredient, error)
	CreateIngredient(ctx context.Context, ingredient *models.Ingredient) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListOpenBatches(ctx context.Context, ingredientID uuid.UUID) ([]models.InventoryBatch, error)
	InsertBatch(ctx context.Context, batch *models.InventoryBatch) (*models.InventoryBatch, error)
	ApplyDebit(ctx context.Context, debit BatchDebit) error
	AdjustStock(ctx context.Context, ingredientID uuid.UUID, delta decimal.Decimal) error
}
