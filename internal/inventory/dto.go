package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateIngredientInput captures a new ingredient plus its optional opening
// stock, which lands as the ingredient's first batch.
type CreateIngredientInput struct {
	Name              string
	Unit              string
	Cost              decimal.Decimal
	LowStockThreshold decimal.Decimal
	OpeningStock      decimal.Decimal
}

// UpdateIngredientInput holds the mutable ingredient fields. Stock totals are
// never edited directly; they only move through restocks and consumption.
type UpdateIngredientInput struct {
	Name              *string
	Unit              *string
	Cost              *decimal.Decimal
	LowStockThreshold *decimal.Decimal
}

// RestockInput records a delivery of stock for one ingredient.
type RestockInput struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	UnitCost     *decimal.Decimal
	ReceivedAt   *time.Time
}
