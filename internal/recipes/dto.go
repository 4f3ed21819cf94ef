package recipes

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Requirement is one resolved ingredient demand for a single unit of product.
type Requirement struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
}

// LineInput is one ingredient line in a recipe replacement.
type LineInput struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
}
