package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recipe maps one ingredient requirement of a product: Quantity ingredient
// units are consumed per unit of product sold. Rows are unique per
// (product_id, ingredient_id) and edited only by full replacement.
type Recipe struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_recipes_product_ingredient"`
	IngredientID uuid.UUID       `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:ux_recipes_product_ingredient"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric(12,4);not null"`
}
