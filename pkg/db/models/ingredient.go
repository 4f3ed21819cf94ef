package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is a stocked raw material consumed by product recipes.
// CurrentStock is a denormalized running total: it always equals the sum of
// the remaining quantities of the ingredient's batches and is mutated only by
// restock and ledger consumption, never directly.
type Ingredient struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string           `gorm:"column:name;not null"`
	Unit              string           `gorm:"column:unit;not null"`
	CurrentStock      decimal.Decimal  `gorm:"column:current_stock;type:numeric(12,4);not null;default:0"`
	Cost              decimal.Decimal  `gorm:"column:cost;type:numeric(12,2);not null;default:0"`
	LowStockThreshold decimal.Decimal  `gorm:"column:low_stock_threshold;type:numeric(12,4);not null;default:0"`
	Batches           []InventoryBatch `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
