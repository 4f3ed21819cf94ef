package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryBatch is a receipt lot of an ingredient. Quantity holds the units
// still unconsumed; batches are decremented FIFO by received_at (ties broken
// by id) and never deleted, so fully consumed lots stay behind as history.
type InventoryBatch struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IngredientID uuid.UUID       `gorm:"column:ingredient_id;type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric(12,4);not null"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null;default:0"`
	ReceivedAt   time.Time       `gorm:"column:received_at;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
