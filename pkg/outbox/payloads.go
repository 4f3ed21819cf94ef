package outbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleFinalizedItem is one sale line carried in a SaleFinalizedEvent.
type SaleFinalizedItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// SaleFinalizedEvent is emitted after a sale and its stock consumption
// commit together.
type SaleFinalizedEvent struct {
	SaleID        uuid.UUID           `json:"saleId"`
	SessionID     uuid.UUID           `json:"sessionId"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	PaymentMethod string              `json:"paymentMethod"`
	SoldAt        time.Time           `json:"soldAt"`
	Items         []SaleFinalizedItem `json:"items"`
}

// IngredientLowStockEvent is emitted when consumption drops an ingredient to
// or below its threshold.
type IngredientLowStockEvent struct {
	IngredientID uuid.UUID       `json:"ingredientId"`
	Name         string          `json:"name"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	Threshold    decimal.Decimal `json:"threshold"`
}

// SessionOpenedEvent is emitted when a register session opens.
type SessionOpenedEvent struct {
	SessionID uuid.UUID `json:"sessionId"`
	OpenedAt  time.Time `json:"openedAt"`
}

// SessionClosedEvent is emitted when a register session closes.
type SessionClosedEvent struct {
	SessionID uuid.UUID `json:"sessionId"`
	ClosedAt  time.Time `json:"closedAt"`
}
