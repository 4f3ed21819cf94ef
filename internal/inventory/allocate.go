package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchView is the read snapshot the allocator works over.
type BatchView struct {
	ID        uuid.UUID
	Remaining decimal.Decimal
}

// BatchDebit is one intended decrement against a batch.
type BatchDebit struct {
	BatchID  uuid.UUID
	Quantity decimal.Decimal
}

// ShortfallError reports that the ingredient's batches cannot cover the
// requested quantity. Remaining is the portion still uncovered after walking
// every batch; Available is the total that was on hand.
type ShortfallError struct {
	IngredientID uuid.UUID
	Remaining    decimal.Decimal
	Available    decimal.Decimal
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("insufficient stock for ingredient %s (short %s, available %s)",
		e.IngredientID, e.Remaining, e.Available)
}

// Allocate walks batches in the order given (callers pass them FIFO: oldest
// received first, ties by id) and returns the debits that cover needed. It is
// a pure function: no batch is mutated and a shortfall yields no debits at
// all, so the caller can apply the plan atomically or not at all.
func Allocate(ingredientID uuid.UUID, batches []BatchView, needed decimal.Decimal) ([]BatchDebit, error) {
	if needed.Sign() <= 0 {
		return nil, fmt.Errorf("allocation quantity must be positive, got %s", needed)
	}

	debits := make([]BatchDebit, 0, len(batches))
	remaining := needed
	available := decimal.Zero

	for _, batch := range batches {
		if batch.Remaining.Sign() <= 0 {
			continue
		}
		available = available.Add(batch.Remaining)
		if remaining.Sign() <= 0 {
			continue
		}

		take := decimal.Min(remaining, batch.Remaining)
		debits = append(debits, BatchDebit{BatchID: batch.ID, Quantity: take})
		remaining = remaining.Sub(take)
	}

	if remaining.Sign() > 0 {
		return nil, &ShortfallError{
			IngredientID: ingredientID,
			Remaining:    remaining,
			Available:    available,
		}
	}

	return debits, nil
}
