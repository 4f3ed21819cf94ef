package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestAllocate_SpansBatchesOldestFirst(t *testing.T) {
	ing := uuid.New()
	b1, b2 := uuid.New(), uuid.New()

	debits, err := Allocate(ing, []BatchView{
		{ID: b1, Remaining: d("5")},
		{ID: b2, Remaining: d("5")},
	}, d("7"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(debits) != 2 {
		t.Fatalf("expected 2 debits, got %d", len(debits))
	}
	if debits[0].BatchID != b1 || !debits[0].Quantity.Equal(d("5")) {
		t.Errorf("first debit = %s x %s, want batch %s x 5", debits[0].BatchID, debits[0].Quantity, b1)
	}
	if debits[1].BatchID != b2 || !debits[1].Quantity.Equal(d("2")) {
		t.Errorf("second debit = %s x %s, want batch %s x 2", debits[1].BatchID, debits[1].Quantity, b2)
	}
}

func TestAllocate_ExactTotal(t *testing.T) {
	b1, b2 := uuid.New(), uuid.New()

	debits, err := Allocate(uuid.New(), []BatchView{
		{ID: b1, Remaining: d("3")},
		{ID: b2, Remaining: d("4")},
	}, d("7"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	total := decimal.Zero
	for _, db := range debits {
		total = total.Add(db.Quantity)
	}
	if !total.Equal(d("7")) {
		t.Errorf("debits cover %s, want 7", total)
	}
}

func TestAllocate_ShortfallReturnsNothing(t *testing.T) {
	ing := uuid.New()

	debits, err := Allocate(ing, []BatchView{
		{ID: uuid.New(), Remaining: d("5")},
		{ID: uuid.New(), Remaining: d("5")},
	}, d("10.0001"))
	if debits != nil {
		t.Fatalf("expected no debits on shortfall, got %d", len(debits))
	}

	var shortfall *ShortfallError
	if !errors.As(err, &shortfall) {
		t.Fatalf("expected ShortfallError, got %v", err)
	}
	if shortfall.IngredientID != ing {
		t.Errorf("shortfall ingredient = %s, want %s", shortfall.IngredientID, ing)
	}
	if !shortfall.Remaining.Equal(d("0.0001")) {
		t.Errorf("shortfall remaining = %s, want 0.0001", shortfall.Remaining)
	}
	if !shortfall.Available.Equal(d("10")) {
		t.Errorf("shortfall available = %s, want 10", shortfall.Available)
	}
}

func TestAllocate_SkipsEmptyBatches(t *testing.T) {
	live := uuid.New()

	debits, err := Allocate(uuid.New(), []BatchView{
		{ID: uuid.New(), Remaining: decimal.Zero},
		{ID: live, Remaining: d("2")},
	}, d("1.5"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(debits) != 1 || debits[0].BatchID != live {
		t.Fatalf("expected single debit against %s, got %+v", live, debits)
	}
	if !debits[0].Quantity.Equal(d("1.5")) {
		t.Errorf("debit quantity = %s, want 1.5", debits[0].Quantity)
	}
}

func TestAllocate_RejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []string{"0", "-1"} {
		if _, err := Allocate(uuid.New(), nil, d(qty)); err == nil {
			t.Errorf("expected error for quantity %s", qty)
		}
	}
}

func TestAllocate_FractionalQuantities(t *testing.T) {
	b1, b2 := uuid.New(), uuid.New()

	debits, err := Allocate(uuid.New(), []BatchView{
		{ID: b1, Remaining: d("0.25")},
		{ID: b2, Remaining: d("0.5")},
	}, d("0.3"))
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if !debits[0].Quantity.Equal(d("0.25")) || !debits[1].Quantity.Equal(d("0.05")) {
		t.Errorf("debits = %s, %s; want 0.25, 0.05", debits[0].Quantity, debits[1].Quantity)
	}
}
