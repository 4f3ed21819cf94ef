package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the stock ledger: ingredient CRUD, restocks, and the FIFO
// consumption primitive that sale finalization drives inside its transaction.
type Service interface {
	Consume(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID, quantity decimal.Decimal) ([]BatchDebit, error)
	Restock(ctx context.Context, input RestockInput) (*models.InventoryBatch, error)
	CreateIngredient(ctx context.Context, input CreateIngredientInput) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id uuid.UUID, input UpdateIngredientInput) (*models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	FindIngredient(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	ListLowStock(ctx context.Context) ([]models.Ingredient, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService wires the inventory service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("inventory: repository is required")
	}
	if tx == nil {
		return nil, errors.New("inventory: tx runner is required")
	}
	if logg == nil {
		return nil, errors.New("inventory: logger is required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// Consume debits quantity of the ingredient from its open batches, oldest
// first, inside the caller's transaction. On a shortfall nothing is written
// and the returned error carries the gap so the caller can surface it; any
// partial application failure bubbles up so the caller rolls the whole
// transaction back.
func (s *service) Consume(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID, quantity decimal.Decimal) ([]BatchDebit, error) {
	if tx == nil {
		return nil, errors.New("inventory: transaction required")
	}
	repo := s.repo.WithTx(tx)

	batches, err := repo.ListOpenBatches(ctx, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("list open batches: %w", err)
	}

	views := make([]BatchView, 0, len(batches))
	for _, batch := range batches {
		views = append(views, BatchView{ID: batch.ID, Remaining: batch.Quantity})
	}

	debits, err := Allocate(ingredientID, views, quantity)
	if err != nil {
		var shortfall *ShortfallError
		if errors.As(err, &shortfall) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, err, "insufficient stock").
				WithDetails(map[string]any{
					"ingredient_id": shortfall.IngredientID.String(),
					"requested":     quantity.String(),
					"available":     shortfall.Available.String(),
					"short_by":      shortfall.Remaining.String(),
				})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid consumption quantity")
	}

	for _, debit := range debits {
		if err := repo.ApplyDebit(ctx, debit); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "batch changed while consuming, retry the sale")
			}
			return nil, fmt.Errorf("apply batch debit: %w", err)
		}
	}

	if err := repo.AdjustStock(ctx, ingredientID, quantity.Neg()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ingredient stock changed while consuming, retry the sale")
		}
		return nil, fmt.Errorf("adjust ingredient stock: %w", err)
	}

	return debits, nil
}

func (s *service) Restock(ctx context.Context, input RestockInput) (*models.InventoryBatch, error) {
	if input.Quantity.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}

	var batch *models.InventoryBatch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ingredient, err := repo.FindIngredient(ctx, input.IngredientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
			}
			return fmt.Errorf("find ingredient: %w", err)
		}

		unitCost := ingredient.Cost
		if input.UnitCost != nil {
			unitCost = *input.UnitCost
		}
		receivedAt := time.Now().UTC()
		if input.ReceivedAt != nil {
			receivedAt = input.ReceivedAt.UTC()
		}

		batch, err = repo.InsertBatch(ctx, &models.InventoryBatch{
			ID:           uuid.New(),
			IngredientID: ingredient.ID,
			Quantity:     input.Quantity,
			UnitCost:     unitCost,
			ReceivedAt:   receivedAt,
		})
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		if err := repo.AdjustStock(ctx, ingredient.ID, input.Quantity); err != nil {
			return fmt.Errorf("adjust ingredient stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithIngredientID(ctx, input.IngredientID.String())
	s.logg.Info(logCtx, "ingredient restocked")
	return batch, nil
}

func (s *service) CreateIngredient(ctx context.Context, input CreateIngredientInput) (*models.Ingredient, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")
	}
	if input.Unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient unit is required")
	}
	if input.OpeningStock.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening stock cannot be negative")
	}

	var ingredient *models.Ingredient
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err := repo.CreateIngredient(ctx, &models.Ingredient{
			ID:                uuid.New(),
			Name:              input.Name,
			Unit:              input.Unit,
			Cost:              input.Cost,
			LowStockThreshold: input.LowStockThreshold,
			CurrentStock:      decimal.Zero,
		})
		if err != nil {
			return fmt.Errorf("create ingredient: %w", err)
		}
		ingredient = created

		if input.OpeningStock.Sign() > 0 {
			_, err = repo.InsertBatch(ctx, &models.InventoryBatch{
				ID:           uuid.New(),
				IngredientID: created.ID,
				Quantity:     input.OpeningStock,
				UnitCost:     input.Cost,
				ReceivedAt:   time.Now().UTC(),
			})
			if err != nil {
				return fmt.Errorf("insert opening batch: %w", err)
			}
			if err := repo.AdjustStock(ctx, created.ID, input.OpeningStock); err != nil {
				return fmt.Errorf("adjust ingredient stock: %w", err)
			}
			ingredient.CurrentStock = input.OpeningStock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *service) UpdateIngredient(ctx context.Context, id uuid.UUID, input UpdateIngredientInput) (*models.Ingredient, error) {
	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Unit != nil {
		if *input.Unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient unit cannot be empty")
		}
		updates["unit"] = *input.Unit
	}
	if input.Cost != nil {
		updates["cost"] = *input.Cost
	}
	if input.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *input.LowStockThreshold
	}

	if _, err := s.GetIngredient(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateIngredient(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update ingredient: %w", err)
	}
	return s.GetIngredient(ctx, id)
}

func (s *service) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	return s.FindIngredient(ctx, nil, id)
}

// FindIngredient looks an ingredient up inside the caller's transaction when
// one is supplied, so in-flight stock adjustments are visible.
func (s *service) FindIngredient(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Ingredient, error) {
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	ingredient, err := repo.FindIngredient(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		return nil, fmt.Errorf("find ingredient: %w", err)
	}
	return ingredient, nil
}

func (s *service) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	return s.repo.ListIngredients(ctx)
}

func (s *service) ListLowStock(ctx context.Context) ([]models.Ingredient, error) {
	return s.repo.ListLowStockIngredients(ctx)
}
