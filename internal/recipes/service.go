package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error)
}

type ingredientFinder interface {
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
}

// Service resolves and edits product recipes.
type Service interface {
	// Resolve returns the ingredient requirements for one unit of the
	// product. A product with no recipe resolves to an empty slice.
	Resolve(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]Requirement, error)
	ForProduct(ctx context.Context, productID uuid.UUID) ([]models.Recipe, error)
	// Replace swaps the product's entire recipe for the given lines.
	Replace(ctx context.Context, productID uuid.UUID, lines []LineInput) ([]models.Recipe, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	products    productFinder
	ingredients ingredientFinder
}

// NewService wires the recipes service.
func NewService(repo Repository, tx txRunner, products productFinder, ingredients ingredientFinder) (Service, error) {
	if repo == nil {
		return nil, errors.New("recipes: repository is required")
	}
	if tx == nil {
		return nil, errors.New("recipes: tx runner is required")
	}
	if products == nil {
		return nil, errors.New("recipes: product finder is required")
	}
	if ingredients == nil {
		return nil, errors.New("recipes: ingredient finder is required")
	}
	return &service{repo: repo, tx: tx, products: products, ingredients: ingredients}, nil
}

func (s *service) Resolve(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]Requirement, error) {
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	lines, err := repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find recipe lines: %w", err)
	}

	requirements := make([]Requirement, 0, len(lines))
	for _, line := range lines {
		requirements = append(requirements, Requirement{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}
	return requirements, nil
}

func (s *service) ForProduct(ctx context.Context, productID uuid.UUID) ([]models.Recipe, error) {
	if _, err := s.products.FindProduct(ctx, nil, productID); err != nil {
		return nil, err
	}
	return s.repo.FindByProduct(ctx, productID)
}

func (s *service) Replace(ctx context.Context, productID uuid.UUID, lines []LineInput) ([]models.Recipe, error) {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity.Sign() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe quantity must be positive").
				WithDetails(map[string]any{"ingredient_id": line.IngredientID.String()})
		}
		if _, dup := seen[line.IngredientID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate ingredient in recipe").
				WithDetails(map[string]any{"ingredient_id": line.IngredientID.String()})
		}
		seen[line.IngredientID] = struct{}{}

		if _, err := s.ingredients.GetIngredient(ctx, line.IngredientID); err != nil {
			return nil, err
		}
	}

	if _, err := s.products.FindProduct(ctx, nil, productID); err != nil {
		return nil, err
	}

	rows := make([]models.Recipe, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.Recipe{
			ID:           uuid.New(),
			ProductID:    productID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteByProduct(ctx, productID); err != nil {
			return fmt.Errorf("delete recipe lines: %w", err)
		}
		if err := repo.CreateLines(ctx, rows); err != nil {
			return fmt.Errorf("create recipe lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
