package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateProductInput captures a new menu item.
type CreateProductInput struct {
	Name     string
	Price    decimal.Decimal
	Category *string
}

// UpdateProductInput holds the mutable product fields.
type UpdateProductInput struct {
	Name     *string
	Price    *decimal.Decimal
	Category *string
}

// Service exposes the product catalog.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	// FindProduct is the tx-aware lookup used while a sale is being
	// finalized; a nil tx falls back to the base connection.
	FindProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo Repository
}

// NewService wires the products service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("products: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}

	product, err := s.repo.Create(ctx, &models.Product{
		ID:       uuid.New(),
		Name:     input.Name,
		Price:    input.Price,
		Category: input.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Price != nil {
		if input.Price.Sign() < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.FindProduct(ctx, nil, id)
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

func (s *service) FindProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}
