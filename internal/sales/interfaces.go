package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for sales and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error)
	CreateSaleItems(ctx context.Context, items []models.SaleItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ExistsByReferenceCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, sessionID *uuid.UUID, limit int) ([]models.Sale, error)
}
