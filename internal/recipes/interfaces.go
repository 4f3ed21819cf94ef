package recipes

import (
	"context"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for recipe lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]models.Recipe, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
	CreateLines(ctx context.Context, lines []models.Recipe) error
}
