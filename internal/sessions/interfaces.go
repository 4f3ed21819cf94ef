package sessions

import (
	"context"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for register sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	FindOpen(ctx context.Context) (*models.Session, error)
	Close(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit int) ([]models.Session, error)
}
