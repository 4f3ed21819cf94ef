package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"github.com/kapehan/tindera-backend/pkg/enums"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sessions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) FindOpen(ctx context.Context) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SessionStatusOpen).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Close flips an open session to closed. The status guard makes a double
// close report zero rows instead of rewriting closed_at.
func (r *repository) Close(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND status = ?", id, enums.SessionStatusOpen).
		Updates(map[string]any{
			"status":    enums.SessionStatusClosed,
			"closed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, limit int) ([]models.Session, error) {
	var sessions []models.Session
	q := r.db.WithContext(ctx).Order("opened_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
