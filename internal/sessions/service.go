package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	dbpkg "github.com/kapehan/tindera-backend/pkg/db"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"github.com/kapehan/tindera-backend/pkg/enums"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/kapehan/tindera-backend/pkg/outbox"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages the register session lifecycle. At most one session is
// open at a time; the database enforces that with a partial unique index and
// the service translates the violation into a conflict.
type Service interface {
	Open(ctx context.Context) (*models.Session, error)
	Close(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Current(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	List(ctx context.Context, limit int) ([]models.Session, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService wires the sessions service.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("sessions: repository is required")
	}
	if tx == nil {
		return nil, errors.New("sessions: tx runner is required")
	}
	if ob == nil {
		return nil, errors.New("sessions: outbox is required")
	}
	if logg == nil {
		return nil, errors.New("sessions: logger is required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, logg: logg}, nil
}

func (s *service) Open(ctx context.Context) (*models.Session, error) {
	session := &models.Session{
		ID:       uuid.New(),
		OpenedAt: time.Now().UTC(),
		Status:   enums.SessionStatusOpen,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, session); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_sessions_single_open") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a session is already open")
			}
			return fmt.Errorf("create session: %w", err)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSessionOpened,
			AggregateType: enums.AggregateSession,
			AggregateID:   session.ID,
			Data:          outbox.SessionOpenedEvent{SessionID: session.ID, OpenedAt: session.OpenedAt},
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithSessionID(ctx, session.ID.String())
	s.logg.Info(logCtx, "session opened")
	return session, nil
}

func (s *service) Close(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != enums.SessionStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is already closed")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Close(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "session is already closed")
			}
			return fmt.Errorf("close session: %w", err)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSessionClosed,
			AggregateType: enums.AggregateSession,
			AggregateID:   id,
			Data:          outbox.SessionClosedEvent{SessionID: id, ClosedAt: time.Now().UTC()},
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithSessionID(ctx, id.String())
	s.logg.Info(logCtx, "session closed")
	return s.Get(ctx, id)
}

func (s *service) Current(ctx context.Context) (*models.Session, error) {
	session, err := s.repo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open session")
		}
		return nil, fmt.Errorf("find open session: %w", err)
	}
	return session, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return session, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.Session, error) {
	return s.repo.List(ctx, limit)
}
