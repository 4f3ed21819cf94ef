package sessions

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kapehan/tindera-backend/pkg/db/models"
	"github.com/kapehan/tindera-backend/pkg/enums"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/kapehan/tindera-backend/pkg/outbox"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupSessionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  opened_at DATETIME NOT NULL,
  closed_at DATETIME,
  status TEXT NOT NULL DEFAULT 'open'
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_sessions_single_open
  ON sessions (status) WHERE status = 'open';`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, ddl := range statements {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newSessionsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
	svc, err := NewService(NewRepository(db), sqliteTxRunner{db: db}, outbox.NewService(outbox.NewRepository(db), logg), logg)
	require.NoError(t, err)
	return svc
}

func requireErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	require.Equal(t, code, typed.Code())
}

func TestOpenSession(t *testing.T) {
	db := setupSessionsTestDB(t)
	svc := newSessionsService(t, db)

	session, err := svc.Open(context.Background())
	require.NoError(t, err)
	require.Equal(t, enums.SessionStatusOpen, session.Status)
	require.False(t, session.OpenedAt.IsZero())

	var events []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", enums.EventSessionOpened).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, session.ID, events[0].AggregateID)
}

func TestOpenSessionConflictsWhileOneIsOpen(t *testing.T) {
	db := setupSessionsTestDB(t)
	svc := newSessionsService(t, db)

	_, err := svc.Open(context.Background())
	require.NoError(t, err)

	_, err = svc.Open(context.Background())
	requireErrorCode(t, err, pkgerrors.CodeConflict)

	// The failed open must not leave an event behind.
	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCloseSession(t *testing.T) {
	db := setupSessionsTestDB(t)
	svc := newSessionsService(t, db)

	opened, err := svc.Open(context.Background())
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), opened.ID)
	require.NoError(t, err)
	require.Equal(t, enums.SessionStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	_, err = svc.Close(context.Background(), opened.ID)
	requireErrorCode(t, err, pkgerrors.CodeStateConflict)

	var events []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", enums.EventSessionClosed).Find(&events).Error)
	require.Len(t, events, 1)
}

func TestCloseUnknownSession(t *testing.T) {
	db := setupSessionsTestDB(t)
	svc := newSessionsService(t, db)

	_, err := svc.Close(context.Background(), uuid.New())
	requireErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestCurrentSession(t *testing.T) {
	db := setupSessionsTestDB(t)
	svc := newSessionsService(t, db)

	_, err := svc.Current(context.Background())
	requireErrorCode(t, err, pkgerrors.CodeNotFound)

	opened, err := svc.Open(context.Background())
	require.NoError(t, err)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, opened.ID, current.ID)

	_, err = svc.Close(context.Background(), opened.ID)
	require.NoError(t, err)

	_, err = svc.Current(context.Background())
	requireErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestListSessions(t *testing.T) {
	db := setupSessionsTestDB(t)
	svc := newSessionsService(t, db)

	first, err := svc.Open(context.Background())
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), first.ID)
	require.NoError(t, err)
	second, err := svc.Open(context.Background())
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, second.ID, listed[0].ID)
}
