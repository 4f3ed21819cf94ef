package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not be a violation")
	}

	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_sales_reference_code"}
	if !IsUniqueViolation(pgxErr, "") {
		t.Fatal("expected generic duplicate detection")
	}
	if !IsUniqueViolation(pgxErr, "ux_sales_reference_code") {
		t.Fatal("expected named constraint detection")
	}
	if IsUniqueViolation(pgxErr, "ux_sessions_single_open") {
		t.Fatal("unrelated constraint should not match")
	}
	if !IsUniqueViolation(fmt.Errorf("create sale: %w", pgxErr), "ux_sales_reference_code") {
		t.Fatal("expected detection through wrapped errors")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503", ConstraintName: "ux_sales_reference_code"}, "") {
		t.Fatal("foreign-key violation should not match")
	}

	pqErr := &pq.Error{Code: "23505", Constraint: "ux_sales_reference_code"}
	if !IsUniqueViolation(pqErr, "ux_sales_reference_code") {
		t.Fatal("expected pq named constraint detection")
	}
	if IsUniqueViolation(pqErr, "ux_sessions_single_open") {
		t.Fatal("unrelated pq constraint should not match")
	}

	sqliteErr := errors.New("UNIQUE constraint failed: sales.reference_code")
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("expected sqlite duplicate detection")
	}
	if !IsUniqueViolation(sqliteErr, "ux_sales_reference_code") {
		t.Fatal("sqlite errors carry no index name, any uniqueness failure matches")
	}
	if IsUniqueViolation(errors.New("connection refused"), "ux_sales_reference_code") {
		t.Fatal("non-uniqueness errors should not match")
	}
}
