package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kapehan/tindera-backend/pkg/enums"
)

// Session is a till/shift boundary; sales may only be finalized while one is
// open. A partial unique index over status guarantees at most one open row.
type Session struct {
	ID       uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OpenedAt time.Time           `gorm:"column:opened_at;not null"`
	ClosedAt *time.Time          `gorm:"column:closed_at"`
	Status   enums.SessionStatus `gorm:"column:status;type:text;not null;default:'open'"`
}
