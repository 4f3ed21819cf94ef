package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kapehan/tindera-backend/pkg/enums"
)

// Sale is one finalized point-of-sale transaction. Wallet-transfer sales
// additionally carry the verified receipt data; ReferenceCode is unique across
// all sales (partial unique index, non-null values only) so a reference can
// never be replayed.
type Sale struct {
	ID                      uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID               uuid.UUID                 `gorm:"column:session_id;type:uuid;not null;index"`
	TotalAmount             decimal.Decimal           `gorm:"column:total_amount;type:numeric(12,2);not null"`
	SoldAt                  time.Time                 `gorm:"column:sold_at;not null"`
	PaymentMethod           enums.PaymentMethod       `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	ReferenceCode           *string                   `gorm:"column:reference_code"`
	TransactionTimestampUTC *time.Time                `gorm:"column:transaction_timestamp_utc"`
	VerifiedAtUTC           *time.Time                `gorm:"column:verified_at_utc"`
	VerificationStatus      *enums.VerificationStatus `gorm:"column:verification_status;type:text"`
	RejectionReason         *string                   `gorm:"column:rejection_reason"`
	ReceiptImageURL         *string                   `gorm:"column:receipt_image_url"`
	Items                   []SaleItem                `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
