package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/kapehan/tindera-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// FinalizeItemInput is one cart line. UnitPrice overrides the product's list
// price when supplied and positive; otherwise the list price at the moment of
// sale is snapshotted.
type FinalizeItemInput struct {
	ProductID uuid.UUID        `json:"productId"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

// WalletData carries the verified receipt fields a wallet-transfer sale must
// cite. It comes from a prior verification call, never from raw user input.
type WalletData struct {
	ReferenceCode        string    `json:"referenceCode"`
	TransactionTimestamp time.Time `json:"transactionTimestamp"`
	Confidence           float64   `json:"extractedConfidence"`
	ReceiptImageURL      *string   `json:"receiptImageUrl,omitempty"`
}

// FinalizeInput is a full sale submission.
type FinalizeInput struct {
	SessionID     uuid.UUID           `json:"sessionId"`
	Items         []FinalizeItemInput `json:"items"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Wallet        *WalletData         `json:"wallet,omitempty"`
}
