package payments

import (
	"time"

	"github.com/kapehan/tindera-backend/pkg/enums"
)

// VerifyInput carries an uploaded receipt image into verification.
type VerifyInput struct {
	Image       []byte
	Filename    string
	ContentType string
}

// TransactionData is what verification managed to read off the receipt.
// It accompanies confirmations and the rejections where the extracted
// values explain the refusal.
type TransactionData struct {
	ReferenceCode        string    `json:"referenceCode"`
	TransactionTimestamp time.Time `json:"transactionTimestamp"`
	Confidence           float64   `json:"extractedConfidence"`
}

// VerificationResult is the outcome of a receipt verification attempt.
type VerificationResult struct {
	Status          enums.VerificationStatus `json:"status"`
	RejectionReason enums.RejectionReason    `json:"rejectionReason,omitempty"`
	TransactionData *TransactionData         `json:"transactionData,omitempty"`
}

// Confirmed reports whether the receipt passed every verification stage.
func (r *VerificationResult) Confirmed() bool {
	return r.Status == enums.VerificationStatusConfirmed
}
