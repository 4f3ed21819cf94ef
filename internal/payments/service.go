package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kapehan/tindera-backend/pkg/config"
	"github.com/kapehan/tindera-backend/pkg/enums"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/kapehan/tindera-backend/pkg/metrics"
	"github.com/kapehan/tindera-backend/pkg/ocr"
)

type ocrClient interface {
	Extract(ctx context.Context, image []byte, filename string) (*ocr.Result, error)
}

type referenceChecker interface {
	ExistsByReferenceCode(ctx context.Context, code string) (bool, error)
}

// Service verifies wallet-transfer receipt images before a sale is allowed
// to cite them as payment.
type Service interface {
	Verify(ctx context.Context, input VerifyInput) (*VerificationResult, error)
}

type service struct {
	ocr     ocrClient
	sales   referenceChecker
	cfg     config.WalletConfig
	metrics *metrics.VerificationMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the verification pipeline.
func NewService(ocrClient ocrClient, sales referenceChecker, cfg config.WalletConfig, verificationMetrics *metrics.VerificationMetrics, logg *logger.Logger) (Service, error) {
	if ocrClient == nil {
		return nil, errors.New("payments service requires an ocr client")
	}
	if sales == nil {
		return nil, errors.New("payments service requires a reference checker")
	}
	if logg == nil {
		return nil, errors.New("payments service requires a logger")
	}
	if verificationMetrics == nil {
		verificationMetrics = metrics.NewVerificationMetrics(nil)
	}
	return &service{
		ocr:     ocrClient,
		sales:   sales,
		cfg:     cfg,
		metrics: verificationMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Verify runs the receipt through each verification stage in order and stops
// at the first failure. A rejection is a result, not an error: the caller
// always learns why. Infrastructure faults return an error instead so the
// caller can retry. Extracted transaction data rides along on too_old and
// duplicate_reference rejections so the teller can see what was read.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerificationResult, error) {
	if len(input.Image) == 0 {
		return s.reject(ctx, enums.RejectionOCRFailed, "no receipt image provided", nil), nil
	}
	if !s.mimeAllowed(input.ContentType) {
		return s.reject(ctx, enums.RejectionOCRFailed, "unsupported receipt image type", nil), nil
	}
	if int64(len(input.Image)) > s.cfg.MaxImageBytes {
		return s.reject(ctx, enums.RejectionOCRFailed, "receipt image too large", nil), nil
	}

	started := s.now()
	extracted, err := s.ocr.Extract(ctx, input.Image, input.Filename)
	s.metrics.ObserveOCRDuration(s.now().Sub(started))
	if err != nil {
		s.logg.Error(ctx, "receipt ocr failed", err)
		return s.reject(ctx, enums.RejectionOCRFailed, "could not read receipt text", nil), nil
	}

	if !IsWalletTransferLike(extracted.Text, s.cfg.ProviderKeywords) {
		return s.reject(ctx, enums.RejectionNotProviderMatch, "image does not look like a wallet transfer receipt", nil), nil
	}

	reference, ok := ExtractReferenceCode(extracted.Text)
	if !ok {
		return s.reject(ctx, enums.RejectionMissingReference, "no reference code found on receipt", nil), nil
	}
	ctx = s.logg.WithField(ctx, "reference_code", MaskReferenceCode(reference))

	timestamp, ok := ExtractTransactionTimestamp(extracted.Text, s.now())
	if !ok {
		return s.reject(ctx, enums.RejectionMissingDatetime, "no transaction timestamp found on receipt", nil), nil
	}

	data := &TransactionData{
		ReferenceCode:        reference,
		TransactionTimestamp: timestamp,
		Confidence:           extracted.Confidence,
	}

	if !IsRecent(timestamp, s.now(), s.cfg.FreshnessWindow) {
		return s.reject(ctx, enums.RejectionTooOld, "transaction is outside the freshness window", data), nil
	}

	exists, err := s.sales.ExistsByReferenceCode(ctx, reference)
	if err != nil {
		// Fail closed: an unanswered duplicate check must never confirm a
		// receipt. This is an infrastructure fault, not a rejection, so
		// the caller can retry.
		s.logg.Error(ctx, "reference duplicate check failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not verify reference uniqueness")
	}
	if exists {
		return s.reject(ctx, enums.RejectionDuplicateReference, "reference code was already used", data), nil
	}

	s.metrics.IncOutcome(string(enums.VerificationStatusConfirmed), "")
	s.logg.Info(ctx, "receipt verified")
	return &VerificationResult{
		Status:          enums.VerificationStatusConfirmed,
		TransactionData: data,
	}, nil
}

func (s *service) reject(ctx context.Context, reason enums.RejectionReason, msg string, data *TransactionData) *VerificationResult {
	s.metrics.IncOutcome(string(enums.VerificationStatusRejected), string(reason))
	s.logg.Warn(ctx, "receipt rejected: "+msg)
	return &VerificationResult{
		Status:          enums.VerificationStatusRejected,
		RejectionReason: reason,
		TransactionData: data,
	}
}

func (s *service) mimeAllowed(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range s.cfg.AllowedMimeTypes {
		if contentType == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}
