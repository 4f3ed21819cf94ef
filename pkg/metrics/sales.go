package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records sale finalization outcomes and latency.
type SaleMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_finalize_duration_seconds",
		Help:    "Duration of sale finalization in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_finalize_total",
		Help: "Sale finalization attempts by outcome.",
	}, []string{"payment_method", "outcome"})
	reg.MustRegister(duration, outcomes)
	return &SaleMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// ObserveDuration records the finalize latency for a payment method.
func (s *SaleMetrics) ObserveDuration(paymentMethod string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(paymentMethod)).Observe(duration.Seconds())
}

// IncOutcome increments the counter for the given finalize outcome.
func (s *SaleMetrics) IncOutcome(paymentMethod, outcome string) {
	if s == nil || s.outcomes == nil {
		return
	}
	s.outcomes.WithLabelValues(normalizeLabel(paymentMethod), normalizeLabel(outcome)).Inc()
}

// VerificationMetrics records receipt verification outcomes and OCR latency.
type VerificationMetrics struct {
	ocrDuration prometheus.Histogram
	outcomes    *prometheus.CounterVec
}

// NewVerificationMetrics registers the verification metrics on the provided registerer.
func NewVerificationMetrics(reg prometheus.Registerer) *VerificationMetrics {
	if reg == nil {
		return &VerificationMetrics{}
	}
	ocrDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "receipt_ocr_duration_seconds",
		Help:    "Duration of OCR extraction in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_verification_total",
		Help: "Receipt verifications by status and rejection reason.",
	}, []string{"status", "reason"})
	reg.MustRegister(ocrDuration, outcomes)
	return &VerificationMetrics{
		ocrDuration: ocrDuration,
		outcomes:    outcomes,
	}
}

// ObserveOCRDuration records how long OCR extraction took.
func (v *VerificationMetrics) ObserveOCRDuration(duration time.Duration) {
	if v == nil || v.ocrDuration == nil {
		return
	}
	v.ocrDuration.Observe(duration.Seconds())
}

// IncOutcome increments the counter for a verification result. Reason is
// empty for confirmed receipts.
func (v *VerificationMetrics) IncOutcome(status, reason string) {
	if v == nil || v.outcomes == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	v.outcomes.WithLabelValues(normalizeLabel(status), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
