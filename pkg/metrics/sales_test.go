package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSaleMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSaleMetrics(reg)
	metrics.ObserveDuration("cash", 120*time.Millisecond)
	metrics.IncOutcome("cash", "finalized")
	metrics.IncOutcome("cash", "insufficient_stock")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "sale_finalize_total", "outcome", "finalized"); err != nil {
		t.Fatalf("fetch finalized: %v", err)
	} else if got != 1 {
		t.Fatalf("expected finalized=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "sale_finalize_total", "outcome", "insufficient_stock"); err != nil {
		t.Fatalf("fetch insufficient_stock: %v", err)
	} else if got != 1 {
		t.Fatalf("expected insufficient_stock=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "sale_finalize_duration_seconds", "payment_method", "cash"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestVerificationMetricsDefaultsEmptyReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewVerificationMetrics(reg)
	metrics.IncOutcome("confirmed", "")
	metrics.IncOutcome("rejected", "duplicate_reference")
	metrics.ObserveOCRDuration(800 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "receipt_verification_total", "reason", "none"); err != nil {
		t.Fatalf("fetch confirmed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected confirmed count 1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "receipt_verification_total", "reason", "duplicate_reference"); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejected count 1, got %f", got)
	}
}

func TestNilRegistererIsNoOp(t *testing.T) {
	sales := NewSaleMetrics(nil)
	sales.ObserveDuration("cash", time.Second)
	sales.IncOutcome("cash", "finalized")

	verify := NewVerificationMetrics(nil)
	verify.ObserveOCRDuration(time.Second)
	verify.IncOutcome("confirmed", "")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
