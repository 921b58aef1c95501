package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSheetsRequest("values.get", "200", 120*time.Millisecond)
	m.ObserveSheetsRequest("values.get", "200", 80*time.Millisecond)
	m.ObserveSheetsRequest("values.update", "429", time.Second)
	m.IncFallback("Rooms", "mock")
	m.IncWrite("Rooms", nil)
	m.IncWrite("Rooms", errors.New("boom"))

	if got := testutil.ToFloat64(m.sheetsRequests.WithLabelValues("values.get", "200")); got != 2 {
		t.Errorf("values.get 200: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.sheetsRequests.WithLabelValues("values.update", "429")); got != 1 {
		t.Errorf("values.update 429: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("Rooms", "mock")); got != 1 {
		t.Errorf("fallbacks: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.writes.WithLabelValues("Rooms", "error")); got != 1 {
		t.Errorf("write errors: got %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.sheetsDuration); got != 2 {
		t.Errorf("duration series: got %d, want 2", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveSheetsRequest("values.get", "200", time.Millisecond)
	m.IncFallback("Rooms", "cache")
	m.IncWrite("Rooms", nil)
}
