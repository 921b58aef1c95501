// Package metrics holds the Prometheus collectors exported by pgstay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pgstay"

// Metrics groups every collector. A nil *Metrics is valid and records nothing,
// so components can be built without a registry in tests.
type Metrics struct {
	sheetsRequests *prometheus.CounterVec
	sheetsDuration *prometheus.HistogramVec
	fallbacks      *prometheus.CounterVec
	writes         *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sheetsRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "requests_total",
			Help:      "Google Sheets API calls by operation and HTTP status.",
		}, []string{"op", "code"}),
		sheetsDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "request_duration_seconds",
			Help:      "Latency of Google Sheets API calls.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "fallbacks_total",
			Help:      "Reads served from a fallback source after a failed live fetch.",
		}, []string{"sheet", "source"}),
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "writes_total",
			Help:      "Whole-sheet rewrites by sheet and outcome.",
		}, []string{"sheet", "outcome"}),
	}
}

// ObserveSheetsRequest records one API call. code is the HTTP status, or
// "error" when no response was received.
func (m *Metrics) ObserveSheetsRequest(op, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.sheetsRequests.WithLabelValues(op, code).Inc()
	m.sheetsDuration.WithLabelValues(op).Observe(d.Seconds())
}

// IncFallback counts a read served from source instead of the live sheet.
func (m *Metrics) IncFallback(sheet, source string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(sheet, source).Inc()
}

// IncWrite counts a collection rewrite.
func (m *Metrics) IncWrite(sheet string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.writes.WithLabelValues(sheet, outcome).Inc()
}
