// Package metrics exposes import activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/bookimport/internal/importer"
)

const namespace = "bookimport"

// Metrics records pipeline events. It implements importer.Recorder.
type Metrics struct {
	loads       *prometheus.CounterVec
	submissions *prometheus.CounterVec
	rows        *prometheus.CounterVec
	duration    *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the import metrics with reg. A nil reg uses a fresh
// registry, which keeps tests independent of the global one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "loads_total",
			Help:      "Spreadsheet loads broken down by resulting state.",
		}, []string{"state"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "submissions_total",
			Help:      "Batch submissions broken down by outcome.",
		}, []string{"outcome"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rows reported by the catalog server as created or failed.",
		}, []string{"result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Latency of loads and submissions.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind"}),
		gatherer: reg,
	}
}

func (m *Metrics) Record(_ context.Context, ev importer.Event) {
	m.duration.WithLabelValues(string(ev.Kind)).Observe(ev.Duration.Seconds())

	switch ev.Kind {
	case importer.EventLoad:
		m.loads.WithLabelValues(string(ev.State)).Inc()
	case importer.EventSubmit:
		m.submissions.WithLabelValues(string(ev.Outcome)).Inc()
		if ev.Created > 0 {
			m.rows.WithLabelValues("created").Add(float64(ev.Created))
		}
		if ev.Failed > 0 {
			m.rows.WithLabelValues("failed").Add(float64(ev.Failed))
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ importer.Recorder = (*Metrics)(nil)
