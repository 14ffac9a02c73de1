// Package metrics defines the Prometheus metrics recorded by enrichment passes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vidcard"

// Lookup stages, used as the "stage" label.
const (
	StageOEmbed        = "oembed"
	StageChannelSearch = "channel_search"
	StageChannelDetail = "channel_detail"
)

// Metrics holds the collectors backing the enrichment metrics.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	candidates   *prometheus.CounterVec
	replacements *prometheus.CounterVec
	unresolved   *prometheus.CounterVec
	lookupTimer  *prometheus.HistogramVec
	passTimer    *prometheus.HistogramVec
	jobs         *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry: registry,
		candidates: newCounter(registry, "candidates_total",
			"Count of link candidates found, by mode.",
			[]string{"mode"}),
		replacements: newCounter(registry, "replacements_total",
			"Count of links replaced by a card, by mode.",
			[]string{"mode"}),
		unresolved: newCounter(registry, "unresolved_lookups_total",
			"Count of lookups that produced no result, by stage.",
			[]string{"stage"}),
		lookupTimer: newHistogramVec(registry, "lookup_duration_seconds",
			"Seconds spent on external lookups, by stage and outcome.",
			[]string{"stage", "outcome"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}),
		passTimer: newHistogramVec(registry, "pass_duration_seconds",
			"Seconds spent on one enrichment pass, by mode.",
			[]string{"mode"},
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}),
		jobs: newCounter(registry, "jobs_total",
			"Count of enrichment jobs reaching a status.",
			[]string{"status"}),
	}
}

func newCounter(registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordCandidates adds n candidates found in a pass.
func (m *Metrics) RecordCandidates(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.candidates.WithLabelValues(mode).Add(float64(n))
}

// RecordReplacement counts one substituted link.
func (m *Metrics) RecordReplacement(mode string) {
	if m == nil {
		return
	}
	m.replacements.WithLabelValues(mode).Inc()
}

// RecordUnresolved counts a lookup that degraded to "absent".
func (m *Metrics) RecordUnresolved(stage string) {
	if m == nil {
		return
	}
	m.unresolved.WithLabelValues(stage).Inc()
}

// ObserveLookup records the latency of one external call.
func (m *Metrics) ObserveLookup(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.lookupTimer.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

// ObservePass records the duration of one enrichment pass.
func (m *Metrics) ObservePass(mode string, d time.Duration) {
	if m == nil {
		return
	}
	m.passTimer.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordJob counts a job reaching status.
func (m *Metrics) RecordJob(status string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(status).Inc()
}
