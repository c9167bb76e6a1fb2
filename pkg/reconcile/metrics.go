package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vtree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for diff duration, in seconds.
	// Default: exponential from 1µs to about 4s.
	Buckets []float64

	// CostBuckets are the histogram buckets for diff cost.
	// Default: powers of two from 1 to 4096.
	CostBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "vtree",
		Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 12),
		CostBuckets: prometheus.ExponentialBuckets(1, 2, 13),
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Result label values of the diffs counter.
const (
	resultChanged   = "changed"
	resultUnchanged = "unchanged"
)

// Status label values of the document updates counter.
const (
	statusApplied   = "applied"
	statusUnchanged = "unchanged"
	statusResync    = "resync"
	statusError     = "error"
)

// Metrics holds the Prometheus collectors for diffing and document updates.
// A nil *Metrics records nothing.
type Metrics struct {
	diffsTotal      *prometheus.CounterVec
	diffDuration    prometheus.Histogram
	changesTotal    *prometheus.CounterVec
	diffCost        prometheus.Histogram
	documentUpdates *prometheus.CounterVec
	historyFrames   prometheus.Gauge
}

// NewMetrics creates and registers the collectors:
//
//   - vtree_diffs_total{result}: diffs computed, "changed" or "unchanged"
//   - vtree_diff_duration_seconds: time spent in a single Diff
//   - vtree_changes_total{op}: changes emitted, by operation
//   - vtree_diff_cost: total change count per non-empty diff
//   - vtree_document_updates_total{status}: Document updates by outcome
//   - vtree_history_frames: frames currently held by document histories
//
// Registering twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		diffsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diffs_total",
			Help:        "Total number of tree diffs computed",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		diffDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diff_duration_seconds",
			Help:        "Tree diff duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		changesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "changes_total",
			Help:        "Total number of changes emitted, by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		diffCost: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "diff_cost",
			Help:        "Number of changes per non-empty diff",
			ConstLabels: config.ConstLabels,
			Buckets:     config.CostBuckets,
		}),

		documentUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "document_updates_total",
			Help:        "Total number of document updates, by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		historyFrames: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "history_frames",
			Help:        "Number of encoded diff frames held for replay",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordDiff(d *vdom.DiffTree, seconds float64) {
	if m == nil {
		return
	}
	m.diffDuration.Observe(seconds)
	if d == nil {
		m.diffsTotal.WithLabelValues(resultUnchanged).Inc()
		return
	}
	m.diffsTotal.WithLabelValues(resultChanged).Inc()
	m.diffCost.Observe(float64(d.Cost))
	for op, n := range d.Ops() {
		m.changesTotal.WithLabelValues(op.String()).Add(float64(n))
	}
}

func (m *Metrics) recordUpdate(status string) {
	if m == nil {
		return
	}
	m.documentUpdates.WithLabelValues(status).Inc()
}

func (m *Metrics) setHistoryFrames(n int) {
	if m == nil {
		return
	}
	m.historyFrames.Set(float64(n))
}
