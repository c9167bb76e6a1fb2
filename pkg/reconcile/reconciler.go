package reconcile

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Default tracer name for reconcile spans.
const defaultTracerName = "github.com/vango-dev/vtree/pkg/reconcile"

// Reconciler computes diffs with logging, metrics and tracing around
// vdom.Differ. Like the Differ it only reads its inputs, so one Reconciler
// may diff many disjoint tree pairs at once.
type Reconciler struct {
	differ  *vdom.Differ
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	workers int
}

// Option configures a Reconciler.
type Option func(*reconcilerConfig)

type reconcilerConfig struct {
	diffOptions    vdom.DiffOptions
	logger         *slog.Logger
	metrics        *Metrics
	tracerProvider trace.TracerProvider
	workers        int
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *reconcilerConfig) {
		c.logger = logger
	}
}

// WithMetrics records every diff in m. Default: no metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *reconcilerConfig) {
		c.metrics = m
	}
}

// WithTracerProvider sets the tracer provider.
// Default: the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *reconcilerConfig) {
		c.tracerProvider = tp
	}
}

// WithDiffOptions sets the options of the underlying Differ.
func WithDiffOptions(opts vdom.DiffOptions) Option {
	return func(c *reconcilerConfig) {
		c.diffOptions = opts
	}
}

// WithWorkers bounds the number of pairs DiffAll diffs at once.
// Default: runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *reconcilerConfig) {
		c.workers = n
	}
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	config := reconcilerConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	if config.logger == nil {
		config.logger = slog.Default()
	}
	if config.tracerProvider == nil {
		config.tracerProvider = otel.GetTracerProvider()
	}
	if config.workers <= 0 {
		config.workers = runtime.GOMAXPROCS(0)
	}

	return &Reconciler{
		differ:  vdom.NewDiffer(config.diffOptions),
		logger:  config.logger,
		metrics: config.metrics,
		tracer:  config.tracerProvider.Tracer(defaultTracerName),
		workers: config.workers,
	}
}

// Logger returns the reconciler's logger.
func (r *Reconciler) Logger() *slog.Logger {
	return r.logger
}

// Metrics returns the reconciler's metrics, or nil.
func (r *Reconciler) Metrics() *Metrics {
	return r.metrics
}

// Diff returns the changes that turn prev into next, or nil if there are
// none. See vdom.Diff.
func (r *Reconciler) Diff(ctx context.Context, prev, next vdom.Element) *vdom.DiffTree {
	_, span := r.tracer.Start(ctx, "vtree.Diff", trace.WithAttributes(elementAttrs(prev)...))
	defer span.End()

	start := time.Now()
	d := r.differ.Diff(prev, next)
	elapsed := time.Since(start)

	r.metrics.recordDiff(d, elapsed.Seconds())
	span.SetAttributes(
		attribute.Int64("vtree.cost", int64(costOf(d))),
		attribute.Int("vtree.changes", d.Len()),
	)
	if d != nil {
		r.logger.Debug("diff computed",
			"cost", d.Cost,
			"root_changes", d.Len(),
			"duration", elapsed,
		)
	}
	return d
}

// Pair is one previous/next tree pair for DiffAll.
type Pair struct {
	Prev vdom.Element
	Next vdom.Element
}

// DiffAll diffs every pair on a bounded pool of goroutines and returns the
// diffs in pair order. It stops scheduling pairs once ctx is done and then
// returns ctx's error along with the partial results.
//
// The pairs must not share mutable elements with anything being mutated
// concurrently.
func (r *Reconciler) DiffAll(ctx context.Context, pairs []Pair) ([]*vdom.DiffTree, error) {
	ctx, span := r.tracer.Start(ctx, "vtree.DiffAll", trace.WithAttributes(
		attribute.Int("vtree.pairs", len(pairs)),
		attribute.Int("vtree.workers", r.workers),
	))
	defer span.End()

	out := make([]*vdom.DiffTree, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = r.Diff(gctx, p.Prev, p.Next)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		recordSpanError(span, err)
		r.logger.Warn("diff batch interrupted", "pairs", len(pairs), "error", err)
	}
	return out, err
}

func costOf(d *vdom.DiffTree) uint64 {
	if d == nil {
		return 0
	}
	return d.Cost
}
