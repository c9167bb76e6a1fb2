package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/reconcile"
	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
	"github.com/vango-dev/vtree/pkg/vtest"
)

type benchOptions struct {
	seed         uint64
	pairs        int
	profile      string
	depth        int
	fanout       int
	mutationRate float64
	workers      int
	metricsAddr  string

	jsonOutput   string
	printMetrics bool
	linger       time.Duration
	quiet        bool
}

func benchCmd(global *globalOptions) *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Diff, replay and verify random tree pairs",
		Long: `Generate seeded random keyed trees and random edits of them, diff every
pair in parallel, then check that each diff replays the previous tree into
the next one, directly and after a trip through the binary frame codec.

A document is then driven through as many updates, and its frame history is
replayed onto snapshots to check that a consumer can always catch up.

A human readable summary goes to stderr; --json writes the full report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg, cmd.ErrOrStderr())
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return opts.run(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.Uint64Var(&opts.seed, "seed", config.DefaultSeed, "random seed")
	flags.IntVarP(&opts.pairs, "pairs", "n", config.DefaultPairs, "number of tree pairs")
	flags.StringVarP(&opts.profile, "profile", "p", config.DefaultProfile, "tree shape: small, default, wide or deep")
	flags.IntVar(&opts.depth, "depth", 0, "maximum parent nesting, overrides the profile")
	flags.IntVar(&opts.fanout, "fanout", 0, "maximum children per parent, overrides the profile")
	flags.Float64VarP(&opts.mutationRate, "rate", "r", config.DefaultMutationRate, "probability that a parent is edited")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "concurrent diffs (default GOMAXPROCS)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics on this address while running")
	flags.StringVar(&opts.jsonOutput, "json", "", "write the JSON report to this path ('-' for stdout)")
	flags.BoolVar(&opts.printMetrics, "print-metrics", false, "print the Prometheus metrics to stdout when done")
	flags.DurationVar(&opts.linger, "linger", 0, "keep serving /metrics this long after the run")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the summary")

	return cmd
}

// apply overrides cfg with every flag set on the command line.
func (o *benchOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("seed") {
		cfg.Bench.Seed = o.seed
	}
	if changed("pairs") {
		cfg.Bench.Pairs = o.pairs
	}
	if changed("profile") {
		cfg.Bench.Profile = o.profile
	}
	if changed("depth") {
		cfg.Bench.Depth = o.depth
	}
	if changed("fanout") {
		cfg.Bench.Fanout = o.fanout
	}
	if changed("rate") {
		cfg.Bench.MutationRate = o.mutationRate
	}
	if changed("workers") {
		cfg.Bench.Workers = o.workers
	}
	if changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
}

func (o *benchOptions) run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	if o.linger > 0 && cfg.Metrics.Addr == "" {
		return flagError("linger", "requires --metrics-addr or metrics.addr")
	}

	reg := prometheus.NewRegistry()
	var srv *metricsServer
	if cfg.Metrics.Addr != "" {
		var err error
		if srv, err = startMetricsServer(cfg.Metrics.Addr, reg, logger); err != nil {
			return err
		}
	}

	report, runErr := runBench(ctx, cfg, logger, reg)

	if report != nil && !o.quiet {
		writeSummary(stderr, report)
	}
	if report != nil && o.jsonOutput != "" {
		if err := writeJSON(o.jsonOutput, stdout, report); err != nil {
			return err
		}
	}
	if o.printMetrics {
		if err := writeMetrics(stdout, reg); err != nil {
			return err
		}
	}

	if srv != nil {
		if runErr == nil && o.linger > 0 {
			logger.Info("lingering for scrapes", "addr", srv.Addr(), "duration", o.linger)
			select {
			case <-time.After(o.linger):
			case <-ctx.Done():
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// runBench generates the workload described by cfg and runs every phase
// against it. Metrics are registered in reg. A non-nil report is returned
// with the error if the diff phase completed.
func runBench(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*benchReport, error) {
	bench := cfg.Bench
	genOpts := bench.GenOptions()
	workers := bench.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	gen := vtest.NewGenerator(bench.Seed, genOpts)
	pairs := make([]reconcile.Pair, bench.Pairs)
	elements := 0
	for i := range pairs {
		prev := gen.Tree()
		pairs[i] = reconcile.Pair{Prev: prev, Next: gen.Mutate(prev, bench.MutationRate)}
		elements += vdom.Count(prev)
	}
	logger.Debug("workload generated", "pairs", len(pairs), "elements", elements)

	rec := reconcile.New(
		reconcile.WithLogger(logger),
		reconcile.WithMetrics(reconcile.NewMetrics(
			reconcile.WithNamespace(cfg.Metrics.Namespace),
			reconcile.WithRegistry(reg),
		)),
		reconcile.WithWorkers(workers),
	)

	report := &benchReport{
		Version: version,
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Workload: workloadInfo{
			Seed:         bench.Seed,
			Pairs:        bench.Pairs,
			Profile:      bench.Profile,
			Depth:        genOpts.Depth,
			Fanout:       genOpts.Fanout,
			MutationRate: bench.MutationRate,
			Workers:      workers,
			Elements:     elements,
		},
	}

	before := sampleRuntime()

	start := time.Now()
	diffs, err := rec.DiffAll(ctx, pairs)
	elapsed := time.Since(start)
	if err != nil {
		return nil, errors.New(errors.CodeDiffInterrupted).Wrap(err)
	}
	report.Diff = summarizeDiffs(diffs, elapsed)

	proto, err := verifyPairs(ctx, pairs, diffs, workers)
	if err != nil {
		return report, err
	}
	report.Protocol = proto
	report.Diff.Verified = len(pairs)

	doc, err := runDocument(ctx, rec, gen, bench, cfg.History.Capacity)
	if err != nil {
		return report, err
	}
	report.Document = doc

	report.GC = gcBetween(before, sampleRuntime())
	logger.Info("bench complete",
		"pairs", len(pairs),
		"changed", report.Diff.Changed,
		"cost", report.Diff.CostTotal,
		"elapsed", elapsed,
	)
	return report, nil
}

func summarizeDiffs(diffs []*vdom.DiffTree, elapsed time.Duration) diffInfo {
	info := diffInfo{
		ElapsedMS:   ms(elapsed),
		PairsPerSec: perSecond(len(diffs), elapsed),
		ChangesByOp: make(map[string]int),
	}
	for _, d := range diffs {
		if d == nil {
			info.Unchanged++
			continue
		}
		info.Changed++
		info.CostTotal += d.Cost
		info.CostMax = max(info.CostMax, d.Cost)
		for op, n := range d.Ops() {
			info.ChangesByOp[op.String()] += n
		}
	}
	return info
}

// verifyPairs checks that each diff turns a copy of its previous tree into
// the next tree, both as computed and after encoding it as a frame and
// decoding it again.
func verifyPairs(ctx context.Context, pairs []reconcile.Pair, diffs []*vdom.DiffTree, workers int) (protocolInfo, error) {
	var frames, bytes atomic.Uint64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p, d := pairs[i], diffs[i]
			if err := checkReplay(p, d); err != nil {
				return replayError(i, d, err)
			}
			if d == nil {
				return nil
			}

			data := protocol.DiffFrameOf(&protocol.DiffFrame{Seq: uint64(i + 1), Diff: d}).Encode()
			frames.Add(1)
			bytes.Add(uint64(len(data)))

			decoded, err := decodeDiffFrame(data)
			if err != nil {
				return errors.New(errors.CodeCodecRoundTrip).
					WithDetail(fmt.Sprintf("Pair %d: the encoded frame could not be decoded.", i)).
					Wrap(err)
			}
			if decoded.Seq != uint64(i+1) {
				return errors.New(errors.CodeCodecRoundTrip).
					Wrap(fmt.Errorf("pair %d: decoded seq %d", i, decoded.Seq))
			}
			if err := checkReplay(p, decoded.Diff); err != nil {
				return errors.New(errors.CodeCodecRoundTrip).
					WithDetail(fmt.Sprintf("Pair %d: the decoded diff does not replay.", i)).
					Wrap(err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return protocolInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return protocolInfo{}, errors.New(errors.CodeDiffInterrupted).Wrap(err)
	}

	info := protocolInfo{
		FramesTotal:     int(frames.Load()),
		FrameBytesTotal: bytes.Load(),
	}
	if info.FramesTotal > 0 {
		info.AvgFrameBytes = float64(info.FrameBytesTotal) / float64(info.FramesTotal)
	}
	var cost uint64
	for _, d := range diffs {
		if d != nil {
			cost += d.Cost
		}
	}
	if cost > 0 {
		info.AvgBytesPerCost = float64(info.FrameBytesTotal) / float64(cost)
	}
	return info, nil
}

// checkReplay applies d to a copy of p.Prev and compares the result with
// p.Next.
func checkReplay(p reconcile.Pair, d *vdom.DiffTree) error {
	got, err := vdom.Apply(p.Prev.Clone(), d)
	if err != nil {
		return err
	}
	if !vdom.EqualKeyed(got, p.Next) {
		return fmt.Errorf("replayed tree differs from next:\n%s", render.DiffString(vdom.Diff(got, p.Next)))
	}
	return nil
}

func replayError(i int, d *vdom.DiffTree, err error) error {
	return errors.New(errors.CodeReplayMismatch).
		WithDetail(fmt.Sprintf("Pair %d. The diff was:\n%s", i, render.DiffString(d))).
		WithSuggestion("Rerun with the same --seed and --pairs to reproduce").
		Wrap(err)
}

func decodeDiffFrame(data []byte) (*protocol.DiffFrame, error) {
	f, err := protocol.DecodeFrame(data)
	if err != nil {
		return nil, err
	}
	return f.DiffFrame()
}

// runDocument drives a document through bench.Pairs random updates. Each
// time the history is about to wrap, the frames since the last snapshot are
// replayed onto it and compared with the live tree.
func runDocument(ctx context.Context, rec *reconcile.Reconciler, gen *vtest.Generator, bench config.BenchConfig, capacity int) (documentInfo, error) {
	history := reconcile.NewHistory(capacity)
	current := vdom.Element(gen.Tree())
	doc, err := reconcile.NewDocument(current.Clone(), rec, reconcile.WithHistory(history))
	if err != nil {
		return documentInfo{}, err
	}

	var (
		info     documentInfo
		samples  = make([]time.Duration, 0, bench.Pairs)
		snapshot []byte
		snapSeq  uint64
	)
	snapshot, snapSeq = doc.SnapshotFrame()

	for i := 0; i < bench.Pairs; i++ {
		if err := ctx.Err(); err != nil {
			return info, errors.New(errors.CodeDiffInterrupted).Wrap(err)
		}

		next := gen.Mutate(current, bench.MutationRate)
		start := time.Now()
		_, seq, err := doc.Update(ctx, next)
		samples = append(samples, time.Since(start))
		if err != nil {
			return info, err
		}
		current = next
		info.Updates++

		if seq-snapSeq >= uint64(history.Capacity()) {
			if err := checkRecovery(doc, snapshot, snapSeq); err != nil {
				return info, err
			}
			info.Checkpoints++
			snapshot, snapSeq = doc.SnapshotFrame()
		}
	}
	if err := checkRecovery(doc, snapshot, snapSeq); err != nil {
		return info, err
	}
	info.Checkpoints++

	info.Seq = doc.Seq()
	info.LatencyMS = latencies(samples)
	return info, nil
}

// checkRecovery rebuilds the document from an encoded snapshot taken at
// seq and the frames recorded since, and compares it with the live tree.
func checkRecovery(doc *reconcile.Document, snapshot []byte, seq uint64) error {
	fail := func(err error) error {
		return errors.New(errors.CodeRecoveryFailed).
			WithDetail(fmt.Sprintf("Replaying from seq %d to %d failed.", seq, doc.Seq())).
			Wrap(err)
	}

	f, err := protocol.DecodeFrame(snapshot)
	if err != nil {
		return fail(err)
	}
	root, err := f.Element()
	if err != nil {
		return fail(err)
	}
	frames, err := doc.Since(seq)
	if err != nil {
		return fail(err)
	}
	if root, err = reconcile.Replay(root, frames); err != nil {
		return fail(err)
	}

	live, _ := doc.Snapshot()
	if !vdom.EqualKeyed(root, live) {
		return fail(fmt.Errorf("recovered tree differs from the live tree:\n%s", render.DiffString(vdom.Diff(root, live))))
	}
	return nil
}
