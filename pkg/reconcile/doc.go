// Package reconcile runs vdom diffs as an observable service.
//
// A Reconciler wraps vdom.Differ with structured logging, Prometheus
// metrics and OpenTelemetry spans, and can diff many tree pairs in
// parallel with DiffAll:
//
//	rec := reconcile.New(
//	    reconcile.WithLogger(logger),
//	    reconcile.WithMetrics(reconcile.NewMetrics()),
//	)
//	diffs, err := rec.DiffAll(ctx, pairs)
//
// A Document owns a single live tree. Every Update or Mutate that changes
// it is assigned a sequence number, encoded as a protocol diff frame and
// kept in a bounded History, so consumers that fall behind can catch up
// with Since or start over from SnapshotFrame.
package reconcile
