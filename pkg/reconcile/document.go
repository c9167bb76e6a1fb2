package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// ErrCannotRecover is returned by Document.Since when the frames after the
// requested sequence are no longer held. The consumer must start over from
// a snapshot.
var ErrCannotRecover = errors.New("reconcile: sequence no longer in history")

// ErrNilRoot is returned when a document would be left without a root.
var ErrNilRoot = errors.New("reconcile: nil document root")

// Document owns one live tree and serializes every change to it.
//
// Each update that changes the tree gets the next sequence number and its
// diff is encoded as a protocol diff frame and kept in the document's
// History, so a consumer that saw sequence n can catch up with Since(n).
// An update whose diff could not be replayed is recorded as a snapshot
// frame of the resynchronized tree instead; Replay handles both.
// A Document is safe for concurrent use.
type Document struct {
	mu      sync.Mutex
	root    vdom.Element
	seq     uint64
	rec     *Reconciler
	history *History
	apply   func(vdom.Element, *vdom.DiffTree) (vdom.Element, error)
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithHistory sets the history that receives the document's frames.
// Default: NewHistory(DefaultHistoryCapacity).
func WithHistory(h *History) DocumentOption {
	return func(d *Document) {
		d.history = h
	}
}

// NewDocument creates a document at sequence 0 owning root. The document
// takes ownership of root; the caller must not mutate it afterwards.
// A nil rec uses New().
func NewDocument(root vdom.Element, rec *Reconciler, opts ...DocumentOption) (*Document, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	if rec == nil {
		rec = New()
	}
	d := &Document{root: root, rec: rec, apply: vdom.Apply}
	for _, opt := range opts {
		opt(d)
	}
	if d.history == nil {
		d.history = NewHistory(DefaultHistoryCapacity)
	}
	if rec.metrics != nil {
		d.history.observe(rec.metrics.setHistoryFrames)
	}
	return d, nil
}

// Update brings the live tree to next. It returns the diff that was applied
// (nil if next equals the live tree) and the resulting sequence number.
// next is only read; the document keeps its own copy.
func (d *Document) Update(ctx context.Context, next vdom.Element) (*vdom.DiffTree, uint64, error) {
	if next == nil {
		return nil, d.Seq(), ErrNilRoot
	}

	ctx, span := d.rec.tracer.Start(ctx, "vtree.Document.Update")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	diff := d.rec.Diff(ctx, d.root, next)
	if diff == nil {
		d.rec.metrics.recordUpdate(statusUnchanged)
		span.SetAttributes(attribute.Int64("vtree.seq", int64(d.seq)))
		return nil, d.seq, nil
	}

	root, err := d.apply(d.root, diff)
	status := statusApplied
	var frame *protocol.Frame
	if err != nil {
		// The live tree may be partially updated. Start over from next.
		d.rec.logger.Warn("diff replay failed, resynchronizing document",
			"seq", d.seq+1,
			"error", err,
		)
		root = next.Clone()
		status = statusResync
		frame = protocol.SnapshotFrame(root)
	}

	seq, err := d.commit(root, diff, frame)
	if err != nil {
		d.rec.metrics.recordUpdate(statusError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, d.seq, err
	}
	d.rec.metrics.recordUpdate(status)
	span.SetAttributes(
		attribute.Int64("vtree.seq", int64(seq)),
		attribute.Int64("vtree.cost", int64(diff.Cost)),
		attribute.String("vtree.status", status),
	)
	d.rec.logger.Debug("document updated", "seq", seq, "cost", diff.Cost, "status", status)
	return diff, seq, nil
}

// Mutate runs fn against the live root, under the document lock, and
// records whatever fn changed as one update. fn receives the live tree and
// may use any mutation method on it or its descendants.
//
// If fn fails the changes it made before failing are still recorded, and
// fn's error is returned along with them.
func (d *Document) Mutate(ctx context.Context, fn func(root vdom.Element) error) (*vdom.DiffTree, uint64, error) {
	ctx, span := d.rec.tracer.Start(ctx, "vtree.Document.Mutate")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	before := d.root.Clone()
	fnErr := fn(d.root)

	var (
		diff *vdom.DiffTree
		seq  = d.seq
	)
	if diff = d.rec.Diff(ctx, before, d.root); diff != nil {
		var err error
		if seq, err = d.commit(d.root, diff, nil); err != nil {
			fnErr = errors.Join(fnErr, err)
		}
	}

	if fnErr != nil {
		d.rec.metrics.recordUpdate(statusError)
		span.RecordError(fnErr)
		span.SetStatus(codes.Error, fnErr.Error())
		return diff, seq, fnErr
	}
	if diff == nil {
		d.rec.metrics.recordUpdate(statusUnchanged)
	} else {
		d.rec.metrics.recordUpdate(statusApplied)
	}
	return diff, seq, nil
}

// commit stores root, assigns the next sequence number and records frame,
// or the encoded diff frame if frame is nil. The caller holds the lock.
func (d *Document) commit(root vdom.Element, diff *vdom.DiffTree, frame *protocol.Frame) (uint64, error) {
	if root == nil {
		return d.seq, ErrNilRoot
	}
	d.root = root
	d.seq++

	if frame == nil {
		frame = protocol.DiffFrameOf(&protocol.DiffFrame{Seq: d.seq, Diff: diff})
	}
	d.history.Add(d.seq, frame.Encode())
	return d.seq, nil
}

// Seq returns the sequence number of the latest update.
func (d *Document) Seq() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Snapshot returns a deep copy of the live tree and its sequence number.
func (d *Document) Snapshot() (vdom.Element, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root.Clone(), d.seq
}

// SnapshotFrame returns the live tree encoded as a protocol snapshot frame,
// and its sequence number.
func (d *Document) SnapshotFrame() ([]byte, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return protocol.SnapshotFrame(d.root).Encode(), d.seq
}

// Since returns the encoded frames of every update after seq, in order. It returns ErrCannotRecover if some of them have been evicted from
// the history.
func (d *Document) Since(seq uint64) ([][]byte, error) {
	d.mu.Lock()
	current := d.seq
	d.mu.Unlock()

	switch {
	case seq == current:
		return nil, nil
	case seq > current:
		return nil, fmt.Errorf("reconcile: sequence %d is ahead of document at %d", seq, current)
	}
	frames := d.history.Frames(seq, current)
	if frames == nil {
		return nil, ErrCannotRecover
	}
	return frames, nil
}

// History returns the document's history.
func (d *Document) History() *History {
	return d.history
}

// Replay brings root forward through frames as returned by Since: diff
// frames are applied in place and snapshot frames replace the tree.
func Replay(root vdom.Element, frames [][]byte) (vdom.Element, error) {
	for i, data := range frames {
		f, err := protocol.DecodeFrame(data)
		if err != nil {
			return root, fmt.Errorf("frame %d: %w", i, err)
		}
		switch f.Type {
		case protocol.FrameSnapshot:
			root, err = f.Element()
		default:
			var df *protocol.DiffFrame
			if df, err = f.DiffFrame(); err == nil {
				root, err = vdom.Apply(root, df.Diff)
			}
		}
		if err != nil {
			return root, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return root, nil
}
