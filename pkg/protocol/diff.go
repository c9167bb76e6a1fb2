package protocol

import (
	"github.com/vango-dev/vtree/pkg/vdom"
)

// DiffFrame is one sequenced diff, as recorded by a document history.
// A nil Diff means the update produced no changes.
type DiffFrame struct {
	Seq  uint64
	Diff *vdom.DiffTree
}

// EncodeDiffFrame encodes a diff frame to bytes.
//
// Wire format:
//
//	frame = seq:uvarint present:bool [diff]
//	diff  = count:uvarint change* count:uvarint (key diff)*
//
// Cost is not transmitted; the decoder recomputes it.
func EncodeDiffFrame(f *DiffFrame) []byte {
	e := NewEncoder()
	EncodeDiffFrameTo(e, f)
	return e.Bytes()
}

// EncodeDiffFrameTo encodes a diff frame using the provided encoder.
func EncodeDiffFrameTo(e *Encoder, f *DiffFrame) {
	e.WriteUvarint(f.Seq)
	e.WriteBool(f.Diff != nil)
	if f.Diff != nil {
		encodeDiff(e, f.Diff)
	}
}

func encodeDiff(e *Encoder, d *vdom.DiffTree) {
	e.WriteUvarint(uint64(len(d.Changes)))
	for _, c := range d.Changes {
		EncodeChangeTo(e, c)
	}
	e.WriteUvarint(uint64(len(d.Children)))
	for _, c := range d.Children {
		encodeKey(e, c.Key)
		encodeDiff(e, c.Diff)
	}
}

// DecodeDiffFrame decodes a diff frame from bytes. The input must hold
// exactly one frame.
func DecodeDiffFrame(data []byte) (*DiffFrame, error) {
	d := NewDecoder(data)
	f, err := DecodeDiffFrameFrom(d)
	if err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, decodeError("diff frame", d, ErrTrailingBytes)
	}
	return f, nil
}

// DecodeDiffFrameFrom decodes one diff frame from the decoder.
func DecodeDiffFrameFrom(d *Decoder) (*DiffFrame, error) {
	f, err := decodeDiffFrame(d)
	return f, decodeError("diff frame", d, err)
}

func decodeDiffFrame(d *Decoder) (*DiffFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	present, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	f := &DiffFrame{Seq: seq}
	if present {
		if f.Diff, err = decodeDiff(d, 0); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// decodeDiff rejects a node with neither changes nor children, which the
// differ never produces.
func decodeDiff(d *Decoder, depth int) (*vdom.DiffTree, error) {
	if err := checkDepth(depth, d.limits.DiffDepth); err != nil {
		return nil, err
	}

	n, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	out := &vdom.DiffTree{Cost: uint64(n)}
	if n > 0 {
		out.Changes = make([]vdom.Change, n)
		for i := range out.Changes {
			if out.Changes[i], err = decodeChange(d); err != nil {
				return nil, err
			}
		}
	}

	n, err = d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		out.Children = make([]vdom.ChildDiff, n)
		for i := range out.Children {
			key, err := decodeKey(d)
			if err != nil {
				return nil, err
			}
			sub, err := decodeDiff(d, depth+1)
			if err != nil {
				return nil, err
			}
			out.Children[i] = vdom.ChildDiff{Key: key, Diff: sub}
			out.Cost += sub.Cost
		}
	}

	if out.Changes == nil && out.Children == nil {
		return nil, ErrEmptyDiff
	}
	return out, nil
}
