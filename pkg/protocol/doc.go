// Package protocol implements a compact binary encoding of element trees,
// changes and diffs.
//
// The encoding needs no reflection: integers are varints, strings are
// length-prefixed, keys are a scope byte plus a varint ID, and attributes are
// written in ascending name order so that equal values always encode to
// equal bytes.
//
// # Messages
//
//   - EncodeElement / DecodeElement: a full element tree
//   - EncodeChange / DecodeChange: one vdom.Change
//   - EncodeDiffFrame / DecodeDiffFrame: a sequence number and a DiffTree
//
// Frame wraps either message kind with a type byte and a 4-byte length so
// that they can be streamed with WriteFrame and ReadFrame.
//
// # Limits
//
// Decoding untrusted input is bounded: strings are capped at
// DefaultMaxAllocation, collections at MaxCollectionCount, and nesting at
// the decoder's DepthLimits. Every decode failure is a *DecodeError carrying
// the byte offset and unwrapping to the cause.
package protocol
