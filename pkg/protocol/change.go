package protocol

import (
	"fmt"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// EncodeChange encodes a single change to bytes.
//
// A change is its op byte followed by the fields that op uses, in the order
// they are listed on vdom.Change. Element lists and key lists are prefixed
// with a varint count.
func EncodeChange(c vdom.Change) []byte {
	e := NewEncoder()
	EncodeChangeTo(e, c)
	return e.Bytes()
}

// EncodeChangeTo encodes a change using the provided encoder.
func EncodeChangeTo(e *Encoder, c vdom.Change) {
	e.PutByte(byte(c.Op))

	switch c.Op {
	case vdom.OpAppendChild, vdom.OpInsertChild, vdom.OpReplaceNode:
		EncodeElementTo(e, c.Element)
	case vdom.OpAppendAll:
		encodeElements(e, c.Elements)
	case vdom.OpInsertBefore, vdom.OpReplaceChild:
		encodeKey(e, c.Key)
		EncodeElementTo(e, c.Element)
	case vdom.OpInsertAll:
		encodeKey(e, c.Key)
		encodeElements(e, c.Elements)
	case vdom.OpRemoveChild:
		encodeKey(e, c.Key)
	case vdom.OpSortChildren:
		e.WriteUvarint(uint64(len(c.Keys)))
		for _, k := range c.Keys {
			encodeKey(e, k)
		}
	case vdom.OpUpdateText:
		e.WriteString(c.Text)
	case vdom.OpUpdateAttributes:
		encodeAttrs(e, c.Attrs)
		encodeStrings(e, c.Removed)
	}
}

// DecodeChange decodes a single change from bytes.
func DecodeChange(data []byte) (vdom.Change, error) {
	d := NewDecoder(data)
	c, err := DecodeChangeFrom(d)
	if err != nil {
		return vdom.Change{}, err
	}
	if !d.EOF() {
		return vdom.Change{}, decodeError("change", d, ErrTrailingBytes)
	}
	return c, nil
}

// DecodeChangeFrom decodes one change from the decoder.
func DecodeChangeFrom(d *Decoder) (vdom.Change, error) {
	c, err := decodeChange(d)
	return c, decodeError("change", d, err)
}

func decodeChange(d *Decoder) (vdom.Change, error) {
	b, err := d.ReadByte()
	if err != nil {
		return vdom.Change{}, err
	}
	c := vdom.Change{Op: vdom.ChangeOp(b)}

	switch c.Op {
	case vdom.OpAppendChild, vdom.OpInsertChild:
		c.Element, err = decodeRequired(d)
	case vdom.OpReplaceNode:
		c.Element, err = decodeElement(d, 0)
	case vdom.OpAppendAll:
		c.Elements, err = decodeElements(d)
	case vdom.OpInsertBefore, vdom.OpReplaceChild:
		if c.Key, err = decodeKey(d); err == nil {
			c.Element, err = decodeRequired(d)
		}
	case vdom.OpInsertAll:
		if c.Key, err = decodeKey(d); err == nil {
			c.Elements, err = decodeElements(d)
		}
	case vdom.OpRemoveChild:
		c.Key, err = decodeKey(d)
	case vdom.OpSortChildren:
		c.Keys, err = decodeKeys(d)
	case vdom.OpUpdateText:
		c.Text, err = d.ReadString()
	case vdom.OpUpdateAttributes:
		if c.Attrs, err = decodeAttrs(d); err == nil {
			c.Removed, err = decodeStrings(d)
		}
	default:
		err = fmt.Errorf("%w: 0x%02x", ErrInvalidChangeOp, b)
	}
	if err != nil {
		return vdom.Change{}, err
	}
	return c, nil
}

// decodeRequired decodes an element that must not be the null marker.
func decodeRequired(d *Decoder) (vdom.Element, error) {
	el, err := decodeElement(d, 0)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("%w: null element", ErrInvalidElement)
	}
	return el, nil
}

func encodeElements(e *Encoder, els []vdom.Element) {
	e.WriteUvarint(uint64(len(els)))
	for _, el := range els {
		EncodeElementTo(e, el)
	}
}

func decodeElements(d *Decoder) ([]vdom.Element, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	els := make([]vdom.Element, count)
	for i := range els {
		if els[i], err = decodeRequired(d); err != nil {
			return nil, err
		}
	}
	return els, nil
}

func decodeKeys(d *Decoder) ([]vdom.Key, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	keys := make([]vdom.Key, count)
	for i := range keys {
		if keys[i], err = decodeKey(d); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
