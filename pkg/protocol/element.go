package protocol

import (
	"fmt"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Element kind bytes.
const (
	kindText   byte = 0x00
	kindVoid   byte = 0x01
	kindParent byte = 0x02
	nullMarker byte = 0xFF
)

// EncodeElement encodes an element tree to bytes. A nil element is encoded
// as a single null marker.
//
// Wire format:
//
//	element = kind:u8 key [text | tag attrs | tag attrs count:uvarint element*]
//	key     = scope:u8 id:uvarint
//	attrs   = count:uvarint (name:string value:string)*   ascending by name
func EncodeElement(el vdom.Element) []byte {
	e := NewEncoder()
	EncodeElementTo(e, el)
	return e.Bytes()
}

// EncodeElementTo encodes an element tree using the provided encoder.
func EncodeElementTo(e *Encoder, el vdom.Element) {
	switch n := el.(type) {
	case *vdom.Text:
		e.PutByte(kindText)
		encodeKey(e, n.Key())
		e.WriteString(n.Value)
	case *vdom.Void:
		e.PutByte(kindVoid)
		encodeKey(e, n.Key())
		e.WriteString(n.Tag)
		encodeAttrs(e, n.Attrs)
	case *vdom.Parent:
		e.PutByte(kindParent)
		encodeKey(e, n.Key())
		e.WriteString(n.Tag)
		encodeAttrs(e, n.Attrs)
		e.WriteUvarint(uint64(n.Len()))
		for i := 0; i < n.Len(); i++ {
			EncodeElementTo(e, n.Child(i))
		}
	default:
		e.PutByte(nullMarker)
	}
}

// DecodeElement decodes a complete element tree from bytes. The input must
// hold exactly one element.
func DecodeElement(data []byte) (vdom.Element, error) {
	d := NewDecoder(data)
	el, err := DecodeElementFrom(d)
	if err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, decodeError("element", d, ErrTrailingBytes)
	}
	return el, nil
}

// DecodeElementFrom decodes one element tree from the decoder.
// Decoding enforces the decoder's element depth limit and rejects parents
// whose children share a key.
func DecodeElementFrom(d *Decoder) (vdom.Element, error) {
	el, err := decodeElement(d, 0)
	return el, decodeError("element", d, err)
}

func decodeElement(d *Decoder, depth int) (vdom.Element, error) {
	if err := checkDepth(depth, d.limits.ElementDepth); err != nil {
		return nil, err
	}

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == nullMarker {
		return nil, nil
	}

	key, err := decodeKey(d)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindText:
		value, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return vdom.NewText(key, value), nil

	case kindVoid:
		tag, attrs, err := decodeTagged(d)
		if err != nil {
			return nil, err
		}
		return vdom.NewVoid(key, tag, attrs), nil

	case kindParent:
		tag, attrs, err := decodeTagged(d)
		if err != nil {
			return nil, err
		}
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		children := make([]vdom.Element, count)
		for i := range children {
			child, err := decodeElement(d, depth+1)
			if err != nil {
				return nil, err
			}
			if child == nil {
				return nil, fmt.Errorf("%w: null child of %s", ErrInvalidElement, key)
			}
			children[i] = child
		}
		p, err := vdom.NewParent(key, tag, attrs, children...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidElement, err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidKind, kind)
	}
}

func decodeTagged(d *Decoder) (string, *vdom.Attributes, error) {
	tag, err := d.ReadString()
	if err != nil {
		return "", nil, err
	}
	attrs, err := decodeAttrs(d)
	if err != nil {
		return "", nil, err
	}
	return tag, attrs, nil
}

func encodeKey(e *Encoder, k vdom.Key) {
	e.PutByte(byte(k.Scope))
	e.WriteUvarint(k.ID)
}

func decodeKey(d *Decoder) (vdom.Key, error) {
	scope, err := d.ReadByte()
	if err != nil {
		return vdom.Key{}, err
	}
	if vdom.KeyScope(scope) != vdom.ScopeLocal && vdom.KeyScope(scope) != vdom.ScopeGlobal {
		return vdom.Key{}, fmt.Errorf("%w: 0x%02x", ErrInvalidKeyScope, scope)
	}
	id, err := d.ReadUvarint()
	if err != nil {
		return vdom.Key{}, err
	}
	return vdom.Key{Scope: vdom.KeyScope(scope), ID: id}, nil
}

// encodeAttrs writes attributes in ascending name order, so equal mappings
// always encode to equal bytes.
func encodeAttrs(e *Encoder, attrs *vdom.Attributes) {
	e.WriteUvarint(uint64(attrs.Len()))
	attrs.Each(func(name, value string) {
		e.WriteString(name)
		e.WriteString(value)
	})
}

// decodeAttrs returns nil for an empty mapping.
func decodeAttrs(d *Decoder) (*vdom.Attributes, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	attrs := vdom.NewAttributes()
	for i := 0; i < count; i++ {
		name, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		value, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		attrs.Set(name, value)
	}
	return attrs, nil
}

func encodeStrings(e *Encoder, s []string) {
	e.WriteUvarint(uint64(len(s)))
	for _, v := range s {
		e.WriteString(v)
	}
}

// decodeStrings returns nil for an empty list.
func decodeStrings(d *Decoder) ([]string, error) {
	count, err := d.ReadCollectionCount()
	if err != nil || count == 0 {
		return nil, err
	}
	out := make([]string, count)
	for i := range out {
		if out[i], err = d.ReadString(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
