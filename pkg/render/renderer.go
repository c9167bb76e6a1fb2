package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output, one element per line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// KeyAttr, when set, names an attribute that carries each element's key
	// (e.g. "data-key"). Text nodes have no tag and never carry it.
	KeyAttr string
}

// Renderer writes element trees as HTML. A Renderer holds no per-render
// state and may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

var defaultRenderer = NewRenderer(RendererConfig{})

// String renders el as compact HTML. Write errors cannot occur on the
// in-memory buffer, so none is returned.
func String(el vdom.Element) string {
	s, _ := defaultRenderer.RenderToString(el)
	return s
}

// RenderToString renders an element tree to an HTML string.
func (r *Renderer) RenderToString(el vdom.Element) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, el); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams an element tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, el vdom.Element) error {
	return r.renderNode(w, el, 0)
}

// renderNode dispatches rendering based on the element shape.
func (r *Renderer) renderNode(w io.Writer, el vdom.Element, depth int) error {
	switch n := el.(type) {
	case nil:
		return nil
	case *vdom.Text:
		return r.renderText(w, n, depth)
	case *vdom.Void:
		return r.renderVoid(w, n, depth)
	case *vdom.Parent:
		return r.renderParent(w, n, depth)
	default:
		return fmt.Errorf("render: unknown element type %T", el)
	}
}

func (r *Renderer) renderText(w io.Writer, n *vdom.Text, depth int) error {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}
	if _, err := io.WriteString(w, escapeHTML(n.Value)); err != nil {
		return err
	}
	return r.newline(w)
}

// renderVoid renders a void element. It never has a closing tag.
func (r *Renderer) renderVoid(w io.Writer, n *vdom.Void, depth int) error {
	if err := r.openTag(w, n.Tag, n.Key(), n.Attrs, depth); err != nil {
		return err
	}
	return r.newline(w)
}

func (r *Renderer) renderParent(w io.Writer, n *vdom.Parent, depth int) error {
	if err := r.openTag(w, n.Tag, n.Key(), n.Attrs, depth); err != nil {
		return err
	}

	// A childless parent with an HTML void tag must not get a closing tag
	// either, or browsers would parse a stray end tag.
	if n.Len() == 0 && isVoidElement(n.Tag) {
		return r.newline(w)
	}

	block := n.Len() > 0 && !isInlineElement(n.Tag)
	if r.config.Pretty && block {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return err
		}
	}

	for i := 0; i < n.Len(); i++ {
		childDepth := depth + 1
		if !block {
			childDepth = 0
		}
		if err := r.renderChild(w, n.Child(i), childDepth, block); err != nil {
			return err
		}
	}

	if r.config.Pretty && block {
		r.writeIndent(w, depth)
	}
	if _, err := fmt.Fprintf(w, "</%s>", n.Tag); err != nil {
		return err
	}
	return r.newline(w)
}

// renderChild renders an inline child without line breaks so that inline
// content stays on its parent's line.
func (r *Renderer) renderChild(w io.Writer, el vdom.Element, depth int, block bool) error {
	if block || !r.config.Pretty {
		return r.renderNode(w, el, depth)
	}
	compact := &Renderer{config: r.config}
	compact.config.Pretty = false
	return compact.renderNode(w, el, 0)
}

func (r *Renderer) openTag(w io.Writer, tag string, key vdom.Key, attrs *vdom.Attributes, depth int) error {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}
	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if r.config.KeyAttr != "" {
		if _, err := fmt.Fprintf(w, ` %s="%s"`, r.config.KeyAttr, key); err != nil {
			return err
		}
	}
	if err := renderAttributes(w, attrs); err != nil {
		return err
	}
	_, err := w.Write([]byte{'>'})
	return err
}

// renderAttributes writes attrs in ascending name order, so output is
// deterministic. Boolean attributes whose value is empty or repeats the name
// are written bare.
func renderAttributes(w io.Writer, attrs *vdom.Attributes) error {
	var err error
	attrs.Each(func(name, value string) {
		if err != nil {
			return
		}
		if isBooleanAttr(name) && (value == "" || strings.EqualFold(value, name)) {
			_, err = fmt.Fprintf(w, " %s", name)
			return
		}
		_, err = fmt.Fprintf(w, ` %s="%s"`, name, escapeAttr(value))
	})
	return err
}

func (r *Renderer) newline(w io.Writer) error {
	if !r.config.Pretty {
		return nil
	}
	_, err := w.Write([]byte{'\n'})
	return err
}

// writeIndent writes the indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
