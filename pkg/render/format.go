package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// WriteDiff writes a human-readable listing of d, one change per line,
// each prefixed with the key path of the node it applies to:
//
//	/ RemoveChild g:4
//	/g:2 UpdateText "beta-1"
//	/g:2/g:9 InsertChild <br>
//
// A nil diff writes "(no changes)".
func WriteDiff(w io.Writer, d *vdom.DiffTree) error {
	if d == nil {
		_, err := io.WriteString(w, "(no changes)\n")
		return err
	}
	return d.Walk(func(path []vdom.Key, n *vdom.DiffTree) error {
		prefix := formatPath(path)
		for _, c := range n.Changes {
			if _, err := fmt.Fprintf(w, "%s %s\n", prefix, formatChange(c)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DiffString is WriteDiff into a string.
func DiffString(d *vdom.DiffTree) string {
	var b strings.Builder
	_ = WriteDiff(&b, d)
	return b.String()
}

func formatPath(path []vdom.Key) string {
	if len(path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, k := range path {
		b.WriteByte('/')
		b.WriteString(k.String())
	}
	return b.String()
}

func formatChange(c vdom.Change) string {
	op := c.Op.String()
	switch c.Op {
	case vdom.OpAppendChild, vdom.OpInsertChild, vdom.OpReplaceNode:
		return op + " " + String(c.Element)
	case vdom.OpAppendAll:
		return op + " " + formatElements(c.Elements)
	case vdom.OpInsertBefore, vdom.OpReplaceChild:
		return fmt.Sprintf("%s %s %s", op, c.Key, String(c.Element))
	case vdom.OpInsertAll:
		return fmt.Sprintf("%s %s %s", op, c.Key, formatElements(c.Elements))
	case vdom.OpRemoveChild:
		return op + " " + c.Key.String()
	case vdom.OpSortChildren:
		keys := make([]string, len(c.Keys))
		for i, k := range c.Keys {
			keys[i] = k.String()
		}
		return op + " [" + strings.Join(keys, " ") + "]"
	case vdom.OpUpdateText:
		return fmt.Sprintf("%s %q", op, c.Text)
	case vdom.OpUpdateAttributes:
		var parts []string
		c.Attrs.Each(func(name, value string) {
			parts = append(parts, fmt.Sprintf("%s=%q", name, value))
		})
		for _, name := range c.Removed {
			parts = append(parts, "-"+name)
		}
		return op + " " + strings.Join(parts, " ")
	default:
		return op
	}
}

func formatElements(els []vdom.Element) string {
	parts := make([]string, len(els))
	for i, el := range els {
		parts[i] = String(el)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
