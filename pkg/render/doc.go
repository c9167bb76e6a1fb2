// Package render writes element trees as HTML.
//
// Output is deterministic: attributes are written in ascending name order,
// text and attribute values are escaped, void elements get no closing tag,
// and boolean attributes are written bare.
//
//	html := render.String(tree)
//
//	r := render.NewRenderer(render.RendererConfig{Pretty: true, KeyAttr: "data-key"})
//	err := r.RenderToWriter(os.Stdout, tree)
//
// WriteDiff and DiffString list the changes of a DiffTree, one per line,
// prefixed with the key path of the node each change applies to.
package render
