package vdom

// Walk visits el and its descendants depth-first, parents before children.
// Returning false from fn skips the children of the visited element.
func Walk(el Element, fn func(el Element, depth int) bool) {
	walk(el, 0, fn)
}

func walk(el Element, depth int, fn func(Element, int) bool) {
	if el == nil || !fn(el, depth) {
		return
	}
	if p, ok := el.(*Parent); ok {
		for _, child := range p.children {
			walk(child, depth+1, fn)
		}
	}
}

// Count returns the number of elements in the tree rooted at el.
func Count(el Element) int {
	n := 0
	Walk(el, func(Element, int) bool {
		n++
		return true
	})
	return n
}
