package vtest

import (
	"math/rand/v2"
	"strconv"

	"github.com/vango-dev/vtree/pkg/vdom"
)

var (
	parentTags = []string{"div", "ul", "section", "article", "p"}
	voidTags   = []string{"br", "hr", "img", "input", "meta"}
	words      = []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	attrNames  = []string{"class", "id", "title", "role", "data-x"}
)

// GenOptions shapes generated trees.
type GenOptions struct {
	// Depth is the maximum nesting of parents below the root.
	Depth int

	// Fanout is the maximum number of children per parent.
	Fanout int

	// ParentRatio is the probability that a child is itself a parent,
	// while Depth allows it.
	ParentRatio float64

	// VoidRatio is the probability that a leaf is a Void rather than Text.
	VoidRatio float64
}

// DefaultGenOptions returns options producing small, varied trees.
func DefaultGenOptions() GenOptions {
	return GenOptions{
		Depth:       3,
		Fanout:      5,
		ParentRatio: 0.35,
		VoidRatio:   0.3,
	}
}

// Generator builds random keyed trees and random edits of them.
// Keys are global and never reused within one Generator. A Generator is not
// safe for concurrent use.
type Generator struct {
	rng  *rand.Rand
	opts GenOptions
	next uint64
}

// NewGenerator creates a deterministic generator for seed.
func NewGenerator(seed uint64, opts GenOptions) *Generator {
	def := DefaultGenOptions()
	if opts.Depth <= 0 {
		opts.Depth = def.Depth
	}
	if opts.Fanout <= 0 {
		opts.Fanout = def.Fanout
	}
	return &Generator{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		opts: opts,
	}
}

// Tree returns a new random tree rooted at a "div" parent.
func (g *Generator) Tree() *vdom.Parent {
	root := vdom.MustParent(g.key(), "div", nil)
	g.fill(root, g.opts.Depth)
	return root
}

// Node returns a random element with a fresh key, at most depth parents deep.
func (g *Generator) Node(depth int) vdom.Element {
	return g.nodeWithKey(g.key(), depth)
}

func (g *Generator) key() vdom.Key {
	g.next++
	return vdom.GlobalKey(g.next)
}

func (g *Generator) nodeWithKey(key vdom.Key, depth int) vdom.Element {
	if depth > 0 && g.rng.Float64() < g.opts.ParentRatio {
		p := vdom.MustParent(key, pick(g.rng, parentTags), g.attrs())
		g.fill(p, depth-1)
		return p
	}
	if g.rng.Float64() < g.opts.VoidRatio {
		return vdom.NewVoid(key, pick(g.rng, voidTags), g.attrs())
	}
	return vdom.NewText(key, g.word())
}

func (g *Generator) fill(p *vdom.Parent, depth int) {
	n := g.rng.IntN(g.opts.Fanout + 1)
	for i := 0; i < n; i++ {
		// Keys are fresh, AppendChild cannot fail.
		_, _ = p.AppendChild(g.nodeWithKey(g.key(), depth))
	}
}

func (g *Generator) attrs() *vdom.Attributes {
	if g.rng.IntN(2) == 0 {
		return nil
	}
	a := vdom.NewAttributes()
	for i := g.rng.IntN(3); i >= 0; i-- {
		a.Set(pick(g.rng, attrNames), g.word())
	}
	return a
}

func (g *Generator) word() string {
	return pick(g.rng, words) + "-" + strconv.Itoa(g.rng.IntN(4))
}

// Mutate returns a randomly edited clone of root; root is left untouched.
// Every parent present before editing is edited with probability rate, using
// one of: remove a child, insert a child, shuffle the children, edit a
// child's text, tag or attributes, or replace a child.
func (g *Generator) Mutate(root vdom.Element, rate float64) vdom.Element {
	out := root.Clone()

	var parents []*vdom.Parent
	vdom.Walk(out, func(el vdom.Element, _ int) bool {
		if p, ok := el.(*vdom.Parent); ok {
			parents = append(parents, p)
		}
		return true
	})

	for _, p := range parents {
		if g.rng.Float64() >= rate {
			continue
		}
		g.edit(p)
	}
	return out
}

func (g *Generator) edit(p *vdom.Parent) {
	n := p.Len()
	if n == 0 {
		_, _ = p.AppendChild(g.Node(1))
		return
	}
	i := g.rng.IntN(n)

	switch g.rng.IntN(7) {
	case 0:
		_, _ = p.RemoveChild(i)
	case 1:
		_, _ = p.InsertBefore(i, g.Node(1))
	case 2:
		_, _ = p.AppendChild(g.Node(1))
	case 3:
		rank := make(map[vdom.Key]int, n)
		for _, k := range p.Keys() {
			rank[k] = g.rng.IntN(n * 2)
		}
		_, _ = p.ReorderChildren(vdom.OrderBy(func(el vdom.Element) int {
			return rank[el.Key()]
		}))
	case 4:
		switch c := p.Child(i).(type) {
		case *vdom.Text:
			_, _ = c.UpdateText(g.word())
		case *vdom.Void:
			c.Tag = pick(g.rng, voidTags)
		case *vdom.Parent:
			c.Tag = pick(g.rng, parentTags)
		}
	case 5:
		c := p.Child(i)
		if c.Kind() != vdom.KindText {
			remove := vdom.AttrsOf(c).Names()
			if len(remove) > 1 {
				remove = remove[:1]
			}
			_, _ = c.UpdateAttributes(g.attrs(), remove)
		}
	case 6:
		// Same key, possibly a different shape.
		_, _ = p.ReplaceChild(i, g.nodeWithKey(p.Child(i).Key(), 1))
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}
