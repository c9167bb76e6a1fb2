package vdom

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiffTreeEmpty(t *testing.T) {
	assert.Nil(t, newDiffTree(nil, nil))
	assert.Nil(t, newDiffTree([]Change{}, []ChildDiff{}))
}

func TestDiffTreeNilSafe(t *testing.T) {
	var d *DiffTree

	assert.Equal(t, 0, d.Len())
	assert.Nil(t, d.Child(g(1)))
	assert.NoError(t, d.Walk(func([]Key, *DiffTree) error { return errors.New("unreachable") }))
	assert.Empty(t, d.Ops())
}

func TestDiffTreeWalkAndOps(t *testing.T) {
	prev := par(1, "div",
		par(2, "ul", txt(3, "a"), txt(4, "b")),
		par(5, "p", txt(6, "x")),
	)
	next := par(1, "div",
		par(5, "p", txt(6, "y")),
		par(2, "ul", txt(4, "B"), txt(7, "c")),
	)

	d := Diff(prev, next)
	require.NotNil(t, d)

	var paths []string
	err := d.Walk(func(path []Key, n *DiffTree) error {
		s := ""
		for _, k := range path {
			s += "/" + k.String()
		}
		paths = append(paths, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "/g:2", "/g:2/g:4", "/g:5", "/g:5/g:6"}, paths)

	assert.Equal(t, map[ChangeOp]int{
		OpSortChildren: 2,
		OpRemoveChild:  1,
		OpInsertChild:  1,
		OpUpdateText:   2,
	}, d.Ops())
	assert.Equal(t, uint64(6), d.Cost)
	assert.Equal(t, 1, d.Len())
}

func TestDiffTreeWalkStops(t *testing.T) {
	d := Diff(par(1, "div", txt(2, "a"), txt(3, "b")), par(1, "div", txt(2, "A"), txt(3, "B")))
	stop := errors.New("stop")

	visited := 0
	err := d.Walk(func([]Key, *DiffTree) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestChangeOpString(t *testing.T) {
	assert.Equal(t, "SortChildren", OpSortChildren.String())
	assert.Equal(t, "UpdateAttributes", OpUpdateAttributes.String())
	assert.Equal(t, "Unknown", ChangeOp(0).String())
}

func TestChangeClone(t *testing.T) {
	c := Change{
		Op:       OpAppendAll,
		Elements: []Element{par(1, "li", txt(2, "a"))},
		Keys:     keys(1),
		Attrs:    NewAttributes("id", "x"),
		Removed:  []string{"class"},
	}

	cc := c.Clone()

	assert.NotSame(t, c.Elements[0], cc.Elements[0])
	assert.True(t, EqualKeyed(c.Elements[0], cc.Elements[0]))
	cc.Keys[0] = g(9)
	cc.Removed[0] = "other"
	cc.Attrs.Set("id", "y")
	assert.Equal(t, g(1), c.Keys[0])
	assert.Equal(t, "class", c.Removed[0])
	v, _ := c.Attrs.Get("id")
	assert.Equal(t, "x", v)
}

func TestEqualDiff(t *testing.T) {
	prev := par(1, "div", NewVoid(g(2), "img", NewAttributes("src", "a")), txt(3, "x"))
	next := par(1, "div",
		NewVoid(g(2), "img", NewAttributes("src", "b")),
		txt(3, "y"),
		NewVoid(g(4), "input", NewAttributes("type", "text")),
	)

	a, b := Diff(prev, next), Diff(prev, next)
	require.NotNil(t, a)

	assert.False(t, reflect.DeepEqual(NewAttributes("id", "x"), NewAttributes("id", "x")))
	assert.True(t, EqualDiff(a, b))
	assert.True(t, EqualDiff(nil, nil))
	assert.False(t, EqualDiff(a, nil))
	assert.False(t, EqualDiff(a, Diff(prev, prev.Clone())))
	assert.False(t, EqualDiff(a, Diff(prev, par(1, "div", txt(3, "y")))))

	changed := Diff(prev, next)
	changed.Children[0].Diff.Changes[0].Attrs.Set("src", "c")
	assert.False(t, EqualDiff(a, changed))
}

func TestEqualChange(t *testing.T) {
	batch := func() Change {
		return Change{Op: OpAppendAll, Elements: []Element{txt(1, "a"), NewVoid(g(2), "br", NewAttributes("class", "x"))}}
	}
	assert.True(t, EqualChange(batch(), batch()))
	assert.False(t, EqualChange(SortChildrenChange(keys(1, 2)), SortChildrenChange(keys(2, 1))))
	assert.False(t, EqualChange(RemoveChildChange(g(1)), RemoveChildChange(g(2))))
	assert.False(t, EqualChange(UpdateTextChange("a"), UpdateTextChange("b")))
}
