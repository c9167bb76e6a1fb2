package vdom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildOpsOnLeavesFail(t *testing.T) {
	leaves := map[string]Element{
		"text": txt(1, "a"),
		"void": NewVoid(g(1), "br", nil),
	}

	for name, el := range leaves {
		t.Run(name, func(t *testing.T) {
			calls := map[string]func() (Change, error){
				"AppendChild":     func() (Change, error) { return el.AppendChild(txt(2, "x")) },
				"AppendAll":       func() (Change, error) { return el.AppendAll([]Element{txt(2, "x")}) },
				"InsertBefore":    func() (Change, error) { return el.InsertBefore(0, txt(2, "x")) },
				"InsertAll":       func() (Change, error) { return el.InsertAll(0, []Element{txt(2, "x")}) },
				"ReplaceChild":    func() (Change, error) { return el.ReplaceChild(0, txt(2, "x")) },
				"RemoveChild":     func() (Change, error) { return el.RemoveChild(0) },
				"ReorderChildren": func() (Change, error) { return el.ReorderChildren(nil) },
			}
			for op, call := range calls {
				_, err := call()
				assert.ErrorIs(t, err, ErrChildlessElementOp, op)

				var opErr *OpError
				require.True(t, errors.As(err, &opErr), op)
				assert.Equal(t, op, opErr.Op)
			}
		})
	}
}

func TestUpdateTextOnNonTextFails(t *testing.T) {
	for _, el := range []Element{NewVoid(g(1), "br", nil), par(1, "div")} {
		_, err := el.UpdateText("x")
		assert.ErrorIs(t, err, ErrNotATextNode)
	}
}

func TestUpdateText(t *testing.T) {
	el := txt(1, "a")

	c, err := el.UpdateText("b")

	require.NoError(t, err)
	assert.Equal(t, "b", el.Value)
	assert.Equal(t, UpdateTextChange("b"), c)
}

func TestUpdateAttributes(t *testing.T) {
	_, err := txt(1, "a").UpdateAttributes(NewAttributes("id", "x"), nil)
	assert.ErrorIs(t, err, ErrNoAttributes)

	v := NewVoid(g(1), "img", nil)
	c, err := v.UpdateAttributes(NewAttributes("src", "a.png", "alt", "A"), nil)
	require.NoError(t, err)
	assert.Equal(t, OpUpdateAttributes, c.Op)
	assert.Equal(t, []string{"alt", "src"}, v.Attrs.Names())

	_, err = v.UpdateAttributes(NewAttributes("src", "b.png"), []string{"alt", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"src": "b.png"}, v.Attrs.Map())

	p := par(2, "div")
	_, err = p.UpdateAttributes(nil, []string{"class"})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Attrs.Len())
}

func TestInsertBeforeBounds(t *testing.T) {
	p := list(1, 2, 3)

	_, err := p.InsertBefore(3, txt(9, "x"))
	assert.ErrorIs(t, err, ErrIndexOOB)
	_, err = p.InsertBefore(-1, txt(9, "x"))
	assert.ErrorIs(t, err, ErrIndexOOB)
	assert.Equal(t, keys(1, 2, 3), p.Keys(), "a failed insert leaves children untouched")

	c, err := p.InsertBefore(2, txt(9, "x"))
	require.NoError(t, err)
	assert.Equal(t, keys(1, 2, 9, 3), p.Keys())
	assert.Equal(t, OpInsertBefore, c.Op)
	assert.Equal(t, g(3), c.Key)
	require.NoError(t, p.CheckKeymap())
}

func TestInsertAll(t *testing.T) {
	p := list(1, 2)

	_, err := p.InsertAll(2, []Element{txt(8, "x")})
	assert.ErrorIs(t, err, ErrIndexOOB)

	c, err := p.InsertAll(0, []Element{txt(8, "x"), txt(9, "y")})
	require.NoError(t, err)
	assert.Equal(t, keys(8, 9, 1, 2), p.Keys())
	assert.Equal(t, g(1), c.Key)
	assert.Len(t, c.Elements, 2)
	require.NoError(t, p.CheckKeymap())
}

func TestRemoveChildBounds(t *testing.T) {
	p := list(1, 2, 3)

	_, err := p.RemoveChild(3)
	assert.ErrorIs(t, err, ErrIndexOOB)

	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, 3, opErr.Index)
	assert.Equal(t, "RemoveChild(3): vdom: child index out of bounds", err.Error())

	c, err := p.RemoveChild(2)
	require.NoError(t, err)
	assert.Equal(t, RemoveChildChange(g(3)), c)

	c, err = p.RemoveChild(0)
	require.NoError(t, err)
	assert.Equal(t, RemoveChildChange(g(1)), c)
	assert.Equal(t, keys(2), p.Keys())
	require.NoError(t, p.CheckKeymap())

	_, ok := p.IndexOf(g(1))
	assert.False(t, ok)
}

func TestReplaceChild(t *testing.T) {
	p := list(1, 2, 3)

	_, err := p.ReplaceChild(3, txt(9, "x"))
	assert.ErrorIs(t, err, ErrIndexOOB)

	_, err = p.ReplaceChild(0, txt(2, "dup"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	c, err := p.ReplaceChild(1, txt(2, "same key"))
	require.NoError(t, err)
	assert.Equal(t, g(2), c.Key)
	assert.Equal(t, "same key", p.Child(1).(*Text).Value)

	_, err = p.ReplaceChild(2, txt(9, "new key"))
	require.NoError(t, err)
	assert.Equal(t, keys(1, 2, 9), p.Keys())
	require.NoError(t, p.CheckKeymap())
}

func TestAppendDuplicateKey(t *testing.T) {
	p := list(1, 2)

	_, err := p.AppendChild(txt(2, "dup"))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	require.NotNil(t, opErr.Key)
	assert.Equal(t, g(2), *opErr.Key)

	_, err = p.AppendAll([]Element{txt(3, "a"), txt(3, "b")})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	_, err = p.AppendAll([]Element{txt(3, "a"), txt(1, "b")})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	assert.Equal(t, keys(1, 2), p.Keys())
	require.NoError(t, p.CheckKeymap())
}

func TestNewParentDuplicateKey(t *testing.T) {
	_, err := NewParent(g(1), "ul", nil, txt(2, "a"), txt(2, "b"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	assert.Panics(t, func() { MustParent(g(1), "ul", nil, txt(2, "a"), txt(2, "b")) })
}

func TestLocalAndGlobalKeysAreDistinct(t *testing.T) {
	p := par(1, "ul", NewText(LocalKey(2), "a"))

	_, err := p.AppendChild(NewText(GlobalKey(2), "b"))

	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestAppendReturnsClone(t *testing.T) {
	p := list(1)
	child := par(2, "li", txt(3, "x"))

	c, err := p.AppendChild(child)
	require.NoError(t, err)

	assert.Same(t, child, p.Child(1), "the parent owns the appended element")
	assert.NotSame(t, child, c.Element)
	assert.True(t, EqualKeyed(child, c.Element))
}

func TestStructLiteralParent(t *testing.T) {
	p := &Parent{Tag: "div"}

	_, err := p.AppendChild(txt(1, "a"))
	require.NoError(t, err)
	_, err = p.InsertBefore(0, txt(2, "b"))
	require.NoError(t, err)

	assert.Equal(t, keys(2, 1), p.Keys())
	require.NoError(t, p.CheckKeymap())
}

func TestReorderChildren(t *testing.T) {
	p := MustParent(g(100), "ul", nil, txt(3, "c"), txt(1, "a"), txt(2, "a"), txt(4, "b"))

	c, err := p.ReorderChildren(OrderBy(func(el Element) string { return el.(*Text).Value }))

	require.NoError(t, err)
	assert.Equal(t, keys(1, 2, 4, 3), p.Keys(), "equal values keep their order")
	assert.Equal(t, SortChildrenChange(keys(1, 2, 4, 3)), c)
	require.NoError(t, p.CheckKeymap())

	for i, k := range p.Keys() {
		j, ok := p.IndexOf(k)
		assert.True(t, ok)
		assert.Equal(t, i, j)
	}
}

func TestKeymapConsistentAfterMixedOps(t *testing.T) {
	p := list(1, 2, 3, 4, 5)

	steps := []func() (Change, error){
		func() (Change, error) { return p.RemoveChild(1) },
		func() (Change, error) { return p.InsertBefore(0, txt(6, "x")) },
		func() (Change, error) { return p.AppendAll([]Element{txt(7, "y"), txt(8, "z")}) },
		func() (Change, error) { return p.ReplaceChild(3, txt(9, "r")) },
		func() (Change, error) {
			return p.ReorderChildren(func(a, b Element) int { return b.Key().Compare(a.Key()) })
		},
		func() (Change, error) { return p.InsertAll(2, []Element{txt(10, "p"), txt(11, "q")}) },
		func() (Change, error) { return p.RemoveChild(p.Len() - 1) },
	}

	for i, step := range steps {
		_, err := step()
		require.NoError(t, err, "step %d", i)
		require.NoError(t, p.CheckKeymap(), "step %d", i)
	}
	assert.Equal(t, keys(9, 8, 10, 11, 7, 6, 5, 3), p.Keys())
}

func TestParentAccessors(t *testing.T) {
	p := list(1, 2)

	assert.Nil(t, p.Child(-1))
	assert.Nil(t, p.Child(2))
	assert.Equal(t, g(2), p.ChildByKey(g(2)).Key())
	assert.Nil(t, p.ChildByKey(g(9)))

	children := p.Children()
	children[0] = nil
	assert.NotNil(t, p.Child(0), "Children returns a copy")

	assert.Equal(t, "ul", TagOf(p))
	assert.Equal(t, "", TagOf(txt(1, "a")))
	assert.Nil(t, AttrsOf(txt(1, "a")))
}
