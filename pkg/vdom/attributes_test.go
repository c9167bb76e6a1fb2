package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributesOrdered(t *testing.T) {
	a := NewAttributes("title", "t", "class", "c", "id", "i", "dangling")

	assert.Equal(t, []string{"class", "id", "title"}, a.Names())
	assert.Equal(t, 3, a.Len())

	var seen []string
	a.Each(func(name, value string) { seen = append(seen, name+"="+value) })
	assert.Equal(t, []string{"class=c", "id=i", "title=t"}, seen)
}

func TestAttributesNilSafe(t *testing.T) {
	var a *Attributes

	assert.Equal(t, 0, a.Len())
	assert.Nil(t, a.Names())
	assert.Nil(t, a.Clone())
	assert.Empty(t, a.Map())
	a.Delete("x")
	_, ok := a.Get("x")
	assert.False(t, ok)
	assert.True(t, a.Equal(NewAttributes()))
}

func TestAttributesSetDeleteClone(t *testing.T) {
	a := AttributesFromMap(map[string]string{"id": "x"})
	c := a.Clone()

	a.Set("id", "y")
	a.Set("class", "z")
	a.Delete("missing")

	v, _ := a.Get("id")
	assert.Equal(t, "y", v)
	v, _ = c.Get("id")
	assert.Equal(t, "x", v, "clones are independent")
	assert.False(t, a.Equal(c))

	a.Delete("class")
	a.Set("id", "x")
	assert.True(t, a.Equal(c))

	var zero Attributes
	zero.Set("k", "v")
	assert.Equal(t, 1, zero.Len())
}

func TestDiffAttributesDelta(t *testing.T) {
	prev := NewAttributes("a", "1", "b", "2", "c", "3")
	next := NewAttributes("b", "2", "c", "30", "d", "4")

	set, removed := diffAttributes(prev, next)

	assert.Equal(t, map[string]string{"c": "30", "d": "4"}, set.Map())
	assert.Equal(t, []string{"a"}, removed)

	set, removed = diffAttributes(prev, prev.Clone())
	assert.Nil(t, set)
	assert.Nil(t, removed)
}
