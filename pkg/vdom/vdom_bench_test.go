package vdom_test

import (
	"testing"

	"github.com/vango-dev/vtree/pkg/vdom"
	"github.com/vango-dev/vtree/pkg/vtest"
)

func benchPair(b *testing.B, opts vtest.GenOptions, rate float64) (vdom.Element, vdom.Element) {
	b.Helper()
	g := vtest.NewGenerator(1, opts)
	prev := g.Tree()
	return prev, g.Mutate(prev, rate)
}

func BenchmarkDiffSameTree(b *testing.B) {
	prev, _ := benchPair(b, vtest.DefaultGenOptions(), 0)
	next := prev.Clone()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vdom.Diff(prev, next)
	}
}

func BenchmarkDiffMutated(b *testing.B) {
	prev, next := benchPair(b, vtest.DefaultGenOptions(), 0.3)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vdom.Diff(prev, next)
	}
}

func BenchmarkDiffLargeTree(b *testing.B) {
	prev, next := benchPair(b, vtest.GenOptions{Depth: 5, Fanout: 10, ParentRatio: 0.5, VoidRatio: 0.2}, 0.2)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vdom.Diff(prev, next)
	}
}

func BenchmarkDiffWideReorder(b *testing.B) {
	n := 1000
	prevChildren := make([]vdom.Element, n)
	nextChildren := make([]vdom.Element, n)
	for i := 0; i < n; i++ {
		prevChildren[i] = vdom.NewText(vdom.GlobalKey(uint64(i+1)), "row")
		nextChildren[n-1-i] = vdom.NewText(vdom.GlobalKey(uint64(i+1)), "row")
	}
	prev := vdom.MustParent(vdom.GlobalKey(0), "tbody", nil, prevChildren...)
	next := vdom.MustParent(vdom.GlobalKey(0), "tbody", nil, nextChildren...)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vdom.Diff(prev, next)
	}
}

func BenchmarkApply(b *testing.B) {
	prev, next := benchPair(b, vtest.DefaultGenOptions(), 0.3)
	d := vdom.Diff(prev, next)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		live := prev.Clone()
		b.StartTimer()
		if _, err := vdom.Apply(live, d); err != nil {
			b.Fatal(err)
		}
	}
}
