package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/value"
)

func TestInternStringDeduplicates(t *testing.T) {
	h := New()
	a := h.InternString("hello")
	b := h.InternString("hello")
	require.Same(t, a, b)
}

func TestInternStringDistinctContent(t *testing.T) {
	h := New()
	a := h.InternString("hello")
	b := h.InternString("world")
	require.NotSame(t, a, b)
}

// rootSet is a trivial heap.RootMarker a test can point at whatever
// objects it wants to keep alive across a collection.
type rootSet struct{ roots []value.Obj }

func (r *rootSet) MarkRoots(mark func(value.Obj)) {
	for _, o := range r.roots {
		mark(o)
	}
}

func TestCollectFreesUnreachableStrings(t *testing.T) {
	h := New()
	kept := h.InternString("kept")
	h.InternString("garbage")
	require.Equal(t, 2, h.Count())

	roots := &rootSet{roots: []value.Obj{kept}}
	h.AddRootMarker(roots)
	h.Collect()

	require.Equal(t, 1, h.Count())
	require.Nil(t, h.Strings.FindString("garbage", value.HashString("garbage")))
	require.NotNil(t, h.Strings.FindString("kept", value.HashString("kept")))
}

func TestCollectUnmarksSurvivorsForNextCycle(t *testing.T) {
	h := New()
	kept := h.InternString("kept")
	roots := &rootSet{roots: []value.Obj{kept}}
	h.AddRootMarker(roots)

	h.Collect()
	require.False(t, kept.IsMarked())
	h.Collect() // a second cycle must succeed the same way
	require.False(t, kept.IsMarked())
	require.Equal(t, 1, h.Count())
}

func TestInternStringSurvivesStressCollectDuringAllocation(t *testing.T) {
	h := New()
	h.Stress = true
	s := h.InternString("anything")

	require.Equal(t, 1, h.Count())
	found := h.Strings.FindString("anything", value.HashString("anything"))
	require.Same(t, s, found)
}

func TestStressModeCollectsOnEveryAllocation(t *testing.T) {
	h := New()
	h.Stress = true
	collections := 0
	h.Trace = true
	h.Log = func(format string, _ ...any) {
		if format == "-- gc begin" {
			collections++
		}
	}
	before := h.NextGC()
	h.InternString("anything")
	require.Equal(t, 1, collections)
	// The collection keeps the new string (it is a temporary root while
	// being interned) and recomputes nextGC from the few bytes that remain,
	// so the threshold cannot have grown past twice its starting value.
	require.LessOrEqual(t, h.NextGC(), before*growFactor)
}

func TestClosureBlackensFunctionAndUpvalues(t *testing.T) {
	h := New()
	fn := h.NewFunction()
	fn.UpvalueCount = 1
	closure := h.NewClosure(fn)
	slot := value.Number(1)
	closure.Upvalues[0] = h.NewUpvalue(&slot)

	var marked []value.Obj
	closure.Blacken(func(o value.Obj) { marked = append(marked, o) })

	require.Contains(t, marked, value.Obj(fn))
	require.Contains(t, marked, value.Obj(closure.Upvalues[0]))
}
