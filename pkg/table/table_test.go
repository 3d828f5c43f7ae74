package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/value"
)

func key(chars string) *value.ObjString {
	return value.NewString(chars)
}

func TestSetAndGet(t *testing.T) {
	tbl := New()
	k := key("name")
	isNew := tbl.Set(k, value.Number(42))
	require.True(t, isNew)

	v, ok := tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, value.Number(42), v)
}

func TestGetMissingKey(t *testing.T) {
	tbl := New()
	_, ok := tbl.Get(key("missing"))
	require.False(t, ok)
}

func TestSetReportsExistingKeyAsNotNew(t *testing.T) {
	tbl := New()
	k := key("x")
	require.True(t, tbl.Set(k, value.Number(1)))
	require.False(t, tbl.Set(k, value.Number(2)))

	v, _ := tbl.Get(k)
	require.Equal(t, value.Number(2), v)
}

func TestDeleteLeavesTombstoneButLookupStillWorksPastIt(t *testing.T) {
	tbl := New()
	a, b := key("a"), key("b")
	tbl.Set(a, value.Number(1))
	tbl.Set(b, value.Number(2))

	require.True(t, tbl.Delete(a))
	require.False(t, tbl.Delete(a)) // already gone

	// b must still be reachable even if its probe chain crossed a's tombstone.
	v, ok := tbl.Get(b)
	require.True(t, ok)
	require.Equal(t, value.Number(2), v)
}

func TestCountExcludesTombstones(t *testing.T) {
	tbl := New()
	a := key("a")
	tbl.Set(a, value.Number(1))
	require.Equal(t, 1, tbl.Count())
	tbl.Delete(a)
	require.Equal(t, 0, tbl.Count())
}

func TestGrowPreservesAllEntries(t *testing.T) {
	tbl := New()
	const n = 64
	keys := make([]*value.ObjString, n)
	for i := 0; i < n; i++ {
		keys[i] = key(string(rune('a' + i%26)) + string(rune(i)))
		tbl.Set(keys[i], value.Number(float64(i)))
	}
	for i, k := range keys {
		v, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, value.Number(float64(i)), v)
	}
}

func TestFindStringDoesNotAllocate(t *testing.T) {
	tbl := New()
	s := key("hello")
	tbl.Set(s, value.Nil)

	found := tbl.FindString("hello", value.HashString("hello"))
	require.Same(t, s, found)

	require.Nil(t, tbl.FindString("goodbye", value.HashString("goodbye")))
}

func TestAddAllCopiesEntries(t *testing.T) {
	greet := key("greet")
	src := New()
	src.Set(greet, value.Number(1))

	dst := New()
	dst.AddAll(src)

	v, ok := dst.Get(greet)
	require.True(t, ok)
	require.Equal(t, value.Number(1), v)
}
