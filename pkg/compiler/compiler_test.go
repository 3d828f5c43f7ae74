package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/heap"
)

func TestCompileSimpleExpressionSucceeds(t *testing.T) {
	h := heap.New()
	fn, ok := Compile(h, `print 1 + 2;`)
	require.True(t, ok)
	require.NotNil(t, fn)
	require.Greater(t, len(fn.Chunk.Code), 0)
}

func TestCompileSyntaxErrorFails(t *testing.T) {
	h := heap.New()
	_, ok := Compile(h, `var = ;`)
	require.False(t, ok)
}

// Slot 0 of every function is reserved, so 255 declarations fill the
// 256 local slots and one more declaration overflows them.
func TestCompile256LocalsSucceeds(t *testing.T) {
	var src strings.Builder
	src.WriteString("{\n")
	for i := 0; i < 255; i++ {
		fmt.Fprintf(&src, "var v%d = %d;\n", i, i)
	}
	src.WriteString("}\n")

	h := heap.New()
	_, ok := Compile(h, src.String())
	require.True(t, ok)
}

func TestCompile257LocalsFails(t *testing.T) {
	var src strings.Builder
	src.WriteString("{\n")
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&src, "var v%d = %d;\n", i, i)
	}
	src.WriteString("}\n")

	h := heap.New()
	_, ok := Compile(h, src.String())
	require.False(t, ok)
}

func TestCompile256ConstantsSucceeds(t *testing.T) {
	var src strings.Builder
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&src, "print %d;\n", i)
	}
	h := heap.New()
	_, ok := Compile(h, src.String())
	require.True(t, ok)
}

func TestReturnAtTopLevelIsError(t *testing.T) {
	h := heap.New()
	_, ok := Compile(h, `return 1;`)
	require.False(t, ok)
}

func TestThisOutsideClassIsError(t *testing.T) {
	h := heap.New()
	_, ok := Compile(h, `print this;`)
	require.False(t, ok)
}

func TestReadLocalInOwnInitializerIsError(t *testing.T) {
	h := heap.New()
	_, ok := Compile(h, `{ var a = a; }`)
	require.False(t, ok)
}
