package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/lumen/pkg/heap"
)

type captureWriter struct{ sb strings.Builder }

func (c *captureWriter) WriteString(s string) (int, error) { return c.sb.WriteString(s) }

func run(t *testing.T, source string) (string, Result) {
	t.Helper()
	h := heap.New()
	m := New(h)
	out := &captureWriter{}
	m.Stdout = out
	res := m.Interpret(source)
	return out.sb.String(), res
}

func TestArithmeticPrecedence(t *testing.T) {
	out, res := run(t, `print 1 + 2 * 3;`)
	require.Equal(t, OK, res)
	require.Equal(t, "7\n", out)
}

func TestStringInterningEquality(t *testing.T) {
	out, res := run(t, `var a = "foo"; var b = "foo"; print a == b;`)
	require.Equal(t, OK, res)
	require.Equal(t, "true\n", out)
}

func TestClosureCapturesByReference(t *testing.T) {
	out, res := run(t, `
		fun makeCounter() {
			var i = 0;
			fun c() { i = i + 1; return i; }
			return c;
		}
		var c = makeCounter();
		print c();
		print c();
		print c();
	`)
	require.Equal(t, OK, res)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestClassInitAndMethods(t *testing.T) {
	out, res := run(t, `
		class Greeter {
			init(name) { this.name = name; }
			hi() { print "hi " + this.name; }
		}
		Greeter("world").hi();
	`)
	require.Equal(t, OK, res)
	require.Equal(t, "hi world\n", out)
}

func TestUninitializedVarIsNil(t *testing.T) {
	out, res := run(t, `var x; print x;`)
	require.Equal(t, OK, res)
	require.Equal(t, "nil\n", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, res := run(t, `
		fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); }
		print fib(10);
	`)
	require.Equal(t, OK, res)
	require.Equal(t, "55\n", out)
}

func TestInheritanceCallsSuperMethod(t *testing.T) {
	out, res := run(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "woof";
			}
		}
		Dog().speak();
	`)
	require.Equal(t, OK, res)
	require.Equal(t, "...\nwoof\n", out)
}

func TestIfWithoutElseLeavesStackBalanced(t *testing.T) {
	m := New(heap.New())
	m.Stdout = &captureWriter{}
	res := m.Interpret(`
		for (var i = 0; i < 3; i = i + 1) {
			if (i == 1) { print "one"; }
		}
		print "done";
	`)
	require.Equal(t, OK, res)
	require.Equal(t, 0, m.stackTop)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, res := run(t, `print nope;`)
	require.Equal(t, RuntimeError, res)
}

func TestAssignToUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, res := run(t, `nope = 1;`)
	require.Equal(t, RuntimeError, res)
}

func TestCallingNonFunctionIsRuntimeError(t *testing.T) {
	_, res := run(t, `var x = 1; x();`)
	require.Equal(t, RuntimeError, res)
}

func TestTypeMismatchOnArithmeticIsRuntimeError(t *testing.T) {
	_, res := run(t, `print 1 + "a";`)
	require.Equal(t, RuntimeError, res)
}

func TestDeepRecursionOverflowsStack(t *testing.T) {
	_, res := run(t, `
		fun recurse(n) { return recurse(n + 1); }
		recurse(0);
	`)
	require.Equal(t, RuntimeError, res)
}

func TestClockNativeReturnsNumber(t *testing.T) {
	out, res := run(t, `print clock() >= 0;`)
	require.Equal(t, OK, res)
	require.Equal(t, "true\n", out)
}
