// Package vm implements the stack-based bytecode interpreter: the value
// stack, call-frame discipline, closure and upvalue runtime, and class and
// instance dispatch. A VM is an explicit, independently constructible
// context rather than global state, so tests (and, eventually, a REPL
// that wants to recover from a bad VM) can spin up as many as they like.
package vm

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/compiler"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/natives"
	"github.com/kristofer/lumen/pkg/table"
	"github.com/kristofer/lumen/pkg/value"
)

const (
	// StackMax bounds the value stack; it must be large enough that
	// FramesMax frames each using their full local budget can never
	// overflow it.
	StackMax = FramesMax * 256
	// FramesMax is the deepest call nesting the VM allows before
	// reporting a stack-overflow runtime error.
	FramesMax = 64
)

// CallFrame is the per-call activation record: the closure being run, the
// instruction pointer into its chunk, and the base index into the VM's
// value stack where its locals (slot 0 = callee or `this`) begin.
type CallFrame struct {
	closure *value.ObjClosure
	ip      int
	slots   int
}

// Result is the outcome of Interpret.
type Result int

const (
	OK Result = iota
	CompileError
	RuntimeError
)

// VM holds everything one interpreter session needs: the value stack, the
// frame stack, the globals table, the heap (allocator + GC + string
// interner) it allocates through, and the open-upvalue list.
type VM struct {
	heap    *heap.Heap
	globals *table.Table

	stack    [StackMax]value.Value
	stackTop int

	frames     [FramesMax]CallFrame
	frameCount int

	openUpvalues *value.ObjUpvalue
	initString   *value.ObjString

	// Stdout is where PRINT writes; defaulted to os.Stdout-backed code by
	// the caller, overridable so tests can capture output.
	Stdout interface{ WriteString(string) (int, error) }

	// Trace, when set, enables per-instruction disassembly of the
	// dispatch loop -- the optional tracing the disassembler provides.
	Trace bool
}

// New returns a VM with its globals populated by the standard native
// registry and registers itself with h as a permanent GC root.
func New(h *heap.Heap) *VM {
	vm := &VM{
		heap:    h,
		globals: table.New(),
	}
	vm.initString = h.InternString("init")
	natives.NewRegistry().Install(h, vm.globals)
	h.AddRootMarker(vm)
	return vm
}

// MarkRoots implements heap.RootMarker.
func (vm *VM) MarkRoots(mark func(value.Obj)) {
	for i := 0; i < vm.stackTop; i++ {
		if vm.stack[i].IsObj() {
			mark(vm.stack[i].AsObj())
		}
	}
	for i := 0; i < vm.frameCount; i++ {
		mark(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.NextOpen {
		mark(uv)
	}
	vm.globals.MarkAll(func(v value.Value) {
		if v.IsObj() {
			mark(v.AsObj())
		}
	})
	if vm.initString != nil {
		mark(vm.initString)
	}
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// Interpret compiles and runs source as a fresh top-level program.
func (vm *VM) Interpret(source string) Result {
	fn, ok := compiler.Compile(vm.heap, source)
	if !ok {
		return CompileError
	}

	vm.push(value.FromObj(fn))
	closure := vm.heap.NewClosure(fn)
	vm.pop()
	vm.push(value.FromObj(closure))
	vm.call(closure, 0)

	return vm.run()
}

func (vm *VM) print(v value.Value) {
	if vm.Stdout != nil {
		vm.Stdout.WriteString(v.String())
		vm.Stdout.WriteString("\n")
		return
	}
	fmt.Println(v.String())
}
