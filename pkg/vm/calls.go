package vm

import (
	"unsafe"

	"github.com/kristofer/lumen/pkg/value"
)

// addr gives an orderable address for a stack slot pointer. The VM's
// open-upvalue list is kept ordered by descending slot address; Go does
// not let two arbitrary pointers be compared with < or >, so this is the
// idiomatic escape hatch, used only for ordering pointers that are known
// to alias the same backing array.
func addr(p *value.Value) uintptr { return uintptr(unsafe.Pointer(p)) }

// call pushes a new frame for closure, checking arity and frame-depth
// limits first. Slot 0 of the new frame is whatever the caller already
// left at stack[stackTop-argCount-1]: the closure itself for a bare call,
// or the receiver for a bound-method/initializer call.
func (vm *VM) call(closure *value.ObjClosure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if vm.frameCount == FramesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}

	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return true
}

// callValue dispatches a CALL instruction's callee by runtime type.
func (vm *VM) callValue(callee value.Value, argCount int) bool {
	if !callee.IsObj() {
		vm.runtimeError("Can only call functions and classes.")
		return false
	}

	switch obj := callee.AsObj().(type) {
	case *value.ObjClosure:
		return vm.call(obj, argCount)

	case *value.ObjNative:
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result, err := obj.Fn(args)
		if err != nil {
			vm.runtimeError("%s", err.Error())
			return false
		}
		vm.stackTop -= argCount + 1
		vm.push(result)
		return true

	case *value.ObjClass:
		instance := vm.heap.NewInstance(obj)
		vm.stack[vm.stackTop-argCount-1] = value.FromObj(instance)
		if initializer, ok := obj.Methods.Get(vm.initString); ok {
			return vm.call(value.As[*value.ObjClosure](initializer), argCount)
		}
		if argCount != 0 {
			vm.runtimeError("Expected 0 arguments but got %d.", argCount)
			return false
		}
		return true

	case *value.ObjBoundMethod:
		vm.stack[vm.stackTop-argCount-1] = obj.Receiver
		return vm.call(obj.Method, argCount)

	default:
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
}

// invokeFromClass fuses a method lookup with a call, used by the `super`
// fast path; plain `receiver.method(args)` compiles to separate
// GET_PROPERTY and CALL instructions instead.
func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argCount int) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	return vm.call(value.As[*value.ObjClosure](method), argCount)
}

// bindMethod resolves name against class's method table and, on success,
// replaces the top of the stack (currently the receiver) with a fresh
// BoundMethod pairing the two.
func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	bound := vm.heap.NewBoundMethod(vm.peek(0), value.As[*value.ObjClosure](method))
	vm.pop()
	vm.push(value.FromObj(bound))
	return true
}

// captureUpvalue returns the open upvalue for the stack slot at index
// local, reusing an existing one if the descending-address open list
// already has one for that exact slot, inserting a new one in sorted
// position otherwise.
func (vm *VM) captureUpvalue(local int) *value.ObjUpvalue {
	target := &vm.stack[local]
	targetAddr := addr(target)

	var prev *value.ObjUpvalue
	uv := vm.openUpvalues
	for uv != nil && addr(uv.Location) > targetAddr {
		prev = uv
		uv = uv.NextOpen
	}
	if uv != nil && addr(uv.Location) == targetAddr {
		return uv
	}

	created := vm.heap.NewUpvalue(target)
	created.NextOpen = uv
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above the stack index
// last, copying its value out of the stack and unlinking it from the
// open list.
func (vm *VM) closeUpvalues(last int) {
	thresholdAddr := addr(&vm.stack[last])
	for vm.openUpvalues != nil && addr(vm.openUpvalues.Location) >= thresholdAddr {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.NextOpen
		uv.NextOpen = nil
	}
}
