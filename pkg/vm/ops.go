package vm

import (
	"github.com/kristofer/lumen/pkg/bytecode"
	"github.com/kristofer/lumen/pkg/value"
)

// run is the dispatch loop: fetch, decode, execute, repeat, until a
// top-level RETURN or a runtime error unwinds the last frame.
func (vm *VM) run() Result {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := frame.closure.Function.Chunk.Code[frame.ip]
		lo := frame.closure.Function.Chunk.Code[frame.ip+1]
		frame.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return frame.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *value.ObjString {
		return value.As[*value.ObjString](readConstant())
	}

	for {
		if vm.Trace {
			vm.traceInstruction(frame)
		}

		op := bytecode.Op(readByte())
		switch op {
		case bytecode.Constant:
			vm.push(readConstant())

		case bytecode.Nil:
			vm.push(value.Nil)
		case bytecode.True:
			vm.push(value.Bool(true))
		case bytecode.False:
			vm.push(value.Bool(false))

		case bytecode.Pop:
			vm.pop()

		case bytecode.GetLocal:
			slot := readByte()
			vm.push(vm.stack[frame.slots+int(slot)])
		case bytecode.SetLocal:
			slot := readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case bytecode.GetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return RuntimeError
			}
			vm.push(v)
		case bytecode.DefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.SetGlobal:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return RuntimeError
			}

		case bytecode.GetUpvalue:
			slot := readByte()
			vm.push(*frame.closure.Upvalues[slot].Location)
		case bytecode.SetUpvalue:
			slot := readByte()
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case bytecode.GetProperty:
			if !vm.peek(0).IsObj() {
				vm.runtimeError("Only instances have properties.")
				return RuntimeError
			}
			instance, ok := vm.peek(0).AsObj().(*value.ObjInstance)
			if !ok {
				vm.runtimeError("Only instances have properties.")
				return RuntimeError
			}
			name := readString()
			if v, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if !vm.bindMethod(instance.Class, name) {
				return RuntimeError
			}
		case bytecode.SetProperty:
			instance, ok := vm.peek(1).AsObj().(*value.ObjInstance)
			if !vm.peek(1).IsObj() || !ok {
				vm.runtimeError("Only instances have fields.")
				return RuntimeError
			}
			name := readString()
			instance.Fields.Set(name, vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)

		case bytecode.GetSuper:
			name := readString()
			superclass := value.As[*value.ObjClass](vm.pop())
			if !vm.bindMethod(superclass, name) {
				return RuntimeError
			}

		case bytecode.Equal:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.Greater:
			if !vm.numericBinaryOp(func(a, b float64) value.Value { return value.Bool(a > b) }) {
				return RuntimeError
			}
		case bytecode.Less:
			if !vm.numericBinaryOp(func(a, b float64) value.Value { return value.Bool(a < b) }) {
				return RuntimeError
			}

		case bytecode.Add:
			if !vm.add() {
				return RuntimeError
			}
		case bytecode.Subtract:
			if !vm.numericBinaryOp(func(a, b float64) value.Value { return value.Number(a - b) }) {
				return RuntimeError
			}
		case bytecode.Multiply:
			if !vm.numericBinaryOp(func(a, b float64) value.Value { return value.Number(a * b) }) {
				return RuntimeError
			}
		case bytecode.Divide:
			if !vm.numericBinaryOp(func(a, b float64) value.Value { return value.Number(a / b) }) {
				return RuntimeError
			}

		case bytecode.Not:
			vm.push(value.Bool(vm.pop().IsFalsey()))
		case bytecode.Negate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return RuntimeError
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case bytecode.Print:
			vm.print(vm.pop())

		case bytecode.Jump:
			offset := readShort()
			frame.ip += offset
		case bytecode.JumpIfFalse:
			offset := readShort()
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}
		case bytecode.Loop:
			offset := readShort()
			frame.ip -= offset

		case bytecode.Call:
			argCount := int(readByte())
			if !vm.callValue(vm.peek(argCount), argCount) {
				return RuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.SuperInvoke:
			name := readString()
			argCount := int(readByte())
			superclass := value.As[*value.ObjClass](vm.pop())
			if !vm.invokeFromClass(superclass, name, argCount) {
				return RuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.Closure:
			fn := value.As[*value.ObjFunction](readConstant())
			closure := vm.heap.NewClosure(fn)
			vm.push(value.FromObj(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case bytecode.CloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case bytecode.Return:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return OK
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.Class:
			name := readString()
			vm.push(value.FromObj(vm.heap.NewClass(name)))

		case bytecode.Inherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.AsObj().(*value.ObjClass)
			if !superVal.IsObj() || !ok {
				vm.runtimeError("Superclass must be a class.")
				return RuntimeError
			}
			subclass := value.As[*value.ObjClass](vm.peek(0))
			subclass.Methods.AddAll(superclass.Methods)
			vm.pop() // the subclass; the superclass stays in the super slot

		case bytecode.Method:
			vm.defineMethod(readString())

		default:
			vm.runtimeError("Unknown opcode %d.", byte(op))
			return RuntimeError
		}
	}
}

// numericBinaryOp pops two operands, checks both are numbers, and pushes
// apply(a, b). It reports a runtime error and returns false otherwise.
func (vm *VM) numericBinaryOp(apply func(a, b float64) value.Value) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(apply(a, b))
	return true
}

// add implements ADD's two overloads: numeric addition, or concatenation
// when both operands are strings.
func (vm *VM) add() bool {
	switch {
	case vm.peek(0).IsString() && vm.peek(1).IsString():
		b := value.As[*value.ObjString](vm.pop())
		a := value.As[*value.ObjString](vm.pop())
		vm.push(value.FromObj(vm.heap.InternString(a.Chars + b.Chars)))
		return true
	case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
		b := vm.pop().AsNumber()
		a := vm.pop().AsNumber()
		vm.push(value.Number(a + b))
		return true
	default:
		vm.runtimeError("Operands must be two numbers or two strings.")
		return false
	}
}

func (vm *VM) defineMethod(name *value.ObjString) {
	method := vm.peek(0)
	class := value.As[*value.ObjClass](vm.peek(1))
	class.Methods.Set(name, method)
	vm.pop()
}
