package vm

import (
	"fmt"

	"github.com/kristofer/lumen/pkg/bytecode"
	"github.com/kristofer/lumen/pkg/value"
)

// DisassembleChunk writes a textual dump of every instruction in chunk to
// stdout, labeled with name. It is a debugging aid only; nothing in the
// VM's correctness depends on its output.
func DisassembleChunk(chunk *value.Chunk, name string) {
	fmt.Printf("== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(chunk, offset)
	}
}

// DisassembleInstruction prints one instruction at offset and returns the
// offset of the next one.
func DisassembleInstruction(chunk *value.Chunk, offset int) int {
	fmt.Printf("%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Printf("   | ")
	} else {
		fmt.Printf("%4d ", chunk.Lines[offset])
	}

	op := bytecode.Op(chunk.Code[offset])
	switch op {
	case bytecode.Constant, bytecode.GetGlobal, bytecode.DefineGlobal,
		bytecode.SetGlobal, bytecode.GetProperty, bytecode.SetProperty,
		bytecode.Class, bytecode.Method, bytecode.GetSuper:
		return constantInstruction(op, chunk, offset)
	case bytecode.GetLocal, bytecode.SetLocal, bytecode.Call:
		return byteInstruction(op, chunk, offset)
	case bytecode.GetUpvalue, bytecode.SetUpvalue:
		return byteInstruction(op, chunk, offset)
	case bytecode.SuperInvoke:
		return invokeInstruction(op, chunk, offset)
	case bytecode.Jump, bytecode.JumpIfFalse:
		return jumpInstruction(op, chunk, offset, 1)
	case bytecode.Loop:
		return jumpInstruction(op, chunk, offset, -1)
	case bytecode.Closure:
		return closureInstruction(chunk, offset)
	default:
		fmt.Println(op.String())
		return offset + 1
	}
}

func constantInstruction(op bytecode.Op, chunk *value.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Printf("%-16s %4d '%s'\n", op.String(), idx, chunk.Constants[idx].String())
	return offset + 2
}

func byteInstruction(op bytecode.Op, chunk *value.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Printf("%-16s %4d\n", op.String(), slot)
	return offset + 2
}

func invokeInstruction(op bytecode.Op, chunk *value.Chunk, offset int) int {
	nameIdx := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	fmt.Printf("%-16s (%d args) %4d '%s'\n", op.String(), argCount, nameIdx, chunk.Constants[nameIdx].String())
	return offset + 3
}

func jumpInstruction(op bytecode.Op, chunk *value.Chunk, offset, sign int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Printf("%-16s %4d -> %d\n", op.String(), offset, target)
	return offset + 3
}

func closureInstruction(chunk *value.Chunk, offset int) int {
	offset++
	constant := chunk.Code[offset]
	offset++
	fmt.Printf("%-16s %4d '%s'\n", bytecode.Closure.String(), constant, chunk.Constants[constant].String())

	fn := value.As[*value.ObjFunction](chunk.Constants[constant])
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		offset++
		index := chunk.Code[offset]
		offset++
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Printf("%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}

// traceInstruction prints the current value stack and the instruction
// about to execute, used when VM.Trace is enabled.
func (vm *VM) traceInstruction(frame *CallFrame) {
	fmt.Print("          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Printf("[ %s ]", vm.stack[i].String())
	}
	fmt.Println()
	DisassembleInstruction(&frame.closure.Function.Chunk, frame.ip)
}
