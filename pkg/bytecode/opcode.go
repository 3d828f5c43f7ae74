// Package bytecode defines the instruction set the compiler emits into a
// value.Chunk and the VM's dispatch loop decodes. It intentionally holds
// nothing but opcode identities and their operand shapes: the Chunk and
// constant pool that carry actual bytecode live in package value, so that
// value has no dependency back on this package.
package bytecode

// Op is a single-byte instruction opcode.
type Op byte

const (
	// Stack & constants.
	Constant Op = iota
	Nil
	True
	False
	Pop

	// Variables.
	GetLocal
	SetLocal
	GetGlobal
	DefineGlobal
	SetGlobal
	GetUpvalue
	SetUpvalue
	GetProperty
	SetProperty

	// Operators.
	Equal
	Greater
	Less
	Add
	Subtract
	Multiply
	Divide
	Not
	Negate

	// Statements.
	Print

	// Control flow.
	Jump
	JumpIfFalse
	Loop
	Call
	SuperInvoke
	Closure
	CloseUpvalue
	Return

	// Classes.
	Class
	Inherit
	Method
	GetSuper
)

var names = [...]string{
	Constant:     "CONSTANT",
	Nil:          "NIL",
	True:         "TRUE",
	False:        "FALSE",
	Pop:          "POP",
	GetLocal:     "GET_LOCAL",
	SetLocal:     "SET_LOCAL",
	GetGlobal:    "GET_GLOBAL",
	DefineGlobal: "DEFINE_GLOBAL",
	SetGlobal:    "SET_GLOBAL",
	GetUpvalue:   "GET_UPVALUE",
	SetUpvalue:   "SET_UPVALUE",
	GetProperty:  "GET_PROPERTY",
	SetProperty:  "SET_PROPERTY",
	Equal:        "EQUAL",
	Greater:      "GREATER",
	Less:         "LESS",
	Add:          "ADD",
	Subtract:     "SUBTRACT",
	Multiply:     "MULTIPLY",
	Divide:       "DIVIDE",
	Not:          "NOT",
	Negate:       "NEGATE",
	Print:        "PRINT",
	Jump:         "JUMP",
	JumpIfFalse:  "JUMP_IF_FALSE",
	Loop:         "LOOP",
	Call:         "CALL",
	SuperInvoke:  "SUPER_INVOKE",
	Closure:      "CLOSURE",
	CloseUpvalue: "CLOSE_UPVALUE",
	Return:       "RETURN",
	Class:        "CLASS",
	Inherit:      "INHERIT",
	Method:       "METHOD",
	GetSuper:     "GET_SUPER",
}

func (op Op) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "UNKNOWN"
}
