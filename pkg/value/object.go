package value

// ObjType tags the concrete kind of a heap object, mostly for debugging and
// for the disassembler's constant-pool dump.
type ObjType int

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
	ObjTypeUpvalue
	ObjTypeClosure
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
)

func (t ObjType) String() string {
	switch t {
	case ObjTypeString:
		return "string"
	case ObjTypeFunction:
		return "function"
	case ObjTypeNative:
		return "native"
	case ObjTypeUpvalue:
		return "upvalue"
	case ObjTypeClosure:
		return "closure"
	case ObjTypeClass:
		return "class"
	case ObjTypeInstance:
		return "instance"
	case ObjTypeBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}

// Obj is implemented by every heap-allocated runtime object. Every
// allocation is linked into the VM's object list (via next/setNext) and
// carries the tri-color mark bit the garbage collector needs; this is the
// idiomatic-Go stand-in for the `Obj obj;` header struct that every heap
// object embeds first in the C implementation this design is modeled on.
type Obj interface {
	Type() ObjType
	String() string

	// Size reports an approximate number of bytes charged against the
	// heap's allocation counter when this object is created. It need not
	// be exact; it only has to be consistent enough to make the
	// GC-trigger threshold meaningful.
	Size() uintptr

	// Blacken visits every Value and Obj this object directly references,
	// invoking mark for each. It is called once per collection cycle,
	// after the object itself has already turned black.
	Blacken(mark func(Obj))

	// IsMarked, SetMarked, Next and SetNext are bookkeeping hooks for the
	// heap package's allocator and collector. They are exported only
	// because Go requires interface methods invoked from another package
	// to be exported; language-level code never calls them.
	IsMarked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
}

// header is embedded by every concrete Obj implementation. It supplies the
// GC mark bit and the intrusive singly-linked list pointer that lets the
// heap walk every live allocation during sweep without a second registry.
type header struct {
	marked  bool
	nextObj Obj
}

func (h *header) IsMarked() bool   { return h.marked }
func (h *header) SetMarked(m bool) { h.marked = m }
func (h *header) Next() Obj        { return h.nextObj }
func (h *header) SetNext(o Obj)    { h.nextObj = o }
