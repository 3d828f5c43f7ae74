package value

import "fmt"

// ObjFunction is a compiled, not-yet-closed-over function: its chunk, how
// many parameters it expects, and how many upvalues its closures need to
// capture. The top-level script is represented as a nameless, arity-zero
// ObjFunction.
type ObjFunction struct {
	header
	Name         *ObjString
	Arity        int
	UpvalueCount int
	Chunk        Chunk
}

func (f *ObjFunction) Type() ObjType { return ObjTypeFunction }

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

func (f *ObjFunction) Size() uintptr { return 96 }

func (f *ObjFunction) Blacken(mark func(Obj)) {
	if f.Name != nil {
		mark(f.Name)
	}
	for _, c := range f.Chunk.Constants {
		if c.IsObj() {
			mark(c.AsObj())
		}
	}
}

// NativeFn is the native-function calling convention: it receives the
// already-evaluated arguments and returns either a result or an error, so
// a misuse of a native function surfaces as an ordinary runtime error
// instead of propagating a bogus value.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a Go function exposed to language code under the
// native-function ABI.
type ObjNative struct {
	header
	Name *ObjString
	Fn   NativeFn
}

func (n *ObjNative) Type() ObjType { return ObjTypeNative }

func (n *ObjNative) String() string {
	if n.Name == nil {
		return "<native fn>"
	}
	return fmt.Sprintf("<native fn %s>", n.Name.Chars)
}

func (n *ObjNative) Size() uintptr     { return 48 }
func (n *ObjNative) Blacken(func(Obj)) {}
