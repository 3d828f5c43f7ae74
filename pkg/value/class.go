package value

import "fmt"

// ClassMethods is the narrow table interface classes and instances need
// from the table package, expressed here to avoid value depending on
// table (table depends on value, for keys and stored Values).
type ClassMethods interface {
	Get(key *ObjString) (Value, bool)
	Set(key *ObjString, v Value) bool
	AddAll(src ClassMethods)
	MarkAll(mark func(Value))
}

// ObjClass is a runtime class: a name and a method table mapping selector
// names to closures.
type ObjClass struct {
	header
	Name    *ObjString
	Methods ClassMethods
}

func (c *ObjClass) Type() ObjType  { return ObjTypeClass }
func (c *ObjClass) String() string { return c.Name.Chars }
func (c *ObjClass) Size() uintptr  { return 64 }

func (c *ObjClass) Blacken(mark func(Obj)) {
	mark(c.Name)
	if c.Methods != nil {
		c.Methods.MarkAll(func(v Value) {
			if v.IsObj() {
				mark(v.AsObj())
			}
		})
	}
}

// ObjInstance is a runtime instance of an ObjClass, with its own field
// table distinct from the class's (shared) method table.
type ObjInstance struct {
	header
	Class  *ObjClass
	Fields ClassMethods
}

func (i *ObjInstance) Type() ObjType { return ObjTypeInstance }
func (i *ObjInstance) String() string {
	return fmt.Sprintf("%s instance", i.Class.Name.Chars)
}
func (i *ObjInstance) Size() uintptr { return 64 }

func (i *ObjInstance) Blacken(mark func(Obj)) {
	mark(i.Class)
	if i.Fields != nil {
		i.Fields.MarkAll(func(v Value) {
			if v.IsObj() {
				mark(v.AsObj())
			}
		})
	}
}

// ObjBoundMethod pairs a receiver with one of its class's closures,
// produced by a GET_PROPERTY that resolves to a method rather than a
// field.
type ObjBoundMethod struct {
	header
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) Type() ObjType  { return ObjTypeBoundMethod }
func (b *ObjBoundMethod) String() string { return b.Method.String() }
func (b *ObjBoundMethod) Size() uintptr  { return 48 }

func (b *ObjBoundMethod) Blacken(mark func(Obj)) {
	if b.Receiver.IsObj() {
		mark(b.Receiver.AsObj())
	}
	mark(b.Method)
}
