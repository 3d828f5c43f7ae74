package value

// ObjString is an immutable, interned byte string. The table package
// guarantees that at most one ObjString exists for any given byte content,
// which is what lets the VM treat string equality as pointer equality.
type ObjString struct {
	header
	Chars string
	Hash  uint32
}

// HashString computes the FNV-1a 32-bit hash used for string interning and
// table lookups.
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// NewString constructs an unlinked ObjString. Callers allocate through the
// heap package, which interns and tracks the result; this constructor only
// exists so that package can build the object without importing itself
// back into value.
func NewString(chars string) *ObjString {
	return &ObjString{Chars: chars, Hash: HashString(chars)}
}

func (s *ObjString) Type() ObjType        { return ObjTypeString }
func (s *ObjString) String() string       { return s.Chars }
func (s *ObjString) Size() uintptr        { return uintptr(len(s.Chars)) + 32 }
func (s *ObjString) Blacken(func(Obj))    {}
