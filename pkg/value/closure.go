package value

// ObjUpvalue is the indirection cell a closure uses to share a captured
// variable with the scope that declared it. While open, Location points at
// the live stack slot; Close copies that slot's value into Closed and
// redirects Location to point at it, so every subsequent read/write goes
// through the same field whether the upvalue is open or closed.
type ObjUpvalue struct {
	header
	Location *Value
	Closed   Value
	// NextOpen threads this upvalue onto the VM's open-upvalue list, kept
	// sorted by strictly decreasing Location address. Nil once closed.
	NextOpen *ObjUpvalue
}

// NewUpvalue creates an open upvalue pointing at a live stack slot.
func NewUpvalue(slot *Value) *ObjUpvalue {
	return &ObjUpvalue{Location: slot, Closed: Nil}
}

// IsOpen reports whether the upvalue still points into the stack.
func (u *ObjUpvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close promotes the upvalue from open to closed, freezing the current
// value of its target slot.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

func (u *ObjUpvalue) Type() ObjType { return ObjTypeUpvalue }
func (u *ObjUpvalue) String() string { return "upvalue" }
func (u *ObjUpvalue) Size() uintptr  { return 48 }

func (u *ObjUpvalue) Blacken(mark func(Obj)) {
	// Marking Closed is always safe, even while still open: IsOpen
	// upvalues have a zero Value there, and marking a nil Value is a
	// no-op.
	if u.Closed.IsObj() {
		mark(u.Closed.AsObj())
	}
}

// ObjClosure bundles a compiled function with the upvalues it captured
// from enclosing scopes.
type ObjClosure struct {
	header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

// NewClosure allocates the upvalue slice sized for fn's upvalue count; the
// slice is filled in by the caller (the VM's CLOSURE handler) once each
// upvalue has been captured or inherited.
func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
}

func (c *ObjClosure) Type() ObjType  { return ObjTypeClosure }
func (c *ObjClosure) String() string { return c.Function.String() }
func (c *ObjClosure) Size() uintptr  { return uintptr(24*len(c.Upvalues)) + 32 }

func (c *ObjClosure) Blacken(mark func(Obj)) {
	mark(c.Function)
	for _, uv := range c.Upvalues {
		if uv != nil {
			mark(uv)
		}
	}
}
