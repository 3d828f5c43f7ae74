// Package heap implements the runtime's allocator and incremental
// mark-sweep garbage collector. Every heap object in the system -- every
// string, function, closure, class, instance and bound method -- is born
// here, linked into an intrusive object list, and reclaimed here once a
// collection finds it unreachable.
//
// Go already garbage collects the memory a *value.ObjString or *ObjClosure
// occupies; nothing in this package can, or needs to, call free() the way
// the system it is modeled on does. What this package reproduces instead
// is the tracing discipline itself -- tri-color marking from an explicit
// root set, a gray worklist, and a sweep that purges the string interner's
// dead entries before anything else touches them -- so that the
// mark-sweep algorithm, its GC-pressure heuristic, and its interaction
// with the interner remain observable and testable independent of Go's
// own collector.
package heap

import (
	"github.com/kristofer/lumen/pkg/table"
	"github.com/kristofer/lumen/pkg/value"
)

const growFactor = 2

// defaultNextGC is the initial byte threshold before the first collection
// can trigger; after each collection the threshold is recomputed from the
// bytes still allocated.
const defaultNextGC = 1 << 20

// RootMarker is implemented by anything that can hold live references into
// the heap: the VM (its value stack, call frames, open upvalues, globals)
// and, only while a compile is in flight, the compiler (its chain of
// in-progress function objects). The heap asks every registered marker to
// report its roots at the start of each collection.
type RootMarker interface {
	MarkRoots(mark func(value.Obj))
}

// Heap owns the object list, the allocation byte counter, and the string
// interner. A Heap is not global state: every VM instance owns its own,
// which is what lets tests spin up independent interpreters.
type Heap struct {
	head  value.Obj
	count int

	bytesAllocated uint64
	nextGC         uint64

	Strings *table.Table

	gray    []value.Obj
	markers []RootMarker
	temp    []value.Obj

	// Stress, when true, forces a collection on every single allocation, a
	// mode useful for flushing out missing roots. Trace, when true, logs
	// each collection's before/after byte counts.
	Stress bool
	Trace  bool
	Log    func(format string, args ...any)
}

// New returns an empty heap ready to track allocations.
func New() *Heap {
	return &Heap{
		Strings: table.New(),
		nextGC:  defaultNextGC,
	}
}

// AddRootMarker registers a marker whose roots are included in every
// subsequent collection, until removed. The VM registers itself once, for
// its entire lifetime; the compiler registers itself only for the
// duration of a single Compile call.
func (h *Heap) AddRootMarker(m RootMarker) {
	h.markers = append(h.markers, m)
}

// RemoveRootMarker undoes AddRootMarker. It removes the most recent
// registration matching m, which is all the compiler ever needs since
// nested compiles are not reentrant on the same heap.
func (h *Heap) RemoveRootMarker(m RootMarker) {
	for i := len(h.markers) - 1; i >= 0; i-- {
		if h.markers[i] == m {
			h.markers = append(h.markers[:i], h.markers[i+1:]...)
			return
		}
	}
}

// BytesAllocated reports the current allocation counter, exposed mainly
// for tests asserting on GC trigger behavior.
func (h *Heap) BytesAllocated() uint64 { return h.bytesAllocated }

// NextGC reports the byte threshold that will trigger the next cycle.
func (h *Heap) NextGC() uint64 { return h.nextGC }

// Count returns how many live objects the heap is currently tracking.
func (h *Heap) Count() int { return h.count }

// Track links a freshly constructed object into the heap's object list and
// charges its size against the allocation counter, possibly triggering a
// collection before returning. Every allocator function in this package
// funnels through Track exactly once, after the object is fully built, so
// a mid-construction GC can never observe a half-initialized object that
// nothing else references yet.
func (h *Heap) Track(obj value.Obj) {
	obj.SetNext(h.head)
	h.head = obj
	h.count++
	h.bytesAllocated += uint64(obj.Size())

	if h.Stress || h.bytesAllocated > h.nextGC {
		h.Collect()
	}
}

// NewString allocates and tracks a brand new, non-interned string object.
// Most callers want InternString instead.
func (h *Heap) NewString(chars string) *value.ObjString {
	s := value.NewString(chars)
	h.Track(s)
	return s
}

// InternString returns the unique ObjString for chars, allocating and
// tracking a new one only if the interner does not already hold it.
func (h *Heap) InternString(chars string) *value.ObjString {
	hash := value.HashString(chars)
	if existing := h.Strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := value.NewString(chars)
	// Track can itself trigger a Collect (Stress mode, or crossing the
	// threshold), and at that point s is linked into the object list but
	// reachable from no root and not yet in the interner: pushTemp holds
	// it live across that window, the same way clox pushes the string
	// onto the VM stack before tableSet and pops it after.
	h.pushTemp(s)
	h.Track(s)
	h.Strings.Set(s, value.Nil)
	h.popTemp()
	return s
}

// pushTemp roots obj for the duration of an allocation sequence that must
// survive an internal Collect before the caller has linked it into a
// permanent root.
func (h *Heap) pushTemp(obj value.Obj) { h.temp = append(h.temp, obj) }

// popTemp releases the most recently pushed temporary root.
func (h *Heap) popTemp() { h.temp = h.temp[:len(h.temp)-1] }

// NewFunction allocates a fresh, empty ObjFunction and tracks it.
func (h *Heap) NewFunction() *value.ObjFunction {
	fn := &value.ObjFunction{}
	h.Track(fn)
	return fn
}

// NewNative allocates and tracks a native function wrapper.
func (h *Heap) NewNative(name *value.ObjString, fn value.NativeFn) *value.ObjNative {
	n := &value.ObjNative{Name: name, Fn: fn}
	h.Track(n)
	return n
}

// NewUpvalue allocates and tracks an open upvalue over slot.
func (h *Heap) NewUpvalue(slot *value.Value) *value.ObjUpvalue {
	uv := value.NewUpvalue(slot)
	h.Track(uv)
	return uv
}

// NewClosure allocates and tracks a closure over fn. The caller is
// expected to populate Upvalues before the closure becomes reachable from
// anywhere the GC can see (i.e. before pushing it on the value stack).
func (h *Heap) NewClosure(fn *value.ObjFunction) *value.ObjClosure {
	c := value.NewClosure(fn)
	h.Track(c)
	return c
}

// NewClass allocates and tracks a class with an empty method table.
func (h *Heap) NewClass(name *value.ObjString) *value.ObjClass {
	c := &value.ObjClass{Name: name, Methods: table.New()}
	h.Track(c)
	return c
}

// NewInstance allocates and tracks an instance of class with an empty
// field table.
func (h *Heap) NewInstance(class *value.ObjClass) *value.ObjInstance {
	i := &value.ObjInstance{Class: class, Fields: table.New()}
	h.Track(i)
	return i
}

// NewBoundMethod allocates and tracks a bound method value.
func (h *Heap) NewBoundMethod(receiver value.Value, method *value.ObjClosure) *value.ObjBoundMethod {
	b := &value.ObjBoundMethod{Receiver: receiver, Method: method}
	h.Track(b)
	return b
}

// Collect runs one full mark-sweep cycle: mark every root reachable
// object, blacken the gray worklist to completion, purge dead interner
// entries, then sweep the object list and set the trigger threshold to
// twice the bytes that survived.
func (h *Heap) Collect() {
	before := h.bytesAllocated
	if h.Trace && h.Log != nil {
		h.Log("-- gc begin")
	}

	h.markRoots()
	h.traceReferences()
	h.Strings.RemoveWhite(func(s *value.ObjString) bool { return s.IsMarked() })
	h.sweep()

	h.nextGC = h.bytesAllocated * growFactor

	if h.Trace && h.Log != nil {
		h.Log("-- gc end: collected %d bytes (%d -> %d), next at %d",
			before-h.bytesAllocated, before, h.bytesAllocated, h.nextGC)
	}
}

func (h *Heap) markRoots() {
	mark := h.markObject
	for _, obj := range h.temp {
		mark(obj)
	}
	for _, m := range h.markers {
		m.MarkRoots(mark)
	}
}

// markObject grays obj if it was white, pushing it onto the worklist for
// later blackening. It is the single entry point every root and every
// Blacken call uses to mark a reference.
func (h *Heap) markObject(obj value.Obj) {
	if obj == nil || obj.IsMarked() {
		return
	}
	obj.SetMarked(true)
	h.gray = append(h.gray, obj)
}

// MarkValue is the Value-shaped counterpart of markObject, used by callers
// (such as table.MarkAll) that hold Values rather than bare Objs.
func (h *Heap) MarkValue(v value.Value) {
	if v.IsObj() {
		h.markObject(v.AsObj())
	}
}

func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		obj := h.gray[n]
		h.gray = h.gray[:n]
		obj.Blacken(h.markObject)
	}
}

func (h *Heap) sweep() {
	var prev value.Obj
	obj := h.head
	for obj != nil {
		if obj.IsMarked() {
			obj.SetMarked(false)
			prev = obj
			obj = obj.Next()
			continue
		}

		unreached := obj
		obj = obj.Next()
		if prev == nil {
			h.head = obj
		} else {
			prev.SetNext(obj)
		}
		h.bytesAllocated -= uint64(unreached.Size())
		h.count--
	}
}
