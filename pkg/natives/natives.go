// Package natives holds the runtime's built-in native functions and the
// registry the VM drains into its globals table at startup. Registration
// is purely by name, matching the contract the language defines for
// natives: the VM does not know or care how a native is implemented, only
// that calling it by its registered name yields a Value or an error.
package natives

import (
	"time"

	"github.com/dolthub/swiss"
	"github.com/kristofer/lumen/pkg/heap"
	"github.com/kristofer/lumen/pkg/value"
)

// Registry collects natives before they are installed into a VM's globals.
// It is backed by swiss.Map rather than the hand-rolled table package:
// unlike globals or class method tables, this registry never participates
// in the tombstone or load-factor semantics those need, so there is no
// reason to hand-roll open addressing here too.
type Registry struct {
	fns *swiss.Map[string, value.NativeFn]
}

// NewRegistry returns a registry pre-populated with the standard natives:
// currently just clock, the only native the language guarantees exists.
func NewRegistry() *Registry {
	r := &Registry{fns: swiss.NewMap[string, value.NativeFn](8)}
	for _, n := range standard() {
		r.fns.Put(n.name, n.fn)
	}
	return r
}

type named struct {
	name string
	fn   value.NativeFn
}

// Globals is the narrow slice of table.Table the registry needs to
// install natives, expressed as an interface so this package does not
// have to import table directly.
type Globals interface {
	Set(key *value.ObjString, v value.Value) bool
}

// Install allocates an ObjNative for every registered function and
// defines it in globals under its registered name.
func (r *Registry) Install(h *heap.Heap, globals Globals) {
	r.fns.Iter(func(name string, fn value.NativeFn) bool {
		nameStr := h.InternString(name)
		native := h.NewNative(nameStr, fn)
		globals.Set(nameStr, value.FromObj(native))
		return false
	})
}

// start is the process epoch clock measures against. It is a package
// variable, not a constant, precisely so that clock() reports elapsed
// time since the runtime came up rather than since the Unix epoch.
var start = time.Now()

func standard() []named {
	return []named{
		{"clock", clock},
	}
}

// clock returns the number of seconds elapsed since the runtime started,
// as a double. It never errors; the error return exists only because
// every native shares the same signature.
func clock(args []value.Value) (value.Value, error) {
	return value.Number(time.Since(start).Seconds()), nil
}
