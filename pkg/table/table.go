// Package table implements the open-addressed, linear-probing hash table
// used throughout the runtime: the VM's globals, every class's method
// table, every instance's field table, and -- wearing a second hat -- the
// string interner. All of them are keyed by *value.ObjString, which is why
// a single implementation serves all four.
package table

import "github.com/kristofer/lumen/pkg/value"

const (
	initialCapacity = 8
	maxLoadFactor   = 0.75
)

// entry is one slot of the table's backing array. A slot with a nil Key
// and a Nil Value is truly empty. A slot with a nil Key and a BOOL(true)
// Value is a tombstone: it counts toward the load factor but not toward
// Count, and probing treats it as occupied (skip over it) while insertion
// treats it as available (reuse it).
type entry struct {
	Key   *value.ObjString
	Value value.Value
}

func (e entry) isEmpty() bool     { return e.Key == nil && e.Value.IsNil() }
func (e entry) isTombstone() bool { return e.Key == nil && !e.Value.IsNil() }

var tombstone = value.Bool(true)

// Table is an open-addressed map from interned strings to Values.
type Table struct {
	count   int // live entries plus tombstones; drives the load factor
	entries []entry
}

// New returns an empty table. The backing array is allocated lazily on
// first insert rather than up front.
func New() *Table { return &Table{} }

// Count returns the number of live (non-tombstone) entries.
func (t *Table) Count() int {
	n := 0
	for _, e := range t.entries {
		if e.Key != nil {
			n++
		}
	}
	return n
}

// Get looks up key, returning its value and true if present.
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	e := t.findEntry(t.entries, key)
	if e.Key == nil {
		return value.Nil, false
	}
	return e.Value, true
}

// Set stores v under key, growing the table first if the load factor would
// be exceeded. It reports whether key was not already present.
func (t *Table) Set(key *value.ObjString, v value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.grow()
	}

	idx := t.findEntryIndex(t.entries, key)
	e := &t.entries[idx]
	isNew := e.Key == nil
	if isNew && e.Value.IsNil() {
		t.count++
	}
	e.Key = key
	e.Value = v
	return isNew
}

// Delete removes key, leaving a tombstone behind so that probe chains past
// it remain intact.
func (t *Table) Delete(key *value.ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findEntryIndex(t.entries, key)
	e := &t.entries[idx]
	if e.Key == nil {
		return false
	}
	e.Key = nil
	e.Value = tombstone
	return true
}

// AddAll copies every entry of src into t, used to implement INHERIT:
// a subclass starts with a copy of its superclass's method table.
func (t *Table) AddAll(src value.ClassMethods) {
	other, ok := src.(*Table)
	if !ok {
		return
	}
	for _, e := range other.entries {
		if e.Key != nil {
			t.Set(e.Key, e.Value)
		}
	}
}

// FindString looks for an interned string with the given content without
// allocating a temporary ObjString: the table compares by length, hash,
// and byte content directly against the probed slot's key.
func (t *Table) FindString(chars string, hash uint32) *value.ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	idx := hash & mask
	for {
		e := &t.entries[idx]
		if e.isEmpty() {
			return nil
		}
		if e.Key != nil && len(e.Key.Chars) == len(chars) && e.Key.Hash == hash && e.Key.Chars == chars {
			return e.Key
		}
		idx = (idx + 1) & mask
	}
}

// RemoveWhite purges every entry whose key has not been marked by the
// current GC cycle. Used by the interner so that a string which became
// unreachable does not keep the table pinning a dangling reference past
// sweep.
func (t *Table) RemoveWhite(isMarked func(*value.ObjString) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key != nil && !isMarked(e.Key) {
			e.Key = nil
			e.Value = tombstone
		}
	}
}

// MarkAll invokes mark for every live key and value, used by the
// collector when a table (globals, a class's methods, an instance's
// fields) is itself a GC root or reachable object.
func (t *Table) MarkAll(mark func(value.Value)) {
	for _, e := range t.entries {
		if e.Key != nil {
			mark(value.FromObj(e.Key))
			mark(e.Value)
		}
	}
}

// Keys returns every live key, in table order.
func (t *Table) Keys() []*value.ObjString {
	keys := make([]*value.ObjString, 0, t.count)
	for _, e := range t.entries {
		if e.Key != nil {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func (t *Table) grow() {
	newCap := initialCapacity
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	newEntries := make([]entry, newCap)

	t.count = 0
	for _, e := range t.entries {
		if e.Key == nil {
			continue
		}
		idx := t.findEntryIndex(newEntries, e.Key)
		newEntries[idx] = e
		t.count++
	}
	t.entries = newEntries
}

// findEntryIndex walks the probe sequence for key starting at hash%cap,
// returning the index of the matching entry, or -- if absent -- the first
// tombstone seen (so re-inserting reuses it) or the first truly empty slot.
func (t *Table) findEntryIndex(entries []entry, key *value.ObjString) int {
	mask := uint32(len(entries) - 1)
	idx := key.Hash & mask
	var tombstoneIdx = -1
	for {
		e := &entries[idx]
		switch {
		case e.isEmpty():
			if tombstoneIdx != -1 {
				return tombstoneIdx
			}
			return int(idx)
		case e.isTombstone():
			if tombstoneIdx == -1 {
				tombstoneIdx = int(idx)
			}
		case e.Key == key:
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

func (t *Table) findEntry(entries []entry, key *value.ObjString) entry {
	return entries[t.findEntryIndex(entries, key)]
}
