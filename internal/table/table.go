// Package table implements the open-addressed, linear-probing hash table
// used both as the VM's string-intern pool and as its globals namespace.
// It is a direct port of the clox Table (table.c): same growth policy,
// same tombstone convention, same two probe variants (by object identity
// for Get/Set/Delete, by content for the intern pool's FindString).
package table

import (
	"golang.org/x/exp/maps"

	"github.com/tofu-tigre/clox/internal/value"
)

const (
	initialCapacity = 8
	maxLoad         = 0.75
)

type entry struct {
	key   *value.ObjString
	value value.Value
}

// Table maps interned *value.ObjString keys to Values. A nil key with a
// nil value marks a true-empty slot; a nil key with value.Bool(true)
// marks a tombstone left behind by Delete.
type Table struct {
	count    int
	entries  []entry
	capacity int
}

func New() *Table {
	return &Table{}
}

// Set inserts or overwrites key. Returns true if key was not already live
// in the table (the slot used was truly empty or a tombstone), false if an
// existing live entry was overwritten.
func (t *Table) Set(key *value.ObjString, v value.Value) bool {
	if float64(t.count+1) > float64(t.capacity)*maxLoad {
		t.grow(growCapacity(t.capacity))
	}

	e := findEntry(t.entries, t.capacity, key)
	isNewKey := e.key == nil
	if isNewKey && e.value.IsNil() {
		t.count++
	}

	e.key = key
	e.value = v
	return isNewKey
}

// Get looks up key by pointer identity (the intern pool guarantees one
// representative per distinct string, so identity comparison is valid for
// every key actually stored here).
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if t.count == 0 {
		return value.Nil(), false
	}
	e := findEntry(t.entries, t.capacity, key)
	if e.key == nil {
		return value.Nil(), false
	}
	return e.value, true
}

// Delete leaves a tombstone in key's slot so later probes that passed
// through it on the way to a colliding key keep working.
func (t *Table) Delete(key *value.ObjString) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, t.capacity, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.Bool(true)
	return true
}

// AddAll copies every live entry of from into t. The VM does not call it;
// it is part of the table's contract alongside Set/Get/Delete.
func (t *Table) AddAll(from *Table) {
	for _, e := range from.entries {
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// FindString is table_find_string from clox: it walks the same probe
// sequence as findEntry but compares by hash/length/bytes instead of
// pointer identity, because during interning there is no existing
// *ObjString to compare against yet — only raw characters.
func (t *Table) FindString(chars string, hash uint32) *value.ObjString {
	if t.count == 0 {
		return nil
	}
	index := hash % uint32(t.capacity)
	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) % uint32(t.capacity)
	}
}

// Names returns the set of currently-live keys, used by tests that need a
// deterministic snapshot of a table's contents (iteration order over the
// entries slice is otherwise undefined, since growth reshuffles slots).
func (t *Table) Names() []string {
	seen := make(map[string]struct{}, t.count)
	for _, e := range t.entries {
		if e.key != nil {
			seen[e.key.Chars] = struct{}{}
		}
	}
	return maps.Keys(seen)
}

func (t *Table) Count() int { return t.count }

func findEntry(entries []entry, capacity int, key *value.ObjString) *entry {
	index := key.Hash % uint32(capacity)
	var tombstone *entry
	for {
		e := &entries[index]
		switch {
		case e.key == nil:
			if e.value.IsNil() {
				// Truly empty: stop here, reusing a tombstone if we
				// passed one, since the probe sequence for any key that
				// would have landed here is unaffected either way.
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) % uint32(capacity)
	}
}

func (t *Table) grow(capacity int) {
	entries := make([]entry, capacity)
	for i := range entries {
		entries[i] = entry{value: value.Nil()}
	}

	// Tombstones are dropped on rehash: they exist only to keep a probe
	// sequence alive, and growth recomputes every sequence from scratch.
	t.count = 0
	for _, e := range t.entries {
		if e.key == nil {
			continue
		}
		dest := findEntry(entries, capacity, e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}

	t.entries = entries
	t.capacity = capacity
}

func growCapacity(capacity int) int {
	if capacity < initialCapacity {
		return initialCapacity
	}
	return capacity * 2
}
