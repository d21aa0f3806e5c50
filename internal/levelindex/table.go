// Package levelindex implements the per-depth prefix tables of an x-fast
// trie. Each Table is an open-addressed hash table with linear probing that
// maps a bit prefix to a value; an Index holds one Table per trie depth.
package levelindex

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

type slotState uint8

const (
	empty slotState = iota
	full
	deleted
)

const minCapacity = 8

type slot[V any] struct {
	prefix uint64
	value  V
	state  slotState
}

// Table maps uint64 prefixes to values.
//
// Table is not safe for concurrent use.
type Table[V any] struct {
	slots []slot[V]
	live  int // full slots
	used  int // full and deleted slots
}

func hash(prefix uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], prefix)
	return xxhash.Sum64(buf[:])
}

// Len returns the number of prefixes stored in the table.
func (t *Table[V]) Len() int { return t.live }

// Reset removes every entry and releases the slot array.
func (t *Table[V]) Reset() {
	t.slots = nil
	t.live, t.used = 0, 0
}

// Lookup returns the value stored under prefix.
func (t *Table[V]) Lookup(prefix uint64) (v V, ok bool) {
	if t.live == 0 {
		return v, false
	}
	mask := uint64(len(t.slots) - 1)
	for i := hash(prefix) & mask; ; i = (i + 1) & mask {
		s := &t.slots[i]
		switch {
		case s.state == empty:
			return v, false
		case s.state == full && s.prefix == prefix:
			return s.value, true
		}
	}
}

// Insert stores v under prefix, replacing any previous value. It returns
// true if the prefix was not previously present.
func (t *Table[V]) Insert(prefix uint64, v V) (added bool) {
	if 2*(t.used+1) > len(t.slots) {
		t.resize(t.live + 1)
	}
	mask := uint64(len(t.slots) - 1)
	tomb := -1
	for i := hash(prefix) & mask; ; i = (i + 1) & mask {
		s := &t.slots[i]
		switch s.state {
		case empty:
			if tomb >= 0 {
				s = &t.slots[tomb]
			} else {
				t.used++
			}
			*s = slot[V]{prefix: prefix, value: v, state: full}
			t.live++
			return true
		case deleted:
			if tomb < 0 {
				tomb = int(i)
			}
		case full:
			if s.prefix == prefix {
				s.value = v
				return false
			}
		}
	}
}

// Delete removes prefix from the table. It returns false if the prefix was
// not present.
func (t *Table[V]) Delete(prefix uint64) (removed bool) {
	if t.live == 0 {
		return false
	}
	mask := uint64(len(t.slots) - 1)
	for i := hash(prefix) & mask; ; i = (i + 1) & mask {
		s := &t.slots[i]
		switch {
		case s.state == empty:
			return false
		case s.state == full && s.prefix == prefix:
			*s = slot[V]{state: deleted}
			t.live--
			if 8*t.live < len(t.slots) && len(t.slots) > minCapacity {
				t.resize(t.live)
			}
			return true
		}
	}
}

// resize rebuilds the table with the smallest power of two capacity that is
// at least three times n, dropping tombstones.
func (t *Table[V]) resize(n int) {
	capacity := minCapacity
	for capacity < 3*n {
		capacity <<= 1
	}
	old := t.slots
	t.slots = make([]slot[V], capacity)
	t.used = t.live
	mask := uint64(capacity - 1)
	for i := range old {
		if old[i].state != full {
			continue
		}
		j := hash(old[i].prefix) & mask
		for t.slots[j].state != empty {
			j = (j + 1) & mask
		}
		t.slots[j] = old[i]
	}
}
