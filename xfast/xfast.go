// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package xfast implements an x-fast trie: a binary trie over fixed-width
// unsigned keys whose nodes are additionally indexed by depth and prefix,
// so that the deepest node on the path of a key is found with a binary
// search over depths in O(log w) hash probes.
package xfast

import (
	"math/bits"

	"github.com/ajwerner/fasttrie/internal/levelindex"
	"github.com/ajwerner/fasttrie/internal/trie"
	"github.com/pingcap/errors"
	"golang.org/x/exp/constraints"
)

// Trie maps keys of type K to values of type V and answers predecessor and
// successor queries.
//
// Trie is not safe for concurrent use.
type Trie[K constraints.Unsigned, V any] struct {
	g     *trie.Graph[V]
	idx   index
	width int
	max   uint64
}

// index keeps the level tables in lockstep with the graph.
type index struct {
	*levelindex.Index[trie.Ref]
}

func (x index) NodeCreated(depth int, prefix uint64, ref trie.Ref) {
	x.Insert(depth, prefix, ref)
}

func (x index) NodeDeleted(depth int, prefix uint64) {
	x.Delete(depth, prefix)
}

// Bits returns the bit width of K.
func Bits[K constraints.Unsigned]() int {
	return bits.Len64(uint64(^K(0)))
}

// New returns an empty Trie over width-bit keys. A width of zero selects the
// full width of K. New panics if width is negative or wider than K.
func New[K constraints.Unsigned, V any](width int) *Trie[K, V] {
	kb := Bits[K]()
	if width == 0 {
		width = kb
	}
	if width < 1 || width > kb {
		panic(errors.Errorf("xfast: width %d out of range [1, %d]", width, kb))
	}
	return &Trie[K, V]{
		g:     trie.New[V](width),
		idx:   index{levelindex.New[trie.Ref](width)},
		width: width,
		max:   ^uint64(0) >> uint(64-width),
	}
}

// Width returns the number of key bits.
func (t *Trie[K, V]) Width() int { return t.width }

// MaxKey returns the largest key in the universe of t.
func (t *Trie[K, V]) MaxKey() K { return K(t.max) }

// Len returns the number of keys stored.
func (t *Trie[K, V]) Len() int { return t.g.Len() }

// Clear removes every key.
func (t *Trie[K, V]) Clear() {
	t.g.Reset()
	t.idx.Reset()
}

// locate finds the deepest node on the path of x by binary search over
// depths. The root, at depth zero, always exists; depth width+1 never does.
func (t *Trie[K, V]) locate(x uint64) (trie.Ref, int) {
	u, lo, hi := trie.Root, 0, t.width+1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if ref, ok := t.idx.Lookup(mid, x>>uint(t.width-mid)); ok {
			u, lo = ref, mid
		} else {
			hi = mid
		}
	}
	return u, lo
}

func (t *Trie[K, V]) inUniverse(x uint64) bool { return x <= t.max }

// Add stores k with value v. It returns false, leaving the stored value
// untouched, if k is already present. Add panics if k lies outside the
// universe of t.
func (t *Trie[K, V]) Add(k K, v V) bool {
	x := uint64(k)
	if !t.inUniverse(x) {
		panic(errors.Errorf("xfast: key %d exceeds %d-bit universe", x, t.width))
	}
	u, d := t.locate(x)
	if d == t.width {
		return false
	}
	t.g.Insert(x, v, u, d, t.idx)
	return true
}

// Set stores k with value v, replacing any existing value. It returns true
// if k was not already present.
func (t *Trie[K, V]) Set(k K, v V) bool {
	if l, ok := t.leaf(k); ok {
		t.g.SetValue(l, v)
		return false
	}
	return t.Add(k, v)
}

// Remove deletes k and returns its value.
func (t *Trie[K, V]) Remove(k K) (v V, ok bool) {
	l, ok := t.leaf(k)
	if !ok {
		return v, false
	}
	return t.g.Delete(l, t.idx), true
}

func (t *Trie[K, V]) leaf(k K) (trie.Ref, bool) {
	x := uint64(k)
	if !t.inUniverse(x) {
		return trie.Nil, false
	}
	return t.idx.Lookup(t.width, x)
}

// Get returns the value stored for k.
func (t *Trie[K, V]) Get(k K) (v V, ok bool) {
	l, ok := t.leaf(k)
	if !ok {
		return v, false
	}
	return t.g.Value(l), true
}

// Contains reports whether k is stored.
func (t *Trie[K, V]) Contains(k K) bool {
	_, ok := t.leaf(k)
	return ok
}

func (t *Trie[K, V]) entry(l trie.Ref) (k K, v V, ok bool) {
	if l == trie.Nil {
		return k, v, false
	}
	return K(t.g.Key(l)), t.g.Value(l), true
}

// Predecessor returns the largest stored key <= k and its value. Keys beyond
// the universe are clamped to its maximum.
func (t *Trie[K, V]) Predecessor(k K) (K, V, bool) {
	x := uint64(k)
	if !t.inUniverse(x) {
		x = t.max
	}
	u, d := t.locate(x)
	return t.entry(t.g.Floor(u, d, x))
}

// Successor returns the smallest stored key >= k and its value.
func (t *Trie[K, V]) Successor(k K) (key K, v V, ok bool) {
	x := uint64(k)
	if !t.inUniverse(x) {
		return key, v, false
	}
	u, d := t.locate(x)
	return t.entry(t.g.Ceil(u, d, x))
}

// Min returns the smallest stored key.
func (t *Trie[K, V]) Min() (K, V, bool) { return t.entry(t.g.First()) }

// Max returns the largest stored key.
func (t *Trie[K, V]) Max() (K, V, bool) { return t.entry(t.g.Last()) }

// Ascend calls fn for each key in increasing order until fn returns false.
func (t *Trie[K, V]) Ascend(fn func(k K, v V) bool) {
	for l := t.g.First(); l != trie.Nil; l = t.g.Next(l) {
		if !fn(K(t.g.Key(l)), t.g.Value(l)) {
			return
		}
	}
}

// AscendGreaterOrEqual calls fn for each key >= pivot in increasing order
// until fn returns false.
func (t *Trie[K, V]) AscendGreaterOrEqual(pivot K, fn func(k K, v V) bool) {
	x := uint64(pivot)
	if !t.inUniverse(x) {
		return
	}
	u, d := t.locate(x)
	for l := t.g.Ceil(u, d, x); l != trie.Nil; l = t.g.Next(l) {
		if !fn(K(t.g.Key(l)), t.g.Value(l)) {
			return
		}
	}
}

// Check verifies the invariants of the node graph and that the level index
// holds exactly the nodes of the graph.
func (t *Trie[K, V]) Check() error {
	if err := t.g.Check(); err != nil {
		return err
	}
	var n int
	var err error
	t.g.Visit(func(depth int, prefix uint64, ref trie.Ref) {
		n++
		if err != nil {
			return
		}
		got, ok := t.idx.Lookup(depth, prefix)
		if !ok {
			err = errors.Errorf("node %d at depth %d prefix %#x missing from index", ref, depth, prefix)
		} else if got != ref {
			err = errors.Errorf("index maps depth %d prefix %#x to %d, graph holds %d", depth, prefix, got, ref)
		}
	})
	if err != nil {
		return err
	}
	if got := t.idx.Len(); got != n {
		return errors.Errorf("index holds %d entries, graph has %d nodes", got, n)
	}
	return nil
}
