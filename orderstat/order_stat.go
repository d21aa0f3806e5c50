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

// Package orderstat provides an ordered set backed by a B-Tree whose nodes
// are augmented with subtree sizes. Besides the usual ordered-set operations
// it can select the i-th smallest element and can be split and re-joined
// around a key, which makes it suitable as the bucket of a y-fast trie.
package orderstat

import (
	"fmt"

	"github.com/ajwerner/fasttrie/internal/abstract"
	"golang.org/x/exp/constraints"
)

// Set is an ordered set of keys.
//
// Set is not safe for concurrent use.
type Set[K any] struct {
	t   abstract.Map[K, struct{}, struct{}, aug[K], *aug[K]]
	cmp func(K, K) int
}

// New constructs a Set ordered by cmp.
func New[K any](cmp func(K, K) int) *Set[K] {
	return &Set[K]{
		t:   abstract.MakeMap[K, struct{}, struct{}, aug[K], *aug[K]](struct{}{}, cmp),
		cmp: cmp,
	}
}

// NewOrdered constructs a Set ordered by the natural order of K.
func NewOrdered[K constraints.Ordered]() *Set[K] {
	return New[K](Compare[K])
}

// Compare is a comparison function for ordered types.
func Compare[K constraints.Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case a == b:
		return 0
	default:
		return 1
	}
}

// Insert adds k to the set. It returns false if k was already present.
func (s *Set[K]) Insert(k K) (inserted bool) {
	_, _, replaced := s.t.Upsert(k, struct{}{})
	return !replaced
}

// Remove removes k from the set. It returns false if k was not present.
func (s *Set[K]) Remove(k K) (removed bool) {
	_, _, removed = s.t.Delete(k)
	return removed
}

// Contains returns whether k is in the set.
func (s *Set[K]) Contains(k K) bool {
	_, ok := s.t.Get(k)
	return ok
}

// Len returns the number of keys in the set.
func (s *Set[K]) Len() int { return s.t.Len() }

// Reset removes all keys from the set.
func (s *Set[K]) Reset() { s.t.Reset() }

// FindLE returns the largest key less than or equal to k.
func (s *Set[K]) FindLE(k K) (_ K, ok bool) {
	it := s.t.MakeIter()
	it.SeekLE(k)
	return cur(&it)
}

// FindGE returns the smallest key greater than or equal to k.
func (s *Set[K]) FindGE(k K) (_ K, ok bool) {
	it := s.t.MakeIter()
	it.SeekGE(k)
	return cur(&it)
}

// Min returns the smallest key in the set.
func (s *Set[K]) Min() (_ K, ok bool) {
	it := s.t.MakeIter()
	it.First()
	return cur(&it)
}

// Max returns the largest key in the set.
func (s *Set[K]) Max() (_ K, ok bool) {
	it := s.t.MakeIter()
	it.Last()
	return cur(&it)
}

func cur[K any](it *abstract.Iterator[K, struct{}, struct{}, aug[K], *aug[K]]) (k K, ok bool) {
	if !it.Valid() {
		return k, false
	}
	return it.Key(), true
}

// Ascend calls fn for each key in ascending order until fn returns false.
func (s *Set[K]) Ascend(fn func(K) bool) {
	it := s.t.MakeIter()
	for it.First(); it.Valid(); it.Next() {
		if !fn(it.Key()) {
			return
		}
	}
}

// AscendGreaterOrEqual calls fn for each key greater than or equal to from
// in ascending order until fn returns false.
func (s *Set[K]) AscendGreaterOrEqual(from K, fn func(K) bool) {
	it := s.t.MakeIter()
	for it.SeekGE(from); it.Valid(); it.Next() {
		if !fn(it.Key()) {
			return
		}
	}
}

// Nth returns the i-th smallest key, counting from zero.
func (s *Set[K]) Nth(i int) (k K, ok bool) {
	if i < 0 || i >= s.t.Len() {
		return k, false
	}
	it := s.t.MakeIter()
	ll := abstract.LowLevel(&it)
	for !ll.IsLeaf() {
		// Walk the children of the current node, skipping whole subtrees
		// until the one containing the i-th key, or the separator key itself.
		for pos := int16(0); ; pos++ {
			ll.SetPos(pos)
			c := ll.Child().count
			if i < c {
				ll.Descend()
				break
			}
			i -= c
			if i == 0 {
				return it.Key(), true
			}
			i--
		}
	}
	ll.SetPos(int16(i))
	return it.Key(), true
}

// SplitAt removes every key greater than or equal to k from s and returns
// them in a new Set.
func (s *Set[K]) SplitAt(k K) *Set[K] {
	out := New[K](s.cmp)
	var moved []K
	s.AscendGreaterOrEqual(k, func(x K) bool {
		moved = append(moved, x)
		return true
	})
	for _, x := range moved {
		s.t.Delete(x)
		out.t.Upsert(x, struct{}{})
	}
	return out
}

// Absorb moves every key of other into s, leaving other empty. Every key of
// other must be greater than every key of s.
func (s *Set[K]) Absorb(other *Set[K]) {
	if other.Len() == 0 {
		return
	}
	if hi, ok := s.Max(); ok {
		if lo, _ := other.Min(); s.cmp(lo, hi) <= 0 {
			panic(fmt.Sprintf("orderstat: absorbed key %v does not follow %v", lo, hi))
		}
	}
	other.Ascend(func(x K) bool {
		s.t.Upsert(x, struct{}{})
		return true
	})
	other.Reset()
}

// String returns the keys of the set in order.
func (s *Set[K]) String() string {
	var keys []K
	s.Ascend(func(k K) bool {
		keys = append(keys, k)
		return true
	})
	return fmt.Sprint(keys)
}
