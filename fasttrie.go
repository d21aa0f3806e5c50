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

// Package fasttrie provides a y-fast trie: a dynamic predecessor index over
// fixed-width unsigned integer keys.
//
// Keys are partitioned into buckets, each an ordered set of roughly w keys
// for a w-bit universe. A bucket is named by its representative, its
// smallest possible key, and holds exactly the stored keys from that
// representative up to, but excluding, the next one. Representatives are
// kept in an x-fast trie, so a query costs O(log w) hash probes to find the
// bucket plus O(log w) comparisons inside it, while the trie only stores
// about n/w keys.
//
// The representative 0 always exists and owns the bucket at the bottom of
// the universe, which may be empty. Every other representative is itself a
// stored key.
package fasttrie

import (
	"github.com/ajwerner/fasttrie/orderstat"
	"github.com/ajwerner/fasttrie/xfast"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// Set is a set of keys of type K supporting predecessor queries.
//
// Set is not safe for concurrent use.
type Set[K constraints.Unsigned] struct {
	reps   *xfast.Trie[K, *orderstat.Set[K]]
	n      int
	width  int
	rnd    RandSource
	policy SplitPolicy
	logger *zap.Logger
}

// New returns an empty Set. It panics if the configured width is not in
// [1, bits(K)].
func New[K constraints.Unsigned](opts ...Option) *Set[K] {
	o := buildOptions(opts)
	s := &Set[K]{
		reps:   xfast.New[K, *orderstat.Set[K]](o.width),
		rnd:    o.rnd,
		policy: o.policy,
		logger: o.logger,
	}
	s.width = s.reps.Width()
	s.reset()
	return s
}

func (s *Set[K]) reset() {
	s.reps.Clear()
	s.reps.Add(0, newBucket[K]())
	s.n = 0
}

func newBucket[K constraints.Unsigned]() *orderstat.Set[K] {
	return orderstat.NewOrdered[K]()
}

// Width returns the number of key bits.
func (s *Set[K]) Width() int { return s.width }

// MaxKey returns the largest key the Set can hold.
func (s *Set[K]) MaxKey() K { return s.reps.MaxKey() }

// Len returns the number of keys stored.
func (s *Set[K]) Len() int { return s.n }

// Clear removes every key.
func (s *Set[K]) Clear() { s.reset() }

// bucket returns the bucket whose range covers x, which must lie in the
// universe, along with its representative.
func (s *Set[K]) bucket(x K) (K, *orderstat.Set[K]) {
	rep, b, ok := s.reps.Predecessor(x)
	if !ok {
		panic(errors.Errorf("fasttrie: no representative at or below %d", x))
	}
	return rep, b
}

// Add stores x. It returns false if x was already present. Add panics if x
// lies outside the universe.
func (s *Set[K]) Add(x K) bool {
	if x > s.MaxKey() {
		panic(errors.Errorf("fasttrie: key %d exceeds %d-bit universe", x, s.width))
	}
	rep, b := s.bucket(x)
	if !b.Insert(x) {
		return false
	}
	s.n++
	switch s.policy {
	case Probabilistic:
		if x != rep && s.rnd.Uint64()%uint64(s.width) == 0 {
			s.split(rep, b, x)
		}
	case Threshold:
		if b.Len() > 2*s.width {
			// The median is never the smallest key, so it lies above rep.
			at, _ := b.Nth(b.Len() / 2)
			s.split(rep, b, at)
		}
	}
	return true
}

// split moves the keys of b from at upwards into a new bucket represented
// by at.
func (s *Set[K]) split(rep K, b *orderstat.Set[K], at K) {
	nb := b.SplitAt(at)
	s.reps.Add(at, nb)
	if ce := s.logger.Check(zap.DebugLevel, "split bucket"); ce != nil {
		ce.Write(
			zap.Uint64("rep", uint64(rep)),
			zap.Uint64("at", uint64(at)),
			zap.Int("kept", b.Len()),
			zap.Int("moved", nb.Len()),
		)
	}
}

// Remove deletes x. It returns false if x was not present.
func (s *Set[K]) Remove(x K) bool {
	if x > s.MaxKey() {
		return false
	}
	rep, b := s.bucket(x)
	if !b.Remove(x) {
		return false
	}
	s.n--
	if x == rep && rep != 0 {
		s.merge(rep, b)
	}
	return true
}

// merge retires the representative rep, handing what is left of its bucket
// to the bucket below it.
func (s *Set[K]) merge(rep K, b *orderstat.Set[K]) {
	into, ib := s.bucket(rep - 1)
	moved := b.Len()
	ib.Absorb(b)
	s.reps.Remove(rep)
	if ce := s.logger.Check(zap.DebugLevel, "merge bucket"); ce != nil {
		ce.Write(
			zap.Uint64("rep", uint64(rep)),
			zap.Uint64("into", uint64(into)),
			zap.Int("moved", moved),
			zap.Int("size", ib.Len()),
		)
	}
}

// Find returns the largest stored key less than or equal to x. Keys beyond
// the universe are clamped to its maximum.
func (s *Set[K]) Find(x K) (K, bool) {
	if x > s.MaxKey() {
		x = s.MaxKey()
	}
	// A bucket other than the lowest one holds its representative, which is
	// <= x, so the answer is always in the bucket covering x.
	_, b := s.bucket(x)
	return b.FindLE(x)
}

// FindGE returns the smallest stored key greater than or equal to x.
func (s *Set[K]) FindGE(x K) (k K, ok bool) {
	if x > s.MaxKey() {
		return k, false
	}
	rep, _ := s.bucket(x)
	s.reps.AscendGreaterOrEqual(rep, func(_ K, b *orderstat.Set[K]) bool {
		k, ok = b.FindGE(x)
		return !ok
	})
	return k, ok
}

// Contains reports whether x is stored.
func (s *Set[K]) Contains(x K) bool {
	if x > s.MaxKey() {
		return false
	}
	_, b := s.bucket(x)
	return b.Contains(x)
}

// Min returns the smallest stored key.
func (s *Set[K]) Min() (K, bool) { return s.FindGE(0) }

// Max returns the largest stored key.
func (s *Set[K]) Max() (K, bool) { return s.Find(s.MaxKey()) }

// Ascend calls fn for each stored key in increasing order until fn returns
// false.
func (s *Set[K]) Ascend(fn func(K) bool) {
	more := true
	s.reps.Ascend(func(_ K, b *orderstat.Set[K]) bool {
		b.Ascend(func(k K) bool {
			more = fn(k)
			return more
		})
		return more
	})
}

// Bucket describes one bucket of a Set.
type Bucket[K constraints.Unsigned] struct {
	Rep K
	Len int
}

// Buckets returns the representative and size of every bucket in key order.
func (s *Set[K]) Buckets() []Bucket[K] {
	out := make([]Bucket[K], 0, s.reps.Len())
	s.reps.Ascend(func(rep K, b *orderstat.Set[K]) bool {
		out = append(out, Bucket[K]{Rep: rep, Len: b.Len()})
		return true
	})
	return out
}

// Check verifies the invariants of the Set: the x-fast trie of
// representatives is well formed, the representative 0 exists, every other
// representative is stored in its own bucket, and every bucket holds only
// keys between its representative and the next.
func (s *Set[K]) Check() error {
	if err := s.reps.Check(); err != nil {
		return err
	}
	if !s.reps.Contains(0) {
		return errors.New("representative 0 is missing")
	}
	var (
		n        int
		err      error
		prevMax  K
		havePrev bool
	)
	s.reps.Ascend(func(rep K, b *orderstat.Set[K]) bool {
		n += b.Len()
		if rep != 0 && !b.Contains(rep) {
			err = errors.Errorf("representative %d is not in its bucket", rep)
			return false
		}
		if lo, ok := b.Min(); ok && lo < rep {
			err = errors.Errorf("bucket %d holds smaller key %d", rep, lo)
			return false
		}
		if havePrev && prevMax >= rep {
			err = errors.Errorf("bucket below %d holds key %d", rep, prevMax)
			return false
		}
		prevMax, havePrev = b.Max()
		return true
	})
	if err != nil {
		return err
	}
	if n != s.n {
		return errors.Errorf("buckets hold %d keys, expected %d", n, s.n)
	}
	return nil
}
