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

package fasttrie

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fixedSource always yields v.
type fixedSource struct{ v uint64 }

func (f *fixedSource) Uint64() uint64 { return f.v }

var (
	neverSplit  = &fixedSource{v: 1}
	alwaysSplit = &fixedSource{v: 0}
)

func requireFind(t *testing.T, s *Set[uint8], x uint8, want uint8, wantOK bool) {
	t.Helper()
	got, ok := s.Find(x)
	require.Equal(t, wantOK, ok, "find(%d)", x)
	if wantOK {
		require.Equal(t, want, got, "find(%d)", x)
	}
}

func TestScenarioFind(t *testing.T) {
	s := New[uint8]()
	require.Equal(t, 8, s.Width())
	require.True(t, s.Add(5))
	require.True(t, s.Add(130))
	require.True(t, s.Add(7))
	requireFind(t, s, 6, 5, true)
	requireFind(t, s, 200, 130, true)
	requireFind(t, s, 4, 0, false)
	require.Equal(t, 3, s.Len())
	require.NoError(t, s.Check())
}

func TestScenarioAddRemove(t *testing.T) {
	s := New[uint8]()
	require.True(t, s.Add(10))
	require.True(t, s.Remove(10))
	requireFind(t, s, 10, 0, false)
	require.Equal(t, 0, s.Len())
	require.NoError(t, s.Check())
}

func TestScenarioSplitAndMerge(t *testing.T) {
	src := &fixedSource{v: neverSplit.v}
	s := New[uint8](WithRandSource(src))
	var keys []uint8
	for k := uint8(10); k <= 50; k += 5 {
		require.True(t, s.Add(k))
		keys = append(keys, k)
	}
	require.Equal(t, []Bucket[uint8]{{Rep: 0, Len: 9}}, s.Buckets())

	before := map[uint8]uint8{}
	for x := 0; x < 256; x++ {
		if k, ok := s.Find(uint8(x)); ok {
			before[uint8(x)] = k
		}
	}

	src.v = alwaysSplit.v
	require.True(t, s.Add(33))
	require.NoError(t, s.Check())
	require.Equal(t, []Bucket[uint8]{{Rep: 0, Len: 5}, {Rep: 33, Len: 5}}, s.Buckets())
	for _, k := range keys {
		requireFind(t, s, k, k, true)
	}
	for x := 0; x < 256; x++ {
		want, ok := before[uint8(x)]
		if x >= 33 && x < 35 {
			want, ok = 33, true
		}
		requireFind(t, s, uint8(x), want, ok)
	}

	// Removing the representative hands its bucket to the bucket below.
	require.True(t, s.Remove(33))
	require.NoError(t, s.Check())
	require.Equal(t, []Bucket[uint8]{{Rep: 0, Len: 9}}, s.Buckets())
	requireFind(t, s, 36, 35, true)
	requireFind(t, s, 33, 30, true)
	requireFind(t, s, 255, 50, true)
	for x := 0; x < 256; x++ {
		want, ok := before[uint8(x)]
		requireFind(t, s, uint8(x), want, ok)
	}
}

func TestMergeIntoLowerRepresentative(t *testing.T) {
	s := New[uint16](WithRandSource(alwaysSplit), WithWidth(10))
	for _, k := range []uint16{100, 200, 300} {
		require.True(t, s.Add(k))
	}
	require.Equal(t, []Bucket[uint16]{{0, 0}, {100, 1}, {200, 1}, {300, 1}}, s.Buckets())

	s.rnd = neverSplit
	require.True(t, s.Add(250))
	require.True(t, s.Add(220))
	require.Equal(t, []Bucket[uint16]{{0, 0}, {100, 1}, {200, 3}, {300, 1}}, s.Buckets())

	require.True(t, s.Remove(200))
	require.NoError(t, s.Check())
	require.Equal(t, []Bucket[uint16]{{0, 0}, {100, 3}, {300, 1}}, s.Buckets())
	k, ok := s.Find(299)
	require.True(t, ok)
	require.Equal(t, uint16(250), k)
	k, ok = s.Find(219)
	require.True(t, ok)
	require.Equal(t, uint16(100), k)
}

func TestDuplicateAndMissing(t *testing.T) {
	s := New[uint32](WithWidth(16))
	require.True(t, s.Add(42))
	require.False(t, s.Add(42))
	require.Equal(t, 1, s.Len())
	require.False(t, s.Remove(41))
	require.True(t, s.Remove(42))
	require.False(t, s.Remove(42))
	require.Equal(t, 0, s.Len())
	require.NoError(t, s.Check())
}

func TestBoundaries(t *testing.T) {
	s := New[uint8](WithRandSource(alwaysSplit))
	require.True(t, s.Add(0))
	require.True(t, s.Add(255))
	requireFind(t, s, 0, 0, true)
	requireFind(t, s, 254, 0, true)
	requireFind(t, s, 255, 255, true)
	k, ok := s.Min()
	require.True(t, ok)
	require.Equal(t, uint8(0), k)
	k, ok = s.Max()
	require.True(t, ok)
	require.Equal(t, uint8(255), k)

	// Zero is stored in the lowest bucket and is never a split point.
	require.Equal(t, []Bucket[uint8]{{0, 1}, {255, 1}}, s.Buckets())
	require.True(t, s.Remove(0))
	require.True(t, s.Remove(255))
	require.Equal(t, []Bucket[uint8]{{0, 0}}, s.Buckets())
	_, ok = s.Min()
	require.False(t, ok)
	_, ok = s.Max()
	require.False(t, ok)
	require.NoError(t, s.Check())
}

func TestNarrowUniverse(t *testing.T) {
	s := New[uint8](WithWidth(4))
	require.Equal(t, uint8(15), s.MaxKey())
	require.Panics(t, func() { s.Add(16) })
	require.False(t, s.Remove(16))
	require.False(t, s.Contains(16))
	require.True(t, s.Add(15))
	requireFind(t, s, 200, 15, true)
	_, ok := s.FindGE(16)
	require.False(t, ok)

	require.Panics(t, func() { New[uint8](WithWidth(9)) })
	require.Panics(t, func() { New[uint8](WithWidth(-2)) })
}

func TestThresholdPolicy(t *testing.T) {
	s := New[uint16](WithWidth(8), WithSplitPolicy(Threshold))
	for k := uint16(0); k < 200; k++ {
		require.True(t, s.Add(k))
		require.NoError(t, s.Check())
	}
	buckets := s.Buckets()
	require.Greater(t, len(buckets), 1)
	for _, b := range buckets {
		require.LessOrEqual(t, b.Len, 2*s.Width(), "bucket %d", b.Rep)
	}
	for k := uint16(0); k < 200; k++ {
		got, ok := s.Find(k)
		require.True(t, ok)
		require.Equal(t, k, got)
	}
}

func TestParseSplitPolicy(t *testing.T) {
	for _, p := range []SplitPolicy{Probabilistic, Threshold} {
		got, err := ParseSplitPolicy(p.String())
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
	_, err := ParseSplitPolicy("sometimes")
	require.Error(t, err)
}

func TestClear(t *testing.T) {
	s := New[uint32](WithRandSource(alwaysSplit))
	for k := uint32(1); k < 100; k++ {
		s.Add(k * 7919)
	}
	require.Greater(t, len(s.Buckets()), 1)
	s.Clear()
	require.Equal(t, 0, s.Len())
	require.Equal(t, []Bucket[uint32]{{0, 0}}, s.Buckets())
	_, ok := s.Find(1 << 31)
	require.False(t, ok)
	require.NoError(t, s.Check())
	require.True(t, s.Add(3))
}

func TestLogsSplitsAndMerges(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := New[uint8](WithRandSource(alwaysSplit), WithLogger(zap.New(core)))
	s.Add(10)
	s.Remove(10)
	require.Equal(t, 1, logs.FilterMessage("split bucket").Len())
	merges := logs.FilterMessage("merge bucket").All()
	require.Len(t, merges, 1)
	require.Equal(t, uint64(10), merges[0].ContextMap()["rep"])
}

// TestRandomized checks Add, Remove, Find, FindGE and Contains against a
// sorted slice under both split policies.
func TestRandomized(t *testing.T) {
	for _, policy := range []SplitPolicy{Probabilistic, Threshold} {
		for _, width := range []int{1, 3, 12, 32} {
			t.Run(fmt.Sprintf("%v/width=%d", policy, width), func(t *testing.T) {
				rng := rand.New(rand.NewSource(int64(width)))
				s := New[uint32](
					WithWidth(width),
					WithSplitPolicy(policy),
					WithRandSource(rand.New(rand.NewSource(int64(width)+1))),
				)
				keyRange := int64(1) << uint(width)
				if keyRange > 1000 {
					keyRange = 1000
				}
				stride := (uint64(1) << uint(width)) / uint64(keyRange)
				pick := func() uint32 { return uint32(uint64(rng.Int63n(keyRange)) * stride) }

				var sorted []uint32
				search := func(k uint32) int {
					return sort.Search(len(sorted), func(i int) bool { return sorted[i] >= k })
				}
				for i := 0; i < 5000; i++ {
					k := pick()
					j := search(k)
					present := j < len(sorted) && sorted[j] == k
					switch rng.Intn(5) {
					case 0, 1:
						require.Equal(t, !present, s.Add(k))
						if !present {
							sorted = append(sorted, 0)
							copy(sorted[j+1:], sorted[j:])
							sorted[j] = k
						}
					case 2:
						require.Equal(t, present, s.Remove(k))
						if present {
							sorted = append(sorted[:j], sorted[j+1:]...)
						}
					case 3:
						require.Equal(t, present, s.Contains(k))
						got, ok := s.FindGE(k)
						require.Equal(t, j < len(sorted), ok)
						if ok {
							require.Equal(t, sorted[j], got)
						}
					case 4:
						got, ok := s.Find(k)
						switch {
						case present:
							require.True(t, ok)
							require.Equal(t, k, got)
						case j == 0:
							require.False(t, ok)
						default:
							require.True(t, ok)
							require.Equal(t, sorted[j-1], got)
						}
					}
					require.Equal(t, len(sorted), s.Len())
					if i%100 == 0 {
						require.NoError(t, s.Check())
					}
				}
				require.NoError(t, s.Check())

				var got []uint32
				s.Ascend(func(k uint32) bool {
					got = append(got, k)
					return true
				})
				if len(sorted) == 0 {
					require.Empty(t, got)
				} else {
					require.Equal(t, sorted, got)
				}

				for _, k := range rng.Perm(len(sorted)) {
					require.True(t, s.Remove(sorted[k]))
				}
				require.Equal(t, 0, s.Len())
				require.Equal(t, []Bucket[uint32]{{0, 0}}, s.Buckets())
				require.NoError(t, s.Check())
			})
		}
	}
}

func TestAscendStops(t *testing.T) {
	s := New[uint16](WithRandSource(alwaysSplit))
	for k := uint16(1); k <= 10; k++ {
		s.Add(k)
	}
	var got []uint16
	s.Ascend(func(k uint16) bool {
		got = append(got, k)
		return k < 4
	})
	require.Equal(t, []uint16{1, 2, 3, 4}, got)
}
