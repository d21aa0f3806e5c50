package orderstat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func keys(s *Set[int]) []int {
	var out []int
	s.Ascend(func(k int) bool {
		out = append(out, k)
		return true
	})
	return out
}

func TestOrderStatSet(t *testing.T) {
	s := NewOrdered[int]()
	require.True(t, s.Insert(2))
	require.True(t, s.Insert(3))
	require.True(t, s.Insert(5))
	require.True(t, s.Insert(4))
	require.False(t, s.Insert(4))
	require.Equal(t, []int{2, 3, 4, 5}, keys(s))

	k, ok := s.Nth(2)
	require.True(t, ok)
	require.Equal(t, 4, k)

	k, ok = s.FindLE(1)
	require.False(t, ok)
	k, ok = s.FindLE(10)
	require.True(t, ok)
	require.Equal(t, 5, k)
	k, ok = s.FindGE(6)
	require.False(t, ok)
	k, ok = s.FindGE(0)
	require.True(t, ok)
	require.Equal(t, 2, k)

	require.True(t, s.Remove(3))
	require.False(t, s.Remove(3))
	require.False(t, s.Contains(3))
	require.True(t, s.Contains(2))
	require.Equal(t, "[2 4 5]", s.String())
}

func TestOrderStatNth(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	s := NewOrdered[int]()
	const maxN = 1000
	N := 1 + rng.Intn(maxN)
	for _, idx := range rng.Perm(N) {
		s.Insert(idx)
	}
	var removed []int
	for _, idx := range rng.Perm(N) {
		if rng.Float64() < .5 {
			continue
		}
		require.True(t, s.Remove(idx))
		removed = append(removed, idx)
	}
	t.Logf("removed %d/%d", len(removed), N)
	for _, i := range removed {
		s.Insert(i)
	}
	require.Equal(t, N, s.Len())
	for _, idx := range rng.Perm(N) {
		k, ok := s.Nth(idx)
		require.True(t, ok)
		require.Equal(t, idx, k)
	}
	_, ok := s.Nth(N)
	require.False(t, ok)
	_, ok = s.Nth(-1)
	require.False(t, ok)
}

func TestOrderStatSplitAbsorb(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, n := range []int{0, 1, 7, 64, 500} {
		s := NewOrdered[int]()
		for _, k := range rng.Perm(n) {
			s.Insert(3 * k)
		}
		at := 3 * n / 2
		hi := s.SplitAt(at)
		for _, k := range keys(s) {
			require.Less(t, k, at)
		}
		for _, k := range keys(hi) {
			require.GreaterOrEqual(t, k, at)
		}
		require.Equal(t, n, s.Len()+hi.Len())

		s.Absorb(hi)
		require.Equal(t, 0, hi.Len())
		require.Equal(t, n, s.Len())
		all := keys(s)
		for i := range all {
			require.Equal(t, 3*i, all[i])
		}
	}
}

func TestOrderStatAbsorbOverlapPanics(t *testing.T) {
	s := NewOrdered[int]()
	s.Insert(10)
	other := NewOrdered[int]()
	other.Insert(5)
	require.Panics(t, func() { s.Absorb(other) })
}

func TestOrderStatMinMax(t *testing.T) {
	s := NewOrdered[uint8]()
	_, ok := s.Min()
	require.False(t, ok)
	_, ok = s.Max()
	require.False(t, ok)
	for _, k := range []uint8{200, 7, 255, 0, 31} {
		s.Insert(k)
	}
	lo, _ := s.Min()
	hi, _ := s.Max()
	require.Equal(t, uint8(0), lo)
	require.Equal(t, uint8(255), hi)
	s.Reset()
	require.Equal(t, 0, s.Len())
}
