package trie

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

type nodeKey struct {
	depth  int
	prefix uint64
}

// recordingHooks mirrors the graph the way a level index would.
type recordingHooks map[nodeKey]Ref

func (h recordingHooks) NodeCreated(depth int, prefix uint64, ref Ref) {
	h[nodeKey{depth, prefix}] = ref
}

func (h recordingHooks) NodeDeleted(depth int, prefix uint64) {
	delete(h, nodeKey{depth, prefix})
}

func floorOf(sorted []uint64, x uint64) (uint64, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
	if i == 0 {
		return 0, false
	}
	return sorted[i-1], true
}

func ceilOf(sorted []uint64, x uint64) (uint64, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= x })
	if i == len(sorted) {
		return 0, false
	}
	return sorted[i], true
}

func keysOf(g *Graph[int]) []uint64 {
	var out []uint64
	for l := g.First(); l != Nil; l = g.Next(l) {
		out = append(out, g.Key(l))
	}
	return out
}

func TestGraphEmpty(t *testing.T) {
	g := New[int](8)
	require.NoError(t, g.Check())
	require.Equal(t, Nil, g.Predecessor(0))
	require.Equal(t, Nil, g.Predecessor(255))
	require.Equal(t, Nil, g.Successor(0))
	require.Equal(t, Nil, g.First())
	require.Equal(t, Nil, g.Last())
	require.False(t, g.Remove(3))
}

func TestGraphScenario(t *testing.T) {
	g := New[int](8)
	require.True(t, g.Add(5, 50))
	require.True(t, g.Add(130, 1300))
	require.True(t, g.Add(7, 70))
	require.False(t, g.Add(7, 71))
	require.NoError(t, g.Check())

	l := g.Predecessor(6)
	require.NotEqual(t, Nil, l)
	require.Equal(t, uint64(5), g.Key(l))
	require.Equal(t, 50, g.Value(l))
	require.Equal(t, uint64(130), g.Key(g.Predecessor(200)))
	require.Equal(t, Nil, g.Predecessor(4))
	require.Equal(t, uint64(7), g.Key(g.Successor(6)))
	require.Equal(t, Nil, g.Successor(131))
	require.Equal(t, []uint64{5, 7, 130}, keysOf(g))

	require.True(t, g.Remove(5))
	require.NoError(t, g.Check())
	require.Equal(t, Nil, g.Predecessor(6))
	require.Equal(t, 2, g.Len())
}

func TestGraphHooksTrackNodes(t *testing.T) {
	g := New[int](6)
	h := recordingHooks{}
	add := func(x uint64) {
		u, d := g.FindDeepest(x)
		if d < g.Width() {
			g.Insert(x, int(x), u, d, h)
		}
	}
	remove := func(x uint64) {
		if u, d := g.FindDeepest(x); d == g.Width() {
			require.Equal(t, int(x), g.Delete(u, h))
		}
	}
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 2000; i++ {
		x := uint64(rng.Intn(64))
		if rng.Intn(2) == 0 {
			add(x)
		} else {
			remove(x)
		}
		visited := recordingHooks{}
		g.Visit(func(depth int, prefix uint64, ref Ref) {
			visited[nodeKey{depth, prefix}] = ref
		})
		require.Equal(t, visited, h)
	}
}

func TestGraphRandomized(t *testing.T) {
	for _, width := range []int{1, 3, 8, 16, 64} {
		rng := rand.New(rand.NewSource(int64(width)))
		g := New[int](width)
		present := map[uint64]bool{}
		var universe uint64 = 1<<uint(width) - 1
		if width == 64 {
			universe = ^uint64(0)
		}
		pick := func() uint64 {
			if width <= 8 {
				return uint64(rng.Int63()) & universe
			}
			// Cluster keys so that paths share long prefixes.
			return (uint64(rng.Int63())<<1 | uint64(rng.Intn(2))) & universe & ^uint64(0xff00)
		}
		for i := 0; i < 3000; i++ {
			x := pick()
			if rng.Intn(3) == 0 {
				require.Equal(t, present[x], g.Remove(x))
				delete(present, x)
			} else {
				require.Equal(t, !present[x], g.Add(x, int(i)))
				present[x] = true
			}
			if i%50 == 0 {
				require.NoError(t, g.Check(), "width %d op %d", width, i)
			}
		}
		require.NoError(t, g.Check())
		var sorted []uint64
		for k := range present {
			sorted = append(sorted, k)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		require.Equal(t, len(sorted), g.Len())
		if len(sorted) > 0 {
			require.Equal(t, sorted, keysOf(g))
		}
		for i := 0; i < 500; i++ {
			q := pick()
			exp, ok := floorOf(sorted, q)
			l := g.Predecessor(q)
			require.Equal(t, ok, l != Nil, "floor %d", q)
			if ok {
				require.Equal(t, exp, g.Key(l))
			}
			exp, ok = ceilOf(sorted, q)
			l = g.Successor(q)
			require.Equal(t, ok, l != Nil, "ceil %d", q)
			if ok {
				require.Equal(t, exp, g.Key(l))
			}
		}
		for _, k := range sorted {
			require.True(t, g.Remove(k))
		}
		require.NoError(t, g.Check())
		require.Equal(t, 0, g.Len())
	}
}

func TestGraphReset(t *testing.T) {
	g := New[int](16)
	for i := uint64(0); i < 100; i++ {
		g.Add(i*97, 0)
	}
	g.Reset()
	require.Equal(t, 0, g.Len())
	require.NoError(t, g.Check())
	require.Len(t, g.inners, 1)
	require.Len(t, g.leaves, 1)
	require.True(t, g.Add(42, 1))
	require.NoError(t, g.Check())
}
