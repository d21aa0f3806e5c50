// Package trie implements the node graph shared by the binary and x-fast
// tries: a binary trie of fixed depth whose leaves are threaded, in key
// order, on a circular doubly linked list anchored by a sentinel leaf.
//
// Nodes live in two arenas addressed by Ref. Interior nodes, at depths
// [0, width), carry child and jump references; leaves, at depth width, carry
// the key, its value and the list links. The depth of a reference decides
// which arena it addresses. Every interior node that is missing exactly one
// child caches in jump the leaf of its subtree closest to the missing side:
// the minimum leaf when the left child is missing and the maximum leaf when
// the right child is missing.
package trie

// Ref addresses a node in one of the two arenas.
type Ref int32

const (
	// Nil is the absent reference.
	Nil Ref = -1
	// Root is the interior node at depth zero.
	Root Ref = 0
	// Sentinel is the leaf anchoring the circular leaf list.
	Sentinel Ref = 0
)

const (
	left  = 0
	right = 1
)

type inner struct {
	parent Ref
	jump   Ref
	child  [2]Ref
}

type leaf[V any] struct {
	parent     Ref
	key        uint64
	value      V
	prev, next Ref
}

// Hooks observes the creation and deletion of nodes below the root so that
// an external index can be kept in lockstep with the graph.
type Hooks interface {
	NodeCreated(depth int, prefix uint64, ref Ref)
	NodeDeleted(depth int, prefix uint64)
}

// Graph is a trie node graph over keys of a fixed bit width.
//
// Graph is not safe for concurrent use.
type Graph[V any] struct {
	width     int
	n         int
	inners    []inner
	leaves    []leaf[V]
	freeInner []Ref
	freeLeaf  []Ref
}

// New returns an empty Graph over width-bit keys. Width must be in [1, 64].
func New[V any](width int) *Graph[V] {
	g := &Graph[V]{width: width}
	g.Reset()
	return g
}

// Reset releases every node and returns the graph to its empty state.
func (g *Graph[V]) Reset() {
	g.inners = []inner{{parent: Nil, jump: Sentinel, child: [2]Ref{Nil, Nil}}}
	g.leaves = []leaf[V]{{parent: Nil, prev: Sentinel, next: Sentinel}}
	g.freeInner, g.freeLeaf = nil, nil
	g.n = 0
}

// Width returns the key width in bits, which is also the leaf depth.
func (g *Graph[V]) Width() int { return g.width }

// Len returns the number of leaves.
func (g *Graph[V]) Len() int { return g.n }

// Bit returns the bit of x that selects the child of a node at depth d.
func (g *Graph[V]) Bit(x uint64, d int) int {
	return int(x>>uint(g.width-d-1)) & 1
}

// Prefix returns the first d bits of x.
func (g *Graph[V]) Prefix(x uint64, d int) uint64 {
	return x >> uint(g.width-d)
}

// Child returns the child c of the interior node u.
func (g *Graph[V]) Child(u Ref, c int) Ref { return g.inners[u].child[c] }

// Key returns the key stored at leaf l.
func (g *Graph[V]) Key(l Ref) uint64 { return g.leaves[l].key }

// Value returns the value stored at leaf l.
func (g *Graph[V]) Value(l Ref) V { return g.leaves[l].value }

// SetValue replaces the value stored at leaf l.
func (g *Graph[V]) SetValue(l Ref, v V) { g.leaves[l].value = v }

// Next returns the leaf following l, or Nil if l is the last leaf.
func (g *Graph[V]) Next(l Ref) Ref { return g.real(g.leaves[l].next) }

// Prev returns the leaf preceding l, or Nil if l is the first leaf.
func (g *Graph[V]) Prev(l Ref) Ref { return g.real(g.leaves[l].prev) }

// First returns the smallest leaf, or Nil if the graph is empty.
func (g *Graph[V]) First() Ref { return g.Next(Sentinel) }

// Last returns the largest leaf, or Nil if the graph is empty.
func (g *Graph[V]) Last() Ref { return g.Prev(Sentinel) }

func (g *Graph[V]) real(l Ref) Ref {
	if l == Sentinel {
		return Nil
	}
	return l
}

// FindDeepest follows the bits of x from the root while a child exists and
// returns the deepest node reached along with its depth. A depth equal to
// Width means x is stored and the returned reference is its leaf.
func (g *Graph[V]) FindDeepest(x uint64) (u Ref, depth int) {
	u = Root
	for depth < g.width {
		c := g.inners[u].child[g.Bit(x, depth)]
		if c == Nil {
			break
		}
		u = c
		depth++
	}
	return u, depth
}

// Neighbors returns the leaves adjacent to x in key order given the deepest
// interior node u, at depth d < Width, on the path of x. Either result may be
// the Sentinel.
func (g *Graph[V]) Neighbors(u Ref, d int, x uint64) (pred, succ Ref) {
	j := g.inners[u].jump
	if g.Bit(x, d) == right {
		return j, g.leaves[j].next
	}
	return g.leaves[j].prev, j
}

// Floor returns the leaf holding the largest key <= x given the deepest node
// (u, d) on the path of x, or Nil if there is none.
func (g *Graph[V]) Floor(u Ref, d int, x uint64) Ref {
	if d == g.width {
		return u
	}
	pred, _ := g.Neighbors(u, d, x)
	return g.real(pred)
}

// Ceil returns the leaf holding the smallest key >= x given the deepest node
// (u, d) on the path of x, or Nil if there is none.
func (g *Graph[V]) Ceil(u Ref, d int, x uint64) Ref {
	if d == g.width {
		return u
	}
	_, succ := g.Neighbors(u, d, x)
	return g.real(succ)
}

// Insert adds x, which must not be stored, given the deepest node (u, d) on
// its path. It returns the new leaf.
func (g *Graph[V]) Insert(x uint64, v V, u Ref, d int, h Hooks) Ref {
	pred, _ := g.Neighbors(u, d, x)
	// u gains its second child, or its first if it is the empty root.
	g.inners[u].jump = Nil
	l := g.ExtendPath(x, u, d, h)
	g.leaves[l].value = v
	g.LinkLeaf(l, pred)
	g.RepairAfterInsert(l)
	g.n++
	return l
}

// Delete removes the leaf l and every interior node left without children,
// then repairs the jump references of the surviving ancestors. It returns the
// value that was stored at l.
func (g *Graph[V]) Delete(l Ref, h Hooks) V {
	pred, succ := g.leaves[l].prev, g.leaves[l].next
	v := g.leaves[l].value
	g.Unlink(l)
	survivor := g.PruneAncestors(l, h)
	g.RepairAfterRemove(survivor, l, pred, succ)
	g.n--
	return v
}

// ExtendPath allocates the nodes on the path of x below u, which sits at
// depth d, down to the leaf, and returns the leaf. The leaf list is not
// touched.
func (g *Graph[V]) ExtendPath(x uint64, u Ref, d int, h Hooks) Ref {
	for ; d < g.width; d++ {
		var c Ref
		if d+1 == g.width {
			c = g.allocLeaf(u, x)
		} else {
			c = g.allocInner(u)
		}
		g.inners[u].child[g.Bit(x, d)] = c
		if h != nil {
			h.NodeCreated(d+1, g.Prefix(x, d+1), c)
		}
		u = c
	}
	return u
}

// LinkLeaf splices l into the leaf list right after pred.
func (g *Graph[V]) LinkLeaf(l, pred Ref) {
	next := g.leaves[pred].next
	g.leaves[l].prev, g.leaves[l].next = pred, next
	g.leaves[pred].next = l
	g.leaves[next].prev = l
}

// Unlink removes l from the leaf list.
func (g *Graph[V]) Unlink(l Ref) {
	prev, next := g.leaves[l].prev, g.leaves[l].next
	g.leaves[prev].next = next
	g.leaves[next].prev = prev
	g.leaves[l].prev, g.leaves[l].next = Nil, Nil
}

// PruneAncestors frees the leaf l and then each ancestor left with no
// children, stopping at the root or at the first ancestor that keeps a
// child. It returns that first surviving ancestor.
func (g *Graph[V]) PruneAncestors(l Ref, h Hooks) Ref {
	x := g.leaves[l].key
	p := g.leaves[l].parent
	g.inners[p].child[g.Bit(x, g.width-1)] = Nil
	if h != nil {
		h.NodeDeleted(g.width, x)
	}
	g.freeLeafSlot(l)
	for d := g.width - 1; p != Root; d-- {
		in := &g.inners[p]
		if in.child[left] != Nil || in.child[right] != Nil {
			break
		}
		parent := in.parent
		g.inners[parent].child[g.Bit(x, d-1)] = Nil
		if h != nil {
			h.NodeDeleted(d, g.Prefix(x, d))
		}
		g.freeInnerSlot(p)
		p = parent
	}
	return p
}

// RepairAfterInsert walks every ancestor of the new leaf l and points its
// jump at l when l is now the closest leaf to the ancestor's missing side.
func (g *Graph[V]) RepairAfterInsert(l Ref) {
	x := g.leaves[l].key
	for v := g.leaves[l].parent; v != Nil; v = g.inners[v].parent {
		in := &g.inners[v]
		if (in.child[left] == Nil && (in.jump == Nil || g.leaves[in.jump].key > x)) ||
			(in.child[right] == Nil && (in.jump == Nil || g.leaves[in.jump].key < x)) {
			in.jump = l
		}
	}
}

// RepairAfterRemove fixes jump references after the leaf removed, whose list
// neighbours were pred and succ, was pruned up to survivor. The survivor now
// misses at least one child and every ancestor that cached the removed leaf
// must move to the neighbour on its missing side.
func (g *Graph[V]) RepairAfterRemove(survivor, removed, pred, succ Ref) {
	for v := survivor; v != Nil; v = g.inners[v].parent {
		in := &g.inners[v]
		if v != survivor && in.jump != removed {
			continue
		}
		if in.child[left] == Nil {
			in.jump = succ
		} else {
			in.jump = pred
		}
	}
}

func (g *Graph[V]) allocInner(parent Ref) Ref {
	n := inner{parent: parent, jump: Nil, child: [2]Ref{Nil, Nil}}
	if k := len(g.freeInner); k > 0 {
		r := g.freeInner[k-1]
		g.freeInner = g.freeInner[:k-1]
		g.inners[r] = n
		return r
	}
	g.inners = append(g.inners, n)
	return Ref(len(g.inners) - 1)
}

func (g *Graph[V]) allocLeaf(parent Ref, x uint64) Ref {
	l := leaf[V]{parent: parent, key: x, prev: Nil, next: Nil}
	if k := len(g.freeLeaf); k > 0 {
		r := g.freeLeaf[k-1]
		g.freeLeaf = g.freeLeaf[:k-1]
		g.leaves[r] = l
		return r
	}
	g.leaves = append(g.leaves, l)
	return Ref(len(g.leaves) - 1)
}

func (g *Graph[V]) freeInnerSlot(r Ref) {
	g.inners[r] = inner{parent: Nil, jump: Nil, child: [2]Ref{Nil, Nil}}
	g.freeInner = append(g.freeInner, r)
}

func (g *Graph[V]) freeLeafSlot(r Ref) {
	g.leaves[r] = leaf[V]{parent: Nil, prev: Nil, next: Nil}
	g.freeLeaf = append(g.freeLeaf, r)
}
