package trie

import "github.com/pingcap/errors"

// Visit calls fn for every interior node and leaf below the root with its
// depth and the prefix of its path.
func (g *Graph[V]) Visit(fn func(depth int, prefix uint64, ref Ref)) {
	var walk func(u Ref, d int, prefix uint64)
	walk = func(u Ref, d int, prefix uint64) {
		if d > 0 {
			fn(d, prefix, u)
		}
		if d == g.width {
			return
		}
		for c := 0; c < 2; c++ {
			if child := g.inners[u].child[c]; child != Nil {
				walk(child, d+1, prefix<<1|uint64(c))
			}
		}
	}
	walk(Root, 0, 0)
}

// Check verifies the structural invariants of the graph: the leaf list is
// sorted and complete, parent and child references agree, every leaf sits on
// the path spelled by its key and jump references are set exactly where a
// single child is missing and point at the closest leaf on that side.
func (g *Graph[V]) Check() error {
	var (
		count int
		prev  uint64
	)
	for l := g.leaves[Sentinel].next; l != Sentinel; l = g.leaves[l].next {
		if g.leaves[g.leaves[l].next].prev != l {
			return errors.Errorf("leaf %d: broken back link", l)
		}
		if count > 0 && g.leaves[l].key <= prev {
			return errors.Errorf("leaf list out of order: %d after %d", g.leaves[l].key, prev)
		}
		prev = g.leaves[l].key
		count++
		if count > g.n {
			return errors.Errorf("leaf list longer than %d", g.n)
		}
	}
	if count != g.n {
		return errors.Errorf("leaf list has %d leaves, expected %d", count, g.n)
	}
	if g.n == 0 {
		if r := g.inners[Root]; r.child != [2]Ref{Nil, Nil} || r.jump != Sentinel {
			return errors.Errorf("empty root is %+v", r)
		}
		return nil
	}
	_, _, _, err := g.check(Root, 0, 0)
	return err
}

// check returns the minimum and maximum leaves of the subtree at u along
// with its leaf count.
func (g *Graph[V]) check(u Ref, d int, prefix uint64) (lo, hi Ref, n int, err error) {
	if d == g.width {
		if g.leaves[u].key != prefix {
			return Nil, Nil, 0, errors.Errorf("leaf %d holds %d on path %d", u, g.leaves[u].key, prefix)
		}
		return u, u, 1, nil
	}
	in := g.inners[u]
	var los, his [2]Ref
	for c := 0; c < 2; c++ {
		los[c], his[c] = Nil, Nil
		child := in.child[c]
		if child == Nil {
			continue
		}
		var parent Ref
		if d+1 == g.width {
			parent = g.leaves[child].parent
		} else {
			parent = g.inners[child].parent
		}
		if parent != u {
			return Nil, Nil, 0, errors.Errorf("node %d at depth %d: child %d has parent %d", u, d, child, parent)
		}
		var cn int
		los[c], his[c], cn, err = g.check(child, d+1, prefix<<1|uint64(c))
		if err != nil {
			return Nil, Nil, 0, err
		}
		n += cn
	}
	switch {
	case in.child[left] == Nil && in.child[right] == Nil:
		return Nil, Nil, 0, errors.Errorf("node %d at depth %d has no children", u, d)
	case in.child[left] == Nil:
		if in.jump != los[right] {
			return Nil, Nil, 0, errors.Errorf("node %d at depth %d: jump %d, expected minimum %d", u, d, in.jump, los[right])
		}
		return los[right], his[right], n, nil
	case in.child[right] == Nil:
		if in.jump != his[left] {
			return Nil, Nil, 0, errors.Errorf("node %d at depth %d: jump %d, expected maximum %d", u, d, in.jump, his[left])
		}
		return los[left], his[left], n, nil
	default:
		if in.jump != Nil {
			return Nil, Nil, 0, errors.Errorf("node %d at depth %d has two children and jump %d", u, d, in.jump)
		}
		return los[left], his[right], n, nil
	}
}
