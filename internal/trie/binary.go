package trie

// The methods below use the graph as a plain binary trie: every search walks
// down from the root one bit at a time, so each costs O(width).

// Add stores x with value v. It returns false if x is already stored.
func (g *Graph[V]) Add(x uint64, v V) bool {
	u, d := g.FindDeepest(x)
	if d == g.width {
		return false
	}
	g.Insert(x, v, u, d, nil)
	return true
}

// Remove deletes x. It returns false if x is not stored.
func (g *Graph[V]) Remove(x uint64) bool {
	u, d := g.FindDeepest(x)
	if d < g.width {
		return false
	}
	g.Delete(u, nil)
	return true
}

// Predecessor returns the leaf holding the largest key <= x, or Nil.
func (g *Graph[V]) Predecessor(x uint64) Ref {
	u, d := g.FindDeepest(x)
	return g.Floor(u, d, x)
}

// Successor returns the leaf holding the smallest key >= x, or Nil.
func (g *Graph[V]) Successor(x uint64) Ref {
	u, d := g.FindDeepest(x)
	return g.Ceil(u, d, x)
}
