package levelindex

// Index holds one Table per trie depth in [1, width]. Depth zero is the
// root, which is never indexed.
type Index[V any] struct {
	levels []Table[V]
}

// New returns an Index for a trie of the given width.
func New[V any](width int) *Index[V] {
	return &Index[V]{levels: make([]Table[V], width+1)}
}

// Width returns the deepest indexed depth.
func (x *Index[V]) Width() int { return len(x.levels) - 1 }

// Level returns the table for depth d.
func (x *Index[V]) Level(d int) *Table[V] { return &x.levels[d] }

// Insert records v under prefix at depth d.
func (x *Index[V]) Insert(d int, prefix uint64, v V) bool {
	return x.levels[d].Insert(prefix, v)
}

// Delete removes prefix at depth d.
func (x *Index[V]) Delete(d int, prefix uint64) bool {
	return x.levels[d].Delete(prefix)
}

// Lookup finds prefix at depth d.
func (x *Index[V]) Lookup(d int, prefix uint64) (V, bool) {
	return x.levels[d].Lookup(prefix)
}

// Len returns the number of entries across all depths.
func (x *Index[V]) Len() int {
	var n int
	for i := range x.levels {
		n += x.levels[i].Len()
	}
	return n
}

// Reset empties every level.
func (x *Index[V]) Reset() {
	for i := range x.levels {
		x.levels[i].Reset()
	}
}
