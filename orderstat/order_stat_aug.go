package orderstat

import "github.com/ajwerner/fasttrie/internal/abstract"

type aug[K any] struct {
	// count is the number of items rooted at the current subtree.
	count int
}

// Update will update the count for the current node.
func (a *aug[K]) Update(
	_ *abstract.Config[K, struct{}], n abstract.Node[K, *aug[K]], _ abstract.UpdateMeta[K, aug[K]],
) (updated bool) {
	orig := a.count
	count := int(n.Count())
	if !n.IsLeaf() {
		for i, N := int16(0), n.Count(); i <= N; i++ {
			count += n.GetChild(i).count
		}
	}
	a.count = count
	return a.count != orig
}
