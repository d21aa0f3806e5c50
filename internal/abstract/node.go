// Copyright 2018 The Cockroach Authors.
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

package abstract

import (
	"fmt"
	"strings"
)

type node[K, V, Aux, A any, AP Aug[K, Aux, A]] struct {
	count    int16
	leaf     bool
	aug      A
	keys     [MaxEntries]K
	values   [MaxEntries]V
	children *[MaxEntries + 1]*node[K, V, Aux, A, AP]
}

// interiorNode carries the child array so that leaves, which are the vast
// majority of nodes, do not pay for it.
type interiorNode[K, V, Aux, A any, AP Aug[K, Aux, A]] struct {
	node[K, V, Aux, A, AP]
	children [MaxEntries + 1]*node[K, V, Aux, A, AP]
}

func newLeafNode[K, V, Aux, A any, AP Aug[K, Aux, A]]() *node[K, V, Aux, A, AP] {
	return &node[K, V, Aux, A, AP]{leaf: true}
}

func newInteriorNode[K, V, Aux, A any, AP Aug[K, Aux, A]]() *node[K, V, Aux, A, AP] {
	n := new(interiorNode[K, V, Aux, A, AP])
	n.node.children = &n.children
	return &n.node
}

func (n *node[K, V, Aux, A, AP]) IsLeaf() bool { return n.leaf }

func (n *node[K, V, Aux, A, AP]) Count() int16 { return n.count }

func (n *node[K, V, Aux, A, AP]) GetKey(i int16) K { return n.keys[i] }

func (n *node[K, V, Aux, A, AP]) GetChild(i int16) *A {
	return &n.children[i].aug
}

func (n *node[K, V, Aux, A, AP]) insertAt(index int, k K, v V, nd *node[K, V, Aux, A, AP]) {
	if index < int(n.count) {
		copy(n.keys[index+1:n.count+1], n.keys[index:n.count])
		copy(n.values[index+1:n.count+1], n.values[index:n.count])
		if !n.leaf {
			copy(n.children[index+2:n.count+2], n.children[index+1:n.count+1])
		}
	}
	n.keys[index] = k
	n.values[index] = v
	if !n.leaf {
		n.children[index+1] = nd
	}
	n.count++
}

func (n *node[K, V, Aux, A, AP]) pushBack(k K, v V, nd *node[K, V, Aux, A, AP]) {
	n.keys[n.count] = k
	n.values[n.count] = v
	if !n.leaf {
		n.children[n.count+1] = nd
	}
	n.count++
}

func (n *node[K, V, Aux, A, AP]) pushFront(k K, v V, nd *node[K, V, Aux, A, AP]) {
	if !n.leaf {
		copy(n.children[1:n.count+2], n.children[:n.count+1])
		n.children[0] = nd
	}
	copy(n.keys[1:n.count+1], n.keys[:n.count])
	copy(n.values[1:n.count+1], n.values[:n.count])
	n.keys[0] = k
	n.values[0] = v
	n.count++
}

// removeAt removes a value at a given index, pulling all subsequent values
// back.
func (n *node[K, V, Aux, A, AP]) removeAt(index int) (K, V, *node[K, V, Aux, A, AP]) {
	var child *node[K, V, Aux, A, AP]
	if !n.leaf {
		child = n.children[index+1]
		copy(n.children[index+1:n.count], n.children[index+2:n.count+1])
		n.children[n.count] = nil
	}
	n.count--
	outK := n.keys[index]
	outV := n.values[index]
	copy(n.keys[index:n.count], n.keys[index+1:n.count+1])
	copy(n.values[index:n.count], n.values[index+1:n.count+1])
	var rK K
	var rV V
	n.keys[n.count] = rK
	n.values[n.count] = rV
	return outK, outV, child
}

// popBack removes and returns the last element in the list.
func (n *node[K, V, Aux, A, AP]) popBack() (K, V, *node[K, V, Aux, A, AP]) {
	n.count--
	outK := n.keys[n.count]
	outV := n.values[n.count]
	var rK K
	var rV V
	n.keys[n.count] = rK
	n.values[n.count] = rV
	if n.leaf {
		return outK, outV, nil
	}
	child := n.children[n.count+1]
	n.children[n.count+1] = nil
	return outK, outV, child
}

// popFront removes and returns the first element in the list.
func (n *node[K, V, Aux, A, AP]) popFront() (K, V, *node[K, V, Aux, A, AP]) {
	n.count--
	var child *node[K, V, Aux, A, AP]
	if !n.leaf {
		child = n.children[0]
		copy(n.children[:n.count+1], n.children[1:n.count+2])
		n.children[n.count+1] = nil
	}
	outK := n.keys[0]
	outV := n.values[0]
	copy(n.keys[:n.count], n.keys[1:n.count+1])
	copy(n.values[:n.count], n.values[1:n.count+1])
	var rK K
	var rV V
	n.keys[n.count] = rK
	n.values[n.count] = rV
	return outK, outV, child
}

// find returns the index where the given key should be inserted into this
// list. 'found' is true if the key already exists in the list at the given
// index.
func (n *node[K, V, Aux, A, AP]) find(cmp func(K, K) int, k K) (index int, found bool) {
	// Logic copied from sort.Search.
	i, j := 0, int(n.count)
	for i < j {
		h := int(uint(i+j) >> 1) // avoid overflow when computing h
		// i ≤ h < j
		c := cmp(k, n.keys[h])
		if c < 0 {
			j = h
		} else if c > 0 {
			i = h + 1
		} else {
			return h, true
		}
	}
	return i, false
}

// split splits the given node at the given index. The current node shrinks,
// and this function returns the key that existed at that index and a new
// node containing all keys/children after it.
//
// Before:
//
//          +-----------+
//          |   x y z   |
//          +--/-/-\-\--+
//
// After:
//
//          +-----------+
//          |     y     |
//          +----/-\----+
//              /   \
//             v     v
// +-----------+     +-----------+
// |         x |     | z         |
// +-----------+     +-----------+
//
func (n *node[K, V, Aux, A, AP]) split(cfg *Config[K, Aux], i int) (K, V, *node[K, V, Aux, A, AP]) {
	outK := n.keys[i]
	outV := n.values[i]
	var next *node[K, V, Aux, A, AP]
	if n.leaf {
		next = newLeafNode[K, V, Aux, A, AP]()
	} else {
		next = newInteriorNode[K, V, Aux, A, AP]()
	}
	next.count = n.count - int16(i+1)
	copy(next.keys[:], n.keys[i+1:n.count])
	copy(next.values[:], n.values[i+1:n.count])
	var rK K
	var rV V
	for j := int16(i); j < n.count; j++ {
		n.keys[j] = rK
		n.values[j] = rV
	}
	if !n.leaf {
		copy(next.children[:], n.children[i+1:n.count+1])
		for j := int16(i + 1); j <= n.count; j++ {
			n.children[j] = nil
		}
	}
	n.count = int16(i)
	next.update(cfg)
	n.updateOn(cfg, Split, outK, next)
	return outK, outV, next
}

func (n *node[K, V, Aux, A, AP]) update(cfg *Config[K, Aux]) bool {
	return AP(&n.aug).Update(cfg, n, UpdateMeta[K, A]{})
}

func (n *node[K, V, Aux, A, AP]) updateOn(
	cfg *Config[K, Aux], action Action, k K, affected *node[K, V, Aux, A, AP],
) bool {
	var a *A
	if affected != nil {
		a = &affected.aug
	}
	return AP(&n.aug).Update(cfg, n, UpdateMeta[K, A]{
		Action:        action,
		RelevantKey:   k,
		ModifiedOther: a,
	})
}

// insert inserts a key into the subtree rooted at this node, making sure no
// nodes in the subtree exceed MaxEntries keys. Returns true if an existing key
// was replaced and false if a key was inserted. Also returns whether the
// node's augmentation changed.
func (n *node[K, V, Aux, A, AP]) insert(
	cfg *Config[K, Aux], k K, v V,
) (replacedK K, replacedV V, replaced, changed bool) {
	i, found := n.find(cfg.cmp, k)
	if found {
		replacedK, replacedV = n.keys[i], n.values[i]
		n.keys[i], n.values[i] = k, v
		return replacedK, replacedV, true, false
	}
	if n.leaf {
		n.insertAt(i, k, v, nil)
		return replacedK, replacedV, false, n.updateOn(cfg, Insertion, k, nil)
	}
	if n.children[i].count >= MaxEntries {
		splitK, splitV, splitNode := n.children[i].split(cfg, MaxEntries/2)
		n.insertAt(i, splitK, splitV, splitNode)
		if c := cfg.cmp(k, n.keys[i]); c < 0 {
			// no change, we want first split node
		} else if c > 0 {
			i++ // we want second split node
		} else {
			replacedK, replacedV = n.keys[i], n.values[i]
			n.keys[i], n.values[i] = k, v
			return replacedK, replacedV, true, false
		}
	}
	replacedK, replacedV, replaced, changed = n.children[i].insert(cfg, k, v)
	if changed {
		changed = n.updateOn(cfg, Insertion, k, nil)
	}
	return replacedK, replacedV, replaced, changed
}

// removeMax removes and returns the maximum key from the subtree rooted at
// this node.
func (n *node[K, V, Aux, A, AP]) removeMax(cfg *Config[K, Aux]) (K, V) {
	if n.leaf {
		outK, outV, _ := n.popBack()
		n.updateOn(cfg, Removal, outK, nil)
		return outK, outV
	}
	// Recurse into max child.
	i := int(n.count)
	if n.children[i].count <= MinEntries {
		// Child not large enough to remove from.
		n.rebalanceOrMerge(cfg, i)
		return n.removeMax(cfg) // redo
	}
	outK, outV := n.children[i].removeMax(cfg)
	n.updateOn(cfg, Removal, outK, nil)
	return outK, outV
}

// rebalanceOrMerge grows child 'i' to ensure it has sufficient room to remove
// a key from it while keeping it at or above MinEntries.
func (n *node[K, V, Aux, A, AP]) rebalanceOrMerge(cfg *Config[K, Aux], i int) {
	switch {
	case i > 0 && n.children[i-1].count > MinEntries:
		// Rebalance from left sibling.
		//
		//          +-----------+
		//          |     y     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |         x |     |           |
		// +----------\+     +-----------+
		//             \
		//              v
		//              a
		//
		// After:
		//
		//          +-----------+
		//          |     x     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |           |     | y         |
		// +-----------+     +/----------+
		//                   /
		//                  v
		//                  a
		//
		left := n.children[i-1]
		child := n.children[i]
		xK, xV, grandChild := left.popBack()
		yK, yV := n.keys[i-1], n.values[i-1]
		child.pushFront(yK, yV, grandChild)
		n.keys[i-1], n.values[i-1] = xK, xV
		left.updateOn(cfg, Removal, xK, grandChild)
		child.updateOn(cfg, Insertion, yK, grandChild)

	case i < int(n.count) && n.children[i+1].count > MinEntries:
		// Rebalance from right sibling.
		//
		//          +-----------+
		//          |     y     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |           |     | x         |
		// +-----------+     +/----------+
		//                   /
		//                  v
		//                  a
		//
		// After:
		//
		//          +-----------+
		//          |     x     |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |         y |     |           |
		// +----------\+     +-----------+
		//             \
		//              v
		//              a
		//
		right := n.children[i+1]
		child := n.children[i]
		xK, xV, grandChild := right.popFront()
		yK, yV := n.keys[i], n.values[i]
		child.pushBack(yK, yV, grandChild)
		n.keys[i], n.values[i] = xK, xV
		right.updateOn(cfg, Removal, xK, grandChild)
		child.updateOn(cfg, Insertion, yK, grandChild)

	default:
		// Merge with either the left or right sibling.
		//
		//          +-----------+
		//          |   u y v   |
		//          +----/-\----+
		//              /   \
		//             v     v
		// +-----------+     +-----------+
		// |         x |     | z         |
		// +-----------+     +-----------+
		//
		// After:
		//
		//          +-----------+
		//          |    u v    |
		//          +-----|-----+
		//                |
		//                v
		//          +-----------+
		//          |   x y z   |
		//          +-----------+
		//
		if i >= int(n.count) {
			i = int(n.count - 1)
		}
		child := n.children[i]
		mergeK, mergeV, mergeChild := n.removeAt(i)
		child.keys[child.count] = mergeK
		child.values[child.count] = mergeV
		copy(child.keys[child.count+1:], mergeChild.keys[:mergeChild.count])
		copy(child.values[child.count+1:], mergeChild.values[:mergeChild.count])
		if !child.leaf {
			copy(child.children[child.count+1:], mergeChild.children[:mergeChild.count+1])
		}
		child.count += mergeChild.count + 1
		child.updateOn(cfg, Insertion, mergeK, mergeChild)
	}
}

// remove removes a key from the subtree rooted at this node. Returns the key
// that was removed and whether it was found. Also returns whether the node's
// augmentation changed.
func (n *node[K, V, Aux, A, AP]) remove(
	cfg *Config[K, Aux], k K,
) (outK K, outV V, found, changed bool) {
	i, found := n.find(cfg.cmp, k)
	if n.leaf {
		if found {
			outK, outV, _ = n.removeAt(i)
			return outK, outV, true, n.updateOn(cfg, Removal, outK, nil)
		}
		return outK, outV, false, false
	}
	if n.children[i].count <= MinEntries {
		// Child not large enough to remove from.
		n.rebalanceOrMerge(cfg, i)
		return n.remove(cfg, k) // redo
	}
	child := n.children[i]
	if found {
		// Replace the key being removed with the max key in our left child.
		outK, outV = n.keys[i], n.values[i]
		n.keys[i], n.values[i] = child.removeMax(cfg)
		return outK, outV, true, n.updateOn(cfg, Removal, outK, nil)
	}
	// Key is not in this node and child is large enough to remove from.
	outK, outV, found, changed = child.remove(cfg, k)
	if changed {
		changed = n.updateOn(cfg, Removal, outK, nil)
	}
	return outK, outV, found, changed
}

func (n *node[K, V, Aux, A, AP]) writeString(b *strings.Builder) {
	if n.leaf {
		for i := int16(0); i < n.count; i++ {
			if i != 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(b, "%v:%v", n.keys[i], n.values[i])
		}
		return
	}
	for i := int16(0); i <= n.count; i++ {
		b.WriteString("(")
		n.children[i].writeString(b)
		b.WriteString(")")
		if i < n.count {
			fmt.Fprintf(b, "%v:%v", n.keys[i], n.values[i])
		}
	}
}
