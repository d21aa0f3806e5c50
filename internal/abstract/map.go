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

import "strings"

// Map is an implementation of an augmented B-Tree.
//
// Map is not safe for concurrent use.
type Map[K, V, Aux, A any, AP Aug[K, Aux, A]] struct {
	root   *node[K, V, Aux, A, AP]
	length int
	cfg    Config[K, Aux]
}

// MakeMap constructs a new Map with the provided auxiliary data and
// comparison function.
func MakeMap[K, V, Aux, A any, AP Aug[K, Aux, A]](
	aux Aux, cmp func(K, K) int,
) Map[K, V, Aux, A, AP] {
	return Map[K, V, Aux, A, AP]{
		cfg: Config[K, Aux]{Aux: aux, cmp: cmp},
	}
}

// Reset removes all items from the Map.
func (t *Map[K, V, Aux, A, AP]) Reset() {
	t.root = nil
	t.length = 0
}

// Get returns the value associated with the key equal to k.
func (t *Map[K, V, Aux, A, AP]) Get(k K) (v V, found bool) {
	for n := t.root; n != nil; {
		i, found := n.find(t.cfg.cmp, k)
		if found {
			return n.values[i], true
		}
		if n.leaf {
			break
		}
		n = n.children[i]
	}
	return v, false
}

// Delete removes the key equal to k from the tree.
func (t *Map[K, V, Aux, A, AP]) Delete(k K) (removedK K, v V, found bool) {
	if t.root == nil || t.root.count == 0 {
		return removedK, v, false
	}
	if removedK, v, found, _ = t.root.remove(&t.cfg, k); found {
		t.length--
	}
	if t.root.count == 0 {
		if t.root.leaf {
			t.root = nil
		} else {
			t.root = t.root.children[0]
		}
	}
	return removedK, v, found
}

// Upsert adds the given key to the tree. If a key in the tree already equals
// the given one, it is replaced with the new key and value.
func (t *Map[K, V, Aux, A, AP]) Upsert(k K, v V) (replacedK K, replacedV V, replaced bool) {
	if t.root == nil {
		t.root = newLeafNode[K, V, Aux, A, AP]()
	} else if t.root.count >= MaxEntries {
		splitK, splitV, splitNode := t.root.split(&t.cfg, MaxEntries/2)
		newRoot := newInteriorNode[K, V, Aux, A, AP]()
		newRoot.count = 1
		newRoot.keys[0] = splitK
		newRoot.values[0] = splitV
		newRoot.children[0] = t.root
		newRoot.children[1] = splitNode
		newRoot.update(&t.cfg)
		t.root = newRoot
	}
	replacedK, replacedV, replaced, _ = t.root.insert(&t.cfg, k, v)
	if !replaced {
		t.length++
	}
	return replacedK, replacedV, replaced
}

// MakeIter returns a new Iterator object. It is not safe to continue using an
// Iterator after modifications are made to the tree. If modifications are made,
// create a new Iterator.
func (t *Map[K, V, Aux, A, AP]) MakeIter() Iterator[K, V, Aux, A, AP] {
	it := Iterator[K, V, Aux, A, AP]{r: t}
	it.Reset()
	return it
}

// Height returns the height of the tree.
func (t *Map[K, V, Aux, A, AP]) Height() int {
	if t.root == nil {
		return 0
	}
	h := 1
	n := t.root
	for !n.leaf {
		n = n.children[0]
		h++
	}
	return h
}

// Len returns the number of items currently in the tree.
func (t *Map[K, V, Aux, A, AP]) Len() int {
	return t.length
}

// String returns a string description of the tree. The format is
// similar to the https://en.wikipedia.org/wiki/Newick_format.
func (t *Map[K, V, Aux, A, AP]) String() string {
	if t.length == 0 {
		return ";"
	}
	var b strings.Builder
	t.root.writeString(&b)
	return b.String()
}
