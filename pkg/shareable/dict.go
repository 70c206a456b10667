// pkg/shareable/dict.go
package shareable

import (
	"cmp"
	"iter"
)

// Dict is an immutable ordered map from K to V.
//
// Dict is a small value type: copying it copies a root pointer. Every
// mutating method returns a new Dict and leaves the receiver, and every
// bookmark taken from it, unchanged. The zero Dict is empty and can be
// read, but it has no ordering, so Add on it panics; build trees with New or
// NewFunc.
type Dict[K, V any] struct {
	root *bucket[K, V]
	cfg  *config[K]
}

// New returns an empty Dict ordered by the natural order of K.
func New[K cmp.Ordered, V any](opts ...Option) Dict[K, V] {
	return Dict[K, V]{cfg: newConfig(cmp.Compare[K], opts)}
}

// NewFunc returns an empty Dict ordered by compare, which must return a
// negative number, zero or a positive number as a sorts before, equal to or
// after b.
func NewFunc[K, V any](compare func(a, b K) int, opts ...Option) Dict[K, V] {
	return Dict[K, V]{cfg: newConfig(compare, opts)}
}

// Empty returns the empty tree with the same ordering and capacity as d.
// It allocates nothing.
func (d Dict[K, V]) Empty() Dict[K, V] {
	return Dict[K, V]{cfg: d.cfg}
}

// Count returns the number of entries.
func (d Dict[K, V]) Count() int {
	if d.root == nil {
		return 0
	}
	return d.root.total
}

// Capacity returns the maximum number of slots per bucket.
func (d Dict[K, V]) Capacity() int {
	if d.cfg == nil {
		return DefaultCapacity
	}
	return d.cfg.capacity
}

// Compare orders two keys the way d does.
func (d Dict[K, V]) Compare(a, b K) int {
	return d.mustConfig().compare(a, b)
}

// Add returns a tree in which k maps to v, inserting or replacing.
func (d Dict[K, V]) Add(k K, v V) Dict[K, V] {
	c := d.mustConfig()
	switch {
	case d.root == nil:
		return Dict[K, V]{root: newLeaf([]Slot[K, V]{{Key: k, Value: v}}), cfg: c}
	case d.root.contains(k, c.compare):
		return Dict[K, V]{root: d.root.update(k, v, c), cfg: c}
	case d.root.full(c):
		// split before descending, then retry against the taller tree
		return Dict[K, V]{root: d.root.split(c), cfg: c}.Add(k, v)
	default:
		return Dict[K, V]{root: d.root.add(k, v, c), cfg: c}
	}
}

// Remove returns a tree without k. If k is absent d itself is returned.
func (d Dict[K, V]) Remove(k K) Dict[K, V] {
	if d.root == nil || !d.root.contains(k, d.cfg.compare) {
		return d
	}
	if d.root.total == 1 {
		return d.Empty()
	}
	return Dict[K, V]{root: d.root.remove(k, d.cfg), cfg: d.cfg}
}

// Contains reports whether k is present.
func (d Dict[K, V]) Contains(k K) bool {
	if d.root == nil {
		return false
	}
	return d.root.contains(k, d.cfg.compare)
}

// Lookup returns the value stored under k. When k is absent it returns the
// zero V and false.
func (d Dict[K, V]) Lookup(k K) (V, bool) {
	if d.root == nil {
		var zero V
		return zero, false
	}
	return d.root.lookup(k, d.cfg.compare)
}

// First opens an ascending cursor at the smallest key, or returns nil if the
// tree is empty.
func (d Dict[K, V]) First() *Bookmark[K, V] {
	if d.root == nil {
		return nil
	}
	return descend(d.root, nil)
}

// Seek opens an ascending cursor at the first entry whose key is >= k, or
// returns nil if there is none.
func (d Dict[K, V]) Seek(k K) *Bookmark[K, V] {
	if d.root == nil {
		return nil
	}

	var parent *Bookmark[K, V]
	b := d.root
	for !b.isLeaf() {
		i, _ := b.positionFor(k, d.cfg.compare)
		parent = &Bookmark[K, V]{bucket: b, pos: i, parent: parent}
		b = b.child(i)
	}

	i, _ := b.positionFor(k, d.cfg.compare)
	if i < len(b.entries) {
		return &Bookmark[K, V]{bucket: b, pos: i, parent: parent}
	}
	// every key in this leaf is smaller; the successor lives further right
	return (&Bookmark[K, V]{bucket: b, pos: i - 1, parent: parent}).Next()
}

// All returns an iterator over the entries in ascending key order.
func (d Dict[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for b := d.First(); b != nil; b = b.Next() {
			if !yield(b.Key(), b.Value()) {
				return
			}
		}
	}
}

// Keys returns the keys in ascending order.
func (d Dict[K, V]) Keys() []K {
	keys := make([]K, 0, d.Count())
	for b := d.First(); b != nil; b = b.Next() {
		keys = append(keys, b.Key())
	}
	return keys
}

// Height returns the number of bucket levels, 0 for an empty tree.
func (d Dict[K, V]) Height() int {
	h := 0
	for b := d.root; b != nil; b = b.greater {
		h++
	}
	return h
}

// Same reports whether d and other are the same snapshot, i.e. share the
// same root bucket.
func (d Dict[K, V]) Same(other Dict[K, V]) bool {
	return d.root == other.root
}

func (d Dict[K, V]) mustConfig() *config[K] {
	if d.cfg == nil {
		panic("shareable: Dict has no ordering, build it with New or NewFunc")
	}
	return d.cfg
}
