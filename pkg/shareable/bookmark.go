// pkg/shareable/bookmark.go
package shareable

// Bookmark is an immutable in-order cursor over a Dict.
//
// It is a stack of frames linked through parent, from the current leaf up
// to the root. Each frame records a bucket and a position in it; for inner
// frames the position selects the child being visited, with count() meaning
// the greater child. Next returns a new Bookmark, so a Bookmark may be kept
// and resumed at will, but a walk cannot go backwards: call First again for
// a fresh pass.
type Bookmark[K, V any] struct {
	bucket *bucket[K, V]
	pos    int
	parent *Bookmark[K, V]
}

// descend pushes the leftmost path below b, returning the leaf frame.
func descend[K, V any](b *bucket[K, V], parent *Bookmark[K, V]) *Bookmark[K, V] {
	for !b.isLeaf() {
		parent = &Bookmark[K, V]{bucket: b, pos: 0, parent: parent}
		b = b.child(0)
	}
	return &Bookmark[K, V]{bucket: b, pos: 0, parent: parent}
}

// Next returns a cursor at the following entry, or nil at the end.
func (bm *Bookmark[K, V]) Next() *Bookmark[K, V] {
	if bm.pos+1 < len(bm.bucket.entries) {
		return &Bookmark[K, V]{bucket: bm.bucket, pos: bm.pos + 1, parent: bm.parent}
	}

	// leaf exhausted: pop until an ancestor has a child to the right
	for p := bm.parent; p != nil; p = p.parent {
		if p.pos < len(p.bucket.slots) {
			next := &Bookmark[K, V]{bucket: p.bucket, pos: p.pos + 1, parent: p.parent}
			return descend(next.bucket.child(next.pos), next)
		}
	}
	return nil
}

// Key returns the key at the cursor.
func (bm *Bookmark[K, V]) Key() K {
	return bm.bucket.entries[bm.pos].Key
}

// Value returns the value at the cursor.
func (bm *Bookmark[K, V]) Value() V {
	return bm.bucket.entries[bm.pos].Value
}

// Slot returns the entry at the cursor.
func (bm *Bookmark[K, V]) Slot() Slot[K, V] {
	return bm.bucket.entries[bm.pos]
}

// Position returns the 0-based rank of the current entry in key order.
// It sums, at every level, the sizes of the subtrees left of the cursor.
func (bm *Bookmark[K, V]) Position() int {
	r := 0
	for f := bm; f != nil; f = f.parent {
		if f.bucket.isLeaf() {
			r += f.pos
			continue
		}
		for i := 0; i < f.pos; i++ {
			r += f.bucket.slots[i].Value.total
		}
	}
	return r
}
