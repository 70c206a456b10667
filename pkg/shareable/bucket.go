// pkg/shareable/bucket.go
package shareable

import "fmt"

// Slot is one ordered key/value pair held in a bucket.
type Slot[K, V any] struct {
	Key   K
	Value V
}

// bucket is an immutable tree node. It is either a leaf or an inner bucket:
//   - leaf:  entries holds the key/value pairs, slots and greater are nil
//   - inner: slots holds (boundary key, child) pairs, greater holds the
//     child for keys above every boundary; entries is nil
//
// Slices are never written after the bucket is built, so buckets may share
// backing arrays and any number of trees may reference the same bucket.
type bucket[K, V any] struct {
	entries []Slot[K, V]
	slots   []Slot[K, *bucket[K, V]]
	greater *bucket[K, V]

	// total is the number of entries in the subtree rooted here
	total int
}

func newLeaf[K, V any](entries []Slot[K, V]) *bucket[K, V] {
	return &bucket[K, V]{
		entries: entries,
		total:   len(entries),
	}
}

func newInner[K, V any](slots []Slot[K, *bucket[K, V]], greater *bucket[K, V]) *bucket[K, V] {
	total := greater.total
	for _, s := range slots {
		total += s.Value.total
	}
	return &bucket[K, V]{
		slots:   slots,
		greater: greater,
		total:   total,
	}
}

func (b *bucket[K, V]) isLeaf() bool {
	return b.greater == nil
}

// count is the number of keyed slots in the bucket.
func (b *bucket[K, V]) count() int {
	if b.isLeaf() {
		return len(b.entries)
	}
	return len(b.slots)
}

// occupancy is the number of entries of a leaf or the fanout of an inner
// bucket. Non-root buckets keep it at or above half the capacity.
func (b *bucket[K, V]) occupancy() int {
	if b.isLeaf() {
		return len(b.entries)
	}
	return len(b.slots) + 1
}

func (b *bucket[K, V]) full(c *config[K]) bool {
	return b.count() == c.capacity
}

func (b *bucket[K, V]) key(i int) K {
	if b.isLeaf() {
		return b.entries[i].Key
	}
	return b.slots[i].Key
}

// child returns the i-th child of an inner bucket; i == count() selects
// the greater child.
func (b *bucket[K, V]) child(i int) *bucket[K, V] {
	if i == len(b.slots) {
		return b.greater
	}
	return b.slots[i].Value
}

// positionFor binary searches the keyed slots. It returns the first index
// whose key is >= k and whether that key equals k. For an inner bucket the
// index selects the child that may contain k.
func (b *bucket[K, V]) positionFor(k K, compare func(a, b K) int) (int, bool) {
	lo, hi := 0, b.count()
	for lo < hi {
		mid := (lo + hi) >> 1
		c := compare(k, b.key(mid))
		if c == 0 {
			return mid, true
		}
		if c > 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return hi, false
}

func (b *bucket[K, V]) lookup(k K, compare func(a, b K) int) (V, bool) {
	for !b.isLeaf() {
		i, _ := b.positionFor(k, compare)
		b = b.child(i)
	}
	i, ok := b.positionFor(k, compare)
	if !ok {
		var zero V
		return zero, false
	}
	return b.entries[i].Value, true
}

func (b *bucket[K, V]) contains(k K, compare func(a, b K) int) bool {
	_, ok := b.lookup(k, compare)
	return ok
}

// withChild returns a copy of an inner bucket whose i-th child is replaced.
// The boundary key is kept: it stays a valid upper bound for the new child.
func (b *bucket[K, V]) withChild(i int, nc *bucket[K, V]) *bucket[K, V] {
	if i == len(b.slots) {
		return newInner(b.slots, nc)
	}
	return newInner(replaced(b.slots, i, Slot[K, *bucket[K, V]]{Key: b.slots[i].Key, Value: nc}), b.greater)
}

// add inserts a new key. The bucket must not be full and k must be absent;
// a full child on the search path is split before descending into it.
func (b *bucket[K, V]) add(k K, v V, c *config[K]) *bucket[K, V] {
	i, _ := b.positionFor(k, c.compare)
	if b.isLeaf() {
		return newLeaf(inserted(b.entries, i, Slot[K, V]{Key: k, Value: v}))
	}

	child := b.child(i)
	if child.full(c) {
		return b.splitChild(i, c).add(k, v, c)
	}
	return b.withChild(i, child.add(k, v, c))
}

// update replaces the value stored under an existing key.
func (b *bucket[K, V]) update(k K, v V, c *config[K]) *bucket[K, V] {
	i, ok := b.positionFor(k, c.compare)
	if b.isLeaf() {
		if !ok {
			panic(fmt.Sprintf("shareable: update of missing key %v", k))
		}
		return newLeaf(replaced(b.entries, i, Slot[K, V]{Key: k, Value: v}))
	}
	return b.withChild(i, b.child(i).update(k, v, c))
}

// lowHalf returns the lower half of a full bucket together with the
// boundary key that separates it from the upper half.
func (b *bucket[K, V]) lowHalf(c *config[K]) Slot[K, *bucket[K, V]] {
	m := c.half
	if b.isLeaf() {
		return Slot[K, *bucket[K, V]]{
			Key:   b.entries[m-1].Key,
			Value: newLeaf(b.entries[:m:m]),
		}
	}
	// the child under slot m-1 becomes the greater child of the low half
	return Slot[K, *bucket[K, V]]{
		Key:   b.slots[m-1].Key,
		Value: newInner(b.slots[:m-1:m-1], b.slots[m-1].Value),
	}
}

// topHalf returns the upper half of a full bucket.
func (b *bucket[K, V]) topHalf(c *config[K]) *bucket[K, V] {
	m := c.half
	if b.isLeaf() {
		return newLeaf(b.entries[m:])
	}
	return newInner(b.slots[m:], b.greater)
}

// split turns a full bucket into a two-way inner bucket one level higher.
func (b *bucket[K, V]) split(c *config[K]) *bucket[K, V] {
	return newInner([]Slot[K, *bucket[K, V]]{b.lowHalf(c)}, b.topHalf(c))
}

// splitChild splits the full i-th child in place, adding one keyed slot.
func (b *bucket[K, V]) splitChild(i int, c *config[K]) *bucket[K, V] {
	child := b.child(i)
	low, top := child.lowHalf(c), child.topHalf(c)
	if i == len(b.slots) {
		return newInner(inserted(b.slots, i, low), top)
	}

	slots := make([]Slot[K, *bucket[K, V]], 0, len(b.slots)+1)
	slots = append(slots, b.slots[:i]...)
	slots = append(slots, low, Slot[K, *bucket[K, V]]{Key: b.slots[i].Key, Value: top})
	slots = append(slots, b.slots[i+1:]...)
	return newInner(slots, b.greater)
}

// Slice helpers. Each returns a freshly allocated slice so that the input,
// which may be shared with other buckets, is never written.

func inserted[T any](s []T, i int, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}

func replaced[T any](s []T, i int, v T) []T {
	out := make([]T, len(s))
	copy(out, s)
	out[i] = v
	return out
}

func removed[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
