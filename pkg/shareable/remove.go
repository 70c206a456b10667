// pkg/shareable/remove.go
package shareable

import "fmt"

// remove deletes an existing key. The returned bucket may be under half
// full; the parent repairs that by rebuilding itself.
func (b *bucket[K, V]) remove(k K, c *config[K]) *bucket[K, V] {
	i, ok := b.positionFor(k, c.compare)
	if b.isLeaf() {
		if !ok {
			panic(fmt.Sprintf("shareable: remove of missing key %v", k))
		}
		return newLeaf(removed(b.entries, i))
	}

	nc := b.child(i).remove(k, c)
	if nc.occupancy() >= c.half {
		return b.withChild(i, nc)
	}
	return b.rebuild(i, nc, c)
}

// rebuild recreates an inner bucket whose i-th child has become nc and
// dropped under half full. Every slot of every child is flattened into one
// sequence and re-chunked into evenly sized buckets. When the sequence fits
// in a single bucket that bucket is returned instead, lowering the subtree
// by one level; this only happens at the root.
func (b *bucket[K, V]) rebuild(i int, nc *bucket[K, V], c *config[K]) *bucket[K, V] {
	n := len(b.slots) + 1
	children := make([]*bucket[K, V], n)
	for j := range children {
		children[j] = b.child(j)
	}
	children[i] = nc

	// all children are at the same depth, so they are all leaves or all inner
	if nc.isLeaf() {
		var entries []Slot[K, V]
		for _, ch := range children {
			entries = append(entries, ch.entries...)
		}
		return packLeaves(entries, c)
	}

	// Grandchildren with their boundary keys. A child's greater bucket is
	// bounded by the key of that child in b; the last one needs no key.
	var units []Slot[K, *bucket[K, V]]
	for j, ch := range children {
		units = append(units, ch.slots...)
		var bound K
		if j < len(b.slots) {
			bound = b.slots[j].Key
		}
		units = append(units, Slot[K, *bucket[K, V]]{Key: bound, Value: ch.greater})
	}
	return packInners(units, c)
}

// packLeaves builds the smallest set of leaves holding entries, joined by
// one inner bucket. Leaf sizes differ by at most one.
func packLeaves[K, V any](entries []Slot[K, V], c *config[K]) *bucket[K, V] {
	if len(entries) <= c.capacity {
		return newLeaf(entries)
	}

	sizes := chunk(len(entries), c.capacity)
	slots := make([]Slot[K, *bucket[K, V]], 0, len(sizes)-1)
	start := 0
	for _, n := range sizes[:len(sizes)-1] {
		end := start + n
		slots = append(slots, Slot[K, *bucket[K, V]]{
			Key:   entries[end-1].Key,
			Value: newLeaf(entries[start:end:end]),
		})
		start = end
	}
	return newInner(slots, newLeaf(entries[start:]))
}

// packInners groups a sequence of sibling buckets into inner buckets of at
// most capacity+1 children each, joined by one inner bucket. The key of a
// unit is the boundary for the bucket it carries; the key of the last unit
// is unused.
func packInners[K, V any](units []Slot[K, *bucket[K, V]], c *config[K]) *bucket[K, V] {
	group := func(g []Slot[K, *bucket[K, V]]) *bucket[K, V] {
		last := len(g) - 1
		return newInner(g[:last:last], g[last].Value)
	}

	if len(units) <= c.capacity+1 {
		return group(units)
	}

	sizes := chunk(len(units), c.capacity+1)
	slots := make([]Slot[K, *bucket[K, V]], 0, len(sizes)-1)
	start := 0
	for _, n := range sizes[:len(sizes)-1] {
		end := start + n
		slots = append(slots, Slot[K, *bucket[K, V]]{
			Key:   units[end-1].Key,
			Value: group(units[start:end]),
		})
		start = end
	}
	return newInner(slots, group(units[start:]))
}

// chunk splits n items into ceil(n/limit) groups whose sizes differ by at
// most one. When n > limit every group holds more than limit/2 items.
func chunk(n, limit int) []int {
	k := (n + limit - 1) / limit
	sizes := make([]int, k)
	base, extra := n/k, n%k
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}
