// pkg/shareable/verify.go
package shareable

import (
	"github.com/pingcap/errors"
)

// Stats describes the shape of a tree.
type Stats struct {
	Count  int // entries
	Height int // bucket levels, 0 when empty
	Leaves int
	Inners int
}

// Stats walks the whole tree and counts its buckets.
func (d Dict[K, V]) Stats() Stats {
	s := Stats{Count: d.Count(), Height: d.Height()}
	d.Walk(func(_ int, leaf bool, _ []K) bool {
		if leaf {
			s.Leaves++
		} else {
			s.Inners++
		}
		return true
	})
	return s
}

// Walk visits every bucket in pre-order. For each bucket fn receives its
// depth (the root is 0), whether it is a leaf, and its keys: the entry keys
// of a leaf or the boundary keys of an inner bucket. The keys slice must not
// be retained. Returning false from fn skips the bucket's children.
func (d Dict[K, V]) Walk(fn func(level int, leaf bool, keys []K) bool) {
	if d.root == nil {
		return
	}
	var keys []K
	var visit func(b *bucket[K, V], level int)
	visit = func(b *bucket[K, V], level int) {
		keys = keys[:0]
		for i := 0; i < b.count(); i++ {
			keys = append(keys, b.key(i))
		}
		if !fn(level, b.isLeaf(), keys) || b.isLeaf() {
			return
		}
		for i := 0; i <= len(b.slots); i++ {
			visit(b.child(i), level+1)
		}
	}
	visit(d.root, 0)
}

// Verify checks the structural invariants of the tree and reports the first
// violation found:
//   - keys ascend strictly inside every bucket and across the whole tree
//   - every key under a boundary is <= that boundary and > the previous one
//   - every cached subtree total matches the entries below it
//   - non-root buckets are at least half full, no bucket is over capacity
//   - all leaves are at the same depth
func (d Dict[K, V]) Verify() error {
	if d.root == nil {
		return nil
	}
	v := verifier[K, V]{cfg: d.cfg, leafDepth: -1}
	_, err := v.check(d.root, 0, nil, nil)
	return err
}

type verifier[K, V any] struct {
	cfg       *config[K]
	leafDepth int
}

// check verifies the subtree at b whose keys must lie in (lo, hi]; nil
// bounds are open. It returns the number of entries below b.
func (v *verifier[K, V]) check(b *bucket[K, V], depth int, lo, hi *K) (int, error) {
	cmp := v.cfg.compare

	if b.count() > v.cfg.capacity {
		return 0, errors.Errorf("bucket at depth %d holds %d slots, capacity is %d", depth, b.count(), v.cfg.capacity)
	}
	if depth > 0 && b.occupancy() < v.cfg.half {
		return 0, errors.Errorf("bucket at depth %d has occupancy %d, below %d", depth, b.occupancy(), v.cfg.half)
	}
	for i := 0; i < b.count(); i++ {
		k := b.key(i)
		if i > 0 {
			if prev := b.key(i - 1); cmp(prev, k) >= 0 {
				return 0, errors.Errorf("keys out of order at depth %d: %v before %v", depth, prev, k)
			}
		}
		if lo != nil && cmp(k, *lo) <= 0 {
			return 0, errors.Errorf("key %v at depth %d not above lower bound %v", k, depth, *lo)
		}
		if hi != nil && cmp(k, *hi) > 0 {
			return 0, errors.Errorf("key %v at depth %d above boundary %v", k, depth, *hi)
		}
	}

	if b.isLeaf() {
		if len(b.entries) == 0 {
			return 0, errors.Errorf("empty leaf at depth %d", depth)
		}
		if v.leafDepth < 0 {
			v.leafDepth = depth
		} else if v.leafDepth != depth {
			return 0, errors.Errorf("leaf at depth %d, expected %d", depth, v.leafDepth)
		}
		if b.total != len(b.entries) {
			return 0, errors.Errorf("leaf total %d, holds %d entries", b.total, len(b.entries))
		}
		return b.total, nil
	}

	if depth == 0 && b.occupancy() < 2 {
		return 0, errors.New("inner root with a single child")
	}
	sum := 0
	for i := 0; i <= len(b.slots); i++ {
		clo, chi := lo, hi
		if i > 0 {
			clo = &b.slots[i-1].Key
		}
		if i < len(b.slots) {
			chi = &b.slots[i].Key
		}
		n, err := v.check(b.child(i), depth+1, clo, chi)
		if err != nil {
			return 0, errors.Trace(err)
		}
		sum += n
	}
	if sum != b.total {
		return 0, errors.Errorf("inner total %d at depth %d, children hold %d", b.total, depth, sum)
	}
	return sum, nil
}
