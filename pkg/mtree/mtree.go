// pkg/mtree/mtree.go
package mtree

import (
	"fmt"
	"iter"

	"github.com/pingcap/errors"

	"shareable/pkg/shareable"
)

var (
	ErrNoLevels       = errors.New("mtree: at least one key level is required")
	ErrDuplicateLevel = errors.New("mtree: only the last key level may allow duplicates")
)

// Option configures an MTree at construction time.
type Option[K any] func(*options[K])

type options[K any] struct {
	isNull   func(K) bool
	dictOpts []shareable.Option
}

// WithNullKey sets the predicate deciding which key components are null.
// Without it only missing components are null.
func WithNullKey[K any](isNull func(K) bool) Option[K] {
	return func(o *options[K]) {
		o.isNull = isNull
	}
}

// WithCapacity sets the bucket capacity of every dictionary in the tree.
func WithCapacity[K any](n int) Option[K] {
	return func(o *options[K]) {
		o.dictOpts = append(o.dictOpts, shareable.WithCapacity(n))
	}
}

// MTree is an immutable multi-level index from composite keys to row ids.
//
// Level i is an ITree keyed by the i-th key component. Above the last level
// every value is a compound Variant holding the subtree for the remaining
// components; at the last level a value is a single row id, or a set of row
// ids when that level allows duplicates. Like shareable.Dict, every
// mutation returns a new MTree sharing all untouched branches.
type MTree[K any] struct {
	shape *shape[K]
	depth int
	impl  ITree[K]
	count int
}

// New returns an empty MTree with one level per TreeInfo.
func New[K any](compare func(a, b K) int, levels []TreeInfo, opts ...Option[K]) (MTree[K], error) {
	if len(levels) == 0 {
		return MTree[K]{}, ErrNoLevels
	}
	for i, ti := range levels[:len(levels)-1] {
		if ti.OnDuplicate == Allow {
			return MTree[K]{}, errors.Annotatef(ErrDuplicateLevel, "level %d (%s)", i, ti.Name)
		}
	}

	var o options[K]
	for _, opt := range opts {
		opt(&o)
	}
	s := newShape(compare, append([]TreeInfo(nil), levels...), o)
	return s.tree(0), nil
}

// MustNew is like New but panics on an invalid level list.
func MustNew[K any](compare func(a, b K) int, levels []TreeInfo, opts ...Option[K]) MTree[K] {
	t, err := New(compare, levels, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (s *shape[K]) tree(depth int) MTree[K] {
	return MTree[K]{shape: s, depth: depth, impl: s.empty[depth]}
}

// Count returns the number of rows in the tree.
func (t MTree[K]) Count() int { return t.count }

// Levels returns the key level policies below and including this tree.
func (t MTree[K]) Levels() []TreeInfo {
	if t.shape == nil {
		return nil
	}
	return t.shape.levels[t.depth:]
}

// Top returns the ITree of the first key component.
func (t MTree[K]) Top() ITree[K] { return t.impl }

// Empty returns the empty tree with the same levels.
func (t MTree[K]) Empty() MTree[K] {
	return t.shape.tree(t.depth)
}

func (t MTree[K]) width() int {
	return len(t.shape.levels) - t.depth
}

func (t MTree[K]) checkLen(key []K) {
	if t.shape == nil {
		panic("mtree: MTree has no levels, build it with New")
	}
	if len(key) > t.width() {
		panic(fmt.Sprintf("mtree: key has %d components, tree has %d levels", len(key), t.width()))
	}
}

// null reports whether component i of a key with the given components is
// null. Components past the end of the key are missing, hence null.
func (t MTree[K]) null(key []K, i int) bool {
	if i >= len(key) {
		return true
	}
	return t.shape.isNull != nil && t.shape.isNull(key[i])
}

// Add inserts row under key and reports the outcome. A key with fewer
// components than levels has its missing components treated as null; a nil
// key is the null key. On Ignore or Disallow the receiver is returned
// unchanged:
//   - a null component at level i is subject to level i's OnNullKey
//   - an existing full key is subject to the last level's OnDuplicate
//
// Adding a row that is already stored under key returns the receiver and
// Allow.
func (t MTree[K]) Add(key []K, row int64) (MTree[K], Behaviour) {
	t.checkLen(key)

	full := make([]K, t.width())
	copy(full, key)
	for i := range full {
		if t.null(key, i) {
			if b := t.shape.levels[t.depth+i].OnNullKey; b != Allow {
				return t, b
			}
		}
	}

	if v, ok := t.find(full); ok {
		if b := t.shape.levels[len(t.shape.levels)-1].OnDuplicate; b != Allow {
			return t, b
		}
		if v.hasRow(row) {
			return t, Allow
		}
	}
	return t.insert(full, row), Allow
}

// insert adds a row under a full key; policies were checked by Add.
func (t MTree[K]) insert(key []K, row int64) MTree[K] {
	s := t.shape
	k := key[0]
	old, ok := t.impl.lookup(k)

	var v Variant[K]
	switch {
	case !ok && t.impl.kind == KindCompound:
		v = compound(s.tree(t.depth+1).insert(key[1:], row))
	case !ok:
		v = single[K](row)
	case old.kind == KindCompound:
		v = compound(old.sub.insert(key[1:], row))
	case old.kind == KindSingle:
		v = partial[K](s.noRows.Add(old.row, struct{}{}).Add(row, struct{}{}))
	default:
		v = partial[K](old.rows.Add(row, struct{}{}))
	}
	return MTree[K]{shape: s, depth: t.depth, impl: t.impl.with(k, v), count: t.count + 1}
}

// find descends along a prefix and returns the variant stored at its last
// component.
func (t MTree[K]) find(key []K) (Variant[K], bool) {
	if t.shape == nil || len(key) == 0 {
		return Variant[K]{}, false
	}
	v, ok := t.impl.lookup(key[0])
	if !ok || len(key) == 1 {
		return v, ok
	}
	if v.kind != KindCompound {
		return Variant[K]{}, false
	}
	return v.sub.find(key[1:])
}

// Contains reports whether some row is stored under key, which may be a
// prefix. The empty key matches any non-empty tree.
func (t MTree[K]) Contains(key []K) bool {
	if len(key) == 0 {
		return t.count > 0
	}
	t.checkLen(key)
	_, ok := t.find(key)
	return ok
}

// Rows returns the rows stored under key, which may be a prefix, in key
// order and then ascending row order.
func (t MTree[K]) Rows(key []K) []int64 {
	var rows []int64
	for b := t.PositionAt(key); b != nil; b = b.Next() {
		rows = append(rows, b.Row())
	}
	return rows
}

// Remove deletes every row under key, a full key or a prefix. Emptied
// subtrees are dropped. If nothing matches the receiver is returned.
func (t MTree[K]) Remove(key []K) MTree[K] {
	if len(key) == 0 {
		return t
	}
	t.checkLen(key)
	nt, _ := t.remove(key)
	return nt
}

func (t MTree[K]) remove(key []K) (MTree[K], int) {
	v, ok := t.impl.lookup(key[0])
	if !ok {
		return t, 0
	}
	if len(key) == 1 {
		n := v.size()
		return t.replace(key[0], nil, n), n
	}

	sub, n := v.sub.remove(key[1:])
	if n == 0 {
		return t, 0
	}
	if sub.count == 0 {
		return t.replace(key[0], nil, n), n
	}
	nv := compound(sub)
	return t.replace(key[0], &nv, n), n
}

// RemoveRow deletes one row stored under a full key. A partial set keeps
// its remaining rows; the entry goes when the last row does.
func (t MTree[K]) RemoveRow(key []K, row int64) MTree[K] {
	t.checkLen(key)
	if len(key) != t.width() {
		return t
	}
	nt, _ := t.removeRow(key, row)
	return nt
}

func (t MTree[K]) removeRow(key []K, row int64) (MTree[K], bool) {
	v, ok := t.impl.lookup(key[0])
	if !ok {
		return t, false
	}

	var nv Variant[K]
	switch v.kind {
	case KindCompound:
		sub, removed := v.sub.removeRow(key[1:], row)
		if !removed {
			return t, false
		}
		if sub.count == 0 {
			return t.replace(key[0], nil, 1), true
		}
		nv = compound(sub)
	case KindPartial:
		if !v.rows.Contains(row) {
			return t, false
		}
		rows := v.rows.Remove(row)
		if rows.Count() == 0 {
			return t.replace(key[0], nil, 1), true
		}
		nv = partial[K](rows)
	default:
		if v.row != row {
			return t, false
		}
		return t.replace(key[0], nil, 1), true
	}
	return t.replace(key[0], &nv, 1), true
}

// replace stores v under k, or removes k when v is nil, and takes removed
// rows off the count.
func (t MTree[K]) replace(k K, v *Variant[K], removed int) MTree[K] {
	var impl ITree[K]
	if v == nil {
		impl = t.impl.without(k)
	} else {
		impl = t.impl.with(k, *v)
	}
	return MTree[K]{shape: t.shape, depth: t.depth, impl: impl, count: t.count - removed}
}

// All returns an iterator over every (key, row) pair in key order.
func (t MTree[K]) All() iter.Seq2[[]K, int64] {
	return func(yield func([]K, int64) bool) {
		for b := t.First(); b != nil; b = b.Next() {
			if !yield(b.Key(), b.Row()) {
				return
			}
		}
	}
}
