// pkg/mtree/itree.go
package mtree

import "shareable/pkg/shareable"

// ITree is one level of an MTree: a dictionary from a key component to the
// Variant holding whatever lies below it.
type ITree[K any] struct {
	// kind is the kind a fresh entry at this level starts as: compound above
	// the last level, single on it.
	kind Kind
	dict shareable.Dict[K, Variant[K]]
}

// Len returns the number of distinct key components at this level.
func (it ITree[K]) Len() int { return it.dict.Count() }

// Dict exposes the underlying dictionary, e.g. for structural inspection.
func (it ITree[K]) Dict() shareable.Dict[K, Variant[K]] { return it.dict }

func (it ITree[K]) lookup(k K) (Variant[K], bool) {
	return it.dict.Lookup(k)
}

func (it ITree[K]) with(k K, v Variant[K]) ITree[K] {
	return ITree[K]{kind: it.kind, dict: it.dict.Add(k, v)}
}

func (it ITree[K]) without(k K) ITree[K] {
	return ITree[K]{kind: it.kind, dict: it.dict.Remove(k)}
}

// shape is shared by every subtree of one MTree: the level policies and the
// prebuilt empty dictionaries per level.
type shape[K any] struct {
	levels []TreeInfo
	isNull func(K) bool
	empty  []ITree[K]
	noRows rowSet
}

func newShape[K any](compare func(a, b K) int, levels []TreeInfo, o options[K]) *shape[K] {
	s := &shape[K]{
		levels: levels,
		isNull: o.isNull,
		empty:  make([]ITree[K], len(levels)),
		noRows: shareable.New[int64, struct{}](o.dictOpts...),
	}
	for i, ti := range levels {
		cmp := compare
		if ti.Descending {
			cmp = func(a, b K) int { return compare(b, a) }
		}
		s.empty[i] = ITree[K]{
			kind: s.kindAt(i),
			dict: shareable.NewFunc[K, Variant[K]](cmp, o.dictOpts...),
		}
	}
	return s
}

// kindAt is the kind a fresh entry at level i gets.
func (s *shape[K]) kindAt(i int) Kind {
	if i < len(s.levels)-1 {
		return KindCompound
	}
	return KindSingle
}
