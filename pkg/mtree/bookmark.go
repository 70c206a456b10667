// pkg/mtree/bookmark.go
package mtree

import "shareable/pkg/shareable"

// Bookmark is an immutable cursor over the (key, row) pairs of an MTree in
// lexicographic key order, rows of one key ascending.
//
// It pairs a cursor over one level with whatever the current Variant needs
// below it: a nested Bookmark for a compound variant, a cursor over the row
// set for a partial one, nothing for a single one. A Bookmark opened by
// PositionAt stays on its prefix; Next returns nil when the prefix would
// change.
type Bookmark[K any] struct {
	outer *shareable.Bookmark[K, Variant[K]]
	inner *Bookmark[K]
	rows  *shareable.Bookmark[int64, struct{}]
	// bound pins outer to its current key
	bound bool
	pos   int
}

// First opens a cursor at the smallest key, or returns nil if the tree is
// empty.
func (t MTree[K]) First() *Bookmark[K] {
	if t.count == 0 {
		return nil
	}
	return open(t.impl.dict.First(), false, 0)
}

// PositionAt opens a cursor over the entries whose key starts with prefix.
// It returns nil if there are none. An empty prefix behaves like First.
func (t MTree[K]) PositionAt(prefix []K) *Bookmark[K] {
	if len(prefix) == 0 {
		return t.First()
	}
	t.checkLen(prefix)
	return t.positionAt(prefix)
}

func (t MTree[K]) positionAt(prefix []K) *Bookmark[K] {
	if len(prefix) == 0 {
		return t.First()
	}
	outer := t.impl.dict.Seek(prefix[0])
	if outer == nil || t.impl.dict.Compare(outer.Key(), prefix[0]) != 0 {
		return nil
	}
	if len(prefix) == 1 {
		return open(outer, true, 0)
	}

	inner := outer.Value().sub.positionAt(prefix[1:])
	if inner == nil {
		return nil
	}
	return &Bookmark[K]{outer: outer, inner: inner, bound: true}
}

// open positions a cursor at the first row under the entry at outer.
func open[K any](outer *shareable.Bookmark[K, Variant[K]], bound bool, pos int) *Bookmark[K] {
	b := &Bookmark[K]{outer: outer, bound: bound, pos: pos}
	switch v := outer.Value(); v.kind {
	case KindCompound:
		b.inner = v.sub.First()
	case KindPartial:
		b.rows = v.rows.First()
	}
	return b
}

// Next returns a cursor at the following row, or nil at the end.
func (b *Bookmark[K]) Next() *Bookmark[K] {
	switch {
	case b.inner != nil:
		if n := b.inner.Next(); n != nil {
			return &Bookmark[K]{outer: b.outer, inner: n, bound: b.bound, pos: b.pos + 1}
		}
	case b.rows != nil:
		if n := b.rows.Next(); n != nil {
			return &Bookmark[K]{outer: b.outer, rows: n, bound: b.bound, pos: b.pos + 1}
		}
	}

	if b.bound {
		return nil
	}
	o := b.outer.Next()
	if o == nil {
		return nil
	}
	return open(o, false, b.pos+1)
}

// Key returns the full key at the cursor. The slice is freshly allocated.
func (b *Bookmark[K]) Key() []K {
	var key []K
	for c := b; c != nil; c = c.inner {
		key = append(key, c.outer.Key())
	}
	return key
}

// Row returns the row id at the cursor.
func (b *Bookmark[K]) Row() int64 {
	c := b
	for c.inner != nil {
		c = c.inner
	}
	if c.rows != nil {
		return c.rows.Key()
	}
	return c.outer.Value().row
}

// Position returns the number of rows the cursor has passed since it was
// opened.
func (b *Bookmark[K]) Position() int {
	return b.pos
}
