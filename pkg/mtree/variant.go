// pkg/mtree/variant.go
package mtree

import "shareable/pkg/shareable"

// Kind tags the payload of a Variant.
type Kind uint8

const (
	// KindSingle holds exactly one row id.
	KindSingle Kind = iota
	// KindPartial holds a set of row ids sharing one full key.
	KindPartial
	// KindCompound holds the tree for the remaining key components.
	KindCompound
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindPartial:
		return "partial"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// rowSet is an ordered set of row ids.
type rowSet = shareable.Dict[int64, struct{}]

// Variant is the value stored under one key component.
type Variant[K any] struct {
	kind Kind
	row  int64
	rows rowSet
	sub  *MTree[K]
}

func single[K any](row int64) Variant[K] {
	return Variant[K]{kind: KindSingle, row: row}
}

func partial[K any](rows rowSet) Variant[K] {
	return Variant[K]{kind: KindPartial, rows: rows}
}

func compound[K any](sub MTree[K]) Variant[K] {
	return Variant[K]{kind: KindCompound, sub: &sub}
}

// Kind returns the payload tag.
func (v Variant[K]) Kind() Kind { return v.kind }

// Row returns the row id of a single variant.
func (v Variant[K]) Row() (int64, bool) {
	return v.row, v.kind == KindSingle
}

// Rows returns the row ids held directly by a single or partial variant in
// ascending order, or nil for a compound one.
func (v Variant[K]) Rows() []int64 {
	switch v.kind {
	case KindSingle:
		return []int64{v.row}
	case KindPartial:
		return v.rows.Keys()
	}
	return nil
}

// Sub returns the nested tree of a compound variant.
func (v Variant[K]) Sub() (MTree[K], bool) {
	if v.kind != KindCompound {
		return MTree[K]{}, false
	}
	return *v.sub, true
}

// size is the number of rows under the variant.
func (v Variant[K]) size() int {
	switch v.kind {
	case KindSingle:
		return 1
	case KindPartial:
		return v.rows.Count()
	default:
		return v.sub.count
	}
}

func (v Variant[K]) hasRow(row int64) bool {
	switch v.kind {
	case KindSingle:
		return v.row == row
	case KindPartial:
		return v.rows.Contains(row)
	}
	return false
}
