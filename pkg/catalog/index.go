// pkg/catalog/index.go
package catalog

import (
	"github.com/pingcap/errors"

	"shareable/pkg/mtree"
	"shareable/pkg/types"
)

// Index is an index definition together with its entries: a multi-level
// tree with one level per indexed column, mapping column values to row ids.
type Index struct {
	Def IndexDef

	// columns holds the table position of each indexed column
	columns []int
	tree    mtree.MTree[types.Value]
}

func newIndex(def IndexDef, table *TableDef, capacity int) (*Index, error) {
	if len(def.Columns) == 0 {
		return nil, errors.Annotatef(ErrNoIndexColumns, "index %s", def.Name)
	}

	levels := make([]mtree.TreeInfo, len(def.Columns))
	columns := make([]int, len(def.Columns))
	for i, name := range def.Columns {
		col, pos := table.GetColumn(name)
		if col == nil {
			return nil, errors.Annotatef(ErrColumnNotFound, "index %s: column %s.%s", def.Name, table.Name, name)
		}
		columns[i] = pos

		ti := mtree.TreeInfo{Name: name, OnDuplicate: mtree.Disallow, OnNullKey: mtree.Allow}
		if col.NotNull || col.PrimaryKey {
			ti.OnNullKey = mtree.Disallow
		}
		if i == len(def.Columns)-1 && !def.Unique {
			ti.OnDuplicate = mtree.Allow
		}
		levels[i] = ti
	}

	tree, err := mtree.New(types.Compare, levels,
		mtree.WithNullKey(types.Value.IsNull),
		mtree.WithCapacity[types.Value](capacity))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Index{Def: def, columns: columns, tree: tree}, nil
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return ix.tree.Count() }

func (ix *Index) key(row []types.Value) []types.Value {
	key := make([]types.Value, len(ix.columns))
	for i, pos := range ix.columns {
		key[i] = row[pos]
	}
	return key
}

// reposition recomputes column positions after the table layout changed.
func (ix *Index) reposition(table *TableDef) *Index {
	columns := make([]int, len(ix.Def.Columns))
	for i, name := range ix.Def.Columns {
		_, columns[i] = table.GetColumn(name)
	}
	return &Index{Def: ix.Def, columns: columns, tree: ix.tree}
}

func (ix *Index) with(tree mtree.MTree[types.Value]) *Index {
	return &Index{Def: ix.Def, columns: ix.columns, tree: tree}
}

// insert adds a row to the index. A Disallow outcome becomes an error,
// Ignore leaves the index as it was.
func (ix *Index) insert(row int64, values []types.Value) (*Index, error) {
	key := ix.key(values)
	tree, b := ix.tree.Add(key, row)
	switch b {
	case mtree.Allow:
		return ix.with(tree), nil
	case mtree.Ignore:
		return ix, nil
	}

	levels := ix.tree.Levels()
	for i, v := range key {
		if v.IsNull() && levels[i].OnNullKey == mtree.Disallow {
			return nil, errors.Annotatef(ErrNotNullViolation, "index %s: column %s", ix.Def.Name, ix.Def.Columns[i])
		}
	}
	return nil, errors.Annotatef(ErrUniqueViolation, "index %s: key %v", ix.Def.Name, key)
}

func (ix *Index) delete(row int64, values []types.Value) *Index {
	tree := ix.tree.RemoveRow(ix.key(values), row)
	if tree.Count() == ix.tree.Count() {
		return ix
	}
	return ix.with(tree)
}

// lookup returns the rows whose indexed columns start with prefix.
func (ix *Index) lookup(prefix []types.Value) ([]int64, error) {
	if len(prefix) > len(ix.columns) {
		return nil, errors.Errorf("index %s has %d columns, got %d values", ix.Def.Name, len(ix.columns), len(prefix))
	}
	return ix.tree.Rows(prefix), nil
}
