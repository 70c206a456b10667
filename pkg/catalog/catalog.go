// pkg/catalog/catalog.go
package catalog

import (
	"github.com/pingcap/errors"

	"shareable/pkg/shareable"
	"shareable/pkg/types"
)

var (
	ErrTableExists    = errors.New("table already exists")
	ErrTableNotFound  = errors.New("table not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrColumnExists   = errors.New("column already exists")
	ErrColumnIndexed  = errors.New("column is used by an index")
	ErrColumnCount    = errors.New("wrong number of column values")
	ErrTypeMismatch   = errors.New("value does not match column type")
	ErrIndexExists    = errors.New("index already exists")
	ErrIndexNotFound  = errors.New("index not found")
	ErrNoIndexColumns = errors.New("index has no columns")
	ErrViewExists     = errors.New("view already exists")
	ErrViewNotFound   = errors.New("view not found")
	ErrEmptyName      = errors.New("empty name")
)

// Constraint violation errors
var (
	ErrNotNullViolation = errors.New("NOT NULL constraint violation")
	ErrUniqueViolation  = errors.New("UNIQUE constraint violation")
)

type nameSet = shareable.Dict[string, struct{}]

// Catalog is an immutable snapshot of all schema definitions and index
// entries. Every method that changes something returns a new *Catalog and
// leaves the receiver untouched, so a Catalog may be read from any number
// of goroutines without locking.
type Catalog struct {
	version  uint64
	capacity int

	tables  shareable.Dict[string, *TableDef]
	indexes shareable.Dict[string, *Index]
	views   shareable.Dict[string, *ViewDef]
	// byTable maps a table name to the names of its indexes
	byTable shareable.Dict[string, nameSet]
	noNames nameSet
}

// Option configures a new Catalog.
type Option func(*Catalog)

// WithCapacity sets the bucket capacity of the catalog trees and of every
// index created in it.
func WithCapacity(n int) Option {
	return func(c *Catalog) {
		c.capacity = n
	}
}

// NewCatalog creates a new empty catalog
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{capacity: shareable.DefaultCapacity}
	for _, opt := range opts {
		opt(c)
	}
	o := shareable.WithCapacity(c.capacity)
	c.tables = shareable.New[string, *TableDef](o)
	c.indexes = shareable.New[string, *Index](o)
	c.views = shareable.New[string, *ViewDef](o)
	c.byTable = shareable.New[string, nameSet](o)
	c.noNames = shareable.New[string, struct{}](o)
	return c
}

// Version is the number of commits published before this snapshot by the
// Store it came from.
func (c *Catalog) Version() uint64 { return c.version }

func (c *Catalog) clone() *Catalog {
	out := *c
	return &out
}

// CreateTable adds a table to the catalog
func (c *Catalog) CreateTable(table *TableDef) (*Catalog, error) {
	if table.Name == "" {
		return nil, errors.Annotate(ErrEmptyName, "create table")
	}
	if c.tables.Contains(table.Name) {
		return nil, errors.Annotatef(ErrTableExists, "table %s", table.Name)
	}
	seen := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		if seen[col.Name] {
			return nil, errors.Annotatef(ErrColumnExists, "table %s: column %s", table.Name, col.Name)
		}
		seen[col.Name] = true
	}

	out := c.clone()
	out.tables = c.tables.Add(table.Name, table.clone())
	return out, nil
}

// DropTable removes a table and all of its indexes
func (c *Catalog) DropTable(name string) (*Catalog, error) {
	if !c.tables.Contains(name) {
		return nil, errors.Annotatef(ErrTableNotFound, "table %s", name)
	}

	out := c.clone()
	out.tables = c.tables.Remove(name)
	for _, ix := range c.IndexesForTable(name) {
		out.indexes = out.indexes.Remove(ix.Def.Name)
	}
	out.byTable = c.byTable.Remove(name)
	return out, nil
}

// AddColumn adds a column to an existing table
func (c *Catalog) AddColumn(tableName string, column ColumnDef) (*Catalog, error) {
	table, ok := c.tables.Lookup(tableName)
	if !ok {
		return nil, errors.Annotatef(ErrTableNotFound, "table %s", tableName)
	}
	if col, _ := table.GetColumn(column.Name); col != nil {
		return nil, errors.Annotatef(ErrColumnExists, "table %s: column %s", tableName, column.Name)
	}

	nt := table.clone()
	nt.Columns = append(nt.Columns, column)
	out := c.clone()
	out.tables = c.tables.Add(tableName, nt)
	return out, nil
}

// DropColumn removes a column that no index refers to
func (c *Catalog) DropColumn(tableName, columnName string) (*Catalog, error) {
	table, ok := c.tables.Lookup(tableName)
	if !ok {
		return nil, errors.Annotatef(ErrTableNotFound, "table %s", tableName)
	}
	_, pos := table.GetColumn(columnName)
	if pos < 0 {
		return nil, errors.Annotatef(ErrColumnNotFound, "table %s: column %s", tableName, columnName)
	}
	for _, ix := range c.IndexesForTable(tableName) {
		for _, name := range ix.Def.Columns {
			if name == columnName {
				return nil, errors.Annotatef(ErrColumnIndexed, "column %s.%s: index %s", tableName, columnName, ix.Def.Name)
			}
		}
	}

	nt := table.clone()
	nt.Columns = append(nt.Columns[:pos:pos], nt.Columns[pos+1:]...)
	out := c.clone()
	out.tables = c.tables.Add(tableName, nt)
	// positions of the columns after the dropped one have moved
	for _, ix := range c.IndexesForTable(tableName) {
		out.indexes = out.indexes.Add(ix.Def.Name, ix.reposition(nt))
	}
	return out, nil
}

// RenameTable renames a table and retargets its indexes
func (c *Catalog) RenameTable(oldName, newName string) (*Catalog, error) {
	table, ok := c.tables.Lookup(oldName)
	if !ok {
		return nil, errors.Annotatef(ErrTableNotFound, "table %s", oldName)
	}
	if newName == "" {
		return nil, errors.Annotate(ErrEmptyName, "rename table")
	}
	if c.tables.Contains(newName) {
		return nil, errors.Annotatef(ErrTableExists, "table %s", newName)
	}

	nt := table.clone()
	nt.Name = newName
	out := c.clone()
	out.tables = c.tables.Remove(oldName).Add(newName, nt)

	if names, ok := c.byTable.Lookup(oldName); ok {
		out.byTable = c.byTable.Remove(oldName).Add(newName, names)
		for _, ix := range c.IndexesForTable(oldName) {
			def := ix.Def
			def.TableName = newName
			out.indexes = out.indexes.Add(def.Name, &Index{Def: def, columns: ix.columns, tree: ix.tree})
		}
	}
	return out, nil
}

// Table returns a table definition by name, or nil
func (c *Catalog) Table(name string) *TableDef {
	t, _ := c.tables.Lookup(name)
	return t
}

// Tables returns all table names in sorted order
func (c *Catalog) Tables() []string {
	return c.tables.Keys()
}

// TableCount returns the number of tables
func (c *Catalog) TableCount() int {
	return c.tables.Count()
}

// CreateIndex adds an index to the catalog. The index starts empty; rows
// enter it through InsertRow.
func (c *Catalog) CreateIndex(def IndexDef) (*Catalog, error) {
	if def.Name == "" {
		return nil, errors.Annotate(ErrEmptyName, "create index")
	}
	if c.indexes.Contains(def.Name) {
		return nil, errors.Annotatef(ErrIndexExists, "index %s", def.Name)
	}
	table, ok := c.tables.Lookup(def.TableName)
	if !ok {
		return nil, errors.Annotatef(ErrTableNotFound, "index %s: table %s", def.Name, def.TableName)
	}
	def.Columns = append([]string(nil), def.Columns...)
	ix, err := newIndex(def, table, c.capacity)
	if err != nil {
		return nil, err
	}

	names, ok := c.byTable.Lookup(def.TableName)
	if !ok {
		names = c.noNames
	}
	out := c.clone()
	out.indexes = c.indexes.Add(def.Name, ix)
	out.byTable = c.byTable.Add(def.TableName, names.Add(def.Name, struct{}{}))
	return out, nil
}

// DropIndex removes an index from the catalog
func (c *Catalog) DropIndex(name string) (*Catalog, error) {
	ix, ok := c.indexes.Lookup(name)
	if !ok {
		return nil, errors.Annotatef(ErrIndexNotFound, "index %s", name)
	}

	out := c.clone()
	out.indexes = c.indexes.Remove(name)
	if names, ok := c.byTable.Lookup(ix.Def.TableName); ok {
		if names = names.Remove(name); names.Count() == 0 {
			out.byTable = c.byTable.Remove(ix.Def.TableName)
		} else {
			out.byTable = c.byTable.Add(ix.Def.TableName, names)
		}
	}
	return out, nil
}

// Index returns an index by name, or nil
func (c *Catalog) Index(name string) *Index {
	ix, _ := c.indexes.Lookup(name)
	return ix
}

// Indexes returns all index names in sorted order
func (c *Catalog) Indexes() []string {
	return c.indexes.Keys()
}

// IndexCount returns the number of indexes
func (c *Catalog) IndexCount() int {
	return c.indexes.Count()
}

// IndexesForTable returns all indexes for a given table, sorted by name
func (c *Catalog) IndexesForTable(tableName string) []*Index {
	names, ok := c.byTable.Lookup(tableName)
	if !ok {
		return nil
	}
	out := make([]*Index, 0, names.Count())
	for name := range names.All() {
		if ix, ok := c.indexes.Lookup(name); ok {
			out = append(out, ix)
		}
	}
	return out
}

// CreateView adds a view to the catalog
func (c *Catalog) CreateView(view *ViewDef) (*Catalog, error) {
	if view.Name == "" {
		return nil, errors.Annotate(ErrEmptyName, "create view")
	}
	if c.views.Contains(view.Name) {
		return nil, errors.Annotatef(ErrViewExists, "view %s", view.Name)
	}
	v := *view
	out := c.clone()
	out.views = c.views.Add(view.Name, &v)
	return out, nil
}

// DropView removes a view from the catalog
func (c *Catalog) DropView(name string) (*Catalog, error) {
	if !c.views.Contains(name) {
		return nil, errors.Annotatef(ErrViewNotFound, "view %s", name)
	}
	out := c.clone()
	out.views = c.views.Remove(name)
	return out, nil
}

// View returns a view definition by name, or nil
func (c *Catalog) View(name string) *ViewDef {
	v, _ := c.views.Lookup(name)
	return v
}

// Views returns all view names in sorted order
func (c *Catalog) Views() []string {
	return c.views.Keys()
}

// InsertRow enters a table row into every index of the table. values holds
// one value per column in table order. NULLs in columns with a default are
// replaced by the default first. On a violation no index is changed.
func (c *Catalog) InsertRow(tableName string, row int64, values []types.Value) (*Catalog, error) {
	table, values, err := c.checkRow(tableName, values)
	if err != nil {
		return nil, err
	}
	for i, col := range table.Columns {
		if (col.NotNull || col.PrimaryKey) && values[i].IsNull() {
			return nil, errors.Annotatef(ErrNotNullViolation, "column %s.%s", tableName, col.Name)
		}
	}

	out := c.clone()
	for _, ix := range c.IndexesForTable(tableName) {
		nix, err := ix.insert(row, values)
		if err != nil {
			return nil, err
		}
		if nix != ix {
			out.indexes = out.indexes.Add(ix.Def.Name, nix)
		}
	}
	return out, nil
}

// DeleteRow removes a table row, given with the values it was inserted
// with, from every index of the table.
func (c *Catalog) DeleteRow(tableName string, row int64, values []types.Value) (*Catalog, error) {
	_, values, err := c.checkRow(tableName, values)
	if err != nil {
		return nil, err
	}
	out := c.clone()
	for _, ix := range c.IndexesForTable(tableName) {
		if nix := ix.delete(row, values); nix != ix {
			out.indexes = out.indexes.Add(ix.Def.Name, nix)
		}
	}
	return out, nil
}

// checkRow validates values against the table columns and returns them
// with defaults applied.
func (c *Catalog) checkRow(tableName string, values []types.Value) (*TableDef, []types.Value, error) {
	table, ok := c.tables.Lookup(tableName)
	if !ok {
		return nil, nil, errors.Annotatef(ErrTableNotFound, "table %s", tableName)
	}
	if len(values) != len(table.Columns) {
		return nil, nil, errors.Annotatef(ErrColumnCount, "table %s has %d columns, got %d values", tableName, len(table.Columns), len(values))
	}

	out := values
	copied := false
	for i, col := range table.Columns {
		v := values[i]
		if v.IsNull() && col.Default != nil {
			v = *col.Default
			if !copied {
				out = append([]types.Value(nil), values...)
				copied = true
			}
			out[i] = v
		}
		if !v.IsNull() && !accepts(col.Type, v.Type()) {
			return nil, nil, errors.Annotatef(ErrTypeMismatch, "column %s.%s is %s, got %s", tableName, col.Name, col.Type, v.Type())
		}
	}
	return table, out, nil
}

func accepts(col, v types.ValueType) bool {
	return col == types.TypeNull || col == v || (col == types.TypeFloat && v == types.TypeInt)
}

// Lookup returns the rows of an index whose leading columns equal prefix,
// in index order. An empty prefix returns every row.
func (c *Catalog) Lookup(indexName string, prefix ...types.Value) ([]int64, error) {
	ix, ok := c.indexes.Lookup(indexName)
	if !ok {
		return nil, errors.Annotatef(ErrIndexNotFound, "index %s", indexName)
	}
	return ix.lookup(prefix)
}
