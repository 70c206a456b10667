// pkg/catalog/defs.go
package catalog

import (
	"shareable/pkg/types"
)

// ColumnDef defines a table column
type ColumnDef struct {
	Name string
	// Type is the type every non-NULL value must have. TypeNull accepts
	// any value; a TypeFloat column also accepts integers.
	Type       types.ValueType
	PrimaryKey bool
	NotNull    bool
	Default    *types.Value // replaces NULL on insert, nil means no default
}

// TableDef defines a table schema. A TableDef reachable from a Catalog is
// shared between snapshots and must not be modified.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// GetColumn returns the column definition and index by name
// Returns (nil, -1) if not found
func (t *TableDef) GetColumn(name string) (*ColumnDef, int) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], i
		}
	}
	return nil, -1
}

// ColumnCount returns the number of columns
func (t *TableDef) ColumnCount() int {
	return len(t.Columns)
}

func (t *TableDef) clone() *TableDef {
	out := &TableDef{Name: t.Name, Columns: make([]ColumnDef, len(t.Columns))}
	copy(out.Columns, t.Columns)
	return out
}

// IndexDef defines an index schema
type IndexDef struct {
	Name      string   // Index name
	TableName string   // Table the index belongs to
	Columns   []string // Column names in the index (order matters for multi-column)
	Unique    bool     // Whether the index enforces uniqueness
}

// ViewDef defines a view schema
type ViewDef struct {
	Name    string   // View name
	SQL     string   // The SQL definition (SELECT statement as text)
	Columns []string // Optional explicit column names
}
