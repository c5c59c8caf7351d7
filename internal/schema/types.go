package schema

// Column describes a single column in a table, ordered by its
// catalog-defined ordinal position within the owning table.
type Column struct {
	Name        string
	DataType    string
	Nullable    bool
	Default     *string // nil if no default
	Description *string // nil if the column carries no comment
}

// ForeignKey describes one edge where the owning table is the
// referencing side.
type ForeignKey struct {
	Column    string // referencing column in the owning table
	RefTable  string
	RefColumn string
}

// Index describes one non-primary-key index. Columns preserve the
// catalog's key-ordinal order and are never reordered.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table describes one base table. Indexes preserve the first-seen order of
// index names in the catalog; PrimaryKeys are emitted in catalog-return
// order.
type Table struct {
	Name        string
	Description *string // nil if the table carries no comment
	Columns     []Column
	PrimaryKeys []string
	ForeignKeys []ForeignKey
	Indexes     []Index
}
