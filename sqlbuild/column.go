// Package sqlbuild incrementally builds relational query statements: a base
// table, prioritized joins, WHERE predicates, grouping and output columns.
// The rendered statement is handed to an external execution engine; this
// package never runs a query itself.
package sqlbuild

// Column identifies a table column, or a bare expression when Table is empty.
type Column struct {
	Table string
	Name  string
}

// NewColumn creates a column reference.
func NewColumn(table, name string) Column {
	return Column{Table: table, Name: name}
}

// Literal creates a table-less column holding a literal expression,
// e.g. a constant output column.
func Literal(expr string) Column {
	return Column{Name: expr}
}

// String renders the column as it appears in a statement.
func (c Column) String() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// IsZero reports whether the column is empty.
func (c Column) IsZero() bool {
	return c.Table == "" && c.Name == ""
}
