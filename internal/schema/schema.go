// Package schema holds the in-memory model of a GeoPackage table: columns,
// foreign keys and check constraints, plus the rendering of that model back
// into a CREATE TABLE statement.
//
// The model is deliberately plain data. Constraint overlays mutate it in
// memory; nothing here touches the database file.
package schema

import (
	"fmt"
	"strings"
)

// Column describes a single table column.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
	Unique     bool
}

// definition renders the column for a CREATE TABLE statement.
func (c Column) definition() string {
	def := c.Name + " " + c.Type
	if c.NotNull {
		def += " NOT NULL"
	}
	if c.PrimaryKey {
		def += " PRIMARY KEY"
	}
	if c.Unique {
		def += " UNIQUE"
	}
	return def
}

// ForeignKey describes a single-column foreign key rule.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

func (fk ForeignKey) definition() string {
	return fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn)
}

// CheckConstraint holds a boolean SQL expression enforced as a table check.
type CheckConstraint struct {
	Expr string
}

func (cc CheckConstraint) definition() string {
	return fmt.Sprintf("CHECK(%s)", cc.Expr)
}

// Table is the schema model for one table. Column order is declaration order
// and must be preserved: the shadow-rebuild INSERT ... SELECT * relies on the
// recreated table having columns in the same positions as the original.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
	Checks      []CheckConstraint
}

// AddForeignKey appends a foreign key rule. Adding an identical rule twice is
// a no-op.
func (t *Table) AddForeignKey(column, refTable, refColumn string) {
	fk := ForeignKey{Column: column, RefTable: refTable, RefColumn: refColumn}
	for _, existing := range t.ForeignKeys {
		if existing == fk {
			return
		}
	}
	t.ForeignKeys = append(t.ForeignKeys, fk)
}

// AddCheckConstraint appends a check constraint. Adding an identical
// expression twice is a no-op.
func (t *Table) AddCheckConstraint(expr string) {
	for _, existing := range t.Checks {
		if existing.Expr == expr {
			return
		}
	}
	t.Checks = append(t.Checks, CheckConstraint{Expr: expr})
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// SetColumnNotNull marks the named column NOT NULL. Unknown columns are
// ignored.
func (t *Table) SetColumnNotNull(name string) {
	if col := t.Column(name); col != nil {
		col.NotNull = true
	}
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NotNullColumns returns the names of all columns currently flagged NOT NULL.
func (t *Table) NotNullColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.NotNull {
			names = append(names, c.Name)
		}
	}
	return names
}

// HasColumns reports whether every given name exists as a column.
func (t *Table) HasColumns(names []string) bool {
	for _, name := range names {
		if t.Column(name) == nil {
			return false
		}
	}
	return true
}

// CreateStatement renders the table as a single CREATE TABLE statement:
// column definitions first, then foreign keys, then check constraints,
// comma-joined.
func (t *Table) CreateStatement() string {
	parts := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+len(t.Checks))
	for _, c := range t.Columns {
		parts = append(parts, c.definition())
	}
	for _, fk := range t.ForeignKeys {
		parts = append(parts, fk.definition())
	}
	for _, cc := range t.Checks {
		parts = append(parts, cc.definition())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(parts, ", "))
}

// Clone returns a deep copy of the table. Overlay mutations on the copy never
// affect the original.
func (t *Table) Clone() *Table {
	clone := &Table{Name: t.Name}
	clone.Columns = append([]Column(nil), t.Columns...)
	clone.ForeignKeys = append([]ForeignKey(nil), t.ForeignKeys...)
	clone.Checks = append([]CheckConstraint(nil), t.Checks...)
	return clone
}

// QuoteIdent wraps an identifier in double quotes unless it is already
// quoted. Used when an introspected name (for example the reserved word
// "values") must appear as a column reference in generated SQL.
func QuoteIdent(name string) string {
	if strings.HasPrefix(name, `"`) {
		return name
	}
	return `"` + name + `"`
}
