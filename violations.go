package gpkgcheck

import (
	"database/sql"
	"fmt"
	"strings"
)

// Category identifies one validation rule category.
type Category string

// The validation categories, in the order they are run.
const (
	CategoryForeignKeys Category = "foreign-keys"
	CategoryNotNull     Category = "not-null"
	CategoryChecks      Category = "check-constraints"
	CategoryIntegrity   Category = "integrity"
	CategoryDatetime    Category = "datetime"
	CategoryGeometry    Category = "geometry-type"
	CategorySpatialRef  Category = "spatial-ref"
)

// BaseCategories are the categories that need only the SQLite engine.
var BaseCategories = []Category{
	CategoryForeignKeys,
	CategoryNotNull,
	CategoryChecks,
	CategoryIntegrity,
	CategoryDatetime,
}

// AllCategories adds the two categories that need the geometry capability.
var AllCategories = []Category{
	CategoryForeignKeys,
	CategoryNotNull,
	CategoryChecks,
	CategoryIntegrity,
	CategoryDatetime,
	CategoryGeometry,
	CategorySpatialRef,
}

// Title returns the category's display heading.
func (c Category) Title() string {
	switch c {
	case CategoryForeignKeys:
		return "FOREIGN KEY"
	case CategoryNotNull:
		return "NOT NULL"
	case CategoryChecks:
		return "CHECK CONSTRAINT"
	case CategoryIntegrity:
		return "SQLITE INTEGRITY"
	case CategoryDatetime:
		return "DATETIME FORMAT"
	case CategoryGeometry:
		return "GEOMETRY TYPE"
	case CategorySpatialRef:
		return "SPATIAL REFERENCE SYSTEMS"
	}
	return string(c)
}

// ParseCategories converts a comma-separated list of category names into
// Category values.
func ParseCategories(list string) ([]Category, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	known := make(map[Category]bool, len(AllCategories))
	for _, c := range AllCategories {
		known[c] = true
	}

	var categories []Category
	for _, name := range strings.Split(list, ",") {
		c := Category(strings.TrimSpace(name))
		if !known[c] {
			return nil, fmt.Errorf("unknown category: %s", c)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// Violation is one finding of a validation category. The concrete types below
// form a closed set, one per category; consumers that need more than the
// textual rendering should switch over them.
type Violation interface {
	Category() Category
	String() string
}

// ForeignKeyViolation reports a row whose foreign-key column value has no
// matching referenced row.
type ForeignKeyViolation struct {
	Table     string
	Row       int64
	Column    string
	Value     string
	RefTable  string
	RefColumn string
}

func (v ForeignKeyViolation) Category() Category { return CategoryForeignKeys }

func (v ForeignKeyViolation) String() string {
	return fmt.Sprintf("FOREIGN KEY VIOLATION - row: %d value: %s in %s(%s) not in %s(%s)",
		v.Row, v.Value, v.Table, v.Column, v.RefTable, v.RefColumn)
}

// NotNullViolation reports a row with NULL values in required columns. One
// violation covers every offending column of the row.
type NotNullViolation struct {
	Table   string
	Row     int64
	Columns []string
}

func (v NotNullViolation) Category() Category { return CategoryNotNull }

func (v NotNullViolation) String() string {
	return fmt.Sprintf("NOT NULL WARNING: table: %s row: %d - NULL value in [%s]",
		v.Table, v.Row, strings.Join(v.Columns, ", "))
}

// CheckViolation reports a row (or, in table-level mode, a table) that fails
// a check constraint. Row is unset in table-level mode.
type CheckViolation struct {
	Table string
	Row   sql.NullInt64
	Check string
}

func (v CheckViolation) Category() Category { return CategoryChecks }

func (v CheckViolation) String() string {
	s := fmt.Sprintf("CHECK CONSTRAINT WARNING - table: %s ", v.Table)
	if v.Row.Valid {
		s += fmt.Sprintf("row: %d", v.Row.Int64)
	}
	return s + ": " + v.Check
}

// IntegrityViolation carries one line of the engine's structural integrity
// check. A sound file yields a single line equal to "ok"; callers must check
// the content, not the absence of results.
type IntegrityViolation struct {
	Message string
}

func (v IntegrityViolation) Category() Category { return CategoryIntegrity }

// OK reports whether this is the engine's success marker.
func (v IntegrityViolation) OK() bool { return v.Message == "ok" }

func (v IntegrityViolation) String() string {
	return "SQLITE INTEGRITY CHECK: " + v.Message
}

// DatetimeFormatViolation reports a date or datetime column with at least one
// value that does not match the expected textual format.
type DatetimeFormatViolation struct {
	Table  string
	Column string
}

func (v DatetimeFormatViolation) Category() Category { return CategoryDatetime }

func (v DatetimeFormatViolation) String() string {
	return fmt.Sprintf("DATETIME FORMAT VIOLATION - table: %s column: %s - incorrect DateTime format",
		v.Table, v.Column)
}

// GeometryTypeViolation reports features whose geometry type differs from the
// layer's declared type.
type GeometryTypeViolation struct {
	Table        string
	DeclaredType string
	WrongType    string
}

func (v GeometryTypeViolation) Category() Category { return CategoryGeometry }

func (v GeometryTypeViolation) String() string {
	return fmt.Sprintf("GEOMETRY TYPE VIOLATION - table: %s (%s) has rows of %s geometry type",
		v.Table, v.DeclaredType, v.WrongType)
}

// SpatialRefViolation reports that more than one distinct spatial reference
// system is used across the layers of the GeoPackage.
type SpatialRefViolation struct {
	Refs []string
}

func (v SpatialRefViolation) Category() Category { return CategorySpatialRef }

func (v SpatialRefViolation) String() string {
	return fmt.Sprintf("SPATIAL REF VIOLATION - multiple reference systems used in GeoPackage: [%s]",
		strings.Join(v.Refs, ", "))
}
