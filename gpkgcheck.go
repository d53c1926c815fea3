// Package gpkgcheck validates that a GeoPackage conforms to the NVI 2023
// data-exchange standard (SS 199000:2023).
//
// Validation runs per rule category: foreign keys, required (not-null)
// columns, check constraints, SQLite structural integrity, datetime formats
// and, when a geometry capability is supplied, geometry types and spatial
// reference consistency. Each category works on its own disposable copy of
// the file; the original is only ever opened read-only.
//
// # Quick Start
//
//	report, err := gpkgcheck.ValidateFile(ctx, "delivery.gpkg", &gpkgcheck.Options{
//		Geometry: geom.NewReader(),
//	}, nil)
//
// Constraints that the standard requires but the file does not declare are
// added in memory as schema overlays and surfaced by rebuilding tables inside
// a transaction that is always rolled back. Violations are returned as
// structured records; see Violation and its concrete types.
package gpkgcheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/nvigis/gpkgcheck/geom"
	"github.com/nvigis/gpkgcheck/internal/constraints"
	"github.com/nvigis/gpkgcheck/internal/db"
	"github.com/nvigis/gpkgcheck/internal/gpkg"
)

// ErrGeometryUnavailable is returned by geometry-dependent validations when
// the Validator was built without a geometry capability.
var ErrGeometryUnavailable = errors.New("geometry capability not available")

// lookupTablePrefix marks the standard's lookup tables, which are exempt from
// the required-column validation.
const lookupTablePrefix = "Vl_"

// Options configures a Validator.
//
// All fields are optional. Without a Geometry capability the geometry-type
// and spatial-reference validations return ErrGeometryUnavailable.
type Options struct {
	// Geometry supplies geometry-layer introspection. Leave nil when no
	// geometry support is wanted or available.
	Geometry geom.Capability

	// TableLevelChecks switches the check-constraint validation from
	// row-by-row re-insertion (which attributes each violation to a row) to
	// a whole-table consistency check with no row attribution.
	TableLevelChecks bool
}

// Validator checks one GeoPackage against the standard, one rule category at
// a time. Every category validates a private temporary copy and removes it
// when done; the original file is never written.
type Validator struct {
	pkg              *gpkg.Package
	geometry         geom.Capability
	tableLevelChecks bool
}

// New introspects the GeoPackage at path and builds a Validator for it.
func New(ctx context.Context, path string, opts *Options) (*Validator, error) {
	if opts == nil {
		opts = &Options{}
	}

	pkg, err := gpkg.FromFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return &Validator{
		pkg:              pkg,
		geometry:         opts.Geometry,
		tableLevelChecks: opts.TableLevelChecks,
	}, nil
}

// CategoryResult is the outcome of one validation category. Violations may be
// partial when Err is set: a failure mid-category keeps whatever was found
// before it.
type CategoryResult struct {
	Category   Category
	Violations []Violation
	Err        error
}

// Clean reports whether the category ran without failure and found nothing
// wrong. For the integrity category the engine always reports at least one
// line, so the content is inspected rather than the count.
func (r CategoryResult) Clean() bool {
	if r.Err != nil {
		return false
	}
	for _, v := range r.Violations {
		if iv, ok := v.(IntegrityViolation); ok && iv.OK() {
			continue
		}
		return false
	}
	return true
}

// Report aggregates the results of a validation run in category order.
type Report struct {
	Results []CategoryResult
}

// Clean reports whether every category ran without failure or findings.
func (r *Report) Clean() bool {
	for _, res := range r.Results {
		if !res.Clean() {
			return false
		}
	}
	return true
}

// Run executes the given categories (nil means all base categories, plus the
// geometry categories when a capability is present). A category's failure is
// recorded on its result and never aborts the other categories.
func (v *Validator) Run(ctx context.Context, categories []Category) *Report {
	if categories == nil {
		categories = BaseCategories
		if v.geometry != nil {
			categories = AllCategories
		}
	}

	report := &Report{}
	for _, c := range categories {
		violations, err := v.validate(ctx, c)
		report.Results = append(report.Results, CategoryResult{
			Category:   c,
			Violations: violations,
			Err:        err,
		})
	}
	return report
}

func (v *Validator) validate(ctx context.Context, c Category) ([]Violation, error) {
	switch c {
	case CategoryForeignKeys:
		return v.ValidateForeignKeys(ctx)
	case CategoryNotNull:
		return v.ValidateNotNull(ctx)
	case CategoryChecks:
		return v.ValidateCheckConstraints(ctx)
	case CategoryIntegrity:
		return v.ValidateIntegrity(ctx)
	case CategoryDatetime:
		return v.ValidateDatetimeFormats(ctx)
	case CategoryGeometry:
		return v.ValidateGeometryTypes(ctx)
	case CategorySpatialRef:
		return v.ValidateSpatialRefs(ctx)
	}
	return nil, fmt.Errorf("unknown category: %s", c)
}

// ValidateFile is the one-call entry point: introspect, run the categories
// and return the report.
func ValidateFile(ctx context.Context, path string, opts *Options, categories []Category) (*Report, error) {
	v, err := New(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return v.Run(ctx, categories), nil
}

// scratch creates a disposable copy of the GeoPackage in a fresh temporary
// directory. The returned cleanup removes the directory and must run on every
// exit path.
func (v *Validator) scratch(category string) (*gpkg.Package, func(), error) {
	dir, err := os.MkdirTemp("", "gpkgcheck-"+category+"-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s", category, uuid.NewString()[:8])
	cp, err := v.pkg.Duplicate(dir, name)
	if err != nil {
		os.RemoveAll(dir)
		return nil, nil, fmt.Errorf("failed to create disposable copy: %w", err)
	}

	return cp, func() { os.RemoveAll(dir) }, nil
}

// ValidateForeignKeys surfaces dangling references against the standard's
// foreign-key overlay. Every table is rebuilt in the copy under the overlay
// schema inside a transaction, the engine's foreign-key check runs per
// FK-bearing table, and the transaction is rolled back.
func (v *Validator) ValidateForeignKeys(ctx context.Context) ([]Violation, error) {
	cp, cleanup, err := v.scratch("foreign-keys")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	constraints.ApplyForeignKeys(cp)

	client, err := db.Open(ctx, cp.Path)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	conn, err := client.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Enforcement must be off during the rebuild. The pragma is a no-op
	// inside a transaction, so it is set on the pinned connection first.
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return nil, fmt.Errorf("failed to disable foreign keys: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var violations []Violation

	for _, t := range cp.Tables {
		if err := shadowRebuild(ctx, tx, t); err != nil {
			return violations, err
		}
	}

	for _, t := range cp.Tables {
		if len(t.ForeignKeys) == 0 {
			continue
		}

		findings, err := foreignKeyFindings(ctx, tx, t.Name)
		if err != nil {
			return violations, fmt.Errorf("foreign key check on %s: %w", t.Name, err)
		}
		if len(findings) == 0 {
			continue
		}

		decls, err := foreignKeyDecls(ctx, tx, t.Name)
		if err != nil {
			return violations, fmt.Errorf("foreign key list on %s: %w", t.Name, err)
		}

		for _, f := range findings {
			decl := decls[f.fkid]
			var value sql.NullString
			query := fmt.Sprintf("SELECT %s FROM %s WHERE rowid = ?", quoteIdent(decl.from), t.Name)
			if err := tx.QueryRowContext(ctx, query, f.rowid.Int64).Scan(&value); err != nil {
				return violations, fmt.Errorf("failed to read offending value in %s: %w", t.Name, err)
			}
			violations = append(violations, ForeignKeyViolation{
				Table:     t.Name,
				Row:       f.rowid.Int64,
				Column:    decl.from,
				Value:     value.String,
				RefTable:  f.parent,
				RefColumn: decl.to,
			})
		}
	}

	return violations, nil
}

type fkFinding struct {
	rowid  sql.NullInt64
	parent string
	fkid   int
}

func foreignKeyFindings(ctx context.Context, tx *sql.Tx, table string) ([]fkFinding, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_check(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []fkFinding
	for rows.Next() {
		var tbl string
		var f fkFinding
		if err := rows.Scan(&tbl, &f.rowid, &f.parent, &f.fkid); err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

type fkDecl struct {
	from string
	to   string
}

func foreignKeyDecls(ctx context.Context, tx *sql.Tx, table string) (map[int]fkDecl, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decls := make(map[int]fkDecl)
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		decls[id] = fkDecl{from: from, to: to.String}
	}
	return decls, rows.Err()
}

// ValidateNotNull surfaces NULL values in columns the standard requires. One
// violation is emitted per offending row, listing every required column that
// is NULL on it. Lookup tables are exempt.
func (v *Validator) ValidateNotNull(ctx context.Context) ([]Violation, error) {
	cp, cleanup, err := v.scratch("not-null")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	constraints.ApplyNotNull(cp, false)

	client, err := db.Open(ctx, cp.Path)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var violations []Violation

	for _, t := range cp.Tables {
		if strings.HasPrefix(t.Name, lookupTablePrefix) {
			continue
		}
		required := t.NotNullColumns()
		if len(required) == 0 {
			continue
		}

		conditions := make([]string, len(required))
		for i, col := range required {
			conditions[i] = col + " IS NULL"
		}
		query := fmt.Sprintf("SELECT rowid, %s FROM %s WHERE %s",
			strings.Join(required, ", "), t.Name, strings.Join(conditions, " OR "))

		rows, err := client.DB().QueryContext(ctx, query)
		if err != nil {
			return violations, fmt.Errorf("not null check on %s: %w", t.Name, err)
		}

		for rows.Next() {
			var rowid int64
			values := make([]sql.NullString, len(required))
			dest := make([]any, 0, len(required)+1)
			dest = append(dest, &rowid)
			for i := range values {
				dest = append(dest, &values[i])
			}
			if err := rows.Scan(dest...); err != nil {
				rows.Close()
				return violations, err
			}

			var nullColumns []string
			for i, value := range values {
				if !value.Valid {
					nullColumns = append(nullColumns, required[i])
				}
			}
			violations = append(violations, NotNullViolation{
				Table:   t.Name,
				Row:     rowid,
				Columns: nullColumns,
			})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return violations, err
		}
	}

	return violations, nil
}

// ValidateCheckConstraints surfaces rows that violate the standard's check
// rules. Each check-bearing table is rebuilt in the copy under the overlay
// schema with check enforcement suspended; in row-level mode (the default)
// every original row is then re-inserted under enforcement and each failing
// insert becomes a violation, in table-level mode the whole table is copied
// and the engine's consistency check reports per table. Always rolled back.
func (v *Validator) ValidateCheckConstraints(ctx context.Context) ([]Violation, error) {
	cp, cleanup, err := v.scratch("check-constraints")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	constraints.ApplyChecks(cp)

	client, err := db.Open(ctx, cp.Path)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	conn, err := client.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return nil, fmt.Errorf("failed to disable foreign keys: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var violations []Violation

	for _, t := range cp.Tables {
		if len(t.Checks) == 0 {
			continue
		}

		if _, err := tx.ExecContext(ctx, "PRAGMA ignore_check_constraints = ON"); err != nil {
			return violations, fmt.Errorf("failed to suspend check constraints: %w", err)
		}
		old := t.Name + "_old"
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", t.Name, old)); err != nil {
			return violations, fmt.Errorf("failed to rename %s: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx, t.CreateStatement()); err != nil {
			return violations, fmt.Errorf("failed to recreate %s: %w", t.Name, err)
		}

		if v.tableLevelChecks {
			tableViolations, err := bulkCheck(ctx, tx, t.Name, old)
			violations = append(violations, tableViolations...)
			if err != nil {
				return violations, err
			}
		} else {
			rowViolations, err := rowLevelCheck(ctx, tx, t.Name, old)
			violations = append(violations, rowViolations...)
			if err != nil {
				return violations, err
			}
		}
	}

	return violations, nil
}

// rowLevelCheck re-inserts every row of the renamed original table into the
// check-bearing replacement, one at a time, under enforcement. A failing
// insert identifies the offending row.
func rowLevelCheck(ctx context.Context, tx *sql.Tx, table, old string) ([]Violation, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT rowid, * FROM %s", old))
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", old, err)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}

	var saved [][]any
	for rows.Next() {
		dest := make([]any, len(columns))
		for i := range dest {
			var value any
			dest[i] = &value
		}
		if err := rows.Scan(dest...); err != nil {
			rows.Close()
			return nil, err
		}
		values := make([]any, len(columns))
		for i, d := range dest {
			values[i] = *(d.(*any))
		}
		saved = append(saved, values)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "PRAGMA ignore_check_constraints = OFF"); err != nil {
		return nil, fmt.Errorf("failed to re-enable check constraints: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)-1), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders)

	var violations []Violation
	for _, values := range saved {
		rowid, _ := values[0].(int64)
		if _, err := tx.ExecContext(ctx, insert, values[1:]...); err != nil {
			violations = append(violations, CheckViolation{
				Table: table,
				Row:   sql.NullInt64{Int64: rowid, Valid: true},
				Check: err.Error(),
			})
		}
	}

	return violations, nil
}

// bulkCheck copies all rows at once and lets the engine's consistency check
// report per table, without row attribution.
func bulkCheck(ctx context.Context, tx *sql.Tx, table, old string) ([]Violation, error) {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", table, old)); err != nil {
		return nil, fmt.Errorf("failed to copy rows into %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", old)); err != nil {
		return nil, fmt.Errorf("failed to drop %s: %w", old, err)
	}
	if _, err := tx.ExecContext(ctx, "PRAGMA ignore_check_constraints = OFF"); err != nil {
		return nil, fmt.Errorf("failed to re-enable check constraints: %w", err)
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA quick_check(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("quick check on %s: %w", table, err)
	}
	defer rows.Close()

	var violations []Violation
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return violations, err
		}
		if line != "ok" {
			violations = append(violations, CheckViolation{Table: table, Check: line})
		}
	}
	return violations, rows.Err()
}

// ValidateIntegrity runs the engine's structural integrity check on a copy.
// One violation is emitted per reported line; a sound file yields exactly one
// line equal to "ok".
func (v *Validator) ValidateIntegrity(ctx context.Context) ([]Violation, error) {
	cp, cleanup, err := v.scratch("sqlite-integrity")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	client, err := db.Open(ctx, cp.Path)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	rows, err := client.DB().QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return nil, fmt.Errorf("integrity check: %w", err)
	}
	defer rows.Close()

	var violations []Violation
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return violations, err
		}
		violations = append(violations, IntegrityViolation{Message: line})
	}
	return violations, rows.Err()
}

// ValidateDatetimeFormats verifies that every DATE column holds YYYY-MM-DD
// values and every DATETIME column holds YYYY-MM-DDTHH:MM:SS.SSSZ values with
// a trailing Z. One violation is emitted per table and column with at least
// one non-conforming value.
func (v *Validator) ValidateDatetimeFormats(ctx context.Context) ([]Violation, error) {
	cp, cleanup, err := v.scratch("dateformat")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	client, err := db.Open(ctx, cp.Path)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var violations []Violation

	for _, t := range cp.Tables {
		columns, err := datetimeColumns(ctx, client, t.Name)
		if err != nil {
			return violations, fmt.Errorf("failed to list datetime columns of %s: %w", t.Name, err)
		}

		for _, col := range columns {
			pattern := "%FT%R:%fZ"
			if col.colType == "DATE" {
				pattern = "%F"
			}
			query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s NOT LIKE strftime('%s', %s)",
				t.Name, col.name, pattern, col.name)
			if col.colType != "DATE" {
				query += fmt.Sprintf(" OR %s NOT LIKE '%%Z'", col.name)
			}
			query += " LIMIT 1"

			var one int
			err := client.DB().QueryRowContext(ctx, query).Scan(&one)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				// all values conform
			case err != nil:
				return violations, fmt.Errorf("datetime check on %s.%s: %w", t.Name, col.name, err)
			default:
				violations = append(violations, DatetimeFormatViolation{Table: t.Name, Column: col.name})
			}
		}
	}

	return violations, nil
}

type datetimeColumn struct {
	name    string
	colType string
}

func datetimeColumns(ctx context.Context, client *db.Client, table string) ([]datetimeColumn, error) {
	rows, err := client.DB().QueryContext(ctx,
		"SELECT name, type FROM pragma_table_info(?) WHERE type IN ('DATETIME', 'DATE')", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []datetimeColumn
	for rows.Next() {
		var col datetimeColumn
		if err := rows.Scan(&col.name, &col.colType); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// ValidateGeometryTypes compares each layer's declared geometry type against
// the types actually stored among its features, emitting one violation per
// distinct offending type. Requires the geometry capability.
func (v *Validator) ValidateGeometryTypes(ctx context.Context) ([]Violation, error) {
	if v.geometry == nil {
		return nil, ErrGeometryUnavailable
	}

	cp, cleanup, err := v.scratch("geomtype")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	layers, err := v.geometry.Layers(ctx, cp.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry layers: %w", err)
	}

	var violations []Violation
	for _, layer := range layers {
		if layer.GeometryColumn == "" {
			continue
		}
		types := make([]string, 0, len(layer.TypeCounts))
		for name := range layer.TypeCounts {
			types = append(types, name)
		}
		sort.Strings(types)

		for _, actual := range types {
			if !sameGeometryType(actual, layer.GeometryType) {
				violations = append(violations, GeometryTypeViolation{
					Table:        layer.Name,
					DeclaredType: layer.GeometryType,
					WrongType:    actual,
				})
			}
		}
	}

	return violations, nil
}

func sameGeometryType(a, b string) bool {
	normalize := func(s string) string {
		return strings.ReplaceAll(strings.ToUpper(s), " ", "")
	}
	return normalize(a) == normalize(b)
}

// ValidateSpatialRefs verifies that all layers share one spatial reference
// system, emitting a single violation carrying the full set of names when
// more than one is found. Requires the geometry capability.
func (v *Validator) ValidateSpatialRefs(ctx context.Context) ([]Violation, error) {
	if v.geometry == nil {
		return nil, ErrGeometryUnavailable
	}

	cp, cleanup, err := v.scratch("spatref")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	layers, err := v.geometry.Layers(ctx, cp.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry layers: %w", err)
	}

	seen := make(map[string]bool)
	for _, layer := range layers {
		if layer.SpatialRef != "" {
			seen[layer.SpatialRef] = true
		}
	}
	if len(seen) <= 1 {
		return nil, nil
	}

	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)

	return []Violation{SpatialRefViolation{Refs: refs}}, nil
}

// quoteIdent quotes a raw identifier coming back from the engine (pragma
// output is unquoted even for reserved words like "values").
func quoteIdent(name string) string {
	if strings.HasPrefix(name, `"`) {
		return name
	}
	return `"` + name + `"`
}
