package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nvigis/gpkgcheck/internal/schema"
)

// Introspector reads the on-disk structure of a GeoPackage and builds schema
// model instances from it.
type Introspector struct {
	client *Client
}

// NewIntrospector creates a schema introspector over an open client.
func NewIntrospector(client *Client) *Introspector {
	return &Introspector{client: client}
}

// TableNames enumerates the content tables of the GeoPackage, excluding
// spatial-index shadow tables, gpkg metadata tables, style tables and
// SQLite-internal tables. Order follows the schema catalog (creation order).
func (in *Introspector) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE '%rtree%'
		  AND name NOT LIKE 'gpkg%'
		  AND name NOT LIKE 'layer_styles'
		  AND name NOT LIKE 'sqlite_%'
	`

	rows, err := in.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Table reads column, foreign-key and unique-index metadata for one table and
// builds its schema model. A column literally named "values" collides with a
// reserved word and is stored pre-quoted so every later reference to it stays
// quoted.
func (in *Introspector) Table(ctx context.Context, name string) (*schema.Table, error) {
	table := &schema.Table{Name: name}

	uniqueColumns, err := in.uniqueIndexedColumns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read unique indexes for %s: %w", name, err)
	}

	columns, err := in.columns(ctx, name, uniqueColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for %s: %w", name, err)
	}
	table.Columns = columns

	fks, err := in.foreignKeys(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys for %s: %w", name, err)
	}
	table.ForeignKeys = fks

	return table, nil
}

func (in *Introspector) columns(ctx context.Context, tableName string, uniqueColumns map[string]bool) ([]schema.Column, error) {
	rows, err := in.client.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		unique := uniqueColumns[name]
		if name == "values" {
			name = schema.QuoteIdent(name)
		}

		columns = append(columns, schema.Column{
			Name:       name,
			Type:       colType,
			NotNull:    notNull != 0,
			PrimaryKey: pk != 0,
			Unique:     unique,
		})
	}

	return columns, rows.Err()
}

// uniqueIndexedColumns returns the first column of every unique index on the
// table.
func (in *Introspector) uniqueIndexedColumns(ctx context.Context, tableName string) (map[string]bool, error) {
	rows, err := in.client.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uniqueIndexes []string
	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		if unique == 1 {
			uniqueIndexes = append(uniqueIndexes, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	uniqueColumns := make(map[string]bool)
	for _, index := range uniqueIndexes {
		infoRows, err := in.client.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", index))
		if err != nil {
			return nil, err
		}

		if infoRows.Next() {
			var seqno, cid int
			var colName sql.NullString
			if err := infoRows.Scan(&seqno, &cid, &colName); err != nil {
				infoRows.Close()
				return nil, err
			}
			if colName.Valid {
				uniqueColumns[colName.String] = true
			}
		}
		err = infoRows.Err()
		infoRows.Close()
		if err != nil {
			return nil, err
		}
	}

	return uniqueColumns, nil
}

func (in *Introspector) foreignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	rows, err := in.client.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string

		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		fks = append(fks, schema.ForeignKey{
			Column:    from,
			RefTable:  refTable,
			RefColumn: to.String,
		})
	}

	return fks, rows.Err()
}
