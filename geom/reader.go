package geom

import (
	"context"
	"fmt"

	"github.com/nvigis/gpkgcheck/internal/db"
	"github.com/nvigis/gpkgcheck/internal/schema"
)

// Reader is the built-in Capability implementation. It reads layer metadata
// from the gpkg_geometry_columns and gpkg_spatial_ref_sys tables and decodes
// the stored geometry blobs directly.
type Reader struct{}

// NewReader returns the built-in GeoPackage geometry reader.
func NewReader() *Reader {
	return &Reader{}
}

// Layers opens the GeoPackage at path and returns its geometry layers.
func (r *Reader) Layers(ctx context.Context, path string) ([]Layer, error) {
	client, err := db.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoPackage: %w", err)
	}
	defer client.Close()

	layers, err := readLayerMetadata(ctx, client)
	if err != nil {
		return nil, err
	}

	for i := range layers {
		if layers[i].GeometryColumn == "" {
			continue
		}
		counts, err := countGeometryTypes(ctx, client, layers[i].Name, layers[i].GeometryColumn)
		if err != nil {
			return nil, fmt.Errorf("failed to read geometries of %s: %w", layers[i].Name, err)
		}
		layers[i].TypeCounts = counts
	}

	return layers, nil
}

func readLayerMetadata(ctx context.Context, client *db.Client) ([]Layer, error) {
	query := `
		SELECT g.table_name, g.column_name, g.geometry_type_name, COALESCE(s.srs_name, '')
		FROM gpkg_geometry_columns g
		LEFT JOIN gpkg_spatial_ref_sys s ON s.srs_id = g.srs_id
		ORDER BY g.table_name
	`

	rows, err := client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry columns: %w", err)
	}
	defer rows.Close()

	var layers []Layer
	for rows.Next() {
		var l Layer
		if err := rows.Scan(&l.Name, &l.GeometryColumn, &l.GeometryType, &l.SpatialRef); err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}

	return layers, rows.Err()
}

func countGeometryTypes(ctx context.Context, client *db.Client, table, column string) (map[string]int, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL",
		schema.QuoteIdent(column), table, schema.QuoteIdent(column))

	rows, err := client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		name, err := geometryTypeName(blob)
		if err != nil {
			return nil, err
		}
		counts[name]++
	}

	return counts, rows.Err()
}
