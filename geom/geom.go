// Package geom provides geometry-layer introspection for GeoPackage files:
// per layer, the geometry column, the declared geometry type, the histogram
// of geometry types actually stored, and the spatial reference name.
//
// The capability is an explicit collaborator. Validations that need geometry
// information take a Capability value; passing none makes those validations
// fail with a typed error instead of degrading silently.
package geom

import "context"

// Layer describes one geometry layer of a GeoPackage.
type Layer struct {
	// Name is the feature table name.
	Name string
	// GeometryColumn is the geometry column name, empty for attribute-only
	// layers.
	GeometryColumn string
	// GeometryType is the declared geometry type name, e.g. POINT.
	GeometryType string
	// SpatialRef is the name of the layer's spatial reference system.
	SpatialRef string
	// TypeCounts maps each geometry type name found among the layer's
	// features to its feature count.
	TypeCounts map[string]int
}

// Capability opens a GeoPackage as a set of geometry layers.
type Capability interface {
	Layers(ctx context.Context, path string) ([]Layer, error)
}
