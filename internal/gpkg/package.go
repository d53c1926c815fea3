// Package gpkg owns the GeoPackage as a unit of lifecycle: a file path plus
// the introspected schema of its tables, with disposable-copy creation so
// destructive validations never touch the original artifact.
package gpkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvigis/gpkgcheck/internal/db"
	"github.com/nvigis/gpkgcheck/internal/schema"
)

// Extension is the required file extension for a GeoPackage container.
const Extension = ".gpkg"

// ErrNotGeoPackage is returned when the input file is missing or does not
// carry the GeoPackage extension. Check with errors.Is.
var ErrNotGeoPackage = errors.New("not a GeoPackage file")

// Package is a GeoPackage file plus the schema model of its tables. The
// tables reflect the on-disk structure at introspection time, augmented by
// whatever overlays have since been applied to this instance.
type Package struct {
	Path   string
	Tables []*schema.Table
}

// FromFile introspects every eligible table in the file and builds a Package.
func FromFile(ctx context.Context, path string) (*Package, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}

	client, err := db.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoPackage: %w", err)
	}
	defer client.Close()

	in := db.NewIntrospector(client)
	names, err := in.TableNames(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		table, err := in.Table(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return &Package{Path: path, Tables: tables}, nil
}

func checkPath(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s does not exist", ErrNotGeoPackage, path)
	}
	if filepath.Ext(path) != Extension {
		return fmt.Errorf("%w: %s has the wrong extension", ErrNotGeoPackage, path)
	}
	return nil
}

// Table returns the table with the given name, or nil.
func (p *Package) Table(name string) *schema.Table {
	for _, t := range p.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Duplicate copies the underlying file into dir (the original's directory if
// empty) under newName (the original stem suffixed with _copy if empty) and
// deep-copies the table models, so overlay mutations on the copy never affect
// this package. The GeoPackage extension is enforced on the copy.
func (p *Package) Duplicate(dir, newName string) (*Package, error) {
	if dir == "" {
		dir = filepath.Dir(p.Path)
	}
	name := newName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(p.Path), Extension) + "_copy"
	}
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}

	dst := filepath.Join(dir, name)
	if err := copyFile(p.Path, dst); err != nil {
		return nil, fmt.Errorf("failed to copy GeoPackage: %w", err)
	}

	tables := make([]*schema.Table, len(p.Tables))
	for i, t := range p.Tables {
		tables[i] = t.Clone()
	}

	return &Package{Path: dst, Tables: tables}, nil
}

// SortTablesByForeignKeys reorders the table list so tables with fewer
// foreign-key rules come first. This is an approximation of a real dependency
// order, kept for creation-order compatibility; it is not a topological sort.
func (p *Package) SortTablesByForeignKeys() {
	sort.SliceStable(p.Tables, func(i, j int) bool {
		return len(p.Tables[i].ForeignKeys) < len(p.Tables[j].ForeignKeys)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
