package gpkg

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvigis/gpkgcheck/internal/schema"
)

func createFixture(t *testing.T, name string, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestFromFileMissingFile(t *testing.T) {
	_, err := FromFile(context.Background(), filepath.Join(t.TempDir(), "nope.gpkg"))
	assert.ErrorIs(t, err, ErrNotGeoPackage)
}

func TestFromFileWrongExtension(t *testing.T) {
	path := createFixture(t, "data.sqlite", "CREATE TABLE t (id INTEGER)")

	_, err := FromFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrNotGeoPackage)
}

func TestFromFileIntrospectsEligibleTables(t *testing.T) {
	path := createFixture(t, "delivery.gpkg",
		"CREATE TABLE NVINaturvardesbiotop (id INTEGER PRIMARY KEY, naturtyp TEXT)",
		"CREATE TABLE gpkg_contents (table_name TEXT)",
		"CREATE TABLE VL_NaturtypNVI (id INTEGER PRIMARY KEY)",
	)

	p, err := FromFile(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, p.Tables, 2)
	assert.NotNil(t, p.Table("NVINaturvardesbiotop"))
	assert.NotNil(t, p.Table("VL_NaturtypNVI"))
	assert.Nil(t, p.Table("gpkg_contents"))
}

func TestDuplicateCreatesIndependentCopy(t *testing.T) {
	path := createFixture(t, "delivery.gpkg",
		"CREATE TABLE NVINaturvardesbiotop (id INTEGER PRIMARY KEY, naturtyp TEXT)",
	)
	p, err := FromFile(context.Background(), path)
	require.NoError(t, err)

	dir := t.TempDir()
	cp, err := p.Duplicate(dir, "foreign-keys")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "foreign-keys.gpkg"), cp.Path)
	_, err = os.Stat(cp.Path)
	assert.NoError(t, err)

	// Mutating the copy's schema model never affects the original's.
	cp.Table("NVINaturvardesbiotop").SetColumnNotNull("naturtyp")
	cp.Table("NVINaturvardesbiotop").AddForeignKey("naturtyp", "VL_NaturtypNVI", `"values"`)

	original := p.Table("NVINaturvardesbiotop")
	assert.False(t, original.Column("naturtyp").NotNull)
	assert.Empty(t, original.ForeignKeys)
}

func TestDuplicateDefaultNameAddsCopySuffix(t *testing.T) {
	path := createFixture(t, "delivery.gpkg", "CREATE TABLE t (id INTEGER)")
	p, err := FromFile(context.Background(), path)
	require.NoError(t, err)

	dir := t.TempDir()
	cp, err := p.Duplicate(dir, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "delivery_copy.gpkg"), cp.Path)
}

func TestDuplicateFailsOnBadTargetDir(t *testing.T) {
	path := createFixture(t, "delivery.gpkg", "CREATE TABLE t (id INTEGER)")
	p, err := FromFile(context.Background(), path)
	require.NoError(t, err)

	_, err = p.Duplicate(filepath.Join(t.TempDir(), "missing", "nested"), "copy")
	assert.Error(t, err)
}

func TestSortTablesByForeignKeys(t *testing.T) {
	p := &Package{Tables: []*schema.Table{
		{Name: "three", ForeignKeys: []schema.ForeignKey{{Column: "a"}, {Column: "b"}, {Column: "c"}}},
		{Name: "none"},
		{Name: "one", ForeignKeys: []schema.ForeignKey{{Column: "a"}}},
	}}

	p.SortTablesByForeignKeys()

	var order []string
	for _, t := range p.Tables {
		order = append(order, t.Name)
	}
	assert.Equal(t, []string{"none", "one", "three"}, order)
}
