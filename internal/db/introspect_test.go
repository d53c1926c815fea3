package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, stmts ...string) *Client {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "fixture.gpkg")
	client, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	for _, stmt := range stmts {
		_, err := client.DB().ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return client
}

func TestTableNamesExcludesInternalTables(t *testing.T) {
	client := newTestDB(t,
		"CREATE TABLE NVINaturvardesbiotop (id INTEGER PRIMARY KEY)",
		"CREATE TABLE VL_NaturtypNVI (id INTEGER PRIMARY KEY)",
		"CREATE TABLE gpkg_contents (table_name TEXT)",
		"CREATE TABLE gpkg_geometry_columns (table_name TEXT)",
		"CREATE TABLE layer_styles (id INTEGER)",
		"CREATE TABLE rtree_geom_node (nodeno INTEGER)",
	)

	names, err := NewIntrospector(client).TableNames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"NVINaturvardesbiotop", "VL_NaturtypNVI"}, names)
}

func TestIntrospectTableRoundTrip(t *testing.T) {
	client := newTestDB(t,
		`CREATE TABLE KartlaggningBiologiskMangfald (
			id INTEGER PRIMARY KEY,
			objektidentitet TEXT UNIQUE,
			datum DATE NOT NULL,
			anledning TEXT,
			FOREIGN KEY (anledning) REFERENCES VL_Anledning(objektidentitet)
		)`,
	)

	table, err := NewIntrospector(client).Table(context.Background(), "KartlaggningBiologiskMangfald")
	require.NoError(t, err)

	assert.Equal(t, "KartlaggningBiologiskMangfald", table.Name)
	assert.Equal(t, []string{"id", "objektidentitet", "datum", "anledning"}, table.ColumnNames())

	id := table.Column("id")
	require.NotNil(t, id)
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, "INTEGER", id.Type)

	objektidentitet := table.Column("objektidentitet")
	require.NotNil(t, objektidentitet)
	assert.True(t, objektidentitet.Unique)
	assert.False(t, objektidentitet.NotNull)

	datum := table.Column("datum")
	require.NotNil(t, datum)
	assert.True(t, datum.NotNull)
	assert.Equal(t, "DATE", datum.Type)

	require.Len(t, table.ForeignKeys, 1)
	assert.Equal(t, "anledning", table.ForeignKeys[0].Column)
	assert.Equal(t, "VL_Anledning", table.ForeignKeys[0].RefTable)
	assert.Equal(t, "objektidentitet", table.ForeignKeys[0].RefColumn)
}

func TestIntrospectQuotesReservedValuesColumn(t *testing.T) {
	client := newTestDB(t,
		`CREATE TABLE VL_NaturtypNVI (id INTEGER PRIMARY KEY, "values" TEXT)`,
	)

	table, err := NewIntrospector(client).Table(context.Background(), "VL_NaturtypNVI")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", `"values"`}, table.ColumnNames())
	assert.Nil(t, table.Column("values"))
	assert.NotNil(t, table.Column(`"values"`))
}
