package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return &Table{
		Name: "NVINaturvardesbiotop",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "objektidentitet", Type: "TEXT"},
			{Name: "naturtyp", Type: "TEXT"},
			{Name: "datum", Type: "DATE"},
		},
	}
}

func TestCreateStatementColumnsOnly(t *testing.T) {
	table := testTable()

	want := "CREATE TABLE NVINaturvardesbiotop (" +
		"id INTEGER PRIMARY KEY, objektidentitet TEXT, naturtyp TEXT, datum DATE)"
	assert.Equal(t, want, table.CreateStatement())
}

func TestCreateStatementFixedSectionOrder(t *testing.T) {
	table := testTable()
	table.Columns[1].Unique = true
	table.Columns[2].NotNull = true
	table.AddForeignKey("naturtyp", "VL_NaturtypNVI", `"values"`)
	table.AddCheckConstraint("datum is not null")

	want := "CREATE TABLE NVINaturvardesbiotop (" +
		"id INTEGER PRIMARY KEY, " +
		"objektidentitet TEXT UNIQUE, " +
		"naturtyp TEXT NOT NULL, " +
		"datum DATE, " +
		`FOREIGN KEY (naturtyp) REFERENCES VL_NaturtypNVI("values"), ` +
		"CHECK(datum is not null))"
	assert.Equal(t, want, table.CreateStatement())
}

func TestAddForeignKeyIdempotent(t *testing.T) {
	table := testTable()

	table.AddForeignKey("naturtyp", "VL_NaturtypNVI", `"values"`)
	table.AddForeignKey("naturtyp", "VL_NaturtypNVI", `"values"`)

	require.Len(t, table.ForeignKeys, 1)

	// A different triple is a different rule.
	table.AddForeignKey("naturtyp", "VL_NaturtypNVI", "objektidentitet")
	assert.Len(t, table.ForeignKeys, 2)
}

func TestAddCheckConstraintIdempotent(t *testing.T) {
	table := testTable()

	table.AddCheckConstraint("datum is not null")
	table.AddCheckConstraint("datum is not null")

	assert.Len(t, table.Checks, 1)
}

func TestSetColumnNotNull(t *testing.T) {
	table := testTable()

	table.SetColumnNotNull("naturtyp")

	require.NotNil(t, table.Column("naturtyp"))
	assert.True(t, table.Column("naturtyp").NotNull)
	assert.False(t, table.Column("objektidentitet").NotNull)
	assert.False(t, table.Column("datum").NotNull)
}

func TestSetColumnNotNullAbsentColumnIsNoop(t *testing.T) {
	table := testTable()

	table.SetColumnNotNull("no_such_column")

	assert.Empty(t, table.NotNullColumns())
}

func TestColumnNamesPreserveDeclarationOrder(t *testing.T) {
	table := testTable()

	assert.Equal(t, []string{"id", "objektidentitet", "naturtyp", "datum"}, table.ColumnNames())
}

func TestHasColumns(t *testing.T) {
	table := testTable()

	assert.True(t, table.HasColumns([]string{"id", "datum"}))
	assert.False(t, table.HasColumns([]string{"id", "missing"}))
}

func TestCloneIsIndependent(t *testing.T) {
	table := testTable()
	table.AddForeignKey("naturtyp", "VL_NaturtypNVI", `"values"`)

	clone := table.Clone()
	clone.SetColumnNotNull("datum")
	clone.AddForeignKey("objektidentitet", "Other", "objektidentitet")
	clone.AddCheckConstraint("naturtyp is not null")

	assert.False(t, table.Column("datum").NotNull)
	assert.Len(t, table.ForeignKeys, 1)
	assert.Empty(t, table.Checks)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"values"`, QuoteIdent("values"))
	assert.Equal(t, `"values"`, QuoteIdent(`"values"`))
	assert.Equal(t, `"datum"`, QuoteIdent("datum"))
}
