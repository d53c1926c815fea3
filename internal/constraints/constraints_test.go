package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvigis/gpkgcheck/internal/gpkg"
	"github.com/nvigis/gpkgcheck/internal/schema"
)

func table(name string, columns ...string) *schema.Table {
	t := &schema.Table{Name: name}
	for _, c := range columns {
		t.Columns = append(t.Columns, schema.Column{Name: c, Type: "TEXT"})
	}
	return t
}

func TestApplyForeignKeysMarksReferencedColumnsUnique(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("KartlaggningBiologiskMangfald", "id", "objektidentitet"),
		table("VL_NaturtypNVI", "id", `"values"`),
	}}

	ApplyForeignKeys(p)

	assert.True(t, p.Table("KartlaggningBiologiskMangfald").Column("objektidentitet").Unique)
	assert.True(t, p.Table("VL_NaturtypNVI").Column(`"values"`).Unique)
	assert.False(t, p.Table("KartlaggningBiologiskMangfald").Column("id").Unique)
}

func TestApplyForeignKeysDerivesTableFromFKPrefix(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("informationOmKartlaggning", "id", "FK_KartlaggningBM", "FK_Livsmiljo_yta"),
	}}

	ApplyForeignKeys(p)

	fks := p.Table("informationOmKartlaggning").ForeignKeys
	require.Len(t, fks, 2)
	// The abbreviated suffix maps to the full table name.
	assert.Equal(t, schema.ForeignKey{
		Column:    "FK_KartlaggningBM",
		RefTable:  "KartlaggningBiologiskMangfald",
		RefColumn: "objektidentitet",
	}, fks[0])
	assert.Equal(t, schema.ForeignKey{
		Column:    "FK_Livsmiljo_yta",
		RefTable:  "Livsmiljo_yta",
		RefColumn: "objektidentitet",
	}, fks[1])
}

func TestApplyForeignKeysUsesLookupTableMap(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("NVINaturvardesbiotop", "id", "naturtyp", "naturvardesklass", "objektbeskrivning"),
	}}

	ApplyForeignKeys(p)

	fks := p.Table("NVINaturvardesbiotop").ForeignKeys
	require.Len(t, fks, 2)
	assert.Contains(t, fks, schema.ForeignKey{
		Column: "naturtyp", RefTable: "VL_NaturtypNVI", RefColumn: `"values"`,
	})
	assert.Contains(t, fks, schema.ForeignKey{
		Column: "naturvardesklass", RefTable: "VL_Naturvardesklass", RefColumn: `"values"`,
	})
}

func TestApplyForeignKeysIsIdempotent(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("NVINaturvardesbiotop", "id", "naturtyp"),
	}}

	ApplyForeignKeys(p)
	ApplyForeignKeys(p)

	assert.Len(t, p.Table("NVINaturvardesbiotop").ForeignKeys, 1)
}

func TestApplyForeignKeysSortsTables(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("informationOmKartlaggning", "id", "FK_KartlaggningBM", "naturtyp"),
		table("VL_NaturtypNVI", "id", `"values"`),
	}}

	ApplyForeignKeys(p)

	assert.Equal(t, "VL_NaturtypNVI", p.Tables[0].Name)
	assert.Equal(t, "informationOmKartlaggning", p.Tables[1].Name)
}

func TestApplyNotNullGlobalColumns(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("NVINaturvardesbiotop", "id", "datum", "utforare", "objektbeskrivning"),
		table("OvrigBiotop", "id", "datum"),
	}}

	ApplyNotNull(p, false)

	assert.ElementsMatch(t,
		[]string{"datum", "utforare", "objektbeskrivning"},
		p.Table("NVINaturvardesbiotop").NotNullColumns())
	assert.Equal(t, []string{"datum"}, p.Table("OvrigBiotop").NotNullColumns())
}

func TestApplyNotNullScopedColumns(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("NVINaturvardesbiotop", "id", "naturtyp"),
		table("Vardeelement_yta", "id", "naturtyp"),
	}}

	ApplyNotNull(p, false)

	// naturtyp is required on NVINaturvardesbiotop and OvrigBiotop only.
	assert.Equal(t, []string{"naturtyp"}, p.Table("NVINaturvardesbiotop").NotNullColumns())
	assert.Empty(t, p.Table("Vardeelement_yta").NotNullColumns())
}

func TestApplyNotNullAsCheckConstraints(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("NVINaturvardesbiotop", "id", "naturtyp", "datum"),
	}}

	ApplyNotNull(p, true)

	tab := p.Table("NVINaturvardesbiotop")
	assert.Empty(t, tab.NotNullColumns())
	assert.Contains(t, tab.Checks, schema.CheckConstraint{Expr: "naturtyp is not null"})
	assert.Contains(t, tab.Checks, schema.CheckConstraint{Expr: "datum is not null"})
}

func TestApplyChecksRequiresAllColumns(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("ArtforekomstNVI", "id", "kvantifiering", "altTillKvantifiering"),
		table("Partial", "id", "kvantifiering"),
	}}

	ApplyChecks(p)

	require.Len(t, p.Table("ArtforekomstNVI").Checks, 1)
	assert.Equal(t,
		"kvantifiering is not null or altTillKvantifiering is not null",
		p.Table("ArtforekomstNVI").Checks[0].Expr)
	assert.Empty(t, p.Table("Partial").Checks)
}

func TestApplyChecksHonorsTableRestriction(t *testing.T) {
	columns := []string{"id", "FK_Naturvardestrad_punkt", "FK_Naturvardestrad_yta"}
	p := &gpkg.Package{Tables: []*schema.Table{
		table("motivering", columns...),
		table("Elsewhere", columns...),
	}}

	ApplyChecks(p)

	require.Len(t, p.Table("motivering").Checks, 1)
	assert.Empty(t, p.Table("Elsewhere").Checks)
}

func TestApplyChecksIsIdempotent(t *testing.T) {
	p := &gpkg.Package{Tables: []*schema.Table{
		table("ArtforekomstNVI", "id", "kvantifiering", "altTillKvantifiering"),
	}}

	ApplyChecks(p)
	ApplyChecks(p)

	assert.Len(t, p.Table("ArtforekomstNVI").Checks, 1)
}
