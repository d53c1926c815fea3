// Package constraints defines the constraint overlays of the NVI 2023
// GeoPackage standard: rule sets that augment an introspected schema with
// foreign keys, not-null flags and check constraints the standard requires
// but the physical file does not declare.
//
// Overlays mutate the schema model of the package they are applied to, never
// the file itself. They are meant for disposable copies.
package constraints

import (
	"strings"

	"github.com/nvigis/gpkgcheck/internal/gpkg"
)

// lookupTableRefs maps domain-code columns to the lookup table that
// enumerates their valid codes. Each gets a foreign key to the lookup table's
// "values" column.
var lookupTableRefs = map[string]string{
	"kartl_typAvKartlaggning":   "VL_Kartlaggningstyp",
	"kartl_minstaKarteringsenh": "VL_Karteringsenhet",
	"typAvBiotopsskyddsomr":     "VL_Biotypskyddomradestyp",
	"kvantifiering":             "VL_KvantifieringArtforekomster",
	"livsmiljonsLamplighet":     "VL_LivsmiljosGradAvLamplighet",
	"vardeelementtyp":           "VL_Vardeelementtyp",
	"tradstatus":                "VL_Tradstatus",
	"tradvitalitet":             "VL_Tradvitalitet",
	"hydromorfologiskTyp":       "VL_HydromorfologiskTyp",
	"hydromorfologiskTypkod":    "VL_HydromorfologiskTypkod",
	"naturtyp":                  "VL_NaturtypNVI",
	"naturvardesklass":          "VL_Naturvardesklass",
	"ovrigVardeklass":           "VL_VardesklassOvrigaBiotoper",
	"BiotopbeteckningNVI":       "VL_BiotopbeteckningNVI",
	"N2000naturtypskod":         "VL_Natura2000Naturtypskoder",
	"N2000naturtypsnamn":        "VL_Natura2000Naturtypsnamn",
	"SarskSkyddsvTradKriterier": "VL_SarskSkyddsvTradKriterier",
	"motivering":                "VL_KanneteckenNaturvardestrad",
	"livsmiljoFunktion":         "VL_LivsmiljoFunktion",
}

// fkColumnPrefix marks columns that reference another content table by name:
// FK_<table> references <table>.objektidentitet.
const fkColumnPrefix = "FK_"

// tableAliases maps abbreviated FK_ suffixes to the real table name.
var tableAliases = map[string]string{
	"KartlaggningBM": "KartlaggningBiologiskMangfald",
}

// ApplyForeignKeys adds the standard's implicit foreign keys to every table
// in the package: referenced key columns are marked unique, FK_ columns and
// coded columns get their rules, and the table list is reordered so tables
// with fewer foreign keys come first.
func ApplyForeignKeys(p *gpkg.Package) {
	for _, t := range p.Tables {
		for i := range t.Columns {
			name := t.Columns[i].Name
			if name == "objektidentitet" || name == `"values"` {
				t.Columns[i].Unique = true
			}
		}
	}

	for _, t := range p.Tables {
		for _, c := range t.Columns {
			switch {
			case strings.HasPrefix(c.Name, fkColumnPrefix):
				refTable := strings.TrimPrefix(c.Name, fkColumnPrefix)
				if alias, ok := tableAliases[refTable]; ok {
					refTable = alias
				}
				t.AddForeignKey(c.Name, refTable, "objektidentitet")
			default:
				if refTable, ok := lookupTableRefs[c.Name]; ok {
					t.AddForeignKey(c.Name, refTable, `"values"`)
				}
			}
		}
	}

	p.SortTablesByForeignKeys()
}
