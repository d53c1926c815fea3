package constraints

import "github.com/nvigis/gpkgcheck/internal/gpkg"

// checkRule is a named boolean SQL expression. A rule applies to a table when
// every referenced column exists on it and, if Tables is set, the table name
// is in that set.
type checkRule struct {
	Name    string
	Expr    string
	Columns []string
	Tables  []string
}

var checkRules = []checkRule{
	{
		Name:    "kvantifiering",
		Expr:    "kvantifiering is not null or altTillKvantifiering is not null",
		Columns: []string{"kvantifiering", "altTillKvantifiering"},
	},
	{
		Name:    "taxon nvi",
		Expr:    "taxon_svensktNamn is not null or taxon_vetenskapligtNamn is not null",
		Columns: []string{"taxon_svensktNamn", "taxon_vetenskapligtNamn"},
	},
	{
		Name:    "motivering vardelandskap",
		Expr:    "vardelandskap in (False, 'Nej', 'nej') or motiveringVardelandskap is not Null",
		Columns: []string{"vardelandskap", "motiveringVardelandskap"},
	},
	{
		Name:    "forklaring preliminar vardesklass",
		Expr:    "preliminarVardesklass in (False, 'Nej', 'nej') or forkTillPrelVardesklass is not Null",
		Columns: []string{"preliminarVardesklass", "forkTillPrelVardesklass"},
	},
	{
		Name:    "forklaring preliminar avgransning",
		Expr:    "preliminarAvgransning in (False, 'Nej', 'nej') or forkTillPrelAvgransning is not Null",
		Columns: []string{"preliminarAvgransning", "forkTillPrelVardesklass"},
	},
	{
		Name:    "vattendrag hydrotyp",
		Expr:    "naturtyp not like 'vattendrag' or (hydromorfologiskTyp is not Null and hydromorfologiskTypkod is not null)",
		Columns: []string{"naturtyp", "hydromorfologiskTyp", "hydromorfologiskTypkod"},
	},
	{
		Name:    "naturvardesklass eller ovrigVardeklass",
		Expr:    "naturvardesklass is not NULL or ovrigVardeklass is not NULL",
		Columns: []string{"naturvardesklass", "ovrigVardeklass"},
	},
	{
		Name:    "livsmiljons lamplighet eller alternativ",
		Expr:    "livsmiljonsLamplighet is not NULL or altTillLivsmiljLamplighet is not NULL",
		Columns: []string{"livsmiljonsLamplighet", "altTillLivsmiljLamplighet"},
	},
	{
		Name:    "minsta karteringsenhet",
		Expr:    "kartl_typAvKartlaggning not like 'NVI%' and kartl_typAvKartlaggning not like 'fördjupad inventering - Övriga biotoper' OR kartl_minstaKarteringsenh is not Null",
		Columns: []string{"kartl_minstaKarteringsenh", "kartl_typAvKartlaggning"},
	},
	{
		Name:    "FK_Livsmiljo",
		Expr:    "FK_Livsmiljo_punkt is not null or FK_Livsmiljo_yta is not null",
		Columns: []string{"FK_Livsmiljo_punkt", "FK_Livsmiljo_yta"},
		Tables:  []string{"livsmiljonsBedomdaFunktioner"},
	},
	{
		Name: "FK_SarskSkyddsvTrad",
		Expr: "FK_SarskSkyddsvTrad_punkt is not null or FK_SarskSkyddsvTrad_yta is not null or FK_Naturvardestrad_punkt is not null or FK_Naturvardestrad_yta is not null",
		Columns: []string{
			"FK_SarskSkyddsvTrad_punkt",
			"FK_SarskSkyddsvTrad_yta",
			"FK_Naturvardestrad_punkt",
			"FK_Naturvardestrad_yta",
		},
		Tables: []string{"SarskiltSkyddsvartTrad"},
	},
	{
		Name:    "FK_Naturvardestrad",
		Expr:    "FK_Naturvardestrad_punkt is not null or FK_Naturvardestrad_yta is not null",
		Columns: []string{"FK_Naturvardestrad_punkt", "FK_Naturvardestrad_yta"},
		Tables:  []string{"motivering"},
	},
}

// ApplyChecks adds every applicable check rule to the tables of the package.
func ApplyChecks(p *gpkg.Package) {
	for _, table := range p.Tables {
		for _, rule := range checkRules {
			if !table.HasColumns(rule.Columns) {
				continue
			}
			if rule.Tables != nil && !contains(rule.Tables, table.Name) {
				continue
			}
			table.AddCheckConstraint(rule.Expr)
		}
	}
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
