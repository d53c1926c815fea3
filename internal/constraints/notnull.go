package constraints

import "github.com/nvigis/gpkgcheck/internal/gpkg"

// requiredEverywhere lists columns that must be NOT NULL on any table where
// they appear.
var requiredEverywhere = []string{
	"BiotopbeteckningNVI",
	"FK_KartlaggningBM",
	"anledning",
	"artvarden",
	"beskrAvKartlaggomr",
	"bestOrg_orgNamn",
	"bestOrg_orgNummer",
	"biotopvarden",
	"datum",
	"datumForFaltbesok",
	"datumForObjektavgr",
	"kalla",
	"kartl_typAvKartlaggning",
	"vardeelementtyp",
	"vardelandskap",
	"versionGiltigFran",
	"stamomkrets",
	"tidsperiod_fran",
	"tidsperiod_til",
	"tradstatus",
	"typAvBiotopsskyddsomr",
	"utfOrg_orgNamn",
	"utfOrg_orgNummer",
	"utforare",
	"preliminarVardesklass",
	"projektidentitet",
	"objektversion",
	"objektidentitet",
}

// scopedRequirement requires a column to be NOT NULL only on specific tables.
type scopedRequirement struct {
	Column string
	Tables []string
}

var requiredOnTables = []scopedRequirement{
	{Column: "fortsatterUtanforInvomr", Tables: []string{"NVINaturvardesbiotop"}},
	{Column: "hydromorfologiskTyp", Tables: []string{"VattendragDelstracka"}},
	{Column: "hydromorfologiskTypkod", Tables: []string{"VattendragDelstracka"}},
	{Column: "id", Tables: []string{"ReferensTillUnderlag"}},
	{Column: "invasivaFrammandeArter", Tables: []string{"NVINaturvardesbiotop"}},
	{Column: "naturtyp", Tables: []string{"NVINaturvardesbiotop", "OvrigBiotop"}},
	{Column: "naturvardesklass", Tables: []string{"NVINaturvardesbiotop"}},
	{Column: "objektbeskrivning", Tables: []string{
		"NVILandskapsomrade",
		"NVINaturvardesbiotop",
		"Livsmiljo_yta",
		"Livsmiljo_punkt",
	}},
	{Column: "objektnummer", Tables: []string{
		"NVILandskapsomrade",
		"NVINaturvardesbiotop",
		"Vardeelement_yta",
	}},
	{Column: "ovrigVardeklass", Tables: []string{"OvrigBiotop"}},
	{Column: "preliminarAvgransning", Tables: []string{"NVINaturvardesbiotop", "VattendragDelstracka"}},
	{Column: "referenser", Tables: []string{"NVINaturvardesbiotop"}},
	{Column: "vardearterKandaTidigare", Tables: []string{"NVINaturvardesbiotop"}},
	{Column: "vardearterObserverade", Tables: []string{
		"NVINaturvardesbiotop",
		"VattendragDelstracka",
		"Smavatten_yta",
		"Smavatten_punkt",
		"Bottenmiljo_yta",
		"Bottenmiljo_punkt",
	}},
}

// ApplyNotNull applies the standard's required-column rules to every table in
// the package. With asCheck set, each requirement becomes a "<column> is not
// null" check constraint instead of a schema-level NOT NULL flag, for
// validation techniques that cannot alter column nullability.
func ApplyNotNull(p *gpkg.Package, asCheck bool) {
	for _, req := range requiredOnTables {
		for _, tableName := range req.Tables {
			table := p.Table(tableName)
			if table == nil {
				continue
			}
			if asCheck {
				table.AddCheckConstraint(req.Column + " is not null")
			} else {
				table.SetColumnNotNull(req.Column)
			}
		}
	}

	for _, column := range requiredEverywhere {
		for _, table := range p.Tables {
			if table.Column(column) == nil {
				continue
			}
			if asCheck {
				table.AddCheckConstraint(column + " is not null")
			} else {
				table.SetColumnNotNull(column)
			}
		}
	}
}
