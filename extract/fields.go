package extract

import (
	"go.uber.org/zap"

	"nyc_buildings/models"
)

// OverviewRules are the line rules for the overview tab, in evaluation order.
var OverviewRules = []LineRule{
	BoroughRule{},
	FieldSpec{
		Name:  models.FieldYearBuilt,
		Label: AnyLabel(Contains("year built"), Exactly("built")),
		Value: Year,
	},
	FieldSpec{
		Name:  models.FieldFloors,
		Label: Contains("floors", "stories"),
		Value: Digits,
	},
	FieldSpec{
		Name:  models.FieldNumberOfUnits,
		Label: ContainsAll("units", "number"),
		Value: Digits,
	},
	FieldSpec{
		Name:  models.FieldBuildingType,
		Label: Contains("building type", "property type"),
		Value: Verbatim,
	},
	ZipRule,
}

// OverviewBlockLabels are checked in order; the first unset match wins.
var OverviewBlockLabels = []BlockLabel{
	{Contains: "year built", Field: models.FieldYearBuilt},
	{Contains: "floors", Field: models.FieldFloors},
	{Contains: "units", Field: models.FieldNumberOfUnits},
	{Contains: "type", Field: models.FieldBuildingType},
	{Contains: "borough", Field: models.FieldBorough},
}

// ViolationRules read a count from the next line, or from the label line.
var ViolationRules = []LineRule{
	FieldSpec{Name: models.FieldDOBViolations, Label: Contains("dob violation"), Value: Digits},
	FieldSpec{Name: models.FieldECBViolations, Label: Contains("ecb violation"), Value: Digits},
	FieldSpec{Name: models.FieldHPDViolations, Label: Contains("hpd violation"), Value: Digits},
	FieldSpec{Name: models.FieldDOBComplaints, Label: Contains("dob complaint"), Value: Digits},
}

// NewOverviewPipeline builds the four-strategy overview pipeline.
func NewOverviewPipeline(logger *zap.Logger) *Pipeline {
	return NewPipeline(string(models.ViewOverview), models.OverviewFieldOrder,
		LinePairScan{Rules: OverviewRules},
		HeadingStrategy{},
		BlockPairStrategy{Labels: OverviewBlockLabels},
		URLAddressStrategy{},
	).WithLogger(logger)
}

// NewViolationsPipeline builds the text-pattern-only violations pipeline.
func NewViolationsPipeline(logger *zap.Logger) *Pipeline {
	return NewPipeline(string(models.ViewViolations), models.ViolationFieldOrder,
		LinePairScan{Rules: ViolationRules},
	).WithLogger(logger)
}

// ExtractOverview runs the overview pipeline without logging.
func ExtractOverview(v *View) models.OverviewFields {
	return NewOverviewPipeline(nil).Run(v).Overview()
}

// ExtractViolations runs the violations pipeline without logging.
func ExtractViolations(v *View) models.ViolationFields {
	return NewViolationsPipeline(nil).Run(v).Violations()
}
