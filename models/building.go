package models

import "time"

// Field names an extractable building attribute. The string value doubles as
// the JSON key the record is written under.
type Field string

const (
	FieldAddress       Field = "address"
	FieldZipCode       Field = "zip_code"
	FieldBorough       Field = "borough"
	FieldBuildingType  Field = "building_type"
	FieldFloors        Field = "floors"
	FieldNumberOfUnits Field = "number_of_units"
	FieldYearBuilt     Field = "year_built"

	FieldDOBViolations Field = "dob_violations"
	FieldECBViolations Field = "ecb_violations"
	FieldHPDViolations Field = "hpd_violations"
	FieldDOBComplaints Field = "dob_complaints"
)

// OverviewFieldOrder is the order overview fields appear in a saved record.
var OverviewFieldOrder = []Field{
	FieldAddress,
	FieldZipCode,
	FieldBorough,
	FieldBuildingType,
	FieldFloors,
	FieldNumberOfUnits,
	FieldYearBuilt,
}

// ViolationFieldOrder is the order violation fields appear in a saved record.
var ViolationFieldOrder = []Field{
	FieldDOBViolations,
	FieldECBViolations,
	FieldHPDViolations,
	FieldDOBComplaints,
}

// ViewKind is one of the logical page contexts scraped for a building.
type ViewKind string

const (
	ViewOverview   ViewKind = "overview"
	ViewViolations ViewKind = "violations"
)

// OverviewFields holds what was read from the overview tab. Every value is
// independently optional and numeric values keep the digits exactly as read.
type OverviewFields struct {
	Address       *string `json:"address"`
	ZipCode       *string `json:"zip_code"`
	Borough       *string `json:"borough"`
	BuildingType  *string `json:"building_type"`
	Floors        *string `json:"floors"`
	NumberOfUnits *string `json:"number_of_units"`
	YearBuilt     *string `json:"year_built"`
}

// ViolationFields holds the counts read from the violations tab.
type ViolationFields struct {
	DOBViolations *string `json:"dob_violations"`
	ECBViolations *string `json:"ecb_violations"`
	HPDViolations *string `json:"hpd_violations"`
	DOBComplaints *string `json:"dob_complaints"`
}

// BuildingRecord is the assembled result of one scrape.
type BuildingRecord struct {
	SourceURL      string          `json:"url"`
	RetrievedAt    time.Time       `json:"scraped_at"`
	Overview       OverviewFields  `json:"building_info"`
	Violations     ViolationFields `json:"violations"`
	FootprintImage *string         `json:"building_footprint_url"`
}

// Set assigns value to the overview field f. Unknown fields are ignored.
func (o *OverviewFields) Set(f Field, value string) {
	v := value
	switch f {
	case FieldAddress:
		o.Address = &v
	case FieldZipCode:
		o.ZipCode = &v
	case FieldBorough:
		o.Borough = &v
	case FieldBuildingType:
		o.BuildingType = &v
	case FieldFloors:
		o.Floors = &v
	case FieldNumberOfUnits:
		o.NumberOfUnits = &v
	case FieldYearBuilt:
		o.YearBuilt = &v
	}
}

// Get returns the value of overview field f, if set.
func (o OverviewFields) Get(f Field) (string, bool) {
	var p *string
	switch f {
	case FieldAddress:
		p = o.Address
	case FieldZipCode:
		p = o.ZipCode
	case FieldBorough:
		p = o.Borough
	case FieldBuildingType:
		p = o.BuildingType
	case FieldFloors:
		p = o.Floors
	case FieldNumberOfUnits:
		p = o.NumberOfUnits
	case FieldYearBuilt:
		p = o.YearBuilt
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

func (v *ViolationFields) Set(f Field, value string) {
	s := value
	switch f {
	case FieldDOBViolations:
		v.DOBViolations = &s
	case FieldECBViolations:
		v.ECBViolations = &s
	case FieldHPDViolations:
		v.HPDViolations = &s
	case FieldDOBComplaints:
		v.DOBComplaints = &s
	}
}

func (v ViolationFields) Get(f Field) (string, bool) {
	var p *string
	switch f {
	case FieldDOBViolations:
		p = v.DOBViolations
	case FieldECBViolations:
		p = v.ECBViolations
	case FieldHPDViolations:
		p = v.HPDViolations
	case FieldDOBComplaints:
		p = v.DOBComplaints
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

// Label renders a field name for summaries, e.g. "number_of_units" -> "Number Of Units".
func (f Field) Label() string {
	out := make([]byte, 0, len(f))
	upper := true
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}
