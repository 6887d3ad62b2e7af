package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"nyc_buildings/models"
)

func str(s string) *string { return &s }

// fixedStrategy returns the same candidates regardless of input.
type fixedStrategy struct {
	name  string
	out   []Candidate
	calls [][]models.Field
}

func (s *fixedStrategy) Name() string { return s.name }

func (s *fixedStrategy) Attempt(_ *View, unset []models.Field) []Candidate {
	s.calls = append(s.calls, unset)
	return s.out
}

func TestEndToEndScenario(t *testing.T) {
	overview := &View{
		Kind: models.ViewOverview,
		Text: strings.Join([]string{"Manhattan", "Year Built", "1931", "Floors", "42"}, "\n"),
	}
	violations := &View{
		Kind: models.ViewViolations,
		Text: strings.Join([]string{"DOB Violations 3", "ECB Violations", "0"}, "\n"),
	}

	o := ExtractOverview(overview)
	v := ExtractViolations(violations)

	assert.Equal(t, models.OverviewFields{
		Borough:   str("Manhattan"),
		YearBuilt: str("1931"),
		Floors:    str("42"),
	}, o)
	assert.Equal(t, models.ViolationFields{
		DOBViolations: str("3"),
		ECBViolations: str("0"),
	}, v)
}

func TestEmptyViewsYieldEmptyFields(t *testing.T) {
	assert.Equal(t, models.OverviewFields{}, ExtractOverview(&View{}))
	assert.Equal(t, models.ViolationFields{}, ExtractViolations(&View{}))
	assert.Equal(t, models.OverviewFields{}, ExtractOverview(nil))
}

func TestStrategyPriority_TextBeatsBlocks(t *testing.T) {
	v := &View{
		Text:   "Floors\n42",
		Blocks: []string{"Floors\n17", "Year Built\n1999"},
	}

	acc := NewOverviewPipeline(nil).Run(v)

	floors, ok := acc.Get(models.FieldFloors)
	require.True(t, ok)
	assert.Equal(t, "42", floors.Value)
	assert.Equal(t, "text_pattern", floors.Strategy)
	assert.Equal(t, 1, floors.Rank)
	assert.Equal(t, 0, floors.Line)

	year, ok := acc.Get(models.FieldYearBuilt)
	require.True(t, ok)
	assert.Equal(t, "1999", year.Value)
	assert.Equal(t, "structured_pairs", year.Strategy)
	assert.Equal(t, 3, year.Rank)
}

func TestEarliestLineWins(t *testing.T) {
	v := &View{Text: "Floors\n12\nStories\n30\n10019\n10022"}

	o := ExtractOverview(v)

	assert.Equal(t, str("12"), o.Floors)
	assert.Equal(t, str("10019"), o.ZipCode)
}

func TestAccumulatorNeverOverwrites(t *testing.T) {
	acc := NewAccumulator(models.OverviewFieldOrder)

	assert.True(t, acc.Accept(Candidate{Field: models.FieldAddress, Value: "first"}))
	assert.False(t, acc.Accept(Candidate{Field: models.FieldAddress, Value: "second"}))
	assert.False(t, acc.Accept(Candidate{Field: models.FieldFloors, Value: ""}))
	assert.False(t, acc.Accept(Candidate{Field: models.FieldDOBViolations, Value: "3"}), "not a target field")

	c, ok := acc.Get(models.FieldAddress)
	require.True(t, ok)
	assert.Equal(t, "first", c.Value)
	assert.NotContains(t, acc.Unset(), models.FieldAddress)
	assert.Contains(t, acc.Unset(), models.FieldFloors)
}

func TestPipelineIdempotentMerge(t *testing.T) {
	s1 := &fixedStrategy{name: "one", out: []Candidate{
		{Field: models.FieldAddress, Value: "from one"},
	}}
	s2 := &fixedStrategy{name: "two", out: []Candidate{
		{Field: models.FieldAddress, Value: "from two"},
		{Field: models.FieldBorough, Value: "Queens"},
	}}

	acc := NewPipeline("test", models.OverviewFieldOrder, s1, s2).Run(&View{})
	o := acc.Overview()

	assert.Equal(t, str("from one"), o.Address)
	assert.Equal(t, str("Queens"), o.Borough)

	require.Len(t, s2.calls, 1)
	assert.NotContains(t, s2.calls[0], models.FieldAddress, "set fields are not offered to later strategies")
}

func TestPipelineStopsWhenComplete(t *testing.T) {
	s1 := &fixedStrategy{name: "all", out: []Candidate{
		{Field: models.FieldDOBViolations, Value: "1"},
		{Field: models.FieldECBViolations, Value: "2"},
		{Field: models.FieldHPDViolations, Value: "3"},
		{Field: models.FieldDOBComplaints, Value: "4"},
	}}
	s2 := &fixedStrategy{name: "never"}

	NewPipeline("test", models.ViolationFieldOrder, s1, s2).Run(&View{})

	assert.Empty(t, s2.calls)
}

func TestHeadingStrategy(t *testing.T) {
	v := &View{
		URL:     "https://nyc.marketproof.com/building/manhattan/midtown/110-west-57-street-10019?tab=overview",
		Heading: "  110 West 57th Street  ",
	}

	o := ExtractOverview(v)

	assert.Equal(t, str("110 West 57th Street"), o.Address)
}

func TestURLFallback(t *testing.T) {
	v := &View{
		URL:     "https://nyc.marketproof.com/building/manhattan/midtown/110-west-57-street-10019?tab=overview",
		Heading: "   ",
	}

	o := ExtractOverview(v)

	assert.Equal(t, str("110 West 57 Street 10019"), o.Address)
}

func TestURLFallback_SkipsBuildingSegments(t *testing.T) {
	v := &View{URL: "https://example.com/building-42/x/no-digits/7-main-street"}

	o := ExtractOverview(v)

	assert.Equal(t, str("7 Main Street"), o.Address)
}

func TestURLFallback_NothingUsable(t *testing.T) {
	o := ExtractOverview(&View{URL: "https://nyc.marketproof.com/building/manhattan/midtown"})
	assert.Nil(t, o.Address)
}

func TestBlockPairs(t *testing.T) {
	v := &View{Blocks: []string{
		"",
		"Building Type\nElevator Apartment\nextra",
		"Property Type\nCondo",
		"Number of Units\n120",
		"Borough\nBrooklyn",
		"Floors\n   ",
		"Floors\n8",
		strings.Repeat("x", 190) + "\nFloors 99",
		"Year Built\n1920",
	}}

	o := ExtractOverview(v)

	assert.Equal(t, str("Condo"), o.BuildingType)
	assert.Equal(t, str("120"), o.NumberOfUnits)
	assert.Equal(t, str("Brooklyn"), o.Borough)
	assert.Equal(t, str("8"), o.Floors)
	assert.Equal(t, str("1920"), o.YearBuilt)
}

func TestBlockPairs_FallsThroughToNextUnsetLabel(t *testing.T) {
	v := &View{
		Text:   "Year Built\n1931",
		Blocks: []string{"Year Built Type\nWalk-up"},
	}

	o := ExtractOverview(v)

	assert.Equal(t, str("1931"), o.YearBuilt)
	assert.Equal(t, str("Walk-up"), o.BuildingType)
}

func TestBlockPairs_TooLong(t *testing.T) {
	v := &View{Blocks: []string{"Floors\n" + strings.Repeat("9", 200)}}
	assert.Nil(t, ExtractOverview(v).Floors)
}

func TestBoroughMustBeWholeLine(t *testing.T) {
	o := ExtractOverview(&View{Text: "Upper Manhattan\nBrooklyn"})
	assert.Equal(t, str("Brooklyn"), o.Borough)
}

func TestUnitsNeedsBothWords(t *testing.T) {
	o := ExtractOverview(&View{Text: "Units\n5\nNumber of Units\n120"})
	assert.Equal(t, str("120"), o.NumberOfUnits)
}

func TestViolations_NextLineThenSameLine(t *testing.T) {
	v := &View{Text: strings.Join([]string{
		"HPD Violations",
		"17 open",
		"DOB Complaints 2",
		"Total",
	}, "\n")}

	got := ExtractViolations(v)

	assert.Equal(t, str("17"), got.HPDViolations)
	assert.Equal(t, str("2"), got.DOBComplaints)
	assert.Nil(t, got.DOBViolations)
}

func TestViolations_FirstLineWins(t *testing.T) {
	v := &View{Text: "DOB Violations\n3\nDOB Violations\n9"}
	assert.Equal(t, str("3"), ExtractViolations(v).DOBViolations)
}

func TestPipelineLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	NewOverviewPipeline(zap.New(core)).Run(&View{Text: "Manhattan"})

	found := logs.FilterMessage("extract: field found").All()
	require.Len(t, found, 1)
	assert.Equal(t, "borough", found[0].ContextMap()["field"])

	summary := logs.FilterMessage("extract: summary").All()
	require.Len(t, summary, 1)
	assert.Equal(t, "overview", summary[0].ContextMap()["pipeline"])
}
