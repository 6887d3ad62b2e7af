package extract

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"nyc_buildings/identity"
	"nyc_buildings/models"
)

// maxBlockLen skips containers too large to be a single label/value pair.
const maxBlockLen = 200

// View is one materialized page view as handed over by a page provider.
type View struct {
	Kind    models.ViewKind
	URL     string
	Text    string   // full rendered body text
	Heading string   // primary heading, may be empty
	Blocks  []string // short container texts, may be empty

	lines []string
	split bool
}

// Lines returns the tokenized body text, computed once per view.
func (v *View) Lines() []string {
	if !v.split {
		v.lines = Lines(v.Text)
		v.split = true
	}
	return v.lines
}

// Candidate is a value one strategy produced for one field.
type Candidate struct {
	Field    models.Field
	Value    string
	Strategy string
	Rank     int // 1-based position of the strategy in the pipeline
	Line     int // index into View.Lines, -1 when not line based
}

// Strategy is a self-contained extraction heuristic. Attempt only looks at
// the fields in unset and returns at most one candidate per field.
type Strategy interface {
	Name() string
	Attempt(v *View, unset []models.Field) []Candidate
}

func fieldSet(fields []models.Field) map[models.Field]bool {
	m := make(map[models.Field]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// LinePairScan applies line rules to every (line, next line) pair.
type LinePairScan struct {
	Rules []LineRule
}

func (LinePairScan) Name() string { return "text_pattern" }

func (s LinePairScan) Attempt(v *View, unset []models.Field) []Candidate {
	open := fieldSet(unset)
	lines := v.Lines()

	var out []Candidate
	for i, line := range lines {
		next := nextLine(lines, i)
		for _, r := range s.Rules {
			f := r.Field()
			if !open[f] {
				continue
			}
			if val, ok := r.Match(line, next); ok {
				out = append(out, Candidate{Field: f, Value: val, Line: i})
				open[f] = false
			}
		}
	}
	return out
}

// HeadingStrategy takes the page's primary heading as the address.
type HeadingStrategy struct{}

func (HeadingStrategy) Name() string { return "header" }

func (HeadingStrategy) Attempt(v *View, unset []models.Field) []Candidate {
	if !fieldSet(unset)[models.FieldAddress] {
		return nil
	}
	heading := strings.TrimSpace(v.Heading)
	if heading == "" {
		return nil
	}
	return []Candidate{{Field: models.FieldAddress, Value: heading, Line: -1}}
}

// BlockLabel maps a label substring to the field it names.
type BlockLabel struct {
	Contains string
	Field    models.Field
}

// BlockPairStrategy reads two-line containers as label/value pairs. Label
// matching is a plain substring test, looser than the line rules.
type BlockPairStrategy struct {
	Labels []BlockLabel
}

func (BlockPairStrategy) Name() string { return "structured_pairs" }

func (s BlockPairStrategy) Attempt(v *View, unset []models.Field) []Candidate {
	open := fieldSet(unset)

	var out []Candidate
	for _, block := range v.Blocks {
		label, value, ok := splitPair(block)
		if !ok {
			continue
		}
		lower := strings.ToLower(label)
		for _, l := range s.Labels {
			if !open[l.Field] || !strings.Contains(lower, l.Contains) {
				continue
			}
			if value != "" {
				out = append(out, Candidate{Field: l.Field, Value: value, Line: -1})
				open[l.Field] = false
			}
			break
		}
	}
	return out
}

// splitPair splits a container text into exactly two trimmed lines.
func splitPair(block string) (label, value string, ok bool) {
	text := strings.TrimSpace(block)
	if text == "" || utf8.RuneCountInString(text) > maxBlockLen {
		return "", "", false
	}
	parts := strings.Split(text, "\n")
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// URLAddressStrategy derives an address from the first URL path segment that
// looks like a street slug.
type URLAddressStrategy struct{}

func (URLAddressStrategy) Name() string { return "url_fallback" }

func (URLAddressStrategy) Attempt(v *View, unset []models.Field) []Candidate {
	if !fieldSet(unset)[models.FieldAddress] || v.URL == "" {
		return nil
	}
	u, err := url.Parse(v.URL)
	if err != nil {
		return nil
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if !isAddressSlug(seg) {
			continue
		}
		addr := identity.TitleCase(strings.ReplaceAll(seg, "-", " "))
		return []Candidate{{Field: models.FieldAddress, Value: addr, Line: -1}}
	}
	return nil
}

func isAddressSlug(seg string) bool {
	if !strings.Contains(seg, "-") || strings.Contains(strings.ToLower(seg), "building") {
		return false
	}
	return strings.IndexFunc(seg, unicode.IsDigit) >= 0
}
