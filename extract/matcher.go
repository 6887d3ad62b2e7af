package extract

import (
	"regexp"
	"strings"

	"nyc_buildings/models"
)

var (
	digitsRe = regexp.MustCompile(`\b\d+\b`)
	yearRe   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	zipRe    = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
)

// Boroughs is the closed set a line must equal exactly to name a borough.
var Boroughs = []string{"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island"}

// LabelFunc reports whether a lowercased line labels a field. On a hit it
// returns the label text that matched so the inline remainder can be cut out.
type LabelFunc func(lower string) (label string, ok bool)

// ValueFunc pulls a typed value out of a piece of text.
type ValueFunc func(text string) (string, bool)

// LineRule decides, from a line and its successor, whether a field's value is
// present. Rules are stateless.
type LineRule interface {
	Field() models.Field
	Match(line, next string) (string, bool)
}

// FieldSpec is the generic label/value rule: a label on the current line with
// the value either on the next line or inline after the label.
type FieldSpec struct {
	Name  models.Field
	Label LabelFunc
	Value ValueFunc
}

func (s FieldSpec) Field() models.Field { return s.Name }

// Match tries the next line before the remainder of the current line.
func (s FieldSpec) Match(line, next string) (string, bool) {
	lower := strings.ToLower(line)
	label, ok := s.Label(lower)
	if !ok {
		return "", false
	}
	if next != "" {
		if v, ok := s.Value(next); ok {
			return v, true
		}
	}
	return s.Value(remainder(line, lower, label))
}

// remainder is line with the first occurrence of label removed.
func remainder(line, lower, label string) string {
	if label == "" {
		return line
	}
	i := strings.Index(lower, label)
	// offsets in lower only line up with line when the lengths agree
	if i < 0 || len(lower) != len(line) {
		return line
	}
	return strings.TrimSpace(line[:i] + " " + line[i+len(label):])
}

// Contains matches when the line contains any of the labels.
func Contains(labels ...string) LabelFunc {
	return func(lower string) (string, bool) {
		for _, l := range labels {
			if strings.Contains(lower, l) {
				return l, true
			}
		}
		return "", false
	}
}

// ContainsAll matches when the line contains every label. The first label is
// reported for remainder purposes.
func ContainsAll(labels ...string) LabelFunc {
	return func(lower string) (string, bool) {
		for _, l := range labels {
			if !strings.Contains(lower, l) {
				return "", false
			}
		}
		return labels[0], true
	}
}

// Exactly matches when the whole lowercased line equals word.
func Exactly(word string) LabelFunc {
	return func(lower string) (string, bool) {
		if lower == word {
			return word, true
		}
		return "", false
	}
}

// AnyLabel combines label predicates, first hit wins.
func AnyLabel(fns ...LabelFunc) LabelFunc {
	return func(lower string) (string, bool) {
		for _, fn := range fns {
			if l, ok := fn(lower); ok {
				return l, true
			}
		}
		return "", false
	}
}

// Digits extracts the first standalone run of decimal digits.
func Digits(text string) (string, bool) {
	return firstMatch(digitsRe, text)
}

// Year extracts a four digit year in the 1900s or 2000s.
func Year(text string) (string, bool) {
	return firstMatch(yearRe, text)
}

// Verbatim accepts any non-empty text as is.
func Verbatim(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, text != ""
}

func firstMatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindString(text)
	return m, m != ""
}

// BoroughRule matches a line that is exactly one of the five borough names.
// "Upper Manhattan" does not match.
type BoroughRule struct{}

func (BoroughRule) Field() models.Field { return models.FieldBorough }

func (BoroughRule) Match(line, _ string) (string, bool) {
	for _, b := range Boroughs {
		if line == b {
			return b, true
		}
	}
	return "", false
}

// PatternRule scans the current line alone for a pattern, no label needed.
type PatternRule struct {
	Name    models.Field
	Pattern *regexp.Regexp
}

func (r PatternRule) Field() models.Field { return r.Name }

func (r PatternRule) Match(line, _ string) (string, bool) {
	return firstMatch(r.Pattern, line)
}

// ZipRule finds a 5 digit zip code, optionally with a +4 suffix.
var ZipRule = PatternRule{Name: models.FieldZipCode, Pattern: zipRe}
