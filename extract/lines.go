// Package extract turns the rendered text of a building page into structured
// fields. Extraction is a fold of ordered strategies over a line sequence;
// the first strategy to produce a value for a field owns it.
package extract

import "strings"

// Lines splits rendered page text into trimmed, non-empty lines in their
// original order.
func Lines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// nextLine returns the line following index i, or "" at the end.
func nextLine(lines []string, i int) string {
	if i+1 < len(lines) {
		return lines[i+1]
	}
	return ""
}
