package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	// full word -> abbreviation, applied per whole token
	streetAbbreviations = map[string]string{
		"street":    "st",
		"avenue":    "ave",
		"drive":     "dr",
		"road":      "rd",
		"boulevard": "blvd",
		"place":     "pl",
		"lane":      "ln",
		"court":     "ct",
		"terrace":   "ter",
		"parkway":   "pkwy",
		"square":    "sq",
		"north":     "n",
		"south":     "s",
		"east":      "e",
		"west":      "w",
	}
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
	ordinalRegex    = regexp.MustCompile(`\b(\d+)(st|nd|rd|th)\b`)
)

// NormalizeAddress reduces an address to a canonical lowercase form so that
// "110 West 57th Street" and "110 W 57 St" compare equal.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = nonAlnumRegex.ReplaceAllString(addr, " ")
	addr = ordinalRegex.ReplaceAllString(addr, "$1")

	words := strings.Fields(addr)
	for i, w := range words {
		if abbrev, ok := streetAbbreviations[w]; ok {
			words[i] = abbrev
		}
	}
	return multiSpaceRegex.ReplaceAllString(strings.Join(words, " "), " ")
}

// Fingerprint is a short stable key for a building address and zip.
func Fingerprint(address, zip string) string {
	hash := sha256.Sum256([]byte(NormalizeAddress(address) + "|" + strings.TrimSpace(zip)))
	return hex.EncodeToString(hash[:16])
}
