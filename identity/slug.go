// Package identity maps between human addresses and MarketProof building
// URLs, and derives stable keys for buildings.
package identity

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultBaseURL      = "https://nyc.marketproof.com"
	DefaultBorough      = "manhattan"
	DefaultNeighborhood = "midtown"
	DefaultTab          = "details"

	// BuildingMarker is the path segment that precedes borough/neighborhood/slug.
	BuildingMarker = "building"
	// UnknownAddress is returned when a URL carries no decodable address.
	UnknownAddress = "Unknown Address"
)

// slugReplacements are applied in order. Longer street words come before
// their abbreviations so "street" is not rewritten twice.
var slugReplacements = []struct{ old, new string }{
	{" street", "-street"},
	{" st", "-street"},
	{" avenue", "-avenue"},
	{" ave", "-avenue"},
	{" road", "-road"},
	{" rd", "-road"},
	{" boulevard", "-boulevard"},
	{" blvd", "-boulevard"},
	{" place", "-place"},
	{" pl", "-place"},
	{" drive", "-drive"},
	{" dr", "-drive"},
	{"east ", "east-"},
	{"west ", "west-"},
	{"north ", "north-"},
	{"south ", "south-"},
}

var nonSlugRe = regexp.MustCompile(`[^\w-]`)

// Slug encodes an address, plus optional zip, as a URL path segment.
// "110 West 57 Street", "10019" -> "110-west-57-street-10019".
func Slug(address, zip string) string {
	s := strings.ToLower(strings.TrimSpace(address))
	for _, r := range slugReplacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugRe.ReplaceAllString(s, "")
	if zip = strings.TrimSpace(zip); zip != "" {
		s += "-" + zip
	}
	return s
}

// BuildingURL builds the details URL for an address. Borough and
// neighborhood are not resolved from the address; the defaults are used.
func BuildingURL(baseURL, address, zip string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.Join([]string{
		BuildingMarker, DefaultBorough, DefaultNeighborhood, Slug(address, zip),
	}, "/") + "?tab=" + DefaultTab
}

// AddressFromURL decodes the address slug three segments after the building
// marker. Anything it cannot decode yields UnknownAddress.
func AddressFromURL(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	for i, p := range parts {
		if p != BuildingMarker {
			continue
		}
		if len(parts) <= i+3 {
			break
		}
		seg, _, _ := strings.Cut(parts[i+3], "?")
		seg, _, _ = strings.Cut(seg, "#")
		if seg == "" {
			break
		}
		return TitleCase(strings.ReplaceAll(seg, "-", " "))
	}
	return UnknownAddress
}

// TabURL points rawURL at the given tab, replacing any existing tab parameter.
func TabURL(rawURL, tab string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.TrimRight(rawURL, "/") + "?tab=" + tab
	}
	u.Path = strings.TrimRight(u.Path, "/")
	q := u.Query()
	q.Set("tab", tab)
	u.RawQuery = q.Encode()
	return u.String()
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
