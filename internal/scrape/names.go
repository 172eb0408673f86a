package scrape

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// minNameLength is the shortest cleaned name accepted as a vessel name.
const minNameLength = 6

// typeSuffixes are the vessel-type labels VesselFinder appends to vessel names
// in listing anchors.
var typeSuffixes = []string{
	"LNG Tanker",
	"Bulk Carrier",
	"Passenger ship",
	"Pleasure craft",
	"Tug",
	"SAR",
	"General Cargo Ship",
	"Passenger/Ro-Ro Cargo Ship",
}

var (
	typeSuffixPattern = buildSuffixPattern(typeSuffixes)
	datePrefixPattern = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+\d`)
)

func buildSuffixPattern(suffixes []string) *regexp.Regexp {
	quoted := make([]string, len(suffixes))
	for i, s := range suffixes {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return regexp.MustCompile(`(?i)\s+(?:` + strings.Join(quoted, "|") + `)\s*$`)
}

// CleanVesselName strips a trailing vessel-type suffix from an anchor label.
func CleanVesselName(raw string) string {
	name := model.NormalizeName(raw)
	return strings.TrimSpace(typeSuffixPattern.ReplaceAllString(name, ""))
}

// plausibleName rejects labels that are really a date or number cell picked up
// instead of the name cell.
func plausibleName(name string) bool {
	if utf8.RuneCountInString(name) < minNameLength {
		return false
	}
	if datePrefixPattern.MatchString(name) {
		return false
	}
	return name[0] < '0' || name[0] > '9'
}

// isLNGRow reports whether the row text marks the vessel as an LNG tanker.
func isLNGRow(rowText string) bool {
	return strings.Contains(strings.ToLower(rowText), "lng tanker")
}
