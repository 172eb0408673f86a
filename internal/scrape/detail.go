package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/lng-shipment-tracker/internal/dom"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// firstOf runs extraction strategies in precedence order and returns the
// first success.
func firstOf[T any](page dom.Node, strategies ...func(dom.Node) model.Optional[T]) model.Optional[T] {
	for _, extract := range strategies {
		if v := extract(page); v.Present() {
			return v
		}
	}
	return model.None[T]()
}

var (
	imoDigits      = regexp.MustCompile(`^\d{7}$`)
	mmsiDigits     = regexp.MustCompile(`^\d{9}$`)
	imoInCell      = regexp.MustCompile(`\bIMO\b.*?\b(\d{7})\b`)
	mmsiInCell     = regexp.MustCompile(`\bMMSI\b.*?\b(\d{9})\b`)
	imoInHeading   = regexp.MustCompile(`IMO\s+(\d{7})\b`)
	groupedInteger = regexp.MustCompile(`\d[\d,]*`)
)

// ExtractDetail pulls every field it can from a vessel detail page. Fields the
// page does not yield are left absent; the stub supplies name and type
// fallbacks.
func ExtractDetail(page dom.Node, stub model.VesselStub) model.VesselDetail {
	detail := model.VesselDetail{
		Name:             firstOf(page, nameFromHeading, nameFromTitle).OrElse(stub.Name),
		VesselType:       typeFromLabel(page).OrElse(stub.VesselType),
		IMO:              firstOf(page, imoFromLabelledPair, imoFromCells, imoFromHeadings),
		MMSI:             firstOf(page, mmsiFromLabelledPair, mmsiFromCells),
		CapacityCBM:      capacityFromLabel(page),
		EstimatedArrival: etaFromBanner(page),
	}

	if port, ok := destinationFromLabel(page).Get(); ok {
		detail.DestinationPort = model.Some(port)
		detail.DestinationCountry = countryOf(port)
	}

	return detail
}

// labelValue returns the text of the cell following the first td whose text
// satisfies match.
func labelValue(page dom.Node, match func(label string) bool) model.Optional[string] {
	for _, cell := range page.Find("td") {
		if !match(cell.Text()) {
			continue
		}
		if next := cell.NextSibling(); next != nil {
			if v := next.Text(); v != "" {
				return model.Some(v)
			}
		}
	}
	return model.None[string]()
}

// labelledPair reads the "IMO / MMSI" cell pair. Each half is kept only when
// it has the right number of digits.
func labelledPair(page dom.Node) (imo, mmsi model.Optional[string]) {
	value, ok := labelValue(page, func(label string) bool { return label == "IMO / MMSI" }).Get()
	if !ok {
		return imo, mmsi
	}
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return imo, mmsi
	}
	if p := strings.TrimSpace(parts[0]); imoDigits.MatchString(p) {
		imo = model.Some(p)
	}
	if p := strings.TrimSpace(parts[1]); mmsiDigits.MatchString(p) {
		mmsi = model.Some(p)
	}
	return imo, mmsi
}

func imoFromLabelledPair(page dom.Node) model.Optional[string] {
	imo, _ := labelledPair(page)
	return imo
}

func mmsiFromLabelledPair(page dom.Node) model.Optional[string] {
	_, mmsi := labelledPair(page)
	return mmsi
}

func imoFromCells(page dom.Node) model.Optional[string] {
	return firstCellMatch(page, imoInCell)
}

func mmsiFromCells(page dom.Node) model.Optional[string] {
	return firstCellMatch(page, mmsiInCell)
}

func firstCellMatch(page dom.Node, re *regexp.Regexp) model.Optional[string] {
	for _, cell := range page.Find("td") {
		if m := re.FindStringSubmatch(cell.Text()); m != nil {
			return model.Some(m[1])
		}
	}
	return model.None[string]()
}

func imoFromHeadings(page dom.Node) model.Optional[string] {
	for _, h := range page.Find("h1, h2, h3") {
		if m := imoInHeading.FindStringSubmatch(h.Text()); m != nil {
			return model.Some(m[1])
		}
	}
	return model.None[string]()
}

// capacityFromLabel only trusts LNG-specific capacity labels; gross tonnage
// and deadweight figures would otherwise be mistaken for cargo volume.
func capacityFromLabel(page dom.Node) model.Optional[int] {
	value, ok := labelValue(page, func(label string) bool {
		return strings.Contains(label, "LNG Capacity") || strings.Contains(label, "Capacity (LNG)")
	}).Get()
	if !ok {
		return model.None[int]()
	}
	digits := groupedInteger.FindString(value)
	if digits == "" {
		return model.None[int]()
	}
	n, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return model.None[int]()
	}
	return model.Some(n)
}

func typeFromLabel(page dom.Node) model.Optional[string] {
	return labelValue(page, func(label string) bool {
		l := strings.ToLower(label)
		return l == "ship type" || l == "vessel type"
	})
}

// destinationFromLabel finds the styled link that follows the "Destination"
// label, either as its sibling or elsewhere in the same container.
func destinationFromLabel(page dom.Node) model.Optional[string] {
	for _, label := range page.Find(".vilabel") {
		if label.Text() != "Destination" {
			continue
		}
		if next := label.NextSibling(); next != nil && next.Tag() == "a" && hasClass(next, "_npNa") {
			if text := next.Text(); text != "" {
				return model.Some(text)
			}
		}
		if parent := label.Parent(); parent != nil {
			if link := dom.First(parent, "a._npNa"); link != nil && link.Text() != "" {
				return model.Some(link.Text())
			}
		}
	}
	return model.None[string]()
}

// countryOf returns the last comma-separated segment of a destination.
func countryOf(destination string) model.Optional[string] {
	parts := strings.Split(destination, ",")
	if len(parts) < 2 {
		return model.None[string]()
	}
	return model.SomeString(strings.TrimSpace(parts[len(parts)-1]))
}

func etaFromBanner(page dom.Node) model.Optional[string] {
	return bannerValue(page, "ETA:")
}

// bannerValue returns the text after prefix in the voyage banner spans.
func bannerValue(page dom.Node, prefix string) model.Optional[string] {
	for _, span := range page.Find(`span._mcol12ext, span[class*="_mcol12"]`) {
		text := span.Text()
		_, after, found := strings.Cut(text, prefix)
		if !found {
			continue
		}
		return model.SomeString(strings.TrimSpace(after))
	}
	return model.None[string]()
}

func nameFromHeading(page dom.Node) model.Optional[string] {
	if h1 := dom.First(page, "h1"); h1 != nil {
		return model.SomeString(h1.Text())
	}
	return model.None[string]()
}

func nameFromTitle(page dom.Node) model.Optional[string] {
	title := dom.First(page, "title")
	if title == nil {
		return model.None[string]()
	}
	before, _, _ := strings.Cut(title.Text(), " - ")
	return model.SomeString(strings.TrimSpace(before))
}

func hasClass(n dom.Node, class string) bool {
	classes, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}
