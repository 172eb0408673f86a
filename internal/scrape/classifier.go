package scrape

import (
	"strings"

	"github.com/Veraticus/lng-shipment-tracker/internal/dom"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// ClassifiedRow is a row-like node together with the section that was active
// when the walk reached it. Anchor is set for rows synthesised around a bare
// vessel link.
type ClassifiedRow struct {
	Node    dom.Node
	Anchor  dom.Node
	Section model.SectionLabel
}

// headingRules map heading text to a section. Order matters: the first rule
// with a matching substring wins.
var headingRules = []struct {
	substrings []string
	section    model.SectionLabel
}{
	{[]string{"in port", "at port", "vessels in"}, model.SectionInPort},
	{[]string{"arrival", "expected"}, model.SectionArrivals},
	{[]string{"departure", "sailed"}, model.SectionDepartures},
}

// SectionForHeading returns the section announced by a heading, if any.
func SectionForHeading(text string) (model.SectionLabel, bool) {
	lower := strings.ToLower(text)
	for _, rule := range headingRules {
		for _, s := range rule.substrings {
			if strings.Contains(lower, s) {
				return rule.section, true
			}
		}
	}
	return model.SectionUnclassified, false
}

// sectionMachine is the classifier state: the current section cursor and the
// rows attributed so far.
type sectionMachine struct {
	rows    []ClassifiedRow
	current model.SectionLabel
}

// ClassifyRows walks a port-listing document once, in document order, and
// attributes every row-like node to the section whose heading most recently
// preceded it. Rows before the first recognised heading are Unclassified.
func ClassifyRows(root dom.Node) []ClassifiedRow {
	m := &sectionMachine{current: model.SectionUnclassified}
	dom.Walk(root, m.visit)
	return m.rows
}

func (m *sectionMachine) visit(n dom.Node) {
	switch tag := n.Tag(); {
	case isHeading(tag):
		if next, ok := SectionForHeading(n.Text()); ok {
			m.current = next
		}
	case tag == "tr":
		m.rows = append(m.rows, ClassifiedRow{Node: n, Section: m.current})
	case tag == "a" && isVesselLink(n) && !insideRow(n):
		// Listings without tables put the vessel anchor in a plain container;
		// that container plays the role of the row.
		if parent := n.Parent(); parent != nil {
			m.rows = append(m.rows, ClassifiedRow{Node: parent, Anchor: n, Section: m.current})
		}
	}
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

func isVesselLink(n dom.Node) bool {
	href, ok := n.Attr("href")
	return ok && strings.Contains(href, "/vessels/")
}

func insideRow(n dom.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Tag() == "tr" {
			return true
		}
	}
	return false
}
