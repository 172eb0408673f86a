// Package dom exposes a small, parser-independent view of an HTML document.
//
// Extraction code works against Node so it can be exercised with any tree;
// Parse provides the goquery-backed implementation used in production.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Node is one element of a parsed document.
type Node interface {
	// Tag returns the lowercase element name.
	Tag() string
	// Text returns the element's text content, normalised and trimmed.
	Text() string
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
	// Children returns the element children in document order.
	Children() []Node
	// NextSibling returns the next element sibling, or nil.
	NextSibling() Node
	// Parent returns the parent element, or nil at the root.
	Parent() Node
	// Find returns descendants matching a CSS selector in document order.
	Find(selector string) []Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &selection{sel: doc.Selection}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(html string) (Node, error) {
	return Parse(strings.NewReader(html))
}

// Walk visits root and every descendant element in document order.
func Walk(root Node, visit func(Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, child := range root.Children() {
		Walk(child, visit)
	}
}

// CleanText normalises compatibility characters such as non-breaking spaces
// and collapses runs of whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// First returns the first descendant matching selector, or nil.
func First(root Node, selector string) Node {
	nodes := root.Find(selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

type selection struct {
	sel *goquery.Selection
}

func wrap(sel *goquery.Selection) Node {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	return &selection{sel: sel.First()}
}

func (s *selection) Tag() string {
	return strings.ToLower(goquery.NodeName(s.sel))
}

func (s *selection) Text() string {
	return CleanText(s.sel.Text())
}

func (s *selection) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}

func (s *selection) Children() []Node {
	return collect(s.sel.Children())
}

func (s *selection) NextSibling() Node {
	return wrap(s.sel.Next())
}

func (s *selection) Parent() Node {
	parent := s.sel.Parent()
	if parent.Length() == 0 {
		return nil
	}
	return &selection{sel: parent}
}

func (s *selection) Find(selector string) []Node {
	return collect(s.sel.Find(selector))
}

func collect(sel *goquery.Selection) []Node {
	nodes := make([]Node, 0, sel.Length())
	sel.Each(func(_ int, item *goquery.Selection) {
		nodes = append(nodes, &selection{sel: item})
	})
	return nodes
}
