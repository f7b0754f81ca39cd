package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Attr filters elements by attribute. An empty Value only requires presence.
type Attr struct {
	Name  string
	Value string
}

// ID matches the id attribute.
func ID(value string) Attr { return Attr{Name: "id", Value: value} }

// ItemProp matches the schema.org itemprop attribute used by recipe sites.
func ItemProp(value string) Attr { return Attr{Name: "itemprop", Value: value} }

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// NewDocument decodes data using the encoding declared by contentType (or sniffed
// from the markup) and parses it.
func NewDocument(data []byte, contentType string) (*Document, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Root returns the document node.
func (d *Document) Root() *Node {
	return &Node{sel: d.doc.Selection}
}

// Find returns the first element matching tag and attrs, or nil.
func (d *Document) Find(tag string, attrs ...Attr) *Node {
	return d.Root().Find(tag, attrs...)
}

// FindAll returns every element matching tag and attrs in document order.
func (d *Document) FindAll(tag string, attrs ...Attr) []*Node {
	return d.Root().FindAll(tag, attrs...)
}

// Links returns every a[href] value, deduplicated in first-seen order.
func (d *Document) Links() []string {
	seen := make(map[string]struct{})
	var links []string
	d.doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	return links
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	return normalizeText(d.doc.Find("title").First().Text())
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Node is one element of a Document.
type Node struct {
	sel *goquery.Selection
}

// Find returns the first descendant matching tag and attrs, or nil.
func (n *Node) Find(tag string, attrs ...Attr) *Node {
	if n == nil {
		return nil
	}
	s := n.sel.Find(selector(tag, attrs)).First()
	if s.Length() == 0 {
		return nil
	}
	return &Node{sel: s}
}

// FindAll returns every descendant matching tag and attrs.
func (n *Node) FindAll(tag string, attrs ...Attr) []*Node {
	if n == nil {
		return nil
	}
	var nodes []*Node
	n.sel.Find(selector(tag, attrs)).Each(func(i int, s *goquery.Selection) {
		nodes = append(nodes, &Node{sel: s})
	})
	return nodes
}

// Text returns the concatenated text content with whitespace collapsed line by line.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return normalizeText(n.sel.Text())
}

// RawText returns the concatenated text content untouched, newlines included.
func (n *Node) RawText() string {
	if n == nil {
		return ""
	}
	return n.sel.Text()
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.sel.Attr(name)
}

// Tag returns the element name.
func (n *Node) Tag() string {
	if n == nil {
		return ""
	}
	return goquery.NodeName(n.sel)
}

// LinkText returns the text of the first link inside n, falling back to n's own text.
func LinkText(n *Node) string {
	if a := n.Find("a"); a != nil {
		if text := a.Text(); text != "" {
			return text
		}
	}
	return n.Text()
}

func selector(tag string, attrs []Attr) string {
	var b strings.Builder
	if tag == "" {
		tag = "*"
	}
	b.WriteString(tag)
	for _, a := range attrs {
		b.WriteString("[")
		b.WriteString(a.Name)
		if a.Value != "" {
			b.WriteString("=")
			b.WriteString(strconv.Quote(a.Value))
		}
		b.WriteString("]")
	}
	return b.String()
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
