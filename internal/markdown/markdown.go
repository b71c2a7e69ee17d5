// Package markdown analyzes generated pages with goldmark.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Heading is an ATX or setext heading with its plain text.
type Heading struct {
	Level int
	Text  string
}

// Document summarizes the parts of a page that checks look at.
type Document struct {
	Headings []Heading
	Links    []Link
	// ListURLs holds, in document order, every list item consisting of a
	// single bare URL. Source lists and the bibliography are rendered this way.
	ListURLs []string
}

// Title returns the text of the first level-1 heading.
func (d Document) Title() (string, bool) {
	for _, h := range d.Headings {
		if h.Level == 1 {
			return h.Text, true
		}
	}
	return "", false
}

func newParser() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.Table, extension.Linkify))
}

// ParseBody parses a Markdown body (frontmatter already removed) into a Goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return newParser().Parser().Parse(text.NewReader(body))
}

// Analyze parses body and collects headings, links and bare-URL list items.
func Analyze(body []byte) Document {
	root := ParseBody(body)

	var doc Document
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Heading:
			doc.Headings = append(doc.Headings, Heading{Level: node.Level, Text: plainText(node, body)})
		case *gmast.ListItem:
			if u, ok := bareURL(node, body); ok {
				doc.ListURLs = append(doc.ListURLs, u)
			}
		case *gmast.AutoLink:
			doc.Links = append(doc.Links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			doc.Links = append(doc.Links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			doc.Links = append(doc.Links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return doc
}

// bareURL reports whether item contains nothing but one auto-linked URL.
func bareURL(item *gmast.ListItem, source []byte) (string, bool) {
	block := item.FirstChild()
	if block == nil || block.NextSibling() != nil {
		return "", false
	}
	link, ok := block.FirstChild().(*gmast.AutoLink)
	if !ok || link.NextSibling() != nil {
		return "", false
	}
	return string(link.URL(source)), true
}

func plainText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(t.Value)
		case *gmast.AutoLink:
			sb.Write(t.URL(source))
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
