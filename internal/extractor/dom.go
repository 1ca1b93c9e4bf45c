package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var landmarks = []string{"article", "main", "[role=main]", "#main", ".main", "#content", ".content"}

const strippedSelectors = "script, style, noscript, nav, header, footer, aside, form, a, button"

const minLineLength = 10

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Br: true, atom.Tr: true, atom.Td: true, atom.Th: true, atom.Section: true,
	atom.Article: true, atom.Main: true, atom.Dd: true, atom.Dt: true, atom.Pre: true,
	atom.Blockquote: true, atom.Figcaption: true, atom.Table: true,
}

// contentRoot returns the first matching landmark, else the whole document.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range landmarks {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return doc.Selection
}

// domText extracts readable lines from the main content of the page.
func domText(doc *goquery.Document) string {
	root := contentRoot(doc)
	root.Find(strippedSelectors).Remove()

	var b strings.Builder
	for _, n := range root.Nodes {
		writeText(&b, n)
	}
	return cleanLines(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}
	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}

// cleanLines trims lines, collapses inner whitespace, drops lines of ten
// characters or fewer and skips consecutive duplicates.
func cleanLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if utf8.RuneCountInString(line) <= minLineLength {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == line {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
