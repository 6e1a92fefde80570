// Package htmltext converts SEC filing markup into structured plain text.
//
// EDGAR filing HTML is typically auto-generated from word-processor or
// XBRL-rendering exports: decorative wrappers, nested empty tables, and
// wildly inconsistent whitespace. Naive tag-stripping produces unusable
// noise, so this package applies two dedicated rules — one for tables, one
// for lists — to keep tabular financial data and itemized disclosures
// legible without losing row/column or ordinal structure.
package htmltext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseSelector matches nodes that never carry filing content.
const noiseSelector = "script, style, meta, link, nav, header, footer, img, button, input, select, textarea, noscript, iframe"

// Convert parses markup and renders the body as structured text.
// Tables become "**TABLE:**" blocks with one pipe-joined line per row;
// lists become numbered or dashed lines. Conversion is deterministic:
// the same input always yields byte-identical output.
func Convert(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	stripNoise(doc)

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, n := range root.Nodes {
		renderChildren(&b, n)
	}
	return postProcess(b.String()), nil
}

// stripNoise removes non-content markup, including nodes hidden by inline
// style. EDGAR renderers hide pagination and XBRL metadata this way.
func stripNoise(doc *goquery.Document) {
	doc.Find(noiseSelector).Remove()
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		if isHiddenStyle(style) {
			sel.Remove()
		}
	})
}

func isHiddenStyle(style string) bool {
	s := strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(s, "display:none") || strings.Contains(s, "visibility:hidden")
}

// renderNode writes the text form of a single node.
func renderNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "table":
			renderTable(b, n)
			return
		case "ol":
			renderList(b, n, true)
			return
		case "ul":
			renderList(b, n, false)
			return
		case "br":
			b.WriteString("\n")
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
			renderChildren(b, n)
			b.WriteString("\n\n")
			return
		case "p", "div", "section", "article", "blockquote", "pre", "hr":
			b.WriteString("\n")
			renderChildren(b, n)
			b.WriteString("\n")
			return
		}
		renderChildren(b, n)
	}
}

func renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

// renderTable emits the table rule: a "**TABLE:**" marker, then one line
// per row of trimmed cell text joined by " | ". Rows containing a header
// cell are bold-wrapped; rows with no non-empty cells are dropped — those
// are almost always visual-spacing artifacts in EDGAR documents.
func renderTable(b *strings.Builder, table *html.Node) {
	var lines []string
	for _, tr := range findDescendants(table, "tr", "table") {
		cells, isHeader := findCells(tr)

		var texts []string
		empty := true
		for _, cell := range cells {
			t := collapsedText(cell)
			if t != "" {
				empty = false
			}
			texts = append(texts, t)
		}
		if empty {
			continue
		}

		line := strings.Join(texts, " | ")
		if isHeader {
			line = "**" + line + "**"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n**TABLE:**\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}

// renderList emits the list rule: one line per item, "1. "-numbered for
// ordered lists, "- "-dashed otherwise. Empty items are skipped and do
// not consume a number.
func renderList(b *strings.Builder, list *html.Node, ordered bool) {
	var lines []string
	idx := 0
	for _, li := range findDescendants(list, "li", "ul", "ol") {
		t := collapsedText(li)
		if t == "" {
			continue
		}
		idx++
		if ordered {
			lines = append(lines, fmt.Sprintf("%d. %s", idx, t))
		} else {
			lines = append(lines, "- "+t)
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}

// findCells collects a row's cells in document order and reports whether
// any of them is a header cell.
func findCells(tr *html.Node) ([]*html.Node, bool) {
	var cells []*html.Node
	hasHeader := false
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				switch c.Data {
				case "td", "th":
					cells = append(cells, c)
					if c.Data == "th" {
						hasHeader = true
					}
					continue
				case "table":
					continue
				}
			}
			walk(c)
		}
	}
	walk(tr)
	return cells, hasHeader
}

// findDescendants collects descendant elements with the given tag without
// descending into nested stop elements, so a table inside a cell does not
// leak its rows into the outer table.
func findDescendants(n *html.Node, tag string, stop ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if c.Data == tag {
					out = append(out, c)
					continue
				}
				stopped := false
				for _, s := range stop {
					if c.Data == s {
						stopped = true
						break
					}
				}
				if stopped {
					continue
				}
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// collapsedText returns the node's text content with whitespace runs
// collapsed to single spaces and the result trimmed.
func collapsedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			b.WriteString(" ")
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

var (
	horizWS   = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// postProcess cleans the rendered text: collapses horizontal whitespace
// runs, strips empty heading lines and table-separator remnants, collapses
// blank-line runs, and trims the document.
func postProcess(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(horizWS.ReplaceAllString(line, " "), " ")
		if isEmptyHeading(line) || isTableArtifact(line) {
			continue
		}
		out = append(out, line)
	}
	cleaned := strings.Join(out, "\n")
	cleaned = blankRuns.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// isEmptyHeading reports heading markers with no text ("##").
func isEmptyHeading(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "#") && strings.Trim(t, "# ") == ""
}

// isTableArtifact reports separator remnants like "| | |" or "|---|---|"
// that ragged tables leave behind.
func isTableArtifact(line string) bool {
	t := strings.TrimSpace(line)
	return strings.ContainsRune(t, '|') && strings.Trim(t, "|- :") == ""
}
