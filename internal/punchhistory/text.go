package punchhistory

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Positions of the unlabelled summary values in the flattened text-node
// sequence of the punch history page. They only hold for the current layout.
const (
	timeWorkedTextIndex = 29
	workDaysTextIndex   = 32
)

// Labels that precede the summary values on the page.
const (
	timeWorkedLabel = "Time Worked"
	workDaysLabel   = "Work Days"
)

// trimValue strips surrounding whitespace and colons.
func trimValue(s string) string {
	return strings.Trim(s, " \t\n\r\x00\x0B:")
}

// textNodes returns every text node of the document in document order,
// whitespace-only ones included. Script and style contents are skipped.
func (d *Document) textNodes() []string {
	if d.texts != nil {
		return d.texts
	}
	texts := make([]string, 0, 64)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			texts = append(texts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range d.doc.Nodes {
		walk(n)
	}
	d.texts = texts
	return texts
}

// textNodeAt is the positional lookup for values the page renders without
// any semantic anchor. Any markup added above the summary block shifts the
// index, so callers must format-check what comes back.
func (d *Document) textNodeAt(index int) (string, error) {
	texts := d.textNodes()
	if index < 0 || index >= len(texts) {
		return "", &StructureError{
			Selector: "text:" + strconv.Itoa(index),
			Message:  "document has only " + strconv.Itoa(len(texts)) + " text nodes",
		}
	}
	return trimValue(texts[index]), nil
}

// visibleText returns the text nodes that carry more than whitespace.
func (d *Document) visibleText() []string {
	var texts []string
	for _, text := range d.textNodes() {
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

// labelledText finds the value rendered right after label, either in the
// same text node ("Time Worked: 1d 2h 3m") or in the next non-blank one.
func (d *Document) labelledText(label string) (string, bool) {
	texts := d.visibleText()
	for i, raw := range texts {
		text := strings.TrimSpace(raw)
		if !strings.HasPrefix(strings.ToLower(text), strings.ToLower(label)) {
			continue
		}
		rest := text[len(label):]
		if value := trimValue(rest); value != "" {
			if strings.HasPrefix(strings.TrimSpace(rest), ":") {
				return value, true
			}
			continue
		}
		if i+1 < len(texts) {
			return trimValue(texts[i+1]), true
		}
	}
	return "", false
}

// summaryText resolves a summary value by label, falling back to its known
// position when the label is missing.
func (d *Document) summaryText(label string, index int) (string, error) {
	if value, ok := d.labelledText(label); ok {
		return value, nil
	}
	return d.textNodeAt(index)
}
