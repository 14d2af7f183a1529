package translate

import (
	"strings"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/style"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InlineRuns converts the direct children of a block element into runs.
// Formatting elements are flattened to one run of their descendant text,
// whitespace-only text children are dropped, and an element with no runs
// yields a single empty run.
func (t *Translator) InlineRuns(n *html.Node) []doctree.Run {
	var runs []doctree.Run
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				runs = append(runs, doctree.Run{Text: c.Data})
			}
		case html.ElementNode:
			if run, ok := t.inlineRun(c); ok {
				runs = append(runs, run)
			}
		}
	}
	if len(runs) == 0 {
		return []doctree.Run{{}}
	}
	return runs
}

func (t *Translator) inlineRun(n *html.Node) (doctree.Run, bool) {
	text := textContent(n)
	switch n.DataAtom {
	case atom.Strong, atom.B:
		return doctree.Run{Text: text, Bold: true}, true
	case atom.Em, atom.I:
		return doctree.Run{Text: text, Italic: true}, true
	case atom.Code:
		return doctree.Run{
			Text:      text,
			Monospace: true,
			Font:      style.CodeFontFamily,
			Size:      style.CodeFontSize,
			Fill:      t.palette.CodeBackground,
		}, true
	case atom.A:
		return doctree.Run{Text: text, StyleID: style.StyleHyperlink, Underline: true}, true
	}
	if strings.TrimSpace(text) == "" {
		return doctree.Run{}, false
	}
	return doctree.Run{Text: text}, true
}

// textContent concatenates all descendant text, untrimmed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// flatText collapses all whitespace runs in the node's text to single spaces.
func flatText(n *html.Node) string {
	return strings.Join(strings.Fields(textContent(n)), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
