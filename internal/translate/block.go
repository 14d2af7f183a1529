package translate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/style"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func (t *Translator) text(out *emitter, n *html.Node) error {
	if strings.TrimSpace(n.Data) != "" {
		out.add(&doctree.Paragraph{Runs: []doctree.Run{{Text: n.Data}}})
	}
	return nil
}

func (t *Translator) heading(level int) func(*emitter, *html.Node) error {
	return func(out *emitter, n *html.Node) error {
		out.add(&doctree.Paragraph{
			Runs:         t.InlineRuns(n),
			HeadingLevel: level,
			StyleID:      style.HeadingStyleID(level),
		})
		return nil
	}
}

func (t *Translator) paragraph(out *emitter, n *html.Node) error {
	out.add(&doctree.Paragraph{Runs: t.InlineRuns(n)})
	return nil
}

func bulletPrefix(int) string { return "• " }

func numberPrefix(i int) string { return fmt.Sprintf("%d. ", i+1) }

// list emits one indented paragraph per li descendant. Nesting is not
// modelled and numbering restarts for every list.
func (t *Translator) list(prefix func(i int) string) func(*emitter, *html.Node) error {
	return func(out *emitter, n *html.Node) error {
		goquery.NewDocumentFromNode(n).Find("li").Each(func(i int, li *goquery.Selection) {
			runs := append([]doctree.Run{{Text: prefix(i)}}, t.InlineRuns(li.Get(0))...)
			out.add(&doctree.Paragraph{Runs: runs, IndentLeft: style.IndentUnit})
		})
		return nil
	}
}

func (t *Translator) blockquote(out *emitter, n *html.Node) error {
	out.add(&doctree.Paragraph{
		Runs:       t.InlineRuns(n),
		IndentLeft: style.IndentUnit,
		Border: &doctree.BorderSet{
			Left: &doctree.Border{Style: "single", Size: 12, Color: t.palette.BlockquoteBorder},
		},
	})
	return nil
}

// codeBlock emits a spacer paragraph followed by a one-column table with
// a shaded row per source line. Blank lines keep their rows.
func (t *Translator) codeBlock(out *emitter, n *html.Node) error {
	var code string
	if sel := goquery.NewDocumentFromNode(n).Find("code").First(); sel.Length() > 0 {
		code = sel.Text()
	} else {
		code = textContent(n)
	}
	code = strings.TrimSuffix(code, "\n")

	out.add(&doctree.Paragraph{
		Spacing: &doctree.Spacing{Before: 240, After: 240, Line: 240, LineRule: "auto"},
	})

	lines := strings.Split(code, "\n")
	tbl := &doctree.Table{
		Rows:     make([]doctree.TableRow, 0, len(lines)),
		WidthPct: 100,
		Borders:  t.outerBorders(),
	}
	for _, line := range lines {
		tbl.Rows = append(tbl.Rows, doctree.TableRow{Cells: []doctree.TableCell{{
			Fill: t.palette.CodeBackground,
			Paragraphs: []*doctree.Paragraph{{
				Runs: []doctree.Run{{
					Text:      line,
					Monospace: true,
					Font:      style.CodeFontFamily,
					Size:      style.CodeFontSize,
				}},
				StyleID: style.StyleCode,
				Spacing: &doctree.Spacing{Before: 20, After: 20, Line: 240, LineRule: "auto"},
			}},
		}}})
	}
	out.add(tbl)
	return nil
}

func (t *Translator) rule(out *emitter, _ *html.Node) error {
	out.add(&doctree.Paragraph{
		Border: &doctree.BorderSet{
			Bottom: &doctree.Border{Style: "single", Size: 1, Color: t.palette.BlockquoteBorder},
		},
	})
	return nil
}

// image emits a placeholder and, when the image has a source, a pending
// entry pointing at it.
func (t *Translator) image(out *emitter, n *html.Node) error {
	alt := attr(n, "alt")
	if alt == "" {
		alt = "Image"
	}
	src := strings.TrimSpace(attr(n, "src"))
	if src != "" {
		if _, err := url.Parse(src); err != nil {
			return fmt.Errorf("image source: %w", err)
		}
	}

	idx := out.add(&doctree.ImagePlaceholder{Alt: alt, Source: src})
	if src != "" {
		out.pending = append(out.pending, doctree.PendingImage{Source: src, Alt: alt, Index: idx})
		t.log.Debug("image found", "src", src, "alt", alt, "index", idx)
	}
	return nil
}

func (t *Translator) imageFallback(out *emitter, _ *html.Node) {
	out.add(&doctree.Paragraph{Runs: []doctree.Run{{Text: "Image could not be processed"}}})
}

// other renders unrecognised elements as plain paragraphs. Elements with
// no visible text are dropped rather than producing an empty paragraph.
func (t *Translator) other(out *emitter, n *html.Node) error {
	if strings.TrimSpace(textContent(n)) == "" {
		return nil
	}
	out.add(&doctree.Paragraph{Runs: t.InlineRuns(n)})
	return nil
}

func (t *Translator) plainFallback(out *emitter, n *html.Node) {
	if text := flatText(n); text != "" {
		out.add(&doctree.Paragraph{Runs: []doctree.Run{{Text: text}}})
	}
}

// soleImage returns the img element when it is the only non-blank child
// of a paragraph, as the Markdown renderer emits for standalone images.
func soleImage(p *html.Node) *html.Node {
	var img *html.Node
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
			continue
		case c.Type == html.ElementNode && c.DataAtom == atom.Img && img == nil:
			img = c
		default:
			return nil
		}
	}
	return img
}

func (t *Translator) outerBorders() doctree.BorderSet {
	line := func() *doctree.Border {
		return &doctree.Border{Style: "single", Size: 1, Color: t.palette.TableBorder}
	}
	none := func() *doctree.Border { return &doctree.Border{Style: "none"} }
	return doctree.BorderSet{
		Top: line(), Left: line(), Bottom: line(), Right: line(),
		InsideH: none(), InsideV: none(),
	}
}
