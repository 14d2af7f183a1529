package translate

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/md2docx/internal/doctree"
	"golang.org/x/net/html"
)

var errNoRows = errors.New("table has no rows")

// table builds a bordered table. Without a thead the first body row is
// styled as the header.
func (t *Translator) table(out *emitter, n *html.Node) error {
	doc := goquery.NewDocumentFromNode(n)

	var rows []doctree.TableRow
	head := doc.Find("thead tr").First()
	if head.Length() > 0 {
		row, err := t.tableRow(head, "th", true)
		if err != nil {
			return fmt.Errorf("header row: %w", err)
		}
		rows = append(rows, row)
	}

	var rowErr error
	doc.Find("tbody tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		header := head.Length() == 0 && i == 0
		row, err := t.tableRow(tr, "td", header)
		if err != nil {
			rowErr = fmt.Errorf("body row %d: %w", i+1, err)
			return false
		}
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return rowErr
	}
	if len(rows) == 0 {
		return errNoRows
	}

	line := func() *doctree.Border {
		return &doctree.Border{Style: "single", Size: 1, Color: t.palette.TableBorder}
	}
	out.add(&doctree.Table{
		Rows:     rows,
		WidthPct: 100,
		Borders: doctree.BorderSet{
			Top: line(), Left: line(), Bottom: line(), Right: line(),
			InsideH: line(), InsideV: line(),
		},
	})
	return nil
}

func (t *Translator) tableRow(tr *goquery.Selection, cellTag string, header bool) (doctree.TableRow, error) {
	var row doctree.TableRow
	tr.ChildrenFiltered(cellTag).Each(func(_ int, cell *goquery.Selection) {
		c := doctree.TableCell{
			Header:     header,
			Paragraphs: []*doctree.Paragraph{{Runs: t.InlineRuns(cell.Get(0))}},
		}
		if header {
			c.Fill = t.palette.TableHeader
		}
		row.Cells = append(row.Cells, c)
	})
	if len(row.Cells) == 0 {
		return row, fmt.Errorf("no <%s> cells", cellTag)
	}
	return row, nil
}

func (t *Translator) tableFallback(out *emitter, n *html.Node) {
	out.add(&doctree.Paragraph{Runs: []doctree.Run{{Text: "Table content (simplified): " + flatText(n)}}})
}
