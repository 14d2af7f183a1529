// Package docxpack serialises a doctree element sequence into a DOCX
// package.
package docxpack

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/style"
	"github.com/fumiama/go-docx"
)

// Header and footer distance from the page edge, in twips.
const headerFooterDistance = 708

// Packer writes documents with the named styles derived from a palette and
// the per-request style options. It holds no per-document state.
type Packer struct {
	palette style.Palette
}

func New(palette style.Palette) *Packer {
	return &Packer{palette: palette}
}

// Pack writes elements as a single-section DOCX to w. An empty element
// sequence still produces a valid document.
func (p *Packer) Pack(w io.Writer, elements []doctree.Element, opts style.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if templateErr != nil {
		return fmt.Errorf("docx template: %w", templateErr)
	}
	styles, err := renderStyles(opts, p.palette)
	if err != nil {
		return fmt.Errorf("render styles: %w", err)
	}

	doc := docx.New().UseTemplate("", docx.DefaultTemplateFilesList, overlayFS{
		base:  templateFiles,
		files: map[string][]byte{"word/styles.xml": styles},
	})

	pageW, pageH := opts.PageSize.Dimensions()
	margin := opts.MarginSize.Twips()
	textWidth := pageW - 2*margin

	for i, el := range elements {
		switch e := el.(type) {
		case *doctree.Paragraph:
			doc.Document.Body.Items = append(doc.Document.Body.Items, p.paragraph(e))
		case *doctree.Table:
			doc.Document.Body.Items = append(doc.Document.Body.Items, p.table(e, textWidth))
		case *doctree.ImagePlaceholder:
			doc.Document.Body.Items = append(doc.Document.Body.Items, p.paragraph(e.Paragraph()))
		default:
			return fmt.Errorf("element %d: unsupported type %T", i, el)
		}
	}

	doc.Document.Body.Items = append(doc.Document.Body.Items, &docx.SectPr{
		PgSz: &docx.PgSz{W: pageW, H: pageH},
		PgMar: &docx.PgMar{
			Top: margin, Left: margin, Bottom: margin, Right: margin,
			Header: headerFooterDistance, Footer: headerFooterDistance,
		},
	})

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func (p *Packer) paragraph(para *doctree.Paragraph) *docx.Paragraph {
	out := &docx.Paragraph{Children: make([]interface{}, 0, len(para.Runs)+1)}
	if props := paragraphProps(para); props != nil {
		out.Children = append(out.Children, props)
	}
	for _, r := range para.Runs {
		out.Children = append(out.Children, p.run(r))
	}
	return out
}

func paragraphProps(para *doctree.Paragraph) *paragraphProperties {
	props := &paragraphProperties{}
	set := false
	if para.StyleID != "" {
		props.Style = &docx.Style{Val: para.StyleID}
		set = true
	}
	if b := para.Border; b != nil {
		props.Borders = &paragraphBorders{
			Top:    borderLine(b.Top),
			Left:   borderLine(b.Left),
			Bottom: borderLine(b.Bottom),
			Right:  borderLine(b.Right),
		}
		set = true
	}
	if s := para.Spacing; s != nil {
		props.Spacing = &spacing{Before: s.Before, After: s.After, Line: s.Line, LineRule: s.LineRule}
		set = true
	}
	if para.IndentLeft > 0 {
		props.Ind = &docx.Ind{Left: para.IndentLeft}
		set = true
	}
	if para.Alignment != doctree.AlignDefault {
		props.Jc = &docx.Justification{Val: string(para.Alignment)}
		set = true
	}
	if !set {
		return nil
	}
	return props
}

func (p *Packer) run(r doctree.Run) *docx.Run {
	props := &docx.RunProperties{}
	set := false
	if r.StyleID != "" {
		props.RunStyle = &docx.RunStyle{Val: r.StyleID}
		set = true
	}
	font := r.Font
	if font == "" && r.Monospace {
		font = style.CodeFontFamily
	}
	if font != "" {
		props.Fonts = &docx.RunFonts{ASCII: font, EastAsia: font, HAnsi: font}
		set = true
	}
	if r.Bold {
		props.Bold = &docx.Bold{}
		set = true
	}
	if r.Italic {
		props.Italic = &docx.Italic{}
		set = true
	}
	if r.Color != "" {
		props.Color = &docx.Color{Val: r.Color}
		set = true
	}
	if r.Size > 0 {
		sz := strconv.Itoa(r.Size)
		props.Size = &docx.Size{Val: sz}
		props.SizeCs = &docx.SizeCs{Val: sz}
		set = true
	}
	if r.Fill != "" {
		props.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: r.Fill}
		set = true
	}
	if r.Underline {
		props.Underline = &docx.Underline{Val: "single"}
		set = true
	}

	out := &docx.Run{Children: runContent(r.Text)}
	if set {
		out.RunProperties = props
	}
	return out
}

// runContent maps newlines to breaks and tabs to tab stops. Text always
// preserves surrounding spaces.
func runContent(text string) []interface{} {
	var children []interface{}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			children = append(children, &docx.BarterRabbet{})
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				children = append(children, &docx.Tab{})
			}
			if seg != "" {
				children = append(children, &docx.Text{XMLSpace: "preserve", Text: seg})
			}
		}
	}
	return children
}

func (p *Packer) table(t *doctree.Table, textWidth int) *docx.Table {
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row.Cells))
	}
	cols = max(cols, 1)
	pct := t.WidthPct
	if pct <= 0 {
		pct = 100
	}
	colWidth := int64(textWidth*pct/100) / int64(cols)

	grid := &docx.WTableGrid{GridCols: make([]*docx.WGridCol, cols)}
	for i := range grid.GridCols {
		grid.GridCols[i] = &docx.WGridCol{W: colWidth}
	}

	out := &docx.Table{
		TableProperties: &docx.WTableProperties{
			// tblW pct is in fiftieths of a percent.
			Width: &docx.WTableWidth{W: int64(pct * 50), Type: "pct"},
			TableBorders: &docx.WTableBorders{
				Top:     borderLine(t.Borders.Top),
				Left:    borderLine(t.Borders.Left),
				Bottom:  borderLine(t.Borders.Bottom),
				Right:   borderLine(t.Borders.Right),
				InsideH: borderLine(t.Borders.InsideH),
				InsideV: borderLine(t.Borders.InsideV),
			},
		},
		TableGrid: grid,
		TableRows: make([]*docx.WTableRow, 0, len(t.Rows)),
	}

	for _, row := range t.Rows {
		tr := &docx.WTableRow{TableCells: make([]*docx.WTableCell, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			tr.TableCells = append(tr.TableCells, p.cell(cell, colWidth))
		}
		out.TableRows = append(out.TableRows, tr)
	}
	return out
}

func (p *Packer) cell(c doctree.TableCell, width int64) *docx.WTableCell {
	tc := &docx.WTableCell{
		TableCellProperties: &docx.WTableCellProperties{
			TableCellWidth: &docx.WTableCellWidth{W: width, Type: "dxa"},
		},
	}
	if c.Fill != "" {
		tc.TableCellProperties.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: c.Fill}
	}
	for _, para := range c.Paragraphs {
		tc.Paragraphs = append(tc.Paragraphs, p.paragraph(para))
	}
	// A cell must end with a paragraph.
	if len(tc.Paragraphs) == 0 {
		tc.Paragraphs = append(tc.Paragraphs, &docx.Paragraph{})
	}
	return tc
}

func borderLine(b *doctree.Border) *docx.WTableBorder {
	if b == nil {
		return nil
	}
	if b.Style == "" || b.Style == "none" {
		return &docx.WTableBorder{Val: "none"}
	}
	return &docx.WTableBorder{Val: b.Style, Size: b.Size, Color: b.Color}
}
