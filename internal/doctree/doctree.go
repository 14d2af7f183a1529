// Package doctree is the document model produced by the translator and
// consumed by the DOCX packer.
package doctree

import "strings"

// Element is a block-level unit of the document body. The set of variants
// is closed: *Paragraph, *Table and *ImagePlaceholder.
type Element interface {
	isElement()
}

// Run is a span of text with one formatting profile.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Monospace bool
	Underline bool
	Font      string // overrides the style font when set
	Size      int    // half-points; 0 inherits
	Color     string
	Fill      string
	StyleID   string // character style, e.g. "Hyperlink"
}

// Alignment of a paragraph.
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignCenter  Alignment = "center"
)

// Border is a single rule. Size is in eighths of a point.
type Border struct {
	Style string // "single" or "none"
	Size  int
	Color string
}

// BorderSet describes the rules around a paragraph or table. Paragraphs
// only use Left and Bottom.
type BorderSet struct {
	Top, Left, Bottom, Right *Border
	InsideH, InsideV         *Border
}

// Spacing is paragraph spacing in twips; Line uses LineRule.
type Spacing struct {
	Before   int
	After    int
	Line     int
	LineRule string
}

type Paragraph struct {
	Runs         []Run
	HeadingLevel int    // 0 for body text, 1-3 for headings
	StyleID      string // paragraph style, e.g. "Heading1"
	IndentLeft   int    // twips
	Border       *BorderSet
	Alignment    Alignment
	Spacing      *Spacing
}

// Text returns the concatenated run text.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type TableCell struct {
	Paragraphs []*Paragraph
	Fill       string
	Header     bool
}

type TableRow struct {
	Cells []TableCell
}

type Table struct {
	Rows     []TableRow
	Borders  BorderSet
	WidthPct int
}

// ImagePlaceholder stands where an image would be embedded. It renders as
// a centered "[Image: alt]" paragraph until an image resolver replaces it.
type ImagePlaceholder struct {
	Alt    string
	Source string
}

// Paragraph returns the text paragraph shown in place of the image.
func (img *ImagePlaceholder) Paragraph() *Paragraph {
	return &Paragraph{
		Runs:      []Run{{Text: "[Image: " + img.Alt + "]"}},
		Alignment: AlignCenter,
	}
}

func (*Paragraph) isElement()        {}
func (*Table) isElement()            {}
func (*ImagePlaceholder) isElement() {}

// PendingImage references a placeholder awaiting out-of-band resolution.
// Index is the placeholder's position in the element sequence.
type PendingImage struct {
	Source string `json:"source"`
	Alt    string `json:"alt"`
	Index  int    `json:"index"`
}
