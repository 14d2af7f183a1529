package docxpack

import (
	"encoding/xml"

	"github.com/fumiama/go-docx"
)

// paragraphProperties is a w:pPr in schema order. go-docx's own
// ParagraphProperties has no pBdr and no spacing-after, and writes pStyle
// last, so this is emitted as the first child of a docx.Paragraph instead.
type paragraphProperties struct {
	XMLName xml.Name `xml:"w:pPr"`
	Style   *docx.Style
	Borders *paragraphBorders
	Spacing *spacing
	Ind     *docx.Ind
	Jc      *docx.Justification
}

type paragraphBorders struct {
	XMLName xml.Name           `xml:"w:pBdr"`
	Top     *docx.WTableBorder `xml:"w:top,omitempty"`
	Left    *docx.WTableBorder `xml:"w:left,omitempty"`
	Bottom  *docx.WTableBorder `xml:"w:bottom,omitempty"`
	Right   *docx.WTableBorder `xml:"w:right,omitempty"`
}

type spacing struct {
	XMLName  xml.Name `xml:"w:spacing"`
	Before   int      `xml:"w:before,attr"`
	After    int      `xml:"w:after,attr"`
	Line     int      `xml:"w:line,attr,omitempty"`
	LineRule string   `xml:"w:lineRule,attr,omitempty"`
}
