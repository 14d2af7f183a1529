package docxpack

import (
	"bytes"
	"encoding/xml"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/dgallion1/md2docx/internal/style"
	"github.com/fumiama/go-docx"
)

var stylesTmpl = template.Must(template.New("styles").Funcs(template.FuncMap{
	"attr": xmlAttr,
}).Parse(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults>
<w:rPrDefault><w:rPr><w:rFonts w:ascii="{{attr .Font}}" w:eastAsia="{{attr .Font}}" w:hAnsi="{{attr .Font}}" w:cs="{{attr .Font}}"/><w:sz w:val="{{.Size}}"/><w:szCs w:val="{{.Size}}"/><w:lang w:val="en-US"/></w:rPr></w:rPrDefault>
<w:pPrDefault/>
</w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="{{.Normal}}">
<w:name w:val="Normal"/><w:qFormat/>
<w:rPr><w:rFonts w:ascii="{{attr .Font}}" w:eastAsia="{{attr .Font}}" w:hAnsi="{{attr .Font}}" w:cs="{{attr .Font}}"/><w:color w:val="{{.Palette.Text}}"/><w:sz w:val="{{.Size}}"/><w:szCs w:val="{{.Size}}"/></w:rPr>
</w:style>
<w:style w:type="character" w:default="1" w:styleId="DefaultParagraphFont">
<w:name w:val="Default Paragraph Font"/><w:uiPriority w:val="1"/><w:semiHidden/><w:unhideWhenUsed/>
</w:style>
{{- range .Headings}}
<w:style w:type="paragraph" w:styleId="Heading{{.Level}}">
<w:name w:val="heading {{.Level}}"/><w:basedOn w:val="{{$.Normal}}"/><w:next w:val="{{$.Normal}}"/><w:uiPriority w:val="9"/><w:qFormat/>
<w:pPr><w:keepNext/><w:outlineLvl w:val="{{.Outline}}"/></w:pPr>
<w:rPr><w:rFonts w:ascii="{{attr $.Font}}" w:eastAsia="{{attr $.Font}}" w:hAnsi="{{attr $.Font}}" w:cs="{{attr $.Font}}"/><w:b/><w:bCs/><w:color w:val="{{$.Palette.Heading}}"/><w:sz w:val="{{.Size}}"/><w:szCs w:val="{{.Size}}"/></w:rPr>
</w:style>
{{- end}}
<w:style w:type="character" w:styleId="{{.Hyperlink}}">
<w:name w:val="Hyperlink"/><w:basedOn w:val="DefaultParagraphFont"/><w:uiPriority w:val="99"/><w:unhideWhenUsed/>
<w:rPr><w:color w:val="{{.Palette.Accent}}"/><w:u w:val="single"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="{{.Code}}">
<w:name w:val="Code"/><w:basedOn w:val="{{.Normal}}"/><w:qFormat/>
<w:pPr><w:spacing w:before="20" w:after="20" w:line="240" w:lineRule="auto"/></w:pPr>
<w:rPr><w:rFonts w:ascii="{{attr .CodeFont}}" w:eastAsia="{{attr .CodeFont}}" w:hAnsi="{{attr .CodeFont}}" w:cs="{{attr .CodeFont}}"/><w:color w:val="{{.Palette.Text}}"/><w:sz w:val="{{.CodeSize}}"/><w:szCs w:val="{{.CodeSize}}"/></w:rPr>
</w:style>
<w:style w:type="table" w:default="1" w:styleId="TableNormal">
<w:name w:val="Normal Table"/><w:uiPriority w:val="99"/><w:semiHidden/><w:unhideWhenUsed/>
<w:tblPr><w:tblInd w:w="0" w:type="dxa"/><w:tblCellMar><w:top w:w="0" w:type="dxa"/><w:left w:w="108" w:type="dxa"/><w:bottom w:w="0" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr>
</w:style>
</w:styles>
`))

type headingStyle struct {
	Level   int
	Outline int
	Size    int
}

type stylesData struct {
	Normal    string
	Hyperlink string
	Code      string

	Font     string
	Size     int
	CodeFont string
	CodeSize int
	Palette  style.Palette
	Headings []headingStyle
}

// renderStyles builds word/styles.xml for the requested font and palette.
func renderStyles(opts style.Options, palette style.Palette) ([]byte, error) {
	data := stylesData{
		Normal:    style.StyleNormal,
		Hyperlink: style.StyleHyperlink,
		Code:      style.StyleCode,

		Font:     opts.FontFamily,
		Size:     opts.HalfPoints(),
		CodeFont: style.CodeFontFamily,
		CodeSize: opts.CodeHalfPoints(),
		Palette:  palette,
	}
	for level := 1; level <= 3; level++ {
		data.Headings = append(data.Headings, headingStyle{
			Level:   level,
			Outline: level - 1,
			Size:    opts.HeadingHalfPoints(level),
		})
	}
	var buf bytes.Buffer
	if err := stylesTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xmlAttr(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// templateFiles is go-docx's bundled package skeleton (rels, theme, font
// table, content types) rooted so that names match DefaultTemplateFilesList.
var templateFiles, templateErr = fs.Sub(docx.TemplateXMLFS, "xml/default")

// overlayFS serves generated parts in place of the bundled template.
type overlayFS struct {
	base  fs.FS
	files map[string][]byte
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if data, ok := o.files[name]; ok {
		return &memFile{Reader: bytes.NewReader(data), name: name, size: int64(len(data))}, nil
	}
	return o.base.Open(name)
}

type memFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *memFile) Stat() (fs.FileInfo, error) { return memFileInfo{f}, nil }
func (f *memFile) Close() error               { return nil }

type memFileInfo struct{ f *memFile }

func (i memFileInfo) Name() string       { return i.f.name }
func (i memFileInfo) Size() int64        { return i.f.size }
func (i memFileInfo) Mode() fs.FileMode  { return 0o444 }
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() any           { return nil }
