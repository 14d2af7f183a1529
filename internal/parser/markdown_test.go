package parser

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
)

func render(t *testing.T, opts RenderOptions, md string) string {
	t.Helper()
	out, err := NewRenderer(opts).Render(context.Background(), []byte(md))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func TestRenderer_GFM(t *testing.T) {
	out := render(t, RenderOptions{}, "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n")

	for _, want := range []string{`<h1 id="title">Title</h1>`, "<table>", "<th>a</th>", "<td>2</td>", "<del>gone</del>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderer_HardWraps(t *testing.T) {
	out := render(t, RenderOptions{}, "line one\nline two\n")
	if !strings.Contains(out, "line one<br />") {
		t.Errorf("expected soft break rendered as <br />, got %q", out)
	}
}

func TestRenderer_RawHTML(t *testing.T) {
	md := "<div onclick=\"x()\">kept</div>\n\n<script>alert(1)</script>\n"

	safe := render(t, RenderOptions{}, md)
	if strings.Contains(safe, "<div") || strings.Contains(safe, "<script") {
		t.Errorf("expected raw HTML omitted by default, got %q", safe)
	}

	allowed := render(t, RenderOptions{AllowRawHTML: true}, md)
	if !strings.Contains(allowed, "kept") {
		t.Errorf("expected raw HTML content passed through, got %q", allowed)
	}
	if strings.Contains(allowed, "onclick") || strings.Contains(allowed, "<script") {
		t.Errorf("expected raw HTML sanitised, got %q", allowed)
	}
}

func TestRenderer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer(RenderOptions{}).Render(ctx, []byte("# x"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseHTML_ReturnsBody(t *testing.T) {
	body, err := ParseHTML(strings.NewReader("<h1>a</h1><p>b</p>"))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if body.Type != html.ElementNode || body.Data != "body" {
		t.Fatalf("expected body element, got %q", body.Data)
	}
	var tags []string
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		tags = append(tags, c.Data)
	}
	if strings.Join(tags, ",") != "h1,p" {
		t.Errorf("expected children h1,p, got %v", tags)
	}
}

func TestParseHTML_Empty(t *testing.T) {
	body, err := ParseHTML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if body.FirstChild != nil {
		t.Error("expected empty body")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	tests := map[string]bool{
		"notes.md":       true,
		"README.MD":      true,
		"a.markdown":     true,
		"plain.txt":      true,
		"report.pdf":     false,
		"no-extension":   false,
		"archive.md.zip": false,
	}
	for name, want := range tests {
		if got := IsSupportedExtension(name); got != want {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDocumentName(t *testing.T) {
	tests := map[string]string{
		"notes.md":           "notes.docx",
		"dir/Guide.Markdown": "Guide.docx",
		"data.csv":           "data.csv.docx",
		"":                   "document.docx",
		".md":                "document.docx",
	}
	for in, want := range tests {
		if got := DocumentName(in); got != want {
			t.Errorf("DocumentName(%q) = %q, want %q", in, got, want)
		}
	}
}

func buildDocx(t *testing.T) []byte {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("preamble")
	doc.AddParagraph().Style("Heading1").AddText("Title")
	doc.AddParagraph().AddText("intro")
	doc.AddParagraph().Style("heading 2").AddText("Section A")
	doc.AddTable(1, 1, 0, nil)
	doc.AddParagraph().Style("Heading3").AddText("Deep")
	doc.AddParagraph().Style("Heading2").AddText("Section B")
	doc.AddParagraph().AddText("   ")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.Bytes()
}

func TestReadOutline(t *testing.T) {
	data := buildDocx(t)
	outline, err := ReadOutline(bytes.NewReader(data), int64(len(data)), "doc")
	if err != nil {
		t.Fatalf("ReadOutline: %v", err)
	}
	if outline.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", outline.Title)
	}

	got := strings.Join(outline.Headings(), "|")
	if got != "Title|Section A|Deep|Section B" {
		t.Errorf("unexpected headings %q", got)
	}

	if len(outline.Children) != 2 {
		t.Fatalf("expected lead node and h1, got %d children", len(outline.Children))
	}
	lead := outline.Children[0]
	if lead.Title != "" || lead.Text != "preamble" {
		t.Errorf("unexpected lead node %+v", lead)
	}

	title := outline.Children[1]
	if title.Text != "intro" || len(title.Children) != 2 {
		t.Fatalf("unexpected h1 node %+v", title)
	}
	secA := title.Children[0]
	if secA.Level != 2 || secA.Tables != 1 || len(secA.Children) != 1 {
		t.Errorf("unexpected section A %+v", secA)
	}
	if secA.Children[0].Level != 3 {
		t.Errorf("expected h3 under section A, got level %d", secA.Children[0].Level)
	}
}

func TestReadOutline_NotAZip(t *testing.T) {
	data := []byte("not a docx")
	if _, err := ReadOutline(bytes.NewReader(data), int64(len(data)), "x"); err == nil {
		t.Error("expected error for non-zip input")
	}
}
