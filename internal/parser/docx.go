package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/fumiama/go-docx"
)

// ReadOutline re-reads a packed DOCX and rebuilds its heading hierarchy
// from the paragraph styles.
func ReadOutline(r io.ReaderAt, size int64, title string) (*doctree.Outline, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	type stackEntry struct {
		node  *doctree.OutlineNode
		level int
	}
	root := &doctree.OutlineNode{}
	stack := []stackEntry{{node: root, level: 0}}

	appendText := func(text string) {
		top := stack[len(stack)-1].node
		if top.Text != "" {
			top.Text += "\n"
		}
		top.Text += text
	}

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			level := docxHeadingLevel(it)
			text := docxParagraphText(it)
			if level > 0 {
				node := &doctree.OutlineNode{Title: text, Level: level}
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, node)
				stack = append(stack, stackEntry{node: node, level: level})
			} else if text != "" {
				appendText(text)
			}
		case *docx.Table:
			stack[len(stack)-1].node.Tables++
		}
	}

	outline := &doctree.Outline{Title: title, Children: root.Children}
	if root.Text != "" || root.Tables > 0 {
		lead := &doctree.OutlineNode{Text: root.Text, Tables: root.Tables}
		outline.Children = append([]*doctree.OutlineNode{lead}, outline.Children...)
	}
	return outline, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 3; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
