package doctree

// Outline is a heading hierarchy recovered from a packed document.
type Outline struct {
	Title    string         // Document title (from filename)
	Children []*OutlineNode // Top-level sections
}

// OutlineNode is a recursive section of an Outline.
type OutlineNode struct {
	Title    string         // Section heading (empty for leading text)
	Level    int            // Heading level, 0 for text before any heading
	Text     string         // Body text under this heading
	Tables   int            // Tables directly under this heading
	Children []*OutlineNode // Subsections
}

// Headings flattens the outline into heading titles in document order.
func (o *Outline) Headings() []string {
	var out []string
	var walk func([]*OutlineNode)
	walk = func(nodes []*OutlineNode) {
		for _, n := range nodes {
			if n.Title != "" {
				out = append(out, n.Title)
			}
			walk(n.Children)
		}
	}
	walk(o.Children)
	return out
}
