package style

// Palette maps semantic roles to RGB hex colors (no leading '#').
type Palette struct {
	Text             string
	Heading          string
	Accent           string
	TableBorder      string
	TableHeader      string
	BlockquoteBorder string
	CodeBackground   string
}

// DefaultPalette returns the palette used for every document.
func DefaultPalette() Palette {
	return Palette{
		Text:             "000000",
		Heading:          "2C3E50",
		Accent:           "3498DB",
		TableBorder:      "DDDDDD",
		TableHeader:      "F2F2F2",
		BlockquoteBorder: "CCCCCC",
		CodeBackground:   "F5F5F5",
	}
}
