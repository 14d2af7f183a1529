// Package parser holds the input side of a conversion: Markdown rendering,
// HTML parsing, and reading produced DOCX files back for verification.
package parser

import (
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the source file extensions accepted as Markdown.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// DocumentName returns the output file name for a source file name.
func DocumentName(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if SupportedExtensions[strings.ToLower(ext)] {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document"
	}
	return base + ".docx"
}
