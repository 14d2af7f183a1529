// Package style holds the per-request style options, the fixed color
// palette, and the unit conversions shared by the translator and the packer.
package style

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyFontFamily   = errors.New("font family cannot be empty")
	ErrInvalidFontSize   = errors.New("invalid font size")
	ErrInvalidPageSize   = errors.New("invalid page size")
	ErrInvalidMarginSize = errors.New("invalid margin size")
)

// Layout units. Indents, margins and page sizes are in twips (1/20 pt);
// run sizes are in half-points.
const (
	TwipsPerInch = 1440
	IndentUnit   = TwipsPerInch / 2

	CodeFontFamily = "Courier New"
	CodeFontSize   = 22

	MinFontSize = 1
	MaxFontSize = 1638

	// w:sz bounds, in half-points.
	minHalfPoints = 2
	maxHalfPoints = 2 * MaxFontSize
)

// Style identifiers written to styles.xml and referenced from paragraphs
// and runs.
const (
	StyleNormal    = "Normal"
	StyleHyperlink = "Hyperlink"
	StyleCode      = "Code"
)

// HeadingStyleID returns "Heading1".."Heading3".
func HeadingStyleID(level int) string {
	return "Heading" + strconv.Itoa(level)
}

// PageSize is one of the supported paper sizes.
type PageSize string

const (
	PageA4     PageSize = "A4"
	PageLetter PageSize = "Letter"
	PageLegal  PageSize = "Legal"
)

// ParsePageSize matches case-insensitively.
func ParsePageSize(s string) (PageSize, error) {
	for _, p := range []PageSize{PageA4, PageLetter, PageLegal} {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want A4, Letter or Legal)", ErrInvalidPageSize, s)
}

// Dimensions returns width and height in twips.
func (p PageSize) Dimensions() (w, h int) {
	if norm, err := ParsePageSize(string(p)); err == nil {
		p = norm
	}
	switch p {
	case PageLetter:
		return 12240, 15840
	case PageLegal:
		return 12240, 20160
	default:
		return 11906, 16838
	}
}

// MarginSize is one of the margin presets.
type MarginSize string

const (
	MarginNarrow MarginSize = "narrow"
	MarginNormal MarginSize = "normal"
	MarginWide   MarginSize = "wide"
)

func ParseMarginSize(s string) (MarginSize, error) {
	for _, m := range []MarginSize{MarginNarrow, MarginNormal, MarginWide} {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want narrow, normal or wide)", ErrInvalidMarginSize, s)
}

// Twips returns the margin applied to all four page edges.
func (m MarginSize) Twips() int {
	if norm, err := ParseMarginSize(string(m)); err == nil {
		m = norm
	}
	switch m {
	case MarginNarrow:
		return TwipsPerInch / 2
	case MarginWide:
		return TwipsPerInch * 3 / 2
	default:
		return TwipsPerInch
	}
}

// Options are the style settings supplied with one conversion request.
type Options struct {
	FontFamily string     `json:"fontFamily" yaml:"fontFamily"`
	FontSize   int        `json:"fontSize" yaml:"fontSize"`
	PageSize   PageSize   `json:"pageSize" yaml:"pageSize"`
	MarginSize MarginSize `json:"marginSize" yaml:"marginSize"`
}

// Default returns Calibri 12pt on A4 with normal margins.
func Default() Options {
	return Options{
		FontFamily: "Calibri",
		FontSize:   12,
		PageSize:   PageA4,
		MarginSize: MarginNormal,
	}
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.FontFamily) == "" {
		return ErrEmptyFontFamily
	}
	if o.FontSize < MinFontSize || o.FontSize > MaxFontSize {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidFontSize, o.FontSize, MinFontSize, MaxFontSize)
	}
	if _, err := ParsePageSize(string(o.PageSize)); err != nil {
		return err
	}
	if _, err := ParseMarginSize(string(o.MarginSize)); err != nil {
		return err
	}
	return nil
}

// Fields is the loosely-typed form of Options as it arrives from form
// posts, JSON bodies and CLI flags. Empty fields keep the base value.
type Fields struct {
	FontFamily string
	FontSize   string
	PageSize   string
	MarginSize string
}

// Apply overlays the non-empty fields onto o and validates the result.
func (o Options) Apply(f Fields) (Options, error) {
	if v := strings.TrimSpace(f.FontFamily); v != "" {
		o.FontFamily = v
	}
	if v := strings.TrimSpace(f.FontSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("%w: %q", ErrInvalidFontSize, f.FontSize)
		}
		o.FontSize = n
	}
	if f.PageSize != "" {
		p, err := ParsePageSize(f.PageSize)
		if err != nil {
			return o, err
		}
		o.PageSize = p
	}
	if f.MarginSize != "" {
		m, err := ParseMarginSize(f.MarginSize)
		if err != nil {
			return o, err
		}
		o.MarginSize = m
	}
	return o, o.Validate()
}

// HalfPoints returns the body text size in half-points.
func (o Options) HalfPoints() int {
	return o.FontSize * 2
}

// HeadingHalfPoints returns the run size for heading level 1-3, capped at
// the largest size a run can carry.
func (o Options) HeadingHalfPoints(level int) int {
	size := o.HalfPoints()
	switch level {
	case 1:
		size += 8
	case 2:
		size += 4
	case 3:
		size += 2
	}
	return min(size, maxHalfPoints)
}

// CodeHalfPoints returns the code block size, one point below body text.
func (o Options) CodeHalfPoints() int {
	return max(o.HalfPoints()-2, minHalfPoints)
}
