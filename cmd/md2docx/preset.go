package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dgallion1/md2docx/internal/style"
	"github.com/goccy/go-yaml"
)

// maxPresetSize bounds preset files; they hold four keys.
const maxPresetSize = 64 << 10

var ErrInvalidPreset = errors.New("invalid preset")

// preset is a YAML style preset:
//
//	fontFamily: Georgia
//	fontSize: 11
//	pageSize: Letter
//	marginSize: narrow
type preset struct {
	FontFamily string `yaml:"fontFamily"`
	FontSize   int    `yaml:"fontSize"`
	PageSize   string `yaml:"pageSize"`
	MarginSize string `yaml:"marginSize"`
}

func loadPreset(path string) (style.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return style.Fields{}, fmt.Errorf("read preset: %w", err)
	}
	return parsePreset(data)
}

// parsePreset rejects unknown keys so typos do not silently fall back to
// defaults.
func parsePreset(data []byte) (style.Fields, error) {
	if len(data) > maxPresetSize {
		return style.Fields{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidPreset, len(data), maxPresetSize)
	}
	var p preset
	if len(data) > 0 {
		if err := yaml.UnmarshalWithOptions(data, &p, yaml.Strict()); err != nil {
			return style.Fields{}, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
		}
	}
	f := style.Fields{
		FontFamily: p.FontFamily,
		PageSize:   p.PageSize,
		MarginSize: p.MarginSize,
	}
	if p.FontSize != 0 {
		f.FontSize = strconv.Itoa(p.FontSize)
	}
	return f, nil
}

// resolveOptions layers defaults, then the preset, then flags.
func resolveOptions(f *cliFlags) (style.Options, error) {
	opts := style.Default()
	if f.config != "" {
		fields, err := loadPreset(f.config)
		if err != nil {
			return opts, err
		}
		if opts, err = opts.Apply(fields); err != nil {
			return opts, fmt.Errorf("preset %s: %w", f.config, err)
		}
	}
	return opts.Apply(f.fields())
}
