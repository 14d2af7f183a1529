package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/md2docx/internal/style"
	flag "github.com/spf13/pflag"
)

// cliFlags holds everything parsed from the command line.
type cliFlags struct {
	// Style overrides; zero values leave the preset or default in place.
	font   string
	size   int
	page   string
	margin string

	config  string
	outDir  string
	jobs    int
	outline bool
	rawHTML bool
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("md2docx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}

	fs.StringVar(&f.font, "font", "", "body font family (default Calibri)")
	fs.IntVar(&f.size, "size", 0, "body font size in points (default 12)")
	fs.StringVar(&f.page, "page", "", "page size: A4, Letter or Legal")
	fs.StringVar(&f.margin, "margin", "", "margins: narrow, normal or wide")

	fs.StringVarP(&f.config, "config", "c", "", "YAML style preset")
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "output directory (default: next to each input)")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "files converted in parallel (0 = one per CPU)")
	fs.BoolVar(&f.outline, "outline", false, "print the heading outline of each produced document")
	fs.BoolVar(&f.rawHTML, "raw-html", false, "keep sanitised inline HTML from the Markdown")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: md2docx [flags] FILE...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// fields returns the style overrides given on the command line.
func (f *cliFlags) fields() style.Fields {
	fields := style.Fields{
		FontFamily: f.font,
		PageSize:   f.page,
		MarginSize: f.margin,
	}
	if f.size != 0 {
		fields.FontSize = strconv.Itoa(f.size)
	}
	return fields
}
