package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/md2docx/internal/convert"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Exit codes: 0 success, 1 conversion failure, 2 usage, 3 I/O.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitUsage   = 2
	ExitIO      = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, files, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return ExitUsage
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	if len(files) == 0 {
		fmt.Fprintln(stderr, "md2docx: no input files")
		return ExitUsage
	}

	opts, err := resolveOptions(flags)
	if err != nil {
		fmt.Fprintf(stderr, "md2docx: %v\n", err)
		return exitCodeFor(err)
	}
	if flags.outDir != "" {
		if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
			fmt.Fprintf(stderr, "md2docx: %v\n", err)
			return ExitIO
		}
	}

	b := &batch{
		conv:    convert.New(log, convert.WithRawHTML(flags.rawHTML)),
		opts:    opts,
		outDir:  flags.outDir,
		jobs:    flags.jobs,
		outline: flags.outline,
		log:     log,
	}
	results, err := b.Run(ctx, files)
	for _, r := range results {
		if r.Outline != nil {
			printOutline(stdout, r.Outline)
		} else {
			fmt.Fprintln(stdout, r.Output)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "md2docx: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, os.ErrNotExist),
		errors.Is(err, os.ErrPermission),
		errors.Is(err, ErrReadMarkdown),
		errors.Is(err, ErrWriteDocument):
		return ExitIO
	case convert.IsInvalidInput(err),
		errors.Is(err, ErrInvalidPreset),
		errors.Is(err, ErrDuplicateOutput):
		return ExitUsage
	}
	return ExitGeneral
}
