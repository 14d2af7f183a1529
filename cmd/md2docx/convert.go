package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/dgallion1/md2docx/internal/convert"
	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/parser"
	"github.com/dgallion1/md2docx/internal/style"
	"golang.org/x/sync/errgroup"
)

var (
	ErrReadMarkdown    = errors.New("read markdown")
	ErrWriteDocument   = errors.New("write document")
	ErrDuplicateOutput = errors.New("inputs share an output path")
)

// fileResult is one converted file.
type fileResult struct {
	Input   string
	Output  string
	Outline *doctree.Outline
}

// batch converts a set of files with bounded parallelism. Every file is
// attempted; Run reports the first failure.
type batch struct {
	conv    *convert.Converter
	opts    style.Options
	outDir  string
	jobs    int
	outline bool
	log     *slog.Logger

	mu      sync.Mutex
	results []fileResult
}

func (b *batch) Run(ctx context.Context, files []string) ([]fileResult, error) {
	if err := b.checkTargets(files); err != nil {
		return nil, err
	}

	jobs := b.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for _, file := range files {
		file := file
		g.Go(func() error {
			res, err := b.convertFile(ctx, file)
			if err != nil {
				b.log.Error("conversion failed", "file", file, "error", err)
				return fmt.Errorf("%s: %w", file, err)
			}
			b.mu.Lock()
			b.results = append(b.results, res)
			b.mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return b.ordered(files), err
}

func (b *batch) convertFile(ctx context.Context, file string) (fileResult, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return fileResult{}, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}

	out, err := b.conv.Convert(ctx, convert.Request{Markdown: string(src), Options: b.opts})
	if err != nil {
		return fileResult{}, err
	}

	target := b.target(file)
	if err := os.WriteFile(target, out.Document, 0o644); err != nil {
		return fileResult{}, fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}

	res := fileResult{Input: file, Output: target}
	if b.outline {
		title := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
		res.Outline, err = parser.ReadOutline(bytes.NewReader(out.Document), int64(len(out.Document)), title)
		if err != nil {
			return res, fmt.Errorf("read back %s: %w", target, err)
		}
	}

	b.log.Info("converted",
		"file", file,
		"output", target,
		"elements", out.Elements,
		"pending_images", len(out.PendingImages),
		"degradations", len(out.Degradations),
	)
	return res, nil
}

func (b *batch) target(file string) string {
	dir := b.outDir
	if dir == "" {
		dir = filepath.Dir(file)
	}
	return filepath.Join(dir, parser.DocumentName(file))
}

// checkTargets rejects a batch in which two inputs would write the same
// document.
func (b *batch) checkTargets(files []string) error {
	seen := make(map[string]string, len(files))
	for _, file := range files {
		target := filepath.Clean(b.target(file))
		if prev, ok := seen[target]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, prev, file, target)
		}
		seen[target] = file
	}
	return nil
}

// ordered returns results in input order.
func (b *batch) ordered(files []string) []fileResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	byInput := make(map[string]fileResult, len(b.results))
	for _, r := range b.results {
		byInput[r.Input] = r
	}
	out := make([]fileResult, 0, len(b.results))
	for _, f := range files {
		if r, ok := byInput[f]; ok {
			out = append(out, r)
		}
	}
	return out
}

func printOutline(w io.Writer, o *doctree.Outline) {
	fmt.Fprintf(w, "%s\n", o.Title)
	var walk func(nodes []*doctree.OutlineNode)
	walk = func(nodes []*doctree.OutlineNode) {
		for _, n := range nodes {
			if n.Title != "" {
				fmt.Fprintf(w, "%s- %s\n", strings.Repeat("  ", n.Level), n.Title)
			}
			walk(n.Children)
		}
	}
	walk(o.Children)
}
