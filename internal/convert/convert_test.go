package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/parser"
	"github.com/dgallion1/md2docx/internal/style"
	"github.com/dgallion1/md2docx/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func headings(t *testing.T, doc []byte) []string {
	t.Helper()
	outline, err := parser.ReadOutline(bytes.NewReader(doc), int64(len(doc)), "test")
	require.NoError(t, err)
	return outline.Headings()
}

func documentXML(t *testing.T, doc []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	rc, err := zr.Open("word/document.xml")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestConvertDocument(t *testing.T) {
	c := New(quiet)
	md := "# Title\n\nHello **world**\n\n## Part\n\n- a\n- b\n"

	out, err := c.Convert(context.Background(), Request{Markdown: md, Options: style.Default()})
	require.NoError(t, err)

	assert.NotEmpty(t, out.Document)
	assert.Len(t, out.Hash, 64)
	assert.Equal(t, ContentHashHex(out.Document), out.Hash)
	// h1, p, h2, two list items
	assert.Equal(t, 5, out.Elements)
	assert.Empty(t, out.PendingImages)
	assert.Empty(t, out.Degradations)
	assert.Equal(t, []string{"Title", "Part"}, headings(t, out.Document))
}

func TestConvertRejectsInvalidInput(t *testing.T) {
	c := New(quiet)

	_, err := c.Convert(context.Background(), Request{Markdown: "", Options: style.Default()})
	assert.ErrorIs(t, err, ErrEmptyMarkdown)
	assert.True(t, IsInvalidInput(err))

	opts := style.Default()
	opts.PageSize = "A5"
	_, err = c.Convert(context.Background(), Request{Markdown: "text", Options: opts})
	assert.ErrorIs(t, err, style.ErrInvalidPageSize)
	assert.True(t, IsInvalidInput(err))

	opts = style.Default()
	opts.FontFamily = ""
	_, err = c.Convert(context.Background(), Request{Markdown: "text", Options: opts})
	assert.ErrorIs(t, err, style.ErrEmptyFontFamily)
}

func TestConvertReportsStages(t *testing.T) {
	var stages []Stage
	_, err := New(quiet).Convert(context.Background(), Request{
		Markdown: "text",
		Options:  style.Default(),
		OnStage:  func(s Stage) { stages = append(stages, s) },
	})
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageRendering, StageTranslating, StageResolvingImages, StagePacking}, stages)
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(quiet).Convert(ctx, Request{Markdown: "text", Options: style.Default()})
	assert.ErrorIs(t, err, ErrRender)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsInvalidInput(err))
	assert.Equal(t, 1, strings.Count(err.Error(), ErrRender.Error()), err.Error())
}

type altResolver struct{}

func (altResolver) Resolve(_ context.Context, img doctree.PendingImage) (doctree.Element, error) {
	if img.Source == "broken.png" {
		return nil, errors.New("unreachable")
	}
	return &doctree.Paragraph{Runs: []doctree.Run{{Text: "resolved " + img.Alt}}}, nil
}

func TestConvertPendingImages(t *testing.T) {
	md := "![First](one.png)\n\ntext\n\n![Broken](broken.png)\n\n![](/no-alt.png)\n"

	out, err := New(quiet).Convert(context.Background(), Request{Markdown: md, Options: style.Default()})
	require.NoError(t, err)
	require.Len(t, out.PendingImages, 3)
	assert.Equal(t, doctree.PendingImage{Source: "one.png", Alt: "First", Index: 0}, out.PendingImages[0])
	assert.Equal(t, 2, out.PendingImages[1].Index)
	assert.Equal(t, "Image", out.PendingImages[2].Alt)

	out, err = New(quiet, WithResolver(altResolver{})).Convert(context.Background(), Request{Markdown: md, Options: style.Default()})
	require.NoError(t, err)
	body := documentXML(t, out.Document)
	assert.Contains(t, body, "resolved First")
	assert.Contains(t, body, "[Image: Broken]")
	assert.Contains(t, body, "resolved Image")
}

func TestConvertDegradesMalformedTable(t *testing.T) {
	md := "before\n\n<table><caption>empty</caption></table>\n\nafter\n"

	out, err := New(quiet, WithRawHTML(true)).Convert(context.Background(), Request{Markdown: md, Options: style.Default()})
	require.NoError(t, err)
	require.Len(t, out.Degradations, 1)
	assert.Equal(t, translate.KindTable, out.Degradations[0].Kind)

	body := documentXML(t, out.Document)
	assert.Contains(t, body, "before")
	assert.Contains(t, body, "Table content (simplified): empty")
	assert.Contains(t, body, "after")
}

func TestConvertRecordsStatsAndMetrics(t *testing.T) {
	stats := metrics.NewConversionStats(time.Hour)
	collectors := metrics.NewCollectors()
	c := New(quiet, WithStats(stats), WithMetrics(collectors))

	_, err := c.Convert(context.Background(), Request{Markdown: "![x](x.png)", Options: style.Default()})
	require.NoError(t, err)
	_, err = c.Convert(context.Background(), Request{Options: style.Default()})
	require.Error(t, err)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Equal(t, 0, snap.Failed)

	rec := httptest.NewRecorder()
	collectors.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	text := rec.Body.String()
	assert.Contains(t, text, `md2docx_conversions_total{outcome="ok"} 1`)
	assert.Contains(t, text, `md2docx_conversions_total{outcome="invalid"} 1`)
	assert.Contains(t, text, `md2docx_pending_images_total 1`)
}

func TestConvertConcurrentRequestsAreIsolated(t *testing.T) {
	c := New(quiet)
	const n = 8

	var wg sync.WaitGroup
	outs := make([]*Output, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			md := fmt.Sprintf("# Doc %d\n\n![img %d](img%d.png)\n", i, i, i)
			outs[i], errs[i] = c.Convert(context.Background(), Request{Markdown: md, Options: style.Default()})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{fmt.Sprintf("Doc %d", i)}, headings(t, outs[i].Document))
		require.Len(t, outs[i].PendingImages, 1)
		assert.Equal(t, fmt.Sprintf("img%d.png", i), outs[i].PendingImages[0].Source)
	}
}

func TestConvertIsDeterministic(t *testing.T) {
	c := New(quiet)
	req := Request{Markdown: "# Same\n\n| a | b |\n|---|---|\n| 1 | 2 |\n", Options: style.Default()}

	a, err := c.Convert(context.Background(), req)
	require.NoError(t, err)
	b, err := c.Convert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a.Elements, b.Elements)
	assert.Equal(t, documentXML(t, a.Document), documentXML(t, b.Document))
}
