package images

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/stretchr/testify/assert"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type captionResolver struct {
	fail map[string]bool
	seen []string
}

func (c *captionResolver) Resolve(_ context.Context, img doctree.PendingImage) (doctree.Element, error) {
	c.seen = append(c.seen, img.Source)
	if c.fail[img.Source] {
		return nil, errors.New("fetch failed")
	}
	return &doctree.Paragraph{Runs: []doctree.Run{{Text: "embedded " + img.Alt}}}, nil
}

func sample() ([]doctree.Element, []doctree.PendingImage) {
	elements := []doctree.Element{
		&doctree.Paragraph{Runs: []doctree.Run{{Text: "intro"}}},
		&doctree.ImagePlaceholder{Alt: "a", Source: "a.png"},
		&doctree.ImagePlaceholder{Alt: "b", Source: "b.png"},
	}
	pending := []doctree.PendingImage{
		{Source: "a.png", Alt: "a", Index: 1},
		{Source: "b.png", Alt: "b", Index: 2},
	}
	return elements, pending
}

func TestApplyReplacesPlaceholders(t *testing.T) {
	elements, pending := sample()
	r := &captionResolver{}

	n := Apply(context.Background(), elements, pending, r, quiet)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a.png", "b.png"}, r.seen)
	assert.Equal(t, "embedded a", elements[1].(*doctree.Paragraph).Text())
	assert.Equal(t, "embedded b", elements[2].(*doctree.Paragraph).Text())
}

func TestApplyKeepsPlaceholderOnError(t *testing.T) {
	elements, pending := sample()
	r := &captionResolver{fail: map[string]bool{"a.png": true}}

	n := Apply(context.Background(), elements, pending, r, quiet)

	assert.Equal(t, 1, n)
	assert.IsType(t, &doctree.ImagePlaceholder{}, elements[1])
	assert.IsType(t, &doctree.Paragraph{}, elements[2])
}

func TestApplySkipsStaleEntries(t *testing.T) {
	elements, _ := sample()
	pending := []doctree.PendingImage{
		{Source: "a.png", Index: 0},  // not a placeholder
		{Source: "x.png", Index: 1},  // source mismatch
		{Source: "b.png", Index: 7},  // out of range
		{Source: "b.png", Index: -1}, // out of range
	}
	r := &captionResolver{}

	assert.Equal(t, 0, Apply(context.Background(), elements, pending, r, quiet))
	assert.Empty(t, r.seen)
}

func TestApplyStopsWhenCancelled(t *testing.T) {
	elements, pending := sample()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, Apply(ctx, elements, pending, &captionResolver{}, quiet))
	assert.IsType(t, &doctree.ImagePlaceholder{}, elements[1])
}

func TestLogResolverResolvesNothing(t *testing.T) {
	elements, pending := sample()

	n := Apply(context.Background(), elements, pending, LogResolver{Log: quiet}, quiet)

	assert.Equal(t, 0, n)
	assert.IsType(t, &doctree.ImagePlaceholder{}, elements[1])
	assert.IsType(t, &doctree.ImagePlaceholder{}, elements[2])
}
