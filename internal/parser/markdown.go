package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// RenderOptions controls the Markdown renderer.
type RenderOptions struct {
	// AllowRawHTML passes inline HTML through, sanitised with the UGC
	// policy. When false goldmark omits raw HTML entirely.
	AllowRawHTML bool
}

// Renderer converts GitHub-flavoured Markdown into an HTML fragment.
// Soft line breaks become <br />.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer(opts RenderOptions) *Renderer {
	rendererOpts := []renderer.Option{
		gmhtml.WithHardWraps(),
		gmhtml.WithXHTML(),
	}
	r := &Renderer{}
	if opts.AllowRawHTML {
		rendererOpts = append(rendererOpts, gmhtml.WithUnsafe())
		r.policy = bluemonday.UGCPolicy()
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(gmparser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return r
}

// Render converts src to HTML. goldmark has no context support, so the
// conversion runs in a goroutine and the caller stops waiting on cancel.
func (r *Renderer) Render(ctx context.Context, src []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		html []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert(src, &buf); err != nil {
			done <- result{err: fmt.Errorf("goldmark convert: %w", err)}
			return
		}
		out := buf.Bytes()
		if r.policy != nil {
			out = r.policy.SanitizeBytes(out)
		}
		done <- result{html: out}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}
