// Package convert runs a full Markdown to DOCX conversion.
package convert

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/md2docx/internal/docxpack"
	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/images"
	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/parser"
	"github.com/dgallion1/md2docx/internal/style"
	"github.com/dgallion1/md2docx/internal/translate"
)

// Stage names a step of a conversion, reported through Request.OnStage.
type Stage string

const (
	StageRendering       Stage = "rendering"
	StageTranslating     Stage = "translating"
	StageResolvingImages Stage = "resolving_images"
	StagePacking         Stage = "packing"
)

// Request is a single conversion.
type Request struct {
	Markdown string
	Options  style.Options
	// OnStage, when set, is called as each stage starts.
	OnStage func(Stage)
}

// Output is a finished document and what the translator reported.
type Output struct {
	Document      []byte
	Hash          string
	Elements      int
	PendingImages []doctree.PendingImage
	Degradations  []translate.Degradation
}

// Converter is safe for concurrent use; each call owns its own tree,
// elements and pending list.
type Converter struct {
	renderer   *parser.Renderer
	translator *translate.Translator
	packer     *docxpack.Packer
	resolver   images.Resolver
	stats      *metrics.ConversionStats
	metrics    *metrics.Collectors
	log        *slog.Logger

	palette       style.Palette
	allowRawHTML  bool
	renderTimeout time.Duration
}

// Option configures a Converter.
type Option func(*Converter)

// WithResolver replaces the log-only image resolver.
func WithResolver(r images.Resolver) Option {
	return func(c *Converter) { c.resolver = r }
}

func WithStats(s *metrics.ConversionStats) Option {
	return func(c *Converter) { c.stats = s }
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Converter) { c.metrics = m }
}

// WithRawHTML lets inline HTML through the renderer, sanitised.
func WithRawHTML(allow bool) Option {
	return func(c *Converter) { c.allowRawHTML = allow }
}

// WithRenderTimeout bounds the Markdown rendering step.
func WithRenderTimeout(d time.Duration) Option {
	return func(c *Converter) { c.renderTimeout = d }
}

func WithPalette(p style.Palette) Option {
	return func(c *Converter) { c.palette = p }
}

func New(log *slog.Logger, opts ...Option) *Converter {
	if log == nil {
		log = slog.Default()
	}
	c := &Converter{
		log:     log,
		palette: style.DefaultPalette(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.renderer = parser.NewRenderer(parser.RenderOptions{AllowRawHTML: c.allowRawHTML})
	c.translator = translate.New(c.palette, log)
	c.packer = docxpack.New(c.palette)
	if c.resolver == nil {
		c.resolver = images.LogResolver{Log: log}
	}
	return c
}

// Convert renders, translates and packs req.Markdown.
func (c *Converter) Convert(ctx context.Context, req Request) (*Output, error) {
	if req.Markdown == "" {
		c.observeInvalid()
		return nil, ErrEmptyMarkdown
	}
	if err := req.Options.Validate(); err != nil {
		c.observeInvalid()
		return nil, err
	}

	start := time.Now()
	out, err := c.convert(ctx, req)
	elapsed := time.Since(start)

	degraded := 0
	if out != nil {
		degraded = len(out.Degradations)
	}
	if c.stats != nil {
		c.stats.Record(elapsed, err != nil, degraded)
	}
	if c.metrics != nil {
		c.observe(out, err, elapsed)
	}
	if err != nil {
		c.log.Error("conversion failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}
	c.log.Info("conversion complete",
		"elements", out.Elements,
		"pending_images", len(out.PendingImages),
		"degradations", degraded,
		"bytes", len(out.Document),
		"duration_ms", elapsed.Milliseconds(),
	)
	return out, nil
}

func (c *Converter) convert(ctx context.Context, req Request) (*Output, error) {
	stage := func(s Stage) {
		if req.OnStage != nil {
			req.OnStage(s)
		}
	}

	stage(StageRendering)
	renderCtx := ctx
	if c.renderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, c.renderTimeout)
		defer cancel()
	}
	rendered, err := c.renderer.Render(renderCtx, []byte(req.Markdown))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	body, err := parser.ParseHTML(bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	stage(StageTranslating)
	res := c.translator.Translate(body)

	stage(StageResolvingImages)
	if len(res.PendingImages) > 0 {
		images.Apply(ctx, res.Elements, res.PendingImages, c.resolver, c.log)
	}

	stage(StagePacking)
	var buf bytes.Buffer
	if err := c.packer.Pack(&buf, res.Elements, req.Options); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPack, err)
	}

	return &Output{
		Document:      buf.Bytes(),
		Hash:          ContentHashHex(buf.Bytes()),
		Elements:      len(res.Elements),
		PendingImages: res.PendingImages,
		Degradations:  res.Degradations,
	}, nil
}

func (c *Converter) observeInvalid() {
	if c.metrics != nil {
		c.metrics.Conversions.WithLabelValues(metrics.OutcomeInvalid).Inc()
	}
}

func (c *Converter) observe(out *Output, err error, elapsed time.Duration) {
	if err != nil {
		c.metrics.Conversions.WithLabelValues(metrics.OutcomeFailed).Inc()
		return
	}
	c.metrics.Conversions.WithLabelValues(metrics.OutcomeOK).Inc()
	c.metrics.Duration.Observe(elapsed.Seconds())
	c.metrics.OutputBytes.Observe(float64(len(out.Document)))
	c.metrics.PendingImages.Add(float64(len(out.PendingImages)))
	for _, d := range out.Degradations {
		c.metrics.Degradations.WithLabelValues(d.Kind.String()).Inc()
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

func isStyleError(err error) bool {
	return errors.Is(err, style.ErrEmptyFontFamily) ||
		errors.Is(err, style.ErrInvalidFontSize) ||
		errors.Is(err, style.ErrInvalidPageSize) ||
		errors.Is(err, style.ErrInvalidMarginSize)
}
