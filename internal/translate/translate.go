// Package translate maps a parsed HTML body onto the flat document model.
package translate

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/style"
	"golang.org/x/net/html"
)

// Result is the output of one translation. It is owned by the caller;
// nothing in it is shared with other translations.
type Result struct {
	Elements      []doctree.Element
	PendingImages []doctree.PendingImage
	Degradations  []Degradation
}

// Degradation records a block that could not be translated normally and
// was replaced by its fallback rendering.
type Degradation struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
}

type handler struct {
	emit     func(out *emitter, n *html.Node) error
	fallback func(out *emitter, n *html.Node)
}

// Translator is safe for concurrent use: after New it is read-only.
type Translator struct {
	palette  style.Palette
	log      *slog.Logger
	handlers map[Kind]handler
}

func New(palette style.Palette, log *slog.Logger) *Translator {
	if log == nil {
		log = slog.Default()
	}
	t := &Translator{palette: palette, log: log}
	t.handlers = map[Kind]handler{
		KindText:          {emit: t.text},
		KindHeading1:      {emit: t.heading(1)},
		KindHeading2:      {emit: t.heading(2)},
		KindHeading3:      {emit: t.heading(3)},
		KindParagraph:     {emit: t.paragraph},
		KindUnorderedList: {emit: t.list(bulletPrefix)},
		KindOrderedList:   {emit: t.list(numberPrefix)},
		KindBlockquote:    {emit: t.blockquote},
		KindCodeBlock:     {emit: t.codeBlock},
		KindRule:          {emit: t.rule},
		KindTable:         {emit: t.table, fallback: t.tableFallback},
		KindImage:         {emit: t.image, fallback: t.imageFallback},
		KindOther:         {emit: t.other},
	}
	return t
}

// Translate walks the direct children of body in order. It never fails:
// blocks that cannot be translated degrade to simpler paragraphs.
func (t *Translator) Translate(body *html.Node) Result {
	var (
		out emitter
		res Result
	)
	if body == nil {
		return res
	}
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		target, kind := n, KindOf(n)
		if kind == KindParagraph {
			if img := soleImage(n); img != nil {
				target, kind = img, KindImage
			}
		}
		if d := t.dispatch(&out, kind, target); d != nil {
			res.Degradations = append(res.Degradations, *d)
		}
	}
	res.Elements = out.elements
	res.PendingImages = out.pending
	return res
}

func (t *Translator) dispatch(out *emitter, kind Kind, n *html.Node) *Degradation {
	h, ok := t.handlers[kind]
	if !ok {
		h = t.handlers[KindOther]
	}

	mark := len(out.elements)
	err := guard(func() error { return h.emit(out, n) })
	if err == nil {
		return nil
	}

	out.rollback(mark)
	t.log.Warn("block degraded", "kind", kind.String(), "error", err)
	if h.fallback != nil {
		h.fallback(out, n)
	} else {
		t.plainFallback(out, n)
	}
	return &Degradation{Kind: kind, Reason: err.Error()}
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// emitter accumulates the output of a single Translate call.
type emitter struct {
	elements []doctree.Element
	pending  []doctree.PendingImage
}

func (e *emitter) add(el doctree.Element) int {
	e.elements = append(e.elements, el)
	return len(e.elements) - 1
}

// rollback discards elements from mark on, and any pending image that
// pointed at them.
func (e *emitter) rollback(mark int) {
	e.elements = e.elements[:mark]
	keep := e.pending[:0]
	for _, p := range e.pending {
		if p.Index < mark {
			keep = append(keep, p)
		}
	}
	e.pending = keep
}
