// Package images resolves the image placeholders left by the translator.
package images

import (
	"context"
	"log/slog"

	"github.com/dgallion1/md2docx/internal/doctree"
)

// Resolver turns a pending image into the element that should replace its
// placeholder. A nil element with a nil error leaves the placeholder as is.
type Resolver interface {
	Resolve(ctx context.Context, img doctree.PendingImage) (doctree.Element, error)
}

// LogResolver records each pending image and resolves nothing.
type LogResolver struct {
	Log *slog.Logger
}

func (r LogResolver) Resolve(_ context.Context, img doctree.PendingImage) (doctree.Element, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("image not embedded", "src", img.Source, "alt", img.Alt, "index", img.Index)
	return nil, nil
}

// Apply resolves each pending image in order and substitutes the result
// into elements in place. It returns the number of placeholders replaced.
// An entry whose index no longer points at a matching placeholder is
// skipped.
func Apply(ctx context.Context, elements []doctree.Element, pending []doctree.PendingImage, r Resolver, log *slog.Logger) int {
	if log == nil {
		log = slog.Default()
	}
	replaced := 0
	for i, img := range pending {
		if ctx.Err() != nil {
			log.Warn("image resolution cancelled", "remaining", len(pending)-i)
			return replaced
		}
		if img.Index < 0 || img.Index >= len(elements) {
			log.Warn("pending image out of range", "index", img.Index, "elements", len(elements))
			continue
		}
		ph, ok := elements[img.Index].(*doctree.ImagePlaceholder)
		if !ok || ph.Source != img.Source {
			log.Warn("pending image does not match placeholder", "index", img.Index, "src", img.Source)
			continue
		}
		el, err := r.Resolve(ctx, img)
		if err != nil {
			log.Warn("image resolution failed", "src", img.Source, "error", err)
			continue
		}
		if el == nil {
			continue
		}
		elements[img.Index] = el
		replaced++
	}
	return replaced
}
