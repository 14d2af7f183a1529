package convert

import "errors"

// Sentinel errors for conversions. Style validation errors come from the
// style package unchanged.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrRender        = errors.New("markdown rendering failed")
	ErrPack          = errors.New("docx packing failed")
)

// IsInvalidInput reports whether err was caused by the request rather than
// by a failure inside the conversion.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrEmptyMarkdown) || isStyleError(err)
}
