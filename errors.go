package renderdoc

import (
	"errors"
	"fmt"
)

// Kind identifies the taxonomy row an error belongs to.
// Dispatchers inspect Kind to decide retry-vs-fatal-vs-logged-and-counted
// without needing to errors.Is against every sentinel individually.
type Kind string

const (
	KindTemplateParse Kind = "TEMPLATE_PARSE"
	KindTemplateEval  Kind = "TEMPLATE_EVAL"
	KindPoolTimeout   Kind = "POOL_TIMEOUT"
	KindPoolDisposed  Kind = "POOL_DISPOSED"
	KindRenderLoad    Kind = "RENDER_LOAD"
	KindRenderPDF     Kind = "RENDER_PDF"
	KindCancelled     Kind = "CANCELLED"
	KindIOTemplate    Kind = "IO_TEMPLATE"
	KindIOOutput      Kind = "IO_OUTPUT"
)

// Sentinel errors, one per taxonomy row, usable with errors.Is.
var (
	ErrTemplateParse  = errors.New("template parse failed")
	ErrTemplateEval   = errors.New("template evaluation failed")
	ErrPoolTimeout    = errors.New("timed out waiting for a browser lease")
	ErrPoolDisposed   = errors.New("browser pool is shut down")
	ErrRenderLoad     = errors.New("page failed to load")
	ErrRenderPDF      = errors.New("PDF generation failed")
	ErrCancelled      = errors.New("operation cancelled")
	ErrIOTemplate     = errors.New("template file read or parse failed")
	ErrIOOutput       = errors.New("output write failed")

	// Validation sentinels for the public data types.
	ErrInvalidScale = errors.New("invalid scale")
)

// RenderError wraps an underlying cause with the taxonomy Kind the
// dispatchers need to route on. It always unwraps to the original cause,
// so errors.Is/errors.As against sentinels or driver-specific errors keeps
// working through a RenderError wrapper.
type RenderError struct {
	Kind  Kind
	Cause error
}

// NewRenderError builds a RenderError of the given kind around cause. It
// does not add the kind's sentinel: errors.Is(err, sentinel) holds only
// when cause itself wraps that sentinel.
func NewRenderError(kind Kind, cause error) *RenderError {
	return &RenderError{Kind: kind, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s", string(e.Kind))
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// IsRetryable reports whether the dispatcher's retry/backoff policy
// applies to this kind.
func (k Kind) IsRetryable() bool {
	switch k {
	case KindTemplateParse, KindTemplateEval, KindPoolTimeout, KindRenderLoad, KindRenderPDF, KindIOOutput:
		return true
	default:
		return false
	}
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *RenderError, and "" otherwise.
func KindOf(err error) Kind {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
