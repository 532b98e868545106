package renderdoc

import (
	"context"
	"errors"
	"fmt"
	"time"

	tmpl "github.com/cordata-io/renderdoc/internal/template"
)

// templateEngine is the narrow render(template, cancelSignal) -> string
// contract Pipeline depends on. It is implemented by *engine; tests inject
// fakes behind this interface instead of a mocking framework.
type templateEngine interface {
	render(ctx context.Context, t DocumentTemplate) (string, error)
}

// engine is a stateless wrapper around a fresh, per-render
// internal/template.Engine, built fresh for every render so that one
// render's partial registrations can never leak into another's, even
// when renders run concurrently.
type engine struct{}

func newEngine() *engine { return &engine{} }

func (e *engine) render(ctx context.Context, t DocumentTemplate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(KindCancelled, err)
	}

	te := tmpl.NewEngine()
	for name, body := range t.Template.Partials {
		if err := te.RegisterPartial(name, body); err != nil {
			return "", NewRenderError(KindTemplateParse, err)
		}
	}

	renderCtx := buildContext(t, time.Now())

	html, err := te.Render(ctx, t.Template.HTML, renderCtx)
	if err != nil {
		return "", classifyTemplateErr(err)
	}

	if css := t.Template.CSS; css != "" {
		css = tmpl.RewriteTripleBrace(css)
		cssOut, err := te.Render(ctx, css, renderCtx)
		if err != nil {
			return "", classifyTemplateErr(err)
		}
		html = tmpl.InjectCSS(html, cssOut)
	}

	return html, nil
}

// classifyTemplateErr maps an internal/template error to the
// taxonomy: a compile-time ErrParse is TEMPLATE_PARSE, cancellation is
// CANCELLED, anything else encountered while evaluating is TEMPLATE_EVAL.
func classifyTemplateErr(err error) error {
	switch {
	case errors.Is(err, tmpl.ErrCancelled):
		return NewRenderError(KindCancelled, err)
	case errors.Is(err, tmpl.ErrParse):
		return NewRenderError(KindTemplateParse, err)
	default:
		return NewRenderError(KindTemplateEval, fmt.Errorf("%w", err))
	}
}
