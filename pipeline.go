package renderdoc

import (
	"context"
	"fmt"
	"time"
)

// Pipeline sequences the templating engine and PDF renderer into a
// single execute call. It owns neither the engine nor the renderer's
// dependencies; construct with NewPipeline.
type Pipeline struct {
	engine   templateEngine
	renderer pdfRenderer
}

// NewPipeline builds a Pipeline backed by a fresh-per-render templating
// engine and a BrowserPool-backed PDF renderer.
func NewPipeline(pool *BrowserPool) *Pipeline {
	return &Pipeline{
		engine:   newEngine(),
		renderer: newRodPdfRenderer(pool),
	}
}

// Execute runs engine.render -> renderer.renderPdf and measures the
// wall-clock elapsed time. On any failure the error propagates unchanged
// and no partial RenderResult is returned.
//
// Recovers from internal panics so a bug in a helper or the browser
// driver surfaces as an error rather than crashing the calling
// dispatcher's goroutine.
func (p *Pipeline) Execute(ctx context.Context, req RenderRequest) (result RenderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewRenderError(KindRenderPDF, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := req.Template.PDF.Validate(); err != nil {
		return RenderResult{}, err
	}

	start := time.Now()

	html, err := p.engine.render(ctx, req.Template)
	if err != nil {
		return RenderResult{}, err
	}

	pdfBytes, err := p.renderer.renderPdf(ctx, html, req.Template.PDF)
	if err != nil {
		return RenderResult{}, err
	}

	return RenderResult{
		JobID:        req.JobID,
		DocumentType: req.Template.DocumentType,
		PDFBytes:     pdfBytes,
		ElapsedTime:  time.Since(start),
	}, nil
}
