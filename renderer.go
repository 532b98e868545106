package renderdoc

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/cordata-io/renderdoc/internal/hints"
)

// pageLoadTimeout bounds how long renderPdf waits for the page to settle
// before it gives up.
const pageLoadTimeout = 30 * time.Second

// networkIdleQuiet is how long zero in-flight requests must persist
// before the page is considered settled.
const networkIdleQuiet = 200 * time.Millisecond

// formatSizes holds each recognised paper format's dimensions in inches
// (portrait orientation; landscape swaps width/height).
var formatSizes = map[string][2]float64{
	FormatA2:      {16.54, 23.39},
	FormatA3:      {11.69, 16.54},
	FormatA4:      {8.27, 11.69},
	FormatLetter:  {8.5, 11},
	FormatLegal:   {8.5, 14},
	FormatTabloid: {11, 17},
}

// pdfRenderer is the contract renderPdf needs: html in, PDF bytes out.
// *rodPdfRenderer is the production implementation; tests inject fakes
// behind this interface instead of a mocking framework, following
// html2pdf.go's style.
type pdfRenderer interface {
	renderPdf(ctx context.Context, html string, opts PdfOptions) ([]byte, error)
}

// rodPdfRenderer renders pages through a leased browser from a
// BrowserPool. It carries no browser state of its own; every render
// acquires, uses, and releases or invalidates a lease.
type rodPdfRenderer struct {
	pool *BrowserPool
}

func newRodPdfRenderer(pool *BrowserPool) *rodPdfRenderer {
	return &rodPdfRenderer{pool: pool}
}

// renderPdf loads html into a leased browser tab and prints it to PDF.
func (r *rodPdfRenderer) renderPdf(ctx context.Context, html string, opts PdfOptions) ([]byte, error) {
	lease, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	pdf, err := r.renderWithLease(ctx, lease, html, opts)
	if err != nil {
		lease.Invalidate()
		return nil, err
	}
	lease.Release()
	return pdf, nil
}

func (r *rodPdfRenderer) renderWithLease(ctx context.Context, lease *Lease, html string, opts PdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(KindCancelled, err)
	}

	deadline := time.Now().Add(pageLoadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	pageCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	page, err := lease.Browser().Context(pageCtx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, NewRenderError(KindRenderLoad, fmt.Errorf("%w: opening page: %v", ErrRenderLoad, err))
	}
	defer page.Close()

	waitIdle := page.WaitRequestIdle(networkIdleQuiet, nil, nil, nil)

	frameTree, err := proto.PageGetFrameTree{}.Call(page)
	if err != nil {
		return nil, NewRenderError(KindRenderLoad, fmt.Errorf("%w: %v", ErrRenderLoad, err))
	}
	if err := (proto.PageSetDocumentContent{FrameID: frameTree.FrameTree.Frame.ID, HTML: html}).Call(page); err != nil {
		return nil, NewRenderError(KindRenderLoad, fmt.Errorf("%w: %v", ErrRenderLoad, err))
	}

	waitIdle()

	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(KindCancelled, err)
	}

	pdfOpts, err := buildPDFOptions(opts)
	if err != nil {
		return nil, NewRenderError(KindRenderPDF, fmt.Errorf("%w: %v", ErrRenderPDF, err))
	}

	reader, err := page.PDF(pdfOpts)
	if err != nil {
		return nil, NewRenderError(KindRenderPDF, fmt.Errorf("%w: %v%s", ErrRenderPDF, err, hints.ForRenderPDF(err)))
	}
	pdfBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewRenderError(KindRenderPDF, fmt.Errorf("%w: reading PDF stream: %v", ErrRenderPDF, err))
	}
	return pdfBytes, nil
}

// buildPDFOptions translates PdfOptions into a proto.PagePrintToPDF call,
// applying the same defaulting rules as PdfOptions.normalised.
func buildPDFOptions(opts PdfOptions) (*proto.PagePrintToPDF, error) {
	opts = opts.normalised()

	pdfOpts := &proto.PagePrintToPDF{
		Landscape:       opts.Landscape,
		PrintBackground: *opts.PrintBackground,
		Scale:           floatPtr(opts.Scale),
	}

	width, height, err := paperDimensions(opts)
	if err != nil {
		return nil, err
	}
	if opts.Landscape && !opts.hasExplicitDimensions() {
		width, height = height, width
	}
	pdfOpts.PaperWidth = floatPtr(width)
	pdfOpts.PaperHeight = floatPtr(height)

	if opts.Margins != nil {
		if v, ok, err := parseLengthInches(opts.Margins.Top); err != nil {
			return nil, err
		} else if ok {
			pdfOpts.MarginTop = floatPtr(v)
		}
		if v, ok, err := parseLengthInches(opts.Margins.Bottom); err != nil {
			return nil, err
		} else if ok {
			pdfOpts.MarginBottom = floatPtr(v)
		}
		if v, ok, err := parseLengthInches(opts.Margins.Left); err != nil {
			return nil, err
		} else if ok {
			pdfOpts.MarginLeft = floatPtr(v)
		}
		if v, ok, err := parseLengthInches(opts.Margins.Right); err != nil {
			return nil, err
		} else if ok {
			pdfOpts.MarginRight = floatPtr(v)
		}
	}

	if opts.displayHeaderFooter() {
		pdfOpts.DisplayHeaderFooter = true
		pdfOpts.HeaderTemplate = emptySpanIfBlank(opts.HeaderTemplate)
		pdfOpts.FooterTemplate = emptySpanIfBlank(opts.FooterTemplate)
	}

	return pdfOpts, nil
}

func emptySpanIfBlank(s string) string {
	if s == "" {
		return "<span></span>"
	}
	return s
}

// paperDimensions resolves width/height in inches: explicit width+height
// override format entirely.
func paperDimensions(opts PdfOptions) (width, height float64, err error) {
	if opts.hasExplicitDimensions() {
		w, _, err := parseLengthInches(opts.Width)
		if err != nil {
			return 0, 0, err
		}
		h, _, err := parseLengthInches(opts.Height)
		if err != nil {
			return 0, 0, err
		}
		return w, h, nil
	}
	dims, ok := formatSizes[namedPaperFormat(opts.Format)]
	if !ok {
		dims = formatSizes[FormatA4]
	}
	return dims[0], dims[1], nil
}

// parseLengthInches parses a CSS-unit length string ("8.5in", "210mm",
// "21cm", "96px", or a bare number assumed to already be inches) into
// inches. An empty string reports ok=false so callers can fall through
// to the browser's own default for that field.
func parseLengthInches(s string) (inches float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}

	unit := "in"
	numPart := s
	for _, suffix := range []string{"in", "mm", "cm", "px"} {
		if strings.HasSuffix(s, suffix) {
			unit = suffix
			numPart = strings.TrimSuffix(s, suffix)
			break
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(numPart), 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid length %q: %w", s, err)
	}

	switch unit {
	case "mm":
		return v / 25.4, true, nil
	case "cm":
		return v / 2.54, true, nil
	case "px":
		return v / 96, true, nil
	default:
		return v, true, nil
	}
}

func floatPtr(v float64) *float64 { return &v }
