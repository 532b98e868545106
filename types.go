package renderdoc

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recognised PDF paper formats. Comparison against PdfOptions.Format is
// case-insensitive; anything else falls back to FormatA4.
const (
	FormatA2      = "A2"
	FormatA3      = "A3"
	FormatA4      = "A4"
	FormatLetter  = "Letter"
	FormatLegal   = "Legal"
	FormatTabloid = "Tabloid"
)

// Scale bounds for PdfOptions.Scale.
const (
	MinScale     = 0.1
	MaxScale     = 2.0
	DefaultScale = 1.0
)

// DefaultCulture is used by the currency helper when no culture is given
// or the given culture is not recognised.
const DefaultCulture = "en-GB"

// Branding carries the tenant-specific identity injected into every
// template's context as `branding`.
type Branding struct {
	CompanyName     string            `json:"companyName"`
	LogoURL         string            `json:"logoUrl,omitempty"`
	PrimaryColour   string            `json:"primaryColour,omitempty"`
	SecondaryColour string            `json:"secondaryColour,omitempty"`
	HeadingFont     string            `json:"headingFont,omitempty"`
	BodyFont        string            `json:"bodyFont,omitempty"`
	Custom          map[string]string `json:"custom,omitempty"`
}

// TemplateContent is the Handlebars-style HTML/CSS pair plus any partials
// registered for a single render.
//
// HTMLPath/CSSPath are carried through unchanged for collaborators that
// resolve file references before handing a TemplateContent to this
// package; once resolved, HTML is a non-null string and the *Path fields
// are no longer consulted by the engine.
type TemplateContent struct {
	HTML     string            `json:"html"`
	CSS      string            `json:"css,omitempty"`
	HTMLPath string            `json:"htmlPath,omitempty"`
	CSSPath  string            `json:"cssPath,omitempty"`
	Partials map[string]string `json:"partials,omitempty"`
}

// Margins holds optional per-side CSS-unit margin strings. An empty field
// falls through to the browser's default margin for that side.
type Margins struct {
	Top    string `json:"top,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
	Right  string `json:"right,omitempty"`
}

// PdfOptions configures the printed PDF. See DefaultPdfOptions for the
// zero-value-equivalent defaults applied when a field is left unset.
type PdfOptions struct {
	Format          string   `json:"format,omitempty"`
	Width           string   `json:"width,omitempty"`
	Height          string   `json:"height,omitempty"`
	Landscape       bool     `json:"landscape,omitempty"`
	PrintBackground *bool    `json:"printBackground,omitempty"`
	Scale           float64  `json:"scale,omitempty"`
	Margins         *Margins `json:"margins,omitempty"`
	HeaderTemplate  string   `json:"headerTemplate,omitempty"`
	FooterTemplate  string   `json:"footerTemplate,omitempty"`
}

// DefaultPdfOptions returns a PdfOptions with every default applied:
// format A4, printBackground true, scale 1.0.
func DefaultPdfOptions() PdfOptions {
	printBackground := true
	return PdfOptions{
		Format:          FormatA4,
		PrintBackground: &printBackground,
		Scale:           DefaultScale,
	}
}

// normalised returns a copy of o with every optional field resolved to a
// concrete default: Format defaulted and validated, PrintBackground
// defaulted to true, Scale defaulted and clamped into range.
func (o PdfOptions) normalised() PdfOptions {
	out := o
	if out.Format == "" {
		out.Format = FormatA4
	}
	if out.PrintBackground == nil {
		v := true
		out.PrintBackground = &v
	}
	if out.Scale == 0 {
		out.Scale = DefaultScale
	}
	return out
}

// hasExplicitDimensions reports whether both Width and Height are set,
// in which case they override Format entirely.
func (o PdfOptions) hasExplicitDimensions() bool {
	return o.Width != "" && o.Height != ""
}

// displayHeaderFooter reports whether either header or footer template is
// present, which enables header/footer display.
func (o PdfOptions) displayHeaderFooter() bool {
	return o.HeaderTemplate != "" || o.FooterTemplate != ""
}

// namedPaperFormat maps a case-insensitive format string to one of the
// recognised formats, defaulting to A4 for anything unrecognised.
func namedPaperFormat(format string) string {
	switch strings.ToUpper(format) {
	case "A2":
		return FormatA2
	case "A3":
		return FormatA3
	case "LETTER":
		return FormatLetter
	case "LEGAL":
		return FormatLegal
	case "TABLOID":
		return FormatTabloid
	default:
		return FormatA4
	}
}

// Validate checks PdfOptions for the constraints this package requires.
// Scale is permitted to be zero (resolved to DefaultScale by normalised);
// any other out-of-range value is rejected.
func (o PdfOptions) Validate() error {
	if o.Scale != 0 && (o.Scale < MinScale || o.Scale > MaxScale) {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidScale, o.Scale, MinScale, MaxScale)
	}
	return nil
}

// DocumentTemplate is the immutable value describing a single render job:
// what to render (Template), how to brand it (Branding), what data to
// substitute (Variables), and how to paginate it (PDF).
type DocumentTemplate struct {
	DocumentType string      `json:"documentType"`
	Version      string      `json:"version,omitempty"`
	Branding     Branding    `json:"branding"`
	Template     TemplateContent `json:"template"`
	Variables    *VariantMap `json:"variables,omitempty"`
	PDF          PdfOptions  `json:"pdf"`
}

// RenderRequest pairs a DocumentTemplate with the identifying and
// timing metadata the pipeline and dispatchers need.
type RenderRequest struct {
	JobID     string
	Template  DocumentTemplate
	CreatedAt time.Time
}

// NewRenderRequest builds a RenderRequest, generating JobID via
// uuid.NewString when jobID is empty.
func NewRenderRequest(jobID string, tmpl DocumentTemplate, createdAt time.Time) RenderRequest {
	if jobID == "" {
		jobID = uuid.NewString()
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return RenderRequest{JobID: jobID, Template: tmpl, CreatedAt: createdAt}
}

// RenderResult is the write-once outcome of a successful pipeline
// execution. Callers must treat its fields as read-only; the type
// itself does not enforce immutability, the same documented-not-enforced
// convention as ConvertResult.
type RenderResult struct {
	JobID        string
	DocumentType string
	PDFBytes     []byte
	ElapsedTime  time.Duration
}

// RenderEnvelope is the correlated request envelope consumed by the
// queue-mode dispatcher.
type RenderEnvelope struct {
	CorrelationID   string            `json:"correlationId"`
	DeviceID        string            `json:"deviceId"`
	SessionID       string            `json:"sessionId,omitempty"`
	Template        DocumentTemplate  `json:"template"`
	ReturnPDFInline *bool             `json:"returnPdfInline,omitempty"`
	RequestedAt     time.Time         `json:"requestedAt"`
}

// InlineReply reports whether the envelope requests an inline base64 PDF
// reply, defaulting to true.
func (e RenderEnvelope) InlineReply() bool {
	return e.ReturnPDFInline == nil || *e.ReturnPDFInline
}

// ReplyEnvelope is the response published back for a RenderEnvelope.
// Exactly one of PDFBase64/PDFPath is populated on success; neither is
// populated on failure, in which case ErrorMessage carries the cause.
type ReplyEnvelope struct {
	CorrelationID string     `json:"correlationId"`
	DeviceID      string     `json:"deviceId"`
	SessionID     string     `json:"sessionId,omitempty"`
	DocumentType  string     `json:"documentType"`
	Success       bool       `json:"success"`
	PDFBase64     string     `json:"pdfBase64,omitempty"`
	PDFPath       string     `json:"pdfPath,omitempty"`
	ElapsedTime   time.Duration `json:"elapsedTime"`
	CompletedAt   time.Time  `json:"completedAt"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
}
