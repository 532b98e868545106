package renderdoc

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultPdfOptions(t *testing.T) {
	opts := DefaultPdfOptions()

	if opts.Format != FormatA4 {
		t.Errorf("Format = %q, want %q", opts.Format, FormatA4)
	}
	if opts.PrintBackground == nil || !*opts.PrintBackground {
		t.Error("PrintBackground should default to true")
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
}

func TestPdfOptions_normalised(t *testing.T) {
	t.Run("fills in defaults", func(t *testing.T) {
		out := PdfOptions{}.normalised()
		if out.Format != FormatA4 {
			t.Errorf("Format = %q, want %q", out.Format, FormatA4)
		}
		if out.PrintBackground == nil || !*out.PrintBackground {
			t.Error("PrintBackground should default to true")
		}
		if out.Scale != DefaultScale {
			t.Errorf("Scale = %v, want %v", out.Scale, DefaultScale)
		}
	})

	t.Run("preserves explicit false printBackground", func(t *testing.T) {
		f := false
		out := PdfOptions{PrintBackground: &f}.normalised()
		if out.PrintBackground == nil || *out.PrintBackground {
			t.Error("explicit false PrintBackground should be preserved")
		}
	})

	t.Run("preserves explicit scale", func(t *testing.T) {
		out := PdfOptions{Scale: 1.5}.normalised()
		if out.Scale != 1.5 {
			t.Errorf("Scale = %v, want 1.5", out.Scale)
		}
	})
}

func TestPdfOptions_hasExplicitDimensions(t *testing.T) {
	tests := []struct {
		name string
		opts PdfOptions
		want bool
	}{
		{"neither set", PdfOptions{}, false},
		{"only width", PdfOptions{Width: "10cm"}, false},
		{"only height", PdfOptions{Height: "10cm"}, false},
		{"both set", PdfOptions{Width: "10cm", Height: "20cm"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.hasExplicitDimensions(); got != tt.want {
				t.Errorf("hasExplicitDimensions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPdfOptions_displayHeaderFooter(t *testing.T) {
	tests := []struct {
		name string
		opts PdfOptions
		want bool
	}{
		{"neither", PdfOptions{}, false},
		{"header only", PdfOptions{HeaderTemplate: "<span/>"}, true},
		{"footer only", PdfOptions{FooterTemplate: "<span/>"}, true},
		{"both", PdfOptions{HeaderTemplate: "<span/>", FooterTemplate: "<span/>"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.displayHeaderFooter(); got != tt.want {
				t.Errorf("displayHeaderFooter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNamedPaperFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A2", FormatA2},
		{"a3", FormatA3},
		{"letter", FormatLetter},
		{"LEGAL", FormatLegal},
		{"Tabloid", FormatTabloid},
		{"bogus", FormatA4},
		{"", FormatA4},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := namedPaperFormat(tt.in); got != tt.want {
				t.Errorf("namedPaperFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPdfOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scale   float64
		wantErr bool
	}{
		{"zero is valid (resolved later)", 0, false},
		{"min boundary", MinScale, false},
		{"max boundary", MaxScale, false},
		{"below min", 0.05, true},
		{"above max", 2.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PdfOptions{Scale: tt.scale}.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidScale) {
				t.Errorf("Validate() = %v, want ErrInvalidScale", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestNewRenderRequest(t *testing.T) {
	t.Run("generates a job id when empty", func(t *testing.T) {
		req := NewRenderRequest("", DocumentTemplate{}, time.Time{})
		if req.JobID == "" {
			t.Error("JobID should be generated when empty")
		}
	})

	t.Run("preserves a provided job id", func(t *testing.T) {
		req := NewRenderRequest("job-123", DocumentTemplate{}, time.Time{})
		if req.JobID != "job-123" {
			t.Errorf("JobID = %q, want %q", req.JobID, "job-123")
		}
	})

	t.Run("defaults created-at when zero", func(t *testing.T) {
		req := NewRenderRequest("job-123", DocumentTemplate{}, time.Time{})
		if req.CreatedAt.IsZero() {
			t.Error("CreatedAt should default to now when zero")
		}
	})

	t.Run("preserves a provided created-at", func(t *testing.T) {
		ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		req := NewRenderRequest("job-123", DocumentTemplate{}, ts)
		if !req.CreatedAt.Equal(ts) {
			t.Errorf("CreatedAt = %v, want %v", req.CreatedAt, ts)
		}
	})
}

func TestRenderEnvelope_InlineReply(t *testing.T) {
	t.Run("defaults to true when unset", func(t *testing.T) {
		e := RenderEnvelope{}
		if !e.InlineReply() {
			t.Error("InlineReply() should default to true")
		}
	})

	t.Run("honours explicit true", func(t *testing.T) {
		v := true
		e := RenderEnvelope{ReturnPDFInline: &v}
		if !e.InlineReply() {
			t.Error("InlineReply() should be true")
		}
	})

	t.Run("honours explicit false", func(t *testing.T) {
		v := false
		e := RenderEnvelope{ReturnPDFInline: &v}
		if e.InlineReply() {
			t.Error("InlineReply() should be false")
		}
	})
}
