package renderdoc

import (
	"testing"
	"time"

	tmpl "github.com/cordata-io/renderdoc/internal/template"
)

func TestBuildContext(t *testing.T) {
	vars := NewEmptyVariantMap()
	vars.Set("total", IntVariant(42))

	doc := DocumentTemplate{
		DocumentType: "invoice",
		Version:      "1.0",
		Branding: Branding{
			CompanyName: "Acme",
			Custom:      map[string]string{"theme": "dark"},
		},
		Variables: vars,
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	root := buildContext(doc, now)

	branding, ok := root.Get("branding")
	if !ok {
		t.Fatal("branding should be present")
	}
	companyName, _ := branding.Map.Get("companyName")
	if companyName.Str() != "Acme" {
		t.Errorf("companyName = %q, want %q", companyName.Str(), "Acme")
	}
	custom, _ := branding.Map.Get("custom")
	theme, _ := custom.Map.Get("theme")
	if theme.Str() != "dark" {
		t.Errorf("custom.theme = %q, want %q", theme.Str(), "dark")
	}

	variables, ok := root.Get("variables")
	if !ok {
		t.Fatal("variables should be present")
	}
	total, _ := variables.Map.Get("total")
	if total.Str() != "42" {
		t.Errorf("variables.total = %q, want %q", total.Str(), "42")
	}

	meta, ok := root.Get("meta")
	if !ok {
		t.Fatal("meta should be present")
	}
	docType, _ := meta.Map.Get("documentType")
	if docType.Str() != "invoice" {
		t.Errorf("meta.documentType = %q, want %q", docType.Str(), "invoice")
	}
	generatedAt, _ := meta.Map.Get("generatedAt")
	if generatedAt.Str() != "2026-03-01T12:00:00Z" {
		t.Errorf("meta.generatedAt = %q, want RFC3339 of now", generatedAt.Str())
	}
}

func TestBuildContext_NilVariables(t *testing.T) {
	root := buildContext(DocumentTemplate{}, time.Now())
	variables, ok := root.Get("variables")
	if !ok {
		t.Fatal("variables should be present even when nil")
	}
	if variables.Map == nil {
		t.Error("nil Variables should become an empty map, not a nil Map")
	}
}

func TestVariantToTemplateValue_List(t *testing.T) {
	list := ListVariant([]Variant{IntVariant(1), StringVariant("a")})
	out := variantToTemplateValue(list)
	if out.Kind != tmpl.KindList {
		t.Fatalf("Kind = %v, want KindList", out.Kind)
	}
	if len(out.List) != 2 {
		t.Fatalf("len(List) = %d, want 2", len(out.List))
	}
	if out.List[0].Str() != "1" {
		t.Errorf("List[0] = %q, want %q", out.List[0].Str(), "1")
	}
	if out.List[1].Str() != "a" {
		t.Errorf("List[1] = %q, want %q", out.List[1].Str(), "a")
	}
}

func TestVariantToTemplateValue_Map(t *testing.T) {
	inner := NewEmptyVariantMap()
	inner.Set("city", StringVariant("Paris"))
	out := variantToTemplateValue(MapVariantValue(inner))
	if out.Kind != tmpl.KindMap {
		t.Fatalf("Kind = %v, want KindMap", out.Kind)
	}
	city, _ := out.Map.Get("city")
	if city.Str() != "Paris" {
		t.Errorf("city = %q, want %q", city.Str(), "Paris")
	}
}
