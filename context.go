package renderdoc

import (
	"time"

	tmpl "github.com/cordata-io/renderdoc/internal/template"
)

// buildContext assembles the `branding` / `variables` / `meta` context
// exposed to every template.
func buildContext(t DocumentTemplate, now time.Time) *tmpl.Map {
	root := tmpl.NewMap()
	root.Set("branding", tmpl.MapValue(brandingToMap(t.Branding)))
	root.Set("variables", variantMapToTemplateValue(t.Variables))
	root.Set("meta", tmpl.MapValue(metaMap(t, now)))
	return root
}

func brandingToMap(b Branding) *tmpl.Map {
	m := tmpl.NewMap()
	m.Set("companyName", tmpl.String(b.CompanyName))
	m.Set("logoUrl", tmpl.String(b.LogoURL))
	m.Set("primaryColour", tmpl.String(b.PrimaryColour))
	m.Set("secondaryColour", tmpl.String(b.SecondaryColour))
	m.Set("headingFont", tmpl.String(b.HeadingFont))
	m.Set("bodyFont", tmpl.String(b.BodyFont))
	custom := tmpl.NewMap()
	for k, v := range b.Custom {
		custom.Set(k, tmpl.String(v))
	}
	m.Set("custom", tmpl.MapValue(custom))
	return m
}

func metaMap(t DocumentTemplate, now time.Time) *tmpl.Map {
	m := tmpl.NewMap()
	m.Set("documentType", tmpl.String(t.DocumentType))
	m.Set("version", tmpl.String(t.Version))
	m.Set("generatedAt", tmpl.String(now.UTC().Format(time.RFC3339)))
	return m
}

// variantMapToTemplateValue converts the public, deep-converted
// VariantMap into the internal/template package's own Value tree — the
// templating engine stays independent of the root package's public
// types, per DESIGN.md.
func variantMapToTemplateValue(vm *VariantMap) tmpl.Value {
	if vm == nil {
		return tmpl.MapValue(tmpl.NewMap())
	}
	out := tmpl.NewMap()
	for _, k := range vm.Keys() {
		v, _ := vm.Get(k)
		out.Set(k, variantToTemplateValue(v))
	}
	return tmpl.MapValue(out)
}

func variantToTemplateValue(v Variant) tmpl.Value {
	switch v.kind {
	case variantNull:
		return tmpl.Null()
	case variantBool:
		return tmpl.Bool(v.b)
	case variantInt:
		return tmpl.Int(v.i)
	case variantFloat:
		return tmpl.Float(v.f)
	case variantString:
		return tmpl.String(v.s)
	case variantList:
		out := make([]tmpl.Value, len(v.list))
		for i, e := range v.list {
			out[i] = variantToTemplateValue(e)
		}
		return tmpl.List(out)
	case variantMap:
		return variantMapToTemplateValue(v.m)
	default:
		return tmpl.Null()
	}
}
