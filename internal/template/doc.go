// Package template implements the Handlebars-style compile-and-evaluate
// engine behind the render orchestration core's templating component:
// variable interpolation, block helpers, partials, the built-in helper
// table, and the CSS triple-brace quirk.
//
// The package is deliberately independent of the root renderdoc package's
// public types: it operates over its own Value tree (see value.go) so the
// root package can own the public Variant/VariantMap representation while
// this package stays a reusable, narrowly-scoped templating library.
package template
