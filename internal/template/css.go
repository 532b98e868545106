package template

import "strings"

// RewriteTripleBrace rewrites every occurrence of the three-byte
// sequence "}}}" to "}} }" (brace, brace, space, brace), so a closing
// mustache immediately after a CSS rule's closing brace isn't swallowed
// as the start of a (nonexistent) triple-stash. It must be applied to
// CSS only, before compiling it — never to HTML, and never generalised
// into a template pre-processor.
func RewriteTripleBrace(css string) string {
	return strings.ReplaceAll(css, "}}}", "}} }")
}

// InjectCSS wraps rendered css in a <style> block and inserts it into
// html: before the case-insensitive first occurrence of "</head>" if
// present, otherwise prepended.
func InjectCSS(html, css string) string {
	style := "<style>" + css + "</style>"
	lower := strings.ToLower(html)
	idx := strings.Index(lower, "</head>")
	if idx == -1 {
		return style + html
	}
	return html[:idx] + style + html[idx:]
}
