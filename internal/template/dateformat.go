package template

import (
	"strings"
	"time"
)

// dateTokens maps .NET-compatible custom date tokens to Go's
// reference-time format components. Ordered by token length descending
// so longer tokens (MMMM) match before their prefixes (MMM, MM, M).
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"yyyy", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"d", "2"},
}

// defaultDateFormat is used when formatDate's second argument is absent:
// `fmt?` defaults to `"d"` (short-date, i.e. day of month with no
// leading zero).
const defaultDateFormat = "d"

// parseDateFormat converts the .NET-style token string into a Go
// reference-time layout. Unrecognised characters, including brackets,
// are preserved literally — there is no bracket-escape syntax here.
func parseDateFormat(format string) string {
	var out strings.Builder
	i := 0
	for i < len(format) {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				out.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(format[i])
			i++
		}
	}
	return out.String()
}

// inputLayouts are tried in order when parsing the helper's date value:
// RFC 3339 first (the preferred wire format), then a handful of common
// fallbacks.
var inputLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// parseInputDate tries each of inputLayouts in turn, returning the first
// successful parse.
func parseInputDate(value string) (time.Time, bool) {
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDate implements the `formatDate` helper: unparseable input emits
// empty string rather than failing the render
func formatDate(value, format string) string {
	t, ok := parseInputDate(value)
	if !ok {
		return ""
	}
	if format == "" {
		format = defaultDateFormat
	}
	return t.Format(parseDateFormat(format))
}
