package template

import "strconv"

// cultureFormat describes how a culture code renders a decimal amount:
// the currency symbol, whether it's prefixed or suffixed, and the
// decimal/thousands separators.
type cultureFormat struct {
	symbol       string
	symbolBefore bool
	decimalSep   string
	thousandsSep string
}

// cultures is a small table of common culture codes. Lookup is
// case-insensitive, and an unrecognised culture falls back to
// DefaultCulture silently rather than failing the render.
var cultures = map[string]cultureFormat{
	"en-gb": {symbol: "£", symbolBefore: true, decimalSep: ".", thousandsSep: ","},
	"en-us": {symbol: "$", symbolBefore: true, decimalSep: ".", thousandsSep: ","},
	"de-de": {symbol: "€", symbolBefore: false, decimalSep: ",", thousandsSep: "."},
	"fr-fr": {symbol: "€", symbolBefore: false, decimalSep: ",", thousandsSep: " "},
	"ja-jp": {symbol: "¥", symbolBefore: true, decimalSep: ".", thousandsSep: ","},
}

// DefaultCulture is used when the `currency` helper's culture argument
// is absent or unrecognised.
const DefaultCulture = "en-GB"

// currency implements the `currency` helper: unparseable input emits an
// empty string rather than erroring.
func currency(value, culture string) string {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return ""
	}
	if culture == "" {
		culture = DefaultCulture
	}
	cf, ok := cultures[toLower(culture)]
	if !ok {
		cf = cultures[toLower(DefaultCulture)]
	}

	whole, frac := splitDecimal(f)
	amount := groupThousands(whole, cf.thousandsSep) + cf.decimalSep + frac

	if cf.symbolBefore {
		return cf.symbol + amount
	}
	return amount + cf.symbol
}

// splitDecimal formats f to two decimal places and splits it into its
// whole and fractional parts as strings.
func splitDecimal(f float64) (whole, frac string) {
	neg := f < 0
	s := strconv.FormatFloat(absFloat(f), 'f', 2, 64)
	dot := len(s) - 3
	whole, frac = s[:dot], s[dot+1:]
	if neg {
		whole = "-" + whole
	}
	return whole, frac
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// groupThousands inserts sep every three digits from the right, leaving
// a leading minus sign untouched.
func groupThousands(whole, sep string) string {
	neg := false
	if len(whole) > 0 && whole[0] == '-' {
		neg = true
		whole = whole[1:]
	}
	n := len(whole)
	if n <= 3 {
		if neg {
			return "-" + whole
		}
		return whole
	}
	var out []byte
	for i, c := range []byte(whole) {
		if i > 0 && (n-i)%3 == 0 {
			out = append(out, []byte(sep)...)
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
