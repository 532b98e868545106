package template

import (
	"fmt"
	"strings"

	"github.com/cordata-io/renderdoc/internal/code128svg"
	"github.com/cordata-io/renderdoc/internal/qrsvg"
)

// HelperFunc is an inline (non-block) helper: it receives its already-
// evaluated arguments and returns text plus whether that text must be
// written unescaped (raw) — helpers that emit SVG must write unescaped
// output, or the markup gets HTML-entity-escaped into garbage.
type HelperFunc func(args []Value) (out string, raw bool, err error)

// BlockHelperFunc is a block helper like `ifEquals`: it receives its
// evaluated arguments and closures that render the block's main body and
// its {{else}} body on demand.
type BlockHelperFunc func(args []Value, renderBody, renderElse func() (string, error)) (string, error)

// helpers and blockHelpers are built once at package init and are
// immutable afterward, so they are safe to share read-only across
// concurrently rendering Engine values.
var helpers map[string]HelperFunc
var blockHelpers map[string]BlockHelperFunc

func init() {
	helpers = map[string]HelperFunc{
		"upper":     helperUpper,
		"lower":     helperLower,
		"formatDate": helperFormatDate,
		"currency":  helperCurrency,
		"qrCode":    helperQRCode,
		"barCode":   helperBarCode,
	}
	blockHelpers = map[string]BlockHelperFunc{
		"ifEquals": helperIfEquals,
	}
}

func arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Null()
}

func helperUpper(args []Value) (string, bool, error) {
	return strings.ToUpper(arg(args, 0).Str()), false, nil
}

func helperLower(args []Value) (string, bool, error) {
	return strings.ToLower(arg(args, 0).Str()), false, nil
}

func helperFormatDate(args []Value) (string, bool, error) {
	return formatDate(arg(args, 0).Str(), arg(args, 1).Str()), false, nil
}

func helperCurrency(args []Value) (string, bool, error) {
	return currency(arg(args, 0).Str(), arg(args, 1).Str()), false, nil
}

func helperIfEquals(args []Value, renderBody, renderElse func() (string, error)) (string, error) {
	a, b := arg(args, 0).Str(), arg(args, 1).Str()
	if a == b {
		return renderBody()
	}
	return renderElse()
}

// helperQRCode implements `qrCode v dark? light?`. Defaults: dark
// #000000, light transparent.
func helperQRCode(args []Value) (string, bool, error) {
	value := arg(args, 0).Str()
	dark := arg(args, 1).Str()
	light := arg(args, 2).Str()
	modules, size, err := qrsvg.Encode([]byte(value))
	if err != nil {
		return "", false, fmt.Errorf("qrCode: %w", err)
	}
	return qrsvg.ToSVG(modules, size, dark, light), true, nil
}

// helperBarCode implements `barCode v height? showText? dark?`.
// Defaults: height 60, showText false, dark #000000.
func helperBarCode(args []Value) (string, bool, error) {
	value := arg(args, 0).Str()
	height := 60
	if h, ok := arg(args, 1).AsFloat(); ok && h > 0 {
		height = int(h)
	}
	showText := arg(args, 2).B
	dark := arg(args, 3).Str()

	svg, err := code128svg.ToSVG(value, height, showText, dark)
	if err != nil {
		return "", false, fmt.Errorf("barCode: %w", err)
	}
	return svg, true, nil
}

// AsFloat returns v as a float64 when it is numeric or a parseable
// numeric string, mirroring the root package's Variant.AsFloat.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.F, true
	case KindInt:
		return float64(v.I), true
	case KindString:
		var f float64
		_, err := fmt.Sscanf(v.S, "%g", &f)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
