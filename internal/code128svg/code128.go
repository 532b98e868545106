// Package code128svg implements a small Code 128 (subset B) barcode
// encoder and renders it as an inline SVG string, matching the
// `barCode` helper's contract. No suitable barcode library was
// available to wire in instead (see DESIGN.md), so this is
// hand-written.
package code128svg

import (
	"errors"
	"fmt"
)

// ErrUnsupportedChar is returned when data contains a byte outside
// Code 128 subset B's printable ASCII range (32-126).
var ErrUnsupportedChar = errors.New("code128svg: character outside subset B range")

const (
	startB = 104
	stopB  = 106
)

// patterns holds, for symbol values 0-105, the bar/space widths (in
// modules) as a 6-digit string (7 digits for the stop pattern), per
// the ISO/IEC 15417 Code 128 symbol table.
var patterns = [...]string{
	"212222", "222122", "222221", "121223", "121322", "131222", "122213",
	"122312", "132212", "221213", "221312", "231212", "112232", "122132",
	"122231", "113222", "123122", "123221", "223211", "221132", "221231",
	"213212", "223112", "312131", "311222", "321122", "321221", "312212",
	"322112", "322211", "212123", "212321", "232121", "111323", "131123",
	"131321", "112313", "132113", "132311", "211313", "231113", "231311",
	"112133", "112331", "132131", "113123", "113321", "133121", "313121",
	"211331", "231131", "213113", "213311", "213131", "311123", "311321",
	"331121", "312113", "312311", "332111", "314111", "221411", "431111",
	"111224", "111422", "121124", "121421", "141122", "141221", "112214",
	"112412", "122114", "122411", "142112", "142211", "241211", "221114",
	"413111", "241112", "134111", "111242", "121142", "121241", "114212",
	"124112", "124211", "411212", "421112", "421211", "212141", "214121",
	"412121", "111143", "111341", "131141", "114113", "114311", "411113",
	"411311", "113141", "114131", "311141", "411131", "211412", "211214",
	"211232", "2331112",
}

// Encode maps data to a sequence of Code 128 subset B symbol values:
// start code, one value per byte, the mod-103 checksum, and the stop
// code, ready for pattern lookup.
func Encode(data string) ([]int, error) {
	values := make([]int, 0, len(data)+3)
	values = append(values, startB)
	sum := startB
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c < 32 || c > 126 {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedChar, string(c))
		}
		v := int(c) - 32
		values = append(values, v)
		sum += v * (i + 1)
	}
	checksum := sum % 103
	values = append(values, checksum, stopB)
	return values, nil
}

// Widths expands a value sequence (from Encode) into the bar/space
// module-width sequence, alternating bar,space,bar,space,... starting
// with a bar, as required to draw the symbol.
func Widths(values []int) []int {
	widths := make([]int, 0, len(values)*6)
	for _, v := range values {
		for _, ch := range patterns[v] {
			widths = append(widths, int(ch-'0'))
		}
	}
	return widths
}
