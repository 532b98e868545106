package qrsvg

import (
	"fmt"
	"strconv"
	"strings"
)

// ModuleSize is the fixed pixel size of a single QR module, per the
// qrCode helper contract.
const ModuleSize = 10

// ToSVG renders modules (size x size) as an inline SVG string with no
// quiet zone: the viewBox spans exactly size*ModuleSize pixels, dark
// modules are filled with darkColour, and the background rect is filled
// with lightColour — unless lightColour is "transparent", in which case
// the background rect's fill is "none" instead of a literal white rect.
func ToSVG(modules [][]bool, size int, darkColour, lightColour string) string {
	if darkColour == "" {
		darkColour = "#000000"
	}
	if lightColour == "" {
		lightColour = "transparent"
	}
	px := size * ModuleSize

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`, px, px, px, px)

	bgFill := lightColour
	if strings.EqualFold(lightColour, "transparent") {
		bgFill = "none"
	}
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, px, px, bgFill)

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if !modules[r][c] {
				continue
			}
			x := c * ModuleSize
			y := r * ModuleSize
			b.WriteString(`<rect x="`)
			b.WriteString(strconv.Itoa(x))
			b.WriteString(`" y="`)
			b.WriteString(strconv.Itoa(y))
			b.WriteString(`" width="`)
			b.WriteString(strconv.Itoa(ModuleSize))
			b.WriteString(`" height="`)
			b.WriteString(strconv.Itoa(ModuleSize))
			b.WriteString(`" fill="`)
			b.WriteString(darkColour)
			b.WriteString(`"/>`)
		}
	}
	b.WriteString(`</svg>`)
	return b.String()
}
