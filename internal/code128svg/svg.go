package code128svg

import (
	"fmt"
	"strconv"
	"strings"
)

// ModuleWidth is the pixel width of one barcode module.
const ModuleWidth = 2

// TextHeight is the vertical space reserved below the bars for the
// human-readable caption when showText is true.
const TextHeight = 20

// ToSVG renders data as an inline Code 128 (subset B) SVG barcode.
// height is the bar height in pixels; when showText is true, data is
// repeated as a text caption below the bars. Bars are filled with
// darkColour; the background is left transparent (no quiet-zone rect is
// drawn, matching the qrCode helper's "no quiet zone" texture).
func ToSVG(data string, height int, showText bool, darkColour string) (string, error) {
	if darkColour == "" {
		darkColour = "#000000"
	}
	values, err := Encode(data)
	if err != nil {
		return "", err
	}
	widths := Widths(values)

	total := 0
	for _, w := range widths {
		total += w
	}
	px := total * ModuleWidth

	totalHeight := height
	if showText {
		totalHeight += TextHeight
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`, px, totalHeight, px, totalHeight)

	x := 0
	bar := true // Code 128 always starts with a bar.
	for _, w := range widths {
		wpx := w * ModuleWidth
		if bar {
			b.WriteString(`<rect x="`)
			b.WriteString(strconv.Itoa(x))
			b.WriteString(`" y="0" width="`)
			b.WriteString(strconv.Itoa(wpx))
			b.WriteString(`" height="`)
			b.WriteString(strconv.Itoa(height))
			b.WriteString(`" fill="`)
			b.WriteString(darkColour)
			b.WriteString(`"/>`)
		}
		x += wpx
		bar = !bar
	}

	if showText {
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="14" fill="%s">%s</text>`,
			px/2, height+TextHeight-4, darkColour, escapeXML(data))
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
