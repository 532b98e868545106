package qrsvg

import (
	"strings"
	"testing"
)

func TestToSVG(t *testing.T) {
	modules := [][]bool{
		{true, false},
		{false, true},
	}

	t.Run("defaults dark to black and light to transparent", func(t *testing.T) {
		svg := ToSVG(modules, 2, "", "")
		if !strings.Contains(svg, `fill="#000000"`) {
			t.Errorf("svg should default dark colour to #000000, got: %s", svg)
		}
		if !strings.Contains(svg, `fill="none"`) {
			t.Errorf("svg should render transparent background as fill=none, got: %s", svg)
		}
	})

	t.Run("honours custom colours", func(t *testing.T) {
		svg := ToSVG(modules, 2, "#FF0000", "#FFFFFF")
		if !strings.Contains(svg, `fill="#FF0000"`) {
			t.Errorf("svg should use custom dark colour, got: %s", svg)
		}
		if !strings.Contains(svg, `fill="#FFFFFF"`) {
			t.Errorf("svg should use custom light colour, got: %s", svg)
		}
	})

	t.Run("viewBox spans module size times grid size", func(t *testing.T) {
		svg := ToSVG(modules, 2, "", "")
		want := `viewBox="0 0 20 20"`
		if !strings.Contains(svg, want) {
			t.Errorf("svg should contain %q, got: %s", want, svg)
		}
	})

	t.Run("draws one rect per dark module plus the background", func(t *testing.T) {
		svg := ToSVG(modules, 2, "", "")
		if strings.Count(svg, "<rect") != 3 {
			t.Errorf("expected 3 rects (1 background + 2 dark modules), got: %s", svg)
		}
	})
}
