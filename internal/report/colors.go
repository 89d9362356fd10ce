package report

import (
	"fmt"
	"math"
)

// Colors returns n visually distinct hex colors, deterministic per n.
// Hues are spaced evenly around the wheel at fixed saturation and
// lightness; same inputs, same palette.
func Colors(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		hue := float64(i) * 360.0 / float64(n)
		r, g, b := hslToRGB(hue, 0.65, 0.55)
		out[i] = fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return out
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}
