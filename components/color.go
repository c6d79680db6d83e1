package components

import (
	"image/color"
	"math"

	"github.com/PerformLine/go-stockutil/colorutil"
)

// HSV is a color with hue in degrees [0, 360) and saturation/value in [0, 1].
type HSV struct {
	H, S, V float64
}

// RGBA converts the color to an opaque RGBA value.
func (c HSV) RGBA() color.RGBA {
	r, g, b := colorutil.HsvToRgb(c.H, c.S, c.V)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Similarity returns 1 for identical colors and -1 for opposite hues at equal
// saturation and value. Saturation and value differences shrink the magnitude.
func (c HSV) Similarity(o HSV) float64 {
	diff := math.Abs(c.H - o.H)
	diff = math.Mod(diff, 360)
	if diff > 180 {
		diff = 360 - diff
	}
	hue := 1 - 2*diff/180
	return hue * (1 - math.Abs(c.S-o.S)) * (1 - math.Abs(c.V-o.V))
}
