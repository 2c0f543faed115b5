// Package color derives key and chord colours, blend ratios and particle
// descriptors from harmonic analysis, and animates between them.
package color

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/exp/constraints"
)

// ColorHSL is a colour with hue in [0,360) and saturation/lightness in [0,100].
type ColorHSL struct {
	H float64
	S float64
	L float64
}

func (c ColorHSL) String() string {
	return fmt.Sprintf("hsl(%.1f, %.1f%%, %.1f%%)", c.H, c.S, c.L)
}

// Hex converts to an sRGB hex string such as "#7d56f4".
func (c ColorHSL) Hex() string {
	return colorful.Hsl(c.H, c.S/100, c.L/100).Clamped().Hex()
}

// Lerp interpolates a towards b. Hue takes the shortest way around the wheel;
// t is clamped to [0,1] and the endpoints are returned exactly.
func Lerp(a, b ColorHSL, t float64) ColorHSL {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ah, bh := a.H, b.H
	if d := bh - ah; d > 180 {
		ah += 360
	} else if d < -180 {
		bh += 360
	}
	return ColorHSL{
		H: wrapHue(ah*(1-t) + bh*t),
		S: a.S*(1-t) + b.S*t,
		L: a.L*(1-t) + b.L*t,
	}
}

// wrapHue reduces h into [0,360).
func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h -= 360
	}
	return h
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
