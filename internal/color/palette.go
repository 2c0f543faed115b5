package color

import (
	"github.com/icco/chromachord/internal/theory"
)

// HueRotation holds independent hue offsets for major and minor keys.
type HueRotation struct {
	Major float64
	Minor float64
}

// For returns the rotation that applies to key.
func (r HueRotation) For(key theory.Key) float64 {
	if key.Mode == theory.Minor {
		return r.Minor
	}
	return r.Major
}

// Palette is everything a renderer needs to draw one chord.
type Palette struct {
	Analysis    theory.HarmonicFunction
	KeyColor    ColorHSL
	ChordColor  ColorHSL
	MarbleRatio float64
	Particles   []ParticleConfig
}

// Derive computes the palette for chord in key.
func Derive(chord theory.Chord, key theory.Key, rotation HueRotation) Palette {
	kc := KeyColor(key, rotation.For(key))
	return Palette{
		Analysis:    theory.Analyze(chord, key),
		KeyColor:    kc,
		ChordColor:  ChordColor(chord, key, kc),
		MarbleRatio: MarbleRatio(chord, key),
		Particles:   Particles(chord),
	}
}

// DeriveAll computes a palette per chord.
func DeriveAll(chords []theory.Chord, key theory.Key, rotation HueRotation) []Palette {
	out := make([]Palette, len(chords))
	for i, c := range chords {
		out[i] = Derive(c, key, rotation)
	}
	return out
}

// Blend mixes the key and chord colours by the marble ratio.
func (p Palette) Blend() ColorHSL {
	return Lerp(p.ChordColor, p.KeyColor, p.MarbleRatio)
}
