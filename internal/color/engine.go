package color

import (
	"github.com/icco/chromachord/internal/theory"
)

const (
	keySaturation  = 75
	majorLightness = 62
	minorLightness = 42

	minChordLightness = 20
	maxChordLightness = 80

	// hueStep spreads the 12 tonics evenly around the wheel.
	hueStep = 30
)

// adjustment is an additive nudge to each HSL channel.
type adjustment struct {
	hue        float64
	saturation float64
	lightness  float64
}

var functionHue = map[theory.Function]float64{
	theory.Tonic:       0,
	theory.Subdominant: 15,
	theory.Dominant:    30,
}

type degreeKey struct {
	function theory.Function
	degree   int
}

// degreeAdjustments separates chords that share a function. The primary
// degree of each function is neutral.
var degreeAdjustments = map[degreeKey]adjustment{
	{theory.Tonic, 1}:       {},
	{theory.Tonic, 3}:       {hue: -6, saturation: -12, lightness: -12},
	{theory.Tonic, 6}:       {hue: 6, saturation: 12, lightness: 12},
	{theory.Subdominant, 4}: {},
	{theory.Subdominant, 2}: {hue: -5, saturation: -12, lightness: -12},
	{theory.Subdominant, 6}: {hue: 5, saturation: 12, lightness: 12},
	{theory.Subdominant, 7}: {hue: 8, saturation: 15, lightness: 8},
	{theory.Dominant, 5}:    {},
	{theory.Dominant, 7}:    {hue: 8, saturation: -15, lightness: -15},
}

type qualityKey struct {
	quality  theory.Quality
	function theory.Function
}

// qualityLightness brightens major chords (most strongly on the tonic) and
// darkens the rest, most strongly on the dominant.
var qualityLightness = map[qualityKey]float64{
	{theory.QualityMajor, theory.Tonic}:            8,
	{theory.QualityMajor, theory.Subdominant}:      5,
	{theory.QualityMajor, theory.Dominant}:         3,
	{theory.QualityMinor, theory.Tonic}:            -6,
	{theory.QualityMinor, theory.Subdominant}:      -8,
	{theory.QualityMinor, theory.Dominant}:         -10,
	{theory.QualityDiminished, theory.Tonic}:       -12,
	{theory.QualityDiminished, theory.Subdominant}: -14,
	{theory.QualityDiminished, theory.Dominant}:    -15,
	{theory.QualityAugmented, theory.Tonic}:        -4,
	{theory.QualityAugmented, theory.Subdominant}:  -6,
	{theory.QualityAugmented, theory.Dominant}:     -8,
}

// seventhAdjustments only touch saturation and lightness. MinMaj7 and
// AugMaj7 have no entry.
var seventhAdjustments = map[theory.Seventh]adjustment{
	theory.Maj7:     {saturation: 10, lightness: 8},
	theory.Dom7:     {saturation: 12, lightness: -4},
	theory.Min7:     {saturation: 6, lightness: -8},
	theory.HalfDim7: {saturation: -10, lightness: -12},
	theory.Dim7:     {saturation: -20, lightness: -18},
	theory.Aug7:     {saturation: 10, lightness: -4},
}

var marbleRatios = map[theory.Function]float64{
	theory.Tonic:       0.7,
	theory.Subdominant: 0.65,
	theory.Dominant:    0.5,
}

// KeyColor returns the base colour of a key. hueRotation is in degrees.
func KeyColor(key theory.Key, hueRotation float64) ColorHSL {
	l := float64(majorLightness)
	if key.Mode == theory.Minor {
		l = minorLightness
	}
	return ColorHSL{
		H: wrapHue(float64(key.Tonic.Index()*hueStep) + hueRotation),
		S: keySaturation,
		L: l,
	}
}

// ChordColor derives a chord's colour from the key colour. All adjustments
// are summed before lightness and saturation are clamped.
func ChordColor(chord theory.Chord, key theory.Key, keyColor ColorHSL) ColorHSL {
	hf := theory.Analyze(chord, key)

	h := keyColor.H + functionHue[hf.Function]
	s := keyColor.S
	l := keyColor.L

	deg := degreeAdjustments[degreeKey{hf.Function, hf.Degree}]
	h += deg.hue
	s += deg.saturation
	l += deg.lightness

	l += qualityLightness[qualityKey{chord.Quality, hf.Function}]

	sev := seventhAdjustments[chord.Seventh]
	s += sev.saturation
	l += sev.lightness

	return ColorHSL{
		H: wrapHue(h),
		S: clamp(s, 0, 100),
		L: clamp(l, minChordLightness, maxChordLightness),
	}
}

// MarbleRatio is the weight of the key colour when blended with the chord
// colour. It depends only on the chord's harmonic function.
func MarbleRatio(chord theory.Chord, key theory.Key) float64 {
	return marbleRatios[theory.Analyze(chord, key).Function]
}
