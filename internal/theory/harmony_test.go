package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiatonicCMajor(t *testing.T) {
	got := Diatonic(Key{C, Major}, HarmonicMinor)
	want := []Chord{
		{Root: C, Quality: QualityMajor, Duration: 4},
		{Root: D, Quality: QualityMinor, Duration: 4},
		{Root: E, Quality: QualityMinor, Duration: 4},
		{Root: F, Quality: QualityMajor, Duration: 4},
		{Root: G, Quality: QualityMajor, Duration: 4},
		{Root: A, Quality: QualityMinor, Duration: 4},
		{Root: B, Quality: QualityDiminished, Duration: 4},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"I", "ii", "iii", "IV", "V", "vi", "vii°"}, DiatonicNumerals(Key{C, Major}, NaturalMinor))
}

func TestDiatonicMinorVariants(t *testing.T) {
	key := Key{A, Minor}
	tests := []struct {
		scale     MinorScaleType
		roots     []Note
		qualities []Quality
		numerals  []string
	}{
		{
			NaturalMinor,
			[]Note{A, B, C, D, E, F, G},
			[]Quality{QualityMinor, QualityDiminished, QualityMajor, QualityMinor, QualityMinor, QualityMajor, QualityMajor},
			[]string{"i", "ii°", "III", "iv", "v", "VI", "VII"},
		},
		{
			HarmonicMinor,
			[]Note{A, B, C, D, E, F, GSharp},
			[]Quality{QualityMinor, QualityDiminished, QualityAugmented, QualityMinor, QualityMajor, QualityMajor, QualityDiminished},
			[]string{"i", "ii°", "III+", "iv", "V", "VI", "vii°"},
		},
		{
			MelodicMinor,
			[]Note{A, B, C, D, E, FSharp, GSharp},
			[]Quality{QualityMinor, QualityMinor, QualityAugmented, QualityMajor, QualityMajor, QualityDiminished, QualityDiminished},
			[]string{"i", "ii", "III+", "IV", "V", "vi°", "vii°"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.scale.String(), func(t *testing.T) {
			chords := Diatonic(key, tt.scale)
			require.Len(t, chords, 7)
			for i, c := range chords {
				assert.Equal(t, tt.roots[i], c.Root, "degree %d root", i+1)
				assert.Equal(t, tt.qualities[i], c.Quality, "degree %d quality", i+1)
				assert.Equal(t, 4.0, c.Duration)
				assert.Zero(t, c.Tensions)
				assert.Zero(t, c.Alterations)
			}
			assert.Equal(t, tt.numerals, DiatonicNumerals(key, tt.scale))
		})
	}
}

func TestParseMinorScaleType(t *testing.T) {
	st, err := ParseMinorScaleType("Harmonic")
	require.NoError(t, err)
	assert.Equal(t, HarmonicMinor, st)
	_, err = ParseMinorScaleType("dorian")
	assert.Error(t, err)
}

func TestAnalyzeDominant(t *testing.T) {
	hf := Analyze(Chord{Root: G, Quality: QualityMajor}, Key{C, Major})
	assert.Equal(t, "V", hf.RomanNumeral)
	assert.Equal(t, Dominant, hf.Function)
	assert.True(t, hf.IsDiatonic)
	assert.Equal(t, 5, hf.Degree)
}

func TestAnalyzeNonDiatonicRoot(t *testing.T) {
	hf := Analyze(Chord{Root: FSharp, Quality: QualityMajor}, Key{C, Major})
	assert.False(t, hf.IsDiatonic)
	assert.Equal(t, Tonic, hf.Function)
	assert.Equal(t, "F#", hf.RomanNumeral)
	assert.Zero(t, hf.Degree)

	// A borrowed bVII7 is not promoted to dominant.
	hf = Analyze(Chord{Root: ASharp, Quality: QualityMajor, Seventh: Dom7}, Key{C, Major})
	assert.Equal(t, Tonic, hf.Function)
	assert.Equal(t, "A#", hf.RomanNumeral)
	assert.False(t, hf.IsDiatonic)

	// A major II keeps the table's function but is not diatonic.
	hf = Analyze(Chord{Root: D, Quality: QualityMajor}, Key{C, Major})
	assert.Equal(t, Subdominant, hf.Function)
	assert.False(t, hf.IsDiatonic)
}

func TestAnalyzeIgnoresSeventh(t *testing.T) {
	hf := Analyze(Chord{Root: G, Quality: QualityMajor, Seventh: Dom7}, Key{C, Major})
	assert.True(t, hf.IsDiatonic)
	hf = Analyze(Chord{Root: D, Quality: QualityMinor, Seventh: Min7}, Key{C, Major})
	assert.True(t, hf.IsDiatonic)
	assert.Equal(t, "ii", hf.RomanNumeral)
}

func TestAnalyzeFunctionTables(t *testing.T) {
	tests := []struct {
		key      Key
		chord    Chord
		numeral  string
		function Function
	}{
		{Key{C, Major}, Chord{Root: E, Quality: QualityMinor}, "iii", Tonic},
		{Key{C, Major}, Chord{Root: A, Quality: QualityMinor}, "vi", Tonic},
		{Key{C, Major}, Chord{Root: F, Quality: QualityMajor}, "IV", Subdominant},
		{Key{C, Major}, Chord{Root: B, Quality: QualityDiminished}, "vii°", Dominant},
		{Key{A, Minor}, Chord{Root: C, Quality: QualityMajor}, "III", Tonic},
		{Key{A, Minor}, Chord{Root: D, Quality: QualityMinor}, "iv", Subdominant},
		{Key{A, Minor}, Chord{Root: F, Quality: QualityMajor}, "VI", Subdominant},
		{Key{A, Minor}, Chord{Root: G, Quality: QualityMajor}, "VII", Subdominant},
		{Key{A, Minor}, Chord{Root: E, Quality: QualityMajor}, "V", Dominant},
		{Key{A, Minor}, Chord{Root: GSharp, Quality: QualityDiminished}, "vii°", Dominant},
	}
	for _, tt := range tests {
		t.Run(tt.key.String()+" "+tt.numeral, func(t *testing.T) {
			hf := Analyze(tt.chord, tt.key)
			assert.Equal(t, tt.numeral, hf.RomanNumeral)
			assert.Equal(t, tt.function, hf.Function)
			assert.True(t, hf.IsDiatonic)
		})
	}
}
