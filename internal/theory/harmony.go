package theory

// Function is a chord's harmonic role within a key.
type Function int

const (
	Tonic Function = iota
	Subdominant
	Dominant
)

func (f Function) String() string {
	switch f {
	case Subdominant:
		return "subdominant"
	case Dominant:
		return "dominant"
	default:
		return "tonic"
	}
}

// HarmonicFunction describes a chord relative to a key. Degree is the scale
// degree 1..7, or 0 for chords whose root is outside the table.
type HarmonicFunction struct {
	RomanNumeral string
	Function     Function
	IsDiatonic   bool
	Degree       int
}

type functionEntry struct {
	numeral  string
	function Function
	quality  Quality
	degree   int
}

// Mediants and submediants are tonic substitutes in major; in minor the VI
// and VII are grouped with the subdominant.
var functionTables = map[Mode]map[int]functionEntry{
	Major: {
		0:  {"I", Tonic, QualityMajor, 1},
		2:  {"ii", Subdominant, QualityMinor, 2},
		4:  {"iii", Tonic, QualityMinor, 3},
		5:  {"IV", Subdominant, QualityMajor, 4},
		7:  {"V", Dominant, QualityMajor, 5},
		9:  {"vi", Tonic, QualityMinor, 6},
		11: {"vii°", Dominant, QualityDiminished, 7},
	},
	Minor: {
		0:  {"i", Tonic, QualityMinor, 1},
		2:  {"ii°", Subdominant, QualityDiminished, 2},
		3:  {"III", Tonic, QualityMajor, 3},
		5:  {"iv", Subdominant, QualityMinor, 4},
		7:  {"V", Dominant, QualityMajor, 5},
		8:  {"VI", Subdominant, QualityMajor, 6},
		10: {"VII", Subdominant, QualityMajor, 7},
		11: {"vii°", Dominant, QualityDiminished, 7},
	},
}

// Analyze classifies chord against key. Roots outside the table are reported
// as non-diatonic tonic chords named after the root; borrowed and secondary
// dominants are not detected.
func Analyze(chord Chord, key Key) HarmonicFunction {
	interval := IntervalFromTonic(key.Tonic, chord.Root)
	entry, ok := functionTables[key.Mode][interval]
	if !ok {
		return HarmonicFunction{
			RomanNumeral: chord.Root.String(),
			Function:     Tonic,
			IsDiatonic:   false,
		}
	}
	return HarmonicFunction{
		RomanNumeral: entry.numeral,
		Function:     entry.function,
		IsDiatonic:   chord.Quality == entry.quality,
		Degree:       entry.degree,
	}
}
