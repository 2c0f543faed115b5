package theory

import (
	"fmt"
	"strings"
)

// MinorScaleType selects which minor scale the diatonic chords come from.
// It has no effect in major keys.
type MinorScaleType int

const (
	NaturalMinor MinorScaleType = iota
	HarmonicMinor
	MelodicMinor
)

func (t MinorScaleType) String() string {
	switch t {
	case HarmonicMinor:
		return "harmonic"
	case MelodicMinor:
		return "melodic"
	default:
		return "natural"
	}
}

// ParseMinorScaleType reads "natural", "harmonic" or "melodic".
func ParseMinorScaleType(s string) (MinorScaleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "natural":
		return NaturalMinor, nil
	case "harmonic":
		return HarmonicMinor, nil
	case "melodic":
		return MelodicMinor, nil
	}
	return 0, fmt.Errorf("unknown minor scale type %q", s)
}

type degreeTable struct {
	intervals [7]int
	qualities [7]Quality
	numerals  [7]string
}

var majorTable = degreeTable{
	intervals: [7]int{0, 2, 4, 5, 7, 9, 11},
	qualities: [7]Quality{QualityMajor, QualityMinor, QualityMinor, QualityMajor, QualityMajor, QualityMinor, QualityDiminished},
	numerals:  [7]string{"I", "ii", "iii", "IV", "V", "vi", "vii°"},
}

var minorTables = map[MinorScaleType]degreeTable{
	NaturalMinor: {
		intervals: [7]int{0, 2, 3, 5, 7, 8, 10},
		qualities: [7]Quality{QualityMinor, QualityDiminished, QualityMajor, QualityMinor, QualityMinor, QualityMajor, QualityMajor},
		numerals:  [7]string{"i", "ii°", "III", "iv", "v", "VI", "VII"},
	},
	HarmonicMinor: {
		intervals: [7]int{0, 2, 3, 5, 7, 8, 11},
		qualities: [7]Quality{QualityMinor, QualityDiminished, QualityAugmented, QualityMinor, QualityMajor, QualityMajor, QualityDiminished},
		numerals:  [7]string{"i", "ii°", "III+", "iv", "V", "VI", "vii°"},
	},
	MelodicMinor: {
		intervals: [7]int{0, 2, 3, 5, 7, 9, 11},
		qualities: [7]Quality{QualityMinor, QualityMinor, QualityAugmented, QualityMajor, QualityMajor, QualityDiminished, QualityDiminished},
		numerals:  [7]string{"i", "ii", "III+", "IV", "V", "vi°", "vii°"},
	},
}

func tableFor(key Key, scale MinorScaleType) degreeTable {
	if key.Mode == Major {
		return majorTable
	}
	t, ok := minorTables[scale]
	if !ok {
		return minorTables[NaturalMinor]
	}
	return t
}

// Diatonic returns the seven scale-degree chords of key, each four beats long.
func Diatonic(key Key, scale MinorScaleType) []Chord {
	t := tableFor(key, scale)
	chords := make([]Chord, 0, len(t.intervals))
	for i, interval := range t.intervals {
		chords = append(chords, Chord{
			Root:     Transpose(key.Tonic, interval),
			Quality:  t.qualities[i],
			Duration: DefaultDuration,
		})
	}
	return chords
}

// DiatonicNumerals returns the roman numerals parallel to Diatonic.
func DiatonicNumerals(key Key, scale MinorScaleType) []string {
	t := tableFor(key, scale)
	out := make([]string, len(t.numerals))
	copy(out, t.numerals[:])
	return out
}
