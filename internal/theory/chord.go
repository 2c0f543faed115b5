package theory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Quality is the triad quality of a chord.
type Quality int

const (
	QualityMajor Quality = iota
	QualityMinor
	QualityDiminished
	QualityAugmented
)

func (q Quality) String() string {
	switch q {
	case QualityMinor:
		return "minor"
	case QualityDiminished:
		return "diminished"
	case QualityAugmented:
		return "augmented"
	default:
		return "major"
	}
}

// Seventh is the optional seventh type. The zero value means a plain triad.
type Seventh int

const (
	NoSeventh Seventh = iota
	Maj7
	Dom7
	Min7
	MinMaj7
	HalfDim7
	Dim7
	Aug7
	AugMaj7
)

// Tension is an added colour tone.
type Tension uint8

const (
	Ninth Tension = 1 << iota
	Eleventh
	Thirteenth
)

// Alteration is a chromatically altered tension.
type Alteration uint8

const (
	FlatNinth Alteration = 1 << iota
	SharpNinth
	SharpEleventh
	FlatThirteenth
)

// Tensions is a set of Tension values.
type Tensions uint8

// Alterations is a set of Alteration values.
type Alterations uint8

// AllTensions lists every tension in ascending order.
var AllTensions = []Tension{Ninth, Eleventh, Thirteenth}

// AllAlterations lists every alteration in ascending order.
var AllAlterations = []Alteration{FlatNinth, SharpNinth, SharpEleventh, FlatThirteenth}

var tensionInfo = map[Tension]struct {
	label     string
	semitones int
}{
	Ninth:      {"9", 14},
	Eleventh:   {"11", 17},
	Thirteenth: {"13", 21},
}

var alterationInfo = map[Alteration]struct {
	label     string
	semitones int
}{
	FlatNinth:      {"b9", 13},
	SharpNinth:     {"#9", 15},
	SharpEleventh:  {"#11", 18},
	FlatThirteenth: {"b13", 20},
}

func (t Tension) String() string    { return tensionInfo[t].label }
func (a Alteration) String() string { return alterationInfo[a].label }

// Has reports whether t is in the set.
func (s Tensions) Has(t Tension) bool { return s&Tensions(t) != 0 }

// With returns the set with t added.
func (s Tensions) With(t Tension) Tensions { return s | Tensions(t) }

// Without returns the set with t removed.
func (s Tensions) Without(t Tension) Tensions { return s &^ Tensions(t) }

// List returns the members in ascending order.
func (s Tensions) List() []Tension {
	var out []Tension
	for _, t := range AllTensions {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Has reports whether a is in the set.
func (s Alterations) Has(a Alteration) bool { return s&Alterations(a) != 0 }

// With returns the set with a added.
func (s Alterations) With(a Alteration) Alterations { return s | Alterations(a) }

// Without returns the set with a removed.
func (s Alterations) Without(a Alteration) Alterations { return s &^ Alterations(a) }

// List returns the members in ascending order.
func (s Alterations) List() []Alteration {
	var out []Alteration
	for _, a := range AllAlterations {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// DefaultDuration is the length in beats given to generated chords.
const DefaultDuration = 4

// DefaultOctave is the octave chord roots are voiced in.
const DefaultOctave = 4

// Chord is an immutable chord value. Duration is in beats and must be positive.
type Chord struct {
	Root        Note
	Quality     Quality
	Seventh     Seventh
	Tensions    Tensions
	Alterations Alterations
	Duration    float64
}

// WithDuration returns a copy of c lasting the given number of beats.
func (c Chord) WithDuration(beats float64) Chord {
	c.Duration = beats
	return c
}

// WithSeventh returns a copy of c with the seventh replaced.
func (c Chord) WithSeventh(s Seventh) Chord {
	c.Seventh = s
	return c
}

// WithTension returns a copy of c with t added.
func (c Chord) WithTension(t Tension) Chord {
	c.Tensions = c.Tensions.With(t)
	return c
}

// WithAlteration returns a copy of c with a added.
func (c Chord) WithAlteration(a Alteration) Chord {
	c.Alterations = c.Alterations.With(a)
	return c
}

var seventhIntervals = map[Seventh]struct{ third, fifth, seventh int }{
	Maj7:     {4, 7, 11},
	Dom7:     {4, 7, 10},
	Min7:     {3, 7, 10},
	MinMaj7:  {3, 7, 11},
	HalfDim7: {3, 6, 10},
	Dim7:     {3, 6, 9},
	Aug7:     {4, 8, 10},
	AugMaj7:  {4, 8, 11},
}

var triadIntervals = map[Quality]struct{ third, fifth int }{
	QualityMajor:      {4, 7},
	QualityMinor:      {3, 7},
	QualityDiminished: {3, 6},
	QualityAugmented:  {4, 8},
}

// Semitones returns the chord tones as semitone offsets above the root, in
// ascending order. Compound tensions stay above the octave.
func (c Chord) Semitones() []int {
	var out []int
	if st, ok := seventhIntervals[c.Seventh]; ok {
		out = []int{0, st.third, st.fifth, st.seventh}
	} else {
		tr := triadIntervals[c.Quality]
		out = []int{0, tr.third, tr.fifth}
	}
	for _, t := range c.Tensions.List() {
		out = append(out, tensionInfo[t].semitones)
	}
	for _, a := range c.Alterations.List() {
		out = append(out, alterationInfo[a].semitones)
	}
	sort.Ints(out)
	return out
}

// NoteNames voices the chord with its root in the given octave, carrying into
// higher octaves as intervals pass 12 semitones.
func (c Chord) NoteNames(octave int) []string {
	semis := c.Semitones()
	names := make([]string, 0, len(semis))
	for _, s := range semis {
		abs := c.Root.Index() + s
		names = append(names, NoteName(Note(abs%notesPerOctave), octave+abs/notesPerOctave))
	}
	return names
}

// MIDINotes voices the chord as MIDI key numbers with the root in octave.
func (c Chord) MIDINotes(octave int) []int {
	semis := c.Semitones()
	keys := make([]int, 0, len(semis))
	base := MIDINumber(c.Root, octave)
	for _, s := range semis {
		keys = append(keys, base+s)
	}
	return keys
}

type chordSuffix struct {
	text    string
	quality Quality
	seventh Seventh
}

// chordSuffixes maps a quality suffix to its triad quality and seventh.
var chordSuffixes = []chordSuffix{
	{"augMaj7", QualityAugmented, AugMaj7},
	{"maj7#5", QualityAugmented, AugMaj7},
	{"mMaj7", QualityMinor, MinMaj7},
	{"m7b5", QualityDiminished, HalfDim7},
	{"dim7", QualityDiminished, Dim7},
	{"aug7", QualityAugmented, Aug7},
	{"maj7", QualityMajor, Maj7},
	{"+M7", QualityAugmented, AugMaj7},
	{"7#5", QualityAugmented, Aug7},
	{"mM7", QualityMinor, MinMaj7},
	{"dim", QualityDiminished, NoSeventh},
	{"aug", QualityAugmented, NoSeventh},
	{"maj", QualityMajor, NoSeventh},
	{"min", QualityMinor, NoSeventh},
	{"°7", QualityDiminished, Dim7},
	{"ø7", QualityDiminished, HalfDim7},
	{"+7", QualityAugmented, Aug7},
	{"M7", QualityMajor, Maj7},
	{"m7", QualityMinor, Min7},
	{"ø", QualityDiminished, HalfDim7},
	{"°", QualityDiminished, NoSeventh},
	{"+", QualityAugmented, NoSeventh},
	{"7", QualityMajor, Dom7},
	{"m", QualityMinor, NoSeventh},
}

var seventhSymbols = map[Seventh]string{
	Maj7:     "maj7",
	Dom7:     "7",
	Min7:     "m7",
	MinMaj7:  "mMaj7",
	HalfDim7: "m7b5",
	Dim7:     "dim7",
	Aug7:     "aug7",
	AugMaj7:  "augMaj7",
}

var qualitySymbols = map[Quality]string{
	QualityMajor:      "",
	QualityMinor:      "m",
	QualityDiminished: "dim",
	QualityAugmented:  "aug",
}

// Symbol renders the chord as a symbol that ParseChord accepts, without duration.
func (c Chord) Symbol() string {
	var b strings.Builder
	b.WriteString(c.Root.String())
	if s, ok := seventhSymbols[c.Seventh]; ok {
		b.WriteString(s)
	} else {
		b.WriteString(qualitySymbols[c.Quality])
	}
	var ext []string
	for _, t := range c.Tensions.List() {
		ext = append(ext, t.String())
	}
	for _, a := range c.Alterations.List() {
		ext = append(ext, a.String())
	}
	if len(ext) > 0 {
		b.WriteString("(" + strings.Join(ext, ",") + ")")
	}
	return b.String()
}

func (c Chord) String() string {
	return c.Symbol()
}

// ParseChord reads symbols like "C", "Am7", "G7(b9,13)" or "Fmaj7:2", where
// the optional ":n" suffix sets the duration in beats (default 4).
func ParseChord(s string) (Chord, error) {
	orig := s
	s = strings.TrimSpace(s)
	c := Chord{Duration: DefaultDuration}

	if i := strings.LastIndex(s, ":"); i >= 0 {
		beats, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil || beats <= 0 {
			return Chord{}, fmt.Errorf("invalid chord %q: bad duration %q", orig, s[i+1:])
		}
		c.Duration = beats
		s = s[:i]
	}

	if i := strings.Index(s, "("); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return Chord{}, fmt.Errorf("invalid chord %q: unclosed extension list", orig)
		}
		for _, ext := range strings.Split(s[i+1:len(s)-1], ",") {
			if err := c.addExtension(strings.TrimSpace(ext)); err != nil {
				return Chord{}, fmt.Errorf("invalid chord %q: %w", orig, err)
			}
		}
		s = s[:i]
	}

	root, rest, err := parseNotePrefix(s)
	if err != nil {
		return Chord{}, fmt.Errorf("invalid chord %q: %w", orig, err)
	}
	c.Root = root

	if rest != "" {
		matched := false
		for _, suf := range chordSuffixes {
			if rest == suf.text {
				c.Quality = suf.quality
				c.Seventh = suf.seventh
				matched = true
				break
			}
		}
		if !matched {
			return Chord{}, fmt.Errorf("invalid chord %q: unknown quality %q", orig, rest)
		}
	}
	return c, nil
}

func (c *Chord) addExtension(ext string) error {
	for _, t := range AllTensions {
		if ext == t.String() {
			c.Tensions = c.Tensions.With(t)
			return nil
		}
	}
	normalized := strings.NewReplacer("♭", "b", "♯", "#").Replace(ext)
	for _, a := range AllAlterations {
		if normalized == a.String() {
			c.Alterations = c.Alterations.With(a)
			return nil
		}
	}
	return fmt.Errorf("unknown extension %q", ext)
}

// ParseProgression parses chord symbols separated by spaces or bar lines.
// Separators inside an extension list, as in "G7(b9, 13)", are kept.
func ParseProgression(symbols []string) ([]Chord, error) {
	var chords []Chord
	for _, sym := range symbols {
		for _, field := range splitSymbols(sym) {
			c, err := ParseChord(field)
			if err != nil {
				return nil, err
			}
			chords = append(chords, c)
		}
	}
	return chords, nil
}

// splitSymbols splits s at spaces and bar lines outside parentheses.
func splitSymbols(s string) []string {
	var fields []string
	start, depth := -1, 0
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case (r == ' ' || r == '\t' || r == '|') && depth == 0:
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}
