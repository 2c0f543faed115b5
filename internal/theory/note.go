// Package theory implements the pitch-class arithmetic, diatonic tables and
// harmonic analysis used to colour and voice chord progressions.
package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Note is one of the 12 chromatic pitch classes, indexed in semitones from C.
type Note int

const (
	C Note = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// notesPerOctave is the size of the chromatic set.
const notesPerOctave = 12

var noteNames = [notesPerOctave]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// naturals maps a letter to its pitch class before accidentals are applied.
var naturals = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Index returns the semitone index of n in 0..11.
func (n Note) Index() int {
	return mod12(int(n))
}

// String spells the note with sharps.
func (n Note) String() string {
	return noteNames[n.Index()]
}

// Transpose moves n by the given number of semitones, wrapping within the octave.
func Transpose(n Note, semitones int) Note {
	return Note(mod12(n.Index() + semitones))
}

// IntervalFromTonic returns the ascending interval in semitones from tonic to root.
func IntervalFromTonic(tonic, root Note) int {
	return (root.Index() - tonic.Index() + notesPerOctave) % notesPerOctave
}

// NoteName spells a pitch class in a given octave, e.g. "C#4".
func NoteName(n Note, octave int) string {
	return fmt.Sprintf("%s%d", n, octave)
}

// MIDINumber returns the MIDI key for a pitch class in an octave (C4 = 60).
func MIDINumber(n Note, octave int) int {
	return (octave+1)*notesPerOctave + n.Index()
}

// ParseNote reads a note name such as "C", "F#", "Bb" or "E#". Flats and
// sharps are accepted and normalised to the sharp spelling.
func ParseNote(s string) (Note, error) {
	n, rest, err := parseNotePrefix(s)
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, fmt.Errorf("invalid note %q: unexpected %q", s, rest)
	}
	return n, nil
}

// ParseNoteName reads a pitch with octave such as "C#4" or "Bb-1", the
// inverse of NoteName.
func ParseNoteName(s string) (Note, int, error) {
	n, rest, err := parseNotePrefix(s)
	if err != nil {
		return 0, 0, err
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid octave in note %q", s)
	}
	return n, octave, nil
}

// parseNotePrefix reads a letter plus any accidentals and returns the remainder.
func parseNotePrefix(s string) (Note, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("empty note name")
	}
	base, ok := naturals[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, "", fmt.Errorf("invalid note letter %q", s[:1])
	}
	i := 1
	for i < len(s) {
		switch {
		case s[i] == '#':
			base++
			i++
		case s[i] == 'b':
			base--
			i++
		case strings.HasPrefix(s[i:], "♯"):
			base++
			i += len("♯")
		case strings.HasPrefix(s[i:], "♭"):
			base--
			i += len("♭")
		default:
			return Note(mod12(base)), s[i:], nil
		}
	}
	return Note(mod12(base)), "", nil
}

func mod12(v int) int {
	v %= notesPerOctave
	if v < 0 {
		v += notesPerOctave
	}
	return v
}
