// Package progression loads chord progressions from YAML files and exports
// scheduled progressions as Standard MIDI Files.
package progression

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/icco/chromachord/internal/theory"
	"gopkg.in/yaml.v3"
)

// Progression is a keyed chord sequence ready for playback.
type Progression struct {
	Name          string
	Key           theory.Key
	BPM           int
	TimeSignature int
	Chords        []theory.Chord
}

// file is the on-disk YAML layout. Chords are symbols accepted by
// theory.ParseChord; a single entry may hold several, separated by spaces
// or bar lines.
type file struct {
	Name          string   `yaml:"name,omitempty"`
	Key           string   `yaml:"key"`
	BPM           int      `yaml:"bpm,omitempty"`
	TimeSignature int      `yaml:"timeSignature,omitempty"`
	Chords        []string `yaml:"chords"`
}

// Load reads a progression file.
func Load(path string) (Progression, error) {
	f, err := os.Open(path)
	if err != nil {
		return Progression{}, fmt.Errorf("failed to open progression: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return Progression{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode parses a progression document. Unknown fields are rejected.
func Decode(r io.Reader) (Progression, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Progression{}, fmt.Errorf("empty progression document")
		}
		return Progression{}, fmt.Errorf("failed to parse progression: %w", err)
	}

	key, err := theory.ParseKey(f.Key)
	if err != nil {
		return Progression{}, err
	}
	chords, err := theory.ParseProgression(f.Chords)
	if err != nil {
		return Progression{}, err
	}
	if f.BPM < 0 {
		return Progression{}, fmt.Errorf("invalid bpm %d", f.BPM)
	}
	if f.TimeSignature < 0 {
		return Progression{}, fmt.Errorf("invalid timeSignature %d", f.TimeSignature)
	}
	return Progression{
		Name:          f.Name,
		Key:           key,
		BPM:           f.BPM,
		TimeSignature: f.TimeSignature,
		Chords:        chords,
	}, nil
}

// Encode writes p in the format Decode reads.
func Encode(w io.Writer, p Progression) error {
	f := file{
		Name:          p.Name,
		Key:           p.Key.String(),
		BPM:           p.BPM,
		TimeSignature: p.TimeSignature,
		Chords:        make([]string, 0, len(p.Chords)),
	}
	for _, c := range p.Chords {
		f.Chords = append(f.Chords, FormatChord(c))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode progression: %w", err)
	}
	return enc.Close()
}

// Save writes p to path.
func Save(path string, p Progression) error {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write progression: %w", err)
	}
	return nil
}

// FormatChord renders c as a symbol, adding ":beats" when the duration is
// not the default.
func FormatChord(c theory.Chord) string {
	if c.Duration == theory.DefaultDuration {
		return c.Symbol()
	}
	return c.Symbol() + ":" + strconv.FormatFloat(c.Duration, 'f', -1, 64)
}

var presets = map[string]struct {
	key    string
	chords string
}{
	"ii-v-i":     {"C", "Dm7 G7 Cmaj7"},
	"pop":        {"C", "C G Am F"},
	"blues":      {"A", "A7 D7 A7 A7 D7 D7 A7 A7 E7 D7 A7 E7"},
	"andalusian": {"Am", "Am G F E"},
	"minor-jazz": {"Cm", "Dm7b5 G7(b9) Cm7"},
	"canon":      {"D", "D A Bm F#m G D G A"},
}

// Preset returns a named built-in progression.
func Preset(name string) (Progression, error) {
	pr, ok := presets[strings.ToLower(name)]
	if !ok {
		return Progression{}, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	key, err := theory.ParseKey(pr.key)
	if err != nil {
		return Progression{}, err
	}
	chords, err := theory.ParseProgression([]string{pr.chords})
	if err != nil {
		return Progression{}, err
	}
	return Progression{Name: name, Key: key, Chords: chords}, nil
}

// PresetNames lists the built-in progressions in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
