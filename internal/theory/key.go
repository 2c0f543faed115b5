package theory

import (
	"fmt"
	"strings"
)

// Mode is the key's tonality.
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// Key is an immutable tonic plus mode.
type Key struct {
	Tonic Note
	Mode  Mode
}

func (k Key) String() string {
	if k.Mode == Minor {
		return k.Tonic.String() + "m"
	}
	return k.Tonic.String()
}

// minorSuffixes are accepted after the tonic to select the minor mode.
var minorSuffixes = []string{"minor", "min", "m"}

// ParseKey reads key names such as "C", "F#m", "Bb minor" or "G major".
func ParseKey(s string) (Key, error) {
	tonic, rest, err := parseNotePrefix(s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	rest = strings.ToLower(strings.TrimSpace(rest))
	switch rest {
	case "", "maj", "major":
		return Key{Tonic: tonic, Mode: Major}, nil
	}
	for _, suffix := range minorSuffixes {
		if rest == suffix {
			return Key{Tonic: tonic, Mode: Minor}, nil
		}
	}
	return Key{}, fmt.Errorf("invalid key %q: unknown mode %q", s, rest)
}
