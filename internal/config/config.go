// Package config holds the user-tunable playback and display settings.
// Values come from defaults, then a YAML file, then CHROMACHORD_* environment
// variables (optionally read from a .env file), then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/icco/chromachord/internal/color"
	"github.com/icco/chromachord/internal/theory"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "chromachord.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHROMACHORD_"

// Setting bounds.
const (
	MinBPM           = 40
	MaxBPM           = 240
	MinTimeSignature = 2
	MaxTimeSignature = 7
)

// Visualization styles understood by the terminal renderer.
const (
	StyleMarble = "marble"
	StyleBars   = "bars"
)

// Output backends.
const (
	OutputSynth = "synth"
	OutputMIDI  = "midi"
	OutputBoth  = "both"
	OutputNone  = "none"
)

type Config struct {
	BPM                int         `yaml:"bpm"`
	TimeSignature      int         `yaml:"time_signature"`
	Metronome          bool        `yaml:"metronome"`
	HueRotation        HueRotation `yaml:"hue_rotation"`
	MinorScaleType     string      `yaml:"minor_scale_type"`
	VisualizationStyle string      `yaml:"visualization_style"`
	Octave             int         `yaml:"octave"`
	Output             string      `yaml:"output"`
	MIDIPort           string      `yaml:"midi_port"`
	LogLevel           string      `yaml:"log_level"`
	LogFile            string      `yaml:"log_file"`
}

// HueRotation offsets the key hue, in degrees, separately for each mode.
type HueRotation struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BPM:                120,
		TimeSignature:      4,
		MinorScaleType:     theory.NaturalMinor.String(),
		VisualizationStyle: StyleMarble,
		Octave:             theory.DefaultOctave,
		Output:             OutputSynth,
		LogLevel:           "info",
		LogFile:            "stderr",
	}
}

// Load returns the defaults overlaid with the YAML file at path. A missing
// file is not an error unless required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("can't read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("yaml file %s parsing error: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of a .env file into the process
// environment. A missing file is ignored.
func LoadEnvFile(path string) error {
	if !FileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from CHROMACHORD_* variables.
func (c *Config) ApplyEnv() error {
	var errs []error
	intVar := func(name string, dst *int) {
		if v, ok := lookupEnv(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	stringVar := func(name string, dst *string) {
		if v, ok := lookupEnv(name); ok {
			*dst = v
		}
	}

	intVar("BPM", &c.BPM)
	intVar("TIME_SIGNATURE", &c.TimeSignature)
	intVar("HUE_ROTATION_MAJOR", &c.HueRotation.Major)
	intVar("HUE_ROTATION_MINOR", &c.HueRotation.Minor)
	intVar("OCTAVE", &c.Octave)
	stringVar("MINOR_SCALE_TYPE", &c.MinorScaleType)
	stringVar("VISUALIZATION_STYLE", &c.VisualizationStyle)
	stringVar("OUTPUT", &c.Output)
	stringVar("MIDI_PORT", &c.MIDIPort)
	stringVar("LOG_LEVEL", &c.LogLevel)
	stringVar("LOG_FILE", &c.LogFile)

	if v, ok := lookupEnv("METRONOME"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMETRONOME: %w", EnvPrefix, err))
		} else {
			c.Metronome = b
		}
	}
	return errors.Join(errs...)
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Validate reports every setting outside its allowed range.
func (c *Config) Validate() error {
	var errs []error
	if c.BPM < MinBPM || c.BPM > MaxBPM {
		errs = append(errs, fmt.Errorf("bpm %d out of range [%d, %d]", c.BPM, MinBPM, MaxBPM))
	}
	if c.TimeSignature < MinTimeSignature || c.TimeSignature > MaxTimeSignature {
		errs = append(errs, fmt.Errorf("time_signature %d out of range [%d, %d]", c.TimeSignature, MinTimeSignature, MaxTimeSignature))
	}
	if c.HueRotation.Major < 0 || c.HueRotation.Major > 359 {
		errs = append(errs, fmt.Errorf("hue_rotation.major %d out of range [0, 359]", c.HueRotation.Major))
	}
	if c.HueRotation.Minor < 0 || c.HueRotation.Minor > 359 {
		errs = append(errs, fmt.Errorf("hue_rotation.minor %d out of range [0, 359]", c.HueRotation.Minor))
	}
	if _, err := theory.ParseMinorScaleType(c.MinorScaleType); err != nil {
		errs = append(errs, fmt.Errorf("minor_scale_type: %w", err))
	}
	if c.Octave < 0 || c.Octave > 8 {
		errs = append(errs, fmt.Errorf("octave %d out of range [0, 8]", c.Octave))
	}
	switch c.Output {
	case OutputSynth, OutputNone:
	case OutputMIDI, OutputBoth:
		if c.MIDIPort == "" {
			errs = append(errs, fmt.Errorf("output %q needs midi_port", c.Output))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown output %q", c.Output))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// Rotation converts the hue settings for the colour engine.
func (c *Config) Rotation() color.HueRotation {
	return color.HueRotation{
		Major: float64(c.HueRotation.Major),
		Minor: float64(c.HueRotation.Minor),
	}
}

// ScaleType returns the parsed minor scale type, natural if invalid.
func (c *Config) ScaleType() theory.MinorScaleType {
	t, err := theory.ParseMinorScaleType(c.MinorScaleType)
	if err != nil {
		return theory.NaturalMinor
	}
	return t
}

// SetLogger configures logger's level and destination. dest is "stdout",
// "stderr" or a file path, which is appended to. The returned closer
// releases the file, if any.
func SetLogger(logger *logrus.Logger, level, dest string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %q as a log level: %w", level, err)
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch dest {
	case "", "stderr":
		logger.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	case "stdout":
		logger.SetOutput(os.Stdout)
		return io.NopCloser(nil), nil
	}

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute file path %s: %w", dest, err)
	}
	out, err := os.OpenFile(absDest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file %s: %w", dest, err)
	}
	logger.SetOutput(out)
	return out, nil
}

// FileExists reports whether the named file or directory exists.
func FileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
