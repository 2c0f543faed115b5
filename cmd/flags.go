package cmd

import (
	"errors"

	"github.com/icco/chromachord/internal/config"
	"github.com/icco/chromachord/internal/progression"
	"github.com/icco/chromachord/internal/theory"
	"github.com/spf13/cobra"
)

// Setting flags shared by the commands that play, print or export.
var (
	flagBPM           int
	flagTimeSignature int
	flagMetronome     bool
	flagHueMajor      int
	flagHueMinor      int
	flagScale         string
	flagStyle         string
	flagOctave        int
	flagOutput        string
	flagMIDIPort      string

	flagKey    string
	flagFile   string
	flagPreset string
)

func addProgressionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagKey, "key", "k", "C", "key of chords given as arguments, e.g. C, Am, Bb minor")
	cmd.Flags().StringVarP(&flagFile, "file", "f", "", "progression YAML file")
	cmd.Flags().StringVar(&flagPreset, "preset", "", "built-in progression name")
	cmd.MarkFlagsMutuallyExclusive("file", "preset")
}

func addTempoFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagBPM, "bpm", "b", 0, "tempo in beats per minute")
	cmd.Flags().IntVarP(&flagTimeSignature, "time-signature", "t", 0, "beats per measure")
	cmd.Flags().BoolVarP(&flagMetronome, "metronome", "m", false, "click on every beat")
	cmd.Flags().IntVar(&flagOctave, "octave", 0, "octave of chord roots")
}

func addColorFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagHueMajor, "hue-major", 0, "hue rotation for major keys in degrees")
	cmd.Flags().IntVar(&flagHueMinor, "hue-minor", 0, "hue rotation for minor keys in degrees")
	cmd.Flags().StringVar(&flagScale, "scale", "", "minor scale: natural, harmonic or melodic")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagStyle, "style", "", "visualization style: marble or bars")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "audio output: synth, midi, both or none")
	cmd.Flags().StringVar(&flagMIDIPort, "midi-out", "", "MIDI output port name (implies --output midi unless set)")
}

// applyPlayFlags copies the setting flags the user set on cmd into c.
func applyPlayFlags(cmd *cobra.Command, c *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("bpm") {
		c.BPM = flagBPM
	}
	if changed("time-signature") {
		c.TimeSignature = flagTimeSignature
	}
	if changed("metronome") {
		c.Metronome = flagMetronome
	}
	if changed("octave") {
		c.Octave = flagOctave
	}
	if changed("hue-major") {
		c.HueRotation.Major = flagHueMajor
	}
	if changed("hue-minor") {
		c.HueRotation.Minor = flagHueMinor
	}
	if changed("scale") {
		c.MinorScaleType = flagScale
	}
	if changed("style") {
		c.VisualizationStyle = flagStyle
	}
	if changed("midi-out") {
		c.MIDIPort = flagMIDIPort
		if !changed("output") {
			c.Output = config.OutputMIDI
		}
	}
	if changed("output") {
		c.Output = flagOutput
	}
}

// loadProgression resolves the progression from --file, --preset or the
// chord arguments. Tempo and meter stored in a file apply unless the
// matching flag was given.
func loadProgression(cmd *cobra.Command, args []string) (progression.Progression, error) {
	var p progression.Progression
	var err error

	switch {
	case flagFile != "":
		p, err = progression.Load(flagFile)
	case flagPreset != "":
		p, err = progression.Preset(flagPreset)
	case len(args) > 0:
		p.Key, err = theory.ParseKey(flagKey)
		if err == nil {
			p.Chords, err = theory.ParseProgression(args)
		}
	default:
		return p, errors.New("give chords as arguments, --file or --preset")
	}
	if err != nil {
		return p, err
	}

	if p.BPM > 0 && !cmd.Flags().Changed("bpm") {
		cfg.BPM = p.BPM
	}
	if p.TimeSignature > 0 && !cmd.Flags().Changed("time-signature") {
		cfg.TimeSignature = p.TimeSignature
	}
	if err := cfg.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
