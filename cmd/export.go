package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/icco/chromachord/internal/playback"
	"github.com/icco/chromachord/internal/progression"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	exportMIDI string
	exportYAML string
)

var exportCmd = &cobra.Command{
	Use:   "export [chords...]",
	Short: "Write a progression to a MIDI file or a progression file",
	Long: `Render a progression as a Standard MIDI File, save it as YAML, or both.

Examples:
  chromachord export --preset pop --midi pop.mid --metronome
  chromachord export --key F F Bb C7 F --yaml blues.yaml --bpm 96
`,
	RunE: runExport,
}

func init() {
	addProgressionFlags(exportCmd)
	addTempoFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportMIDI, "midi", "", "Standard MIDI File to write")
	exportCmd.Flags().StringVar(&exportYAML, "yaml", "", "progression file to write")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportMIDI == "" && exportYAML == "" {
		return errors.New("nothing to write: give --midi and/or --yaml")
	}
	p, err := loadProgression(cmd, args)
	if err != nil {
		return err
	}
	p.BPM = cfg.BPM
	p.TimeSignature = cfg.TimeSignature

	if exportYAML != "" {
		if err := progression.Save(exportYAML, p); err != nil {
			return err
		}
		logrus.WithField("path", exportYAML).Info("progression saved")
	}

	if exportMIDI != "" {
		if err := writeSMF(exportMIDI, p); err != nil {
			return err
		}
		logrus.WithField("path", exportMIDI).Info("MIDI file written")
	}
	return nil
}

func writeSMF(path string, p progression.Progression) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return progression.ExportSMF(f, playback.NewTimetable(p.Chords, p.BPM), progression.ExportOptions{
		TimeSignature: p.TimeSignature,
		Octave:        cfg.Octave,
		Metronome:     cfg.Metronome,
	})
}
