package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/chromachord/internal/audio"
	"github.com/icco/chromachord/internal/config"
	"github.com/icco/chromachord/internal/playback"
	"github.com/icco/chromachord/internal/progression"
	"github.com/icco/chromachord/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// tuiLogFile receives logs while the alt screen is up.
const tuiLogFile = "chromachord.log"

var (
	headless    bool
	virtualName string
)

var playCmd = &cobra.Command{
	Use:   "play [chords...]",
	Short: "Play a chord progression with live colours",
	Long: `Play a chord progression through the synthesizer or a MIDI port while the terminal
shows the colour of each chord, its blend with the key colour and any tension particles.

Chords can be given as arguments, loaded from a YAML file or picked from the presets.
A ":n" suffix sets a chord's length in beats.

Examples:
  chromachord play --key C Dm7 G7 Cmaj7:8
  chromachord play --preset andalusian --metronome
  chromachord play -f song.yaml --midi-out "IAC Driver"
  chromachord play --virtual "chromachord" --preset blues
`,
	RunE: runPlay,
}

func init() {
	addProgressionFlags(playCmd)
	addTempoFlags(playCmd)
	addColorFlags(playCmd)
	addOutputFlags(playCmd)
	playCmd.Flags().BoolVar(&headless, "headless", false, "play once without the terminal UI")
	playCmd.Flags().StringVar(&virtualName, "virtual", "", "also publish a virtual MIDI output with this name")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	p, err := loadProgression(cmd, args)
	if err != nil {
		return err
	}

	out := buildOutput(cfg, logrus.StandardLogger())
	if virtualName != "" {
		out = append(audio.Multi{out}, audio.NewVirtualMIDIOut(virtualName, logrus.StandardLogger()))
	}

	if headless {
		return playHeadless(cmd.Context(), p, out)
	}
	return playInteractive(p, out)
}

// buildOutput assembles the audio sinks selected by c.
func buildOutput(c *config.Config, log logrus.FieldLogger) audio.Output {
	switch c.Output {
	case config.OutputMIDI:
		return audio.NewMIDIOut(c.MIDIPort, log)
	case config.OutputBoth:
		return audio.Multi{audio.NewSynth(log), audio.NewMIDIOut(c.MIDIPort, log)}
	case config.OutputNone:
		return audio.Silent{Log: log}
	default:
		return audio.NewSynth(log)
	}
}

func newPlayer(out audio.Output, callbacks playback.Callbacks) *playback.Player {
	return playback.NewPlayer(out, playback.Options{
		Logger:        logrus.StandardLogger(),
		TimeSignature: cfg.TimeSignature,
		Metronome:     cfg.Metronome,
		Octave:        cfg.Octave,
		Callbacks:     callbacks,
	})
}

func playInteractive(p progression.Progression, out audio.Output) error {
	if cfg.LogFile == "stderr" || cfg.LogFile == "stdout" {
		closer, err := config.SetLogger(logrus.StandardLogger(), cfg.LogLevel, tuiLogFile)
		if err != nil {
			return err
		}
		defer closer.Close()
	}

	events := tui.NewEvents()
	player := newPlayer(out, events.Callbacks())
	defer player.Close()

	m := tui.New(player, events, tui.Options{
		Title:         p.Name,
		Key:           p.Key,
		Chords:        p.Chords,
		BPM:           cfg.BPM,
		TimeSignature: cfg.TimeSignature,
		Rotation:      cfg.Rotation(),
		ScaleType:     cfg.ScaleType(),
		Style:         cfg.VisualizationStyle,
	})

	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// playHeadless plays the progression once, logging each chord, and returns
// when it completes or on interrupt.
func playHeadless(ctx context.Context, p progression.Progression, out audio.Output) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan playback.State, 1)
	player := newPlayer(out, playback.Callbacks{
		OnChordIndexChange: func(i int) {
			if i == playback.NoChord {
				return
			}
			c := p.Chords[i]
			logrus.WithFields(logrus.Fields{
				"index": i,
				"chord": c.Symbol(),
				"notes": c.NoteNames(cfg.Octave),
			}).Info("chord")
		},
		OnEnd: func(reason playback.State) { done <- reason },
	})
	defer player.Close()

	if err := player.Play(ctx, p.Chords, cfg.BPM); err != nil {
		if errors.Is(err, context.Canceled) {
			logrus.Info("interrupted before playback started")
			return nil
		}
		if errors.Is(err, playback.ErrInitialization) {
			return fmt.Errorf("cannot start audio (try --output none): %w", err)
		}
		return err
	}
	if len(p.Chords) == 0 {
		return nil
	}

	select {
	case reason := <-done:
		logrus.WithField("reason", reason.String()).Info("done")
	case <-ctx.Done():
		player.Stop()
	}
	return nil
}
