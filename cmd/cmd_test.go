package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/icco/chromachord/internal/audio"
	"github.com/icco/chromachord/internal/color"
	"github.com/icco/chromachord/internal/config"
	"github.com/icco/chromachord/internal/progression"
	"github.com/icco/chromachord/internal/theory"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCommand builds a command carrying the play flags and resets the
// shared flag state and config.
func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	flagKey, flagFile, flagPreset = "C", "", ""
	t.Cleanup(func() { flagKey, flagFile, flagPreset = "C", "", "" })

	cfg = config.Default()
	c := &cobra.Command{Use: "test"}
	addProgressionFlags(c)
	addTempoFlags(c)
	addColorFlags(c)
	addOutputFlags(c)
	return c
}

func TestLoadProgressionFromArgs(t *testing.T) {
	c := newTestCommand(t)
	require.NoError(t, c.Flags().Set("key", "Am"))

	p, err := loadProgression(c, []string{"Am7 Dm7", "E7:8"})
	require.NoError(t, err)
	assert.Equal(t, theory.Key{Tonic: theory.A, Mode: theory.Minor}, p.Key)
	require.Len(t, p.Chords, 3)
	assert.Equal(t, 8.0, p.Chords[2].Duration)
	assert.Equal(t, 120, cfg.BPM)
}

func TestLoadProgressionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: G\nbpm: 90\ntimeSignature: 3\nchords: [G, C, D7]\n"), 0o644))

	c := newTestCommand(t)
	require.NoError(t, c.Flags().Set("file", path))
	p, err := loadProgression(c, nil)
	require.NoError(t, err)
	assert.Len(t, p.Chords, 3)
	assert.Equal(t, 90, cfg.BPM)
	assert.Equal(t, 3, cfg.TimeSignature)

	c = newTestCommand(t)
	require.NoError(t, c.Flags().Set("file", path))
	require.NoError(t, c.Flags().Set("bpm", "150"))
	cfg.BPM = 150
	_, err = loadProgression(c, nil)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.BPM)
}

func TestLoadProgressionErrors(t *testing.T) {
	c := newTestCommand(t)
	_, err := loadProgression(c, nil)
	assert.Error(t, err)

	require.NoError(t, c.Flags().Set("preset", "nope"))
	_, err = loadProgression(c, nil)
	assert.ErrorContains(t, err, "unknown preset")

	c = newTestCommand(t)
	_, err = loadProgression(c, []string{"Xyz"})
	assert.Error(t, err)
}

func TestApplyPlayFlags(t *testing.T) {
	c := newTestCommand(t)
	require.NoError(t, c.Flags().Set("midi-out", "IAC"))
	require.NoError(t, c.Flags().Set("hue-minor", "45"))
	require.NoError(t, c.Flags().Set("metronome", "true"))

	conf := config.Default()
	applyPlayFlags(c, conf)
	assert.Equal(t, "IAC", conf.MIDIPort)
	assert.Equal(t, config.OutputMIDI, conf.Output)
	assert.Equal(t, 45, conf.HueRotation.Minor)
	assert.True(t, conf.Metronome)
	assert.Equal(t, 120, conf.BPM)

	require.NoError(t, c.Flags().Set("output", "both"))
	applyPlayFlags(c, conf)
	assert.Equal(t, config.OutputBoth, conf.Output)
}

func TestBuildOutput(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	conf := config.Default()

	_, ok := buildOutput(conf, log).(*audio.Synth)
	assert.True(t, ok)

	conf.Output = config.OutputMIDI
	_, ok = buildOutput(conf, log).(*audio.MIDIOut)
	assert.True(t, ok)

	conf.Output = config.OutputBoth
	multi, ok := buildOutput(conf, log).(audio.Multi)
	require.True(t, ok)
	assert.Len(t, multi, 2)

	conf.Output = config.OutputNone
	_, ok = buildOutput(conf, logrus.StandardLogger()).(audio.Silent)
	assert.True(t, ok)
}

func TestRenderAnalysis(t *testing.T) {
	p, err := progression.Preset("ii-v-i")
	require.NoError(t, err)
	palettes := color.DeriveAll(p.Chords, p.Key, color.HueRotation{})

	out := renderAnalysis(p, palettes)
	assert.Contains(t, out, "ii-v-i in C")
	for i, c := range p.Chords {
		assert.Contains(t, out, c.Symbol())
		assert.Contains(t, out, palettes[i].ChordColor.Hex())
		assert.Contains(t, out, palettes[i].Analysis.Function.String())
	}
	assert.Contains(t, particleList(nil), "-")
}

type waitingOutput struct {
	err error
}

func (w waitingOutput) Initialize(ctx context.Context) error {
	if w.err != nil {
		return w.err
	}
	<-ctx.Done()
	return ctx.Err()
}
func (waitingOutput) TriggerNotes([]string, time.Duration) {}
func (waitingOutput) ReleaseAll() {}

func TestPlayHeadlessStartErrors(t *testing.T) {
	cfg = config.Default()
	p, err := progression.Preset("pop")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, playHeadless(ctx, p, waitingOutput{}), "an interrupt is not an audio failure")

	err = playHeadless(context.Background(), p, waitingOutput{err: errors.New("no device")})
	assert.ErrorContains(t, err, "try --output none")
}
