package progression

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/icco/chromachord/internal/playback"
	"github.com/icco/chromachord/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

const sample = `name: turnaround
key: Am
bpm: 90
timeSignature: 3
chords:
  - Am7 | Dm7
  - G7(b9):2
  - Cmaj7:2
`

func TestDecode(t *testing.T) {
	p, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "turnaround", p.Name)
	assert.Equal(t, theory.Key{Tonic: theory.A, Mode: theory.Minor}, p.Key)
	assert.Equal(t, 90, p.BPM)
	assert.Equal(t, 3, p.TimeSignature)
	require.Len(t, p.Chords, 4)
	assert.Equal(t, "G7(b9)", p.Chords[2].Symbol())
	assert.Equal(t, 2.0, p.Chords[2].Duration)
	assert.Equal(t, 4.0, p.Chords[0].Duration)
}

func TestDecodeErrors(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"unknown field": "key: C\nchords: [C]\ntempo: 3\n",
		"bad key":       "key: H\nchords: [C]\n",
		"bad chord":     "key: C\nchords: [Cfoo]\n",
		"negative bpm":  "key: C\nbpm: -1\nchords: [C]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	want, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFormatChord(t *testing.T) {
	c := theory.Chord{Root: theory.F, Seventh: theory.Maj7, Duration: 1.5}
	assert.Equal(t, "Fmaj7:1.5", FormatChord(c))
	assert.Equal(t, "Fmaj7", FormatChord(c.WithDuration(theory.DefaultDuration)))
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		p, err := Preset(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Chords, name)
	}

	p, err := Preset("II-V-I")
	require.NoError(t, err)
	assert.Equal(t, "Dm7", p.Chords[0].Symbol())

	_, err = Preset("nope")
	assert.ErrorContains(t, err, "ii-v-i")
}

type noteEvent struct {
	tick uint64
	key  uint8
	on   bool
}

func readNotes(t *testing.T, track smf.Track) []noteEvent {
	t.Helper()
	var out []noteEvent
	var abs uint64
	for _, ev := range track {
		abs += uint64(ev.Delta)
		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			out = append(out, noteEvent{abs, key, true})
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			out = append(out, noteEvent{abs, key, false})
		}
	}
	return out
}

func TestExportSMF(t *testing.T) {
	chords := []theory.Chord{
		{Root: theory.C, Duration: 4},
		{Root: theory.G, Duration: 2},
	}
	table := playback.NewTimetable(chords, 120)

	var buf bytes.Buffer
	require.NoError(t, ExportSMF(&buf, table, ExportOptions{}))

	sm, err := smf.ReadFrom(&buf)
	require.NoError(t, err)
	require.Len(t, sm.Tracks, 2)

	tempos := sm.TempoChanges()
	require.NotEmpty(t, tempos)
	assert.InDelta(t, 120.0, tempos[0].BPM, 0.01)

	notes := readNotes(t, sm.Tracks[1])
	want := []noteEvent{
		{0, 60, true}, {0, 64, true}, {0, 67, true},
		{3840, 60, false}, {3840, 64, false}, {3840, 67, false},
		{3840, 67, true}, {3840, 71, true}, {3840, 74, true},
		{5760, 67, false}, {5760, 71, false}, {5760, 74, false},
	}
	assert.Equal(t, want, notes)
}

func TestExportSMFMetronome(t *testing.T) {
	table := playback.NewTimetable([]theory.Chord{{Root: theory.C, Duration: 6}}, 100)

	var buf bytes.Buffer
	require.NoError(t, ExportSMF(&buf, table, ExportOptions{TimeSignature: 3, Metronome: true}))

	sm, err := smf.ReadFrom(&buf)
	require.NoError(t, err)
	require.Len(t, sm.Tracks, 3)

	var onsets []noteEvent
	for _, n := range readNotes(t, sm.Tracks[2]) {
		if n.on {
			onsets = append(onsets, n)
		}
	}
	require.Len(t, onsets, 6)
	assert.Equal(t, uint8(84), onsets[0].key)
	assert.Equal(t, uint8(79), onsets[1].key)
	assert.Equal(t, uint8(84), onsets[3].key)
	assert.Equal(t, uint64(5*ticksPerQuarterNote), onsets[5].tick)
}
