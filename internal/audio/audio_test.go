package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func TestMidiNoteToFreq(t *testing.T) {
	assert.InDelta(t, 440.0, midiNoteToFreq(69), 1e-9)
	assert.InDelta(t, 880.0, midiNoteToFreq(81), 1e-9)
	assert.InDelta(t, 261.6256, midiNoteToFreq(60), 1e-3)
}

func TestMidiKey(t *testing.T) {
	key, err := midiKey("C4")
	require.NoError(t, err)
	assert.Equal(t, uint8(60), key)

	key, err = midiKey("G5")
	require.NoError(t, err)
	assert.Equal(t, uint8(79), key)

	_, err = midiKey("C10")
	assert.Error(t, err)
	_, err = midiKey("nope")
	assert.Error(t, err)
}

func TestGenerateWave(t *testing.T) {
	assert.InDelta(t, 0, generateWave(WaveSine, 0), 1e-9)
	assert.InDelta(t, 1, generateWave(WaveSine, 0.25), 1e-9)
	assert.Equal(t, 0.8, generateWave(WaveSquare, 0.1))
	assert.Equal(t, -0.8, generateWave(WaveSquare, 0.6))
	assert.Equal(t, -1.0, generateWave(WaveSawtooth, 0))
	assert.Equal(t, 1.0, generateWave(WaveTriangle, 0.5))
}

func TestSynthTimedVoices(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s := NewSynth(logger)

	s.TriggerNotes([]string{"C4", "E4", "bogus", "G4"}, 10*time.Millisecond)
	assert.Equal(t, 3, s.activeVoices())
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)

	// Rendering produces sound while the notes are held.
	buf := make([]byte, 4*256)
	s.render(buf)
	assert.NotEqual(t, make([]byte, len(buf)), buf)

	// After the hold and the release tail every voice has finished.
	tail := make([]byte, 4*sampleRate)
	s.render(tail)
	assert.Equal(t, 0, s.activeVoices())
}

func TestSynthReleaseAll(t *testing.T) {
	s := NewSynth(nil)
	s.TriggerNotes([]string{"A4"}, time.Hour)
	s.Click("C6", 1, 50*time.Millisecond)
	assert.Equal(t, 2, s.activeVoices())

	s.ReleaseAll()
	for _, v := range s.voices {
		assert.True(t, v.releasing)
	}
	assert.Equal(t, uint8(clickChannel), s.voices[1].channel)
	assert.Equal(t, uint8(127), s.voices[1].velocity)
}

func TestSynthVoiceStealing(t *testing.T) {
	s := NewSynth(nil)
	s.maxVoices = 2
	s.TriggerNotes([]string{"C4", "D4"}, time.Second)
	s.TriggerNotes([]string{"E4"}, time.Second)

	require.Len(t, s.voices, 2)
	assert.Equal(t, uint8(62), s.voices[0].note)
	assert.Equal(t, uint8(64), s.voices[1].note)
}

func TestSynthIgnoresZeroDuration(t *testing.T) {
	s := NewSynth(nil)
	s.TriggerNotes([]string{"C4"}, 0)
	s.Click("C6", 0, time.Second)
	assert.Equal(t, 0, s.activeVoices())
}

type sentLog struct {
	mu   sync.Mutex
	msgs []midi.Message
}

func (l *sentLog) send(msg midi.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
	return nil
}

func (l *sentLog) snapshot() []midi.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]midi.Message(nil), l.msgs...)
}

func newTestMIDIOut() (*MIDIOut, *sentLog) {
	sent := &sentLog{}
	o := NewMIDIOut("test", nil)
	o.send = sent.send
	return o, sent
}

func TestMIDIOutNoteOffAfterDuration(t *testing.T) {
	o, sent := newTestMIDIOut()
	o.TriggerNotes([]string{"C4", "E4"}, 5*time.Millisecond)

	msgs := sent.snapshot()
	require.Len(t, msgs, 2)
	var ch, key, vel uint8
	require.True(t, msgs[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(chordChannel), ch)
	assert.Equal(t, uint8(60), key)
	assert.Equal(t, uint8(chordVelocity), vel)

	assert.Eventually(t, func() bool { return len(sent.snapshot()) == 4 }, time.Second, time.Millisecond)
	require.True(t, sent.snapshot()[3].GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint8(64), key)
}

func TestMIDIOutReleaseAll(t *testing.T) {
	o, sent := newTestMIDIOut()
	o.TriggerNotes([]string{"A4"}, time.Hour)
	o.Click("C6", 1, time.Hour)
	o.ReleaseAll()

	msgs := sent.snapshot()
	// 2 note-ons, 2 note-offs, 2 all-notes-off.
	require.Len(t, msgs, 6)
	var ch, ctl, val uint8
	require.True(t, msgs[4].GetControlChange(&ch, &ctl, &val))
	assert.Equal(t, uint8(ccAllNotesOff), ctl)
	assert.Empty(t, o.timers)

	// Cancelled timers never fire.
	time.Sleep(5 * time.Millisecond)
	assert.Len(t, sent.snapshot(), 6)
}

func TestMIDIOutOverlappingNotes(t *testing.T) {
	o, sent := newTestMIDIOut()
	o.TriggerNotes([]string{"C4"}, time.Hour)
	o.TriggerNotes([]string{"C4"}, time.Hour)

	o.mu.Lock()
	o.releaseLocked(heldNote{chordChannel, 60})
	o.mu.Unlock()
	assert.Len(t, sent.snapshot(), 2, "still held by the second trigger")

	o.mu.Lock()
	o.releaseLocked(heldNote{chordChannel, 60})
	o.mu.Unlock()
	assert.Len(t, sent.snapshot(), 3)
	o.ReleaseAll()
}

func TestMIDIOutBeforeInitialize(t *testing.T) {
	o := NewMIDIOut("test", nil)
	o.TriggerNotes([]string{"C4"}, time.Millisecond)
	o.ReleaseAll()
	assert.Empty(t, o.timers)
	require.NoError(t, o.Close())
}

type stubPort struct {
	openErr error
	closed  bool
}

func (p *stubPort) Open() error { return p.openErr }
func (p *stubPort) Close() error { p.closed = true; return nil }
func (p *stubPort) IsOpen() bool { return false }
func (p *stubPort) Number() int { return 0 }
func (p *stubPort) String() string { return "stub" }
func (p *stubPort) Underlying() interface{} { return nil }
func (p *stubPort) Send([]byte) error { return nil }

func TestMIDIOutClosesPortWhenConnectFails(t *testing.T) {
	port := &stubPort{openErr: errors.New("device busy")}
	o := NewMIDIOut("stub", nil)
	o.open = func() (drivers.Out, error) { return port, nil }

	err := o.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, port.openErr)
	assert.True(t, port.closed)
	assert.Nil(t, o.port)
	assert.Nil(t, o.send)

	// A later attempt reopens.
	port.openErr, port.closed = nil, false
	require.NoError(t, o.Initialize(context.Background()))
	assert.Equal(t, drivers.Out(port), o.port)
	require.NoError(t, o.Close())
	assert.True(t, port.closed)
}

type stubOutput struct {
	initErr  error
	triggers int
	releases int
	clicks   int
	closed   bool
}

func (s *stubOutput) Initialize(context.Context) error { return s.initErr }
func (s *stubOutput) TriggerNotes([]string, time.Duration) { s.triggers++ }
func (s *stubOutput) ReleaseAll() { s.releases++ }
func (s *stubOutput) Click(string, float64, time.Duration) { s.clicks++ }
func (s *stubOutput) Close() error { s.closed = true; return nil }

func TestMulti(t *testing.T) {
	a := &stubOutput{}
	b := &stubOutput{initErr: errors.New("no port")}
	m := Multi{a, b, Silent{}}

	err := m.Initialize(context.Background())
	assert.ErrorIs(t, err, b.initErr)

	m.TriggerNotes([]string{"C4"}, time.Second)
	m.Click("C6", 1, time.Second)
	m.ReleaseAll()
	require.NoError(t, m.Close())

	for _, s := range []*stubOutput{a, b} {
		assert.Equal(t, 1, s.triggers)
		assert.Equal(t, 1, s.clicks)
		assert.Equal(t, 1, s.releases)
		assert.True(t, s.closed)
	}
}
