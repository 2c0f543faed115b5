// Package audio provides the sound outputs a chord progression can be played
// through: a built-in synthesizer, a MIDI port and a silent sink.
package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/icco/chromachord/internal/theory"
	"github.com/sirupsen/logrus"
)

const (
	sampleRate   = 44100
	channelCount = 2 // stereo
	bitDepth     = 2 // 16-bit
)

// Voice channels. Clicks use the General MIDI percussion channel.
const (
	chordChannel = 0
	clickChannel = 9
)

// chordVelocity is the MIDI velocity chords are triggered with.
const chordVelocity = 96

// WaveType represents different oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

// Voice represents a single playing note
type Voice struct {
	note      uint8
	channel   uint8
	velocity  uint8
	frequency float64
	phase     float64
	envelope  float64 // 0-1 for ADSR envelope
	remaining int     // samples left before release
	releasing bool
	active    bool
}

// Synth is a polyphonic synthesizer. Notes are timed: each voice releases
// itself after its duration, so callers never send note-offs.
type Synth struct {
	mu           sync.Mutex
	initMu       sync.Mutex
	otoCtx       *oto.Context
	ready        <-chan struct{}
	player       *oto.Player
	voices       []*Voice
	maxVoices    int
	masterVolume float64
	waveTypes    [16]WaveType // wave type per channel
	log          logrus.FieldLogger
}

// NewSynth creates a synthesizer. No audio device is opened until Initialize.
func NewSynth(log logrus.FieldLogger) *Synth {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Synth{
		maxVoices:    64,
		masterVolume: 0.3,
		log:          log,
	}
	for i := range s.waveTypes {
		s.waveTypes[i] = WaveTriangle
	}
	s.waveTypes[clickChannel] = WaveSquare
	return s
}

// Initialize opens the audio device and starts the stream. It is safe to
// call repeatedly; after a failure the next call tries again.
func (s *Synth) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.player != nil {
		return nil
	}

	if s.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		otoCtx, ready, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("failed to create audio context: %w", err)
		}
		s.otoCtx = otoCtx
		s.ready = ready
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
	}
	if err := s.otoCtx.Err(); err != nil {
		return fmt.Errorf("audio context: %w", err)
	}

	// Start the audio stream
	s.player = s.otoCtx.NewPlayer(&synthReader{synth: s})
	s.player.Play()
	s.log.WithField("sample_rate", sampleRate).Debug("audio stream started")
	return nil
}

// synthReader implements io.Reader for continuous audio generation
type synthReader struct {
	synth *Synth
}

func (r *synthReader) Read(buf []byte) (int, error) {
	r.synth.render(buf)
	return len(buf), nil
}

// render fills buf with interleaved 16-bit stereo samples.
func (s *Synth) render(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	numSamples := len(buf) / (channelCount * bitDepth)

	for i := 0; i < numSamples; i++ {
		var sample float64

		// Mix all active voices
		for _, v := range s.voices {
			if v == nil || !v.active {
				continue
			}

			oscSample := generateWave(s.waveTypes[v.channel%16], v.phase)

			velocityScale := float64(v.velocity) / 127.0
			sample += oscSample * velocityScale * v.envelope * 0.2

			v.phase += v.frequency / sampleRate
			if v.phase >= 1.0 {
				v.phase -= 1.0
			}

			if !v.releasing {
				v.remaining--
				if v.remaining <= 0 {
					v.releasing = true
				}
			}

			// Update envelope
			if v.releasing {
				// Release phase - exponential decay
				v.envelope *= 0.9995
				if v.envelope < 0.001 {
					v.active = false
				}
			} else if v.envelope < 1.0 {
				// Attack phase
				v.envelope += 0.001
				if v.envelope > 1.0 {
					v.envelope = 1.0
				}
			}
		}

		// Apply master volume and clip
		sample *= s.masterVolume
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		sampleInt := int16(sample * 32767)

		// Write stereo samples (same for L and R)
		idx := i * channelCount * bitDepth
		buf[idx] = byte(sampleInt)
		buf[idx+1] = byte(sampleInt >> 8)
		buf[idx+2] = byte(sampleInt)
		buf[idx+3] = byte(sampleInt >> 8)
	}
}

func generateWave(waveType WaveType, phase float64) float64 {
	switch waveType {
	case WaveSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveSquare:
		if phase < 0.5 {
			return 0.8
		}
		return -0.8
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// TriggerNotes sounds every note, e.g. "E4", for d. Unparseable names are
// logged and skipped.
func (s *Synth) TriggerNotes(notes []string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range notes {
		key, err := midiKey(name)
		if err != nil {
			s.log.WithError(err).Warn("skipping note")
			continue
		}
		s.noteOnLocked(chordChannel, key, chordVelocity, durationToSamples(d))
	}
}

// Click sounds a short percussive note on the click channel. velocity is
// in [0, 1].
func (s *Synth) Click(note string, velocity float64, d time.Duration) {
	key, err := midiKey(note)
	if err != nil {
		s.log.WithError(err).Warn("skipping click")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteOnLocked(clickChannel, key, uint8(math.Round(clampUnit(velocity)*127)), durationToSamples(d))
}

func (s *Synth) noteOnLocked(channel, note, velocity uint8, samples int) {
	if velocity == 0 || samples <= 0 {
		return
	}

	// Find an inactive voice or steal the oldest one
	var voice *Voice
	for _, v := range s.voices {
		if v != nil && !v.active {
			voice = v
			break
		}
	}

	if voice == nil {
		if len(s.voices) < s.maxVoices {
			voice = &Voice{}
			s.voices = append(s.voices, voice)
		} else {
			voice = s.voices[0]
			s.voices = append(s.voices[1:], voice)
		}
	}

	voice.note = note
	voice.channel = channel
	voice.velocity = velocity
	voice.frequency = midiNoteToFreq(note)
	voice.phase = 0
	voice.envelope = 0
	voice.remaining = samples
	voice.releasing = false
	voice.active = true
}

// ReleaseAll moves every sounding voice into its release phase.
func (s *Synth) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.voices {
		if v != nil && v.active {
			v.releasing = true
		}
	}
}

// SetVolume sets the master volume (0.0 - 1.0)
func (s *Synth) SetVolume(vol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masterVolume = clampUnit(vol)
}

// Close releases all voices and pauses the stream.
func (s *Synth) Close() error {
	s.ReleaseAll()

	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.player != nil {
		s.player.Pause()
		s.player = nil
	}
	return nil
}

// activeVoices counts voices still producing sound.
func (s *Synth) activeVoices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.voices {
		if v != nil && v.active {
			n++
		}
	}
	return n
}

func midiKey(name string) (uint8, error) {
	n, octave, err := theory.ParseNoteName(name)
	if err != nil {
		return 0, err
	}
	key := theory.MIDINumber(n, octave)
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("note %q outside MIDI range", name)
	}
	return uint8(key), nil
}

func durationToSamples(d time.Duration) int {
	return int(d.Seconds() * sampleRate)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// midiNoteToFreq converts a MIDI note number to frequency in Hz
func midiNoteToFreq(note uint8) float64 {
	// A4 (note 69) = 440 Hz
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}
