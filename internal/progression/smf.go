package progression

import (
	"fmt"
	"io"
	"math"

	"github.com/icco/chromachord/internal/playback"
	"github.com/icco/chromachord/internal/theory"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarterNote = 960 // Standard MIDI resolution
	chordChannel        = 0
	clickChannel        = 9
	chordVelocity       = 96
	clickTicks          = ticksPerQuarterNote / 8
)

// ExportOptions controls how a timetable is rendered to a MIDI file.
type ExportOptions struct {
	TimeSignature int
	Octave        int
	// Metronome adds a percussion track with one click per beat.
	Metronome bool
}

// ExportSMF writes table as a Standard MIDI File: a tempo track, a chord
// track and optionally a click track.
func ExportSMF(w io.Writer, table playback.Timetable, opts ExportOptions) error {
	if opts.TimeSignature <= 0 {
		opts.TimeSignature = playback.DefaultTimeSignature
	}
	if opts.Octave == 0 {
		opts.Octave = theory.DefaultOctave
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	// Track 0: Tempo track
	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(uint8(opts.TimeSignature), 4)) //nolint:gosec // validated by config
	track0.Add(0, smf.MetaTempo(float64(table.BPM)))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	if err := sm.Add(chordTrack(table, opts.Octave)); err != nil {
		return fmt.Errorf("error adding chord track: %w", err)
	}

	if opts.Metronome {
		track, err := clickTrack(table.TotalBeats, opts.TimeSignature)
		if err != nil {
			return err
		}
		if err := sm.Add(track); err != nil {
			return fmt.Errorf("error adding click track: %w", err)
		}
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

func chordTrack(table playback.Timetable, octave int) smf.Track {
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("chords"))

	var lastTick uint32
	var beat float64
	for _, ev := range table.Events {
		start := beatsToTicks(beat)
		beat += ev.Chord.Duration
		end := beatsToTicks(beat)

		keys := midiKeys(ev.Chord.MIDINotes(octave))
		for _, key := range keys {
			track.Add(start-lastTick, midi.NoteOn(chordChannel, key, chordVelocity))
			lastTick = start
		}
		for _, key := range keys {
			track.Add(end-lastTick, midi.NoteOff(chordChannel, key))
			lastTick = end
		}
	}
	endTick := beatsToTicks(table.TotalBeats)
	if lastTick < endTick {
		track.Close(endTick - lastTick)
	} else {
		track.Close(0)
	}
	return track
}

func clickTrack(totalBeats float64, timeSignature int) (smf.Track, error) {
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("metronome"))

	down, err := clickKey(playback.DownbeatNote)
	if err != nil {
		return nil, err
	}
	up, err := clickKey(playback.BeatNote)
	if err != nil {
		return nil, err
	}

	var lastTick uint32
	for beat := 0; float64(beat) < totalBeats; beat++ {
		key, vel := up, velocity(playback.BeatVelocity)
		if beat%timeSignature == 0 {
			key, vel = down, velocity(playback.DownbeatVelocity)
		}
		start := uint32(beat) * ticksPerQuarterNote //nolint:gosec // beat is non-negative
		track.Add(start-lastTick, midi.NoteOn(clickChannel, key, vel))
		track.Add(clickTicks, midi.NoteOff(clickChannel, key))
		lastTick = start + clickTicks
	}
	track.Close(0)
	return track, nil
}

func clickKey(name string) (uint8, error) {
	n, octave, err := theory.ParseNoteName(name)
	if err != nil {
		return 0, fmt.Errorf("invalid click note: %w", err)
	}
	return uint8(theory.MIDINumber(n, octave)), nil //nolint:gosec // constant in range
}

// midiKeys drops keys outside the MIDI range.
func midiKeys(keys []int) []uint8 {
	out := make([]uint8, 0, len(keys))
	for _, k := range keys {
		if k >= 0 && k <= 127 {
			out = append(out, uint8(k))
		}
	}
	return out
}

func beatsToTicks(beats float64) uint32 {
	return uint32(math.Round(beats * ticksPerQuarterNote))
}

func velocity(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 127))
}
