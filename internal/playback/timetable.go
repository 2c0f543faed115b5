package playback

import (
	"time"

	"github.com/icco/chromachord/internal/theory"
)

// Event is one chord onset in a timetable.
type Event struct {
	Time       time.Duration
	ChordIndex int
	Chord      theory.Chord
}

// Timetable is the immutable schedule of one playback.
type Timetable struct {
	BPM        int
	Events     []Event
	TotalBeats float64
	// Total is when the completion event fires.
	Total time.Duration
}

// BeatsToDuration converts beats to wall time at bpm. bpm must be positive.
func BeatsToDuration(beats float64, bpm int) time.Duration {
	return time.Duration(beats * 60 / float64(bpm) * float64(time.Second))
}

// NewTimetable places each chord at its cumulative beat position.
func NewTimetable(chords []theory.Chord, bpm int) Timetable {
	t := Timetable{BPM: bpm, Events: make([]Event, 0, len(chords))}
	var beat float64
	for i, c := range chords {
		t.Events = append(t.Events, Event{
			Time:       BeatsToDuration(beat, bpm),
			ChordIndex: i,
			Chord:      c,
		})
		beat += c.Duration
	}
	t.TotalBeats = beat
	t.Total = BeatsToDuration(beat, bpm)
	return t
}

// ChordDuration returns how long the chord of ev sounds.
func (t Timetable) ChordDuration(ev Event) time.Duration {
	return BeatsToDuration(ev.Chord.Duration, t.BPM)
}

// BeatsAt converts elapsed time to a beat position, capped at the end.
func (t Timetable) BeatsAt(elapsed time.Duration) float64 {
	beats := elapsed.Seconds() * float64(t.BPM) / 60
	if beats > t.TotalBeats {
		return t.TotalBeats
	}
	if beats < 0 {
		return 0
	}
	return beats
}
