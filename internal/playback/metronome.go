package playback

import (
	"time"
)

// Metronome click voicing. Downbeats are higher and louder.
const (
	DownbeatNote     = "C6"
	DownbeatVelocity = 1.0
	BeatNote         = "G5"
	BeatVelocity     = 0.55
	ClickDuration    = 50 * time.Millisecond
)

// DefaultTimeSignature is the number of beats per measure.
const DefaultTimeSignature = 4

// Metronome is a sub-clock that ticks every quarter note of the transport.
type Metronome struct {
	interval      time.Duration
	timeSignature int
	next          int
}

// NewMetronome starts at beat 0.
func NewMetronome(bpm, timeSignature int) *Metronome {
	if timeSignature <= 0 {
		timeSignature = DefaultTimeSignature
	}
	return &Metronome{
		interval:      BeatsToDuration(1, bpm),
		timeSignature: timeSignature,
	}
}

// Interval is the time between ticks.
func (m *Metronome) Interval() time.Duration {
	return m.interval
}

// SetTimeSignature changes the downbeat spacing from the next tick on.
func (m *Metronome) SetTimeSignature(n int) {
	if n > 0 {
		m.timeSignature = n
	}
}

// Rearm skips any beats that passed while the metronome was off, so the
// next tick is the first beat at or after elapsed.
func (m *Metronome) Rearm(elapsed time.Duration) {
	next := int(elapsed / m.interval)
	if time.Duration(next)*m.interval < elapsed {
		next++
	}
	m.next = next
}

// Advance calls tick for every beat due by elapsed and before limit. beat
// counts from the start of the transport.
func (m *Metronome) Advance(elapsed, limit time.Duration, tick func(beat int, downbeat bool)) {
	for {
		at := time.Duration(m.next) * m.interval
		if at > elapsed || at >= limit {
			return
		}
		tick(m.next, m.next%m.timeSignature == 0)
		m.next++
	}
}
