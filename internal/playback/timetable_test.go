package playback

import (
	"testing"
	"time"

	"github.com/icco/chromachord/internal/theory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimetable(t *testing.T) {
	chords := []theory.Chord{
		{Root: theory.C, Duration: 4},
		{Root: theory.G, Seventh: theory.Dom7, Duration: 4},
	}
	table := NewTimetable(chords, 120)

	require.Len(t, table.Events, 2)
	assert.Equal(t, time.Duration(0), table.Events[0].Time)
	assert.Equal(t, 2*time.Second, table.Events[1].Time)
	assert.Equal(t, 1, table.Events[1].ChordIndex)
	assert.Equal(t, 4*time.Second, table.Total)
	assert.Equal(t, 8.0, table.TotalBeats)
	assert.Equal(t, 2*time.Second, table.ChordDuration(table.Events[0]))
}

func TestNewTimetableUnevenDurations(t *testing.T) {
	chords := []theory.Chord{
		{Root: theory.D, Quality: theory.QualityMinor, Duration: 2},
		{Root: theory.G, Duration: 1},
		{Root: theory.C, Duration: 3},
	}
	table := NewTimetable(chords, 60)

	var times []time.Duration
	for _, ev := range table.Events {
		times = append(times, ev.Time)
	}
	assert.Equal(t, []time.Duration{0, 2 * time.Second, 3 * time.Second}, times)
	assert.Equal(t, 6*time.Second, table.Total)
}

func TestBeatsAt(t *testing.T) {
	table := NewTimetable([]theory.Chord{{Root: theory.C, Duration: 4}}, 120)
	assert.Equal(t, 0.0, table.BeatsAt(-time.Second))
	assert.InDelta(t, 1.0, table.BeatsAt(500*time.Millisecond), 1e-9)
	assert.InDelta(t, 3.0, table.BeatsAt(1500*time.Millisecond), 1e-9)
	assert.Equal(t, 4.0, table.BeatsAt(time.Minute))
}

func TestMetronomeAdvance(t *testing.T) {
	m := NewMetronome(120, 3)
	assert.Equal(t, 500*time.Millisecond, m.Interval())

	var beats []int
	var downbeats []bool
	tick := func(beat int, downbeat bool) {
		beats = append(beats, beat)
		downbeats = append(downbeats, downbeat)
	}

	m.Advance(1200*time.Millisecond, 3*time.Second, tick)
	assert.Equal(t, []int{0, 1, 2}, beats)

	// Nothing new until the next beat is due.
	m.Advance(1400*time.Millisecond, 3*time.Second, tick)
	assert.Len(t, beats, 3)

	// The limit itself is excluded.
	m.Advance(time.Hour, 3*time.Second, tick)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, beats)
	assert.Equal(t, []bool{true, false, false, true, false, false}, downbeats)
}

func TestMetronomeRearm(t *testing.T) {
	m := NewMetronome(120, 4)
	m.Rearm(1250 * time.Millisecond)

	var beats []int
	m.Advance(1250*time.Millisecond, time.Minute, func(beat int, _ bool) { beats = append(beats, beat) })
	assert.Empty(t, beats)

	m.Advance(2*time.Second, time.Minute, func(beat int, _ bool) { beats = append(beats, beat) })
	assert.Equal(t, []int{3, 4}, beats)

	// A beat landing exactly on the rearm time is kept.
	m.Rearm(2500 * time.Millisecond)
	beats = nil
	m.Advance(2500*time.Millisecond, time.Minute, func(beat int, _ bool) { beats = append(beats, beat) })
	assert.Equal(t, []int{5}, beats)
}
