// Package playback schedules chord progressions against a transport clock,
// driving an audio output, UI callbacks and a metronome in step.
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/icco/chromachord/internal/theory"
	"github.com/sirupsen/logrus"
)

// ErrInitialization is wrapped around audio backend start-up failures.
// Cancellation of the context passed to Play is returned unwrapped.
var ErrInitialization = errors.New("audio initialization failed")

// Output is the audio capability the player drives. Initialize must be
// idempotent and succeed before the first TriggerNotes.
type Output interface {
	Initialize(ctx context.Context) error
	TriggerNotes(notes []string, duration time.Duration)
	ReleaseAll()
}

// Clicker is implemented by outputs that can sound metronome clicks.
type Clicker interface {
	Click(note string, velocity float64, duration time.Duration)
}

// State is the player's position in its lifecycle. Stopped and Completed
// are reported through OnEnd; the player itself returns to Idle.
type State int

const (
	Idle State = iota
	Scheduled
	Running
	Stopped
	Completed
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// NoChord is passed to OnChordIndexChange when nothing is playing.
const NoChord = -1

// Callbacks are invoked with the player's lock held and must not call back
// into the player.
type Callbacks struct {
	OnChordIndexChange func(index int)
	OnPositionChange   func(beats float64)
	OnEnd              func(reason State)
}

// Options configures a Player. Zero values select defaults; a nil Clock
// uses the wall clock.
type Options struct {
	Clock         clock.Clock
	Logger        logrus.FieldLogger
	TickInterval  time.Duration
	FrameInterval time.Duration
	TimeSignature int
	Metronome     bool
	Octave        int
	Callbacks     Callbacks
}

const (
	defaultTickInterval  = 5 * time.Millisecond
	defaultFrameInterval = time.Second / 60
)

// Player owns an Output and at most one active playback session.
type Player struct {
	mu            sync.Mutex
	out           Output
	clicker       Clicker
	clock         clock.Clock
	log           logrus.FieldLogger
	tick          time.Duration
	frame         time.Duration
	octave        int
	callbacks     Callbacks
	timeSignature int
	metronome     bool
	state         State
	session       *session
}

type session struct {
	id        string
	table     Timetable
	start     time.Time
	cursor    int
	metronome *Metronome
	stops     []func()
	log       logrus.FieldLogger
}

// NewPlayer creates an idle player that takes ownership of out.
func NewPlayer(out Output, opts Options) *Player {
	p := &Player{
		out:           out,
		clock:         opts.Clock,
		log:           opts.Logger,
		tick:          opts.TickInterval,
		frame:         opts.FrameInterval,
		octave:        opts.Octave,
		callbacks:     opts.Callbacks,
		timeSignature: opts.TimeSignature,
		metronome:     opts.Metronome,
	}
	if c, ok := out.(Clicker); ok {
		p.clicker = c
	}
	if p.clock == nil {
		p.clock = clock.New()
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	if p.tick <= 0 {
		p.tick = defaultTickInterval
	}
	if p.frame <= 0 {
		p.frame = defaultFrameInterval
	}
	if p.octave == 0 {
		p.octave = theory.DefaultOctave
	}
	if p.timeSignature <= 0 {
		p.timeSignature = DefaultTimeSignature
	}
	return p
}

// Play starts chords at bpm, replacing any running session. An empty
// progression is ignored. bpm and chord durations must be positive.
func (p *Player) Play(ctx context.Context, chords []theory.Chord, bpm int) error {
	if len(chords) == 0 {
		p.log.Debug("play ignored: empty progression")
		return nil
	}
	if err := p.out.Initialize(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		p.log.WithError(err).Error("audio initialization failed")
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		p.endLocked(Stopped)
	}

	p.state = Scheduled
	s := &session{
		id:        uuid.NewString(),
		table:     NewTimetable(chords, bpm),
		metronome: NewMetronome(bpm, p.timeSignature),
	}
	s.log = p.log.WithField("session", s.id)
	p.session = s

	s.start = p.clock.Now()
	s.stops = append(s.stops,
		every(p.clock, p.tick, func() { p.poll(s) }),
		every(p.clock, p.frame, func() { p.updatePosition(s) }),
	)
	p.state = Running

	s.log.WithFields(logrus.Fields{
		"chords":    len(chords),
		"bpm":       bpm,
		"duration":  s.table.Total.String(),
		"metronome": p.metronome,
	}).Info("playback started")
	return nil
}

// Stop cancels the running session. It is a no-op when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return
	}
	p.endLocked(Stopped)
}

// SetMetronome turns the metronome on or off, including mid-playback.
func (p *Player) SetMetronome(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enabled && !p.metronome && p.session != nil {
		p.session.metronome.Rearm(p.clock.Now().Sub(p.session.start))
	}
	p.metronome = enabled
}

// Metronome reports whether the metronome is enabled.
func (p *Player) Metronome() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metronome
}

// SetTimeSignature sets the beats per measure used for downbeats.
func (p *Player) SetTimeSignature(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= 0 {
		return
	}
	p.timeSignature = n
	if p.session != nil {
		p.session.metronome.SetTimeSignature(n)
	}
}

// State returns Idle, Scheduled or Running.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns the number of scheduled callbacks that have not fired,
// counting the completion event.
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return 0
	}
	return len(p.session.table.Events) - p.session.cursor + 1
}

// Position returns the current beat position, or 0 when idle.
func (p *Player) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return 0
	}
	return p.session.table.BeatsAt(p.clock.Now().Sub(p.session.start))
}

// Close stops playback and releases the output.
func (p *Player) Close() error {
	p.Stop()
	if c, ok := p.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// poll fires every event due by now, then the metronome, then completion.
func (p *Player) poll(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != s {
		return
	}
	elapsed := p.clock.Now().Sub(s.start)

	for s.cursor < len(s.table.Events) && s.table.Events[s.cursor].Time <= elapsed {
		p.fireLocked(s, s.table.Events[s.cursor])
		s.cursor++
	}

	if p.metronome && p.clicker != nil {
		s.metronome.Advance(elapsed, s.table.Total, func(beat int, downbeat bool) {
			if downbeat {
				p.clicker.Click(DownbeatNote, DownbeatVelocity, ClickDuration)
			} else {
				p.clicker.Click(BeatNote, BeatVelocity, ClickDuration)
			}
		})
	}

	if elapsed >= s.table.Total {
		p.endLocked(Completed)
	}
}

func (p *Player) fireLocked(s *session, ev Event) {
	notes := ev.Chord.NoteNames(p.octave)
	p.out.TriggerNotes(notes, s.table.ChordDuration(ev))
	if p.callbacks.OnChordIndexChange != nil {
		p.callbacks.OnChordIndexChange(ev.ChordIndex)
	}
	s.log.WithFields(logrus.Fields{
		"index": ev.ChordIndex,
		"chord": ev.Chord.Symbol(),
		"at":    ev.Time.String(),
	}).Debug("chord triggered")
}

func (p *Player) updatePosition(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != s || p.callbacks.OnPositionChange == nil {
		return
	}
	p.callbacks.OnPositionChange(s.table.BeatsAt(p.clock.Now().Sub(s.start)))
}

// endLocked tears down the active session and reports reason.
func (p *Player) endLocked(reason State) {
	s := p.session
	for _, stop := range s.stops {
		stop()
	}
	p.session = nil
	p.state = Idle
	p.out.ReleaseAll()

	if p.callbacks.OnChordIndexChange != nil {
		p.callbacks.OnChordIndexChange(NoChord)
	}
	if p.callbacks.OnPositionChange != nil {
		p.callbacks.OnPositionChange(0)
	}
	if p.callbacks.OnEnd != nil {
		p.callbacks.OnEnd(reason)
	}
	s.log.WithField("reason", reason.String()).Info("playback ended")
}
