// Package tui renders a chord progression as colour while it plays.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/icco/chromachord/internal/color"
	"github.com/icco/chromachord/internal/config"
	"github.com/icco/chromachord/internal/playback"
	"github.com/icco/chromachord/internal/theory"
)

const (
	fps        = 60
	bpmStep    = 5
	hueStep    = 30
	swatchSize = 44
)

// Controller is the part of playback.Player the view drives.
type Controller interface {
	Play(ctx context.Context, chords []theory.Chord, bpm int) error
	Stop()
	SetMetronome(enabled bool)
	Metronome() bool
	SetTimeSignature(n int)
}

// Options seeds the view from config and the loaded progression.
type Options struct {
	Title         string
	Key           theory.Key
	Chords        []theory.Chord
	BPM           int
	TimeSignature int
	Rotation      color.HueRotation
	ScaleType     theory.MinorScaleType
	Style         string
}

// frameMsg drives colour and marble animation.
type frameMsg time.Time

// playResultMsg carries the outcome of starting playback.
type playResultMsg struct {
	err error
}

// Model is the bubbletea model of the player screen.
type Model struct {
	ctrl   Controller
	events *Events
	now    func() time.Time

	title         string
	key           theory.Key
	chords        []theory.Chord
	palettes      []color.Palette
	bpm           int
	timeSignature int
	rotation      color.HueRotation
	scaleType     theory.MinorScaleType
	style         string
	metronome     bool
	showDiatonic  bool

	current   int
	position  float64
	playing   bool
	animating bool
	message   string
	err       error
	width     int

	swatch     *color.Transition
	spring     harmonica.Spring
	marble     float64
	marbleVel  float64
	marbleGoal float64
}

// New creates the player view. Playback events must be wired from
// events.Callbacks into the player that ctrl controls.
func New(ctrl Controller, events *Events, opts Options) *Model {
	m := &Model{
		ctrl:          ctrl,
		events:        events,
		now:           time.Now,
		title:         opts.Title,
		key:           opts.Key,
		chords:        opts.Chords,
		bpm:           opts.BPM,
		timeSignature: opts.TimeSignature,
		rotation:      opts.Rotation,
		scaleType:     opts.ScaleType,
		style:         opts.Style,
		current:       playback.NoChord,
		spring:        harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.7),
		marble:        1,
		marbleGoal:    1,
	}
	if m.style == "" {
		m.style = config.StyleMarble
	}
	m.metronome = ctrl.Metronome()
	m.derive()
	m.swatch = color.NewTransition(m.targetColor(), color.DefaultTransitionDuration)
	return m
}

func (m *Model) derive() {
	m.palettes = color.DeriveAll(m.chords, m.key, m.rotation)
}

// targetColor is the blend of the sounding chord, or the key colour when idle.
func (m *Model) targetColor() color.ColorHSL {
	if m.current >= 0 && m.current < len(m.palettes) {
		return m.palettes[m.current].Blend()
	}
	return color.KeyColor(m.key, m.rotation.For(m.key))
}

func (m *Model) targetMarble() float64 {
	if m.current >= 0 && m.current < len(m.palettes) {
		return m.palettes[m.current].MarbleRatio
	}
	return 1
}

func (m *Model) Init() tea.Cmd {
	return m.events.Listen()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case playResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.playing = false
			return m, nil
		}
		m.err = nil
		return m, nil

	case chordIndexMsg:
		m.current = int(msg)
		return m, tea.Batch(m.events.Listen(), m.retarget())

	case positionMsg:
		m.position = float64(msg)
		return m, m.events.Listen()

	case endedMsg:
		m.playing = false
		m.position = 0
		if playback.State(msg) == playback.Completed {
			m.message = "Finished"
		}
		return m, m.events.Listen()

	case frameMsg:
		return m, m.animate(time.Time(msg))
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Stop()
		return m, tea.Quit

	case "p", " ":
		if m.playing {
			m.ctrl.Stop()
			m.playing = false
			m.message = "Stopped"
			return m, nil
		}
		if len(m.chords) == 0 {
			m.message = "Nothing to play"
			return m, nil
		}
		m.playing = true
		m.message = ""
		return m, m.play()

	case "m":
		m.metronome = !m.metronome
		m.ctrl.SetMetronome(m.metronome)

	case "+", "=":
		m.setBPM(m.bpm + bpmStep)

	case "-", "_":
		m.setBPM(m.bpm - bpmStep)

	case "t":
		m.timeSignature++
		if m.timeSignature > config.MaxTimeSignature {
			m.timeSignature = config.MinTimeSignature
		}
		m.ctrl.SetTimeSignature(m.timeSignature)

	case "r":
		if m.key.Mode == theory.Minor {
			m.rotation.Minor = float64((int(m.rotation.Minor) + hueStep) % 360)
		} else {
			m.rotation.Major = float64((int(m.rotation.Major) + hueStep) % 360)
		}
		m.derive()
		return m, m.retarget()

	case "v":
		if m.style == config.StyleBars {
			m.style = config.StyleMarble
		} else {
			m.style = config.StyleBars
		}

	case "d":
		m.showDiatonic = !m.showDiatonic

	case "s":
		m.scaleType = (m.scaleType + 1) % 3
		m.showDiatonic = true
	}
	return m, nil
}

// setBPM takes effect from the next play; tempo is fixed within a run.
func (m *Model) setBPM(bpm int) {
	m.bpm = max(config.MinBPM, min(config.MaxBPM, bpm))
	if m.playing {
		m.message = fmt.Sprintf("Tempo %d applies from the next play", m.bpm)
	}
}

func (m *Model) play() tea.Cmd {
	chords, bpm := m.chords, m.bpm
	return func() tea.Msg {
		return playResultMsg{err: m.ctrl.Play(context.Background(), chords, bpm)}
	}
}

// retarget starts a colour transition and marble move toward the current
// chord and schedules frames until both settle.
func (m *Model) retarget() tea.Cmd {
	m.swatch.SetTarget(m.targetColor(), m.now())
	m.marbleGoal = m.targetMarble()
	if m.animating {
		return nil
	}
	m.animating = true
	return frame()
}

func (m *Model) animate(now time.Time) tea.Cmd {
	m.marble, m.marbleVel = m.spring.Update(m.marble, m.marbleVel, m.marbleGoal)
	settled := math.Abs(m.marble-m.marbleGoal) < 1e-3 && math.Abs(m.marbleVel) < 1e-3
	if settled {
		m.marble, m.marbleVel = m.marbleGoal, 0
	}
	if settled && m.swatch.Done(now) {
		m.animating = false
		return nil
	}
	return frame()
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) View() string {
	var b strings.Builder

	title := "chromachord"
	if m.title != "" {
		title += " · " + m.title
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	metronome := "off"
	if m.metronome {
		metronome = "on"
	}
	b.WriteString(fmt.Sprintf("Key: %s   BPM: %d   Time: %d/4   Metronome: %s\n\n",
		m.key, m.bpm, m.timeSignature, metronome))

	shown := m.swatch.At(m.now())
	b.WriteString(Swatch(shown, swatchSize, 3) + "\n")
	b.WriteString(subtleStyle.Render(shown.Hex()+"  "+shown.String()) + "\n\n")

	key := color.KeyColor(m.key, m.rotation.For(m.key))
	chord := key
	var particles []color.ParticleConfig
	if m.current >= 0 && m.current < len(m.palettes) {
		chord = m.palettes[m.current].ChordColor
		particles = m.palettes[m.current].Particles
	}
	if m.style == config.StyleBars {
		b.WriteString(renderBars(key, chord, m.marble, swatchSize) + "\n")
	} else {
		b.WriteString(renderMarble(key, chord, m.marble, swatchSize) + "\n")
	}
	b.WriteString(renderParticles(particles) + "\n\n")

	b.WriteString(renderChordStrip(m.chords, m.palettes, m.current) + "\n\n")

	totalBeats := 0.0
	for _, c := range m.chords {
		totalBeats += c.Duration
	}
	b.WriteString(renderClockBar(m.position, totalBeats, m.timeSignature, m.playing) + "\n")

	if m.showDiatonic {
		b.WriteString("\n" + renderDiatonic(m.key, m.scaleType, m.rotation) + "\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.message != "" {
		b.WriteString(subtleStyle.Render(m.message) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("p/space: play/stop • m: metronome • +/-: tempo • t: time signature"))
	b.WriteString("\n" + helpStyle.Render("r: rotate hue • v: marble/bars • d: diatonic chords • s: minor scale • q: quit"))

	return b.String()
}
