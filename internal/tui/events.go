package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/chromachord/internal/playback"
)

// maxQueued bounds the event queue.
const maxQueued = 256

// chordIndexMsg reports the chord now sounding, or playback.NoChord.
type chordIndexMsg int

// positionMsg reports the transport position in beats.
type positionMsg float64

// endedMsg reports why playback finished.
type endedMsg playback.State

// Events carries playback callbacks into the bubbletea loop. The player
// invokes callbacks under its lock, so they never block: consecutive
// position updates collapse into the latest, and once the queue is full
// chord changes collapse into the newest queued one.
type Events struct {
	mu     sync.Mutex
	queue  []tea.Msg
	notify chan struct{}
}

// NewEvents creates an event queue.
func NewEvents() *Events {
	return &Events{notify: make(chan struct{}, 1)}
}

// Callbacks returns the playback callbacks that feed this queue.
func (e *Events) Callbacks() playback.Callbacks {
	return playback.Callbacks{
		OnChordIndexChange: func(i int) { e.push(chordIndexMsg(i)) },
		OnPositionChange:   func(beats float64) { e.push(positionMsg(beats)) },
		OnEnd:              func(reason playback.State) { e.push(endedMsg(reason)) },
	}
}

func (e *Events) push(msg tea.Msg) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.queue)
	switch msg.(type) {
	case positionMsg:
		if n > 0 {
			if _, ok := e.queue[n-1].(positionMsg); ok {
				e.queue[n-1] = msg
				return
			}
		}
		if n >= maxQueued {
			return
		}
	case chordIndexMsg:
		if n >= maxQueued {
			for i := n - 1; i >= 0; i-- {
				if _, ok := e.queue[i].(chordIndexMsg); ok {
					e.queue[i] = msg
					return
				}
			}
		}
	}
	e.queue = append(e.queue, msg)

	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *Events) pop() (tea.Msg, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return nil, false
	}
	msg := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	return msg, true
}

func (e *Events) queued() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Listen waits for the next playback event.
func (e *Events) Listen() tea.Cmd {
	return func() tea.Msg {
		for {
			if msg, ok := e.pop(); ok {
				return msg
			}
			<-e.notify
		}
	}
}
