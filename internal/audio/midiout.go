package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// ccAllNotesOff is the channel-mode controller that silences a channel.
const ccAllNotesOff = 123

// MIDIOut plays chords on a MIDI output port, either an existing one or a
// virtual port other applications can connect to.
type MIDIOut struct {
	mu       sync.Mutex
	portName string
	open     func() (drivers.Out, error)
	driver   *rtmididrv.Driver
	port     drivers.Out
	send     func(midi.Message) error
	timers   map[*time.Timer]struct{}
	held     map[heldNote]int
	log      logrus.FieldLogger
}

type heldNote struct {
	channel uint8
	key     uint8
}

// NewMIDIOut creates an output for the port whose name contains portName.
// The port is opened on Initialize.
func NewMIDIOut(portName string, log logrus.FieldLogger) *MIDIOut {
	o := newMIDIOut(portName, log)
	o.open = func() (drivers.Out, error) {
		return midi.FindOutPort(portName)
	}
	return o
}

// NewVirtualMIDIOut creates an output that publishes a virtual port named
// name when initialized.
func NewVirtualMIDIOut(name string, log logrus.FieldLogger) *MIDIOut {
	o := newMIDIOut(name, log)
	o.open = func() (drivers.Out, error) {
		driver, err := rtmididrv.New()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
		}
		port, err := driver.OpenVirtualOut(name)
		if err != nil {
			driver.Close()
			return nil, fmt.Errorf("failed to create virtual MIDI port: %w", err)
		}
		o.driver = driver
		return port, nil
	}
	return o
}

func newMIDIOut(portName string, log logrus.FieldLogger) *MIDIOut {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MIDIOut{
		portName: portName,
		timers:   make(map[*time.Timer]struct{}),
		held:     make(map[heldNote]int),
		log:      log.WithField("midi_port", portName),
	}
}

// OutPorts lists the names of the MIDI output ports of the registered driver.
func OutPorts() []string {
	ports := midi.GetOutPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// Initialize opens the port. It is a no-op once the port is open.
func (o *MIDIOut) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.send != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	port, err := o.open()
	if err != nil {
		return fmt.Errorf("failed to open MIDI output %q: %w", o.portName, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		port.Close()
		if o.driver != nil {
			o.driver.Close()
			o.driver = nil
		}
		return fmt.Errorf("failed to connect to MIDI output %q: %w", o.portName, err)
	}
	o.port = port
	o.send = send
	o.log.WithField("port", port.String()).Info("MIDI output opened")
	return nil
}

// TriggerNotes sends note-ons now and the matching note-offs after d.
func (o *MIDIOut) TriggerNotes(notes []string, d time.Duration) {
	o.play(chordChannel, notes, chordVelocity, d)
}

// Click sends a percussion note. velocity is in [0, 1].
func (o *MIDIOut) Click(note string, velocity float64, d time.Duration) {
	o.play(clickChannel, []string{note}, uint8(math.Round(clampUnit(velocity)*127)), d)
}

func (o *MIDIOut) play(channel uint8, notes []string, velocity uint8, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return
	}

	keys := make([]uint8, 0, len(notes))
	for _, name := range notes {
		key, err := midiKey(name)
		if err != nil {
			o.log.WithError(err).Warn("skipping note")
			continue
		}
		o.sendLocked(midi.NoteOn(channel, key, velocity))
		o.held[heldNote{channel, key}]++
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if _, ok := o.timers[timer]; !ok {
			return
		}
		delete(o.timers, timer)
		for _, key := range keys {
			o.releaseLocked(heldNote{channel, key})
		}
	})
	o.timers[timer] = struct{}{}
}

// releaseLocked sends a note-off once the last overlapping trigger of a key ends.
func (o *MIDIOut) releaseLocked(n heldNote) {
	count := o.held[n]
	if count <= 0 {
		return
	}
	if count > 1 {
		o.held[n] = count - 1
		return
	}
	delete(o.held, n)
	o.sendLocked(midi.NoteOff(n.channel, n.key))
}

// ReleaseAll cancels pending note-offs, sends them immediately and follows
// with All Notes Off on the used channels.
func (o *MIDIOut) ReleaseAll() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for t := range o.timers {
		t.Stop()
	}
	o.timers = make(map[*time.Timer]struct{})

	if o.send == nil {
		return
	}
	for n := range o.held {
		o.sendLocked(midi.NoteOff(n.channel, n.key))
	}
	o.held = make(map[heldNote]int)
	for _, ch := range []uint8{chordChannel, clickChannel} {
		o.sendLocked(midi.ControlChange(ch, ccAllNotesOff, 0))
	}
}

func (o *MIDIOut) sendLocked(msg midi.Message) {
	if err := o.send(msg); err != nil {
		o.log.WithError(err).WithField("msg", msg.String()).Warn("MIDI send failed")
	}
}

// Close silences the port and closes it.
func (o *MIDIOut) Close() error {
	o.ReleaseAll()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.send = nil
	var err error
	if o.port != nil {
		err = o.port.Close()
		o.port = nil
	}
	if o.driver != nil {
		o.driver.Close()
		o.driver = nil
	}
	return err
}
