package audio

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Output is the capability every sink in this package provides.
type Output interface {
	Initialize(ctx context.Context) error
	TriggerNotes(notes []string, d time.Duration)
	ReleaseAll()
}

type clicker interface {
	Click(note string, velocity float64, d time.Duration)
}

// Multi fans every call out to several outputs.
type Multi []Output

// Initialize initializes each output and returns their joined errors.
func (m Multi) Initialize(ctx context.Context) error {
	var errs []error
	for _, o := range m {
		if err := o.Initialize(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) TriggerNotes(notes []string, d time.Duration) {
	for _, o := range m {
		o.TriggerNotes(notes, d)
	}
}

func (m Multi) ReleaseAll() {
	for _, o := range m {
		o.ReleaseAll()
	}
}

// Click forwards to the outputs that support clicks.
func (m Multi) Click(note string, velocity float64, d time.Duration) {
	for _, o := range m {
		if c, ok := o.(clicker); ok {
			c.Click(note, velocity, d)
		}
	}
}

func (m Multi) Close() error {
	var errs []error
	for _, o := range m {
		if c, ok := o.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Silent accepts everything and plays nothing. It logs triggers at debug
// level, which makes it useful for headless runs.
type Silent struct {
	Log logrus.FieldLogger
}

func (s Silent) Initialize(context.Context) error { return nil }

func (s Silent) TriggerNotes(notes []string, d time.Duration) {
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"notes": notes, "duration": d.String()}).Debug("notes")
	}
}

func (s Silent) ReleaseAll() {}
