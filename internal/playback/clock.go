package playback

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// every calls fn on each tick of a ticker from c until the returned stop
// function is called. Ticks that arrive while fn is running are dropped.
func every(c clock.Clock, d time.Duration, fn func()) (stop func()) {
	ticker := c.Ticker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
