package ts

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock wraps clockwork.Clock so that log lines and the tarpit share one
// notion of time that tests can replace.
type Clock struct {
	realClock clockwork.Clock
}

func NewRealClock() *Clock {
	return &Clock{
		realClock: clockwork.NewRealClock(),
	}
}

// NewClock wraps an existing clock, usually a clockwork.FakeClock.
func NewClock(c clockwork.Clock) *Clock {
	return &Clock{realClock: c}
}

// Now is the current time in UTC.
func (c *Clock) Now() time.Time {
	return c.realClock.Now().UTC()
}

func (c *Clock) Since(t time.Time) time.Duration {
	return c.realClock.Since(t)
}

func (c *Clock) Sleep(d time.Duration) {
	c.realClock.Sleep(d)
}
