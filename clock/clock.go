// The clock package provides a clock service as an alternative to calling
// time.Now directly, so that code driven by the time of day can be tested
// with chosen times.  In production use SystemClock.  In tests use
// StoppedClock, whose time only changes when it's set, or SteppingClock,
// which returns a given series of times.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock supplies the system time.
type SystemClock struct{}

var _ Clock = SystemClock{}

// NewSystemClock creates a system clock.
func NewSystemClock() Clock {
	return SystemClock{}
}

// Now returns the system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// StoppedClock returns the same time until it's told otherwise.
type StoppedClock struct {
	mutex sync.Mutex
	time  time.Time
}

var _ Clock = (*StoppedClock)(nil)

// NewStoppedClock creates a StoppedClock showing the given time.
func NewStoppedClock(t time.Time) *StoppedClock {
	return &StoppedClock{time: t}
}

// SetTime sets a new unchanging time.
func (c *StoppedClock) SetTime(t time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.time = t
}

// Advance moves the time on by d.
func (c *StoppedClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.time = c.time.Add(d)
}

// Now returns the time last set.
func (c *StoppedClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.time
}

// SteppingClock returns a given series of times, one per call of Now.
// Once they have all been returned it keeps returning the last one.  With
// no times it returns the Unix epoch.
type SteppingClock struct {
	mutex    sync.Mutex
	nextTime int
	times    []time.Time
}

var _ Clock = (*SteppingClock)(nil)

// NewSteppingClock creates a SteppingClock.
func NewSteppingClock(times ...time.Time) *SteppingClock {
	return &SteppingClock{times: times}
}

// Now returns the next time in the series.
func (c *SteppingClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.times) == 0 {
		return time.Unix(0, 0).UTC()
	}
	if c.nextTime == len(c.times) {
		return c.times[len(c.times)-1]
	}
	result := c.times[c.nextTime]
	c.nextTime++
	return result
}
