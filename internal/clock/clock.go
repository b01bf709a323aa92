// Package clock supplies the current instant to services and repositories so
// tests can pin or step time.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Func adapts a function to Clock. Readings are normalised to UTC.
type Func func() time.Time

func (f Func) Now() time.Time { return f().UTC() }

// System reads the wall clock.
var System Clock = Func(time.Now)

// NewFixed returns a clock stopped at t.
func NewFixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// Manual is a clock moved by hand. It is safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock starting at t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t.UTC()
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new reading.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
