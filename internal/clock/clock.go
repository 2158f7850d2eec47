// Package clock provides the monotonic time source used for edge timing,
// task durations and PID dt.
package clock

import (
	"sync"
	"time"
)

// Clock reports monotonic time elapsed since an arbitrary fixed origin.
type Clock interface {
	Now() time.Duration
}

// Monotonic reads the process monotonic clock.
type Monotonic struct {
	origin time.Time
}

// NewMonotonic returns a clock whose origin is the moment of the call.
func NewMonotonic() *Monotonic {
	return &Monotonic{origin: time.Now()}
}

func (m *Monotonic) Now() time.Duration {
	return time.Since(m.origin)
}

// Manual is a clock advanced explicitly. Simulation and tests use it so every
// tick lands on an exact period boundary.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Duration) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}
