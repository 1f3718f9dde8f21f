// Package timeutil provides the clock seam used by window eviction and the
// night-mode ticker so time-driven behavior can be tested deterministically
package timeutil

import (
	"sync"
	"time"
)

// Clock hands out the current time
type Clock interface {
	Now() time.Time
}

// Real is the wall clock
type Real struct{}

// Now returns time.Now
func (Real) Now() time.Time { return time.Now() }

// Fake is a manually advanced clock for tests
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake pinned at start
func NewFake(start time.Time) *Fake { return &Fake{now: start} }

// Now returns the pinned time
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the pinned time forward
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set pins the clock to t
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}
