// Package clock abstracts "now" so lifecycle timestamps can be pinned in tests.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Real reads the wall clock.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Manual only moves when told to.
type Manual struct {
	mtx sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.now
}

func (m *Manual) Set(now time.Time) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.now = now
}

func (m *Manual) Advance(d time.Duration) time.Time {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
