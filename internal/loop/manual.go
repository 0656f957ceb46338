package loop

import (
	"context"
	"time"
)

// Manual is a Scheduler and Runner driven by a virtual clock. Timers fire
// only inside Advance, in deadline order, and posted functions run inline.
// It is meant for tests and is not safe for concurrent use.
type Manual struct {
	q   queue
	now time.Time
}

// NewManual returns a Manual whose clock starts at the Unix epoch.
func NewManual() *Manual {
	return &Manual{now: time.Unix(0, 0)}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	return m.now
}

// Elapsed returns the virtual time passed since NewManual.
func (m *Manual) Elapsed() time.Duration {
	return m.now.Sub(time.Unix(0, 0))
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) *Timer {
	return m.q.add(m.now, d, 0, func() bool {
		fn()
		return false
	})
}

// Every implements Scheduler.
func (m *Manual) Every(d time.Duration, fn func() bool) *Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return m.q.add(m.now, d, d, fn)
}

// Post implements Runner by running fn immediately.
func (m *Manual) Post(fn func()) bool {
	fn()
	return true
}

// Call implements Runner by running fn immediately.
func (m *Manual) Call(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}

// Advance moves the clock forward by d, firing every timer that falls due.
// Timers armed by callbacks fire too if their deadline is within the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		next, ok := m.q.next()
		if !ok || next.After(target) {
			break
		}
		if next.After(m.now) {
			m.now = next
		}
		m.q.fire(m.now)
	}
	m.now = target
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	return m.q.len()
}
