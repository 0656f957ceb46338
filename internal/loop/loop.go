// Package loop provides the cooperative single-goroutine event loop the LED
// subsystem runs on.
//
// Everything scheduled through a Loop, whether a posted function or a timer
// callback, runs on the goroutine that called Run, one at a time. State owned
// by those callbacks therefore needs no locking. Manual offers the same
// surface on a virtual clock for deterministic tests.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("loop: stopped")

// Scheduler arms one-shot and periodic callbacks.
type Scheduler interface {
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) *Timer
	// Every runs fn every d until fn returns false or the timer is stopped.
	Every(d time.Duration, fn func() bool) *Timer
}

// Runner moves work onto the loop goroutine.
type Runner interface {
	// Post queues fn and returns without waiting. It reports false if the
	// loop has already exited.
	Post(fn func()) bool
	// Call runs fn on the loop and waits for it to return.
	Call(ctx context.Context, fn func()) error
}

const postBacklog = 64

// Loop is a real-time event loop.
type Loop struct {
	q      queue
	posts  chan func()
	wakeCh chan struct{}
	done   chan struct{}
	logger *slog.Logger
}

// New creates a loop. Nothing runs until Run is called.
func New(logger *slog.Logger) *Loop {
	l := &Loop{
		posts:  make(chan func(), postBacklog),
		wakeCh: make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	l.q.wake = l.wake
	return l
}

func (l *Loop) wake() {
	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// AfterFunc implements Scheduler.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	return l.q.add(time.Now(), d, 0, func() bool {
		fn()
		return false
	})
}

// Every implements Scheduler. Non-positive periods are raised to one millisecond.
func (l *Loop) Every(d time.Duration, fn func() bool) *Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return l.q.add(time.Now(), d, d, fn)
}

// Post implements Runner.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.posts <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call implements Runner.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run dispatches posted functions and due timers until ctx is cancelled.
// Pending timers are abandoned on return.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	l.logger.Debug("Event loop started")
	for {
		if next, ok := l.q.next(); ok {
			resetTimer(timer, time.Until(next))
		} else {
			resetTimer(timer, time.Hour)
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("Event loop stopped", "pending_timers", l.q.len())
			return ctx.Err()

		case fn := <-l.posts:
			fn()

		case <-l.wakeCh:

		case <-timer.C:
			for l.q.fire(time.Now()) {
			}
		}
	}
}

// resetTimer safely stops, drains, and resets a timer.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	if d < 0 {
		d = 0
	}
	t.Reset(d)
}
