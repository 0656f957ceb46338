package loop

import (
	"container/heap"
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback. The zero value is not usable;
// timers come from AfterFunc or Every.
type Timer struct {
	when   time.Time
	period time.Duration
	fn     func() bool
	seq    uint64
	index  int // position in the heap, -1 when not queued
	q      *queue
}

// Stop cancels the timer. It reports whether the timer was still pending.
// Stopping from inside the timer's own callback prevents a periodic timer
// from being rescheduled.
func (t *Timer) Stop() bool {
	if t == nil || t.q == nil {
		return false
	}
	return t.q.stop(t)
}

// timerHeap orders timers by deadline, then by scheduling order.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// queue is the deadline-ordered timer set shared by Loop and Manual.
type queue struct {
	mu      sync.Mutex
	timers  timerHeap
	seq     uint64
	firing  *Timer
	stopped bool   // firing timer was stopped from its own callback
	wake    func() // called after the earliest deadline may have moved
}

func (q *queue) add(now time.Time, d, period time.Duration, fn func() bool) *Timer {
	if d < 0 {
		d = 0
	}
	q.mu.Lock()
	q.seq++
	t := &Timer{when: now.Add(d), period: period, fn: fn, seq: q.seq, index: -1, q: q}
	heap.Push(&q.timers, t)
	q.mu.Unlock()

	if q.wake != nil {
		q.wake()
	}
	return t
}

func (q *queue) stop(t *Timer) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t == q.firing {
		if t.period <= 0 || q.stopped {
			return false
		}
		q.stopped = true
		return true
	}
	if t.index < 0 || t.index >= len(q.timers) || q.timers[t.index] != t {
		return false
	}
	heap.Remove(&q.timers, t.index)
	return true
}

// next returns the earliest deadline, if any.
func (q *queue) next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.timers) == 0 {
		return time.Time{}, false
	}
	return q.timers[0].when, true
}

// fire runs the earliest timer if it is due at now and reports whether one ran.
// A periodic timer whose callback returns true is rescheduled one period
// after now unless it was stopped while running.
func (q *queue) fire(now time.Time) bool {
	q.mu.Lock()
	if len(q.timers) == 0 || q.timers[0].when.After(now) {
		q.mu.Unlock()
		return false
	}
	t := heap.Pop(&q.timers).(*Timer)
	q.firing = t
	q.stopped = false
	q.mu.Unlock()

	keep := t.fn()

	q.mu.Lock()
	stopped := q.stopped
	q.firing = nil
	q.stopped = false
	if t.period > 0 && keep && !stopped {
		q.seq++
		t.seq = q.seq
		t.when = now.Add(t.period)
		heap.Push(&q.timers, t)
	}
	q.mu.Unlock()
	return true
}

// len reports the number of queued timers.
func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers)
}
