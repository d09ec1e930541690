// Package timing keeps a sliding window of durations per operation.
package timing

import (
	"sync"
	"time"
)

const DefaultWindow = 120

// Span is a running measurement returned by Start.
type Span struct {
	tracker   *Tracker
	operation string
	start     time.Time
}

// End records the span's duration and returns it.
func (s Span) End() time.Duration {
	d := s.tracker.now().Sub(s.start)
	s.tracker.Record(s.operation, d)
	return d
}

type Tracker struct {
	timings map[string]*samples
	window  int
	now     func() time.Time
	mu      sync.RWMutex
}

type samples struct {
	durations []time.Duration
	next      int
	total     int
}

// NewTracker keeps the last window samples of each operation. A window
// below 1 means DefaultWindow.
func NewTracker(window int) *Tracker {
	if window < 1 {
		window = DefaultWindow
	}
	return &Tracker{
		timings: make(map[string]*samples),
		window:  window,
		now:     time.Now,
	}
}

func (tt *Tracker) Start(operation string) Span {
	return Span{tracker: tt, operation: operation, start: tt.now()}
}

func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	s := tt.timings[operation]
	if s == nil {
		s = &samples{durations: make([]time.Duration, 0, tt.window)}
		tt.timings[operation] = s
	}
	if len(s.durations) < tt.window {
		s.durations = append(s.durations, d)
	} else {
		s.durations[s.next] = d
	}
	s.next = (s.next + 1) % tt.window
	s.total++
}

// Count is the number of samples ever recorded for operation.
func (tt *Tracker) Count(operation string) int {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	if s := tt.timings[operation]; s != nil {
		return s.total
	}
	return 0
}

// Average is the mean over the retained window.
func (tt *Tracker) Average(operation string) time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	s := tt.timings[operation]
	if s == nil || len(s.durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range s.durations {
		total += d
	}
	return total / time.Duration(len(s.durations))
}

func (tt *Tracker) Operations() []string {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	ops := make([]string, 0, len(tt.timings))
	for op := range tt.timings {
		ops = append(ops, op)
	}
	return ops
}

// Reset drops one operation, or all of them when operation is empty.
func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string]*samples)
	} else {
		delete(tt.timings, operation)
	}
}
