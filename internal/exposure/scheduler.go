package exposure

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop reports whether the callback was prevented from running.
	Stop() bool
}

// Scheduler runs callbacks after a delay without blocking the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// WallClock schedules on the runtime timer wheel.
type WallClock struct{}

func (WallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler only fires callbacks when Advance moves its clock. Callbacks run on
// the goroutine calling Advance, in due-time order, ties in scheduling order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Duration
	seq     uint64
	f       func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, due: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Now is the elapsed virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending counts callbacks that are neither fired nor stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every callback that becomes due,
// including ones scheduled by callbacks during the advance.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		s.now = next.due
		s.mu.Unlock()

		next.f()
	}
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTimer {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.pending = live
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].due != s.pending[j].due {
			return s.pending[i].due < s.pending[j].due
		}
		return s.pending[i].seq < s.pending[j].seq
	})
	if len(s.pending) == 0 || s.pending[0].due > target {
		return nil
	}
	return s.pending[0]
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
