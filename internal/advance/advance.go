// Package advance schedules the delayed "next round" transition shown after
// a guess is resolved.
//
// At most one transition is pending at a time. Scheduling a new one cancels
// the old one, and a callback whose timer already fired but which lost the
// race to Cancel or Schedule is dropped instead of run.
package advance

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that runs f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Scheduler owns the single pending transition.
type Scheduler struct {
	mu    sync.Mutex
	gen   uint64
	timer Timer

	afterFunc AfterFunc
}

// New returns a Scheduler backed by time.AfterFunc.
func New() *Scheduler {
	return NewWithClock(func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) })
}

// NewWithClock returns a Scheduler that starts timers with af.
func NewWithClock(af AfterFunc) *Scheduler {
	return &Scheduler{afterFunc: af}
}

// Handle identifies one scheduled transition.
type Handle struct {
	s   *Scheduler
	gen uint64
}

// Cancel cancels this transition if it is still the pending one.
// It reports whether it did.
func (h Handle) Cancel() bool {
	if h.s == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.s.gen != h.gen || h.s.timer == nil {
		return false
	}
	h.s.stopLocked()
	return true
}

// Schedule runs fn after d, replacing any pending transition.
func (s *Scheduler) Schedule(d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	gen := s.gen
	s.timer = s.afterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.gen++
		s.mu.Unlock()
		fn()
	})
	return Handle{s: s, gen: gen}
}

// Cancel drops the pending transition, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Pending reports whether a transition is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}
