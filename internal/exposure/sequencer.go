// Package exposure sequences the timed neutral -> expression -> neutral swap of a trial.
package exposure

import (
	"fmt"
	"sync"
	"time"

	"emotion-quiz-service/internal/domain"
)

// PreRoll is how long the neutral image is held before the expression appears.
const PreRoll = 500 * time.Millisecond

// Transition is emitted each time the sequencer enters a phase.
type Transition struct {
	Generation uint64
	Phase      domain.Phase
	// Progress is the target fill of the progress indicator.
	Progress float64
	// Animation is how long the indicator takes to reach Progress; zero means instantly.
	Animation time.Duration
}

// Sink receives transitions. It is called without the sequencer's lock held.
type Sink func(Transition)

// Sequencer is a single-shot state machine for one trial:
// Neutral -> Revealing -> Exposed -> Reverting -> Neutral.
type Sequencer struct {
	sched      Scheduler
	generation uint64
	duration   time.Duration
	sink       Sink

	mu       sync.Mutex
	phase    domain.Phase
	started  bool
	done     bool
	canceled bool
	timer    Timer
}

// New arms a sequencer for the trial identified by generation.
func New(sched Scheduler, generation uint64, duration time.Duration, sink Sink) (*Sequencer, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidExposure, duration)
	}
	return &Sequencer{
		sched:      sched,
		generation: generation,
		duration:   duration,
		sink:       sink,
		phase:      domain.PhaseNeutral,
	}, nil
}

// Start shows the neutral image and schedules the reveal. Calling it twice is a no-op.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if s.started || s.canceled {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.phase = domain.PhaseRevealing
	s.timer = s.sched.AfterFunc(PreRoll, s.reveal)
	s.mu.Unlock()

	s.emit(domain.PhaseRevealing, 0, 0)
}

func (s *Sequencer) reveal() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.phase = domain.PhaseExposed
	s.timer = s.sched.AfterFunc(s.duration, s.revert)
	s.mu.Unlock()

	s.emit(domain.PhaseExposed, 1, s.duration)
}

func (s *Sequencer) revert() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.phase = domain.PhaseReverting
	s.mu.Unlock()

	s.emit(domain.PhaseReverting, 0, 0)

	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.phase = domain.PhaseNeutral
	s.done = true
	s.timer = nil
	s.mu.Unlock()

	s.emit(domain.PhaseNeutral, 0, 0)
}

// Cancel drops any pending transition. Callbacks that already fired become no-ops.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canceled = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Phase is the current state.
func (s *Sequencer) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Done reports whether the terminal neutral state was reached.
func (s *Sequencer) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Sequencer) emit(phase domain.Phase, progress float64, animation time.Duration) {
	if s.sink == nil {
		return
	}
	s.sink(Transition{
		Generation: s.generation,
		Phase:      phase,
		Progress:   progress,
		Animation:  animation,
	})
}
