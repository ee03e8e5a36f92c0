package pipeline

import (
	"sync"
	"time"
)

const defaultSilenceTimeout = 1500 * time.Millisecond

// silenceTimer is a single retriggerable deadline timer. Touch arms it (or
// pushes the deadline forward); Stop invalidates it without firing. The
// callback runs on the timer goroutine, so callers deliver their work back
// onto the control goroutine themselves.
type silenceTimer struct {
	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	// generation invalidates callbacks from timers that were re-armed or
	// stopped after AfterFunc already fired.
	generation uint64
}

func newSilenceTimer(timeout time.Duration) *silenceTimer {
	if timeout <= 0 {
		timeout = defaultSilenceTimeout
	}
	return &silenceTimer{timeout: timeout}
}

// Touch arms the timer or pushes its deadline forward. onElapsed fires once
// after the quiet period unless Touch or Stop intervenes.
func (s *silenceTimer) Touch(onElapsed func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	generation := s.generation

	s.timer = time.AfterFunc(s.timeout, func() {
		s.mu.Lock()
		stale := generation != s.generation
		s.mu.Unlock()

		if stale {
			return
		}
		onElapsed()
	})
}

// Stop invalidates the timer without firing. Recognizer-reported finality
// takes precedence over the quiet-period deadline, so the control goroutine
// stops the timer when a final transcript arrives.
func (s *silenceTimer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}
