package pipeline

import (
	"context"
	"sync"

	"github.com/ferrostad/voxa-core/core/audio"
)

const defaultPreBufferThreshold = 2

// playbackScheduler owns the ordered frame queue for one turn. Frames are
// queued and played strictly in arrival order; arrival order is production
// order because the fetch chain is single-flight and chunks are cursor
// ordered.
//
// Playback does not start until the queue holds preBuffer frames (or no more
// frames are coming), which absorbs network jitter without an audible gap.
// Once started it never stops mid-stream while frames remain queued or more
// are expected.
type playbackScheduler struct {
	mu sync.Mutex

	output *audioOutput

	frames   []audio.Frame
	playhead int

	scheduled int
	completed int

	preBuffer int
	speed     float64

	noMoreFrames bool
	stopped      bool
	drained      bool

	onStarted func()
	onDrained func()
	onError   func(error)

	updateSignal chan struct{}
}

func newPlaybackScheduler(output *audioOutput, preBuffer int, speed float64) *playbackScheduler {
	if preBuffer <= 0 {
		preBuffer = defaultPreBufferThreshold
	}
	if speed <= 0 {
		speed = 1
	}

	return &playbackScheduler{
		output:       output,
		preBuffer:    preBuffer,
		speed:        speed,
		updateSignal: make(chan struct{}, 1),
	}
}

// Schedule appends frames in arrival order. Frames scheduled after Cancel are
// dropped.
func (s *playbackScheduler) Schedule(frames ...audio.Frame) {
	if len(frames) == 0 {
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.frames = append(s.frames, frames...)
	s.scheduled += len(frames)
	s.mu.Unlock()
	s.signalUpdate()
}

// MarkNoMoreFrames tells the scheduler the fetch chain will produce nothing
// further for this turn.
func (s *playbackScheduler) MarkNoMoreFrames() {
	s.mu.Lock()
	s.noMoreFrames = true
	fire := s.checkDrainLocked()
	s.mu.Unlock()
	s.signalUpdate()

	if fire {
		s.fireDrained()
	}
}

func (s *playbackScheduler) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}

	s.mu.Lock()
	s.speed = speed
	s.mu.Unlock()
}

// Counters reports frames scheduled and completed so far.
func (s *playbackScheduler) Counters() (scheduled, completed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled, s.completed
}

func (s *playbackScheduler) QueuedFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames) - s.playhead
}

// Cancel stops the output immediately, discards all queued frames and resets
// the counters. Part of the turn's atomic teardown.
func (s *playbackScheduler) Cancel() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.frames = nil
	s.playhead = 0
	s.scheduled = 0
	s.completed = 0
	s.mu.Unlock()
	s.signalUpdate()

	s.output.Flush()
	if err := s.output.Stop(); err != nil {
		logger.Warn("Failed to stop audio output on cancel", "error", err)
	}
}

// Run drives the queue until it is cancelled or fully drained. It blocks, so
// it runs on its own goroutine; per-frame completion arrives asynchronously
// from the output device and is counted in frameCompleted.
func (s *playbackScheduler) Run(ctx context.Context) {
	if !s.awaitPreBuffer(ctx) {
		return
	}

	s.mu.Lock()
	stopped := s.stopped
	empty := s.playhead == len(s.frames) && s.noMoreFrames
	s.mu.Unlock()
	if stopped || empty {
		return
	}

	if err := s.output.Start(ctx); err != nil {
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	if s.onStarted != nil {
		s.onStarted()
	}

	for {
		frame, ok := s.consumeNextFrame()
		if !ok {
			if done := s.waitForNextFrame(ctx); done {
				return
			}
			continue
		}

		if err := s.output.SendFrame(frame, s.frameCompleted); err != nil {
			logger.Warn("Failed to send frame to audio output", "error", err)
			// Count the frame as completed so the drain check cannot stall on
			// a frame the device never accepted.
			s.frameCompleted()
		}
	}
}

// awaitPreBuffer blocks until enough frames are queued to start, no more
// frames are expected, or the scheduler is torn down. It reports whether
// playback should proceed; when it returns false with the queue empty and the
// dispatch finished, the drain signal has already fired from MarkNoMoreFrames.
func (s *playbackScheduler) awaitPreBuffer(ctx context.Context) bool {
	for {
		s.mu.Lock()
		ready := s.scheduled >= s.preBuffer || s.noMoreFrames
		stopped := s.stopped
		s.mu.Unlock()

		if stopped {
			return false
		}
		if ready {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-s.updateSignal:
		}
	}
}

func (s *playbackScheduler) consumeNextFrame() (audio.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.playhead >= len(s.frames) {
		return audio.Frame{}, false
	}

	frame := s.frames[s.playhead]
	s.playhead++

	if s.speed != 1 {
		sampleRate := s.output.EncodingInfo().SampleRate
		frame = audio.Frame{Samples: audio.Stretch(frame.Samples, sampleRate, s.speed)}
	}
	return frame, true
}

// waitForNextFrame blocks until more frames arrive or the queue is known to
// be finished. It reports true when the run loop should exit.
func (s *playbackScheduler) waitForNextFrame(ctx context.Context) bool {
	for {
		s.mu.Lock()
		stopped := s.stopped
		hasFrames := s.playhead < len(s.frames)
		finished := s.noMoreFrames && !hasFrames
		s.mu.Unlock()

		if stopped || finished {
			return true
		}
		if hasFrames {
			return false
		}

		select {
		case <-ctx.Done():
			return true
		case <-s.updateSignal:
		}
	}
}

// frameCompleted is the per-frame completion callback from the output device.
// Completion callbacks may race each other; the drained flag guarantees the
// drain signal fires exactly once.
func (s *playbackScheduler) frameCompleted() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.completed++
	framesPlayedCounter.Add(context.Background(), 1)
	fire := s.checkDrainLocked()
	s.mu.Unlock()

	if fire {
		s.fireDrained()
	}
}

func (s *playbackScheduler) checkDrainLocked() bool {
	if s.drained || s.stopped || !s.noMoreFrames {
		return false
	}
	if s.completed != s.scheduled || s.playhead != len(s.frames) {
		return false
	}

	s.drained = true
	return true
}

func (s *playbackScheduler) fireDrained() {
	s.signalUpdate()
	if s.onDrained != nil {
		s.onDrained()
	}
}

func (s *playbackScheduler) signalUpdate() {
	select {
	case s.updateSignal <- struct{}{}:
	default:
	}
}
