// Package pipeline coordinates one voice turn at a time: capture and
// transcription, model-response streaming, chunked speech synthesis and
// buffered playback, with hands-free re-listening between turns.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ferrostad/voxa-core/core/audio"
	"github.com/ferrostad/voxa-core/core/llms"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Pipeline is the turn coordinator. Construct with New, start with Run, then
// drive it with StartListening, SendPrompt, SendAudio and Cancel. A single
// control goroutine owns all state transitions; public methods only enqueue
// work for it.
type Pipeline struct {
	// llm is the model facade used to handle optional client wiring.
	llm llm
	// speechToText is the recognizer facade used to handle optional client wiring.
	speechToText speechToText
	// synthesizer is the synthesis facade used to handle optional client wiring.
	synthesizer synthesizer
	// audioInput is the capture facade used to normalize device behavior.
	audioInput audioInput
	// audioOutput is the playback facade used to normalize device behavior.
	audioOutput audioOutput

	fetcher   *ttsFetcher
	scheduler atomic.Pointer[playbackScheduler]
	silence   *silenceTimer

	chunkerCfg         chunkerConfig
	silenceTimeout     time.Duration
	preBufferThreshold int
	autoListen         bool
	speedBits          atomic.Uint64

	// state, turn and history are owned exclusively by the control goroutine.
	state   State
	turn    *turn
	history []llms.Turn

	queue   chan command
	closeCh chan struct{}
	done    chan struct{}

	runOnce   sync.Once
	closeOnce sync.Once
	running   atomic.Bool

	baseContext context.Context
	emitEvent   eventEmitter
	runOptions  RunOptions

	mu             sync.RWMutex
	publishedState State
	publishedTurn  TurnInfo
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		chunkerCfg:         defaultChunkerConfig(),
		silenceTimeout:     defaultSilenceTimeout,
		preBufferThreshold: defaultPreBufferThreshold,
		autoListen:         true,

		state:          StateIdle,
		publishedState: StateIdle,

		queue:   make(chan command, commandQueueCapacity),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),

		baseContext: context.Background(),
		emitEvent:   noopEventEmitter,
	}
	p.storeSpeed(1)

	p.audioInput.onAudio = func(chunk []byte) {
		if err := p.speechToText.SendAudio(chunk); err != nil {
			logger.Warn("Failed to forward captured audio", "error", err)
		}
	}

	p.fetcher = &ttsFetcher{
		synthesize: p.synthesizer.synthesize,
		builder:    audio.NewFrameBuilder(),
		schedule: func(frames ...audio.Frame) {
			if scheduler := p.scheduler.Load(); scheduler != nil {
				scheduler.Schedule(frames...)
			}
		},
		onDone:  func(result fetchResult) { p.enqueue(cmdFetchDone{result: result}) },
		speed:   p.loadSpeed,
		timeout: defaultFetchTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run starts the control goroutine and the transcription session. It does
// not block; cancel ctx or call Close to shut the pipeline down.
//
// Contract: call Run at most once per pipeline instance.
func (p *Pipeline) Run(ctx context.Context, opts ...RunOption) {
	if p.isClosed() {
		logger.Warn("Pipeline already closed, skipping Run")
		return
	}

	p.runOnce.Do(func() {
		p.runOptions = RunOptions{}
		for _, opt := range opts {
			opt(&p.runOptions)
		}

		p.baseContext = ctx
		p.emitEvent = newCallbackEventEmitter(p.runOptions)
		p.silence = newSilenceTimer(p.silenceTimeout)

		go p.controlLoop()
		go func() {
			<-ctx.Done()
			p.Close()
		}()

		if err := p.speechToText.start(ctx, speechToTextCallbacks{
			onSpeechStarted:        func() { p.enqueue(cmdSpeechStarted{}) },
			onSpeechEnded:          func() { p.enqueue(cmdSpeechEnded{}) },
			onInterimTranscription: func(transcript string) { p.enqueue(cmdInterimTranscript{transcript: transcript}) },
			onTranscription:        func(transcript string) { p.enqueue(cmdFinalTranscript{transcript: transcript}) },
		}, p.audioInput.EncodingInfo()); err != nil {
			recordedErr := fmt.Errorf("failed to initialize speech-to-text: %w", err)
			span := trace.SpanFromContext(ctx)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			logger.Error("Failed to initialize speech-to-text", "error", err)
		}

		p.running.Store(true)

		if p.autoListen {
			p.enqueue(cmdStartListening{})
		}
	})
}

// StartListening begins a new turn. A no-op unless the pipeline is idle (or
// in the error state, where starting is the explicit retry action).
func (p *Pipeline) StartListening() { p.enqueue(cmdStartListening{}) }

// Cancel tears the active turn down atomically: the model stream and any
// in-flight fetch are cancelled, the playback queue is flushed, both devices
// are released and the state returns to idle. Not an error.
func (p *Pipeline) Cancel() { p.enqueue(cmdCancel{}) }

// SendPrompt drives a turn from a text prompt, bypassing listening.
func (p *Pipeline) SendPrompt(prompt string) { p.enqueue(cmdPrompt{text: prompt}) }

// SendAudio forwards externally captured audio to the recognizer, for hosts
// that own the capture device themselves.
func (p *Pipeline) SendAudio(chunk []byte) error {
	if !p.running.Load() {
		return ErrNotRunning
	}
	if p.isClosed() {
		return ErrClosed
	}

	return p.speechToText.SendAudio(chunk)
}

// SetPlaybackSpeed changes the playback-speed multiplier. It applies to the
// current playback immediately and to subsequent chunk sizing and synthesis
// requests.
func (p *Pipeline) SetPlaybackSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	p.enqueue(cmdSetSpeed{speed: speed})
}

// State returns the published pipeline state.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.publishedState
}

// TurnSnapshot returns a point-in-time snapshot of the active turn. The zero
// TurnInfo means no turn is active.
func (p *Pipeline) TurnSnapshot() TurnInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.publishedTurn
}

// Close shuts the pipeline down: the control goroutine exits, the active
// turn (if any) is torn down and all clients and devices are closed.
// Repeated calls are no-ops.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		if p.running.Load() {
			<-p.done
		}

		// The control goroutine has exited; turn fields are safe to touch.
		if p.turn != nil {
			p.turn.cancel()
			p.turn = nil
		}
		if scheduler := p.scheduler.Load(); scheduler != nil {
			scheduler.Cancel()
			p.scheduler.Store(nil)
		}
		if p.silence != nil {
			p.silence.Stop()
		}

		if err := p.audioInput.Close(); err != nil {
			logger.Warn("Failed to close audio input", "error", err)
		}
		if err := p.audioOutput.Close(); err != nil {
			logger.Warn("Failed to close audio output", "error", err)
		}
		if err := p.speechToText.Close(p.baseContext); err != nil {
			logger.Warn("Failed to close speech-to-text client", "error", err)
		}

		p.running.Store(false)
	})
}

func (p *Pipeline) isClosed() bool {
	select {
	case <-p.closeCh:
		return true
	default:
		return false
	}
}

func (p *Pipeline) storeSpeed(speed float64) {
	p.speedBits.Store(math.Float64bits(speed))
}

func (p *Pipeline) loadSpeed() float64 {
	return math.Float64frombits(p.speedBits.Load())
}
