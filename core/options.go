package pipeline

import (
	"time"

	"github.com/ferrostad/voxa-core/core/events"
)

type Option func(*Pipeline)

func WithStreamingLLM(client StreamingLLM) Option {
	return func(p *Pipeline) { p.llm.set(client) }
}

// WithInstructions sets the system prompt prepended to every model request.
func WithInstructions(instructions string) Option {
	return func(p *Pipeline) { p.llm.setInstructions(instructions) }
}

func WithSpeechToTextClient(client SpeechToText) Option {
	return func(p *Pipeline) { p.speechToText.set(client) }
}

func WithSynthesizerClient(client Synthesizer) Option {
	return func(p *Pipeline) { p.synthesizer.set(client) }
}

// WithVoice sets the voice passed to the synthesizer on every chunk fetch.
func WithVoice(voice string) Option {
	return func(p *Pipeline) { p.synthesizer.setVoice(voice) }
}

func WithAudioInput(client AudioInput) Option {
	return func(p *Pipeline) { p.audioInput.set(client) }
}

func WithAudioOutput(client AudioOutput) Option {
	return func(p *Pipeline) { p.audioOutput.set(client) }
}

// ChunkerConfig tunes chunk splitting. Zero fields keep their defaults.
type ChunkerConfig struct {
	MaxChunkLength int
	BaseMinLength  int
	SentenceMargin int
	CommaMargin    int
}

func WithChunkerConfig(cfg ChunkerConfig) Option {
	return func(p *Pipeline) {
		if cfg.MaxChunkLength > 0 {
			p.chunkerCfg.maxChunkLength = cfg.MaxChunkLength
		}
		if cfg.BaseMinLength > 0 {
			p.chunkerCfg.baseMinLength = cfg.BaseMinLength
		}
		if cfg.SentenceMargin > 0 {
			p.chunkerCfg.sentenceMargin = cfg.SentenceMargin
		}
		if cfg.CommaMargin > 0 {
			p.chunkerCfg.commaMargin = cfg.CommaMargin
		}
	}
}

// WithSilenceTimeout sets the quiet period after which listening ends once
// speech has started.
func WithSilenceTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) {
		if timeout > 0 {
			p.silenceTimeout = timeout
		}
	}
}

// WithPreBufferThreshold sets how many frames must be queued before playback
// starts.
func WithPreBufferThreshold(frames int) Option {
	return func(p *Pipeline) {
		if frames > 0 {
			p.preBufferThreshold = frames
		}
	}
}

func WithPlaybackSpeed(speed float64) Option {
	return func(p *Pipeline) {
		if speed > 0 {
			p.storeSpeed(speed)
		}
	}
}

// WithAutoListen controls whether listening restarts automatically after a
// turn completes. Defaults to true.
func WithAutoListen(autoListen bool) Option {
	return func(p *Pipeline) { p.autoListen = autoListen }
}

// RunOptions carries the callbacks registered for one Run call. Callbacks are
// invoked from the control goroutine and should not block.
type RunOptions struct {
	onTranscription        func(transcript string)
	onInterimTranscription func(transcript string)
	onSpeakingStateChanged func(isSpeaking bool)
	onResponse             func(response string)
	onResponseEnd          func()
	onAudio                func(audio []byte)
	onAudioEnded           func(transcript string)
	onStateChanged         func(state State)
	onError                func(err Error)
	onCancellation         func()
	onEvent                func(event events.Event)
}

type RunOption func(*RunOptions)

// WithTranscriptionCallback registers a callback for the final transcript of
// each listening phase.
func WithTranscriptionCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) { o.onTranscription = callback }
}

// WithInterimTranscriptionCallback registers a callback for the mutable
// interim transcript while listening.
func WithInterimTranscriptionCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) { o.onInterimTranscription = callback }
}

// WithSpeakingStateChangedCallback registers a callback for user
// speech-activity changes reported by the recognizer.
func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) RunOption {
	return func(o *RunOptions) { o.onSpeakingStateChanged = callback }
}

func WithResponseCallback(callback func(response string)) RunOption {
	return func(o *RunOptions) { o.onResponse = callback }
}

func WithResponseEndCallback(callback func()) RunOption {
	return func(o *RunOptions) { o.onResponseEnd = callback }
}

// WithAudioCallback registers a callback for each chunk's raw synthesized
// audio payload, for optional persistence.
func WithAudioCallback(callback func(audio []byte)) RunOption {
	return func(o *RunOptions) { o.onAudio = callback }
}

// WithAudioEndedCallback registers a callback for fully drained playback,
// carrying the spoken response text.
func WithAudioEndedCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) { o.onAudioEnded = callback }
}

func WithStateChangedCallback(callback func(state State)) RunOption {
	return func(o *RunOptions) { o.onStateChanged = callback }
}

// WithErrorCallback registers a callback for failures. Cancellation never
// triggers it.
func WithErrorCallback(callback func(err Error)) RunOption {
	return func(o *RunOptions) { o.onError = callback }
}

func WithCancellationCallback(callback func()) RunOption {
	return func(o *RunOptions) { o.onCancellation = callback }
}

// WithEventCallback registers a callback for every typed lifecycle event, in
// emission order. Useful for UIs and persistence layers that want the full
// stream rather than individual callbacks.
func WithEventCallback(callback func(event events.Event)) RunOption {
	return func(o *RunOptions) { o.onEvent = callback }
}
