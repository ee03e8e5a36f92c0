// Package texttospeech defines the synthesis contract shared by all
// text-to-speech providers.
package texttospeech

import (
	"context"

	"github.com/ferrostad/voxa-core/core/audio"
)

const (
	// MinSpeed and MaxSpeed bound the playback rate a provider is asked to
	// synthesize at. Requests outside the range are clamped, not rejected.
	MinSpeed = 0.25
	MaxSpeed = 4.0

	DefaultSpeed = 1.0
)

type SynthesisOptions struct {
	Voice  string
	Format string
	Speed  float64

	EncodingInfo audio.EncodingInfo
}

type SynthesisOption func(*SynthesisOptions)

func WithVoice(voice string) SynthesisOption {
	return func(o *SynthesisOptions) {
		o.Voice = voice
	}
}

func WithFormat(format string) SynthesisOption {
	return func(o *SynthesisOptions) {
		o.Format = format
	}
}

func WithSpeed(speed float64) SynthesisOption {
	return func(o *SynthesisOptions) {
		o.Speed = ClampSpeed(speed)
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SynthesisOption {
	return func(o *SynthesisOptions) {
		if encodingInfo.SampleRate == 0 || encodingInfo.Format == "" {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}

// ClampSpeed maps any requested rate into the providers' supported range.
func ClampSpeed(speed float64) float64 {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

// SpeechSynthesizer is the one-shot synthesis contract: a single text payload
// in, the complete audio for it out. Streaming providers adapt themselves to
// this shape rather than the other way around.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, opts ...SynthesisOption) ([]byte, error)
}
