package pipeline

import (
	"context"

	"github.com/ferrostad/voxa-core/core/texttospeech"
)

// Synthesizer is the synthesis contract: one text payload in, the complete
// audio for it out. The speed parameter is passed at the provider's native
// scale.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error)
}

// synthesizer normalizes optional synthesis wiring. An unconfigured
// synthesizer yields empty audio, which the fetch chain treats as a chunk to
// skip, so the pipeline degrades to text-only operation.
type synthesizer struct {
	client Synthesizer
	voice  string
	format string
}

func (s *synthesizer) set(client Synthesizer) {
	if s != nil {
		s.client = client
	}
}

func (s *synthesizer) setVoice(voice string) {
	if s != nil {
		s.voice = voice
	}
}

func (s *synthesizer) isConfigured() bool { return s != nil && s.client != nil }

func (s *synthesizer) synthesize(ctx context.Context, text string, speed float64) ([]byte, error) {
	if !s.isConfigured() {
		return nil, nil
	}

	opts := []texttospeech.SynthesisOption{texttospeech.WithSpeed(speed)}
	if s.voice != "" {
		opts = append(opts, texttospeech.WithVoice(s.voice))
	}
	if s.format != "" {
		opts = append(opts, texttospeech.WithFormat(s.format))
	}

	return s.client.Synthesize(ctx, text, opts...)
}
