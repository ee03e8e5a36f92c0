package pipeline

import (
	"context"
	"fmt"

	"github.com/ferrostad/voxa-core/core/audio"
	"github.com/ferrostad/voxa-core/core/speechtotext"
)

// SpeechToText is the speech capture contract: incremental interim
// transcripts, a final transcript per utterance, and mid-capture
// cancellation.
type SpeechToText interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
}

type speechToTextCallbacks struct {
	onSpeechStarted        func()
	onSpeechEnded          func()
	onInterimTranscription func(transcript string)
	onTranscription        func(transcript string)
}

// speechToText normalizes optional recognizer wiring; all methods are safe on
// a zero or unconfigured value.
type speechToText struct {
	client SpeechToText
}

func (s *speechToText) set(client SpeechToText) {
	if s != nil {
		s.client = client
	}
}

func (s *speechToText) isConfigured() bool { return s != nil && s.client != nil }

func (s *speechToText) start(ctx context.Context, callbacks speechToTextCallbacks, encodingInfo audio.EncodingInfo) error {
	if !s.isConfigured() {
		return nil
	}

	sttOptions := []speechtotext.TranscriptionOption{
		speechtotext.WithSpeechStartedCallback(callbacks.onSpeechStarted),
		speechtotext.WithSpeechEndedCallback(callbacks.onSpeechEnded),
		speechtotext.WithInterimTranscriptionCallback(callbacks.onInterimTranscription),
		speechtotext.WithTranscriptionCallback(callbacks.onTranscription),
		speechtotext.WithEncodingInfo(encodingInfo),
	}

	if err := s.client.Transcribe(ctx, sttOptions...); err != nil {
		return fmt.Errorf("failed to start transcribing: %w", err)
	}

	return nil
}

func (s *speechToText) SendAudio(audio []byte) error {
	if !s.isConfigured() {
		return nil
	}

	return s.client.SendAudio(audio)
}

func (s *speechToText) Close(ctx context.Context) error {
	if !s.isConfigured() {
		return nil
	}

	switch c := s.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close speech-to-text client: %w", err)
		}
	case interface{ Close(context.Context) }:
		c.Close(ctx)
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close speech-to-text client: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}
