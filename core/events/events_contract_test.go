package events

import "testing"

func TestEventKindsMatchConstructors(t *testing.T) {
	cases := []struct {
		event Event
		want  Kind
	}{
		{NewUserAudioFrame([]byte{1}), KindUserAudioFrame},
		{NewUserSpeechStarted(), KindUserSpeechStarted},
		{NewUserSpeechEnded(), KindUserSpeechEnded},
		{NewUserTranscriptInterimUpdated("hi"), KindUserTranscriptInterimUpdated},
		{NewUserTranscriptFinal("hi"), KindUserTranscriptFinal},
		{NewAssistantResponseSegment("hi"), KindAssistantResponseSegment},
		{NewAssistantResponseFinal("hi"), KindAssistantResponseFinal},
		{NewAssistantSpeechChunk(0, "hi", []byte{1}), KindAssistantSpeechChunk},
		{NewAssistantSpeechFinal(), KindAssistantSpeechFinal},
		{NewAssistantPlaybackStarted(), KindAssistantPlaybackStarted},
		{NewAssistantPlaybackEnded("hi"), KindAssistantPlaybackEnded},
		{NewTurnListeningStarted("t1"), KindTurnListeningStarted},
		{NewTurnListeningEnded("t1", "hi"), KindTurnListeningEnded},
		{NewTurnCompleted("t1"), KindTurnCompleted},
		{NewTurnCancelled("t1"), KindTurnCancelled},
		{NewPipelineError("transport", "tts_fetch", 2, "boom"), KindPipelineError},
	}

	var lastSequence uint64
	for _, c := range cases {
		if c.event.Kind() != c.want {
			t.Fatalf("expected kind %q, got %q", c.want, c.event.Kind())
		}
		if c.event.Timestamp().IsZero() {
			t.Fatalf("expected non-zero timestamp for %q", c.want)
		}
		if c.event.Sequence() <= lastSequence {
			t.Fatalf("expected increasing sequence for %q, got %d after %d", c.want, c.event.Sequence(), lastSequence)
		}
		lastSequence = c.event.Sequence()
	}
}
