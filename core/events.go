package pipeline

import (
	"errors"

	"github.com/ferrostad/voxa-core/core/events"
)

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// newCallbackEventEmitter bridges typed lifecycle events to the callbacks
// registered for this Run call. Events are emitted from the control
// goroutine, so callback invocation order matches emission order.
func newCallbackEventEmitter(opts RunOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.UserSpeechStarted:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(true)
			}
		case events.UserSpeechEnded:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(false)
			}
		case events.UserTranscriptInterimUpdated:
			if opts.onInterimTranscription != nil {
				opts.onInterimTranscription(typedEvent.Transcript)
			}
		case events.UserTranscriptFinal:
			if opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Transcript)
			}
		case events.AssistantResponseSegment:
			if opts.onResponse != nil {
				opts.onResponse(typedEvent.Segment)
			}
		case events.AssistantResponseFinal:
			if opts.onResponseEnd != nil {
				opts.onResponseEnd()
			}
		case events.AssistantSpeechChunk:
			if opts.onAudio != nil {
				opts.onAudio(typedEvent.Audio)
			}
		case events.AssistantPlaybackEnded:
			if opts.onAudioEnded != nil {
				opts.onAudioEnded(typedEvent.Transcript)
			}
		case events.TurnCancelled:
			if opts.onCancellation != nil {
				opts.onCancellation()
			}
		case events.PipelineError:
			if opts.onError != nil {
				opts.onError(Error{
					Kind:       ErrorKind(typedEvent.ErrorKind),
					Phase:      Phase(typedEvent.Phase),
					ChunkIndex: typedEvent.ChunkIndex,
					Err:        errors.New(typedEvent.Detail),
				})
			}
		}
	}
}
