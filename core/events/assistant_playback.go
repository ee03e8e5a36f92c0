package events

const (
	// KindAssistantPlaybackStarted identifies the first audible frame reaching
	// the output device.
	KindAssistantPlaybackStarted Kind = "assistant_playback.started"
	// KindAssistantPlaybackEnded identifies fully drained playback.
	KindAssistantPlaybackEnded Kind = "assistant_playback.ended"
)

// AssistantPlaybackStarted marks playback start for the current response.
type AssistantPlaybackStarted struct{ Base }

// NewAssistantPlaybackStarted creates an assistant playback started event.
func NewAssistantPlaybackStarted() AssistantPlaybackStarted {
	return AssistantPlaybackStarted{Base: NewBase(KindAssistantPlaybackStarted)}
}

// AssistantPlaybackEnded marks fully drained playback for the current
// response; Transcript is the response text spoken by the time the queue
// drained.
type AssistantPlaybackEnded struct {
	Base
	Transcript string
}

// NewAssistantPlaybackEnded creates an assistant playback ended event.
func NewAssistantPlaybackEnded(transcript string) AssistantPlaybackEnded {
	return AssistantPlaybackEnded{Base: NewBase(KindAssistantPlaybackEnded), Transcript: transcript}
}
