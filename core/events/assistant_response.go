package events

const (
	// KindAssistantResponseSegment identifies streamed assistant response text.
	KindAssistantResponseSegment Kind = "assistant_response.segment"
	// KindAssistantResponseFinal identifies assistant response stream completion.
	KindAssistantResponseFinal Kind = "assistant_response.final"
)

// AssistantResponseSegment carries one streamed delta of the assistant's
// response text. Segments concatenate, in sequence order, to the full
// response.
type AssistantResponseSegment struct {
	Base
	Segment string
}

// NewAssistantResponseSegment creates an assistant response segment event.
func NewAssistantResponseSegment(segment string) AssistantResponseSegment {
	return AssistantResponseSegment{
		Base:    NewBase(KindAssistantResponseSegment),
		Segment: segment,
	}
}

// AssistantResponseFinal marks assistant response stream completion and
// carries the complete response text, so consumers do not have to reassemble
// it from segments.
type AssistantResponseFinal struct {
	Base
	Response string
}

// NewAssistantResponseFinal creates an assistant response final event.
func NewAssistantResponseFinal(response string) AssistantResponseFinal {
	return AssistantResponseFinal{
		Base:     NewBase(KindAssistantResponseFinal),
		Response: response,
	}
}
