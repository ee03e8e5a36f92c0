package llms

import (
	"context"
	"errors"
)

// ErrMalformedEvent marks a single stream event that could not be parsed.
// The stream itself is still healthy: consumers skip the event and keep
// iterating. Errors not wrapping this sentinel are terminal.
var ErrMalformedEvent = errors.New("malformed stream event")

// Stream is an in-flight model response. Chunks yields ordered increments
// terminated by completion or error; iteration stops when the context is
// cancelled.
type Stream interface {
	Chunks(context.Context) func(func(StreamChunk, error) bool)
}

type StreamChunk interface {
	FinishReason() *string
}

type StreamContentChunk interface {
	StreamChunk
	Content() string
}

type StreamToolCallChunk interface {
	StreamChunk
	ToolCall() ToolCall
}

type StreamUsageChunk interface {
	StreamChunk
	Usage() Usage
}

// Usage summarizes token accounting reported at the end of a stream.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int

	// TotalTime is the provider-reported wall time in seconds, when present.
	//
	// Note: This might be just an approximation.
	TotalTime float64
}
