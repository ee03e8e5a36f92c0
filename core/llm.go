package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ferrostad/voxa-core/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// StreamingLLM is the model contract the pipeline consumes: an ordered
// sequence of text increments terminated by completion or error, cancellable
// through the context.
type StreamingLLM interface {
	PromptWithStream(ctx context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream
}

// llm normalizes optional model wiring; all methods are safe on a zero or
// unconfigured value.
type llm struct {
	client       StreamingLLM
	instructions string
}

func (l *llm) set(client StreamingLLM) {
	if l != nil {
		l.client = client
	}
}

func (l *llm) setInstructions(instructions string) {
	if l != nil {
		l.instructions = instructions
	}
}

func (l *llm) isConfigured() bool { return l != nil && l.client != nil }

func (l *llm) stream(ctx context.Context, prompt string, history []llms.Turn) (llms.Stream, error) {
	if !l.isConfigured() {
		return nil, fmt.Errorf("no streaming model configured")
	}

	opts := []llms.StreamingPromptOption{llms.WithTurns(history...)}
	if l.instructions != "" {
		opts = append(opts, llms.WithInstructions(l.instructions))
	}

	return l.client.PromptWithStream(ctx, &prompt, opts...), nil
}

// streamResponse runs the model stream as a background task, delivering text
// increments and the terminal result back onto the control goroutine.
func (p *Pipeline) streamResponse(ctx context.Context, turnID, prompt string, history []llms.Turn) {
	ctx, span := tracer.Start(ctx, "stream model response")
	defer span.End()
	span.SetAttributes(attribute.Int("request.history_turns", len(history)))

	stream, err := p.llm.stream(ctx, prompt, history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.enqueue(cmdResponseDone{turnID: turnID, err: err})
		return
	}

	var streamErr error
	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			// A malformed event is recoverable at event granularity: the
			// stream continues past it, so the turn must too.
			if errors.Is(err, llms.ErrMalformedEvent) {
				span.RecordError(err)
				logger.Warn("Skipping malformed model stream event", "error", err)
				continue
			}
			streamErr = err
			break
		}

		if content, ok := chunk.(llms.StreamContentChunk); ok && content.Content() != "" {
			p.enqueue(cmdResponseDelta{turnID: turnID, delta: content.Content()})
		}
	}

	if ctx.Err() != nil {
		// Cancellation is a first-class transition, not a failure.
		return
	}
	if streamErr != nil {
		span.RecordError(streamErr)
		span.SetStatus(codes.Error, streamErr.Error())
	}

	p.enqueue(cmdResponseDone{turnID: turnID, err: streamErr})
}
