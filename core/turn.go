package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// turn is one listen -> respond -> speak cycle. It is owned exclusively by
// the control goroutine; nothing else reads or writes its fields.
type turn struct {
	id        string
	startedAt time.Time

	recognizedText string
	responseText   string
	// processedCursor indexes the response text already dispatched to
	// synthesis. It is monotonically non-decreasing and never exceeds
	// len(responseText).
	processedCursor int

	responseStreamComplete bool
	ttsDispatchComplete    bool

	// nextChunkIndex numbers dispatched chunks for error context.
	nextChunkIndex int

	// cancel tears down the turn's background work (model stream, in-flight
	// fetch).
	cancel context.CancelFunc
	ctx    context.Context
}

func newTurn(base context.Context) *turn {
	ctx, cancel := context.WithCancel(base)
	return &turn{
		id:        uuid.NewString(),
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// TurnInfo is a point-in-time snapshot of the active turn.
type TurnInfo struct {
	ID             string
	RecognizedText string
	ResponseText   string
	// ProcessedCursor is the index into ResponseText already dispatched to
	// synthesis.
	ProcessedCursor int

	ResponseStreamComplete bool
	TTSDispatchComplete    bool
}

func (t *turn) snapshot() TurnInfo {
	if t == nil {
		return TurnInfo{}
	}

	return TurnInfo{
		ID:                     t.id,
		RecognizedText:         t.recognizedText,
		ResponseText:           t.responseText,
		ProcessedCursor:        t.processedCursor,
		ResponseStreamComplete: t.responseStreamComplete,
		TTSDispatchComplete:    t.ttsDispatchComplete,
	}
}
