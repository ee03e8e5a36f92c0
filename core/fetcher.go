package pipeline

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ferrostad/voxa-core/core/audio"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// fetchResult is delivered back to the control goroutine when one
// chunk-fetch finishes, so chunk selection, chaining and event emission all
// stay on the control goroutine.
type fetchResult struct {
	turnID     string
	chunkIndex int

	// text and audio carry the chunk text and raw provider payload on
	// success, for the per-chunk audio event.
	text  string
	audio []byte

	// cancelled means the fetch observed context cancellation and must not
	// chain a next fetch.
	cancelled bool
	// failed marks a recoverable failure described by failure; the chunk was
	// skipped.
	failed  bool
	failure Error
	// emptyAudio means the provider returned no audio for the chunk; the
	// receiver re-runs chunk selection immediately rather than waiting for
	// frames that will never arrive.
	emptyAudio bool
}

// defaultFetchTimeout bounds one synthesis fetch. A hung provider must not
// stall the single-flight chain until the user cancels.
const defaultFetchTimeout = 30 * time.Second

// ttsFetcher performs one chunk-fetch at a time: fetch, decode, schedule,
// then report back. The in-flight marker enforces the single-flight
// invariant independently of the control goroutine's own bookkeeping.
type ttsFetcher struct {
	synthesize func(ctx context.Context, text string, speed float64) ([]byte, error)
	builder    audio.FrameBuilder
	schedule   func(frames ...audio.Frame)

	// onDone delivers the result back onto the control goroutine. The
	// in-flight marker is cleared before onDone fires so the receiver can
	// immediately start the next fetch.
	onDone func(result fetchResult)

	speed func() float64

	// timeout bounds the synthesis request; zero disables the bound. A
	// timed-out fetch is a recoverable failure, not a cancellation.
	timeout time.Duration

	inFlight atomic.Bool
}

// Fetch starts the chunk-fetch task. It refuses (returns false) when another
// fetch is in flight or the chunk text is empty or whitespace-only.
func (f *ttsFetcher) Fetch(ctx context.Context, turnID string, chunk textChunk, chunkIndex int) bool {
	if strings.TrimSpace(chunk.text) == "" {
		return false
	}

	if !f.inFlight.CompareAndSwap(false, true) {
		logger.Warn("Refusing to start a second synthesis fetch", "chunk_index", chunkIndex)
		return false
	}

	go func() {
		result := f.run(ctx, chunk, chunkIndex)
		result.turnID = turnID
		f.inFlight.Store(false)
		f.onDone(result)
	}()
	return true
}

func (f *ttsFetcher) IsFetching() bool { return f.inFlight.Load() }

func (f *ttsFetcher) run(ctx context.Context, chunk textChunk, chunkIndex int) fetchResult {
	ctx, span := tracer.Start(ctx, "fetch speech chunk")
	defer span.End()
	span.SetAttributes(
		attribute.Int("chunk.index", chunkIndex),
		attribute.Int("chunk.length", len(chunk.text)),
	)

	result := fetchResult{chunkIndex: chunkIndex}

	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	fetchStart := time.Now()
	raw, err := f.synthesize(fetchCtx, chunk.text, f.speed())
	fetchLatencyHistogram.Record(ctx, time.Since(fetchStart).Seconds())

	// Cancellation is read off the turn context, not the timed fetch
	// context, so a deadline takes the recoverable-failure branch below.
	if ctx.Err() != nil {
		result.cancelled = true
		return result
	}
	if err != nil {
		failure := Error{Kind: ErrorKindTransport, Phase: PhaseTTSFetch, ChunkIndex: chunkIndex, Err: err}
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Error())
		fetchFailuresCounter.Add(ctx, 1)

		result.failed = true
		result.failure = failure
		return result
	}

	if len(raw) <= f.builder.HeaderSize {
		result.emptyAudio = true
		return result
	}

	frames, err := f.builder.Build(raw)
	if err != nil {
		failure := Error{Kind: ErrorKindMalformed, Phase: PhaseDecode, ChunkIndex: chunkIndex, Err: err}
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Error())
		decodeRejectsCounter.Add(ctx, 1)

		result.failed = true
		result.failure = failure
		return result
	}
	if len(frames) == 0 {
		result.emptyAudio = true
		return result
	}

	if ctx.Err() != nil {
		result.cancelled = true
		return result
	}

	f.schedule(frames...)
	span.SetAttributes(attribute.Int("chunk.frames", len(frames)))

	result.text = chunk.text
	result.audio = raw
	return result
}
