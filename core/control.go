package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferrostad/voxa-core/core/events"
	"github.com/ferrostad/voxa-core/core/llms"
)

const commandQueueCapacity = 32

// Commands are the only way work reaches the control goroutine. Background
// tasks (recognizer callbacks, the model stream, the fetch chain, playback
// completion) enqueue commands instead of touching state directly.
type command any

type cmdStartListening struct{}
type cmdCancel struct{}
type cmdPrompt struct{ text string }
type cmdSetSpeed struct{ speed float64 }

type cmdSpeechStarted struct{}
type cmdSpeechEnded struct{}
type cmdInterimTranscript struct{ transcript string }
type cmdFinalTranscript struct{ transcript string }
type cmdSilenceElapsed struct{ turnID string }

type cmdResponseDelta struct {
	turnID string
	delta  string
}
type cmdResponseDone struct {
	turnID string
	err    error
}

type cmdFetchDone struct{ result fetchResult }

type cmdPlaybackStarted struct{ turnID string }
type cmdPlaybackDrained struct{ turnID string }
type cmdPlaybackError struct {
	turnID string
	err    error
}

func (p *Pipeline) enqueue(cmd command) bool {
	select {
	case <-p.closeCh:
		return false
	case p.queue <- cmd:
		return true
	}
}

// controlLoop is the single goroutine that owns the state machine and all
// turn fields. State mutations never race because nothing else writes them.
func (p *Pipeline) controlLoop() {
	defer close(p.done)

	for {
		select {
		case <-p.closeCh:
			return
		case cmd := <-p.queue:
			p.dispatch(cmd)
			p.publish()
		}
	}
}

func (p *Pipeline) dispatch(cmd command) {
	switch c := cmd.(type) {
	case cmdStartListening:
		p.handleStartListening()
	case cmdCancel:
		p.handleCancel()
	case cmdPrompt:
		p.handlePrompt(c.text)
	case cmdSetSpeed:
		p.handleSetSpeed(c.speed)
	case cmdSpeechStarted:
		p.handleSpeechActivity(true)
	case cmdSpeechEnded:
		p.handleSpeechActivity(false)
	case cmdInterimTranscript:
		p.handleInterimTranscript(c.transcript)
	case cmdFinalTranscript:
		p.handleFinalTranscript(c.transcript)
	case cmdSilenceElapsed:
		p.handleSilenceElapsed(c.turnID)
	case cmdResponseDelta:
		p.handleResponseDelta(c.turnID, c.delta)
	case cmdResponseDone:
		p.handleResponseDone(c.turnID, c.err)
	case cmdFetchDone:
		p.handleFetchDone(c.result)
	case cmdPlaybackStarted:
		p.handlePlaybackStarted(c.turnID)
	case cmdPlaybackDrained:
		p.handlePlaybackDrained(c.turnID)
	case cmdPlaybackError:
		p.handlePlaybackError(c.turnID, c.err)
	default:
		logger.Warn("Dropping unknown control command", "command", fmt.Sprintf("%T", cmd))
	}
}

func (p *Pipeline) handleStartListening() {
	// Error requires explicit user action to retry; start is that action.
	if p.state != StateIdle && p.state != StateError {
		logger.Warn("Ignoring start request while a turn is active", "state", p.state.String())
		return
	}

	p.turn = newTurn(p.baseContext)
	p.setState(StateListening)
	turnsStartedCounter.Add(p.baseContext, 1)

	if err := p.audioInput.Capture(p.turn.ctx); err != nil {
		p.fail(Error{Kind: ErrorKindCapability, Phase: PhaseListening, ChunkIndex: -1,
			Err: fmt.Errorf("failed to acquire audio input: %w", err)})
		return
	}

	p.emitEvent(events.NewTurnListeningStarted(p.turn.id))
}

func (p *Pipeline) handleSpeechActivity(started bool) {
	if p.state != StateListening {
		return
	}

	if started {
		p.emitEvent(events.NewUserSpeechStarted())
	} else {
		p.emitEvent(events.NewUserSpeechEnded())
	}
}

func (p *Pipeline) handleInterimTranscript(transcript string) {
	if p.state != StateListening || p.turn == nil {
		return
	}

	p.turn.recognizedText = transcript
	p.emitEvent(events.NewUserTranscriptInterimUpdated(transcript))

	if strings.TrimSpace(transcript) != "" {
		turnID := p.turn.id
		p.silence.Touch(func() {
			p.enqueue(cmdSilenceElapsed{turnID: turnID})
		})
	}
}

func (p *Pipeline) handleFinalTranscript(transcript string) {
	if p.state != StateListening || p.turn == nil {
		return
	}

	// Recognizer finality takes precedence over the quiet-period deadline.
	p.silence.Stop()

	if strings.TrimSpace(transcript) == "" {
		return
	}

	p.emitEvent(events.NewUserTranscriptFinal(transcript))
	p.beginResponding(transcript)
}

func (p *Pipeline) handleSilenceElapsed(turnID string) {
	if p.state != StateListening || p.turn == nil || p.turn.id != turnID {
		return
	}

	transcript := p.turn.recognizedText
	if strings.TrimSpace(transcript) == "" {
		return
	}

	p.emitEvent(events.NewUserTranscriptFinal(transcript))
	p.beginResponding(transcript)
}

// beginResponding moves the turn into the responding phase: capture is
// released before playback may start, the model stream and the playback
// scheduler are spun up as cancellable background tasks.
func (p *Pipeline) beginResponding(prompt string) {
	turn := p.turn
	turn.recognizedText = prompt

	p.silence.Stop()
	if err := p.audioInput.Release(); err != nil {
		logger.Warn("Failed to release audio input", "error", err)
	}

	p.emitEvent(events.NewTurnListeningEnded(turn.id, prompt))
	p.setState(StateResponding)

	turnID := turn.id
	scheduler := newPlaybackScheduler(&p.audioOutput, p.preBufferThreshold, p.loadSpeed())
	scheduler.onStarted = func() { p.enqueue(cmdPlaybackStarted{turnID: turnID}) }
	scheduler.onDrained = func() { p.enqueue(cmdPlaybackDrained{turnID: turnID}) }
	scheduler.onError = func(err error) { p.enqueue(cmdPlaybackError{turnID: turnID, err: err}) }
	p.scheduler.Store(scheduler)
	go scheduler.Run(turn.ctx)

	history := make([]llms.Turn, len(p.history))
	copy(history, p.history)
	go p.streamResponse(turn.ctx, turn.id, prompt, history)
}

func (p *Pipeline) handleResponseDelta(turnID, delta string) {
	if p.turn == nil || p.turn.id != turnID {
		return
	}
	if p.state != StateResponding && p.state != StateSpeaking {
		return
	}

	p.turn.responseText += delta
	p.emitEvent(events.NewAssistantResponseSegment(delta))
	p.attemptDispatch()
}

func (p *Pipeline) handleResponseDone(turnID string, err error) {
	if p.turn == nil || p.turn.id != turnID {
		return
	}

	if err != nil {
		p.emitError(Error{Kind: ErrorKindTransport, Phase: PhaseResponding, ChunkIndex: -1, Err: err})
		p.abandonTurn()
		return
	}

	p.turn.responseStreamComplete = true
	p.emitEvent(events.NewAssistantResponseFinal(p.turn.responseText))
	p.attemptDispatch()
}

// attemptDispatch runs chunk selection and, when a chunk is ready, starts the
// single-flight fetch for it. Whitespace-only chunks advance the cursor
// without a fetch. Once the cursor has consumed a completed stream, dispatch
// is marked complete.
func (p *Pipeline) attemptDispatch() {
	turn := p.turn
	if turn == nil || turn.ttsDispatchComplete {
		return
	}
	if p.fetcher.IsFetching() {
		return
	}

	for {
		chunk, newCursor := nextChunk(turn.responseText, turn.processedCursor,
			turn.responseStreamComplete, p.loadSpeed(), p.chunkerCfg)
		if chunk.empty() {
			if turn.responseStreamComplete && turn.processedCursor >= len(turn.responseText) {
				p.markDispatchComplete()
			}
			return
		}

		turn.processedCursor = newCursor

		if strings.TrimSpace(chunk.text) == "" {
			continue
		}

		chunkIndex := turn.nextChunkIndex
		turn.nextChunkIndex++
		p.fetcher.Fetch(turn.ctx, turn.id, chunk, chunkIndex)
		return
	}
}

func (p *Pipeline) handleFetchDone(result fetchResult) {
	if p.turn == nil || p.turn.id != result.turnID {
		return
	}
	if result.cancelled {
		return
	}

	if result.failed {
		p.emitError(result.failure)
	} else if result.audio != nil {
		p.emitEvent(events.NewAssistantSpeechChunk(result.chunkIndex, result.text, result.audio))
	}

	// Success, recoverable failure and empty audio all chain into the next
	// chunk-selection pass; skipped chunks must not stall the turn.
	p.attemptDispatch()
}

func (p *Pipeline) markDispatchComplete() {
	if p.turn == nil || p.turn.ttsDispatchComplete {
		return
	}

	p.turn.ttsDispatchComplete = true
	p.emitEvent(events.NewAssistantSpeechFinal())
	if scheduler := p.scheduler.Load(); scheduler != nil {
		scheduler.MarkNoMoreFrames()
	}
}

func (p *Pipeline) handlePlaybackStarted(turnID string) {
	if p.turn == nil || p.turn.id != turnID {
		return
	}
	if p.state != StateResponding {
		return
	}

	p.setState(StateSpeaking)
	p.emitEvent(events.NewAssistantPlaybackStarted())
}

func (p *Pipeline) handlePlaybackDrained(turnID string) {
	if p.turn == nil || p.turn.id != turnID {
		return
	}
	if !p.turn.responseStreamComplete || !p.turn.ttsDispatchComplete {
		return
	}

	p.finishTurn()
}

func (p *Pipeline) handlePlaybackError(turnID string, err error) {
	if p.turn == nil || p.turn.id != turnID {
		return
	}

	p.fail(Error{Kind: ErrorKindCapability, Phase: PhasePlayback, ChunkIndex: -1,
		Err: fmt.Errorf("failed to acquire audio output: %w", err)})
}

// finishTurn completes the turn naturally: history is extended, the output
// device is released, and listening restarts when auto-listen is on.
func (p *Pipeline) finishTurn() {
	turn := p.turn

	if err := p.audioOutput.Stop(); err != nil {
		logger.Warn("Failed to stop audio output", "error", err)
	}

	if strings.TrimSpace(turn.recognizedText) != "" {
		p.history = append(p.history, llms.Turn{Role: llms.TurnRoleUser, Content: turn.recognizedText})
	}
	if strings.TrimSpace(turn.responseText) != "" {
		p.history = append(p.history, llms.Turn{Role: llms.TurnRoleAssistant, Content: turn.responseText})
	}

	p.emitEvent(events.NewAssistantPlaybackEnded(turn.responseText))
	p.emitEvent(events.NewTurnCompleted(turn.id))
	turnsCompletedCounter.Add(p.baseContext, 1)
	turnDurationHistogram.Record(p.baseContext, time.Since(turn.startedAt).Seconds())

	turn.cancel()
	p.turn = nil
	p.scheduler.Store(nil)
	p.setState(StateIdle)

	if p.autoListen {
		p.handleStartListening()
	}
}

// handleCancel performs the atomic teardown: model stream and fetch are
// cancelled through the turn context, the playback queue is flushed, both
// devices are released and the turn is cleared, all before the state changes
// to idle. Cancellation is not a failure and emits no error event.
func (p *Pipeline) handleCancel() {
	if p.turn == nil && p.state == StateIdle {
		return
	}

	p.silence.Stop()

	var turnID string
	if p.turn != nil {
		turnID = p.turn.id
		p.turn.cancel()
	}
	if scheduler := p.scheduler.Load(); scheduler != nil {
		scheduler.Cancel()
		p.scheduler.Store(nil)
	}
	if err := p.audioOutput.Stop(); err != nil {
		logger.Warn("Failed to stop audio output on cancel", "error", err)
	}
	if err := p.audioInput.Release(); err != nil {
		logger.Warn("Failed to release audio input on cancel", "error", err)
	}

	p.turn = nil
	p.setState(StateIdle)

	if turnID != "" {
		turnsCancelledCounter.Add(p.baseContext, 1)
		p.emitEvent(events.NewTurnCancelled(turnID))
	}
}

// handlePrompt drives the responding path directly from a text prompt,
// bypassing listening.
func (p *Pipeline) handlePrompt(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if p.state != StateIdle && p.state != StateError {
		logger.Warn("Ignoring prompt while a turn is active", "state", p.state.String())
		return
	}

	p.turn = newTurn(p.baseContext)
	turnsStartedCounter.Add(p.baseContext, 1)
	p.beginResponding(text)
}

func (p *Pipeline) handleSetSpeed(speed float64) {
	if speed <= 0 {
		return
	}

	p.storeSpeed(speed)
	if scheduler := p.scheduler.Load(); scheduler != nil {
		scheduler.SetSpeed(speed)
	}
}

// abandonTurn tears the turn down after a recoverable top-level failure and
// returns to listening (or idle) so the system never appears hung.
func (p *Pipeline) abandonTurn() {
	if p.turn != nil {
		p.turn.cancel()
	}
	if scheduler := p.scheduler.Load(); scheduler != nil {
		scheduler.Cancel()
		p.scheduler.Store(nil)
	}
	if err := p.audioOutput.Stop(); err != nil {
		logger.Warn("Failed to stop audio output", "error", err)
	}
	p.turn = nil
	p.setState(StateIdle)

	if p.autoListen {
		p.handleStartListening()
	}
}

// fail handles unrecoverable failures: teardown plus a transition to the
// error state, which requires explicit user action to retry.
func (p *Pipeline) fail(err Error) {
	p.emitError(err)

	if p.turn != nil {
		p.turn.cancel()
		p.turn = nil
	}
	if scheduler := p.scheduler.Load(); scheduler != nil {
		scheduler.Cancel()
		p.scheduler.Store(nil)
	}
	p.silence.Stop()
	if releaseErr := p.audioInput.Release(); releaseErr != nil {
		logger.Warn("Failed to release audio input", "error", releaseErr)
	}
	if stopErr := p.audioOutput.Stop(); stopErr != nil {
		logger.Warn("Failed to stop audio output", "error", stopErr)
	}

	p.setState(StateError)
}

func (p *Pipeline) emitError(err Error) {
	logger.Error("Pipeline failure", "kind", string(err.Kind), "phase", string(err.Phase), "error", err.Err)
	p.emitEvent(events.NewPipelineError(string(err.Kind), string(err.Phase), err.ChunkIndex, err.Err.Error()))
}

func (p *Pipeline) setState(state State) {
	if p.state == state {
		return
	}

	p.state = state
	if p.runOptions.onStateChanged != nil {
		p.runOptions.onStateChanged(state)
	}
}

// publish refreshes the snapshot read by State and TurnSnapshot from outside
// the control goroutine.
func (p *Pipeline) publish() {
	p.mu.Lock()
	p.publishedState = p.state
	p.publishedTurn = p.turn.snapshot()
	p.mu.Unlock()
}
