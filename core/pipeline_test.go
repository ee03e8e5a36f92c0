package pipeline

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ferrostad/voxa-core/core/audio"
	"github.com/ferrostad/voxa-core/core/events"
	"github.com/ferrostad/voxa-core/core/llms"
	"github.com/ferrostad/voxa-core/core/speechtotext"
	"github.com/ferrostad/voxa-core/core/texttospeech"
)

// fakeRecognizer captures the transcription callbacks so tests can play the
// recognizer's role and fire speech activity and transcripts on demand.
type fakeRecognizer struct {
	mu        sync.Mutex
	callbacks speechtotext.TranscriptionOptions
	received  [][]byte
	closed    bool
}

func (f *fakeRecognizer) Transcribe(_ context.Context, opts ...speechtotext.TranscriptionOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, opt := range opts {
		opt(&f.callbacks)
	}
	return nil
}

func (f *fakeRecognizer) SendAudio(chunk []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, chunk)
	return nil
}

func (f *fakeRecognizer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRecognizer) fireSpeechStarted() {
	f.mu.Lock()
	callback := f.callbacks.SpeechStartedCallback
	f.mu.Unlock()
	if callback != nil {
		callback()
	}
}

func (f *fakeRecognizer) fireInterim(transcript string) {
	f.mu.Lock()
	callback := f.callbacks.InterimTranscriptionCallback
	f.mu.Unlock()
	if callback != nil {
		callback(transcript)
	}
}

func (f *fakeRecognizer) fireFinal(transcript string) {
	f.mu.Lock()
	callback := f.callbacks.TranscriptionCallback
	f.mu.Unlock()
	if callback != nil {
		callback(transcript)
	}
}

func (f *fakeRecognizer) audioChunks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

// fakeModel streams the configured increments for every prompt and records
// what it was asked.
type fakeModel struct {
	mu         sync.Mutex
	increments []string
	// faults maps an increment index to an error yielded just before it.
	faults   map[int]error
	prompts  []string
	requests []llms.StreamingPromptOptions
}

func (f *fakeModel) PromptWithStream(_ context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream {
	var options llms.StreamingPromptOptions
	for _, opt := range opts {
		opt(&options)
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, *prompt)
	f.requests = append(f.requests, options)
	increments := slices.Clone(f.increments)
	faults := f.faults
	f.mu.Unlock()

	return &fakeStream{increments: increments, faults: faults}
}

func (f *fakeModel) lastRequest() (string, llms.StreamingPromptOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return "", llms.StreamingPromptOptions{}
	}
	return f.prompts[len(f.prompts)-1], f.requests[len(f.requests)-1]
}

type fakeStream struct {
	increments []string
	faults     map[int]error
}

func (s *fakeStream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		for i, increment := range s.increments {
			if ctx.Err() != nil {
				return
			}
			if err, ok := s.faults[i]; ok {
				if !yield(nil, err) {
					return
				}
			}
			if !yield(fakeContentChunk{content: increment}, nil) {
				return
			}
		}
	}
}

type fakeContentChunk struct {
	content string
}

func (c fakeContentChunk) FinishReason() *string { return nil }
func (c fakeContentChunk) Content() string       { return c.content }

// fakeSpeechProvider returns a decodable payload per request, marked with the
// request ordinal so playback order is observable in the frames.
type fakeSpeechProvider struct {
	mu    sync.Mutex
	texts []string
	// framesPerChunk controls how many full frames each payload decodes to.
	framesPerChunk int
}

func (f *fakeSpeechProvider) Synthesize(_ context.Context, text string, _ ...texttospeech.SynthesisOption) ([]byte, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	ordinal := len(f.texts)
	frames := f.framesPerChunk
	f.mu.Unlock()

	if frames <= 0 {
		frames = 2
	}
	return markedPayload(int16(ordinal*1000), frames*audio.FrameSamples), nil
}

func (f *fakeSpeechProvider) requestedTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.texts)
}

// markedPayload builds a payload whose samples all carry the same marker
// value, so a decoded frame identifies the request that produced it.
func markedPayload(marker int16, sampleCount int) []byte {
	builder := audio.NewFrameBuilder()
	payload := make([]byte, builder.HeaderSize+2*sampleCount)
	for i := range sampleCount {
		binary.LittleEndian.PutUint16(payload[builder.HeaderSize+2*i:], uint16(marker))
	}
	return payload
}

// fakeCaptureDevice implements the capture contract with an inspectable
// capturing flag.
type fakeCaptureDevice struct {
	mu        sync.Mutex
	capturing bool
	onAudio   func(audio []byte)
	closed    bool
}

func (f *fakeCaptureDevice) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (f *fakeCaptureDevice) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capturing = true
	f.onAudio = onAudio
	return nil
}

func (f *fakeCaptureDevice) StopCapture() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capturing = false
	return nil
}

func (f *fakeCaptureDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCaptureDevice) isCapturing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.capturing
}

// eventRecorder collects states and event kinds emitted by the control
// goroutine.
type eventRecorder struct {
	mu     sync.Mutex
	states []State
	kinds  []events.Kind

	completed chan struct{}
	cancelled chan struct{}
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{
		completed: make(chan struct{}),
		cancelled: make(chan struct{}),
	}
}

func (r *eventRecorder) runOptions() []RunOption {
	return []RunOption{
		WithStateChangedCallback(func(state State) {
			r.mu.Lock()
			r.states = append(r.states, state)
			r.mu.Unlock()
		}),
		WithEventCallback(func(event events.Event) {
			r.mu.Lock()
			r.kinds = append(r.kinds, event.Kind())
			r.mu.Unlock()

			switch event.Kind() {
			case events.KindTurnCompleted:
				close(r.completed)
			case events.KindTurnCancelled:
				close(r.cancelled)
			}
		}),
	}
}

func (r *eventRecorder) awaitTurnCompleted(t *testing.T) {
	t.Helper()
	select {
	case <-r.completed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the turn to complete")
	}
}

func (r *eventRecorder) stateSequence() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.states)
}

func (r *eventRecorder) kindIndex(kind events.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Index(r.kinds, kind)
}

func assertOrderedSubsequence(t *testing.T, states []State, expected ...State) {
	t.Helper()

	at := 0
	for _, state := range states {
		if at < len(expected) && state == expected[at] {
			at++
		}
	}
	if at != len(expected) {
		t.Fatalf("expected state sequence to contain %v in order, got %v", expected, states)
	}
}

func TestPipelineCompletesVoiceTurnEndToEnd(t *testing.T) {
	recognizer := &fakeRecognizer{}
	model := &fakeModel{increments: []string{"It's sunny today. ", "Expect highs near 75."}}
	speech := &fakeSpeechProvider{framesPerChunk: 2}
	capture := &fakeCaptureDevice{}
	device := &fakePlaybackDevice{autoComplete: true}

	p := New(
		WithStreamingLLM(model),
		WithSpeechToTextClient(recognizer),
		WithSynthesizerClient(speech),
		WithAudioInput(capture),
		WithAudioOutput(device),
		WithAutoListen(false),
		// Short chunks so a two-sentence response splits at the sentence
		// boundary instead of fitting one chunk.
		WithChunkerConfig(ChunkerConfig{MaxChunkLength: 25, BaseMinLength: 4}),
	)
	defer p.Close()

	recorder := newEventRecorder()
	p.Run(context.Background(), recorder.runOptions()...)

	p.StartListening()
	waitFor(t, "capture to start", capture.isCapturing)

	recognizer.fireSpeechStarted()
	recognizer.fireInterim("What's the")
	recognizer.fireFinal("What's the weather?")

	recorder.awaitTurnCompleted(t)
	waitFor(t, "pipeline to return to idle", func() bool { return p.State() == StateIdle })

	prompt, request := model.lastRequest()
	if prompt != "What's the weather?" {
		t.Fatalf("expected the final transcript as the prompt, got %q", prompt)
	}
	if len(request.Turns) != 0 {
		t.Fatalf("expected an empty history on the first turn, got %d entries", len(request.Turns))
	}

	texts := speech.requestedTexts()
	if len(texts) != 2 {
		t.Fatalf("expected exactly two synthesis requests, got %d: %q", len(texts), texts)
	}
	if texts[0] != "It's sunny today." {
		t.Fatalf("expected the first chunk to end at the sentence boundary, got %q", texts[0])
	}
	if texts[0]+texts[1] != "It's sunny today. Expect highs near 75." {
		t.Fatalf("expected chunks to concatenate to the full response, got %q + %q", texts[0], texts[1])
	}

	device.mu.Lock()
	frames := slices.Clone(device.frames)
	device.mu.Unlock()
	if len(frames) != 4 {
		t.Fatalf("expected 4 playback frames, got %d", len(frames))
	}
	firstMarker := float32(1000) / 32768
	secondMarker := float32(2000) / 32768
	for i, want := range []float32{firstMarker, firstMarker, secondMarker, secondMarker} {
		if frames[i].Samples[0] != want {
			t.Fatalf("frame %d out of order: got marker %f, want %f", i, frames[i].Samples[0], want)
		}
	}

	assertOrderedSubsequence(t, recorder.stateSequence(),
		StateListening, StateResponding, StateSpeaking, StateIdle)

	speechFinalAt := recorder.kindIndex(events.KindAssistantSpeechFinal)
	completedAt := recorder.kindIndex(events.KindTurnCompleted)
	if speechFinalAt < 0 || completedAt < 0 || speechFinalAt > completedAt {
		t.Fatalf("expected speech-final before turn-completed, got indices %d and %d", speechFinalAt, completedAt)
	}
	if at := recorder.kindIndex(events.KindPipelineError); at >= 0 {
		t.Fatal("expected no error events on the happy path")
	}
}

func TestPipelineCancelTearsDownAtomically(t *testing.T) {
	recognizer := &fakeRecognizer{}
	model := &fakeModel{increments: []string{"It's sunny today. ", "Expect highs near 75."}}
	speech := &fakeSpeechProvider{framesPerChunk: 2}
	capture := &fakeCaptureDevice{}
	// Completions are withheld so playback never drains on its own.
	device := &fakePlaybackDevice{}

	p := New(
		WithStreamingLLM(model),
		WithSpeechToTextClient(recognizer),
		WithSynthesizerClient(speech),
		WithAudioInput(capture),
		WithAudioOutput(device),
		WithAutoListen(false),
		WithChunkerConfig(ChunkerConfig{MaxChunkLength: 25, BaseMinLength: 4}),
	)
	defer p.Close()

	recorder := newEventRecorder()
	p.Run(context.Background(), recorder.runOptions()...)

	p.StartListening()
	waitFor(t, "capture to start", capture.isCapturing)
	recognizer.fireFinal("What's the weather?")
	waitFor(t, "playback to reach the speaking state", func() bool { return p.State() == StateSpeaking })

	p.Cancel()

	select {
	case <-recorder.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the cancellation event")
	}
	waitFor(t, "pipeline to return to idle", func() bool { return p.State() == StateIdle })

	if scheduler := p.scheduler.Load(); scheduler != nil {
		t.Fatal("expected the playback scheduler to be discarded")
	}
	waitFor(t, "the fetch chain to wind down", func() bool { return !p.fetcher.IsFetching() })
	if !device.isStopped() {
		t.Fatal("expected the playback device to be stopped")
	}
	if capture.isCapturing() {
		t.Fatal("expected the capture device to be released")
	}
	if snapshot := p.TurnSnapshot(); snapshot != (TurnInfo{}) {
		t.Fatalf("expected an empty turn snapshot after cancel, got %+v", snapshot)
	}
	if at := recorder.kindIndex(events.KindPipelineError); at >= 0 {
		t.Fatal("cancellation must not emit error events")
	}
}

func TestPipelinePromptCompletesWithoutSynthesizer(t *testing.T) {
	model := &fakeModel{increments: []string{"All done ", "here."}}

	p := New(
		WithStreamingLLM(model),
		WithAutoListen(false),
	)
	defer p.Close()

	var playbackEnded string
	var mu sync.Mutex

	recorder := newEventRecorder()
	opts := append(recorder.runOptions(), WithAudioEndedCallback(func(transcript string) {
		mu.Lock()
		playbackEnded = transcript
		mu.Unlock()
	}))
	p.Run(context.Background(), opts...)

	p.SendPrompt("Say something.")
	recorder.awaitTurnCompleted(t)
	waitFor(t, "pipeline to return to idle", func() bool { return p.State() == StateIdle })

	mu.Lock()
	ended := playbackEnded
	mu.Unlock()
	if ended != "All done here." {
		t.Fatalf("expected the full response on playback end, got %q", ended)
	}

	if slices.Contains(recorder.stateSequence(), StateSpeaking) {
		t.Fatal("expected no speaking state without audible frames")
	}
}

func TestPipelineSkipsMalformedStreamEvents(t *testing.T) {
	model := &fakeModel{
		increments: []string{"One. ", "Two."},
		faults:     map[int]error{1: fmt.Errorf("event 7: %w", llms.ErrMalformedEvent)},
	}

	p := New(WithStreamingLLM(model), WithAutoListen(false))
	defer p.Close()

	var playbackEnded string
	var mu sync.Mutex

	recorder := newEventRecorder()
	opts := append(recorder.runOptions(), WithAudioEndedCallback(func(transcript string) {
		mu.Lock()
		playbackEnded = transcript
		mu.Unlock()
	}))
	p.Run(context.Background(), opts...)

	p.SendPrompt("Count to two.")
	recorder.awaitTurnCompleted(t)
	waitFor(t, "pipeline to return to idle", func() bool { return p.State() == StateIdle })

	mu.Lock()
	ended := playbackEnded
	mu.Unlock()
	if ended != "One. Two." {
		t.Fatalf("expected the text after the malformed event to survive, got %q", ended)
	}
	if at := recorder.kindIndex(events.KindPipelineError); at >= 0 {
		t.Fatal("a malformed stream event must not surface as a pipeline error")
	}
}

func TestPipelineCarriesHistoryAcrossTurns(t *testing.T) {
	model := &fakeModel{increments: []string{"All done here."}}

	p := New(WithStreamingLLM(model), WithAutoListen(false))
	defer p.Close()

	completions := make(chan struct{}, 2)
	p.Run(context.Background(), WithEventCallback(func(event events.Event) {
		if event.Kind() == events.KindTurnCompleted {
			completions <- struct{}{}
		}
	}))

	awaitCompletion := func() {
		select {
		case <-completions:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the turn to complete")
		}
	}

	p.SendPrompt("First question.")
	awaitCompletion()
	p.SendPrompt("Second question.")
	awaitCompletion()

	_, request := model.lastRequest()
	want := []llms.Turn{
		{Role: llms.TurnRoleUser, Content: "First question."},
		{Role: llms.TurnRoleAssistant, Content: "All done here."},
	}
	if !slices.Equal(request.Turns, want) {
		t.Fatalf("expected the second request to carry the first turn's history, got %+v", request.Turns)
	}
}

func TestPipelineSendAudioRequiresRun(t *testing.T) {
	recognizer := &fakeRecognizer{}
	p := New(WithSpeechToTextClient(recognizer), WithAutoListen(false))
	defer p.Close()

	if err := p.SendAudio([]byte{1, 2}); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning before Run, got %v", err)
	}

	p.Run(context.Background())
	if err := p.SendAudio([]byte{1, 2}); err != nil {
		t.Fatalf("expected audio to be forwarded, got %v", err)
	}
	waitFor(t, "the recognizer to receive audio", func() bool { return recognizer.audioChunks() == 1 })
}
