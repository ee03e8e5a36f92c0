package events

const (
	// KindAssistantSpeechChunk identifies a synthesized audio payload for one
	// text chunk.
	KindAssistantSpeechChunk Kind = "assistant_speech.chunk"
	// KindAssistantSpeechFinal identifies the end of synthesis dispatch for
	// the current turn.
	KindAssistantSpeechFinal Kind = "assistant_speech.final"
)

// AssistantSpeechChunk carries the synthesized audio for one text chunk. The
// payload is the raw provider response, exposed for optional persistence by
// external collaborators.
type AssistantSpeechChunk struct {
	Base
	ChunkIndex int
	Text       string
	Audio      []byte
}

// NewAssistantSpeechChunk creates an assistant speech chunk event.
func NewAssistantSpeechChunk(chunkIndex int, text string, audio []byte) AssistantSpeechChunk {
	return AssistantSpeechChunk{Base: NewBase(KindAssistantSpeechChunk), ChunkIndex: chunkIndex, Text: text, Audio: audio}
}

// AssistantSpeechFinal marks the end of synthesis dispatch for the turn.
type AssistantSpeechFinal struct{ Base }

// NewAssistantSpeechFinal creates an assistant speech final event.
func NewAssistantSpeechFinal() AssistantSpeechFinal {
	return AssistantSpeechFinal{Base: NewBase(KindAssistantSpeechFinal)}
}
