package pipeline

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultMaxChunkLength = 200
	defaultBaseMinLength  = 60
	// Backward-search margins for boundary detection. Tunable heuristics,
	// the split policy (sentence > comma > whitespace > hard cut) is what
	// matters.
	defaultSentenceMargin = 75
	defaultCommaMargin    = 40
)

type chunkerConfig struct {
	maxChunkLength int
	baseMinLength  int
	sentenceMargin int
	commaMargin    int
}

func defaultChunkerConfig() chunkerConfig {
	return chunkerConfig{
		maxChunkLength: defaultMaxChunkLength,
		baseMinLength:  defaultBaseMinLength,
		sentenceMargin: defaultSentenceMargin,
		commaMargin:    defaultCommaMargin,
	}
}

// textChunk is an immutable slice of response text plus the cursor range it
// consumes. Consumed exactly once by the synthesis fetch chain.
type textChunk struct {
	text  string
	start int
	end   int
}

func (c textChunk) empty() bool { return c.end <= c.start }

// nextChunk selects the next synthesis-sized chunk from the accumulated
// response text. An empty chunk means not enough text has arrived yet; the
// caller retries once more text (or stream completion) is known.
//
// Chunks split at natural boundaries: a sentence terminator within the
// sentence margin, then a comma within the comma margin, then the last
// whitespace in the candidate, then a hard cut at the maximum length. While
// the stream is still running, chunks shorter than the dynamic minimum
// (baseMin scaled by playback speed) are deferred so faster playback does not
// starve the fetch chain on tiny fragments.
func nextChunk(text string, cursor int, streamComplete bool, speed float64, cfg chunkerConfig) (textChunk, int) {
	if cursor >= len(text) {
		return textChunk{}, cursor
	}

	remaining := text[cursor:]

	if streamComplete && len(remaining) <= cfg.maxChunkLength {
		return textChunk{text: remaining, start: cursor, end: len(text)}, len(text)
	}

	candidate := remaining
	if len(candidate) > cfg.maxChunkLength {
		candidate = candidate[:runeBoundary(remaining, cfg.maxChunkLength)]
	}

	splitAt := boundarySplit(candidate, cfg)

	minLength := dynamicMinLength(cfg.baseMinLength, speed)
	if splitAt < minLength && !streamComplete {
		return textChunk{}, cursor
	}

	newCursor := cursor + splitAt
	return textChunk{text: text[cursor:newCursor], start: cursor, end: newCursor}, newCursor
}

// boundarySplit picks the split position within candidate, preferring a
// sentence terminator, then a comma, then the last whitespace, then the full
// candidate length.
func boundarySplit(candidate string, cfg chunkerConfig) int {
	if at := searchBackward(candidate, cfg.sentenceMargin, isSentenceTerminator); at > 0 {
		return at
	}
	if at := searchBackward(candidate, cfg.commaMargin, func(r byte) bool { return r == ',' }); at > 0 {
		return at
	}
	if at := strings.LastIndexFunc(candidate, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' }); at > 0 {
		return at + 1
	}
	return len(candidate)
}

// searchBackward scans from the end of candidate up to margin characters back
// for a byte matching the predicate, returning the split position just after
// it, or 0 if none is found.
func searchBackward(candidate string, margin int, match func(byte) bool) int {
	limit := len(candidate) - margin
	if limit < 0 {
		limit = 0
	}

	for i := len(candidate) - 1; i >= limit; i-- {
		if match(candidate[i]) {
			return i + 1
		}
	}
	return 0
}

func isSentenceTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// runeBoundary backs cut off to the nearest rune start so the hard cut never
// splits a multibyte rune. A cut inside the very first rune advances to
// include it whole, so the cursor always moves.
func runeBoundary(s string, cut int) int {
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
	return cut
}

// dynamicMinLength scales the base minimum chunk length with playback speed.
// Faster playback consumes text faster, so chunks must grow proportionally.
func dynamicMinLength(baseMin int, speed float64) int {
	if speed > 1 {
		return int(float64(baseMin) * speed)
	}
	return baseMin
}
