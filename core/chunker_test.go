package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNextChunkReturnsEmptyWithoutText(t *testing.T) {
	chunk, cursor := nextChunk("", 0, false, 1, defaultChunkerConfig())
	if !chunk.empty() {
		t.Fatalf("expected empty chunk, got %q", chunk.text)
	}
	if cursor != 0 {
		t.Fatalf("expected cursor to stay at 0, got %d", cursor)
	}
}

func TestNextChunkReturnsFullTailOnCompletedStream(t *testing.T) {
	text := "Expect highs near 75."
	chunk, cursor := nextChunk(text, 0, true, 1, defaultChunkerConfig())
	if chunk.text != text {
		t.Fatalf("expected full tail %q, got %q", text, chunk.text)
	}
	if cursor != len(text) {
		t.Fatalf("expected cursor %d, got %d", len(text), cursor)
	}
}

func TestNextChunkPrefersSentenceBoundary(t *testing.T) {
	cfg := defaultChunkerConfig()
	cfg.maxChunkLength = 30

	text := "Hello there. How are you today? I am fine"
	chunk, cursor := nextChunk(text, 0, true, 1, cfg)

	if chunk.text != "Hello there." {
		t.Fatalf("expected chunk to end at sentence boundary, got %q", chunk.text)
	}
	if cursor != len("Hello there.") {
		t.Fatalf("expected cursor %d, got %d", len("Hello there."), cursor)
	}
}

func TestNextChunkFallsBackToComma(t *testing.T) {
	cfg := defaultChunkerConfig()
	cfg.maxChunkLength = 30
	cfg.baseMinLength = 1

	text := "first clause, second clause continues without a terminator"
	chunk, _ := nextChunk(text, 0, false, 1, cfg)

	if !strings.HasSuffix(chunk.text, ",") {
		t.Fatalf("expected chunk to end at comma, got %q", chunk.text)
	}
}

func TestNextChunkNeverSplitsMidWordWhenWhitespaceExists(t *testing.T) {
	cfg := defaultChunkerConfig()
	cfg.maxChunkLength = 20
	cfg.baseMinLength = 1
	cfg.sentenceMargin = 1
	cfg.commaMargin = 1

	text := "alpha beta gamma delta epsilon"
	chunk, cursor := nextChunk(text, 0, false, 1, cfg)

	if !strings.HasSuffix(chunk.text, " ") {
		t.Fatalf("expected chunk to end at whitespace, got %q", chunk.text)
	}
	if text[cursor] == ' ' {
		t.Fatalf("expected cursor to start the next word, got %q", text[cursor:])
	}
}

func TestNextChunkDefersShortChunksAtHighSpeed(t *testing.T) {
	cfg := defaultChunkerConfig()
	cfg.maxChunkLength = 200
	cfg.baseMinLength = 60

	// The candidate split is 90 characters; at speed 2.0 the dynamic minimum
	// is 120, so the chunk must be deferred while the stream is running.
	text := strings.Repeat("a", 89) + ". more text arrives after the boundary"
	chunk, cursor := nextChunk(text, 0, false, 2.0, cfg)

	if !chunk.empty() {
		t.Fatalf("expected deferred chunk, got %q", chunk.text)
	}
	if cursor != 0 {
		t.Fatalf("expected cursor to stay at 0, got %d", cursor)
	}

	// The same split passes at normal speed.
	chunk, _ = nextChunk(text, 0, false, 1.0, cfg)
	if len(chunk.text) != 90 {
		t.Fatalf("expected 90 character chunk at speed 1.0, got %d", len(chunk.text))
	}
}

func TestNextChunkHardCutsAtRuneBoundary(t *testing.T) {
	cfg := defaultChunkerConfig()

	// 100 three-byte runes with no terminator, comma, or whitespace. The
	// 200-byte hard cut lands mid-rune and must back off.
	text := strings.Repeat("こんにちは", 20)
	chunk, cursor := nextChunk(text, 0, false, 1, cfg)

	if !utf8.ValidString(chunk.text) {
		t.Fatalf("expected a valid UTF-8 chunk, got %q", chunk.text)
	}
	if len(chunk.text) != 198 {
		t.Fatalf("expected the cut backed off to 198 bytes, got %d", len(chunk.text))
	}
	if cursor >= len(text) || !utf8.RuneStart(text[cursor]) {
		t.Fatalf("expected the cursor on a rune boundary, got %d", cursor)
	}
}

func TestNextChunkConcatenationIsOrderedPrefix(t *testing.T) {
	cfg := defaultChunkerConfig()
	cfg.maxChunkLength = 24
	cfg.baseMinLength = 4

	full := "One sentence here. Another one follows, with a clause. And a third sentence closes it out."

	var rebuilt strings.Builder
	cursor := 0
	for step := 8; ; step += 8 {
		streamed := full
		complete := true
		if step < len(full) {
			streamed = full[:step]
			complete = false
		}

		for {
			chunk, newCursor := nextChunk(streamed, cursor, complete, 1, cfg)
			if chunk.empty() {
				break
			}
			if newCursor <= cursor {
				t.Fatalf("cursor did not advance: %d -> %d", cursor, newCursor)
			}
			rebuilt.WriteString(chunk.text)
			cursor = newCursor
			if rebuilt.String() != full[:cursor] {
				t.Fatalf("chunks do not concatenate to a prefix: %q", rebuilt.String())
			}
		}

		if complete {
			break
		}
	}

	if rebuilt.String() != full {
		t.Fatalf("expected chunks to rebuild the full text, got %q", rebuilt.String())
	}
}
