package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferrostad/voxa-core/core/llms"
)

func TestStreamMarksUnparsableEventsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"One. \"}}]}\n\n")
		fmt.Fprint(w, "data: {not json}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Two.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", WithBaseURL(server.URL))
	stream := client.PromptWithStream(context.Background(), nil)

	var contents []string
	var streamErrs []error
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			streamErrs = append(streamErrs, err)
			continue
		}
		if content, ok := chunk.(llms.StreamContentChunk); ok {
			contents = append(contents, content.Content())
		}
	}

	if len(contents) != 2 || contents[0] != "One. " || contents[1] != "Two." {
		t.Fatalf("expected both content chunks around the bad event, got %q", contents)
	}
	if len(streamErrs) != 1 {
		t.Fatalf("expected exactly one stream error, got %d", len(streamErrs))
	}
	if !errors.Is(streamErrs[0], llms.ErrMalformedEvent) {
		t.Fatalf("expected a malformed-event error, got %v", streamErrs[0])
	}
}
