package audio

import (
	"encoding/binary"
	"testing"
)

func pcmPayload(header int, samples []int16) []byte {
	payload := make([]byte, header, header+len(samples)*2)
	for _, s := range samples {
		payload = binary.LittleEndian.AppendUint16(payload, uint16(s))
	}
	return payload
}

func TestBuildSlicesFixedFramesAndEmitsPartialTail(t *testing.T) {
	b := FrameBuilder{HeaderSize: 44, FrameSamples: 4, Channels: 1}

	samples := make([]int16, 10)
	frames, err := b.Build(pcmPayload(44, samples))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if len(frames[0].Samples) != 4 || len(frames[1].Samples) != 4 {
		t.Fatalf("expected full frames of 4 samples, got %d and %d", len(frames[0].Samples), len(frames[1].Samples))
	}
	if len(frames[2].Samples) != 2 {
		t.Fatalf("expected partial tail frame of 2 samples, got %d", len(frames[2].Samples))
	}
}

func TestBuildNormalizesToUnitRange(t *testing.T) {
	b := FrameBuilder{HeaderSize: 0, FrameSamples: 4, Channels: 1}

	frames, err := b.Build(pcmPayload(0, []int16{32767, -32768, 0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(frames))
	}

	got := frames[0].Samples
	if got[0] <= 0.999 || got[0] > 1 {
		t.Fatalf("expected max positive sample near 1, got %f", got[0])
	}
	if got[1] != -1 {
		t.Fatalf("expected min sample -1, got %f", got[1])
	}
	if got[2] != 0 {
		t.Fatalf("expected zero sample, got %f", got[2])
	}
}

func TestBuildRejectsPartialSamples(t *testing.T) {
	b := FrameBuilder{HeaderSize: 0, FrameSamples: 4, Channels: 1}

	payload := pcmPayload(0, []int16{1, 2})
	if _, err := b.Build(append(payload, 0x01)); err == nil {
		t.Fatal("expected error for payload with a trailing partial sample")
	}
}

func TestBuildRejectsPartialSamplesForChannelCount(t *testing.T) {
	b := FrameBuilder{HeaderSize: 0, FrameSamples: 4, Channels: 2}

	// Three 16-bit values cannot form whole stereo sample pairs.
	if _, err := b.Build(pcmPayload(0, []int16{1, 2, 3})); err == nil {
		t.Fatal("expected error for stereo payload with unpaired sample")
	}
}

func TestBuildEmptyBodyYieldsNoFrames(t *testing.T) {
	b := NewFrameBuilder()

	frames, err := b.Build(make([]byte, b.HeaderSize))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("expected no frames for header-only payload, got %d", len(frames))
	}
}

func TestBuildShortPayloadFails(t *testing.T) {
	b := NewFrameBuilder()

	if _, err := b.Build(make([]byte, b.HeaderSize-1)); err == nil {
		t.Fatal("expected error for payload shorter than the header")
	}
}
