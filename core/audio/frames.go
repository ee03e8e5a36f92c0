package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Canonical frame geometry for the playback pipeline. Every decoded frame
// carries FrameSamples samples except possibly the last frame of a synthesis
// payload, which may be shorter.
const (
	FrameDuration = 20 * time.Millisecond
	FrameSamples  = DefaultSampleRate * int(FrameDuration) / int(time.Second)
)

// Frame is a fixed-duration block of decoded samples at the canonical sample
// rate and channel count. Samples are normalized to [-1, 1].
type Frame struct {
	Samples []float32
}

// Duration reports the playable duration of the frame at the given rate.
func (f Frame) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(sampleRate)
}

// FrameBuilder decodes synthesis payloads (little-endian 16-bit PCM preceded
// by a fixed-size header) into canonical playback frames.
type FrameBuilder struct {
	// HeaderSize is the number of leading bytes to skip before sample data.
	HeaderSize int
	// FrameSamples is the per-frame sample count frames are sliced to.
	FrameSamples int
	// Channels is the channel count the payload is declared to carry.
	Channels int
}

func NewFrameBuilder() FrameBuilder {
	return FrameBuilder{
		HeaderSize:   44,
		FrameSamples: FrameSamples,
		Channels:     DefaultChannels,
	}
}

// Build decodes a payload into ordered frames.
//
// A payload that contains a header but no sample data decodes to zero frames
// without error. A payload whose sample data is not a whole number of samples
// for the declared channel count is rejected. A final partial frame is still
// emitted if it contains at least one sample.
func (b FrameBuilder) Build(raw []byte) ([]Frame, error) {
	if len(raw) < b.HeaderSize {
		return nil, fmt.Errorf("payload shorter than %d byte header: %d bytes", b.HeaderSize, len(raw))
	}

	body := raw[b.HeaderSize:]
	if len(body) == 0 {
		return nil, nil
	}

	channels := b.Channels
	if channels <= 0 {
		channels = 1
	}
	bytesPerSample := 2 * channels
	if len(body)%bytesPerSample != 0 {
		return nil, fmt.Errorf("payload is not a whole number of samples: %d bytes for %d channels", len(body), channels)
	}

	samples := make([]float32, 0, len(body)/2)
	for i := 0; i+1 < len(body); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(body[i : i+2]))
		samples = append(samples, float32(sample)/32768)
	}

	frameSamples := b.FrameSamples * channels
	if frameSamples <= 0 {
		frameSamples = FrameSamples * channels
	}

	frames := make([]Frame, 0, (len(samples)+frameSamples-1)/frameSamples)
	for start := 0; start < len(samples); start += frameSamples {
		end := min(start+frameSamples, len(samples))
		frames = append(frames, Frame{Samples: samples[start:end]})
	}

	return frames, nil
}
