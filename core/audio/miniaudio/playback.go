package miniaudio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ferrostad/voxa-core/core/audio"
	"github.com/gen2brain/malgo"
)

// playbackDevice wraps a malgo playback device. Queued frames are flattened
// into one pending byte buffer; a completion mark sits at each frame's end
// position and fires once the device callback has consumed past it.
type playbackDevice struct {
	device *malgo.Device
	config malgo.DeviceConfig

	mu      sync.Mutex
	pending []byte
	marks   []playbackMark
}

type playbackMark struct {
	// position is the byte offset into pending at which the frame ends.
	position int
	onPlayed func()
}

func (p *playbackDevice) Init(audioContext *malgo.AllocatedContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	format := malgo.FormatS16
	channels := audio.DefaultChannels
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	p.config = malgo.DefaultDeviceConfig(malgo.Playback)
	p.config.SampleRate = uint32(audio.DefaultSampleRate)
	p.config.Playback.Format = format
	p.config.Playback.Channels = uint32(channels)
	p.config.Alsa.NoMMap = 1
	p.config.PerformanceProfile = malgo.LowLatency
	p.config.PeriodSizeInFrames = uint32(audio.FrameSamples)
	p.config.Periods = 4

	device, err := malgo.InitDevice(audioContext.Context, p.config, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			p.fillOutput(pOutput, int(frameCount)*bytesPerFrame)
		},
	})
	if err != nil {
		return err
	}

	p.device = device
	return nil
}

func (p *playbackDevice) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return fmt.Errorf("playback device not initialized")
	}
	if p.device.IsStarted() {
		return nil
	}

	if err := p.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	return nil
}

func (p *playbackDevice) SendFrame(frame audio.Frame, onPlayed func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return fmt.Errorf("playback device not initialized")
	}
	if !p.device.IsStarted() {
		return fmt.Errorf("playback device not started")
	}

	p.pending = append(p.pending, encodeSamples(frame.Samples)...)
	p.marks = append(p.marks, playbackMark{position: len(p.pending), onPlayed: onPlayed})
	return nil
}

// Flush drops all queued audio. Pending completion callbacks are dropped with
// it; a flush only happens during turn teardown, when nothing listens for
// them anymore.
func (p *playbackDevice) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
	p.marks = nil
}

func (p *playbackDevice) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = nil
	p.marks = nil
	if p.device == nil || !p.device.IsStarted() {
		return nil
	}

	if err := p.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}
	return nil
}

func (p *playbackDevice) Uninit() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
	p.pending = nil
	p.marks = nil
}

// fillOutput runs on the device thread. It hands the next chunk of pending
// audio to the hardware and fires the completion marks it consumed past.
// Underruns leave the rest of the output buffer untouched (silence).
func (p *playbackDevice) fillOutput(pOutput []byte, need int) {
	p.mu.Lock()

	n := min(need, len(p.pending))
	copy(pOutput, p.pending[:n])
	p.pending = p.pending[n:]

	var played []playbackMark
	remaining := p.marks[:0]
	for _, mark := range p.marks {
		mark.position -= n
		if mark.position <= 0 {
			played = append(played, mark)
		} else {
			remaining = append(remaining, mark)
		}
	}
	p.marks = remaining
	p.mu.Unlock()

	if len(played) == 0 {
		return
	}
	go func() {
		for _, mark := range played {
			if mark.onPlayed != nil {
				mark.onPlayed()
			}
		}
	}()
}

// encodeSamples converts normalized float32 samples to little-endian 16-bit
// PCM.
func encodeSamples(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		value := int16(math.Round(float64(sample) * 32767))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(value))
	}
	return out
}
