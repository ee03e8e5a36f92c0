// Package portaudio provides an alternative playback device backed by
// PortAudio, for platforms where miniaudio is unavailable.
package portaudio

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ferrostad/voxa-core/core/audio"
	"github.com/gordonklaus/portaudio"
)

type queuedFrame struct {
	samples  []float32
	onPlayed func()
}

// Client is a playback-only device. Frames are written to the blocking
// PortAudio stream on a dedicated writer goroutine; a frame's completion
// callback fires once its last buffer write returns.
type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	out        []int16

	mu      sync.Mutex
	queue   chan queuedFrame
	writing bool
	stop    chan struct{}
	done    chan struct{}

	closeOnce sync.Once
}

func NewClient(bufferSize int) (*Client, error) {
	if bufferSize <= 0 {
		bufferSize = audio.FrameSamples
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, audio.DefaultChannels, float64(audio.DefaultSampleRate), bufferSize, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		out:        out,
	}, nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (c *Client) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writing {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	c.queue = make(chan queuedFrame, 64)
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.writing = true
	go c.writeLoop(c.queue, c.stop, c.done)

	return nil
}

func (c *Client) SendFrame(frame audio.Frame, onPlayed func()) error {
	c.mu.Lock()
	queue := c.queue
	writing := c.writing
	c.mu.Unlock()

	if !writing {
		return fmt.Errorf("portaudio stream not started")
	}

	select {
	case queue <- queuedFrame{samples: frame.Samples, onPlayed: onPlayed}:
		return nil
	default:
		return fmt.Errorf("portaudio frame queue full")
	}
}

// Flush discards queued frames without stopping the stream. Their completion
// callbacks are dropped; flushing only happens during turn teardown.
func (c *Client) Flush() {
	c.mu.Lock()
	queue := c.queue
	c.mu.Unlock()

	for {
		select {
		case <-queue:
		default:
			return
		}
	}
}

func (c *Client) Stop() error {
	c.mu.Lock()
	if !c.writing {
		c.mu.Unlock()
		return nil
	}
	c.writing = false
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	<-done
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.Stop()
		c.stream.Close()
		portaudio.Terminate()
	})
	return err
}

func (c *Client) writeLoop(queue chan queuedFrame, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case frame := <-queue:
			c.writeFrame(frame.samples, stop)
			if frame.onPlayed != nil {
				frame.onPlayed()
			}
		}
	}
}

// writeFrame plays one frame through the blocking stream in bufferSize
// pieces. A final partial piece is zero-padded.
func (c *Client) writeFrame(samples []float32, stop chan struct{}) {
	for start := 0; start < len(samples); start += c.bufferSize {
		select {
		case <-stop:
			return
		default:
		}

		end := min(start+c.bufferSize, len(samples))
		piece := samples[start:end]
		for i := range c.out {
			if i < len(piece) {
				sample := piece[i]
				if sample > 1 {
					sample = 1
				} else if sample < -1 {
					sample = -1
				}
				c.out[i] = int16(math.Round(float64(sample) * 32767))
			} else {
				c.out[i] = 0
			}
		}

		if err := c.stream.Write(); err != nil {
			return
		}
	}
}
