// Package miniaudio provides capture and playback devices backed by malgo
// (miniaudio) that satisfy the pipeline's AudioInput and AudioOutput
// contracts.
package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/ferrostad/voxa-core/core/audio"
	"github.com/gen2brain/malgo"
)

// Client owns one miniaudio context shared by a capture device and a playback
// device. The same Client can serve as both the pipeline's audio input and
// audio output; the pipeline guarantees the two sides never run at once.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing.
	audioContext *malgo.AllocatedContext

	playback playbackDevice
	capture  captureDevice

	closeOnce sync.Once
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize miniaudio context: %w", err)
	}

	client := Client{audioContext: audioCtx}

	if err := client.capture.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	if err := client.playback.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return &client, nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.capture.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.capture.Stop()
}

func (c *Client) Start(_ context.Context) error {
	return c.playback.Start()
}

// SendFrame queues one frame for playback; onPlayed fires on the device
// thread once the frame's last sample has been handed to the hardware.
func (c *Client) SendFrame(frame audio.Frame, onPlayed func()) error {
	return c.playback.SendFrame(frame, onPlayed)
}

func (c *Client) Flush() {
	c.playback.Flush()
}

func (c *Client) Stop() error {
	return c.playback.Stop()
}

// Close releases both devices and the shared context. Safe to call from both
// the input and the output side.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.capture.Uninit()
		c.playback.Uninit()
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
	})
	return nil
}
