package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/ferrostad/voxa-core/core/audio"
)

// AudioInput is the capture device contract. StartCapture delivers raw audio
// on the device's own thread; StopCapture releases the device so the output
// side can acquire it on platforms where capture and playback cannot overlap.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	Close() error
}

// audioInput normalizes optional capture wiring; all methods are safe on a
// zero or unconfigured value.
type audioInput struct {
	// client stores the configured capture device.
	client AudioInput

	// capturing reports whether the device currently owns the input side.
	capturing atomic.Bool

	// onAudio receives raw captured audio.
	onAudio func(audio []byte)
}

func (a *audioInput) set(client AudioInput) {
	if a == nil {
		return
	}

	a.client = client
	a.capturing.Store(false)
}

func (a *audioInput) isConfigured() bool { return a != nil && a.client != nil }
func (a *audioInput) IsCapturing() bool  { return a != nil && a.capturing.Load() }

// Capture acquires the device and starts delivering audio. Re-entrant calls
// while already capturing are no-ops.
func (a *audioInput) Capture(ctx context.Context) error {
	if !a.isConfigured() {
		return nil
	}

	if !a.capturing.CompareAndSwap(false, true) {
		return nil
	}

	if err := a.client.StartCapture(ctx, func(chunk []byte) {
		if !a.capturing.Load() {
			return
		}
		if a.onAudio != nil {
			a.onAudio(chunk)
		}
	}); err != nil {
		a.capturing.Store(false)
		return err
	}

	return nil
}

// Release stops capture and frees the device for the output side.
func (a *audioInput) Release() error {
	if !a.isConfigured() {
		return nil
	}

	if !a.capturing.CompareAndSwap(true, false) {
		return nil
	}

	return a.client.StopCapture()
}

func (a *audioInput) Close() error {
	if !a.isConfigured() {
		return nil
	}

	a.capturing.Store(false)
	return a.client.Close()
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if !a.isConfigured() {
		return audio.GetDefaultEncodingInfo()
	}

	return a.client.EncodingInfo()
}
