package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/ferrostad/voxa-core/core/audio"
)

// AudioOutput is the playback device contract: an ordered sequence of frames
// with per-frame completion reporting, immediate stop, and full flush.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	Start(ctx context.Context) error
	// SendFrame queues one frame; onPlayed fires on the device's own thread
	// when the frame has finished playing.
	SendFrame(frame audio.Frame, onPlayed func()) error
	Flush()
	Stop() error
	Close() error
}

// audioOutput normalizes optional playback wiring. Without a configured
// device, frames complete immediately, which keeps the turn lifecycle
// (including drain) working in headless and test setups.
type audioOutput struct {
	// client stores the configured playback device.
	client AudioOutput

	// acquired reports whether the device currently owns the output side.
	acquired atomic.Bool
}

func (a *audioOutput) set(client AudioOutput) {
	if a == nil {
		return
	}

	a.client = client
	a.acquired.Store(false)
}

func (a *audioOutput) isConfigured() bool { return a != nil && a.client != nil }
func (a *audioOutput) IsAcquired() bool   { return a != nil && a.acquired.Load() }

func (a *audioOutput) Start(ctx context.Context) error {
	if a == nil {
		return nil
	}

	if !a.acquired.CompareAndSwap(false, true) {
		return nil
	}

	if !a.isConfigured() {
		return nil
	}

	if err := a.client.Start(ctx); err != nil {
		a.acquired.Store(false)
		return err
	}

	return nil
}

func (a *audioOutput) SendFrame(frame audio.Frame, onPlayed func()) error {
	if !a.isConfigured() {
		if onPlayed != nil {
			onPlayed()
		}
		return nil
	}

	return a.client.SendFrame(frame, onPlayed)
}

func (a *audioOutput) Flush() {
	if a.isConfigured() {
		a.client.Flush()
	}
}

// Stop halts playback immediately and releases the device so a subsequent
// listening phase can reacquire the input side cleanly.
func (a *audioOutput) Stop() error {
	if a == nil {
		return nil
	}

	if !a.acquired.CompareAndSwap(true, false) {
		return nil
	}

	if !a.isConfigured() {
		return nil
	}

	return a.client.Stop()
}

func (a *audioOutput) Close() error {
	if !a.isConfigured() {
		return nil
	}

	a.acquired.Store(false)
	return a.client.Close()
}

func (a *audioOutput) EncodingInfo() audio.EncodingInfo {
	if !a.isConfigured() {
		return audio.GetDefaultEncodingInfo()
	}

	return a.client.EncodingInfo()
}
