package miniaudio

import (
	"fmt"
	"sync"

	"github.com/ferrostad/voxa-core/core/audio"
	"github.com/gen2brain/malgo"
)

// captureDevice wraps a malgo capture device delivering raw 16-bit PCM at the
// canonical sample rate. The period size matches the pipeline's frame
// duration so one device callback carries roughly one frame of audio.
type captureDevice struct {
	device *malgo.Device
	config malgo.DeviceConfig

	mu      sync.Mutex
	onAudio func(audio []byte)
}

func (c *captureDevice) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	format := malgo.FormatS16
	channels := audio.DefaultChannels
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = uint32(audio.DefaultSampleRate)
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = uint32(audio.FrameSamples)
	c.config.Periods = 3

	device, err := malgo.InitDevice(audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if n == 0 || len(pInput) < n {
				return
			}

			c.mu.Lock()
			onAudio := c.onAudio
			c.mu.Unlock()
			if onAudio != nil {
				onAudio(pInput[:n])
			}
		},
	})
	if err != nil {
		return err
	}

	c.device = device
	return nil
}

func (c *captureDevice) Start(onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("capture device not initialized")
	}
	c.onAudio = onAudio

	if c.device.IsStarted() {
		return nil
	}
	if err := c.device.Start(); err != nil {
		c.onAudio = nil
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

func (c *captureDevice) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onAudio = nil
	if c.device == nil || !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

func (c *captureDevice) Uninit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	c.onAudio = nil
}
