package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// MalgoCapturer implements the Capturer interface using malgo
type MalgoCapturer struct {
	config       CaptureConfig
	malgoContext *malgo.AllocatedContext
	device       *malgo.Device
	samples      chan AudioSample
	errors       chan error
	running      bool
	mu           sync.RWMutex
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewMalgoCapturer creates a new malgo-based audio capturer
func NewMalgoCapturer(config CaptureConfig) (*MalgoCapturer, error) {
	if config.BitDepth != 0 && config.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d, only 16-bit capture is supported", config.BitDepth)
	}
	if config.SampleBufferSize <= 0 {
		config.SampleBufferSize = DefaultConfig().SampleBufferSize
	}

	return &MalgoCapturer{config: config}, nil
}

// Start begins audio capture. Each run gets fresh sample and error channels.
func (m *MalgoCapturer) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("capturer is already running")
	}

	if m.malgoContext == nil {
		malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoContext = malgoCtx
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = m.config.Channels
	deviceConfig.SampleRate = m.config.SampleRate
	deviceConfig.PeriodSizeInFrames = m.config.BufferFrames

	if m.config.DeviceName != "" {
		info, err := m.findDevice(m.config.DeviceName)
		if err != nil {
			return err
		}
		deviceConfig.Capture.DeviceID = info.ID.Pointer()
	}

	samples := make(chan AudioSample, m.config.SampleBufferSize)
	errs := make(chan error, 10)

	var callbacks malgo.DeviceCallbacks
	callbacks.Data = func(pOutputSample, pInputSamples []byte, framecount uint32) {
		// Copy the input samples, malgo reuses the buffer
		dataCopy := make([]byte, len(pInputSamples))
		copy(dataCopy, pInputSamples)

		sample := AudioSample{
			Data:      dataCopy,
			Timestamp: time.Now(),
			Frames:    framecount,
		}

		select {
		case samples <- sample:
		default:
			select {
			case errs <- fmt.Errorf("sample buffer overflow, dropping frames"):
			default:
			}
		}
	}

	device, err := malgo.InitDevice(m.malgoContext.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.samples = samples
	m.errors = errs
	m.stopChan = make(chan struct{})
	m.running = true

	stop := m.stopChan
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-ctx.Done():
			m.Stop()
		case <-stop:
		}
	}()

	return nil
}

// Stop stops audio capture
func (m *MalgoCapturer) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopChan)

	var stopErr error
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			stopErr = fmt.Errorf("failed to stop device: %w", err)
		}
		m.device.Uninit()
		m.device = nil
	}

	// No callbacks run after Uninit, so the channels can be closed
	close(m.samples)
	close(m.errors)
	m.mu.Unlock()

	return stopErr
}

// Close stops capture and frees the malgo context
func (m *MalgoCapturer) Close() error {
	err := m.Stop()
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoContext != nil {
		_ = m.malgoContext.Uninit()
		m.malgoContext.Free()
		m.malgoContext = nil
	}

	return err
}

// Samples returns a channel that receives audio samples
func (m *MalgoCapturer) Samples() <-chan AudioSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// Errors returns a channel that receives capture errors
func (m *MalgoCapturer) Errors() <-chan error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errors
}

// IsRunning returns true if capture is currently active
func (m *MalgoCapturer) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *MalgoCapturer) findDevice(name string) (malgo.DeviceInfo, error) {
	infos, err := m.malgoContext.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceInfo{}, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	search := strings.ToLower(name)
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Name()), search) {
			return info, nil
		}
	}

	return malgo.DeviceInfo{}, fmt.Errorf("no capture device matching %q", name)
}
