package audio

import (
	"context"
	"time"
)

// CaptureConfig holds configuration for audio capture
type CaptureConfig struct {
	// SampleRate is the number of samples per second (Hz)
	// 16000 is what the Vosk models expect
	SampleRate uint32

	// Channels is the number of audio channels, 1 = mono
	Channels uint32

	// BitDepth is the number of bits per sample; only 16 is supported
	BitDepth uint32

	// BufferFrames is the number of frames delivered per callback
	BufferFrames uint32

	// SampleBufferSize is the capacity of the samples channel
	// Larger = more tolerance for slow recognition, higher memory usage
	SampleBufferSize int

	// DeviceName selects the capture device by case-insensitive partial match
	// Empty string = use default device
	DeviceName string
}

// DefaultConfig returns mono 16-bit 16kHz capture in half-second blocks
func DefaultConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:       16000,
		Channels:         1,
		BitDepth:         16,
		BufferFrames:     8000, // 500ms at 16kHz
		SampleBufferSize: 20,   // ~10 seconds
		DeviceName:       "",
	}
}

// AudioSample represents a chunk of captured audio data
type AudioSample struct {
	Data      []byte    // Raw little-endian s16 PCM
	Timestamp time.Time // When the sample was captured
	Frames    uint32    // Number of audio frames in this sample
}

// Capturer is the interface for audio capture implementations.
// A capturer may be started again after Stop.
type Capturer interface {
	// Start begins audio capture
	Start(ctx context.Context) error

	// Stop stops audio capture and closes the sample and error channels
	Stop() error

	// Samples returns the channel of the current capture run
	Samples() <-chan AudioSample

	// Errors returns the error channel of the current capture run
	Errors() <-chan error

	// IsRunning returns true if capture is currently active
	IsRunning() bool

	// Close releases the audio backend
	Close() error
}

// NewCapturer creates a new audio capturer with the given configuration
func NewCapturer(config CaptureConfig) (Capturer, error) {
	return NewMalgoCapturer(config)
}
