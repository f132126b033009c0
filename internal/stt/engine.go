package stt

import "context"

// Result represents a speech recognition result
type Result struct {
	// Text is the recognized text
	Text string

	// Partial indicates the utterance is still in progress
	Partial bool

	// Confidence is the average word confidence (0.0 to 1.0)
	Confidence float64
}

// Config holds configuration for the STT engine
type Config struct {
	// ModelPath is the path to the STT model directory
	ModelPath string

	// SampleRate is the audio sample rate in Hz
	SampleRate int
}

// Engine is the interface for speech-to-text engines
type Engine interface {
	// Initialize loads the model
	Initialize(config Config) error

	// ProcessAudio feeds 16-bit PCM and returns a partial or final result.
	// A final result marks the end of an utterance.
	ProcessAudio(ctx context.Context, audioData []byte) (*Result, error)

	// FinalResult flushes the current utterance and resets the recognizer
	FinalResult() (*Result, error)

	// Reset discards any audio of the current utterance
	Reset() error

	// Close releases resources
	Close() error
}

// DefaultConfig returns a default STT configuration
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:  modelPath,
		SampleRate: 16000,
	}
}
