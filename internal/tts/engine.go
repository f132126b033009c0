package tts

import (
	"context"
	"errors"
)

// ErrEmptyText is returned when attempting to synthesize empty text
var ErrEmptyText = errors.New("text cannot be empty")

// Synthesizer renders text as audible speech
type Synthesizer interface {
	// Synthesize speaks text and returns once playback has finished
	Synthesize(ctx context.Context, text string) error

	// Close releases resources
	Close() error
}

// Config holds configuration for a speech engine
type Config struct {
	// Voice is the language or voice name, e.g. "ru" or "en-us"
	Voice string

	// Rate is the speaking rate in words per minute
	Rate int

	// Volume is the amplitude, 0-200 with 100 as normal
	Volume int
}

// DefaultConfig returns the default speech configuration for a voice
func DefaultConfig(voice string) Config {
	return Config{
		Voice:  voice,
		Rate:   160,
		Volume: 100,
	}
}

// Silent is a Synthesizer that produces no audio
type Silent struct{}

// Synthesize does nothing
func (Silent) Synthesize(ctx context.Context, text string) error { return nil }

// Close does nothing
func (Silent) Close() error { return nil }
