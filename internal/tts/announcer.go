package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Announcer prints each message to the console and speaks it.
// Synthesis failures are logged and never returned.
type Announcer struct {
	mu      sync.Mutex
	synth   Synthesizer
	writer  io.Writer
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// AnnouncerConfig configures an Announcer
type AnnouncerConfig struct {
	// Prefix is printed before every message, e.g. "Ассистент"
	Prefix string

	// Writer is the console destination (default: os.Stdout)
	Writer io.Writer

	// Timeout bounds a single synthesis (default: 30s)
	Timeout time.Duration

	Logger *slog.Logger
}

// NewAnnouncer creates an announcer over synth. A nil synth is silent.
func NewAnnouncer(synth Synthesizer, cfg AnnouncerConfig) *Announcer {
	if synth == nil {
		synth = Silent{}
	}
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Announcer{
		synth:   synth,
		writer:  writer,
		prefix:  cfg.Prefix,
		timeout: timeout,
		logger:  logger,
	}
}

// Say prints and speaks text
func (a *Announcer) Say(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.prefix != "" {
		fmt.Fprintf(a.writer, "%s: %s\n", a.prefix, text)
	} else {
		fmt.Fprintln(a.writer, text)
	}

	if text == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.synth.Synthesize(ctx, text); err != nil {
		a.logger.Warn("speech synthesis failed", "text", text, "err", err)
	}
}

// Close releases the underlying synthesizer
func (a *Announcer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.synth.Close()
}
