package stt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emmett/holidayvox/internal/audio"
)

// ErrCaptureClosed is returned when the capture stream ends mid-utterance
var ErrCaptureClosed = errors.New("audio capture closed")

// ListenerConfig configures a Listener
type ListenerConfig struct {
	// IgnoreEmpty keeps listening when the recognizer finalizes an empty utterance
	IgnoreEmpty bool

	Logger *slog.Logger

	// OnUtterance is called with every final utterance, empty ones included
	OnUtterance func(text string)
}

// Listener turns captured audio into one utterance at a time.
// Capture runs only while Listen is blocked, so the assistant's own
// voice between commands is not recognized.
type Listener struct {
	capturer audio.Capturer
	engine   Engine
	config   ListenerConfig
	logger   *slog.Logger
}

// NewListener creates a listener over a capturer and an initialized engine
func NewListener(capturer audio.Capturer, engine Engine, config ListenerConfig) *Listener {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		capturer: capturer,
		engine:   engine,
		config:   config,
		logger:   logger,
	}
}

// Listen blocks until the recognizer produces a final utterance or ctx is done
func (l *Listener) Listen(ctx context.Context) (string, error) {
	if err := l.engine.Reset(); err != nil {
		return "", fmt.Errorf("reset recognizer: %w", err)
	}

	if err := l.capturer.Start(ctx); err != nil {
		return "", fmt.Errorf("start capture: %w", err)
	}
	defer l.capturer.Stop()

	samples := l.capturer.Samples()
	errs := l.capturer.Errors()
	var lastPartial string

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.logger.Warn("capture error", "err", err)

		case sample, ok := <-samples:
			if !ok {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				return l.flush()
			}

			result, err := l.engine.ProcessAudio(ctx, sample.Data)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				return "", fmt.Errorf("recognize: %w", err)
			}

			if result.Partial {
				if result.Text != "" && result.Text != lastPartial {
					l.logger.Debug("partial", "text", result.Text)
					lastPartial = result.Text
				}
				continue
			}

			text := strings.TrimSpace(result.Text)
			if l.config.OnUtterance != nil {
				l.config.OnUtterance(text)
			}
			if text == "" && l.config.IgnoreEmpty {
				lastPartial = ""
				continue
			}

			l.logger.Debug("utterance", "text", text, "confidence", result.Confidence)
			return text, nil
		}
	}
}

// flush returns the utterance the recognizer was holding when capture ended
func (l *Listener) flush() (string, error) {
	result, err := l.engine.FinalResult()
	if err != nil {
		return "", errors.Join(ErrCaptureClosed, fmt.Errorf("flush recognizer: %w", err))
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", ErrCaptureClosed
	}
	if l.config.OnUtterance != nil {
		l.config.OnUtterance(text)
	}
	l.logger.Debug("utterance flushed", "text", text)
	return text, nil
}
