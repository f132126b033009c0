package output

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Transcript numbers the turns of one session and hands them to a Formatter.
// Write errors are logged; a broken transcript never stops the session.
type Transcript struct {
	mu        sync.Mutex
	formatter Formatter
	session   string
	index     int
	now       func() time.Time
	logger    *slog.Logger
}

// NewTranscript creates a transcript for one session
func NewTranscript(formatter Formatter, session string, logger *slog.Logger) *Transcript {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcript{
		formatter: formatter,
		session:   session,
		now:       time.Now,
		logger:    logger,
	}
}

// OpenTranscript appends to the file at path in the given format
func OpenTranscript(path, format, session string, logger *slog.Logger) (*Transcript, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	formatter, err := NewFormatter(format, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return NewTranscript(formatter, session, logger), nil
}

// Record writes the next turn
func (t *Transcript) Record(text, intent string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.index++
	err := t.formatter.WriteTurn(Turn{
		Index:     t.index,
		Session:   t.session,
		Text:      text,
		Intent:    intent,
		Timestamp: t.now(),
	})
	if err != nil {
		t.logger.Warn("failed to write transcript", "err", err)
	}
}

// Close closes the formatter
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.formatter.Close()
}
