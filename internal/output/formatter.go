package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Turn is one recognized utterance and the command it resolved to
type Turn struct {
	Index     int       `json:"index"`
	Session   string    `json:"session,omitempty"`
	Text      string    `json:"text"`
	Intent    string    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// Formatter is the interface for transcript formatters
type Formatter interface {
	// WriteTurn writes one turn of the session
	WriteTurn(turn Turn) error

	// Close closes the formatter and releases resources
	Close() error
}

// NewFormatter returns the formatter for a format name: json or text
func NewFormatter(format string, writer io.WriteCloser) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return NewJSONFormatter(writer), nil
	case "text":
		return NewPlainTextFormatter(writer), nil
	default:
		return nil, fmt.Errorf("unknown transcript format: %s (valid: json, text)", format)
	}
}

// JSONFormatter writes one JSON object per line
type JSONFormatter struct {
	writer  io.WriteCloser
	encoder *json.Encoder
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(writer io.WriteCloser) *JSONFormatter {
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)

	return &JSONFormatter{
		writer:  writer,
		encoder: encoder,
	}
}

// WriteTurn writes a turn in JSON format
func (j *JSONFormatter) WriteTurn(turn Turn) error {
	return j.encoder.Encode(turn)
}

// Close closes the underlying writer
func (j *JSONFormatter) Close() error {
	return j.writer.Close()
}

// PlainTextFormatter writes "[15:04:05] intent: text" lines
type PlainTextFormatter struct {
	writer io.WriteCloser
}

// NewPlainTextFormatter creates a new plain text formatter
func NewPlainTextFormatter(writer io.WriteCloser) *PlainTextFormatter {
	return &PlainTextFormatter{
		writer: writer,
	}
}

// WriteTurn writes a turn in plain text
func (p *PlainTextFormatter) WriteTurn(turn Turn) error {
	timestamp := turn.Timestamp.Format("15:04:05")
	_, err := fmt.Fprintf(p.writer, "[%s] %s: %s\n", timestamp, turn.Intent, turn.Text)
	return err
}

// Close closes the underlying writer
func (p *PlainTextFormatter) Close() error {
	return p.writer.Close()
}
