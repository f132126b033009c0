package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ bytes.Buffer }

func (*nopCloser) Close() error { return nil }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (failingWriter) Close() error { return nil }

func fixedClock(t *Transcript) {
	t.now = func() time.Time { return time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC) }
}

func TestTranscript_JSON(t *testing.T) {
	var buf nopCloser
	tr := NewTranscript(NewJSONFormatter(&buf), "sess-1", nil)
	fixedClock(tr)

	tr.Record("количество", "count")
	tr.Record("выход", "exit")
	require.NoError(t, tr.Close())

	var turns []Turn
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var turn Turn
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &turn))
		turns = append(turns, turn)
	}

	require.Len(t, turns, 2)
	assert.Equal(t, 1, turns[0].Index)
	assert.Equal(t, 2, turns[1].Index)
	assert.Equal(t, "sess-1", turns[1].Session)
	assert.Equal(t, "выход", turns[1].Text)
	assert.Equal(t, "exit", turns[1].Intent)
}

func TestTranscript_Text(t *testing.T) {
	var buf nopCloser
	tr := NewTranscript(NewPlainTextFormatter(&buf), "", nil)
	fixedClock(tr)

	tr.Record("", "unknown")

	assert.Equal(t, "[09:30:00] unknown: \n", buf.String())
}

func TestTranscript_WriteErrorIsSwallowed(t *testing.T) {
	tr := NewTranscript(NewPlainTextFormatter(failingWriter{}), "", nil)

	assert.NotPanics(t, func() { tr.Record("стоп", "exit") })
}

func TestOpenTranscript_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")

	for i := 0; i < 2; i++ {
		tr, err := OpenTranscript(path, "text", "s", nil)
		require.NoError(t, err)
		tr.Record("перечислить", "list_all")
		require.NoError(t, tr.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("list_all: перечислить")))
}

func TestNewFormatter_UnknownFormat(t *testing.T) {
	_, err := NewFormatter("xml", &nopCloser{})
	assert.ErrorContains(t, err, "xml")

	_, err = OpenTranscript(filepath.Join(t.TempDir(), "t.log"), "xml", "s", nil)
	assert.Error(t, err)
}
