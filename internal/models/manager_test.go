package models

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Ensure(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	_, err := reg.Ensure(DefaultModelName)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelMissing))

	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, DefaultModelName, missing.Name)

	require.NoError(t, os.MkdirAll(filepath.Join(reg.Dir, DefaultModelName), 0755))
	path, err := reg.Ensure(DefaultModelName)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(reg.Dir, DefaultModelName), path)
}

func TestRegistry_EnsureRejectsFile(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(reg.Dir, DefaultModelName), []byte("x"), 0644))

	_, err := reg.Ensure(DefaultModelName)
	assert.ErrorIs(t, err, ErrModelMissing)
}

func TestRegistry_PathAcceptsExplicitPath(t *testing.T) {
	reg := NewRegistry("models")
	assert.Equal(t, "/opt/vosk/model", reg.Path("/opt/vosk/model"))
	assert.Equal(t, filepath.Join("models", "vosk-model-small-ru-0.22"), reg.Path("vosk-model-small-ru-0.22"))
}

func TestRegistry_ListDownloaded(t *testing.T) {
	reg := NewRegistry(filepath.Join(t.TempDir(), "models"))

	names, err := reg.ListDownloaded()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, os.MkdirAll(filepath.Join(reg.Dir, "vosk-model-small-ru-0.22"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(reg.Dir, "other"), 0755))

	names, err = reg.ListDownloaded()
	require.NoError(t, err)
	assert.Equal(t, []string{"vosk-model-small-ru-0.22"}, names)
}

func TestFindModel(t *testing.T) {
	assert.NotNil(t, FindModel(DefaultModelName))
	assert.Nil(t, FindModel("vosk-model-klingon"))
	assert.Equal(t, "vosk-model-small-en-us-0.15", ModelForLanguage("en"))
	assert.Equal(t, DefaultModelName, ModelForLanguage("ru"))
}

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRegistry_Download(t *testing.T) {
	archive := zipArchive(t, map[string]string{
		"vosk-model-test/am/final.mdl": "model",
		"vosk-model-test/README":       "readme",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	reg := NewRegistry(t.TempDir())
	var last int64
	err := reg.download(context.Background(), srv.URL, func(downloaded, total int64) { last = downloaded })
	require.NoError(t, err)

	assert.Equal(t, int64(len(archive)), last)
	data, err := os.ReadFile(filepath.Join(reg.Dir, "vosk-model-test", "am", "final.mdl"))
	require.NoError(t, err)
	assert.Equal(t, "model", string(data))

	names, err := reg.ListDownloaded()
	require.NoError(t, err)
	assert.Equal(t, []string{"vosk-model-test"}, names)
}

func TestRegistry_DownloadRejectsZipSlip(t *testing.T) {
	archive := zipArchive(t, map[string]string{"../evil.txt": "x"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	reg := NewRegistry(t.TempDir())
	err := reg.download(context.Background(), srv.URL, nil)
	assert.Error(t, err)
}

func TestRegistry_DownloadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	reg := NewRegistry(t.TempDir())
	err := reg.download(context.Background(), srv.URL, nil)
	assert.ErrorContains(t, err, "404")

	assert.Error(t, reg.Download(context.Background(), "vosk-model-klingon", nil))
}
