package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmett/holidayvox/internal/audio"
	"github.com/emmett/holidayvox/internal/holiday"
	"github.com/emmett/holidayvox/internal/models"
	"github.com/emmett/holidayvox/internal/session"
)

type recordingSpeaker struct {
	said []string
}

func (s *recordingSpeaker) Say(text string) { s.said = append(s.said, text) }

type stubFetcher struct {
	set   *holiday.Set
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, country string, year int) (*holiday.Set, error) {
	f.calls++
	return f.set, f.err
}

type scriptedListener struct {
	utterances []string
	err        error
}

func (l *scriptedListener) Listen(ctx context.Context) (string, error) {
	if len(l.utterances) == 0 {
		if l.err != nil {
			return "", l.err
		}
		return "", errors.New("script exhausted")
	}
	next := l.utterances[0]
	l.utterances = l.utterances[1:]
	return next, nil
}

func austria() *holiday.Set {
	return holiday.NewSet("AT", 2025, []holiday.Record{
		{Date: "2025-01-01", LocalName: "Neujahr"},
		{Date: "2025-12-25", LocalName: "Christtag"},
	})
}

func russian(t *testing.T) session.Locale {
	t.Helper()
	loc, err := session.LookupLocale("ru")
	require.NoError(t, err)
	return loc
}

func newTestAssistant(t *testing.T, speaker *recordingSpeaker, fetcher Fetcher, checkModel func() error, listener session.Listener, openErr error) (*Assistant, *int) {
	t.Helper()
	dir := t.TempDir()
	opened := new(int)
	open := func(ctx context.Context) (session.Listener, func() error, error) {
		if openErr != nil {
			return nil, nil, openErr
		}
		*opened++
		return listener, func() error { return nil }, nil
	}
	a := NewAssistant(AssistantConfig{
		Country:     "AT",
		Year:        2025,
		Locale:      russian(t),
		NamesFile:   filepath.Join(dir, "holidays.txt"),
		DetailsFile: filepath.Join(dir, "holidays_full.txt"),
		Now:         func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	}, speaker, fetcher, checkModel, open)
	return a, opened
}

func TestAssistant_ModelMissing(t *testing.T) {
	speaker := &recordingSpeaker{}
	fetcher := &stubFetcher{set: austria()}
	a, opened := newTestAssistant(t, speaker, fetcher, func() error {
		return &models.MissingError{Name: "vosk-model-small-ru-0.22", Path: "models/vosk-model-small-ru-0.22"}
	}, &scriptedListener{}, nil)

	outcome := a.Run(context.Background())

	assert.Equal(t, ModelMissing, outcome)
	assert.Equal(t, 1, outcome.ExitCode())
	assert.Equal(t, []string{russian(t).Phrases.ModelMissing}, speaker.said)
	assert.Zero(t, fetcher.calls)
	assert.Zero(t, *opened)
}

func TestAssistant_FetchFailed(t *testing.T) {
	speaker := &recordingSpeaker{}
	fetcher := &stubFetcher{err: &holiday.FetchError{Country: "AT", Year: 2025, Status: 503}}
	a, opened := newTestAssistant(t, speaker, fetcher, nil, &scriptedListener{}, nil)

	outcome := a.Run(context.Background())

	assert.Equal(t, FetchFailed, outcome)
	assert.Equal(t, 0, outcome.ExitCode())
	assert.Equal(t, []string{
		"Загружаю праздники для страны AT, 2025 год.",
		"Ошибка при получении данных.",
	}, speaker.said)
	assert.Zero(t, *opened)
}

func TestAssistant_NoHolidays(t *testing.T) {
	speaker := &recordingSpeaker{}
	fetcher := &stubFetcher{set: holiday.NewSet("AT", 2025, nil)}
	a, opened := newTestAssistant(t, speaker, fetcher, nil, &scriptedListener{}, nil)

	outcome := a.Run(context.Background())

	assert.Equal(t, NoHolidays, outcome)
	assert.Equal(t, 0, outcome.ExitCode())
	assert.Zero(t, *opened)
	assert.Len(t, speaker.said, 1)
}

func TestAssistant_SessionToExit(t *testing.T) {
	speaker := &recordingSpeaker{}
	listener := &scriptedListener{utterances: []string{"количество", "ближайший", "выход"}}
	a, opened := newTestAssistant(t, speaker, &stubFetcher{set: austria()}, func() error { return nil }, listener, nil)

	outcome := a.Run(context.Background())

	assert.Equal(t, Finished, outcome)
	assert.Equal(t, 0, outcome.ExitCode())
	assert.Equal(t, 1, *opened)
	assert.Equal(t, 2, a.Holidays().Len())
	assert.Contains(t, speaker.said, "Всего праздников: 2")
	assert.Contains(t, speaker.said, "Ближайший праздник Christtag 2025-12-25")
	assert.Equal(t, "До свидания!", speaker.said[len(speaker.said)-1])
}

func TestAssistant_ListenerFailure(t *testing.T) {
	speaker := &recordingSpeaker{}
	listener := &scriptedListener{err: errors.New("device unplugged")}
	a, _ := newTestAssistant(t, speaker, &stubFetcher{set: austria()}, nil, listener, nil)

	outcome := a.Run(context.Background())

	assert.Equal(t, InputFailed, outcome)
	assert.Equal(t, 1, outcome.ExitCode())
}

func TestAssistant_OpenFailure(t *testing.T) {
	speaker := &recordingSpeaker{}
	a, _ := newTestAssistant(t, speaker, &stubFetcher{set: austria()}, nil, nil, errors.New("no capture device"))

	assert.Equal(t, InputFailed, a.Run(context.Background()))
}

func TestAssistant_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	speaker := &recordingSpeaker{}
	listener := &scriptedListener{err: ctx.Err()}
	a, _ := newTestAssistant(t, speaker, &stubFetcher{set: austria()}, nil, listener, nil)

	outcome := a.Run(ctx)

	assert.Equal(t, Interrupted, outcome)
	assert.Equal(t, 0, outcome.ExitCode())
	assert.Equal(t, "Ассистент завершает работу.", speaker.said[len(speaker.said)-1])
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "fetch_failed", FetchFailed.String())
	assert.Equal(t, "input_failed", InputFailed.String())
}

func TestKeywordOverrides(t *testing.T) {
	kw, err := KeywordOverrides(map[string][]string{"exit": {"хватит"}, "count": {"сколько"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"хватит"}, kw[session.Exit])
	assert.Equal(t, []string{"сколько"}, kw[session.Count])

	_, err = KeywordOverrides(map[string][]string{"dance": {"танцуй"}})
	assert.ErrorContains(t, err, "dance")

	_, err = KeywordOverrides(map[string][]string{"unknown": {"x"}})
	assert.Error(t, err)
}

func TestModelManager_ListDownloaded(t *testing.T) {
	reg := models.NewRegistry(t.TempDir())
	var out bytes.Buffer
	mgr := NewModelManager(reg, &out)

	require.NoError(t, mgr.ListDownloaded())
	assert.Contains(t, out.String(), "No models downloaded yet.")

	require.NoError(t, os.MkdirAll(filepath.Join(reg.Dir, models.DefaultModelName), 0755))
	out.Reset()
	require.NoError(t, mgr.ListDownloaded())
	assert.Contains(t, out.String(), models.DefaultModelName+" [DEFAULT]")
}

func TestModelManager_Download(t *testing.T) {
	reg := models.NewRegistry(t.TempDir())
	var out bytes.Buffer
	mgr := NewModelManager(reg, &out)

	assert.ErrorContains(t, mgr.Download(context.Background(), "vosk-model-klingon"), "unknown model")

	require.NoError(t, os.MkdirAll(filepath.Join(reg.Dir, models.DefaultModelName), 0755))
	require.NoError(t, mgr.Download(context.Background(), models.DefaultModelName))
	assert.Contains(t, out.String(), "already downloaded")
}

func TestModelManager_ListModels(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewModelManager(models.NewRegistry(t.TempDir()), &out).ListModels())
	for _, m := range models.AvailableModels {
		assert.Contains(t, out.String(), m.Name)
	}
}

func TestDeviceManager_ListDevices(t *testing.T) {
	var out bytes.Buffer
	dm := &DeviceManager{out: &out, list: func() ([]audio.DeviceInfo, error) {
		return []audio.DeviceInfo{{Index: 0, Name: "USB Mic", IsDefault: true}}, nil
	}}

	require.NoError(t, dm.ListDevices())
	assert.Contains(t, out.String(), "1. USB Mic [DEFAULT]")

	dm.list = func() ([]audio.DeviceInfo, error) { return nil, nil }
	assert.Error(t, dm.ListDevices())
}

func TestMCPHandler_Server(t *testing.T) {
	fetcher := &stubFetcher{set: austria()}
	h := NewMCPHandler(fetcher, "AT", 2025, russian(t).Keywords, "test", nil)

	server, err := h.Server(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, server)
	assert.Equal(t, 1, fetcher.calls)

	h = NewMCPHandler(&stubFetcher{err: holiday.ErrFetch}, "AT", 2025, nil, "test", nil)
	_, err = h.Server(context.Background())
	assert.ErrorIs(t, err, holiday.ErrFetch)
}

func TestAssistant_Transcript(t *testing.T) {
	speaker := &recordingSpeaker{}
	listener := &scriptedListener{utterances: []string{"что-то", "стоп"}}
	a, _ := newTestAssistant(t, speaker, &stubFetcher{set: austria()}, nil, listener, nil)
	path := filepath.Join(t.TempDir(), "transcript.log")
	a.config.TranscriptFile = path
	a.config.TranscriptFormat = "text"

	require.Equal(t, Finished, a.Run(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unknown: что-то")
	assert.Contains(t, string(data), "exit: стоп")
}
