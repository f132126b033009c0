package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emmett/holidayvox/internal/holiday"
	"github.com/emmett/holidayvox/internal/metrics"
	"github.com/emmett/holidayvox/internal/output"
	"github.com/emmett/holidayvox/internal/session"
)

// Outcome is how an assistant run ended
type Outcome int

const (
	// Finished means the user said an exit keyword
	Finished Outcome = iota
	// Interrupted means the process was signalled
	Interrupted
	// FetchFailed means the holiday data could not be retrieved
	FetchFailed
	// NoHolidays means the service returned an empty list
	NoHolidays
	// ModelMissing means the speech recognition model is not installed
	ModelMissing
	// InputFailed means the speech input broke down
	InputFailed
)

var outcomeNames = map[Outcome]string{
	Finished:     "finished",
	Interrupted:  "interrupted",
	FetchFailed:  "fetch_failed",
	NoHolidays:   "no_holidays",
	ModelMissing: "model_missing",
	InputFailed:  "input_failed",
}

func (o Outcome) String() string { return outcomeNames[o] }

// ExitCode maps an outcome to the process exit status
func (o Outcome) ExitCode() int {
	switch o {
	case ModelMissing, InputFailed:
		return 1
	default:
		return 0
	}
}

// Fetcher retrieves the holiday set for a country and year
type Fetcher interface {
	Fetch(ctx context.Context, country string, year int) (*holiday.Set, error)
}

// ListenerFactory opens the speech input. The returned close func releases it.
type ListenerFactory func(ctx context.Context) (session.Listener, func() error, error)

// AssistantConfig holds configuration for one assistant session
type AssistantConfig struct {
	Country string
	Year    int
	Locale  session.Locale

	NamesFile   string
	DetailsFile string

	// TranscriptFile records every turn when set
	TranscriptFile   string
	TranscriptFormat string

	Logger *slog.Logger
	Now    func() time.Time
}

// Assistant runs the startup guards and the voice command loop
type Assistant struct {
	config     AssistantConfig
	speaker    session.Speaker
	fetcher    Fetcher
	checkModel func() error
	openListen ListenerFactory
	logger     *slog.Logger
	holidays   *holiday.Set
}

// NewAssistant creates a new Assistant instance.
// checkModel reports a missing recognizer model; nil skips the check.
func NewAssistant(config AssistantConfig, speaker session.Speaker, fetcher Fetcher, checkModel func() error, open ListenerFactory) *Assistant {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		config:     config,
		speaker:    speaker,
		fetcher:    fetcher,
		checkModel: checkModel,
		openListen: open,
		logger:     logger,
	}
}

// Holidays returns the set fetched by the last Run, if any
func (a *Assistant) Holidays() *holiday.Set { return a.holidays }

// Run starts the assistant and blocks until the session ends
func (a *Assistant) Run(ctx context.Context) Outcome {
	phrases := a.config.Locale.Phrases

	if a.checkModel != nil {
		if err := a.checkModel(); err != nil {
			a.logger.Error("speech model unavailable", "err", err)
			a.speaker.Say(phrases.ModelMissing)
			return ModelMissing
		}
	}

	a.speaker.Say(fmt.Sprintf(phrases.Loading, a.config.Country, a.config.Year))

	set, err := a.fetcher.Fetch(ctx, a.config.Country, a.config.Year)
	if err != nil {
		if ctx.Err() != nil {
			return a.interrupted()
		}
		a.logger.Error("failed to fetch holidays", "err", err)
		a.speaker.Say(phrases.FetchFailed)
		return FetchFailed
	}
	a.holidays = set

	if set.IsEmpty() {
		a.logger.Warn("no holidays returned", "country", a.config.Country, "year", a.config.Year)
		return NoHolidays
	}
	a.logger.Info("holidays loaded", "country", set.Country(), "year", set.Year(), "count", set.Len())

	listener, closeListener, err := a.openListen(ctx)
	if err != nil {
		a.logger.Error("failed to open speech input", "err", err)
		return InputFailed
	}
	defer func() {
		if err := closeListener(); err != nil {
			a.logger.Warn("failed to release speech input", "err", err)
		}
	}()

	sessionID := uuid.NewString()
	logger := a.logger.With("session", sessionID)
	transcript := a.openTranscript(sessionID, logger)
	if transcript != nil {
		defer transcript.Close()
	}

	loop, err := session.NewLoop(set, listener, a.speaker, session.Options{
		Phrases:     phrases,
		Keywords:    a.config.Locale.Keywords,
		NamesFile:   a.config.NamesFile,
		DetailsFile: a.config.DetailsFile,
		Now:         a.config.Now,
		Logger:      logger,
		OnIntent: func(text string, intent session.Intent) {
			metrics.RecordIntent(intent.String())
			if transcript != nil {
				transcript.Record(text, intent.String())
			}
		},
	})
	if err != nil {
		a.logger.Error("failed to start session", "err", err)
		return NoHolidays
	}

	if err := loop.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return a.interrupted()
		}
		a.logger.Error("speech input failed", "err", err)
		return InputFailed
	}

	return Finished
}

func (a *Assistant) openTranscript(sessionID string, logger *slog.Logger) *output.Transcript {
	if a.config.TranscriptFile == "" {
		return nil
	}
	t, err := output.OpenTranscript(a.config.TranscriptFile, a.config.TranscriptFormat, sessionID, logger)
	if err != nil {
		logger.Warn("transcript disabled", "err", err)
		return nil
	}
	return t
}

func (a *Assistant) interrupted() Outcome {
	a.logger.Info("interrupted")
	a.speaker.Say(a.config.Locale.Phrases.Interrupted)
	return Interrupted
}

// KeywordOverrides converts intent-name keyed overrides from config
func KeywordOverrides(raw map[string][]string) (session.Keywords, error) {
	out := make(session.Keywords, len(raw))
	for name, words := range raw {
		intent, ok := session.ParseIntent(name)
		if !ok || intent == session.Unknown {
			return nil, fmt.Errorf("unknown intent %q in keywords", name)
		}
		out[intent] = words
	}
	return out, nil
}
