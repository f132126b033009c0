package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emmett/holidayvox/internal/holiday"
)

// State is the state of the command loop
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "running"
}

var (
	// ErrNoHolidays is returned when a loop is built over an empty set
	ErrNoHolidays = errors.New("no holidays to serve")

	// ErrSave wraps failures to write an output file
	ErrSave = errors.New("failed to save holidays")
)

// Listener produces the next recognized utterance, blocking until one is available
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker renders text as speech. It does not report failures.
type Speaker interface {
	Say(text string)
}

// Options configures a Loop
type Options struct {
	Phrases  Phrases
	Keywords Keywords

	// NamesFile receives one local name per line on SaveNames
	NamesFile string

	// DetailsFile receives "<date> — <localName>" lines on SaveDetails
	DetailsFile string

	// Now returns the current time (default: time.Now)
	Now func() time.Time

	Logger *slog.Logger

	// OnIntent is called with each utterance and the intent it resolved to
	OnIntent func(text string, intent Intent)
}

type handler func() State

// Loop is the voice command state machine
type Loop struct {
	holidays *holiday.Set
	listener Listener
	speaker  Speaker
	resolver *Resolver
	handlers map[Intent]handler
	opts     Options
	logger   *slog.Logger
	state    State
}

// NewLoop creates a loop over a non-empty holiday set
func NewLoop(holidays *holiday.Set, listener Listener, speaker Speaker, opts Options) (*Loop, error) {
	if holidays.IsEmpty() {
		return nil, ErrNoHolidays
	}
	if listener == nil || speaker == nil {
		return nil, fmt.Errorf("listener and speaker are required")
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NamesFile == "" {
		opts.NamesFile = "holidays.txt"
	}
	if opts.DetailsFile == "" {
		opts.DetailsFile = "holidays_full.txt"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &Loop{
		holidays: holidays,
		listener: listener,
		speaker:  speaker,
		resolver: NewResolver(opts.Keywords),
		opts:     opts,
		logger:   logger,
		state:    Running,
	}

	l.handlers = map[Intent]handler{
		ListAll:     l.listAll,
		SaveNames:   l.saveNames,
		SaveDetails: l.saveDetails,
		Nearest:     l.nearest,
		Count:       l.count,
		Exit:        l.exit,
		Unknown:     l.unknown,
	}

	return l, nil
}

// State returns the current loop state
func (l *Loop) State() State { return l.state }

// Resolve classifies an utterance without executing it
func (l *Loop) Resolve(text string) Intent {
	return l.resolver.Resolve(text)
}

// Run listens and executes commands until the exit intent is heard.
// A listener error or a done ctx ends the loop and is returned.
func (l *Loop) Run(ctx context.Context) error {
	for l.state == Running {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.speaker.Say(l.opts.Phrases.Listening)

		text, err := l.listener.Listen(ctx)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}

		l.Handle(text)
	}

	l.logger.Info("session finished")
	return nil
}

// Handle executes one utterance and returns the resulting state
func (l *Loop) Handle(text string) State {
	if l.state == Terminated {
		return l.state
	}

	intent := l.resolver.Resolve(text)
	l.logger.Info("recognized", "text", text, "intent", intent.String())

	if l.opts.OnIntent != nil {
		l.opts.OnIntent(text, intent)
	}

	l.state = l.handlers[intent]()
	return l.state
}

func (l *Loop) listAll() State {
	for _, name := range l.holidays.Names() {
		l.speaker.Say(name)
	}
	return Running
}

func (l *Loop) saveNames() State {
	l.save(l.opts.NamesFile, l.holidays.WriteNames, l.opts.Phrases.NamesSaved)
	return Running
}

func (l *Loop) saveDetails() State {
	l.save(l.opts.DetailsFile, l.holidays.WriteDetails, l.opts.Phrases.DetailsSaved)
	return Running
}

func (l *Loop) save(path string, write func(io.Writer) error, done string) {
	if err := holiday.SaveFile(path, write); err != nil {
		l.logger.Error("save failed", "path", path, "err", fmt.Errorf("%w: %w", ErrSave, err))
		l.speaker.Say(l.opts.Phrases.SaveFailed)
		return
	}
	l.logger.Debug("saved", "path", path, "count", l.holidays.Len())
	l.speaker.Say(done)
}

func (l *Loop) nearest() State {
	for _, r := range l.holidays.Malformed() {
		l.logger.Warn("skipping holiday with malformed date", "date", r.Date, "name", r.LocalName)
	}

	next, ok := l.holidays.Nearest(l.opts.Now())
	if !ok {
		l.speaker.Say(l.opts.Phrases.NoUpcoming)
		return Running
	}

	l.speaker.Say(fmt.Sprintf(l.opts.Phrases.Nearest, next.LocalName, next.Date))
	return Running
}

func (l *Loop) count() State {
	l.speaker.Say(fmt.Sprintf(l.opts.Phrases.Count, l.holidays.Len()))
	return Running
}

func (l *Loop) exit() State {
	l.speaker.Say(l.opts.Phrases.Farewell)
	return Terminated
}

func (l *Loop) unknown() State {
	l.speaker.Say(l.opts.Phrases.NotRecognized)
	return Running
}
