package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	"github.com/emmett/holidayvox/internal/app"
	"github.com/emmett/holidayvox/internal/audio"
	"github.com/emmett/holidayvox/internal/config"
	"github.com/emmett/holidayvox/internal/holiday"
	"github.com/emmett/holidayvox/internal/metrics"
	"github.com/emmett/holidayvox/internal/models"
	"github.com/emmett/holidayvox/internal/session"
	"github.com/emmett/holidayvox/internal/stt"
	"github.com/emmett/holidayvox/internal/stt/vosk"
	"github.com/emmett/holidayvox/internal/tts"
	"github.com/emmett/holidayvox/internal/tts/espeak"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// CLI flags
var (
	configFile     = cli.String("config", "", "Path to configuration file (default: ~/.holidayvoxrc or /etc/holidayvox/config.yaml)")
	envFile        = cli.StringP("env", "e", ".env", "Env file path")
	country        = cli.StringP("country", "c", "AT", "Two-letter ISO country code")
	year           = cli.IntP("year", "y", 2025, "Holiday year")
	locale         = cli.String("locale", session.DefaultLocale, "Phrases and keywords language: ru, en")
	modelName      = cli.StringP("model", "m", "", "Speech recognition model name or path (default: matches --locale)")
	modelDir       = cli.String("model-dir", "models", "Directory holding downloaded models")
	audioDevice    = cli.StringP("device", "d", "", "Audio input device name (use --list-devices to see available devices)")
	mute           = cli.Bool("mute", false, "Print responses without speaking them")
	logLevel       = cli.StringP("log-level", "l", "info", "Log level: debug, info, warn, error")
	metricsAddr    = cli.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	listModels     = cli.Bool("list-models", false, "List all available models for download")
	listDownloaded = cli.Bool("list-downloaded", false, "List all downloaded models")
	downloadModel  = cli.String("download-model", "", "Download a specific model by name")
	listDevices    = cli.Bool("list-devices", false, "List all available audio input devices")
	writeConfig    = cli.String("write-config", "", "Write the effective configuration to a file and exit")
	showVersion    = cli.BoolP("version", "v", false, "Show version information")
)

func main() {
	cli.Parse()

	if *showVersion {
		fmt.Printf("Holidayvox v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		if *configFile != "" {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Apply config values as defaults (CLI flags override if explicitly set)
	applyConfigDefaults(cfg)

	logger := app.NewLogger(os.Stderr, *logLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", *writeConfig)
		return
	}

	if *listDevices {
		if err := app.NewDeviceManager(os.Stdout).ListDevices(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	mgr := app.NewModelManager(models.NewRegistry(*modelDir), os.Stdout)

	if *listModels {
		if err := mgr.ListModels(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *listDownloaded {
		if err := mgr.ListDownloaded(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *downloadModel != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := mgr.Download(ctx, *downloadModel)
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(run(cfg, logger))
}

// applyConfigDefaults applies configuration values as defaults
// CLI flags override config file values if explicitly set
func applyConfigDefaults(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	cli.Visit(func(f *cli.Flag) {
		flagsSet[f.Name] = true
	})

	if !flagsSet["country"] && cfg.Holidays.Country != "" {
		*country = cfg.Holidays.Country
	}
	if !flagsSet["year"] && cfg.Holidays.Year > 0 {
		*year = cfg.Holidays.Year
	}
	if !flagsSet["locale"] && cfg.Locale != "" {
		*locale = cfg.Locale
	}
	if !flagsSet["model"] && cfg.Model.Name != "" {
		*modelName = cfg.Model.Name
	}
	if !flagsSet["model-dir"] && cfg.Model.Dir != "" {
		*modelDir = cfg.Model.Dir
	}
	if !flagsSet["device"] && cfg.Audio.Device != "" {
		*audioDevice = cfg.Audio.Device
	}
	if !flagsSet["mute"] {
		*mute = !cfg.Speech.Enabled
	}
	if !flagsSet["log-level"] && cfg.Log.Level != "" {
		*logLevel = cfg.Log.Level
	}
	if !flagsSet["metrics-addr"] && cfg.Metrics.Addr != "" {
		*metricsAddr = cfg.Metrics.Addr
	}

	// keep the validated config in step with the effective values
	cfg.Holidays.Country = *country
	cfg.Holidays.Year = *year
	cfg.Locale = *locale
	cfg.Model.Name = *modelName
	cfg.Model.Dir = *modelDir
	cfg.Audio.Device = *audioDevice
	cfg.Speech.Enabled = !*mute
	cfg.Log.Level = *logLevel
	cfg.Metrics.Addr = *metricsAddr

	// recognizer and voice follow the locale unless chosen explicitly
	cfg.ApplyLocaleDefaults()
	*modelName = cfg.Model.Name
}

func run(cfg *config.Config, logger *slog.Logger) int {
	loc, err := session.LookupLocale(*locale)
	if err != nil {
		logger.Error("invalid locale", "err", err)
		return 1
	}
	overrides, err := app.KeywordOverrides(cfg.Keywords)
	if err != nil {
		logger.Error("invalid keywords", "err", err)
		return 1
	}
	loc.Keywords = loc.Keywords.Merge(overrides)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		metrics.NewExporter(*metricsAddr, logger).Start(ctx)
	}

	speaker := tts.NewAnnouncer(newSynthesizer(cfg, logger), tts.AnnouncerConfig{
		Prefix: loc.Phrases.Speaker,
		Writer: os.Stdout,
		Logger: logger,
	})
	defer speaker.Close()

	registry := models.NewRegistry(*modelDir)
	checkModel := func() error {
		_, err := registry.Ensure(*modelName)
		return err
	}

	client := holiday.NewClient(holiday.ClientConfig{
		BaseURL:  cfg.Holidays.BaseURL,
		Timeout:  cfg.Holidays.Timeout,
		Logger:   logger,
		Observer: metrics.RecordFetch,
	})

	open := func(ctx context.Context) (session.Listener, func() error, error) {
		return openVoiceInput(cfg, registry.Path(*modelName), logger)
	}

	assistant := app.NewAssistant(app.AssistantConfig{
		Country:     *country,
		Year:        *year,
		Locale:      loc,
		NamesFile:   cfg.Output.NamesFile,
		DetailsFile: cfg.Output.DetailsFile,

		TranscriptFile:   cfg.Output.Transcript,
		TranscriptFormat: cfg.Output.TranscriptFormat,

		Logger: logger,
	}, speaker, client, checkModel, open)

	outcome := assistant.Run(ctx)
	logger.Debug("assistant stopped", "outcome", outcome.String())
	return outcome.ExitCode()
}

func newSynthesizer(cfg *config.Config, logger *slog.Logger) tts.Synthesizer {
	if *mute {
		return tts.Silent{}
	}

	speechCfg := tts.DefaultConfig(cfg.Speech.Voice)
	if cfg.Speech.Rate > 0 {
		speechCfg.Rate = cfg.Speech.Rate
	}

	engine, err := espeak.New(speechCfg)
	if err != nil {
		logger.Warn("speech output unavailable, printing only", "err", err)
		return tts.Silent{}
	}
	return engine
}

// openVoiceInput loads the recognizer and opens the capture device
func openVoiceInput(cfg *config.Config, modelPath string, logger *slog.Logger) (session.Listener, func() error, error) {
	logger.Info("initializing speech recognition engine", "model", modelPath)

	sttConfig := stt.DefaultConfig(modelPath)
	sttConfig.SampleRate = int(cfg.Audio.SampleRate)

	engine := vosk.New()
	if err := engine.Initialize(sttConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize STT engine: %w", err)
	}

	audioConfig := audio.DefaultConfig()
	audioConfig.SampleRate = cfg.Audio.SampleRate
	audioConfig.DeviceName = *audioDevice
	if cfg.Audio.BufferFrames > 0 {
		audioConfig.BufferFrames = cfg.Audio.BufferFrames
	}

	capturer, err := audio.NewCapturer(audioConfig)
	if err != nil {
		engine.Close()
		return nil, nil, fmt.Errorf("failed to create capturer: %w", err)
	}

	listener := stt.NewListener(capturer, engine, stt.ListenerConfig{
		IgnoreEmpty: cfg.Audio.IgnoreEmpty,
		Logger:      logger,
		OnUtterance: metrics.RecordUtterance,
	})

	release := func() error {
		return errors.Join(capturer.Close(), engine.Close())
	}
	return listener, release, nil
}
