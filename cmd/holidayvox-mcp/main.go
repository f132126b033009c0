package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	"github.com/emmett/holidayvox/internal/app"
	"github.com/emmett/holidayvox/internal/config"
	"github.com/emmett/holidayvox/internal/holiday"
	"github.com/emmett/holidayvox/internal/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = cli.String("config", "", "Path to configuration file")
	envFile     = cli.StringP("env", "e", ".env", "Env file path")
	country     = cli.StringP("country", "c", "", "Two-letter ISO country code (default from config)")
	year        = cli.IntP("year", "y", 0, "Holiday year (default from config)")
	locale      = cli.String("locale", "", "Keyword language for resolve_command: ru, en (default from config)")
	logLevel    = cli.StringP("log-level", "l", "info", "Log level: debug, info, warn, error")
	showVersion = cli.BoolP("version", "v", false, "Show version information")
)

func main() {
	cli.Parse()

	if *showVersion {
		fmt.Printf("Holidayvox MCP v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	// stdout carries the protocol, everything else goes to stderr
	logger := app.NewLogger(os.Stderr, *logLevel)
	slog.SetDefault(logger)

	if err := config.LoadEnvFile(*envFile); err != nil {
		logger.Warn("failed to load env file", "err", err)
	}

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		logger.Error("invalid environment", "err", err)
		os.Exit(1)
	}
	if *country != "" {
		cfg.Holidays.Country = *country
	}
	if *year > 0 {
		cfg.Holidays.Year = *year
	}
	if *locale != "" {
		cfg.Locale = *locale
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	loc, err := session.LookupLocale(cfg.Locale)
	if err != nil {
		logger.Error("invalid locale", "err", err)
		os.Exit(1)
	}
	overrides, err := app.KeywordOverrides(cfg.Keywords)
	if err != nil {
		logger.Error("invalid keywords", "err", err)
		os.Exit(1)
	}

	client := holiday.NewClient(holiday.ClientConfig{
		BaseURL: cfg.Holidays.BaseURL,
		Timeout: cfg.Holidays.Timeout,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := app.NewMCPHandler(client, cfg.Holidays.Country, cfg.Holidays.Year, loc.Keywords.Merge(overrides), Version, logger)
	if err := handler.Run(ctx); err != nil {
		logger.Error("MCP server error", "err", err)
		stop()
		os.Exit(1)
	}
}
