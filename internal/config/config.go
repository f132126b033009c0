package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/emmett/holidayvox/internal/models"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "HOLIDAYVOX_"

// Config represents the application configuration
type Config struct {
	// Holidays selects the dataset fetched at startup
	Holidays struct {
		Country string        `yaml:"country"`
		Year    int           `yaml:"year"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"holidays"`

	// Locale picks the phrases and default keywords: ru or en
	Locale string `yaml:"locale"`

	// Keywords overrides trigger words per intent, e.g. exit: [выход, стоп]
	Keywords map[string][]string `yaml:"keywords"`

	// Model settings. An empty name follows the locale.
	Model struct {
		Name string `yaml:"name"`
		Dir  string `yaml:"dir"`
	} `yaml:"model"`

	// Audio settings
	Audio struct {
		Device       string `yaml:"device"`
		SampleRate   uint32 `yaml:"sample_rate"`
		BufferFrames uint32 `yaml:"buffer_frames"`
		IgnoreEmpty  bool   `yaml:"ignore_empty"`
	} `yaml:"audio"`

	// Speech output settings. An empty voice follows the locale.
	Speech struct {
		Enabled bool   `yaml:"enabled"`
		Voice   string `yaml:"voice"`
		Rate    int    `yaml:"rate"`
	} `yaml:"speech"`

	// Output files
	Output struct {
		NamesFile   string `yaml:"names_file"`
		DetailsFile string `yaml:"details_file"`

		// Transcript appends one record per recognized utterance; empty disables it
		Transcript       string `yaml:"transcript"`
		TranscriptFormat string `yaml:"transcript_format"`
	} `yaml:"output"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Holidays.Country = "AT"
	cfg.Holidays.Year = 2025
	cfg.Holidays.BaseURL = "https://date.nager.at"
	cfg.Holidays.Timeout = 15 * time.Second

	cfg.Locale = "ru"

	cfg.Model.Dir = "models"

	cfg.Audio.SampleRate = 16000
	cfg.Audio.BufferFrames = 8000

	cfg.Speech.Enabled = true
	cfg.Speech.Rate = 160

	cfg.Output.NamesFile = "holidays.txt"
	cfg.Output.DetailsFile = "holidays_full.txt"
	cfg.Output.TranscriptFormat = "json"

	cfg.Log.Level = "info"

	return cfg
}

// Load loads configuration from file on top of the defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.holidayvoxrc > /etc/holidayvox/config.yaml > defaults
func LoadWithFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	var candidates []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".holidayvoxrc"))
	}
	candidates = append(candidates, "/etc/holidayvox/config.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return Load(path)
	}

	return DefaultConfig(), nil
}

// LoadEnvFile loads a .env file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from HOLIDAYVOX_* variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("COUNTRY", &c.Holidays.Country)
	str("BASE_URL", &c.Holidays.BaseURL)
	str("LOCALE", &c.Locale)
	str("MODEL", &c.Model.Name)
	str("MODEL_DIR", &c.Model.Dir)
	str("DEVICE", &c.Audio.Device)
	str("VOICE", &c.Speech.Voice)
	str("LOG_LEVEL", &c.Log.Level)
	str("METRICS_ADDR", &c.Metrics.Addr)
	str("TRANSCRIPT", &c.Output.Transcript)

	if v, ok := lookup(EnvPrefix + "YEAR"); ok && v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sYEAR %q: %w", EnvPrefix, v, err)
		}
		c.Holidays.Year = year
	}

	if v, ok := lookup(EnvPrefix + "SPEECH"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sSPEECH %q: %w", EnvPrefix, v, err)
		}
		c.Speech.Enabled = enabled
	}

	return nil
}

// ApplyLocaleDefaults fills the recognizer model and speech voice left
// unset by file, env and flags with the ones matching the locale
func (c *Config) ApplyLocaleDefaults() {
	if c.Model.Name == "" {
		c.Model.Name = models.ModelForLanguage(c.Locale)
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = c.Locale
	}
}

// Validate checks the settings the assistant cannot start without
func (c *Config) Validate() error {
	country := strings.TrimSpace(c.Holidays.Country)
	if len(country) != 2 {
		return fmt.Errorf("holidays.country must be a two-letter ISO code, got %q", c.Holidays.Country)
	}
	if c.Holidays.Year < 1 {
		return fmt.Errorf("holidays.year must be positive, got %d", c.Holidays.Year)
	}
	if c.Output.NamesFile == "" || c.Output.DetailsFile == "" {
		return fmt.Errorf("output.names_file and output.details_file are required")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
