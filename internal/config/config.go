// Package config loads recipebot settings from the environment, an
// optional .env file, and command-line overrides applied by main.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends accepted by Config.Store.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// DefaultBaseURL is the Spoonacular API root.
const DefaultBaseURL = "https://api.spoonacular.com"

// Config holds the application configuration.
type Config struct {
	// APIKey is the Spoonacular key. Required; never compiled in.
	APIKey  string `env:"SPOONACULAR_API_KEY"`
	BaseURL string `env:"SPOONACULAR_BASE_URL" envDefault:"https://api.spoonacular.com"`
	// Timeout bounds each API request. Zero means no timeout.
	Timeout time.Duration `env:"SPOONACULAR_TIMEOUT" envDefault:"0s"`

	// Store selects the cache backend: sqlite, redis or memory.
	Store   string `env:"RECIPEBOT_STORE" envDefault:"sqlite"`
	DataDir string `env:"RECIPEBOT_DATA_DIR" envDefault:".recipebot"`

	// LogFile is where logs go. "stderr" logs to the console; empty
	// means <DataDir>/logs/recipebot.log.
	LogFile  string `env:"RECIPEBOT_LOG_FILE"`
	LogLevel string `env:"RECIPEBOT_LOG_LEVEL" envDefault:"normal"`

	Redis Redis `envPrefix:"REDIS_"`
	Voice Voice
}

// Redis configures the redis cache backend.
type Redis struct {
	Address  string `env:"ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Voice configures speech input.
type Voice struct {
	Enabled      bool          `env:"RECIPEBOT_VOICE" envDefault:"false"`
	WhisperBin   string        `env:"WHISPER_BIN" envDefault:"whisper-cli"`
	WhisperModel string        `env:"WHISPER_MODEL" envDefault:"bin/ggml-small.bin"`
	Locale       string        `env:"RECIPEBOT_LOCALE" envDefault:"en-US"`
	MaxListen    time.Duration `env:"RECIPEBOT_MAX_LISTEN" envDefault:"6s"`
	Chime        bool          `env:"RECIPEBOT_CHIME" envDefault:"true"`
}

// Load reads a .env file from the working directory when present, then
// parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Parse builds a Config from an explicit environment map instead of the
// process environment. Defaults apply for missing keys.
func Parse(environment map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// DBPath is the SQLite file used by the sqlite store.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "recipebot.db")
}

// LogPath resolves where logs are written. Returns "" for stderr.
func (c *Config) LogPath() string {
	switch c.LogFile {
	case "stderr":
		return ""
	case "":
		return filepath.Join(c.DataDir, "logs", "recipebot.log")
	default:
		return c.LogFile
	}
}

// Validate checks settings that must hold before anything talks to the
// network or disk.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("$SPOONACULAR_API_KEY must be set"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("$SPOONACULAR_BASE_URL must not be empty"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("$SPOONACULAR_TIMEOUT must not be negative"))
	}
	errs = append(errs, c.ValidateLocal())
	return errors.Join(errs...)
}

// ValidateLocal checks only the settings needed to read the cache, for
// commands that never call the recipe API.
func (c *Config) ValidateLocal() error {
	var errs []error
	switch c.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want sqlite, redis or memory)", c.Store))
	}
	if c.Store == StoreSQLite && c.DataDir == "" {
		errs = append(errs, errors.New("data dir must be set for the sqlite store"))
	}
	if c.Voice.Enabled {
		if c.Voice.WhisperModel == "" {
			errs = append(errs, errors.New("$WHISPER_MODEL must be set when voice is enabled"))
		}
		if c.Voice.MaxListen <= 0 {
			errs = append(errs, errors.New("max listen duration must be positive"))
		}
	}
	return errors.Join(errs...)
}
