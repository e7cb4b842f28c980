// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvArticlesDir        = "ARTICLES_DIR"
	EnvArticlesFormat     = "ARTICLES_FORMAT"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
	EnvDataForSEOLogin    = "DATAFORSEO_LOGIN"
	EnvDataForSEOPassword = "DATAFORSEO_PASSWORD"
	EnvDataForSEOURL      = "DATAFORSEO_API_URL"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvImagenModel        = "IMAGEN_MODEL"
	EnvEventBuffer        = "EVENT_BUFFER"
)

// Config is the resolved runtime configuration.
type Config struct {
	ArticlesDir    string `validate:"required"`
	ArticlesFormat string `validate:"oneof=json yaml yml"`
	LogLevel       string `validate:"oneof=debug info warn error"`
	LogFormat      string `validate:"oneof=text json"`
	EventBuffer    int    `validate:"gte=0"`

	DataForSEOLogin    string
	DataForSEOPassword string
	DataForSEOURL      string `validate:"omitempty,url"`

	GeminiAPIKey string
	ImagenModel  string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		ArticlesDir:    "./articles_data",
		ArticlesFormat: "json",
		LogLevel:       "info",
		LogFormat:      "text",
		EventBuffer:    100,
	}
}

// Load reads the given .env files (missing files are ignored), then the environment.
// Variables already set in the environment win over .env values.
// With no files, ".env" in the working directory is tried.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv resolves the configuration through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Defaults()

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str(EnvArticlesDir, &cfg.ArticlesDir)
	str(EnvArticlesFormat, &cfg.ArticlesFormat)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvLogFormat, &cfg.LogFormat)
	str(EnvDataForSEOLogin, &cfg.DataForSEOLogin)
	str(EnvDataForSEOPassword, &cfg.DataForSEOPassword)
	str(EnvDataForSEOURL, &cfg.DataForSEOURL)
	str(EnvGeminiAPIKey, &cfg.GeminiAPIKey)
	str(EnvImagenModel, &cfg.ImagenModel)

	cfg.ArticlesFormat = strings.ToLower(cfg.ArticlesFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if v := strings.TrimSpace(getenv(EnvEventBuffer)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be an integer: %w", EnvEventBuffer, err)
		}
		cfg.EventBuffer = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values against their allowed sets.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Level maps LogLevel to a slog level.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
