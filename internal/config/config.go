// Package config resolves process configuration for the pinflow binaries.
//
// Values are layered: built-in defaults, then a .env file, then the process
// environment. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAddr             = "PINFLOW_ADDR"
	EnvLogLevel         = "PINFLOW_LOG_LEVEL"
	EnvLogFormat        = "PINFLOW_LOG_FORMAT"
	EnvSchemaValidation = "PINFLOW_SCHEMA_VALIDATION"
	EnvScriptsDir       = "PINFLOW_SCRIPTS_DIR"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds process configuration.
type Config struct {
	Addr             string
	LogLevel         string
	LogFormat        string
	SchemaValidation bool
	ScriptsDir       string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Addr:             ":8080",
		LogLevel:         "info",
		LogFormat:        FormatText,
		SchemaValidation: true,
	}
}

// Load reads the given .env files into the process environment (".env" when
// none are named) and returns the resolved configuration. A missing .env
// file is not an error. Variables already set in the environment win over
// the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("env file not found", "path", file)
				continue
			}
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv applies environment overrides to the defaults using lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := lookup(EnvSchemaValidation); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvSchemaValidation, err)
		}
		cfg.SchemaValidation = b
	}
	if v, ok := lookup(EnvScriptsDir); ok {
		cfg.ScriptsDir = v
	}

	return cfg, cfg.Validate()
}

// Validate checks the log level and format.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", name)
	}
}

// NewLogger creates a logger writing to w in the configured format. An
// unknown level falls back to info.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.LogFormat == FormatJSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
