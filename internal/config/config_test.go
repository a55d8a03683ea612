package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: Default(),
		},
		{
			name: "overrides",
			env: map[string]string{
				EnvAddr:             "127.0.0.1:9000",
				EnvLogLevel:         "DEBUG",
				EnvLogFormat:        "json",
				EnvSchemaValidation: "false",
				EnvScriptsDir:       "/srv/scripts",
			},
			want: Config{
				Addr:             "127.0.0.1:9000",
				LogLevel:         "debug",
				LogFormat:        FormatJSON,
				SchemaValidation: false,
				ScriptsDir:       "/srv/scripts",
			},
		},
		{
			name:    "bad bool",
			env:     map[string]string{EnvSchemaValidation: "maybe"},
			wantErr: true,
		},
		{
			name:    "bad level",
			env:     map[string]string{EnvLogLevel: "loud"},
			wantErr: true,
		},
		{
			name:    "bad format",
			env:     map[string]string{EnvLogFormat: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromEnv(lookupMap(tt.env))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	// Register restoration, then clear so the file can supply the value.
	t.Setenv(EnvLogFormat, "")
	require.NoError(t, os.Unsetenv(EnvLogFormat))
	t.Setenv(EnvAddr, ":7000")

	path := filepath.Join(t.TempDir(), "test.env")
	content := EnvLogFormat + "=json\n" + EnvAddr + "=:1234\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, FormatJSON, cfg.LogFormat)
	assert.Equal(t, ":7000", cfg.Addr, "environment wins over the file")
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "warn", LogFormat: FormatJSON}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	text := Config{LogLevel: "debug", LogFormat: FormatText}.NewLogger(&buf)
	text.Debug("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
