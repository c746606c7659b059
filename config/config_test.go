package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, Config{
		BaseURL:                      "https://python.exercise.applifting.cz/",
		TokenExpirationSeconds:       300,
		TokenExpirationBufferSeconds: 5,
		RequestTimeoutSeconds:        10,
		MaxRetries:                   3,
		LogLevel:                     "warn",
	}, cfg)
	assert.Equal(t, 300*time.Second, cfg.TokenLifetime())
	assert.Equal(t, 5*time.Second, cfg.TokenBuffer())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, zerolog.WarnLevel, cfg.Level())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"REFRESH_TOKEN":                   "abc",
		"BASE_URL":                        "https://api.test",
		"TOKEN_EXPIRATION_SECONDS":        "600",
		"TOKEN_EXPIRATION_BUFFER_SECONDS": "10",
		"REQUEST_TIMEOUT_SECONDS":         "3",
		"MAX_RETRIES":                     "0",
		"TOKEN_CACHE_FILE":                "/tmp/tokens.json",
		"LOG_LEVEL":                       "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.RefreshToken)
	assert.Equal(t, "https://api.test", cfg.BaseURL)
	assert.Equal(t, 600*time.Second, cfg.TokenLifetime())
	assert.Equal(t, 10*time.Second, cfg.TokenBuffer())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, "/tmp/tokens.json", cfg.TokenCacheFile)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains string
	}{
		{"bad number", map[string]string{"TOKEN_EXPIRATION_SECONDS": "soon"}, ""},
		{"zero lifetime", map[string]string{"TOKEN_EXPIRATION_SECONDS": "0"}, "must be positive"},
		{"buffer exceeds lifetime", map[string]string{
			"TOKEN_EXPIRATION_SECONDS":        "5",
			"TOKEN_EXPIRATION_BUFFER_SECONDS": "5",
		}, "TOKEN_EXPIRATION_BUFFER_SECONDS"},
		{"negative buffer", map[string]string{"TOKEN_EXPIRATION_BUFFER_SECONDS": "-1"}, "TOKEN_EXPIRATION_BUFFER_SECONDS"},
		{"zero timeout", map[string]string{"REQUEST_TIMEOUT_SECONDS": "0"}, "REQUEST_TIMEOUT_SECONDS"},
		{"negative retries", map[string]string{"MAX_RETRIES": "-2"}, "MAX_RETRIES"},
		{"bad scheme", map[string]string{"BASE_URL": "ftp://api.test"}, "scheme must be http or https"},
		{"no host", map[string]string{"BASE_URL": "https://"}, "must include a host"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://api.test", false},
		{"http://localhost:8080/", false},
		{"", true},
		{"api.test", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("REFRESH_TOKEN=from-dotenv\nTOKEN_EXPIRATION_SECONDS=120\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("REFRESH_TOKEN", "from-env")
	// registered so t.Setenv restores it; godotenv.Load sets it from .env
	t.Setenv("TOKEN_EXPIRATION_SECONDS", "")
	os.Unsetenv("TOKEN_EXPIRATION_SECONDS")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	// the environment wins over .env
	assert.Equal(t, "from-env", cfg.RefreshToken)
	assert.Equal(t, 120, cfg.TokenExpirationSeconds)
}

func TestLoadWithOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REFRESH_TOKEN", "from-env")
	t.Setenv("BASE_URL", "ftp://invalid")
	t.Setenv("MAX_RETRIES", "7")

	cfg, err := LoadWithOverrides(context.Background(), map[string]string{
		"REFRESH_TOKEN": "from-flag",
		"BASE_URL":      "http://localhost:8080",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.RefreshToken)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 7, cfg.MaxRetries, "unset overrides fall through to the environment")
	assert.Equal(t, 300, cfg.TokenExpirationSeconds)
}
