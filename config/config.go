// Package config loads SDK settings. A value set in the process environment
// wins over one from a .env file, which wins over the default.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the SDK settings. Each field is read from the environment
// variable named in its env tag.
type Config struct {
	RefreshToken string `env:"REFRESH_TOKEN"`
	BaseURL      string `env:"BASE_URL, default=https://python.exercise.applifting.cz/"`

	// TokenExpirationSeconds is the lifetime assumed for every issued access
	// token. The auth endpoint does not report it.
	TokenExpirationSeconds       int `env:"TOKEN_EXPIRATION_SECONDS, default=300"`
	TokenExpirationBufferSeconds int `env:"TOKEN_EXPIRATION_BUFFER_SECONDS, default=5"`

	RequestTimeoutSeconds int `env:"REQUEST_TIMEOUT_SECONDS, default=10"`
	MaxRetries            int `env:"MAX_RETRIES, default=3"`

	// TokenCacheFile overrides the token cache location. Empty means the
	// user cache directory.
	TokenCacheFile string `env:"TOKEN_CACHE_FILE"`
	LogLevel       string `env:"LOG_LEVEL, default=warn"`
}

// Load reads .env from the working directory if present, then the process
// environment, and validates the result.
func Load(ctx context.Context) (Config, error) {
	return LoadWithOverrides(ctx, nil)
}

// LoadWithOverrides is Load with values keyed by environment variable name
// taking precedence over the environment. The CLI passes its flags here.
func LoadWithOverrides(ctx context.Context, overrides map[string]string) (Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	if len(overrides) == 0 {
		return load(ctx, nil) // load from OS environment
	}
	return load(ctx, envconfig.MultiLookuper(
		envconfig.MapLookuper(overrides),
		envconfig.OsLookuper(),
	))
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate checks that the settings are usable together.
func (c Config) Validate() error {
	if err := ValidateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("invalid BASE_URL: %w", err)
	}

	if c.TokenExpirationSeconds <= 0 {
		return fmt.Errorf("TOKEN_EXPIRATION_SECONDS must be positive, got: %d", c.TokenExpirationSeconds)
	}

	if c.TokenExpirationBufferSeconds < 0 || c.TokenExpirationBufferSeconds >= c.TokenExpirationSeconds {
		return fmt.Errorf(
			"TOKEN_EXPIRATION_BUFFER_SECONDS must be in [0, %d), got: %d",
			c.TokenExpirationSeconds,
			c.TokenExpirationBufferSeconds,
		)
	}

	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got: %d", c.RequestTimeoutSeconds)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got: %d", c.MaxRetries)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return nil
}

// ValidateBaseURL checks that rawURL is an absolute http(s) URL.
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("base URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got: %s", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("URL must include a host")
	}

	return nil
}

// TokenLifetime returns TOKEN_EXPIRATION_SECONDS as a duration.
func (c Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenExpirationSeconds) * time.Second
}

// TokenBuffer returns TOKEN_EXPIRATION_BUFFER_SECONDS as a duration.
func (c Config) TokenBuffer() time.Duration {
	return time.Duration(c.TokenExpirationBufferSeconds) * time.Second
}

// RequestTimeout returns REQUEST_TIMEOUT_SECONDS as a duration. It bounds
// every HTTP request, token refreshes included.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Level returns the parsed LOG_LEVEL, falling back to warn.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}
