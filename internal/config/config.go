// Package config loads application configuration from environment
// variables, with optional overrides from a .env file in the working
// directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validation errors.
var (
	ErrMissingClientID     = errors.New("SPOTIFY_CLIENT_ID is required")
	ErrMissingClientSecret = errors.New("SPOTIFY_CLIENT_SECRET is required")
	ErrMissingDatabaseURL  = errors.New("DATABASE_URL is required")
)

// Config holds the full application configuration.
type Config struct {
	Spotify  SpotifyConfig `envPrefix:"SPOTIFY_"`
	Database DatabaseConfig
	Server   ServerConfig `envPrefix:"SERVER_"`
	Log      LogConfig    `envPrefix:"LOG_"`
}

// SpotifyConfig holds Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI" envDefault:"http://127.0.0.1:8080/callback"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8080"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"` // "text" or "json"
}

// Address returns the server listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from the environment. A .env file in the
// current working directory is loaded first when present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	envPath := filepath.Join(cwd, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("loading .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	var errs []error
	if c.Spotify.ClientID == "" {
		errs = append(errs, ErrMissingClientID)
	}
	if c.Spotify.ClientSecret == "" {
		errs = append(errs, ErrMissingClientSecret)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}
