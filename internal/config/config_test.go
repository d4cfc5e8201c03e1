package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/playlistify")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "client-id", cfg.Spotify.ClientID)
	assert.Equal(t, "client-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "http://127.0.0.1:8080/callback", cfg.Spotify.RedirectURI)
	assert.Equal(t, "postgres://localhost:5432/playlistify", cfg.Database.URL)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SPOTIFY_REDIRECT_URI", "https://example.com/callback")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/callback", cfg.Spotify.RedirectURI)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr error
	}{
		{name: "missing client id", unset: "SPOTIFY_CLIENT_ID", wantErr: ErrMissingClientID},
		{name: "missing client secret", unset: "SPOTIFY_CLIENT_SECRET", wantErr: ErrMissingClientSecret},
		{name: "missing database url", unset: "DATABASE_URL", wantErr: ErrMissingDatabaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingClientID)
	assert.ErrorIs(t, err, ErrMissingClientSecret)
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestValidatePortRange(t *testing.T) {
	cfg := &Config{
		Spotify:  SpotifyConfig{ClientID: "id", ClientSecret: "secret"},
		Database: DatabaseConfig{URL: "postgres://localhost/db"},
		Server:   ServerConfig{Host: "127.0.0.1", Port: 70000},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestServerAddress(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", s.Address())
}
