// Package config loads the application configuration from the environment.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

var (
	// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

	// ErrMissingRedirectURI is returned when SPOTIFY_REDIRECT_URI is not set.
	ErrMissingRedirectURI = errors.New("missing SPOTIFY_REDIRECT_URI environment variable")
)

// Config holds the application configuration. Credentials are never embedded
// in source; they arrive through the environment at startup.
type Config struct {
	Addr         string
	ClientID     string
	ClientSecret string

	// RedirectURI must exactly match the redirect URI registered with the
	// Spotify app and the one the browser used to obtain the authorization
	// code. A mismatch makes every token exchange fail upstream.
	RedirectURI string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:         os.Getenv("ADDR"),
		ClientID:     os.Getenv("SPOTIFY_ID"),
		ClientSecret: os.Getenv("SPOTIFY_SECRET"),
		RedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),
	}

	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.RedirectURI == "" {
		return nil, ErrMissingRedirectURI
	}

	return cfg, nil
}
