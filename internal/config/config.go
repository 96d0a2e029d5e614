package config

import (
	"fmt"
	"time"

	"github.com/kdramahub/kdramahub/internal/catalog"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Database DatabaseConfig
	Cache    catalog.TTLPolicy
	Rooms    RoomsConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port      string
	ServerURL string
}

// UpstreamConfig holds content API configuration
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string
}

// RoomsConfig holds watch-together room configuration
type RoomsConfig struct {
	MaxParticipants int
}

// AuthConfig holds token verification configuration
type AuthConfig struct {
	JWTSecret string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Verbose bool
}

// New creates a new config with the given parameters
func New(port, serverURL, upstreamURL string, upstreamTimeout time.Duration, dbPath string, ttl catalog.TTLPolicy, maxParticipants int, jwtSecret string, verbose bool) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:      port,
			ServerURL: serverURL,
		},
		Upstream: UpstreamConfig{
			BaseURL: upstreamURL,
			Timeout: upstreamTimeout,
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Cache: ttl,
		Rooms: RoomsConfig{
			MaxParticipants: maxParticipants,
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
		},
		Logging: LoggingConfig{
			Verbose: verbose,
		},
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Server.ServerURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL cannot be empty")
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %v", c.Upstream.Timeout)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Rooms.MaxParticipants <= 0 {
		return fmt.Errorf("max participants must be positive, got: %d", c.Rooms.MaxParticipants)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}

	return c.validateTTLs()
}

// validateTTLs enforces the staleness-tolerance ordering across cached
// resources: recent <= search <= popular <= drama <= episode. The exact
// durations are tunable; the ordering is not.
func (c *Config) validateTTLs() error {
	ttls := []struct {
		name  string
		value time.Duration
	}{
		{"recent", c.Cache.Recent},
		{"search", c.Cache.Search},
		{"popular", c.Cache.Popular},
		{"drama", c.Cache.Drama},
		{"episode", c.Cache.Episode},
		{"schedule", c.Cache.Schedule},
		{"rankings", c.Cache.Rankings},
	}
	for _, ttl := range ttls {
		if ttl.value <= 0 {
			return fmt.Errorf("%s TTL must be positive, got: %v", ttl.name, ttl.value)
		}
	}

	chain := []struct {
		lower, upper   string
		lowerV, upperV time.Duration
	}{
		{"recent", "search", c.Cache.Recent, c.Cache.Search},
		{"search", "popular", c.Cache.Search, c.Cache.Popular},
		{"popular", "drama", c.Cache.Popular, c.Cache.Drama},
		{"drama", "episode", c.Cache.Drama, c.Cache.Episode},
	}
	for _, link := range chain {
		if link.lowerV > link.upperV {
			return fmt.Errorf("%s TTL (%v) must not exceed %s TTL (%v)", link.lower, link.lowerV, link.upper, link.upperV)
		}
	}

	return nil
}
