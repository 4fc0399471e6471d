// Package config loads application configuration with layered precedence:
// built-in defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment overrides, e.g.
// MOODLENS_SERVER_PORT=9090 sets server.port.
const envPrefix = "MOODLENS_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "MOODLENS_CONFIG"

// defaultConfigPaths are searched in order; the first existing file wins.
var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moodlens/config.yaml",
}

// Config holds every tunable of the service. Immutable after Load.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Spotify     SpotifyConfig     `koanf:"spotify"`
	Detector    DetectorConfig    `koanf:"detector"`
	Credentials CredentialsConfig `koanf:"credentials"`
	Cache       CacheConfig       `koanf:"cache"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SpotifyConfig configures the outbound music-service client.
type SpotifyConfig struct {
	TokenURL          string        `koanf:"token_url"`
	BaseURL           string        `koanf:"base_url"`
	SearchLimit       int           `koanf:"search_limit"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	RetryBackoff      time.Duration `koanf:"retry_backoff"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// DetectorConfig configures the emotion-inference adapter.
type DetectorConfig struct {
	URL          string        `koanf:"url"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxImageEdge int           `koanf:"max_image_edge"`
	SpoolDir     string        `koanf:"spool_dir"`
}

// CredentialsConfig locates the persisted credentials file.
type CredentialsConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig bounds the recommendation cache.
type CacheConfig struct {
	Capacity int `koanf:"capacity"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Spotify: SpotifyConfig{
			TokenURL:          "https://accounts.spotify.com/api/token",
			BaseURL:           "https://api.spotify.com/v1",
			SearchLimit:       5,
			Timeout:           10 * time.Second,
			MaxRetries:        3,
			RetryBackoff:      500 * time.Millisecond,
			RequestsPerSecond: 5,
		},
		Detector: DetectorConfig{
			URL:          "http://localhost:8501",
			Timeout:      30 * time.Second,
			MaxImageEdge: 480,
			SpoolDir:     os.TempDir(),
		},
		Credentials: CredentialsConfig{
			Path: "credentials.toml",
		},
		Cache: CacheConfig{
			Capacity: 32,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration. Precedence: env > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values that would break the request path.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Spotify.SearchLimit < 1 {
		return fmt.Errorf("spotify.search_limit must be positive, got %d", c.Spotify.SearchLimit)
	}
	if c.Spotify.Timeout <= 0 {
		return fmt.Errorf("spotify.timeout must be positive, got %s", c.Spotify.Timeout)
	}
	if c.Detector.MaxImageEdge < 1 {
		return fmt.Errorf("detector.max_image_edge must be positive, got %d", c.Detector.MaxImageEdge)
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps MOODLENS_SERVER_READ_HEADER_TIMEOUT to
// server.read_header_timeout: the first underscore separates the section,
// later underscores stay inside the key.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i] + "." + s[i+1:]
	}
	return s
}
