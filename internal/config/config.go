// Package config loads jobscout configuration from defaults, an optional
// YAML file and JOBSCOUT_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	envPrefix      = "JOBSCOUT_"
	envConfigPath  = "JOBSCOUT_CONFIG"
	defaultCfgFile = "config.yaml"
)

//go:embed defaults.yaml
var defaults []byte

// Config is the root configuration.
type Config struct {
	Addr            string            `koanf:"addr"`
	LogLevel        string            `koanf:"log_level"`
	AllowedOrigins  []string          `koanf:"allowed_origins"`
	JobSites        []string          `koanf:"job_sites"`
	DefaultLocation string            `koanf:"default_location"`
	MaxResults      int               `koanf:"max_results"`
	HoursWindow     int               `koanf:"hours_window"`
	RequestTimeout  time.Duration     `koanf:"request_timeout"` // per search-term fetch
	RolesFile       string            `koanf:"roles_file"`      // empty uses the built-in catalog
	Cache           CacheConfig       `koanf:"cache"`
	Source          SourceConfig      `koanf:"source"`
	Warmer          WarmerConfig      `koanf:"warmer"`
	Sponsorship     SponsorshipConfig `koanf:"sponsorship"`
}

// CacheConfig selects and tunes the search cache.
type CacheConfig struct {
	Backend    string        `koanf:"backend"` // "memory" or "redis"
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"` // memory only; 0 is unbounded
	RedisURL   string        `koanf:"redis_url"`
	KeyPrefix  string        `koanf:"key_prefix"`
}

// SourceConfig describes where raw job records come from.
type SourceConfig struct {
	Type         string        `koanf:"type"` // "jobspy" or "fixture"
	BaseURL      string        `koanf:"base_url"`
	APIKey       string        `koanf:"api_key"`
	FixturesPath string        `koanf:"fixtures_path"`
	Retries      int           `koanf:"retries"`
	RetryDelay   time.Duration `koanf:"retry_delay"`
	MinDelay     time.Duration `koanf:"min_delay"` // between requests to the source; 0 disables
}

// WarmerConfig controls the background cache warmer.
type WarmerConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Schedule string   `koanf:"schedule"`
	Roles    []string `koanf:"roles"` // empty warms every role
}

// SponsorshipConfig overrides the classifier phrase lists.
type SponsorshipConfig struct {
	Negative []string `koanf:"negative"`
	Positive []string `koanf:"positive"`
}

// ResolvePath picks the config file to load: explicit, then $JOBSCOUT_CONFIG,
// then ./config.yaml when it exists. It returns "" when there is none.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat(defaultCfgFile); err == nil {
		return defaultCfgFile
	}
	return ""
}

// Load layers the built-in defaults, the YAML file at path (skipped when
// path is empty) and JOBSCOUT_* environment variables, then validates.
// Nested keys use a double underscore: JOBSCOUT_CACHE__REDIS_URL.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps JOBSCOUT_CACHE__REDIS_URL to cache.redis_url. The config path
// variable itself is not a key.
func envKey(s string) string {
	if s == envConfigPath {
		return ""
	}
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

func validate(cfg *Config) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(cfg.Addr) == "" {
		return invalid("addr must not be empty")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if len(cfg.JobSites) == 0 {
		return invalid("job_sites must list at least one site")
	}
	if cfg.MaxResults <= 0 {
		return invalid("max_results must be positive, got %d", cfg.MaxResults)
	}
	if cfg.HoursWindow <= 0 {
		return invalid("hours_window must be positive, got %d", cfg.HoursWindow)
	}
	if cfg.RequestTimeout <= 0 {
		return invalid("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.RedisURL == "" {
			return invalid("cache.redis_url is required when cache.backend is \"redis\"")
		}
	default:
		return invalid("cache.backend must be \"memory\" or \"redis\", got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL <= 0 {
		return invalid("cache.ttl must be positive, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.MaxEntries < 0 {
		return invalid("cache.max_entries must not be negative, got %d", cfg.Cache.MaxEntries)
	}

	switch cfg.Source.Type {
	case "jobspy":
		u, err := url.Parse(cfg.Source.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("source.base_url must be an http(s) URL, got %q", cfg.Source.BaseURL)
		}
	case "fixture":
		if cfg.Source.FixturesPath == "" {
			return invalid("source.fixtures_path is required when source.type is \"fixture\"")
		}
	default:
		return invalid("source.type must be \"jobspy\" or \"fixture\", got %q", cfg.Source.Type)
	}
	if cfg.Source.Retries < 0 {
		return invalid("source.retries must not be negative, got %d", cfg.Source.Retries)
	}
	if cfg.Source.Retries > 0 && cfg.Source.RetryDelay <= 0 {
		return invalid("source.retry_delay must be positive when retries are enabled")
	}
	if cfg.Source.MinDelay < 0 {
		return invalid("source.min_delay must not be negative, got %v", cfg.Source.MinDelay)
	}

	if cfg.Warmer.Enabled && strings.TrimSpace(cfg.Warmer.Schedule) == "" {
		return invalid("warmer.schedule is required when warmer.enabled is true")
	}

	return nil
}
