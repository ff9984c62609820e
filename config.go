package sheetorm

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxCacheSize bounds the read cache when no explicit size is given.
const DefaultMaxCacheSize = 64

// Config configures a CachedStore.
type Config struct {
	// CacheTTL is how long a cached read stays live. Zero or negative
	// disables read caching.
	CacheTTL time.Duration

	// MaxCacheSize bounds the number of cached ranges. When the bound
	// would be exceeded the oldest-inserted entry is evicted.
	MaxCacheSize int

	// Logger receives debug events for cache hits, evictions and
	// invalidations. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the recommended configuration: a short TTL that
// absorbs bursts of reads within one logical operation without hiding
// remote writes for long.
func DefaultConfig() *Config {
	return &Config{
		CacheTTL:     5 * time.Second,
		MaxCacheSize: DefaultMaxCacheSize,
	}
}

// yamlConfig is the on-disk shape of Config. Durations are written as Go
// duration strings ("10s", "250ms").
type yamlConfig struct {
	CacheTTL     string `yaml:"cache_ttl"`
	MaxCacheSize *int   `yaml:"max_cache_size"`
}

// LoadConfig reads a Config from a YAML file, applying defaults for fields
// the file leaves unset. Environment overrides: SHEETORM_CACHE_TTL (a Go
// duration string) and SHEETORM_MAX_CACHE_SIZE.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw.CacheTTL != "" {
		d, err := time.ParseDuration(raw.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache_ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if raw.MaxCacheSize != nil {
		cfg.MaxCacheSize = *raw.MaxCacheSize
	}

	applyEnvOverrides(cfg)

	if cfg.MaxCacheSize <= 0 {
		cfg.MaxCacheSize = DefaultMaxCacheSize
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHEETORM_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("SHEETORM_MAX_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxCacheSize = n
		}
	}
}
