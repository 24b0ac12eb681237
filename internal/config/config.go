// Package config loads the data-dir/cache/TTL knobs the cmd/crabkv and
// cmd/crabkv-server binaries expose, per spec.md §6.3. The engine package
// itself never reads the environment or a config file — only these two
// command front-ends do.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Config mirrors engine.Config's fields in their on-the-wire (env/JSON)
// form; DefaultTTL and SyncInterval convert the seconds and milliseconds
// fields to time.Duration for building engine.Config.
type Config struct {
	DataDir         string `json:"data_dir"`
	CacheCapacity   int    `json:"cache_capacity"`
	DefaultTTLSecs  int    `json:"default_ttl_secs"`
	SyncIntervalMs  int    `json:"sync_interval_ms"`
	Compression     bool   `json:"compression"`
	AsyncCompaction bool   `json:"async_compaction"`
	WriteBackCache  bool   `json:"write_back_cache"`
}

// Default returns the baseline configuration applied before environment
// variables or a config file are consulted.
func Default() *Config {
	return &Config{
		DataDir:       "crabkv-data",
		CacheCapacity: 10000,
	}
}

// LoadEnv starts from Default and overlays any of the CRABKV_* environment
// variables that are set.
func LoadEnv() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("CRABKV_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CRABKV_CACHE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: CRABKV_CACHE_CAPACITY: %w", err)
		}
		cfg.CacheCapacity = n
	}
	if v := os.Getenv("CRABKV_DEFAULT_TTL_SECS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: CRABKV_DEFAULT_TTL_SECS: %w", err)
		}
		cfg.DefaultTTLSecs = n
	}
	return cfg, nil
}

// LoadFile overlays cfg with whatever fields path's JSON document sets. A
// missing file is not an error — it just means no overlay applies. This is
// additive to spec.md §6.3's env-var surface, for users who prefer a config
// file; see DESIGN.md.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// DefaultTTL returns DefaultTTLSecs as a time.Duration.
func (c *Config) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSecs) * time.Second
}

// SyncInterval returns SyncIntervalMs as a time.Duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMs) * time.Millisecond
}
