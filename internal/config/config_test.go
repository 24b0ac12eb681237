package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvOverlaysDefaults(t *testing.T) {
	t.Setenv("CRABKV_DATA_DIR", "/tmp/custom-dir")
	t.Setenv("CRABKV_CACHE_CAPACITY", "42")
	t.Setenv("CRABKV_DEFAULT_TTL_SECS", "30")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.DataDir != "/tmp/custom-dir" {
		t.Errorf("DataDir = %q, want /tmp/custom-dir", cfg.DataDir)
	}
	if cfg.CacheCapacity != 42 {
		t.Errorf("CacheCapacity = %d, want 42", cfg.CacheCapacity)
	}
	if cfg.DefaultTTL().Seconds() != 30 {
		t.Errorf("DefaultTTL = %v, want 30s", cfg.DefaultTTL())
	}
}

func TestLoadEnvRejectsBadInt(t *testing.T) {
	t.Setenv("CRABKV_CACHE_CAPACITY", "not-a-number")
	if _, err := LoadEnv(); err == nil {
		t.Fatal("LoadEnv: want error for non-numeric CRABKV_CACHE_CAPACITY")
	}
}

func TestLoadFileOverlaysAndToleratesMissingFile(t *testing.T) {
	cfg := Default()
	if err := LoadFile(cfg, filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("LoadFile(missing): %v", err)
	}
	if cfg.DataDir != "crabkv-data" {
		t.Errorf("LoadFile(missing) changed DataDir to %q", cfg.DataDir)
	}

	path := filepath.Join(t.TempDir(), "crabkv.json")
	body := `{"data_dir":"/var/crabkv","cache_capacity":99,"compression":true}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DataDir != "/var/crabkv" || cfg.CacheCapacity != 99 || !cfg.Compression {
		t.Errorf("unexpected cfg after LoadFile: %+v", cfg)
	}
}
