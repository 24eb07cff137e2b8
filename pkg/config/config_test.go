package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"ctcormack/pkg/remap"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.NumCores != runtime.NumCPU() {
		t.Errorf("Expected NumCores=%d, got %d", runtime.NumCPU(), cfg.Processing.NumCores)
	}
	if cfg.Remap.Direction != "inverse" {
		t.Errorf("Expected default direction inverse, got %q", cfg.Remap.Direction)
	}
	if cfg.Remap.Prefix != "" {
		t.Errorf("Expected empty default prefix, got %q", cfg.Remap.Prefix)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose output by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error: %v", err)
	}
	if cfg.Remap.Direction != DefaultConfig().Remap.Direction {
		t.Errorf("Expected default direction, got %q", cfg.Remap.Direction)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctcormack.yaml")
	content := strings.Join([]string{
		"processing:",
		"  numCores: 3",
		"remap:",
		"  direction: h2c",
		"  prefix: cormack_",
		"  rejectNonFinite: true",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Processing.NumCores != 3 {
		t.Errorf("Expected NumCores=3, got %d", cfg.Processing.NumCores)
	}
	dir, err := cfg.Direction()
	if err != nil || dir != remap.HounsfieldToCormack {
		t.Errorf("Expected forward direction, got %v (%v)", dir, err)
	}
	if cfg.Remap.Prefix != "cormack_" || !cfg.Remap.RejectNonFinite {
		t.Errorf("Remap section not loaded: %+v", cfg.Remap)
	}
	// Sections missing from the file keep their defaults
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose default to survive partial config")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "processing: [unclosed"},
		{"bad direction", "remap:\n  direction: sideways\n"},
		{"negative cores", "processing:\n  numCores: -2\n"},
		{"prefix with separator", "remap:\n  prefix: out/c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("Expected an error for %s", tt.name)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Remap.Direction = "up"
	if err := cfg.Validate(); !errors.Is(err, remap.ErrUnknownDirection) {
		t.Errorf("Expected ErrUnknownDirection, got %v", err)
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Processing.NumCores = 5
	cfg.Remap.Direction = remap.HounsfieldToCormack.String()
	cfg.Remap.Prefix = "c"
	cfg.Output.Verbose = false

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Reloaded config differs: got %+v, want %+v", *loaded, *cfg)
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	if !strings.Contains(string(data), "direction: inverse") {
		t.Errorf("Expected default direction in file, got:\n%s", data)
	}
}
