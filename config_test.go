package iconvault

import (
	"path/filepath"
	"testing"
)

func TestConfig_DefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("the default config should be valid: %v", err)
	}
	if cfg.Quantize.Quality != (QualityRange{Min: 50, Max: 75}) {
		t.Errorf("unexpected default quality %v", cfg.Quantize.Quality)
	}
}

func TestConfig_ShouldRejectInvalidSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"no sizes":        func(c *Config) { c.Sizes = nil },
		"negative size":   func(c *Config) { c.Sizes = []int{96, -1} },
		"quality range":   func(c *Config) { c.Quantize.Quality = QualityRange{Min: 75, Max: 25} },
		"speed":           func(c *Config) { c.Quantize.Speed = 12 },
		"colors":          func(c *Config) { c.Quantize.Colors = 1 },
		"precision":       func(c *Config) { c.Optimize.Precision = -1 },
		"unknown backend": func(c *Config) { c.Upload.Backend = "ftp" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
}

func TestConfig_Resolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectRoot = "/srv/vault"
	if got := cfg.Resolve("tmp"); got != filepath.Join("/srv/vault", "tmp") {
		t.Errorf("unexpected resolved path %s", got)
	}
	if got := cfg.Resolve("/var/tmp"); got != "/var/tmp" {
		t.Errorf("absolute paths should be kept, got %s", got)
	}
}
