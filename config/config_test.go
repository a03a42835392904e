package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(envLogLevel, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv(envLogLevel, "")
	path := filepath.Join(t.TempDir(), "autofit.toml")
	content := `
[fit]
max_font_size = 96
accuracy = 0.5

[render]
base_dir = "assets"
substitute_missing_fonts = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fit.MaxFontSize != 96 || cfg.Fit.Accuracy != 0.5 || cfg.Fit.MinFontSize != 1 {
		t.Fatalf("unexpected fit config: %+v", cfg.Fit)
	}
	if cfg.Render.BaseDir != "assets" || !cfg.Render.SubstituteFonts {
		t.Fatalf("unexpected render config: %+v", cfg.Render)
	}
	if lvl, _ := cfg.LogLevel(); lvl != logrus.DebugLevel {
		t.Fatalf("unexpected level: %v", lvl)
	}
	opts := cfg.SearchOptions()
	if opts.AccuracyThreshold != 0.5 || opts.MaxFontSize != 96 || opts.ReferenceFontSize != 12 {
		t.Fatalf("unexpected search options: %+v", opts)
	}
}

func TestEnvOverridesLogLevel(t *testing.T) {
	t.Setenv(envLogLevel, "warn")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lvl, _ := cfg.LogLevel(); lvl != logrus.WarnLevel {
		t.Fatalf("env override ignored: %v", lvl)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Fit.MinFontSize = 0 },
		func(c *Config) { c.Fit.Accuracy = -1 },
		func(c *Config) { c.Fit.ReferenceSize = 0 },
		func(c *Config) { c.Fit.MaxFontSize = 0.5 },
		func(c *Config) { c.Log.Level = "loud" },
	}
	for i, mutate := range bad {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(envLogLevel, "")
	path := filepath.Join(t.TempDir(), "autofit.toml")
	cfg := Default()
	cfg.Fit.MaxFontSize = 48
	cfg.Render.SubstituteFonts = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[fit\nmin_font_size = "), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
