package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	def := Default()
	if *cfg != *def {
		t.Errorf("missing file config = %#v, want defaults", cfg)
	}
}

func TestLoadFromOverridesOnlyPresentKeys(t *testing.T) {
	path := writeConfig(t, `
[keys]
activate = ";"

[survey]
pageCap = 120

[labeling]
enabled = false
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Keys.Activate != ";" {
		t.Errorf("activate = %q, want ;", cfg.Keys.Activate)
	}
	if cfg.Keys.Follow != "/" || cfg.Keys.Command != ":" {
		t.Errorf("untouched keys changed: %#v", cfg.Keys)
	}
	if cfg.Survey.PageCap != 120 {
		t.Errorf("pageCap = %d, want 120", cfg.Survey.PageCap)
	}
	if cfg.Survey.ContainerCap != 200 {
		t.Errorf("containerCap = %d, want default 200", cfg.Survey.ContainerCap)
	}
	// A default-true boolean can be turned off.
	if cfg.Labeling.Enabled {
		t.Error("labeling.enabled = true, want false from file")
	}
}

func TestLoadFromRejectsLetterControlKey(t *testing.T) {
	path := writeConfig(t, `
[keys]
follow = "g"
`)
	if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "collides") {
		t.Fatalf("err = %v, want hint-pool collision", err)
	}
}

func TestLoadFromRejectsDuplicateControlKeys(t *testing.T) {
	path := writeConfig(t, `
[keys]
activate = "/"
`)
	if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "distinct") {
		t.Fatalf("err = %v, want distinctness error", err)
	}
}

func TestLoadFromRejectsBrokenTOML(t *testing.T) {
	path := writeConfig(t, `[keys`)
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("want parse error for broken TOML")
	}
}

func TestNormalizeSnapsBadNumbers(t *testing.T) {
	path := writeConfig(t, `
[survey]
pageCap = -5

[engine]
settleDelayMs = 0
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Survey.PageCap != 500 {
		t.Errorf("pageCap = %d, want default 500", cfg.Survey.PageCap)
	}
	if cfg.Engine.SettleDelayMs != 600 {
		t.Errorf("settleDelayMs = %d, want default 600", cfg.Engine.SettleDelayMs)
	}
}

func TestDefaultTOMLParsesBackToDefaults(t *testing.T) {
	var cfg Config
	if _, err := toml.Decode(DefaultTOML(), &cfg); err != nil {
		t.Fatalf("DefaultTOML does not parse: %v", err)
	}
	if cfg != *Default() {
		t.Errorf("DefaultTOML decodes to %#v, want Default()", cfg)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"gibberish", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (Logging{Level: tt.in}).SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
