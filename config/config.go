// Package config provides configuration loading for Surfmate using TOML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Keys are the engine's control keys. Follow and Command must stay off the
// hint pool (letters and digits) or they would shadow element keys.
type Keys struct {
	Activate string
	Follow   string
	Command  string
}

// Survey bounds the page scan.
type Survey struct {
	PageCap      int
	ContainerCap int
	MaxTextLen   int
}

// Hints control badge layout.
type Hints struct {
	Padding       float64
	MaxIterations int
	OffscreenFade bool
}

// Labeling controls the model round trip.
type Labeling struct {
	Enabled        bool
	Provider       string // "" = first available, else "claude-api" or "claude-cli"
	TimeoutSeconds int
	Retries        int
	CacheTTLDays   int
}

// Fetcher holds HTTP fetching settings.
type Fetcher struct {
	UserAgent      string
	TimeoutSeconds int
	ChromePath     string // Path to Chrome/Chromium (empty = auto-detect)
}

// Engine tunes event coalescing.
type Engine struct {
	ViewportDelayMs int // debounce for scroll/resize re-layout
	SettleDelayMs   int // quiet period after navigation before re-activating
}

// Logging selects log verbosity.
type Logging struct {
	Level string // "debug", "info", "warn", "error"
}

// Config is the main configuration struct.
type Config struct {
	Keys     Keys
	Survey   Survey
	Hints    Hints
	Labeling Labeling
	Fetcher  Fetcher
	Engine   Engine
	Logging  Logging
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Keys: Keys{
			Activate: "f",
			Follow:   "/",
			Command:  ":",
		},
		Survey: Survey{
			PageCap:      500,
			ContainerCap: 200,
			MaxTextLen:   80,
		},
		Hints: Hints{
			Padding:       2,
			MaxIterations: 10,
			OffscreenFade: true,
		},
		Labeling: Labeling{
			Enabled:        true,
			Provider:       "",
			TimeoutSeconds: 45,
			Retries:        1,
			CacheTTLDays:   7,
		},
		Fetcher: Fetcher{
			UserAgent:      "Surfmate/1.0 (Keyboard Navigator)",
			TimeoutSeconds: 30,
			ChromePath:     "",
		},
		Engine: Engine{
			ViewportDelayMs: 150,
			SettleDelayMs:   600,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "surfmate"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the user config layered over defaults. Missing file means
// defaults; a file that exists but will not parse or validate is an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from an explicit path. Keys present in the
// file override the defaults; everything else keeps its stock value.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects control keys that would collide with the hint pool.
func (c *Config) Validate() error {
	for name, key := range map[string]string{
		"keys.activate": c.Keys.Activate,
		"keys.follow":   c.Keys.Follow,
		"keys.command":  c.Keys.Command,
	} {
		r := []rune(key)
		if len(r) != 1 || !unicode.IsPrint(r[0]) {
			return fmt.Errorf("%s must be a single printable character, got %q", name, key)
		}
	}
	for name, key := range map[string]string{
		"keys.follow":  c.Keys.Follow,
		"keys.command": c.Keys.Command,
	} {
		r := []rune(key)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return fmt.Errorf("%s = %q collides with hint keys; pick punctuation", name, key)
		}
	}
	if c.Keys.Activate == c.Keys.Follow || c.Keys.Activate == c.Keys.Command || c.Keys.Follow == c.Keys.Command {
		return fmt.Errorf("control keys must be distinct: %q %q %q",
			c.Keys.Activate, c.Keys.Follow, c.Keys.Command)
	}
	return nil
}

// normalize snaps out-of-range numbers back to their defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Survey.PageCap <= 0 {
		c.Survey.PageCap = def.Survey.PageCap
	}
	if c.Survey.ContainerCap <= 0 {
		c.Survey.ContainerCap = def.Survey.ContainerCap
	}
	if c.Survey.MaxTextLen <= 0 {
		c.Survey.MaxTextLen = def.Survey.MaxTextLen
	}
	if c.Hints.MaxIterations <= 0 {
		c.Hints.MaxIterations = def.Hints.MaxIterations
	}
	if c.Labeling.TimeoutSeconds <= 0 {
		c.Labeling.TimeoutSeconds = def.Labeling.TimeoutSeconds
	}
	if c.Labeling.Retries < 0 {
		c.Labeling.Retries = def.Labeling.Retries
	}
	if c.Labeling.CacheTTLDays <= 0 {
		c.Labeling.CacheTTLDays = def.Labeling.CacheTTLDays
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		c.Fetcher.TimeoutSeconds = def.Fetcher.TimeoutSeconds
	}
	if c.Engine.ViewportDelayMs <= 0 {
		c.Engine.ViewportDelayMs = def.Engine.ViewportDelayMs
	}
	if c.Engine.SettleDelayMs <= 0 {
		c.Engine.SettleDelayMs = def.Engine.SettleDelayMs
	}
}

// SlogLevel maps the configured level onto slog's.
func (l Logging) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# Surfmate configuration
# Save to ~/.config/surfmate/config.toml and customize
# Only include settings you want to change from defaults

# Control keys
[keys]
activate = "f"                # Start navigation on the current page
follow = "/"                  # Fuzzy-search the visible targets (punctuation only)
command = ":"                 # Open the command line (punctuation only)

# Page survey limits
[survey]
pageCap = 500                 # Max candidates from a full-page survey
containerCap = 200            # Max candidates inside one container
maxTextLen = 80               # Truncate candidate text beyond this many runes

# Hint badge layout
[hints]
padding = 2.0                 # Gap between a badge and its element
maxIterations = 10            # Overlap-resolution passes per render
offscreenFade = true          # Dim badges for offscreen elements

# Container labeling
[labeling]
enabled = true                # Ask a model to name containers; false = heuristic names
provider = ""                 # "claude-api", "claude-cli", or empty for first available
timeoutSeconds = 45           # Per-attempt model timeout
retries = 1                   # Re-prompts after an unparseable reply
cacheTTLDays = 7              # Disk cache lifetime per page

# Page fetching
[fetcher]
userAgent = "Surfmate/1.0 (Keyboard Navigator)"
timeoutSeconds = 30
chromePath = ""               # Path to Chrome/Chromium (empty = auto-detect)

# Event coalescing
[engine]
viewportDelayMs = 150         # Debounce for scroll/resize re-layout
settleDelayMs = 600           # Quiet period after navigation before re-activating

# Logging
[logging]
level = "info"                # "debug", "info", "warn", "error"
`
}
