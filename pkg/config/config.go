// Package config handles loading and saving dw configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/dw/config.yaml
//
// Precedence is CLI flag > environment > config file > defaults; this package
// only covers the last two, cmd/dw applies the rest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Background kinds accepted in ui.background.
const (
	BackgroundStarfield = "starfield"
	BackgroundParticles = "particles"
	BackgroundNone      = "none"
)

// UIConfig holds presentation preferences.
type UIConfig struct {
	Background string `yaml:"background,omitempty"` // starfield, particles, none
	FPS        int    `yaml:"fps,omitempty"`        // Background frames per second
	Mouse      *bool  `yaml:"mouse,omitempty"`      // Enable pointer navigation
	ShowHelp   bool   `yaml:"show_help,omitempty"`  // Start with the full help footer
}

// DeckConfig points at a deck file to present instead of the built-in one.
type DeckConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch *bool  `yaml:"watch,omitempty"` // Hot-reload the deck file (default true)
}

// ExportConfig remembers the last export wizard answers.
type ExportConfig struct {
	Dir     string   `yaml:"dir,omitempty"`
	Formats []string `yaml:"formats,omitempty"` // md, svg, png, sqlite
}

// Config is the top-level configuration for dw.
type Config struct {
	UI     UIConfig     `yaml:"ui,omitempty"`
	Deck   DeckConfig   `yaml:"deck,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Background: BackgroundStarfield,
			FPS:        12,
		},
		Export: ExportConfig{
			Dir:     "deck-export",
			Formats: []string{"md", "svg"},
		},
	}
}

// MouseEnabled reports the effective pointer setting (default on).
func (c Config) MouseEnabled() bool {
	return c.UI.Mouse == nil || *c.UI.Mouse
}

// WatchEnabled reports the effective hot-reload setting (default on).
func (c Config) WatchEnabled() bool {
	return c.Deck.Watch == nil || *c.Deck.Watch
}

// ConfigDir returns the XDG config directory for dw.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "dw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dw")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	cfg.UI.Background = NormalizeBackground(cfg.UI.Background)
	if cfg.UI.FPS <= 0 || cfg.UI.FPS > 60 {
		cfg.UI.FPS = DefaultConfig().UI.FPS
	}
	cfg.Deck.Path = expandHome(cfg.Deck.Path)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// NormalizeBackground maps user input onto a known background kind.
// Unknown values fall back to the starfield.
func NormalizeBackground(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case BackgroundParticles, "particle":
		return BackgroundParticles
	case BackgroundNone, "off", "false", "0":
		return BackgroundNone
	default:
		return BackgroundStarfield
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
