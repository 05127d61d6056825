// Package hooks runs user commands around deck exports.
//
// Hooks live in .dw/hooks.yaml next to the deck file:
//
//	hooks:
//	  pre-export:
//	    - name: lint
//	      command: test "$DW_SLIDE_COUNT" -eq 11
//	  post-export:
//	    - name: publish
//	      command: rsync -a "$DW_EXPORT_DIR/" handouts:/srv/deck/
//	      timeout: 2m
//
// Pre-export hooks gate the export; post-export hooks see the written files.
package hooks

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/deckwork/pkg/deck"
)

// Phase is the point in an export a hook runs at.
type Phase string

const (
	PreExport  Phase = "pre-export"
	PostExport Phase = "post-export"
)

// Policy decides what a failing hook does to the export.
type Policy string

const (
	Fail     Policy = "fail"
	Continue Policy = "continue"
)

// DefaultTimeout bounds a hook without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// ErrInvalidConfig wraps every problem found in a hooks file.
var ErrInvalidConfig = errors.New("invalid hooks config")

// Timeout accepts Go durations ("90s", "2m") or bare seconds ("30", 1.5).
type Timeout time.Duration

func (t *Timeout) UnmarshalYAML(node *yaml.Node) error {
	v := strings.TrimSpace(node.Value)
	if d, err := time.ParseDuration(v); err == nil {
		*t = Timeout(d)
		return nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return fmt.Errorf("%w: timeout %q is neither a duration nor seconds", ErrInvalidConfig, v)
	}
	*t = Timeout(secs * float64(time.Second))
	return nil
}

// Hook is one command.
type Hook struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Timeout Timeout           `yaml:"timeout"`
	Env     map[string]string `yaml:"env"`
	OnError Policy            `yaml:"on_error"`
}

// Config is a parsed hooks file.
type Config struct {
	PreExport  []Hook `yaml:"pre-export"`
	PostExport []Hook `yaml:"post-export"`
}

// Hooks returns the hooks of one phase.
func (c *Config) Hooks(p Phase) []Hook {
	if c == nil {
		return nil
	}
	switch p {
	case PreExport:
		return c.PreExport
	case PostExport:
		return c.PostExport
	}
	return nil
}

// Empty reports whether nothing would run.
func (c *Config) Empty() bool {
	return len(c.Hooks(PreExport)) == 0 && len(c.Hooks(PostExport)) == 0
}

// Path is the hooks file for a deck directory.
func Path(dir string) string {
	return filepath.Join(dir, ".dw", "hooks.yaml")
}

// Load reads the hooks file under dir. A missing file yields an empty config.
// Hooks without a command are dropped and reported as warnings.
func Load(dir string) (*Config, []string, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading hooks: %w", err)
	}

	var file struct {
		Hooks Config `yaml:"hooks"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	var warnings []string
	cfg := &Config{}
	cfg.PreExport, warnings, err = normalize(file.Hooks.PreExport, PreExport, warnings)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.PostExport, warnings, err = normalize(file.Hooks.PostExport, PostExport, warnings)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, warnings, nil
}

// normalize fills defaults: pre-export hooks fail the export, post-export
// hooks only report.
func normalize(hooks []Hook, p Phase, warnings []string) ([]Hook, []string, error) {
	out := make([]Hook, 0, len(hooks))
	for i, h := range hooks {
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s #%d", p, i+1)
		}
		if strings.TrimSpace(h.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %q has no command, skipped", p, h.Name))
			continue
		}
		if h.Timeout <= 0 {
			h.Timeout = Timeout(DefaultTimeout)
		}
		switch h.OnError {
		case "":
			h.OnError = Continue
			if p == PreExport {
				h.OnError = Fail
			}
		case Fail, Continue:
		default:
			return nil, nil, fmt.Errorf("%w: hook %q on_error %q (want fail or continue)", ErrInvalidConfig, h.Name, h.OnError)
		}
		out = append(out, h)
	}
	return out, warnings, nil
}

// ExportContext describes the export a hook runs around.
type ExportContext struct {
	ExportDir  string
	Formats    []string
	DeckTitle  string
	DeckSource string
	SlideCount int
	Timestamp  time.Time
}

// NewExportContext describes exporting d into dir.
func NewExportContext(d *deck.Deck, dir string, formats []string) ExportContext {
	return ExportContext{
		ExportDir:  dir,
		Formats:    formats,
		DeckTitle:  d.Title,
		DeckSource: d.Source,
		SlideCount: d.Len(),
		Timestamp:  time.Now(),
	}
}

// Env lists the DW_* variables a hook sees.
func (c ExportContext) Env() []string {
	return []string{
		"DW_EXPORT_DIR=" + c.ExportDir,
		"DW_EXPORT_FORMATS=" + strings.Join(c.Formats, ","),
		"DW_DECK_TITLE=" + c.DeckTitle,
		"DW_DECK_SOURCE=" + c.DeckSource,
		"DW_SLIDE_COUNT=" + strconv.Itoa(c.SlideCount),
		"DW_TIMESTAMP=" + c.Timestamp.UTC().Format(time.RFC3339),
	}
}
