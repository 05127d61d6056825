package hooks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/deckwork/pkg/deck"
)

func writeHooksFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(Path(dir)), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(dir), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, warnings, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Empty() || len(warnings) != 0 {
		t.Errorf("cfg=%+v warnings=%v", cfg, warnings)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, `
hooks:
  pre-export:
    - command: test "$DW_SLIDE_COUNT" -eq 11
    - name: quick
      command: "true"
      timeout: 1.5
      on_error: continue
  post-export:
    - name: publish
      command: cp -r "$DW_EXPORT_DIR" /tmp/handouts
      timeout: 2m
      env:
        TARGET: ${HOME}/handouts
`)

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		hook    Hook
		name    string
		timeout time.Duration
		policy  Policy
	}{
		{cfg.PreExport[0], "pre-export #1", DefaultTimeout, Fail},
		{cfg.PreExport[1], "quick", 1500 * time.Millisecond, Continue},
		{cfg.PostExport[0], "publish", 2 * time.Minute, Continue},
	}
	for _, tt := range tests {
		if tt.hook.Name != tt.name || time.Duration(tt.hook.Timeout) != tt.timeout || tt.hook.OnError != tt.policy {
			t.Errorf("hook = %+v, want name %q timeout %v policy %s", tt.hook, tt.name, tt.timeout, tt.policy)
		}
	}
	if cfg.PostExport[0].Env["TARGET"] != "${HOME}/handouts" {
		t.Errorf("env should stay unexpanded until the hook runs: %v", cfg.PostExport[0].Env)
	}
}

func TestLoad_BlankCommandsWarn(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, "hooks:\n  post-export:\n    - name: forgotten\n      command: \"  \"\n")

	cfg, warnings, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Empty() {
		t.Errorf("blank command should be dropped: %+v", cfg)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "forgotten") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"bad timeout", "hooks:\n  pre-export:\n    - {command: \"true\", timeout: soon}\n", ErrInvalidConfig},
		{"bad policy", "hooks:\n  pre-export:\n    - {command: \"true\", on_error: retry}\n", ErrInvalidConfig},
		{"unknown key", "hooks:\n  on-render:\n    - {command: \"true\"}\n", nil},
		{"broken yaml", "hooks:\n  pre-export:\n    - name: [oops\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeHooksFile(t, dir, tt.content)
			_, _, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExportContextEnv(t *testing.T) {
	d, err := deck.Default()
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewExportContext(d, "/tmp/pitch", []string{"md", "svg"})
	ctx.Timestamp = time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	got := make(map[string]string)
	for _, kv := range ctx.Env() {
		k, v, _ := strings.Cut(kv, "=")
		got[k] = v
	}
	want := map[string]string{
		"DW_EXPORT_DIR":     "/tmp/pitch",
		"DW_EXPORT_FORMATS": "md,svg",
		"DW_DECK_TITLE":     "Pixxel Space",
		"DW_DECK_SOURCE":    "",
		"DW_SLIDE_COUNT":    "11",
		"DW_TIMESTAMP":      "2026-03-01T04:00:00Z",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
