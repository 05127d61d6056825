package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vanderheijden86/deckwork/pkg/debug"
)

// stderrExcerpt caps the stderr shown per failed hook in Summary.
const stderrExcerpt = 200

// Result records one hook execution.
type Result struct {
	Hook     Hook
	Phase    Phase
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// OK reports whether the hook exited zero within its timeout.
func (r Result) OK() bool { return r.Err == nil }

// Runner executes the hooks of one export.
type Runner struct {
	cfg     *Config
	export  ExportContext
	results []Result
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *Config, export ExportContext) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Runner{cfg: cfg, export: export}
}

// Prepare loads the hooks next to a deck. It returns a nil runner when
// disabled is set or the directory has no hooks, so callers can skip the
// hook steps entirely.
func Prepare(dir string, export ExportContext, disabled bool) (*Runner, error) {
	if disabled {
		return nil, nil
	}
	cfg, warnings, err := Load(dir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if cfg.Empty() {
		return nil, nil
	}
	return NewRunner(cfg, export), nil
}

// Run executes the hooks of phase p in file order.
//
// Pre-export stops at the first failing hook whose policy is fail, so no
// file gets written. Post-export always runs every hook, since the files
// already exist, and then reports the first fail-policy error.
func (r *Runner) Run(p Phase) error {
	var first error
	for _, h := range r.cfg.Hooks(p) {
		res := r.exec(h, p)
		r.results = append(r.results, res)
		if res.OK() || h.OnError != Fail {
			continue
		}
		err := fmt.Errorf("%s hook %q: %w", p, h.Name, res.Err)
		if p == PreExport {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}

func (r *Runner) exec(h Hook, p Phase) Result {
	timeout := time.Duration(h.Timeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(), r.export.Env()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	// sh may leave children holding the pipes after a kill
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %v", timeout)
	}
	res := Result{
		Hook:     h,
		Phase:    p,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
		Err:      err,
	}
	debug.Log("hook %q (%s) finished in %v: %v", h.Name, p, res.Duration, err)
	return res
}

// Results lists executed hooks in run order.
func (r *Runner) Results() []Result {
	return r.results
}

// Summary is the report printed after an export, empty when nothing ran.
func (r *Runner) Summary() string {
	if len(r.results) == 0 {
		return ""
	}
	failed := 0
	for _, res := range r.results {
		if !res.OK() {
			failed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hooks: %d succeeded, %d failed", len(r.results)-failed, failed)
	for _, res := range r.results {
		if res.OK() {
			continue
		}
		fmt.Fprintf(&b, "\n  ✗ %s (%s): %v", res.Hook.Name, res.Phase, res.Err)
		if res.Stderr != "" {
			fmt.Fprintf(&b, "\n    stderr: %s", excerpt(res.Stderr, stderrExcerpt))
		}
	}
	return b.String()
}

// excerpt keeps the first line of s, cut to n bytes with an ellipsis.
func excerpt(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " …"
	}
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
