package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/vanderheijden86/deckwork/pkg/background"
	"github.com/vanderheijden86/deckwork/pkg/config"
	"github.com/vanderheijden86/deckwork/pkg/debug"
	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/export"
	"github.com/vanderheijden86/deckwork/pkg/hooks"
	"github.com/vanderheijden86/deckwork/pkg/ui"
	"github.com/vanderheijden86/deckwork/pkg/version"
	"github.com/vanderheijden86/deckwork/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

// Fallback size for --render when stdout is not a terminal.
const (
	defaultRenderWidth  = 100
	defaultRenderHeight = 30
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	deckPath := flag.String("deck", "", "Present a deck YAML file instead of the built-in deck")
	watchFlag := flag.Bool("watch", true, "Reload the deck file when it changes (with --deck)")
	backgroundFlag := flag.String("background", "", "Background animation: starfield, particles or none")
	fpsFlag := flag.Int("fps", 0, "Background frames per second")
	slideFlag := flag.Int("slide", 0, "Start at slide N (1-based)")
	renderFlag := flag.Int("render", 0, "Print slide N (1-based) and exit")
	robotOutline := flag.Bool("robot-outline", false, "Output the deck outline as JSON")
	robotChart := flag.String("robot-chart", "", "Output normalized bars for a chart series as JSON")
	robotField := flag.String("field", "", "Limit --robot-chart to one field")
	robotState := flag.Int("robot-state", 0, "Output the navigation state at slide N (1-based) as JSON")
	robotMetrics := flag.Bool("robot-metrics", false, "Render every slide once and output timing metrics as JSON")
	exportMD := flag.String("export-md", "", "Export the deck as a markdown handout to FILE")
	exportSVG := flag.String("export-svg", "", "Export every chart as SVG into DIR")
	exportPNG := flag.String("export-png", "", "Export every chart as PNG into DIR")
	exportSQLite := flag.String("export-sqlite", "", "Export a searchable SQLite archive to FILE")
	exportAll := flag.String("export-all", "", "Export every format into DIR")
	exportWizard := flag.Bool("export-wizard", false, "Choose export formats interactively")
	noHooks := flag.Bool("no-hooks", false, "Skip .dw/hooks.yaml around --export-all and --export-wizard")
	flag.Parse()

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: dw [options]")
		fmt.Println("\nA terminal slide deck presenter.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("dw %s\n", version.Version)
		os.Exit(0)
	}

	appCfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", cfgErr)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	st := resolveSettings(appCfg, cliFlags{
		DeckPath:   *deckPath,
		Watch:      *watchFlag,
		Background: *backgroundFlag,
		FPS:        *fpsFlag,
	}, set, os.Getenv)
	debug.Dump("settings", st)

	d, err := deck.Load(st.DeckPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading deck: %v\n", err)
		os.Exit(1)
	}

	// Robot outputs
	switch {
	case *robotOutline:
		exitOn(writeRobotJSON(os.Stdout, buildOutline(d)))
	case *robotChart != "":
		out, err := buildChartOutput(d, *robotChart, *robotField)
		exitOn(err)
		exitOn(writeRobotJSON(os.Stdout, out))
	case *robotState != 0:
		out, err := buildStateOutput(d, *robotState)
		exitOn(err)
		exitOn(writeRobotJSON(os.Stdout, out))
	case *robotMetrics:
		exitOn(writeRobotJSON(os.Stdout, buildMetricsOutput(d)))
	}
	if *robotOutline || *robotChart != "" || *robotState != 0 || *robotMetrics {
		os.Exit(0)
	}

	// Exports
	exported, err := runExports(d, exportFlags{
		Markdown: *exportMD,
		SVG:      *exportSVG,
		PNG:      *exportPNG,
		SQLite:   *exportSQLite,
		All:      *exportAll,
		NoHooks:  *noHooks,
	})
	exitOn(err)
	if *exportWizard {
		exitOn(runExportWizard(d, appCfg, *noHooks))
		exported = true
	}
	if exported {
		os.Exit(0)
	}

	if *renderFlag != 0 {
		w, h := terminalSize()
		out, err := ui.RenderSlide(d, *renderFlag-1, w, h, ui.Options{
			Background: st.Background,
			FPS:        st.FPS,
			ShowHelp:   st.ShowHelp,
			Seed:       1,
		})
		exitOn(err)
		fmt.Println(out)
		os.Exit(0)
	}

	start, warn := startIndex(*slideFlag, d.Len())
	if warn != "" {
		fmt.Fprintln(os.Stderr, warn)
	}

	var w *watcher.Watcher
	if st.Watch {
		w, err = startWatcher(d.Source)
		if err != nil {
			// Non-fatal: present without hot reload
			fmt.Fprintf(os.Stderr, "Warning: not watching %s: %v\n", d.Source, err)
			w = nil
		}
	}

	m := ui.NewModel(d, ui.Options{
		Background: st.Background,
		FPS:        st.FPS,
		Mouse:      st.Mouse,
		ShowHelp:   st.ShowHelp,
		StartSlide: start,
		Watcher:    w,
		Seed:       time.Now().UnixNano(),
	})
	if err := present(m, st.Mouse, runTUIProgram); err != nil {
		fmt.Fprintf(os.Stderr, "Error running deck presenter: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags are the raw flag values that take part in settings resolution.
type cliFlags struct {
	DeckPath   string
	Watch      bool
	Background string
	FPS        int
}

// settings is the effective presenter configuration.
type settings struct {
	DeckPath   string          `json:"deck_path,omitempty"`
	Watch      bool            `json:"watch"`
	Background background.Kind `json:"background"`
	FPS        int             `json:"fps"`
	Mouse      bool            `json:"mouse"`
	ShowHelp   bool            `json:"show_help"`
}

// resolveSettings applies CLI flag > environment > config file > defaults.
// set holds the names of flags given on the command line.
func resolveSettings(cfg config.Config, f cliFlags, set map[string]bool, getenv func(string) string) settings {
	st := settings{
		DeckPath: cfg.Deck.Path,
		FPS:      cfg.UI.FPS,
		Mouse:    cfg.MouseEnabled(),
		ShowHelp: cfg.UI.ShowHelp,
	}

	bg := cfg.UI.Background
	if v := strings.TrimSpace(getenv("DW_BACKGROUND")); v != "" {
		bg = v
	}
	if set["background"] && f.Background != "" {
		bg = f.Background
	}
	st.Background = background.ParseKind(config.NormalizeBackground(bg))

	if set["fps"] && f.FPS > 0 {
		st.FPS = f.FPS
	}
	if st.FPS <= 0 {
		st.FPS = config.DefaultConfig().UI.FPS
	}

	if set["deck"] && f.DeckPath != "" {
		st.DeckPath = f.DeckPath
	}

	if st.DeckPath != "" {
		st.Watch = cfg.WatchEnabled()
		if set["watch"] {
			st.Watch = f.Watch
		}
	}
	return st
}

// startIndex converts a 1-based --slide value into a start index. Values out
// of range start at the first slide with a warning.
func startIndex(slide, total int) (int, string) {
	if slide == 0 {
		return 0, ""
	}
	if slide < 1 || slide > total {
		return 0, fmt.Sprintf("Warning: --slide %d is out of range (1-%d), starting at slide 1", slide, total)
	}
	return slide - 1, ""
}

func startWatcher(path string) (*watcher.Watcher, error) {
	if path == "" {
		return nil, errors.New("no deck file")
	}
	w, err := watcher.NewWatcher(path, watcher.WithOnError(func(err error) {
		debug.Log("watcher: %v", err)
	}))
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return defaultRenderWidth, defaultRenderHeight
}

// exportFlags are the non-interactive export destinations.
type exportFlags struct {
	Markdown string
	SVG      string
	PNG      string
	SQLite   string
	All      string
	NoHooks  bool
}

// runExports performs every requested export. It reports whether any export
// flag was given.
func runExports(d *deck.Deck, f exportFlags) (bool, error) {
	ran := false

	if f.Markdown != "" {
		ran = true
		if err := export.SaveMarkdownToFile(d, f.Markdown); err != nil {
			return ran, fmt.Errorf("export markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", f.Markdown)
	}

	for _, c := range []struct{ dir, format string }{{f.SVG, export.FormatSVG}, {f.PNG, export.FormatPNG}} {
		if c.dir == "" {
			continue
		}
		ran = true
		files, err := export.SaveDeckCharts(d, c.dir, c.format)
		if err != nil {
			return ran, fmt.Errorf("export %s: %w", c.format, err)
		}
		for _, file := range files {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", file.Path)
		}
	}

	if f.SQLite != "" {
		ran = true
		if err := export.NewSQLiteExporter(d).Export(f.SQLite); err != nil {
			return ran, fmt.Errorf("export sqlite: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", f.SQLite)
	}

	if f.All != "" {
		ran = true
		m, err := exportWithHooks(d, f.All, export.AllFormats(), f.NoHooks)
		if err != nil {
			return ran, fmt.Errorf("export all: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d files to %s\n", len(m.Files)+1, f.All)
	}

	return ran, nil
}

func runExportWizard(d *deck.Deck, cfg config.Config, noHooks bool) error {
	answers, err := export.NewWizard(d.Title, cfg.Export).Run()
	if err != nil {
		return fmt.Errorf("export wizard: %w", err)
	}

	m, err := exportWithHooks(d, answers.Dir, answers.Formats, noHooks)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	export.PrintSuccess(answers.Dir, m)

	cfg.Export = answers
	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save export settings: %v\n", err)
	}
	return nil
}

// hooksDir is where .dw/hooks.yaml is looked up: next to the deck file, or
// the working directory for the built-in deck.
func hooksDir(d *deck.Deck) string {
	if d.Source != "" {
		return filepath.Dir(d.Source)
	}
	wd, _ := os.Getwd()
	return wd
}

// exportWithHooks runs ExportAll between the pre-export and post-export
// hooks. A failing pre-export hook cancels the export.
func exportWithHooks(d *deck.Deck, dir string, formats []string, noHooks bool) (*export.Manifest, error) {
	runner, err := hooks.Prepare(hooksDir(d), hooks.NewExportContext(d, dir, formats), noHooks)
	if err != nil {
		return nil, fmt.Errorf("loading hooks: %w", err)
	}

	if runner != nil {
		if err := runner.Run(hooks.PreExport); err != nil {
			fmt.Fprintln(os.Stderr, runner.Summary())
			return nil, err
		}
	}

	m, err := export.ExportAll(context.Background(), d, dir, formats)
	if err != nil {
		return nil, err
	}

	if runner != nil {
		if err := runner.Run(hooks.PostExport); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		fmt.Fprintln(os.Stderr, runner.Summary())
	}
	return m, nil
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// present runs the presenter and stops its animator and watcher however
// the program ends, before main gets a chance to os.Exit.
func present(m ui.Model, mouse bool, run func(ui.Model, bool) error) error {
	defer m.Stop()
	return run(m, mouse)
}

func runTUIProgram(m ui.Model, mouse bool) error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set DW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("DW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
