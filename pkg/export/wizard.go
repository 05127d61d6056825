// This file implements the interactive export wizard for --export-wizard.
// It asks which formats to write and where, then hands the answers back to
// the caller, which runs ExportAll and remembers them in the config file.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/deckwork/pkg/config"
)

// Wizard handles the interactive export flow.
type Wizard struct {
	config config.ExportConfig
	title  string
}

// NewWizard creates a wizard pre-filled with the last saved answers.
func NewWizard(deckTitle string, saved config.ExportConfig) *Wizard {
	w := &Wizard{config: saved, title: deckTitle}
	if w.config.Dir == "" {
		w.config.Dir = config.DefaultConfig().Export.Dir
	}
	if formats, err := NormalizeFormats(w.config.Formats); err == nil {
		w.config.Formats = formats
	} else {
		w.config.Formats = config.DefaultConfig().Export.Formats
	}
	return w
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// formatOptions lists the export formats in the order the wizard shows them.
func formatOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Markdown handout (deck.md)", FormatMarkdown),
		huh.NewOption("SVG chart images", FormatSVG),
		huh.NewOption("PNG chart images", FormatPNG),
		huh.NewOption("SQLite archive with full-text search", FormatSQLite),
		huh.NewOption("Deck JSON", FormatJSON),
	}
}

// Run executes the interactive wizard flow.
func (w *Wizard) Run() (config.ExportConfig, error) {
	w.printBanner()

	formats := append([]string(nil), w.config.Formats...)
	dir := w.config.Dir

	form := newForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("What should be exported?").
				Description("Space toggles, enter confirms").
				Options(formatOptions()...).
				Value(&formats).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("pick at least one format")
					}
					return nil
				}),
			huh.NewInput().
				Title("Output directory").
				Value(&dir).
				Placeholder(w.config.Dir),
		),
	)

	if err := form.Run(); err != nil {
		return w.config, err
	}

	return w.apply(formats, dir)
}

// apply validates the answers and stores them.
func (w *Wizard) apply(formats []string, dir string) (config.ExportConfig, error) {
	normalized, err := NormalizeFormats(formats)
	if err != nil {
		return w.config, err
	}
	if dir = strings.TrimSpace(dir); dir != "" {
		w.config.Dir = dir
	}
	w.config.Formats = normalized
	return w.config, nil
}

// GetConfig returns the collected answers.
func (w *Wizard) GetConfig() config.ExportConfig {
	return w.config
}

func (w *Wizard) printBanner() {
	fmt.Println("")
	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      dw → Deck Export Wizard                     ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")
	if w.title != "" {
		fmt.Printf("  Deck: %s\n", w.title)
	}
	fmt.Println("  Press Ctrl+C anytime to cancel")
	fmt.Println("")
}

// SuccessLines builds the summary shown after an export.
func SuccessLines(dir string, m *Manifest) []string {
	lines := []string{"Export Complete!"}
	lines = append(lines, "Directory: "+dir)
	counts := make(map[string]int)
	for _, f := range m.Files {
		counts[f.Format]++
	}
	for _, f := range m.Formats {
		lines = append(lines, fmt.Sprintf("  %-7s %d file(s)", f, counts[f]))
	}
	lines = append(lines, "Manifest:  "+ManifestName)
	return lines
}

// PrintSuccess prints the summary box after an export.
func PrintSuccess(dir string, m *Manifest) {
	lines := SuccessLines(dir, m)

	// Calculate width: max line length + 4 (for "║  " prefix and " ║" suffix)
	width := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > width {
			width = n
		}
	}
	width += 4
	if width < 50 {
		width = 50
	}

	bar := strings.Repeat("═", width)
	fmt.Println("")
	fmt.Println("╔" + bar + "╗")

	title := lines[0]
	padding := (width - len(title)) / 2
	fmt.Printf("║%s%s%s║\n", strings.Repeat(" ", padding), title, strings.Repeat(" ", width-padding-len(title)))
	fmt.Println("╠" + bar + "╣")

	for _, line := range lines[1:] {
		fmt.Printf("║  %s%s ║\n", line, strings.Repeat(" ", width-3-len([]rune(line))))
	}

	fmt.Println("╚" + bar + "╝")
	fmt.Println("")
}
