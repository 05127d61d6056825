package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	if isColorEmpty(theme.Primary) {
		t.Error("DefaultTheme Primary color is empty")
	}
	if isColorEmpty(theme.Border) {
		t.Error("DefaultTheme Border color is empty")
	}
}

func isColorEmpty(c lipgloss.AdaptiveColor) bool {
	return c.Light == "" && c.Dark == ""
}

func TestWithAccent(t *testing.T) {
	theme := TestTheme()

	got := theme.WithAccent("#7F56D9")
	if got.Primary.Light != "#7F56D9" || got.Primary.Dark != "#7F56D9" {
		t.Errorf("WithAccent primary = %+v", got.Primary)
	}
	if got.Renderer != theme.Renderer {
		t.Error("WithAccent should keep the renderer")
	}

	same := theme.WithAccent("")
	if same.Primary != theme.Primary {
		t.Errorf("empty accent changed primary: %+v", same.Primary)
	}
}

func TestSeriesColor(t *testing.T) {
	theme := TestTheme()
	if theme.SeriesColor(0) != theme.Primary {
		t.Error("first series should use the accent")
	}
	if theme.SeriesColor(1) != theme.Danger {
		t.Error("second series should use the danger colour")
	}
	if theme.SeriesColor(3) != theme.SeriesColor(0) {
		t.Error("series colours should cycle")
	}
}

func TestRenderProgress(t *testing.T) {
	theme := DefaultTheme(lipgloss.NewRenderer(nil))

	tests := []struct {
		index, total, width int
		filled              int
	}{
		{0, 11, 10, 1},
		{10, 11, 10, 10},
		{5, 11, 11, 6},
	}
	for _, tt := range tests {
		got := theme.RenderProgress(tt.index, tt.total, tt.width)
		if n := strings.Count(got, "█"); n != tt.filled {
			t.Errorf("RenderProgress(%d, %d, %d) filled = %d, want %d", tt.index, tt.total, tt.width, n, tt.filled)
		}
		if n := strings.Count(got, "█") + strings.Count(got, "░"); n != tt.width {
			t.Errorf("RenderProgress(%d, %d, %d) cells = %d", tt.index, tt.total, tt.width, n)
		}
	}
	if theme.RenderProgress(0, 0, 10) != "" {
		t.Error("zero total should render nothing")
	}
}

func TestRenderDivider(t *testing.T) {
	theme := DefaultTheme(lipgloss.NewRenderer(nil))
	if got := theme.RenderDivider(5); strings.Count(got, "─") != 5 {
		t.Errorf("RenderDivider(5) = %q", got)
	}
	if theme.RenderDivider(0) != "" {
		t.Error("RenderDivider(0) should be empty")
	}
}

func TestColorProfile_Detection(t *testing.T) {
	// TermProfile is set at init(); just verify it's a valid value
	valid := map[colorprofile.Profile]bool{
		colorprofile.Unknown:   true,
		colorprofile.NoTTY:     true,
		colorprofile.ASCII:     true,
		colorprofile.ANSI:      true,
		colorprofile.ANSI256:   true,
		colorprofile.TrueColor: true,
	}
	if !valid[TermProfile] {
		t.Errorf("TermProfile has unexpected value: %d", TermProfile)
	}
}

func TestThemeFg_TrueColor(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.TrueColor

	got := ThemeFg("#FF6B6B")
	if _, ok := got.(lipgloss.ANSIColor); ok {
		t.Error("ThemeFg should return hex color in TrueColor mode, got ANSIColor")
	}
}

func TestThemeFg_ANSI(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.ANSI

	got := ThemeFg("#FF6B6B")
	ansiColor, ok := got.(lipgloss.ANSIColor)
	if !ok {
		t.Errorf("ThemeFg should return ANSIColor in ANSI mode, got %T", got)
	} else if ansiColor != 7 {
		t.Errorf("ThemeFg should return ANSI white (7) in ANSI mode, got %d", ansiColor)
	}
}

func TestRichText(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.NoTTY
	if RichText() {
		t.Error("NoTTY should not get rich text")
	}
	TermProfile = colorprofile.TrueColor
	if !RichText() {
		t.Error("TrueColor should get rich text")
	}
}
