package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/deckwork/pkg/chart"
	"github.com/vanderheijden86/deckwork/pkg/deck"
)

func testRenderer(t *testing.T, width, height int) (slideRenderer, *deck.Deck) {
	t.Helper()
	d, err := deck.Default()
	if err != nil {
		t.Fatalf("Default deck: %v", err)
	}
	return slideRenderer{
		theme:  DefaultTheme(lipgloss.NewRenderer(io.Discard)).WithAccent(d.Accent),
		deck:   d,
		width:  width,
		height: height,
	}, d
}

func renderIndex(t *testing.T, r slideRenderer, d *deck.Deck, i int) renderedSlide {
	t.Helper()
	s, ok := d.Slide(i)
	if !ok {
		t.Fatalf("slide %d missing", i)
	}
	return r.render(s)
}

func TestRender_EverySlideFitsWidth(t *testing.T) {
	for _, width := range []int{72, 88} {
		r, d := testRenderer(t, width, 25)
		for i := 0; i < d.Len(); i++ {
			out := renderIndex(t, r, d, i)
			if strings.TrimSpace(out.content) == "" {
				t.Errorf("width %d slide %d rendered empty", width, i+1)
			}
			if out.lines != lipgloss.Height(out.content) {
				t.Errorf("width %d slide %d: lines = %d, content has %d", width, i+1, out.lines, lipgloss.Height(out.content))
			}
			for n, l := range strings.Split(out.content, "\n") {
				if w := lipgloss.Width(l); w > width {
					t.Errorf("width %d slide %d line %d is %d wide: %q", width, i+1, n, w, l)
				}
			}
		}
	}
}

func TestRender_FundingChart(t *testing.T) {
	r, d := testRenderer(t, 88, 25)
	out := renderIndex(t, r, d, 4).content

	for _, want := range []string{"Cumulative Funding by Round", "2019", "Seed", "$0.7M", "$36M", "Series B Ext", "$24M", "Total Raised"} {
		if !strings.Contains(out, want) {
			t.Errorf("funding slide missing %q", want)
		}
	}

	// the largest round fills its bar completely
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "$36M") && strings.Contains(l, "░") {
			t.Errorf("max bar should be full: %q", l)
		}
	}
}

func TestRender_RevenueChartGroupsFields(t *testing.T) {
	r, d := testRenderer(t, 88, 25)
	out := renderIndex(t, r, d, 5).content

	for _, want := range []string{"FY23", "FY24", "Revenue", "Loss", "₹28.7 Cr", "₹10.1 Cr"} {
		if !strings.Contains(out, want) {
			t.Errorf("revenue slide missing %q", want)
		}
	}
	// fixed scale of 30: no bar is full
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "₹28.7 Cr") && strings.Contains(l, "█") && !strings.Contains(l, "░") {
			t.Errorf("28.7 of 30 should not fill the bar: %q", l)
		}
	}
}

func TestRender_ChartErrorInline(t *testing.T) {
	r, _ := testRenderer(t, 60, 20)
	r.deck = &deck.Deck{Charts: []chart.Series{{ID: "empty"}}}

	out := r.block(deck.Block{Kind: deck.KindChart, Chart: &deck.ChartRef{Series: "empty"}}, 60)
	if !strings.Contains(out, "chart unavailable") {
		t.Errorf("empty series should render an inline error, got %q", out)
	}
	if strings.Contains(out, "NaN") {
		t.Error("error output contains NaN")
	}

	out = r.block(deck.Block{Kind: deck.KindChart, Chart: &deck.ChartRef{Series: "missing"}}, 60)
	if !strings.Contains(out, "chart unavailable") {
		t.Errorf("unknown series should render an inline error, got %q", out)
	}
}

func TestRender_CompetitorTable(t *testing.T) {
	r, d := testRenderer(t, 88, 25)
	out := renderIndex(t, r, d, 6).content
	for _, want := range []string{"Company", "Resolution", "Pixxel", "Satellogic", "Methane/Climate"} {
		if !strings.Contains(out, want) {
			t.Errorf("competitor table missing %q", want)
		}
	}
}

func TestRender_HeroCentred(t *testing.T) {
	r, d := testRenderer(t, 88, 25)
	out := renderIndex(t, r, d, 0)

	if !strings.Contains(out.content, "P I X X E L") {
		t.Error("hero wordmark should be letter-spaced")
	}
	if out.lines > 25 {
		t.Errorf("hero is %d lines tall", out.lines)
	}
	// vertical padding puts the title below the top edge
	if strings.TrimSpace(strings.Split(out.content, "\n")[0]) != "" {
		t.Error("hero should be vertically centred")
	}

	a := out.action
	if a == nil {
		t.Fatal("hero action missing")
	}
	line := strings.Split(out.content, "\n")[a.Line]
	if got := strings.TrimSpace(line); !strings.Contains(got, "▶ Launch Mission") {
		t.Errorf("action line = %q", got)
	}
	if a.Col <= 0 || a.Col+a.Width > 88 {
		t.Errorf("action span %+v not centred", a)
	}
	if strings.TrimSpace(line[:a.Col]) != "" {
		t.Errorf("action column %d cuts into the button in %q", a.Col, line)
	}
}

func TestRender_ContentSlideHasNoAction(t *testing.T) {
	r, d := testRenderer(t, 88, 25)
	for i := 1; i < d.Len(); i++ {
		if out := renderIndex(t, r, d, i); out.action != nil {
			t.Errorf("slide %d unexpectedly has an action", i+1)
		}
	}
}

func TestRender_EmphasisMarkersRemoved(t *testing.T) {
	r, d := testRenderer(t, 88, 25)
	for i := 0; i < d.Len(); i++ {
		if out := renderIndex(t, r, d, i).content; strings.Contains(out, "**") {
			t.Errorf("slide %d still shows ** markers", i+1)
		}
	}
}

func TestRender_Bullets(t *testing.T) {
	r, _ := testRenderer(t, 40, 20)
	out := r.block(deck.Block{Kind: deck.KindBullets, Title: "List", Items: []string{"one", "two"}}, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 || lines[0] != "List" {
		t.Fatalf("bullets = %q", lines)
	}
	if !strings.HasPrefix(lines[1], "• one") {
		t.Errorf("bullet line = %q", lines[1])
	}
}

func TestRender_CardColumns(t *testing.T) {
	tests := []struct {
		width, n, min, want int
	}{
		{88, 4, 30, 2},
		{100, 3, 30, 3},
		{100, 5, 30, 3},
		{40, 4, 30, 1},
		{88, 1, 30, 1},
		{10, 2, 30, 1},
	}
	for _, tt := range tests {
		if got := cardColumns(tt.width, tt.n, tt.min); got != tt.want {
			t.Errorf("cardColumns(%d, %d, %d) = %d, want %d", tt.width, tt.n, tt.min, got, tt.want)
		}
	}
}

func TestFieldTitle(t *testing.T) {
	if fieldTitle("revenue") != "Revenue" || fieldTitle("") != "" {
		t.Error("fieldTitle")
	}
}
