package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/testutil"
)

func TestGenerateMarkdown_DefaultDeck(t *testing.T) {
	md, err := GenerateMarkdown(defaultDeck(t))
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}

	testutil.AssertContains(t, md,
		"# Pixxel Space",
		"## Contents",
		"1. [PIXXEL](#1-pixxel) · Home",
		"## 5. The Fuel",
		"*Funding & Investors*",
		"> ▶ **Launch Mission**",
		"| 2023 | $36M |",
		"```mermaid\nxychart-beta",
		"x-axis [\"2019\", \"2020\", \"2022\", \"2023\", \"2024\"]",
		"y-axis \"Value\" 0 --> 36",
		"bar [0.7, 5, 27, 36, 24]",
		"y-axis \"Value\" 0 --> 30",
		"bar [15.3, 28.7]",
		"bar [10.1, 20.4]",
	)

	if got := strings.Count(md, "<a id="); got != 11 {
		t.Errorf("got %d slide anchors, want 11", got)
	}
}

func TestGenerateMarkdown_Blocks(t *testing.T) {
	d := testutil.QuickDeck()
	d.Slides[1].Blocks = []deck.Block{
		testutil.Block(deck.KindTable),
		testutil.Block(deck.KindBullets),
		testutil.Block(deck.KindQuote),
		testutil.Block(deck.KindStats),
		testutil.Block(deck.KindProfiles),
		testutil.Block(deck.KindCards),
	}
	md, err := GenerateMarkdown(d)
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}
	testutil.AssertContains(t, md,
		"| Name | Value |",
		"| **a** | **1** |",
		"| b | 2 |",
		"- first\n- second",
		"> A quotable line.",
		"| Stat | **42** |",
		"- **Ada**, Engineer",
		"- **Card**\n  Body",
	)
}

func TestGenerateMarkdown_ChartError(t *testing.T) {
	d := testutil.QuickDeck()
	d.Slides[4].Blocks[0].Chart.Series = "missing"
	if _, err := GenerateMarkdown(d); err == nil {
		t.Fatal("expected error for unknown chart series")
	}
	if _, err := GenerateMarkdown(nil); err == nil {
		t.Fatal("expected error for nil deck")
	}
}

func TestSaveMarkdownToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "deck.md")
	if err := SaveMarkdownToFile(defaultDeck(t), path); err != nil {
		t.Fatalf("SaveMarkdownToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Pixxel Space") {
		t.Errorf("unexpected content start: %.40q", data)
	}
}

func TestEscapeCell(t *testing.T) {
	if got := escapeCell("a|b\nc\r"); got != `a\|b c` {
		t.Errorf("escapeCell = %q", got)
	}
}

func TestUniqueSlug(t *testing.T) {
	counts := make(map[string]int)
	got := []string{
		uniqueSlug(createSlug("1. Impact"), counts),
		uniqueSlug(createSlug("1. Impact"), counts),
		uniqueSlug(createSlug("!!"), counts),
	}
	want := []string{"1-impact", "1-impact-1", "section"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateMermaidChart(t *testing.T) {
	fields := []deck.FieldBars{{Field: "value"}}
	out := GenerateMermaidChart(fields, MermaidConfig{Title: `Say "hi" [now]`})
	if !strings.Contains(out, `title "Say 'hi' (now)"`) {
		t.Errorf("title not sanitized: %q", out)
	}
	if strings.Contains(out, "x-axis") {
		t.Error("empty bars should not emit axes")
	}
}
