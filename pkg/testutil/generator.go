// Package testutil provides deck fixtures and assertions for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/deckwork/pkg/chart"
	"github.com/vanderheijden86/deckwork/pkg/deck"

	"gopkg.in/yaml.v3"
)

// GeneratorConfig controls deck generation.
type GeneratorConfig struct {
	Seed       int64  // Random seed for determinism
	Title      string // Deck title (default: "Test Deck")
	ChartSlide int    // Index of the slide carrying a chart block (-1 = none)
	Records    int    // Records per generated series (default: 4)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:       42,
		Title:      "Test Deck",
		ChartSlide: 4,
		Records:    4,
	}
}

// Generator creates valid decks with varied content.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Title == "" {
		cfg.Title = "Test Deck"
	}
	if cfg.Records <= 0 {
		cfg.Records = 4
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Series builds a chart series with strictly positive values.
func (g *Generator) Series(id string, fields ...string) chart.Series {
	if len(fields) == 0 {
		fields = []string{"value"}
	}
	s := chart.Series{ID: id, Title: fmt.Sprintf("Series %s", id)}
	for i := 0; i < g.cfg.Records; i++ {
		vals := make(map[string]float64, len(fields))
		for _, f := range fields {
			vals[f] = float64(1+g.rng.Intn(99)) / 2
		}
		s.Records = append(s.Records, chart.Record{
			Label:  fmt.Sprintf("R%d", i+1),
			Values: vals,
		})
	}
	return s
}

// Deck builds a valid SlideCount-slide deck. Slide 0 is a hero slide with a
// "next" action, the last slide is a hero closing slide, the slide at
// ChartSlide carries a chart block and the rest rotate through the other
// block kinds.
func (g *Generator) Deck() *deck.Deck {
	d := &deck.Deck{
		Title:  g.cfg.Title,
		Charts: []chart.Series{g.Series("metrics", "value")},
	}

	kinds := []deck.Kind{
		deck.KindParagraph, deck.KindCards, deck.KindStats, deck.KindTable,
		deck.KindBullets, deck.KindQuote, deck.KindProfiles,
	}
	for i := 0; i < deck.SlideCount; i++ {
		s := deck.Slide{
			ID:        fmt.Sprintf("s%d", i+1),
			Indicator: fmt.Sprintf("S%d", i+1),
			Layout:    deck.LayoutContent,
			Title:     fmt.Sprintf("Slide %d", i+1),
			Subtitle:  fmt.Sprintf("Subtitle %d", i+1),
		}
		switch {
		case i == 0:
			s.Layout = deck.LayoutHero
			s.Blocks = []deck.Block{Block(deck.KindParagraph)}
			s.Action = &deck.Action{Label: "Start", Do: deck.ActionNext}
		case i == deck.SlideCount-1:
			s.Layout = deck.LayoutHero
			s.Blocks = []deck.Block{Block(deck.KindStats)}
		case i == g.cfg.ChartSlide:
			s.Blocks = []deck.Block{{
				Kind:  deck.KindChart,
				Title: "Metrics",
				Chart: &deck.ChartRef{Series: "metrics", Fields: []string{"value"}, Format: "%v"},
			}}
		default:
			s.Blocks = []deck.Block{Block(kinds[g.rng.Intn(len(kinds))])}
		}
		d.Slides = append(d.Slides, s)
	}
	return d
}

// YAML renders the generated deck as a deck file.
func (g *Generator) YAML() []byte {
	data, err := yaml.Marshal(g.Deck())
	if err != nil {
		panic(fmt.Sprintf("testutil: marshaling deck: %v", err))
	}
	return data
}

// Block returns a minimal valid block of the given kind. Chart blocks are not
// supported because they need a series.
func Block(kind deck.Kind) deck.Block {
	b := deck.Block{Kind: kind}
	switch kind {
	case deck.KindParagraph:
		b.Text = "Plain text with **bold** emphasis."
	case deck.KindQuote:
		b.Text = "A quotable line."
	case deck.KindBullets:
		b.Items = []string{"first", "second"}
	case deck.KindCards:
		b.Cards = []deck.Card{{Title: "Card", Body: "Body"}}
	case deck.KindStats:
		b.Stats = []deck.Stat{{Label: "Stat", Value: "42"}}
	case deck.KindTable:
		b.Table = &deck.Table{
			Columns: []string{"Name", "Value"},
			Rows:    []deck.Row{{Cells: []string{"a", "1"}, Highlight: true}, {Cells: []string{"b", "2"}}},
		}
	case deck.KindProfiles:
		b.Profiles = []deck.Profile{{Name: "Ada", Initials: "AL", Role: "Engineer"}}
	}
	return b
}

// QuickDeck returns a deterministic valid deck.
func QuickDeck() *deck.Deck {
	return NewDefault().Deck()
}
