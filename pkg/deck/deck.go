// Package deck holds the presentation content: an ordered list of slides made
// of plain data blocks, plus the chart series those blocks reference.
//
// Content lives in YAML. The default deck is embedded in the binary; a deck
// file on disk can replace it (see LoadFile). Slides are never mutated after
// loading, a reload builds a fresh Deck.
package deck

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/deckwork/pkg/chart"
)

// SlideCount is the fixed number of slides in a deck.
const SlideCount = 11

// Errors returned by Parse and Validate.
var (
	ErrSlideCount   = errors.New("deck must have exactly 11 slides")
	ErrInvalidSlide = errors.New("invalid slide")
	ErrInvalidBlock = errors.New("invalid block")
	ErrUnknownChart = errors.New("unknown chart series")
)

// Layout controls how a slide is framed.
type Layout string

const (
	LayoutContent Layout = "content" // title + subtitle + stacked blocks (default)
	LayoutHero    Layout = "hero"    // big centred title, used for the landing and closing slides
)

// Kind discriminates Block payloads.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindCards     Kind = "cards"
	KindStats     Kind = "stats"
	KindTable     Kind = "table"
	KindChart     Kind = "chart"
	KindBullets   Kind = "bullets"
	KindQuote     Kind = "quote"
	KindProfiles  Kind = "profiles"
)

// ActionNext advances to the next slide.
const ActionNext = "next"

// Deck is a loaded presentation.
type Deck struct {
	Title  string         `yaml:"title" json:"title"`
	Accent string         `yaml:"accent,omitempty" json:"accent,omitempty"` // hex colour for emphasis
	Charts []chart.Series `yaml:"charts,omitempty" json:"charts,omitempty"`
	Slides []Slide        `yaml:"slides" json:"slides"`

	// Source is the file the deck was read from, empty for the embedded default.
	Source string `yaml:"-" json:"source,omitempty"`
}

// Slide is one self-contained content panel.
type Slide struct {
	ID        string  `yaml:"id" json:"id"`
	Indicator string  `yaml:"indicator" json:"indicator"`
	Layout    Layout  `yaml:"layout,omitempty" json:"layout,omitempty"`
	Title     string  `yaml:"title" json:"title"`
	Subtitle  string  `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Blocks    []Block `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Action    *Action `yaml:"action,omitempty" json:"action,omitempty"`
}

// Action is a button on a slide. Do names the transition to run.
type Action struct {
	Label string `yaml:"label" json:"label"`
	Do    string `yaml:"do" json:"do"`
}

// Block is a piece of slide content. Exactly one payload field is used,
// chosen by Kind.
type Block struct {
	Kind     Kind      `yaml:"kind" json:"kind"`
	Title    string    `yaml:"title,omitempty" json:"title,omitempty"`
	Text     string    `yaml:"text,omitempty" json:"text,omitempty"`   // paragraph, quote
	Items    []string  `yaml:"items,omitempty" json:"items,omitempty"` // bullets
	Cards    []Card    `yaml:"cards,omitempty" json:"cards,omitempty"`
	Stats    []Stat    `yaml:"stats,omitempty" json:"stats,omitempty"`
	Table    *Table    `yaml:"table,omitempty" json:"table,omitempty"`
	Chart    *ChartRef `yaml:"chart,omitempty" json:"chart,omitempty"`
	Profiles []Profile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// Card is a titled box of text.
type Card struct {
	Title     string `yaml:"title" json:"title"`
	Subtitle  string `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Body      string `yaml:"body,omitempty" json:"body,omitempty"`
	Highlight bool   `yaml:"highlight,omitempty" json:"highlight,omitempty"`
}

// Stat is a big-number tile.
type Stat struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	Note  string `yaml:"note,omitempty" json:"note,omitempty"`
}

// Table is a simple grid with optional highlighted rows.
type Table struct {
	Columns []string `yaml:"columns" json:"columns"`
	Rows    []Row    `yaml:"rows" json:"rows"`
}

// Row is one table row.
type Row struct {
	Cells     []string `yaml:"cells" json:"cells"`
	Highlight bool     `yaml:"highlight,omitempty" json:"highlight,omitempty"`
}

// ChartRef points a chart block at a series in Deck.Charts.
type ChartRef struct {
	Series string   `yaml:"series" json:"series"`
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"` // default: all fields of the series
	Format string   `yaml:"format,omitempty" json:"format,omitempty"` // value format, e.g. "$%vM"
	Scale  float64  `yaml:"scale,omitempty" json:"scale,omitempty"`   // fixed axis; 0 = series maximum
}

// Profile is a person card.
type Profile struct {
	Name     string   `yaml:"name" json:"name"`
	Initials string   `yaml:"initials,omitempty" json:"initials,omitempty"`
	Role     string   `yaml:"role,omitempty" json:"role,omitempty"`
	Bio      string   `yaml:"bio,omitempty" json:"bio,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// FieldBars is the normalized output for one field of a chart block.
type FieldBars struct {
	Field string      `json:"field"`
	Bars  []chart.Bar `json:"bars"`
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	return len(d.Slides)
}

// Slide returns the slide at index i. ok is false when i is out of range.
func (d *Deck) Slide(i int) (Slide, bool) {
	if i < 0 || i >= len(d.Slides) {
		return Slide{}, false
	}
	return d.Slides[i], true
}

// Indicators returns the indicator names in slide order.
func (d *Deck) Indicators() []string {
	names := make([]string, len(d.Slides))
	for i, s := range d.Slides {
		names[i] = s.Indicator
	}
	return names
}

// Series looks up a chart series by ID.
func (d *Deck) Series(id string) (chart.Series, bool) {
	for _, s := range d.Charts {
		if s.ID == id {
			return s, true
		}
	}
	return chart.Series{}, false
}

// Bars normalizes every field a chart block asks for.
func (d *Deck) Bars(ref ChartRef) ([]FieldBars, error) {
	s, ok := d.Series(ref.Series)
	if !ok {
		return nil, errUnknownChart(ref.Series)
	}
	if len(s.Records) == 0 {
		return nil, fmt.Errorf("%w: %q", chart.ErrEmptySeries, s.ID)
	}
	fields := ref.Fields
	if len(fields) == 0 {
		fields = chart.Fields(s)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %q has no values", chart.ErrEmptySeries, s.ID)
	}
	out := make([]FieldBars, 0, len(fields))
	for _, f := range fields {
		bars, err := chart.NormalizeToScale(s, f, ref.Scale)
		if err != nil {
			return nil, err
		}
		out = append(out, FieldBars{Field: f, Bars: bars})
	}
	return out, nil
}

// IsHero reports whether the slide uses the hero layout.
func (s Slide) IsHero() bool {
	return s.Layout == LayoutHero
}
