package deck

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vanderheijden86/deckwork/pkg/debug"
	"github.com/vanderheijden86/deckwork/pkg/metrics"

	"gopkg.in/yaml.v3"
)

//go:embed decks/pixxel.yaml
var defaultDeck []byte

var loadDefault = sync.OnceValues(func() (*Deck, error) {
	return Parse(defaultDeck)
})

// Default returns the embedded deck. The result is shared; callers must not
// modify it.
func Default() (*Deck, error) {
	return loadDefault()
}

// DefaultSource returns the raw embedded YAML.
func DefaultSource() []byte {
	return bytes.Clone(defaultDeck)
}

// LoadFile reads and validates a deck file.
func LoadFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.Source = path
	return d, nil
}

// Load returns the deck at path, or the embedded default when path is empty.
func Load(path string) (*Deck, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes deck YAML and validates it. Unknown keys are rejected so typos
// in a hand-edited deck surface instead of silently dropping content.
func Parse(data []byte) (*Deck, error) {
	defer metrics.TimerWithCallback(metrics.DeckLoad, func(d time.Duration) {
		debug.LogTiming("deck parse", d)
	})()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Deck
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing deck: empty document: %w", ErrSlideCount)
		}
		return nil, fmt.Errorf("parsing deck: %w", err)
	}
	for i := range d.Slides {
		if d.Slides[i].Layout == "" {
			d.Slides[i].Layout = LayoutContent
		}
	}
	if err := Validate(&d); err != nil {
		return nil, err
	}

	return &d, nil
}

// Validate checks the structural rules a deck must satisfy before it can be
// presented: the slide count, slide identity, block payloads and that every
// chart block normalizes cleanly.
func Validate(d *Deck) error {
	if len(d.Slides) != SlideCount {
		return fmt.Errorf("%w: got %d", ErrSlideCount, len(d.Slides))
	}

	seen := make(map[string]int, len(d.Slides))
	for i, s := range d.Slides {
		if s.ID == "" {
			return fmt.Errorf("%w: slide %d has no id", ErrInvalidSlide, i+1)
		}
		if prev, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: slide %d reuses id %q from slide %d", ErrInvalidSlide, i+1, s.ID, prev+1)
		}
		seen[s.ID] = i
		if s.Title == "" {
			return fmt.Errorf("%w: slide %q has no title", ErrInvalidSlide, s.ID)
		}
		switch s.Layout {
		case "", LayoutContent, LayoutHero:
		default:
			return fmt.Errorf("%w: slide %q has unknown layout %q", ErrInvalidSlide, s.ID, s.Layout)
		}
		if s.Action != nil && s.Action.Do != ActionNext {
			return fmt.Errorf("%w: slide %q has unknown action %q", ErrInvalidSlide, s.ID, s.Action.Do)
		}
		for j, b := range s.Blocks {
			if err := d.validateBlock(b); err != nil {
				return fmt.Errorf("slide %q block %d: %w", s.ID, j+1, err)
			}
		}
	}
	return nil
}

func (d *Deck) validateBlock(b Block) error {
	switch b.Kind {
	case KindParagraph, KindQuote:
		if b.Text == "" {
			return fmt.Errorf("%w: %s without text", ErrInvalidBlock, b.Kind)
		}
	case KindBullets:
		if len(b.Items) == 0 {
			return fmt.Errorf("%w: bullets without items", ErrInvalidBlock)
		}
	case KindCards:
		if len(b.Cards) == 0 {
			return fmt.Errorf("%w: cards without cards", ErrInvalidBlock)
		}
	case KindStats:
		if len(b.Stats) == 0 {
			return fmt.Errorf("%w: stats without stats", ErrInvalidBlock)
		}
	case KindProfiles:
		if len(b.Profiles) == 0 {
			return fmt.Errorf("%w: profiles without profiles", ErrInvalidBlock)
		}
	case KindTable:
		if b.Table == nil || len(b.Table.Columns) == 0 {
			return fmt.Errorf("%w: table without columns", ErrInvalidBlock)
		}
		for i, r := range b.Table.Rows {
			if len(r.Cells) != len(b.Table.Columns) {
				return fmt.Errorf("%w: table row %d has %d cells, want %d",
					ErrInvalidBlock, i+1, len(r.Cells), len(b.Table.Columns))
			}
		}
	case KindChart:
		if b.Chart == nil || b.Chart.Series == "" {
			return fmt.Errorf("%w: chart without series", ErrInvalidBlock)
		}
		if _, err := d.Bars(*b.Chart); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBlock, b.Kind)
	}
	return nil
}

func errUnknownChart(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownChart, id)
}
