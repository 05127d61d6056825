package ui

import (
	"fmt"

	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/nav"
)

// RenderSlide renders slide index as the presenter would show it at
// width×height, without running a program. This is used by --render to
// capture output non-interactively.
func RenderSlide(d *deck.Deck, index, width, height int, opts Options) (string, error) {
	if _, ok := d.Slide(index); !ok {
		return "", fmt.Errorf("render slide %d: %w", index+1, nav.ErrOutOfRange)
	}
	opts.StartSlide = index
	opts.Watcher = nil
	m := NewModel(d, opts)
	m.setSize(width, height)
	return m.View(), nil
}
