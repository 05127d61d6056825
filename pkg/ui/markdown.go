package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"github.com/vanderheijden86/deckwork/pkg/debug"
)

// MarkdownRenderer renders slide prose with glamour at a fixed wrap width.
// The underlying renderer is rebuilt only when the width changes.
type MarkdownRenderer struct {
	width int
	style string
	tr    *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer wrapping at width cells.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	style := styles.DarkStyle
	if !RichText() {
		style = styles.NoTTYStyle
	}
	m := &MarkdownRenderer{style: style}
	m.SetWidth(width)
	return m
}

// SetWidth changes the wrap width.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	if width == m.width && m.tr != nil {
		return
	}
	m.width = width
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		debug.Log("markdown renderer: %v", err)
		m.tr = nil
		return
	}
	m.tr = tr
}

// Render renders md. Glamour pads output with a margin and blank lines; they
// are trimmed so blocks stack tightly.
func (m *MarkdownRenderer) Render(md string) (string, error) {
	if m == nil || m.tr == nil {
		return md, nil
	}
	out, err := m.tr.Render(md)
	if err != nil {
		return md, err
	}
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, "  ")
	}
	return strings.Join(lines, "\n"), nil
}
