package background

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Placement is where Compose put the foreground block.
type Placement struct {
	Left, Top     int
	Width, Height int
}

// Place computes the centred position of an fgW×fgH block in a w×h area.
func Place(fgW, fgH, w, h int) Placement {
	left := (w - fgW) / 2
	if left < 0 {
		left = 0
	}
	top := (h - fgH) / 2
	if top < 0 {
		top = 0
	}
	return Placement{Left: left, Top: top, Width: fgW, Height: fgH}
}

// Compose centres fg in a width×height area and fills the rest with the
// field's cells rendered in style. Foreground cells are never overwritten.
// A nil field fills with spaces.
func Compose(f Field, fg string, width, height int, style lipgloss.Style) (string, Placement) {
	lines := strings.Split(fg, "\n")
	fgW := 0
	for _, l := range lines {
		if w := lipgloss.Width(l); w > fgW {
			fgW = w
		}
	}
	p := Place(fgW, len(lines), width, height)

	rows := make([]string, 0, height)
	for y := 0; y < height; y++ {
		i := y - p.Top
		if i < 0 || i >= len(lines) {
			rows = append(rows, segment(f, 0, width, y, style))
			continue
		}
		line := lines[i]
		lw := lipgloss.Width(line)
		var b strings.Builder
		b.WriteString(segment(f, 0, p.Left, y, style))
		b.WriteString(line)
		// pad ragged lines to the block width so the right edge stays straight
		if lw < fgW {
			b.WriteString(strings.Repeat(" ", fgW-lw))
		}
		b.WriteString(segment(f, p.Left+fgW, width, y, style))
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n"), p
}

// segment renders field cells [x0, x1) of row y.
func segment(f Field, x0, x1, y int, style lipgloss.Style) string {
	if x1 <= x0 {
		return ""
	}
	if f == nil {
		return strings.Repeat(" ", x1-x0)
	}
	var b strings.Builder
	blank := true
	for x := x0; x < x1; x++ {
		r := f.Cell(x, y)
		if r != ' ' {
			blank = false
		}
		b.WriteRune(r)
	}
	if blank {
		return b.String()
	}
	return style.Render(b.String())
}
