package ui

import "github.com/vanderheijden86/deckwork/pkg/nav"

// layout is the screen geometry of one frame. View draws from it and mouse
// clicks are hit-tested against it, so both always agree.
//
//	row 0            header
//	rows 1..BodyH    arrows, slide panel, background
//	row DotsY        slide dots
//	rest             footer (help or status)
type layout struct {
	Width, Height int

	BodyTop, BodyHeight int
	FgLeft, FgWidth     int // foreground block: arrows + panel

	PanelLeft, PanelWidth int
	ContentLeft, ContentTop int
	ContentWidth, ViewportHeight int

	ArrowY          int
	PrevX, NextX    int
	DotsY, DotsLeft int
	Total           int
	FooterHeight    int
}

// computeLayout derives the geometry for a w×h terminal showing total
// slides with a footer of footerH rows.
func computeLayout(w, h, total, footerH int) layout {
	if footerH < 1 {
		footerH = 1
	}
	l := layout{Width: w, Height: h, Total: total, FooterHeight: footerH, BodyTop: 1}

	l.BodyHeight = h - 2 - footerH
	if l.BodyHeight < 3 {
		l.BodyHeight = 3
	}

	l.PanelWidth = clampInt(w-2*arrowGutter-4, minPanelWidth, maxPanelWidth)
	l.FgWidth = l.PanelWidth + 2*arrowGutter
	l.FgLeft = (w - l.FgWidth) / 2
	if l.FgLeft < 0 {
		l.FgLeft = 0
	}
	l.PanelLeft = l.FgLeft + arrowGutter

	// rounded border plus one cell of horizontal padding
	l.ContentLeft = l.PanelLeft + 2
	l.ContentTop = l.BodyTop + 1
	l.ContentWidth = l.PanelWidth - 4
	l.ViewportHeight = l.BodyHeight - 2

	l.ArrowY = l.BodyTop + l.BodyHeight/2
	l.PrevX = l.FgLeft
	l.NextX = l.FgLeft + l.FgWidth - 1

	l.DotsY = l.BodyTop + l.BodyHeight
	l.DotsLeft = (w - (2*total - 1)) / 2
	if l.DotsLeft < 0 {
		l.DotsLeft = 0
	}
	return l
}

type hitKind int

const (
	hitNone hitKind = iota
	hitPrev
	hitNext
	hitDot
	hitAction
)

// hit is the result of a click: what was under the pointer and, for dots,
// which slide.
type hit struct {
	kind  hitKind
	index int
}

// hitTest resolves a click at (x, y). Hidden arrows are not clickable.
// action and yOffset place the slide's action button, which scrolls with
// the viewport.
func (l layout) hitTest(x, y int, s nav.State, action *actionSpan, yOffset int) hit {
	near := func(ax, ay int) bool {
		return abs(x-ax) <= 1 && abs(y-ay) <= 1
	}
	if nav.HasPrevious(s) && near(l.PrevX, l.ArrowY) {
		return hit{kind: hitPrev}
	}
	if nav.HasNext(s) && near(l.NextX, l.ArrowY) {
		return hit{kind: hitNext}
	}

	if y == l.DotsY && x >= l.DotsLeft {
		off := x - l.DotsLeft
		if off%2 == 0 && off/2 < l.Total {
			return hit{kind: hitDot, index: off / 2}
		}
	}

	if action != nil {
		line := action.Line - yOffset
		if line >= 0 && line < l.ViewportHeight && y == l.ContentTop+line {
			left := l.ContentLeft + action.Col
			if x >= left && x < left+action.Width {
				return hit{kind: hitAction}
			}
		}
	}
	return hit{kind: hitNone}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
