package ui

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vanderheijden86/deckwork/pkg/chart"
	"github.com/vanderheijden86/deckwork/pkg/deck"
)

// renderedSlide is the body of one slide, ready for the viewport.
type renderedSlide struct {
	content string
	lines   int
	action  *actionSpan // where the action button landed, nil if none
}

// actionSpan locates the action button inside the rendered content.
type actionSpan struct {
	Line, Col, Width int
}

// slideRenderer turns deck blocks into terminal text at a fixed width.
type slideRenderer struct {
	theme  Theme
	deck   *deck.Deck
	md     *MarkdownRenderer // nil: span renderer only
	width  int
	height int // visible height, used to centre hero slides
}

func (r slideRenderer) render(s deck.Slide) renderedSlide {
	if r.width < 10 {
		r.width = 10
	}
	if s.IsHero() {
		return r.renderHero(s)
	}

	var parts []string
	parts = append(parts, r.theme.Title.Render(s.Title))
	if s.Subtitle != "" {
		parts = append(parts, r.theme.Subtitle.Render(s.Subtitle))
	}
	parts = append(parts, r.theme.RenderDivider(r.width))

	body := make([]string, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		body = append(body, r.block(b, r.width))
	}
	content := strings.Join(parts, "\n") + "\n\n" + strings.Join(body, "\n\n")

	out := renderedSlide{content: content, lines: lipgloss.Height(content)}
	if s.Action != nil {
		btn := r.button(s.Action)
		out.action = &actionSpan{Line: out.lines + 1, Col: 0, Width: lipgloss.Width(btn)}
		out.content += "\n\n" + btn
		out.lines += 2
	}
	return out
}

func (r slideRenderer) renderHero(s deck.Slide) renderedSlide {
	var lines []string
	add := func(block string) {
		for _, l := range strings.Split(block, "\n") {
			c, _ := centerLine(l, lipgloss.Width(l), r.width)
			lines = append(lines, c)
		}
	}

	title := s.Title
	// letter-space short wordmarks
	if utf8.RuneCountInString(title) <= 12 && strings.IndexFunc(title, unicode.IsSpace) < 0 {
		title = strings.Join(strings.Split(title, ""), " ")
	}
	add(r.theme.Title.Render(title))
	if s.Subtitle != "" {
		lines = append(lines, "")
		add(r.theme.Base.Bold(true).Render(s.Subtitle))
	}

	proseW := r.width
	if proseW > 64 {
		proseW = 64
	}
	for _, b := range s.Blocks {
		lines = append(lines, "")
		switch b.Kind {
		case deck.KindParagraph, deck.KindQuote:
			add(r.theme.Renderer.NewStyle().Width(proseW).Align(lipgloss.Center).
				Render(r.spans(deck.StripEmphasis(b.Text), r.theme.MutedText)))
		default:
			add(r.block(b, r.width))
		}
	}

	var action *actionSpan
	if s.Action != nil {
		lines = append(lines, "")
		btn := r.button(s.Action)
		bw := lipgloss.Width(btn)
		c, col := centerLine(btn, bw, r.width)
		action = &actionSpan{Line: len(lines), Col: col, Width: bw}
		lines = append(lines, c)
	}

	if pad := (r.height - len(lines)) / 2; pad > 0 {
		lines = append(make([]string, pad), lines...)
		if action != nil {
			action.Line += pad
		}
	}
	return renderedSlide{content: strings.Join(lines, "\n"), lines: len(lines), action: action}
}

func (r slideRenderer) button(a *deck.Action) string {
	return r.theme.Button.Padding(0, 2).Render("▶ " + a.Label)
}

func (r slideRenderer) block(b deck.Block, width int) string {
	var out string
	switch b.Kind {
	case deck.KindParagraph:
		out = r.prose(b.Text, width)
	case deck.KindQuote:
		out = r.theme.Renderer.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(r.theme.Primary).
			PaddingLeft(1).
			Italic(true).
			Width(width - 1).
			Render("“" + deck.StripEmphasis(b.Text) + "”")
	case deck.KindBullets:
		items := make([]string, len(b.Items))
		for i, it := range b.Items {
			items[i] = r.theme.Emphasis.Render("•") + " " +
				r.theme.Renderer.NewStyle().Width(width-2).Render(r.spans(it, r.theme.Base))
		}
		out = strings.Join(items, "\n")
	case deck.KindCards:
		out = r.cards(b.Cards, width)
	case deck.KindStats:
		out = r.stats(b.Stats, width)
	case deck.KindProfiles:
		out = r.profiles(b.Profiles, width)
	case deck.KindTable:
		out = r.table(b.Table, width)
	case deck.KindChart:
		out = r.chart(b, width)
	default:
		out = r.theme.ErrorText.Render("unsupported block: " + string(b.Kind))
	}
	if b.Title != "" && b.Kind != deck.KindChart {
		out = r.theme.Base.Bold(true).Render(b.Title) + "\n" + out
	}
	return out
}

// prose renders a text field with emphasis. Glamour handles it on rich
// terminals; otherwise bold spans are drawn in the accent colour.
func (r slideRenderer) prose(text string, width int) string {
	if r.md != nil {
		r.md.SetWidth(width)
		if out, err := r.md.Render(text); err == nil {
			return out
		}
	}
	return r.theme.Renderer.NewStyle().Width(width).Render(r.spans(text, r.theme.Base))
}

func (r slideRenderer) spans(text string, plain lipgloss.Style) string {
	var b strings.Builder
	for _, sp := range deck.Spans(text) {
		if sp.Bold {
			b.WriteString(r.theme.Emphasis.Render(sp.Text))
		} else {
			b.WriteString(plain.Render(sp.Text))
		}
	}
	return b.String()
}

// grid lays boxes out in rows of cols, equalising heights within a row.
func (r slideRenderer) grid(width, cols int, n int, box func(i, w, h int) string) string {
	if cols < 1 {
		cols = 1
	}
	if cols > n {
		cols = n
	}
	const gap = SpaceSM
	boxW := (width - gap*(cols-1)) / cols

	var rows []string
	for start := 0; start < n; start += cols {
		end := start + cols
		if end > n {
			end = n
		}
		h := 0
		for i := start; i < end; i++ {
			if bh := lipgloss.Height(box(i, boxW, 0)); bh > h {
				h = bh
			}
		}
		var row []string
		for i := start; i < end; i++ {
			if i > start {
				row = append(row, strings.Repeat(" ", gap))
			}
			row = append(row, box(i, boxW, h))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

// cardColumns picks how many boxes fit side by side.
func cardColumns(width, n, minBox int) int {
	cols := width / minBox
	if cols < 1 {
		cols = 1
	}
	if cols > 3 {
		cols = 3
	}
	if cols > n {
		cols = n
	}
	return cols
}

func (r slideRenderer) cards(cards []deck.Card, width int) string {
	return r.grid(width, cardColumns(width, len(cards), 30), len(cards), func(i, w, h int) string {
		c := cards[i]
		inner := w - 4
		head := r.theme.Base.Bold(true).Render(c.Title)
		if c.Highlight {
			head = r.theme.Emphasis.Render(c.Title)
		}
		parts := []string{head}
		if c.Subtitle != "" {
			parts = append(parts, r.theme.Subtitle.Render(c.Subtitle))
		}
		if c.Body != "" {
			parts = append(parts, r.theme.Renderer.NewStyle().Width(inner).Render(r.spans(c.Body, r.theme.MutedText)))
		}
		st := r.theme.cardStyle(c.Highlight).Width(w - 2)
		if h > 2 {
			st = st.Height(h - 2)
		}
		return st.Render(strings.Join(parts, "\n"))
	})
}

func (r slideRenderer) stats(stats []deck.Stat, width int) string {
	return r.grid(width, cardColumns(width, len(stats), 20)+statBonus(width, len(stats)), len(stats), func(i, w, h int) string {
		s := stats[i]
		parts := []string{r.theme.Title.Render(s.Value), r.theme.MutedText.Render(s.Label)}
		if s.Note != "" {
			parts = append(parts, r.theme.Subtitle.Render(s.Note))
		}
		st := r.theme.cardStyle(false).Width(w - 2).Align(lipgloss.Center)
		if h > 2 {
			st = st.Height(h - 2)
		}
		return st.Render(strings.Join(parts, "\n"))
	})
}

// statBonus lets a fourth tile share the row when there is room.
func statBonus(width, n int) int {
	if n >= 4 && width >= 80 {
		return 1
	}
	return 0
}

func (r slideRenderer) profiles(ps []deck.Profile, width int) string {
	return r.grid(width, cardColumns(width, len(ps), 36), len(ps), func(i, w, h int) string {
		p := ps[i]
		inner := w - 4
		head := r.theme.Base.Bold(true).Render(p.Name)
		if p.Initials != "" {
			head = r.theme.Button.Padding(0, 1).Render(p.Initials) + " " + head
		}
		parts := []string{head}
		if p.Role != "" {
			parts = append(parts, r.theme.Emphasis.Render(p.Role))
		}
		if p.Bio != "" {
			parts = append(parts, "", r.theme.Renderer.NewStyle().Width(inner).Render(r.spans(p.Bio, r.theme.MutedText)))
		}
		if len(p.Tags) > 0 {
			tags := make([]string, len(p.Tags))
			for j, t := range p.Tags {
				tags[j] = r.theme.Emphasis.Render("[" + t + "]")
			}
			parts = append(parts, "", r.theme.Renderer.NewStyle().Width(inner).Render(strings.Join(tags, " ")))
		}
		st := r.theme.cardStyle(false).Width(w - 2)
		if h > 2 {
			st = st.Height(h - 2)
		}
		return st.Render(strings.Join(parts, "\n"))
	})
}

func (r slideRenderer) table(t *deck.Table, width int) string {
	if t == nil {
		return ""
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			if row.Highlight {
				cells[j] = r.theme.Emphasis.Render(c)
			} else {
				cells[j] = c
			}
		}
		rows[i] = cells
	}

	headerStyle := r.theme.Renderer.NewStyle().Foreground(r.theme.Subtext).Bold(true).Padding(0, 1)
	cellStyle := r.theme.Renderer.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.theme.Renderer.NewStyle().Foreground(r.theme.Border)).
		Headers(t.Columns...).
		Rows(rows...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func (r slideRenderer) chart(b deck.Block, width int) string {
	ref := *b.Chart
	fields, err := r.deck.Bars(ref)
	if err == nil && len(fields) == 0 {
		err = fmt.Errorf("%w: %q", chart.ErrEmptySeries, ref.Series)
	}
	if err != nil {
		return r.theme.ErrorText.Render("⚠ chart unavailable: " + err.Error())
	}
	series, _ := r.deck.Series(ref.Series)

	title := b.Title
	if title == "" {
		title = series.Title
	}

	labelW, valueW, noteW := 0, 0, 0
	for _, fb := range fields {
		for _, bar := range fb.Bars {
			labelW = max(labelW, lipgloss.Width(bar.Label))
			valueW = max(valueW, lipgloss.Width(chart.FormatValue(ref.Format, bar.Value)))
			noteW = max(noteW, lipgloss.Width(bar.Note))
		}
	}
	fieldW := 0
	if len(fields) > 1 {
		for _, fb := range fields {
			fieldW = max(fieldW, lipgloss.Width(fb.Field))
		}
		// grouped rows indent the field name under the label
		labelW = 2 + fieldW
	}

	barW := width - labelW - valueW - 2
	if noteW > 0 {
		barW -= noteW + 1
	}
	barW = clampInt(barW, 4, 60)

	var lines []string
	if title != "" {
		lines = append(lines, r.theme.Base.Bold(true).Render(title))
	}
	line := func(label string, bar chart.Bar, color lipgloss.AdaptiveColor) string {
		s := padRight(label, labelW) + " " +
			r.theme.Renderer.NewStyle().Foreground(color).Render(chart.RenderBar(bar.Fraction, barW)) + " " +
			padRight(chart.FormatValue(ref.Format, bar.Value), valueW)
		if bar.Note != "" {
			s += " " + r.theme.MutedText.Render(bar.Note)
		}
		return strings.TrimRight(s, " ")
	}

	if len(fields) == 1 {
		for _, bar := range fields[0].Bars {
			lines = append(lines, line(bar.Label, bar, r.theme.SeriesColor(0)))
		}
		return strings.Join(lines, "\n")
	}

	for i := range fields[0].Bars {
		lines = append(lines, r.theme.Base.Bold(true).Render(fields[0].Bars[i].Label))
		for fi, fb := range fields {
			lines = append(lines, line("  "+fieldTitle(fb.Field), fb.Bars[i], r.theme.SeriesColor(fi)))
		}
	}
	return strings.Join(lines, "\n")
}

func fieldTitle(f string) string {
	if f == "" {
		return f
	}
	r, n := utf8.DecodeRuneInString(f)
	return string(unicode.ToUpper(r)) + f[n:]
}
