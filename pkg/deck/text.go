package deck

import (
	"strings"
)

// StripEmphasis removes **bold** markers from a text field.
func StripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

// Spans splits a text field into alternating plain and emphasized runs.
// An unterminated marker emphasizes the rest of the string.
func Spans(s string) []Span {
	var out []Span
	bold := false
	for {
		i := strings.Index(s, "**")
		if i < 0 {
			break
		}
		if i > 0 {
			out = append(out, Span{Text: s[:i], Bold: bold})
		}
		bold = !bold
		s = s[i+2:]
	}
	if s != "" {
		out = append(out, Span{Text: s, Bold: bold})
	}
	return out
}

// Span is a run of text with uniform emphasis.
type Span struct {
	Text string
	Bold bool
}

// PlainText flattens a slide into readable text: title, subtitle and every
// block in order, with emphasis markers removed. Used for the clipboard and
// the search index.
func PlainText(s Slide) string {
	var b strings.Builder
	line := func(parts ...string) {
		var kept []string
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				kept = append(kept, StripEmphasis(p))
			}
		}
		if len(kept) > 0 {
			b.WriteString(strings.Join(kept, " - "))
			b.WriteByte('\n')
		}
	}

	line(s.Title)
	line(s.Subtitle)
	for _, blk := range s.Blocks {
		b.WriteByte('\n')
		line(blk.Title)
		switch blk.Kind {
		case KindParagraph:
			line(blk.Text)
		case KindQuote:
			line(`"` + blk.Text + `"`)
		case KindBullets:
			for _, it := range blk.Items {
				line("• " + it)
			}
		case KindCards:
			for _, c := range blk.Cards {
				line(c.Title, c.Subtitle)
				line(c.Body)
			}
		case KindStats:
			for _, st := range blk.Stats {
				line(st.Label+": "+st.Value, st.Note)
			}
		case KindProfiles:
			for _, p := range blk.Profiles {
				line(p.Name, p.Role)
				line(p.Bio)
				if len(p.Tags) > 0 {
					line(strings.Join(p.Tags, ", "))
				}
			}
		case KindTable:
			if blk.Table != nil {
				line(strings.Join(blk.Table.Columns, " | "))
				for _, r := range blk.Table.Rows {
					line(strings.Join(r.Cells, " | "))
				}
			}
		case KindChart:
			if blk.Chart != nil {
				line("[chart: " + blk.Chart.Series + "]")
			}
		}
	}
	if s.Action != nil {
		b.WriteByte('\n')
		line("[" + s.Action.Label + "]")
	}
	return strings.TrimRight(b.String(), "\n")
}
