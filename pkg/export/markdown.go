package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/vanderheijden86/deckwork/pkg/chart"
	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/metrics"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// markdownBarWidth is the cell width of bars in chart tables.
const markdownBarWidth = 20

// sanitizeMermaidText prepares text for use in Mermaid labels.
// Removes/escapes characters that break Mermaid syntax.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)

	// Remove any remaining control characters
	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)

	result = strings.TrimSpace(result)

	// Truncate if too long (UTF-8 safe using runes)
	runes := []rune(result)
	if len(runes) > 40 {
		result = string(runes[:37]) + "..."
	}

	return result
}

// GenerateMarkdown renders the whole deck as a markdown handout: a table of
// contents, then one section per slide with every block in reading order.
// Charts become a value table plus a Mermaid bar chart.
func GenerateMarkdown(d *deck.Deck) (string, error) {
	if d == nil {
		return "", fmt.Errorf("markdown export: no deck")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", d.Title))
	sb.WriteString(fmt.Sprintf("*Generated: %s · %d slides*\n\n", time.Now().Format(time.RFC1123), d.Len()))

	// Precompute stable, unique slugs for TOC anchors and headings.
	slugCounts := make(map[string]int, d.Len())
	slugs := make([]string, d.Len())
	for i, s := range d.Slides {
		slugs[i] = uniqueSlug(createSlug(slideHeadingText(i, s)), slugCounts)
	}

	sb.WriteString("## Contents\n\n")
	for i, s := range d.Slides {
		sb.WriteString(fmt.Sprintf("%d. [%s](#%s)", i+1, deck.StripEmphasis(s.Title), slugs[i]))
		if s.Indicator != "" {
			sb.WriteString(fmt.Sprintf(" · %s", s.Indicator))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n---\n\n")

	for i, s := range d.Slides {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slugs[i]))
		sb.WriteString(fmt.Sprintf("## %s\n\n", slideHeadingText(i, s)))
		if s.Subtitle != "" {
			sb.WriteString(fmt.Sprintf("*%s*\n\n", deck.StripEmphasis(s.Subtitle)))
		}

		for _, b := range s.Blocks {
			text, err := markdownBlock(d, b)
			if err != nil {
				return "", fmt.Errorf("slide %d: %w", i+1, err)
			}
			sb.WriteString(text)
		}

		if s.Action != nil {
			sb.WriteString(fmt.Sprintf("> ▶ **%s**\n\n", s.Action.Label))
		}

		sb.WriteString("---\n\n")
	}

	return sb.String(), nil
}

func slideHeadingText(i int, s deck.Slide) string {
	return fmt.Sprintf("%d. %s", i+1, deck.StripEmphasis(s.Title))
}

func markdownBlock(d *deck.Deck, b deck.Block) (string, error) {
	var sb strings.Builder
	if b.Title != "" {
		sb.WriteString(fmt.Sprintf("### %s\n\n", b.Title))
	}

	switch b.Kind {
	case deck.KindParagraph:
		sb.WriteString(b.Text + "\n\n")

	case deck.KindQuote:
		sb.WriteString("> " + strings.ReplaceAll(b.Text, "\n", "\n> ") + "\n\n")

	case deck.KindBullets:
		for _, it := range b.Items {
			sb.WriteString("- " + it + "\n")
		}
		sb.WriteString("\n")

	case deck.KindCards:
		for _, c := range b.Cards {
			title := "**" + c.Title + "**"
			if c.Highlight {
				title = "★ " + title
			}
			if c.Subtitle != "" {
				title += " · " + c.Subtitle
			}
			sb.WriteString("- " + title + "\n")
			if c.Body != "" {
				sb.WriteString("  " + c.Body + "\n")
			}
		}
		sb.WriteString("\n")

	case deck.KindStats:
		sb.WriteString("| Metric | Value | Note |\n|--------|-------|------|\n")
		for _, st := range b.Stats {
			sb.WriteString(fmt.Sprintf("| %s | **%s** | %s |\n", escapeCell(st.Label), escapeCell(st.Value), escapeCell(st.Note)))
		}
		sb.WriteString("\n")

	case deck.KindProfiles:
		for _, p := range b.Profiles {
			line := "- **" + p.Name + "**"
			if p.Role != "" {
				line += ", " + p.Role
			}
			sb.WriteString(line + "\n")
			if p.Bio != "" {
				sb.WriteString("  " + p.Bio + "\n")
			}
			if len(p.Tags) > 0 {
				sb.WriteString("  `" + strings.Join(p.Tags, "` `") + "`\n")
			}
		}
		sb.WriteString("\n")

	case deck.KindTable:
		if b.Table != nil {
			sb.WriteString(markdownTable(b.Table))
		}

	case deck.KindChart:
		if b.Chart == nil {
			break
		}
		text, err := markdownChart(d, *b.Chart, b.Title)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}

func markdownTable(t *deck.Table) string {
	var sb strings.Builder
	header := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = escapeCell(c)
		rule[i] = "---"
	}
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Join(rule, "|") + "|\n")
	for _, r := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range cells {
			if i < len(r.Cells) {
				cells[i] = escapeCell(r.Cells[i])
			}
			if r.Highlight && cells[i] != "" {
				cells[i] = "**" + cells[i] + "**"
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func markdownChart(d *deck.Deck, ref deck.ChartRef, title string) (string, error) {
	fields, err := d.Bars(ref)
	if err != nil {
		return "", fmt.Errorf("chart %s: %w", ref.Series, err)
	}
	if title == "" {
		if s, ok := d.Series(ref.Series); ok {
			title = s.Title
		}
	}

	var sb strings.Builder
	sb.WriteString("| Label |")
	for _, fb := range fields {
		sb.WriteString(fmt.Sprintf(" %s | |", fieldHeading(fb.Field)))
	}
	sb.WriteString(" Note |\n|---|")
	for range fields {
		sb.WriteString("---:|---|")
	}
	sb.WriteString("---|\n")

	if len(fields) > 0 {
		for i, bar := range fields[0].Bars {
			sb.WriteString("| " + escapeCell(bar.Label) + " |")
			for _, fb := range fields {
				b := fb.Bars[i]
				sb.WriteString(fmt.Sprintf(" %s | `%s` |", escapeCell(chart.FormatValue(ref.Format, b.Value)), chart.RenderBar(b.Fraction, markdownBarWidth)))
			}
			sb.WriteString(" " + escapeCell(bar.Note) + " |\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString("```mermaid\n")
	sb.WriteString(GenerateMermaidChart(fields, MermaidConfig{Title: title, Scale: ref.Scale}))
	sb.WriteString("```\n\n")

	return sb.String(), nil
}

func fieldHeading(field string) string {
	if field == "" {
		return field
	}
	r := []rune(field)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// escapeCell keeps a value on one table row and out of the column syntax.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return slug
}

// SaveMarkdownToFile writes the generated markdown to a file.
func SaveMarkdownToFile(d *deck.Deck, filename string) error {
	defer metrics.Timer(metrics.Export)()

	content, err := GenerateMarkdown(d)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
