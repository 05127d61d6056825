package main

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/deckwork/pkg/chart"
	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/export"
	"github.com/vanderheijden86/deckwork/pkg/metrics"
	"github.com/vanderheijden86/deckwork/pkg/nav"
	"github.com/vanderheijden86/deckwork/pkg/ui"
	"github.com/vanderheijden86/deckwork/pkg/version"
)

type robotSlide struct {
	Slide     int      `json:"slide"` // 1-based
	ID        string   `json:"id"`
	Indicator string   `json:"indicator"`
	Layout    string   `json:"layout"`
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Blocks    []string `json:"blocks"`
	Charts    []string `json:"charts,omitempty"`
	Action    string   `json:"action,omitempty"`
}

type robotOutlineOutput struct {
	GeneratedAt string       `json:"generated_at"`
	Version     string       `json:"version"`
	DataHash    string       `json:"data_hash"`
	Title       string       `json:"title"`
	Source      string       `json:"source,omitempty"`
	SlideCount  int          `json:"slide_count"`
	Series      []string     `json:"series"`
	Slides      []robotSlide `json:"slides"`
}

type robotBar struct {
	chart.Bar
	Display string `json:"display"`
	Percent string `json:"percent"`
}

type robotField struct {
	Field string     `json:"field"`
	Bars  []robotBar `json:"bars"`
}

type robotChartOutput struct {
	GeneratedAt string       `json:"generated_at"`
	Series      string       `json:"series"`
	Title       string       `json:"title,omitempty"`
	Slide       int          `json:"slide,omitempty"` // first slide showing the series
	Format      string       `json:"format,omitempty"`
	Scale       float64      `json:"scale,omitempty"`
	Fields      []robotField `json:"fields"`
}

type robotStateOutput struct {
	nav.State
	Slide       int    `json:"slide"` // 1-based
	Counter     string `json:"counter"`
	HasPrevious bool   `json:"has_previous"`
	HasNext     bool   `json:"has_next"`
	ID          string `json:"id"`
	Indicator   string `json:"indicator"`
	Title       string `json:"title"`
	Dots        []bool `json:"dots"`
}

type robotMetricsOutput struct {
	GeneratedAt string                `json:"generated_at"`
	Enabled     bool                  `json:"enabled"`
	Timings     []metrics.TimingStats `json:"timings"`
}

func writeRobotJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func buildOutline(d *deck.Deck) robotOutlineOutput {
	out := robotOutlineOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Version,
		DataHash:    export.DataHash(d),
		Title:       d.Title,
		Source:      d.Source,
		SlideCount:  d.Len(),
		Series:      make([]string, 0, len(d.Charts)),
		Slides:      make([]robotSlide, 0, d.Len()),
	}
	for _, s := range d.Charts {
		out.Series = append(out.Series, s.ID)
	}
	for _, es := range export.FlattenSlides(d) {
		s := d.Slides[es.Index]
		rs := robotSlide{
			Slide:     es.Index + 1,
			ID:        es.ID,
			Indicator: es.Indicator,
			Layout:    es.Layout,
			Title:     es.Title,
			Subtitle:  es.Subtitle,
			Blocks:    make([]string, 0, len(s.Blocks)),
			Action:    es.Action,
		}
		for _, b := range s.Blocks {
			rs.Blocks = append(rs.Blocks, string(b.Kind))
			if b.Chart != nil {
				rs.Charts = append(rs.Charts, b.Chart.Series)
			}
		}
		out.Slides = append(out.Slides, rs)
	}
	return out
}

// buildChartOutput normalizes a series the way its slide draws it. field
// limits the output to one field.
func buildChartOutput(d *deck.Deck, id, field string) (robotChartOutput, error) {
	s, ok := d.Series(id)
	if !ok {
		return robotChartOutput{}, fmt.Errorf("unknown chart %q (available: %v)", id, buildOutline(d).Series)
	}

	ref := deck.ChartRef{Series: id}
	slide := 0
findRef:
	for i, sl := range d.Slides {
		for _, b := range sl.Blocks {
			if b.Chart != nil && b.Chart.Series == id {
				ref = *b.Chart
				slide = i + 1
				break findRef
			}
		}
	}
	if field != "" {
		ref.Fields = []string{field}
	}

	fields, err := d.Bars(ref)
	if err != nil {
		return robotChartOutput{}, fmt.Errorf("chart %s: %w", id, err)
	}

	out := robotChartOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Series:      id,
		Title:       s.Title,
		Slide:       slide,
		Format:      ref.Format,
		Scale:       ref.Scale,
		Fields:      make([]robotField, 0, len(fields)),
	}
	for _, fb := range fields {
		rf := robotField{Field: fb.Field, Bars: make([]robotBar, 0, len(fb.Bars))}
		for _, b := range fb.Bars {
			rf.Bars = append(rf.Bars, robotBar{
				Bar:     b,
				Display: chart.FormatValue(ref.Format, b.Value),
				Percent: chart.Percent(b.Fraction),
			})
		}
		out.Fields = append(out.Fields, rf)
	}
	return out, nil
}

// buildStateOutput reports the navigation state after jumping to slide n
// (1-based).
func buildStateOutput(d *deck.Deck, n int) (robotStateOutput, error) {
	st, err := nav.GoTo(nav.Initialize(d.Len()), n-1)
	if err != nil {
		return robotStateOutput{}, fmt.Errorf("slide %d: %w", n, err)
	}
	s, _ := d.Slide(st.Index)

	dots := make([]bool, st.Total)
	for i := range dots {
		dots[i] = nav.IsActive(st, i)
	}
	return robotStateOutput{
		State:       st,
		Slide:       st.Index + 1,
		Counter:     nav.Counter(st),
		HasPrevious: nav.HasPrevious(st),
		HasNext:     nav.HasNext(st),
		ID:          s.ID,
		Indicator:   s.Indicator,
		Title:       deck.StripEmphasis(s.Title),
		Dots:        dots,
	}, nil
}

// buildMetricsOutput renders every slide once at the fallback size so the
// timings cover chart normalization and slide rendering.
func buildMetricsOutput(d *deck.Deck) robotMetricsOutput {
	for i := 0; i < d.Len(); i++ {
		_, _ = ui.RenderSlide(d, i, defaultRenderWidth, defaultRenderHeight, ui.Options{})
	}
	return robotMetricsOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Enabled:     metrics.Enabled(),
		Timings:     metrics.AllTimingStats(),
	}
}
