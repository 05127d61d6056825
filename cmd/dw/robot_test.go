package main

import (
	"bytes"
	"errors"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/nav"
)

func mustDefault(t *testing.T) *deck.Deck {
	t.Helper()
	d, err := deck.Default()
	if err != nil {
		t.Fatalf("Default deck: %v", err)
	}
	return d
}

func TestBuildOutline(t *testing.T) {
	out := buildOutline(mustDefault(t))
	if out.SlideCount != 11 || len(out.Slides) != 11 {
		t.Fatalf("slides = %d/%d", out.SlideCount, len(out.Slides))
	}
	if out.Slides[0].Slide != 1 || out.Slides[0].Layout != "hero" || out.Slides[0].Action != "Launch Mission" {
		t.Errorf("first slide = %+v", out.Slides[0])
	}
	funding := out.Slides[4]
	if funding.Indicator != "Funding" || len(funding.Charts) != 1 || funding.Charts[0] != "funding" {
		t.Errorf("funding slide = %+v", funding)
	}
	if len(out.Series) != 2 || out.DataHash == "" {
		t.Errorf("outline = %+v", out)
	}
}

func TestBuildChartOutput_Funding(t *testing.T) {
	out, err := buildChartOutput(mustDefault(t), "funding", "")
	if err != nil {
		t.Fatalf("buildChartOutput: %v", err)
	}
	if out.Slide != 5 || out.Format != "$%vM" || len(out.Fields) != 1 {
		t.Fatalf("output = %+v", out)
	}
	bars := out.Fields[0].Bars
	want := []float64{0.019, 0.139, 0.75, 1.0, 0.667}
	if len(bars) != len(want) {
		t.Fatalf("got %d bars", len(bars))
	}
	for i, w := range want {
		if d := bars[i].Fraction - w; d > 0.001 || d < -0.001 {
			t.Errorf("bar %d fraction = %.3f, want %.3f", i, bars[i].Fraction, w)
		}
	}
	if bars[3].Display != "$36M" || bars[3].Percent != "100%" {
		t.Errorf("max bar = %+v", bars[3])
	}
}

func TestBuildChartOutput_FieldAndScale(t *testing.T) {
	out, err := buildChartOutput(mustDefault(t), "revenue", "loss")
	if err != nil {
		t.Fatalf("buildChartOutput: %v", err)
	}
	if out.Scale != 30 || len(out.Fields) != 1 || out.Fields[0].Field != "loss" {
		t.Fatalf("output = %+v", out)
	}
	if got := out.Fields[0].Bars[1].Display; got != "₹20.4 Cr" {
		t.Errorf("FY24 loss display = %q", got)
	}
}

func TestBuildChartOutput_Errors(t *testing.T) {
	d := mustDefault(t)
	if _, err := buildChartOutput(d, "nope", ""); err == nil {
		t.Error("expected error for unknown series")
	}
	if _, err := buildChartOutput(d, "funding", "missing"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestBuildStateOutput(t *testing.T) {
	d := mustDefault(t)

	out, err := buildStateOutput(d, 1)
	if err != nil {
		t.Fatalf("buildStateOutput: %v", err)
	}
	if out.Index != 0 || out.Counter != "1 / 11" || out.HasPrevious || !out.HasNext {
		t.Errorf("first = %+v", out)
	}

	out, err = buildStateOutput(d, 11)
	if err != nil {
		t.Fatalf("buildStateOutput: %v", err)
	}
	if out.Counter != "11 / 11" || !out.HasPrevious || out.HasNext || !out.Dots[10] || out.Dots[0] {
		t.Errorf("last = %+v", out)
	}

	if _, err := buildStateOutput(d, 12); !errors.Is(err, nav.ErrOutOfRange) {
		t.Errorf("out of range err = %v", err)
	}
}

func TestBuildMetricsOutput(t *testing.T) {
	out := buildMetricsOutput(mustDefault(t))
	if !out.Enabled {
		t.Skip("metrics disabled via DW_METRICS")
	}
	found := false
	for _, s := range out.Timings {
		if s.Name == "slide_render" && s.Count >= 11 {
			found = true
		}
	}
	if !found {
		t.Errorf("slide_render timing missing: %+v", out.Timings)
	}
}

func TestWriteRobotJSON(t *testing.T) {
	out, err := buildStateOutput(mustDefault(t), 5)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writeRobotJSON(&buf, out); err != nil {
		t.Fatalf("writeRobotJSON: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back["index"] != float64(4) || back["slide"] != float64(5) || back["indicator"] != "Funding" {
		t.Errorf("json = %v", back)
	}
}
