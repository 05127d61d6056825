package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vanderheijden86/deckwork/pkg/deck"
)

// MermaidConfig configures Mermaid chart generation.
type MermaidConfig struct {
	Title  string  // Chart title; omitted when empty
	YLabel string  // y-axis label
	Scale  float64 // Fixed y-axis maximum; 0 uses the largest value
}

// GenerateMermaidChart renders normalized chart fields as a Mermaid
// xychart-beta block body. Every field becomes one bar line over the same
// x-axis, so grouped series (revenue and loss) share categories.
func GenerateMermaidChart(fields []deck.FieldBars, config MermaidConfig) string {
	var sb strings.Builder

	sb.WriteString("xychart-beta\n")
	if config.Title != "" {
		sb.WriteString(fmt.Sprintf("    title \"%s\"\n", sanitizeMermaidText(config.Title)))
	}
	if len(fields) == 0 || len(fields[0].Bars) == 0 {
		return sb.String()
	}

	labels := make([]string, len(fields[0].Bars))
	for i, b := range fields[0].Bars {
		labels[i] = "\"" + sanitizeMermaidText(b.Label) + "\""
	}
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))

	top := config.Scale
	if top <= 0 {
		for _, fb := range fields {
			for _, b := range fb.Bars {
				top = math.Max(top, b.Value)
			}
		}
	}
	yLabel := config.YLabel
	if yLabel == "" {
		yLabel = "Value"
	}
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %s\n", sanitizeMermaidText(yLabel), mermaidNumber(top)))

	for _, fb := range fields {
		values := make([]string, len(fb.Bars))
		for i, b := range fb.Bars {
			values[i] = mermaidNumber(b.Value)
		}
		sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	}

	return sb.String()
}

func mermaidNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
