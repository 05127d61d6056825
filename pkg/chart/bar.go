package chart

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	barFull  = "█"
	barEmpty = "░"
)

// RenderBar draws a horizontal bar of width cells filled to fraction.
// Any non-zero fraction gets at least one filled cell so tiny values stay visible.
func RenderBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	cell := runewidth.StringWidth(barFull)
	cells := width / cell
	filled := int(math.Round(fraction * float64(cells)))
	if filled == 0 && fraction > 0 {
		filled = 1
	}
	return strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, cells-filled)
}

// FormatValue applies a value format such as "$%vM" or "₹%v Cr".
// The %v verb is replaced by the shortest decimal form of v; a format without
// %v gets the number appended.
func FormatValue(format string, v float64) string {
	num := strconv.FormatFloat(v, 'f', -1, 64)
	if format == "" {
		return num
	}
	if !strings.Contains(format, "%v") {
		return format + num
	}
	return strings.ReplaceAll(format, "%v", num)
}

// Percent renders a fraction as a whole percentage, e.g. "75%".
func Percent(fraction float64) string {
	return strconv.Itoa(int(math.Round(fraction*100))) + "%"
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
