// Package chart turns static chart series into bar data.
//
// A Series is an ordered list of records keyed by category label. Normalize
// sizes every record against the largest value of one field so the renderer
// only has to multiply by the available width. Input order is kept as is:
// funding rounds are chronological, revenue rows are fiscal years.
package chart

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/deckwork/pkg/metrics"

	"gonum.org/v1/gonum/floats"
)

// Errors returned by Normalize and NormalizeToScale.
var (
	ErrEmptySeries   = errors.New("chart series is empty")
	ErrMissingField  = errors.New("chart record is missing field")
	ErrNegativeValue = errors.New("chart value is negative")
	ErrZeroMax       = errors.New("chart maximum is zero")
)

// Record is one category of a series.
type Record struct {
	Label  string             `yaml:"label" json:"label"`
	Note   string             `yaml:"note,omitempty" json:"note,omitempty"`
	Values map[string]float64 `yaml:"values" json:"values"`
}

// Series is an ordered, immutable set of records.
type Series struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title,omitempty" json:"title,omitempty"`
	Records []Record `yaml:"records" json:"records"`
}

// Bar is the per-render view datum for one record.
// Fraction is Value relative to the series maximum (or fixed scale), in [0, 1].
type Bar struct {
	Label    string  `json:"label"`
	Note     string  `json:"note,omitempty"`
	Value    float64 `json:"value"`
	Fraction float64 `json:"fraction"`
}

// Normalize computes bars for field, sized against the series maximum.
// The largest record gets Fraction 1.0. No rounding is applied.
func Normalize(s Series, field string) ([]Bar, error) {
	defer metrics.Timer(metrics.ChartNormalize)()

	values, err := column(s, field)
	if err != nil {
		return nil, err
	}

	peak := floats.Max(values)
	if peak == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrZeroMax, s.ID, field)
	}

	bars := make([]Bar, len(values))
	for i, v := range values {
		bars[i] = Bar{
			Label:    s.Records[i].Label,
			Note:     s.Records[i].Note,
			Value:    v,
			Fraction: v / peak,
		}
	}
	return bars, nil
}

// NormalizeToScale sizes bars against a fixed axis instead of the series
// maximum, so two fields of the same series can share one visual scale.
// Values above scale are capped at 1.0. A scale <= 0 means "use the maximum".
func NormalizeToScale(s Series, field string, scale float64) ([]Bar, error) {
	if scale <= 0 {
		return Normalize(s, field)
	}
	defer metrics.Timer(metrics.ChartNormalize)()

	values, err := column(s, field)
	if err != nil {
		return nil, err
	}

	bars := make([]Bar, len(values))
	for i, v := range values {
		f := v / scale
		if f > 1 {
			f = 1
		}
		bars[i] = Bar{
			Label:    s.Records[i].Label,
			Note:     s.Records[i].Note,
			Value:    v,
			Fraction: f,
		}
	}
	return bars, nil
}

// Fields lists the numeric fields present in the series, in the order they
// are first seen. Map iteration is unordered, so records are scanned with a
// sorted key list per record.
func Fields(s Series) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.Records {
		for _, k := range sortedKeys(r.Values) {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// column extracts field from every record, enforcing the preconditions.
func column(s Series, field string) ([]float64, error) {
	if len(s.Records) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySeries, s.ID)
	}
	values := make([]float64, len(s.Records))
	for i, r := range s.Records {
		v, ok := r.Values[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no %q", ErrMissingField, r.Label, field)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %q %s=%v", ErrNegativeValue, r.Label, field, v)
		}
		values[i] = v
	}
	return values, nil
}
