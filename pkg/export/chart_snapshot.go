package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/deckwork/pkg/chart"
	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/metrics"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// ChartSnapshotOptions controls chart snapshot export.
type ChartSnapshotOptions struct {
	Path   string        // Output path; format inferred from extension when Format empty
	Format string        // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Deck   *deck.Deck    // Deck holding the series
	Ref    deck.ChartRef // Which series and fields to draw
	Title  string        // Optional; defaults to the series title
}

// SaveChartSnapshot renders one deck chart as a static SVG or PNG image with
// the same bars, labels and value formats the terminal shows.
func SaveChartSnapshot(opts ChartSnapshotOptions) error {
	defer metrics.Timer(metrics.Export)()

	if opts.Deck == nil {
		return fmt.Errorf("deck is required for chart export")
	}
	format, path, err := snapshotFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	opts.Path = path

	layout, err := buildSnapshotLayout(opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	switch format {
	case "svg":
		return renderSnapshotSVG(opts.Path, layout)
	case "png":
		return renderSnapshotPNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

func snapshotFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if path != "" && filepath.Ext(path) == "" {
				path = path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// ChartFile names one exported chart image.
type ChartFile struct {
	Slide  int    `json:"slide"` // 1-based
	Series string `json:"series"`
	Path   string `json:"path"`
}

// SaveDeckCharts writes every chart block of d into dir as format images,
// named after the slide and series, e.g. 05-funding-funding.svg.
func SaveDeckCharts(d *deck.Deck, dir, format string) ([]ChartFile, error) {
	var files []ChartFile
	for i, s := range d.Slides {
		for _, b := range s.Blocks {
			if b.Kind != deck.KindChart || b.Chart == nil {
				continue
			}
			name := fmt.Sprintf("%02d-%s-%s.%s", i+1, s.ID, b.Chart.Series, format)
			path := filepath.Join(dir, name)
			err := SaveChartSnapshot(ChartSnapshotOptions{
				Path:   path,
				Format: format,
				Deck:   d,
				Ref:    *b.Chart,
				Title:  b.Title,
			})
			if err != nil {
				return files, fmt.Errorf("slide %d chart %s: %w", i+1, b.Chart.Series, err)
			}
			files = append(files, ChartFile{Slide: i + 1, Series: b.Chart.Series, Path: path})
		}
	}
	return files, nil
}

// --- layout computation ----------------------------------------------------

type snapshotBar struct {
	Field    string
	Text     string // formatted value
	Fraction float64
	Series   int
	Y        float64
}

type snapshotRow struct {
	Label string
	Note  string
	Y     float64
	Bars  []snapshotBar
}

type snapshotLayout struct {
	Title    string
	Subtitle string
	Width    int
	Height   int
	Header   float64
	TrackX   float64
	TrackW   float64
	BarH     float64
	Rows     []snapshotRow
	Fields   []string
	LegendY  float64
	Accent   color.RGBA
}

func buildSnapshotLayout(opts ChartSnapshotOptions) (snapshotLayout, error) {
	const (
		width   = 760
		padding = 32.0
		header  = 88.0
		labelW  = 150.0
		valueW  = 110.0
		barH    = 18.0
		barGap  = 6.0
		rowGap  = 16.0
		noteH   = 34.0
		legendH = 28.0
	)

	fields, err := opts.Deck.Bars(opts.Ref)
	if err != nil {
		return snapshotLayout{}, err
	}
	if len(fields) == 0 {
		return snapshotLayout{}, fmt.Errorf("chart %s: %w", opts.Ref.Series, chart.ErrEmptySeries)
	}
	series, _ := opts.Deck.Series(opts.Ref.Series)

	title := opts.Title
	if title == "" {
		title = series.Title
	}
	if title == "" {
		title = series.ID
	}

	l := snapshotLayout{
		Title:    title,
		Subtitle: opts.Deck.Title,
		Width:    width,
		Header:   header,
		TrackX:   padding + labelW,
		TrackW:   width - padding - labelW - valueW - padding,
		BarH:     barH,
		Accent:   colorAccent,
	}
	if c, ok := parseHexColor(opts.Deck.Accent); ok {
		l.Accent = c
	}
	for _, fb := range fields {
		l.Fields = append(l.Fields, fb.Field)
	}

	y := header
	for i := range fields[0].Bars {
		first := fields[0].Bars[i]
		row := snapshotRow{Label: first.Label, Note: first.Note, Y: y}
		by := y
		for fi, fb := range fields {
			bar := fb.Bars[i]
			row.Bars = append(row.Bars, snapshotBar{
				Field:    fb.Field,
				Text:     chart.FormatValue(opts.Ref.Format, bar.Value),
				Fraction: bar.Fraction,
				Series:   fi,
				Y:        by,
			})
			by += barH + barGap
		}
		rowH := by - barGap - y
		if row.Note != "" && rowH < noteH {
			rowH = noteH
		}
		l.Rows = append(l.Rows, row)
		y += rowH + rowGap
	}

	l.LegendY = y
	if len(l.Fields) > 1 {
		y += legendH
	}
	l.Height = int(math.Ceil(y + padding - rowGap))
	return l, nil
}

// --- rendering -------------------------------------------------------------

var (
	colorAccent   = color.RGBA{0x7f, 0x56, 0xd9, 0xff}
	colorLoss     = color.RGBA{0xf0, 0x44, 0x38, 0xff}
	colorGain     = color.RGBA{0x12, 0xb7, 0x6a, 0xff}
	colorTrack    = color.RGBA{0xe4, 0xe7, 0xec, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func (l snapshotLayout) seriesColor(i int) color.RGBA {
	switch i % 3 {
	case 0:
		return l.Accent
	case 1:
		return colorLoss
	default:
		return colorGain
	}
}

func (l snapshotLayout) fillWidth(fraction float64) float64 {
	w := fraction * l.TrackW
	if fraction > 0 && w < 2 {
		w = 2
	}
	return w
}

func renderSnapshotPNG(path string, l snapshotLayout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(l.Width)-32, l.Header-32, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, 32, 38, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(l.Subtitle, 32, 58, 0, 0.5)

	for _, row := range l.Rows {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(row.Label, 32, row.Y+l.BarH/2, 0, 0.5)
		if row.Note != "" {
			dc.SetColor(colorSubtle)
			dc.DrawStringAnchored(row.Note, 32, row.Y+l.BarH/2+16, 0, 0.5)
		}
		for _, bar := range row.Bars {
			dc.SetColor(colorTrack)
			dc.DrawRoundedRectangle(l.TrackX, bar.Y, l.TrackW, l.BarH, 4)
			dc.Fill()
			if w := l.fillWidth(bar.Fraction); w > 0 {
				dc.SetColor(l.seriesColor(bar.Series))
				dc.DrawRoundedRectangle(l.TrackX, bar.Y, w, l.BarH, 4)
				dc.Fill()
			}
			dc.SetColor(colorText)
			dc.DrawStringAnchored(bar.Text, l.TrackX+l.TrackW+8, bar.Y+l.BarH/2, 0, 0.5)
		}
	}

	if len(l.Fields) > 1 {
		x := l.TrackX
		for i, f := range l.Fields {
			dc.SetColor(l.seriesColor(i))
			dc.DrawRoundedRectangle(x, l.LegendY, 14, 14, 3)
			dc.Fill()
			dc.SetColor(colorSubtle)
			dc.DrawStringAnchored(f, x+20, l.LegendY+7, 0, 0.5)
			x += 120
		}
	}

	return dc.SavePNG(path)
}

func renderSnapshotSVG(path string, l snapshotLayout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSnapshotSVGToWriter(file, l)
}

func renderSnapshotSVGToWriter(w io.Writer, l snapshotLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, l.Width-32, int(l.Header-32), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(32, 42, l.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 62, l.Subtitle, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	trackX, trackW, barH := int(l.TrackX), int(l.TrackW), int(l.BarH)
	for _, row := range l.Rows {
		y := int(row.Y)
		canvas.Text(32, y+barH-5, row.Label, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		if row.Note != "" {
			canvas.Text(32, y+barH+11, row.Note, fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
		}
		for _, bar := range row.Bars {
			by := int(bar.Y)
			canvas.Roundrect(trackX, by, trackW, barH, 4, 4, fmt.Sprintf("fill:%s", css(colorTrack)))
			if fw := int(math.Round(l.fillWidth(bar.Fraction))); fw > 0 {
				canvas.Roundrect(trackX, by, fw, barH, 4, 4, fmt.Sprintf("fill:%s", css(l.seriesColor(bar.Series))))
			}
			canvas.Text(trackX+trackW+8, by+barH-5, bar.Text, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
		}
	}

	if len(l.Fields) > 1 {
		x, y := trackX, int(l.LegendY)
		for i, f := range l.Fields {
			canvas.Roundrect(x, y, 14, 14, 3, 3, fmt.Sprintf("fill:%s", css(l.seriesColor(i))))
			canvas.Text(x+20, y+11, f, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
			x += 120
		}
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseHexColor parses "#RRGGBB".
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
