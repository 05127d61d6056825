package export

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/deckwork/pkg/debug"
	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/metrics"
	"github.com/vanderheijden86/deckwork/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a deck into a single-file SQLite archive.
type SQLiteExporter struct {
	Deck   *deck.Deck
	Config SQLiteExportConfig
}

// NewSQLiteExporter creates an exporter with the default configuration.
func NewSQLiteExporter(d *deck.Deck) *SQLiteExporter {
	return &SQLiteExporter{
		Deck:   d,
		Config: DefaultSQLiteExportConfig(),
	}
}

// Export writes the archive to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.Export)()

	if e.Deck == nil {
		return fmt.Errorf("sqlite export: no deck")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if err := e.insertSlides(db); err != nil {
		return fmt.Errorf("insert slides: %w", err)
	}

	if err := e.insertCharts(db); err != nil {
		return fmt.Errorf("insert charts: %w", err)
	}

	if e.Config.FTS {
		if err := CreateFTSIndex(db); err != nil {
			// The archive is still useful without search
			debug.Log("sqlite export: FTS5 not available: %v", err)
		}
	}

	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := OptimizeDatabase(db, e.Config.PageSize); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true

	return nil
}

// FlattenSlides returns the searchable form of every slide.
func FlattenSlides(d *deck.Deck) []ExportSlide {
	out := make([]ExportSlide, 0, d.Len())
	for i, s := range d.Slides {
		layout := s.Layout
		if layout == "" {
			layout = deck.LayoutContent
		}
		es := ExportSlide{
			Index:     i,
			ID:        s.ID,
			Indicator: s.Indicator,
			Layout:    string(layout),
			Title:     deck.StripEmphasis(s.Title),
			Subtitle:  deck.StripEmphasis(s.Subtitle),
			Body:      deck.PlainText(s),
		}
		if s.Action != nil {
			es.Action = s.Action.Label
		}
		out = append(out, es)
	}
	return out
}

func (e *SQLiteExporter) insertSlides(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	slideStmt, err := tx.Prepare(`
		INSERT INTO slides (idx, id, indicator, layout, title, subtitle, body, action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer slideStmt.Close()

	blockStmt, err := tx.Prepare(`
		INSERT INTO blocks (slide_idx, pos, kind, title, chart_id)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer blockStmt.Close()

	for _, s := range FlattenSlides(e.Deck) {
		var action *string
		if s.Action != "" {
			action = &s.Action
		}
		if _, err := slideStmt.Exec(s.Index, s.ID, s.Indicator, s.Layout, s.Title, s.Subtitle, s.Body, action); err != nil {
			return fmt.Errorf("insert slide %s: %w", s.ID, err)
		}
	}

	for i, s := range e.Deck.Slides {
		for pos, b := range s.Blocks {
			var chartID *string
			if b.Chart != nil {
				id := b.Chart.Series
				chartID = &id
			}
			if _, err := blockStmt.Exec(i, pos, string(b.Kind), b.Title, chartID); err != nil {
				return fmt.Errorf("insert block %d of slide %s: %w", pos, s.ID, err)
			}
		}
	}

	return tx.Commit()
}

// insertCharts stores every series with its bars normalized against the
// scale the slides use, so the archive matches what the TUI draws.
func (e *SQLiteExporter) insertCharts(db *sql.DB) error {
	if len(e.Deck.Charts) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	chartStmt, err := tx.Prepare(`
		INSERT INTO charts (id, title, record_count) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer chartStmt.Close()

	barStmt, err := tx.Prepare(`
		INSERT INTO chart_bars (chart_id, field, pos, label, note, value, fraction)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer barStmt.Close()

	scales := chartScales(e.Deck)
	for _, s := range e.Deck.Charts {
		if _, err := chartStmt.Exec(s.ID, s.Title, len(s.Records)); err != nil {
			return fmt.Errorf("insert chart %s: %w", s.ID, err)
		}
		fields, err := e.Deck.Bars(deck.ChartRef{Series: s.ID, Scale: scales[s.ID]})
		if err != nil {
			return fmt.Errorf("normalize chart %s: %w", s.ID, err)
		}
		for _, fb := range fields {
			for pos, b := range fb.Bars {
				if _, err := barStmt.Exec(s.ID, fb.Field, pos, b.Label, b.Note, b.Value, b.Fraction); err != nil {
					return fmt.Errorf("insert bar %s/%s/%d: %w", s.ID, fb.Field, pos, err)
				}
			}
		}
	}

	return tx.Commit()
}

// chartScales picks the fixed axis each series is drawn with on its slide.
func chartScales(d *deck.Deck) map[string]float64 {
	scales := make(map[string]float64)
	for _, s := range d.Slides {
		for _, b := range s.Blocks {
			if b.Chart != nil && b.Chart.Scale > 0 {
				if _, seen := scales[b.Chart.Series]; !seen {
					scales[b.Chart.Series] = b.Chart.Scale
				}
			}
		}
	}
	return scales
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	meta := BuildMeta(e.Deck)
	values := map[string]string{
		"version":        meta.Version,
		"generated_at":   meta.GeneratedAt.Format(time.RFC3339),
		"title":          meta.Title,
		"slide_count":    strconv.Itoa(meta.SlideCount),
		"chart_count":    strconv.Itoa(meta.ChartCount),
		"data_hash":      meta.DataHash,
		"schema_version": strconv.Itoa(SchemaVersion),
	}
	if meta.Source != "" {
		values["source"] = meta.Source
	}
	for k, v := range values {
		if err := InsertMetaValue(db, k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}
	return nil
}

// BuildMeta describes an export of d.
func BuildMeta(d *deck.Deck) ExportMeta {
	return ExportMeta{
		Version:     version.Version,
		GeneratedAt: time.Now().UTC(),
		Title:       d.Title,
		SlideCount:  d.Len(),
		ChartCount:  len(d.Charts),
		DataHash:    DataHash(d),
		Source:      d.Source,
	}
}

// DataHash is a content hash of the deck, stable across exports of the same
// content.
func DataHash(d *deck.Deck) string {
	data, err := json.Marshal(struct {
		Title  string      `json:"title"`
		Accent string      `json:"accent"`
		Charts interface{} `json:"charts"`
		Slides interface{} `json:"slides"`
	}{d.Title, d.Accent, d.Charts, d.Slides})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// SearchArchive runs a full-text query against an exported archive.
func SearchArchive(path, query string) ([]SearchHit, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT s.idx, s.id, s.title
		FROM slides_fts f JOIN slides s ON s.idx = f.rowid
		WHERE slides_fts MATCH ?
		ORDER BY rank
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.Index, &h.ID, &h.Title); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
