package export

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/deckwork/pkg/testutil"
)

func exportArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out", SQLiteFile)
	if err := NewSQLiteExporter(defaultDeck(t)).Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	return path
}

func openArchive(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func queryInt(t *testing.T, db *sql.DB, q string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(q, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", q, err)
	}
	return n
}

func TestSQLiteExport_SlidesAndBars(t *testing.T) {
	db := openArchive(t, exportArchive(t))

	if n := queryInt(t, db, `SELECT COUNT(*) FROM slides`); n != 11 {
		t.Errorf("slides = %d, want 11", n)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM charts`); n != 2 {
		t.Errorf("charts = %d, want 2", n)
	}
	// funding: 5 rounds, revenue: 2 years x 2 fields
	if n := queryInt(t, db, `SELECT COUNT(*) FROM chart_bars`); n != 9 {
		t.Errorf("chart_bars = %d, want 9", n)
	}
	if n := queryInt(t, db, `SELECT COUNT(*) FROM blocks WHERE kind = 'chart'`); n != 2 {
		t.Errorf("chart blocks = %d, want 2", n)
	}

	var id, layout, title string
	if err := db.QueryRow(`SELECT id, layout, title FROM slides WHERE idx = 0`).Scan(&id, &layout, &title); err != nil {
		t.Fatalf("first slide: %v", err)
	}
	if id != "landing" || layout != "hero" || title != "PIXXEL" {
		t.Errorf("first slide = %s %s %s", id, layout, title)
	}

	var action sql.NullString
	if err := db.QueryRow(`SELECT action FROM slides WHERE idx = 0`).Scan(&action); err != nil {
		t.Fatalf("action: %v", err)
	}
	if !action.Valid || action.String != "Launch Mission" {
		t.Errorf("action = %+v", action)
	}
}

func TestSQLiteExport_FractionsMatchSlides(t *testing.T) {
	db := openArchive(t, exportArchive(t))

	var frac float64
	if err := db.QueryRow(`SELECT fraction FROM chart_bars WHERE chart_id = 'funding' AND label = '2023'`).Scan(&frac); err != nil {
		t.Fatalf("funding max: %v", err)
	}
	if frac != 1 {
		t.Errorf("largest funding round fraction = %v, want 1", frac)
	}

	// revenue is drawn against a fixed axis of 30
	if err := db.QueryRow(`SELECT fraction FROM chart_bars WHERE chart_id = 'revenue' AND field = 'revenue' AND label = 'FY24'`).Scan(&frac); err != nil {
		t.Fatalf("revenue FY24: %v", err)
	}
	if math.Abs(frac-28.7/30) > 1e-9 {
		t.Errorf("FY24 revenue fraction = %v, want %v", frac, 28.7/30)
	}
}

func TestSQLiteExport_Meta(t *testing.T) {
	db := openArchive(t, exportArchive(t))

	meta := make(map[string]string)
	rows, err := db.Query(`SELECT key, value FROM deck_meta`)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			t.Fatal(err)
		}
		meta[k] = v
	}

	if meta["slide_count"] != "11" || meta["chart_count"] != "2" || meta["title"] != "Pixxel Space" {
		t.Errorf("meta = %v", meta)
	}
	if len(meta["data_hash"]) != 16 {
		t.Errorf("data_hash = %q", meta["data_hash"])
	}
	if meta["schema_version"] != "1" {
		t.Errorf("schema_version = %q", meta["schema_version"])
	}
}

func TestSQLiteExport_FullTextSearch(t *testing.T) {
	path := exportArchive(t)

	hits, err := SearchArchive(path, "hyperspectral")
	if err != nil {
		t.Fatalf("SearchArchive: %v", err)
	}
	found := false
	for _, h := range hits {
		if h.ID == "technology" {
			found = true
			if h.Index != 3 {
				t.Errorf("technology index = %d, want 3", h.Index)
			}
		}
	}
	if !found {
		t.Errorf("hyperspectral search missed the technology slide: %+v", hits)
	}

	hits, err = SearchArchive(path, "zzzunmatched")
	if err != nil {
		t.Fatalf("SearchArchive: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("unexpected hits %+v", hits)
	}
}

func TestSQLiteExport_ReplacesExisting(t *testing.T) {
	path := exportArchive(t)
	if err := NewSQLiteExporter(testutil.QuickDeck()).Export(path); err != nil {
		t.Fatalf("second export: %v", err)
	}
	db := openArchive(t, path)
	var title string
	if err := db.QueryRow(`SELECT value FROM deck_meta WHERE key = 'title'`).Scan(&title); err != nil {
		t.Fatal(err)
	}
	if title != "Test Deck" {
		t.Errorf("title = %q, archive was not replaced", title)
	}
}

func TestSQLiteExport_NoDeck(t *testing.T) {
	e := &SQLiteExporter{Config: DefaultSQLiteExportConfig()}
	if err := e.Export(filepath.Join(t.TempDir(), "x.sqlite3")); err == nil {
		t.Fatal("expected error without deck")
	}
}

func TestFlattenSlides(t *testing.T) {
	slides := FlattenSlides(defaultDeck(t))
	if len(slides) != 11 {
		t.Fatalf("got %d slides", len(slides))
	}
	for _, s := range slides {
		if s.Layout == "" {
			t.Errorf("slide %s has no layout", s.ID)
		}
		testutil.AssertNotContains(t, s.Body, "**")
	}
	if slides[4].Indicator != "Funding" {
		t.Errorf("slide 5 indicator = %q", slides[4].Indicator)
	}
}

func TestDataHash(t *testing.T) {
	a := defaultDeck(t)
	b := defaultDeck(t)
	if DataHash(a) != DataHash(b) {
		t.Error("hash should be stable for equal decks")
	}
	b.Title = "Other"
	if DataHash(a) == DataHash(b) {
		t.Error("hash should change with content")
	}
}
