// Package export writes a deck out of the terminal: a markdown handout,
// chart images (SVG via svgo, PNG via gg), a searchable SQLite archive and
// a JSON manifest tying them together.
//
// This file implements the SQLite schema for the deck archive.
package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createChartTables(db); err != nil {
		return fmt.Errorf("create chart tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the slides and blocks tables.
func createCoreTables(db *sql.DB) error {
	// idx is the 0-based slide position and doubles as the rowid for FTS
	slidesSQL := `
		CREATE TABLE IF NOT EXISTS slides (
			idx INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			indicator TEXT,
			layout TEXT NOT NULL,
			title TEXT NOT NULL,
			subtitle TEXT,
			body TEXT NOT NULL,
			action TEXT
		)
	`
	if _, err := db.Exec(slidesSQL); err != nil {
		return fmt.Errorf("create slides table: %w", err)
	}

	blocksSQL := `
		CREATE TABLE IF NOT EXISTS blocks (
			slide_idx INTEGER NOT NULL,
			pos INTEGER NOT NULL,
			kind TEXT NOT NULL,
			title TEXT,
			chart_id TEXT,
			PRIMARY KEY (slide_idx, pos),
			FOREIGN KEY (slide_idx) REFERENCES slides(idx)
		)
	`
	if _, err := db.Exec(blocksSQL); err != nil {
		return fmt.Errorf("create blocks table: %w", err)
	}

	return nil
}

// createChartTables creates the series and normalized bar tables.
func createChartTables(db *sql.DB) error {
	chartsSQL := `
		CREATE TABLE IF NOT EXISTS charts (
			id TEXT PRIMARY KEY,
			title TEXT,
			record_count INTEGER NOT NULL
		)
	`
	if _, err := db.Exec(chartsSQL); err != nil {
		return fmt.Errorf("create charts table: %w", err)
	}

	barsSQL := `
		CREATE TABLE IF NOT EXISTS chart_bars (
			chart_id TEXT NOT NULL,
			field TEXT NOT NULL,
			pos INTEGER NOT NULL,
			label TEXT NOT NULL,
			note TEXT,
			value REAL NOT NULL,
			fraction REAL NOT NULL,
			PRIMARY KEY (chart_id, field, pos),
			FOREIGN KEY (chart_id) REFERENCES charts(id)
		)
	`
	if _, err := db.Exec(barsSQL); err != nil {
		return fmt.Errorf("create chart_bars table: %w", err)
	}

	return nil
}

// createIndexes creates indexes for common queries.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_blocks_kind ON blocks(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_chart ON blocks(chart_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_value ON chart_bars(chart_id, value DESC)`,
	}

	for _, sql := range indexes {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS deck_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create deck_meta table: %w", err)
	}

	return nil
}

// CreateFTSIndex creates the FTS5 full-text index over slide text.
// This must be called after slides are inserted.
func CreateFTSIndex(db *sql.DB) error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS slides_fts USING fts5(
			title,
			subtitle,
			body,
			content='slides',
			content_rowid='idx',
			tokenize='porter unicode61'
		)
	`
	if _, err := db.Exec(ftsSQL); err != nil {
		return fmt.Errorf("create FTS5 table: %w", err)
	}

	populateSQL := `
		INSERT INTO slides_fts(slides_fts) VALUES('rebuild')
	`
	if _, err := db.Exec(populateSQL); err != nil {
		return fmt.Errorf("populate FTS index: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the archive. Call this as the final step before
// closing the database.
func OptimizeDatabase(db *sql.DB, pageSize int) error {
	if pageSize <= 0 {
		pageSize = 4096
	}

	optimizations := []string{
		// Single file mode (no WAL journal)
		`PRAGMA journal_mode=DELETE`,
		fmt.Sprintf(`PRAGMA page_size=%d`, pageSize),
		`ANALYZE`,
		`PRAGMA optimize`,
	}

	for _, sql := range optimizations {
		if _, err := db.Exec(sql); err != nil {
			// Some pragmas may fail depending on state, continue
			continue
		}
	}

	// Try to optimize FTS index if it exists (may not be available in all SQLite builds)
	_, _ = db.Exec(`INSERT INTO slides_fts(slides_fts) VALUES('optimize')`)

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	sql := `INSERT OR REPLACE INTO deck_meta (key, value) VALUES (?, ?)`
	_, err := db.Exec(sql, key, value)
	return err
}
