package export

import (
	"time"
)

// ExportSlide is one slide flattened for export and search.
type ExportSlide struct {
	Index     int    `json:"index"` // 0-based
	ID        string `json:"id"`
	Indicator string `json:"indicator,omitempty"`
	Layout    string `json:"layout"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Body      string `json:"body"`
	Action    string `json:"action,omitempty"`
}

// ExportMeta contains metadata about the export.
type ExportMeta struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Title       string    `json:"title"`
	SlideCount  int       `json:"slide_count"`
	ChartCount  int       `json:"chart_count"`
	DataHash    string    `json:"data_hash,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// SQLiteExportConfig configures the SQLite export process.
type SQLiteExportConfig struct {
	// PageSize is the SQLite page size
	PageSize int

	// FTS builds the slides_fts full-text index
	FTS bool
}

// DefaultSQLiteExportConfig returns sensible defaults for export configuration.
func DefaultSQLiteExportConfig() SQLiteExportConfig {
	return SQLiteExportConfig{
		PageSize: 4096,
		FTS:      true,
	}
}

// SearchHit is one full-text match in an exported archive.
type SearchHit struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
}
