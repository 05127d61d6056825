package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/deckwork/pkg/debug"
	"github.com/vanderheijden86/deckwork/pkg/deck"
)

// Export formats accepted by ExportAll and the wizard.
const (
	FormatMarkdown = "md"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatSQLite   = "sqlite"
	FormatJSON     = "json"
)

// File names inside an export directory.
const (
	MarkdownFile = "deck.md"
	SQLiteFile   = "deck.sqlite3"
	DeckJSONFile = "deck.json"
	ManifestName = "manifest.json"
	ChartsDir    = "charts"
)

// AllFormats lists every format in manifest order.
func AllFormats() []string {
	return []string{FormatMarkdown, FormatSVG, FormatPNG, FormatSQLite, FormatJSON}
}

// NormalizeFormats lowercases, dedupes and validates a format list.
// "all" expands to every format. An empty list is an error.
func NormalizeFormats(formats []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	valid := make(map[string]bool)
	for _, f := range AllFormats() {
		valid[f] = true
	}

	for _, raw := range formats {
		for _, f := range strings.Split(raw, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			switch {
			case f == "":
			case f == "all":
				for _, a := range AllFormats() {
					add(a)
				}
			case f == "markdown":
				add(FormatMarkdown)
			case f == "sqlite3" || f == "db":
				add(FormatSQLite)
			case valid[f]:
				add(f)
			default:
				return nil, fmt.Errorf("unknown export format %q (want %s)", f, strings.Join(AllFormats(), ", "))
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no export formats selected")
	}
	return out, nil
}

// Manifest describes one export run.
type Manifest struct {
	ExportMeta
	Formats []string       `json:"formats"`
	Files   []ManifestFile `json:"files"`
}

// ManifestFile is one artefact of an export, relative to the export dir.
type ManifestFile struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Slide  int    `json:"slide,omitempty"`
	Series string `json:"series,omitempty"`
}

// ExportAll writes every requested format into dir concurrently and finishes
// with manifest.json. The first failure cancels the remaining work.
func ExportAll(ctx context.Context, d *deck.Deck, dir string, formats []string) (*Manifest, error) {
	if d == nil {
		return nil, fmt.Errorf("export: no deck")
	}
	formats, err := NormalizeFormats(formats)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var (
		mu    sync.Mutex
		files []ManifestFile
	)
	record := func(f ...ManifestFile) {
		mu.Lock()
		files = append(files, f...)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		format := format
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			done := debug.LogEnterExit("export " + format)
			defer done()

			switch format {
			case FormatMarkdown:
				if err := SaveMarkdownToFile(d, filepath.Join(dir, MarkdownFile)); err != nil {
					return fmt.Errorf("markdown: %w", err)
				}
				record(ManifestFile{Format: format, Path: MarkdownFile})

			case FormatSVG, FormatPNG:
				charts, err := SaveDeckCharts(d, filepath.Join(dir, ChartsDir), format)
				if err != nil {
					return fmt.Errorf("%s charts: %w", format, err)
				}
				for _, c := range charts {
					rel, err := filepath.Rel(dir, c.Path)
					if err != nil {
						rel = c.Path
					}
					record(ManifestFile{Format: format, Path: filepath.ToSlash(rel), Slide: c.Slide, Series: c.Series})
				}

			case FormatSQLite:
				if err := NewSQLiteExporter(d).Export(filepath.Join(dir, SQLiteFile)); err != nil {
					return fmt.Errorf("sqlite: %w", err)
				}
				record(ManifestFile{Format: format, Path: SQLiteFile})

			case FormatJSON:
				if err := writeJSON(filepath.Join(dir, DeckJSONFile), d); err != nil {
					return fmt.Errorf("deck json: %w", err)
				}
				record(ManifestFile{Format: format, Path: DeckJSONFile})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Format != files[j].Format {
			return formatRank(files[i].Format) < formatRank(files[j].Format)
		}
		return files[i].Path < files[j].Path
	})

	m := &Manifest{
		ExportMeta: BuildMeta(d),
		Formats:    formats,
		Files:      files,
	}
	if err := writeJSON(filepath.Join(dir, ManifestName), m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return m, nil
}

func formatRank(f string) int {
	for i, a := range AllFormats() {
		if a == f {
			return i
		}
	}
	return len(AllFormats())
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
