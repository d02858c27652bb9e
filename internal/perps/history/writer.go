package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"perpstracker/pkg/coingecko"
	"perpstracker/pkg/jsonstore"
)

// DefaultMaxFileSize is the rotation threshold for per-exchange data files.
const DefaultMaxFileSize = 3 * 1024 * 1024

// Row is one persisted ticker observation.
type Row struct {
	Symbol       string  `json:"symbol"`
	OpenInterest float64 `json:"open_interest"`
	Volume24h    float64 `json:"volume_24h"`
	Date         int64   `json:"date"` // Unix seconds
}

// SummaryRow is one entry in the combined daily-volume summary, keyed by
// (date, market).
type SummaryRow struct {
	Date         int64   `json:"date"`
	Market       string  `json:"market"`
	SumVolume24h float64 `json:"sum_volume_24h"`
}

// Writer persists per-exchange ticker history into size-rotated JSON files
// plus a combined daily-volume summary.
type Writer struct {
	root        string
	maxFileSize int64
}

func NewWriter(root string, maxFileSize int64) *Writer {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Writer{root: root, maxFileSize: maxFileSize}
}

// RowsFromTickers converts raw ticker records into history rows stamped with
// date. Numeric coercion already happened at decode time, so null and empty
// upstream fields arrive here as zero.
func RowsFromTickers(tickers []coingecko.DerivativeTicker, date int64) []Row {
	rows := make([]Row, 0, len(tickers))
	for _, t := range tickers {
		rows = append(rows, Row{
			Symbol:       t.Symbol,
			OpenInterest: t.OpenInterest.Float64(),
			Volume24h:    t.Volume24h.Float64(),
			Date:         date,
		})
	}
	return rows
}

// SumVolume totals the 24h volume across tickers.
func SumVolume(tickers []coingecko.DerivativeTicker) float64 {
	var sum float64
	for _, t := range tickers {
		sum += t.Volume24h.Float64()
	}
	return sum
}

// Append writes rows into the active data file for exchange, rotating first
// if the active file has reached the size threshold, and records the file in
// the exchange manifest. It returns the path written to.
func (w *Writer) Append(exchange string, rows []Row) (string, error) {
	base := Sanitize(strings.ToLower(exchange))
	folder := filepath.Join(w.root, base)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("create exchange dir: %w", err)
	}

	path, err := w.activePath(folder, base)
	if err != nil {
		return "", err
	}

	var existing []Row
	if _, err := jsonstore.Load(path, &existing); err != nil {
		return "", err
	}
	existing = append(existing, rows...)
	if err := jsonstore.Save(path, existing); err != nil {
		return "", err
	}

	manifestPath := filepath.Join(folder, "combined_"+base+".json")
	manifest, err := LoadManifest(manifestPath, base)
	if err != nil {
		return "", err
	}
	if manifest.Add(filepath.Base(path)) {
		if err := manifest.Save(manifestPath); err != nil {
			return "", err
		}
	}

	return path, nil
}

// UpsertDailyVolume records the summed 24h volume for (date, exchange) in the
// combined summary, replacing any earlier entry for the same key so reruns on
// the same day do not accumulate duplicates.
func (w *Writer) UpsertDailyVolume(exchange string, sum float64, date int64) error {
	path := w.CombinedSummaryPath()

	var summary []SummaryRow
	if _, err := jsonstore.Load(path, &summary); err != nil {
		return err
	}

	market := Sanitize(exchange)
	updated := false
	for i := range summary {
		if summary[i].Date == date && summary[i].Market == market {
			summary[i].SumVolume24h = sum
			updated = true
			break
		}
	}
	if !updated {
		summary = append(summary, SummaryRow{Date: date, Market: market, SumVolume24h: sum})
	}

	return jsonstore.Save(path, summary)
}

// CombinedSummaryPath returns the location of the daily combined summary.
func (w *Writer) CombinedSummaryPath() string {
	return filepath.Join(w.root, "combined", "daily_combined.json")
}

// activePath finds the data file to append into: the highest-suffixed file
// for this exchange, advanced by one once it reaches the size threshold.
func (w *Writer) activePath(folder, base string) (string, error) {
	suffix, err := latestSuffix(folder, base)
	if err != nil {
		return "", err
	}

	path := rotatedPath(folder, base, suffix)
	size, err := jsonstore.FileSize(path)
	if err != nil {
		return "", err
	}
	if size >= w.maxFileSize {
		path = rotatedPath(folder, base, suffix+1)
	}
	return path, nil
}

// latestSuffix scans folder for base_NNNNN.json files and returns the highest
// suffix, or 1 when none exist yet.
func latestSuffix(folder, base string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, fmt.Errorf("read dir %s: %w", folder, err)
	}

	latest := 0
	prefix := base + "_"
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
		if err != nil {
			continue
		}
		if n > latest {
			latest = n
		}
	}
	if latest == 0 {
		latest = 1
	}
	return latest, nil
}

func rotatedPath(folder, base string, suffix int) string {
	return filepath.Join(folder, fmt.Sprintf("%s_%05d.json", base, suffix))
}

// Sanitize makes an exchange name safe for use in file and directory names.
func Sanitize(name string) string {
	r := strings.NewReplacer(" ", "_", "(", "_", ")", "_", "-", "_")
	return r.Replace(name)
}
