package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpstracker/pkg/coingecko"
	"perpstracker/pkg/jsonstore"
)

func TestAppendCreatesFirstFile(t *testing.T) {
	w := NewWriter(t.TempDir(), 0)

	rows := []Row{{Symbol: "BTCUSDT", OpenInterest: 100, Volume24h: 200, Date: 1000}}
	path, err := w.Append("Binance (Futures)", rows)
	require.NoError(t, err)
	assert.Equal(t, "binance__futures__00001.json", filepath.Base(path))

	var stored []Row
	found, err := jsonstore.Load(path, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, rows, stored)
}

func TestAppendAccumulatesAcrossRuns(t *testing.T) {
	w := NewWriter(t.TempDir(), 0)

	_, err := w.Append("Bybit", []Row{{Symbol: "BTCUSDT", Date: 1}})
	require.NoError(t, err)
	path, err := w.Append("Bybit", []Row{{Symbol: "ETHUSDT", Date: 2}})
	require.NoError(t, err)

	var stored []Row
	_, err = jsonstore.Load(path, &stored)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "BTCUSDT", stored[0].Symbol)
	assert.Equal(t, "ETHUSDT", stored[1].Symbol)
}

func TestAppendRotatesAtThreshold(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, 200) // tiny threshold to force rotation

	big := make([]Row, 10)
	for i := range big {
		big[i] = Row{Symbol: "BTCUSDT", OpenInterest: 1, Volume24h: 2, Date: int64(i)}
	}
	first, err := w.Append("okx", big)
	require.NoError(t, err)
	assert.Equal(t, "okx_00001.json", filepath.Base(first))

	second, err := w.Append("okx", []Row{{Symbol: "ETHUSDT", Date: 99}})
	require.NoError(t, err)
	assert.Equal(t, "okx_00002.json", filepath.Base(second))

	// the rotated-out file is left untouched
	var old []Row
	_, err = jsonstore.Load(first, &old)
	require.NoError(t, err)
	assert.Len(t, old, 10)

	var fresh []Row
	_, err = jsonstore.Load(second, &fresh)
	require.NoError(t, err)
	assert.Len(t, fresh, 1)
}

func TestManifestTracksRotatedFiles(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, 200)

	big := make([]Row, 10)
	for i := range big {
		big[i] = Row{Symbol: "BTCUSDT", Date: int64(i)}
	}
	_, err := w.Append("okx", big)
	require.NoError(t, err)
	_, err = w.Append("okx", []Row{{Symbol: "ETHUSDT"}})
	require.NoError(t, err)
	_, err = w.Append("okx", []Row{{Symbol: "SOLUSDT"}})
	require.NoError(t, err)

	manifest, err := LoadManifest(filepath.Join(root, "okx", "combined_okx.json"), "okx")
	require.NoError(t, err)
	assert.Equal(t, "okx", manifest.Exchange)
	assert.Equal(t, []string{"okx_00001.json", "okx_00002.json"}, manifest.Files)
}

func TestManifestValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined_okx.json")
	bad := &Manifest{Exchange: "okx", Files: []string{"../../etc/passwd"}}
	require.NoError(t, os.WriteFile(path, mustJSON(t, bad), 0644))

	_, err := LoadManifest(path, "okx")
	assert.Error(t, err)

	dup := &Manifest{Exchange: "okx", Files: []string{"okx_00001.json", "okx_00001.json"}}
	require.NoError(t, os.WriteFile(path, mustJSON(t, dup), 0644))
	_, err = LoadManifest(path, "okx")
	assert.Error(t, err)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestUpsertDailyVolume(t *testing.T) {
	w := NewWriter(t.TempDir(), 0)

	require.NoError(t, w.UpsertDailyVolume("Binance (Futures)", 100.5, 1000))
	require.NoError(t, w.UpsertDailyVolume("Bybit", 50, 1000))
	// same (date, exchange) replaces instead of appending
	require.NoError(t, w.UpsertDailyVolume("Binance (Futures)", 200.5, 1000))
	// new day appends
	require.NoError(t, w.UpsertDailyVolume("Binance (Futures)", 300, 2000))

	var summary []SummaryRow
	_, err := jsonstore.Load(w.CombinedSummaryPath(), &summary)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, SummaryRow{Date: 1000, Market: "Binance__Futures_", SumVolume24h: 200.5}, summary[0])
	assert.Equal(t, SummaryRow{Date: 1000, Market: "Bybit", SumVolume24h: 50}, summary[1])
	assert.Equal(t, SummaryRow{Date: 2000, Market: "Binance__Futures_", SumVolume24h: 300}, summary[2])
}

func TestRowsFromTickersCoercion(t *testing.T) {
	tickers := []coingecko.DerivativeTicker{
		{Market: "Bybit", Symbol: "BTCUSDT", OpenInterest: 10, Volume24h: 20},
		{Market: "Bybit", Symbol: "ETHUSDT"}, // zeros from upstream null/""
	}

	rows := RowsFromTickers(tickers, 555)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Symbol: "BTCUSDT", OpenInterest: 10, Volume24h: 20, Date: 555}, rows[0])
	assert.Equal(t, Row{Symbol: "ETHUSDT", OpenInterest: 0, Volume24h: 0, Date: 555}, rows[1])

	assert.Equal(t, 20.0, SumVolume(tickers))
}
