package listings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpstracker/pkg/coingecko"
)

func tick(market, symbol string) coingecko.DerivativeTicker {
	return coingecko.DerivativeTicker{Market: market, Symbol: symbol}
}

func TestBuildSnapshotGroupsByExchange(t *testing.T) {
	records := []coingecko.DerivativeTicker{
		tick("Binance (Futures)", "BTCUSDT"),
		tick("Binance (Futures)", "ETHUSDT"),
		tick("Binance (Futures)", "BTCUSDT"), // duplicate collapses into the set
		tick("Bybit (Futures)", "BTCUSDT"),
	}

	snap := BuildSnapshot(records, BuildOptions{})

	require.Len(t, snap, 2)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, snap["Binance (Futures)"])
	assert.Equal(t, []string{"BTCUSDT"}, snap["Bybit (Futures)"])
}

func TestBuildSnapshotSkipsIncompleteRecords(t *testing.T) {
	records := []coingecko.DerivativeTicker{
		tick("", "BTCUSDT"),
		tick("Binance (Futures)", ""),
		tick("Binance (Futures)", "BTCUSDT"),
	}

	snap := BuildSnapshot(records, BuildOptions{})

	require.Len(t, snap, 1)
	assert.Equal(t, []string{"BTCUSDT"}, snap["Binance (Futures)"])
}

func TestBuildSnapshotTrackedFilter(t *testing.T) {
	records := []coingecko.DerivativeTicker{
		tick("Binance (Futures)", "BTCUSDT"),
		tick("Bybit (Futures)", "BTCUSDT"),
		tick("OKX (Futures)", "BTCUSDT"),
	}

	snap := BuildSnapshot(records, BuildOptions{
		Tracked: []string{"binance (futures)", "OKX (Futures)"},
	})

	require.Len(t, snap, 2)
	assert.Contains(t, snap, "Binance (Futures)")
	assert.Contains(t, snap, "OKX (Futures)")
	assert.NotContains(t, snap, "Bybit (Futures)")
}

func TestBuildSnapshotNormalization(t *testing.T) {
	records := []coingecko.DerivativeTicker{
		tick("Binance (Futures)", "BTC_USDT"),
		tick("binance (futures)", " BTCUSDT "),
	}

	snap := BuildSnapshot(records, BuildOptions{Normalize: true})

	// formatting drift collapses to one exchange, one symbol
	require.Len(t, snap, 1)
	assert.Equal(t, []string{"btcusdt"}, snap["binance(futures)"])
}

func TestNormalizedSnapshotsDiffClean(t *testing.T) {
	opts := BuildOptions{Normalize: true}
	baseline := BuildSnapshot([]coingecko.DerivativeTicker{tick("Bitget Futures", "ETH_USDT")}, opts)
	current := BuildSnapshot([]coingecko.DerivativeTicker{tick("bitget futures", "ETHUSDT")}, opts)

	log := &EventLog{}
	res := Reconcile(baseline, current, log, 1)
	assert.Empty(t, res.Listed)
	assert.Empty(t, res.Delisted)
}

func TestPairsFlattening(t *testing.T) {
	snap := Snapshot{"A": {"X", "Y"}, "B": {"X"}}
	pairs := snap.Pairs()

	assert.Len(t, pairs, 3)
	assert.True(t, pairs[Pair{"A", "X"}])
	assert.True(t, pairs[Pair{"B", "X"}])
}
