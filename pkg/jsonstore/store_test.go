package jsonstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	var doc map[string][]string
	found, err := Load(filepath.Join(t.TempDir(), "nope.json"), &doc)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, doc)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "doc.json")

	in := map[string][]string{"binance_futures": {"BTCUSDT", "ETHUSDT"}}
	require.NoError(t, Save(path, in))

	var out map[string][]string
	found, err := Load(path, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, Save(path, "not an object"))

	var doc map[string]int
	_, err := Load(path, &doc)
	assert.Error(t, err)
}

func TestFileSizeMissing(t *testing.T) {
	size, err := FileSize(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Zero(t, size)
}
