package coingecko

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloatDecoding(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `12.5`, 12.5},
		{"numeric string", `"12.5"`, 12.5},
		{"integer string", `"42"`, 42},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"whitespace string", `"  "`, 0},
		{"garbage string", `"n/a"`, 0},
		{"zero", `0`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexFloat
			require.NoError(t, json.Unmarshal([]byte(tc.in), &f))
			assert.Equal(t, tc.want, f.Float64())
		})
	}
}

func TestFlexFloatEncodesAsNumber(t *testing.T) {
	out, err := json.Marshal(FlexFloat(0))
	require.NoError(t, err)
	assert.Equal(t, `0`, string(out))

	out, err = json.Marshal(struct {
		OI FlexFloat `json:"open_interest"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"open_interest": 0}`, string(out))
}
