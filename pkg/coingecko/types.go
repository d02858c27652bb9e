package coingecko

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DerivativeTicker represents one derivatives market entry from the
// /derivatives endpoint. The response is a bare JSON array of these objects.
type DerivativeTicker struct {
	Market       string    `json:"market"`        // Exchange name (e.g., "Binance (Futures)")
	Symbol       string    `json:"symbol"`        // Contract symbol (e.g., "BTCUSDT")
	IndexID      string    `json:"index_id"`      // Underlying index (e.g., "BTC")
	Price        FlexFloat `json:"price"`         // Last traded price
	ContractType string    `json:"contract_type"` // "perpetual" or "futures"
	FundingRate  FlexFloat `json:"funding_rate"`
	OpenInterest FlexFloat `json:"open_interest"`
	Volume24h    FlexFloat `json:"volume_24h"`
	LastTradedAt int64     `json:"last_traded_at"` // Unix seconds
}

// FlexFloat is a float64 that tolerates the sloppy numeric encodings the
// upstream API emits: numbers, numeric strings, empty strings, and null all
// decode without error. Anything unparseable coerces to 0 rather than failing
// the whole document.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float64 returns the underlying value.
func (f FlexFloat) Float64() float64 {
	return float64(f)
}
