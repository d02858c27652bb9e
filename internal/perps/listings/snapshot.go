package listings

import (
	"sort"
	"strings"
	"unicode"

	"perpstracker/pkg/coingecko"
)

// Snapshot maps an exchange name to the set of perpetual symbols listed on
// it. The persisted form keeps symbols as a sorted list for stable diffs.
type Snapshot map[string][]string

// Pair identifies a single listing: one symbol on one exchange.
type Pair struct {
	Exchange string
	Symbol   string
}

// BuildOptions controls how raw ticker records are grouped into a Snapshot.
type BuildOptions struct {
	// Tracked restricts the snapshot to these exchange names. Empty means
	// every exchange in the input is kept. Matching is case-insensitive.
	Tracked []string
	// Normalize lowercases and strips whitespace and underscores from both
	// exchange and symbol before grouping, so formatting drift at the data
	// source does not show up as a spurious listing change.
	Normalize bool
}

// BuildSnapshot groups raw derivative tickers into a per-exchange symbol set.
// Records missing either the market or the symbol field are skipped.
func BuildSnapshot(records []coingecko.DerivativeTicker, opts BuildOptions) Snapshot {
	tracked := make(map[string]bool, len(opts.Tracked))
	for _, name := range opts.Tracked {
		tracked[canonical(name, opts.Normalize)] = true
	}

	sets := make(map[string]map[string]bool)
	for _, rec := range records {
		exchange := rec.Market
		symbol := rec.Symbol
		if opts.Normalize {
			exchange = normalize(exchange)
			symbol = normalize(symbol)
		}
		if exchange == "" || symbol == "" {
			continue
		}
		if len(tracked) > 0 && !tracked[canonical(rec.Market, opts.Normalize)] {
			continue
		}

		if sets[exchange] == nil {
			sets[exchange] = make(map[string]bool)
		}
		sets[exchange][symbol] = true
	}

	snap := make(Snapshot, len(sets))
	for exchange, symbols := range sets {
		list := make([]string, 0, len(symbols))
		for sym := range symbols {
			list = append(list, sym)
		}
		sort.Strings(list)
		snap[exchange] = list
	}
	return snap
}

// Pairs flattens the snapshot into its set of (exchange, symbol) pairs.
func (s Snapshot) Pairs() map[Pair]bool {
	pairs := make(map[Pair]bool)
	for exchange, symbols := range s {
		for _, sym := range symbols {
			pairs[Pair{Exchange: exchange, Symbol: sym}] = true
		}
	}
	return pairs
}

func canonical(name string, normalized bool) string {
	if normalized {
		return normalize(name)
	}
	return strings.ToLower(name)
}

// normalize lowercases s and drops whitespace and underscores.
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// sortedPairs returns the pairs of set in deterministic (exchange, symbol)
// order.
func sortedPairs(set map[Pair]bool) []Pair {
	pairs := make([]Pair, 0, len(set))
	for p := range set {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Exchange != pairs[j].Exchange {
			return pairs[i].Exchange < pairs[j].Exchange
		}
		return pairs[i].Symbol < pairs[j].Symbol
	})
	return pairs
}
