package listings

// Result reports the transitions a reconcile pass appended to the log, in the
// order they were written.
type Result struct {
	Listed   []Pair
	Delisted []Pair
}

// Reconcile diffs current against baseline and appends the resulting
// transition events to log, stamped with now. The sentinel record is always
// updated, even when the diff is empty.
//
// Pairs present in current but not baseline become "listed" events; the
// reverse become "delisted". Both sides are walked in sorted (exchange,
// symbol) order so identical inputs always produce identical logs. A
// transition is suppressed when the log's last-known state for that pair
// already matches, which makes repeated runs against unchanged inputs
// append nothing.
func Reconcile(baseline, current Snapshot, log *EventLog, now int64) Result {
	log.Touch(now)

	baseSet := baseline.Pairs()
	currSet := current.Pairs()
	lastKnown := log.LastKnown()

	var res Result
	for _, pair := range sortedPairs(diff(currSet, baseSet)) {
		if lastKnown[pair] == ActionListed {
			continue
		}
		log.append(pair, ActionListed, now)
		res.Listed = append(res.Listed, pair)
	}
	for _, pair := range sortedPairs(diff(baseSet, currSet)) {
		if lastKnown[pair] == ActionDelisted {
			continue
		}
		log.append(pair, ActionDelisted, now)
		res.Delisted = append(res.Delisted, pair)
	}

	return res
}

// Events rebuilds the transition events this result appended, stamped with
// now, for mirroring into secondary sinks.
func (r Result) Events(now int64) []Event {
	events := make([]Event, 0, len(r.Listed)+len(r.Delisted))
	for _, p := range r.Listed {
		events = append(events, Event{Date: now, Symbol: p.Symbol, Name: p.Exchange, Action: ActionListed})
	}
	for _, p := range r.Delisted {
		events = append(events, Event{Date: now, Symbol: p.Symbol, Name: p.Exchange, Action: ActionDelisted})
	}
	return events
}

// diff returns the pairs in a that are not in b.
func diff(a, b map[Pair]bool) map[Pair]bool {
	out := make(map[Pair]bool)
	for p := range a {
		if !b[p] {
			out[p] = true
		}
	}
	return out
}
