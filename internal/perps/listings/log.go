package listings

import (
	"fmt"

	"perpstracker/pkg/jsonstore"
)

// Actions recorded in the event log.
const (
	ActionListed      = "listed"
	ActionDelisted    = "delisted"
	ActionLastUpdated = "last updated"
)

// Event is one record in the listings event log. Transition events
// ("listed"/"delisted") are append-only; the single "last updated" sentinel is
// the only record ever mutated after creation.
type Event struct {
	Date   int64  `json:"date"`   // Unix seconds
	Symbol string `json:"symbol"`
	Name   string `json:"name"`   // Exchange name
	Action string `json:"action"`
}

// EventLog is the ordered listings change log. The sentinel, when present,
// sits at index 0.
type EventLog struct {
	Events []Event
}

// LoadLog reads the event log at path. A missing file yields an empty log.
func LoadLog(path string) (*EventLog, error) {
	var events []Event
	if _, err := jsonstore.Load(path, &events); err != nil {
		return nil, fmt.Errorf("load event log: %w", err)
	}
	return &EventLog{Events: events}, nil
}

// Save persists the log to path. An empty log writes an empty array, not
// null.
func (l *EventLog) Save(path string) error {
	events := l.Events
	if events == nil {
		events = []Event{}
	}
	if err := jsonstore.Save(path, events); err != nil {
		return fmt.Errorf("save event log: %w", err)
	}
	return nil
}

// Touch stamps the sentinel record with now, inserting it at index 0 if the
// log has never been written before.
func (l *EventLog) Touch(now int64) {
	for i := range l.Events {
		if l.Events[i].Action == ActionLastUpdated {
			l.Events[i].Date = now
			return
		}
	}

	sentinel := Event{Date: now, Symbol: "NA", Name: "NA", Action: ActionLastUpdated}
	l.Events = append([]Event{sentinel}, l.Events...)
}

// LastKnown builds the last-known-state index: for each (exchange, symbol)
// pair, the most recent transition action in the log. The sentinel is not a
// transition and is skipped.
func (l *EventLog) LastKnown() map[Pair]string {
	state := make(map[Pair]string)
	for _, ev := range l.Events {
		if ev.Action != ActionListed && ev.Action != ActionDelisted {
			continue
		}
		state[Pair{Exchange: ev.Name, Symbol: ev.Symbol}] = ev.Action
	}
	return state
}

func (l *EventLog) append(pair Pair, action string, now int64) {
	l.Events = append(l.Events, Event{
		Date:   now,
		Symbol: pair.Symbol,
		Name:   pair.Exchange,
		Action: action,
	})
}
