package engine

import (
	"time"

	"github.com/xtding233/idle-venues/internal/gacha"
)

type EventKind string

const (
	EventLevelUp    EventKind = "level_up"
	EventSummon     EventKind = "summon"
	EventAssigned   EventKind = "assigned"
	EventUnassigned EventKind = "unassigned"
	EventUpgraded   EventKind = "upgraded"
)

// Event is published after a command commits.
type Event struct {
	Kind        EventKind      `json:"kind"`
	At          time.Time      `json:"at"`
	Level       int            `json:"level,omitempty"`
	CharacterID string         `json:"character_id,omitempty"`
	VenueID     string         `json:"venue_id,omitempty"`
	Summon      *gacha.Outcome `json:"summon,omitempty"`
}

// Subscribe returns a channel of committed events and a function that ends the
// subscription. Events are dropped for a subscriber whose buffer is full.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subsMu.Unlock()

	var once bool
	cancel := func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		if once {
			return
		}
		once = true
		delete(e.subs, id)
		close(ch)
	}
	return ch, cancel
}

func (e *Engine) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ev := range events {
		for _, ch := range e.subs {
			select {
			case ch <- ev:
			default:
				e.dropped++
			}
		}
	}
}
