package venue

import (
	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/state"
)

// Breakdown is the revenue display of one venue, in gold per second.
type Breakdown struct {
	VenueID        string  `json:"venue_id"`
	Name           string  `json:"name"`
	Base           float64 `json:"base"`
	AssistantBonus float64 `json:"assistant_bonus"`
	Total          float64 `json:"total"`
	Occupied       int     `json:"occupied"`
	Capacity       int     `json:"capacity"`
	Locked         bool    `json:"locked"`
}

// Revenue computes the breakdown of venueID.
func Revenue(s *state.GameState, cat *catalog.Catalog, venueID string) (Breakdown, error) {
	v, ok := cat.Venue(venueID)
	if !ok {
		return Breakdown{}, state.ErrUnknownVenue
	}
	return breakdown(s, v), nil
}

func breakdown(s *state.GameState, v catalog.Venue) Breakdown {
	b := Breakdown{
		VenueID:  v.ID,
		Name:     v.Name,
		Base:     v.BaseRevenue,
		Capacity: v.MaxAssistants,
		Locked:   v.UnlockLevel > s.Level,
	}
	for _, a := range s.AssignmentsAt(v.ID) {
		b.AssistantBonus += a.GenerationRate
		b.Occupied++
	}
	b.Total = b.Base + b.AssistantBonus
	return b
}

// Overview sums the breakdowns into the rate accrual actually pays: assistant bonuses
// plus the base revenue of occupied venues. Venues lists every breakdown as shown.
type Overview struct {
	Venues         []Breakdown `json:"venues"`
	Base           float64     `json:"base"`
	AssistantBonus float64     `json:"assistant_bonus"`
	Total          float64     `json:"total"`
}

// Summarize returns the per-venue breakdowns in catalog order and their paid sums.
func Summarize(s *state.GameState, cat *catalog.Catalog) Overview {
	var o Overview
	for _, v := range cat.Venues {
		b := breakdown(s, v)
		o.Venues = append(o.Venues, b)
		if b.Occupied == 0 {
			continue
		}
		o.Base += b.Base
		o.AssistantBonus += b.AssistantBonus
	}
	o.Total = o.Base + o.AssistantBonus
	return o
}
