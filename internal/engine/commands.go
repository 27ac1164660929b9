package engine

import (
	"time"

	"github.com/xtding233/idle-venues/internal/accrual"
	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/gacha"
	"github.com/xtding233/idle-venues/internal/progression"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/upgrade"
	"github.com/xtding233/idle-venues/internal/venue"
)

// Tick accrues gold up to now.
func (e *Engine) Tick(now time.Time) (accrual.Result, error) {
	var res accrual.Result
	err := e.apply("tick", func(s *state.GameState) ([]Event, error) {
		r, err := accrual.Tick(s, e.cat, now)
		if err != nil {
			return nil, err
		}
		res = r
		return e.levelEvents(r.LevelsGained), nil
	})
	if err == nil && e.met != nil {
		e.met.ObserveTick(res.GoldGained, len(res.LevelsGained))
	}
	return res, err
}

// Summon draws one character of tier.
func (e *Engine) Summon(tier int) (gacha.Outcome, error) {
	var out gacha.Outcome
	err := e.apply("summon", func(s *state.GameState) ([]Event, error) {
		o, err := gacha.Summon(s, e.cat, tier, e.rng)
		if err != nil {
			return nil, err
		}
		out = o
		e.log.Debug("summon", "tier", tier, "character", o.CharacterID, "new", o.New)
		return []Event{{Kind: EventSummon, At: e.now(), CharacterID: o.CharacterID, Summon: &o}}, nil
	})
	if err == nil && e.met != nil {
		e.met.ObserveSummon(tier, summonOutcome(out))
	}
	return out, err
}

func summonOutcome(o gacha.Outcome) string {
	switch {
	case o.New:
		return "new"
	case o.Duplicate.Banked:
		return "banked"
	default:
		return "converted"
	}
}

// Assign deploys characterID and returns the chosen venue.
func (e *Engine) Assign(characterID string) (string, error) {
	var venueID string
	err := e.apply("assign", func(s *state.GameState) ([]Event, error) {
		if err := e.known(characterID); err != nil {
			return nil, err
		}
		v, err := venue.Assign(s, e.cat, characterID)
		if err != nil {
			return nil, err
		}
		venueID = v
		return []Event{{Kind: EventAssigned, At: e.now(), CharacterID: characterID, VenueID: v}}, nil
	})
	return venueID, err
}

// Unassign withdraws characterID from its venue.
func (e *Engine) Unassign(characterID string) error {
	return e.apply("unassign", func(s *state.GameState) ([]Event, error) {
		var from string
		if a := s.AssignmentOf(characterID); a != nil {
			from = a.VenueID
		}
		if err := venue.Unassign(s, characterID); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventUnassigned, At: e.now(), CharacterID: characterID, VenueID: from}}, nil
	})
}

// Upgrade spends one banked duplicate of characterID.
func (e *Engine) Upgrade(characterID string) error {
	return e.apply("upgrade", func(s *state.GameState) ([]Event, error) {
		if err := e.known(characterID); err != nil {
			return nil, err
		}
		if err := upgrade.Upgrade(s, e.cat, characterID); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventUpgraded, At: e.now(), CharacterID: characterID}}, nil
	})
}

// AddDuplicate credits one duplicate of characterID outside of a summon.
func (e *Engine) AddDuplicate(characterID string) (upgrade.DuplicateOutcome, error) {
	var out upgrade.DuplicateOutcome
	err := e.apply("add_duplicate", func(s *state.GameState) ([]Event, error) {
		if err := e.known(characterID); err != nil {
			return nil, err
		}
		o, err := upgrade.AddDuplicate(s, characterID)
		out = o
		return nil, err
	})
	return out, err
}

// AcknowledgeLevel marks every level up to level as shown to the player.
// Acknowledging an older level is a no-op.
func (e *Engine) AcknowledgeLevel(level int) error {
	return e.apply("acknowledge_level", func(s *state.GameState) ([]Event, error) {
		if level > s.Level {
			return nil, ErrLevelNotReached
		}
		if level > s.LastLevelAcknowledged {
			s.LastLevelAcknowledged = level
		}
		return nil, nil
	})
}

func (e *Engine) known(characterID string) error {
	if _, ok := e.cat.Character(characterID); !ok {
		return state.ErrUnknownCharacter
	}
	return nil
}

// VenueRevenue reports one venue's revenue breakdown.
func (e *Engine) VenueRevenue(venueID string) (venue.Breakdown, error) {
	var (
		b   venue.Breakdown
		err error
	)
	e.view(func(s *state.GameState, cat *catalog.Catalog) { b, err = venue.Revenue(s, cat, venueID) })
	return b, err
}

// Revenue is the aggregate revenue display. SynergyBonus is shown alongside the venue
// totals; accrual does not scale by it.
type Revenue struct {
	venue.Overview
	Rate         float64               `json:"rate"`
	Synergies    []catalog.SynergyRule `json:"synergies"`
	SynergyBonus float64               `json:"synergy_bonus"`
}

// TotalRevenue sums every venue and lists the active synergies.
func (e *Engine) TotalRevenue() (Revenue, error) {
	var (
		r   Revenue
		err error
	)
	e.view(func(s *state.GameState, cat *catalog.Catalog) {
		r.Overview = venue.Summarize(s, cat)
		r.Synergies = upgrade.ActiveSynergies(s, cat)
		r.SynergyBonus = upgrade.BonusMultiplier(r.Synergies)
		r.Rate, err = accrual.Rate(s, cat)
	})
	return r, err
}

// ActiveSynergies lists the synergy rules satisfied by the current deployment.
func (e *Engine) ActiveSynergies() []catalog.SynergyRule {
	var out []catalog.SynergyRule
	e.view(func(s *state.GameState, cat *catalog.Catalog) { out = upgrade.ActiveSynergies(s, cat) })
	return out
}

// PendingLevelUps lists levels reached but not yet acknowledged.
func (e *Engine) PendingLevelUps() []int {
	var out []int
	e.view(func(s *state.GameState, _ *catalog.Catalog) { out = s.PendingLevelUps() })
	return out
}

// Progress reports progress towards the next level.
func (e *Engine) Progress() progression.Progress {
	var p progression.Progress
	e.view(func(s *state.GameState, _ *catalog.Catalog) { p = progression.ProgressFor(s.CumulativeEarnings) })
	return p
}

// Simulate estimates how many summons of tier the current pool still needs for goal.
// The simulation draws from its own source seeded by the engine's, so it does not
// consume engine randomness beyond one sample.
func (e *Engine) Simulate(tier int, goal gacha.TrialGoal, trials int, budget *gacha.SimBudget) (gacha.Stats, error) {
	var (
		p    gacha.SimParams
		seed uint64
		err  error
	)
	e.view(func(s *state.GameState, cat *catalog.Catalog) {
		p, err = gacha.ParamsFor(s, cat, tier)
		seed = uint64(e.rng.Float64() * (1 << 53))
	})
	if err != nil {
		return gacha.Stats{}, err
	}
	if p.PoolSize == 0 {
		return gacha.Stats{}, gacha.ErrNoEligibleCharacters
	}
	return gacha.RunMonteCarlo(p, goal, trials, budget, gacha.NewSeededRNG(seed))
}
