package upgrade

import (
	"slices"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/state"
)

// ActiveSynergies returns the rules satisfied by the deployed set, in catalog order.
// A rule is active when every named character is deployed and, if it restricts areas,
// at least one of its characters is deployed to a venue of a listed type.
func ActiveSynergies(s *state.GameState, cat *catalog.Catalog) []catalog.SynergyRule {
	deployed := make(map[string]catalog.VenueType, len(s.Assignments))
	for _, a := range s.Assignments {
		ch, ok := cat.Character(a.CharacterID)
		if !ok {
			continue
		}
		v, ok := cat.Venue(a.VenueID)
		if !ok {
			continue
		}
		deployed[ch.Name] = v.Type
	}

	var out []catalog.SynergyRule
	for _, rule := range cat.Synergies {
		if ruleActive(rule, deployed) {
			out = append(out, rule)
		}
	}
	return out
}

func ruleActive(rule catalog.SynergyRule, deployed map[string]catalog.VenueType) bool {
	if len(rule.Characters) == 0 {
		return false
	}
	inArea := len(rule.Areas) == 0
	for _, name := range rule.Characters {
		vt, ok := deployed[name]
		if !ok {
			return false
		}
		if !inArea && slices.Contains(rule.Areas, vt) {
			inArea = true
		}
	}
	return inArea
}

// BonusMultiplier sums the multipliers of active rules; bonuses stack additively.
func BonusMultiplier(rules []catalog.SynergyRule) float64 {
	var m float64
	for _, r := range rules {
		m += r.Multiplier
	}
	return m
}
