package catalog

import (
	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/token"
)

// Catalog is the immutable reference dataset consumed by the economy core.
// Slices keep file order; venue order decides which venue an assignment lands in.
type Catalog struct {
	Version    string
	Characters []Character
	Venues     []Venue
	Synergies  []SynergyRule
	Costs      token.Schedule

	charByID   map[string]int
	charByName map[string]int
	venueByID  map[string]int
}

// Provider returns the catalog currently in effect.
type Provider interface {
	Catalog() *Catalog
}

// New indexes the given definitions into a Catalog. It does not validate cross references;
// use Normalize for untrusted input.
func New(chars []Character, venues []Venue, synergies []SynergyRule, costs token.Schedule) *Catalog {
	c := &Catalog{
		Characters: chars,
		Venues:     venues,
		Synergies:  synergies,
		Costs:      costs,
		charByID:   make(map[string]int, len(chars)),
		charByName: make(map[string]int, len(chars)),
		venueByID:  make(map[string]int, len(venues)),
	}
	for i, ch := range chars {
		c.charByID[ch.ID] = i
		c.charByName[ch.Name] = i
	}
	for i, v := range venues {
		c.venueByID[v.ID] = i
	}
	return c
}

// Character looks a definition up by id.
func (c *Catalog) Character(id string) (Character, bool) {
	i, ok := c.charByID[id]
	if !ok {
		return Character{}, false
	}
	return c.Characters[i], true
}

// CharacterByName looks a definition up by display name (synergy rules use names).
func (c *Catalog) CharacterByName(name string) (Character, bool) {
	i, ok := c.charByName[name]
	if !ok {
		return Character{}, false
	}
	return c.Characters[i], true
}

// Venue looks a definition up by id.
func (c *Catalog) Venue(id string) (Venue, bool) {
	i, ok := c.venueByID[id]
	if !ok {
		return Venue{}, false
	}
	return c.Venues[i], true
}

// CharactersOfTier returns all definitions with the given rarity, in catalog order.
func (c *Catalog) CharactersOfTier(tier int) []Character {
	var out []Character
	for _, ch := range c.Characters {
		if ch.Rarity == tier {
			out = append(out, ch)
		}
	}
	return out
}

// Normalize validates a merged RawCatalog and converts it into a Catalog.
func Normalize(raw RawCatalog) (*Catalog, error) {
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}

	chars := make([]Character, 0, len(raw.Characters))
	for _, rc := range raw.Characters {
		chars = append(chars, Character{
			ID:       rc.ID,
			Name:     rc.Name,
			Title:    rc.Title,
			Rarity:   rc.Rarity,
			Area:     VenueType(rc.Area),
			BaseRate: rc.Rate,
			Unlock:   normalizeUnlock(rc.Unlock),
			Effects:  append([]string(nil), rc.Effects...),
		})
	}

	venues := make([]Venue, 0, len(raw.Venues))
	for _, rv := range raw.Venues {
		venues = append(venues, Venue{
			ID:            rv.ID,
			Name:          rv.Name,
			Type:          VenueType(rv.Type),
			BaseRevenue:   rv.BaseRevenue,
			MaxAssistants: rv.MaxAssistants,
			UnlockLevel:   rv.UnlockLevel,
		})
	}

	synergies := make([]SynergyRule, 0, len(raw.Synergies))
	for _, rs := range raw.Synergies {
		rule := SynergyRule{
			Characters: append([]string(nil), rs.Characters...),
			BonusText:  rs.BonusText,
			Multiplier: rs.Multiplier,
		}
		for _, a := range rs.Areas {
			rule.Areas = append(rule.Areas, VenueType(a))
		}
		synergies = append(synergies, rule)
	}

	costs := token.DefaultSchedule()
	if raw.Summon != nil {
		if raw.Summon.Token != "" {
			costs.Name = raw.Summon.Token
		}
		if len(raw.Summon.Costs) > 0 {
			copy(costs.PerTier[:], raw.Summon.Costs)
		}
	}

	c := New(chars, venues, synergies, costs)
	c.Version = raw.Version
	return c, nil
}

func normalizeUnlock(u *RawUnlock) UnlockRequirement {
	if u == nil {
		return UnlockRequirement{Kind: UnlockSummon}
	}
	req := UnlockRequirement{Kind: UnlockKind(u.Type)}
	if req.Kind == "" || req.Kind == "pull" {
		req.Kind = UnlockSummon
	}
	if u.Value != nil {
		req.Value = *u.Value
	}
	return req
}

// Must panics when err is non-nil; meant for embedded catalogs known to be valid.
func Must(c *Catalog, err error) *Catalog {
	if err != nil {
		panic(errors.Wrap(err, "catalog"))
	}
	return c
}
