// types.go
package catalog

// Raw catalog loaded from YAML; one file per section, all optional except characters and venues.
type RawCatalog struct {
	Version    string         `yaml:"version"`
	Characters []RawCharacter `yaml:"characters" validate:"dive"`
	Venues     []RawVenue     `yaml:"venues" validate:"dive"`
	Synergies  []RawSynergy   `yaml:"synergies,omitempty" validate:"dive"`
	Summon     *SummonConfig  `yaml:"summon,omitempty"`
	Notes      string         `yaml:"notes,omitempty"`
}

type RawCharacter struct {
	ID      string     `yaml:"id" validate:"required"`
	Name    string     `yaml:"name" validate:"required"`
	Title   string     `yaml:"title,omitempty"`
	Area    string     `yaml:"area" validate:"required"`
	Rarity  int        `yaml:"rarity" validate:"min=1,max=5"`
	Rate    float64    `yaml:"base_generation_rate" validate:"gte=0"`
	Unlock  *RawUnlock `yaml:"unlock,omitempty"`
	Effects []string   `yaml:"effects,omitempty"`
	Synergy string     `yaml:"synergy_group,omitempty"`
}

type RawUnlock struct {
	Type  string `yaml:"type"` // "starter" | "level" | "revenue" | "summon"
	Value *int64 `yaml:"value,omitempty"`
}

type RawVenue struct {
	ID            string   `yaml:"id" validate:"required"`
	Name          string   `yaml:"name" validate:"required"`
	Type          string   `yaml:"type" validate:"required"`
	Theme         string   `yaml:"theme,omitempty"`
	BaseRevenue   float64  `yaml:"base_revenue" validate:"gte=0"`
	MaxAssistants int      `yaml:"max_assistants" validate:"min=1"`
	UnlockLevel   int      `yaml:"unlock_level" validate:"min=1"`
	BonusThemes   []string `yaml:"bonus_themes,omitempty"`
}

type RawSynergy struct {
	Characters []string `yaml:"characters" validate:"min=1"`
	Areas      []string `yaml:"areas,omitempty"`
	BonusText  string   `yaml:"bonus_text"`
	Multiplier float64  `yaml:"multiplier" validate:"gte=0"`
}

type SummonConfig struct {
	Token string  `yaml:"token"`
	Costs []int64 `yaml:"costs"` // one entry per tier, 1★ first
}

// VenueType is the area a venue belongs to and a character has affinity with.
type VenueType string

const (
	Market        VenueType = "Market"
	Commemoration VenueType = "Commemoration"
	Entertainment VenueType = "Entertainment"
)

// UnlockKind selects how a character becomes drawable.
type UnlockKind string

const (
	UnlockStarter UnlockKind = "starter"
	UnlockLevel   UnlockKind = "level"
	UnlockRevenue UnlockKind = "revenue"
	UnlockSummon  UnlockKind = "summon"
)

// UnlockRequirement gates a character's presence in the summon pool.
// Value is the minimum level for UnlockLevel and the minimum cumulative revenue
// for UnlockRevenue; it is unused otherwise.
type UnlockRequirement struct {
	Kind  UnlockKind
	Value int64
}

// Satisfied reports whether a player at level with cumulative earnings meets the gate.
func (u UnlockRequirement) Satisfied(level int, earnings int64) bool {
	switch u.Kind {
	case UnlockLevel:
		return int64(level) >= u.Value
	case UnlockRevenue:
		return earnings >= u.Value
	default:
		return true
	}
}

// Character is an immutable character definition.
type Character struct {
	ID       string
	Name     string
	Title    string
	Rarity   int
	Area     VenueType
	BaseRate float64 // gold per second at duplicate level 1
	Unlock   UnlockRequirement
	Effects  []string
}

// Venue is an immutable venue definition.
type Venue struct {
	ID            string
	Name          string
	Type          VenueType
	BaseRevenue   float64 // passive gold per second while active
	MaxAssistants int
	UnlockLevel   int
}

// SynergyRule is active when all named characters are deployed, optionally in given areas.
type SynergyRule struct {
	Characters []string    `json:"characters"`
	Areas      []VenueType `json:"areas,omitempty"`
	BonusText  string      `json:"bonus_text"`
	Multiplier float64     `json:"multiplier"` // additive revenue bonus, 1.5 means +150%
}
