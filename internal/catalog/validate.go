package catalog

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/xtding233/idle-venues/internal/token"
)

var ErrInvalidCatalog = errors.New("catalog validation failed")

var validate = validator.New()

// ValidateRaw checks field bounds and cross references of a merged RawCatalog.
func ValidateRaw(cfg RawCatalog) error {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if len(cfg.Characters) == 0 {
		errs = append(errs, "characters must not be empty")
	}
	if len(cfg.Venues) == 0 {
		errs = append(errs, "venues must not be empty")
	}

	// characters
	ids := make(map[string]bool, len(cfg.Characters))
	names := make(map[string]bool, len(cfg.Characters))
	for i, c := range cfg.Characters {
		if ids[c.ID] {
			errs = append(errs, fmt.Sprintf("characters[%d]: duplicate id %q", i, c.ID))
		}
		ids[c.ID] = true
		if names[c.Name] {
			errs = append(errs, fmt.Sprintf("characters[%d]: duplicate name %q", i, c.Name))
		}
		names[c.Name] = true
		if msg := checkBaseRate(fmt.Sprintf("characters[%d].base_generation_rate", i), c.Rate); msg != "" {
			errs = append(errs, msg)
		}
		if !knownArea(c.Area) {
			errs = append(errs, fmt.Sprintf("characters[%d].area %q must be one of Market, Commemoration, Entertainment", i, c.Area))
		}
		if c.Unlock != nil {
			switch UnlockKind(c.Unlock.Type) {
			case UnlockLevel, UnlockRevenue:
				if c.Unlock.Value == nil || *c.Unlock.Value < 0 {
					errs = append(errs, fmt.Sprintf("characters[%d].unlock.value is required and must be >= 0 for type=%s", i, c.Unlock.Type))
				}
			case UnlockStarter, UnlockSummon, "pull", "":
			default:
				errs = append(errs, fmt.Sprintf("characters[%d].unlock.type must be one of: starter, level, revenue, summon", i))
			}
		}
	}

	// venues
	vids := make(map[string]bool, len(cfg.Venues))
	for i, v := range cfg.Venues {
		if vids[v.ID] {
			errs = append(errs, fmt.Sprintf("venues[%d]: duplicate id %q", i, v.ID))
		}
		vids[v.ID] = true
		if msg := checkBaseRate(fmt.Sprintf("venues[%d].base_revenue", i), v.BaseRevenue); msg != "" {
			errs = append(errs, msg)
		}
		if !knownArea(v.Type) {
			errs = append(errs, fmt.Sprintf("venues[%d].type %q must be one of Market, Commemoration, Entertainment", i, v.Type))
		}
	}

	// synergies
	for i, s := range cfg.Synergies {
		for _, n := range s.Characters {
			if !names[n] {
				errs = append(errs, fmt.Sprintf("synergies[%d]: unknown character name %q", i, n))
			}
		}
		for _, a := range s.Areas {
			if !knownArea(a) {
				errs = append(errs, fmt.Sprintf("synergies[%d]: unknown area %q", i, a))
			}
		}
	}

	// summon costs (optional)
	if cfg.Summon != nil && len(cfg.Summon.Costs) > 0 {
		if len(cfg.Summon.Costs) != token.MaxTier {
			errs = append(errs, fmt.Sprintf("summon.costs must list exactly %d tiers", token.MaxTier))
		}
		for i, c := range cfg.Summon.Costs {
			if c <= 0 {
				errs = append(errs, fmt.Sprintf("summon.costs[%d] must be > 0", i))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Wrapf(ErrInvalidCatalog, "%s", strings.Join(errs, "; "))
	}
	return nil
}

func knownArea(a string) bool {
	switch VenueType(a) {
	case Market, Commemoration, Entertainment:
		return true
	}
	return false
}
