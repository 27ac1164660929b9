package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/gacha"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/token"
	"github.com/xtding233/idle-venues/internal/upgrade"
	"github.com/xtding233/idle-venues/internal/venue"
)

var (
	ErrLevelNotReached     = errors.New("level not reached")
	ErrIncompatibleCatalog = errors.New("catalog does not cover the current game state")
	ErrInvalidSnapshot     = errors.New("invalid snapshot")
)

// codes maps recoverable errors to stable identifiers used by metrics and the HTTP surface.
var codes = []struct {
	err  error
	code string
}{
	{gacha.ErrInsufficientCurrency, "insufficient_currency"},
	{gacha.ErrRarityLocked, "rarity_locked"},
	{gacha.ErrNoEligibleCharacters, "no_eligible_characters"},
	{token.ErrInvalidTier, "invalid_tier"},
	{state.ErrNotUnlocked, "not_unlocked"},
	{state.ErrUnknownCharacter, "unknown_character"},
	{state.ErrUnknownVenue, "unknown_venue"},
	{venue.ErrVenueLocked, "venue_locked"},
	{venue.ErrNoCapacity, "no_capacity"},
	{venue.ErrNotAssigned, "not_assigned"},
	{upgrade.ErrNoDuplicatesAvailable, "no_duplicates_available"},
	{upgrade.ErrMaxUpgradesReached, "max_upgrades_reached"},
	{ErrLevelNotReached, "level_not_reached"},
	{ErrIncompatibleCatalog, "incompatible_catalog"},
	{ErrInvalidSnapshot, "invalid_snapshot"},
	{catalog.ErrUnrepresentableRate, "unrepresentable_rate"},
}

// ErrorCode returns the stable code of a recoverable error, "assertion_failed" for an
// invariant violation and "internal" for anything else.
func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.HasAssertionFailure(err) {
		return "assertion_failed"
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
