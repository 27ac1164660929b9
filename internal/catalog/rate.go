package catalog

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Rates are fixed point: a whole number of milli-gold per second.
const (
	RateScale = 1000

	// MaxRate bounds any single generation rate, duplicate multiplier included, so
	// that rate × RateScale stays an exact float64 integer.
	MaxRate = 1e12

	// MaxBaseRate bounds the catalog's base rates and venue revenues, leaving room
	// for the duplicate multiplier under MaxRate.
	MaxBaseRate = 1e11
)

var ErrUnrepresentableRate = errors.New("rate is not a whole number of milli-gold per second in range")

// MilliRate converts a per-second rate into milli-units per second. Rates that are
// negative, above MaxRate or finer than 0.001 are rejected rather than rounded.
func MilliRate(rate float64) (int64, error) {
	if math.IsNaN(rate) || rate < 0 || rate > MaxRate {
		return 0, errors.Wrapf(ErrUnrepresentableRate, "%v", rate)
	}
	x := rate * RateScale
	m := math.Round(x)
	ulp := math.Nextafter(x, math.Inf(1)) - x
	if math.Abs(x-m) > 2*ulp+1e-9 {
		return 0, errors.Wrapf(ErrUnrepresentableRate, "%v", rate)
	}
	return int64(m), nil
}

// checkBaseRate returns a validation message for a catalog rate, or "".
func checkBaseRate(field string, rate float64) string {
	if rate > MaxBaseRate {
		return field + " must be at most 1e11"
	}
	if _, err := MilliRate(rate); err != nil {
		return field + " must be a non-negative multiple of 0.001"
	}
	return ""
}
