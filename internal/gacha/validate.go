package gacha

import (
	"math"
)

// validateSample rejects random sources that step outside [0, 1).
func validateSample(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ErrBadSample
	}
	if f < 0 || f >= 1 {
		return ErrBadSample
	}
	return nil
}
