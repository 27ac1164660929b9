package gacha

import "github.com/cockroachdb/errors"

var (
	ErrEmptyPool = errors.New("cannot draw from an empty pool")
	ErrBadSample = errors.New("random source returned a value outside [0, 1)")
)

// Pick draws a uniform index in [0, n).
// n <= 0 => ErrEmptyPool. A nil rng uses DefaultRNG.
func Pick(n int, rng RandomSource) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyPool
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	f := rng.Float64()
	if err := validateSample(f); err != nil {
		return 0, errors.Wrapf(err, "sample %v", f)
	}
	i := int(f * float64(n))
	if i >= n {
		i = n - 1
	}
	return i, nil
}
