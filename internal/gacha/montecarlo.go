package gacha

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/state"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Summons until every character of the pool is unlocked.
	GoalCollectAll TrialGoal = "collect_all"

	// Summons until every character of the pool can reach max upgrades,
	// i.e. one unlock plus MaxUpgrades duplicates each. This is what opens the next tier.
	GoalMaxAll TrialGoal = "max_all"

	// Given a fixed budget N, count the distinct characters unlocked.
	GoalFixedBudget TrialGoal = "fixed_budget"
)

var ErrInvalidSim = errors.New("invalid simulation parameters")

// SimParams describes the pool for one simulation run.
type SimParams struct {
	PoolSize int   // eligible characters in the tier
	Owned    []int // copies already held per pool slot; may be shorter than PoolSize
	Cost     int64 // premium cost of one summon
}

// ParamsFor builds SimParams from the player's current tier pool, counting the copies
// already held (unlock, applied upgrades and banked duplicates).
func ParamsFor(s *state.GameState, cat *catalog.Catalog, tier int) (SimParams, error) {
	cost, err := cat.Costs.CostForTier(tier)
	if err != nil {
		return SimParams{}, err
	}
	pool := Eligible(s, cat, tier)
	p := SimParams{PoolSize: len(pool), Owned: make([]int, len(pool)), Cost: cost}
	for i, ch := range pool {
		if rec := s.Record(ch.ID); rec != nil {
			p.Owned[i] = 1 + rec.Upgrades + rec.BankedDuplicates
		}
	}
	return p, nil
}

// SimBudget controls the number of summons used in GoalFixedBudget.
type SimBudget struct {
	NumSummons int
}

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`

	// MeanCost is Mean summons priced at SimParams.Cost.
	MeanCost float64 `json:"mean_cost"`

	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)
	stddev := math.Sqrt(variance)

	// percentiles
	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 {
			return float64(cp[0])
		}
		if p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  stddev,
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// copiesToMax is how many copies of a character max it: the unlock plus every upgrade.
const copiesToMax = 1 + state.MaxUpgrades

// simulateOne returns the primary metric for one trial depending on the goal.
func simulateOne(p SimParams, goal TrialGoal, budget *SimBudget, rng RandomSource) (int, error) {
	copies := make([]int, p.PoolSize)
	copy(copies, p.Owned)

	done := func(need int) bool {
		for _, c := range copies {
			if c < need {
				return false
			}
		}
		return true
	}

	switch goal {
	case GoalCollectAll, GoalMaxAll:
		need := 1
		if goal == GoalMaxAll {
			need = copiesToMax
		}
		summons := 0
		for !done(need) {
			summons++
			i, err := Pick(p.PoolSize, rng)
			if err != nil {
				return 0, err
			}
			copies[i]++
		}
		return summons, nil

	case GoalFixedBudget:
		if budget == nil || budget.NumSummons <= 0 {
			return 0, nil
		}
		unlocked := 0
		for i := 0; i < budget.NumSummons; i++ {
			j, err := Pick(p.PoolSize, rng)
			if err != nil {
				return 0, err
			}
			if copies[j] == 0 {
				unlocked++
			}
			copies[j]++
		}
		return unlocked, nil
	}

	return 0, errors.Wrapf(ErrInvalidSim, "unknown goal %q", goal)
}

// RunMonteCarlo repeats trials and returns summary stats.
// goal determines what metric is recorded per trial. A nil rng uses DefaultRNG.
func RunMonteCarlo(p SimParams, goal TrialGoal, trials int, budget *SimBudget, rng RandomSource) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	if p.PoolSize <= 0 {
		return Stats{}, errors.Wrap(ErrInvalidSim, "empty pool")
	}
	if len(p.Owned) > p.PoolSize {
		return Stats{}, errors.Wrapf(ErrInvalidSim, "%d owned entries for a pool of %d", len(p.Owned), p.PoolSize)
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		v, err := simulateOne(p, goal, budget, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	st := calcStats(samples)
	if goal != GoalFixedBudget {
		st.MeanCost = st.Mean * float64(p.Cost)
	}
	return st, nil
}
