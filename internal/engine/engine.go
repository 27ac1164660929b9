// Package engine owns one GameState and applies every command and tick to it as a
// single-writer transaction: the command runs on a copy, the invariants are checked,
// and only then is the copy committed. A failed command leaves the state untouched.
package engine

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/accrual"
	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/gacha"
	"github.com/xtding233/idle-venues/internal/logger"
	"github.com/xtding233/idle-venues/internal/metrics"
	"github.com/xtding233/idle-venues/internal/progression"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/venue"
)

type Option func(*Engine)

func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = l } }

func WithMetrics(m *metrics.EconomyMetrics) Option { return func(e *Engine) { e.met = m } }

func WithRNG(r gacha.RandomSource) Option { return func(e *Engine) { e.rng = r } }

// WithClock replaces time.Now for event timestamps and new games.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithStartingGems sets the premium balance of a game created by New.
func WithStartingGems(n int64) Option { return func(e *Engine) { e.startingGems = n } }

type Engine struct {
	mu  sync.Mutex
	st  *state.GameState
	cat *catalog.Catalog

	rng          gacha.RandomSource
	now          func() time.Time
	startingGems int64
	log          logger.Logger
	met          *metrics.EconomyMetrics

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
	dropped int
}

// New returns an engine over st, or over a new game when st is nil. A supplied state
// must satisfy the invariants against cat.
func New(cat *catalog.Catalog, st *state.GameState, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("engine needs a catalog")
	}
	e := &Engine{
		cat:          cat,
		rng:          gacha.DefaultRNG(),
		now:          time.Now,
		startingGems: state.DefaultStartingGems,
		log:          logger.NewNop(),
		subs:         make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("engine")

	if st == nil {
		st = state.New(e.now(), e.startingGems)
	} else {
		st = st.Clone()
	}
	if err := checkState(st, cat); err != nil {
		return nil, err
	}
	e.st = st
	e.observeBalances()
	return e, nil
}

// checkState extends the aggregate invariants with the level/earnings agreement and
// requires every rate in play to be payable exactly.
func checkState(s *state.GameState, cat *catalog.Catalog) error {
	if err := s.CheckInvariants(cat); err != nil {
		return err
	}
	if _, err := accrual.RateMilli(s, cat); err != nil {
		return err
	}
	if want := progression.LevelForEarnings(s.CumulativeEarnings); s.Level != want {
		return errors.AssertionFailedf("level %d disagrees with earnings %d (level %d)",
			s.Level, s.CumulativeEarnings, want)
	}
	if s.LastLevelAcknowledged < 1 || s.LastLevelAcknowledged > s.Level {
		return errors.AssertionFailedf("acknowledged level %d outside 1..%d", s.LastLevelAcknowledged, s.Level)
	}
	return nil
}

// apply runs fn on a copy of the state and commits it when fn and the invariant check
// succeed. Events returned by fn are published after the commit.
func (e *Engine) apply(command string, fn func(s *state.GameState) ([]Event, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.st.Clone()
	events, err := fn(work)
	if err == nil {
		err = checkState(work, e.cat)
	}
	if err != nil {
		code := ErrorCode(err)
		if errors.HasAssertionFailure(err) {
			e.log.Error("invariant violated", "command", command, "error", err)
		} else {
			e.log.Debug("command rejected", "command", command, "code", code, "error", err)
		}
		if e.met != nil {
			e.met.ObserveCommand(command, code)
		}
		return err
	}

	e.st = work
	if e.met != nil {
		e.met.ObserveCommand(command, "ok")
	}
	e.observeBalances()
	e.publish(events)
	return nil
}

// view runs fn under the lock against the live state; fn must not modify it.
func (e *Engine) view(fn func(s *state.GameState, cat *catalog.Catalog)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.st, e.cat)
}

func (e *Engine) observeBalances() {
	if e.met == nil {
		return
	}
	rate, err := accrual.Rate(e.st, e.cat)
	if err != nil {
		rate = 0
	}
	e.met.SetBalances(e.st.Level, e.st.Gold, e.st.Gems, rate)
}

func (e *Engine) levelEvents(levels []int) []Event {
	out := make([]Event, 0, len(levels))
	for _, l := range levels {
		e.log.Info("level up", "level", l)
		out = append(out, Event{Kind: EventLevelUp, At: e.now(), Level: l})
	}
	return out
}

// Catalog returns the reference data in use.
func (e *Engine) Catalog() *catalog.Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cat
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *state.GameState {
	var out *state.GameState
	e.view(func(s *state.GameState, _ *catalog.Catalog) { out = s.Clone() })
	return out
}

// Restore replaces the state with a copy of st after checking it against the catalog.
func (e *Engine) Restore(st *state.GameState) error {
	if st == nil {
		return errors.Wrap(ErrInvalidSnapshot, "nil game state")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkState(st, e.cat); err != nil {
		return errors.Wrapf(ErrInvalidSnapshot, "%v", err)
	}
	e.st = st.Clone()
	e.log.Info("state restored", "level", e.st.Level)
	e.observeBalances()
	return nil
}

// ReloadCatalog swaps the reference data when the current state is valid against it.
// Live assignments are re-snapshotted at the new base rates in the same transaction.
func (e *Engine) ReloadCatalog(cat *catalog.Catalog) error {
	if cat == nil {
		return errors.New("nil catalog")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	work := e.st.Clone()
	var err error
	for i := 0; err == nil && i < len(work.Assignments); i++ {
		err = venue.Resnapshot(work, cat, work.Assignments[i].CharacterID)
	}
	if err == nil {
		err = checkState(work, cat)
	}
	if err != nil {
		e.log.Warn("catalog reload rejected", "version", cat.Version, "error", err)
		return errors.Wrapf(ErrIncompatibleCatalog, "%v", err)
	}
	e.st = work
	e.cat = cat
	e.log.Info("catalog reloaded", "version", cat.Version)
	e.observeBalances()
	return nil
}

// CheckInvariants verifies the live state; a failure is an assertion error.
func (e *Engine) CheckInvariants() error {
	var err error
	e.view(func(s *state.GameState, cat *catalog.Catalog) { err = checkState(s, cat) })
	return err
}

// DroppedEvents counts events not delivered to a full subscriber buffer.
func (e *Engine) DroppedEvents() int {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	return e.dropped
}
