package ticker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/idle-venues/internal/accrual"
	"github.com/xtding233/idle-venues/internal/state"
)

type fakeEngine struct {
	mu    sync.Mutex
	ticks []time.Time
	err   error
}

func (f *fakeEngine) Tick(now time.Time) (accrual.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks = append(f.ticks, now)
	return accrual.Result{LevelsGained: []int{2}}, f.err
}

func (f *fakeEngine) Snapshot() *state.GameState { return state.New(time.UnixMilli(0), 0) }

func (f *fakeEngine) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ticks)
}

func TestNewRejectsSubSecondInterval(t *testing.T) {
	_, err := New(&fakeEngine{}, Config{Interval: 100 * time.Millisecond}, nil, nil)
	assert.Error(t, err)
}

func TestTickerRunsAndStopFlushes(t *testing.T) {
	eng := &fakeEngine{}
	var (
		mu    sync.Mutex
		saves int
	)
	save := func(ctx context.Context, s *state.GameState) error {
		mu.Lock()
		defer mu.Unlock()
		saves++
		return nil
	}
	tk, err := New(eng, Config{Interval: time.Second, SaveEvery: time.Second}, save, nil)
	require.NoError(t, err)

	tk.Start()
	assert.Eventually(t, func() bool { return eng.count() >= 1 }, 3*time.Second, 20*time.Millisecond)

	before := eng.count()
	require.NoError(t, tk.Stop(context.Background()))
	assert.GreaterOrEqual(t, eng.count(), before+1)
	mu.Lock()
	assert.GreaterOrEqual(t, saves, 1)
	mu.Unlock()
}

func TestTickUsesClockAndSurvivesErrors(t *testing.T) {
	eng := &fakeEngine{err: errors.New("boom")}
	tk, err := New(eng, Config{Interval: time.Minute}, nil, nil)
	require.NoError(t, err)
	at := time.Unix(1_700_000_000, 0)
	tk.now = func() time.Time { return at }

	tk.tick()
	require.Equal(t, 1, eng.count())
	assert.Equal(t, at, eng.ticks[0])
	require.NoError(t, tk.Stop(context.Background()))
}

func TestStopReportsSaveError(t *testing.T) {
	save := func(context.Context, *state.GameState) error { return errors.New("disk full") }
	tk, err := New(&fakeEngine{}, Config{Interval: time.Minute}, save, nil)
	require.NoError(t, err)
	assert.EqualError(t, tk.Stop(context.Background()), "disk full")
}
