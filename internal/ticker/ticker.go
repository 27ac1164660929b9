// Package ticker drives periodic accrual and autosave with a cron scheduler.
package ticker

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/xtding233/idle-venues/internal/accrual"
	"github.com/xtding233/idle-venues/internal/logger"
	"github.com/xtding233/idle-venues/internal/state"
)

// Engine is the part of engine.Engine the ticker drives.
type Engine interface {
	Tick(now time.Time) (accrual.Result, error)
	Snapshot() *state.GameState
}

// SaveFunc persists a snapshot; nil disables autosave.
type SaveFunc func(ctx context.Context, s *state.GameState) error

type Config struct {
	Interval  time.Duration // accrual period, at least one second
	SaveEvery time.Duration // autosave period; zero disables autosave
}

type Ticker struct {
	cron *cron.Cron
	eng  Engine
	save SaveFunc
	now  func() time.Time
	log  logger.Logger
}

// New schedules the jobs; nothing runs until Start.
func New(eng Engine, cfg Config, save SaveFunc, log logger.Logger) (*Ticker, error) {
	if cfg.Interval < time.Second {
		return nil, errors.Newf("tick interval %s below one second", cfg.Interval)
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.Named("ticker")
	t := &Ticker{
		eng:  eng,
		save: save,
		now:  time.Now,
		log:  log,
	}
	t.cron = cron.New(
		cron.WithLogger(cronLogger{log}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
	)
	if _, err := t.cron.AddFunc(every(cfg.Interval), t.tick); err != nil {
		return nil, errors.Wrap(err, "schedule tick")
	}
	if save != nil && cfg.SaveEvery > 0 {
		if _, err := t.cron.AddFunc(every(cfg.SaveEvery), t.autosave); err != nil {
			return nil, errors.Wrap(err, "schedule autosave")
		}
	}
	return t, nil
}

func every(d time.Duration) string { return fmt.Sprintf("@every %s", d) }

func (t *Ticker) Start() { t.cron.Start() }

// Stop halts scheduling, waits for running jobs and performs a final tick and save.
func (t *Ticker) Stop(ctx context.Context) error {
	done := t.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	t.tick()
	if t.save == nil {
		return nil
	}
	return t.save(ctx, t.eng.Snapshot())
}

func (t *Ticker) tick() {
	res, err := t.eng.Tick(t.now())
	if err != nil {
		t.log.Error("tick failed", "error", err)
		return
	}
	if len(res.LevelsGained) > 0 {
		t.log.Info("levels gained", "levels", res.LevelsGained, "gold", res.GoldGained)
	}
}

func (t *Ticker) autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := t.save(ctx, t.eng.Snapshot()); err != nil {
		t.log.Error("autosave failed", "error", err)
		return
	}
	t.log.Debug("autosaved")
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct{ l logger.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.l.Debug(msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(msg, append([]any{"error", err}, kv...)...)
}
