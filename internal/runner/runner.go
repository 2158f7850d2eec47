// Package runner drives the scheduler at a fixed period and fans each
// resolved frame out to the robot's mechanisms.
package runner

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/input"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/scheduler"
	"github.com/jorge-barreto/drivectl/internal/state"
)

// Mechanism consumes the resolved operation values once per tick.
type Mechanism interface {
	Apply(v ops.Reader)
}

// MechanismFunc adapts a function to Mechanism.
type MechanismFunc func(v ops.Reader)

func (f MechanismFunc) Apply(v ops.Reader) { f(v) }

// Stats summarizes loop timing.
type Stats struct {
	Ticks    uint64
	Overruns uint64
	LastTick time.Duration
	MaxTick  time.Duration
}

// Runner drives the control loop. All scheduler and mechanism calls happen
// on the goroutine that calls Run, RunTicks or Step.
type Runner struct {
	Period     time.Duration
	Scheduler  *scheduler.Scheduler
	Source     input.Source
	Mechanisms []Mechanism
	// Clock is advanced by Period per tick in RunTicks when it supports it.
	Clock clock.Clock
	Log   zerolog.Logger

	// BeforeTick, if set, runs ahead of every tick with the tick number.
	BeforeTick func(tick uint64)

	// Journal. All optional.
	State      *state.State
	Timing     *state.Timing
	JournalDir string

	stats   Stats
	limiter *rate.Limiter
	ready   bool
}

type advancer interface {
	Advance(d time.Duration)
}

func (r *Runner) init() {
	if r.ready {
		return
	}
	r.ready = true
	r.limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	if r.Timing != nil {
		prev := r.Scheduler.OnFinish
		r.Scheduler.OnFinish = func(ev scheduler.Event) {
			if prev != nil {
				prev(ev)
			}
			r.Timing.Add(state.TimingEntry{
				ID:      ev.ID.String(),
				Task:    ev.Name,
				Owner:   ev.Owner,
				Start:   ev.Start,
				End:     ev.End,
				Outcome: ev.Outcome.String(),
			})
		}
	}
}

// Stats returns the loop statistics so far.
func (r *Runner) Stats() Stats { return r.stats }

// Step runs a single tick and returns the resolved frame.
func (r *Runner) Step() *ops.Values {
	r.init()
	start := time.Now()
	if r.BeforeTick != nil {
		r.BeforeTick(r.stats.Ticks)
	}
	v := r.Scheduler.Tick(r.Source)
	for _, m := range r.Mechanisms {
		m.Apply(v)
	}
	r.record(time.Since(start))
	return v
}

func (r *Runner) record(elapsed time.Duration) {
	r.stats.Ticks++
	r.stats.LastTick = elapsed
	if elapsed > r.stats.MaxTick {
		r.stats.MaxTick = elapsed
	}
	if r.Period > 0 && elapsed > r.Period {
		r.stats.Overruns++
		if r.limiter.Allow() {
			r.Log.Warn().Dur("elapsed", elapsed).Dur("period", r.Period).
				Uint64("overruns", r.stats.Overruns).Msg("tick overran period")
		}
	}
}

// Run ticks every Period until ctx is done, then shuts down. The returned
// error is ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	r.init()
	if err := r.begin(); err != nil {
		return err
	}
	ticker := time.NewTicker(r.Period)
	defer ticker.Stop()

	r.Log.Info().Dur("period", r.Period).Msg("control loop started")
	for {
		select {
		case <-ctx.Done():
			r.finish(state.StatusInterrupted)
			return ctx.Err()
		case <-ticker.C:
			r.Step()
		}
	}
}

// RunTicks runs n ticks back to back without waiting on the wall clock,
// advancing a manual clock by Period after each one, then shuts down.
func (r *Runner) RunTicks(ctx context.Context, n int) error {
	r.init()
	if err := r.begin(); err != nil {
		return err
	}
	adv, _ := r.Clock.(advancer)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			r.finish(state.StatusInterrupted)
			return ctx.Err()
		}
		r.Step()
		if adv != nil {
			adv.Advance(r.Period)
		}
	}
	r.finish(state.StatusCompleted)
	return nil
}

// Shutdown cancels every running task and applies one more frame with a
// neutral source so the End writes and neutral baseline reach the
// mechanisms. Input toggles are cleared first, so no toggled operation
// stays on. Latched mode selections (hood, intake) are kept: they describe
// where a mechanism is, not a command to keep moving.
func (r *Runner) Shutdown() *ops.Values {
	r.init()
	r.Scheduler.CancelAll()
	r.Scheduler.ResetInput()
	v := r.Scheduler.Tick(neutralSource{})
	for _, m := range r.Mechanisms {
		m.Apply(v)
	}
	return v
}

func (r *Runner) begin() error {
	if r.JournalDir == "" || r.State == nil {
		return nil
	}
	if err := state.EnsureDir(r.JournalDir); err != nil {
		return err
	}
	r.State.Status = state.StatusRunning
	return r.State.Save(r.JournalDir)
}

// finish shuts the loop down and writes the journal, logging rather than
// returning journal errors.
func (r *Runner) finish(status string) {
	r.Shutdown()
	r.Log.Info().Uint64("ticks", r.stats.Ticks).Uint64("overruns", r.stats.Overruns).
		Dur("max_tick", r.stats.MaxTick).Str("status", status).Msg("control loop stopped")
	if r.JournalDir == "" {
		return
	}
	if r.State != nil {
		r.State.Status = status
		r.State.Record(r.stats.Ticks, r.stats.Overruns, r.stats.MaxTick)
		if err := r.State.Save(r.JournalDir); err != nil {
			r.Log.Warn().Err(err).Msg("failed to save state")
		}
	}
	if r.Timing != nil {
		if err := r.Timing.Flush(r.JournalDir); err != nil {
			r.Log.Warn().Err(err).Msg("failed to flush timing")
		}
	}
}

type neutralSource struct{}

func (neutralSource) Digital(string) bool   { return false }
func (neutralSource) Analog(string) float64 { return 0 }
