// Package scheduler runs task trees against the input layer once per tick
// and resolves the frame's authoritative operation values.
package scheduler

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/input"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/task"
)

// Factory builds a fresh task for one macro activation.
type Factory func() task.Task

// Macro registers a task factory with the operations it may override.
type Macro struct {
	Macro  ops.Macro
	Claims ops.Set
	New    Factory
}

// ErrClaimsExceeded reports a macro whose task claims operations outside the
// macro's permitted list.
var ErrClaimsExceeded = errors.New("task claims exceed macro permissions")

// ErrNoFactory reports a macro registered without a factory.
var ErrNoFactory = errors.New("macro has no task factory")

// Event records one finished activation.
type Event struct {
	ID      uuid.UUID
	Name    string
	Owner   string
	Claims  ops.Set
	Start   time.Duration
	End     time.Duration
	Outcome task.State
}

// Activation describes a running root task.
type Activation struct {
	ID     uuid.UUID
	Name   string
	Owner  string
	State  task.State
	Claims ops.Set
	Start  time.Duration
}

type root struct {
	id       uuid.UUID
	name     string
	owner    string
	macro    ops.Macro
	hasMacro bool
	node     *task.Node
	claims   ops.Set
	start    time.Duration
	panicked bool
}

// Scheduler owns the active task roots, the override table and the latched
// mode selections. It is single-threaded: every method must be called from
// the control loop goroutine.
type Scheduler struct {
	// OnFinish, if set, is called for every activation that terminates.
	OnFinish func(Event)

	layer  *input.Layer
	clock  clock.Clock
	log    zerolog.Logger
	macros map[ops.Macro]Macro

	roots   []*root
	table   *table
	ending  ops.Set
	last    *ops.Values
	history []Event
}

const historySize = 256

// New validates the macro registrations and returns a scheduler. Each
// factory is invoked once here to check that its task stays inside the
// macro's permitted claims.
func New(layer *input.Layer, clk clock.Clock, log zerolog.Logger, macros []Macro) (*Scheduler, error) {
	reg := make(map[ops.Macro]Macro, len(macros))
	for _, m := range macros {
		if m.New == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoFactory, m.Macro)
		}
		if _, dup := reg[m.Macro]; dup {
			return nil, fmt.Errorf("macro %s registered twice", m.Macro)
		}
		if claims := m.New().Claims(); !claims.SubsetOf(m.Claims) {
			return nil, fmt.Errorf("%w: %s claims %s, permitted %s", ErrClaimsExceeded, m.Macro, claims, m.Claims)
		}
		reg[m.Macro] = m
	}
	return &Scheduler{
		layer:  layer,
		clock:  clk,
		log:    log,
		macros: reg,
		table:  newTable(),
		ending: make(ops.Set),
		last:   ops.NewValues(),
	}, nil
}

// Tick runs one control cycle: poll input, react to macro buttons, step every
// active root in activation order, and resolve the frame.
func (s *Scheduler) Tick(src input.Source) *ops.Values {
	now := s.clock.Now()
	snap := s.layer.Poll(src)
	f := task.NewFrame(now, snap.Values, s.table)

	inEffect := s.ending
	s.ending = make(ops.Set)

	for _, ev := range snap.Macros {
		s.handleMacro(f, ev, inEffect)
	}
	for _, r := range s.roots {
		for op := range r.claims {
			inEffect.Add(op)
		}
		s.step(f, r)
	}
	s.reap(now)

	s.last = s.resolve(snap.Values, inEffect)
	return s.last
}

// Values returns the most recently resolved frame.
func (s *Scheduler) Values() ops.Reader { return s.last }

// Start activates t outside of any macro, e.g. an autonomous routine. Roots
// whose claims intersect t's are cancelled immediately. The task begins on
// the next tick.
func (s *Scheduler) Start(owner string, t task.Task) uuid.UUID {
	f := task.NewFrame(s.clock.Now(), s.last, s.table)
	r := s.activate(f, owner, t, t.Claims(), s.ending)
	return r.id
}

// Cancel cancels the root with the given id. It reports whether a running
// root was found.
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	f := task.NewFrame(s.clock.Now(), s.last, s.table)
	for _, r := range s.roots {
		if r.id == id && !r.node.State().Terminal() {
			s.cancelRoot(f, r, s.ending, "requested")
			s.reap(f.Now())
			return true
		}
	}
	return false
}

// CancelAll cancels every running root.
func (s *Scheduler) CancelAll() {
	f := task.NewFrame(s.clock.Now(), s.last, s.table)
	s.cancelAll(f, s.ending)
	s.reap(f.Now())
}

// ResetInput drops the input layer's edge and toggle state. The next tick
// polls as if the controller had just started.
func (s *Scheduler) ResetInput() { s.layer.Reset() }

// Active lists the running roots in activation order.
func (s *Scheduler) Active() []Activation {
	out := make([]Activation, 0, len(s.roots))
	for _, r := range s.roots {
		out = append(out, Activation{
			ID: r.id, Name: r.name, Owner: r.owner,
			State: r.node.State(), Claims: r.claims, Start: r.start,
		})
	}
	return out
}

// History returns the most recent finished activations, oldest first.
func (s *Scheduler) History() []Event {
	return append([]Event(nil), s.history...)
}

func (s *Scheduler) handleMacro(f *task.Frame, ev input.MacroEvent, inEffect ops.Set) {
	if ev.Macro == ops.MacroCancelAll {
		if ev.Kind == input.MacroPressed {
			s.log.Info().Msg("cancel-all pressed")
			s.cancelAll(f, inEffect)
		}
		return
	}
	m, ok := s.macros[ev.Macro]
	if !ok {
		return
	}
	running := s.rootFor(ev.Macro)

	switch ev.Kind {
	case input.MacroPressed:
		if ev.Mode == input.ToggleMode && running != nil {
			s.cancelRoot(f, running, inEffect, "toggled off")
			return
		}
		t := m.New()
		r := s.activate(f, "macro:"+ev.Macro.String(), t, m.Claims, inEffect)
		r.macro, r.hasMacro = ev.Macro, true
	case input.MacroReleased:
		if ev.Mode == input.Hold && running != nil {
			s.cancelRoot(f, running, inEffect, "released")
		}
	}
}

func (s *Scheduler) rootFor(m ops.Macro) *root {
	for _, r := range s.roots {
		if r.hasMacro && r.macro == m && !r.node.State().Terminal() {
			return r
		}
	}
	return nil
}

// activate cancels every running root whose claims intersect claims, then
// appends a new root. Last claim wins.
func (s *Scheduler) activate(f *task.Frame, owner string, t task.Task, claims ops.Set, inEffect ops.Set) *root {
	for _, r := range s.roots {
		if !r.node.State().Terminal() && r.claims.Intersects(claims) {
			s.cancelRoot(f, r, inEffect, "preempted by "+owner)
		}
	}
	r := &root{
		id:     uuid.New(),
		name:   task.NameOf(t),
		owner:  owner,
		node:   task.NewNode(t),
		claims: claims,
		start:  f.Now(),
	}
	s.roots = append(s.roots, r)
	s.log.Debug().Str("id", r.id.String()).Str("task", r.name).Str("owner", owner).
		Str("claims", claims.String()).Msg("task activated")
	return r
}

func (s *Scheduler) cancelAll(f *task.Frame, inEffect ops.Set) {
	for _, r := range s.roots {
		if !r.node.State().Terminal() {
			s.cancelRoot(f, r, inEffect, "cancel-all")
		}
	}
}

// cancelRoot ends the whole tree under r. Its claims stay in effect for the
// current frame so the neutral values written by End are applied once.
func (s *Scheduler) cancelRoot(f *task.Frame, r *root, inEffect ops.Set, reason string) {
	for op := range r.claims {
		inEffect.Add(op)
	}
	s.log.Info().Str("id", r.id.String()).Str("task", r.name).Str("reason", reason).Msg("task cancelled")
	s.guard(r, func() {
		s.table.allow = r.claims
		r.node.Cancel(f)
	})
}

// step runs one root for the tick. A panic inside the tree is logged and the
// root is cancelled so one faulty task cannot stall the loop.
func (s *Scheduler) step(f *task.Frame, r *root) {
	if r.node.State().Terminal() {
		return
	}
	s.guard(r, func() {
		s.table.allow = r.claims
		r.node.Step(f)
	})
	if r.panicked && !r.node.State().Terminal() {
		s.guard(r, func() {
			s.table.allow = r.claims
			r.node.Cancel(f)
		})
	}
}

func (s *Scheduler) guard(r *root, fn func()) {
	defer func() {
		s.table.allow = nil
		if p := recover(); p != nil {
			r.panicked = true
			s.log.Error().Str("id", r.id.String()).Str("task", r.name).
				Str("panic", fmt.Sprint(p)).Str("stack", string(debug.Stack())).
				Msg("task panicked; cancelling")
		}
	}()
	fn()
}

// reap drops terminated roots and records their events.
func (s *Scheduler) reap(now time.Duration) {
	kept := s.roots[:0]
	for _, r := range s.roots {
		st := r.node.State()
		if !st.Terminal() {
			kept = append(kept, r)
			continue
		}
		if r.panicked {
			st = task.Cancelled
		}
		ev := Event{ID: r.id, Name: r.name, Owner: r.owner, Claims: r.claims, Start: r.start, End: now, Outcome: st}
		s.history = append(s.history, ev)
		if len(s.history) > historySize {
			s.history = s.history[len(s.history)-historySize:]
		}
		s.log.Debug().Str("id", r.id.String()).Str("task", r.name).Str("outcome", st.String()).
			Dur("ran", now-r.start).Msg("task finished")
		if s.OnFinish != nil {
			s.OnFinish(ev)
		}
	}
	for i := len(kept); i < len(s.roots); i++ {
		s.roots[i] = nil
	}
	s.roots = kept
}

// resolve builds the frame's authoritative values: the baseline, then
// latched selections, then overrides for every operation claimed this tick.
// Overrides for operations no longer claimed by a running root are dropped.
func (s *Scheduler) resolve(baseline *ops.Values, inEffect ops.Set) *ops.Values {
	out := baseline.Clone()
	for op, v := range s.table.latched {
		out.Set(op, v)
	}
	for op, v := range s.table.overrides {
		if inEffect.Has(op) {
			out.Set(op, v)
		}
	}

	live := make(ops.Set)
	for _, r := range s.roots {
		for op := range r.claims {
			live.Add(op)
		}
	}
	for op := range s.table.overrides {
		if !live.Has(op) {
			delete(s.table.overrides, op)
		}
	}
	return out
}
