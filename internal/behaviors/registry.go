package behaviors

import (
	"sort"
	"time"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/pid"
	"github.com/jorge-barreto/drivectl/internal/scheduler"
	"github.com/jorge-barreto/drivectl/internal/task"
)

// Tuning holds the constants behaviors are built with.
type Tuning struct {
	ShooterRPM     float64
	RPMTolerance   float64
	SpinTimeout    time.Duration
	FeedTime       time.Duration
	ClimbSpeed     float64
	Target         Pose
	DriveTolerance float64
	DriveTimeout   time.Duration
	DriveGains     pid.Config
}

// DefaultTuning returns the tuning used when the config leaves a value out.
func DefaultTuning() Tuning {
	return Tuning{
		ShooterRPM:     3500,
		RPMTolerance:   100,
		SpinTimeout:    3 * time.Second,
		FeedTime:       time.Second,
		ClimbSpeed:     0.8,
		Target:         Pose{X: 2, Y: 0},
		DriveTolerance: 0.05,
		DriveTimeout:   4 * time.Second,
		DriveGains:     pid.Config{KP: 1.5, KI: 0.1, KD: 0.05, MinOutput: -1, MaxOutput: 1},
	}
}

// Registry maps macros and autonomous routine names to task factories.
type Registry struct {
	clock    clock.Clock
	sensors  Sensors
	tuning   Tuning
	macros   map[ops.Macro]scheduler.Factory
	routines map[string]scheduler.Factory
}

// NewRegistry builds the factories for every macro the robot supports.
// Cancel-all is handled by the scheduler and has no factory.
func NewRegistry(clk clock.Clock, sensors Sensors, tuning Tuning) *Registry {
	r := &Registry{clock: clk, sensors: sensors, tuning: tuning}

	hood := func(position ops.Digital) scheduler.Factory {
		return func() task.Task { return SelectHood(clk, position) }
	}
	r.macros = map[ops.Macro]scheduler.Factory{
		ops.MacroShoot:         r.shoot,
		ops.MacroDriveToTarget: r.driveToTarget,
		ops.MacroHoodClose:     hood(ops.HoodClose),
		ops.MacroHoodShort:     hood(ops.HoodShort),
		ops.MacroHoodMedium:    hood(ops.HoodMedium),
		ops.MacroHoodLong:      hood(ops.HoodLong),
		ops.MacroIntakeExtend:  func() task.Task { return SetIntake(clk, true) },
		ops.MacroIntakeRetract: func() task.Task { return SetIntake(clk, false) },
		ops.MacroClimb:         func() task.Task { return RunClimber(tuning.ClimbSpeed) },
	}

	r.routines = map[string]scheduler.Factory{
		"do-nothing": func() task.Task { return task.Wait(clk, 0) },
		"shoot-only": func() task.Task {
			return NewAbortOn(task.NewSequence(SelectHood(clk, ops.HoodShort), r.shoot()), ops.AutoAbort)
		},
		"drive-and-shoot": func() task.Task {
			return NewAbortOn(task.NewSequence(
				task.NewAll(r.driveToTarget(), SelectHood(clk, ops.HoodMedium), SetIntake(clk, false)),
				r.shoot(),
			), ops.AutoAbort)
		},
		"taxi": func() task.Task {
			return NewAbortOn(task.NewAny(
				DriveFor(clk, 2*time.Second, 0, 0.5),
				task.Wait(clk, 3*time.Second),
			), ops.AutoAbort)
		},
	}
	return r
}

func (r *Registry) shoot() task.Task {
	t := r.tuning
	return SpinUpAndShoot(r.clock, r.sensors, t.ShooterRPM, t.RPMTolerance, t.SpinTimeout, t.FeedTime)
}

func (r *Registry) driveToTarget() task.Task {
	t := r.tuning
	return NewDriveToPosition(r.clock, r.sensors, t.Target, t.DriveTolerance, t.DriveTimeout, t.DriveGains)
}

// Macro returns the factory bound to m.
func (r *Registry) Macro(m ops.Macro) (scheduler.Factory, bool) {
	f, ok := r.macros[m]
	return f, ok
}

// Routine returns the autonomous routine registered under name.
func (r *Registry) Routine(name string) (scheduler.Factory, bool) {
	f, ok := r.routines[name]
	return f, ok
}

// Routines lists the autonomous routine names in sorted order.
func (r *Registry) Routines() []string {
	names := make([]string, 0, len(r.routines))
	for n := range r.routines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
