package behaviors

import (
	"fmt"
	"math"
	"time"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/task"
)

// Hoods are the mutually exclusive hood positions.
var Hoods = []ops.Digital{ops.HoodClose, ops.HoodShort, ops.HoodMedium, ops.HoodLong}

// SelectHood latches one hood position.
func SelectHood(clk clock.Clock, position ops.Digital) *task.CompositeOperation {
	return task.NewCompositeOperation(clk, position, Hoods...)
}

// SetIntake latches the intake extended or retracted.
func SetIntake(clk clock.Clock, extended bool) *task.CompositeOperation {
	target := ops.IntakeRetract
	if extended {
		target = ops.IntakeExtend
	}
	return task.NewCompositeOperation(clk, target, ops.IntakeExtend, ops.IntakeRetract)
}

func stopShooter(f *task.Frame) {
	f.SetDigital(ops.ShooterSpin, false)
	f.SetAnalog(ops.ShooterRPM, 0)
	f.SetDigital(ops.Feed, false)
	f.SetAnalog(ops.HopperSpeed, 0)
}

var shooterOps = ops.NewSet(
	ops.ShooterSpin.Op(),
	ops.ShooterRPM.Op(),
	ops.Feed.Op(),
	ops.HopperSpeed.Op(),
)

// SpinUpAndShoot spins the flywheel until the measured speed is within
// tolerance of rpm, then feeds for feedFor. The spin-up is cancelled, and
// the whole sequence with it, if the flywheel does not reach speed within
// spinTimeout.
func SpinUpAndShoot(clk clock.Clock, sensors Sensors, rpm, tolerance float64, spinTimeout, feedFor time.Duration) *task.Sequence {
	spin := &task.Timed{
		Leaf: task.Leaf{
			Label: fmt.Sprintf("spin up %.0f", rpm),
			Ops:   shooterOps,
			OnUpdate: func(f *task.Frame) {
				f.SetDigital(ops.ShooterSpin, true)
				f.SetAnalog(ops.ShooterRPM, rpm)
			},
			OnEnd: stopShooter,
			Done:  func() bool { return math.Abs(sensors.ShooterSpeed()-rpm) <= tolerance },
		},
		Clock:    clk,
		Duration: spinTimeout,
	}
	feed := &task.Timed{
		Leaf: task.Leaf{
			Label: "feed",
			Ops:   shooterOps,
			OnUpdate: func(f *task.Frame) {
				f.SetDigital(ops.ShooterSpin, true)
				f.SetAnalog(ops.ShooterRPM, rpm)
				f.SetDigital(ops.Feed, true)
				f.SetAnalog(ops.HopperSpeed, 1)
			},
			OnEnd: stopShooter,
		},
		Clock:    clk,
		Duration: feedFor,
	}
	return task.NewSequence(spin, feed)
}

// RunClimber holds the climber at speed until cancelled.
func RunClimber(speed float64) *task.Leaf {
	return &task.Leaf{
		Label:    "climb",
		Ops:      ops.NewSet(ops.ClimberSpeed.Op()),
		OnUpdate: func(f *task.Frame) { f.SetAnalog(ops.ClimberSpeed, speed) },
		OnEnd:    func(f *task.Frame) { f.SetAnalog(ops.ClimberSpeed, 0) },
	}
}

// AbortOn wraps a task so that it is cancelled on the first tick the flag
// operation reads true in the operator baseline.
type AbortOn struct {
	task.Task
	flag    ops.Digital
	tripped bool
}

// NewAbortOn wraps t.
func NewAbortOn(t task.Task, flag ops.Digital) *AbortOn {
	return &AbortOn{Task: t, flag: flag}
}

func (a *AbortOn) Name() string { return task.NameOf(a.Task) }

func (a *AbortOn) Update(f *task.Frame) {
	if f.Input().Digital(a.flag) {
		a.tripped = true
		return
	}
	a.Task.Update(f)
}

func (a *AbortOn) ShouldCancel() bool { return a.tripped || a.Task.ShouldCancel() }
