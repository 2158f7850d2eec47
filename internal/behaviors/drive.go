// Package behaviors holds the concrete robot tasks bound to macros and
// autonomous routines.
package behaviors

import (
	"fmt"
	"math"
	"time"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/pid"
	"github.com/jorge-barreto/drivectl/internal/task"
)

// Pose is a field position in meters with a heading in degrees.
type Pose struct {
	X, Y    float64
	Heading float64
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Sensors is the robot state behaviors read back.
type Sensors interface {
	Pose() Pose
	// ShooterSpeed is the measured flywheel speed in rpm.
	ShooterSpeed() float64
}

var driveOps = ops.NewSet(
	ops.DriveX.Op(),
	ops.DriveY.Op(),
	ops.DriveOmega.Op(),
	ops.DriveFieldCentric.Op(),
)

func stopDrive(f *task.Frame) {
	f.SetAnalog(ops.DriveX, 0)
	f.SetAnalog(ops.DriveY, 0)
	f.SetAnalog(ops.DriveOmega, 0)
	f.SetDigital(ops.DriveFieldCentric, false)
}

// DriveToPosition drives field-centric to a target pose with one PID per
// axis. It completes when both axes are within tolerance and is cancelled
// if the timeout runs out first.
type DriveToPosition struct {
	task.Timed

	sensors   Sensors
	target    Pose
	tolerance float64
	x, y      *pid.Controller
}

// NewDriveToPosition builds the task. The controllers are owned by the task
// and reset on every Begin.
func NewDriveToPosition(clk clock.Clock, sensors Sensors, target Pose, tolerance float64, timeout time.Duration, gains pid.Config) *DriveToPosition {
	return &DriveToPosition{
		Timed: task.Timed{
			Leaf:     task.Leaf{Label: "drive to " + target.String(), Ops: driveOps},
			Clock:    clk,
			Duration: timeout,
		},
		sensors:   sensors,
		target:    target,
		tolerance: tolerance,
		x:         pid.New(gains, clk),
		y:         pid.New(gains, clk),
	}
}

func (d *DriveToPosition) Begin(f *task.Frame) {
	d.Timed.Begin(f)
	d.x.Reset()
	d.y.Reset()
}

func (d *DriveToPosition) Update(f *task.Frame) {
	p := d.sensors.Pose()
	f.SetDigital(ops.DriveFieldCentric, true)
	f.SetAnalog(ops.DriveX, d.x.Calculate(d.target.X, p.X))
	f.SetAnalog(ops.DriveY, d.y.Calculate(d.target.Y, p.Y))
	f.SetAnalog(ops.DriveOmega, 0)
}

func (d *DriveToPosition) HasCompleted() bool {
	return d.x.AtSetpoint(d.tolerance) && d.y.AtSetpoint(d.tolerance)
}

func (d *DriveToPosition) ShouldCancel() bool { return d.Expired() }

func (d *DriveToPosition) End(f *task.Frame) { stopDrive(f) }

// Remaining is the straight-line distance left as of the last update.
func (d *DriveToPosition) Remaining() float64 {
	return math.Hypot(d.x.Error(), d.y.Error())
}

// DriveFor drives at a fixed robot-relative velocity for d.
func DriveFor(clk clock.Clock, d time.Duration, x, y float64) *task.Timed {
	return &task.Timed{
		Leaf: task.Leaf{
			Label: fmt.Sprintf("drive %.2f,%.2f for %s", x, y, d),
			Ops:   driveOps,
			OnUpdate: func(f *task.Frame) {
				f.SetAnalog(ops.DriveX, x)
				f.SetAnalog(ops.DriveY, y)
				f.SetAnalog(ops.DriveOmega, 0)
			},
			OnEnd: stopDrive,
		},
		Clock:    clk,
		Duration: d,
	}
}
