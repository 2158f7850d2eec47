package simio

import (
	"math"
	"time"

	"github.com/jorge-barreto/drivectl/internal/behaviors"
	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
)

// Plant is a first-order model of the robot. It consumes resolved frames and
// reports the pose and flywheel speed back to behaviors.
type Plant struct {
	// MaxSpeed is the drive speed in m/s at a command of 1.
	MaxSpeed float64
	// MaxTurn is the turn rate in deg/s at an omega command of 1.
	MaxTurn float64
	// SpinUp is the flywheel time constant.
	SpinUp time.Duration

	clock   clock.Clock
	last    time.Duration
	started bool

	pose    behaviors.Pose
	shooter float64
}

// NewPlant returns a plant at the origin.
func NewPlant(clk clock.Clock) *Plant {
	return &Plant{MaxSpeed: 3, MaxTurn: 360, SpinUp: 400 * time.Millisecond, clock: clk}
}

func (p *Plant) Pose() behaviors.Pose  { return p.pose }
func (p *Plant) ShooterSpeed() float64 { return p.shooter }

// Apply integrates one frame over the time since the previous one.
func (p *Plant) Apply(v ops.Reader) {
	now := p.clock.Now()
	var dt float64
	if p.started {
		dt = (now - p.last).Seconds()
	}
	p.last, p.started = now, true

	if v.Digital(ops.DriveResetGyro) {
		p.pose.Heading = 0
	}
	scale := p.MaxSpeed
	if v.Digital(ops.DriveSlow) {
		scale /= 2
	}
	vx, vy := v.Analog(ops.DriveX)*scale, v.Analog(ops.DriveY)*scale
	if !v.Digital(ops.DriveFieldCentric) {
		rad := p.pose.Heading * math.Pi / 180
		vx, vy = vx*math.Cos(rad)-vy*math.Sin(rad), vx*math.Sin(rad)+vy*math.Cos(rad)
	}
	p.pose.X += vx * dt
	p.pose.Y += vy * dt
	if !v.Digital(ops.SkipOmegaOnZeroDelta) {
		p.pose.Heading = math.Mod(p.pose.Heading+v.Analog(ops.DriveOmega)*p.MaxTurn*dt, 360)
	}

	target := 0.0
	if v.Digital(ops.ShooterSpin) {
		target = v.Analog(ops.ShooterRPM)
	}
	if p.SpinUp > 0 {
		k := math.Min(1, dt/p.SpinUp.Seconds())
		p.shooter += (target - p.shooter) * k
	} else {
		p.shooter = target
	}
}
