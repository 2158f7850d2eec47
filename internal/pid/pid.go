// Package pid is a reusable feedback controller.
//
// A Controller is owned by exactly one task at a time. Controllers are built
// once and reused across activations, so the owning task calls Reset from
// its Begin.
package pid

import (
	"math"
	"time"

	"github.com/jorge-barreto/drivectl/internal/clock"
)

// Config holds the gains and output bounds.
type Config struct {
	KP, KI, KD, KF float64
	// OutputScale multiplies the feed-forward term.
	OutputScale float64
	MinOutput   float64
	MaxOutput   float64
}

// Controller is a PID loop with feed-forward and integral anti-windup.
type Controller struct {
	cfg   Config
	clock clock.Clock

	accumulated float64
	prevError   float64
	prevTime    time.Duration
	hasPrev     bool

	// windup disables anti-windup; tests use it as a baseline.
	windup bool
}

// New returns a controller reading dt from clk.
func New(cfg Config, clk clock.Clock) *Controller {
	return &Controller{cfg: cfg, clock: clk}
}

// Reset clears the integral and the previous error and timestamp.
func (c *Controller) Reset() {
	c.accumulated = 0
	c.prevError = 0
	c.prevTime = 0
	c.hasPrev = false
}

// Calculate returns the clamped output for the given setpoint and
// measurement. The first call after New or Reset uses dt = 0, so it has no
// derivative kick and adds nothing to the integral. The integral is frozen on
// any call whose unclamped output falls outside the bounds.
func (c *Controller) Calculate(setpoint, measurement float64) float64 {
	now := c.clock.Now()
	err := setpoint - measurement

	var dt float64
	if c.hasPrev {
		dt = (now - c.prevTime).Seconds()
	}

	var deriv float64
	if dt > 0 {
		deriv = (err - c.prevError) / dt
	}

	integral := c.accumulated + err*dt
	ff := c.cfg.KF * setpoint * c.cfg.OutputScale
	out := c.cfg.KP*err + c.cfg.KI*integral + c.cfg.KD*deriv + ff

	if c.windup || (out >= c.cfg.MinOutput && out <= c.cfg.MaxOutput) {
		c.accumulated = integral
	} else {
		out = c.cfg.KP*err + c.cfg.KI*c.accumulated + c.cfg.KD*deriv + ff
	}

	c.prevError = err
	c.prevTime = now
	c.hasPrev = true

	return math.Max(c.cfg.MinOutput, math.Min(c.cfg.MaxOutput, out))
}

// AtSetpoint reports whether the last error was within tolerance.
func (c *Controller) AtSetpoint(tolerance float64) bool {
	return c.hasPrev && math.Abs(c.prevError) <= tolerance
}

// Error returns the error seen by the last Calculate.
func (c *Controller) Error() float64 { return c.prevError }
