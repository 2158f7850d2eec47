package pid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jorge-barreto/drivectl/internal/clock"
)

const period = 20 * time.Millisecond

func TestCalculate_ProportionalOnly(t *testing.T) {
	clk := &clock.Manual{}
	wide := New(Config{KP: 1, MinOutput: -100, MaxOutput: 100}, clk)
	assert.Equal(t, 10.0, wide.Calculate(10, 0))

	narrow := New(Config{KP: 1, MinOutput: -5, MaxOutput: 5}, clk)
	assert.Equal(t, 5.0, narrow.Calculate(10, 0))
}

func TestCalculate_FirstCallHasNoDerivativeKick(t *testing.T) {
	clk := &clock.Manual{}
	c := New(Config{KD: 1, MinOutput: -1000, MaxOutput: 1000}, clk)
	assert.Equal(t, 0.0, c.Calculate(10, 0))

	clk.Advance(period)
	// error goes 10 -> 8 over 20ms
	assert.InDelta(t, -100.0, c.Calculate(10, 2), 1e-9)
}

func TestCalculate_IntegralAccumulates(t *testing.T) {
	clk := &clock.Manual{}
	c := New(Config{KI: 1, MinOutput: -10, MaxOutput: 10}, clk)
	c.Calculate(1, 0)
	for i := 0; i < 50; i++ {
		clk.Advance(period)
		c.Calculate(1, 0)
	}
	// 50 ticks * 20ms * error 1
	assert.InDelta(t, 1.0, c.Calculate(1, 1), 1e-9)
}

func TestCalculate_FeedForward(t *testing.T) {
	clk := &clock.Manual{}
	c := New(Config{KF: 0.5, OutputScale: 2, MinOutput: -100, MaxOutput: 100}, clk)
	assert.Equal(t, 3.0, c.Calculate(3, 3))
}

func TestCalculate_AntiWindupRecoversFaster(t *testing.T) {
	cfg := Config{KP: 0.5, KI: 1, MinOutput: -1, MaxOutput: 1}

	drive := func(windup bool) float64 {
		clk := &clock.Manual{}
		c := New(cfg, clk)
		c.windup = windup
		for i := 0; i < 100; i++ {
			c.Calculate(10, 0)
			clk.Advance(period)
		}
		return c.Calculate(0, 1)
	}

	guarded := drive(false)
	naive := drive(true)
	assert.Less(t, guarded, 0.0, "anti-windup output should reverse immediately")
	assert.Equal(t, 1.0, naive, "wound-up integral keeps the output pinned")
}

func TestReset_ClearsState(t *testing.T) {
	clk := &clock.Manual{}
	c := New(Config{KI: 1, KD: 1, MinOutput: -100, MaxOutput: 100}, clk)
	c.Calculate(5, 0)
	clk.Advance(period)
	c.Calculate(5, 0)
	c.Reset()
	assert.False(t, c.AtSetpoint(100))

	clk.Advance(time.Second)
	assert.Equal(t, 0.0, c.Calculate(5, 0), "first call after reset has dt = 0")
}

func TestAtSetpoint(t *testing.T) {
	c := New(Config{KP: 1, MinOutput: -1, MaxOutput: 1}, &clock.Manual{})
	c.Calculate(10, 9.95)
	assert.True(t, c.AtSetpoint(0.1))
	assert.False(t, c.AtSetpoint(0.01))
	assert.InDelta(t, 0.05, c.Error(), 1e-9)
}
