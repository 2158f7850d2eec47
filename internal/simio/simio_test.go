package simio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
)

const script = `
steps:
  - at: 10
    digital: {operator.x: false}
  - at: 0
    digital: {operator.x: true}
    analog: {driver.lx: 0.5}
  - at: 10
    analog: {driver.lx: -0.25}
`

func TestParseScript_OrdersSteps(t *testing.T) {
	s, err := ParseScript([]byte(script))
	require.NoError(t, err)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, uint64(0), s.Steps[0].At)
	assert.Equal(t, uint64(10), s.Last())
	assert.Contains(t, s.Steps[1].Digital, "operator.x", "same-tick steps keep file order")
}

func TestParseScript_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseScript([]byte("steps:\n  - {at: 1, buttons: {a: true}}\n"))
	assert.Error(t, err)

	s, err := ParseScript(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Steps)
}

func TestPlayer_HoldsValuesBetweenSteps(t *testing.T) {
	s, err := ParseScript([]byte(script))
	require.NoError(t, err)
	p := NewPlayer(s)

	p.Advance(0)
	assert.True(t, p.Digital("operator.x"))
	assert.Equal(t, 0.5, p.Analog("driver.lx"))

	p.Advance(9)
	assert.True(t, p.Digital("operator.x"))

	p.Advance(10)
	assert.False(t, p.Digital("operator.x"))
	assert.Equal(t, -0.25, p.Analog("driver.lx"))
	assert.Equal(t, 3, p.Reads("operator.x"))
	assert.False(t, p.Digital("unbound"))
}

func TestPlant_IntegratesDriveAndShooter(t *testing.T) {
	clk := &clock.Manual{}
	p := NewPlant(clk)
	p.SpinUp = 0

	v := ops.NewValues()
	v.SetDigital(ops.DriveFieldCentric, true)
	v.SetAnalog(ops.DriveX, 0.5)
	v.SetDigital(ops.ShooterSpin, true)
	v.SetAnalog(ops.ShooterRPM, 3000)

	p.Apply(v)
	assert.Equal(t, 0.0, p.Pose().X, "first frame has no elapsed time")
	clk.Advance(time.Second)
	p.Apply(v)
	assert.InDelta(t, 1.5, p.Pose().X, 1e-9)
	assert.Equal(t, 3000.0, p.ShooterSpeed())

	v.SetDigital(ops.ShooterSpin, false)
	p.Apply(v)
	assert.Equal(t, 0.0, p.ShooterSpeed(), "rpm without spin is ignored")
}

func TestPlant_FlywheelLags(t *testing.T) {
	clk := &clock.Manual{}
	p := NewPlant(clk)
	v := ops.NewValues()
	v.SetDigital(ops.ShooterSpin, true)
	v.SetAnalog(ops.ShooterRPM, 1000)

	p.Apply(v)
	clk.Advance(100 * time.Millisecond)
	p.Apply(v)
	assert.InDelta(t, 250, p.ShooterSpeed(), 1e-9)
}

func TestPrinter_EveryN(t *testing.T) {
	var buf bytes.Buffer
	clk := &clock.Manual{}
	watch, err := ParseWatch([]string{"feed", "shooter-rpm"})
	require.NoError(t, err)
	pr := &Printer{W: &buf, Clock: clk, Watch: watch, Every: 2}

	for i := 0; i < 5; i++ {
		pr.Apply(ops.NewValues())
		clk.Advance(20 * time.Millisecond)
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))

	_, err = ParseWatch([]string{"warp"})
	assert.Error(t, err)
	all, err := ParseWatch(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(ops.AllDigital())+len(ops.AllAnalog()))
}
