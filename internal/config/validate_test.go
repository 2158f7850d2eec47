package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/scheduler"
	"github.com/jorge-barreto/drivectl/internal/task"
)

const fullYAML = `
name: practice-bot
period: 10ms
shifts:
  - {shift: debug, source: driver.back, button: simple}
digital:
  - {op: drive-slow, source: driver.lb}
  - {op: intake-extend, source: operator.a, button: click, shift: debug}
  - {op: intake-extend, source: operator.b, button: toggle, not-shift: [debug]}
analog:
  - {op: drive-x, source: driver.lx, deadzone: [-0.1, 0.1], transform: square}
  - {op: shooter-rpm, source: operator.rt, scale: 5000}
angles:
  - {op: drive-angle, x: driver.rx, y: driver.ry}
macros:
  - {macro: shoot, source: operator.x, mode: press, claims: [shooter-spin, shooter-rpm, feed, hopper-speed]}
  - {macro: climb, source: operator.y, mode: hold}
  - {macro: cancel-all, source: operator.start}
autonomous:
  routine: shoot-only
tuning:
  shooter-rpm: 4200
  feed-time: 1500ms
  target: [3, 1]
`

func parse(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	return Parse([]byte(doc))
}

func minimal(extra string) string {
	return "name: test\n" + extra
}

func TestParse_FullDocument(t *testing.T) {
	cfg, err := parse(t, fullYAML)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.TickPeriod)
	b := cfg.Bindings()
	require.Len(t, b.Shifts, 1)
	assert.Equal(t, ops.ShiftDebug, b.Shifts[0].Shift)

	require.Len(t, b.Digital, 3)
	assert.Equal(t, ops.Gate{Require: ops.ShiftDebug}, b.Digital[1].Gate)
	assert.Equal(t, ops.Gate{Exclude: ops.ShiftDebug}, b.Digital[2].Gate)

	require.Len(t, b.Analog, 2)
	assert.Equal(t, 1.0, b.Analog[0].Scale, "scale defaults to 1")
	assert.InDelta(t, -0.25, b.Analog[0].Apply(-0.5), 1e-9, "square keeps the sign")
	assert.Equal(t, 5000.0, b.Analog[1].Apply(1))

	require.Len(t, b.Angles, 1)
	assert.Equal(t, 0.2, b.Angles[0].MinMagnitude)
	assert.Equal(t, ops.SkipOmegaOnZeroDelta, b.Angles[0].SkipFlag)

	assert.Len(t, b.Macros, 3)
	assert.Equal(t, "shoot-only", cfg.Autonomous.Routine)

	tuning := cfg.BehaviorTuning()
	assert.Equal(t, 4200.0, tuning.ShooterRPM)
	assert.Equal(t, 1500*time.Millisecond, tuning.FeedTime)
	assert.Equal(t, 3*time.Second, tuning.SpinTimeout, "unset durations keep defaults")
	assert.Equal(t, 3.0, tuning.Target.X)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullYAML), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "practice-bot", cfg.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_NameRequired(t *testing.T) {
	_, err := parse(t, "period: 20ms\n")
	if err == nil || !strings.Contains(err.Error(), "'name' is required") {
		t.Fatalf("expected name required error, got %v", err)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := parse(t, "")
	if err == nil || !strings.Contains(err.Error(), "empty document") {
		t.Fatalf("got %v", err)
	}
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	_, err := parse(t, minimal("hot-reload: true\n"))
	if err == nil || !strings.Contains(err.Error(), "hot-reload") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_PeriodDefaultsAndBounds(t *testing.T) {
	cfg, err := parse(t, minimal(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultPeriod, cfg.TickPeriod)
	assert.Equal(t, "do-nothing", cfg.Autonomous.Routine)

	_, err = parse(t, minimal("period: 0s\n"))
	if err == nil || !strings.Contains(err.Error(), "period must be > 0") {
		t.Fatalf("got %v", err)
	}
	_, err = parse(t, minimal("period: fast\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("got %v", err)
	}
}

func TestValidate_UnknownOperation(t *testing.T) {
	_, err := parse(t, minimal("digital:\n  - {op: warp-drive, source: driver.a}\n"))
	assert.True(t, errors.Is(err, ErrUnknownOperation), "got %v", err)

	// an analog op is not a digital op
	_, err = parse(t, minimal("digital:\n  - {op: drive-x, source: driver.a}\n"))
	assert.True(t, errors.Is(err, ErrUnknownOperation), "got %v", err)
}

func TestValidate_UnknownMacro(t *testing.T) {
	_, err := parse(t, minimal("macros:\n  - {macro: dance, source: driver.a}\n"))
	assert.True(t, errors.Is(err, ErrUnknownMacro), "got %v", err)
}

func TestValidate_DuplicateClaim(t *testing.T) {
	_, err := parse(t, minimal("macros:\n  - {macro: shoot, source: driver.a, claims: [feed, feed]}\n"))
	assert.True(t, errors.Is(err, ErrDuplicateClaim), "got %v", err)
}

func TestValidate_AmbiguousBinding(t *testing.T) {
	doc := minimal(`digital:
  - {op: feed, source: driver.a, shift: debug}
  - {op: feed, source: driver.b, shift: [debug]}
`)
	_, err := parse(t, doc)
	assert.True(t, errors.Is(err, ErrAmbiguousBinding), "got %v", err)
}

func TestValidate_OverlappingGatesAllowed(t *testing.T) {
	doc := minimal(`shifts:
  - {shift: debug, source: driver.back}
digital:
  - {op: feed, source: driver.a}
  - {op: feed, source: driver.b, shift: debug}
`)
	_, err := parse(t, doc)
	assert.NoError(t, err)
}

func TestValidate_BadFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"source format", "digital:\n  - {op: feed, source: A}\n", "device.input"},
		{"missing source", "digital:\n  - {op: feed}\n", "'source' is required"},
		{"button", "digital:\n  - {op: feed, source: d.a, button: double}\n", "unknown button"},
		{"shift", "digital:\n  - {op: feed, source: d.a, shift: turbo}\n", "unknown shift"},
		{"shift clash", "digital:\n  - {op: feed, source: d.a, shift: debug, not-shift: debug}\n", "both required and excluded"},
		{"deadzone order", "analog:\n  - {op: drive-x, source: d.x, deadzone: [0.1, -0.1]}\n", "above high"},
		{"deadzone arity", "analog:\n  - {op: drive-x, source: d.x, deadzone: [0.1]}\n", "[low, high]"},
		{"transform", "analog:\n  - {op: drive-x, source: d.x, transform: log}\n", "unknown transform"},
		{"skip flag", "angles:\n  - {op: drive-angle, x: d.x, y: d.y, skip-flag: drive-x}\n", "skip-flag"},
		{"mode", "macros:\n  - {macro: shoot, source: d.a, mode: latch}\n", "unknown macro mode"},
		{"cancel-all claims", "macros:\n  - {macro: cancel-all, source: d.a, claims: [feed]}\n", "cannot claim"},
		{"shift none", "shifts:\n  - {shift: none, source: d.a}\n", "unknown shift"},
		{"shift twice", "shifts:\n  - {shift: debug, source: d.a}\n  - {shift: debug, source: d.b}\n", "bound twice"},
		{"target", "tuning:\n  target: [1]\n", "tuning.target"},
		{"pid bounds", "tuning:\n  drive-pid: {kp: 1, min: 1, max: -1}\n", "drive-pid"},
		{"tuning duration", "tuning:\n  feed-time: soon\n", "tuning.feed-time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, minimal(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

type fakeFactories struct {
	macros   map[ops.Macro]scheduler.Factory
	routines map[string]scheduler.Factory
}

func (f fakeFactories) Macro(m ops.Macro) (scheduler.Factory, bool) {
	fn, ok := f.macros[m]
	return fn, ok
}

func (f fakeFactories) Routine(name string) (scheduler.Factory, bool) {
	fn, ok := f.routines[name]
	return fn, ok
}

func leafClaiming(names ...ops.Op) scheduler.Factory {
	return func() task.Task { return &task.Leaf{Ops: ops.NewSet(names...)} }
}

func factories() fakeFactories {
	return fakeFactories{
		macros: map[ops.Macro]scheduler.Factory{
			ops.MacroShoot: leafClaiming(ops.ShooterRPM.Op(), ops.Feed.Op()),
			ops.MacroClimb: leafClaiming(ops.ClimberSpeed.Op()),
		},
		routines: map[string]scheduler.Factory{
			"shoot-only": leafClaiming(),
			"do-nothing": leafClaiming(),
		},
	}
}

func TestCompile_BuildsMacros(t *testing.T) {
	cfg, err := parse(t, fullYAML)
	require.NoError(t, err)

	c, err := Compile(cfg, factories())
	require.NoError(t, err)
	require.NotNil(t, c.Layer)
	require.Len(t, c.Macros, 2, "cancel-all is handled by the scheduler")

	assert.Equal(t, ops.MacroShoot, c.Macros[0].Macro)
	assert.True(t, c.Macros[0].Claims.Has(ops.HopperSpeed.Op()), "listed claims are kept")
	assert.Equal(t, ops.NewSet(ops.ClimberSpeed.Op()), c.Macros[1].Claims, "claims default to the task's")
	assert.Equal(t, "shoot-only", c.RoutineName)
}

func TestCompile_ClaimsExceeded(t *testing.T) {
	cfg, err := parse(t, minimal("macros:\n  - {macro: shoot, source: d.a, claims: [feed]}\n"))
	require.NoError(t, err)
	_, err = Compile(cfg, factories())
	assert.True(t, errors.Is(err, scheduler.ErrClaimsExceeded), "got %v", err)
}

func TestCompile_MissingFactory(t *testing.T) {
	cfg, err := parse(t, minimal("macros:\n  - {macro: hood-long, source: d.a}\n"))
	require.NoError(t, err)
	_, err = Compile(cfg, factories())
	assert.True(t, errors.Is(err, ErrUnknownMacro), "got %v", err)
}

func TestCompile_UnknownRoutine(t *testing.T) {
	cfg, err := parse(t, minimal("autonomous: {routine: moonwalk}\n"))
	require.NoError(t, err)
	_, err = Compile(cfg, factories())
	assert.True(t, errors.Is(err, ErrUnknownRoutine), "got %v", err)
}
