package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/jorge-barreto/drivectl/internal/behaviors"
	"github.com/jorge-barreto/drivectl/internal/input"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/pid"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrUnknownMacro     = errors.New("unknown macro")
	ErrDuplicateClaim   = errors.New("duplicate claim")
	ErrUnknownRoutine   = errors.New("unknown autonomous routine")
	ErrAmbiguousBinding = input.ErrAmbiguousBinding
)

// DefaultPeriod is the tick period used when the config leaves it out.
const DefaultPeriod = 20 * time.Millisecond

const (
	defaultMinMagnitude = 0.2
	defaultRoutine      = "do-nothing"
)

var sourceRe = regexp.MustCompile(`^[a-z][a-z0-9-]*\.[a-z0-9-]+$`)

var transforms = map[string]func(float64) float64{
	"":     nil,
	"none": nil,
	"square": func(v float64) float64 {
		return v * math.Abs(v)
	},
	"cube": func(v float64) float64 {
		return v * v * v
	},
}

// macroSpec is a macro's permitted claims. claims is nil when the config
// leaves the list out and the task's own claims are used.
type macroSpec struct {
	macro  ops.Macro
	claims ops.Set
}

// Validate checks the config for errors, sets defaults and resolves every
// name into the binding table.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("config: 'name' is required")
	}

	period, err := parseDurationField("period", cfg.Period)
	if err != nil {
		return err
	}
	if period == 0 {
		if strings.TrimSpace(cfg.Period) != "" {
			return fmt.Errorf("config: period must be > 0")
		}
		period = DefaultPeriod
	}

	var b input.Bindings

	seenShift := make(map[ops.Shift]bool)
	for i, e := range cfg.Shifts {
		path := fmt.Sprintf("shifts[%d]", i)
		sh, ok := ops.ParseShift(e.Shift)
		if !ok || sh == ops.ShiftNone {
			return fmt.Errorf("config: %s: unknown shift %q", path, e.Shift)
		}
		if seenShift[sh] {
			return fmt.Errorf("config: %s: shift %q bound twice", path, e.Shift)
		}
		seenShift[sh] = true
		if err := checkSource(path, e.Source); err != nil {
			return err
		}
		btn, err := parseButton(path, e.Button)
		if err != nil {
			return err
		}
		b.Shifts = append(b.Shifts, input.ShiftBinding{Shift: sh, Source: e.Source, Button: btn})
	}

	for i, e := range cfg.Digital {
		path := fmt.Sprintf("digital[%d]", i)
		d, ok := ops.ParseDigital(e.Op)
		if !ok {
			return fmt.Errorf("config: %s: %w %q", path, ErrUnknownOperation, e.Op)
		}
		if err := checkSource(path, e.Source); err != nil {
			return err
		}
		btn, err := parseButton(path, e.Button)
		if err != nil {
			return err
		}
		g, err := parseGate(path, e.Shift, e.NotShift)
		if err != nil {
			return err
		}
		b.Digital = append(b.Digital, input.DigitalBinding{Op: d, Source: e.Source, Button: btn, Invert: e.Invert, Gate: g})
	}

	for i := range cfg.Analog {
		e := &cfg.Analog[i]
		path := fmt.Sprintf("analog[%d]", i)
		a, ok := ops.ParseAnalog(e.Op)
		if !ok {
			return fmt.Errorf("config: %s: %w %q", path, ErrUnknownOperation, e.Op)
		}
		if err := checkSource(path, e.Source); err != nil {
			return err
		}
		var dz input.DeadZone
		switch len(e.DeadZone) {
		case 0:
		case 2:
			dz = input.DeadZone{Lo: e.DeadZone[0], Hi: e.DeadZone[1]}
			if dz.Lo > dz.Hi {
				return fmt.Errorf("config: %s: deadzone low %v is above high %v", path, dz.Lo, dz.Hi)
			}
		default:
			return fmt.Errorf("config: %s: deadzone must be [low, high]", path)
		}
		tf, ok := transforms[e.Transform]
		if !ok {
			return fmt.Errorf("config: %s: unknown transform %q (must be none, square, or cube)", path, e.Transform)
		}
		if e.Scale == 0 {
			e.Scale = 1
		}
		g, err := parseGate(path, e.Shift, e.NotShift)
		if err != nil {
			return err
		}
		b.Analog = append(b.Analog, input.AnalogBinding{
			Op: a, Source: e.Source, Invert: e.Invert, DeadZone: dz,
			Scale: e.Scale, Transform: tf, Gate: g,
		})
	}

	for i := range cfg.Angles {
		e := &cfg.Angles[i]
		path := fmt.Sprintf("angles[%d]", i)
		a, ok := ops.ParseAnalog(e.Op)
		if !ok {
			return fmt.Errorf("config: %s: %w %q", path, ErrUnknownOperation, e.Op)
		}
		if err := checkSource(path+".x", e.X); err != nil {
			return err
		}
		if err := checkSource(path+".y", e.Y); err != nil {
			return err
		}
		if e.MinMagnitude < 0 {
			return fmt.Errorf("config: %s: min-magnitude must be >= 0", path)
		}
		if e.MinMagnitude == 0 {
			e.MinMagnitude = defaultMinMagnitude
		}
		if e.SkipFlag == "" {
			e.SkipFlag = ops.SkipOmegaOnZeroDelta.String()
		}
		flag, ok := ops.ParseDigital(e.SkipFlag)
		if !ok {
			return fmt.Errorf("config: %s: skip-flag: %w %q", path, ErrUnknownOperation, e.SkipFlag)
		}
		g, err := parseGate(path, e.Shift, e.NotShift)
		if err != nil {
			return err
		}
		b.Angles = append(b.Angles, input.AngleBinding{
			Op: a, X: e.X, Y: e.Y, InvertX: e.InvertX, InvertY: e.InvertY,
			MinMagnitude: e.MinMagnitude, SkipFlag: flag, Gate: g,
		})
	}

	var specs []macroSpec
	specIdx := make(map[ops.Macro]int)
	for i, e := range cfg.Macros {
		path := fmt.Sprintf("macros[%d]", i)
		m, ok := ops.ParseMacro(e.Macro)
		if !ok {
			return fmt.Errorf("config: %s: %w %q", path, ErrUnknownMacro, e.Macro)
		}
		if err := checkSource(path, e.Source); err != nil {
			return err
		}
		mode, err := input.ParseMacroMode(e.Mode)
		if err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
		g, err := parseGate(path, e.Shift, e.NotShift)
		if err != nil {
			return err
		}
		claims, err := parseClaims(path, e.Claims)
		if err != nil {
			return err
		}
		if m == ops.MacroCancelAll && len(claims) > 0 {
			return fmt.Errorf("config: %s: cancel-all cannot claim operations", path)
		}
		b.Macros = append(b.Macros, input.MacroBinding{Macro: m, Source: e.Source, Mode: mode, Gate: g})

		if m == ops.MacroCancelAll {
			continue
		}
		if j, ok := specIdx[m]; ok {
			if claims != nil {
				specs[j].claims = specs[j].claims.Union(claims)
			}
			continue
		}
		specIdx[m] = len(specs)
		specs = append(specs, macroSpec{macro: m, claims: claims})
	}

	if _, err := input.New(b); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if cfg.Autonomous.Routine == "" {
		cfg.Autonomous.Routine = defaultRoutine
	}

	tuning, err := resolveTuning(cfg.Tuning)
	if err != nil {
		return err
	}

	cfg.TickPeriod = period
	cfg.bindings = b
	cfg.macros = specs
	cfg.tuning = tuning
	return nil
}

func checkSource(path, name string) error {
	if name == "" {
		return fmt.Errorf("config: %s: 'source' is required", path)
	}
	if !sourceRe.MatchString(name) {
		return fmt.Errorf("config: %s: source %q must look like device.input", path, name)
	}
	return nil
}

func parseButton(path, name string) (input.ButtonType, error) {
	btn, err := input.ParseButtonType(name)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", path, err)
	}
	return btn, nil
}

func parseGate(path string, require, exclude ShiftList) (ops.Gate, error) {
	req, err := ops.ParseShifts(require)
	if err != nil {
		return ops.Gate{}, fmt.Errorf("config: %s: shift: %w", path, err)
	}
	exc, err := ops.ParseShifts(exclude)
	if err != nil {
		return ops.Gate{}, fmt.Errorf("config: %s: not-shift: %w", path, err)
	}
	if req&exc != 0 {
		return ops.Gate{}, fmt.Errorf("config: %s: shift %s is both required and excluded", path, req&exc)
	}
	return ops.Gate{Require: req, Exclude: exc}, nil
}

func parseClaims(path string, names []string) (ops.Set, error) {
	if len(names) == 0 {
		return nil, nil
	}
	claims := make(ops.Set, len(names))
	for _, n := range names {
		op, ok := ops.ParseOp(n)
		if !ok {
			return nil, fmt.Errorf("config: %s: claims: %w %q", path, ErrUnknownOperation, n)
		}
		if claims.Has(op) {
			return nil, fmt.Errorf("config: %s: claims: %w %q", path, ErrDuplicateClaim, n)
		}
		claims.Add(op)
	}
	return claims, nil
}

func resolveTuning(e TuningEntry) (behaviors.Tuning, error) {
	t := behaviors.DefaultTuning()
	if e.ShooterRPM != 0 {
		t.ShooterRPM = e.ShooterRPM
	}
	if e.RPMTolerance != 0 {
		t.RPMTolerance = e.RPMTolerance
	}
	if e.ClimbSpeed != 0 {
		t.ClimbSpeed = e.ClimbSpeed
	}
	if e.DriveTolerance != 0 {
		t.DriveTolerance = e.DriveTolerance
	}
	switch len(e.Target) {
	case 0:
	case 2:
		t.Target = behaviors.Pose{X: e.Target[0], Y: e.Target[1]}
	default:
		return t, fmt.Errorf("config: tuning.target must be [x, y]")
	}
	if e.DrivePID != nil {
		g := e.DrivePID
		if g.Min >= g.Max {
			return t, fmt.Errorf("config: tuning.drive-pid: min must be below max")
		}
		t.DriveGains = pid.Config{KP: g.KP, KI: g.KI, KD: g.KD, KF: g.KF, OutputScale: 1, MinOutput: g.Min, MaxOutput: g.Max}
	}

	durations := []struct {
		path string
		raw  string
		dst  *time.Duration
	}{
		{"tuning.spin-timeout", e.SpinTimeout, &t.SpinTimeout},
		{"tuning.feed-time", e.FeedTime, &t.FeedTime},
		{"tuning.drive-timeout", e.DriveTimeout, &t.DriveTimeout},
	}
	for _, d := range durations {
		v, err := parseDurationOrDefault(d.path, d.raw, *d.dst)
		if err != nil {
			return t, err
		}
		*d.dst = v
	}
	return t, nil
}
