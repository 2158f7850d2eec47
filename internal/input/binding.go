// Package input turns raw operator input into the baseline operation values
// for a tick.
package input

import (
	"fmt"

	"github.com/jorge-barreto/drivectl/internal/ops"
)

// Source is the raw input device layer. It is polled once per tick; reads
// must not have side effects.
type Source interface {
	Digital(name string) bool
	Analog(name string) float64
}

// ButtonType selects how a raw digital signal becomes an operation value.
type ButtonType int

const (
	// Simple mirrors the raw signal.
	Simple ButtonType = iota
	// Click is true only on the tick of a false->true transition.
	Click
	// Toggle flips a persisted bit on every qualifying rising edge.
	Toggle
)

var buttonNames = map[ButtonType]string{Simple: "simple", Click: "click", Toggle: "toggle"}

func (b ButtonType) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// ParseButtonType resolves a config name. "" is Simple.
func ParseButtonType(name string) (ButtonType, error) {
	if name == "" {
		return Simple, nil
	}
	for b, n := range buttonNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown button type %q (must be simple, click, or toggle)", name)
}

// MacroMode selects how a macro button drives its task activation.
type MacroMode int

const (
	// Press starts a fresh task on each press; it runs until it finishes.
	Press MacroMode = iota
	// ToggleMode starts on one press and cancels on the next.
	ToggleMode
	// Hold starts on press and cancels on release.
	Hold
)

var macroModeNames = map[MacroMode]string{Press: "press", ToggleMode: "toggle", Hold: "hold"}

func (m MacroMode) String() string {
	if n, ok := macroModeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMacroMode resolves a config name. "" is Press.
func ParseMacroMode(name string) (MacroMode, error) {
	if name == "" {
		return Press, nil
	}
	for m, n := range macroModeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown macro mode %q (must be press, toggle, or hold)", name)
}

// ShiftBinding activates a shift layer from a raw digital source.
type ShiftBinding struct {
	Shift  ops.Shift
	Source string
	Button ButtonType
}

// DigitalBinding maps a raw digital source onto a digital operation.
type DigitalBinding struct {
	Op     ops.Digital
	Source string
	Button ButtonType
	Invert bool
	Gate   ops.Gate
}

// DeadZone is the closed raw range mapped to exactly 0.
type DeadZone struct {
	Lo, Hi float64
}

// Contains reports whether v falls inside the dead-zone.
func (d DeadZone) Contains(v float64) bool {
	return v >= d.Lo && v <= d.Hi
}

// AnalogBinding maps a raw axis onto an analog operation.
type AnalogBinding struct {
	Op       ops.Analog
	Source   string
	Invert   bool
	DeadZone DeadZone
	Scale    float64
	// Transform is applied to the raw value before scaling. nil is identity.
	Transform func(float64) float64
	Gate      ops.Gate
}

// Apply maps a raw axis value through inversion, dead-zone and scaling.
func (b AnalogBinding) Apply(raw float64) float64 {
	if b.Invert {
		raw = -raw
	}
	if b.DeadZone.Contains(raw) {
		return 0
	}
	if b.Transform != nil {
		raw = b.Transform(raw)
	}
	return raw * b.Scale
}

// AngleBinding maps a two-axis stick onto a heading in degrees. While the
// stick is inside MinMagnitude the previous heading is held and SkipFlag is
// raised for the tick.
type AngleBinding struct {
	Op           ops.Analog
	X, Y         string
	InvertX      bool
	InvertY      bool
	MinMagnitude float64
	SkipFlag     ops.Digital
	Gate         ops.Gate
}

// MacroBinding ties a raw button to a macro.
type MacroBinding struct {
	Macro  ops.Macro
	Source string
	Mode   MacroMode
	Gate   ops.Gate
}

// Bindings is the full, immutable binding table. Order within each slice is
// the declared evaluation order.
type Bindings struct {
	Shifts  []ShiftBinding
	Digital []DigitalBinding
	Analog  []AnalogBinding
	Angles  []AngleBinding
	Macros  []MacroBinding
}
