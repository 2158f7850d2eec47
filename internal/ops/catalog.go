package ops

import "fmt"

// Digital is a boolean operation.
type Digital int

const (
	IntakeExtend Digital = iota
	IntakeRetract
	HoodClose
	HoodShort
	HoodMedium
	HoodLong
	ShooterSpin
	Feed
	DriveFieldCentric
	DriveResetGyro
	DriveSlow
	SkipOmegaOnZeroDelta
	AutoAbort
	numDigital
)

// Analog is a continuous operation.
type Analog int

const (
	DriveX Analog = iota
	DriveY
	DriveOmega
	DriveAngle
	ShooterRPM
	IntakeSpeed
	HopperSpeed
	ClimberSpeed
	numAnalog
)

// Macro identifies a button-triggered task factory.
type Macro int

const (
	MacroShoot Macro = iota
	MacroDriveToTarget
	MacroHoodClose
	MacroHoodShort
	MacroHoodMedium
	MacroHoodLong
	MacroIntakeExtend
	MacroIntakeRetract
	MacroClimb
	MacroCancelAll
	numMacro
)

var digitalNames = [numDigital]string{
	IntakeExtend:         "intake-extend",
	IntakeRetract:        "intake-retract",
	HoodClose:            "hood-close",
	HoodShort:            "hood-short",
	HoodMedium:           "hood-medium",
	HoodLong:             "hood-long",
	ShooterSpin:          "shooter-spin",
	Feed:                 "feed",
	DriveFieldCentric:    "drive-field-centric",
	DriveResetGyro:       "drive-reset-gyro",
	DriveSlow:            "drive-slow",
	SkipOmegaOnZeroDelta: "skip-omega-on-zero-delta",
	AutoAbort:            "auto-abort",
}

var analogNames = [numAnalog]string{
	DriveX:       "drive-x",
	DriveY:       "drive-y",
	DriveOmega:   "drive-omega",
	DriveAngle:   "drive-angle",
	ShooterRPM:   "shooter-rpm",
	IntakeSpeed:  "intake-speed",
	HopperSpeed:  "hopper-speed",
	ClimberSpeed: "climber-speed",
}

var macroNames = [numMacro]string{
	MacroShoot:         "shoot",
	MacroDriveToTarget: "drive-to-target",
	MacroHoodClose:     "hood-close",
	MacroHoodShort:     "hood-short",
	MacroHoodMedium:    "hood-medium",
	MacroHoodLong:      "hood-long",
	MacroIntakeExtend:  "intake-extend",
	MacroIntakeRetract: "intake-retract",
	MacroClimb:         "climb",
	MacroCancelAll:     "cancel-all",
}

func (d Digital) String() string {
	if d < 0 || d >= numDigital {
		return fmt.Sprintf("digital(%d)", int(d))
	}
	return digitalNames[d]
}

func (a Analog) String() string {
	if a < 0 || a >= numAnalog {
		return fmt.Sprintf("analog(%d)", int(a))
	}
	return analogNames[a]
}

func (m Macro) String() string {
	if m < 0 || m >= numMacro {
		return fmt.Sprintf("macro(%d)", int(m))
	}
	return macroNames[m]
}

// Op returns the catalog identity of d.
func (d Digital) Op() Op { return Op{kind: KindDigital, index: int(d)} }

// Op returns the catalog identity of a.
func (a Analog) Op() Op { return Op{kind: KindAnalog, index: int(a)} }

// ParseDigital looks up a digital operation by its config name.
func ParseDigital(name string) (Digital, bool) {
	for i, n := range digitalNames {
		if n == name {
			return Digital(i), true
		}
	}
	return 0, false
}

// ParseAnalog looks up an analog operation by its config name.
func ParseAnalog(name string) (Analog, bool) {
	for i, n := range analogNames {
		if n == name {
			return Analog(i), true
		}
	}
	return 0, false
}

// ParseMacro looks up a macro by its config name.
func ParseMacro(name string) (Macro, bool) {
	for i, n := range macroNames {
		if n == name {
			return Macro(i), true
		}
	}
	return 0, false
}

// ParseOp resolves a name against both the digital and analog tables.
// Names are unique within a kind; digital wins if a name exists in both.
func ParseOp(name string) (Op, bool) {
	if d, ok := ParseDigital(name); ok {
		return d.Op(), true
	}
	if a, ok := ParseAnalog(name); ok {
		return a.Op(), true
	}
	return Op{}, false
}

// AllDigital returns every digital operation in catalog order.
func AllDigital() []Digital {
	out := make([]Digital, numDigital)
	for i := range out {
		out[i] = Digital(i)
	}
	return out
}

// AllAnalog returns every analog operation in catalog order.
func AllAnalog() []Analog {
	out := make([]Analog, numAnalog)
	for i := range out {
		out[i] = Analog(i)
	}
	return out
}

// AllMacros returns every macro in catalog order.
func AllMacros() []Macro {
	out := make([]Macro, numMacro)
	for i := range out {
		out[i] = Macro(i)
	}
	return out
}
