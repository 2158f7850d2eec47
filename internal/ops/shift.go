package ops

import (
	"fmt"
	"strings"
)

// Shift is a set of modifier layers. ShiftNone is the default layer; any
// number of the remaining layers may be active at once.
type Shift uint32

const (
	ShiftNone  Shift = 0
	ShiftDebug Shift = 1 << iota
	ShiftOperator
	ShiftEndgame
)

var shiftNames = []struct {
	shift Shift
	name  string
}{
	{ShiftDebug, "debug"},
	{ShiftOperator, "operator"},
	{ShiftEndgame, "endgame"},
}

// ParseShift resolves a single layer name. "none" and "" resolve to ShiftNone.
func ParseShift(name string) (Shift, bool) {
	if name == "" || name == "none" {
		return ShiftNone, true
	}
	for _, s := range shiftNames {
		if s.name == name {
			return s.shift, true
		}
	}
	return 0, false
}

// ParseShifts resolves a list of layer names into one mask.
func ParseShifts(names []string) (Shift, error) {
	var out Shift
	for _, n := range names {
		s, ok := ParseShift(n)
		if !ok {
			return 0, fmt.Errorf("unknown shift %q", n)
		}
		out |= s
	}
	return out, nil
}

func (s Shift) String() string {
	if s == ShiftNone {
		return "none"
	}
	var parts []string
	for _, n := range shiftNames {
		if s&n.shift != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

// Gate is the shift requirement of a binding: every layer in Require must be
// active and no layer in Exclude may be.
type Gate struct {
	Require Shift
	Exclude Shift
}

// Satisfied reports whether the gate passes under the active layers.
func (g Gate) Satisfied(active Shift) bool {
	return active&g.Require == g.Require && active&g.Exclude == 0
}

func (g Gate) String() string {
	if g.Exclude == ShiftNone {
		return g.Require.String()
	}
	return g.Require.String() + " !" + g.Exclude.String()
}
