// Package ops is the catalog of every controllable signal on the robot.
//
// Operations are fixed at compile time. Callers address them through the
// typed Digital and Analog constants, never by raw index, so reordering the
// catalog never breaks a caller.
package ops

import (
	"sort"
	"strings"
)

// Kind is the value kind of an operation.
type Kind int

const (
	KindDigital Kind = iota
	KindAnalog
)

func (k Kind) String() string {
	if k == KindAnalog {
		return "analog"
	}
	return "digital"
}

// Op is the kind-qualified identity of an operation. The zero value is the
// first digital operation; build Ops with Digital.Op or Analog.Op.
type Op struct {
	kind  Kind
	index int
}

func (o Op) Kind() Kind { return o.kind }

// Digital returns the digital operation o names. ok is false for analog ops.
func (o Op) Digital() (Digital, bool) {
	return Digital(o.index), o.kind == KindDigital
}

// Analog returns the analog operation o names. ok is false for digital ops.
func (o Op) Analog() (Analog, bool) {
	return Analog(o.index), o.kind == KindAnalog
}

func (o Op) String() string {
	if o.kind == KindAnalog {
		return Analog(o.index).String()
	}
	return Digital(o.index).String()
}

func (o Op) less(p Op) bool {
	if o.kind != p.kind {
		return o.kind < p.kind
	}
	return o.index < p.index
}

// Set is a set of operations, used for task claims.
type Set map[Op]struct{}

// NewSet builds a set from the given operations.
func NewSet(members ...Op) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts op into s.
func (s Set) Add(op Op) { s[op] = struct{}{} }

// Has reports whether op is a member of s. A nil set has no members.
func (s Set) Has(op Op) bool {
	_, ok := s[op]
	return ok
}

// Union returns a new set holding the members of s and every other set.
func (s Set) Union(others ...Set) Set {
	out := make(Set, len(s))
	for op := range s {
		out[op] = struct{}{}
	}
	for _, o := range others {
		for op := range o {
			out[op] = struct{}{}
		}
	}
	return out
}

// Intersects reports whether s and o share a member.
func (s Set) Intersects(o Set) bool {
	small, big := s, o
	if len(big) < len(small) {
		small, big = big, small
	}
	for op := range small {
		if big.Has(op) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every member of s is in o.
func (s Set) SubsetOf(o Set) bool {
	for op := range s {
		if !o.Has(op) {
			return false
		}
	}
	return true
}

// Sorted returns the members in catalog order (digital first).
func (s Set) Sorted() []Op {
	out := make([]Op, 0, len(s))
	for op := range s {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

func (s Set) String() string {
	names := make([]string, 0, len(s))
	for _, op := range s.Sorted() {
		names = append(names, op.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
