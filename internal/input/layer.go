package input

import (
	"errors"
	"fmt"
	"math"

	"github.com/jorge-barreto/drivectl/internal/ops"
)

// MacroEventKind distinguishes a macro press from a release.
type MacroEventKind int

const (
	MacroPressed MacroEventKind = iota
	MacroReleased
)

// MacroEvent is a qualifying macro button transition seen this tick.
type MacroEvent struct {
	Macro ops.Macro
	Mode  MacroMode
	Kind  MacroEventKind
}

// Snapshot is the result of one poll.
type Snapshot struct {
	Values *ops.Values
	Shifts ops.Shift
	Macros []MacroEvent
}

// edge is the carried-forward state of one button binding. The first
// step only records the signal, so a button held (or an inverted button
// released) at startup is not an edge.
type edge struct {
	primed  bool
	prev    bool
	toggled bool
}

// step records raw and returns the binding output for the tick. The raw
// history advances even while the gate is closed, so holding a button
// and then enabling its shift is not a rising edge.
func (e *edge) step(raw, gate bool, b ButtonType) bool {
	rising := e.primed && raw && !e.prev
	e.prev, e.primed = raw, true
	switch b {
	case Click:
		return rising && gate
	case Toggle:
		if rising && gate {
			e.toggled = !e.toggled
		}
		return e.toggled
	default:
		return raw
	}
}

type macroEdge struct {
	primed  bool
	prev    bool
	engaged bool
}

// Layer evaluates a binding table against a raw source once per tick.
type Layer struct {
	b Bindings

	shiftEdges   []edge
	digitalEdges []edge
	lastAngle    []float64
	macroEdges   []macroEdge
}

// New validates the binding table and returns a layer over it.
func New(b Bindings) (*Layer, error) {
	if err := checkAmbiguous(b); err != nil {
		return nil, err
	}
	return &Layer{
		b:            b,
		shiftEdges:   make([]edge, len(b.Shifts)),
		digitalEdges: make([]edge, len(b.Digital)),
		lastAngle:    make([]float64, len(b.Angles)),
		macroEdges:   make([]macroEdge, len(b.Macros)),
	}, nil
}

// Reset drops every carried edge, toggle bit and held angle, as if the
// layer had just been built.
func (l *Layer) Reset() {
	clear(l.shiftEdges)
	clear(l.digitalEdges)
	clear(l.lastAngle)
	clear(l.macroEdges)
}

// Bindings returns the table the layer was built from.
func (l *Layer) Bindings() Bindings { return l.b }

// ErrAmbiguousBinding reports two bindings for one operation under the same gate.
var ErrAmbiguousBinding = errors.New("ambiguous binding")

// checkAmbiguous rejects bindings that could never take effect: a later
// binding for the same operation with an identical gate always wins.
// Overlapping but distinct gates are legal and resolve last-satisfied-wins.
func checkAmbiguous(b Bindings) error {
	type key struct {
		op   ops.Op
		gate ops.Gate
	}
	seen := make(map[key]bool)
	check := func(op ops.Op, g ops.Gate) error {
		k := key{op, g}
		if seen[k] {
			return fmt.Errorf("%w: operation %q is bound more than once under shift %s", ErrAmbiguousBinding, op, g)
		}
		seen[k] = true
		return nil
	}
	for _, d := range b.Digital {
		if err := check(d.Op.Op(), d.Gate); err != nil {
			return err
		}
	}
	for _, a := range b.Analog {
		if err := check(a.Op.Op(), a.Gate); err != nil {
			return err
		}
	}
	for _, a := range b.Angles {
		if err := check(a.Op.Op(), a.Gate); err != nil {
			return err
		}
	}
	return nil
}

// readOnce caches raw reads so every source is read at most once per tick.
type readOnce struct {
	src     Source
	digital map[string]bool
	analog  map[string]float64
}

func (r *readOnce) Digital(name string) bool {
	if v, ok := r.digital[name]; ok {
		return v
	}
	v := r.src.Digital(name)
	r.digital[name] = v
	return v
}

func (r *readOnce) Analog(name string) float64 {
	if v, ok := r.analog[name]; ok {
		return v
	}
	v := r.src.Analog(name)
	r.analog[name] = v
	return v
}

// Poll reads the source and builds a fresh baseline snapshot. Shift bindings
// are evaluated first since every other gate depends on them; the remaining
// tables are evaluated in declared order and the last binding whose gate is
// satisfied determines an operation's value.
func (l *Layer) Poll(src Source) Snapshot {
	r := &readOnce{src: src, digital: make(map[string]bool), analog: make(map[string]float64)}

	var active ops.Shift
	for i, sb := range l.b.Shifts {
		if l.shiftEdges[i].step(r.Digital(sb.Source), true, sb.Button) {
			active |= sb.Shift
		}
	}

	values := ops.NewValues()

	for i, db := range l.b.Digital {
		raw := r.Digital(db.Source)
		if db.Invert {
			raw = !raw
		}
		open := db.Gate.Satisfied(active)
		out := l.digitalEdges[i].step(raw, open, db.Button)
		if open {
			values.SetDigital(db.Op, out)
		}
	}

	for _, ab := range l.b.Analog {
		if !ab.Gate.Satisfied(active) {
			continue
		}
		values.SetAnalog(ab.Op, ab.Apply(r.Analog(ab.Source)))
	}

	for i, ang := range l.b.Angles {
		if !ang.Gate.Satisfied(active) {
			continue
		}
		x, y := r.Analog(ang.X), r.Analog(ang.Y)
		if ang.InvertX {
			x = -x
		}
		if ang.InvertY {
			y = -y
		}
		if math.Hypot(x, y) < ang.MinMagnitude {
			values.SetAnalog(ang.Op, l.lastAngle[i])
			values.SetDigital(ang.SkipFlag, true)
			continue
		}
		deg := math.Atan2(x, y) * 180 / math.Pi
		l.lastAngle[i] = deg
		values.SetAnalog(ang.Op, deg)
	}

	var events []MacroEvent
	for i, mb := range l.b.Macros {
		raw := r.Digital(mb.Source)
		me := &l.macroEdges[i]
		rising := me.primed && raw && !me.prev
		me.prev, me.primed = raw, true
		open := mb.Gate.Satisfied(active)
		switch {
		case rising && open:
			me.engaged = true
			events = append(events, MacroEvent{Macro: mb.Macro, Mode: mb.Mode, Kind: MacroPressed})
		case me.engaged && (!raw || !open):
			me.engaged = false
			events = append(events, MacroEvent{Macro: mb.Macro, Mode: mb.Mode, Kind: MacroReleased})
		}
	}

	return Snapshot{Values: values, Shifts: active, Macros: events}
}
