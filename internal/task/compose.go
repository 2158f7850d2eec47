package task

import (
	"strings"

	"github.com/jorge-barreto/drivectl/internal/ops"
)

// group holds the children shared by every composite.
type group struct {
	label    string
	children []*Node
}

func newGroup(label string, tasks []Task) group {
	nodes := make([]*Node, len(tasks))
	for i, t := range tasks {
		nodes[i] = NewNode(t)
	}
	return group{label: label, children: nodes}
}

func (g *group) Name() string {
	names := make([]string, len(g.children))
	for i, c := range g.children {
		names[i] = NameOf(c.task)
	}
	return g.label + "(" + strings.Join(names, ", ") + ")"
}

// Claims is the union of every child's claims.
func (g *group) Claims() ops.Set {
	out := make(ops.Set)
	for _, c := range g.children {
		for op := range c.Claims() {
			out.Add(op)
		}
	}
	return out
}

// Children exposes the child nodes for inspection.
func (g *group) Children() []*Node { return g.children }

// End cancels every child that has not terminated. This is the cascade that
// keeps a torn-down subtree from leaving overrides behind.
func (g *group) End(f *Frame) {
	for _, c := range g.children {
		c.Cancel(f)
	}
}

func (g *group) allTerminal() bool {
	for _, c := range g.children {
		if !c.State().Terminal() {
			return false
		}
	}
	return true
}

// Sequence runs its children one at a time in order. When a child finishes
// the next begins on the same tick. A cancelled child cancels the sequence
// and the remaining children never begin.
type Sequence struct {
	group
	current   int
	cancelled bool
}

// NewSequence composes tasks to run in order.
func NewSequence(tasks ...Task) *Sequence {
	return &Sequence{group: newGroup("sequence", tasks)}
}

func (s *Sequence) Begin(f *Frame) {
	if len(s.children) > 0 {
		s.children[0].Start(f)
	}
}

func (s *Sequence) Update(f *Frame) {
	for s.current < len(s.children) {
		switch s.children[s.current].Step(f) {
		case Active:
			return
		case Cancelled:
			s.cancelled = true
			return
		}
		s.current++
		if s.current < len(s.children) {
			s.children[s.current].Start(f)
		}
	}
}

func (s *Sequence) HasCompleted() bool {
	return !s.cancelled && s.current >= len(s.children)
}

func (s *Sequence) ShouldCancel() bool { return s.cancelled }

// All runs its children concurrently and completes once every child has
// terminated. A child's cancellation does not stop its siblings.
type All struct {
	group
}

// NewAll composes tasks to run together until all have finished.
func NewAll(tasks ...Task) *All {
	return &All{group: newGroup("all", tasks)}
}

func (a *All) Begin(f *Frame) {
	for _, c := range a.children {
		c.Start(f)
	}
}

func (a *All) Update(f *Frame) {
	for _, c := range a.children {
		c.Step(f)
	}
}

func (a *All) HasCompleted() bool { return a.allTerminal() }
func (a *All) ShouldCancel() bool { return false }

// Any runs its children concurrently and completes as soon as one child
// completes; the remaining children are cancelled on that same tick. If every
// child is cancelled without one completing, Any is cancelled.
type Any struct {
	group
	won bool
}

// NewAny composes tasks to race each other.
func NewAny(tasks ...Task) *Any {
	return &Any{group: newGroup("any", tasks)}
}

func (a *Any) Begin(f *Frame) {
	for _, c := range a.children {
		c.Start(f)
	}
}

func (a *Any) Update(f *Frame) {
	for _, c := range a.children {
		if c.Step(f) == Completed {
			a.won = true
			break
		}
	}
	if a.won {
		a.group.End(f)
	}
}

func (a *Any) HasCompleted() bool { return a.won || len(a.children) == 0 }
func (a *Any) ShouldCancel() bool { return !a.won && len(a.children) > 0 && a.allTerminal() }
