// Package task is the cooperative task model: a Task is driven through
// begin/update/end by a Node, and composites drive trees of Nodes under a
// single update call.
package task

import (
	"fmt"
	"time"

	"github.com/jorge-barreto/drivectl/internal/ops"
)

// State is the lifecycle state of a task. Completed and Cancelled are final.
type State int

const (
	NotStarted State = iota
	Active
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether s is Completed or Cancelled.
func (s State) Terminal() bool { return s == Completed || s == Cancelled }

// Task is a unit of control behavior. Implementations never block.
//
// Begin is called once when the task becomes active and End exactly once
// when it leaves, whether it completed or was cancelled. End must put every
// operation the task overrode back to a neutral value. HasCompleted and
// ShouldCancel are pure queries.
type Task interface {
	Begin(f *Frame)
	Update(f *Frame)
	HasCompleted() bool
	ShouldCancel() bool
	End(f *Frame)
	// Claims is the set of operations the task may override while active.
	Claims() ops.Set
}

// Namer is implemented by tasks that carry a display name.
type Namer interface {
	Name() string
}

// NameOf returns a display name for t.
func NameOf(t Task) string {
	if n, ok := t.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", t)
}

// Sink receives override writes for the current tick.
type Sink interface {
	// Override sets a value that holds only while the operation is claimed.
	Override(op ops.Op, v ops.Value)
	// Latch sets a value that persists after the writing task has ended.
	Latch(op ops.Op, v ops.Value)
}

// Frame is the per-tick context handed to tasks: the tick time, the baseline
// values produced by the input layer, and the override sink.
type Frame struct {
	now      time.Duration
	baseline ops.Reader
	sink     Sink
}

// NewFrame builds the context for one tick.
func NewFrame(now time.Duration, baseline ops.Reader, sink Sink) *Frame {
	return &Frame{now: now, baseline: baseline, sink: sink}
}

// Now is the monotonic time of the tick.
func (f *Frame) Now() time.Duration { return f.now }

// Input is the operator baseline for the tick, before any override.
func (f *Frame) Input() ops.Reader { return f.baseline }

func (f *Frame) SetDigital(d ops.Digital, b bool) {
	f.sink.Override(d.Op(), ops.Value{Bool: b})
}

func (f *Frame) SetAnalog(a ops.Analog, v float64) {
	f.sink.Override(a.Op(), ops.Value{Float: v})
}

// LatchDigital records a persistent mode selection.
func (f *Frame) LatchDigital(d ops.Digital, b bool) {
	f.sink.Latch(d.Op(), ops.Value{Bool: b})
}

// Node drives one task through its lifecycle.
type Node struct {
	task  Task
	state State
}

// NewNode wraps t in a fresh, not-started node.
func NewNode(t Task) *Node {
	return &Node{task: t}
}

func (n *Node) Task() Task { return n.task }
func (n *Node) State() State { return n.state }
func (n *Node) Claims() ops.Set { return n.task.Claims() }

// Start begins the task if it has not started yet.
func (n *Node) Start(f *Frame) {
	if n.state != NotStarted {
		return
	}
	n.task.Begin(f)
	n.state = Active
}

// Step runs the task for one tick and returns its state afterwards. A task
// that is not started is begun and updated on the same tick. Termination is
// checked both before and after Update, cancellation ahead of completion, so
// End always runs on the scheduling pass and never from inside Update.
func (n *Node) Step(f *Frame) State {
	switch n.state {
	case Completed, Cancelled:
		return n.state
	case NotStarted:
		n.Start(f)
	default:
		if n.settle(f) {
			return n.state
		}
	}
	n.task.Update(f)
	n.settle(f)
	return n.state
}

func (n *Node) settle(f *Frame) bool {
	switch {
	case n.task.ShouldCancel():
		n.state = Cancelled
		n.task.End(f)
	case n.task.HasCompleted():
		n.state = Completed
		n.task.End(f)
	default:
		return false
	}
	return true
}

// Cancel terminates the task immediately. An active task gets its End call;
// a task that never began is marked cancelled without Begin or End.
func (n *Node) Cancel(f *Frame) {
	switch n.state {
	case Active:
		n.state = Cancelled
		n.task.End(f)
	case NotStarted:
		n.state = Cancelled
	}
}
