package task

import (
	"time"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
)

// Leaf is a task assembled from callbacks. Nil callbacks are no-ops; a nil
// Done never completes and a nil Abort never cancels.
type Leaf struct {
	Label    string
	Ops      ops.Set
	OnBegin  func(f *Frame)
	OnUpdate func(f *Frame)
	OnEnd    func(f *Frame)
	Done     func() bool
	Abort    func() bool
}

func (l *Leaf) Name() string {
	if l.Label == "" {
		return "leaf"
	}
	return l.Label
}

func (l *Leaf) Begin(f *Frame) {
	if l.OnBegin != nil {
		l.OnBegin(f)
	}
}

func (l *Leaf) Update(f *Frame) {
	if l.OnUpdate != nil {
		l.OnUpdate(f)
	}
}

func (l *Leaf) End(f *Frame) {
	if l.OnEnd != nil {
		l.OnEnd(f)
	}
}

func (l *Leaf) HasCompleted() bool { return l.Done != nil && l.Done() }
func (l *Leaf) ShouldCancel() bool { return l.Abort != nil && l.Abort() }
func (l *Leaf) Claims() ops.Set { return l.Ops }

// Timed is a leaf bounded by a duration measured from Begin.
//
// Without a Done condition the task completes once the duration has
// elapsed. With one, Done decides completion and the duration becomes an
// upper bound that cancels the task. Adding Done therefore turns running
// out of time from a completion into a cancellation, which stops an
// enclosing Sequence. Types that embed Timed and redefine
// HasCompleted get the same treatment by calling Expired from ShouldCancel.
type Timed struct {
	Leaf
	Clock    clock.Clock
	Duration time.Duration

	start time.Duration
}

// Begin records the start time, then runs OnBegin.
func (t *Timed) Begin(f *Frame) {
	t.start = t.Clock.Now()
	t.Leaf.Begin(f)
}

// Elapsed is the time since Begin.
func (t *Timed) Elapsed() time.Duration { return t.Clock.Now() - t.start }

// Expired reports whether the duration has been reached.
func (t *Timed) Expired() bool { return t.Elapsed() >= t.Duration }

func (t *Timed) HasCompleted() bool {
	if t.Done != nil {
		return t.Done()
	}
	return t.Expired()
}

func (t *Timed) ShouldCancel() bool {
	if t.Leaf.ShouldCancel() {
		return true
	}
	return t.Done != nil && t.Expired()
}

// Wait is a timed task that claims nothing and does nothing.
func Wait(clk clock.Clock, d time.Duration) *Timed {
	return &Timed{Leaf: Leaf{Label: "wait " + d.String()}, Clock: clk, Duration: d}
}

// CompositeSettle is how long a CompositeOperation holds its selection
// before completing.
const CompositeSettle = 100 * time.Millisecond

// CompositeOperation selects one of a group of mutually exclusive digital
// operations: the target is set true and every sibling false. The selection
// is latched, so unlike other tasks it survives End.
type CompositeOperation struct {
	clock    clock.Clock
	target   ops.Digital
	siblings []ops.Digital
	settle   time.Duration
	start    time.Duration
}

// NewCompositeOperation selects target among siblings. target is added to
// the group if it is not already listed.
func NewCompositeOperation(clk clock.Clock, target ops.Digital, siblings ...ops.Digital) *CompositeOperation {
	group := append([]ops.Digital(nil), siblings...)
	found := false
	for _, s := range group {
		if s == target {
			found = true
			break
		}
	}
	if !found {
		group = append(group, target)
	}
	return &CompositeOperation{clock: clk, target: target, siblings: group, settle: CompositeSettle}
}

func (c *CompositeOperation) Name() string { return "select " + c.target.String() }

func (c *CompositeOperation) Begin(f *Frame) {
	c.start = c.clock.Now()
	c.apply(f)
}

func (c *CompositeOperation) Update(f *Frame) { c.apply(f) }

func (c *CompositeOperation) apply(f *Frame) {
	for _, s := range c.siblings {
		f.LatchDigital(s, s == c.target)
	}
}

func (c *CompositeOperation) HasCompleted() bool {
	return c.clock.Now()-c.start >= c.settle
}

func (c *CompositeOperation) ShouldCancel() bool { return false }

// End leaves the latched selection in place.
func (c *CompositeOperation) End(f *Frame) {}

func (c *CompositeOperation) Claims() ops.Set {
	s := make(ops.Set, len(c.siblings))
	for _, d := range c.siblings {
		s.Add(d.Op())
	}
	return s
}
