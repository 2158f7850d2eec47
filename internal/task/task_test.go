package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
)

const period = 20 * time.Millisecond

// recordSink keeps the last override and latch per operation.
type recordSink struct {
	overrides map[ops.Op]ops.Value
	latched   map[ops.Op]ops.Value
}

func newSink() *recordSink {
	return &recordSink{overrides: make(map[ops.Op]ops.Value), latched: make(map[ops.Op]ops.Value)}
}

func (s *recordSink) Override(op ops.Op, v ops.Value) { s.overrides[op] = v }
func (s *recordSink) Latch(op ops.Op, v ops.Value) { s.latched[op] = v }

type harness struct {
	clk  *clock.Manual
	sink *recordSink
}

func newHarness() *harness {
	return &harness{clk: &clock.Manual{}, sink: newSink()}
}

func (h *harness) frame() *Frame {
	return NewFrame(h.clk.Now(), ops.NewValues(), h.sink)
}

// run steps n every period until it terminates or maxTicks pass, and
// returns the clock time of the terminating tick.
func (h *harness) run(t *testing.T, n *Node, maxTicks int) time.Duration {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if n.Step(h.frame()).Terminal() {
			return h.clk.Now()
		}
		h.clk.Advance(period)
	}
	t.Fatalf("task did not terminate within %d ticks", maxTicks)
	return 0
}

// spy is a task that records its lifecycle calls.
type spy struct {
	name    string
	claims  ops.Set
	done    bool
	cancel  bool
	begins  int
	updates int
	ends    int
	beganAt time.Duration
	endedAt time.Duration
}

func (p *spy) Name() string { return p.name }
func (p *spy) Begin(f *Frame) {
	p.begins++
	p.beganAt = f.Now()
}
func (p *spy) Update(f *Frame) { p.updates++ }
func (p *spy) End(f *Frame) {
	p.ends++
	p.endedAt = f.Now()
}
func (p *spy) HasCompleted() bool { return p.done }
func (p *spy) ShouldCancel() bool { return p.cancel }
func (p *spy) Claims() ops.Set { return p.claims }

// timed returns a Wait that records when it ended.
func timed(h *harness, d time.Duration, endedAt *time.Duration) *Timed {
	w := Wait(h.clk, d)
	w.OnEnd = func(f *Frame) { *endedAt = f.Now() }
	return w
}

func TestNode_Lifecycle(t *testing.T) {
	h := newHarness()
	p := &spy{}
	n := NewNode(p)
	assert.Equal(t, NotStarted, n.State())

	n.Step(h.frame())
	n.Step(h.frame())
	assert.Equal(t, Active, n.State())
	assert.Equal(t, 1, p.begins)
	assert.Equal(t, 2, p.updates)

	p.done = true
	assert.Equal(t, Completed, n.Step(h.frame()))
	assert.Equal(t, 2, p.updates, "a finished task is not updated again")
	assert.Equal(t, 1, p.ends)

	n.Step(h.frame())
	n.Cancel(h.frame())
	assert.Equal(t, Completed, n.State(), "terminal states are final")
	assert.Equal(t, 1, p.ends)
}

func TestNode_CancelTakesPrecedence(t *testing.T) {
	h := newHarness()
	p := &spy{}
	n := NewNode(p)
	n.Step(h.frame())
	p.done, p.cancel = true, true
	assert.Equal(t, Cancelled, n.Step(h.frame()))
	assert.Equal(t, 1, p.ends)
}

func TestNode_CancelBeforeStart(t *testing.T) {
	h := newHarness()
	p := &spy{}
	n := NewNode(p)
	n.Cancel(h.frame())
	assert.Equal(t, Cancelled, n.State())
	assert.Zero(t, p.begins)
	assert.Zero(t, p.ends)
	n.Step(h.frame())
	assert.Zero(t, p.begins)
}

func TestTimed_CompletesAtDuration(t *testing.T) {
	h := newHarness()
	var ended time.Duration
	n := NewNode(timed(h, 100*time.Millisecond, &ended))
	at := h.run(t, n, 50)
	assert.Equal(t, 100*time.Millisecond, at)
	assert.Equal(t, Completed, n.State())
	assert.Equal(t, at, ended)
}

func TestTimed_ConditionCompletesEarly(t *testing.T) {
	h := newHarness()
	ready := false
	tm := &Timed{Clock: h.clk, Duration: time.Second, Leaf: Leaf{Done: func() bool { return ready }}}
	n := NewNode(tm)
	n.Step(h.frame())
	h.clk.Advance(period)
	ready = true
	assert.Equal(t, Completed, n.Step(h.frame()))
}

func TestTimed_TimeoutCancelsConditionedTask(t *testing.T) {
	h := newHarness()
	tm := &Timed{Clock: h.clk, Duration: 200 * time.Millisecond, Leaf: Leaf{Done: func() bool { return false }}}
	n := NewNode(tm)
	at := h.run(t, n, 50)
	assert.Equal(t, Cancelled, n.State())
	assert.Equal(t, 200*time.Millisecond, at)
}

func TestSequence_HandsOffOnSameTick(t *testing.T) {
	h := newHarness()
	var firstEnded time.Duration
	second := &spy{}
	seq := NewSequence(timed(h, 40*time.Millisecond, &firstEnded), second)
	n := NewNode(seq)

	for i := 0; i < 3; i++ {
		n.Step(h.frame())
		h.clk.Advance(period)
	}
	assert.Equal(t, 40*time.Millisecond, firstEnded)
	assert.Equal(t, 1, second.begins)
	assert.Equal(t, 40*time.Millisecond, second.beganAt, "next child begins on the tick the previous ended")
	assert.Equal(t, 1, second.updates, "and is updated on that tick")

	second.done = true
	n.Step(h.frame())
	assert.Equal(t, Completed, n.State())
}

func TestSequence_CancelledChildCancelsSequence(t *testing.T) {
	h := newHarness()
	var ended time.Duration
	failing := &spy{cancel: true}
	never := &spy{}
	seq := NewSequence(timed(h, 40*time.Millisecond, &ended), failing, never)
	n := NewNode(seq)

	h.run(t, n, 20)
	assert.Equal(t, Cancelled, n.State())
	assert.Equal(t, 1, failing.ends)
	assert.Zero(t, never.begins, "remaining children never begin")
	assert.Zero(t, never.ends)
	assert.Equal(t, Cancelled, seq.Children()[2].State())
}

func TestSequence_Empty(t *testing.T) {
	h := newHarness()
	n := NewNode(NewSequence())
	assert.Equal(t, Completed, n.Step(h.frame()))
}

func TestAll_CompletesWithLongestChild(t *testing.T) {
	h := newHarness()
	var e1, e2, e3 time.Duration
	all := NewAll(
		timed(h, 100*time.Millisecond, &e1),
		timed(h, 300*time.Millisecond, &e2),
		timed(h, 200*time.Millisecond, &e3),
	)
	n := NewNode(all)
	at := h.run(t, n, 100)

	assert.Equal(t, 300*time.Millisecond, at)
	assert.Equal(t, Completed, n.State())
	assert.Equal(t, 100*time.Millisecond, e1)
	assert.Equal(t, 300*time.Millisecond, e2)
	assert.Equal(t, 200*time.Millisecond, e3)
	for i, c := range all.Children() {
		assert.Equal(t, Completed, c.State(), "child %d", i)
	}
}

func TestAll_SiblingCancellationDoesNotStopOthers(t *testing.T) {
	h := newHarness()
	var ended time.Duration
	failing := &spy{cancel: true}
	all := NewAll(failing, timed(h, 100*time.Millisecond, &ended))
	n := NewNode(all)
	at := h.run(t, n, 100)

	assert.Equal(t, 100*time.Millisecond, at)
	assert.Equal(t, Completed, n.State())
	assert.Equal(t, Cancelled, all.Children()[0].State())
	assert.Equal(t, Completed, all.Children()[1].State())
}

func TestAny_FirstCompletionEndsSiblings(t *testing.T) {
	h := newHarness()
	var short, long time.Duration
	anyTask := NewAny(timed(h, time.Second, &short), timed(h, 5*time.Second, &long))
	n := NewNode(anyTask)
	at := h.run(t, n, 500)

	assert.Equal(t, time.Second, at)
	assert.Equal(t, Completed, n.State())
	assert.Equal(t, time.Second, short)
	assert.Equal(t, time.Second, long, "losing sibling ends on the same tick")
	assert.Equal(t, Cancelled, anyTask.Children()[1].State())
}

func TestAny_AllCancelledCancelsParent(t *testing.T) {
	h := newHarness()
	n := NewNode(NewAny(&spy{cancel: true}, &spy{cancel: true}))
	assert.Equal(t, Cancelled, n.Step(h.frame()))
}

func TestCancel_CascadesThroughNestedTree(t *testing.T) {
	h := newHarness()
	a, b, c := &spy{}, &spy{}, &spy{}
	root := NewNode(NewSequence(NewAll(a, NewAny(b)), c))
	for i := 0; i < 5; i++ {
		root.Step(h.frame())
		h.clk.Advance(period)
	}
	root.Cancel(h.frame())

	assert.Equal(t, Cancelled, root.State())
	assert.Equal(t, 1, a.ends)
	assert.Equal(t, 1, b.ends)
	assert.Zero(t, c.begins)
	assert.Zero(t, c.ends)
}

func TestGroup_ClaimsAreUnion(t *testing.T) {
	a := &spy{claims: ops.NewSet(ops.DriveX.Op())}
	b := &spy{claims: ops.NewSet(ops.Feed.Op(), ops.DriveX.Op())}
	got := NewSequence(a, NewAll(b)).Claims()
	assert.Len(t, got, 2)
	assert.True(t, got.Has(ops.Feed.Op()))
}

func TestCompositeOperation_SelectsExactlyOne(t *testing.T) {
	h := newHarness()
	hoods := []ops.Digital{ops.HoodClose, ops.HoodShort, ops.HoodMedium, ops.HoodLong}

	for _, d := range hoods {
		h.sink.latched[d.Op()] = ops.Value{Bool: d == ops.HoodMedium}
	}
	co := NewCompositeOperation(h.clk, ops.HoodLong, hoods...)
	n := NewNode(co)
	at := h.run(t, n, 50)
	assert.Equal(t, CompositeSettle, at)
	assert.Equal(t, Completed, n.State())

	trueCount := 0
	for _, d := range hoods {
		if h.sink.latched[d.Op()].Bool {
			trueCount++
			assert.Equal(t, ops.HoodLong, d)
		}
	}
	require.Equal(t, 1, trueCount)
	assert.Len(t, co.Claims(), 4)
}

func TestCompositeOperation_AddsMissingTarget(t *testing.T) {
	co := NewCompositeOperation(&clock.Manual{}, ops.IntakeExtend, ops.IntakeRetract)
	assert.True(t, co.Claims().Has(ops.IntakeExtend.Op()))
	assert.Equal(t, "select intake-extend", NameOf(co))
}

func TestNameOf(t *testing.T) {
	h := newHarness()
	seq := NewSequence(&spy{name: "a"}, Wait(h.clk, time.Second))
	assert.Equal(t, "sequence(a, wait 1s)", NameOf(seq))
}
