package simio

import (
	"fmt"
	"io"

	"github.com/jorge-barreto/drivectl/internal/clock"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/ux"
)

// Printer is a mechanism that renders the watched operations every Every
// frames.
type Printer struct {
	W     io.Writer
	Clock clock.Clock
	Watch []ops.Op
	Every int

	n int
}

func (p *Printer) Apply(v ops.Reader) {
	every := p.Every
	if every <= 0 {
		every = 1
	}
	if p.n%every == 0 {
		ux.Frame(p.W, p.Clock.Now(), v, p.Watch)
	}
	p.n++
}

// ParseWatch resolves operation names for a Printer. An empty list watches
// every operation.
func ParseWatch(names []string) ([]ops.Op, error) {
	if len(names) == 0 {
		var all []ops.Op
		for _, d := range ops.AllDigital() {
			all = append(all, d.Op())
		}
		for _, a := range ops.AllAnalog() {
			all = append(all, a.Op())
		}
		return all, nil
	}
	out := make([]ops.Op, 0, len(names))
	for _, n := range names {
		op, ok := ops.ParseOp(n)
		if !ok {
			return nil, fmt.Errorf("unknown operation %q", n)
		}
		out = append(out, op)
	}
	return out, nil
}
