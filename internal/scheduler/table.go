package scheduler

import "github.com/jorge-barreto/drivectl/internal/ops"

// table is the override sink shared by every task. Writes are accepted only
// for operations claimed by the root currently being stepped.
type table struct {
	allow     ops.Set
	overrides map[ops.Op]ops.Value
	latched   map[ops.Op]ops.Value
	rejected  int
}

func newTable() *table {
	return &table{
		overrides: make(map[ops.Op]ops.Value),
		latched:   make(map[ops.Op]ops.Value),
	}
}

func (t *table) Override(op ops.Op, v ops.Value) {
	if !t.allow.Has(op) {
		t.rejected++
		return
	}
	t.overrides[op] = v
}

func (t *table) Latch(op ops.Op, v ops.Value) {
	if !t.allow.Has(op) {
		t.rejected++
		return
	}
	t.latched[op] = v
}
