package ops

// Reader is the read side of an operation-value map. Mechanisms consume
// values through it once per tick and must not cache them across ticks.
type Reader interface {
	Digital(d Digital) bool
	Analog(a Analog) float64
}

// Value is a single operation value. Only the field matching the
// operation's kind is meaningful.
type Value struct {
	Bool  bool
	Float float64
}

// Values is the per-tick operation-value map. Every operation always has a
// value; the zero Values is all false / 0.0.
type Values struct {
	digital [numDigital]bool
	analog  [numAnalog]float64
}

// NewValues returns a map with every operation at its neutral value.
func NewValues() *Values { return &Values{} }

func (v *Values) Digital(d Digital) bool { return v.digital[d] }
func (v *Values) Analog(a Analog) float64 { return v.analog[a] }

func (v *Values) SetDigital(d Digital, b bool) { v.digital[d] = b }
func (v *Values) SetAnalog(a Analog, f float64) { v.analog[a] = f }

// Get returns the value of op.
func (v *Values) Get(op Op) Value {
	if a, ok := op.Analog(); ok {
		return Value{Float: v.analog[a]}
	}
	d, _ := op.Digital()
	return Value{Bool: v.digital[d]}
}

// Set writes the kind-appropriate field of val to op.
func (v *Values) Set(op Op, val Value) {
	if a, ok := op.Analog(); ok {
		v.analog[a] = val.Float
		return
	}
	d, _ := op.Digital()
	v.digital[d] = val.Bool
}

// Clone returns an independent copy.
func (v *Values) Clone() *Values {
	cp := *v
	return &cp
}
