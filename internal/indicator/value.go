package indicator

// Value is an optional float64. Indicators are undefined during warm-up and
// the zero Value is "no value"; downstream code can never mistake a missing
// reading for 0.
type Value struct {
	val   float64
	valid bool
}

// Some wraps a defined value.
func Some(v float64) Value { return Value{val: v, valid: true} }

// None is the undefined value.
func None() Value { return Value{} }

// Defined reports whether the value is present.
func (v Value) Defined() bool { return v.valid }

// Get returns the value and whether it is defined.
func (v Value) Get() (float64, bool) { return v.val, v.valid }

// Float returns the value, or 0 when undefined. Callers must check Defined
// first when 0 is a meaningful reading.
func (v Value) Float() float64 { return v.val }

// Ptr returns a pointer to the value, or nil when undefined. Used when
// building transport snapshots where null means "warming up".
func (v Value) Ptr() *float64 {
	if !v.valid {
		return nil
	}
	f := v.val
	return &f
}

// at returns vs[i], or None when i is out of range.
func at(vs []Value, i int) Value {
	if i < 0 || i >= len(vs) {
		return None()
	}
	return vs[i]
}
