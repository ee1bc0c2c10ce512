package exec

// BitRegister holds one shot's boolean readout values.
type BitRegister []bool

// FloatRegister holds one shot's real-valued readout values.
type FloatRegister []float64

// ComplexRegister holds one shot's complex-valued readout values.
type ComplexRegister []complex128

// Registers collects the output of a run: for every register declared
// with the output flag, one row per shot in execution order.
type Registers struct {
	Bit     map[string][]BitRegister
	Float   map[string][]FloatRegister
	Complex map[string][]ComplexRegister
}

// NewRegisters returns an empty register collection.
func NewRegisters() *Registers {
	return &Registers{
		Bit:     map[string][]BitRegister{},
		Float:   map[string][]FloatRegister{},
		Complex: map[string][]ComplexRegister{},
	}
}

// outputRegisters allocates the empty output registers a layout
// declares, so every declared name is present even after a failed or
// zero-shot run.
func outputRegisters(layout *Layout) *Registers {
	out := NewRegisters()
	for name := range layout.BitRegisters {
		out.Bit[name] = []BitRegister{}
	}
	for name := range layout.FloatRegisters {
		out.Float[name] = []FloatRegister{}
	}
	for name := range layout.ComplexRegisters {
		out.Complex[name] = []ComplexRegister{}
	}
	return out
}

// Merge appends the rows of other to the same-named registers, creating
// registers that do not exist yet. Used to combine the independently
// aggregated circuits of one measurement.
func (r *Registers) Merge(other *Registers) {
	for name, rows := range other.Bit {
		r.Bit[name] = append(r.Bit[name], rows...)
	}
	for name, rows := range other.Float {
		r.Float[name] = append(r.Float[name], rows...)
	}
	for name, rows := range other.Complex {
		r.Complex[name] = append(r.Complex[name], rows...)
	}
}
