package pipeline

// ForwardSource identifies where a younger-lane operand came from. The
// numeric values are the ones recorded in trace output.
type ForwardSource uint8

const (
	// ForwardNone means the register file value is used unchanged.
	ForwardNone ForwardSource = 0
	// ForwardEX1 means the value comes from execute lane 1.
	ForwardEX1 ForwardSource = 1
	// ForwardEX0 means the value comes from execute lane 0.
	ForwardEX0 ForwardSource = 2
)

// String returns the trace spelling of the source.
func (s ForwardSource) String() string {
	switch s {
	case ForwardEX1:
		return "EX1"
	case ForwardEX0:
		return "EX0"
	default:
		return "REG"
	}
}

// Lane0Forward carries the older decode lane's forwarding decisions.
// The older lane can only receive values from execute lane 0.
type Lane0Forward struct {
	Rs1 bool
	Rs2 bool
}

// Lane1Forward carries the younger decode lane's forwarding decisions.
// The younger lane can receive from either execute lane; lane 1 wins
// when both produce the same register because it is the younger, and
// therefore later, write.
type Lane1Forward struct {
	Rs1 ForwardSource
	Rs2 ForwardSource
}

// ForwardUnit routes in-flight execute results into the decode-stage
// operand view. There are three paths: execute lane 0 into decode lane
// 0, and both execute lanes into decode lane 1. There is no path from
// execute lane 1 into decode lane 0. Loads never forward.
type ForwardUnit struct{}

// NewForwardUnit creates a forwarding unit.
func NewForwardUnit() *ForwardUnit {
	return &ForwardUnit{}
}

// provides reports whether an execute slot can supply register reg this
// cycle: the slot must write a non-zero destination and must not be a
// load.
func (u *ForwardUnit) provides(slot *ExecSlot, reg uint8) bool {
	return slot.WritesReg() && !slot.IsLoad() && slot.Inst.Rd == reg
}

// Lane0 resolves the older decode lane's operands. rs1 and rs2 are the
// register-file values read this cycle; ex0Result is the combinational
// writeback value of execute lane 0.
func (u *ForwardUnit) Lane0(
	slot *DecodeSlot,
	rs1, rs2 uint32,
	ex0 *ExecSlot,
	ex0Result uint32,
) (v1, v2 uint32, fwd Lane0Forward) {
	v1, v2 = rs1, rs2
	if !slot.Valid {
		return v1, v2, fwd
	}
	if slot.Inst.UsesRs1 && u.provides(ex0, slot.Inst.Rs1) {
		v1 = ex0Result
		fwd.Rs1 = true
	}
	if slot.Inst.UsesRs2 && u.provides(ex0, slot.Inst.Rs2) {
		v2 = ex0Result
		fwd.Rs2 = true
	}
	return v1, v2, fwd
}

// Lane1 resolves the younger decode lane's operands, preferring execute
// lane 1 over execute lane 0 per operand.
func (u *ForwardUnit) Lane1(
	slot *DecodeSlot,
	rs1, rs2 uint32,
	ex0 *ExecSlot, ex0Result uint32,
	ex1 *ExecSlot, ex1Result uint32,
) (v1, v2 uint32, fwd Lane1Forward) {
	v1, v2 = rs1, rs2
	if !slot.Valid {
		return v1, v2, fwd
	}
	if slot.Inst.UsesRs1 {
		v1, fwd.Rs1 = u.pick(slot.Inst.Rs1, rs1, ex0, ex0Result, ex1, ex1Result)
	}
	if slot.Inst.UsesRs2 {
		v2, fwd.Rs2 = u.pick(slot.Inst.Rs2, rs2, ex0, ex0Result, ex1, ex1Result)
	}
	return v1, v2, fwd
}

// pick selects the freshest available value for one register.
func (u *ForwardUnit) pick(
	reg uint8,
	regValue uint32,
	ex0 *ExecSlot, ex0Result uint32,
	ex1 *ExecSlot, ex1Result uint32,
) (uint32, ForwardSource) {
	if u.provides(ex1, reg) {
		return ex1Result, ForwardEX1
	}
	if u.provides(ex0, reg) {
		return ex0Result, ForwardEX0
	}
	return regValue, ForwardNone
}
