package pipeline

// IssueDecision is the per-cycle output of the issue unit: which decode
// lanes are admitted to execute, and the hazard flags behind the
// decision. The flags are computed unconditionally so they can be
// traced even on cycles where a structural rule already rejects the
// younger lane.
type IssueDecision struct {
	// Stall freezes the front end: the decode pair is held and both
	// execute slots receive bubbles. Raised when the older lane needs
	// a value that no forward path can deliver this cycle.
	Stall bool

	// Admit0 and Admit1 mark the lanes entering execute next cycle.
	Admit0 bool
	Admit1 bool

	// RAW1 marks a younger-lane read of a register still in flight,
	// including the older lane's same-cycle destination.
	RAW1 bool

	// WAW1 marks a younger-lane write of a register still in flight,
	// including the older lane's same-cycle destination.
	WAW1 bool

	// LoadUse0 marks an older-lane read of a register pending on an
	// in-flight load. It always implies Stall.
	LoadUse0 bool

	// LoadUse1 marks a younger-lane read pending on a load, either in
	// flight or sitting in the older lane this cycle. It rejects the
	// younger lane without stalling.
	LoadUse1 bool
}

// IssueUnit applies the in-order dual-issue rules. The older lane
// issues whenever it is valid and the pipeline is not stalled; the
// younger lane issues only alongside it and only when no data or
// structural hazard intervenes.
type IssueUnit struct{}

// NewIssueUnit creates an issue unit.
func NewIssueUnit() *IssueUnit {
	return &IssueUnit{}
}

// Decide evaluates one decode pair. view0 and view1 are the per-lane
// scoreboard views with forwardable producers already cleared.
func (u *IssueUnit) Decide(slot0, slot1 *DecodeSlot, view0, view1 View) IssueDecision {
	d := IssueDecision{}

	if slot0.Valid {
		// Anything still busy in the older lane's view has no
		// forward path: either a load or a value produced on
		// execute lane 1. Both require holding the pair one cycle
		// so the value can be read from the register file.
		d.Stall = view0.RAW(slot0.Inst)
		d.LoadUse0 = view0.LoadUse(slot0.Inst)
	}

	d.Admit0 = slot0.Valid && !d.Stall

	if slot1.Valid {
		// The younger lane also sees the older lane's same-cycle
		// admission as an in-flight producer.
		pairView := view1
		if slot0.Valid && slot0.Inst.WritesReg {
			pairView = pairView.WithProducer(slot0.Inst.Rd, slot0.Inst.MemRead)
		}
		d.RAW1 = pairView.RAW(slot1.Inst)
		d.WAW1 = pairView.WAW(slot1.Inst)
		d.LoadUse1 = pairView.LoadUse(slot1.Inst)
	}

	d.Admit1 = u.admitYounger(slot0, slot1, &d)
	return d
}

// admitYounger applies the younger-lane issue rules in order.
func (u *IssueUnit) admitYounger(slot0, slot1 *DecodeSlot, d *IssueDecision) bool {
	if !slot1.Valid {
		return false
	}

	// An environment call always issues so the halt condition stays
	// reachable, even when the older lane is a bubble.
	if slot1.Inst.IsSystem {
		return !d.Stall
	}

	if d.Stall {
		return false
	}

	// The younger lane never issues around an invalid older lane.
	if !slot0.Valid {
		return false
	}

	if d.RAW1 || d.WAW1 || d.LoadUse1 {
		return false
	}

	// One memory port: at most one access per pair.
	if slot0.Inst.AccessesMemory() && slot1.Inst.AccessesMemory() {
		return false
	}

	// One redirect resolver worth of control flow per pair.
	if slot0.Inst.IsControlFlow() && slot1.Inst.IsControlFlow() {
		return false
	}

	// Control flow does not pair with memory in either order.
	if slot0.Inst.IsControlFlow() && slot1.Inst.AccessesMemory() {
		return false
	}
	if slot0.Inst.AccessesMemory() && slot1.Inst.IsControlFlow() {
		return false
	}

	// Upper-immediate forms only issue on the older lane.
	if slot1.Inst.IsLUI || slot1.Inst.IsAUIPC {
		return false
	}

	return true
}
