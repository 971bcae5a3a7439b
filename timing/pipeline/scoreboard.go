package pipeline

import "github.com/sarchlab/r2sim/insts"

// Scoreboard tracks in-flight register destinations as 32-bit vectors,
// one bit per architectural register. A register's busy bit is set when
// the instruction producing it is admitted to execute and cleared when
// that instruction commits. The loadPending vector marks the subset of
// busy registers produced by loads, whose values cannot be forwarded.
//
// Bit 0 is never set: x0 has no producer.
type Scoreboard struct {
	busy        uint32
	loadPending uint32
}

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{}
}

// Reset clears both vectors.
func (s *Scoreboard) Reset() {
	s.busy = 0
	s.loadPending = 0
}

// BusyVec returns the raw busy vector.
func (s *Scoreboard) BusyVec() uint32 {
	return s.busy
}

// LoadPendingVec returns the raw load-pending vector.
func (s *Scoreboard) LoadPendingVec() uint32 {
	return s.loadPending
}

// regBit returns the vector bit for a register, or 0 for x0.
func regBit(reg uint8) uint32 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return 1 << reg
}

// View is the combinational per-lane picture of the scoreboard. Busy
// bits whose producers can forward into the viewing lane this cycle are
// cleared; load-produced bits always remain visible because a load's
// result only exists after its commit edge.
type View struct {
	Busy        uint32
	LoadPending uint32
}

// LaneView builds the hazard view for one decode lane. clearable is the
// set of destination bits whose execute-stage producers have a forward
// path into that lane (older lane: lane 0 of execute; younger lane:
// both execute lanes). Producers that are loads must not be in the
// mask.
func (s *Scoreboard) LaneView(clearable uint32) View {
	return View{
		Busy:        s.busy &^ clearable,
		LoadPending: s.loadPending,
	}
}

// RAW reports whether any used source register of inst is busy in the
// view. Sources on x0 never participate.
func (v View) RAW(inst *insts.Instruction) bool {
	var sources uint32
	if inst.UsesRs1 {
		sources |= regBit(inst.Rs1)
	}
	if inst.UsesRs2 {
		sources |= regBit(inst.Rs2)
	}
	return v.Busy&sources != 0
}

// LoadUse reports whether any used source register of inst is pending
// on an in-flight load.
func (v View) LoadUse(inst *insts.Instruction) bool {
	var sources uint32
	if inst.UsesRs1 {
		sources |= regBit(inst.Rs1)
	}
	if inst.UsesRs2 {
		sources |= regBit(inst.Rs2)
	}
	return v.LoadPending&sources != 0
}

// WAW reports whether inst writes a register that is still busy in the
// view.
func (v View) WAW(inst *insts.Instruction) bool {
	if !inst.WritesReg {
		return false
	}
	return v.Busy&regBit(inst.Rd) != 0
}

// WithProducer returns a copy of the view with an additional in-flight
// destination set, used to let the younger lane see the older lane's
// same-cycle admission.
func (v View) WithProducer(rd uint8, isLoad bool) View {
	bit := regBit(rd)
	out := v
	out.Busy |= bit
	if isLoad {
		out.LoadPending |= bit
	}
	return out
}

// Advance applies one commit edge: clear holds the destination bits of
// both retiring execute slots and is removed unconditionally, then the
// destinations of the newly admitted slots are set. Clearing first
// keeps a back-to-back producer of the same register tracked.
func (s *Scoreboard) Advance(clear uint32, next0, next1 *ExecSlot) {
	s.busy &^= clear
	s.loadPending &^= clear

	if next0 != nil && next0.WritesReg() {
		bit := regBit(next0.Inst.Rd)
		s.busy |= bit
		if next0.Inst.MemRead {
			s.loadPending |= bit
		}
	}
	if next1 != nil && next1.WritesReg() {
		bit := regBit(next1.Inst.Rd)
		s.busy |= bit
		if next1.Inst.MemRead {
			s.loadPending |= bit
		}
	}
}
