// Package emu provides functional RV32I emulation.
package emu

// RegFile represents the RV32I integer register file.
// It contains 32 general-purpose registers; x0 is hardwired to zero.
type RegFile struct {
	// X holds general-purpose registers x0-x31.
	// X[0] always reads as 0 and ignores writes.
	X [32]uint32
}

// ReadReg reads a register value. Register 0 returns 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a value to a register. Writes to register 0 are discarded.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.X[reg] = value
}

// CommitPair applies the two write ports for one cycle in the fixed commit
// order: port 0 first, then port 1 unconditionally. A same-index collision
// therefore resolves in favor of the port-1 (younger lane) value.
func (r *RegFile) CommitPair(rd0 uint8, value0 uint32, we0 bool, rd1 uint8, value1 uint32, we1 bool) {
	if we0 {
		r.WriteReg(rd0, value0)
	}
	if we1 {
		r.WriteReg(rd1, value1)
	}
}

// Reset clears all registers to zero.
func (r *RegFile) Reset() {
	r.X = [32]uint32{}
}
