// Package pipeline implements a dual-issue, in-order, 3-stage RV32I
// pipeline with cycle-accurate timing.
package pipeline

import "github.com/sarchlab/r2sim/insts"

// DecodeSlot is one lane of the decode stage: the fetched word together
// with its decoded control and the operand values read this cycle. The
// operand values already reflect any forwarding from the execute stage.
type DecodeSlot struct {
	// Valid is false for a bubble. A slot whose fetched word is the
	// canonical NOP encoding is treated as a bubble.
	Valid bool

	// PC is the address the word was fetched from.
	PC uint32

	// Word is the raw 32-bit instruction word.
	Word uint32

	// Inst is the decoded control word.
	Inst *insts.Instruction

	// Rs1Value and Rs2Value are the source operand values after the
	// forwarding network has been applied.
	Rs1Value uint32
	Rs2Value uint32
}

// Clear resets the slot to a bubble carrying the NOP encoding.
func (s *DecodeSlot) Clear() {
	s.Valid = false
	s.PC = 0
	s.Word = insts.NOP
	s.Inst = nil
	s.Rs1Value = 0
	s.Rs2Value = 0
}

// ExecSlot is one lane of the decode/execute register. Admitted decode
// slots latch here at the end of a cycle and execute the next cycle.
type ExecSlot struct {
	// Valid is false for a bubble. Bubbles never write registers,
	// never touch memory, and never redirect the front end.
	Valid bool

	// PC is the address the instruction was fetched from.
	PC uint32

	// Word is the raw 32-bit instruction word. Bubbles carry the NOP
	// encoding.
	Word uint32

	// Inst is the decoded control word.
	Inst *insts.Instruction

	// Rs1Value and Rs2Value are the operand values captured at issue,
	// including any forwarded execute results.
	Rs1Value uint32
	Rs2Value uint32
}

// Clear resets the slot to a bubble carrying the NOP encoding.
func (s *ExecSlot) Clear() {
	s.Valid = false
	s.PC = 0
	s.Word = insts.NOP
	s.Inst = nil
	s.Rs1Value = 0
	s.Rs2Value = 0
}

// WritesReg reports whether the slot will commit a register value this
// cycle. Writes to x0 are discarded by the register file and are also
// excluded here so hazard and forwarding logic never track them.
func (s *ExecSlot) WritesReg() bool {
	return s.Valid && s.Inst != nil && s.Inst.WritesReg && s.Inst.Rd != 0
}

// IsLoad reports whether the slot is a memory read. Load results are
// not available combinationally, so loads are excluded from forwarding.
func (s *ExecSlot) IsLoad() bool {
	return s.Valid && s.Inst != nil && s.Inst.MemRead
}
