// Package insts provides RV32I instruction decoding support.
//
// It includes:
//   - Instruction representation (decoded control word)
//   - Decoder for the RV32I base integer instruction set
//   - Immediate extraction for the six encoding forms
//   - Disassembly for traces and debugging
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00A08093) // addi x1, x1, 10
package insts

import "fmt"

// NOP is the canonical no-operation encoding (addi x0, x0, 0).
// Flushed and bubbled pipeline slots carry this word.
const NOP uint32 = 0x00000013

// RegName returns the plain numeric name of a register (x0-x31).
func RegName(reg uint8) string {
	return fmt.Sprintf("x%d", reg&0x1F)
}
