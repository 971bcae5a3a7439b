package emu

import "github.com/sarchlab/r2sim/insts"

// EvalALU computes one RV32I arithmetic/logic operation. Shift amounts use
// the low 5 bits of the second operand. The function is pure; both execute
// lanes and the functional emulator evaluate through it.
func EvalALU(op insts.ALUOp, a, b uint32) uint32 {
	switch op {
	case insts.ALUAdd:
		return a + b
	case insts.ALUSub:
		return a - b
	case insts.ALUSll:
		return a << (b & 0x1F)
	case insts.ALUSlt:
		if int32(a) < int32(b) {
			return 1
		}
		return 0
	case insts.ALUSltu:
		if a < b {
			return 1
		}
		return 0
	case insts.ALUXor:
		return a ^ b
	case insts.ALUSrl:
		return a >> (b & 0x1F)
	case insts.ALUSra:
		return uint32(int32(a) >> (b & 0x1F))
	case insts.ALUOr:
		return a | b
	case insts.ALUAnd:
		return a & b
	default:
		return 0
	}
}

// EvalBranch evaluates a branch comparator over the two register operands.
// Undefined comparator encodings are never taken.
func EvalBranch(cond insts.BranchCond, a, b uint32) bool {
	switch cond {
	case insts.CondEQ:
		return a == b
	case insts.CondNE:
		return a != b
	case insts.CondLT:
		return int32(a) < int32(b)
	case insts.CondGE:
		return int32(a) >= int32(b)
	case insts.CondLTU:
		return a < b
	case insts.CondGEU:
		return a >= b
	default:
		return false
	}
}
