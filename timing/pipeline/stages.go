package pipeline

import (
	"github.com/sarchlab/r2sim/emu"
	"github.com/sarchlab/r2sim/insts"
)

// FetchStage reads the two-wide fetch group for a cycle. Each lane has
// its own read-only instruction port with a same-cycle response.
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a fetch stage over instruction memory.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// FetchPair reads the words at pc and pc+4.
func (s *FetchStage) FetchPair(pc uint32) (word0, word1 uint32) {
	word0 = s.memory.FetchWord(pc)
	word1 = s.memory.FetchWord(pc + 4)
	return word0, word1
}

// DecodeStage decodes one fetched word and reads its source operands
// from the register file. Operand values here are the raw pre-commit
// register file contents; the forwarding network overlays execute
// results afterwards.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a decode stage over the register file.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{
		regFile: regFile,
		decoder: insts.NewDecoder(),
	}
}

// Decode fills a decode slot for the word fetched at pc. A slot is
// valid only when its word is not the NOP encoding.
func (s *DecodeStage) Decode(pc, word uint32) DecodeSlot {
	inst := s.decoder.Decode(word)
	return DecodeSlot{
		Valid:    word != insts.NOP,
		PC:       pc,
		Word:     word,
		Inst:     inst,
		Rs1Value: s.regFile.ReadReg(inst.Rs1),
		Rs2Value: s.regFile.ReadReg(inst.Rs2),
	}
}

// ExecResult is the combinational output of one execute lane.
type ExecResult struct {
	// Result is the value the lane will write back: the ALU output,
	// the link address for jumps, or the extracted load data once the
	// memory arbiter has answered.
	Result uint32

	// ALUResult is the raw ALU output. For memory operations it is
	// the effective address.
	ALUResult uint32

	// BranchTaken and BranchTarget report conditional branch
	// resolution. The target is computed for every valid branch, the
	// taken flag only when the condition holds.
	BranchTaken  bool
	BranchTarget uint32

	// JumpTaken and JumpTarget report unconditional transfers. JALR
	// targets have bit 0 forced to zero.
	JumpTaken  bool
	JumpTarget uint32

	// Mem is the lane's data-memory request, if any.
	Mem MemRequest

	// Halt is set by an environment call reaching execute.
	Halt bool
}

// Redirect returns the lane's front-end redirect, if it fires this
// cycle.
func (r ExecResult) Redirect() (bool, uint32) {
	if r.BranchTaken {
		return true, r.BranchTarget
	}
	if r.JumpTaken {
		return true, r.JumpTarget
	}
	return false, 0
}

// ExecuteStage evaluates one execute lane: ALU, branch resolution, and
// memory request generation. Both lanes share this logic; arbitration
// between them happens in the memory arbiter and the redirect
// priority mux.
type ExecuteStage struct{}

// NewExecuteStage creates an execute stage.
func NewExecuteStage() *ExecuteStage {
	return &ExecuteStage{}
}

// Execute evaluates one slot combinationally. Bubbles produce a zero
// result with no side effects.
func (s *ExecuteStage) Execute(slot *ExecSlot) ExecResult {
	result := ExecResult{}
	if !slot.Valid || slot.Inst == nil {
		return result
	}
	inst := slot.Inst

	var a uint32
	switch inst.ASel {
	case insts.ASelPC:
		a = slot.PC
	case insts.ASelZero:
		a = 0
	default:
		a = slot.Rs1Value
	}

	b := slot.Rs2Value
	if inst.BSel == insts.BSelImm {
		b = inst.Imm
	}

	result.ALUResult = emu.EvalALU(inst.ALUOp, a, b)

	switch {
	case inst.IsBranch:
		result.BranchTarget = slot.PC + inst.Imm
		result.BranchTaken = emu.EvalBranch(inst.Cond, slot.Rs1Value, slot.Rs2Value)
	case inst.IsJump:
		result.JumpTaken = true
		if inst.IsJALR {
			result.JumpTarget = (slot.Rs1Value + inst.Imm) &^ 1
		} else {
			result.JumpTarget = slot.PC + inst.Imm
		}
	case inst.MemRead:
		result.Mem = MemRequest{
			Read:     true,
			Addr:     result.ALUResult,
			Width:    inst.MemWidth,
			Unsigned: inst.MemUnsigned,
		}
	case inst.MemWrite:
		result.Mem = MemRequest{
			Write: true,
			Addr:  result.ALUResult,
			Data:  slot.Rs2Value,
			Width: inst.MemWidth,
		}
	case inst.IsSystem:
		result.Halt = true
	}

	switch inst.WBSel {
	case insts.WBPC4:
		result.Result = slot.PC + 4
	case insts.WBMem:
		// Filled in after arbitration.
	default:
		result.Result = result.ALUResult
	}

	return result
}
