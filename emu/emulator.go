package emu

import (
	"github.com/sarchlab/r2sim/insts"
)

// ExitSyscall is the a7 value that turns a halt into a program exit with
// the code carried in a0.
const ExitSyscall = 93

// Emulator executes RV32I instructions functionally, one per step. It is
// the architectural reference the timing model is cross-checked against.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	// Execution state
	pc               uint32
	halted           bool
	exitCode         int32
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory attaches an existing memory instead of a fresh one.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new RV32I emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  NewMemory(),
		decoder: insts.NewDecoder(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// PC returns the current program counter.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint32) {
	e.pc = pc
}

// Halted reports whether a system instruction has been reached.
func (e *Emulator) Halted() bool {
	return e.halted
}

// ExitCode returns the exit code carried by the halting ecall, or 0.
func (e *Emulator) ExitCode() int32 {
	return e.exitCode
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadWords writes a program image into memory, one word per address step
// of 4, starting at base.
func (e *Emulator) LoadWords(base uint32, words []uint32) {
	for i, w := range words {
		e.memory.Write32(base+uint32(i)*4, w)
	}
}

// Reset restores the power-on state. Memory contents are preserved.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.pc = 0
	e.halted = false
	e.exitCode = 0
	e.instructionCount = 0
}

// Step executes a single instruction.
// Returns false once the emulator has halted or hit the instruction
// limit. Only a system instruction sets the halted state, so a limit
// stop is distinguishable from a program exit.
func (e *Emulator) Step() bool {
	if e.halted {
		return false
	}
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return false
	}

	word := e.memory.FetchWord(e.pc)
	inst := e.decoder.Decode(word)
	e.execute(inst)
	e.instructionCount++
	return !e.halted
}

// Run executes instructions until the program halts or the instruction
// limit is reached. Returns the exit code.
func (e *Emulator) Run() int32 {
	for e.Step() {
	}
	return e.exitCode
}

// execute applies one decoded instruction to the architectural state.
func (e *Emulator) execute(inst *insts.Instruction) {
	nextPC := e.pc + 4

	switch {
	case inst.IsSystem:
		// Halt. An ecall with a7 = 93 carries an exit code in a0.
		if e.regFile.ReadReg(17) == ExitSyscall {
			e.exitCode = int32(e.regFile.ReadReg(10))
		}
		e.halted = true

	case inst.IsBranch:
		if EvalBranch(inst.Cond, e.regFile.ReadReg(inst.Rs1), e.regFile.ReadReg(inst.Rs2)) {
			nextPC = e.pc + inst.Imm
		}

	case inst.IsJump:
		target := e.pc + inst.Imm
		if inst.IsJALR {
			target = (e.regFile.ReadReg(inst.Rs1) + inst.Imm) &^ 1
		}
		if inst.WritesReg {
			e.regFile.WriteReg(inst.Rd, e.pc+4)
		}
		nextPC = target

	case inst.MemRead:
		addr := e.regFile.ReadReg(inst.Rs1) + inst.Imm
		word := e.memory.ReadWord(addr)
		e.regFile.WriteReg(inst.Rd, LoadExtract(inst.MemWidth, inst.MemUnsigned, addr, word))

	case inst.MemWrite:
		addr := e.regFile.ReadReg(inst.Rs1) + inst.Imm
		data, mask := StoreFormat(inst.MemWidth, addr, e.regFile.ReadReg(inst.Rs2))
		e.memory.WriteMasked(addr, data, mask)

	default:
		// ALU, LUI, AUIPC, and the unrecognized-opcode fallback.
		if inst.WritesReg {
			e.regFile.WriteReg(inst.Rd, EvalALU(inst.ALUOp, e.operandA(inst), e.operandB(inst)))
		}
	}

	e.pc = nextPC
}

// operandA resolves the first execute operand per the control word.
func (e *Emulator) operandA(inst *insts.Instruction) uint32 {
	switch inst.ASel {
	case insts.ASelPC:
		return e.pc
	case insts.ASelZero:
		return 0
	default:
		return e.regFile.ReadReg(inst.Rs1)
	}
}

// operandB resolves the second execute operand per the control word.
func (e *Emulator) operandB(inst *insts.Instruction) uint32 {
	if inst.BSel == insts.BSelImm {
		return inst.Imm
	}
	return e.regFile.ReadReg(inst.Rs2)
}
