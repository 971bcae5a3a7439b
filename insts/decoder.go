package insts

// Op identifies a specific RV32I operation.
type Op uint16

const (
	OpUnknown Op = iota

	// Register-register ALU (opcode 0x33)
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	// Register-immediate ALU (opcode 0x13)
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// Loads (opcode 0x03)
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// Stores (opcode 0x23)
	OpSB
	OpSH
	OpSW

	// Control flow
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpJAL
	OpJALR

	// Upper immediates and system
	OpLUI
	OpAUIPC
	OpSYSTEM
)

// Format identifies the major instruction class selected by the opcode field.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatR              // register-register ALU (opcode 0x33)
	FormatI              // register-immediate ALU (opcode 0x13)
	FormatLoad           // loads (opcode 0x03)
	FormatStore          // stores (opcode 0x23)
	FormatBranch         // conditional branches (opcode 0x63)
	FormatJAL            // jump and link (opcode 0x6F)
	FormatJALR           // jump and link register (opcode 0x67)
	FormatLUI            // load upper immediate (opcode 0x37)
	FormatAUIPC          // add upper immediate to pc (opcode 0x17)
	FormatSystem         // system/halt (opcode 0x73)
)

// ALUOp selects the arithmetic/logic operation an execute lane performs.
type ALUOp uint8

const (
	ALUAdd  ALUOp = iota // addition (also address generation)
	ALUSub               // subtraction
	ALUSll               // shift left logical
	ALUSlt               // set if signed less than
	ALUSltu              // set if unsigned less than
	ALUXor               // bitwise exclusive or
	ALUSrl               // shift right logical
	ALUSra               // shift right arithmetic
	ALUOr                // bitwise or
	ALUAnd               // bitwise and
)

// BranchCond selects the branch comparator. Values match the funct3
// encoding of the branch opcode.
type BranchCond uint8

const (
	CondEQ  BranchCond = 0b000 // equal
	CondNE  BranchCond = 0b001 // not equal
	CondLT  BranchCond = 0b100 // signed less than
	CondGE  BranchCond = 0b101 // signed greater or equal
	CondLTU BranchCond = 0b110 // unsigned less than
	CondGEU BranchCond = 0b111 // unsigned greater or equal
)

// MemWidth encodes the data memory access size.
type MemWidth uint8

const (
	MemNone MemWidth = iota // no memory access
	MemByte                 // 8-bit access
	MemHalf                 // 16-bit access
	MemWord                 // 32-bit access
)

// OperandASel selects the first execute operand source.
type OperandASel uint8

const (
	ASelReg  OperandASel = iota // rs1 register value
	ASelPC                      // instruction pc (AUIPC)
	ASelZero                    // constant zero (LUI)
)

// OperandBSel selects the second execute operand source.
type OperandBSel uint8

const (
	BSelReg OperandBSel = iota // rs2 register value
	BSelImm                    // extracted immediate
)

// WritebackSel selects the value committed to rd.
type WritebackSel uint8

const (
	WBAlu WritebackSel = iota // ALU result
	WBMem                     // load data
	WBPC4                     // pc + 4 (JAL/JALR link value)
)

// Instruction is the decoded control word for one RV32I instruction.
// The Decoder produces it once; it is never mutated afterward.
type Instruction struct {
	// Word is the raw 32-bit instruction encoding.
	Word uint32

	// Op is the specific operation; Format is the major class.
	Op     Op
	Format Format

	// Register index fields.
	Rd  uint8 // destination register (bits 11:7)
	Rs1 uint8 // first source register (bits 19:15)
	Rs2 uint8 // second source register (bits 24:20)

	// UsesRs1/UsesRs2 report whether the source index fields carry a real
	// register dependency. Fields unused by the instruction class, and
	// index 0, are masked so hazard logic can ignore them.
	UsesRs1 bool
	UsesRs2 bool

	// ImmKind selects the immediate encoding; Imm holds the extracted value.
	ImmKind ImmKind
	Imm     uint32

	// Execute controls.
	ALUOp ALUOp
	ASel  OperandASel
	BSel  OperandBSel
	Cond  BranchCond

	// Control-flow flags.
	IsBranch bool
	IsJump   bool // JAL or JALR
	IsJALR   bool

	// Memory access controls.
	MemRead     bool
	MemWrite    bool
	MemWidth    MemWidth
	MemUnsigned bool

	// Writeback controls.
	WritesReg bool
	WBSel     WritebackSel

	// Class flags.
	IsLUI    bool
	IsAUIPC  bool
	IsSystem bool
}

// AccessesMemory reports whether the instruction reads or writes data memory.
func (i *Instruction) AccessesMemory() bool {
	return i.MemRead || i.MemWrite
}

// IsControlFlow reports whether the instruction can redirect the pc.
func (i *Instruction) IsControlFlow() bool {
	return i.IsBranch || i.IsJump
}

// Opcode field values (instruction bits 6:0).
const (
	opcodeOpReg  = 0x33 // register-register ALU
	opcodeOpImm  = 0x13 // register-immediate ALU
	opcodeLoad   = 0x03 // loads
	opcodeStore  = 0x23 // stores
	opcodeBranch = 0x63 // conditional branches
	opcodeJAL    = 0x6F // jump and link
	opcodeJALR   = 0x67 // jump and link register
	opcodeLUI    = 0x37 // load upper immediate
	opcodeAUIPC  = 0x17 // add upper immediate to pc
	opcodeSystem = 0x73 // system/halt
)

// Decoder decodes RV32I instruction words into control words.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. Unrecognized opcodes decode to
// a no-effect control word (no register write, no memory access) rather
// than an error.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word: word,
		Rd:   uint8((word >> 7) & 0x1F),  // bits 11:7
		Rs1:  uint8((word >> 15) & 0x1F), // bits 19:15
		Rs2:  uint8((word >> 20) & 0x1F), // bits 24:20
	}

	switch word & 0x7F { // opcode, bits 6:0
	case opcodeOpReg:
		d.decodeOpReg(word, inst)
	case opcodeOpImm:
		d.decodeOpImm(word, inst)
	case opcodeLoad:
		d.decodeLoad(word, inst)
	case opcodeStore:
		d.decodeStore(word, inst)
	case opcodeBranch:
		d.decodeBranch(word, inst)
	case opcodeJAL:
		d.decodeJAL(inst)
	case opcodeJALR:
		d.decodeJALR(inst)
	case opcodeLUI:
		d.decodeLUI(inst)
	case opcodeAUIPC:
		d.decodeAUIPC(inst)
	case opcodeSystem:
		d.decodeSystem(inst)
	default:
		d.decodeUnknown(inst)
	}

	// x0 is hardwired zero and never a real dependency.
	if inst.Rs1 == 0 {
		inst.UsesRs1 = false
	}
	if inst.Rs2 == 0 {
		inst.UsesRs2 = false
	}

	inst.Imm = ExtractImm(word, inst.ImmKind)
	return inst
}

func (d *Decoder) decodeOpReg(word uint32, inst *Instruction) {
	inst.Format = FormatR
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.WritesReg = true
	inst.ASel = ASelReg
	inst.BSel = BSelReg
	inst.WBSel = WBAlu

	funct3 := (word >> 12) & 0x7 // bits 14:12
	alt := (word>>30)&0x1 == 1   // funct7 bit 5 selects SUB/SRA

	switch funct3 {
	case 0b000:
		if alt {
			inst.Op, inst.ALUOp = OpSUB, ALUSub
		} else {
			inst.Op, inst.ALUOp = OpADD, ALUAdd
		}
	case 0b001:
		inst.Op, inst.ALUOp = OpSLL, ALUSll
	case 0b010:
		inst.Op, inst.ALUOp = OpSLT, ALUSlt
	case 0b011:
		inst.Op, inst.ALUOp = OpSLTU, ALUSltu
	case 0b100:
		inst.Op, inst.ALUOp = OpXOR, ALUXor
	case 0b101:
		if alt {
			inst.Op, inst.ALUOp = OpSRA, ALUSra
		} else {
			inst.Op, inst.ALUOp = OpSRL, ALUSrl
		}
	case 0b110:
		inst.Op, inst.ALUOp = OpOR, ALUOr
	case 0b111:
		inst.Op, inst.ALUOp = OpAND, ALUAnd
	}
}

func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.UsesRs1 = true
	inst.WritesReg = true
	inst.ImmKind = ImmI
	inst.ASel = ASelReg
	inst.BSel = BSelImm
	inst.WBSel = WBAlu

	switch (word >> 12) & 0x7 { // funct3
	case 0b000:
		inst.Op, inst.ALUOp = OpADDI, ALUAdd
	case 0b001:
		inst.Op, inst.ALUOp = OpSLLI, ALUSll
		inst.ImmKind = ImmZ
	case 0b010:
		inst.Op, inst.ALUOp = OpSLTI, ALUSlt
	case 0b011:
		inst.Op, inst.ALUOp = OpSLTIU, ALUSltu
	case 0b100:
		inst.Op, inst.ALUOp = OpXORI, ALUXor
	case 0b101:
		if (word>>30)&0x1 == 1 { // funct7 bit 5 selects arithmetic shift
			inst.Op, inst.ALUOp = OpSRAI, ALUSra
		} else {
			inst.Op, inst.ALUOp = OpSRLI, ALUSrl
		}
		inst.ImmKind = ImmZ
	case 0b110:
		inst.Op, inst.ALUOp = OpORI, ALUOr
	case 0b111:
		inst.Op, inst.ALUOp = OpANDI, ALUAnd
	}
}

func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	inst.Format = FormatLoad
	inst.UsesRs1 = true
	inst.WritesReg = true
	inst.ImmKind = ImmI
	inst.ALUOp = ALUAdd // address = rs1 + imm
	inst.ASel = ASelReg
	inst.BSel = BSelImm
	inst.MemRead = true
	inst.WBSel = WBMem

	switch (word >> 12) & 0x7 { // funct3
	case 0b000:
		inst.Op, inst.MemWidth = OpLB, MemByte
	case 0b001:
		inst.Op, inst.MemWidth = OpLH, MemHalf
	case 0b100:
		inst.Op, inst.MemWidth = OpLBU, MemByte
		inst.MemUnsigned = true
	case 0b101:
		inst.Op, inst.MemWidth = OpLHU, MemHalf
		inst.MemUnsigned = true
	default:
		inst.Op, inst.MemWidth = OpLW, MemWord
	}
}

func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	inst.Format = FormatStore
	inst.UsesRs1 = true
	inst.UsesRs2 = true // store data
	inst.ImmKind = ImmS
	inst.ALUOp = ALUAdd // address = rs1 + imm
	inst.ASel = ASelReg
	inst.BSel = BSelImm
	inst.MemWrite = true

	switch (word >> 12) & 0x7 { // funct3
	case 0b000:
		inst.Op, inst.MemWidth = OpSB, MemByte
	case 0b001:
		inst.Op, inst.MemWidth = OpSH, MemHalf
	default:
		inst.Op, inst.MemWidth = OpSW, MemWord
	}
}

func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Format = FormatBranch
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.ImmKind = ImmB
	inst.IsBranch = true
	inst.Cond = BranchCond((word >> 12) & 0x7) // funct3

	switch inst.Cond {
	case CondEQ:
		inst.Op = OpBEQ
	case CondNE:
		inst.Op = OpBNE
	case CondLT:
		inst.Op = OpBLT
	case CondGE:
		inst.Op = OpBGE
	case CondLTU:
		inst.Op = OpBLTU
	case CondGEU:
		inst.Op = OpBGEU
	}
}

func (d *Decoder) decodeJAL(inst *Instruction) {
	inst.Op = OpJAL
	inst.Format = FormatJAL
	inst.ImmKind = ImmJ
	inst.IsJump = true
	inst.WritesReg = true
	inst.WBSel = WBPC4
}

func (d *Decoder) decodeJALR(inst *Instruction) {
	inst.Op = OpJALR
	inst.Format = FormatJALR
	inst.UsesRs1 = true
	inst.ImmKind = ImmI
	inst.IsJump = true
	inst.IsJALR = true
	inst.WritesReg = true
	inst.WBSel = WBPC4
}

func (d *Decoder) decodeLUI(inst *Instruction) {
	inst.Op = OpLUI
	inst.Format = FormatLUI
	inst.ImmKind = ImmU
	inst.IsLUI = true
	inst.WritesReg = true
	inst.ALUOp = ALUAdd // result = 0 + imm
	inst.ASel = ASelZero
	inst.BSel = BSelImm
	inst.WBSel = WBAlu
}

func (d *Decoder) decodeAUIPC(inst *Instruction) {
	inst.Op = OpAUIPC
	inst.Format = FormatAUIPC
	inst.ImmKind = ImmU
	inst.IsAUIPC = true
	inst.WritesReg = true
	inst.ALUOp = ALUAdd // result = pc + imm
	inst.ASel = ASelPC
	inst.BSel = BSelImm
	inst.WBSel = WBAlu
}

func (d *Decoder) decodeSystem(inst *Instruction) {
	inst.Op = OpSYSTEM
	inst.Format = FormatSystem
	inst.IsSystem = true
}

// decodeUnknown fills the fallback control word: an immediate add with no
// register write and no memory access, architecturally a no-op.
func (d *Decoder) decodeUnknown(inst *Instruction) {
	inst.Op = OpUnknown
	inst.Format = FormatUnknown
	inst.ALUOp = ALUAdd
	inst.BSel = BSelImm
}
