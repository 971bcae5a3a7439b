package insts

import "fmt"

var opNames = map[Op]string{
	OpADD:    "add",
	OpSUB:    "sub",
	OpSLL:    "sll",
	OpSLT:    "slt",
	OpSLTU:   "sltu",
	OpXOR:    "xor",
	OpSRL:    "srl",
	OpSRA:    "sra",
	OpOR:     "or",
	OpAND:    "and",
	OpADDI:   "addi",
	OpSLTI:   "slti",
	OpSLTIU:  "sltiu",
	OpXORI:   "xori",
	OpORI:    "ori",
	OpANDI:   "andi",
	OpSLLI:   "slli",
	OpSRLI:   "srli",
	OpSRAI:   "srai",
	OpLB:     "lb",
	OpLH:     "lh",
	OpLW:     "lw",
	OpLBU:    "lbu",
	OpLHU:    "lhu",
	OpSB:     "sb",
	OpSH:     "sh",
	OpSW:     "sw",
	OpBEQ:    "beq",
	OpBNE:    "bne",
	OpBLT:    "blt",
	OpBGE:    "bge",
	OpBLTU:   "bltu",
	OpBGEU:   "bgeu",
	OpJAL:    "jal",
	OpJALR:   "jalr",
	OpLUI:    "lui",
	OpAUIPC:  "auipc",
	OpSYSTEM: "system",
}

// String returns the assembly mnemonic for the operation.
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

var disasmDecoder = NewDecoder()

// Disassemble renders an instruction word as assembly text with plain
// numeric register names and decimal immediates. The canonical NOP and the
// all-zero word render as "nop"; unrecognized encodings render as a raw
// .word directive.
func Disassemble(word uint32) string {
	if word == 0 || word == NOP {
		return "nop"
	}

	inst := disasmDecoder.Decode(word)
	switch inst.Format {
	case FormatR:
		return fmt.Sprintf("%s %s, %s, %s",
			inst.Op, RegName(inst.Rd), RegName(inst.Rs1), RegName(inst.Rs2))
	case FormatI:
		return fmt.Sprintf("%s %s, %s, %d",
			inst.Op, RegName(inst.Rd), RegName(inst.Rs1), int32(inst.Imm))
	case FormatLoad:
		return fmt.Sprintf("%s %s, %d(%s)",
			inst.Op, RegName(inst.Rd), int32(inst.Imm), RegName(inst.Rs1))
	case FormatStore:
		return fmt.Sprintf("%s %s, %d(%s)",
			inst.Op, RegName(inst.Rs2), int32(inst.Imm), RegName(inst.Rs1))
	case FormatBranch:
		return fmt.Sprintf("%s %s, %s, %d",
			inst.Op, RegName(inst.Rs1), RegName(inst.Rs2), int32(inst.Imm))
	case FormatJAL:
		return fmt.Sprintf("jal %s, %d", RegName(inst.Rd), int32(inst.Imm))
	case FormatJALR:
		return fmt.Sprintf("jalr %s, %d(%s)",
			RegName(inst.Rd), int32(inst.Imm), RegName(inst.Rs1))
	case FormatLUI, FormatAUIPC:
		return fmt.Sprintf("%s %s, %d", inst.Op, RegName(inst.Rd), int32(inst.Imm))
	case FormatSystem:
		return "system"
	default:
		return fmt.Sprintf(".word 0x%08x", word)
	}
}
