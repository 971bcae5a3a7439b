package insts

// ImmKind selects one of the RV32I immediate encoding forms.
type ImmKind uint8

const (
	ImmNone ImmKind = iota // no immediate
	ImmI                   // I-type: ALU immediates, loads, JALR
	ImmS                   // S-type: stores
	ImmB                   // B-type: conditional branches
	ImmU                   // U-type: LUI, AUIPC
	ImmJ                   // J-type: JAL
	ImmZ                   // shamt: immediate shifts, zero-extended
)

// ExtractImm extracts and extends the immediate of the given kind from an
// instruction word. All forms sign-extend except U (low 12 bits zero) and
// Z (zero-extended shift amount). The result is a 32-bit two's-complement
// value.
func ExtractImm(word uint32, kind ImmKind) uint32 {
	switch kind {
	case ImmI:
		return signExtend(word>>20, 12) // bits 31:20

	case ImmS:
		imm := ((word >> 25) << 5) | // bits 31:25 -> imm[11:5]
			((word >> 7) & 0x1F) // bits 11:7 -> imm[4:0]
		return signExtend(imm, 12)

	case ImmB:
		imm := ((word >> 31) << 12) | // bit 31 -> imm[12]
			(((word >> 7) & 0x1) << 11) | // bit 7 -> imm[11]
			(((word >> 25) & 0x3F) << 5) | // bits 30:25 -> imm[10:5]
			(((word >> 8) & 0xF) << 1) // bits 11:8 -> imm[4:1], imm[0]=0
		return signExtend(imm, 13)

	case ImmU:
		return word & 0xFFFFF000 // bits 31:12, low 12 bits zero

	case ImmJ:
		imm := ((word >> 31) << 20) | // bit 31 -> imm[20]
			(((word >> 12) & 0xFF) << 12) | // bits 19:12 -> imm[19:12]
			(((word >> 20) & 0x1) << 11) | // bit 20 -> imm[11]
			(((word >> 21) & 0x3FF) << 1) // bits 30:21 -> imm[10:1], imm[0]=0
		return signExtend(imm, 21)

	case ImmZ:
		return (word >> 20) & 0x1F // shamt field, zero-extended

	default:
		return 0
	}
}

// signExtend widens a value of the given bit width to 32 bits, replicating
// the sign bit.
func signExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}
