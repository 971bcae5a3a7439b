package emu

import "github.com/sarchlab/r2sim/insts"

// StoreFormat computes the data-port write value and 4-bit byte-enable mask
// for a store. Byte placement follows the low 2 address bits; half-word
// placement follows address bit 1 only. Bytes outside the mask carry
// don't-care data.
func StoreFormat(width insts.MemWidth, addr uint32, value uint32) (data uint32, mask uint8) {
	switch width {
	case insts.MemByte:
		shift := (addr & 3) * 8
		return value << shift, 1 << (addr & 3)
	case insts.MemHalf:
		if addr&2 != 0 {
			return value << 16, 0b1100
		}
		return value, 0b0011
	default:
		return value, 0b1111
	}
}

// LoadExtract selects the addressed sub-word from a fetched 32-bit word and
// sign- or zero-extends it. Byte selection follows the low 2 address bits;
// half-word selection follows address bit 1 only.
func LoadExtract(width insts.MemWidth, unsigned bool, addr uint32, word uint32) uint32 {
	switch width {
	case insts.MemByte:
		b := uint8(word >> ((addr & 3) * 8))
		if unsigned {
			return uint32(b)
		}
		return uint32(int32(int8(b)))
	case insts.MemHalf:
		h := uint16(word >> ((addr & 2) * 8))
		if unsigned {
			return uint32(h)
		}
		return uint32(int32(int16(h)))
	default:
		return word
	}
}
