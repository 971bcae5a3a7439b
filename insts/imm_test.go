package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/insts"
)

var _ = Describe("ExtractImm", func() {
	Describe("I form", func() {
		It("should extract positive values", func() {
			// addi x1, x0, 2047 (max positive I immediate)
			word := uint32(2047)<<20 | 0x13 | 1<<7
			Expect(insts.ExtractImm(word, insts.ImmI)).To(Equal(uint32(2047)))
		})

		It("should sign-extend negative values", func() {
			// addi x1, x0, -2048 (min negative I immediate)
			word := uint32(0x800)<<20 | 0x13 | 1<<7
			Expect(int32(insts.ExtractImm(word, insts.ImmI))).To(Equal(int32(-2048)))
		})
	})

	Describe("S form", func() {
		It("should reassemble the split field", func() {
			// sw x1, 0(x0) -> imm 0
			Expect(insts.ExtractImm(0x00102023, insts.ImmS)).To(Equal(uint32(0)))
			// sb x3, 5(x2) -> imm 5
			Expect(insts.ExtractImm(0x003102A3, insts.ImmS)).To(Equal(uint32(5)))
		})

		It("should sign-extend", func() {
			// sw x1, -4(x2) -> imm[11:5]=0x7F, imm[4:0]=0x1C
			word := uint32(0x7F)<<25 | uint32(1)<<20 | uint32(2)<<15 |
				uint32(2)<<12 | uint32(0x1C)<<7 | 0x23
			Expect(int32(insts.ExtractImm(word, insts.ImmS))).To(Equal(int32(-4)))
		})
	})

	Describe("B form", func() {
		It("should force the low bit to zero", func() {
			// beq x1, x2, 8
			Expect(insts.ExtractImm(0x00208463, insts.ImmB)).To(Equal(uint32(8)))
		})

		It("should sign-extend backward offsets", func() {
			// bne x1, x2, -4
			Expect(int32(insts.ExtractImm(0xFE209EE3, insts.ImmB))).To(Equal(int32(-4)))
		})
	})

	Describe("U form", func() {
		It("should keep the low 12 bits zero", func() {
			// lui x1, 0x12345
			Expect(insts.ExtractImm(0x123450B7, insts.ImmU)).To(Equal(uint32(0x12345000)))
		})

		It("should not sign-extend", func() {
			// lui x1, 0xFFFFF
			word := uint32(0xFFFFF000) | 1<<7 | 0x37
			Expect(insts.ExtractImm(word, insts.ImmU)).To(Equal(uint32(0xFFFFF000)))
		})
	})

	Describe("J form", func() {
		It("should reassemble the permuted field", func() {
			// jal x1, 16
			Expect(insts.ExtractImm(0x010000EF, insts.ImmJ)).To(Equal(uint32(16)))
		})

		It("should sign-extend backward targets", func() {
			// jal x0, -8
			Expect(int32(insts.ExtractImm(0xFF9FF06F, insts.ImmJ))).To(Equal(int32(-8)))
		})
	})

	Describe("Z form", func() {
		It("should zero-extend the shift amount", func() {
			// srai x1, x2, 31 has funct7 bit 5 set above the shamt
			word := uint32(0x20)<<25 | uint32(31)<<20 | uint32(2)<<15 |
				uint32(5)<<12 | uint32(1)<<7 | 0x13
			Expect(insts.ExtractImm(word, insts.ImmZ)).To(Equal(uint32(31)))
		})
	})

	It("should return zero for ImmNone", func() {
		Expect(insts.ExtractImm(0xFFFFFFFF, insts.ImmNone)).To(Equal(uint32(0)))
	})
})
