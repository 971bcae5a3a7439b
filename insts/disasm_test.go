package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/insts"
)

var _ = Describe("Disassemble", func() {
	It("should render NOP and the all-zero word as nop", func() {
		Expect(insts.Disassemble(insts.NOP)).To(Equal("nop"))
		Expect(insts.Disassemble(0)).To(Equal("nop"))
	})

	It("should render R-type operations", func() {
		Expect(insts.Disassemble(0x002081B3)).To(Equal("add x3, x1, x2"))
		Expect(insts.Disassemble(0x402081B3)).To(Equal("sub x3, x1, x2"))
	})

	It("should render immediates in decimal", func() {
		Expect(insts.Disassemble(0x00500093)).To(Equal("addi x1, x0, 5"))
		Expect(insts.Disassemble(0xFFF08093)).To(Equal("addi x1, x1, -1"))
		Expect(insts.Disassemble(0x00311093)).To(Equal("slli x1, x2, 3"))
	})

	It("should render loads and stores with offset notation", func() {
		Expect(insts.Disassemble(0x00012083)).To(Equal("lw x1, 0(x2)"))
		Expect(insts.Disassemble(0x00102023)).To(Equal("sw x1, 0(x0)"))
		Expect(insts.Disassemble(0x003102A3)).To(Equal("sb x3, 5(x2)"))
	})

	It("should render branches with signed offsets", func() {
		Expect(insts.Disassemble(0x00208463)).To(Equal("beq x1, x2, 8"))
		Expect(insts.Disassemble(0xFE209EE3)).To(Equal("bne x1, x2, -4"))
	})

	It("should render jumps", func() {
		Expect(insts.Disassemble(0x010000EF)).To(Equal("jal x1, 16"))
		Expect(insts.Disassemble(0x004100E7)).To(Equal("jalr x1, 4(x2)"))
	})

	It("should render upper immediates with the shifted value", func() {
		Expect(insts.Disassemble(0x123450B7)).To(Equal("lui x1, 305418240"))
		Expect(insts.Disassemble(0x00001097)).To(Equal("auipc x1, 4096"))
	})

	It("should render system instructions", func() {
		Expect(insts.Disassemble(0x00000073)).To(Equal("system"))
	})

	It("should fall back to a raw word directive", func() {
		Expect(insts.Disassemble(0xFFFFFFFF)).To(Equal(".word 0xffffffff"))
	})
})
