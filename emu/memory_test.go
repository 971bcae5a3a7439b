package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
	})

	It("should read zero from untouched locations", func() {
		Expect(mem.Read32(0x1000)).To(Equal(uint32(0)))
	})

	It("should store words little-endian", func() {
		mem.Write32(0x100, 0x11223344)

		Expect(mem.Read8(0x100)).To(Equal(uint8(0x44)))
		Expect(mem.Read8(0x101)).To(Equal(uint8(0x33)))
		Expect(mem.Read8(0x102)).To(Equal(uint8(0x22)))
		Expect(mem.Read8(0x103)).To(Equal(uint8(0x11)))
	})

	It("should span page boundaries", func() {
		mem.Write32(0x0FFE, 0xAABBCCDD)

		Expect(mem.Read32(0x0FFE)).To(Equal(uint32(0xAABBCCDD)))
	})

	Describe("FetchWord", func() {
		It("should align the fetch address down to a word", func() {
			mem.Write32(0x200, 0x00500093)

			Expect(mem.FetchWord(0x200)).To(Equal(uint32(0x00500093)))
			Expect(mem.FetchWord(0x202)).To(Equal(uint32(0x00500093)))
		})
	})

	Describe("WriteMasked", func() {
		It("should write only the enabled byte lanes", func() {
			mem.Write32(0x300, 0xAAAAAAAA)

			mem.WriteMasked(0x300, 0x000000BB, 0b0001)

			Expect(mem.Read32(0x300)).To(Equal(uint32(0xAAAAAABB)))
		})

		It("should place a high half under mask 0b1100", func() {
			mem.Write32(0x300, 0x11111111)

			mem.WriteMasked(0x302, 0xBEEF0000, 0b1100)

			Expect(mem.Read32(0x300)).To(Equal(uint32(0xBEEF1111)))
		})

		It("should write the full word under mask 0b1111", func() {
			mem.WriteMasked(0x304, 0xCAFEBABE, 0b1111)

			Expect(mem.Read32(0x304)).To(Equal(uint32(0xCAFEBABE)))
		})
	})
})
