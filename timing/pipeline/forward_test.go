package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/insts"
	"github.com/sarchlab/r2sim/timing/pipeline"
)

var fwdDecoder = insts.NewDecoder()

func consumerSlot(word uint32) *pipeline.DecodeSlot {
	return &pipeline.DecodeSlot{
		Valid: true,
		Word:  word,
		Inst:  fwdDecoder.Decode(word),
	}
}

var _ = Describe("ForwardUnit", func() {
	var unit *pipeline.ForwardUnit

	BeforeEach(func() {
		unit = pipeline.NewForwardUnit()
	})

	Describe("older lane", func() {
		It("should take both operands from execute lane 0", func() {
			// add x5, x1, x2 producing, add x3, x5, x5 consuming.
			producer := admittedSlot(0x002082B3)
			consumer := consumerSlot(0x005281B3)

			v1, v2, fwd := unit.Lane0(consumer, 11, 22, producer, 77)

			Expect(v1).To(Equal(uint32(77)))
			Expect(v2).To(Equal(uint32(77)))
			Expect(fwd.Rs1).To(BeTrue())
			Expect(fwd.Rs2).To(BeTrue())
		})

		It("should leave unrelated operands alone", func() {
			// addi x3, x5, 1 uses only rs1.
			producer := admittedSlot(0x002082B3)
			consumer := consumerSlot(0x00128193)

			v1, v2, fwd := unit.Lane0(consumer, 11, 22, producer, 77)

			Expect(v1).To(Equal(uint32(77)))
			Expect(v2).To(Equal(uint32(22)))
			Expect(fwd.Rs1).To(BeTrue())
			Expect(fwd.Rs2).To(BeFalse())
		})

		It("should forward store data", func() {
			// sw x5, 0(x1) carries x5 as rs2.
			producer := admittedSlot(0x002082B3)
			consumer := consumerSlot(0x0050A023)

			_, v2, fwd := unit.Lane0(consumer, 0, 22, producer, 77)

			Expect(v2).To(Equal(uint32(77)))
			Expect(fwd.Rs2).To(BeTrue())
		})

		It("should never forward from a load", func() {
			// lw x5, 0(x1) cannot supply x5 combinationally.
			producer := admittedSlot(0x0000A283)
			consumer := consumerSlot(0x005281B3)

			v1, _, fwd := unit.Lane0(consumer, 11, 11, producer, 77)

			Expect(v1).To(Equal(uint32(11)))
			Expect(fwd.Rs1).To(BeFalse())
		})

		It("should never forward x0", func() {
			// addi x0, x0, 5 writes nothing real.
			producer := admittedSlot(0x00500013)
			consumer := consumerSlot(0x000001B3) // add x3, x0, x0

			v1, v2, fwd := unit.Lane0(consumer, 0, 0, producer, 77)

			Expect(v1).To(Equal(uint32(0)))
			Expect(v2).To(Equal(uint32(0)))
			Expect(fwd.Rs1).To(BeFalse())
			Expect(fwd.Rs2).To(BeFalse())
		})

		It("should ignore bubbles on both sides", func() {
			producer := bubbleSlot()
			consumer := consumerSlot(0x005281B3)

			v1, _, fwd := unit.Lane0(consumer, 11, 11, producer, 77)
			Expect(v1).To(Equal(uint32(11)))
			Expect(fwd.Rs1).To(BeFalse())

			invalid := &pipeline.DecodeSlot{}
			invalid.Clear()
			v1, _, fwd = unit.Lane0(invalid, 11, 11, admittedSlot(0x002082B3), 77)
			Expect(v1).To(Equal(uint32(11)))
			Expect(fwd.Rs1).To(BeFalse())
		})
	})

	Describe("younger lane", func() {
		It("should prefer lane 1 when both lanes write the register", func() {
			ex0 := admittedSlot(0x06400293) // addi x5, x0, 100
			ex1 := admittedSlot(0x002082B3) // add x5, x1, x2
			consumer := consumerSlot(0x005281B3)

			v1, v2, fwd := unit.Lane1(consumer, 11, 22, ex0, 100, ex1, 200)

			Expect(v1).To(Equal(uint32(200)))
			Expect(v2).To(Equal(uint32(200)))
			Expect(fwd.Rs1).To(Equal(pipeline.ForwardEX1))
			Expect(fwd.Rs2).To(Equal(pipeline.ForwardEX1))
		})

		It("should fall back to lane 0", func() {
			ex0 := admittedSlot(0x06400293) // addi x5, x0, 100
			consumer := consumerSlot(0x005281B3)

			v1, _, fwd := unit.Lane1(consumer, 11, 22, ex0, 100, bubbleSlot(), 0)

			Expect(v1).To(Equal(uint32(100)))
			Expect(fwd.Rs1).To(Equal(pipeline.ForwardEX0))
		})

		It("should use the register file when nothing provides", func() {
			consumer := consumerSlot(0x005281B3)

			v1, v2, fwd := unit.Lane1(consumer, 11, 22, bubbleSlot(), 0, bubbleSlot(), 0)

			Expect(v1).To(Equal(uint32(11)))
			Expect(v2).To(Equal(uint32(22)))
			Expect(fwd.Rs1).To(Equal(pipeline.ForwardNone))
			Expect(fwd.Rs2).To(Equal(pipeline.ForwardNone))
		})

		It("should skip a load even when lane 0 could serve", func() {
			ex0 := admittedSlot(0x06400293) // addi x5, x0, 100
			ex1 := admittedSlot(0x0000A283) // lw x5, 0(x1)
			consumer := consumerSlot(0x005281B3)

			v1, _, fwd := unit.Lane1(consumer, 11, 22, ex0, 100, ex1, 0)

			Expect(v1).To(Equal(uint32(100)))
			Expect(fwd.Rs1).To(Equal(pipeline.ForwardEX0))
		})
	})

	Describe("source labels", func() {
		It("should spell trace values", func() {
			Expect(pipeline.ForwardNone.String()).To(Equal("REG"))
			Expect(pipeline.ForwardEX1.String()).To(Equal("EX1"))
			Expect(pipeline.ForwardEX0.String()).To(Equal("EX0"))
		})
	})
})
