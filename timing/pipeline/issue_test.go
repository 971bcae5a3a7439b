package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/insts"
	"github.com/sarchlab/r2sim/timing/pipeline"
)

var issueDecoder = insts.NewDecoder()

func issueSlot(word uint32) *pipeline.DecodeSlot {
	return &pipeline.DecodeSlot{
		Valid: true,
		Word:  word,
		Inst:  issueDecoder.Decode(word),
	}
}

func emptySlot() *pipeline.DecodeSlot {
	s := &pipeline.DecodeSlot{}
	s.Clear()
	return s
}

var _ = Describe("IssueUnit", func() {
	var (
		unit *pipeline.IssueUnit
		none pipeline.View
	)

	BeforeEach(func() {
		unit = pipeline.NewIssueUnit()
		none = pipeline.View{}
	})

	It("should admit nothing for a bubble pair", func() {
		d := unit.Decide(emptySlot(), emptySlot(), none, none)

		Expect(d.Admit0).To(BeFalse())
		Expect(d.Admit1).To(BeFalse())
		Expect(d.Stall).To(BeFalse())
	})

	It("should admit a lone older instruction", func() {
		// addi x1, x0, 5
		d := unit.Decide(issueSlot(0x00500093), emptySlot(), none, none)

		Expect(d.Admit0).To(BeTrue())
		Expect(d.Admit1).To(BeFalse())
	})

	It("should admit an independent pair", func() {
		// addi x1, x0, 5 / addi x2, x0, 10
		d := unit.Decide(issueSlot(0x00500093), issueSlot(0x00A00113), none, none)

		Expect(d.Admit0).To(BeTrue())
		Expect(d.Admit1).To(BeTrue())
		Expect(d.RAW1).To(BeFalse())
		Expect(d.WAW1).To(BeFalse())
	})

	Describe("older lane holds", func() {
		It("should stall on a busy source with no forward path", func() {
			view0 := pipeline.View{Busy: 1 << 2}

			// add x3, x1, x2
			d := unit.Decide(issueSlot(0x002081B3), emptySlot(), view0, none)

			Expect(d.Stall).To(BeTrue())
			Expect(d.Admit0).To(BeFalse())
			Expect(d.LoadUse0).To(BeFalse())
		})

		It("should flag a load-use hold", func() {
			view0 := pipeline.View{Busy: 1 << 1, LoadPending: 1 << 1}

			// add x3, x1, x1
			d := unit.Decide(issueSlot(0x001081B3), emptySlot(), view0, none)

			Expect(d.Stall).To(BeTrue())
			Expect(d.LoadUse0).To(BeTrue())
		})

		It("should keep the younger lane out during a stall", func() {
			view0 := pipeline.View{Busy: 1 << 2}

			// add x3, x1, x2 / addi x5, x0, 100
			d := unit.Decide(issueSlot(0x002081B3), issueSlot(0x06400293), view0, none)

			Expect(d.Admit0).To(BeFalse())
			Expect(d.Admit1).To(BeFalse())
		})
	})

	Describe("younger lane data hazards", func() {
		It("should reject a same-pair read of the older destination", func() {
			// addi x1, x0, 5 / add x3, x1, x2
			d := unit.Decide(issueSlot(0x00500093), issueSlot(0x002081B3), none, none)

			Expect(d.Admit0).To(BeTrue())
			Expect(d.Admit1).To(BeFalse())
			Expect(d.RAW1).To(BeTrue())
		})

		It("should reject a read of an in-flight register", func() {
			view1 := pipeline.View{Busy: 1 << 2}

			// addi x5, x0, 100 / add x3, x1, x2
			d := unit.Decide(issueSlot(0x06400293), issueSlot(0x002081B3), none, view1)

			Expect(d.RAW1).To(BeTrue())
			Expect(d.Admit1).To(BeFalse())
		})

		It("should reject a same-pair write collision", func() {
			// addi x1, x0, 1 / addi x1, x0, 2
			d := unit.Decide(issueSlot(0x00100093), issueSlot(0x00200093), none, none)

			Expect(d.WAW1).To(BeTrue())
			Expect(d.Admit1).To(BeFalse())
		})

		It("should reject a write over an in-flight register", func() {
			view1 := pipeline.View{Busy: 1 << 1}

			// addi x5, x0, 100 / addi x1, x0, 2
			d := unit.Decide(issueSlot(0x06400293), issueSlot(0x00200093), none, view1)

			Expect(d.WAW1).To(BeTrue())
			Expect(d.Admit1).To(BeFalse())
		})

		It("should reject a consumer of the older lane's load", func() {
			// lw x1, 0(x5) / add x3, x1, x1
			d := unit.Decide(issueSlot(0x0002A083), issueSlot(0x001081B3), none, none)

			Expect(d.Admit0).To(BeTrue())
			Expect(d.Admit1).To(BeFalse())
			Expect(d.LoadUse1).To(BeTrue())
			Expect(d.RAW1).To(BeTrue())
		})

		It("should never hazard on x0 sources", func() {
			view1 := pipeline.View{Busy: ^uint32(0) &^ (1 << 10) &^ 1}

			// addi x5, x0, 100 / add x10, x0, x0
			d := unit.Decide(issueSlot(0x06400293), issueSlot(0x00000533), none, view1)

			Expect(d.RAW1).To(BeFalse())
			Expect(d.WAW1).To(BeFalse())
			Expect(d.Admit1).To(BeTrue())
		})
	})

	Describe("structural rules", func() {
		It("should keep two memory accesses apart", func() {
			// sw x1, 0(x5) / lw x2, 0(x5)
			d := unit.Decide(issueSlot(0x0012A023), issueSlot(0x0002A103), none, none)

			Expect(d.Admit0).To(BeTrue())
			Expect(d.Admit1).To(BeFalse())
			Expect(d.RAW1).To(BeFalse())
		})

		It("should keep two transfers apart", func() {
			// beq x1, x2, 8 / jal x1, 16
			d := unit.Decide(issueSlot(0x00208463), issueSlot(0x010000EF), none, none)

			Expect(d.Admit1).To(BeFalse())
		})

		It("should keep a transfer and a memory access apart in either order", func() {
			// beq x1, x2, 8 / lw x2, 0(x5)
			d := unit.Decide(issueSlot(0x00208463), issueSlot(0x0002A103), none, none)
			Expect(d.Admit1).To(BeFalse())

			// lw x2, 0(x5) / beq x1, x2, 8
			d = unit.Decide(issueSlot(0x0002A103), issueSlot(0x00208463), none, none)
			Expect(d.Admit1).To(BeFalse())
		})

		It("should keep upper immediates on the older lane", func() {
			// addi x1, x0, 5 / lui x2, 0x12345
			d := unit.Decide(issueSlot(0x00500093), issueSlot(0x12345137), none, none)
			Expect(d.Admit1).To(BeFalse())

			// addi x1, x0, 5 / auipc x2, 1
			d = unit.Decide(issueSlot(0x00500093), issueSlot(0x00001117), none, none)
			Expect(d.Admit1).To(BeFalse())

			// lui x2, 0x12345 on the older lane is fine.
			d = unit.Decide(issueSlot(0x12345137), issueSlot(0x00500093), none, none)
			Expect(d.Admit0).To(BeTrue())
			Expect(d.Admit1).To(BeTrue())
		})
	})

	Describe("environment calls", func() {
		It("should issue alongside anything hazard-free", func() {
			// addi x1, x0, 5 / ecall
			d := unit.Decide(issueSlot(0x00500093), issueSlot(0x00000073), none, none)

			Expect(d.Admit0).To(BeTrue())
			Expect(d.Admit1).To(BeTrue())
		})

		It("should issue even without a valid older lane", func() {
			d := unit.Decide(emptySlot(), issueSlot(0x00000073), none, none)

			Expect(d.Admit0).To(BeFalse())
			Expect(d.Admit1).To(BeTrue())
		})

		It("should still wait out a stall", func() {
			view0 := pipeline.View{Busy: 1 << 2}

			// add x3, x1, x2 / ecall
			d := unit.Decide(issueSlot(0x002081B3), issueSlot(0x00000073), view0, none)

			Expect(d.Stall).To(BeTrue())
			Expect(d.Admit1).To(BeFalse())
		})
	})
})
