package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/insts"
	"github.com/sarchlab/r2sim/timing/pipeline"
)

var sbDecoder = insts.NewDecoder()

func admittedSlot(word uint32) *pipeline.ExecSlot {
	return &pipeline.ExecSlot{
		Valid: true,
		Word:  word,
		Inst:  sbDecoder.Decode(word),
	}
}

func bubbleSlot() *pipeline.ExecSlot {
	s := &pipeline.ExecSlot{}
	s.Clear()
	return s
}

var _ = Describe("Scoreboard", func() {
	var sb *pipeline.Scoreboard

	BeforeEach(func() {
		sb = pipeline.NewScoreboard()
	})

	It("should start empty", func() {
		Expect(sb.BusyVec()).To(Equal(uint32(0)))
		Expect(sb.LoadPendingVec()).To(Equal(uint32(0)))
	})

	Describe("Advance", func() {
		It("should mark an admitted writer busy", func() {
			// addi x1, x0, 5
			sb.Advance(0, admittedSlot(0x00500093), bubbleSlot())

			Expect(sb.BusyVec()).To(Equal(uint32(1 << 1)))
			Expect(sb.LoadPendingVec()).To(Equal(uint32(0)))
		})

		It("should mark a load in both vectors", func() {
			// lw x1, 0(x2)
			sb.Advance(0, admittedSlot(0x00012083), bubbleSlot())

			Expect(sb.BusyVec()).To(Equal(uint32(1 << 1)))
			Expect(sb.LoadPendingVec()).To(Equal(uint32(1 << 1)))
		})

		It("should track both lanes of a pair", func() {
			// addi x1, x0, 5 / addi x2, x0, 10
			sb.Advance(0, admittedSlot(0x00500093), admittedSlot(0x00A00113))

			Expect(sb.BusyVec()).To(Equal(uint32(0b110)))
		})

		It("should ignore stores and branches", func() {
			// sw x1, 0(x0) / beq x1, x2, 8
			sb.Advance(0, admittedSlot(0x00102023), admittedSlot(0x00208463))

			Expect(sb.BusyVec()).To(Equal(uint32(0)))
		})

		It("should never mark x0", func() {
			// addi x0, x0, 5
			sb.Advance(0, admittedSlot(0x00500013), bubbleSlot())

			Expect(sb.BusyVec()).To(Equal(uint32(0)))
		})

		It("should clear retiring destinations", func() {
			sb.Advance(0, admittedSlot(0x00012083), bubbleSlot())

			sb.Advance(1<<1, bubbleSlot(), bubbleSlot())

			Expect(sb.BusyVec()).To(Equal(uint32(0)))
			Expect(sb.LoadPendingVec()).To(Equal(uint32(0)))
		})

		It("should keep a back-to-back producer of the same register", func() {
			// addi x1, x0, 5 retires while addi x1, x0, 2 is admitted.
			sb.Advance(0, admittedSlot(0x00500093), bubbleSlot())

			sb.Advance(1<<1, admittedSlot(0x00200093), bubbleSlot())

			Expect(sb.BusyVec()).To(Equal(uint32(1 << 1)))
		})
	})

	Describe("LaneView", func() {
		It("should drop forwardable producers but never loads", func() {
			// addi x1 on one lane, lw x2 on the other.
			sb.Advance(0, admittedSlot(0x00500093), admittedSlot(0x00022103))

			view := sb.LaneView(1 << 1)

			Expect(view.Busy).To(Equal(uint32(1 << 2)))
			Expect(view.LoadPending).To(Equal(uint32(1 << 2)))
		})
	})

	Describe("View predicates", func() {
		It("should flag a read of a busy register", func() {
			view := pipeline.View{Busy: 1 << 2}

			// add x3, x1, x2
			Expect(view.RAW(sbDecoder.Decode(0x002081B3))).To(BeTrue())
			// add x3, x1, x1
			Expect(view.RAW(sbDecoder.Decode(0x001081B3))).To(BeFalse())
		})

		It("should ignore sources the instruction does not use", func() {
			view := pipeline.View{Busy: 1 << 5}

			// addi x1, x0, 5 reads only x0.
			Expect(view.RAW(sbDecoder.Decode(0x00500093))).To(BeFalse())
		})

		It("should never flag x0", func() {
			view := pipeline.View{Busy: ^uint32(0)}

			// add x10, x0, x0
			Expect(view.RAW(sbDecoder.Decode(0x00000533))).To(BeFalse())
		})

		It("should flag a load-pending source", func() {
			view := pipeline.View{Busy: 1 << 1, LoadPending: 1 << 1}

			// add x3, x1, x1
			Expect(view.LoadUse(sbDecoder.Decode(0x001081B3))).To(BeTrue())
			Expect(view.RAW(sbDecoder.Decode(0x001081B3))).To(BeTrue())
		})

		It("should flag a write over a busy destination", func() {
			view := pipeline.View{Busy: 1 << 1}

			// addi x1, x0, 2
			Expect(view.WAW(sbDecoder.Decode(0x00200093))).To(BeTrue())
			// addi x2, x0, 10
			Expect(view.WAW(sbDecoder.Decode(0x00A00113))).To(BeFalse())
			// sw x1, 0(x0) writes nothing
			Expect(view.WAW(sbDecoder.Decode(0x00102023))).To(BeFalse())
		})

		It("should fold a same-cycle producer into the view", func() {
			view := pipeline.View{}.WithProducer(2, true)

			// add x3, x1, x2
			Expect(view.RAW(sbDecoder.Decode(0x002081B3))).To(BeTrue())
			Expect(view.LoadUse(sbDecoder.Decode(0x002081B3))).To(BeTrue())
			// addi x2, x0, 10
			Expect(view.WAW(sbDecoder.Decode(0x00A00113))).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("should clear both vectors", func() {
			sb.Advance(0, admittedSlot(0x00012083), admittedSlot(0x00500093))

			sb.Reset()

			Expect(sb.BusyVec()).To(Equal(uint32(0)))
			Expect(sb.LoadPendingVec()).To(Equal(uint32(0)))
		})
	})
})
