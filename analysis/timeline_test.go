package analysis_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/analysis"
	"github.com/sarchlab/r2sim/timing/pipeline"
	"github.com/sarchlab/r2sim/trace"
)

var _ = Describe("Timeline", func() {
	Describe("Events", func() {
		It("should tag control-flow redirects with their targets", func() {
			e := trace.Entry{
				BranchTaken0:  true,
				BranchTarget0: 0x10,
				JumpTaken1:    true,
				JumpTarget1:   0x40,
			}

			notes := analysis.Events(&e)
			Expect(notes).To(ContainElement("BR0->0x00000010"))
			Expect(notes).To(ContainElement("J1->0x00000040"))
		})

		It("should tag memory grants with mode and address", func() {
			e := trace.Entry{
				Mem0Read: true,
				MemAddr0: 0xF0,
				Mem1Read: true, Mem1Write: true,
				MemAddr1: 0x100,
			}

			notes := analysis.Events(&e)
			Expect(notes).To(ContainElement("MEM0(R)@0x000000f0"))
			Expect(notes).To(ContainElement("MEM1(RW)@0x00000100"))
		})

		It("should tag forwarding activity", func() {
			e := trace.Entry{
				FwdRs1Lane0: true,
				FwdRs1Lane1: pipeline.ForwardEX1,
				FwdRs2Lane1: pipeline.ForwardEX0,
			}

			notes := analysis.Events(&e)
			Expect(notes).To(ContainElement("F0_RS1=EX0"))
			Expect(notes).To(ContainElement("F1_RS1=EX1"))
			Expect(notes).To(ContainElement("F1_RS2=EX0"))
			Expect(notes).NotTo(ContainElement("F0_RS2=EX0"))
		})

		It("should tag hazards and scoreboard state", func() {
			e := trace.Entry{
				Decode1:        0x00308113, // addi x2, x1, 3
				RAW1:           true,
				WAW1:           true,
				LoadUse0:       true,
				Stall:          true,
				BusyVec:        0x20400,
				LoadPendingVec: 0x00400,
			}

			notes := analysis.Events(&e)
			Expect(notes).To(ContainElement("RAW1"))
			Expect(notes).To(ContainElement("WAW1"))
			Expect(notes).To(ContainElement("LDUSE0"))
			Expect(notes).To(ContainElement("STALL"))
			Expect(notes).To(ContainElement("busy=0x00020400"))
			Expect(notes).To(ContainElement("ldpend=0x00000400"))
		})

		It("should suppress the RAW1 tag when the younger lane reads nothing", func() {
			e := trace.Entry{
				Decode1: 0x00000013, // nop
				RAW1:    true,
			}

			Expect(analysis.Events(&e)).NotTo(ContainElement("RAW1"))
		})

		It("should mark halts per lane", func() {
			e := trace.Entry{Exec0: 0x00000073}
			Expect(analysis.Events(&e)).To(ContainElement("HALT0"))

			e = trace.Entry{Exec1: 0x00000073}
			Expect(analysis.Events(&e)).To(ContainElement("HALT1"))
		})

		It("should not mark a squashed system slot as a halt", func() {
			e := trace.Entry{
				Exec0:      0x0000006F, // jal x0, 0
				Exec1:      0x00000073,
				JumpTaken0: true,
			}

			Expect(analysis.Events(&e)).NotTo(ContainElement("HALT1"))
		})

		It("should flag an EX1 consumer stuck in the older slot", func() {
			e := trace.Entry{
				Exec1:   0x00100293, // addi x5, x0, 1
				Decode0: 0x00128313, // addi x6, x5, 1
				Decode1: 0x00000013, // nop
				Stall:   true,
			}

			Expect(analysis.Events(&e)).To(ContainElement("CONSUMER_NOT_IN_SLOT1"))
		})

		It("should flag a missing EX1 forward", func() {
			e := trace.Entry{
				Exec1:   0x00100293, // addi x5, x0, 1
				Decode1: 0x00128313, // addi x6, x5, 1
			}
			Expect(analysis.Events(&e)).To(ContainElement("EX1_FWD_NOT_FOUND"))

			e.FwdRs1Lane1 = pipeline.ForwardEX1
			Expect(analysis.Events(&e)).NotTo(ContainElement("EX1_FWD_NOT_FOUND"))
		})

		It("should not expect a forward from a load producer", func() {
			e := trace.Entry{
				Exec1:    0x00402283, // lw x5, 4(x0)
				Mem1Read: true,
				Decode1:  0x00128313, // addi x6, x5, 1
				LoadUse1: true,
			}

			Expect(analysis.Events(&e)).NotTo(ContainElement("EX1_FWD_NOT_FOUND"))
		})
	})

	Describe("WriteTimeline", func() {
		It("should render disassembled lanes for a live run", func() {
			var buf bytes.Buffer
			analysis.WriteTimeline(&buf, runTrace(exitProgram))

			out := buf.String()
			Expect(out).To(ContainSubstring("Pipeline Timeline"))
			Expect(out).To(ContainSubstring("addi x10, x0, 42"))
			Expect(out).To(ContainSubstring("addi x17, x0, 93"))
			Expect(out).To(ContainSubstring("HALT0"))
		})
	})

	Describe("WriteProgramListing", func() {
		It("should disassemble the image in address order", func() {
			var buf bytes.Buffer
			analysis.WriteProgramListing(&buf, []uint32{0x00500093, 0x00000073})

			out := buf.String()
			Expect(out).To(ContainSubstring("addi x1, x0, 5"))
			Expect(out).To(ContainSubstring("system"))
			Expect(out).To(ContainSubstring("00000004"))
		})
	})
})
