package analysis_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r2sim/analysis"
	"github.com/sarchlab/r2sim/timing/pipeline"
	"github.com/sarchlab/r2sim/trace"
)

// messages flattens warnings for substring matching.
func messages(warnings []analysis.Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Message
	}
	return out
}

var _ = Describe("Warnings", func() {
	It("should stay quiet on clean traces", func() {
		Expect(analysis.Check(runTrace(exitProgram))).To(BeEmpty())
		Expect(analysis.Check(runTrace(depProgram))).To(BeEmpty())
		Expect(analysis.Check(runTrace(branchProgram))).To(BeEmpty())
	})

	It("should stay quiet on an idle entry", func() {
		Expect(analysis.Check([]trace.Entry{{Cycle: 0}, {Cycle: 1}})).To(BeEmpty())
	})

	It("should flag a forward from an empty execute lane", func() {
		entries := []trace.Entry{{
			FwdRs1Lane1: pipeline.ForwardEX1,
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement(
			"forward source EX1 named while execute lane 1 holds a bubble"))
	})

	It("should flag an older-lane forward from a bubble", func() {
		entries := []trace.Entry{{
			FwdRs2Lane0: true,
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement(
			"older-lane forward enabled while execute lane 0 holds a bubble"))
	})

	It("should flag issue during a stall", func() {
		entries := []trace.Entry{{
			Stall:  true,
			Issue0: true,
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement("lane issued during a stall"))
	})

	It("should flag the younger lane issuing alone", func() {
		entries := []trace.Entry{{
			Decode1: 0x00100093, // addi x1, x0, 1
			Issue1:  true,
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement(
			"younger lane issued without the older lane"))
	})

	It("should permit a lone younger environment call", func() {
		entries := []trace.Entry{{
			Decode1: 0x00000073, // ecall
			Issue1:  true,
		}}

		Expect(analysis.Check(entries)).To(BeEmpty())
	})

	It("should flag the younger lane issuing past a hazard", func() {
		entries := []trace.Entry{{
			Decode0: 0x00100093,
			Decode1: 0x00308113,
			Issue0:  true,
			Issue1:  true,
			RAW1:    true,
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement("younger lane issued past a hazard"))
	})

	It("should flag a load-use that failed to stall", func() {
		entries := []trace.Entry{{
			LoadUse0: true,
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement(
			"older-lane load-use did not stall the front end"))
	})

	It("should flag an older-lane read of the younger execute result without a stall", func() {
		entries := []trace.Entry{{
			Exec1:   0x00100293, // addi x5, x0, 1
			Decode0: 0x00128313, // addi x6, x5, 1
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement(
			"older lane reads the younger execute result without stalling"))
	})

	It("should flag scoreboard corruption", func() {
		entries := []trace.Entry{{
			BusyVec:        0x1,
			LoadPendingVec: 0x4,
		}}

		w := analysis.Check(entries)
		Expect(messages(w)).To(ContainElement("scoreboard marks x0 busy"))
		Expect(messages(w)).To(ContainElement(
			"load pending on registers not marked busy: 0x00000004"))
	})

	It("should flag gaps in the cycle numbering", func() {
		entries := []trace.Entry{{Cycle: 0}, {Cycle: 2}}

		w := analysis.Check(entries)
		Expect(w).To(HaveLen(1))
		Expect(w[0].Cycle).To(Equal(uint64(2)))
		Expect(w[0].Message).To(ContainSubstring("jumps from 0 to 2"))
	})

	It("should format warnings with their cycle", func() {
		w := analysis.Warning{Cycle: 7, Message: "scoreboard marks x0 busy"}
		Expect(w.String()).To(Equal("cycle 7: scoreboard marks x0 busy"))
	})
})
