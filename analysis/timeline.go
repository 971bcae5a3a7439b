package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/r2sim/insts"
	"github.com/sarchlab/r2sim/timing/pipeline"
	"github.com/sarchlab/r2sim/trace"
)

// WriteTimeline renders the per-cycle pipeline view with disassembled
// lanes and event annotations.
func WriteTimeline(w io.Writer, entries []trace.Entry) {
	t := table.NewWriter()
	t.SetTitle("Pipeline Timeline")
	t.AppendHeader(table.Row{
		"Cycle", "PC", "Fetch0", "Fetch1",
		"Decode0", "Decode1", "Exec0/Res0", "Exec1/Res1", "Events",
	})

	for i := range entries {
		e := &entries[i]
		t.AppendRow(table.Row{
			e.Cycle,
			fmt.Sprintf("%08x", e.PC),
			insts.Disassemble(e.Fetch0),
			insts.Disassemble(e.Fetch1),
			fmt.Sprintf("%s i0=%d", insts.Disassemble(e.Decode0), issueBit(e.Issue0)),
			fmt.Sprintf("%s i1=%d", insts.Disassemble(e.Decode1), issueBit(e.Issue1)),
			fmt.Sprintf("%s %08x", insts.Disassemble(e.Exec0), e.Result0),
			fmt.Sprintf("%s %08x", insts.Disassemble(e.Exec1), e.Result1),
			strings.Join(Events(e), ";"),
		})
	}
	fmt.Fprintln(w, t.Render())
}

// Events lists the annotation tags for one traced cycle: control-flow
// redirects, memory grants, forwarding activity, hazards, scoreboard
// state, and halt markers.
func Events(e *trace.Entry) []string {
	var notes []string

	if e.BranchTaken0 {
		notes = append(notes, fmt.Sprintf("BR0->0x%08x", e.BranchTarget0))
	}
	if e.BranchTaken1 {
		notes = append(notes, fmt.Sprintf("BR1->0x%08x", e.BranchTarget1))
	}
	if e.JumpTaken0 {
		notes = append(notes, fmt.Sprintf("J0->0x%08x", e.JumpTarget0))
	}
	if e.JumpTaken1 {
		notes = append(notes, fmt.Sprintf("J1->0x%08x", e.JumpTarget1))
	}

	if e.Mem0Read || e.Mem0Write {
		notes = append(notes, fmt.Sprintf("MEM0(%s)@0x%08x",
			rwMode(e.Mem0Read, e.Mem0Write), e.MemAddr0))
	}
	if e.Mem1Read || e.Mem1Write {
		notes = append(notes, fmt.Sprintf("MEM1(%s)@0x%08x",
			rwMode(e.Mem1Read, e.Mem1Write), e.MemAddr1))
	}

	if e.FwdRs1Lane0 {
		notes = append(notes, "F0_RS1=EX0")
	}
	if e.FwdRs2Lane0 {
		notes = append(notes, "F0_RS2=EX0")
	}
	if e.FwdRs1Lane1 != pipeline.ForwardNone {
		notes = append(notes, "F1_RS1="+e.FwdRs1Lane1.String())
	}
	if e.FwdRs2Lane1 != pipeline.ForwardNone {
		notes = append(notes, "F1_RS2="+e.FwdRs2Lane1.String())
	}

	dec1 := decoder.Decode(e.Decode1)
	if e.RAW1 && (dec1.UsesRs1 || dec1.UsesRs2) {
		notes = append(notes, "RAW1")
	}
	if e.WAW1 {
		notes = append(notes, "WAW1")
	}
	if e.LoadUse0 {
		notes = append(notes, "LDUSE0")
	}
	if e.LoadUse1 {
		notes = append(notes, "LDUSE1")
	}
	if e.Stall {
		notes = append(notes, "STALL")
	}

	notes = append(notes, ex1WindowNotes(e)...)

	if e.BusyVec != 0 {
		notes = append(notes, fmt.Sprintf("busy=0x%08x", e.BusyVec))
	}
	if e.LoadPendingVec != 0 {
		notes = append(notes, fmt.Sprintf("ldpend=0x%08x", e.LoadPendingVec))
	}

	if decoder.Decode(e.Exec0).IsSystem {
		notes = append(notes, "HALT0")
	}
	if decoder.Decode(e.Exec1).IsSystem && !squashed1(e) {
		notes = append(notes, "HALT1")
	}

	return notes
}

// exec1Consumers reports which decode-lane operands read the register
// the younger execute lane is writing this cycle. Everything is false
// when that lane holds a bubble, a squashed slot, or a non-writing
// instruction.
func exec1Consumers(e *trace.Entry) (lane0, lane1Rs1, lane1Rs2 bool) {
	if !retires(e.Exec1) || squashed1(e) {
		return
	}
	p1 := decoder.Decode(e.Exec1)
	if !p1.WritesReg || p1.Rd == 0 {
		return
	}

	d0 := decoder.Decode(e.Decode0)
	d1 := decoder.Decode(e.Decode1)
	lane0 = (d0.UsesRs1 && d0.Rs1 == p1.Rd) || (d0.UsesRs2 && d0.Rs2 == p1.Rd)
	lane1Rs1 = d1.UsesRs1 && d1.Rs1 == p1.Rd
	lane1Rs2 = d1.UsesRs2 && d1.Rs2 == p1.Rd
	return
}

// ex1WindowNotes flags unusual consumers of the younger execute lane's
// result. The older decode lane has no forward path from EX1 and must
// wait for commit; a younger-lane consumer is expected to name EX1 as
// its operand source unless the producer is a load.
func ex1WindowNotes(e *trace.Entry) []string {
	lane0, lane1Rs1, lane1Rs2 := exec1Consumers(e)

	var notes []string
	if lane0 && !lane1Rs1 && !lane1Rs2 {
		notes = append(notes, "CONSUMER_NOT_IN_SLOT1")
	}
	if !decoder.Decode(e.Exec1).MemRead {
		if lane1Rs1 && e.FwdRs1Lane1 != pipeline.ForwardEX1 {
			notes = append(notes, "EX1_FWD_NOT_FOUND")
		}
		if lane1Rs2 && e.FwdRs2Lane1 != pipeline.ForwardEX1 {
			notes = append(notes, "EX1_FWD_NOT_FOUND")
		}
	}
	return notes
}

// WriteProgramListing renders a disassembly of a program image, word i
// at address 4*i.
func WriteProgramListing(w io.Writer, words []uint32) {
	t := table.NewWriter()
	t.SetTitle("Program")
	t.AppendHeader(table.Row{"Addr", "Word", "Disassembly"})
	for i, word := range words {
		t.AppendRow(table.Row{
			fmt.Sprintf("%08x", i*4),
			fmt.Sprintf("%08x", word),
			insts.Disassemble(word),
		})
	}
	fmt.Fprintln(w, t.Render())
}

func rwMode(read, write bool) string {
	mode := ""
	if read {
		mode += "R"
	}
	if write {
		mode += "W"
	}
	return mode
}

func issueBit(b bool) int {
	if b {
		return 1
	}
	return 0
}
