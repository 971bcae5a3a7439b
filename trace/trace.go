// Package trace records per-cycle pipeline activity as CSV and reads
// it back for offline analysis. One row describes one cycle. The
// column set mirrors the pipeline snapshot minus the halt latch, which
// analyzers recover from the executing words.
package trace

import (
	"github.com/sarchlab/r2sim/timing/pipeline"
)

// Column indices into a trace record, in file order.
const (
	colCycle = iota
	colPCF
	colFetch0
	colFetch1
	colDecode0
	colDecode1
	colIssue0
	colIssue1
	colExec0
	colExec1
	colResult0
	colResult1
	colBranchTaken0
	colBranchTaken1
	colJumpTaken0
	colJumpTaken1
	colBranchTarget0
	colBranchTarget1
	colJumpTarget0
	colJumpTarget1
	colMem0Read
	colMem0Write
	colMem1Read
	colMem1Write
	colMemAddr0
	colMemAddr1
	colFwdRs1Lane0
	colFwdRs2Lane0
	colFwdRs1Lane1
	colFwdRs2Lane1
	colStall
	colRAW1
	colWAW1
	colLoadUse0
	colLoadUse1
	colBusyVec
	colLoadPendingVec

	numColumns
)

// Header lists the trace columns in file order.
var Header = []string{
	"cycle",
	"pc_f",
	"fetch0",
	"fetch1",
	"decode0",
	"decode1",
	"issue0",
	"issue1",
	"exec0",
	"exec1",
	"result0",
	"result1",
	"branch_taken0",
	"branch_taken1",
	"jump_taken0",
	"jump_taken1",
	"branch_target0",
	"branch_target1",
	"jump_target0",
	"jump_target1",
	"mem0_re",
	"mem0_we",
	"mem1_re",
	"mem1_we",
	"mem_addr0",
	"mem_addr1",
	"fwd_rs1_0_en",
	"fwd_rs2_0_en",
	"fwd_rs1_1_src",
	"fwd_rs2_1_src",
	"stall_if_id",
	"raw1",
	"waw1",
	"load_use0",
	"load_use1",
	"busy_vec",
	"load_pending_vec",
}

// Entry is one traced cycle. Words are raw instruction encodings,
// vectors are scoreboard bitmaps indexed by register number.
type Entry struct {
	Cycle uint64

	// PC is the fetch address at the start of the cycle.
	PC uint32

	// Fetch0 and Fetch1 are the raw words at (PC, PC+4).
	Fetch0 uint32
	Fetch1 uint32

	// Decode0 and Decode1 are the decode-stage words after the flush mux.
	Decode0 uint32
	Decode1 uint32

	// Issue0 and Issue1 are the admission decisions.
	Issue0 bool
	Issue1 bool

	// Exec0 and Exec1 are the words executing this cycle.
	Exec0 uint32
	Exec1 uint32

	// Result0 and Result1 are the lanes' writeback values.
	Result0 uint32
	Result1 uint32

	// Branch and jump resolution per lane.
	BranchTaken0  bool
	BranchTaken1  bool
	JumpTaken0    bool
	JumpTaken1    bool
	BranchTarget0 uint32
	BranchTarget1 uint32
	JumpTarget0   uint32
	JumpTarget1   uint32

	// Granted data-memory activity per lane.
	Mem0Read  bool
	Mem0Write bool
	Mem1Read  bool
	Mem1Write bool
	MemAddr0  uint32
	MemAddr1  uint32

	// Older-lane forwarding enables.
	FwdRs1Lane0 bool
	FwdRs2Lane0 bool

	// Younger-lane forwarding sources.
	FwdRs1Lane1 pipeline.ForwardSource
	FwdRs2Lane1 pipeline.ForwardSource

	// Hazard flags for the cycle.
	Stall    bool
	RAW1     bool
	WAW1     bool
	LoadUse0 bool
	LoadUse1 bool

	// Scoreboard vectors after the commit edge.
	BusyVec        uint32
	LoadPendingVec uint32
}

// FromSnapshot converts a pipeline snapshot into a trace entry.
func FromSnapshot(s *pipeline.Snapshot) Entry {
	return Entry{
		Cycle:          s.Cycle,
		PC:             s.PC,
		Fetch0:         s.Fetch0,
		Fetch1:         s.Fetch1,
		Decode0:        s.Decode0,
		Decode1:        s.Decode1,
		Issue0:         s.Issue0,
		Issue1:         s.Issue1,
		Exec0:          s.Exec0,
		Exec1:          s.Exec1,
		Result0:        s.Result0,
		Result1:        s.Result1,
		BranchTaken0:   s.BranchTaken0,
		BranchTaken1:   s.BranchTaken1,
		JumpTaken0:     s.JumpTaken0,
		JumpTaken1:     s.JumpTaken1,
		BranchTarget0:  s.BranchTarget0,
		BranchTarget1:  s.BranchTarget1,
		JumpTarget0:    s.JumpTarget0,
		JumpTarget1:    s.JumpTarget1,
		Mem0Read:       s.Mem0Read,
		Mem0Write:      s.Mem0Write,
		Mem1Read:       s.Mem1Read,
		Mem1Write:      s.Mem1Write,
		MemAddr0:       s.MemAddr0,
		MemAddr1:       s.MemAddr1,
		FwdRs1Lane0:    s.FwdRs1Lane0,
		FwdRs2Lane0:    s.FwdRs2Lane0,
		FwdRs1Lane1:    s.FwdRs1Lane1,
		FwdRs2Lane1:    s.FwdRs2Lane1,
		Stall:          s.Stall,
		RAW1:           s.RAW1,
		WAW1:           s.WAW1,
		LoadUse0:       s.LoadUse0,
		LoadUse1:       s.LoadUse1,
		BusyVec:        s.BusyVec,
		LoadPendingVec: s.LoadPendingVec,
	}
}
