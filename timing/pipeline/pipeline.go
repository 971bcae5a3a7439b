package pipeline

import (
	"github.com/sarchlab/r2sim/emu"
	"github.com/sarchlab/r2sim/insts"
)

// Statistics holds pipeline performance counters.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// DualIssueCycles counts cycles where both lanes were admitted.
	DualIssueCycles uint64
	// StallCycles counts cycles the front end was frozen.
	StallCycles uint64
	// LoadUseStalls counts stall cycles caused by an in-flight load.
	LoadUseStalls uint64
	// Redirects counts taken branches and jumps.
	Redirects uint64
	// SquashedSlots counts valid slots discarded by redirects.
	SquashedSlots uint64
	// ForwardEX0ToLane0 counts operands forwarded on the older path.
	ForwardEX0ToLane0 uint64
	// ForwardEX1ToLane1 counts younger operands taken from lane 1.
	ForwardEX1ToLane1 uint64
	// ForwardEX0ToLane1 counts younger operands taken from lane 0.
	ForwardEX0ToLane1 uint64
}

// CPI returns cycles per retired instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// IPC returns retired instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}

// Snapshot is the post-commit picture of one cycle, suitable for trace
// output and debugging. Word fields hold the NOP encoding for bubbles.
type Snapshot struct {
	// Cycle is the zero-based index of the cycle described.
	Cycle uint64

	// PC is the fetch address at the start of the cycle.
	PC uint32

	// Fetch0 and Fetch1 are the raw words returned by the fetch ports.
	Fetch0 uint32
	Fetch1 uint32

	// Decode0 and Decode1 are the words presented to decode after the
	// flush mux.
	Decode0 uint32
	Decode1 uint32

	// Issue0 and Issue1 report which lanes were admitted to execute.
	Issue0 bool
	Issue1 bool

	// Exec0 and Exec1 are the words that occupied the execute lanes.
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
	FwdRs1Lane1 ForwardSource
	FwdRs2Lane1 ForwardSource

	// Hazard flags for the cycle.
	Stall    bool
	RAW1     bool
	WAW1     bool
	LoadUse0 bool
	LoadUse1 bool

	// Scoreboard vectors after the commit edge.
	BusyVec        uint32
	LoadPendingVec uint32

	// Halted reports whether this cycle latched the halt condition.
	Halted bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithSnapshotHook registers a function called after every cycle with
// that cycle's snapshot. Used to stream trace output.
func WithSnapshotHook(hook func(*Snapshot)) PipelineOption {
	return func(p *Pipeline) {
		p.snapshotHook = hook
	}
}

// WithMaxCycles bounds Run. Zero means no bound.
func WithMaxCycles(cycles uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = cycles
	}
}

// Pipeline implements the dual-issue, in-order, 3-stage RV32I machine:
// fetch and decode of an aligned pair share a cycle, admitted slots
// execute the next cycle, and all architectural state commits on a
// single edge at cycle end.
type Pipeline struct {
	// Execute-stage slots, one per lane. Lane 0 is the older lane.
	ex0 ExecSlot
	ex1 ExecSlot

	// Stage logic and functional units.
	fetchStage   *FetchStage
	decodeStage  *DecodeStage
	executeStage *ExecuteStage
	forward      *ForwardUnit
	issue        *IssueUnit
	arbiter      *MemoryArbiter
	scoreboard   *Scoreboard

	// Shared resources.
	regFile *emu.RegFile
	memory  *emu.Memory

	// Front-end state. decodeValid is false for the cycle after
	// reset, during which the decode stage presents a NOP pair.
	pc          uint32
	decodeValid bool

	// Execution state.
	halted   bool
	exitCode int32

	stats        Statistics
	snapshot     Snapshot
	snapshotHook func(*Snapshot)
	maxCycles    uint64
}

// NewPipeline creates a pipeline over the given register file and
// memory, reset and ready to tick.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetchStage:   NewFetchStage(memory),
		decodeStage:  NewDecodeStage(regFile),
		executeStage: NewExecuteStage(),
		forward:      NewForwardUnit(),
		issue:        NewIssueUnit(),
		arbiter:      NewMemoryArbiter(memory),
		scoreboard:   NewScoreboard(),
		regFile:      regFile,
		memory:       memory,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.Reset()
	return p
}

// PC returns the current fetch address.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// SetPC sets the fetch address.
func (p *Pipeline) SetPC(pc uint32) {
	p.pc = pc
}

// Stats returns the accumulated performance counters.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Halted reports whether the machine has executed an environment call.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// ExitCode returns the program's exit code after a halt. It is the
// value of a0 when a7 held the exit service number, zero otherwise.
func (p *Pipeline) ExitCode() int32 {
	return p.exitCode
}

// Snapshot returns the snapshot of the most recent cycle. It stays
// valid across reset.
func (p *Pipeline) Snapshot() Snapshot {
	return p.snapshot
}

// Reset returns the machine to its boot state: pc zero, bubbles in
// every slot, empty scoreboard, counters cleared. Register file and
// memory contents are left alone.
func (p *Pipeline) Reset() {
	p.pc = 0
	p.ex0.Clear()
	p.ex1.Clear()
	p.decodeValid = false
	p.scoreboard.Reset()
	p.halted = false
	p.exitCode = 0
	p.stats = Statistics{}
	p.snapshot = Snapshot{
		Fetch0:  insts.NOP,
		Fetch1:  insts.NOP,
		Decode0: insts.NOP,
		Decode1: insts.NOP,
		Exec0:   insts.NOP,
		Exec1:   insts.NOP,
	}
}

// Run ticks until the machine halts, or until the configured cycle
// bound if one was set. Returns the exit code.
func (p *Pipeline) Run() int32 {
	for !p.halted {
		if p.maxCycles != 0 && p.stats.Cycles >= p.maxCycles {
			break
		}
		p.Tick()
	}
	return p.exitCode
}

// RunCycles ticks at most the given number of cycles. Returns true if
// the machine is still running.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

// Tick advances the machine by one cycle.
//
// Within a cycle everything is combinational and nothing architectural
// changes until the single commit edge at the end:
//
//  1. Both execute slots are evaluated: ALU, branch and jump
//     resolution, and the memory arbiter's read response. A taken
//     transfer raises the redirect, older lane winning, and a lane-0
//     redirect squashes lane 1's same-cycle effects.
//  2. The pair at (pc, pc+4) is fetched and decoded. A redirect, or
//     the reset shadow, replaces the pair with NOPs through the flush
//     mux. Register reads see pre-commit state; the forwarding
//     network overlays in-flight execute results.
//  3. Hazards are classified against the per-lane scoreboard views
//     and the issue unit decides admission.
//  4. The commit edge: register file ports write, the pending store
//     drains, the scoreboard advances, admitted slots latch into
//     execute, and the pc moves.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}
	pcF := p.pc

	// Execute both lanes against pre-commit state.
	res0 := p.executeStage.Execute(&p.ex0)
	res1 := p.executeStage.Execute(&p.ex1)
	grant0, grant1, pending := p.arbiter.Access(res0.Mem, res1.Mem)
	if grant0.Read {
		res0.Result = grant0.Data
	}
	if grant1.Read {
		res1.Result = grant1.Data
	}

	// Redirect priority: the older lane's transfer wins and squashes
	// every younger effect in flight this cycle.
	redirect, target := res0.Redirect()
	squash1 := redirect
	if !redirect {
		redirect, target = res1.Redirect()
	}
	if squash1 {
		grant1 = MemGrant{}
		if pending.Valid && res1.Mem.Write && !res0.Mem.Write {
			pending = PendingWrite{}
		}
	}

	// Fetch and decode the current pair. The flush mux presents NOPs
	// on a redirect and during the reset shadow.
	fetch0, fetch1 := p.fetchStage.FetchPair(pcF)
	decodeWord0, decodeWord1 := fetch0, fetch1
	if !p.decodeValid || redirect {
		decodeWord0, decodeWord1 = insts.NOP, insts.NOP
	}
	slot0 := p.decodeStage.Decode(pcF, decodeWord0)
	slot1 := p.decodeStage.Decode(pcF+4, decodeWord1)

	var fwd0 Lane0Forward
	var fwd1 Lane1Forward
	slot0.Rs1Value, slot0.Rs2Value, fwd0 = p.forward.Lane0(
		&slot0, slot0.Rs1Value, slot0.Rs2Value, &p.ex0, res0.Result)
	slot1.Rs1Value, slot1.Rs2Value, fwd1 = p.forward.Lane1(
		&slot1, slot1.Rs1Value, slot1.Rs2Value,
		&p.ex0, res0.Result, &p.ex1, res1.Result)

	// Per-lane scoreboard views: producers with a forward path into
	// the lane drop out, loads never do.
	var clearable0 uint32
	if p.ex0.WritesReg() && !p.ex0.IsLoad() {
		clearable0 |= regBit(p.ex0.Inst.Rd)
	}
	clearable1 := clearable0
	if p.ex1.WritesReg() && !p.ex1.IsLoad() {
		clearable1 |= regBit(p.ex1.Inst.Rd)
	}
	decision := p.issue.Decide(&slot0, &slot1,
		p.scoreboard.LaneView(clearable0), p.scoreboard.LaneView(clearable1))

	// Commit edge. Register ports write in lane order so a collision
	// resolves to the younger value.
	we0 := p.ex0.WritesReg()
	we1 := p.ex1.WritesReg() && !squash1
	var rd0, rd1 uint8
	if we0 {
		rd0 = p.ex0.Inst.Rd
	}
	if we1 {
		rd1 = p.ex1.Inst.Rd
	}
	p.regFile.CommitPair(rd0, res0.Result, we0, rd1, res1.Result, we1)
	p.arbiter.Commit(pending)

	// Retiring destinations always clear, squashed or not, so no busy
	// bit can leak.
	var clear uint32
	if p.ex0.WritesReg() {
		clear |= regBit(p.ex0.Inst.Rd)
	}
	if p.ex1.WritesReg() {
		clear |= regBit(p.ex1.Inst.Rd)
	}

	var next0, next1 ExecSlot
	next0.Clear()
	next1.Clear()
	if !redirect {
		if decision.Admit0 {
			next0 = ExecSlot{
				Valid:    true,
				PC:       slot0.PC,
				Word:     slot0.Word,
				Inst:     slot0.Inst,
				Rs1Value: slot0.Rs1Value,
				Rs2Value: slot0.Rs2Value,
			}
		}
		if decision.Admit1 {
			next1 = ExecSlot{
				Valid:    true,
				PC:       slot1.PC,
				Word:     slot1.Word,
				Inst:     slot1.Inst,
				Rs1Value: slot1.Rs1Value,
				Rs2Value: slot1.Rs2Value,
			}
		}
	}
	p.scoreboard.Advance(clear, &next0, &next1)

	// Halt latches after the edge so the exit registers reflect every
	// committed write.
	halt := res0.Halt || (res1.Halt && !squash1)
	if halt {
		p.halted = true
		if p.regFile.ReadReg(17) == emu.ExitSyscall {
			p.exitCode = int32(p.regFile.ReadReg(10))
		}
	}

	switch {
	case redirect:
		p.pc = target
	case decision.Stall:
		// Hold: the pair retries next cycle.
	case !p.decodeValid:
		// Reset shadow displaced the fetched pair; present it again.
	case decision.Admit1:
		p.pc = pcF + 8
	default:
		p.pc = pcF + 4
	}

	p.updateStats(&decision, redirect, squash1, fetch0, fetch1, fwd0, fwd1)
	p.recordSnapshot(pcF, fetch0, fetch1, decodeWord0, decodeWord1,
		&decision, &res0, &res1, grant0, grant1, fwd0, fwd1)

	p.ex0 = next0
	p.ex1 = next1
	p.decodeValid = true
	p.stats.Cycles++

	if p.snapshotHook != nil {
		p.snapshotHook(&p.snapshot)
	}
}

// updateStats accumulates the cycle's counters. Retirement counts the
// slots that occupied execute this cycle, minus squashed work.
func (p *Pipeline) updateStats(
	decision *IssueDecision,
	redirect, squash1 bool,
	fetch0, fetch1 uint32,
	fwd0 Lane0Forward,
	fwd1 Lane1Forward,
) {
	if p.ex0.Valid {
		p.stats.Instructions++
	}
	if p.ex1.Valid && !squash1 {
		p.stats.Instructions++
	}
	if decision.Admit0 && decision.Admit1 {
		p.stats.DualIssueCycles++
	}
	if decision.Stall {
		p.stats.StallCycles++
		if decision.LoadUse0 {
			p.stats.LoadUseStalls++
		}
	}
	if redirect {
		p.stats.Redirects++
		if fetch0 != insts.NOP {
			p.stats.SquashedSlots++
		}
		if fetch1 != insts.NOP {
			p.stats.SquashedSlots++
		}
		if squash1 && p.ex1.Valid {
			p.stats.SquashedSlots++
		}
	}
	if fwd0.Rs1 {
		p.stats.ForwardEX0ToLane0++
	}
	if fwd0.Rs2 {
		p.stats.ForwardEX0ToLane0++
	}
	for _, src := range []ForwardSource{fwd1.Rs1, fwd1.Rs2} {
		switch src {
		case ForwardEX1:
			p.stats.ForwardEX1ToLane1++
		case ForwardEX0:
			p.stats.ForwardEX0ToLane1++
		}
	}
}

// recordSnapshot captures the cycle's post-commit picture.
func (p *Pipeline) recordSnapshot(
	pcF, fetch0, fetch1, decodeWord0, decodeWord1 uint32,
	decision *IssueDecision,
	res0, res1 *ExecResult,
	grant0, grant1 MemGrant,
	fwd0 Lane0Forward,
	fwd1 Lane1Forward,
) {
	p.snapshot = Snapshot{
		Cycle:          p.stats.Cycles,
		PC:             pcF,
		Fetch0:         fetch0,
		Fetch1:         fetch1,
		Decode0:        decodeWord0,
		Decode1:        decodeWord1,
		Issue0:         decision.Admit0,
		Issue1:         decision.Admit1,
		Exec0:          p.ex0.Word,
		Exec1:          p.ex1.Word,
		Result0:        res0.Result,
		Result1:        res1.Result,
		BranchTaken0:   res0.BranchTaken,
		BranchTaken1:   res1.BranchTaken,
		JumpTaken0:     res0.JumpTaken,
		JumpTaken1:     res1.JumpTaken,
		BranchTarget0:  res0.BranchTarget,
		BranchTarget1:  res1.BranchTarget,
		JumpTarget0:    res0.JumpTarget,
		JumpTarget1:    res1.JumpTarget,
		Mem0Read:       grant0.Read,
		Mem0Write:      grant0.Write,
		Mem1Read:       grant1.Read,
		Mem1Write:      grant1.Write,
		MemAddr0:       grant0.Addr,
		MemAddr1:       grant1.Addr,
		FwdRs1Lane0:    fwd0.Rs1,
		FwdRs2Lane0:    fwd0.Rs2,
		FwdRs1Lane1:    fwd1.Rs1,
		FwdRs2Lane1:    fwd1.Rs2,
		Stall:          decision.Stall,
		RAW1:           decision.RAW1,
		WAW1:           decision.WAW1,
		LoadUse0:       decision.LoadUse0,
		LoadUse1:       decision.LoadUse1,
		BusyVec:        p.scoreboard.BusyVec(),
		LoadPendingVec: p.scoreboard.LoadPendingVec(),
		Halted:         p.halted,
	}
}
