// Package analysis turns pipeline traces into human-readable reports:
// a per-cycle timeline, retirement and hazard statistics, consistency
// warnings, and a replayed cache profile.
package analysis

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/r2sim/insts"
	"github.com/sarchlab/r2sim/timing/pipeline"
	"github.com/sarchlab/r2sim/trace"
)

var decoder = insts.NewDecoder()

// retires reports whether an execute-slot word counts as a retired
// instruction. Bubbles carry the NOP encoding; never-written memory
// reads as zero.
func retires(word uint32) bool {
	return word != 0 && word != insts.NOP
}

// squashed1 reports whether the younger execute slot was killed by an
// older-lane redirect this cycle.
func squashed1(e *trace.Entry) bool {
	return retires(e.Exec1) && (e.BranchTaken0 || e.JumpTaken0)
}

// Summary aggregates a trace into retirement, hazard and forwarding
// statistics.
type Summary struct {
	// Cycles is the number of traced cycles.
	Cycles uint64

	// Retired0 and Retired1 count retired instructions per execute
	// lane. Younger-lane slots killed by an older-lane redirect count
	// as Squashed1 instead.
	Retired0  uint64
	Retired1  uint64
	Squashed1 uint64

	// DualIssueCycles counts cycles where both lanes retired.
	DualIssueCycles uint64

	// Taken control flow per kind.
	BranchesTaken uint64
	JumpsTaken    uint64

	// Hazard cycle counts.
	StallCycles    uint64
	RAW1Cycles     uint64
	WAW1Cycles     uint64
	LoadUse0Cycles uint64
	LoadUse1Cycles uint64

	// Operand forwarding counts per path.
	ForwardEX0ToLane0 uint64
	ForwardEX1ToLane1 uint64
	ForwardEX0ToLane1 uint64

	// Granted data-memory accesses.
	MemReads  uint64
	MemWrites uint64

	// PotentialRAW counts decode-stage reads of the register the
	// previous cycle's older execute slot was writing, whether or not
	// the machine had to do anything about them.
	PotentialRAW uint64

	// AvgBusyRegs is the mean scoreboard occupancy.
	AvgBusyRegs float64

	// Halted reports whether a system instruction reached execute, and
	// HaltCycle names the cycle it did.
	Halted    bool
	HaltCycle uint64
}

// Retired returns the total retired instruction count.
func (s *Summary) Retired() uint64 {
	return s.Retired0 + s.Retired1
}

// CPI returns cycles per retired instruction.
func (s *Summary) CPI() float64 {
	if s.Retired() == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Retired())
}

// IPC returns retired instructions per cycle.
func (s *Summary) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Retired()) / float64(s.Cycles)
}

// DualIssueRate returns the fraction of cycles that retired on both
// lanes.
func (s *Summary) DualIssueRate() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.DualIssueCycles) / float64(s.Cycles)
}

// Summarize aggregates the trace entries.
func Summarize(entries []trace.Entry) *Summary {
	s := &Summary{Cycles: uint64(len(entries))}

	var busySum uint64
	for i := range entries {
		e := &entries[i]

		sq := squashed1(e)
		r0 := retires(e.Exec0)
		r1 := retires(e.Exec1) && !sq
		if r0 {
			s.Retired0++
		}
		if r1 {
			s.Retired1++
		}
		if sq {
			s.Squashed1++
		}
		if r0 && r1 {
			s.DualIssueCycles++
		}

		if e.BranchTaken0 {
			s.BranchesTaken++
		}
		if e.BranchTaken1 && !sq {
			s.BranchesTaken++
		}
		if e.JumpTaken0 {
			s.JumpsTaken++
		}
		if e.JumpTaken1 && !sq {
			s.JumpsTaken++
		}

		if e.Stall {
			s.StallCycles++
		}
		if e.RAW1 {
			s.RAW1Cycles++
		}
		if e.WAW1 {
			s.WAW1Cycles++
		}
		if e.LoadUse0 {
			s.LoadUse0Cycles++
		}
		if e.LoadUse1 {
			s.LoadUse1Cycles++
		}

		if e.FwdRs1Lane0 {
			s.ForwardEX0ToLane0++
		}
		if e.FwdRs2Lane0 {
			s.ForwardEX0ToLane0++
		}
		s.countLane1Forward(e.FwdRs1Lane1)
		s.countLane1Forward(e.FwdRs2Lane1)

		if e.Mem0Read {
			s.MemReads++
		}
		if e.Mem1Read {
			s.MemReads++
		}
		if e.Mem0Write {
			s.MemWrites++
		}
		if e.Mem1Write {
			s.MemWrites++
		}

		busySum += uint64(bits.OnesCount32(e.BusyVec))

		if !s.Halted {
			halt0 := r0 && decoder.Decode(e.Exec0).IsSystem
			halt1 := r1 && decoder.Decode(e.Exec1).IsSystem
			if halt0 || halt1 {
				s.Halted = true
				s.HaltCycle = e.Cycle
			}
		}

		if i > 0 {
			s.PotentialRAW += potentialRAW(entries[i-1].Exec0, e.Decode0)
		}
	}

	if len(entries) > 0 {
		s.AvgBusyRegs = float64(busySum) / float64(len(entries))
	}
	return s
}

func (s *Summary) countLane1Forward(src pipeline.ForwardSource) {
	switch src {
	case pipeline.ForwardEX1:
		s.ForwardEX1ToLane1++
	case pipeline.ForwardEX0:
		s.ForwardEX0ToLane1++
	}
}

// potentialRAW reports whether the decode word reads the register the
// previous execute word was writing.
func potentialRAW(prevExec, dec uint32) uint64 {
	if !retires(prevExec) || !retires(dec) {
		return 0
	}
	prev := decoder.Decode(prevExec)
	if !prev.WritesReg || prev.Rd == 0 {
		return 0
	}
	d := decoder.Decode(dec)
	if (d.UsesRs1 && d.Rs1 == prev.Rd) || (d.UsesRs2 && d.Rs2 == prev.Rd) {
		return 1
	}
	return 0
}

// WriteReport renders the summary as a table.
func (s *Summary) WriteReport(w io.Writer) {
	t := table.NewWriter()
	t.SetTitle("Pipeline Report")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Total cycles", s.Cycles})
	t.AppendRow(table.Row{"Instructions retired", s.Retired()})
	t.AppendRow(table.Row{"Retired lane0 / lane1",
		fmt.Sprintf("%d / %d", s.Retired0, s.Retired1)})
	t.AppendRow(table.Row{"CPI / IPC",
		fmt.Sprintf("%.3f / %.3f", s.CPI(), s.IPC())})
	t.AppendRow(table.Row{"Dual-issue rate",
		fmt.Sprintf("%.1f%%", s.DualIssueRate()*100)})
	t.AppendRow(table.Row{"Branches / jumps taken",
		fmt.Sprintf("%d / %d", s.BranchesTaken, s.JumpsTaken)})
	t.AppendRow(table.Row{"Squashed younger slots", s.Squashed1})
	t.AppendRow(table.Row{"Stall cycles", s.StallCycles})
	t.AppendRow(table.Row{"Hazard cycles RAW1 / WAW1",
		fmt.Sprintf("%d / %d", s.RAW1Cycles, s.WAW1Cycles)})
	t.AppendRow(table.Row{"Load-use lane0 / lane1",
		fmt.Sprintf("%d / %d", s.LoadUse0Cycles, s.LoadUse1Cycles)})
	t.AppendRow(table.Row{"Forwards EX0->lane0", s.ForwardEX0ToLane0})
	t.AppendRow(table.Row{"Forwards EX1->lane1", s.ForwardEX1ToLane1})
	t.AppendRow(table.Row{"Forwards EX0->lane1", s.ForwardEX0ToLane1})
	t.AppendRow(table.Row{"Memory reads / writes",
		fmt.Sprintf("%d / %d", s.MemReads, s.MemWrites)})
	t.AppendRow(table.Row{"Potential RAW pairs", s.PotentialRAW})
	t.AppendRow(table.Row{"Average busy registers",
		fmt.Sprintf("%.2f", s.AvgBusyRegs)})
	if s.Halted {
		t.AppendRow(table.Row{"Halted", fmt.Sprintf("cycle %d", s.HaltCycle)})
	} else {
		t.AppendRow(table.Row{"Halted", "no"})
	}
	fmt.Fprintln(w, t.Render())
}
