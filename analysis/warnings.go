package analysis

import (
	"fmt"

	"github.com/sarchlab/r2sim/timing/pipeline"
	"github.com/sarchlab/r2sim/trace"
)

// Warning flags a traced cycle whose signals disagree with the
// machine's issue, forwarding or scoreboard rules.
type Warning struct {
	Cycle   uint64
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("cycle %d: %s", w.Cycle, w.Message)
}

// Check scans a trace for signal combinations the machine should never
// produce. A clean run returns no warnings.
func Check(entries []trace.Entry) []Warning {
	var warnings []Warning
	add := func(cycle uint64, msg string) {
		warnings = append(warnings, Warning{Cycle: cycle, Message: msg})
	}

	for i := range entries {
		e := &entries[i]

		if i > 0 && e.Cycle != entries[i-1].Cycle+1 {
			add(e.Cycle, fmt.Sprintf("cycle numbering jumps from %d to %d",
				entries[i-1].Cycle, e.Cycle))
		}

		ex1Named := e.FwdRs1Lane1 == pipeline.ForwardEX1 ||
			e.FwdRs2Lane1 == pipeline.ForwardEX1
		if ex1Named && !retires(e.Exec1) {
			add(e.Cycle, "forward source EX1 named while execute lane 1 holds a bubble")
		}

		ex0Named := e.FwdRs1Lane1 == pipeline.ForwardEX0 ||
			e.FwdRs2Lane1 == pipeline.ForwardEX0
		if ex0Named && !retires(e.Exec0) {
			add(e.Cycle, "forward source EX0 named while execute lane 0 holds a bubble")
		}

		if (e.FwdRs1Lane0 || e.FwdRs2Lane0) && !retires(e.Exec0) {
			add(e.Cycle, "older-lane forward enabled while execute lane 0 holds a bubble")
		}

		if e.Stall && (e.Issue0 || e.Issue1) {
			add(e.Cycle, "lane issued during a stall")
		}

		system1 := decoder.Decode(e.Decode1).IsSystem
		if e.Issue1 && !e.Issue0 && !system1 && !e.Stall {
			add(e.Cycle, "younger lane issued without the older lane")
		}
		if e.Issue1 && !system1 && (e.RAW1 || e.WAW1 || e.LoadUse1) {
			add(e.Cycle, "younger lane issued past a hazard")
		}

		if e.LoadUse0 && !e.Stall {
			add(e.Cycle, "older-lane load-use did not stall the front end")
		}

		lane0Reads, _, _ := exec1Consumers(e)
		if lane0Reads && !e.Stall {
			add(e.Cycle, "older lane reads the younger execute result without stalling")
		}

		if e.BusyVec&1 != 0 {
			add(e.Cycle, "scoreboard marks x0 busy")
		}
		if e.LoadPendingVec&^e.BusyVec != 0 {
			add(e.Cycle, fmt.Sprintf(
				"load pending on registers not marked busy: 0x%08x",
				e.LoadPendingVec&^e.BusyVec))
		}
	}

	return warnings
}
