// Package benchmarks provides workload infrastructure for characterizing
// the dual-issue pipeline.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/r2sim/emu"
	"github.com/sarchlab/r2sim/timing/pipeline"
)

// Result holds the outcome of a single workload run.
type Result struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the pipeline
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// DualIssueCycles is the number of cycles both lanes were admitted
	DualIssueCycles uint64 `json:"dual_issue_cycles"`

	// DualIssueRate is the fraction of cycles that dual-issued
	DualIssueRate float64 `json:"dual_issue_rate"`

	// StallCycles is the number of cycles the front end was frozen
	StallCycles uint64 `json:"stall_cycles"`

	// LoadUseStalls is the number of stalls caused by in-flight loads
	LoadUseStalls uint64 `json:"load_use_stalls"`

	// Redirects is the number of taken branches and jumps
	Redirects uint64 `json:"redirects"`

	// SquashedSlots is the number of valid slots discarded by redirects
	SquashedSlots uint64 `json:"squashed_slots"`

	// ExitCode is the pipeline's exit code
	ExitCode int32 `json:"exit_code"`

	// EmulatorExit is the functional emulator's exit code
	EmulatorExit int32 `json:"emulator_exit,omitempty"`

	// EmulatorInstructions is the emulator's retired count
	EmulatorInstructions uint64 `json:"emulator_instructions,omitempty"`

	// Match reports whether the pipeline and the emulator agreed on
	// the exit code and the full register file
	Match bool `json:"match"`

	// WallTime is the host time taken to run the workload
	WallTime time.Duration `json:"wall_time_ns"`
}

// Workload defines a single workload program.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload measures
	Description string

	// Setup prepares the initial state (registers, memory buffers)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the RV32I machine code, loaded at address 0
	Program []uint32

	// ExpectedExit is the expected exit code (for validation)
	ExpectedExit int32
}

// Config configures the workload harness.
type Config struct {
	// RunEmulator cross-checks every workload against the functional
	// emulator
	RunEmulator bool

	// MaxCycles bounds each pipeline run
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables per-workload detail
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() Config {
	return Config{
		RunEmulator: true,
		MaxCycles:   1000000,
		Output:      os.Stdout,
		Verbose:     false,
	}
}

// Harness runs workloads and reports results.
type Harness struct {
	config    Config
	workloads []Workload
}

// NewHarness creates a new workload harness.
func NewHarness(config Config) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll executes all workloads and returns results.
func (h *Harness) RunAll() []Result {
	results := make([]Result, 0, len(h.workloads))

	for _, w := range h.workloads {
		results = append(results, h.runWorkload(w))
	}

	return results
}

// runWorkload executes a single workload on the pipeline and, when
// configured, cross-checks it on the functional emulator.
func (h *Harness) runWorkload(w Workload) Result {
	regFile := &emu.RegFile{}
	memory := emu.NewMemory()

	if w.Setup != nil {
		w.Setup(regFile, memory)
	}
	for i, word := range w.Program {
		memory.Write32(uint32(4*i), word)
	}

	var opts []pipeline.PipelineOption
	if h.config.MaxCycles > 0 {
		opts = append(opts, pipeline.WithMaxCycles(h.config.MaxCycles))
	}
	pipe := pipeline.NewPipeline(regFile, memory, opts...)

	start := time.Now()
	exitCode := pipe.Run()
	wallTime := time.Since(start)

	stats := pipe.Stats()
	result := Result{
		Name:                w.Name,
		Description:         w.Description,
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 stats.CPI(),
		DualIssueCycles:     stats.DualIssueCycles,
		StallCycles:         stats.StallCycles,
		LoadUseStalls:       stats.LoadUseStalls,
		Redirects:           stats.Redirects,
		SquashedSlots:       stats.SquashedSlots,
		ExitCode:            exitCode,
		WallTime:            wallTime,
	}
	if stats.Cycles > 0 {
		result.DualIssueRate = float64(stats.DualIssueCycles) / float64(stats.Cycles)
	}

	if h.config.RunEmulator {
		h.crossCheck(&result, w, regFile)
	}

	return result
}

// crossCheck replays the workload on the functional emulator and
// compares the architectural outcome against the pipeline's.
func (h *Harness) crossCheck(result *Result, w Workload, pipeRegs *emu.RegFile) {
	var opts []emu.EmulatorOption
	if h.config.MaxCycles > 0 {
		// Two lanes per cycle bounds the emulator's instruction count.
		opts = append(opts, emu.WithMaxInstructions(2*h.config.MaxCycles))
	}
	emulator := emu.NewEmulator(opts...)

	if w.Setup != nil {
		w.Setup(emulator.RegFile(), emulator.Memory())
	}
	emulator.LoadWords(0, w.Program)

	result.EmulatorExit = emulator.Run()
	result.EmulatorInstructions = emulator.InstructionCount()
	result.Match = emulator.Halted() &&
		result.EmulatorExit == result.ExitCode &&
		emulator.RegFile().X == pipeRegs.X
}

// PrintResults outputs workload results as a table.
func (h *Harness) PrintResults(results []Result) {
	t := table.NewWriter()
	t.SetTitle("Workload Results")
	t.AppendHeader(table.Row{
		"Workload", "Cycles", "Instr", "CPI", "Dual %",
		"Stalls", "Redirects", "Exit", "Match",
	})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			fmt.Sprintf("%.3f", r.CPI),
			fmt.Sprintf("%.1f", 100*r.DualIssueRate),
			r.StallCycles,
			r.Redirects,
			r.ExitCode,
			matchCell(r.Match),
		})
	}

	_, _ = fmt.Fprintln(h.config.Output, t.Render())

	if h.config.Verbose {
		for _, r := range results {
			h.printDetail(&r)
		}
	}
}

func matchCell(match bool) string {
	if match {
		return "yes"
	}
	return "no"
}

// printDetail writes the full counter set for one workload.
func (h *Harness) printDetail(r *Result) {
	_, _ = fmt.Fprintf(h.config.Output, "\nWorkload: %s\n", r.Name)
	_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
	_, _ = fmt.Fprintf(h.config.Output, "  Exit Code: %d\n", r.ExitCode)
	_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
	_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
	_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
	_, _ = fmt.Fprintf(h.config.Output, "  Dual-Issue Cycles:    %d\n", r.DualIssueCycles)
	_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
	_, _ = fmt.Fprintf(h.config.Output, "  Load-Use Stalls:      %d\n", r.LoadUseStalls)
	_, _ = fmt.Fprintf(h.config.Output, "  Redirects:            %d\n", r.Redirects)
	_, _ = fmt.Fprintf(h.config.Output, "  Squashed Slots:       %d\n", r.SquashedSlots)
	if r.EmulatorInstructions > 0 {
		_, _ = fmt.Fprintf(h.config.Output, "  Emulator Exit:        %d\n", r.EmulatorExit)
		_, _ = fmt.Fprintf(h.config.Output, "  Emulator Instr:       %d\n", r.EmulatorInstructions)
	}
	_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
}

// PrintCSV outputs workload results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,dual_issue_cycles,stall_cycles,load_use_stalls,redirects,squashed_slots,exit_code,match")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.DualIssueCycles,
			r.StallCycles,
			r.LoadUseStalls,
			r.Redirects,
			r.SquashedSlots,
			r.ExitCode,
			r.Match,
		)
	}
}

// Report is the complete output format for workload results.
type Report struct {
	// Metadata about the run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual workload results
	Results []Result `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the workload run.
type ReportMetadata struct {
	// Timestamp when the workloads were run
	Timestamp string `json:"timestamp"`

	// Version of the simulator
	Version string `json:"version"`

	// Config describes the harness configuration
	Config ReportConfig `json:"config"`
}

// ReportConfig describes the harness configuration used.
type ReportConfig struct {
	EmulatorChecked bool   `json:"emulator_checked"`
	MaxCycles       uint64 `json:"max_cycles"`
}

// ReportSummary contains aggregate statistics across all workloads.
type ReportSummary struct {
	// TotalWorkloads is the number of workloads run
	TotalWorkloads int `json:"total_workloads"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the aggregate cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total host time for all workloads
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs workload results in JSON format for automated
// comparison.
func (h *Harness) PrintJSON(results []Result) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := Report{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
			Config: ReportConfig{
				EmulatorChecked: h.config.RunEmulator,
				MaxCycles:       h.config.MaxCycles,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalWorkloads:    len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
