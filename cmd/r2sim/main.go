// Package main provides the entry point for R2Sim.
// R2Sim is a dual-issue, in-order RV32I pipeline simulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/r2sim/emu"
	"github.com/sarchlab/r2sim/loader"
	"github.com/sarchlab/r2sim/timing/latency"
	"github.com/sarchlab/r2sim/timing/pipeline"
	"github.com/sarchlab/r2sim/trace"
)

var (
	emuMode    = flag.Bool("emu", false, "Run the functional emulator instead of the pipeline")
	checkMode  = flag.Bool("check", false, "Run both models and compare architectural state")
	tracePath  = flag.String("trace", "", "Write the per-cycle trace CSV to this file")
	configPath = flag.String("config", "", "Path to simulation configuration JSON file")
	maxCycles  = flag.Uint64("max-cycles", 0, "Stop the pipeline after this many cycles (0 = unlimited)")
	cpuProfile = flag.String("cpuprofile", "", "Write a CPU profile to this file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: r2sim [options] <program.hex>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	if *cpuProfile != "" {
		startCPUProfile(*cpuProfile)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		atexit.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Words: %d (%d bytes)\n", len(prog.Words), prog.Size())
	}

	var exitCode int32
	switch {
	case *checkMode:
		exitCode = runCheck(prog, programPath)
	case *emuMode:
		exitCode = runEmulation(prog, programPath)
	default:
		exitCode = runTiming(prog, programPath)
	}

	atexit.Exit(int(exitCode))
}

// startCPUProfile begins CPU profiling and registers the stop for every
// exit path. Deferred calls never run under atexit.Exit, so the handler
// registration is what guarantees the profile gets written.
func startCPUProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
		atexit.Exit(1)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Register(func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	})
}

// resolveConfig loads the simulation configuration, falling back to the
// defaults when no -config path was given.
func resolveConfig() *latency.SimConfig {
	if *configPath == "" {
		return latency.DefaultSimConfig()
	}

	config, err := latency.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sim config: %v\n", err)
		atexit.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid sim config: %v\n", err)
		atexit.Exit(1)
	}

	return config
}

// loadWords copies the program image into simulated memory at address 0.
func loadWords(memory *emu.Memory, words []uint32) {
	for i, w := range words {
		memory.Write32(uint32(4*i), w)
	}
}

// pipelineOptions assembles the pipeline options from the configuration
// and command-line overrides.
func pipelineOptions(config *latency.SimConfig) []pipeline.PipelineOption {
	var opts []pipeline.PipelineOption

	limit := config.MaxCycles
	if *maxCycles > 0 {
		limit = *maxCycles
	}
	if limit > 0 {
		opts = append(opts, pipeline.WithMaxCycles(limit))
	}

	path := config.TracePath
	if *tracePath != "" {
		path = *tracePath
	}
	if path != "" {
		opts = append(opts, pipeline.WithSnapshotHook(openTrace(path)))
	}

	return opts
}

// openTrace creates the trace file and returns the per-cycle hook. The
// flush and close are registered as exit handlers so the trace survives
// every exit path, including error exits.
func openTrace(path string) func(*pipeline.Snapshot) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
		atexit.Exit(1)
	}

	w := trace.NewWriter(f)
	atexit.Register(func() {
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing trace: %v\n", err)
		}
		_ = f.Close()
	})

	return w.WriteSnapshot
}

// runEmulation runs the program in functional emulation mode.
func runEmulation(prog *loader.Program, programPath string) int32 {
	emulator := emu.NewEmulator()
	emulator.LoadWords(0, prog.Words)

	exitCode := emulator.Run()

	if *verbose {
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("Exit code: %d\n", exitCode)
		fmt.Printf("Instructions executed: %d\n", emulator.InstructionCount())
	}

	return exitCode
}

// runTiming runs the program on the dual-issue pipeline model.
func runTiming(prog *loader.Program, programPath string) int32 {
	config := resolveConfig()

	regFile := &emu.RegFile{}
	memory := emu.NewMemory()
	loadWords(memory, prog.Words)

	pipe := pipeline.NewPipeline(regFile, memory, pipelineOptions(config)...)

	exitCode := pipe.Run()

	if !pipe.Halted() {
		fmt.Fprintf(os.Stderr, "Warning: cycle limit reached before the program exited\n")
	}

	printTimingReport(pipe, programPath, exitCode)

	return exitCode
}

// printTimingReport prints the pipeline statistics for a timing run.
func printTimingReport(pipe *pipeline.Pipeline, programPath string, exitCode int32) {
	stats := pipe.Stats()

	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1 // Avoid division by zero
	}

	fmt.Printf("\n")
	fmt.Printf("Program: %s\n", programPath)
	fmt.Printf("Exit code: %d\n", exitCode)
	fmt.Printf("Total Instructions: %d\n", stats.Instructions)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("IPC: %.2f\n", stats.IPC())
	fmt.Printf("\n")
	fmt.Printf("Issue:\n")
	fmt.Printf("  Dual-issue cycles:   %4d cycles (%5.1f%%)\n",
		stats.DualIssueCycles, 100.0*float64(stats.DualIssueCycles)/float64(totalCycles))
	fmt.Printf("  Stall cycles:        %4d cycles (%5.1f%%)\n",
		stats.StallCycles, 100.0*float64(stats.StallCycles)/float64(totalCycles))
	fmt.Printf("  Load-use stalls:     %4d\n", stats.LoadUseStalls)
	fmt.Printf("\n")
	fmt.Printf("Pipeline Events:\n")
	fmt.Printf("  Redirects:           %d\n", stats.Redirects)
	fmt.Printf("  Squashed slots:      %d\n", stats.SquashedSlots)
	fmt.Printf("  Forward EX0->lane0:  %d\n", stats.ForwardEX0ToLane0)
	fmt.Printf("  Forward EX1->lane1:  %d\n", stats.ForwardEX1ToLane1)
	fmt.Printf("  Forward EX0->lane1:  %d\n", stats.ForwardEX0ToLane1)
}

// runCheck runs the program on both models and compares the registers
// and exit codes. The pipeline counts every admitted slot, including
// no-effect words fetched past the end of a program, so instruction
// counts are reported but never compared.
func runCheck(prog *loader.Program, programPath string) int32 {
	config := resolveConfig()

	regFile := &emu.RegFile{}
	memory := emu.NewMemory()
	loadWords(memory, prog.Words)

	pipe := pipeline.NewPipeline(regFile, memory, pipelineOptions(config)...)
	pipeExit := pipe.Run()

	if !pipe.Halted() {
		fmt.Fprintf(os.Stderr, "Check failed: pipeline hit the cycle limit before exiting\n")
		atexit.Exit(1)
	}

	var emuOpts []emu.EmulatorOption
	if limit := pipe.Stats().Cycles; limit > 0 {
		// Two lanes per cycle bounds how far the emulator can need to go.
		emuOpts = append(emuOpts, emu.WithMaxInstructions(2*limit))
	}
	emulator := emu.NewEmulator(emuOpts...)
	emulator.LoadWords(0, prog.Words)
	emuExit := emulator.Run()

	if !emulator.Halted() {
		fmt.Fprintf(os.Stderr, "Check failed: emulator hit the instruction limit before exiting\n")
		atexit.Exit(1)
	}

	mismatches := 0
	if pipeExit != emuExit {
		fmt.Fprintf(os.Stderr, "Mismatch: exit code pipeline=%d emulator=%d\n",
			pipeExit, emuExit)
		mismatches++
	}

	emuRegs := emulator.RegFile()
	for i := range regFile.X {
		if regFile.X[i] != emuRegs.X[i] {
			fmt.Fprintf(os.Stderr, "Mismatch: x%d pipeline=0x%08x emulator=0x%08x\n",
				i, regFile.X[i], emuRegs.X[i])
			mismatches++
		}
	}

	if mismatches > 0 {
		fmt.Fprintf(os.Stderr, "\nCheck failed: %d mismatches (%s)\n", mismatches, programPath)
		atexit.Exit(1)
	}

	fmt.Printf("Check passed: exit code %d, %d cycles, %d instructions emulated\n",
		pipeExit, pipe.Stats().Cycles, emulator.InstructionCount())

	if *verbose {
		printTimingReport(pipe, programPath, pipeExit)
	}

	return pipeExit
}
