// Command r2bench runs the R2Sim dual-issue workload harness.
//
// Usage:
//
//	go run ./cmd/r2bench [flags]
//
// Flags:
//
//	-csv         Output results in CSV format (default: human-readable)
//	-json        Output a full report in JSON format
//	-no-emu      Skip the functional emulator cross-check
//	-max-cycles  Cycle limit per workload (default: 1000000)
//	-v           Print per-workload detail
//
// Example:
//
//	# Run all workloads with human-readable output
//	go run ./cmd/r2bench
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/r2bench -csv > results.csv
//
// Every workload runs on the dual-issue pipeline and, unless -no-emu is
// given, on the functional emulator as well. The exit status is nonzero
// when any workload exits with an unexpected code or the two models
// disagree on the final register state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/r2sim/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output a full report in JSON format")
	noEmu := flag.Bool("no-emu", false, "Skip the functional emulator cross-check")
	maxCycles := flag.Uint64("max-cycles", 1000000, "Cycle limit per workload")
	verbose := flag.Bool("v", false, "Print per-workload detail")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.RunEmulator = !*noEmu
	config.MaxCycles = *maxCycles
	config.Verbose = *verbose
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	workloads := benchmarks.GetWorkloads()
	harness.AddWorkloads(workloads)

	if !*csvOutput && !*jsonOutput {
		fmt.Println("R2Sim Workload Harness")
		fmt.Println("======================")
		fmt.Printf("Emulator check: %v\n", config.RunEmulator)
		fmt.Printf("Cycle limit: %d\n", config.MaxCycles)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON report: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	failed := 0
	for i, r := range results {
		if r.ExitCode != workloads[i].ExpectedExit {
			fmt.Fprintf(os.Stderr, "FAIL %s: expected exit %d, got %d\n",
				r.Name, workloads[i].ExpectedExit, r.ExitCode)
			failed++
			continue
		}
		if config.RunEmulator && !r.Match {
			fmt.Fprintf(os.Stderr, "FAIL %s: pipeline and emulator disagree\n", r.Name)
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d workloads failed\n", failed, len(results))
		os.Exit(1)
	}
}
