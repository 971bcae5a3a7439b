// Package main provides the trace analyzer for R2Sim.
// It turns the per-cycle pipeline trace CSV into summary reports,
// timelines, consistency warnings, and cache replay profiles.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/r2sim/analysis"
	"github.com/sarchlab/r2sim/loader"
	"github.com/sarchlab/r2sim/timing/latency"
	"github.com/sarchlab/r2sim/trace"
)

var (
	configPath = flag.String("config", "", "Path to simulation configuration JSON file")
	timeline   = flag.Bool("timeline", false, "Print the per-cycle timeline")
	warnings   = flag.Bool("warnings", false, "Check the trace for consistency violations")
	cacheSim   = flag.Bool("cache", false, "Replay the trace through the cache model")
	hexPath    = flag.String("hex", "", "Print a program listing for this hex image")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: r2analyze [options] <trace.csv>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	tracePath := flag.Arg(0)

	entries, err := trace.ReadFile(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading trace: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "Trace %s holds no usable rows\n", tracePath)
		os.Exit(1)
	}

	if *hexPath != "" {
		prog, err := loader.Load(*hexPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
			os.Exit(1)
		}
		analysis.WriteProgramListing(os.Stdout, prog.Words)
		fmt.Println()
	}

	summary := analysis.Summarize(entries)
	summary.WriteReport(os.Stdout)

	if *timeline {
		fmt.Println()
		analysis.WriteTimeline(os.Stdout, entries)
	}

	if *cacheSim {
		profile := analysis.ProfileCaches(entries, resolveConfig())
		fmt.Println()
		profile.WriteReport(os.Stdout)
	}

	if *warnings {
		reportWarnings(entries)
	}
}

// resolveConfig loads the cache geometry for replay, falling back to
// the defaults when no -config path was given.
func resolveConfig() *latency.SimConfig {
	if *configPath == "" {
		return latency.DefaultSimConfig()
	}

	config, err := latency.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sim config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid sim config: %v\n", err)
		os.Exit(1)
	}

	return config
}

// reportWarnings prints consistency violations and exits nonzero when
// the trace holds any.
func reportWarnings(entries []trace.Entry) {
	found := analysis.Check(entries)

	fmt.Println()
	if len(found) == 0 {
		fmt.Println("No trace warnings.")
		return
	}

	fmt.Printf("%d trace warnings:\n", len(found))
	for _, w := range found {
		fmt.Printf("  %s\n", w)
	}
	os.Exit(1)
}
