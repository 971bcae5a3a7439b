// Package main provides the entry point for R2Sim.
// R2Sim is a dual-issue, in-order RV32I pipeline simulator.
//
// For the full CLI, use: go run ./cmd/r2sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("R2Sim - Dual-Issue RV32I Pipeline Simulator")
	fmt.Println("")
	fmt.Println("Usage: r2sim [options] <program.hex>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -emu       Run the functional emulator instead of the pipeline")
	fmt.Println("  -check     Run both models and compare architectural state")
	fmt.Println("  -trace     Write a cycle-by-cycle pipeline trace")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/r2sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/r2sim' instead.")
	}
}
