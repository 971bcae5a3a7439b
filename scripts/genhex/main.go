// Regenerate the checked-in benchmark hex images from the workload encoders
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/r2sim/benchmarks"
	"github.com/sarchlab/r2sim/insts"
)

var outDir = flag.String("out", "benchmarks/hex", "directory to write hex images into")

func main() {
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	for _, w := range benchmarks.GetWorkloads() {
		if w.Setup != nil {
			// A hex image cannot carry register or memory presets.
			fmt.Printf("skip  %s (needs harness setup)\n", w.Name)
			continue
		}

		path := filepath.Join(*outDir, w.Name+".hex")
		if err := os.WriteFile(path, renderImage(w), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d words)\n", path, len(w.Program))
	}
}

func renderImage(w benchmarks.Workload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s: %s\n", w.Name, w.Description)
	b.WriteString("// Generated by scripts/genhex. Load at address 0.\n\n")
	for _, word := range w.Program {
		fmt.Fprintf(&b, "%08X  // %s\n", word, insts.Disassemble(word))
	}
	return []byte(b.String())
}
