// Package loader provides hex image loading for RV32I programs.
//
// A hex image is a text file with one 32-bit instruction word per line,
// written in hexadecimal with an optional 0x prefix. Blank lines and
// comments introduced by // or # are ignored. Word i of the image is
// placed at address 4*i.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Program represents a loaded hex image ready for execution.
type Program struct {
	// Words contains the instruction words in address order.
	// Word i belongs at address 4*i.
	Words []uint32
}

// Size returns the program footprint in bytes.
func (p *Program) Size() int {
	return len(p.Words) * 4
}

// Load reads and parses a hex image from a file.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Parse reads a hex image from r.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Strip comments
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 1:
			// One word per line
		default:
			return nil, fmt.Errorf("line %d: expected one word per line, found %d", lineNum, len(fields))
		}

		text := strings.TrimPrefix(strings.TrimPrefix(fields[0], "0x"), "0X")
		word, err := strconv.ParseUint(text, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid hex word %q: %w", lineNum, fields[0], err)
		}

		prog.Words = append(prog.Words, uint32(word))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hex image: %w", err)
	}

	return prog, nil
}
