package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/r2sim/timing/pipeline"
)

// ReadFile parses a trace file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ReadAll parses a complete trace from r. The first row must be the
// column header. Hex fields containing X/Z-style unknown digits are
// read as zero; once the fetch pc itself goes unknown, which RTL
// testbenches emit after halt, the remaining rows are dropped.
func ReadAll(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty trace")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trace header: %w", err)
	}
	if header[0] != Header[0] {
		return nil, fmt.Errorf("not a pipeline trace: first column is %q, want %q",
			header[0], Header[0])
	}

	var entries []Entry
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read trace: %w", err)
		}
		row++

		if len(record) != numColumns {
			return nil, fmt.Errorf("row %d: expected %d fields, found %d",
				row, numColumns, len(record))
		}
		if isUnknown(record[colPCF]) {
			return entries, nil
		}

		e, err := parseRecord(record, row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
}

func parseRecord(record []string, row int) (Entry, error) {
	p := &recordParser{record: record, row: row}

	e := Entry{
		Cycle:          p.count(colCycle),
		PC:             p.word(colPCF),
		Fetch0:         p.word(colFetch0),
		Fetch1:         p.word(colFetch1),
		Decode0:        p.word(colDecode0),
		Decode1:        p.word(colDecode1),
		Issue0:         p.flag(colIssue0),
		Issue1:         p.flag(colIssue1),
		Exec0:          p.word(colExec0),
		Exec1:          p.word(colExec1),
		Result0:        p.word(colResult0),
		Result1:        p.word(colResult1),
		BranchTaken0:   p.flag(colBranchTaken0),
		BranchTaken1:   p.flag(colBranchTaken1),
		JumpTaken0:     p.flag(colJumpTaken0),
		JumpTaken1:     p.flag(colJumpTaken1),
		BranchTarget0:  p.word(colBranchTarget0),
		BranchTarget1:  p.word(colBranchTarget1),
		JumpTarget0:    p.word(colJumpTarget0),
		JumpTarget1:    p.word(colJumpTarget1),
		Mem0Read:       p.flag(colMem0Read),
		Mem0Write:      p.flag(colMem0Write),
		Mem1Read:       p.flag(colMem1Read),
		Mem1Write:      p.flag(colMem1Write),
		MemAddr0:       p.word(colMemAddr0),
		MemAddr1:       p.word(colMemAddr1),
		FwdRs1Lane0:    p.flag(colFwdRs1Lane0),
		FwdRs2Lane0:    p.flag(colFwdRs2Lane0),
		FwdRs1Lane1:    p.source(colFwdRs1Lane1),
		FwdRs2Lane1:    p.source(colFwdRs2Lane1),
		Stall:          p.flag(colStall),
		RAW1:           p.flag(colRAW1),
		WAW1:           p.flag(colWAW1),
		LoadUse0:       p.flag(colLoadUse0),
		LoadUse1:       p.flag(colLoadUse1),
		BusyVec:        p.word(colBusyVec),
		LoadPendingVec: p.word(colLoadPendingVec),
	}

	return e, p.err
}

// recordParser accumulates the first parse error across a row so the
// entry construction stays a flat literal.
type recordParser struct {
	record []string
	row    int
	err    error
}

func (p *recordParser) fail(col int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("row %d: invalid %s value %q: %w",
			p.row, Header[col], p.record[col], err)
	}
}

// count parses a plain decimal field.
func (p *recordParser) count(col int) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(p.record[col]), 10, 64)
	if err != nil {
		p.fail(col, err)
		return 0
	}
	return v
}

// word parses a 32-bit hex field with or without a 0x prefix.
// Unknown digits read as zero.
func (p *recordParser) word(col int) uint32 {
	s := trimHexPrefix(p.record[col])
	if s == "" || hasUnknownDigit(s) {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		p.fail(col, err)
		return 0
	}
	return uint32(v)
}

// flag parses a boolean field. Only explicit true spellings count;
// anything else, unknowns included, reads as false.
func (p *recordParser) flag(col int) bool {
	switch strings.ToLower(strings.TrimSpace(p.record[col])) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// source parses a forwarding mux select. Unknown digits read as the
// register-file source.
func (p *recordParser) source(col int) pipeline.ForwardSource {
	s := trimHexPrefix(p.record[col])
	if s == "" || hasUnknownDigit(s) {
		return pipeline.ForwardNone
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		p.fail(col, err)
		return pipeline.ForwardNone
	}
	switch pipeline.ForwardSource(v) {
	case pipeline.ForwardEX1:
		return pipeline.ForwardEX1
	case pipeline.ForwardEX0:
		return pipeline.ForwardEX0
	default:
		return pipeline.ForwardNone
	}
}

func trimHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	return strings.TrimPrefix(s, "0X")
}

func hasUnknownDigit(s string) bool {
	return strings.ContainsAny(s, "xXzZ?")
}

func isUnknown(s string) bool {
	return hasUnknownDigit(trimHexPrefix(s))
}
