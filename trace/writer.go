package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/r2sim/timing/pipeline"
)

// Writer streams trace entries to w as CSV. The header row is written
// before the first entry.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
}

// NewWriter creates a trace writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write appends one entry.
func (w *Writer) Write(e Entry) error {
	if !w.wroteHeader {
		if err := w.csv.Write(Header); err != nil {
			return fmt.Errorf("failed to write trace header: %w", err)
		}
		w.wroteHeader = true
	}
	if err := w.csv.Write(e.record()); err != nil {
		return fmt.Errorf("failed to write trace row: %w", err)
	}
	return nil
}

// WriteSnapshot appends one entry converted from a pipeline snapshot.
// It has the signature expected by the pipeline's snapshot hook.
func (w *Writer) WriteSnapshot(s *pipeline.Snapshot) {
	_ = w.Write(FromSnapshot(s))
}

// Flush writes buffered rows to the underlying writer and reports any
// error seen so far.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush trace: %w", err)
	}
	return nil
}

// record renders the entry as CSV fields in Header order.
func (e *Entry) record() []string {
	return []string{
		strconv.FormatUint(e.Cycle, 10),
		hexWord(e.PC),
		hexWord(e.Fetch0),
		hexWord(e.Fetch1),
		hexWord(e.Decode0),
		hexWord(e.Decode1),
		flag(e.Issue0),
		flag(e.Issue1),
		hexWord(e.Exec0),
		hexWord(e.Exec1),
		hexWord(e.Result0),
		hexWord(e.Result1),
		flag(e.BranchTaken0),
		flag(e.BranchTaken1),
		flag(e.JumpTaken0),
		flag(e.JumpTaken1),
		hexWord(e.BranchTarget0),
		hexWord(e.BranchTarget1),
		hexWord(e.JumpTarget0),
		hexWord(e.JumpTarget1),
		flag(e.Mem0Read),
		flag(e.Mem0Write),
		flag(e.Mem1Read),
		flag(e.Mem1Write),
		hexWord(e.MemAddr0),
		hexWord(e.MemAddr1),
		flag(e.FwdRs1Lane0),
		flag(e.FwdRs2Lane0),
		strconv.Itoa(int(e.FwdRs1Lane1)),
		strconv.Itoa(int(e.FwdRs2Lane1)),
		flag(e.Stall),
		flag(e.RAW1),
		flag(e.WAW1),
		flag(e.LoadUse0),
		flag(e.LoadUse1),
		hexWord(e.BusyVec),
		hexWord(e.LoadPendingVec),
	}
}

func hexWord(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
