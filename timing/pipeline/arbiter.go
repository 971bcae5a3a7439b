package pipeline

import (
	"github.com/sarchlab/r2sim/emu"
	"github.com/sarchlab/r2sim/insts"
)

// MemRequest is one execute lane's data-memory intent for the cycle.
type MemRequest struct {
	// Read and Write are mutually exclusive.
	Read  bool
	Write bool

	// Addr is the effective address from the lane's ALU.
	Addr uint32

	// Data is the unformatted store value for writes.
	Data uint32

	// Width and Unsigned select sub-word placement and extraction.
	Width    insts.MemWidth
	Unsigned bool
}

// active reports whether the request needs the port at all.
func (r MemRequest) active() bool {
	return r.Read || r.Write
}

// MemGrant is the arbiter's answer for one lane.
type MemGrant struct {
	// Granted is false when the lane was denied the port. Issue rules
	// keep two accesses from reaching execute together, so a denial
	// should never happen in a well-formed pipeline.
	Granted bool

	// Read and Write echo the granted access kind.
	Read  bool
	Write bool

	// Addr echoes the effective address of the granted access.
	Addr uint32

	// Data is the extracted load value for reads.
	Data uint32
}

// PendingWrite is a store held until the commit edge so that loads in
// the same cycle observe pre-cycle memory state.
type PendingWrite struct {
	Valid bool
	Addr  uint32
	Data  uint32
	Mask  uint8
}

// MemoryArbiter serializes both execute lanes onto the single data
// port. The older lane has unconditional priority; the younger lane is
// granted only when the older lane makes no access. Reads complete
// combinationally against pre-cycle memory, writes are returned as a
// PendingWrite for the pipeline to apply at the commit edge.
type MemoryArbiter struct {
	memory *emu.Memory
}

// NewMemoryArbiter creates an arbiter over the given data memory.
func NewMemoryArbiter(memory *emu.Memory) *MemoryArbiter {
	return &MemoryArbiter{memory: memory}
}

// Access resolves both lanes' requests for one cycle.
func (a *MemoryArbiter) Access(req0, req1 MemRequest) (g0, g1 MemGrant, pending PendingWrite) {
	if req0.active() {
		g0, pending = a.serve(req0)
		return g0, MemGrant{}, pending
	}
	if req1.active() {
		g1, pending = a.serve(req1)
		return MemGrant{}, g1, pending
	}
	return MemGrant{}, MemGrant{}, PendingWrite{}
}

// serve performs one granted access.
func (a *MemoryArbiter) serve(req MemRequest) (MemGrant, PendingWrite) {
	grant := MemGrant{
		Granted: true,
		Read:    req.Read,
		Write:   req.Write,
		Addr:    req.Addr,
	}

	if req.Read {
		word := a.memory.ReadWord(req.Addr)
		grant.Data = emu.LoadExtract(req.Width, req.Unsigned, req.Addr, word)
		return grant, PendingWrite{}
	}

	data, mask := emu.StoreFormat(req.Width, req.Addr, req.Data)
	return grant, PendingWrite{
		Valid: true,
		Addr:  req.Addr,
		Data:  data,
		Mask:  mask,
	}
}

// Commit applies a pending store at the commit edge.
func (a *MemoryArbiter) Commit(w PendingWrite) {
	if !w.Valid {
		return
	}
	a.memory.WriteMasked(w.Addr, w.Data, w.Mask)
}
