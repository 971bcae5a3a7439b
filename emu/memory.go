package emu

// pageSize is the granularity of backing allocation. Pages are allocated
// lazily on first touch so sparse address spaces stay cheap.
const pageSize = 1 << 12

// Memory models the flat little-endian memory the core talks to. It serves
// the two word-aligned instruction fetch ports and the single shared data
// port with per-byte write masking. All accesses complete in the same
// cycle; latency modeling is out of scope.
type Memory struct {
	pages map[uint32]*[pageSize]byte
}

// NewMemory creates an empty memory. Untouched locations read as zero.
func NewMemory() *Memory {
	return &Memory{
		pages: make(map[uint32]*[pageSize]byte),
	}
}

func (m *Memory) page(addr uint32, create bool) *[pageSize]byte {
	base := addr &^ (pageSize - 1)
	p := m.pages[base]
	if p == nil && create {
		p = &[pageSize]byte{}
		m.pages[base] = p
	}
	return p
}

// Read8 reads a single byte.
func (m *Memory) Read8(addr uint32) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&(pageSize-1)]
}

// Write8 writes a single byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	m.page(addr, true)[addr&(pageSize-1)] = value
}

// Read32 reads a 32-bit little-endian value at the given byte address.
func (m *Memory) Read32(addr uint32) uint32 {
	return uint32(m.Read8(addr)) |
		uint32(m.Read8(addr+1))<<8 |
		uint32(m.Read8(addr+2))<<16 |
		uint32(m.Read8(addr+3))<<24
}

// Write32 writes a 32-bit little-endian value at the given byte address.
func (m *Memory) Write32(addr uint32, value uint32) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
	m.Write8(addr+2, uint8(value>>16))
	m.Write8(addr+3, uint8(value>>24))
}

// FetchWord services an instruction fetch port: it returns the 32-bit word
// containing addr, word-aligned.
func (m *Memory) FetchWord(addr uint32) uint32 {
	return m.Read32(addr &^ 3)
}

// ReadWord services the data port read side: it returns the aligned 32-bit
// word containing addr. Sub-word extraction happens in the core.
func (m *Memory) ReadWord(addr uint32) uint32 {
	return m.Read32(addr &^ 3)
}

// WriteMasked services the data port write side: bytes of data are
// committed to the aligned word containing addr wherever the 4-bit mask is
// set (bit 0 enables the least significant byte).
func (m *Memory) WriteMasked(addr uint32, data uint32, mask uint8) {
	base := addr &^ 3
	for i := uint32(0); i < 4; i++ {
		if mask>>i&1 == 1 {
			m.Write8(base+i, uint8(data>>(8*i)))
		}
	}
}
