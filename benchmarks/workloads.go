// Package benchmarks provides workload infrastructure for characterizing
// the dual-issue pipeline.
package benchmarks

import "github.com/sarchlab/r2sim/emu"

// GetWorkloads returns the standard workload set. Each workload targets
// one issue or hazard characteristic of the pipeline.
func GetWorkloads() []Workload {
	return []Workload{
		arithmeticParallel(),
		dependencyChain(),
		memoryStride(),
		branchLoop(),
		functionCalls(),
		mixedOperations(),
	}
}

// GetCoreWorkloads returns a minimal set of 3 workloads for quick
// validation: parallel ALU, a real loop, and memory traffic.
func GetCoreWorkloads() []Workload {
	return []Workload{
		arithmeticParallel(),
		branchLoop(),
		memoryStride(),
	}
}

// 1. Arithmetic Parallel - independent ALU pairs sized for dual issue
func arithmeticParallel() Workload {
	return Workload{
		Name:        "arithmetic_parallel",
		Description: "Independent ADD pairs - measures dual-issue throughput",
		Program: []uint32{
			EncodeADDI(1, 0, 1),   // x1 = 1
			EncodeADDI(2, 0, 2),   // x2 = 2
			EncodeADDI(3, 0, 3),   // x3 = 3
			EncodeADDI(4, 0, 4),   // x4 = 4
			EncodeADDI(5, 1, 10),  // x5 = 11
			EncodeADDI(6, 2, 10),  // x6 = 12
			EncodeADDI(7, 3, 10),  // x7 = 13
			EncodeADDI(28, 4, 10), // x28 = 14
			EncodeADD(1, 5, 6),    // x1 = 23
			EncodeADD(2, 7, 28),   // x2 = 27
			EncodeADD(10, 1, 2),   // a0 = 50
			EncodeADDI(17, 0, 93), // a7 = exit
			EncodeECALL(),
		},
		ExpectedExit: 50,
	}
}

// 2. Dependency Chain - serial RAW chain, no pair can dual-issue
func dependencyChain() Workload {
	return Workload{
		Name:         "dependency_chain",
		Description:  "16 dependent ADDs (x1 = x1 + 1) - measures serialized issue",
		Program:      buildChain(16),
		ExpectedExit: 16, // x1 = 0 + 16*1 = 16
	}
}

func buildChain(n int) []uint32 {
	words := make([]uint32, 0, n+3)
	for i := 0; i < n; i++ {
		words = append(words, EncodeADDI(1, 1, 1))
	}
	words = append(words,
		EncodeADDI(10, 1, 0),  // a0 = x1
		EncodeADDI(17, 0, 93), // a7 = exit
		EncodeECALL(),
	)
	return words
}

// 3. Memory Stride - store/load traffic through the single memory port
func memoryStride() Workload {
	return Workload{
		Name:        "memory_stride",
		Description: "Store/load pairs to a small buffer - measures port contention",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(1, 0x200) // x1 = buffer address
		},
		Program: []uint32{
			EncodeADDI(2, 0, 7),   // x2 = 7
			EncodeSW(2, 1, 0),     // [x1] = 7
			EncodeADDI(3, 0, 9),   // x3 = 9
			EncodeSW(3, 1, 4),     // [x1+4] = 9
			EncodeLW(4, 1, 0),     // x4 = 7
			EncodeLW(5, 1, 4),     // x5 = 9
			EncodeADD(10, 4, 5),   // a0 = 16
			EncodeADDI(17, 0, 93), // a7 = exit
			EncodeECALL(),
		},
		ExpectedExit: 16,
	}
}

// 4. Branch Loop - a real counted loop with a backward branch
func branchLoop() Workload {
	return Workload{
		Name:        "branch_loop",
		Description: "5-iteration loop with a backward BNE - measures redirect cost",
		// for i := 0; i < 5; i++ { sum += i }
		// sum = 0 + 1 + 2 + 3 + 4 = 10
		Program: []uint32{
			EncodeADDI(5, 0, 0),   // x5 = sum = 0
			EncodeADDI(6, 0, 0),   // x6 = i = 0
			EncodeADDI(7, 0, 5),   // x7 = limit = 5
			EncodeADD(5, 5, 6),    // loop: sum += i
			EncodeADDI(6, 6, 1),   // i++
			EncodeBNE(6, 7, -8),   // branch back to loop
			EncodeADDI(10, 5, 0),  // a0 = sum
			EncodeADDI(17, 0, 93), // a7 = exit
			EncodeECALL(),
		},
		ExpectedExit: 10,
	}
}

// 5. Function Calls - JAL/JALR pairs through a tiny leaf function
func functionCalls() Workload {
	return Workload{
		Name:        "function_calls",
		Description: "3 calls to a leaf function - measures call/return redirects",
		// The halting pair executes whatever word follows the ECALL, so
		// the leaf function sits before the exit sequence and the ECALL
		// stays the last word of the image.
		Program: []uint32{
			EncodeADDI(5, 0, 0),   // x5 = 0
			EncodeJAL(1, 16),      // call add_five (at 20)
			EncodeJAL(1, 12),      // call add_five
			EncodeJAL(1, 8),       // call add_five
			EncodeJAL(0, 12),      // jump to exit (at 28)

			// add_five function (at offset 20)
			EncodeADDI(5, 5, 5),   // x5 += 5
			EncodeJALR(0, 1, 0),   // return

			// exit sequence (at offset 28)
			EncodeADDI(10, 5, 0),  // a0 = 15
			EncodeADDI(17, 0, 93), // a7 = exit
			EncodeECALL(),
		},
		ExpectedExit: 15, // 3 calls * 5 = 15
	}
}

// 6. Mixed Operations - upper immediate, memory, ALU, and a branch
func mixedOperations() Workload {
	return Workload{
		Name:        "mixed_operations",
		Description: "Mix of LUI, store/load, SUB, and a not-taken branch",
		Program: []uint32{
			EncodeLUI(1, 1),       // x1 = 0x1000 (buffer)
			EncodeADDI(2, 0, 25),  // x2 = 25
			EncodeSW(2, 1, 0),     // [x1] = 25
			EncodeLW(3, 1, 0),     // x3 = 25
			EncodeADD(4, 3, 3),    // x4 = 50
			EncodeADDI(28, 0, 8),  // x28 = 8
			EncodeSUB(4, 4, 28),   // x4 = 42
			EncodeBEQ(4, 2, 8),    // 42 != 25, falls through
			EncodeADDI(10, 4, 0),  // a0 = 42
			EncodeADDI(17, 0, 93), // a7 = exit
			EncodeECALL(),
		},
		ExpectedExit: 42,
	}
}

// Instruction encoding helpers (RV32I base set)

// EncodeADDI encodes ADDI: rd = rs1 + imm12
func EncodeADDI(rd, rs1 uint8, imm int32) uint32 {
	var inst uint32 = 0
	inst |= uint32(imm&0xFFF) << 20 // imm[11:0]
	inst |= uint32(rs1&0x1F) << 15
	inst |= 0b000 << 12 // funct3 = ADDI
	inst |= uint32(rd&0x1F) << 7
	inst |= 0b0010011 // OP-IMM
	return inst
}

// EncodeADD encodes ADD: rd = rs1 + rs2
func EncodeADD(rd, rs1, rs2 uint8) uint32 {
	var inst uint32 = 0
	inst |= 0b0000000 << 25 // funct7 = ADD
	inst |= uint32(rs2&0x1F) << 20
	inst |= uint32(rs1&0x1F) << 15
	inst |= 0b000 << 12 // funct3
	inst |= uint32(rd&0x1F) << 7
	inst |= 0b0110011 // OP
	return inst
}

// EncodeSUB encodes SUB: rd = rs1 - rs2
func EncodeSUB(rd, rs1, rs2 uint8) uint32 {
	var inst uint32 = 0
	inst |= 0b0100000 << 25 // funct7 = SUB
	inst |= uint32(rs2&0x1F) << 20
	inst |= uint32(rs1&0x1F) << 15
	inst |= 0b000 << 12 // funct3
	inst |= uint32(rd&0x1F) << 7
	inst |= 0b0110011 // OP
	return inst
}

// EncodeLW encodes LW: rd = mem[rs1 + imm12]
func EncodeLW(rd, rs1 uint8, imm int32) uint32 {
	var inst uint32 = 0
	inst |= uint32(imm&0xFFF) << 20 // imm[11:0]
	inst |= uint32(rs1&0x1F) << 15
	inst |= 0b010 << 12 // funct3 = word
	inst |= uint32(rd&0x1F) << 7
	inst |= 0b0000011 // LOAD
	return inst
}

// EncodeSW encodes SW: mem[rs1 + imm12] = rs2
func EncodeSW(rs2, rs1 uint8, imm int32) uint32 {
	var inst uint32 = 0
	inst |= uint32((imm>>5)&0x7F) << 25 // imm[11:5]
	inst |= uint32(rs2&0x1F) << 20
	inst |= uint32(rs1&0x1F) << 15
	inst |= 0b010 << 12 // funct3 = word
	inst |= uint32(imm&0x1F) << 7 // imm[4:0]
	inst |= 0b0100011 // STORE
	return inst
}

// EncodeBEQ encodes BEQ: branch to pc+offset when rs1 == rs2
func EncodeBEQ(rs1, rs2 uint8, offset int32) uint32 {
	return encodeBranch(rs1, rs2, offset, 0b000)
}

// EncodeBNE encodes BNE: branch to pc+offset when rs1 != rs2
func EncodeBNE(rs1, rs2 uint8, offset int32) uint32 {
	return encodeBranch(rs1, rs2, offset, 0b001)
}

func encodeBranch(rs1, rs2 uint8, offset int32, funct3 uint32) uint32 {
	var inst uint32 = 0
	inst |= uint32((offset>>12)&0x1) << 31 // imm[12]
	inst |= uint32((offset>>5)&0x3F) << 25 // imm[10:5]
	inst |= uint32(rs2&0x1F) << 20
	inst |= uint32(rs1&0x1F) << 15
	inst |= funct3 << 12
	inst |= uint32((offset>>1)&0xF) << 8   // imm[4:1]
	inst |= uint32((offset>>11)&0x1) << 7  // imm[11]
	inst |= 0b1100011                      // BRANCH
	return inst
}

// EncodeJAL encodes JAL: rd = pc+4, jump to pc+offset
func EncodeJAL(rd uint8, offset int32) uint32 {
	var inst uint32 = 0
	inst |= uint32((offset>>20)&0x1) << 31   // imm[20]
	inst |= uint32((offset>>1)&0x3FF) << 21  // imm[10:1]
	inst |= uint32((offset>>11)&0x1) << 20   // imm[11]
	inst |= uint32((offset>>12)&0xFF) << 12  // imm[19:12]
	inst |= uint32(rd&0x1F) << 7
	inst |= 0b1101111 // JAL
	return inst
}

// EncodeJALR encodes JALR: rd = pc+4, jump to rs1+imm12
func EncodeJALR(rd, rs1 uint8, imm int32) uint32 {
	var inst uint32 = 0
	inst |= uint32(imm&0xFFF) << 20 // imm[11:0]
	inst |= uint32(rs1&0x1F) << 15
	inst |= 0b000 << 12 // funct3
	inst |= uint32(rd&0x1F) << 7
	inst |= 0b1100111 // JALR
	return inst
}

// EncodeLUI encodes LUI: rd = imm20 << 12
func EncodeLUI(rd uint8, imm20 uint32) uint32 {
	var inst uint32 = 0
	inst |= (imm20 & 0xFFFFF) << 12 // imm[31:12]
	inst |= uint32(rd&0x1F) << 7
	inst |= 0b0110111 // LUI
	return inst
}

// EncodeECALL encodes ECALL.
func EncodeECALL() uint32 {
	return 0x00000073
}
