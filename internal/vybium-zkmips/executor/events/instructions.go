package events

// CpuEvent is emitted once per executed cycle.
type CpuEvent struct {
	Shard      uint32
	Clk        uint32
	PC         uint32
	NextPC     uint32
	NextNextPC uint32
	Opcode     Opcode
	A          uint32
	ARecord    *MemoryRecordEnum
	B          uint32
	BRecord    *MemoryRecordEnum
	C          uint32
	CRecord    *MemoryRecordEnum
	Hi         uint32
	HiRecord   *MemoryRecordEnum
	ExitCode   uint32
}

// AluEvent is emitted for single-output arithmetic and logic instructions.
type AluEvent struct {
	PC     uint32
	NextPC uint32
	Opcode Opcode
	A      uint32
	B      uint32
	C      uint32
}

// NewAluEvent returns an ALU event at pc falling through to pc+4.
func NewAluEvent(pc uint32, opcode Opcode, a, b, c uint32) AluEvent {
	return AluEvent{PC: pc, NextPC: pc + 4, Opcode: opcode, A: a, B: b, C: c}
}

// CompAluEvent is emitted for instructions producing a (lo, hi) pair such as
// MULT and DIV.
type CompAluEvent struct {
	PC     uint32
	NextPC uint32
	Opcode Opcode
	A      uint32
	B      uint32
	C      uint32
	Hi     uint32
}

// MemInstrEvent is emitted for loads and stores.
type MemInstrEvent struct {
	Shard     uint32
	Clk       uint32
	PC        uint32
	NextPC    uint32
	Opcode    Opcode
	A         uint32
	B         uint32
	C         uint32
	MemAccess MemoryRecordEnum
	OpAAccess MemoryRecordEnum
}

// BranchEvent is emitted for conditional branches.
type BranchEvent struct {
	PC         uint32
	NextPC     uint32
	NextNextPC uint32
	Opcode     Opcode
	A          uint32
	B          uint32
	C          uint32
}

// JumpEvent is emitted for unconditional jumps.
type JumpEvent struct {
	PC         uint32
	NextPC     uint32
	NextNextPC uint32
	Opcode     Opcode
	A          uint32
	B          uint32
	C          uint32
}

// MiscEvent covers the instructions without a dedicated chip (SEXT, WSBH, EXT,
// INS, MADDU, MSUBU, MEQ, MNE, TEQ).
type MiscEvent struct {
	PC     uint32
	NextPC uint32
	Opcode Opcode
	A      uint32
	B      uint32
	C      uint32
	PrevA  uint32
	Hi     uint32
	PrevHi uint32
}
