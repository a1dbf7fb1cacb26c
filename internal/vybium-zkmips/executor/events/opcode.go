// Package events defines the records emitted by the MIPS instruction-execution layer.
//
// Events are plain data: the execution layer appends them to an execution record in
// execution order and every chip reads the classes it is interested in. Nothing in this
// package validates event content.
package events

import "fmt"

// Opcode identifies a MIPS instruction class as seen by the proving layer.
type Opcode uint8

const (
	ADD Opcode = iota
	SUB
	MULT
	MULTU
	MUL
	DIV
	DIVU
	SLL
	SRL
	SRA
	ROR
	SLT
	SLTU
	AND
	OR
	XOR
	NOR
	CLZ
	CLO
	BEQ
	BGEZ
	BGTZ
	BLEZ
	BLTZ
	BNE
	Jump
	Jumpi
	JumpDirect
	LB
	LBU
	LH
	LHU
	LW
	LWL
	LWR
	LL
	SB
	SH
	SW
	SWL
	SWR
	SC
	SYSCALL
	TEQ
	SEXT
	WSBH
	EXT
	INS
	MADDU
	MSUBU
	MEQ
	MNE
	NOP
	UNIMPL
)

var opcodeNames = [...]string{
	ADD: "ADD", SUB: "SUB", MULT: "MULT", MULTU: "MULTU", MUL: "MUL", DIV: "DIV", DIVU: "DIVU",
	SLL: "SLL", SRL: "SRL", SRA: "SRA", ROR: "ROR", SLT: "SLT", SLTU: "SLTU",
	AND: "AND", OR: "OR", XOR: "XOR", NOR: "NOR", CLZ: "CLZ", CLO: "CLO",
	BEQ: "BEQ", BGEZ: "BGEZ", BGTZ: "BGTZ", BLEZ: "BLEZ", BLTZ: "BLTZ", BNE: "BNE",
	Jump: "Jump", Jumpi: "Jumpi", JumpDirect: "JumpDirect",
	LB: "LB", LBU: "LBU", LH: "LH", LHU: "LHU", LW: "LW", LWL: "LWL", LWR: "LWR", LL: "LL",
	SB: "SB", SH: "SH", SW: "SW", SWL: "SWL", SWR: "SWR", SC: "SC",
	SYSCALL: "SYSCALL", TEQ: "TEQ", SEXT: "SEXT", WSBH: "WSBH", EXT: "EXT", INS: "INS",
	MADDU: "MADDU", MSUBU: "MSUBU", MEQ: "MEQ", MNE: "MNE", NOP: "NOP", UNIMPL: "UNIMPL",
}

// String returns the mnemonic of the opcode
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// IsMemoryLoad reports whether the opcode reads memory.
func (op Opcode) IsMemoryLoad() bool {
	switch op {
	case LB, LBU, LH, LHU, LW, LWL, LWR, LL:
		return true
	}
	return false
}

// IsMemoryStore reports whether the opcode writes memory.
func (op Opcode) IsMemoryStore() bool {
	switch op {
	case SB, SH, SW, SWL, SWR, SC:
		return true
	}
	return false
}

// ByteOpcode identifies the operation proven by a byte lookup.
type ByteOpcode uint8

const (
	// ByteAND is bitwise AND of two bytes
	ByteAND ByteOpcode = iota
	// ByteOR is bitwise OR of two bytes
	ByteOR
	// ByteXOR is bitwise XOR of two bytes
	ByteXOR
	// ByteNOR is bitwise NOR of two bytes
	ByteNOR
	// ByteSLL is a left shift of one byte
	ByteSLL
	// U8Range checks that two values are bytes
	U8Range
	// ShrCarry is a right shift of a byte returning the shifted out carry
	ShrCarry
	// LTU is an unsigned less-than between two bytes
	LTU
	// MSB extracts the most significant bit of a byte
	MSB
	// U16Range checks that a value fits in 16 bits
	U16Range
)

// NumByteOpcodes is the number of distinct byte opcodes.
const NumByteOpcodes = int(U16Range) + 1

var byteOpcodeNames = [...]string{
	ByteAND: "AND", ByteOR: "OR", ByteXOR: "XOR", ByteNOR: "NOR", ByteSLL: "SLL",
	U8Range: "U8Range", ShrCarry: "ShrCarry", LTU: "LTU", MSB: "MSB", U16Range: "U16Range",
}

func (op ByteOpcode) String() string {
	if int(op) < len(byteOpcodeNames) {
		return byteOpcodeNames[op]
	}
	return fmt.Sprintf("ByteOpcode(%d)", uint8(op))
}

// ByteOpcode maps an instruction opcode onto the byte operation that proves it
// byte-wise. The second result is false for opcodes without a byte-wise form.
func (op Opcode) ByteOpcode() (ByteOpcode, bool) {
	switch op {
	case AND:
		return ByteAND, true
	case OR:
		return ByteOR, true
	case XOR:
		return ByteXOR, true
	case NOR:
		return ByteNOR, true
	case SLL:
		return ByteSLL, true
	}
	return 0, false
}
