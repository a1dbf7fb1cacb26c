package events

import "fmt"

// SyscallCode identifies a syscall.
//
// The code packs three fields, least significant byte first:
//   - byte 0: the syscall id placed in the syscall register by the guest
//   - byte 1: 1 if the syscall is proven by a dedicated precompile chip
//   - byte 2: the number of extra cycles the syscall consumes
type SyscallCode uint32

const (
	HALT                   SyscallCode = 0x00_00_00_00
	WRITE                  SyscallCode = 0x00_00_00_02
	ENTER_UNCONSTRAINED    SyscallCode = 0x00_00_00_03
	EXIT_UNCONSTRAINED     SyscallCode = 0x00_00_00_04
	COMMIT                 SyscallCode = 0x00_00_00_10
	COMMIT_DEFERRED_PROOFS SyscallCode = 0x00_00_00_1A
	VERIFY                 SyscallCode = 0x00_00_00_1B
	HINT_LEN               SyscallCode = 0x00_00_00_F0
	HINT_READ              SyscallCode = 0x00_00_00_F1
	SHA_EXTEND             SyscallCode = 0x00_30_01_05
	SHA_COMPRESS           SyscallCode = 0x00_01_01_06
	KECCAK_SPONGE          SyscallCode = 0x00_01_01_09
	AES128_ENCRYPT         SyscallCode = 0x00_01_01_1C
	CIPHERTEXT_CHECK       SyscallCode = 0x00_01_01_1D
	BOOLEAN_CIRCUIT_GARBLE SyscallCode = 0x00_01_01_1E
)

var syscallNames = map[SyscallCode]string{
	HALT:                   "HALT",
	WRITE:                  "WRITE",
	ENTER_UNCONSTRAINED:    "ENTER_UNCONSTRAINED",
	EXIT_UNCONSTRAINED:     "EXIT_UNCONSTRAINED",
	COMMIT:                 "COMMIT",
	COMMIT_DEFERRED_PROOFS: "COMMIT_DEFERRED_PROOFS",
	VERIFY:                 "VERIFY",
	HINT_LEN:               "HINT_LEN",
	HINT_READ:              "HINT_READ",
	SHA_EXTEND:             "SHA_EXTEND",
	SHA_COMPRESS:           "SHA_COMPRESS",
	KECCAK_SPONGE:          "KECCAK_SPONGE",
	AES128_ENCRYPT:         "AES128_ENCRYPT",
	CIPHERTEXT_CHECK:       "CIPHERTEXT_CHECK",
	BOOLEAN_CIRCUIT_GARBLE: "BOOLEAN_CIRCUIT_GARBLE",
}

// SyscallID returns the id the guest places in the syscall register.
func (c SyscallCode) SyscallID() uint32 {
	return uint32(c) & 0xFF
}

// ShouldSend reports whether the syscall is proven by a dedicated chip.
func (c SyscallCode) ShouldSend() bool {
	return (uint32(c)>>8)&0xFF == 1
}

// NumExtraCycles returns the extra cycles the syscall consumes.
func (c SyscallCode) NumExtraCycles() uint32 {
	return (uint32(c) >> 16) & 0xFF
}

func (c SyscallCode) String() string {
	if name, ok := syscallNames[c]; ok {
		return name
	}
	return fmt.Sprintf("SyscallCode(0x%08x)", uint32(c))
}

// SyscallCodeFromID returns the code registered for a syscall id.
func SyscallCodeFromID(id uint32) (SyscallCode, bool) {
	for code := range syscallNames {
		if code.SyscallID() == id {
			return code, true
		}
	}
	return 0, false
}

// SyscallEvent is emitted for every executed syscall instruction.
type SyscallEvent struct {
	Shard       uint32
	Clk         uint32
	PC          uint32
	NextPC      uint32
	SyscallCode SyscallCode
	SyscallID   uint32
	Arg1        uint32
	Arg2        uint32
	Nonce       uint32
}

// GlobalLookupKind distinguishes the global interactions sent across shards.
type GlobalLookupKind uint8

const (
	// GlobalLookupMemory carries memory initialize/finalize state
	GlobalLookupMemory GlobalLookupKind = iota
	// GlobalLookupSyscall carries syscall invocations to precompile shards
	GlobalLookupSyscall
)

// GlobalLookupEvent is a message on the cross-shard lookup bus.
type GlobalLookupEvent struct {
	Message   [7]uint32
	IsReceive bool
	Kind      GlobalLookupKind
}
