package events

import (
	"fmt"
	"slices"
)

// GeneralBlockSizeU32s is the keccak sponge rate in 32-bit words (1088 bits).
const GeneralBlockSizeU32s = 34

// KeccakOutputU32s is the size of a keccak sponge digest in 32-bit words.
const KeccakOutputU32s = 8

const (
	// ShaExtendRounds is the number of message schedule words derived per extend call
	ShaExtendRounds = 48
	// ShaCompressRounds is the number of compression rounds
	ShaCompressRounds = 64
	// AES128Rounds is the number of AES-128 rounds including the initial key addition
	AES128Rounds = 11
	// AES128BlockU32s is the AES block size in words
	AES128BlockU32s = 4
)

// PrecompileKind tags the payload of a PrecompileEvent.
type PrecompileKind uint8

const (
	KindKeccakSponge PrecompileKind = iota + 1
	KindShaExtend
	KindShaCompress
	KindAES128Encrypt
	KindCiphertextCheck
	KindBooleanCircuitGarble
)

func (k PrecompileKind) String() string {
	switch k {
	case KindKeccakSponge:
		return "KeccakSponge"
	case KindShaExtend:
		return "ShaExtend"
	case KindShaCompress:
		return "ShaCompress"
	case KindAES128Encrypt:
		return "AES128Encrypt"
	case KindCiphertextCheck:
		return "CiphertextCheck"
	case KindBooleanCircuitGarble:
		return "BooleanCircuitGarble"
	default:
		return fmt.Sprintf("PrecompileKind(%d)", uint8(k))
	}
}

// PrecompileEvent is the sum type of every precompile payload. Each code in a
// PrecompileEvents map holds payloads of a single kind.
type PrecompileEvent interface {
	// Kind returns the variant tag
	Kind() PrecompileKind

	// LocalMemoryAccesses returns the shard-local memory accesses of the call
	LocalMemoryAccesses() []MemoryLocalEvent
}

// KeccakSpongeEvent absorbs InputLenU32s words and squeezes a 256-bit digest.
type KeccakSpongeEvent struct {
	Shard          uint32
	Clk            uint32
	InputAddr      uint32
	OutputAddr     uint32
	InputLenU32s   uint32
	Input          []uint32
	Output         [KeccakOutputU32s]uint32
	InputReads     []MemoryReadRecord
	OutputWrites   [KeccakOutputU32s]MemoryWriteRecord
	LocalMemAccess []MemoryLocalEvent
}

func (e *KeccakSpongeEvent) Kind() PrecompileKind { return KindKeccakSponge }

func (e *KeccakSpongeEvent) LocalMemoryAccesses() []MemoryLocalEvent { return e.LocalMemAccess }

// NumBlocks returns the number of absorbed sponge blocks. InputLenU32s is a
// multiple of GeneralBlockSizeU32s.
func (e *KeccakSpongeEvent) NumBlocks() int {
	return int(e.InputLenU32s) / GeneralBlockSizeU32s
}

// ShaExtendEvent extends a 16-word message block to the full 64-word schedule.
type ShaExtendEvent struct {
	Shard          uint32
	Clk            uint32
	WPtr           uint32
	WIMinus15Reads []MemoryReadRecord
	WIMinus2Reads  []MemoryReadRecord
	WIMinus16Reads []MemoryReadRecord
	WIMinus7Reads  []MemoryReadRecord
	WIWrites       []MemoryWriteRecord
	LocalMemAccess []MemoryLocalEvent
}

func (e *ShaExtendEvent) Kind() PrecompileKind { return KindShaExtend }

func (e *ShaExtendEvent) LocalMemoryAccesses() []MemoryLocalEvent { return e.LocalMemAccess }

// ShaCompressEvent runs the SHA-256 compression function over one block.
type ShaCompressEvent struct {
	Shard          uint32
	Clk            uint32
	WPtr           uint32
	HPtr           uint32
	W              []uint32
	H              [8]uint32
	HReads         [8]MemoryReadRecord
	WIReads        []MemoryReadRecord
	HWrites        [8]MemoryWriteRecord
	LocalMemAccess []MemoryLocalEvent
}

func (e *ShaCompressEvent) Kind() PrecompileKind { return KindShaCompress }

func (e *ShaCompressEvent) LocalMemoryAccesses() []MemoryLocalEvent { return e.LocalMemAccess }

// AES128EncryptEvent encrypts one block in place.
type AES128EncryptEvent struct {
	Shard              uint32
	Clk                uint32
	BlockAddr          uint32
	KeyAddr            uint32
	Input              [AES128BlockU32s]uint32
	Key                [AES128BlockU32s]uint32
	Output             [AES128BlockU32s]uint32
	InputReadRecords   [AES128BlockU32s]MemoryReadRecord
	KeyReadRecords     [AES128BlockU32s]MemoryReadRecord
	OutputWriteRecords [AES128BlockU32s]MemoryWriteRecord
	LocalMemAccess     []MemoryLocalEvent
}

func (e *AES128EncryptEvent) Kind() PrecompileKind { return KindAES128Encrypt }

func (e *AES128EncryptEvent) LocalMemoryAccesses() []MemoryLocalEvent { return e.LocalMemAccess }

// CiphertextCheckEvent checks a garbled ciphertext against its gate list.
type CiphertextCheckEvent struct {
	Shard              uint32
	Clk                uint32
	InputAddr          uint32
	OutputAddr         uint32
	NumGates           uint32
	GatesInfo          []uint32
	Output             uint32
	NumGatesReadRecord MemoryReadRecord
	GatesReadRecords   []MemoryReadRecord
	OutputWriteRecord  MemoryWriteRecord
	LocalMemAccess     []MemoryLocalEvent
}

func (e *CiphertextCheckEvent) Kind() PrecompileKind { return KindCiphertextCheck }

func (e *CiphertextCheckEvent) LocalMemoryAccesses() []MemoryLocalEvent { return e.LocalMemAccess }

// BooleanCircuitGarbleEvent garbles a boolean circuit under a global delta.
type BooleanCircuitGarbleEvent struct {
	Shard              uint32
	Clk                uint32
	InputAddr          uint32
	OutputAddr         uint32
	NumGates           uint32
	Delta              [4]uint32
	GatesInfo          []uint32
	Output             uint32
	NumGatesReadRecord MemoryReadRecord
	DeltaReadRecords   [4]MemoryReadRecord
	GatesReadRecords   []MemoryReadRecord
	OutputWriteRecord  MemoryWriteRecord
	LocalMemAccess     []MemoryLocalEvent
}

func (e *BooleanCircuitGarbleEvent) Kind() PrecompileKind { return KindBooleanCircuitGarble }

func (e *BooleanCircuitGarbleEvent) LocalMemoryAccesses() []MemoryLocalEvent { return e.LocalMemAccess }

// PrecompileRecord pairs a precompile payload with the syscall that invoked it.
type PrecompileRecord struct {
	Syscall SyscallEvent
	Event   PrecompileEvent
}

// PrecompileEvents holds precompile calls grouped by syscall code. Each
// sequence is in execution order.
type PrecompileEvents map[SyscallCode][]PrecompileRecord

// NewPrecompileEvents returns an empty set.
func NewPrecompileEvents() PrecompileEvents {
	return make(PrecompileEvents)
}

// Add appends a call for code.
func (p PrecompileEvents) Add(code SyscallCode, syscall SyscallEvent, event PrecompileEvent) {
	p[code] = append(p[code], PrecompileRecord{Syscall: syscall, Event: event})
}

// Insert replaces the sequence held for code.
func (p PrecompileEvents) Insert(code SyscallCode, records []PrecompileRecord) {
	p[code] = records
}

// Get returns the sequence held for code.
func (p PrecompileEvents) Get(code SyscallCode) ([]PrecompileRecord, bool) {
	records, ok := p[code]
	return records, ok
}

// Append moves every call of other after the calls already held, code by code.
// other is left empty.
func (p PrecompileEvents) Append(other PrecompileEvents) {
	for _, code := range other.Codes() {
		p[code] = append(p[code], other[code]...)
		delete(other, code)
	}
}

// Codes returns the codes present, ascending.
func (p PrecompileEvents) Codes() []SyscallCode {
	codes := make([]SyscallCode, 0, len(p))
	for code := range p {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the number of calls across all codes.
func (p PrecompileEvents) Len() int {
	n := 0
	for _, records := range p {
		n += len(records)
	}
	return n
}

// LocalMemoryEvents returns the local memory accesses of every call, code by
// code in ascending order.
func (p PrecompileEvents) LocalMemoryEvents() []MemoryLocalEvent {
	var out []MemoryLocalEvent
	for _, code := range p.Codes() {
		for _, record := range p[code] {
			out = append(out, record.Event.LocalMemoryAccesses()...)
		}
	}
	return out
}
