package executor

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
)

// codecVersion is bumped whenever the envelope layout changes.
const codecVersion = 1

// ErrProgramMismatch is returned when a record is decoded against a program
// other than the one it was produced by.
var ErrProgramMismatch = errors.New("record was produced by a different program")

// encMode sorts map keys so equal records encode to equal bytes.
var encMode = mustEncMode(cbor.CoreDetEncOptions())

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

type byteLookupEntry struct {
	Event events.ByteLookupEvent
	Count uint64
}

type precompileEntry struct {
	Code    events.SyscallCode
	Syscall events.SyscallEvent
	Kind    events.PrecompileKind
	Payload cbor.RawMessage
}

// recordEnvelope is the wire form of an ExecutionRecord. The program travels
// by digest only and is re-attached on decode.
type recordEnvelope struct {
	Version       uint8
	ProgramDigest []uint64
	Record        *ExecutionRecord
	ByteLookups   []byteLookupEntry
	Precompiles   []precompileEntry
}

// EncodeRecord writes rec to w as CBOR.
func EncodeRecord(w io.Writer, rec *ExecutionRecord) error {
	if rec.Program == nil {
		return fmt.Errorf("record has no program")
	}

	env := recordEnvelope{
		Version:       codecVersion,
		ProgramDigest: rec.Program.Digest(),
		Record:        rec,
		ByteLookups:   make([]byteLookupEntry, 0, len(rec.ByteLookups)),
	}

	for event, count := range rec.ByteLookups {
		env.ByteLookups = append(env.ByteLookups, byteLookupEntry{Event: event, Count: count})
	}
	slices.SortFunc(env.ByteLookups, func(a, b byteLookupEntry) int {
		return compareByteLookup(a.Event, b.Event)
	})

	for _, code := range rec.PrecompileEvents.Codes() {
		for _, record := range rec.PrecompileEvents[code] {
			payload, err := encMode.Marshal(record.Event)
			if err != nil {
				return fmt.Errorf("failed to encode %s event: %w", code, err)
			}
			env.Precompiles = append(env.Precompiles, precompileEntry{
				Code:    code,
				Syscall: record.Syscall,
				Kind:    record.Event.Kind(),
				Payload: payload,
			})
		}
	}

	if err := encMode.NewEncoder(w).Encode(&env); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return nil
}

// DecodeRecord reads a record written by EncodeRecord and binds it to program.
func DecodeRecord(r io.Reader, program *Program) (*ExecutionRecord, error) {
	if program == nil {
		return nil, fmt.Errorf("program cannot be nil")
	}

	var env recordEnvelope
	if err := cbor.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if env.Version != codecVersion {
		return nil, fmt.Errorf("unsupported record version %d", env.Version)
	}
	if !slices.Equal(env.ProgramDigest, program.Digest()) {
		return nil, ErrProgramMismatch
	}

	rec := env.Record
	if rec == nil {
		rec = &ExecutionRecord{}
	}
	rec.Program = program

	rec.ByteLookups = make(events.ByteLookups, len(env.ByteLookups))
	for _, entry := range env.ByteLookups {
		rec.ByteLookups[entry.Event] += entry.Count
	}

	rec.PrecompileEvents = events.NewPrecompileEvents()
	for _, entry := range env.Precompiles {
		event, err := decodePrecompile(entry.Kind, entry.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", entry.Code, err)
		}
		rec.PrecompileEvents.Add(entry.Code, entry.Syscall, event)
	}

	return rec, nil
}

func decodePrecompile(kind events.PrecompileKind, payload []byte) (events.PrecompileEvent, error) {
	var event events.PrecompileEvent
	switch kind {
	case events.KindKeccakSponge:
		event = new(events.KeccakSpongeEvent)
	case events.KindShaExtend:
		event = new(events.ShaExtendEvent)
	case events.KindShaCompress:
		event = new(events.ShaCompressEvent)
	case events.KindAES128Encrypt:
		event = new(events.AES128EncryptEvent)
	case events.KindCiphertextCheck:
		event = new(events.CiphertextCheckEvent)
	case events.KindBooleanCircuitGarble:
		event = new(events.BooleanCircuitGarbleEvent)
	default:
		return nil, fmt.Errorf("unknown precompile kind %d", kind)
	}
	if err := cbor.Unmarshal(payload, event); err != nil {
		return nil, err
	}
	return event, nil
}

func compareByteLookup(a, b events.ByteLookupEvent) int {
	return cmp.Or(
		cmp.Compare(a.Opcode, b.Opcode),
		cmp.Compare(a.A1, b.A1),
		cmp.Compare(a.A2, b.A2),
		cmp.Compare(a.B, b.B),
		cmp.Compare(a.C, b.C),
	)
}
