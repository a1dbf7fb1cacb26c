package executor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

func fullRecord(program *Program) *ExecutionRecord {
	r := NewExecutionRecord(program)

	read := events.NewReadAccess(events.MemoryReadRecord{Value: 2, Shard: 1, Timestamp: 4})
	r.AddCpuEvent(events.CpuEvent{Shard: 1, Clk: 4, PC: 0x1000, NextPC: 0x1004, Opcode: events.ADD, A: 3, B: 1, C: 2, BRecord: &read})
	r.AddAluEvent(events.NewAluEvent(0x1000, events.ADD, 3, 1, 2))
	r.AddCompAluEvent(events.CompAluEvent{PC: 0x1008, Opcode: events.MULT, A: 6, B: 2, C: 3})
	r.AddMemInstrEvent(events.MemInstrEvent{Opcode: events.LW, MemAccess: read})
	r.AddMiscEvent(events.MiscEvent{Opcode: events.SEXT, A: 0xffffff80, B: 0x80})
	r.AddSyscallEvent(events.SyscallEvent{Clk: 8, SyscallCode: events.KECCAK_SPONGE})
	r.AddGlobalLookupEvent(events.GlobalLookupEvent{Message: [7]uint32{1, 2, 3}, Kind: events.GlobalLookupSyscall})
	r.AddLocalMemoryAccess(events.MemoryLocalEvent{Addr: 0x2000, FinalMem: events.MemoryRecord{Shard: 1, Timestamp: 9, Value: 5}})
	r.AddGlobalMemoryInitialize(events.NewMemoryInitialize(0x2000, 0xdeadbeef, true))

	r.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.U8Range, B: 1, C: 2})
	r.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.U8Range, B: 1, C: 2})
	r.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.U16Range, A1: 999})

	addKeccak(r, 8, 2)
	addAES(r, 9)
	r.AddPrecompileEvent(events.SHA_COMPRESS, events.SyscallEvent{Clk: 10}, &events.ShaCompressEvent{
		Clk: 10, W: []uint32{1, 2, 3}, H: [8]uint32{8, 7, 6, 5, 4, 3, 2, 1},
	})
	r.AddPrecompileEvent(events.BOOLEAN_CIRCUIT_GARBLE, events.SyscallEvent{Clk: 11}, &events.BooleanCircuitGarbleEvent{
		Clk: 11, NumGates: 2, GatesInfo: []uint32{0, 1, 2, 3}, Delta: [4]uint32{1, 1, 1, 1},
	})

	r.PublicValues.Shard = 3
	r.PublicValues.NextPC = 0x100c
	r.PublicValues.CommitOutput([]byte{1, 2, 3})
	r.Shape = shape.FromMap(map[shape.AirID]int{shape.CPU: 4, shape.Byte: 16})
	r.Counts = map[shape.AirID]uint64{shape.CPU: 1}
	return r
}

func TestCodecRoundTrip(t *testing.T) {
	program := testProgram()
	original := fullRecord(program)

	var buf bytes.Buffer
	require.NoError(t, EncodeRecord(&buf, original))

	decoded, err := DecodeRecord(&buf, program)
	require.NoError(t, err)

	assert.Same(t, program, decoded.Program)
	assert.Equal(t, original.CpuEvents, decoded.CpuEvents)
	assert.Equal(t, original.AddEvents, decoded.AddEvents)
	assert.Equal(t, original.MulEvents, decoded.MulEvents)
	assert.Equal(t, original.MemoryInstrEvents, decoded.MemoryInstrEvents)
	assert.Equal(t, original.MiscEvents, decoded.MiscEvents)
	assert.Equal(t, original.SyscallEvents, decoded.SyscallEvents)
	assert.Equal(t, original.GlobalLookupEvents, decoded.GlobalLookupEvents)
	assert.Equal(t, original.CpuLocalMemoryAccess, decoded.CpuLocalMemoryAccess)
	assert.Equal(t, original.GlobalMemoryInitializeEvents, decoded.GlobalMemoryInitializeEvents)
	assert.Equal(t, original.ByteLookups, decoded.ByteLookups)
	assert.Equal(t, original.PrecompileEvents, decoded.PrecompileEvents)
	assert.Equal(t, original.PublicValues, decoded.PublicValues)
	assert.Equal(t, original.Shape.Inner, decoded.Shape.Inner)
	assert.Equal(t, original.Counts, decoded.Counts)
	assert.Equal(t, original.Stats(), decoded.Stats())
}

func TestCodecIsDeterministic(t *testing.T) {
	program := testProgram()

	var a, b bytes.Buffer
	require.NoError(t, EncodeRecord(&a, fullRecord(program)))
	require.NoError(t, EncodeRecord(&b, fullRecord(program)))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestCodecProgramMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRecord(&buf, fullRecord(testProgram())))

	other := testProgram()
	other.Image[0x2000] = 0

	_, err := DecodeRecord(&buf, other)
	assert.ErrorIs(t, err, ErrProgramMismatch)
}

func TestCodecErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, EncodeRecord(&buf, &ExecutionRecord{}))

	_, err := DecodeRecord(bytes.NewReader([]byte{0x01}), nil)
	assert.Error(t, err)

	_, err = DecodeRecord(bytes.NewReader([]byte{0xff, 0x00}), testProgram())
	assert.Error(t, err)
}
