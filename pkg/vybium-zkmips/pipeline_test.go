package vybiumzkmips

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/machine"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

func testProgram() *Program {
	return NewProgram([]uint32{0x20080001, 0x20090002, 0x01095020, 0x0000000c}, 0x1000, 0x1000)
}

func testOpts() *CoreOpts {
	return DefaultCoreOpts().
		WithShardBatchSize(2).
		WithWorkers(2).
		WithSplitOpts(SplitOpts{Deferred: 4, Keccak: 4, ShaExtend: 4, ShaCompress: 4, Memory: 2})
}

// testRecord builds an execution record of cycles ADD cycles followed by
// keccak single-block calls, numbered from clk.
func testRecord(program *Program, clk uint32, cycles, keccakCalls int) *ExecutionRecord {
	r := NewExecutionRecord(program)
	for i := 0; i < cycles; i++ {
		pc := program.PCStart + uint32(4*i)
		c := clk + uint32(4*i)
		b := events.NewReadAccess(events.MemoryReadRecord{Value: uint32(i), Shard: 1, Timestamp: c + 1, PrevShard: 1, PrevTimestamp: c})
		r.AddCpuEvent(events.CpuEvent{Shard: 1, Clk: c, PC: pc, NextPC: pc + 4, NextNextPC: pc + 8, Opcode: events.ADD, A: uint32(2 * i), B: uint32(i), C: uint32(i), BRecord: &b})
		r.AddAluEvent(events.NewAluEvent(pc, events.ADD, uint32(2*i), uint32(i), uint32(i)))
	}
	for i := 0; i < keccakCalls; i++ {
		c := clk + 1000 + uint32(i)
		input := make([]uint32, events.GeneralBlockSizeU32s)
		for j := range input {
			input[j] = c + uint32(j)
		}
		syscall := events.SyscallEvent{Shard: 1, Clk: c, SyscallCode: events.KECCAK_SPONGE, SyscallID: events.KECCAK_SPONGE.SyscallID()}
		r.AddSyscallEvent(syscall)
		r.AddPrecompileEvent(events.KECCAK_SPONGE, syscall, &events.KeccakSpongeEvent{
			Shard: 1, Clk: c, InputLenU32s: uint32(len(input)), Input: input,
		})
	}
	return r
}

func addMemory(r *ExecutionRecord, addrs ...uint32) {
	for _, addr := range addrs {
		r.AddGlobalMemoryInitialize(events.NewMemoryInitialize(addr, 0, true))
		r.AddGlobalMemoryFinalize(events.NewMemoryFinalize(addr, events.MemoryRecord{Shard: 1, Timestamp: 7, Value: addr}))
	}
}

func countKeccak(shards []*ExecutionRecord) int {
	n := 0
	for _, s := range shards {
		n += len(s.PrecompileEventsFor(events.KECCAK_SPONGE))
	}
	return n
}

func TestNewPipelineValidation(t *testing.T) {
	tests := []struct {
		name     string
		program  *Program
		opts     *CoreOpts
		wantCode ErrorCode
	}{
		{"nil program", nil, nil, ErrInvalidInput},
		{"bad shard size", testProgram(), DefaultCoreOpts().WithShardSize(3), ErrInvalidConfig},
		{"bad batch size", testProgram(), DefaultCoreOpts().WithShardBatchSize(0), ErrInvalidConfig},
		{"bad split", testProgram(), DefaultCoreOpts().WithSplitOpts(SplitOpts{}), ErrInvalidConfig},
		{"defaults", testProgram(), nil, ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(tt.program, tt.opts)
			if tt.wantCode == ErrUnknown {
				require.NoError(t, err)
				assert.Equal(t, utils.DefaultShardSize, p.Options().ShardSize)
				assert.Len(t, p.Chips(), len(shape.AllAirIDs()))
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, CodeOf(err))
		})
	}
}

func TestPipelineDoesNotShareOptions(t *testing.T) {
	opts := testOpts()
	p, err := NewPipeline(testProgram(), opts)
	require.NoError(t, err)

	opts.WithShardBatchSize(1000)
	assert.Equal(t, 2, p.Options().ShardBatchSize)
}

func TestPipelineRun(t *testing.T) {
	program := testProgram()
	p, err := NewPipeline(program, testOpts())
	require.NoError(t, err)

	last := testRecord(program, 200, 2, 3)
	addMemory(last, 0x2008, 0x2000, 0x2004)
	records := []*ExecutionRecord{
		testRecord(program, 0, 2, 3),
		testRecord(program, 100, 2, 3),
		last,
	}

	result, err := p.Run(records)
	require.NoError(t, err)
	require.Len(t, result, 8)
	assert.Zero(t, p.Pending())

	var execShards []uint32
	for i, s := range result {
		assert.Equal(t, uint32(i+1), s.Shard)
		assert.Equal(t, s.Shard, s.PublicValues.Shard)
		execShards = append(execShards, s.ExecutionShard)
	}
	assert.Equal(t, []uint32{1, 2, 2, 3, 3, 3, 3, 3}, execShards)

	withCPU := map[uint32]bool{1: true, 2: true, 4: true}
	for _, s := range result {
		_, ok := s.Trace(shape.CPU)
		assert.Equal(t, withCPU[s.Shard], ok, "shard %d", s.Shard)
		assert.Positive(t, s.Cells())
	}

	keccakRows := map[uint32]int{3: 4 * machine.KeccakRoundsPerBlock, 5: 4 * machine.KeccakRoundsPerBlock, 6: machine.KeccakRoundsPerBlock}
	for shard, rows := range keccakRows {
		trace, ok := result[shard-1].Trace(shape.KeccakSponge)
		require.True(t, ok, "shard %d", shard)
		assert.GreaterOrEqual(t, trace.Height(), rows)
		assert.True(t, utils.IsPowerOfTwo(trace.Height()))
	}

	for _, shard := range []uint32{7, 8} {
		_, ok := result[shard-1].Trace(shape.MemoryGlobalInit)
		assert.True(t, ok, "shard %d", shard)
		_, ok = result[shard-1].Trace(shape.MemoryGlobalFinalize)
		assert.True(t, ok, "shard %d", shard)
	}
	assert.Equal(t, executor.AddressBits(0x2004), result[7].PublicValues.PreviousInitAddrBits)
}

func TestPipelineConservesKeccakCalls(t *testing.T) {
	program := testProgram()
	p, err := NewPipeline(program, testOpts())
	require.NoError(t, err)

	var shards []*ExecutionRecord
	for i := 0; i < 5; i++ {
		pushed, err := p.Push(testRecord(program, uint32(i*100), 1, 3))
		require.NoError(t, err)
		shards = append(shards, pushed...)
	}
	assert.Equal(t, 15, countKeccak(shards)+p.Pending())

	rest, err := p.Finish()
	require.NoError(t, err)
	shards = append(shards, rest...)
	assert.Equal(t, 15, countKeccak(shards))

	for _, s := range shards {
		assert.LessOrEqual(t, len(s.PrecompileEventsFor(events.KECCAK_SPONGE)), 4)
	}

	_, err = p.Push(testRecord(program, 1000, 1, 0))
	assert.Equal(t, ErrSharding, CodeOf(err))
	_, err = p.Finish()
	assert.Equal(t, ErrSharding, CodeOf(err))
}

func TestPipelinePushRejectsForeignRecords(t *testing.T) {
	program := testProgram()
	p, err := NewPipeline(program, testOpts())
	require.NoError(t, err)

	_, err = p.Push(nil)
	assert.Equal(t, ErrInvalidInput, CodeOf(err))

	other := NewProgram([]uint32{0x0000000c}, 0x1000, 0x1000)
	_, err = p.Push(testRecord(other, 0, 1, 0))
	assert.Equal(t, ErrProgramMismatch, CodeOf(err))

	// Same program words in a different value are accepted.
	shards, err := p.Push(testRecord(testProgram(), 0, 1, 0))
	require.NoError(t, err)
	assert.Len(t, shards, 1)
}

func TestPipelineWarnsOnLargeRecords(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	program := testProgram()
	p, err := NewPipeline(program, testOpts().WithShardSize(2))
	require.NoError(t, err)

	_, err = p.Push(testRecord(program, 0, 4, 0))
	require.NoError(t, err)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "execution record larger than shard size" {
			warned = true
			assert.Equal(t, 4, entry.Data["cycles"])
		}
	}
	assert.True(t, warned)
}

func TestGenerateTracesShapeErrors(t *testing.T) {
	program := testProgram()
	p, err := NewPipeline(program, testOpts())
	require.NoError(t, err)

	shards, err := p.Push(testRecord(program, 0, 4, 0))
	require.NoError(t, err)
	shards[0].Shape = shape.FromMap(map[shape.AirID]int{shape.CPU: 1, shape.AddSub: 4})

	_, err = p.GenerateTraces(shards)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidShape, CodeOf(err))
	assert.ErrorIs(t, err, machine.ErrShapeTooSmall)
}

func TestGenerateTracesHonoursShape(t *testing.T) {
	program := testProgram()
	p, err := NewPipeline(program, testOpts())
	require.NoError(t, err)

	shards, err := p.Push(testRecord(program, 0, 4, 0))
	require.NoError(t, err)
	shards[0].Shape = shape.FromMap(map[shape.AirID]int{shape.CPU: 5, shape.AddSub: 3, shape.Byte: 16})

	result, err := p.GenerateTraces(shards)
	require.NoError(t, err)
	require.Len(t, result, 1)

	heights := map[shape.AirID]int{}
	for _, tr := range result[0].Traces {
		heights[tr.ID] = tr.Trace.Height()
	}
	assert.Equal(t, map[shape.AirID]int{shape.CPU: 32, shape.AddSub: 8, shape.Byte: 1 << 16}, heights)

	_, ok := result[0].Trace(shape.Bitwise)
	assert.False(t, ok)
}

func TestRecordCodec(t *testing.T) {
	program := testProgram()
	p, err := NewPipeline(program, testOpts())
	require.NoError(t, err)

	record := testRecord(program, 0, 3, 2)
	addMemory(record, 0x2000)

	var buf bytes.Buffer
	require.NoError(t, p.EncodeRecord(&buf, record))
	encoded := bytes.Clone(buf.Bytes())

	decoded, err := p.DecodeRecord(&buf)
	require.NoError(t, err)
	assert.Equal(t, record.CpuEvents, decoded.CpuEvents)
	assert.Equal(t, record.GlobalMemoryInitializeEvents, decoded.GlobalMemoryInitializeEvents)
	assert.Equal(t, 2, decoded.PrecompileEvents.Len())

	other := NewProgram([]uint32{0x0000000c}, 0x1000, 0x1000)
	_, err = DecodeRecord(bytes.NewReader(encoded), other)
	assert.Equal(t, ErrProgramMismatch, CodeOf(err))

	_, err = DecodeRecord(bytes.NewReader(encoded[:len(encoded)/2]), program)
	assert.Equal(t, ErrCodec, CodeOf(err))

	assert.Equal(t, ErrInvalidInput, CodeOf(EncodeRecord(&buf, nil)))
	_, err = DecodeRecord(&buf, nil)
	assert.Equal(t, ErrInvalidInput, CodeOf(err))
}

func TestShardTracesShapeReproducesHeights(t *testing.T) {
	program := testProgram()
	p, err := NewPipeline(program, testOpts())
	require.NoError(t, err)

	shards, err := p.Push(testRecord(program, 0, 20, 0))
	require.NoError(t, err)
	first, err := p.GenerateTraces(shards)
	require.NoError(t, err)
	pinned := first[0].Shape()
	assert.Equal(t, len(first[0].Traces), pinned.Len())

	q, err := NewPipeline(program, testOpts())
	require.NoError(t, err)
	again, err := q.Push(testRecord(program, 0, 20, 0))
	require.NoError(t, err)
	again[0].Shape = pinned

	second, err := q.GenerateTraces(again)
	require.NoError(t, err)
	require.Len(t, second[0].Traces, len(first[0].Traces))
	for i, tr := range second[0].Traces {
		assert.Equal(t, first[0].Traces[i].ID, tr.ID)
		assert.Equal(t, first[0].Traces[i].Trace.Digest(), tr.Trace.Digest(), tr.Name)
	}
}
