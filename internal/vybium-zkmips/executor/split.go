package executor

import (
	"cmp"
	"slices"

	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

// Split partitions a deferred record into shards of bounded proving cost.
//
// Precompile calls are cut per syscall code. When last is false a trailing
// partial chunk is kept in r so that a later call, after more calls have been
// appended, can complete it. When last is true the partial chunk becomes a
// shard of its own and the global memory events are chunked as well.
//
// opts must satisfy utils.SplitOpts.Validate.
func (r *ExecutionRecord) Split(last bool, opts utils.SplitOpts) []*ExecutionRecord {
	var shards []*ExecutionRecord

	pending := r.PrecompileEvents
	r.PrecompileEvents = events.NewPrecompileEvents()

	for _, code := range pending.Codes() {
		chunks, remainder := splitPrecompile(code, pending[code], opts, last)
		for _, chunk := range chunks {
			shard := NewExecutionRecord(r.Program)
			shard.PrecompileEvents.Insert(code, chunk)
			shards = append(shards, shard)
		}
		if len(remainder) > 0 {
			r.PrecompileEvents.Insert(code, remainder)
		}
	}

	if last {
		shards = append(shards, r.chunkGlobalMemory(opts.Memory)...)
	}

	return shards
}

// SplitThreshold returns the threshold applied to the calls of code.
func SplitThreshold(code events.SyscallCode, opts utils.SplitOpts) int {
	switch code {
	case events.KECCAK_SPONGE:
		return opts.Keccak
	case events.SHA_EXTEND:
		return opts.ShaExtend
	case events.SHA_COMPRESS:
		return opts.ShaCompress
	default:
		return opts.Deferred
	}
}

// splitPrecompile cuts the calls of one code into completed chunks and an
// unconsumed remainder. With last set the remainder is always empty.
// Every returned slice owns its backing array.
func splitPrecompile(
	code events.SyscallCode,
	records []events.PrecompileRecord,
	opts utils.SplitOpts,
	last bool,
) (chunks [][]events.PrecompileRecord, remainder []events.PrecompileRecord) {
	threshold := max(SplitThreshold(code, opts), 1)

	if code == events.KECCAK_SPONGE {
		chunks, remainder = packByWeight(records, threshold)
	} else {
		n := len(records) / threshold * threshold
		for start := 0; start < n; start += threshold {
			chunks = append(chunks, slices.Clone(records[start:start+threshold]))
		}
		remainder = slices.Clone(records[n:])
	}

	if last && len(remainder) > 0 {
		chunks = append(chunks, remainder)
		remainder = nil
	}
	return chunks, remainder
}

// packByWeight greedily packs keccak calls by absorbed block count. A chunk is
// closed when the next call would push it over threshold, unless the chunk is
// still empty: a single call heavier than threshold gets a chunk of its own and
// is never divided.
func packByWeight(records []events.PrecompileRecord, threshold int) (chunks [][]events.PrecompileRecord, current []events.PrecompileRecord) {
	currentLen := 0
	for _, record := range records {
		if sponge, ok := record.Event.(*events.KeccakSpongeEvent); ok {
			weight := sponge.NumBlocks()
			if currentLen+weight > threshold && len(current) > 0 {
				chunks = append(chunks, current)
				current = nil
				currentLen = 0
			}
			currentLen += weight
		}
		current = append(current, record)
	}
	return chunks, current
}

// KeccakWeight returns the number of absorbed blocks across keccak calls.
func KeccakWeight(records []events.PrecompileRecord) int {
	weight := 0
	for _, record := range records {
		if sponge, ok := record.Event.(*events.KeccakSpongeEvent); ok {
			weight += sponge.NumBlocks()
		}
	}
	return weight
}

// chunkGlobalMemory sorts the global memory events by address and pairs
// fixed-size chunks of the initialize and finalize lists into shards. The
// address bits of the last event of each chunk become the "previous" bits of
// the next chunk, starting from zero. The events are moved out of r.
func (r *ExecutionRecord) chunkGlobalMemory(chunkSize int) []*ExecutionRecord {
	chunkSize = max(chunkSize, 1)

	byAddr := func(a, b events.MemoryInitializeFinalizeEvent) int { return cmp.Compare(a.Addr, b.Addr) }
	slices.SortStableFunc(r.GlobalMemoryInitializeEvents, byAddr)
	slices.SortStableFunc(r.GlobalMemoryFinalizeEvents, byAddr)

	initChunks := chunkSlice(r.GlobalMemoryInitializeEvents, chunkSize)
	finalizeChunks := chunkSlice(r.GlobalMemoryFinalizeEvents, chunkSize)
	r.GlobalMemoryInitializeEvents = nil
	r.GlobalMemoryFinalizeEvents = nil

	var initAddrBits, finalizeAddrBits [AddrBits]uint32
	shards := make([]*ExecutionRecord, 0, max(len(initChunks), len(finalizeChunks)))

	for i := 0; i < max(len(initChunks), len(finalizeChunks)); i++ {
		var initChunk, finalizeChunk []events.MemoryInitializeFinalizeEvent
		if i < len(initChunks) {
			initChunk = initChunks[i]
		}
		if i < len(finalizeChunks) {
			finalizeChunk = finalizeChunks[i]
		}

		shard := NewExecutionRecord(r.Program)

		shard.GlobalMemoryInitializeEvents = initChunk
		shard.PublicValues.PreviousInitAddrBits = initAddrBits
		if len(initChunk) > 0 {
			initAddrBits = AddressBits(initChunk[len(initChunk)-1].Addr)
		}
		shard.PublicValues.LastInitAddrBits = initAddrBits

		shard.GlobalMemoryFinalizeEvents = finalizeChunk
		shard.PublicValues.PreviousFinalizeAddrBits = finalizeAddrBits
		if len(finalizeChunk) > 0 {
			finalizeAddrBits = AddressBits(finalizeChunk[len(finalizeChunk)-1].Addr)
		}
		shard.PublicValues.LastFinalizeAddrBits = finalizeAddrBits

		shards = append(shards, shard)
	}
	return shards
}

// chunkSlice splits s into consecutive copies of at most size elements.
func chunkSlice[T any](s []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		out = append(out, slices.Clone(s[start:end]))
	}
	return out
}
