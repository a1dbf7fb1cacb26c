package machine

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// Global memory columns. The address is kept in full and as bits so the
// sortedness of consecutive rows can be checked.
const (
	gmAddr = iota
	gmValue
	gmShard
	gmTimestamp
	gmUsed
	gmPrevAddr
	gmIsFirst
	gmIsReal
	gmAddrBits
	numGlobalMemoryCols = gmAddrBits + executor.AddrBits
)

// MemoryChipKind selects the list consumed by a global memory chip.
type MemoryChipKind int

const (
	// MemoryInitialize consumes the first touch of each address
	MemoryInitialize MemoryChipKind = iota
	// MemoryFinalize consumes the last touch of each address
	MemoryFinalize
)

// NewMemoryGlobalChip returns the initialize or finalize chip. Rows must be
// sorted by address; the first row continues from the address bits carried in
// the shard's public values.
func NewMemoryGlobalChip(kind MemoryChipKind) Chip {
	id := shape.MemoryGlobalInit
	sel := func(r *executor.ExecutionRecord) []events.MemoryInitializeFinalizeEvent {
		return r.GlobalMemoryInitializeEvents
	}
	previous := func(pv *executor.PublicValues) [executor.AddrBits]uint32 { return pv.PreviousInitAddrBits }
	if kind == MemoryFinalize {
		id = shape.MemoryGlobalFinalize
		sel = func(r *executor.ExecutionRecord) []events.MemoryInitializeFinalizeEvent {
			return r.GlobalMemoryFinalizeEvents
		}
		previous = func(pv *executor.PublicValues) [executor.AddrBits]uint32 { return pv.PreviousFinalizeAddrBits }
	}

	return &eventChip[events.MemoryInitializeFinalizeEvent]{
		id:     id,
		width:  numGlobalMemoryCols,
		events: sel,
		fill: func(shard *executor.ExecutionRecord, evs []events.MemoryInitializeFinalizeEvent, i int, row []field.Element, blu events.ByteRecord) {
			ev := &evs[i]
			var prevAddr uint32
			if i == 0 {
				prevAddr = executor.BitsToAddress(previous(&shard.PublicValues))
			} else {
				prevAddr = evs[i-1].Addr
			}

			row[gmAddr] = fe(ev.Addr)
			row[gmValue] = fe(ev.Value)
			row[gmShard] = fe(ev.Shard)
			row[gmTimestamp] = fe(ev.Timestamp)
			row[gmUsed] = fe(ev.Used)
			row[gmPrevAddr] = fe(prevAddr)
			row[gmIsFirst] = feBool(i == 0)
			row[gmIsReal] = field.One
			for j, bit := range executor.AddressBits(ev.Addr) {
				row[gmAddrBits+j] = fe(bit)
			}

			value := events.WordBytes(ev.Value)
			events.AddU8RangeChecks(blu, value[:])
			// Strictly increasing addresses: addr - prev - 1 fits in 32 bits.
			// Address zero may open the very first chunk.
			if ev.Addr > prevAddr {
				diff := ev.Addr - prevAddr - 1
				events.AddU16RangeCheck(blu, uint16(diff))
				events.AddU16RangeCheck(blu, uint16(diff>>16))
			}
		},
		global: func(ev *events.MemoryInitializeFinalizeEvent) []events.GlobalLookupEvent {
			return []events.GlobalLookupEvent{{
				Message:   [7]uint32{ev.Shard, ev.Timestamp, ev.Addr, ev.Value & 0xFFFF, ev.Value >> 16},
				IsReceive: kind == MemoryFinalize,
				Kind:      events.GlobalLookupMemory,
			}}
		},
	}
}

// Local memory columns
const (
	lmAddr = iota
	lmInitialShard
	lmInitialClk
	lmInitialValue
	lmFinalShard
	lmFinalClk
	lmFinalValue
	lmIsReal
	numLocalMemoryCols
)

// NewMemoryLocalChip proves the per-shard summary of every touched address:
// it receives the state before the shard and sends the state after it.
func NewMemoryLocalChip() Chip {
	return &eventChip[events.MemoryLocalEvent]{
		id:     shape.MemoryLocal,
		width:  numLocalMemoryCols,
		events: func(r *executor.ExecutionRecord) []events.MemoryLocalEvent { return r.LocalMemoryEvents() },
		fill: perEvent(func(ev *events.MemoryLocalEvent, row []field.Element, blu events.ByteRecord) {
			row[lmAddr] = fe(ev.Addr)
			row[lmInitialShard] = fe(ev.InitialMem.Shard)
			row[lmInitialClk] = fe(ev.InitialMem.Timestamp)
			row[lmInitialValue] = fe(ev.InitialMem.Value)
			row[lmFinalShard] = fe(ev.FinalMem.Shard)
			row[lmFinalClk] = fe(ev.FinalMem.Timestamp)
			row[lmFinalValue] = fe(ev.FinalMem.Value)
			row[lmIsReal] = field.One

			value := events.WordBytes(ev.FinalMem.Value)
			events.AddU8RangeChecks(blu, value[:])
		}),
		global: func(ev *events.MemoryLocalEvent) []events.GlobalLookupEvent {
			initial, final := ev.InitialMem, ev.FinalMem
			return []events.GlobalLookupEvent{
				{
					Message:   [7]uint32{initial.Shard, initial.Timestamp, ev.Addr, initial.Value & 0xFFFF, initial.Value >> 16},
					IsReceive: true,
					Kind:      events.GlobalLookupMemory,
				},
				{
					Message:   [7]uint32{final.Shard, final.Timestamp, ev.Addr, final.Value & 0xFFFF, final.Value >> 16},
					IsReceive: false,
					Kind:      events.GlobalLookupMemory,
				},
			}
		},
	}
}

// Global columns: the seven message words, is_receive, kind, is_real.
const (
	globalMessage = 0
	globalReceive = 7
	globalKind    = 8
	globalIsReal  = 9
	numGlobalCols = 10
)

// NewGlobalChip proves the cross-shard messages emitted by the other chips of
// the shard. It consumes the record's global lookup events, so it must run
// after the dependency pass.
func NewGlobalChip() Chip {
	return &eventChip[events.GlobalLookupEvent]{
		id:     shape.Global,
		width:  numGlobalCols,
		events: func(r *executor.ExecutionRecord) []events.GlobalLookupEvent { return r.GlobalLookupEvents },
		fill: perEvent(func(ev *events.GlobalLookupEvent, row []field.Element, blu events.ByteRecord) {
			for j, word := range ev.Message {
				row[globalMessage+j] = fe(word)
			}
			row[globalReceive] = feBool(ev.IsReceive)
			row[globalKind] = fe(uint32(ev.Kind))
			row[globalIsReal] = field.One

			events.AddU16RangeCheck(blu, uint16(ev.Message[0]))
		}),
	}
}
