package machine

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// Syscall columns
const (
	sysShard = iota
	sysClk
	sysPC
	sysNextPC
	sysID
	sysArg1
	sysArg2
	sysShouldSend
	sysNonce
	sysIsReal
	numSyscallCols
)

// NewSyscallCoreChip proves the syscalls of an execution shard and sends the
// precompile calls to the shards that prove them.
func NewSyscallCoreChip() Chip {
	return newSyscallChip(shape.SyscallCore, false,
		func(r *executor.ExecutionRecord) []events.SyscallEvent { return r.SyscallEvents })
}

// NewSyscallPrecompileChip receives, in a deferred shard, the calls proven by
// that shard's precompile chips.
func NewSyscallPrecompileChip() Chip {
	return newSyscallChip(shape.SyscallPrecompile, true, precompileSyscalls)
}

func precompileSyscalls(r *executor.ExecutionRecord) []events.SyscallEvent {
	var out []events.SyscallEvent
	for _, code := range r.PrecompileEvents.Codes() {
		for _, record := range r.PrecompileEvents[code] {
			out = append(out, record.Syscall)
		}
	}
	return out
}

func newSyscallChip(id shape.AirID, receive bool, sel func(*executor.ExecutionRecord) []events.SyscallEvent) Chip {
	return &eventChip[events.SyscallEvent]{
		id:     id,
		width:  numSyscallCols,
		events: sel,
		fill: perEvent(func(ev *events.SyscallEvent, row []field.Element, blu events.ByteRecord) {
			row[sysShard] = fe(ev.Shard)
			row[sysClk] = fe(ev.Clk)
			row[sysPC] = fe(ev.PC)
			row[sysNextPC] = fe(ev.NextPC)
			row[sysID] = fe(ev.SyscallID)
			row[sysArg1] = fe(ev.Arg1)
			row[sysArg2] = fe(ev.Arg2)
			row[sysShouldSend] = feBool(ev.SyscallCode.ShouldSend())
			row[sysNonce] = fe(ev.Nonce)
			row[sysIsReal] = field.One

			events.AddU16RangeCheck(blu, uint16(ev.Clk))
			events.AddU8RangeCheck(blu, uint8(ev.Clk>>16), uint8(ev.Shard))
		}),
		global: func(ev *events.SyscallEvent) []events.GlobalLookupEvent {
			if !ev.SyscallCode.ShouldSend() {
				return nil
			}
			return []events.GlobalLookupEvent{{
				Message:   [7]uint32{ev.Shard, ev.Clk, ev.SyscallID, ev.Arg1, ev.Arg2},
				IsReceive: receive,
				Kind:      events.GlobalLookupSyscall,
			}}
		},
	}
}
