package machine

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// Memory instruction columns
const (
	memShard = iota
	memClk
	memPC
	memNextPC
	memOpcode
	memA
	memB
	memC
	memAddr
	memValue
	memPrevValue
	memIsLoad
	memIsStore
	memIsReal
	numMemInstrCols
)

// NewMemoryInstrsChip proves loads and stores.
func NewMemoryInstrsChip() Chip {
	return &eventChip[events.MemInstrEvent]{
		id:        shape.MemoryInstrs,
		width:     numMemInstrCols,
		localOnly: true,
		events:    func(r *executor.ExecutionRecord) []events.MemInstrEvent { return r.MemoryInstrEvents },
		fill:      perEvent(fillMemInstrRow),
	}
}

func fillMemInstrRow(ev *events.MemInstrEvent, row []field.Element, blu events.ByteRecord) {
	addr := ev.B + ev.C
	row[memShard] = fe(ev.Shard)
	row[memClk] = fe(ev.Clk)
	row[memPC] = fe(ev.PC)
	row[memNextPC] = fe(ev.NextPC)
	row[memOpcode] = fe(uint32(ev.Opcode))
	row[memA] = fe(ev.A)
	row[memB] = fe(ev.B)
	row[memC] = fe(ev.C)
	row[memAddr] = fe(addr)
	row[memValue] = fe(ev.MemAccess.Current().Value)
	row[memPrevValue] = fe(ev.MemAccess.Previous().Value)
	row[memIsLoad] = feBool(ev.Opcode.IsMemoryLoad())
	row[memIsStore] = feBool(ev.Opcode.IsMemoryStore())
	row[memIsReal] = field.One

	// The aligned address is range checked as two 16-bit limbs.
	aligned := addr &^ 3
	events.AddU16RangeCheck(blu, uint16(aligned))
	events.AddU16RangeCheck(blu, uint16(aligned>>16))

	addAccessChecks(blu, &ev.MemAccess)
	addAccessChecks(blu, &ev.OpAAccess)
}

// Branch and jump columns
const (
	ctlPC = iota
	ctlNextPC
	ctlNextNextPC
	ctlOpcode
	ctlA
	ctlB
	ctlC
	ctlTaken
	ctlIsReal
	numCtlCols
)

// NewBranchChip proves conditional branches.
func NewBranchChip() Chip {
	return &eventChip[events.BranchEvent]{
		id:     shape.Branch,
		width:  numCtlCols,
		events: func(r *executor.ExecutionRecord) []events.BranchEvent { return r.BranchEvents },
		fill: perEvent(func(ev *events.BranchEvent, row []field.Element, blu events.ByteRecord) {
			row[ctlPC] = fe(ev.PC)
			row[ctlNextPC] = fe(ev.NextPC)
			row[ctlNextNextPC] = fe(ev.NextNextPC)
			row[ctlOpcode] = fe(uint32(ev.Opcode))
			row[ctlA] = fe(ev.A)
			row[ctlB] = fe(ev.B)
			row[ctlC] = fe(ev.C)
			// The delay slot always runs; a taken branch lands elsewhere after it.
			row[ctlTaken] = feBool(ev.NextNextPC != ev.NextPC+4)
			row[ctlIsReal] = field.One

			a := events.WordBytes(ev.A)
			blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.MSB, A1: uint16(a[3] >> 7), B: a[3]})
			target := events.WordBytes(ev.NextNextPC)
			events.AddU8RangeChecks(blu, target[:])
		}),
	}
}

// NewJumpChip proves unconditional jumps.
func NewJumpChip() Chip {
	return &eventChip[events.JumpEvent]{
		id:     shape.Jump,
		width:  numCtlCols,
		events: func(r *executor.ExecutionRecord) []events.JumpEvent { return r.JumpEvents },
		fill: perEvent(func(ev *events.JumpEvent, row []field.Element, blu events.ByteRecord) {
			row[ctlPC] = fe(ev.PC)
			row[ctlNextPC] = fe(ev.NextPC)
			row[ctlNextNextPC] = fe(ev.NextNextPC)
			row[ctlOpcode] = fe(uint32(ev.Opcode))
			row[ctlA] = fe(ev.A)
			row[ctlB] = fe(ev.B)
			row[ctlC] = fe(ev.C)
			row[ctlTaken] = field.One
			row[ctlIsReal] = field.One

			link := events.WordBytes(ev.A)
			events.AddU8RangeChecks(blu, link[:])
		}),
	}
}

// Misc columns
const (
	miscPC = iota
	miscNextPC
	miscOpcode
	miscA
	miscB
	miscC
	miscPrevA
	miscHi
	miscPrevHi
	miscIsReal
	numMiscCols
)

// NewMiscChip proves the instructions without a dedicated chip.
func NewMiscChip() Chip {
	return &eventChip[events.MiscEvent]{
		id:     shape.Misc,
		width:  numMiscCols,
		events: func(r *executor.ExecutionRecord) []events.MiscEvent { return r.MiscEvents },
		fill: perEvent(func(ev *events.MiscEvent, row []field.Element, blu events.ByteRecord) {
			row[miscPC] = fe(ev.PC)
			row[miscNextPC] = fe(ev.NextPC)
			row[miscOpcode] = fe(uint32(ev.Opcode))
			row[miscA] = fe(ev.A)
			row[miscB] = fe(ev.B)
			row[miscC] = fe(ev.C)
			row[miscPrevA] = fe(ev.PrevA)
			row[miscHi] = fe(ev.Hi)
			row[miscPrevHi] = fe(ev.PrevHi)
			row[miscIsReal] = field.One

			a := events.WordBytes(ev.A)
			events.AddU8RangeChecks(blu, a[:])
			if ev.Opcode == events.SEXT {
				b := events.WordBytes(ev.B)
				blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.MSB, A1: uint16(b[0] >> 7), B: b[0]})
			}
		}),
	}
}
