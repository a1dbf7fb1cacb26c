package machine

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// CPU columns
const (
	cpuShard = iota
	cpuClk
	cpuPC
	cpuNextPC
	cpuNextNextPC
	cpuOpcode
	cpuA
	cpuB
	cpuC
	cpuHi
	cpuPrevA
	cpuExitCode
	cpuIsReal
	numCpuCols
)

// cpuMinRows keeps the CPU trace large enough for its transition constraints.
const cpuMinRows = 16

// NewCPUChip returns the chip proving one row per executed cycle.
func NewCPUChip() Chip {
	return &eventChip[events.CpuEvent]{
		id:      shape.CPU,
		width:   numCpuCols,
		minRows: cpuMinRows,
		events:  func(r *executor.ExecutionRecord) []events.CpuEvent { return r.CpuEvents },
		fill:    perEvent(fillCpuRow),
	}
}

func fillCpuRow(ev *events.CpuEvent, row []field.Element, blu events.ByteRecord) {
	row[cpuShard] = fe(ev.Shard)
	row[cpuClk] = fe(ev.Clk)
	row[cpuPC] = fe(ev.PC)
	row[cpuNextPC] = fe(ev.NextPC)
	row[cpuNextNextPC] = fe(ev.NextNextPC)
	row[cpuOpcode] = fe(uint32(ev.Opcode))
	row[cpuA] = fe(ev.A)
	row[cpuB] = fe(ev.B)
	row[cpuC] = fe(ev.C)
	row[cpuHi] = fe(ev.Hi)
	if ev.ARecord != nil {
		row[cpuPrevA] = fe(ev.ARecord.Previous().Value)
	}
	row[cpuExitCode] = fe(ev.ExitCode)
	row[cpuIsReal] = field.One

	// The clock is decomposed as a 16-bit limb and a byte.
	events.AddU16RangeCheck(blu, uint16(ev.Clk))
	events.AddU8RangeCheck(blu, uint8(ev.Clk>>16), 0)

	for _, access := range []*events.MemoryRecordEnum{ev.ARecord, ev.BRecord, ev.CRecord, ev.HiRecord} {
		addAccessChecks(blu, access)
	}
}

// addAccessChecks range checks the value of a register or memory access and
// the timestamp gap to the previous access in the same shard.
func addAccessChecks(blu events.ByteRecord, access *events.MemoryRecordEnum) {
	if access == nil || access.Kind == events.MemoryAccessNone {
		return
	}
	current, previous := access.Current(), access.Previous()

	value := events.WordBytes(current.Value)
	events.AddU8RangeChecks(blu, value[:])

	if current.Shard == previous.Shard && current.Timestamp > previous.Timestamp {
		diff := current.Timestamp - previous.Timestamp - 1
		events.AddU16RangeCheck(blu, uint16(diff))
		events.AddU8RangeCheck(blu, uint8(diff>>16), 0)
	}
}
