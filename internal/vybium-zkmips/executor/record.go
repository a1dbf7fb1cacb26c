package executor

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

// ErrChipNotInShape is returned when a shard carries a shape that has no entry
// for a chip whose trace is being generated.
var ErrChipNotInShape = errors.New("chip not found in specified shape")

// ExecutionRecord is the ledger of one shard's worth of execution.
//
// Every event sequence is in execution order. A record is owned by a single
// writer: Defer, Split and Append must not run concurrently on the same record,
// but the records they return share no mutable state and can be processed in
// parallel.
type ExecutionRecord struct {
	// The program, shared and read-only
	Program *Program `cbor:"-"`

	CpuEvents         []events.CpuEvent
	AddEvents         []events.AluEvent
	SubEvents         []events.AluEvent
	MulEvents         []events.CompAluEvent
	BitwiseEvents     []events.AluEvent
	ShiftLeftEvents   []events.AluEvent
	ShiftRightEvents  []events.AluEvent
	DivRemEvents      []events.CompAluEvent
	LtEvents          []events.AluEvent
	CloClzEvents      []events.AluEvent
	MemoryInstrEvents []events.MemInstrEvent
	BranchEvents      []events.BranchEvent
	JumpEvents        []events.JumpEvent
	MiscEvents        []events.MiscEvent

	// Multiplicities of the byte lookups required by this shard
	ByteLookups events.ByteLookups `cbor:"-"`

	// Precompile calls keyed by syscall code
	PrecompileEvents events.PrecompileEvents `cbor:"-"`

	// First and last touch of every address across the whole program
	GlobalMemoryInitializeEvents []events.MemoryInitializeFinalizeEvent
	GlobalMemoryFinalizeEvents   []events.MemoryInitializeFinalizeEvent

	CpuLocalMemoryAccess []events.MemoryLocalEvent
	SyscallEvents        []events.SyscallEvent
	GlobalLookupEvents   []events.GlobalLookupEvent

	PublicValues PublicValues

	// Optional fixed shape; when set chips must use its heights exactly
	Shape *shape.Shape

	// Optional row counts per chip, fixing the padded height of a chip when no
	// shape is set
	Counts map[shape.AirID]uint64
}

// NewExecutionRecord creates an empty record bound to program.
func NewExecutionRecord(program *Program) *ExecutionRecord {
	return &ExecutionRecord{
		Program:          program,
		ByteLookups:      events.NewByteLookups(),
		PrecompileEvents: events.NewPrecompileEvents(),
	}
}

// AddCpuEvent appends a cycle.
func (r *ExecutionRecord) AddCpuEvent(event events.CpuEvent) {
	r.CpuEvents = append(r.CpuEvents, event)
}

// AddAluEvent appends an ALU event to the sequence of the chip proving its
// opcode. It panics for opcodes without an ALU chip.
func (r *ExecutionRecord) AddAluEvent(event events.AluEvent) {
	switch event.Opcode {
	case events.ADD:
		r.AddEvents = append(r.AddEvents, event)
	case events.SUB:
		r.SubEvents = append(r.SubEvents, event)
	case events.AND, events.OR, events.XOR, events.NOR:
		r.BitwiseEvents = append(r.BitwiseEvents, event)
	case events.SLL:
		r.ShiftLeftEvents = append(r.ShiftLeftEvents, event)
	case events.SRL, events.SRA, events.ROR:
		r.ShiftRightEvents = append(r.ShiftRightEvents, event)
	case events.SLT, events.SLTU:
		r.LtEvents = append(r.LtEvents, event)
	case events.CLO, events.CLZ:
		r.CloClzEvents = append(r.CloClzEvents, event)
	default:
		panic(fmt.Sprintf("opcode %s has no ALU chip", event.Opcode))
	}
}

// AddCompAluEvent appends a multiply or divide event. It panics for other opcodes.
func (r *ExecutionRecord) AddCompAluEvent(event events.CompAluEvent) {
	switch event.Opcode {
	case events.MUL, events.MULT, events.MULTU, events.MADDU, events.MSUBU:
		r.MulEvents = append(r.MulEvents, event)
	case events.DIV, events.DIVU:
		r.DivRemEvents = append(r.DivRemEvents, event)
	default:
		panic(fmt.Sprintf("opcode %s has no multiply/divide chip", event.Opcode))
	}
}

// AddMemInstrEvent appends a load or store.
func (r *ExecutionRecord) AddMemInstrEvent(event events.MemInstrEvent) {
	r.MemoryInstrEvents = append(r.MemoryInstrEvents, event)
}

// AddBranchEvent appends a branch.
func (r *ExecutionRecord) AddBranchEvent(event events.BranchEvent) {
	r.BranchEvents = append(r.BranchEvents, event)
}

// AddJumpEvent appends a jump.
func (r *ExecutionRecord) AddJumpEvent(event events.JumpEvent) {
	r.JumpEvents = append(r.JumpEvents, event)
}

// AddMiscEvent appends a miscellaneous instruction.
func (r *ExecutionRecord) AddMiscEvent(event events.MiscEvent) {
	r.MiscEvents = append(r.MiscEvents, event)
}

// AddSyscallEvent appends a syscall.
func (r *ExecutionRecord) AddSyscallEvent(event events.SyscallEvent) {
	r.SyscallEvents = append(r.SyscallEvents, event)
}

// AddGlobalLookupEvent appends a message on the global lookup bus.
func (r *ExecutionRecord) AddGlobalLookupEvent(event events.GlobalLookupEvent) {
	r.GlobalLookupEvents = append(r.GlobalLookupEvents, event)
}

// AddLocalMemoryAccess appends a shard-local memory access summary.
func (r *ExecutionRecord) AddLocalMemoryAccess(event events.MemoryLocalEvent) {
	r.CpuLocalMemoryAccess = append(r.CpuLocalMemoryAccess, event)
}

// AddGlobalMemoryInitialize appends the first touch of an address.
func (r *ExecutionRecord) AddGlobalMemoryInitialize(event events.MemoryInitializeFinalizeEvent) {
	r.GlobalMemoryInitializeEvents = append(r.GlobalMemoryInitializeEvents, event)
}

// AddGlobalMemoryFinalize appends the last touch of an address.
func (r *ExecutionRecord) AddGlobalMemoryFinalize(event events.MemoryInitializeFinalizeEvent) {
	r.GlobalMemoryFinalizeEvents = append(r.GlobalMemoryFinalizeEvents, event)
}

// AddPrecompileEvent appends a precompile call.
func (r *ExecutionRecord) AddPrecompileEvent(code events.SyscallCode, syscall events.SyscallEvent, event events.PrecompileEvent) {
	if r.PrecompileEvents == nil {
		r.PrecompileEvents = events.NewPrecompileEvents()
	}
	r.PrecompileEvents.Add(code, syscall, event)
}

// PrecompileEventsFor returns the calls recorded for code, nil if none.
func (r *ExecutionRecord) PrecompileEventsFor(code events.SyscallCode) []events.PrecompileRecord {
	records, _ := r.PrecompileEvents.Get(code)
	return records
}

// LocalMemoryEvents returns the local memory accesses of the precompiles
// followed by those of the CPU.
func (r *ExecutionRecord) LocalMemoryEvents() []events.MemoryLocalEvent {
	out := r.PrecompileEvents.LocalMemoryEvents()
	return append(out, r.CpuLocalMemoryAccess...)
}

// ContainsCPU reports whether the record holds CPU events.
func (r *ExecutionRecord) ContainsCPU() bool {
	return len(r.CpuEvents) > 0
}

// AddByteLookupEvent implements events.ByteRecord.
func (r *ExecutionRecord) AddByteLookupEvent(event events.ByteLookupEvent) {
	if r.ByteLookups == nil {
		r.ByteLookups = events.NewByteLookups()
	}
	r.ByteLookups.AddByteLookupEvent(event)
}

// AddByteLookupEventsFromMaps implements events.ByteRecord.
func (r *ExecutionRecord) AddByteLookupEventsFromMaps(maps []events.ByteLookups) {
	if r.ByteLookups == nil {
		r.ByteLookups = events.NewByteLookups()
	}
	r.ByteLookups.AddByteLookupEventsFromMaps(maps)
}

// Defer moves the precompile calls and the global memory events into a new
// record bound to the same program. These are proven in specially sized shards
// rather than alongside the cycles that produced them.
func (r *ExecutionRecord) Defer() *ExecutionRecord {
	deferred := NewExecutionRecord(r.Program)
	if r.PrecompileEvents != nil {
		deferred.PrecompileEvents = r.PrecompileEvents
	}
	deferred.GlobalMemoryInitializeEvents = r.GlobalMemoryInitializeEvents
	deferred.GlobalMemoryFinalizeEvents = r.GlobalMemoryFinalizeEvents

	r.PrecompileEvents = events.NewPrecompileEvents()
	r.GlobalMemoryInitializeEvents = nil
	r.GlobalMemoryFinalizeEvents = nil
	return deferred
}

// Append moves every event of other after the events of r. other is left
// drained; its public values and shape are untouched.
func (r *ExecutionRecord) Append(other *ExecutionRecord) {
	r.CpuEvents = appendDrain(r.CpuEvents, &other.CpuEvents)
	r.AddEvents = appendDrain(r.AddEvents, &other.AddEvents)
	r.SubEvents = appendDrain(r.SubEvents, &other.SubEvents)
	r.MulEvents = appendDrain(r.MulEvents, &other.MulEvents)
	r.BitwiseEvents = appendDrain(r.BitwiseEvents, &other.BitwiseEvents)
	r.ShiftLeftEvents = appendDrain(r.ShiftLeftEvents, &other.ShiftLeftEvents)
	r.ShiftRightEvents = appendDrain(r.ShiftRightEvents, &other.ShiftRightEvents)
	r.DivRemEvents = appendDrain(r.DivRemEvents, &other.DivRemEvents)
	r.LtEvents = appendDrain(r.LtEvents, &other.LtEvents)
	r.CloClzEvents = appendDrain(r.CloClzEvents, &other.CloClzEvents)
	r.MemoryInstrEvents = appendDrain(r.MemoryInstrEvents, &other.MemoryInstrEvents)
	r.BranchEvents = appendDrain(r.BranchEvents, &other.BranchEvents)
	r.JumpEvents = appendDrain(r.JumpEvents, &other.JumpEvents)
	r.MiscEvents = appendDrain(r.MiscEvents, &other.MiscEvents)
	r.SyscallEvents = appendDrain(r.SyscallEvents, &other.SyscallEvents)

	if r.PrecompileEvents == nil {
		r.PrecompileEvents = events.NewPrecompileEvents()
	}
	if other.PrecompileEvents != nil {
		r.PrecompileEvents.Append(other.PrecompileEvents)
	}

	if len(r.ByteLookups) == 0 {
		r.ByteLookups = other.ByteLookups
		if r.ByteLookups == nil {
			r.ByteLookups = events.NewByteLookups()
		}
	} else {
		r.ByteLookups.AddByteLookupEventsFromMaps([]events.ByteLookups{other.ByteLookups})
	}
	other.ByteLookups = events.NewByteLookups()

	r.GlobalMemoryInitializeEvents = appendDrain(r.GlobalMemoryInitializeEvents, &other.GlobalMemoryInitializeEvents)
	r.GlobalMemoryFinalizeEvents = appendDrain(r.GlobalMemoryFinalizeEvents, &other.GlobalMemoryFinalizeEvents)
	r.CpuLocalMemoryAccess = appendDrain(r.CpuLocalMemoryAccess, &other.CpuLocalMemoryAccess)
	r.GlobalLookupEvents = appendDrain(r.GlobalLookupEvents, &other.GlobalLookupEvents)
}

// appendDrain appends *src to dst and empties *src. When dst is empty the
// backing array of src is taken over without copying.
func appendDrain[T any](dst []T, src *[]T) []T {
	if len(dst) == 0 {
		dst, *src = *src, nil
		return dst
	}
	dst = append(dst, *src...)
	*src = nil
	return dst
}

// FixedLog2Rows returns the log2 height fixed for a chip. A shape takes
// precedence over row counts; a count pads to the next power of two. fixed is
// false when neither names the chip. A shape without an entry for the chip is
// a configuration error.
func (r *ExecutionRecord) FixedLog2Rows(id shape.AirID) (log2Rows int, fixed bool, err error) {
	if r.Shape != nil {
		h, ok := r.Shape.Log2Height(id)
		if !ok {
			return 0, false, fmt.Errorf("%w: %s", ErrChipNotInShape, id)
		}
		return h, true, nil
	}
	if n, ok := r.Counts[id]; ok {
		_, log2Rows = utils.PaddedHeight(int(n))
		return log2Rows, true, nil
	}
	return 0, false, nil
}

// PublicValuesElements returns the public values as field elements.
func (r *ExecutionRecord) PublicValuesElements() []field.Element {
	return r.PublicValues.Elements()
}

// Stats returns the number of events per class, omitting empty classes.
func (r *ExecutionRecord) Stats() map[string]int {
	stats := map[string]int{
		"cpu_events":                      len(r.CpuEvents),
		"add_events":                      len(r.AddEvents),
		"mul_events":                      len(r.MulEvents),
		"sub_events":                      len(r.SubEvents),
		"bitwise_events":                  len(r.BitwiseEvents),
		"shift_left_events":               len(r.ShiftLeftEvents),
		"shift_right_events":              len(r.ShiftRightEvents),
		"divrem_events":                   len(r.DivRemEvents),
		"lt_events":                       len(r.LtEvents),
		"cloclz_events":                   len(r.CloClzEvents),
		"memory_instr_events":             len(r.MemoryInstrEvents),
		"branch_events":                   len(r.BranchEvents),
		"jump_events":                     len(r.JumpEvents),
		"misc_events":                     len(r.MiscEvents),
		"syscall_events":                  len(r.SyscallEvents),
		"global_memory_initialize_events": len(r.GlobalMemoryInitializeEvents),
		"global_memory_finalize_events":   len(r.GlobalMemoryFinalizeEvents),
		"local_memory_access_events":      len(r.CpuLocalMemoryAccess),
	}
	for code, records := range r.PrecompileEvents {
		stats[fmt.Sprintf("syscall %s", code)] = len(records)
	}
	if len(r.CpuEvents) > 0 {
		stats["byte_lookups"] = len(r.ByteLookups)
	}

	for k, v := range stats {
		if v == 0 {
			delete(stats, k)
		}
	}
	return stats
}
