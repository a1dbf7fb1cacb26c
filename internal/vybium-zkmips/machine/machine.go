package machine

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
	"golang.org/x/sync/errgroup"
)

// DefaultChips returns every chip of the machine in AirID order.
func DefaultChips() []Chip {
	return []Chip{
		NewCPUChip(),
		NewAddSubChip(),
		NewMulChip(),
		NewBitwiseChip(),
		NewShiftLeftChip(),
		NewShiftRightChip(),
		NewDivRemChip(),
		NewLtChip(),
		NewCloClzChip(),
		NewMemoryInstrsChip(),
		NewBranchChip(),
		NewJumpChip(),
		NewMiscChip(),
		NewSyscallCoreChip(),
		NewSyscallPrecompileChip(),
		NewMemoryGlobalChip(MemoryInitialize),
		NewMemoryGlobalChip(MemoryFinalize),
		NewMemoryLocalChip(),
		NewGlobalChip(),
		NewByteChip(),
		NewKeccakSpongeChip(),
		NewShaExtendChip(),
		NewShaCompressChip(),
		NewAES128EncryptChip(),
		NewCiphertextCheckChip(),
		NewBooleanCircuitGarbleChip(),
	}
}

// Machine generates the traces of every chip for a shard.
type Machine struct {
	chips   []Chip
	workers int
	log     *logrus.Entry
}

// New creates a machine over chips. workers bounds the parallelism of each
// chip and of the shard batch; zero means one per CPU.
func New(chips []Chip, workers int) *Machine {
	for _, chip := range chips {
		if w, ok := chip.(interface{ SetNumWorkers(int) }); ok {
			w.SetNumWorkers(workers)
		}
	}
	return &Machine{
		chips:   chips,
		workers: workers,
		log:     logrus.WithField("component", "machine"),
	}
}

// NewDefault creates a machine with DefaultChips.
func NewDefault(workers int) *Machine {
	return New(DefaultChips(), workers)
}

// Chips returns the chips of the machine.
func (m *Machine) Chips() []Chip {
	return m.chips
}

// Chip returns the chip with the given identity.
func (m *Machine) Chip(id shape.AirID) (Chip, bool) {
	for _, chip := range m.chips {
		if chip.ID() == id {
			return chip, true
		}
	}
	return nil, false
}

// GenerateDependencies runs the dependency pass of every chip over each
// record, in parallel across records. The global chip runs after the chips
// that emit global messages; the byte chip emits nothing. It must run once per
// record, before GenerateTraces.
func (m *Machine) GenerateDependencies(records []*executor.ExecutionRecord) {
	parallelFor(len(records), m.workers, func(start, end int) {
		for _, record := range records[start:end] {
			m.generateDependencies(record)
		}
	})
}

func (m *Machine) generateDependencies(record *executor.ExecutionRecord) {
	var last []Chip
	for _, chip := range m.chips {
		switch chip.ID() {
		case shape.Byte:
			continue
		case shape.Global:
			last = append(last, chip)
			continue
		}
		m.dependenciesOf(chip, record)
	}
	for _, chip := range last {
		m.dependenciesOf(chip, record)
	}
}

func (m *Machine) dependenciesOf(chip Chip, record *executor.ExecutionRecord) {
	output := executor.NewExecutionRecord(record.Program)
	chip.GenerateDependencies(record, output)
	record.Append(output)
}

// GenerateTraces builds the trace of every chip included in shard, in chip
// order. The byte table is built from the lookups accumulated by
// GenerateDependencies. A shape inconsistency aborts the whole shard.
func (m *Machine) GenerateTraces(shard *executor.ExecutionRecord) ([]ChipTrace, error) {
	if shard.Shape != nil && shard.Shape.Len() == 0 {
		m.log.WithField("shard", shard.PublicValues.Shard).Warn("shape includes no chips")
	}

	var included []Chip
	for _, chip := range m.chips {
		if chip.Included(shard) {
			included = append(included, chip)
		}
	}

	traces := make([]ChipTrace, len(included))
	var g errgroup.Group
	g.SetLimit(numWorkers(m.workers))

	for i, chip := range included {
		g.Go(func() error {
			scratch := executor.NewExecutionRecord(shard.Program)
			trace, err := chip.GenerateTrace(shard, scratch)
			if err != nil {
				return fmt.Errorf("failed to generate %s trace: %w", chip.Name(), err)
			}
			traces[i] = ChipTrace{ID: chip.ID(), Name: chip.Name(), Trace: trace}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range traces {
		m.log.WithFields(logrus.Fields{
			"shard": shard.PublicValues.Shard,
			"chip":  t.Name,
			"rows":  t.Trace.Height(),
		}).Debug("generated trace")
	}
	return traces, nil
}

// LogStats logs the event counts of shard at debug level.
func (m *Machine) LogStats(shard *executor.ExecutionRecord) {
	if !m.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	fields := logrus.Fields{"shard": shard.PublicValues.Shard}
	for k, v := range shard.Stats() {
		fields[k] = v
	}
	m.log.WithFields(fields).Debug("shard stats")
}
