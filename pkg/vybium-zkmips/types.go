package vybiumzkmips

import (
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/machine"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

// Program is the immutable program image shared by every record of a run
type Program = executor.Program

// ExecutionRecord is the event ledger of a single shard
type ExecutionRecord = executor.ExecutionRecord

// PublicValues are the values a shard commits to
type PublicValues = executor.PublicValues

// CoreOpts configures sharding for a whole run
type CoreOpts = utils.CoreOpts

// SplitOpts holds the per-precompile deferred split thresholds
type SplitOpts = utils.SplitOpts

// Shape fixes the log2 height of every chip in a shard
type Shape = shape.Shape

// AirID identifies a chip
type AirID = shape.AirID

// Chip produces the trace of one table
type Chip = machine.Chip

// ChipTrace is the trace of one chip for one shard
type ChipTrace = machine.ChipTrace

// Trace is a row-major matrix of field elements
type Trace = machine.Trace

// NewProgram creates a program from its instruction words
func NewProgram(instructions []uint32, pcStart, pcBase uint32) *Program {
	return executor.NewProgram(instructions, pcStart, pcBase)
}

// NewExecutionRecord creates an empty record for program
func NewExecutionRecord(program *Program) *ExecutionRecord {
	return executor.NewExecutionRecord(program)
}

// DefaultCoreOpts returns the default sharding configuration
func DefaultCoreOpts() *CoreOpts {
	return utils.DefaultCoreOpts()
}

// NewSplitOpts derives every split threshold from the deferred threshold
func NewSplitOpts(deferredThreshold int) SplitOpts {
	return utils.NewSplitOpts(deferredThreshold)
}

// LoadCoreOpts resolves options from the defaults, the YAML file at path
// (optional) and the SHARD_SIZE, SHARD_BATCH_SIZE and DEFERRED_SPLIT_THRESHOLD
// environment variables.
func LoadCoreOpts(path string) (*CoreOpts, error) {
	opts, err := utils.LoadCoreOpts(path)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "failed to load options", err)
	}
	return opts, nil
}

// LoadShape reads a YAML shape file
func LoadShape(path string) (*Shape, error) {
	s, err := shape.LoadShape(path)
	if err != nil {
		return nil, newError(ErrInvalidShape, "failed to load shape", err)
	}
	return s, nil
}

// ShardTraces holds the traces generated for one shard
type ShardTraces struct {
	// Shard number, starting at 1
	Shard uint32

	// Execution shard the shard was produced from or after
	ExecutionShard uint32

	// Public values committed by the shard
	PublicValues PublicValues

	// Traces of the included chips, in chip order
	Traces []ChipTrace
}

// Trace returns the trace of chip id, if it was generated
func (s *ShardTraces) Trace(id AirID) (*Trace, bool) {
	for _, t := range s.Traces {
		if t.ID == id {
			return t.Trace, true
		}
	}
	return nil, false
}

// Shape returns the shape the traces were generated with. Pinning it on a
// shard with the same events reproduces the same trace heights.
func (s *ShardTraces) Shape() *Shape {
	out := shape.New()
	for _, t := range s.Traces {
		_, log2 := utils.PaddedHeight(t.Trace.Height())
		out.Insert(t.ID, log2)
	}
	return out
}

// Cells returns the total number of trace cells in the shard
func (s *ShardTraces) Cells() int {
	total := 0
	for _, t := range s.Traces {
		total += len(t.Trace.Values)
	}
	return total
}
