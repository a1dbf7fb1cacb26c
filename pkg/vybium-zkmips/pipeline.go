package vybiumzkmips

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/machine"
)

// Pipeline shards the execution records of one program run and generates the
// chip traces of every shard.
//
// Records must be pushed in execution order. A Pipeline is not safe for
// concurrent use; trace generation parallelizes internally.
type Pipeline struct {
	program *Program
	opts    *CoreOpts
	sharder *executor.Sharder
	machine *machine.Machine
	log     *logrus.Entry
}

// NewPipeline creates a pipeline for program. A nil opts uses DefaultCoreOpts.
func NewPipeline(program *Program, opts *CoreOpts) (*Pipeline, error) {
	if program == nil {
		return nil, &VMError{Code: ErrInvalidInput, Message: "program cannot be nil"}
	}
	if opts == nil {
		opts = DefaultCoreOpts()
	}
	if err := opts.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid options", err)
	}
	opts = opts.Clone()

	sharder, err := executor.NewSharder(program, opts.Split)
	if err != nil {
		return nil, newError(ErrInvalidConfig, "failed to create sharder", err)
	}

	return &Pipeline{
		program: program,
		opts:    opts,
		sharder: sharder,
		machine: machine.NewDefault(opts.Workers),
		log:     logrus.WithField("component", "pipeline"),
	}, nil
}

// Options returns a copy of the pipeline options
func (p *Pipeline) Options() *CoreOpts {
	return p.opts.Clone()
}

// Chips returns the chips traces are generated for
func (p *Pipeline) Chips() []Chip {
	return p.machine.Chips()
}

// Pending returns the number of deferred precompile calls not yet in a shard
func (p *Pipeline) Pending() int {
	return p.sharder.Pending()
}

// Push defers the expensive events of record and returns record followed by
// every deferred shard that is now complete.
func (p *Pipeline) Push(record *ExecutionRecord) ([]*ExecutionRecord, error) {
	if record == nil {
		return nil, &VMError{Code: ErrInvalidInput, Message: "record cannot be nil"}
	}
	if !p.sameProgram(record.Program) {
		return nil, &VMError{Code: ErrProgramMismatch, Message: "record belongs to a different program"}
	}
	if n := len(record.CpuEvents); n > p.opts.ShardSize {
		p.log.WithFields(logrus.Fields{
			"cycles":     n,
			"shard_size": p.opts.ShardSize,
		}).Warn("execution record larger than shard size")
	}

	shards, err := p.sharder.Push(record)
	if err != nil {
		return nil, newError(ErrSharding, "failed to push record", err)
	}
	return shards, nil
}

// Finish returns the remaining deferred shards and the global memory shards.
// The pipeline cannot shard further records afterwards.
func (p *Pipeline) Finish() ([]*ExecutionRecord, error) {
	shards, err := p.sharder.Finish()
	if err != nil {
		return nil, newError(ErrSharding, "failed to finish sharding", err)
	}
	return shards, nil
}

// GenerateTraces generates the traces of shards in batches of ShardBatchSize.
// Each shard gets its dependency pass exactly once, so a shard must not be
// passed to GenerateTraces twice.
func (p *Pipeline) GenerateTraces(shards []*ExecutionRecord) ([]*ShardTraces, error) {
	out := make([]*ShardTraces, 0, len(shards))

	for batch := range slices.Chunk(shards, p.opts.ShardBatchSize) {
		p.machine.GenerateDependencies(batch)

		for _, shard := range batch {
			traces, err := p.machine.GenerateTraces(shard)
			if err != nil {
				return nil, newError(ErrTraceGeneration, fmt.Sprintf("shard %d", shard.PublicValues.Shard), err)
			}
			p.machine.LogStats(shard)

			out = append(out, &ShardTraces{
				Shard:          shard.PublicValues.Shard,
				ExecutionShard: shard.PublicValues.ExecutionShard,
				PublicValues:   shard.PublicValues,
				Traces:         traces,
			})
		}

		p.log.WithFields(logrus.Fields{
			"shards":    len(batch),
			"generated": len(out),
			"total":     len(shards),
		}).Debug("generated batch")
	}

	return out, nil
}

// Run shards records, finishes the pipeline and generates every trace.
func (p *Pipeline) Run(records []*ExecutionRecord) ([]*ShardTraces, error) {
	var shards []*ExecutionRecord
	for _, record := range records {
		pushed, err := p.Push(record)
		if err != nil {
			return nil, err
		}
		shards = append(shards, pushed...)
	}

	rest, err := p.Finish()
	if err != nil {
		return nil, err
	}
	shards = append(shards, rest...)

	p.log.WithFields(logrus.Fields{
		"records": len(records),
		"shards":  len(shards),
	}).Info("sharded execution")

	return p.GenerateTraces(shards)
}

// EncodeRecord writes a record of this pipeline's program as CBOR
func (p *Pipeline) EncodeRecord(w io.Writer, record *ExecutionRecord) error {
	return EncodeRecord(w, record)
}

// DecodeRecord reads a record of this pipeline's program
func (p *Pipeline) DecodeRecord(r io.Reader) (*ExecutionRecord, error) {
	return DecodeRecord(r, p.program)
}

func (p *Pipeline) sameProgram(program *Program) bool {
	if program == p.program {
		return true
	}
	return program != nil && slices.Equal(program.Digest(), p.program.Digest())
}

// EncodeRecord writes record to w as deterministic CBOR
func EncodeRecord(w io.Writer, record *ExecutionRecord) error {
	if record == nil {
		return &VMError{Code: ErrInvalidInput, Message: "record cannot be nil"}
	}
	if err := executor.EncodeRecord(w, record); err != nil {
		return newError(ErrCodec, "failed to encode record", err)
	}
	return nil
}

// DecodeRecord reads a record written by EncodeRecord and binds it to program
func DecodeRecord(r io.Reader, program *Program) (*ExecutionRecord, error) {
	if program == nil {
		return nil, &VMError{Code: ErrInvalidInput, Message: "program cannot be nil"}
	}
	record, err := executor.DecodeRecord(r, program)
	if err != nil {
		return nil, newError(ErrCodec, "failed to decode record", err)
	}
	return record, nil
}
