package executor

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

// Sharder turns a stream of execution records into provable shards.
//
// Its state is the deferred record: the precompile calls that did not yet fill
// a shard. Each Push returns the execution shard followed by every deferred
// shard completed so far; Finish flushes the rest and chunks global memory.
// A Sharder is not safe for concurrent use.
type Sharder struct {
	opts     utils.SplitOpts
	deferred *ExecutionRecord
	base     PublicValues

	nextShard          uint32
	nextExecutionShard uint32
	finished           bool

	log *logrus.Entry
}

// NewSharder creates a sharder for program.
func NewSharder(program *Program, opts utils.SplitOpts) (*Sharder, error) {
	if program == nil {
		return nil, fmt.Errorf("program cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Sharder{
		opts:     opts,
		deferred: NewExecutionRecord(program),
		log:      logrus.WithField("component", "sharder"),
	}, nil
}

// Push defers the expensive events of record and returns record together with
// any deferred shards that are now complete.
func (s *Sharder) Push(record *ExecutionRecord) ([]*ExecutionRecord, error) {
	if s.finished {
		return nil, fmt.Errorf("sharder already finished")
	}

	deferred := record.Defer()
	s.deferred.Append(deferred)

	s.nextExecutionShard++
	s.nextShard++
	record.PublicValues.ExecutionShard = s.nextExecutionShard
	record.PublicValues.Shard = s.nextShard
	s.base = record.PublicValues

	shards := []*ExecutionRecord{record}
	shards = append(shards, s.splitDeferred(false)...)
	return shards, nil
}

// Finish returns the remaining deferred shards. The sharder cannot be used afterwards.
func (s *Sharder) Finish() ([]*ExecutionRecord, error) {
	if s.finished {
		return nil, fmt.Errorf("sharder already finished")
	}
	s.finished = true
	return s.splitDeferred(true), nil
}

// Pending returns the number of precompile calls waiting for a shard.
func (s *Sharder) Pending() int {
	return s.deferred.PrecompileEvents.Len()
}

func (s *Sharder) splitDeferred(last bool) []*ExecutionRecord {
	shards := s.deferred.Split(last, s.opts)
	for _, shard := range shards {
		s.nextShard++
		shard.PublicValues.inheritFrom(s.base)
		shard.PublicValues.Shard = s.nextShard
		s.checkWeight(shard)
	}

	if len(shards) > 0 {
		s.log.WithFields(logrus.Fields{
			"last":    last,
			"shards":  len(shards),
			"pending": s.Pending(),
		}).Debug("split deferred events")
	}
	return shards
}

// checkWeight reports keccak shards that exceed their threshold. This only
// happens when a single call absorbs more blocks than the threshold allows.
func (s *Sharder) checkWeight(shard *ExecutionRecord) {
	records := shard.PrecompileEventsFor(events.KECCAK_SPONGE)
	if len(records) == 0 {
		return
	}
	if weight := KeccakWeight(records); weight > s.opts.Keccak {
		s.log.WithFields(logrus.Fields{
			"shard":     shard.PublicValues.Shard,
			"blocks":    weight,
			"threshold": s.opts.Keccak,
		}).Warn("keccak call larger than shard threshold")
	}
}
