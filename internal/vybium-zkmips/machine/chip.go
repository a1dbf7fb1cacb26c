package machine

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// Chip is the interface every trace-producing component implements
type Chip interface {
	// ID returns the chip's identity in shapes
	ID() shape.AirID

	// Name returns the chip name
	Name() string

	// Width returns the number of main columns
	Width() int

	// GenerateTrace builds the padded trace of the chip for input. Chips that
	// derive further events write them to output.
	GenerateTrace(input, output *executor.ExecutionRecord) (*Trace, error)

	// GenerateDependencies adds the byte lookups (and global lookups) implied
	// by the events of input to output. It reads the same events as
	// GenerateTrace and derives the same facts.
	GenerateDependencies(input, output *executor.ExecutionRecord)

	// Included reports whether the chip takes part in the proof of shard
	Included(shard *executor.ExecutionRecord) bool

	// LocalOnly reports whether the chip only interacts within its shard
	LocalOnly() bool
}

// ChipTrace pairs a generated trace with the chip that produced it.
type ChipTrace struct {
	ID    shape.AirID
	Name  string
	Trace *Trace
}

// rowFiller writes the rows of evs[i] into rows, which is zeroed and sized
// rowsPer(evs[i]) * width. It may read neighbouring events and shard-wide
// values, but never writes outside rows.
type rowFiller[E any] func(shard *executor.ExecutionRecord, evs []E, i int, rows []field.Element, blu events.ByteRecord)

// perEvent lifts a single-event filler.
func perEvent[E any](fill func(ev *E, rows []field.Element, blu events.ByteRecord)) rowFiller[E] {
	return func(_ *executor.ExecutionRecord, evs []E, i int, rows []field.Element, blu events.ByteRecord) {
		fill(&evs[i], rows, blu)
	}
}

// eventChip is a Chip over one event sequence of the record.
type eventChip[E any] struct {
	id        shape.AirID
	width     int
	minRows   int
	localOnly bool

	// events selects the relevant sequence
	events func(*executor.ExecutionRecord) []E

	// rowsPer returns the rows produced per event; nil means one
	rowsPer func(*E) int

	fill rowFiller[E]

	// global returns the cross-shard messages of an event, if any
	global func(*E) []events.GlobalLookupEvent

	workers int
}

func (c *eventChip[E]) ID() shape.AirID { return c.id }

func (c *eventChip[E]) Name() string { return c.id.String() }

func (c *eventChip[E]) Width() int { return c.width }

func (c *eventChip[E]) LocalOnly() bool { return c.localOnly }

// SetNumWorkers sets the number of parallel workers (default: NumCPU)
func (c *eventChip[E]) SetNumWorkers(n int) {
	c.workers = n
}

func (c *eventChip[E]) Included(shard *executor.ExecutionRecord) bool {
	if shard.Shape != nil {
		return shard.Shape.Included(c.id)
	}
	return len(c.events(shard)) > 0
}

func (c *eventChip[E]) rows(ev *E) int {
	if c.rowsPer == nil {
		return 1
	}
	return c.rowsPer(ev)
}

// offsets returns the first row of every event plus the total row count.
func (c *eventChip[E]) offsets(evs []E) []int {
	out := make([]int, len(evs)+1)
	for i := range evs {
		out[i+1] = out[i] + c.rows(&evs[i])
	}
	return out
}

func (c *eventChip[E]) GenerateTrace(input, _ *executor.ExecutionRecord) (*Trace, error) {
	evs := c.events(input)
	offsets := c.offsets(evs)
	nReal := offsets[len(evs)]

	log2Rows, fixed, err := input.FixedLog2Rows(c.id)
	if err != nil {
		return nil, err
	}
	height, err := paddedHeight(nReal, log2Rows, fixed, c.minRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}

	trace := NewTrace(height, c.width)
	parallelFor(len(evs), c.workers, func(start, end int) {
		for i := start; i < end; i++ {
			rows := trace.Values[offsets[i]*c.width : offsets[i+1]*c.width]
			c.fill(input, evs, i, rows, discard{})
		}
	})
	return trace, nil
}

func (c *eventChip[E]) GenerateDependencies(input, output *executor.ExecutionRecord) {
	evs := c.events(input)

	maps := parallelLookups(len(evs), c.workers, func(start, end int, blu events.ByteLookups) {
		var scratch []field.Element
		for i := start; i < end; i++ {
			n := c.rows(&evs[i]) * c.width
			if cap(scratch) < n {
				scratch = make([]field.Element, n)
			}
			scratch = scratch[:n]
			for j := range scratch {
				scratch[j] = field.Zero
			}
			c.fill(input, evs, i, scratch, blu)
		}
	})
	output.AddByteLookupEventsFromMaps(maps)

	if c.global != nil {
		for i := range evs {
			for _, msg := range c.global(&evs[i]) {
				output.AddGlobalLookupEvent(msg)
			}
		}
	}
}

// precompileEvents selects the payloads of one syscall code, asserting their
// concrete type. A payload of another type is a record construction bug.
func precompileEvents[E any](code events.SyscallCode) func(*executor.ExecutionRecord) []E {
	return func(r *executor.ExecutionRecord) []E {
		records := r.PrecompileEventsFor(code)
		out := make([]E, 0, len(records))
		for _, record := range records {
			ev, ok := any(record.Event).(*E)
			if !ok {
				panic(fmt.Sprintf("%s: unexpected payload %T", code, record.Event))
			}
			out = append(out, *ev)
		}
		return out
	}
}
