package machine

import (
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// byteLog2Rows is the height of the byte table: one row per (b, c) pair,
// which is also one row per 16-bit value for U16Range.
const byteLog2Rows = 16

// Byte columns: b, c, then one multiplicity per byte opcode.
const (
	byteB       = 0
	byteC       = 1
	byteMults   = 2
	numByteCols = byteMults + events.NumByteOpcodes
)

// ByteChip turns the byte lookups accumulated by the other chips of a shard
// into the multiplicity table they are checked against.
type ByteChip struct{}

// NewByteChip creates the byte table chip
func NewByteChip() *ByteChip {
	return &ByteChip{}
}

func (c *ByteChip) ID() shape.AirID { return shape.Byte }

func (c *ByteChip) Name() string { return shape.Byte.String() }

func (c *ByteChip) Width() int { return numByteCols }

func (c *ByteChip) LocalOnly() bool { return true }

// Included reports whether the shard needs the table: per its shape, or when
// any lookup was recorded.
func (c *ByteChip) Included(shard *executor.ExecutionRecord) bool {
	if shard.Shape != nil {
		return shard.Shape.Included(shape.Byte)
	}
	return len(shard.ByteLookups) > 0
}

// GenerateDependencies is a no-op: the table consumes lookups, it emits none.
func (c *ByteChip) GenerateDependencies(_, _ *executor.ExecutionRecord) {}

// GenerateTrace builds the table from input's accumulated lookups. The
// dependency pass of every other chip must have run first.
func (c *ByteChip) GenerateTrace(input, _ *executor.ExecutionRecord) (*Trace, error) {
	log2Rows, fixed, err := input.FixedLog2Rows(shape.Byte)
	if err != nil {
		return nil, err
	}
	height, err := paddedHeight(1<<byteLog2Rows, log2Rows, fixed, 0)
	if err != nil {
		return nil, err
	}

	trace := NewTrace(height, numByteCols)
	for i := 0; i < 1<<byteLog2Rows; i++ {
		row := trace.Row(i)
		row[byteB] = fe(uint32(i >> 8))
		row[byteC] = fe(uint32(i & 0xFF))
	}

	counts := make([]uint64, (1<<byteLog2Rows)*events.NumByteOpcodes)
	for event, mult := range input.ByteLookups {
		counts[byteRow(event)*events.NumByteOpcodes+int(event.Opcode)] += mult
	}
	for i, mult := range counts {
		if mult == 0 {
			continue
		}
		row, op := i/events.NumByteOpcodes, i%events.NumByteOpcodes
		trace.Values[row*numByteCols+byteMults+op] = fe64(mult)
	}
	return trace, nil
}

// byteRow returns the table row proving event.
func byteRow(event events.ByteLookupEvent) int {
	if event.Opcode == events.U16Range {
		return int(event.A1)
	}
	return int(event.B)<<8 | int(event.C)
}
