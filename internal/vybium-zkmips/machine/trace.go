// Package machine turns execution records into per-chip trace matrices.
//
// Every chip consumes the events of one class from a shard, emits one or
// more fixed-width rows per event, and pads the matrix to a power-of-two
// height (or the height fixed by the shard's shape). A second pass over the
// same events derives the byte lookups the rows rely on, which the Byte chip
// later turns into its multiplicity table.
package machine

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// Trace is a row-major matrix of field elements.
type Trace struct {
	Values []field.Element
	Width  int
}

// NewTrace allocates a zero-filled trace.
func NewTrace(height, width int) *Trace {
	values := make([]field.Element, height*width)
	for i := range values {
		values[i] = field.Zero
	}
	return &Trace{Values: values, Width: width}
}

// Height returns the number of rows.
func (t *Trace) Height() int {
	if t.Width == 0 {
		return 0
	}
	return len(t.Values) / t.Width
}

// Row returns row i. The slice aliases the trace.
func (t *Trace) Row(i int) []field.Element {
	return t.Values[i*t.Width : (i+1)*t.Width]
}

// Column returns a copy of column j
func (t *Trace) Column(j int) []field.Element {
	col := make([]field.Element, t.Height())
	for i := range col {
		col[i] = t.Values[i*t.Width+j]
	}
	return col
}

// Digest hashes the whole matrix with Tip5.
func (t *Trace) Digest() hash.Digest {
	return hash.HashVarlen(t.Values)
}

func (t *Trace) String() string {
	return fmt.Sprintf("Trace(%dx%d)", t.Height(), t.Width)
}

func fe(v uint32) field.Element {
	return field.New(uint64(v))
}

func feBool(b bool) field.Element {
	if b {
		return field.One
	}
	return field.Zero
}

func fe64(v uint64) field.Element {
	return field.New(v)
}
