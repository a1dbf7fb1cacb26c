package integration_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	zkmips "github.com/vybium/vybium-zkmips/pkg/vybium-zkmips"
)

type traceKey struct {
	shard uint32
	chip  string
}

func traceDigests(t *testing.T, workers int, records []*zkmips.ExecutionRecord) map[traceKey]hash.Digest {
	t.Helper()
	program := records[0].Program
	p, err := zkmips.NewPipeline(program, zkmips.DefaultCoreOpts().WithSplitOpts(splitOpts()).WithWorkers(workers))
	require.NoError(t, err)

	result, err := p.Run(records)
	require.NoError(t, err)

	out := map[traceKey]hash.Digest{}
	for _, s := range result {
		for _, tr := range s.Traces {
			out[traceKey{s.Shard, tr.Name}] = tr.Trace.Digest()
		}
	}
	return out
}

// Test06_TracesIndependentOfWorkers checks that the worker count changes how
// traces are built but never what they contain.
func Test06_TracesIndependentOfWorkers(t *testing.T) {
	program := testProgram()
	serial := traceDigests(t, 1, testRun(program))
	parallel := traceDigests(t, 4, testRun(program))

	require.NotEmpty(t, serial)
	assert.Equal(t, serial, parallel)
}

// Test07_StoredRecordsReproduceTraces checks that records written to and read
// back from their CBOR form produce the same traces.
func Test07_StoredRecordsReproduceTraces(t *testing.T) {
	program := testProgram()

	var stored []*zkmips.ExecutionRecord
	for _, r := range testRun(program) {
		var buf bytes.Buffer
		require.NoError(t, zkmips.EncodeRecord(&buf, r))

		var again bytes.Buffer
		require.NoError(t, zkmips.EncodeRecord(&again, r))
		assert.Equal(t, buf.Bytes(), again.Bytes(), "encoding is not deterministic")

		decoded, err := zkmips.DecodeRecord(&buf, testProgram())
		require.NoError(t, err)
		stored = append(stored, decoded)
	}

	assert.Equal(t, traceDigests(t, 2, testRun(program)), traceDigests(t, 2, stored))
}
