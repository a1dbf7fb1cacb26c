package executor

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestAddressBits(t *testing.T) {
	for _, addr := range []uint32{0, 1, 0x80000000, 0xdeadbeef, 0xffffffff} {
		bits := AddressBits(addr)
		for _, b := range bits {
			assert.LessOrEqual(t, b, uint32(1))
		}
		assert.Equal(t, addr, BitsToAddress(bits))
	}

	bits := AddressBits(0b101)
	assert.Equal(t, uint32(1), bits[0])
	assert.Equal(t, uint32(0), bits[1])
	assert.Equal(t, uint32(1), bits[2])
}

func TestCommitOutput(t *testing.T) {
	stream := []byte("public output")
	var pv PublicValues
	pv.CommitOutput(stream)

	sum := sha3.Sum256(stream)
	assert.Equal(t, binary.LittleEndian.Uint32(sum[:4]), pv.CommittedValueDigest[0])
	assert.Equal(t, binary.LittleEndian.Uint32(sum[28:]), pv.CommittedValueDigest[7])

	var other PublicValues
	other.CommitOutput([]byte("other output"))
	assert.NotEqual(t, pv.CommittedValueDigest, other.CommittedValueDigest)
}

func TestSetDeferredProofsDigestWord(t *testing.T) {
	var pv PublicValues
	assert.True(t, pv.SetDeferredProofsDigestWord(7, 42))
	assert.Equal(t, uint32(42), pv.DeferredProofsDigest[7])
	assert.False(t, pv.SetDeferredProofsDigestWord(8, 1))
	assert.False(t, pv.SetDeferredProofsDigestWord(-1, 1))
}

func TestPublicValuesElements(t *testing.T) {
	var pv PublicValues
	pv.Shard = 9
	pv.LastFinalizeAddrBits = AddressBits(0xffffffff)

	elems := pv.Elements()
	require.Len(t, elems, 16+5+4*AddrBits)
	assert.Equal(t, uint64(9), elems[19].Value())
	assert.Equal(t, uint64(1), elems[len(elems)-1].Value())
	assert.Equal(t, uint64(0), elems[20].Value())
}

func TestInheritFrom(t *testing.T) {
	base := PublicValues{StartPC: 0x10, NextPC: 0x20, ExitCode: 1, Shard: 3, ExecutionShard: 2}
	base.CommitOutput([]byte{1})

	pv := PublicValues{Shard: 7, LastInitAddrBits: AddressBits(5)}
	pv.inheritFrom(base)

	assert.Equal(t, uint32(0x20), pv.StartPC)
	assert.Equal(t, uint32(0x20), pv.NextPC)
	assert.Equal(t, uint32(1), pv.ExitCode)
	assert.Equal(t, uint32(2), pv.ExecutionShard)
	assert.Equal(t, uint32(7), pv.Shard)
	assert.Equal(t, base.CommittedValueDigest, pv.CommittedValueDigest)
	assert.Equal(t, AddressBits(5), pv.LastInitAddrBits)
}

func TestProgramFetch(t *testing.T) {
	p := testProgram()

	word, ok := p.Fetch(0x1000)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x20080001), word)

	word, ok = p.Fetch(0x100c)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x0000000c), word)

	_, ok = p.Fetch(0x1010)
	assert.False(t, ok)
	_, ok = p.Fetch(0x1002)
	assert.False(t, ok)
	_, ok = p.Fetch(0x0ffc)
	assert.False(t, ok)
}

func TestProgramDigest(t *testing.T) {
	a := testProgram()
	b := testProgram()

	require.NotEmpty(t, a.Digest())
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Digest(), a.Digest())

	c := testProgram()
	c.PCStart += 4
	assert.NotEqual(t, a.Digest(), c.Digest())

	d := NewProgram(a.Instructions, a.PCStart, a.PCBase)
	assert.NotEqual(t, a.Digest(), d.Digest(), "memory image is part of the digest")
}
