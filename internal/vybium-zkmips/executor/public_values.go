package executor

import (
	"encoding/binary"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"golang.org/x/crypto/sha3"
)

// AddrBits is the width of the address bit decomposition carried between
// global memory shards.
const AddrBits = 32

// PublicValues are the externally visible inputs and outputs of one shard proof.
type PublicValues struct {
	// Digest of the public output stream, as little-endian words
	CommittedValueDigest [8]uint32

	// Digest of the proofs verified inside the program
	DeferredProofsDigest [8]uint32

	StartPC  uint32
	NextPC   uint32
	ExitCode uint32

	// Index of the shard among all shards of the run, starting at 1
	Shard uint32

	// Index of the shard among execution (per-cycle) shards
	ExecutionShard uint32

	// Address chaining of the global memory argument
	PreviousInitAddrBits     [AddrBits]uint32
	LastInitAddrBits         [AddrBits]uint32
	PreviousFinalizeAddrBits [AddrBits]uint32
	LastFinalizeAddrBits     [AddrBits]uint32
}

// AddressBits decomposes addr into its low AddrBits bits, least significant first.
func AddressBits(addr uint32) [AddrBits]uint32 {
	var bits [AddrBits]uint32
	for i := range bits {
		bits[i] = (addr >> i) & 1
	}
	return bits
}

// BitsToAddress recomposes an address from AddressBits.
func BitsToAddress(bits [AddrBits]uint32) uint32 {
	addr := uint32(0)
	for i, b := range bits {
		addr |= (b & 1) << i
	}
	return addr
}

// CommitOutput sets the committed value digest to the SHA3-256 of the public
// output stream.
func (pv *PublicValues) CommitOutput(stream []byte) {
	sum := sha3.Sum256(stream)
	for i := range pv.CommittedValueDigest {
		pv.CommittedValueDigest[i] = binary.LittleEndian.Uint32(sum[4*i:])
	}
}

// SetDeferredProofsDigestWord sets one word of the deferred proofs digest.
// It reports false when idx is out of range.
func (pv *PublicValues) SetDeferredProofsDigestWord(idx int, word uint32) bool {
	if idx < 0 || idx >= len(pv.DeferredProofsDigest) {
		return false
	}
	pv.DeferredProofsDigest[idx] = word
	return true
}

// Elements flattens the public values into field elements in declaration order.
func (pv *PublicValues) Elements() []field.Element {
	out := make([]field.Element, 0, 16+5+4*AddrBits)
	for _, w := range pv.CommittedValueDigest {
		out = append(out, field.New(uint64(w)))
	}
	for _, w := range pv.DeferredProofsDigest {
		out = append(out, field.New(uint64(w)))
	}
	out = append(out,
		field.New(uint64(pv.StartPC)),
		field.New(uint64(pv.NextPC)),
		field.New(uint64(pv.ExitCode)),
		field.New(uint64(pv.Shard)),
		field.New(uint64(pv.ExecutionShard)),
	)
	for _, bits := range [][AddrBits]uint32{
		pv.PreviousInitAddrBits,
		pv.LastInitAddrBits,
		pv.PreviousFinalizeAddrBits,
		pv.LastFinalizeAddrBits,
	} {
		for _, b := range bits {
			out = append(out, field.New(uint64(b)))
		}
	}
	return out
}

// inheritFrom copies the run-wide values of base, keeping the shard indices and
// the address chaining of pv.
func (pv *PublicValues) inheritFrom(base PublicValues) {
	pv.CommittedValueDigest = base.CommittedValueDigest
	pv.DeferredProofsDigest = base.DeferredProofsDigest
	pv.StartPC = base.NextPC
	pv.NextPC = base.NextPC
	pv.ExitCode = base.ExitCode
	pv.ExecutionShard = base.ExecutionShard
}
