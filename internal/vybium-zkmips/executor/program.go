// Package executor holds the execution ledger of a MIPS run: the ExecutionRecord,
// the algorithms that defer and split it into independently provable shards, and
// the codec used to move records between processes.
package executor

import (
	"slices"
	"sync"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// Program is the static program being executed. It is shared by every record
// of a run and must not be mutated after construction.
type Program struct {
	// Instructions are the raw instruction words starting at PCBase
	Instructions []uint32

	// PCStart is the entry point
	PCStart uint32

	// PCBase is the address of Instructions[0]
	PCBase uint32

	// Image is the initial memory image, word aligned
	Image map[uint32]uint32

	digestOnce sync.Once
	digest     []uint64
}

// NewProgram creates a program from its instruction words.
func NewProgram(instructions []uint32, pcStart, pcBase uint32) *Program {
	return &Program{
		Instructions: instructions,
		PCStart:      pcStart,
		PCBase:       pcBase,
		Image:        make(map[uint32]uint32),
	}
}

// Fetch returns the instruction word at pc. ok is false outside the program.
func (p *Program) Fetch(pc uint32) (word uint32, ok bool) {
	if pc < p.PCBase || (pc-p.PCBase)%4 != 0 {
		return 0, false
	}
	idx := int((pc - p.PCBase) / 4)
	if idx >= len(p.Instructions) {
		return 0, false
	}
	return p.Instructions[idx], true
}

// Digest returns the Tip5 digest of the program: entry point, base, instruction
// words and the memory image in address order.
func (p *Program) Digest() []uint64 {
	p.digestOnce.Do(func() {
		elems := make([]field.Element, 0, 3+len(p.Instructions)+2*len(p.Image))
		elems = append(elems, field.New(uint64(p.PCStart)), field.New(uint64(p.PCBase)))
		elems = append(elems, field.New(uint64(len(p.Instructions))))
		for _, word := range p.Instructions {
			elems = append(elems, field.New(uint64(word)))
		}

		addrs := make([]uint32, 0, len(p.Image))
		for addr := range p.Image {
			addrs = append(addrs, addr)
		}
		slices.Sort(addrs)
		for _, addr := range addrs {
			elems = append(elems, field.New(uint64(addr)), field.New(uint64(p.Image[addr])))
		}

		digest := hash.HashVarlen(elems)
		p.digest = make([]uint64, 0, len(digest))
		for _, elem := range digest {
			p.digest = append(p.digest, elem.Value())
		}
	})
	return p.digest
}
