package machine

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// KeccakRoundsPerBlock is the number of permutation rounds, and so of rows,
// per absorbed sponge block.
const KeccakRoundsPerBlock = 24

// ShaCompressRows covers the 8 state reads, the 64 rounds and the 8 writes.
const ShaCompressRows = 8 + events.ShaCompressRounds + 8

func addWordChecks(blu events.ByteRecord, words ...uint32) {
	for _, w := range words {
		bytes := events.WordBytes(w)
		events.AddU8RangeChecks(blu, bytes[:])
	}
}

// Keccak sponge columns
const (
	kcClk = iota
	kcInputAddr
	kcOutputAddr
	kcBlock
	kcRound
	kcBlockWord
	kcIsLastBlock
	kcIsReal
	kcOutput
	numKeccakCols = kcOutput + events.KeccakOutputU32s
)

// NewKeccakSpongeChip proves keccak sponge calls, one permutation per
// absorbed block.
func NewKeccakSpongeChip() Chip {
	return &eventChip[events.KeccakSpongeEvent]{
		id:        shape.KeccakSponge,
		width:     numKeccakCols,
		localOnly: true,
		events:    precompileEvents[events.KeccakSpongeEvent](events.KECCAK_SPONGE),
		rowsPer: func(ev *events.KeccakSpongeEvent) int {
			return ev.NumBlocks() * KeccakRoundsPerBlock
		},
		fill: perEvent(fillKeccakRows),
	}
}

func fillKeccakRows(ev *events.KeccakSpongeEvent, rows []field.Element, blu events.ByteRecord) {
	blocks := ev.NumBlocks()
	for block := 0; block < blocks; block++ {
		var first uint32
		if idx := block * events.GeneralBlockSizeU32s; idx < len(ev.Input) {
			first = ev.Input[idx]
		}
		for round := 0; round < KeccakRoundsPerBlock; round++ {
			r := block*KeccakRoundsPerBlock + round
			row := rows[r*numKeccakCols : (r+1)*numKeccakCols]
			row[kcClk] = fe(ev.Clk)
			row[kcInputAddr] = fe(ev.InputAddr)
			row[kcOutputAddr] = fe(ev.OutputAddr)
			row[kcBlock] = fe(uint32(block))
			row[kcRound] = fe(uint32(round))
			row[kcBlockWord] = fe(first)
			row[kcIsLastBlock] = feBool(block == blocks-1)
			row[kcIsReal] = field.One
			if block == blocks-1 && round == KeccakRoundsPerBlock-1 {
				for i, w := range ev.Output {
					row[kcOutput+i] = fe(w)
				}
			}
		}
	}

	addWordChecks(blu, ev.Input...)
	addWordChecks(blu, ev.Output[:]...)
}

// SHA-256 extend columns
const (
	seClk = iota
	seWPtr
	seI
	seWIMinus15
	seWIMinus2
	seWIMinus16
	seWIMinus7
	seWI
	seIsReal
	numShaExtendCols
)

// NewShaExtendChip proves message schedule extensions, one row per derived word.
func NewShaExtendChip() Chip {
	return &eventChip[events.ShaExtendEvent]{
		id:      shape.ShaExtend,
		width:   numShaExtendCols,
		events:  precompileEvents[events.ShaExtendEvent](events.SHA_EXTEND),
		rowsPer: func(*events.ShaExtendEvent) int { return events.ShaExtendRounds },
		fill:    perEvent(fillShaExtendRows),
	}
}

func readValue(records []events.MemoryReadRecord, j int) uint32 {
	if j < len(records) {
		return records[j].Value
	}
	return 0
}

func fillShaExtendRows(ev *events.ShaExtendEvent, rows []field.Element, blu events.ByteRecord) {
	for j := 0; j < events.ShaExtendRounds; j++ {
		row := rows[j*numShaExtendCols : (j+1)*numShaExtendCols]
		row[seClk] = fe(ev.Clk)
		row[seWPtr] = fe(ev.WPtr)
		row[seI] = fe(uint32(16 + j))
		row[seWIMinus15] = fe(readValue(ev.WIMinus15Reads, j))
		row[seWIMinus2] = fe(readValue(ev.WIMinus2Reads, j))
		row[seWIMinus16] = fe(readValue(ev.WIMinus16Reads, j))
		row[seWIMinus7] = fe(readValue(ev.WIMinus7Reads, j))
		if j < len(ev.WIWrites) {
			row[seWI] = fe(ev.WIWrites[j].Value)
			addWordChecks(blu, ev.WIWrites[j].Value)
		}
		row[seIsReal] = field.One
	}
}

// SHA-256 compress columns
const (
	scClk = iota
	scWPtr
	scHPtr
	scPhase
	scIndex
	scValue
	scIsReal
	numShaCompressCols
)

// Compress phases
const (
	shaPhaseInit = iota
	shaPhaseCompress
	shaPhaseFinalize
)

// NewShaCompressChip proves compression calls in 80 rows each.
func NewShaCompressChip() Chip {
	return &eventChip[events.ShaCompressEvent]{
		id:      shape.ShaCompress,
		width:   numShaCompressCols,
		events:  precompileEvents[events.ShaCompressEvent](events.SHA_COMPRESS),
		rowsPer: func(*events.ShaCompressEvent) int { return ShaCompressRows },
		fill:    perEvent(fillShaCompressRows),
	}
}

func fillShaCompressRows(ev *events.ShaCompressEvent, rows []field.Element, blu events.ByteRecord) {
	for r := 0; r < ShaCompressRows; r++ {
		row := rows[r*numShaCompressCols : (r+1)*numShaCompressCols]
		row[scClk] = fe(ev.Clk)
		row[scWPtr] = fe(ev.WPtr)
		row[scHPtr] = fe(ev.HPtr)
		row[scIsReal] = field.One

		switch {
		case r < 8:
			row[scPhase] = fe(shaPhaseInit)
			row[scIndex] = fe(uint32(r))
			row[scValue] = fe(ev.H[r])
		case r < 8+events.ShaCompressRounds:
			j := r - 8
			row[scPhase] = fe(shaPhaseCompress)
			row[scIndex] = fe(uint32(j))
			if j < len(ev.W) {
				row[scValue] = fe(ev.W[j])
			}
		default:
			j := r - 8 - events.ShaCompressRounds
			row[scPhase] = fe(shaPhaseFinalize)
			row[scIndex] = fe(uint32(j))
			row[scValue] = fe(ev.HWrites[j].Value)
		}
	}

	addWordChecks(blu, ev.H[:]...)
	for _, w := range ev.HWrites {
		addWordChecks(blu, w.Value)
	}
}

// AES-128 columns
const (
	aesClk = iota
	aesBlockAddr
	aesKeyAddr
	aesRound
	aesIsFirst
	aesIsLast
	aesState
	aesKey     = aesState + events.AES128BlockU32s
	aesIsReal  = aesKey + events.AES128BlockU32s
	numAESCols = aesIsReal + 1
)

// NewAES128EncryptChip proves block encryptions, one row per round.
func NewAES128EncryptChip() Chip {
	return &eventChip[events.AES128EncryptEvent]{
		id:      shape.AES128Encrypt,
		width:   numAESCols,
		events:  precompileEvents[events.AES128EncryptEvent](events.AES128_ENCRYPT),
		rowsPer: func(*events.AES128EncryptEvent) int { return events.AES128Rounds },
		fill:    perEvent(fillAESRows),
	}
}

func fillAESRows(ev *events.AES128EncryptEvent, rows []field.Element, blu events.ByteRecord) {
	for r := 0; r < events.AES128Rounds; r++ {
		row := rows[r*numAESCols : (r+1)*numAESCols]
		row[aesClk] = fe(ev.Clk)
		row[aesBlockAddr] = fe(ev.BlockAddr)
		row[aesKeyAddr] = fe(ev.KeyAddr)
		row[aesRound] = fe(uint32(r))
		row[aesIsFirst] = feBool(r == 0)
		row[aesIsLast] = feBool(r == events.AES128Rounds-1)
		for i := 0; i < events.AES128BlockU32s; i++ {
			switch r {
			case 0:
				row[aesState+i] = fe(ev.Input[i])
			case events.AES128Rounds - 1:
				row[aesState+i] = fe(ev.Output[i])
			}
			row[aesKey+i] = fe(ev.Key[i])
		}
		row[aesIsReal] = field.One
	}

	addWordChecks(blu, ev.Input[:]...)
	addWordChecks(blu, ev.Key[:]...)
	addWordChecks(blu, ev.Output[:]...)
}

// Garbled circuit columns, shared by the ciphertext check and the garble chip
const (
	gcClk = iota
	gcInputAddr
	gcOutputAddr
	gcGate
	gcGateWord
	gcOutput
	gcIsFirst
	gcIsReal
	gcDelta
	numCiphertextCols = gcDelta
	numGarbleCols     = gcDelta + 4
)

func gateRows(numGates uint32) int {
	return max(int(numGates), 1)
}

func fillGateRows(width int, clk, inputAddr, outputAddr, numGates, output uint32, gates []uint32, rows []field.Element, blu events.ByteRecord) {
	for g := 0; g < gateRows(numGates); g++ {
		row := rows[g*width : (g+1)*width]
		row[gcClk] = fe(clk)
		row[gcInputAddr] = fe(inputAddr)
		row[gcOutputAddr] = fe(outputAddr)
		row[gcGate] = fe(uint32(g))
		if g < len(gates) {
			row[gcGateWord] = fe(gates[g])
		}
		row[gcOutput] = fe(output)
		row[gcIsFirst] = feBool(g == 0)
		row[gcIsReal] = field.One
	}
	addWordChecks(blu, gates...)
	addWordChecks(blu, numGates)
}

// NewCiphertextCheckChip proves ciphertext checks, one row per gate.
func NewCiphertextCheckChip() Chip {
	return &eventChip[events.CiphertextCheckEvent]{
		id:      shape.CiphertextCheck,
		width:   numCiphertextCols,
		events:  precompileEvents[events.CiphertextCheckEvent](events.CIPHERTEXT_CHECK),
		rowsPer: func(ev *events.CiphertextCheckEvent) int { return gateRows(ev.NumGates) },
		fill: perEvent(func(ev *events.CiphertextCheckEvent, rows []field.Element, blu events.ByteRecord) {
			fillGateRows(numCiphertextCols, ev.Clk, ev.InputAddr, ev.OutputAddr, ev.NumGates, ev.Output, ev.GatesInfo, rows, blu)
		}),
	}
}

// NewBooleanCircuitGarbleChip proves circuit garbling, one row per gate.
func NewBooleanCircuitGarbleChip() Chip {
	return &eventChip[events.BooleanCircuitGarbleEvent]{
		id:      shape.BooleanCircuitGarble,
		width:   numGarbleCols,
		events:  precompileEvents[events.BooleanCircuitGarbleEvent](events.BOOLEAN_CIRCUIT_GARBLE),
		rowsPer: func(ev *events.BooleanCircuitGarbleEvent) int { return gateRows(ev.NumGates) },
		fill: perEvent(func(ev *events.BooleanCircuitGarbleEvent, rows []field.Element, blu events.ByteRecord) {
			fillGateRows(numGarbleCols, ev.Clk, ev.InputAddr, ev.OutputAddr, ev.NumGates, ev.Output, ev.GatesInfo, rows, blu)
			for g := 0; g < gateRows(ev.NumGates); g++ {
				for i, d := range ev.Delta {
					rows[g*numGarbleCols+gcDelta+i] = fe(d)
				}
			}
			addWordChecks(blu, ev.Delta[:]...)
		}),
	}
}
