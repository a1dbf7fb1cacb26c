package machine

import (
	"slices"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/shape"
)

// ALU columns: pc, next_pc, opcode, a, b, c, the four bytes of a, is_real.
const (
	aluPC = iota
	aluNextPC
	aluOpcode
	aluA
	aluB
	aluC
	aluABytes
	aluIsReal  = aluABytes + 4
	numAluCols = aluIsReal + 1
)

// aluDeps emits the byte lookups of a single-output ALU event.
type aluDeps func(ev *events.AluEvent, blu events.ByteRecord)

func newAluChip(id shape.AirID, localOnly bool, sel func(*executor.ExecutionRecord) []events.AluEvent, deps aluDeps) Chip {
	return &eventChip[events.AluEvent]{
		id:        id,
		width:     numAluCols,
		localOnly: localOnly,
		events:    sel,
		fill: perEvent(func(ev *events.AluEvent, row []field.Element, blu events.ByteRecord) {
			row[aluPC] = fe(ev.PC)
			row[aluNextPC] = fe(ev.NextPC)
			row[aluOpcode] = fe(uint32(ev.Opcode))
			row[aluA] = fe(ev.A)
			row[aluB] = fe(ev.B)
			row[aluC] = fe(ev.C)
			for i, b := range events.WordBytes(ev.A) {
				row[aluABytes+i] = fe(uint32(b))
			}
			row[aluIsReal] = field.One
			deps(ev, blu)
		}),
	}
}

// NewAddSubChip proves ADD and SUB.
func NewAddSubChip() Chip {
	return newAluChip(shape.AddSub, false,
		func(r *executor.ExecutionRecord) []events.AluEvent {
			return slices.Concat(r.AddEvents, r.SubEvents)
		},
		func(ev *events.AluEvent, blu events.ByteRecord) {
			for _, w := range []uint32{ev.A, ev.B, ev.C} {
				bytes := events.WordBytes(w)
				events.AddU8RangeChecks(blu, bytes[:])
			}
		})
}

// NewBitwiseChip proves AND, OR, XOR and NOR byte by byte.
func NewBitwiseChip() Chip {
	return newAluChip(shape.Bitwise, true,
		func(r *executor.ExecutionRecord) []events.AluEvent { return r.BitwiseEvents },
		func(ev *events.AluEvent, blu events.ByteRecord) {
			op, ok := ev.Opcode.ByteOpcode()
			if !ok {
				return
			}
			a, b, c := events.WordBytes(ev.A), events.WordBytes(ev.B), events.WordBytes(ev.C)
			for i := range a {
				blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: op, A1: uint16(a[i]), B: b[i], C: c[i]})
			}
		})
}

// NewShiftLeftChip proves SLL.
func NewShiftLeftChip() Chip {
	return newAluChip(shape.ShiftLeft, false,
		func(r *executor.ExecutionRecord) []events.AluEvent { return r.ShiftLeftEvents },
		func(ev *events.AluEvent, blu events.ByteRecord) {
			bitShift := uint8(ev.C & 7)
			for _, b := range events.WordBytes(ev.B) {
				blu.AddByteLookupEvent(events.ByteLookupEvent{
					Opcode: events.ByteSLL,
					A1:     uint16(b << bitShift),
					B:      b,
					C:      bitShift,
				})
			}
			a := events.WordBytes(ev.A)
			events.AddU8RangeChecks(blu, a[:])
		})
}

// NewShiftRightChip proves SRL, SRA and ROR.
func NewShiftRightChip() Chip {
	return newAluChip(shape.ShiftRight, false,
		func(r *executor.ExecutionRecord) []events.AluEvent { return r.ShiftRightEvents },
		func(ev *events.AluEvent, blu events.ByteRecord) {
			bitShift := uint8(ev.C & 7)
			b := events.WordBytes(ev.B)
			if ev.Opcode == events.SRA {
				blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.MSB, A1: uint16(b[3] >> 7), B: b[3]})
			}
			for _, v := range b {
				blu.AddByteLookupEvent(events.ByteLookupEvent{
					Opcode: events.ShrCarry,
					A1:     uint16(v >> bitShift),
					A2:     v & (1<<bitShift - 1),
					B:      v,
					C:      bitShift,
				})
			}
			a := events.WordBytes(ev.A)
			events.AddU8RangeChecks(blu, a[:])
		})
}

// NewLtChip proves SLT and SLTU.
func NewLtChip() Chip {
	return newAluChip(shape.Lt, true,
		func(r *executor.ExecutionRecord) []events.AluEvent { return r.LtEvents },
		func(ev *events.AluEvent, blu events.ByteRecord) {
			b, c := events.WordBytes(ev.B), events.WordBytes(ev.C)
			if ev.Opcode == events.SLT {
				blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.MSB, A1: uint16(b[3] >> 7), B: b[3]})
				blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.MSB, A1: uint16(c[3] >> 7), B: c[3]})
			}
			// The comparison is decided by the most significant differing byte.
			for i := 3; i >= 0; i-- {
				if b[i] != c[i] || i == 0 {
					blu.AddByteLookupEvent(events.ByteLookupEvent{
						Opcode: events.LTU,
						A1:     uint16(boolToU8(b[i] < c[i])),
						B:      b[i],
						C:      c[i],
					})
					break
				}
			}
		})
}

// NewCloClzChip proves CLO and CLZ.
func NewCloClzChip() Chip {
	return newAluChip(shape.CloClz, false,
		func(r *executor.ExecutionRecord) []events.AluEvent { return r.CloClzEvents },
		func(ev *events.AluEvent, blu events.ByteRecord) {
			events.AddU8RangeCheck(blu, uint8(ev.A), 0)
		})
}

// Multiply/divide columns: pc, next_pc, opcode, a (lo), hi, b, c, is_real.
const (
	mulPC = iota
	mulNextPC
	mulOpcode
	mulLo
	mulHi
	mulB
	mulC
	mulIsReal
	numMulCols
)

func newCompAluChip(id shape.AirID, sel func(*executor.ExecutionRecord) []events.CompAluEvent, signed func(events.Opcode) bool) Chip {
	return &eventChip[events.CompAluEvent]{
		id:     id,
		width:  numMulCols,
		events: sel,
		fill: perEvent(func(ev *events.CompAluEvent, row []field.Element, blu events.ByteRecord) {
			row[mulPC] = fe(ev.PC)
			row[mulNextPC] = fe(ev.NextPC)
			row[mulOpcode] = fe(uint32(ev.Opcode))
			row[mulLo] = fe(ev.A)
			row[mulHi] = fe(ev.Hi)
			row[mulB] = fe(ev.B)
			row[mulC] = fe(ev.C)
			row[mulIsReal] = field.One

			for _, w := range []uint32{ev.A, ev.Hi} {
				bytes := events.WordBytes(w)
				events.AddU8RangeChecks(blu, bytes[:])
			}
			if signed(ev.Opcode) {
				b, c := events.WordBytes(ev.B), events.WordBytes(ev.C)
				blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.MSB, A1: uint16(b[3] >> 7), B: b[3]})
				blu.AddByteLookupEvent(events.ByteLookupEvent{Opcode: events.MSB, A1: uint16(c[3] >> 7), B: c[3]})
			}
		}),
	}
}

// NewMulChip proves MUL, MULT, MULTU, MADDU and MSUBU.
func NewMulChip() Chip {
	return newCompAluChip(shape.Mul,
		func(r *executor.ExecutionRecord) []events.CompAluEvent { return r.MulEvents },
		func(op events.Opcode) bool { return op == events.MUL || op == events.MULT })
}

// NewDivRemChip proves DIV and DIVU.
func NewDivRemChip() Chip {
	return newCompAluChip(shape.DivRem,
		func(r *executor.ExecutionRecord) []events.CompAluEvent { return r.DivRemEvents },
		func(op events.Opcode) bool { return op == events.DIV })
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
