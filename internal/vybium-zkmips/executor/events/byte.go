package events

// ByteLookupEvent is a single fact proven by the shared byte lookup table:
// Opcode(B, C) = (A1, A2).
type ByteLookupEvent struct {
	Opcode ByteOpcode `cbor:"1,keyasint"`
	A1     uint16     `cbor:"2,keyasint"`
	A2     uint8      `cbor:"3,keyasint"`
	B      uint8      `cbor:"4,keyasint"`
	C      uint8      `cbor:"5,keyasint"`
}

// ByteRecord is implemented by anything that accumulates byte lookup facts.
type ByteRecord interface {
	// AddByteLookupEvent increments the multiplicity of a fact by one.
	AddByteLookupEvent(event ByteLookupEvent)

	// AddByteLookupEventsFromMaps sums the multiplicities of independently
	// computed maps into the record.
	AddByteLookupEventsFromMaps(maps []ByteLookups)
}

// ByteLookups is a multiset of byte lookup facts.
//
// Merging is a per-key sum, so it is associative and commutative: maps built
// over disjoint slices of events can be reduced in any order.
type ByteLookups map[ByteLookupEvent]uint64

// NewByteLookups returns an empty multiset.
func NewByteLookups() ByteLookups {
	return make(ByteLookups)
}

// AddByteLookupEvent implements ByteRecord.
func (m ByteLookups) AddByteLookupEvent(event ByteLookupEvent) {
	m[event]++
}

// AddByteLookupEventsFromMaps implements ByteRecord.
func (m ByteLookups) AddByteLookupEventsFromMaps(maps []ByteLookups) {
	for _, other := range maps {
		for event, count := range other {
			m[event] += count
		}
	}
}

// Total returns the sum of all multiplicities.
func (m ByteLookups) Total() uint64 {
	total := uint64(0)
	for _, count := range m {
		total += count
	}
	return total
}

// Clone returns an independent copy of the multiset.
func (m ByteLookups) Clone() ByteLookups {
	out := make(ByteLookups, len(m))
	for event, count := range m {
		out[event] = count
	}
	return out
}

// AddU8RangeCheck records that a and b are both bytes.
func AddU8RangeCheck(rec ByteRecord, a, b uint8) {
	rec.AddByteLookupEvent(ByteLookupEvent{Opcode: U8Range, B: a, C: b})
}

// AddU16RangeCheck records that a fits in 16 bits.
func AddU16RangeCheck(rec ByteRecord, a uint16) {
	rec.AddByteLookupEvent(ByteLookupEvent{Opcode: U16Range, A1: a})
}

// AddU8RangeChecks range checks a list of bytes two at a time. An odd trailing
// byte is paired with zero.
func AddU8RangeChecks(rec ByteRecord, bytes []uint8) {
	for i := 0; i < len(bytes); i += 2 {
		var second uint8
		if i+1 < len(bytes) {
			second = bytes[i+1]
		}
		AddU8RangeCheck(rec, bytes[i], second)
	}
}

// AddU16RangeChecks range checks every limb.
func AddU16RangeChecks(rec ByteRecord, limbs []uint16) {
	for _, limb := range limbs {
		AddU16RangeCheck(rec, limb)
	}
}

// WordBytes returns the little-endian bytes of a word.
func WordBytes(word uint32) [4]uint8 {
	return [4]uint8{uint8(word), uint8(word >> 8), uint8(word >> 16), uint8(word >> 24)}
}
