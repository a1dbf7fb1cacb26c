// Package shape describes fixed proof shapes: for each chip taking part in a
// shard, the log2 of its padded trace height.
package shape

import "fmt"

// AirID uniquely identifies each chip of the machine.
type AirID int

const (
	CPU AirID = iota
	AddSub
	Mul
	Bitwise
	ShiftLeft
	ShiftRight
	DivRem
	Lt
	CloClz
	MemoryInstrs
	Branch
	Jump
	Misc
	SyscallCore
	SyscallPrecompile
	MemoryGlobalInit
	MemoryGlobalFinalize
	MemoryLocal
	Global
	Byte
	KeccakSponge
	ShaExtend
	ShaCompress
	AES128Encrypt
	CiphertextCheck
	BooleanCircuitGarble
)

var airNames = [...]string{
	CPU:                  "CPU",
	AddSub:               "AddSub",
	Mul:                  "Mul",
	Bitwise:              "Bitwise",
	ShiftLeft:            "ShiftLeft",
	ShiftRight:           "ShiftRight",
	DivRem:               "DivRem",
	Lt:                   "Lt",
	CloClz:               "CloClz",
	MemoryInstrs:         "MemoryInstrs",
	Branch:               "Branch",
	Jump:                 "Jump",
	Misc:                 "Misc",
	SyscallCore:          "SyscallCore",
	SyscallPrecompile:    "SyscallPrecompile",
	MemoryGlobalInit:     "MemoryGlobalInit",
	MemoryGlobalFinalize: "MemoryGlobalFinalize",
	MemoryLocal:          "MemoryLocal",
	Global:               "Global",
	Byte:                 "Byte",
	KeccakSponge:         "KeccakSponge",
	ShaExtend:            "ShaExtend",
	ShaCompress:          "ShaCompress",
	AES128Encrypt:        "AES128Encrypt",
	CiphertextCheck:      "CiphertextCheck",
	BooleanCircuitGarble: "BooleanCircuitGarble",
}

// String returns the chip name
func (id AirID) String() string {
	if id >= 0 && int(id) < len(airNames) {
		return airNames[id]
	}
	return "Unknown"
}

// AllAirIDs returns every chip identity in declaration order.
func AllAirIDs() []AirID {
	ids := make([]AirID, len(airNames))
	for i := range airNames {
		ids[i] = AirID(i)
	}
	return ids
}

// ParseAirID returns the identity whose name is name.
func ParseAirID(name string) (AirID, error) {
	for i, n := range airNames {
		if n == name {
			return AirID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown chip name %q", name)
}
