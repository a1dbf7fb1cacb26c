package events

// MemoryRecord is the state of one memory word at one point in time.
type MemoryRecord struct {
	Shard     uint32
	Timestamp uint32
	Value     uint32
}

// MemoryReadRecord is a read of a memory word together with the previous access.
type MemoryReadRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// MemoryWriteRecord is a write of a memory word together with the previous access.
type MemoryWriteRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevValue     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// MemoryAccessKind tags a MemoryRecordEnum.
type MemoryAccessKind uint8

const (
	// MemoryAccessNone marks an absent access
	MemoryAccessNone MemoryAccessKind = iota
	// MemoryAccessRead marks a read access
	MemoryAccessRead
	// MemoryAccessWrite marks a write access
	MemoryAccessWrite
)

// MemoryRecordEnum is either a read or a write access.
type MemoryRecordEnum struct {
	Kind  MemoryAccessKind
	Read  MemoryReadRecord
	Write MemoryWriteRecord
}

// NewReadAccess wraps a read record.
func NewReadAccess(r MemoryReadRecord) MemoryRecordEnum {
	return MemoryRecordEnum{Kind: MemoryAccessRead, Read: r}
}

// NewWriteAccess wraps a write record.
func NewWriteAccess(w MemoryWriteRecord) MemoryRecordEnum {
	return MemoryRecordEnum{Kind: MemoryAccessWrite, Write: w}
}

// IsWrite reports whether the access is a write.
func (m MemoryRecordEnum) IsWrite() bool {
	return m.Kind == MemoryAccessWrite
}

// Current returns the memory state after the access.
func (m MemoryRecordEnum) Current() MemoryRecord {
	switch m.Kind {
	case MemoryAccessRead:
		return MemoryRecord{Shard: m.Read.Shard, Timestamp: m.Read.Timestamp, Value: m.Read.Value}
	case MemoryAccessWrite:
		return MemoryRecord{Shard: m.Write.Shard, Timestamp: m.Write.Timestamp, Value: m.Write.Value}
	}
	return MemoryRecord{}
}

// Previous returns the memory state before the access.
func (m MemoryRecordEnum) Previous() MemoryRecord {
	switch m.Kind {
	case MemoryAccessRead:
		return MemoryRecord{Shard: m.Read.PrevShard, Timestamp: m.Read.PrevTimestamp, Value: m.Read.Value}
	case MemoryAccessWrite:
		return MemoryRecord{Shard: m.Write.PrevShard, Timestamp: m.Write.PrevTimestamp, Value: m.Write.PrevValue}
	}
	return MemoryRecord{}
}

// MemoryAccessRecord collects the accesses of a single instruction.
type MemoryAccessRecord struct {
	A      *MemoryRecordEnum
	B      *MemoryRecordEnum
	C      *MemoryRecordEnum
	Hi     *MemoryRecordEnum
	Memory *MemoryRecordEnum
}

// MemoryLocalEvent is the first and last state of an address touched inside one shard.
type MemoryLocalEvent struct {
	Addr       uint32
	InitialMem MemoryRecord
	FinalMem   MemoryRecord
}

// MemoryInitializeFinalizeEvent is the first or last touch of an address across
// the whole program.
type MemoryInitializeFinalizeEvent struct {
	Addr      uint32
	Value     uint32
	Shard     uint32
	Timestamp uint32
	Used      uint32
}

// NewMemoryInitialize returns an initialize event for addr.
func NewMemoryInitialize(addr, value uint32, used bool) MemoryInitializeFinalizeEvent {
	return MemoryInitializeFinalizeEvent{Addr: addr, Value: value, Shard: 1, Timestamp: 1, Used: boolToU32(used)}
}

// NewMemoryFinalize returns a finalize event for addr from its last record.
func NewMemoryFinalize(addr uint32, record MemoryRecord) MemoryInitializeFinalizeEvent {
	return MemoryInitializeFinalizeEvent{
		Addr:      addr,
		Value:     record.Value,
		Shard:     record.Shard,
		Timestamp: record.Timestamp,
		Used:      1,
	}
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
