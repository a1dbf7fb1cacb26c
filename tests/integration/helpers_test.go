package integration_test

import (
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	zkmips "github.com/vybium/vybium-zkmips/pkg/vybium-zkmips"
)

func testProgram() *zkmips.Program {
	p := zkmips.NewProgram([]uint32{0x20080001, 0x20090002, 0x01095020, 0x2408000a, 0x0000000c}, 0x1000, 0x1000)
	p.Image[0x2000] = 0xcafe
	return p
}

func splitOpts() zkmips.SplitOpts {
	return zkmips.SplitOpts{Deferred: 3, Keccak: 5, ShaExtend: 2, ShaCompress: 2, Memory: 5}
}

// executionRecord builds the record of one execution shard: cycles of mixed
// ALU work, a keccak call of 1 to 3 blocks per index in keccak, sha and aes
// calls, and memory events for the addresses in mem.
func executionRecord(program *zkmips.Program, shard uint32, cycles int, keccak []int, sha, aes int, mem []uint32) *zkmips.ExecutionRecord {
	r := zkmips.NewExecutionRecord(program)
	base := shard * 100000

	for i := 0; i < cycles; i++ {
		clk := base + uint32(4*i)
		pc := program.PCStart + uint32(4*(i%len(program.Instructions)))
		v := uint32(i*7919) ^ base
		b := events.NewReadAccess(events.MemoryReadRecord{Value: v, Shard: shard, Timestamp: clk + 1, PrevShard: shard, PrevTimestamp: clk})
		r.AddCpuEvent(events.CpuEvent{Shard: shard, Clk: clk, PC: pc, NextPC: pc + 4, NextNextPC: pc + 8, Opcode: events.ADD, A: v + 3, B: v, C: 3, BRecord: &b})
		switch i % 4 {
		case 0:
			r.AddAluEvent(events.NewAluEvent(pc, events.ADD, v+3, v, 3))
		case 1:
			r.AddAluEvent(events.NewAluEvent(pc, events.SUB, v-3, v, 3))
		case 2:
			r.AddAluEvent(events.NewAluEvent(pc, events.AND, v&0xFF00, v, 0xFF00))
		case 3:
			r.AddAluEvent(events.NewAluEvent(pc, events.SLT, 0, v, 3))
		}
	}

	call := uint32(0)
	syscall := func(code events.SyscallCode) events.SyscallEvent {
		call++
		ev := events.SyscallEvent{Shard: shard, Clk: base + 50000 + call, SyscallCode: code, SyscallID: code.SyscallID()}
		r.AddSyscallEvent(ev)
		return ev
	}

	for _, blocks := range keccak {
		s := syscall(events.KECCAK_SPONGE)
		input := make([]uint32, blocks*events.GeneralBlockSizeU32s)
		for j := range input {
			input[j] = s.Clk + uint32(j)
		}
		r.AddPrecompileEvent(events.KECCAK_SPONGE, s, &events.KeccakSpongeEvent{Shard: shard, Clk: s.Clk, InputLenU32s: uint32(len(input)), Input: input})
	}
	for i := 0; i < sha; i++ {
		s := syscall(events.SHA_EXTEND)
		r.AddPrecompileEvent(events.SHA_EXTEND, s, &events.ShaExtendEvent{Shard: shard, Clk: s.Clk, WPtr: 0x4000 + uint32(i)*256})
	}
	for i := 0; i < aes; i++ {
		s := syscall(events.AES128_ENCRYPT)
		r.AddPrecompileEvent(events.AES128_ENCRYPT, s, &events.AES128EncryptEvent{Shard: shard, Clk: s.Clk, Input: [4]uint32{s.Clk, 1, 2, 3}})
	}

	for _, addr := range mem {
		r.AddGlobalMemoryInitialize(events.NewMemoryInitialize(addr, program.Image[addr], true))
		r.AddGlobalMemoryFinalize(events.NewMemoryFinalize(addr, events.MemoryRecord{Shard: shard, Timestamp: base + 9, Value: addr ^ 0xFFFF}))
	}
	return r
}

// testRun returns a fresh copy of the records of a four shard run.
func testRun(program *zkmips.Program) []*zkmips.ExecutionRecord {
	return []*zkmips.ExecutionRecord{
		executionRecord(program, 1, 40, []int{1, 2, 3}, 1, 2, nil),
		executionRecord(program, 2, 33, []int{3, 3}, 2, 0, nil),
		executionRecord(program, 3, 17, []int{1, 1, 1, 1, 1, 1}, 0, 3, nil),
		executionRecord(program, 4, 8, []int{7}, 1, 1, []uint32{0x2010, 0x2000, 0x2008, 0x2004, 0x200c, 0x2018, 0x2014}),
	}
}

type counts struct {
	cpu, alu, syscalls   int
	memInit, memFinalize int
	precompiles          map[events.SyscallCode]int
}

func countEvents(records []*zkmips.ExecutionRecord) counts {
	c := counts{precompiles: map[events.SyscallCode]int{}}
	for _, r := range records {
		c.cpu += len(r.CpuEvents)
		c.alu += len(r.AddEvents) + len(r.SubEvents) + len(r.BitwiseEvents) + len(r.LtEvents)
		c.syscalls += len(r.SyscallEvents)
		c.memInit += len(r.GlobalMemoryInitializeEvents)
		c.memFinalize += len(r.GlobalMemoryFinalizeEvents)
		for code, records := range r.PrecompileEvents {
			c.precompiles[code] += len(records)
		}
	}
	return c
}
