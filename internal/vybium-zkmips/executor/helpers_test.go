package executor

import (
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/executor/events"
	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

func testProgram() *Program {
	p := NewProgram([]uint32{0x20080001, 0x20090002, 0x01095020, 0x0000000c}, 0x1000, 0x1000)
	p.Image[0x2000] = 0xdeadbeef
	return p
}

func testSplitOpts(threshold int) utils.SplitOpts {
	return utils.SplitOpts{
		Deferred:    threshold,
		Keccak:      threshold,
		ShaExtend:   threshold,
		ShaCompress: threshold,
		Memory:      threshold,
	}
}

func keccakCall(clk uint32, blocks int) (events.SyscallEvent, *events.KeccakSpongeEvent) {
	n := blocks * events.GeneralBlockSizeU32s
	input := make([]uint32, n)
	for i := range input {
		input[i] = clk + uint32(i)
	}
	syscall := events.SyscallEvent{Clk: clk, SyscallCode: events.KECCAK_SPONGE, SyscallID: events.KECCAK_SPONGE.SyscallID()}
	return syscall, &events.KeccakSpongeEvent{Clk: clk, InputLenU32s: uint32(n), Input: input}
}

func addKeccak(r *ExecutionRecord, clk uint32, blocks int) {
	syscall, event := keccakCall(clk, blocks)
	r.AddPrecompileEvent(events.KECCAK_SPONGE, syscall, event)
}

func addAES(r *ExecutionRecord, clk uint32) {
	syscall := events.SyscallEvent{Clk: clk, SyscallCode: events.AES128_ENCRYPT, SyscallID: events.AES128_ENCRYPT.SyscallID()}
	r.AddPrecompileEvent(events.AES128_ENCRYPT, syscall, &events.AES128EncryptEvent{Clk: clk, Input: [4]uint32{clk, 1, 2, 3}})
}

func clocks(records []events.PrecompileRecord) []uint32 {
	out := make([]uint32, 0, len(records))
	for _, r := range records {
		out = append(out, r.Syscall.Clk)
	}
	return out
}
