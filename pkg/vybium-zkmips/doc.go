// Package vybiumzkmips turns the execution records of a MIPS zkVM run into
// provable shards and their chip traces.
//
// An execution record is the per-shard ledger of everything the executor
// observed: CPU cycles, ALU operations, memory accesses, syscalls, precompile
// calls and the byte lookups they imply. The pipeline moves expensive
// precompile calls out of the execution shards, regroups them into dedicated
// shards of bounded size, chunks global memory initialization and finalization,
// and finally asks every chip of the machine for its padded trace.
//
// # Quick Start
//
//	program := vybiumzkmips.NewProgram(words, pcStart, pcBase)
//	pipeline, err := vybiumzkmips.NewPipeline(program, vybiumzkmips.DefaultCoreOpts())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// records come from the executor, one per execution shard
//	shards, err := pipeline.Run(records)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, s := range shards {
//		for _, t := range s.Traces {
//			fmt.Println(s.Shard, t.Name, t.Trace.Height())
//		}
//	}
//
// # Shapes
//
// A shard may carry a Shape fixing the log2 height of every chip it contains.
// With a shape, only the chips named by it produce traces and their heights
// are honoured exactly. Without one, each chip decides from its own events and
// pads to the next power of two.
//
// # Records on disk
//
// EncodeRecord and DecodeRecord store records as deterministic CBOR. The
// program is not stored; a record can only be decoded against the program that
// produced it.
package vybiumzkmips
