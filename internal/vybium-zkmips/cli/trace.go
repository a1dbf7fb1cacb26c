package cli

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	zkmips "github.com/vybium/vybium-zkmips/pkg/vybium-zkmips"
)

// ChipSummary describes one generated chip trace
type ChipSummary struct {
	Name   string   `json:"name"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Digest []uint64 `json:"digest"`
}

// ShardSummary is written as one JSON line per shard
type ShardSummary struct {
	Shard          uint32        `json:"shard"`
	ExecutionShard uint32        `json:"execution_shard"`
	Chips          []ChipSummary `json:"chips"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <program.json> <record.cbor>...",
		Short: "Shard execution records and generate every chip trace",
		Long: `Decode the execution records of one run, in execution order, defer their
precompile calls and global memory events into dedicated shards, and generate
the trace of every included chip. One JSON line is written per shard.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, rootOpts, args[0], args[1:])
		},
	}
	return cmd
}

func runTrace(cmd *cobra.Command, rootOpts *RootOptions, programPath string, recordPaths []string) error {
	program, err := loadProgram(programPath)
	if err != nil {
		return err
	}
	opts, err := rootOpts.coreOpts()
	if err != nil {
		return err
	}
	fixed, err := rootOpts.shape()
	if err != nil {
		return err
	}

	pipeline, err := zkmips.NewPipeline(program, opts)
	if err != nil {
		return err
	}

	var shards []*zkmips.ExecutionRecord
	for _, path := range recordPaths {
		record, err := loadRecord(path, program)
		if err != nil {
			return err
		}
		pushed, err := pipeline.Push(record)
		if err != nil {
			return err
		}
		shards = append(shards, pushed...)
	}
	rest, err := pipeline.Finish()
	if err != nil {
		return err
	}
	shards = append(shards, rest...)

	if fixed != nil {
		for _, shard := range shards {
			shard.Shape = fixed.Clone()
		}
	}

	logrus.WithFields(logrus.Fields{
		"records": len(recordPaths),
		"shards":  len(shards),
	}).Info("sharded execution")

	result, err := pipeline.GenerateTraces(shards)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, s := range result {
		if err := enc.Encode(summarize(s)); err != nil {
			return fmt.Errorf("failed to write shard %d: %w", s.Shard, err)
		}
	}
	return nil
}

func summarize(s *zkmips.ShardTraces) ShardSummary {
	summary := ShardSummary{
		Shard:          s.Shard,
		ExecutionShard: s.ExecutionShard,
		Chips:          make([]ChipSummary, 0, len(s.Traces)),
	}
	for _, t := range s.Traces {
		var digest []uint64
		for _, e := range t.Trace.Digest() {
			digest = append(digest, e.Value())
		}
		summary.Chips = append(summary.Chips, ChipSummary{
			Name:   t.Name,
			Width:  t.Trace.Width,
			Height: t.Trace.Height(),
			Digest: digest,
		})
	}
	return summary
}
