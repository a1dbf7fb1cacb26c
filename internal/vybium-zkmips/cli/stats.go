package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats <program.json> <record.cbor>",
		Short:         "Print the non-zero event counts of a record",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			record, err := loadRecord(args[1], program)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(record.Stats())
		},
	}
	return cmd
}
