// Package cli implements the vybium-zkmips command line.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	zkmips "github.com/vybium/vybium-zkmips/pkg/vybium-zkmips"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	OptsPath  string
	ShapePath string
	Workers   int
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vybium-zkmips",
		Short: "Shard zkMIPS execution records and generate chip traces",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetOutput(cmd.ErrOrStderr())
			if opts.Verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.OptsPath, "opts", "", "YAML sharding options file")
	cmd.PersistentFlags().StringVar(&opts.ShapePath, "shape", "", "YAML shape applied to every shard")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", -1, "trace generation workers, 0 for one per CPU")

	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// coreOpts loads the sharding options selected by the global flags. The
// environment overrides apply with or without an options file.
func (o *RootOptions) coreOpts() (*zkmips.CoreOpts, error) {
	opts, err := zkmips.LoadCoreOpts(o.OptsPath)
	if err != nil {
		return nil, err
	}
	if o.Workers >= 0 {
		opts.WithWorkers(o.Workers)
	}
	return opts, nil
}

func (o *RootOptions) shape() (*zkmips.Shape, error) {
	if o.ShapePath == "" {
		return nil, nil
	}
	return zkmips.LoadShape(o.ShapePath)
}
