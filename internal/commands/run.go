package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bankcap/banketl/internal/config"
	"github.com/bankcap/banketl/internal/extract"
	"github.com/bankcap/banketl/internal/pipeline"
)

func newRunCommand(global *globalOptions) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, transform and load the bank table, then run the report queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return global.withConfig(cmd, func(ctx context.Context, cfg *config.Config) error {
				opts := pipeline.Options{Out: cmd.OutOrStdout()}
				if fromFile != "" {
					opts.Source = extract.FileSource{Path: fromFile}
				}
				return pipeline.New(cfg, opts).Run(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&fromFile, "from-file", "", "parse a saved copy of the page instead of fetching it")

	return cmd
}
