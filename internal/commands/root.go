package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankcap/banketl/internal/buildinfo"
	"github.com/bankcap/banketl/internal/config"
	"github.com/bankcap/banketl/internal/logging"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "banketl",
		Short:   "Load the largest banks by market capitalization into CSV and SQLite",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(opts.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newQueryCommand(opts))

	return rootCmd
}
