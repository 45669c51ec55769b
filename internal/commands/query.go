package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/bankcap/banketl/internal/config"
	"github.com/bankcap/banketl/internal/model"
	"github.com/bankcap/banketl/internal/store"
)

func newQueryCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [sql...]",
		Short: "Run queries against a loaded database (defaults to the configured queries)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return global.withConfig(cmd, func(ctx context.Context, cfg *config.Config) error {
				queries := cfg.Queries
				if len(args) > 0 {
					queries = args
				}
				return runQuery(ctx, cmd.OutOrStdout(), cfg.Database.Path, queries)
			})
		},
	}

	return cmd
}

func runQuery(ctx context.Context, w io.Writer, dbPath string, queries []string) (err error) {
	// Opening would silently create an empty database.
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("database %s not found, run `banketl run` first: %w", dbPath, model.ErrIO)
	}

	s, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	return s.RunQueries(ctx, w, queries)
}
