package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankcap/banketl/internal/config"
	"github.com/bankcap/banketl/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// withConfig loads the config named by --config, installs telemetry for the
// duration of fn and flushes it afterwards, even when fn fails.
func (g *globalOptions) withConfig(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config) error) (err error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		err = errors.Join(err, tel.Shutdown(shutdownCtx))
	}()

	return fn(ctx, cfg)
}
